package catalog

import (
	"testing"

	"github.com/raushankrgupta/marketchoice-admin/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func viewCatalog(t *testing.T) *Catalog {
	t.Helper()
	c := New()
	for _, name := range []string{"Phones", "Audio", "Empty"} {
		require.NoError(t, c.AddCategory(name))
	}
	for _, p := range []models.Product{
		{Name: "Galaxy Phone", Price: "19999", MRP: "24999", InStock: true},
		{Name: "Pixel", InStock: false},
	} {
		_, err := c.AddProduct("Phones", p)
		require.NoError(t, err)
	}
	_, err := c.AddProduct("Audio", models.Product{Name: "Phone Stand Speaker", InStock: true})
	require.NoError(t, err)
	return c
}

func TestRender_NoSearchShowsEverything(t *testing.T) {
	views := Render(viewCatalog(t), NewViewState())
	require.Len(t, views, 3)
	assert.Equal(t, "Phones", views[0].Name)
	assert.Equal(t, 2, views[0].Total)
	assert.Equal(t, 1, views[0].InStock)
	assert.Equal(t, 20, views[0].Products[0].Discount)
	assert.Equal(t, "Empty", views[2].Name)
	assert.Empty(t, views[2].Products)
}

func TestRender_SearchFiltersAndKeepsIndexes(t *testing.T) {
	c := viewCatalog(t)
	state := NewViewState()
	state.Search = "PIXEL"

	views := Render(c, state)
	require.Len(t, views, 1)
	assert.Equal(t, "Phones", views[0].Name)
	require.Len(t, views[0].Products, 1)
	assert.Equal(t, 1, views[0].Products[0].Index)
	assert.Empty(t, state.Expanded, "render does not touch state")
}

func TestSetSearchExpandsMatches(t *testing.T) {
	c := viewCatalog(t)
	state := NewViewState()
	state.SetSearch("phone", c)

	assert.Equal(t, map[string]bool{"Phones": true, "Audio": true}, state.Expanded)

	state.CollapseAll()
	assert.Empty(t, state.Expanded)
	state.ExpandAll(c)
	assert.Len(t, state.Expanded, 3)

	assert.False(t, state.Toggle("Audio"))
	assert.True(t, state.Toggle("Audio"))

	state.Rename("Audio", "Sound")
	assert.True(t, state.Expanded["Sound"])
	_, ok := state.Expanded["Audio"]
	assert.False(t, ok)
}
