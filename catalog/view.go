package catalog

import (
	"strings"

	"github.com/raushankrgupta/marketchoice-admin/models"
)

// ViewState is the operator's presentation state: the search term and
// which categories are expanded.
type ViewState struct {
	Search   string          `json:"search"`
	Expanded map[string]bool `json:"expanded"`
}

func NewViewState() *ViewState {
	return &ViewState{Expanded: make(map[string]bool)}
}

// Toggle flips a category and returns its new state.
func (s *ViewState) Toggle(category string) bool {
	s.Expanded[category] = !s.Expanded[category]
	return s.Expanded[category]
}

func (s *ViewState) ExpandAll(c *Catalog) {
	for _, name := range c.names {
		s.Expanded[name] = true
	}
}

func (s *ViewState) CollapseAll() {
	s.Expanded = make(map[string]bool)
}

// SetSearch stores the term and expands every category with a match.
func (s *ViewState) SetSearch(term string, c *Catalog) {
	s.Search = strings.TrimSpace(term)
	if s.Search == "" {
		return
	}
	for _, cat := range Render(c, s) {
		s.Expanded[cat.Name] = true
	}
}

// Rename carries a category's expanded flag over to its new name.
func (s *ViewState) Rename(oldName, newName string) {
	if expanded, ok := s.Expanded[oldName]; ok {
		delete(s.Expanded, oldName)
		s.Expanded[newName] = expanded
	}
}

func (s *ViewState) Forget(category string) {
	delete(s.Expanded, category)
}

// ProductView is a product with its position in the category, which is its
// identity for updates and deletes.
type ProductView struct {
	Index    int            `json:"index"`
	Discount int            `json:"discount,omitempty"`
	Product  models.Product `json:"product"`
}

type CategoryView struct {
	Name     string        `json:"name"`
	Expanded bool          `json:"expanded"`
	Total    int           `json:"total"`
	InStock  int           `json:"inStock"`
	Products []ProductView `json:"products"`
}

// Render lists categories in order with products whose name contains the
// search term, case-insensitively. While searching, categories without a
// match are left out. Render does not modify state.
func Render(c *Catalog, state *ViewState) []CategoryView {
	term := ""
	expanded := map[string]bool{}
	if state != nil {
		term = strings.ToLower(strings.TrimSpace(state.Search))
		expanded = state.Expanded
	}

	views := make([]CategoryView, 0, len(c.names))
	for _, name := range c.names {
		list := c.products[name]
		view := CategoryView{Name: name, Expanded: expanded[name], Total: len(list), Products: []ProductView{}}
		for i, p := range list {
			if p.InStock {
				view.InStock++
			}
			if term != "" && !strings.Contains(strings.ToLower(p.Name), term) {
				continue
			}
			view.Products = append(view.Products, ProductView{Index: i, Discount: p.DiscountPercent(), Product: p.Clone()})
		}
		if term != "" && len(view.Products) == 0 {
			continue
		}
		views = append(views, view)
	}
	return views
}
