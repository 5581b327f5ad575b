package cache

import (
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseLocal(t *testing.T, c Local) {
	t.Helper()

	_, ok, err := c.Get("adminData")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set("adminData", `{"Phones":[]}`))
	require.NoError(t, c.Set("adminData", `{"Laptops":[]}`))

	v, ok, err := c.Get("adminData")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"Laptops":[]}`, v)

	require.NoError(t, c.Set("empty", ""))
	v, ok, err = c.Get("empty")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, v)
}

func TestMemory(t *testing.T) {
	exerciseLocal(t, NewMemory())
}

func TestSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.db")
	c, err := OpenSQLite(path)
	require.NoError(t, err)
	exerciseLocal(t, c)
	require.NoError(t, c.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()
	v, ok, err := reopened.Get("adminData")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"Laptops":[]}`, v)
}

func TestRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := NewRedis(mr.Addr(), "", 0)
	require.NoError(t, err)
	defer c.Close()

	exerciseLocal(t, c)
	assert.True(t, mr.Exists("marketchoice:adminData"))
}

func TestRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedis(addr, "", 0)
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	c, closeFn, err := Open("memory", Options{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, c)
	assert.NoError(t, closeFn())

	_, _, err = Open("leveldb", Options{})
	assert.Error(t, err)
}
