// Package catalog holds the category → products mapping the console edits.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/raushankrgupta/marketchoice-admin/models"
)

var (
	ErrCategoryExists   = errors.New("category already exists")
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrInvalidName      = errors.New("name must not be blank")
	ErrNullCatalog      = errors.New("catalog must be a JSON object, got null")
)

// Catalog is an ordered mapping of category name to products. The zero value
// is an empty catalog.
type Catalog struct {
	names    []string
	products map[string][]models.Product
}

func New() *Catalog {
	return &Catalog{products: make(map[string][]models.Product)}
}

func (c *Catalog) init() {
	if c.products == nil {
		c.products = make(map[string][]models.Product)
	}
}

// Categories returns category names in display order.
func (c *Catalog) Categories() []string {
	return append([]string(nil), c.names...)
}

func (c *Catalog) Has(name string) bool {
	_, ok := c.products[name]
	return ok
}

func (c *Catalog) Len() int {
	return len(c.names)
}

// Products returns a copy of the products in a category.
func (c *Catalog) Products(name string) ([]models.Product, error) {
	list, ok := c.products[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCategoryNotFound, name)
	}
	out := make([]models.Product, len(list))
	for i, p := range list {
		out[i] = p.Clone()
	}
	return out, nil
}

// Clone returns a deep copy.
func (c *Catalog) Clone() *Catalog {
	out := New()
	out.names = append([]string(nil), c.names...)
	for name, list := range c.products {
		cp := make([]models.Product, len(list))
		for i, p := range list {
			cp[i] = p.Clone()
		}
		out.products[name] = cp
	}
	return out
}

func (c *Catalog) AddCategory(name string) error {
	c.init()
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	if c.Has(name) {
		return fmt.Errorf("%w: %q", ErrCategoryExists, name)
	}
	c.names = append(c.names, name)
	c.products[name] = []models.Product{}
	return nil
}

// RenameCategory keeps the products and moves the category to the front.
// Renaming onto another existing category fails and changes nothing.
func (c *Catalog) RenameCategory(oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return ErrInvalidName
	}
	list, ok := c.products[oldName]
	if !ok {
		return fmt.Errorf("%w: %q", ErrCategoryNotFound, oldName)
	}
	if oldName == newName {
		return nil
	}
	if c.Has(newName) {
		return fmt.Errorf("%w: %q", ErrCategoryExists, newName)
	}

	names := make([]string, 0, len(c.names))
	names = append(names, newName)
	for _, n := range c.names {
		if n != oldName {
			names = append(names, n)
		}
	}
	c.names = names
	delete(c.products, oldName)
	c.products[newName] = list
	return nil
}

// DeleteCategory removes the category and every product in it.
func (c *Catalog) DeleteCategory(name string) error {
	if !c.Has(name) {
		return fmt.Errorf("%w: %q", ErrCategoryNotFound, name)
	}
	delete(c.products, name)
	for i, n := range c.names {
		if n == name {
			c.names = append(c.names[:i], c.names[i+1:]...)
			break
		}
	}
	return nil
}

// AddProduct appends p and returns its index.
func (c *Catalog) AddProduct(category string, p models.Product) (int, error) {
	list, ok := c.products[category]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrCategoryNotFound, category)
	}
	c.products[category] = append(list, p.Normalized().Clone())
	return len(list), nil
}

func (c *Catalog) UpdateProduct(category string, index int, p models.Product) error {
	list, err := c.locate(category, index)
	if err != nil {
		return err
	}
	list[index] = p.Normalized().Clone()
	return nil
}

func (c *Catalog) DeleteProduct(category string, index int) error {
	list, err := c.locate(category, index)
	if err != nil {
		return err
	}
	c.products[category] = append(list[:index:index], list[index+1:]...)
	return nil
}

func (c *Catalog) locate(category string, index int) ([]models.Product, error) {
	list, ok := c.products[category]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCategoryNotFound, category)
	}
	if index < 0 || index >= len(list) {
		return nil, fmt.Errorf("%w: %q #%d", ErrProductNotFound, category, index)
	}
	return list, nil
}

// MarshalJSON writes an object whose key order is the category order.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range c.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		list := c.products[name]
		if list == nil {
			list = []models.Product{}
		}
		val, err := json.Marshal(list)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON keeps the key order of the input. A null category decodes
// as empty.
func (c *Catalog) UnmarshalJSON(b []byte) error {
	out := New()
	if string(bytes.TrimSpace(b)) == "null" {
		return ErrNullCatalog
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("catalog must be a JSON object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name := tok.(string)
		var list []models.Product
		if err := dec.Decode(&list); err != nil {
			return fmt.Errorf("category %q: %w", name, err)
		}
		if list == nil {
			list = []models.Product{}
		}
		if _, dup := out.products[name]; !dup {
			out.names = append(out.names, name)
		}
		out.products[name] = list
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*c = *out
	return nil
}

// Parse decodes a catalog, rejecting anything but a JSON object of arrays.
func Parse(raw []byte) (*Catalog, error) {
	c := New()
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, err
	}
	return c, nil
}
