package catalog

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/raushankrgupta/marketchoice-admin/cache"
	"github.com/raushankrgupta/marketchoice-admin/models"
	"github.com/raushankrgupta/marketchoice-admin/store"
	"github.com/sirupsen/logrus"
)

const (
	// RemotePath is where the catalog lives in the document store.
	RemotePath = "products"
	// LocalKey is the local cache entry holding the last known catalog.
	LocalKey = "adminData"

	remoteWriteTimeout = 10 * time.Second
	recentWrites       = 16
)

var (
	ErrNoRemoteData = errors.New("no data in remote store")
	ErrClosed       = errors.New("console is closed")
)

// Console is the operator's editing session. Every mutation is saved to the
// local cache before it returns and mirrored to the remote store in the
// background.
type Console struct {
	mu          sync.Mutex
	catalog     *Catalog
	view        *ViewState
	remote      store.Documents
	local       cache.Local
	mirror      *mirror
	unsubscribe func()
	closed      bool
	// hashes of snapshots we sent, so their echoes are not applied over newer edits
	sent   [][32]byte
	logger logrus.FieldLogger
}

func NewConsole(remote store.Documents, local cache.Local, logger logrus.FieldLogger) *Console {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	c := &Console{
		catalog: New(),
		view:    NewViewState(),
		remote:  remote,
		local:   local,
		logger:  logger.WithField("component", "console"),
	}
	c.mirror = newMirror(func(ctx context.Context, data []byte) error {
		return remote.Write(ctx, RemotePath, data)
	}, remoteWriteTimeout, c.logger)
	return c
}

// Load subscribes to the remote catalog. The first remote value wins; when
// the remote has none the local cache is used, then an empty catalog.
// Later remote changes replace the in-memory catalog and the local cache.
func (c *Console) Load(ctx context.Context) error {
	first := true
	cancel, err := c.remote.Subscribe(ctx, RemotePath, func(value []byte) {
		c.applyRemote(value, first)
		first = false
	})
	if err != nil {
		c.logger.WithError(err).Warn("remote subscribe failed, using local cache")
		c.mu.Lock()
		defer c.mu.Unlock()
		c.loadLocalOrEmptyLocked()
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		cancel()
		return ErrClosed
	}
	c.unsubscribe = cancel
	return nil
}

func (c *Console) applyRemote(value []byte, initial bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	if len(bytes.TrimSpace(value)) == 0 || string(bytes.TrimSpace(value)) == "null" {
		if initial {
			c.loadLocalOrEmptyLocked()
		}
		return
	}
	if !initial && c.isOwnEchoLocked(value) {
		return
	}

	cat, err := Parse(value)
	if err != nil {
		c.logger.WithError(err).Warn("ignoring malformed remote catalog")
		if initial {
			c.loadLocalOrEmptyLocked()
		}
		return
	}
	c.catalog = cat
	c.saveLocalLocked()
	c.logger.WithField("categories", cat.Len()).Info("catalog loaded from remote")
}

func (c *Console) loadLocalOrEmptyLocked() {
	raw, ok, err := c.local.Get(LocalKey)
	if err != nil {
		c.logger.WithError(err).Warn("local cache read failed")
	}
	if ok && raw != "" {
		cat, err := Parse([]byte(raw))
		if err == nil {
			c.catalog = cat
			c.logger.WithField("categories", cat.Len()).Info("catalog loaded from local cache")
			return
		}
		c.logger.WithError(err).Warn("ignoring malformed local catalog")
	}
	c.catalog = New()
	c.commitLocked()
}

func (c *Console) isOwnEchoLocked(value []byte) bool {
	sum := sha256.Sum256(value)
	for i, h := range c.sent {
		if h == sum {
			c.sent = append(c.sent[:i], c.sent[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Console) saveLocalLocked() []byte {
	data, err := json.Marshal(c.catalog)
	if err != nil {
		c.logger.WithError(err).Error("encoding catalog")
		return nil
	}
	if err := c.local.Set(LocalKey, string(data)); err != nil {
		c.logger.WithError(err).Error("local cache write failed")
	}
	return data
}

// commitLocked persists locally and queues the remote mirror write.
func (c *Console) commitLocked() {
	data := c.saveLocalLocked()
	if data == nil || c.closed {
		return
	}
	c.sent = append(c.sent, sha256.Sum256(data))
	if len(c.sent) > recentWrites {
		c.sent = c.sent[len(c.sent)-recentWrites:]
	}
	c.mirror.push(data)
}

// mutate runs fn against the catalog and commits when it succeeds.
func (c *Console) mutate(fn func(cat *Catalog) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if err := fn(c.catalog); err != nil {
		return err
	}
	c.commitLocked()
	return nil
}

func (c *Console) AddCategory(name string) error {
	return c.mutate(func(cat *Catalog) error { return cat.AddCategory(name) })
}

func (c *Console) RenameCategory(oldName, newName string) error {
	return c.mutate(func(cat *Catalog) error {
		if err := cat.RenameCategory(oldName, newName); err != nil {
			return err
		}
		c.view.Rename(oldName, newName)
		return nil
	})
}

func (c *Console) DeleteCategory(name string) error {
	return c.mutate(func(cat *Catalog) error {
		if err := cat.DeleteCategory(name); err != nil {
			return err
		}
		c.view.Forget(name)
		return nil
	})
}

func (c *Console) AddProduct(category string, p models.Product) (int, error) {
	var index int
	err := c.mutate(func(cat *Catalog) error {
		var err error
		index, err = cat.AddProduct(category, p)
		return err
	})
	return index, err
}

func (c *Console) UpdateProduct(category string, index int, p models.Product) error {
	return c.mutate(func(cat *Catalog) error { return cat.UpdateProduct(category, index, p) })
}

func (c *Console) DeleteProduct(category string, index int) error {
	return c.mutate(func(cat *Catalog) error { return cat.DeleteProduct(category, index) })
}

// Reload replaces the catalog with a one-shot read of the remote store.
func (c *Console) Reload(ctx context.Context) error {
	value, err := c.remote.ReadOnce(ctx, RemotePath)
	if err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	if len(bytes.TrimSpace(value)) == 0 || string(bytes.TrimSpace(value)) == "null" {
		return ErrNoRemoteData
	}
	cat, err := Parse(value)
	if err != nil {
		return fmt.Errorf("reload: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.catalog = cat
	c.saveLocalLocked()
	return nil
}

// ExportJSON returns the whole catalog for review.
func (c *Console) ExportJSON() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := json.Marshal(c.catalog)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// ImportJSON replaces the catalog with reviewed JSON. Invalid input leaves
// the catalog untouched.
func (c *Console) ImportJSON(raw []byte) error {
	cat, err := Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid catalog JSON: %w", err)
	}
	return c.mutate(func(*Catalog) error {
		c.catalog = cat
		return nil
	})
}

// Snapshot returns a deep copy of the current catalog.
func (c *Console) Snapshot() *Catalog {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.catalog.Clone()
}

// Has reports whether category exists.
func (c *Console) Has(category string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.catalog.Has(category)
}

// Render lists the catalog under the current view state.
func (c *Console) Render() []CategoryView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Render(c.catalog, c.view)
}

// Search sets the search term, expands matching categories and renders.
func (c *Console) Search(term string) []CategoryView {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.SetSearch(term, c.catalog)
	return Render(c.catalog, c.view)
}

func (c *Console) ExpandAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.ExpandAll(c.catalog)
}

func (c *Console) CollapseAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.CollapseAll()
}

// Toggle flips a category's expanded state.
func (c *Console) Toggle(category string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.catalog.Has(category) {
		return false, fmt.Errorf("%w: %q", ErrCategoryNotFound, category)
	}
	return c.view.Toggle(category), nil
}

// Close stops the remote subscription and waits for the last mirror write.
func (c *Console) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	unsubscribe := c.unsubscribe
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	c.mirror.close()
}
