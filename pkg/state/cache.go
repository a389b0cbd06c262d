package state

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/movedao/dao-node/pkg/model"
)

// Snapshotter persists the synced view outside the process; invoked after
// every upsert, failures are logged and never affect the cache.
type Snapshotter interface {
	SaveOrganization(org model.Organization) error
}

// Cache - insertion-ordered in-memory view of assembled organizations.
// Entries are replaced whole; a reader never observes a partially updated
// organization. Staleness is resolved only by explicit re-sync.
type Cache struct {
	mu    sync.Mutex
	index map[string]int
	orgs  []model.Organization
	snap  Snapshotter
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{index: make(map[string]int)}
}

// WithSnapshotter mirrors every upsert into the given store.
func (c *Cache) WithSnapshotter(s Snapshotter) *Cache {
	c.snap = s
	return c
}

// Upsert replaces the organization with the same id, or appends it.
func (c *Cache) Upsert(org model.Organization) {
	c.mu.Lock()
	if i, ok := c.index[org.ID]; ok {
		c.orgs[i] = org
	} else {
		c.index[org.ID] = len(c.orgs)
		c.orgs = append(c.orgs, org)
	}
	snap := c.snap
	c.mu.Unlock()

	if snap != nil {
		if err := snap.SaveOrganization(org); err != nil {
			log.Warnf("persisting snapshot of organization %s failed due to error: %v", org.ID, err)
		}
	}
}

// Get returns the cached organization with the given id.
func (c *Cache) Get(id string) (model.Organization, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.index[id]
	if !ok {
		return model.Organization{}, false
	}
	return c.orgs[i], true
}

// All returns the cached organizations in insertion order.
func (c *Cache) All() []model.Organization {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Organization, len(c.orgs))
	copy(out, c.orgs)
	return out
}

// Len returns the number of cached organizations.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.orgs)
}
