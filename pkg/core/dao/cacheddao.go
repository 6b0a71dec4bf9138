package dao

import (
	"github.com/n3ledger/core/pkg/core/storage"
)

// Cached is a DAO staging layer: NewCached builds a fresh Simple whose
// Store is a new storage.MemCachedStore sitting on top of whatever d is
// currently writing to, inheriting d's behavior flags. Every read the
// inner Simple performs checks that overlay first and falls through to d's
// store on a miss; every write stays in the overlay until Persist flushes
// it one level down. Stacking NewCached(NewCached(d)) layers a second
// overlay on top of the first the same way, which is how an in-progress
// block application can build up its effects and discard them wholesale
// on a VM fault or verification failure.
type Cached struct {
	DAO
}

// NewCached wraps d with a staging layer.
func NewCached(d DAO) *Cached {
	var store storage.Store
	var cfg daoConfig
	if dp, ok := d.(daoProvider); ok {
		store = dp.getStore()
		cfg = dp.getConfig()
	}
	inner := &Simple{
		Store:             storage.NewMemCachedStore(store),
		stateRootInHeader: cfg.stateRootInHeader,
		p2pSigExtensions:  cfg.p2pSigExtensions,
		storagePrefix:     cfg.storagePrefix,
	}
	return &Cached{DAO: inner}
}

func (c *Cached) getStore() storage.Store {
	if dp, ok := c.DAO.(daoProvider); ok {
		return dp.getStore()
	}
	return nil
}

func (c *Cached) getConfig() daoConfig {
	if dp, ok := c.DAO.(daoProvider); ok {
		return dp.getConfig()
	}
	return daoConfig{}
}
