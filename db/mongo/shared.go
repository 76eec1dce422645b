package mongo

import "sync"

// The development slot: providers survive repeated initialisation of the
// code that builds them, so a reload does not leak a new pool each time.
var (
	sharedMx  sync.Mutex
	providers = map[string]*Provider{}
)

func shared(cfg Config, options *Options) *Provider {
	sharedMx.Lock()
	defer sharedMx.Unlock()

	if p, ok := providers[cfg.URI]; ok {
		return p
	}
	p := newProvider(cfg, options)
	providers[cfg.URI] = p
	return p
}

// ResetShared empties the development slot. Clients already handed out stay open.
func ResetShared() {
	sharedMx.Lock()
	defer sharedMx.Unlock()
	providers = map[string]*Provider{}
}
