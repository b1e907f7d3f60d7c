package runtime

import "github.com/EricFan2002/GTOJsonExplorer/pkg/domain"

// ActionCache memoizes the action list of each address. The first list
// stored for an address wins, so navigation buttons keep a stable order for
// the whole session even when later fetches disagree.
type ActionCache struct {
	actions map[string][]string
}

// NewActionCache creates an empty cache.
func NewActionCache() *ActionCache {
	return &ActionCache{actions: make(map[string][]string)}
}

// Get returns the cached actions of addr.
func (c *ActionCache) Get(addr domain.Address) ([]string, bool) {
	a, ok := c.actions[addr.Key()]
	if !ok {
		return nil, false
	}
	return append([]string(nil), a...), true
}

// Set stores actions unless addr already has an entry. It reports whether
// the cache changed.
func (c *ActionCache) Set(addr domain.Address, actions []string) bool {
	key := addr.Key()
	if _, ok := c.actions[key]; ok {
		return false
	}
	c.actions[key] = append([]string{}, actions...)
	return true
}

// Reconcile stores fetched if addr has no entry yet and returns the list
// that wins.
func (c *ActionCache) Reconcile(addr domain.Address, fetched []string) []string {
	c.Set(addr, fetched)
	a, _ := c.Get(addr)
	return a
}
