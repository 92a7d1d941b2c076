package property

import "sync"

// accessorCache maps keys to discovered accessors. Inserts are set-if-absent;
// entries are never replaced.
type accessorCache struct {
	m sync.Map // cacheKey -> accessor
}

func (c *accessorCache) load(k cacheKey) (accessor, bool) {
	v, ok := c.m.Load(k)
	if !ok {
		return nil, false
	}
	return v.(accessor), true
}

// store inserts a unless k is already present and returns the entry that
// ended up cached.
func (c *accessorCache) store(k cacheKey, a accessor) accessor {
	v, _ := c.m.LoadOrStore(k, a)
	return v.(accessor)
}

func (c *accessorCache) clear() { c.m.Clear() }

func (c *accessorCache) len() int { return syncMapLen(&c.m) }

// absenceCache records keys for which discovery found nothing.
type absenceCache struct {
	m sync.Map // cacheKey -> struct{}
}

func (c *absenceCache) has(k cacheKey) bool {
	_, ok := c.m.Load(k)
	return ok
}

func (c *absenceCache) add(k cacheKey) { c.m.LoadOrStore(k, struct{}{}) }

func (c *absenceCache) clear() { c.m.Clear() }

func (c *absenceCache) len() int { return syncMapLen(&c.m) }

func syncMapLen(m *sync.Map) int {
	n := 0
	m.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
