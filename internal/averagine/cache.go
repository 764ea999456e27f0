package averagine

import (
	"math"
	"sync"
)

type cacheKey struct {
	mz            float64
	charge        int
	chargeCarrier float64
	truncateAfter float64
	ignoreBelow   float64
}

// Cache memoizes the envelopes of a model. Requests are rounded to
// Truncate m/z units; the cached shape is shifted to the requested m/z.
// A Cache may be shared between goroutines.
type Cache struct {
	Model    IsotopeModel
	Truncate float64

	mu      sync.Mutex
	entries map[cacheKey]Envelope
}

// NewCache wraps model with a cache that rounds m/z to whole units
func NewCache(model IsotopeModel) *Cache {
	return &Cache{
		Model:    model,
		Truncate: 1.0,
		entries:  make(map[cacheKey]Envelope),
	}
}

// IsotopicCluster implements IsotopeModel
func (c *Cache) IsotopicCluster(mz float64, charge int, chargeCarrier float64,
	truncateAfter float64, ignoreBelow float64) Envelope {

	key := cacheKey{
		mz:            math.Round(mz/c.Truncate) * c.Truncate,
		charge:        charge,
		chargeCarrier: chargeCarrier,
		truncateAfter: truncateAfter,
		ignoreBelow:   ignoreBelow,
	}
	c.mu.Lock()
	env, ok := c.entries[key]
	if !ok {
		env = c.Model.IsotopicCluster(key.mz, charge, chargeCarrier,
			truncateAfter, ignoreBelow)
		c.entries[key] = env
	}
	c.mu.Unlock()

	out := env.Clone()
	delta := mz - env.MonoisotopicMz
	for i := range out.Peaks {
		out.Peaks[i].Mz += delta
	}
	out.MonoisotopicMz = mz
	return out
}

// Len returns the number of cached envelopes
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
