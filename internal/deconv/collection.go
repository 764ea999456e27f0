package deconv

import (
	"math"
	"sort"

	"github.com/524D/mzdecon/internal/averagine"
	"github.com/524D/mzdecon/internal/peakset"
)

// Intensity assigned to a peak that has been consumed by subtraction
const consumedIntensity = 1.0

// A subtraction that removes more than this fraction of a peak consumes it
const consumedFraction = 0.7

// Deconvoluted peaks closer than this (Da) with the same charge are merged
const isobaricMassTol = 1e-3

type sliceKey struct {
	m1, m2 float64
}

// Collection owns the peaks of a single spectrum together with the scorer
// and the parameters used to fit them.
type Collection struct {
	peaks  *peakset.PeakSet
	scorer Scorer
	cfg    Config
	slices map[sliceKey][]*peakset.Peak
}

// NewCollection creates a Collection. The peak set is modified in place by
// Subtract.
func NewCollection(ps *peakset.PeakSet, scorer Scorer, cfg Config) *Collection {
	return &Collection{
		peaks:  ps,
		scorer: scorer,
		cfg:    cfg,
		slices: make(map[sliceKey][]*peakset.Peak),
	}
}

// Peaks returns the underlying peak set
func (c *Collection) Peaks() *peakset.PeakSet {
	return c.peaks
}

// Config returns the parameters of the collection
func (c *Collection) Config() Config {
	return c.cfg
}

// Scorer returns the fit scorer
func (c *Collection) Scorer() Scorer {
	return c.scorer
}

// HasPeak returns the peak nearest to mz within tolerance. If there is none,
// or the nearest peak is weaker than the minimum intensity, a new placeholder
// at mz is returned. The result is never nil.
func (c *Collection) HasPeak(mz, tolerance float64) *peakset.Peak {
	p := c.peaks.HasPeak(mz, tolerance)
	if p == nil || p.Intensity < c.cfg.MinimumIntensity {
		return peakset.Placeholder(mz)
	}
	return p
}

// realPeak is HasPeak for callers that need actual signal; it returns nil
// instead of a placeholder.
func (c *Collection) realPeak(mz, tolerance float64) *peakset.Peak {
	p := c.HasPeak(mz, tolerance)
	if !p.IsReal() {
		return nil
	}
	return p
}

// Between returns the peaks with m1 <= m/z <= m2. Results are cached per
// exact bound pair for the lifetime of the collection.
func (c *Collection) Between(m1, m2 float64) []*peakset.Peak {
	key := sliceKey{m1, m2}
	if s, ok := c.slices[key]; ok {
		return s
	}
	s := c.peaks.Between(m1, m2)
	c.slices[key] = s
	return s
}

// Subtract removes the (scaled) theoretical intensities of env from the
// matching peaks. A peak that would become negative, or loses more than 70%
// of its intensity, is set to intensity 1. Placeholders are never touched.
func (c *Collection) Subtract(env averagine.Envelope, tolerance float64) {
	for _, tp := range env.Peaks {
		p := c.peaks.HasPeak(tp.Mz, tolerance)
		if p == nil {
			continue
		}
		before := p.Intensity
		p.Intensity -= tp.Intensity
		if p.Intensity < 0 || tp.Intensity > before*consumedFraction {
			p.Intensity = consumedIntensity
		}
	}
}

// MergeIsobaric sorts peaks by neutral mass and sums the intensities of
// consecutive peaks with the same charge whose mass is within 1e-3 Da of
// the preceding peak. Chains merge transitively. The input peaks are not
// modified.
func (c *Collection) MergeIsobaric(peaks []*DeconvolutedPeak) []*DeconvolutedPeak {
	if len(peaks) == 0 {
		return nil
	}
	sorted := make([]*DeconvolutedPeak, len(peaks))
	copy(sorted, peaks)
	sort.SliceStable(sorted,
		func(i, j int) bool { return sorted[i].NeutralMass < sorted[j].NeutralMass })

	merged := make([]*DeconvolutedPeak, 0, len(sorted))
	cur := *sorted[0]
	prevMass := cur.NeutralMass
	for _, p := range sorted[1:] {
		if p.Charge == cur.Charge && math.Abs(p.NeutralMass-prevMass) < isobaricMassTol {
			cur.Intensity += p.Intensity
		} else {
			m := cur
			merged = append(merged, &m)
			cur = *p
		}
		prevMass = p.NeutralMass
	}
	merged = append(merged, &cur)
	return merged
}
