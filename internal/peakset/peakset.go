// Package peakset holds centroided peaks of a single spectrum, sorted by m/z,
// with tolerant nearest-peak and range lookups.
package peakset

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Peak is a centroided peak. Only Intensity changes after a PeakSet is built.
type Peak struct {
	Mz                 float64
	Intensity          float64
	SignalToNoise      float64
	Index              int // position in the m/z ordered PeakSet
	FullWidthAtHalfMax float64
	Area               float64
	LeftWidth          float64
	RightWidth         float64
}

// Placeholder returns a stand-in peak at mz, used where no real peak
// satisfies a query.
func Placeholder(mz float64) *Peak {
	return &Peak{
		Mz:            mz,
		Intensity:     1.0,
		SignalToNoise: 1.0,
		Index:         0,
		Area:          1.0,
	}
}

// IsReal reports whether p carries signal. Placeholders never do.
func (p *Peak) IsReal() bool {
	return p.Mz > 1 && p.Intensity > 1
}

// PeakSet is a collection of peaks in ascending m/z order
type PeakSet struct {
	peaks []Peak
}

// New copies peaks into a PeakSet, sorts them by m/z and sets Index to the
// sorted position.
func New(peaks []Peak) *PeakSet {
	ps := &PeakSet{peaks: make([]Peak, len(peaks))}
	copy(ps.peaks, peaks)
	sort.SliceStable(ps.peaks,
		func(i, j int) bool { return ps.peaks[i].Mz < ps.peaks[j].Mz })
	for i := range ps.peaks {
		ps.peaks[i].Index = i
	}
	return ps
}

// Len returns the number of peaks
func (ps *PeakSet) Len() int {
	return len(ps.peaks)
}

// At returns the peak at sorted position i. The pointer refers to the peak
// stored in the set, so intensity changes are visible to later queries.
func (ps *PeakSet) At(i int) *Peak {
	return &ps.peaks[i]
}

// EstimateSignalToNoise sets SignalToNoise of every peak to its intensity
// divided by the median intensity of the spectrum.
// Centroided input carries no noise estimate, the median is a cheap substitute.
func (ps *PeakSet) EstimateSignalToNoise() {
	if len(ps.peaks) == 0 {
		return
	}
	intens := make([]float64, len(ps.peaks))
	for i, p := range ps.peaks {
		intens[i] = p.Intensity
	}
	sort.Float64s(intens)
	noise := stat.Quantile(0.5, stat.Empirical, intens, nil)
	if noise <= 0 {
		noise = 1.0
	}
	for i := range ps.peaks {
		ps.peaks[i].SignalToNoise = ps.peaks[i].Intensity / noise
	}
}

// BetweenBounds returns the half-open index interval [start, end) of peaks
// with m1 <= m/z <= m2.
func (ps *PeakSet) BetweenBounds(m1, m2 float64) (int, int) {
	start := sort.Search(len(ps.peaks), func(i int) bool { return ps.peaks[i].Mz >= m1 })
	end := sort.Search(len(ps.peaks), func(i int) bool { return ps.peaks[i].Mz > m2 })
	if end < start {
		end = start
	}
	return start, end
}

// Between returns the peaks with m1 <= m/z <= m2 in m/z order
func (ps *PeakSet) Between(m1, m2 float64) []*Peak {
	start, end := ps.BetweenBounds(m1, m2)
	out := make([]*Peak, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, &ps.peaks[i])
	}
	return out
}

// HasPeak returns the peak nearest to mz whose relative error
// |peak.Mz-mz|/mz is within tolerance, or nil if there is none.
func (ps *PeakSet) HasPeak(mz, tolerance float64) *Peak {
	n := len(ps.peaks)
	if n == 0 {
		return nil
	}
	i := sort.Search(n, func(i int) bool { return ps.peaks[i].Mz >= mz })
	best := -1
	bestErr := math.Inf(1)
	// Only the neighbours around the insertion point can be nearest
	for _, j := range [2]int{i - 1, i} {
		if j < 0 || j >= n {
			continue
		}
		e := math.Abs(ps.peaks[j].Mz-mz) / mz
		if e <= tolerance && e < bestErr {
			best = j
			bestErr = e
		}
	}
	if best < 0 {
		return nil
	}
	return &ps.peaks[best]
}
