package deconv

import (
	"github.com/524D/mzdecon/internal/averagine"
	"github.com/524D/mzdecon/internal/peakset"
)

// FitRecord is a scored isotopic envelope hypothesis. Experimental is index
// aligned with Theoretical.Peaks; placeholders fill unmatched positions.
type FitRecord struct {
	Seed         *peakset.Peak
	Score        float64
	Charge       int
	Theoretical  averagine.Envelope
	Experimental []*peakset.Peak
	MissedPeaks  int
	Data         int // index of the averagine model that produced the fit
	Flags        uint
}

// RealPeaks returns the number of matched peaks that are not placeholders
func (f *FitRecord) RealPeaks() int {
	n := 0
	for _, p := range f.Experimental {
		if p.IsReal() {
			n++
		}
	}
	return n
}

// Scorer rates how well a theoretical envelope explains the matched peaks
type Scorer interface {
	Evaluate(ps *peakset.PeakSet, experimental []*peakset.Peak,
		theoretical averagine.Envelope) float64
	Reject(fit *FitRecord) bool
}

// Selector is implemented by scorers for which a higher score is not
// necessarily better
type Selector interface {
	Better(a, b float64) bool
}

// Best returns the best scoring fit, or nil if there are none. Without a
// Selector higher scores win. Ties keep the earlier fit.
func Best(fits []*FitRecord, s Scorer) *FitRecord {
	better := func(a, b float64) bool { return a > b }
	if sel, ok := s.(Selector); ok {
		better = sel.Better
	}
	var best *FitRecord
	for _, f := range fits {
		if best == nil || better(f.Score, best.Score) {
			best = f
		}
	}
	return best
}

// Fitter evaluates a (peak, charge) hypothesis and returns the fits that
// survive rejection
type Fitter interface {
	Fit(c *Collection, peak *peakset.Peak, charge int) []*FitRecord
}

// AveragineFitter fits a single averagine model
type AveragineFitter struct {
	Model averagine.IsotopeModel
}

// Fit implements Fitter
func (f AveragineFitter) Fit(c *Collection, peak *peakset.Peak, charge int) []*FitRecord {
	fit := c.FitTheoretical(peak, charge, f.Model)
	if c.Reject(fit) {
		return nil
	}
	return []*FitRecord{fit}
}

// MultiAveragineFitter fits every model and keeps all fits that are not
// rejected; the caller ranks them. FitRecord.Data holds the model index.
type MultiAveragineFitter struct {
	Models []averagine.IsotopeModel
}

// Fit implements Fitter
func (f MultiAveragineFitter) Fit(c *Collection, peak *peakset.Peak, charge int) []*FitRecord {
	var fits []*FitRecord
	for i, m := range f.Models {
		fit := c.FitTheoretical(peak, charge, m)
		if c.Reject(fit) {
			continue
		}
		fit.Data = i
		fits = append(fits, fit)
	}
	return fits
}

// FitTheoretical matches the envelope predicted by model for (peak, charge)
// against the spectrum, scales it to the matched intensities and scores it.
func (c *Collection) FitTheoretical(peak *peakset.Peak, charge int,
	model averagine.IsotopeModel) *FitRecord {

	tid := model.IsotopicCluster(peak.Mz, charge, c.cfg.ChargeCarrier,
		c.cfg.TruncateAfter, c.cfg.IgnoreBelow)
	eid := make([]*peakset.Peak, tid.Len())
	intens := make([]float64, tid.Len())
	missed := 0
	for i, tp := range tid.Peaks {
		e := c.HasPeak(tp.Mz, c.cfg.ErrorTolerance)
		eid[i] = e
		intens[i] = e.Intensity
		if !e.IsReal() {
			missed++
		}
	}
	tid.Scale(intens, c.cfg.ScaleMethod)
	return &FitRecord{
		Seed:         peak,
		Score:        c.scorer.Evaluate(c.peaks, eid, tid),
		Charge:       charge,
		Theoretical:  tid,
		Experimental: eid,
		MissedPeaks:  missed,
	}
}

// Reject reports whether fit must be discarded: a multiply charged envelope
// supported by at most one real peak, or one the scorer rejects.
func (c *Collection) Reject(fit *FitRecord) bool {
	if abs(fit.Charge) > 1 && fit.RealPeaks() <= 1 {
		return true
	}
	return c.scorer.Reject(fit)
}
