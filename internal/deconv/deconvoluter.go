package deconv

import "github.com/524D/mzdecon/internal/peakset"

// Deconvoluter combines a Collection with a Fitter. The candidate search and
// subtraction are shared; only the fitting strategy differs.
type Deconvoluter struct {
	*Collection
	Fitter Fitter
}

// New creates a Deconvoluter for one spectrum
func New(ps *peakset.PeakSet, scorer Scorer, fitter Fitter, cfg Config) *Deconvoluter {
	return &Deconvoluter{
		Collection: NewCollection(ps, scorer, cfg),
		Fitter:     fitter,
	}
}

// FitPeak returns all accepted fits of every candidate hypothesis for seed
func (d *Deconvoluter) FitPeak(seed *peakset.Peak) ([]*FitRecord, error) {
	cfg := d.cfg
	cands, err := d.Candidates(seed, cfg.ChargeRange, cfg.ErrorTolerance,
		cfg.LeftSearchLimit, cfg.RightSearchLimit, cfg.Recalibrate)
	if err != nil {
		return nil, err
	}
	var fits []*FitRecord
	for _, cand := range cands {
		fits = append(fits, d.Fitter.Fit(d.Collection, cand.Peak, cand.Charge)...)
	}
	return fits, nil
}

// DeconvolutePeak fits seed, builds the deconvoluted peak of the best fit and,
// when subtraction is enabled, removes its signal from the spectrum.
// It returns nil if no hypothesis survives.
func (d *Deconvoluter) DeconvolutePeak(seed *peakset.Peak) (*DeconvolutedPeak, error) {
	fits, err := d.FitPeak(seed)
	if err != nil {
		return nil, err
	}
	best := Best(fits, d.scorer)
	if best == nil {
		return nil, nil
	}
	dp := Build(best, d.cfg.ChargeCarrier)
	if d.cfg.UseSubtraction {
		d.Subtract(best.Theoretical, d.cfg.ErrorTolerance)
	}
	return dp, nil
}
