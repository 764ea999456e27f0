package deconv

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/524D/mzdecon/internal/averagine"
)

// EnvelopePair is one matched (m/z, intensity) position of an envelope
type EnvelopePair struct {
	Mz        float64
	Intensity float64
}

// DeconvolutedPeak is an isotopic envelope collapsed to its monoisotopic
// neutral mass
type DeconvolutedPeak struct {
	NeutralMass        float64
	Intensity          float64
	Charge             int
	SignalToNoise      float64
	FullWidthAtHalfMax float64
	MostAbundantMass   float64
	AverageMass        float64
	MonoisotopicMz     float64
	A0A2Ratio          float64 // theoretical isotope 0 over isotope 2, 0 if unknown
	PeakIndex          int     // peak set index of the first real matched peak, -1 if none
	Envelope           []EnvelopePair
	Fit                *FitRecord
}

// Build reduces an accepted fit to a DeconvolutedPeak. Statistics are taken
// over real matched peaks only. Without real peaks the averages are 0 and
// the masses fall back to the monoisotopic neutral mass.
func Build(fit *FitRecord, chargeCarrier float64) *DeconvolutedPeak {
	z := fit.Charge
	dp := &DeconvolutedPeak{
		Charge:         z,
		MonoisotopicMz: fit.Theoretical.MonoisotopicMz,
		NeutralMass:    averagine.NeutralMass(fit.Theoretical.MonoisotopicMz, z, chargeCarrier),
		PeakIndex:      -1,
		Envelope:       make([]EnvelopePair, len(fit.Experimental)),
		Fit:            fit,
	}

	var mzs, intens, snrs, fwhms []float64
	mostAbundant := -1
	for i, p := range fit.Experimental {
		dp.Envelope[i] = EnvelopePair{Mz: p.Mz, Intensity: p.Intensity}
		if !p.IsReal() {
			continue
		}
		if dp.PeakIndex < 0 {
			dp.PeakIndex = p.Index
		}
		if mostAbundant < 0 || p.Intensity > intens[mostAbundant] {
			mostAbundant = len(intens)
		}
		mzs = append(mzs, p.Mz)
		intens = append(intens, p.Intensity)
		snrs = append(snrs, p.SignalToNoise)
		fwhms = append(fwhms, p.FullWidthAtHalfMax)
	}

	if n := fit.Theoretical.Len(); n >= 3 && fit.Theoretical.Peaks[2].Intensity != 0 {
		dp.A0A2Ratio = fit.Theoretical.Peaks[0].Intensity / fit.Theoretical.Peaks[2].Intensity
	}

	if len(intens) == 0 {
		dp.MostAbundantMass = dp.NeutralMass
		dp.AverageMass = dp.NeutralMass
		return dp
	}
	dp.Intensity = floats.Sum(intens)
	dp.SignalToNoise = stat.Mean(snrs, nil)
	dp.FullWidthAtHalfMax = stat.Mean(fwhms, nil)
	dp.MostAbundantMass = averagine.NeutralMass(mzs[mostAbundant], z, chargeCarrier)
	dp.AverageMass = averagine.NeutralMass(stat.Mean(mzs, nil), z, chargeCarrier)
	return dp
}
