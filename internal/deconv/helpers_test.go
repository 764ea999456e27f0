package deconv

import (
	"github.com/524D/mzdecon/internal/averagine"
	"github.com/524D/mzdecon/internal/peakset"
)

// newTestSet builds a peak set from (m/z, intensity) pairs
func newTestSet(pairs ...[2]float64) *peakset.PeakSet {
	peaks := make([]peakset.Peak, len(pairs))
	for i, p := range pairs {
		peaks[i] = peakset.Peak{Mz: p[0], Intensity: p[1], SignalToNoise: p[1] / 10}
	}
	return peakset.New(peaks)
}

// tripletModel returns a fixed three peak envelope
type tripletModel struct {
	ratios [3]float64
}

func (m tripletModel) IsotopicCluster(mz float64, charge int, _ float64,
	_ float64, _ float64) averagine.Envelope {
	shift := averagine.IsotopicShift(charge)
	env := averagine.Envelope{MonoisotopicMz: mz}
	for i, r := range m.ratios {
		env.Peaks = append(env.Peaks, averagine.TheoreticalPeak{
			Mz:        mz + float64(i)*shift,
			Intensity: r,
		})
	}
	return env
}

var defaultTriplet = tripletModel{ratios: [3]float64{0.5, 0.3, 0.2}}

// overlapScorer sums, over real peaks, the part of the theoretical
// intensity that is explained by the observed intensity
type overlapScorer struct {
	minScore float64
}

func (s overlapScorer) Evaluate(_ *peakset.PeakSet, experimental []*peakset.Peak,
	theoretical averagine.Envelope) float64 {
	var score float64
	for i, e := range experimental {
		if !e.IsReal() {
			continue
		}
		score += min(e.Intensity, theoretical.Peaks[i].Intensity)
	}
	return score
}

func (s overlapScorer) Reject(fit *FitRecord) bool {
	return fit.Score < s.minScore
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ChargeRange = [2]int{1, 3}
	cfg.LeftSearchLimit = 1
	cfg.RightSearchLimit = 1
	cfg.MinimumIntensity = 0
	return cfg
}

// chargedTriplet returns peaks of a charge 2 envelope at 500.0
func chargedTriplet() *peakset.PeakSet {
	return newTestSet(
		[2]float64{500.0, 1000},
		[2]float64{500.5017, 600},
		[2]float64{501.0033, 400},
	)
}
