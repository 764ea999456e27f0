// Package scoring provides isotopic envelope fit scores for package deconv.
package scoring

import (
	"errors"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/524D/mzdecon/internal/averagine"
	"github.com/524D/mzdecon/internal/deconv"
	"github.com/524D/mzdecon/internal/peakset"
)

var ErrUnknownScorer = errors.New("unknown scorer")

// New returns the scorer with the given name. threshold is the minimum score
// for MSDeconV and the maximum score for least squares; 0 selects the default.
func New(name string, threshold float64) (deconv.Scorer, error) {
	switch strings.ToLower(name) {
	case `msdeconv`, ``:
		s := NewMSDeconV()
		if threshold != 0 {
			s.MinimumScore = threshold
		}
		return s, nil
	case `least-squares`, `leastsquares`:
		s := NewLeastSquares()
		if threshold != 0 {
			s.MaximumScore = threshold
		}
		return s, nil
	}
	return nil, ErrUnknownScorer
}

// MSDeconV is the score of Liu et al. (MS-Deconv): the sum over isotope
// positions of sqrt(theoretical intensity) weighted by m/z accuracy and
// abundance agreement. Higher is better.
type MSDeconV struct {
	MassErrorTolerance float64 // Da
	MinimumScore       float64
}

// NewMSDeconV returns an MSDeconV scorer with the usual defaults
func NewMSDeconV() *MSDeconV {
	return &MSDeconV{MassErrorTolerance: 0.02, MinimumScore: 10}
}

func (s *MSDeconV) massAccuracy(obs, theo float64) float64 {
	e := math.Abs(obs - theo)
	if e > s.MassErrorTolerance {
		return 0
	}
	return 1 - e/s.MassErrorTolerance
}

func abundanceAgreement(obs, theo float64) float64 {
	if obs <= 0 {
		return 0
	}
	if obs < theo {
		d := (theo - obs) / obs
		if d <= 1 {
			return 1 - d
		}
		return 0
	}
	d := (obs - theo) / obs
	if d <= 1 {
		return math.Sqrt(1 - d)
	}
	return 0
}

// Evaluate implements deconv.Scorer
func (s *MSDeconV) Evaluate(_ *peakset.PeakSet, experimental []*peakset.Peak,
	theoretical averagine.Envelope) float64 {
	var score float64
	for i, e := range experimental {
		t := theoretical.Peaks[i]
		score += math.Sqrt(t.Intensity) *
			s.massAccuracy(e.Mz, t.Mz) *
			abundanceAgreement(e.Intensity, t.Intensity)
	}
	return score
}

// Reject implements deconv.Scorer
func (s *MSDeconV) Reject(fit *deconv.FitRecord) bool {
	return fit.Score < s.MinimumScore
}

// LeastSquares is the sum of squared differences between the max-normalized
// experimental and theoretical intensities, relative to the sum of squared
// theoretical intensities. Lower is better.
type LeastSquares struct {
	MaximumScore float64
}

// NewLeastSquares returns a least squares scorer that rejects scores above 1
func NewLeastSquares() *LeastSquares {
	return &LeastSquares{MaximumScore: 1.0}
}

// Evaluate implements deconv.Scorer
func (s *LeastSquares) Evaluate(_ *peakset.PeakSet, experimental []*peakset.Peak,
	theoretical averagine.Envelope) float64 {
	n := len(experimental)
	if n == 0 {
		return math.Inf(1)
	}
	obs := make([]float64, n)
	theo := make([]float64, n)
	for i, e := range experimental {
		obs[i] = e.Intensity
		theo[i] = theoretical.Peaks[i].Intensity
	}
	obsMax := floats.Max(obs)
	theoMax := floats.Max(theo)
	if obsMax == 0 || theoMax == 0 {
		return math.Inf(1)
	}
	floats.Scale(1/obsMax, obs)
	floats.Scale(1/theoMax, theo)
	sst := floats.Dot(theo, theo)
	floats.Sub(obs, theo)
	return floats.Dot(obs, obs) / sst
}

// Reject implements deconv.Scorer
func (s *LeastSquares) Reject(fit *deconv.FitRecord) bool {
	return fit.Score > s.MaximumScore
}

// Better implements deconv.Selector
func (s *LeastSquares) Better(a, b float64) bool {
	return a < b
}
