package deconv

import (
	"math"
	"testing"

	"github.com/524D/mzdecon/internal/averagine"
	"github.com/524D/mzdecon/internal/peakset"
)

func TestFitTheoretical(t *testing.T) {
	ps := chargedTriplet()
	c := NewCollection(ps, overlapScorer{}, testConfig())
	fit := c.FitTheoretical(ps.At(0), 2, defaultTriplet)

	if fit.MissedPeaks != 0 || fit.RealPeaks() != 3 {
		t.Errorf("Expected 3 matched peaks, got missed %d real %d", fit.MissedPeaks, fit.RealPeaks())
	}
	for i, e := range fit.Experimental {
		if e != ps.At(i) {
			t.Errorf("position %d: Expected stored peak, got %+v", i, e)
		}
	}
	if math.Abs(fit.Score-2000) > 1e-9 {
		t.Errorf("Expected score 2000, got %v", fit.Score)
	}

	fit = c.FitTheoretical(ps.At(0), 3, defaultTriplet)
	if fit.MissedPeaks != 2 {
		t.Errorf("Expected 2 missed peaks at charge 3, got %d", fit.MissedPeaks)
	}
	if !c.Reject(fit) {
		t.Errorf("Expected charge 3 fit with one real peak to be rejected")
	}
}

func TestReject(t *testing.T) {
	c := NewCollection(chargedTriplet(), overlapScorer{minScore: 10}, testConfig())
	obs := &peakset.Peak{Mz: 500, Intensity: 100}
	ph := peakset.Placeholder(500.5)

	tests := []struct {
		name string
		fit  FitRecord
		want bool
	}{
		{"multiply charged single peak", FitRecord{Charge: 2, Score: 100,
			Experimental: []*peakset.Peak{obs, ph}}, true},
		{"negative multiply charged", FitRecord{Charge: -2, Score: 100,
			Experimental: []*peakset.Peak{obs, ph}}, true},
		{"singly charged single peak", FitRecord{Charge: 1, Score: 100,
			Experimental: []*peakset.Peak{obs, ph}}, false},
		{"low score", FitRecord{Charge: 1, Score: 5,
			Experimental: []*peakset.Peak{obs, obs}}, true},
		{"accepted", FitRecord{Charge: 2, Score: 50,
			Experimental: []*peakset.Peak{obs, obs}}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.Reject(&tc.fit); got != tc.want {
				t.Errorf("Expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestMultiAveragineFitter(t *testing.T) {
	ps := chargedTriplet()
	c := NewCollection(ps, overlapScorer{}, testConfig())
	f := MultiAveragineFitter{Models: []averagine.IsotopeModel{
		defaultTriplet,
		tripletModel{ratios: [3]float64{0.9, 0.05, 0.05}},
	}}
	fits := f.Fit(c, ps.At(0), 2)
	if len(fits) != 2 {
		t.Fatalf("Expected 2 fits, got %d", len(fits))
	}
	for i, fit := range fits {
		if fit.Data != i {
			t.Errorf("fit %d: Expected model index %d, got %d", i, i, fit.Data)
		}
	}
	if math.Abs(fits[1].Score-1200) > 1e-9 {
		t.Errorf("Expected score 1200 for second model, got %v", fits[1].Score)
	}
	if best := Best(fits, c.Scorer()); best != fits[0] {
		t.Errorf("Expected first model to win")
	}

	// Charge 3 leaves one real peak for every model
	if fits := f.Fit(c, ps.At(0), 3); len(fits) != 0 {
		t.Errorf("Expected no fits at charge 3, got %d", len(fits))
	}
}

type lowerIsBetter struct{ overlapScorer }

func (lowerIsBetter) Better(a, b float64) bool { return a < b }

func TestBest(t *testing.T) {
	a := &FitRecord{Score: 3}
	b := &FitRecord{Score: 1}
	tie := &FitRecord{Score: 3}
	fits := []*FitRecord{a, b, tie}

	if got := Best(fits, overlapScorer{}); got != a {
		t.Errorf("Expected highest score, earliest on tie, got %+v", got)
	}
	if got := Best(fits, lowerIsBetter{}); got != b {
		t.Errorf("Expected lowest score with a Selector, got %+v", got)
	}
	if Best(nil, overlapScorer{}) != nil {
		t.Errorf("Expected nil for no fits")
	}
}
