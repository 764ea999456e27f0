package deconv

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/524D/mzdecon/internal/averagine"
	"github.com/524D/mzdecon/internal/peakset"
)

func TestBuild(t *testing.T) {
	ps := chargedTriplet()
	c := NewCollection(ps, overlapScorer{}, testConfig())
	fit := c.FitTheoretical(ps.At(0), 2, defaultTriplet)
	dp := Build(fit, averagine.ProtonMass)

	wantMass := 1000 - 2*averagine.ProtonMass
	if math.Abs(dp.NeutralMass-wantMass) > 1e-9 {
		t.Errorf("Expected neutral mass %v, got %v", wantMass, dp.NeutralMass)
	}
	if dp.Intensity != 2000 {
		t.Errorf("Expected intensity 2000, got %v", dp.Intensity)
	}
	if math.Abs(dp.A0A2Ratio-2.5) > 1e-9 {
		t.Errorf("Expected A0/A2 2.5, got %v", dp.A0A2Ratio)
	}
	if dp.PeakIndex != 0 || dp.Charge != 2 || dp.MonoisotopicMz != 500.0 {
		t.Errorf("Unexpected peak %+v", dp)
	}
	if math.Abs(dp.MostAbundantMass-wantMass) > 1e-9 {
		t.Errorf("Expected most abundant mass %v, got %v", wantMass, dp.MostAbundantMass)
	}
	if dp.AverageMass <= dp.NeutralMass {
		t.Errorf("Expected average mass above monoisotopic, got %v", dp.AverageMass)
	}
	wantSNR := (100.0 + 60 + 40) / 3
	if math.Abs(dp.SignalToNoise-wantSNR) > 1e-9 {
		t.Errorf("Expected S/N %v, got %v", wantSNR, dp.SignalToNoise)
	}
	want := []EnvelopePair{{500.0, 1000}, {500.5017, 600}, {501.0033, 400}}
	if diff := cmp.Diff(want, dp.Envelope); diff != "" {
		t.Errorf("envelope mismatch (-want +got):\n%s", diff)
	}
	if dp.Fit != fit {
		t.Errorf("Expected fit to be kept")
	}
}

func TestBuildWithoutRealPeaks(t *testing.T) {
	env := defaultTriplet.IsotopicCluster(500, 2, averagine.ProtonMass, 1, 0)
	fit := &FitRecord{
		Charge:      2,
		Theoretical: env,
		Experimental: []*peakset.Peak{
			peakset.Placeholder(env.Peaks[0].Mz),
			peakset.Placeholder(env.Peaks[1].Mz),
			peakset.Placeholder(env.Peaks[2].Mz),
		},
		MissedPeaks: 3,
	}
	dp := Build(fit, averagine.ProtonMass)
	got := []float64{dp.Intensity, dp.SignalToNoise, dp.FullWidthAtHalfMax,
		dp.MostAbundantMass, dp.AverageMass}
	want := []float64{0, 0, 0, dp.NeutralMass, dp.NeutralMass}
	if diff := cmp.Diff(want, got, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("degenerate peak mismatch (-want +got):\n%s", diff)
	}
	for _, v := range got {
		if math.IsNaN(v) {
			t.Errorf("Expected no NaN, got %v", got)
		}
	}
	if dp.PeakIndex != -1 {
		t.Errorf("Expected PeakIndex -1, got %d", dp.PeakIndex)
	}
}
