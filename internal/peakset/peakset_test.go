package peakset

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testPeaks() *PeakSet {
	return New([]Peak{
		{Mz: 501.0, Intensity: 300},
		{Mz: 500.0, Intensity: 1000},
		{Mz: 500.5, Intensity: 600},
		{Mz: 650.25, Intensity: 50},
	})
}

func TestNewSortsAndIndexes(t *testing.T) {
	ps := testPeaks()
	var got []float64
	for i := 0; i < ps.Len(); i++ {
		if ps.At(i).Index != i {
			t.Errorf("peak %d has index %d", i, ps.At(i).Index)
		}
		got = append(got, ps.At(i).Mz)
	}
	want := []float64{500.0, 500.5, 501.0, 650.25}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sorted m/z mismatch (-want +got):\n%s", diff)
	}
}

func TestHasPeak(t *testing.T) {
	ps := testPeaks()
	tests := []struct {
		name   string
		mz     float64
		tol    float64
		wantMz float64
		found  bool
	}{
		{"exact", 500.5, 1e-5, 500.5, true},
		{"within ppm", 500.504, 1e-5, 500.5, true},
		{"outside ppm", 500.51, 1e-5, 0, false},
		{"nearest of two", 500.26, 1e-3, 500.5, true},
		{"below range", 10, 1e-5, 0, false},
		{"above range", 900, 1e-5, 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := ps.HasPeak(tc.mz, tc.tol)
			if !tc.found {
				if p != nil {
					t.Errorf("Expected no peak, got %+v", *p)
				}
				return
			}
			if p == nil {
				t.Fatalf("Expected peak at %f, got nil", tc.wantMz)
			}
			if p.Mz != tc.wantMz {
				t.Errorf("Expected peak at %f, got %f", tc.wantMz, p.Mz)
			}
		})
	}
}

func TestHasPeakEmpty(t *testing.T) {
	ps := New(nil)
	if p := ps.HasPeak(500, 1); p != nil {
		t.Errorf("Expected nil from empty set, got %+v", *p)
	}
}

func TestBetween(t *testing.T) {
	ps := testPeaks()
	start, end := ps.BetweenBounds(500.0, 501.0)
	if start != 0 || end != 3 {
		t.Errorf("Expected bounds [0,3), got [%d,%d)", start, end)
	}
	peaks := ps.Between(500.2, 600)
	if len(peaks) != 2 || peaks[0].Mz != 500.5 || peaks[1].Mz != 501.0 {
		t.Errorf("unexpected peaks between 500.2 and 600: %v", peaks)
	}
	start, end = ps.BetweenBounds(700, 600)
	if start != end {
		t.Errorf("Expected empty interval for inverted bounds, got [%d,%d)", start, end)
	}
	// Pointers refer to stored peaks
	peaks[0].Intensity = 42
	if ps.At(1).Intensity != 42 {
		t.Errorf("Between does not return stored peaks")
	}
}

func TestPlaceholderIsNotReal(t *testing.T) {
	for _, mz := range []float64{0.5, 1, 2, 500, 5000} {
		p := Placeholder(mz)
		if p.IsReal() {
			t.Errorf("placeholder at %f classified as real", mz)
		}
		if p.Mz != mz || p.Intensity != 1 || p.SignalToNoise != 1 || p.Area != 1 {
			t.Errorf("unexpected placeholder fields %+v", *p)
		}
	}
	if !(&Peak{Mz: 500, Intensity: 1.5}).IsReal() {
		t.Errorf("peak with intensity 1.5 should be real")
	}
	if (&Peak{Mz: 0.9, Intensity: 1000}).IsReal() {
		t.Errorf("peak with m/z 0.9 should not be real")
	}
}

func TestEstimateSignalToNoise(t *testing.T) {
	ps := New([]Peak{
		{Mz: 100, Intensity: 10},
		{Mz: 200, Intensity: 20},
		{Mz: 300, Intensity: 400},
	})
	ps.EstimateSignalToNoise()
	want := []float64{0.5, 1, 20}
	for i, w := range want {
		if got := ps.At(i).SignalToNoise; got != w {
			t.Errorf("peak %d: Expected s/n %f, got %f", i, w, got)
		}
	}
}
