package deconv

import "github.com/524D/mzdecon/internal/averagine"

// Config holds the search and fitting parameters of a Collection
type Config struct {
	ChargeRange      [2]int  // signed, e.g. {1, 8} or {-1, -4}
	ErrorTolerance   float64 // relative m/z error, 2e-5 is 20 ppm
	ChargeCarrier    float64
	TruncateAfter    float64 // cumulative abundance at which envelopes are cut
	IgnoreBelow      float64 // drop isotope peaks with a lower relative abundance
	LeftSearchLimit  int
	RightSearchLimit int
	Recalibrate      bool // also try seeds shifted onto nearby peaks
	UseQuickCharge   bool

	UseSubtraction     bool
	ScaleMethod        averagine.ScaleMethod
	MergeIsobaricPeaks bool
	MinimumIntensity   float64 // peaks below this count as absent
}

// DefaultConfig returns parameters suitable for peptide precursors
func DefaultConfig() Config {
	return Config{
		ChargeRange:        [2]int{1, 8},
		ErrorTolerance:     2e-5,
		ChargeCarrier:      averagine.ProtonMass,
		TruncateAfter:      0.95,
		IgnoreBelow:        0,
		LeftSearchLimit:    3,
		RightSearchLimit:   0,
		Recalibrate:        false,
		UseQuickCharge:     false,
		UseSubtraction:     true,
		ScaleMethod:        averagine.ScaleSum,
		MergeIsobaricPeaks: true,
		MinimumIntensity:   5,
	}
}

// ChargeRangeFrom converts a configured charge range to the fixed pair
// used by Config. It fails unless exactly two bounds are given, not both zero.
func ChargeRangeFrom(r []int) ([2]int, error) {
	if len(r) != 2 || (r[0] == 0 && r[1] == 0) {
		return [2]int{}, ErrInvalidChargeRange
	}
	return [2]int{r[0], r[1]}, nil
}
