package deconv

import (
	"math"

	"github.com/524D/mzdecon/internal/peakset"
)

// maxQuickCharge bounds the charge table of QuickCharge
const maxQuickCharge = 1000

// quickChargeWindow is the widest m/z gap that is inspected around the seed
const quickChargeWindow = 1.1

// QuickCharge returns, in ascending order, the charge states in
// [minCharge, maxCharge] that are supported by the spacing between the peak
// at index and its neighbours (Hoopmann et al., QuickCharge). Neighbours
// below a quarter of the seed intensity are ignored, as are gaps whose
// reciprocal is not close to an integer.
func QuickCharge(ps *peakset.PeakSet, index, minCharge, maxCharge int) ([]int, error) {
	if maxCharge >= maxQuickCharge || minCharge < 0 {
		return nil, ErrChargeOutOfRange
	}
	if index < 0 || index >= ps.Len() {
		return nil, ErrPeakIndex
	}
	var found [maxQuickCharge]bool

	seed := ps.At(index)
	minIntensity := seed.Intensity / 4

	mark := func(diff float64) error {
		if diff == 0 {
			return ErrDuplicatePeakMz
		}
		raw := 1 / diff
		charge := int(math.Round(raw))
		remain := raw - math.Floor(raw)
		if remain > 0.2 && remain < 0.8 {
			return nil
		}
		if charge >= minCharge && charge <= maxCharge {
			found[charge] = true
		}
		return nil
	}

	for j := index + 1; j < ps.Len(); j++ {
		p := ps.At(j)
		diff := p.Mz - seed.Mz
		if diff > quickChargeWindow {
			break
		}
		if p.Intensity < minIntensity {
			continue
		}
		if err := mark(diff); err != nil {
			return nil, err
		}
	}
	for j := index - 1; j >= 0; j-- {
		p := ps.At(j)
		diff := seed.Mz - p.Mz
		if diff > quickChargeWindow {
			break
		}
		if p.Intensity < minIntensity {
			continue
		}
		if err := mark(diff); err != nil {
			return nil, err
		}
	}

	var charges []int
	for c := minCharge; c <= maxCharge; c++ {
		if found[c] {
			charges = append(charges, c)
		}
	}
	return charges, nil
}
