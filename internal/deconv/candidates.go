package deconv

import (
	"math"

	"github.com/524D/mzdecon/internal/averagine"
	"github.com/524D/mzdecon/internal/peakset"
)

// Candidate is a hypothesis that Peak is the monoisotopic peak of an
// envelope with the given charge
type Candidate struct {
	Peak   *peakset.Peak
	Charge int
}

// Candidates are identified by m/z and charge, so placeholders created
// separately for the same m/z are the same hypothesis.
type candidateKey struct {
	mz     uint64
	charge int
}

type candidateSet struct {
	seen  map[candidateKey]struct{}
	items []Candidate
}

func newCandidateSet() *candidateSet {
	return &candidateSet{seen: make(map[candidateKey]struct{})}
}

func (s *candidateSet) add(p *peakset.Peak, charge int) {
	k := candidateKey{math.Float64bits(p.Mz), charge}
	if _, ok := s.seen[k]; ok {
		return
	}
	s.seen[k] = struct{}{}
	s.items = append(s.items, Candidate{Peak: p, Charge: charge})
}

// Candidates returns the unique (peak, charge) hypotheses for seed: the seed
// itself at every charge, real peaks found walking isotope spacings to the
// left and right, and with recalibrate set, placeholders for seeds shifted
// onto peaks found with a doubled tolerance. The result is in insertion order.
func (c *Collection) Candidates(seed *peakset.Peak, chargeRange [2]int,
	errorTolerance float64, leftLimit, rightLimit int,
	recalibrate bool) ([]Candidate, error) {

	charges, err := c.charges(seed, chargeRange)
	if err != nil {
		return nil, err
	}
	set := newCandidateSet()
	for _, charge := range charges {
		set.add(seed, charge)
		shift := averagine.IsotopicShift(charge)

		for step := 1; step < leftLimit; step++ {
			prev := c.realPeak(seed.Mz-shift*float64(step), errorTolerance)
			if prev == nil {
				continue
			}
			set.add(prev, charge)
			if recalibrate {
				for _, p := range c.previousPutative(seed.Mz, charge, step, 2*errorTolerance) {
					set.add(p, charge)
				}
			}
		}

		for step := 1; step < rightLimit; step++ {
			next := c.realPeak(seed.Mz+shift*float64(step), errorTolerance)
			if next == nil {
				continue
			}
			set.add(next, charge)
			if recalibrate {
				for _, p := range c.nextPutative(seed.Mz, charge, step, 2*errorTolerance) {
					set.add(p, charge)
				}
			}
		}

		if recalibrate {
			for step := 0; step < 2; step++ {
				for _, p := range c.nextPutative(seed.Mz, charge, step, 2*errorTolerance) {
					set.add(p, charge)
				}
			}
		}
	}
	return set.items, nil
}

// charges returns the charge states to test for seed
func (c *Collection) charges(seed *peakset.Peak, chargeRange [2]int) ([]int, error) {
	it, err := NewChargeIterator(chargeRange[0], chargeRange[1])
	if err != nil {
		return nil, err
	}
	if !c.cfg.UseQuickCharge || !c.isStored(seed) {
		return it.Charges(), nil
	}
	lower, upper := abs(chargeRange[0]), abs(chargeRange[1])
	if lower > upper {
		lower, upper = upper, lower
	}
	if lower == 0 {
		lower = 1
	}
	charges, err := QuickCharge(c.peaks, seed.Index, lower, upper)
	if err != nil {
		return nil, err
	}
	if chargeRange[0] < 0 {
		for i := range charges {
			charges[i] = -charges[i]
		}
	}
	return charges, nil
}

// isStored reports whether p is a peak of this collection rather than a
// placeholder or a peak from elsewhere
func (c *Collection) isStored(p *peakset.Peak) bool {
	return p.Index >= 0 && p.Index < c.peaks.Len() && c.peaks.At(p.Index) == p
}

// nextPutative looks step isotope spacings to the right of mz and returns,
// for every peak found there, a placeholder step spacings back from it:
// a seed recalibrated onto the observed isotope spacing.
func (c *Collection) nextPutative(mz float64, charge, step int,
	tolerance float64) []*peakset.Peak {

	shift := averagine.IsotopicShift(charge)
	next := mz + shift*float64(step)
	var out []*peakset.Peak
	for _, fwd := range c.Between(next-next*tolerance, next+next*tolerance) {
		out = append(out, peakset.Placeholder(fwd.Mz-shift*float64(step)))
	}
	return out
}

// previousPutative looks one isotope spacing to the left of mz. From every
// peak found there it either steps forward again (step 1) or continues
// to the left with one step less.
func (c *Collection) previousPutative(mz float64, charge, step int,
	tolerance float64) []*peakset.Peak {

	prev := mz - averagine.IsotopicShift(charge)
	var out []*peakset.Peak
	for _, back := range c.Between(prev-prev*tolerance, prev+prev*tolerance) {
		if step == 1 {
			out = append(out, c.nextPutative(back.Mz, charge, 1, tolerance)...)
		} else {
			out = append(out, c.previousPutative(back.Mz, charge, step-1, tolerance)...)
		}
	}
	return out
}
