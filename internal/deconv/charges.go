package deconv

// ChargeIterator yields the charge states of a signed charge range, highest
// magnitude first. It is consumed once.
//
// For a range with upper magnitude u it yields exactly u values, u down to 1
// in magnitude, whatever the lower bound is. Zero is never produced.
type ChargeIterator struct {
	sign  int
	upper int
	index int
}

// NewChargeIterator creates an iterator for the range (lo, hi). The sign of
// lo decides the polarity.
func NewChargeIterator(lo, hi int) (*ChargeIterator, error) {
	if lo == 0 && hi == 0 {
		return nil, ErrInvalidChargeRange
	}
	sign := 1
	if lo < 0 {
		sign = -1
	}
	upper := abs(lo)
	if abs(hi) > upper {
		upper = abs(hi)
	}
	return &ChargeIterator{sign: sign, upper: upper}, nil
}

// HasMore reports whether Next will return another charge
func (it *ChargeIterator) HasMore() bool {
	return it.index < it.upper
}

// Next returns the next charge state. Only valid when HasMore is true.
func (it *ChargeIterator) Next() int {
	c := (it.upper - it.index) * it.sign
	it.index++
	return c
}

// Charges drains the iterator into a slice
func (it *ChargeIterator) Charges() []int {
	out := make([]int, 0, it.upper-it.index)
	for it.HasMore() {
		out = append(out, it.Next())
	}
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
