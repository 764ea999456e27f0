package deconv

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestChargeIterator(t *testing.T) {
	tests := []struct {
		name   string
		lo, hi int
		want   []int
	}{
		{"positive", 1, 8, []int{8, 7, 6, 5, 4, 3, 2, 1}},
		{"negative", -8, -1, []int{-8, -7, -6, -5, -4, -3, -2, -1}},
		{"reversed bounds", 8, 1, []int{8, 7, 6, 5, 4, 3, 2, 1}},
		{"lower bound does not limit count", 2, 5, []int{5, 4, 3, 2, 1}},
		{"zero lower bound", 0, 3, []int{3, 2, 1}},
		{"single", 1, 1, []int{1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			it, err := NewChargeIterator(tc.lo, tc.hi)
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			var got []int
			for it.HasMore() {
				c := it.Next()
				if c == 0 {
					t.Fatalf("iterator produced charge 0")
				}
				got = append(got, c)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("charges mismatch (-want +got):\n%s", diff)
			}
			if it.HasMore() {
				t.Errorf("iterator must be one-shot")
			}
		})
	}
}

func TestChargeIteratorInvalid(t *testing.T) {
	if _, err := NewChargeIterator(0, 0); !errors.Is(err, ErrInvalidChargeRange) {
		t.Errorf("Expected ErrInvalidChargeRange, got: %v", err)
	}
}

func TestChargeRangeFrom(t *testing.T) {
	r, err := ChargeRangeFrom([]int{-1, -4})
	if err != nil || r != [2]int{-1, -4} {
		t.Errorf("Expected {-1,-4}, got %v, %v", r, err)
	}
	for _, bad := range [][]int{nil, {1}, {1, 2, 3}, {0, 0}} {
		if _, err := ChargeRangeFrom(bad); !errors.Is(err, ErrInvalidChargeRange) {
			t.Errorf("%v: Expected ErrInvalidChargeRange, got: %v", bad, err)
		}
	}
}
