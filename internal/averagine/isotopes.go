package averagine

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// NeutronShift is the mass difference between consecutive isotope peaks
const NeutronShift = float64(1.0033548378)

// maxIsotopes limits the length of computed isotope distributions
const maxIsotopes = 50

// Abundances are indexed by the number of extra neutrons relative to the
// lightest isotope.
type element struct {
	monoMass   float64
	abundances []float64
}

var elements = map[string]element{
	"C": {12.0, []float64{0.9893, 0.0107}},
	"H": {1.00782503207, []float64{0.999885, 0.000115}},
	"N": {14.0030740048, []float64{0.99636, 0.00364}},
	"O": {15.99491461956, []float64{0.99757, 0.00038, 0.00205}},
	"S": {31.97207100, []float64{0.9499, 0.0075, 0.0425, 0, 0.0001}},
	"P": {30.97376163, []float64{1.0}},
}

// Composition maps element symbols to (possibly fractional) atom counts
type Composition map[string]float64

// MonoisotopicMass returns the mass of the composition built from the
// lightest isotope of each element
func (c Composition) MonoisotopicMass() float64 {
	var m float64
	for sym, n := range c {
		m += elements[sym].monoMass * n
	}
	return m
}

// convolve returns the distribution of the sum of two isotope distributions,
// truncated to maxIsotopes
func convolve(a, b []float64) []float64 {
	n := len(a) + len(b) - 1
	if n > maxIsotopes {
		n = maxIsotopes
	}
	out := make([]float64, n)
	for i, x := range a {
		if i >= n {
			break
		}
		for j, y := range b {
			if i+j >= n {
				break
			}
			out[i+j] += x * y
		}
	}
	return out
}

// power returns the isotope distribution of n atoms with distribution d
func power(d []float64, n int) []float64 {
	result := []float64{1.0}
	base := d
	for n > 0 {
		if n&1 == 1 {
			result = convolve(result, base)
		}
		n >>= 1
		if n > 0 {
			base = convolve(base, base)
		}
	}
	return result
}

// isotopeDistribution computes relative abundances of the isotope peaks of an
// integer composition. The result sums to one.
func isotopeDistribution(c map[string]int) []float64 {
	dist := []float64{1.0}
	// Iterate in fixed order so that results are reproducible
	for _, sym := range []string{"C", "H", "N", "O", "S", "P"} {
		n := c[sym]
		if n <= 0 {
			continue
		}
		dist = convolve(dist, power(elements[sym].abundances, n))
	}
	floats.Scale(1/floats.Sum(dist), dist)
	return dist
}

// roundComposition scales the averagine composition c to the given neutral
// mass. The hydrogen count absorbs the rounding error.
func roundComposition(c Composition, baseMass, mass float64) map[string]int {
	scale := mass / baseMass
	out := make(map[string]int, len(c))
	var m float64
	for sym, n := range c {
		k := int(math.Round(n * scale))
		out[sym] = k
		m += float64(k) * elements[sym].monoMass
	}
	dH := int(math.Round((mass - m) / elements["H"].monoMass))
	out["H"] += dH
	if out["H"] < 0 {
		out["H"] = 0
	}
	return out
}
