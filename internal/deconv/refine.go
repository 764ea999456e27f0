package deconv

import (
	"gonum.org/v1/gonum/optimize"
)

// Offsets are fitted in milli-m/z so that the optimizer's default
// gradient threshold is well below the instrument error.
const refineScale = 1000.0

// RefineMonoisotopicMz fits one m/z offset that minimizes the intensity
// weighted squared distance between the real matched peaks of fit and their
// theoretical positions, and returns the shifted monoisotopic m/z.
// Without real peaks the theoretical monoisotopic m/z is returned.
func RefineMonoisotopicMz(fit *FitRecord) (float64, error) {
	type residual struct {
		diff   float64 // observed - theoretical, scaled
		weight float64
	}
	var res []residual
	var totalWeight float64
	for i, p := range fit.Experimental {
		if !p.IsReal() {
			continue
		}
		res = append(res, residual{
			diff:   (p.Mz - fit.Theoretical.Peaks[i].Mz) * refineScale,
			weight: p.Intensity,
		})
		totalWeight += p.Intensity
	}
	mono := fit.Theoretical.MonoisotopicMz
	if len(res) == 0 || totalWeight == 0 {
		return mono, nil
	}
	for i := range res {
		res[i].weight /= totalWeight
	}

	// https://pkg.go.dev/gonum.org/v1/gonum/optimize#Minimize
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			var sum float64
			for _, r := range res {
				d := r.diff - x[0]
				sum += r.weight * d * d
			}
			return sum
		},
		Grad: func(grad, x []float64) {
			var g float64
			for _, r := range res {
				g -= 2 * r.weight * (r.diff - x[0])
			}
			grad[0] = g
		},
	}
	result, err := optimize.Minimize(problem, []float64{0}, nil, nil)
	if err != nil {
		return mono, err
	}
	return mono + result.X[0]/refineScale, nil
}
