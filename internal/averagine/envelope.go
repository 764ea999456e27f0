package averagine

import (
	"errors"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// TheoreticalPeak is a single isotope peak of a theoretical envelope
type TheoreticalPeak struct {
	Mz        float64
	Intensity float64
}

// Envelope is an idealized isotope cluster. Peaks[0] is the monoisotopic peak.
type Envelope struct {
	Peaks          []TheoreticalPeak
	MonoisotopicMz float64
}

// Clone returns a deep copy, so that scaling does not change the original
func (e Envelope) Clone() Envelope {
	c := Envelope{
		Peaks:          make([]TheoreticalPeak, len(e.Peaks)),
		MonoisotopicMz: e.MonoisotopicMz,
	}
	copy(c.Peaks, e.Peaks)
	return c
}

// Len returns the number of isotope peaks
func (e Envelope) Len() int {
	return len(e.Peaks)
}

// ScaleMethod determines how a theoretical envelope is scaled to
// the matched experimental intensities
type ScaleMethod int

const (
	// ScaleSum makes the theoretical intensities sum to the total
	// experimental intensity
	ScaleSum ScaleMethod = iota
	// ScaleMax scales on the most abundant theoretical peak
	ScaleMax
)

var ErrUnknownScaleMethod = errors.New("unknown scale method")

// ParseScaleMethod converts "sum" or "max" to a ScaleMethod
func ParseScaleMethod(s string) (ScaleMethod, error) {
	switch strings.ToLower(s) {
	case `sum`, ``:
		return ScaleSum, nil
	case `max`:
		return ScaleMax, nil
	}
	return ScaleSum, ErrUnknownScaleMethod
}

func (m ScaleMethod) String() string {
	switch m {
	case ScaleSum:
		return `sum`
	case ScaleMax:
		return `max`
	}
	return `unknown`
}

// intensities returns the theoretical intensities in peak order
func (e Envelope) intensities() []float64 {
	v := make([]float64, len(e.Peaks))
	for i, p := range e.Peaks {
		v[i] = p.Intensity
	}
	return v
}

func (e Envelope) scaleBy(f float64) {
	for i := range e.Peaks {
		e.Peaks[i].Intensity *= f
	}
}

// Scale rescales the envelope in place to the experimental intensities,
// which must be index aligned with e.Peaks.
func (e Envelope) Scale(experimental []float64, method ScaleMethod) {
	if len(e.Peaks) == 0 {
		return
	}
	theo := e.intensities()
	switch method {
	case ScaleMax:
		best := floats.MaxIdx(theo)
		if theo[best] == 0 {
			return
		}
		e.scaleBy(experimental[best] / theo[best])
	default:
		theoTotal := floats.Sum(theo)
		if theoTotal == 0 {
			return
		}
		e.scaleBy(floats.Sum(experimental[:len(theo)]) / theoTotal)
	}
}
