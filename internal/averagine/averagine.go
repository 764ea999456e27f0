// Package averagine generates theoretical isotope envelopes from
// average-composition ("averagine") models.
package averagine

import (
	"errors"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// ProtonMass is the default charge carrier
const ProtonMass = float64(1.007276466879)

// IsotopeModel produces theoretical isotope envelopes.
// The returned envelope is owned by the caller.
type IsotopeModel interface {
	IsotopicCluster(mz float64, charge int, chargeCarrier float64,
		truncateAfter float64, ignoreBelow float64) Envelope
}

// Model is an averagine composition together with its mass
type Model struct {
	Name        string
	Composition Composition
	baseMass    float64
}

// Built-in averagine compositions
var (
	Peptide = NewModel(`peptide`, Composition{
		"C": 4.9384, "H": 7.7583, "N": 1.3577, "O": 1.4773, "S": 0.0417})
	Glycan = NewModel(`glycan`, Composition{
		"C": 7.0, "H": 11.8333, "N": 0.5, "O": 5.16666})
	Glycopeptide = NewModel(`glycopeptide`, Composition{
		"C": 10.93, "H": 15.75, "N": 1.6577, "O": 6.4773, "S": 0.02054})
	Heparin = NewModel(`heparin`, Composition{
		"C": 6.0, "H": 10.5, "N": 0.5, "O": 5.5, "S": 0.5})
	PermethylatedGlycan = NewModel(`permethylated-glycan`, Composition{
		"C": 12.0, "H": 21.8333, "N": 0.5, "O": 5.16666})
)

var builtin = map[string]*Model{
	Peptide.Name:             Peptide,
	Glycan.Name:              Glycan,
	Glycopeptide.Name:        Glycopeptide,
	Heparin.Name:             Heparin,
	PermethylatedGlycan.Name: PermethylatedGlycan,
}

var ErrUnknownModel = errors.New("unknown averagine model")

// NewModel creates an averagine model from a composition
func NewModel(name string, c Composition) *Model {
	return &Model{Name: name, Composition: c, baseMass: c.MonoisotopicMass()}
}

// Lookup returns a built-in model by name
func Lookup(name string) (*Model, error) {
	m, ok := builtin[strings.ToLower(name)]
	if !ok {
		return nil, ErrUnknownModel
	}
	return m, nil
}

// Names returns the names of the built-in models in sorted order
func Names() []string {
	names := make([]string, 0, len(builtin))
	for n := range builtin {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// IsotopicShift returns the m/z distance between consecutive isotope peaks
func IsotopicShift(charge int) float64 {
	return NeutronShift / math.Abs(float64(charge))
}

// NeutralMass converts m/z to neutral mass for the given charge.
// For negative charges the carrier is added back.
func NeutralMass(mz float64, charge int, chargeCarrier float64) float64 {
	z := float64(charge)
	return mz*math.Abs(z) - z*chargeCarrier
}

// MassChargeRatio converts a neutral mass to m/z
func MassChargeRatio(mass float64, charge int, chargeCarrier float64) float64 {
	z := float64(charge)
	return (mass + z*chargeCarrier) / math.Abs(z)
}

// IsotopicCluster returns the theoretical envelope of a molecule whose
// monoisotopic peak is at mz. Peaks are added until their cumulative
// abundance reaches truncateAfter; later peaks below ignoreBelow are dropped.
// Intensities sum to one.
func (m *Model) IsotopicCluster(mz float64, charge int, chargeCarrier float64,
	truncateAfter float64, ignoreBelow float64) Envelope {

	mass := NeutralMass(mz, charge, chargeCarrier)
	comp := roundComposition(m.Composition, m.baseMass, mass)
	dist := isotopeDistribution(comp)

	shift := IsotopicShift(charge)
	env := Envelope{
		Peaks:          make([]TheoreticalPeak, 0, len(dist)),
		MonoisotopicMz: mz,
	}
	var total float64
	for i, a := range dist {
		env.Peaks = append(env.Peaks, TheoreticalPeak{
			Mz:        mz + float64(i)*shift,
			Intensity: a,
		})
		total += a
		if total >= truncateAfter {
			break
		}
	}
	normalize(env.Peaks, total)

	if ignoreBelow > 0 {
		kept := env.Peaks[:1]
		for _, p := range env.Peaks[1:] {
			if p.Intensity >= ignoreBelow {
				kept = append(kept, p)
			}
		}
		env.Peaks = kept
		normalize(env.Peaks, floats.Sum(env.intensities()))
	}
	return env
}

func normalize(peaks []TheoreticalPeak, total float64) {
	if total == 0 {
		return
	}
	Envelope{Peaks: peaks}.scaleBy(1 / total)
}
