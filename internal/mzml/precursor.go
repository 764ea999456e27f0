package mzml

import (
	"strconv"
)

// SelectedIon is a selected ion of a precursor of an MSn spectrum.
// Charge is 0 if the file does not specify it, Intensity is 0 if absent.
type SelectedIon struct {
	PrecursorIndex int
	IonIndex       int
	SpectrumRef    string // id of the spectrum the precursor was selected from, may be empty
	Mz             float64
	Charge         int
	Intensity      float64
}

// precursors returns the precursors of a spectrum, nil for MS1 spectra
func (f *MzML) precursors(scanIndex int) ([]precursor, error) {
	spec, err := f.spectrum(scanIndex)
	if err != nil {
		return nil, err
	}
	var p []precursor
	if spec.PrecursorList != nil {
		p = spec.PrecursorList[0].Precursor
	}
	return p, nil
}

// SelectedIons returns all selected ions of a spectrum, in file order
func (f *MzML) SelectedIons(scanIndex int) ([]SelectedIon, error) {
	precs, err := f.precursors(scanIndex)
	if err != nil {
		return nil, err
	}
	var ions []SelectedIon
	for i, prec := range precs {
		for j, ion := range prec.SelectedIonList.SelectedIon {
			si := SelectedIon{
				PrecursorIndex: i,
				IonIndex:       j,
				SpectrumRef:    prec.SpectrumRef,
			}
			for _, cvParam := range ion.CvPar {
				switch cvParam.Accession {
				case cvSelectedIonMz:
					if si.Mz, err = strconv.ParseFloat(cvParam.Value, 64); err != nil {
						return nil, err
					}
				case cvChargeState:
					if si.Charge, err = strconv.Atoi(cvParam.Value); err != nil {
						return nil, err
					}
				case cvPeakIntensity:
					if si.Intensity, err = strconv.ParseFloat(cvParam.Value, 64); err != nil {
						return nil, err
					}
				}
			}
			ions = append(ions, si)
		}
	}
	return ions, nil
}

// SetSelectedIon stores the m/z and charge of ion in the selected ion it
// refers to. A missing charge state term is added; charge 0 leaves the
// charge state untouched.
func (f *MzML) SetSelectedIon(scanIndex int, ion SelectedIon) error {
	spec, err := f.spectrum(scanIndex)
	if err != nil {
		return err
	}
	if spec.PrecursorList == nil ||
		ion.PrecursorIndex < 0 || ion.PrecursorIndex >= len(spec.PrecursorList[0].Precursor) {
		return ErrInvalidSelectedIon
	}
	ions := spec.PrecursorList[0].Precursor[ion.PrecursorIndex].SelectedIonList.SelectedIon
	if ion.IonIndex < 0 || ion.IonIndex >= len(ions) {
		return ErrInvalidSelectedIon
	}
	si := &ions[ion.IonIndex]

	setCVParam(&si.CvPar, CVParam{
		Accession:     cvSelectedIonMz,
		Name:          "selected ion m/z",
		Value:         strconv.FormatFloat(ion.Mz, 'f', -1, 64),
		UnitCvRef:     "MS",
		UnitAccession: "MS:1000040",
		UnitName:      "m/z",
	})
	if ion.Charge != 0 {
		setCVParam(&si.CvPar, CVParam{
			Accession: cvChargeState,
			Name:      "charge state",
			Value:     strconv.Itoa(ion.Charge),
		})
	}
	return nil
}

// setCVParam replaces the value of the term with the same accession,
// or appends p if there is none. Units of an existing term are kept.
func setCVParam(params *[]CVParam, p CVParam) {
	for i := range *params {
		if (*params)[i].Accession == p.Accession {
			(*params)[i].Value = p.Value
			return
		}
	}
	*params = append(*params, p)
}
