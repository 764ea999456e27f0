package mzml

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"

	"golang.org/x/net/html/charset"
)

// Read reads an mzML file. indexedmzML wrappers are skipped.
func Read(reader io.Reader) (MzML, error) {
	var mzML MzML

	d := xml.NewDecoder(reader)
	d.CharsetReader = charset.NewReaderLabel

	for {
		t, tokenErr := d.Token()
		if tokenErr != nil {
			if tokenErr == io.EOF {
				break
			}
			return mzML, tokenErr
		}
		if t, ok := t.(xml.StartElement); ok && t.Name.Local == "mzML" {
			if err := d.DecodeElement(&mzML.content, &t); err != nil {
				return mzML, err
			}
		}
	}

	err := mzML.traverseScan()
	return mzML, err
}

// arrayEncoding describes a binaryDataArray
//
// CV Terms for binary data compression
// MS:1000574 zlib compression
// MS:1000576 No Compression
// MS:1002312-MS:1002314, MS:1002746-MS:1002748 MS-Numpress variants
//
// CV Terms for binary data array types
// MS:1000514 m/z array
// MS:1000515 intensity array
//
// CV Terms for binary-data-type
// MS:1000521 32-bit float
// MS:1000523 64-bit float
type arrayEncoding struct {
	zlib      bool
	bits64    bool
	mz        bool
	intensity bool
}

func binaryDataPars(b *binaryDataArray) (arrayEncoding, error) {
	var enc arrayEncoding
	for _, cvParam := range b.CvPar {
		switch cvParam.Accession {
		case cvZlib:
			enc.zlib = true
		case cvMzArray:
			enc.mz = true
		case cvIntensityArray:
			enc.intensity = true
		case cvFloat64:
			enc.bits64 = true
		case `MS:1002312`, `MS:1002313`, `MS:1002314`,
			`MS:1002746`, `MS:1002747`, `MS:1002748`:
			return enc, fmt.Errorf("%w (CV term %s)", ErrUnsupportedCompression,
				cvParam.Accession)
		}
	}
	return enc, nil
}

// decodeFloats decodes base64, optionally zlib compressed, little endian floats
func decodeFloats(s string, enc arrayEncoding) ([]float64, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if enc.zlib {
		z, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer z.Close()
		if data, err = io.ReadAll(z); err != nil {
			return nil, err
		}
	}
	if enc.bits64 {
		v := make([]float64, len(data)/8)
		for i := range v {
			v[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
		}
		return v, nil
	}
	v := make([]float64, len(data)/4)
	for i := range v {
		v[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:])))
	}
	return v, nil
}

func fillScan(p []Peak, b *binaryDataArray) error {
	enc, err := binaryDataPars(b)
	if err != nil {
		return err
	}
	// Only m/z and intensity are of interest
	if !enc.mz && !enc.intensity {
		return nil
	}
	v, err := decodeFloats(b.Binary, enc)
	if err != nil {
		return err
	}
	if len(v) != len(p) {
		return ErrArrayLength
	}
	for i, x := range v {
		if enc.mz {
			p[i].Mz = x
		} else {
			p[i].Intensity = x
		}
	}
	return nil
}

func (f *MzML) spectrum(scanIndex int) (*spectrum, error) {
	if scanIndex < 0 || scanIndex >= f.NumSpecs() {
		return nil, ErrInvalidScanIndex
	}
	return &f.content.Run.SpectrumList.Spectrum[scanIndex], nil
}

// NumSpecs returns the number of spectra
func (f *MzML) NumSpecs() int {
	return len(f.content.Run.SpectrumList.Spectrum)
}

// RetentionTime returns the retention time of a spectrum in seconds,
// or -1 if the spectrum has none
func (f *MzML) RetentionTime(scanIndex int) (float64, error) {
	spec, err := f.spectrum(scanIndex)
	if err != nil {
		return 0.0, err
	}
	for _, scan := range spec.ScanList.Scan {
		for _, cvParam := range scan.CvPar {
			if cvParam.Accession == cvScanStartTime {
				retentionTime, err := strconv.ParseFloat(cvParam.Value, 64)
				if cvParam.UnitAccession == cvUnitMinute ||
					cvParam.UnitAccession == cvUnitMinuteLegacy {
					retentionTime *= 60
				}
				return retentionTime, err
			}
		}
	}
	return -1.0, nil
}

// ReadScan reads the peaks of a single scan.
// scanIndex is the position of the scan in the mzML file, use
// ScanIndex to convert a scan id.
func (f *MzML) ReadScan(scanIndex int) ([]Peak, error) {
	spec, err := f.spectrum(scanIndex)
	if err != nil {
		return nil, err
	}
	p := make([]Peak, spec.DefaultArrayLength)
	for i := range spec.BinaryDataArrayList.BinaryDataArray {
		if err := fillScan(p, &spec.BinaryDataArrayList.BinaryDataArray[i]); err != nil {
			return nil, fmt.Errorf("spectrum %s: %w", spec.ID, err)
		}
	}
	return p, nil
}

// Centroid returns true is the spectrum contains centroid peaks
func (f *MzML) Centroid(scanIndex int) (bool, error) {
	spec, err := f.spectrum(scanIndex)
	if err != nil {
		return false, err
	}
	for _, cvParam := range spec.CvPar {
		if cvParam.Accession == cvCentroid {
			return true, nil
		}
	}
	return false, nil
}

// MSLevel returns the MS level of a scan
func (f *MzML) MSLevel(scanIndex int) (int, error) {
	spec, err := f.spectrum(scanIndex)
	if err != nil {
		return 0, err
	}
	for _, cvParam := range spec.CvPar {
		if cvParam.Accession == cvMSLevel {
			msLevel, err := strconv.ParseInt(cvParam.Value, 10, 64)
			return int(msLevel), err
		}
	}
	return 1, nil // If nothing else, guess it's MS1
}

// traverseScan builds the lookups between spectrum index and id
func (f *MzML) traverseScan() error {
	f.ids = make([]string, f.NumSpecs())
	f.indexOf = make(map[string]int, f.NumSpecs())
	for i, spec := range f.content.Run.SpectrumList.Spectrum {
		if i != spec.Index {
			return ErrInvalidScanIndex
		}
		f.ids[i] = spec.ID
		f.indexOf[spec.ID] = i
	}
	return nil
}

// ScanIndex converts a scan identifier (the string used in the mzML file)
// into an index that is used to access the scans
func (f *MzML) ScanIndex(scanID string) (int, error) {
	if index, ok := f.indexOf[scanID]; ok {
		return index, nil
	}
	return 0, ErrInvalidScanID
}

// ScanID converts a scan index into a scan id
func (f *MzML) ScanID(scanIndex int) (string, error) {
	if scanIndex >= 0 && scanIndex < f.NumSpecs() {
		return f.ids[scanIndex], nil
	}
	return "", ErrInvalidScanIndex
}
