// Package report stores the outcome of precursor deconvolution as JSON,
// msgpack or an SQLite database.
package report

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// FormatVersion is written with every report. If the layout ever changes,
// reports from old versions should still be readable.
const FormatVersion = "1.0"

// Format selects the report encoding
type Format int

const (
	FormatJSON Format = iota
	FormatMsgpack
	FormatSQLite
)

var ErrUnknownFormat = errors.New("unknown report format")

// ParseFormat converts a format name as given on the command line
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case `json`, ``:
		return FormatJSON, nil
	case `msgpack`:
		return FormatMsgpack, nil
	case `sqlite`, `sqlite3`:
		return FormatSQLite, nil
	}
	return FormatJSON, ErrUnknownFormat
}

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return `json`
	case FormatMsgpack:
		return `msgpack`
	case FormatSQLite:
		return `sqlite`
	}
	return `unknown`
}

// EnvelopePeak is one matched peak of the fitted isotopic envelope
type EnvelopePeak struct {
	Mz        float64
	Intensity float64
}

// Precursor describes the deconvolution of one selected ion
type Precursor struct {
	SpecIndex      int     // index of the MS2 spectrum
	Ms1Index       int     // index of the MS1 spectrum that was deconvoluted
	OriginalMz     float64 // selected ion m/z before correction
	MonoisotopicMz float64
	RefinedMz      float64 `json:",omitempty" msgpack:",omitempty"`
	NeutralMass    float64
	Charge         int
	Score          float64
	Intensity      float64
	SignalToNoise  float64
	MissedPeaks    int
	PeakIndex      int            // position of the first matched peak in the MS1 data arrays, -1 if none
	Model          string         `json:",omitempty" msgpack:",omitempty"`
	Envelope       []EnvelopePeak `json:",omitempty" msgpack:",omitempty"`
}

// Feature is a deconvoluted peak of an MS1 spectrum. Isobaric peaks of
// the same charge may have been merged into one feature.
type Feature struct {
	Ms1Index    int
	NeutralMass float64
	Charge      int
	Intensity   float64
}

// Report is the top level report document
type Report struct {
	MzDeconVersion string
	Precursors     []Precursor
	Features       []Feature `json:",omitempty" msgpack:",omitempty"`
}

// New returns an empty report of the current format version
func New() *Report {
	return &Report{MzDeconVersion: FormatVersion}
}

// Write stores r in filename using format f
func Write(filename string, r *Report, f Format) error {
	if f == FormatSQLite {
		return WriteSQLite(filename, r)
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	switch f {
	case FormatJSON:
		err = WriteJSON(file, r)
	case FormatMsgpack:
		err = WriteMsgpack(file, r)
	default:
		err = ErrUnknownFormat
	}
	if err != nil {
		return err
	}
	return file.Close()
}

// WriteJSON encodes r as indented JSON
func WriteJSON(w io.Writer, r *Report) error {
	e := json.NewEncoder(w)
	e.SetIndent(``, `  `) // Make output easier to read for humans
	return e.Encode(r)
}

// ReadJSON decodes a report written by WriteJSON
func ReadJSON(rd io.Reader) (*Report, error) {
	var r Report
	d := json.NewDecoder(rd)
	if err := d.Decode(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

// WriteMsgpack encodes r as msgpack
func WriteMsgpack(w io.Writer, r *Report) error {
	enc := msgpack.NewEncoder(w)
	return enc.Encode(r)
}

// ReadMsgpack decodes a report written by WriteMsgpack
func ReadMsgpack(rd io.Reader) (*Report, error) {
	var r Report
	dec := msgpack.NewDecoder(rd)
	if err := dec.Decode(&r); err != nil {
		return nil, err
	}
	return &r, nil
}
