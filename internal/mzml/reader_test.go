package mzml

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/524D/mzdecon/internal/mzml/mzmltest"
)

func testSpectra() []mzmltest.Spectrum {
	return []mzmltest.Spectrum{
		{
			ID:            "scan=1",
			MSLevel:       1,
			RetentionTime: 90,
			Zlib:          true,
			Mz:            []float64{500.0, 500.5017, 501.0033},
			Intensity:     []float64{1000, 600, 400},
		},
		{
			ID:            "scan=2",
			MSLevel:       2,
			RetentionTime: 90.5,
			Mz:            []float64{147.5, 260.25},
			Intensity:     []float64{50, 75},
			Precursors: []mzmltest.Precursor{
				{SpectrumRef: "scan=1", Mz: 500.5017, Intensity: 600},
			},
		},
		{
			ID:            "scan=3",
			MSLevel:       1,
			RetentionTime: 95,
			Profile:       true,
		},
	}
}

func readTestFile(t *testing.T, doc []byte) MzML {
	t.Helper()
	f, err := Read(bytes.NewReader(doc))
	if err != nil {
		t.Fatalf("Read: error return %v", err)
	}
	return f
}

func TestRead(t *testing.T) {
	f := readTestFile(t, mzmltest.Document(testSpectra()))

	if f.NumSpecs() != 3 {
		t.Fatalf("NumSpecs: %d, should be 3", f.NumSpecs())
	}
	p, err := f.ReadScan(0)
	if err != nil {
		t.Fatalf("ReadScan: error return %v", err)
	}
	want := []Peak{{500.0, 1000}, {500.5017, 600}, {501.0033, 400}}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("ReadScan mismatch (-want +got):\n%s", diff)
	}
	// 32 bit m/z array
	p, err = f.ReadScan(1)
	if err != nil {
		t.Fatalf("ReadScan: error return %v", err)
	}
	if diff := cmp.Diff([]Peak{{147.5, 50}, {260.25, 75}}, p); diff != "" {
		t.Errorf("ReadScan mismatch (-want +got):\n%s", diff)
	}
	p, err = f.ReadScan(2)
	if err != nil || len(p) != 0 {
		t.Errorf("ReadScan: expected empty spectrum, got %v, %v", p, err)
	}
	if _, err = f.ReadScan(3); err != ErrInvalidScanIndex {
		t.Errorf("ReadScan: error return %v, should be ErrInvalidScanIndex", err)
	}

	for i, wantLevel := range []int{1, 2, 1} {
		msLevel, err := f.MSLevel(i)
		if err != nil || msLevel != wantLevel {
			t.Errorf("MSLevel(%d): %d, %v, should be %d", i, msLevel, err, wantLevel)
		}
	}
	for i, wantCentroid := range []bool{true, true, false} {
		centroid, err := f.Centroid(i)
		if err != nil || centroid != wantCentroid {
			t.Errorf("Centroid(%d): %v, %v, should be %v", i, centroid, err, wantCentroid)
		}
	}
	rt, err := f.RetentionTime(1)
	if err != nil || rt != 90.5 {
		t.Errorf("RetentionTime: %v, %v, should be 90.5", rt, err)
	}

	scanIndex, err := f.ScanIndex(`scan=2`)
	if err != nil || scanIndex != 1 {
		t.Errorf("ScanIndex: %d, %v, should be 1", scanIndex, err)
	}
	if _, err = f.ScanIndex(`scan=9`); err != ErrInvalidScanID {
		t.Errorf("ScanIndex: error return %v, should be ErrInvalidScanID", err)
	}
	id, err := f.ScanID(2)
	if err != nil || id != `scan=3` {
		t.Errorf("ScanID: %q, %v, should be scan=3", id, err)
	}
}

func TestRetentionTimeMinutes(t *testing.T) {
	doc := mzmltest.Document(testSpectra()[:1])
	doc = bytes.Replace(doc, []byte(`unitAccession="UO:0000010"`),
		[]byte(`unitAccession="UO:0000031"`), 1)
	doc = bytes.Replace(doc, []byte(`value="90"`), []byte(`value="1.5"`), 1)
	f := readTestFile(t, doc)
	rt, err := f.RetentionTime(0)
	if err != nil || rt != 90 {
		t.Errorf("RetentionTime: %v, %v, should be 90", rt, err)
	}
}

func TestReadNumpress(t *testing.T) {
	doc := mzmltest.Document(testSpectra()[:1])
	doc = bytes.Replace(doc, []byte(`accession="MS:1000574"`),
		[]byte(`accession="MS:1002746"`), 1)
	f := readTestFile(t, doc)
	_, err := f.ReadScan(0)
	if !errors.Is(err, ErrUnsupportedCompression) {
		t.Errorf("ReadScan: error return %v, should be ErrUnsupportedCompression", err)
	}
	if err != nil && !strings.Contains(err.Error(), "MS:1002746") {
		t.Errorf("Expected CV term in error, got %v", err)
	}
}

func TestReadArrayLength(t *testing.T) {
	doc := mzmltest.Document(testSpectra()[:1])
	doc = bytes.Replace(doc, []byte(`defaultArrayLength="3"`),
		[]byte(`defaultArrayLength="4"`), 1)
	f := readTestFile(t, doc)
	if _, err := f.ReadScan(0); !errors.Is(err, ErrArrayLength) {
		t.Errorf("ReadScan: error return %v, should be ErrArrayLength", err)
	}
}

func TestSelectedIons(t *testing.T) {
	f := readTestFile(t, mzmltest.Document(testSpectra()))
	ions, err := f.SelectedIons(1)
	if err != nil {
		t.Fatalf("SelectedIons: error return %v", err)
	}
	want := []SelectedIon{{SpectrumRef: "scan=1", Mz: 500.5017, Intensity: 600}}
	if diff := cmp.Diff(want, ions); diff != "" {
		t.Errorf("SelectedIons mismatch (-want +got):\n%s", diff)
	}
	ions, err = f.SelectedIons(0)
	if err != nil || len(ions) != 0 {
		t.Errorf("SelectedIons: MS1 spectrum has %v, %v", ions, err)
	}
	if _, err = f.SelectedIons(-1); err != ErrInvalidScanIndex {
		t.Errorf("SelectedIons: error return %v, should be ErrInvalidScanIndex", err)
	}
}
