package mzml

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/524D/mzdecon/internal/mzml/mzmltest"
)

func TestSetSelectedIonAndWrite(t *testing.T) {
	f := readTestFile(t, mzmltest.Document(testSpectra()))

	ions, err := f.SelectedIons(1)
	if err != nil || len(ions) != 1 {
		t.Fatalf("SelectedIons: %v, %v", ions, err)
	}
	ion := ions[0]
	ion.Mz = 500.0
	ion.Charge = 2
	if err := f.SetSelectedIon(1, ion); err != nil {
		t.Fatalf("SetSelectedIon: error return %v", err)
	}
	// Updating again replaces, not appends
	ion.Charge = 3
	if err := f.SetSelectedIon(1, ion); err != nil {
		t.Fatalf("SetSelectedIon: error return %v", err)
	}
	f.AppendSoftwareInfo("mzDecon", "test")
	f.AppendDataProcessing(DataProcessing{
		ID: "precursor_correction",
		Methods: []ProcessingMethod{{
			Order:       1,
			SoftwareRef: "mzDecon",
			CvPar:       []CVParam{{Accession: "MS:1000780", Name: "precursor recalculation"}},
		}},
	})

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write: error return %v", err)
	}
	if !strings.HasPrefix(buf.String(), `<?xml version="1.0"`) {
		t.Errorf("Write: missing XML header")
	}
	if strings.Contains(buf.String(), "indexListOffset") {
		t.Errorf("Write: index must not be copied")
	}

	g := readTestFile(t, buf.Bytes())
	got, err := g.SelectedIons(1)
	if err != nil {
		t.Fatalf("SelectedIons: error return %v", err)
	}
	want := []SelectedIon{{SpectrumRef: "scan=1", Mz: 500.0, Charge: 3, Intensity: 600}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SelectedIons after write mismatch (-want +got):\n%s", diff)
	}
	cv := g.content.Run.SpectrumList.Spectrum[1].PrecursorList[0].Precursor[0].
		SelectedIonList.SelectedIon[0].CvPar
	n := 0
	for _, p := range cv {
		if p.Accession == cvChargeState {
			n++
		}
	}
	if n != 1 {
		t.Errorf("Expected one charge state term, got %d", n)
	}

	if g.content.SoftwareList.Count != 2 || g.content.SoftwareList.Software[1].ID != "mzDecon" {
		t.Errorf("Unexpected software list %+v", g.content.SoftwareList)
	}
	if g.content.DataProcessingList.Count != 2 {
		t.Errorf("Expected 2 data processing entries, got %d", g.content.DataProcessingList.Count)
	}
	dp := g.content.DataProcessingList.DataProcessing[1]
	if dp.ID != "precursor_correction" || len(dp.Methods) != 1 || dp.Methods[0].Order != 1 ||
		dp.Methods[0].SoftwareRef != "mzDecon" {
		t.Errorf("Unexpected data processing %+v", dp)
	}
	if !strings.Contains(buf.String(), `xsi:schemaLocation="http://psi.hupo.org/ms/mzml `) {
		t.Errorf("Write: missing schema location")
	}
	p, err := g.ReadScan(0)
	if err != nil || len(p) != 3 || p[1].Mz != 500.5017 {
		t.Errorf("ReadScan after write: %v, %v", p, err)
	}
}

func TestSetSelectedIonInvalid(t *testing.T) {
	f := readTestFile(t, mzmltest.Document(testSpectra()))
	if err := f.SetSelectedIon(0, SelectedIon{Mz: 1}); err != ErrInvalidSelectedIon {
		t.Errorf("MS1 spectrum: error return %v, should be ErrInvalidSelectedIon", err)
	}
	if err := f.SetSelectedIon(1, SelectedIon{PrecursorIndex: 1}); err != ErrInvalidSelectedIon {
		t.Errorf("error return %v, should be ErrInvalidSelectedIon", err)
	}
	if err := f.SetSelectedIon(1, SelectedIon{IonIndex: 2}); err != ErrInvalidSelectedIon {
		t.Errorf("error return %v, should be ErrInvalidSelectedIon", err)
	}
	if err := f.SetSelectedIon(7, SelectedIon{}); err != ErrInvalidScanIndex {
		t.Errorf("error return %v, should be ErrInvalidScanIndex", err)
	}
}

func TestAppendToEmptyLists(t *testing.T) {
	var f MzML
	f.AppendSoftwareInfo("mzDecon", "1")
	f.AppendDataProcessing(DataProcessing{ID: "x"})
	if f.content.SoftwareList.Count != 1 || f.content.DataProcessingList.Count != 1 {
		t.Errorf("Expected lists to be created")
	}
}
