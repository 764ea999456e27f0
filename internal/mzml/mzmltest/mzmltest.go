// Package mzmltest builds small mzML documents in memory for tests.
package mzmltest

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Precursor is a selected ion of an MS2 spectrum. Charge 0 omits the
// charge state term.
type Precursor struct {
	SpectrumRef string
	Mz          float64
	Charge      int
	Intensity   float64
}

// Spectrum describes one spectrum of the document. With Zlib set the m/z
// array is zlib compressed 64 bit, otherwise both arrays are uncompressed
// 32 bit floats.
type Spectrum struct {
	ID            string
	MSLevel       int
	RetentionTime float64 // seconds
	Profile       bool
	Zlib          bool
	Mz            []float64
	Intensity     []float64
	Precursors    []Precursor
}

// EncodeFloats encodes v the way mzML binary arrays are stored
func EncodeFloats(v []float64, bits64, compress bool) string {
	var raw []byte
	if bits64 {
		raw = make([]byte, len(v)*8)
		for i, x := range v {
			binary.LittleEndian.PutUint64(raw[8*i:], math.Float64bits(x))
		}
	} else {
		raw = make([]byte, len(v)*4)
		for i, x := range v {
			binary.LittleEndian.PutUint32(raw[4*i:], math.Float32bits(float32(x)))
		}
	}
	if compress {
		var b bytes.Buffer
		z := zlib.NewWriter(&b)
		z.Write(raw)
		z.Close()
		raw = b.Bytes()
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func binaryArray(sb *strings.Builder, v []float64, bits64, compress bool, kind string) {
	b64 := EncodeFloats(v, bits64, compress)
	bits, comp := `MS:1000521`, `MS:1000576`
	if bits64 {
		bits = `MS:1000523`
	}
	if compress {
		comp = `MS:1000574`
	}
	fmt.Fprintf(sb, `      <binaryDataArray encodedLength="%d">
        <cvParam cvRef="MS" accession="%s" name=""/>
        <cvParam cvRef="MS" accession="%s" name=""/>
        <cvParam cvRef="MS" accession="%s" name=""/>
        <binary>%s</binary>
      </binaryDataArray>
`, len(b64), bits, comp, kind, b64)
}

// Document returns an indexedmzML document containing specs
func Document(specs []Spectrum) []byte {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="utf-8"?>
<indexedmzML xmlns="http://psi.hupo.org/ms/mzml">
<mzML xmlns="http://psi.hupo.org/ms/mzml" version="1.1.0">
  <cvList count="1">
    <cv id="MS" fullName="Proteomics Standards Initiative Mass Spectrometry Ontology" URI="https://raw.githubusercontent.com/HUPO-PSI/psi-ms-CV/master/psi-ms.obo"/>
  </cvList>
  <fileDescription>
    <fileContent>
      <cvParam cvRef="MS" accession="MS:1000580" name="MSn spectrum" value=""/>
    </fileContent>
  </fileDescription>
  <softwareList count="1">
    <software id="acquisition" version="1.0"/>
  </softwareList>
  <instrumentConfigurationList count="1">
    <instrumentConfiguration id="IC1"/>
  </instrumentConfigurationList>
  <dataProcessingList count="1">
    <dataProcessing id="conversion">
      <processingMethod order="1" softwareRef="acquisition"/>
    </dataProcessing>
  </dataProcessingList>
  <run id="run1" defaultInstrumentConfigurationRef="IC1">
`)
	fmt.Fprintf(&sb, "  <spectrumList count=\"%d\" defaultDataProcessingRef=\"conversion\">\n", len(specs))
	for i, s := range specs {
		fmt.Fprintf(&sb, "   <spectrum index=\"%d\" id=\"%s\" defaultArrayLength=\"%d\">\n",
			i, s.ID, len(s.Mz))
		fmt.Fprintf(&sb, "    <cvParam cvRef=\"MS\" accession=\"MS:1000511\" name=\"ms level\" value=\"%d\"/>\n",
			s.MSLevel)
		if s.Profile {
			sb.WriteString("    <cvParam cvRef=\"MS\" accession=\"MS:1000128\" name=\"profile spectrum\" value=\"\"/>\n")
		} else {
			sb.WriteString("    <cvParam cvRef=\"MS\" accession=\"MS:1000127\" name=\"centroid spectrum\" value=\"\"/>\n")
		}
		fmt.Fprintf(&sb, `    <scanList count="1">
     <scan instrumentConfigurationRef="IC1">
      <cvParam cvRef="MS" accession="MS:1000016" name="scan start time" value="%g" unitCvRef="UO" unitAccession="UO:0000010" unitName="second"/>
     </scan>
    </scanList>
`, s.RetentionTime)
		if len(s.Precursors) > 0 {
			fmt.Fprintf(&sb, "    <precursorList count=\"%d\">\n", len(s.Precursors))
			for _, p := range s.Precursors {
				fmt.Fprintf(&sb, "     <precursor spectrumRef=\"%s\">\n", p.SpectrumRef)
				fmt.Fprintf(&sb, `      <isolationWindow>
       <cvParam cvRef="MS" accession="MS:1000827" name="isolation window target m/z" value="%g" unitCvRef="MS" unitAccession="MS:1000040" unitName="m/z"/>
      </isolationWindow>
      <selectedIonList count="1">
       <selectedIon>
        <cvParam cvRef="MS" accession="MS:1000744" name="selected ion m/z" value="%g" unitCvRef="MS" unitAccession="MS:1000040" unitName="m/z"/>
`, p.Mz, p.Mz)
				if p.Charge != 0 {
					fmt.Fprintf(&sb, "        <cvParam cvRef=\"MS\" accession=\"MS:1000041\" name=\"charge state\" value=\"%d\"/>\n", p.Charge)
				}
				if p.Intensity != 0 {
					fmt.Fprintf(&sb, "        <cvParam cvRef=\"MS\" accession=\"MS:1000042\" name=\"peak intensity\" value=\"%g\"/>\n", p.Intensity)
				}
				sb.WriteString(`       </selectedIon>
      </selectedIonList>
      <activation>
       <cvParam cvRef="MS" accession="MS:1000133" name="collision-induced dissociation" value=""/>
      </activation>
     </precursor>
`)
			}
			sb.WriteString("    </precursorList>\n")
		}
		sb.WriteString("    <binaryDataArrayList count=\"2\">\n")
		binaryArray(&sb, s.Mz, s.Zlib, s.Zlib, `MS:1000514`)
		binaryArray(&sb, s.Intensity, false, false, `MS:1000515`)
		sb.WriteString("    </binaryDataArrayList>\n   </spectrum>\n")
	}
	sb.WriteString(`  </spectrumList>
  </run>
</mzML>
<indexListOffset>0</indexListOffset>
</indexedmzML>
`)
	return []byte(sb.String())
}
