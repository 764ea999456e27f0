package mzml

import (
	"encoding/xml"
	"io"
)

// Write writes the (possibly modified) mzML. The index of an indexedmzML
// input is not written, because offsets change.
func (f *MzML) Write(writer io.Writer) error {
	if _, err := io.WriteString(writer, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(writer)
	// Indent only inserts newlines with a non-empty prefix
	enc.Indent(` `, `  `)
	content := mzMLContentWrite{
		XMLName:                     f.content.XMLName,
		SchemaLocation:              "http://psi.hupo.org/ms/mzml http://psidev.info/files/ms/mzML/xsd/mzML1.1.0.xsd",
		Version:                     "1.1.0",
		XSI:                         "http://www.w3.org/2001/XMLSchema-instance",
		CvList:                      f.content.CvList,
		FileDescription:             f.content.FileDescription,
		ReferenceableParamGroupList: f.content.ReferenceableParamGroupList,
		SoftwareList:                f.content.SoftwareList,
		InstrumentConfigurationList: f.content.InstrumentConfigurationList,
		DataProcessingList:          f.content.DataProcessingList,
		Run:                         f.content.Run,
	}
	if err := enc.Encode(&content); err != nil {
		return err
	}
	_, err := io.WriteString(writer, "\n")
	return err
}

// AppendSoftwareInfo adds info to the SoftwareList tag of the mzML file
func (f *MzML) AppendSoftwareInfo(id string, version string) {
	if f.content.SoftwareList == nil {
		f.content.SoftwareList = &softwareList{}
	}
	f.content.SoftwareList.Software = append(f.content.SoftwareList.Software,
		software{ID: id, Version: version})
	f.content.SoftwareList.Count = len(f.content.SoftwareList.Software)
}

// AppendDataProcessing adds info to the DataProcessing tag of the mzML file
func (f *MzML) AppendDataProcessing(proc DataProcessing) {
	if f.content.DataProcessingList == nil {
		f.content.DataProcessingList = &dataProcessingList{}
	}
	f.content.DataProcessingList.DataProcessing = append(
		f.content.DataProcessingList.DataProcessing, proc)
	f.content.DataProcessingList.Count = len(f.content.DataProcessingList.DataProcessing)
}
