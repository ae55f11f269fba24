package archio

import (
	"encoding/xml"
)

// metaFile describes one data file of the archive for meta.xml.
type metaFile struct {
	RowType  string
	Location string
	Fields   []metaField

	idIndex int
	isCore  bool
}

type metaField struct {
	Index int    `xml:"index,attr"`
	Term  string `xml:"term,attr"`
}

type xmlFiles struct {
	Location string `xml:"location"`
}

type xmlIndex struct {
	Index int `xml:"index,attr"`
}

type xmlFile struct {
	RowType            string      `xml:"rowType,attr"`
	FieldsTerminatedBy string      `xml:"fieldsTerminatedBy,attr"`
	LinesTerminatedBy  string      `xml:"linesTerminatedBy,attr"`
	FieldsEnclosedBy   string      `xml:"fieldsEnclosedBy,attr"`
	Encoding           string      `xml:"encoding,attr"`
	IgnoreHeaderLines  int         `xml:"ignoreHeaderLines,attr"`
	Files              xmlFiles    `xml:"files"`
	ID                 *xmlIndex   `xml:"id,omitempty"`
	CoreID             *xmlIndex   `xml:"coreid,omitempty"`
	Fields             []metaField `xml:"field"`
}

type xmlArchive struct {
	XMLName    xml.Name  `xml:"archive"`
	Xmlns      string    `xml:"xmlns,attr"`
	Metadata   string    `xml:"metadata,attr"`
	Core       xmlFile   `xml:"core"`
	Extensions []xmlFile `xml:"extension"`
}

// renderMeta builds the meta.xml descriptor of the archive.
func renderMeta(core metaFile, exts []metaFile) []byte {
	doc := xmlArchive{
		Xmlns:    "http://rs.tdwg.org/dwc/text/",
		Metadata: "eml.xml",
		Core:     toXMLFile(core),
	}
	for _, ext := range exts {
		doc.Extensions = append(doc.Extensions, toXMLFile(ext))
	}
	res, _ := xml.MarshalIndent(doc, "", "  ")
	return append([]byte(xml.Header), res...)
}

func toXMLFile(f metaFile) xmlFile {
	res := xmlFile{
		RowType:            f.RowType,
		FieldsTerminatedBy: "\\t",
		LinesTerminatedBy:  "\\n",
		FieldsEnclosedBy:   "",
		Encoding:           "UTF-8",
		IgnoreHeaderLines:  1,
		Files:              xmlFiles{Location: f.Location},
		Fields:             f.Fields,
	}
	idx := &xmlIndex{Index: f.idIndex}
	if f.isCore {
		res.ID = idx
	} else {
		res.CoreID = idx
	}
	return res
}
