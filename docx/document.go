package docx

import "encoding/xml"

// XML namespaces used in DOCX files
const (
	nsR = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

	relTypeHyperlink = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
)

// Part names inside the package.
const (
	partContentTypes       = "[Content_Types].xml"
	partDocument           = "word/document.xml"
	partDocumentRels       = "word/_rels/document.xml.rels"
	partStyles             = "word/styles.xml"
	relsContentTypeDefault = `<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`
	emptyRelationship      = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`
)

// hyperlinkXML represents a hyperlink start tag. ID is the relationship id
// of an external link; Anchor is the bookmark name of an internal one.
type hyperlinkXML struct {
	ID     string `xml:"id,attr"`
	Anchor string `xml:"anchor,attr"`
}

// stylesXML represents the structure of word/styles.xml
type stylesXML struct {
	XMLName xml.Name      `xml:"styles"`
	Styles  []styleDefXML `xml:"style"`
}

// styleDefXML represents a style definition.
type styleDefXML struct {
	Type        string       `xml:"type,attr"` // paragraph, character, table, numbering
	StyleID     string       `xml:"styleId,attr"`
	Default     string       `xml:"default,attr"` // "1" if default style
	CustomStyle string       `xml:"customStyle,attr"`
	Name        styleNameXML `xml:"name"`
	BasedOn     styleNameXML `xml:"basedOn"`
}

// styleNameXML represents a style name or parent reference.
type styleNameXML struct {
	Val string `xml:"val,attr"`
}

// relationshipsXML represents _rels/*.rels files
type relationshipsXML struct {
	XMLName       xml.Name          `xml:"Relationships"`
	Relationships []relationshipXML `xml:"Relationship"`
}

// relationshipXML represents a single relationship.
type relationshipXML struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"` // External or empty (internal)
}
