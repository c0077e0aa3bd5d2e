// Package docxtest builds minimal DOCX packages for tests.
package docxtest

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"strings"
)

const contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`

const rootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

const documentHead = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`

const documentTail = `<w:sectPr/></w:body></w:document>`

// Build zips body (the inner XML of w:body) into a DOCX package.
func Build(body string) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := []struct{ name, data string }{
		{"[Content_Types].xml", contentTypes},
		{"_rels/.rels", rootRels},
		{"word/document.xml", documentHead + body + documentTail},
	}
	for _, f := range files {
		w, err := zw.Create(f.name)
		if err != nil {
			panic(err)
		}
		if _, err := w.Write([]byte(f.data)); err != nil {
			panic(err)
		}
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Para renders a paragraph with an optional style id.
func Para(style, text string) string {
	ppr := ""
	if style != "" {
		ppr = fmt.Sprintf(`<w:pPr><w:pStyle w:val="%s"/></w:pPr>`, style)
	}
	return fmt.Sprintf(`<w:p>%s<w:r><w:t xml:space="preserve">%s</w:t></w:r></w:p>`, ppr, html.EscapeString(text))
}

// Table renders a table; each row is a slice of cell texts.
func Table(rows ...[]string) string {
	var sb strings.Builder
	sb.WriteString(`<w:tbl><w:tblPr/><w:tblGrid/>`)
	for _, row := range rows {
		sb.WriteString(`<w:tr>`)
		for _, cell := range row {
			sb.WriteString(`<w:tc><w:tcPr><w:tcW w:w="1000" w:type="dxa"/></w:tcPr>`)
			sb.WriteString(Para("", cell))
			sb.WriteString(`</w:tc>`)
		}
		sb.WriteString(`</w:tr>`)
	}
	sb.WriteString(`</w:tbl>`)
	return sb.String()
}

// Template builds a RAMS-shaped template: a hazard table with a sentinel
// row plus the two narrative placeholders.
func Template(sentinel, sequenceMarker, methodMarker string) []byte {
	return Build(
		Para("Heading1", "Risk Assessment") +
			Table(
				[]string{"No", "Hazard", "Persons at Risk", "Undesired Event", "Control Measures", "Actioned By", "Notes"},
				[]string{"", sentinel, "", "", "", "", ""},
			) +
			Para("Heading1", "Sequence of Activities") +
			Para("BodyText", sequenceMarker) +
			Para("Heading1", "Method Statement") +
			Para("BodyText", methodMarker) +
			Para("", "End of document"),
	)
}
