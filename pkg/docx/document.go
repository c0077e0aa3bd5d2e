package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
)

// ContentType is the MIME type of a WordprocessingML package.
const ContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

const documentPart = "word/document.xml"

type part struct {
	header zip.FileHeader
	data   []byte
}

// Document is one parsed DOCX package. The main document part is held as an
// XML tree; every other part is carried through untouched. A Document is not
// safe for concurrent mutation.
type Document struct {
	parts []part
	xml   *etree.Document
	body  *etree.Element
}

// Open parses a DOCX package from memory. The returned Document shares no
// state with data or with any other Document.
func Open(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("read docx container: %w", err)
	}

	doc := &Document{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open part %s: %w", f.Name, err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read part %s: %w", f.Name, err)
		}
		doc.parts = append(doc.parts, part{header: f.FileHeader, data: b})

		if f.Name == documentPart {
			tree := etree.NewDocument()
			if err := tree.ReadFromBytes(b); err != nil {
				return nil, fmt.Errorf("parse %s: %w", documentPart, err)
			}
			doc.xml = tree
		}
	}

	if doc.xml == nil || doc.xml.Root() == nil {
		return nil, fmt.Errorf("docx has no %s part", documentPart)
	}
	doc.body = doc.xml.Root().SelectElement("w:body")
	if doc.body == nil {
		return nil, fmt.Errorf("%s has no w:body", documentPart)
	}
	return doc, nil
}

// Save serializes the document back into a DOCX package.
func (d *Document) Save() ([]byte, error) {
	xmlBytes, err := d.xml.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("serialize %s: %w", documentPart, err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range d.parts {
		data := p.data
		if p.header.Name == documentPart {
			data = xmlBytes
		}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     p.header.Name,
			Method:   zip.Deflate,
			Modified: p.header.Modified,
		})
		if err != nil {
			return nil, fmt.Errorf("write part %s: %w", p.header.Name, err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("write part %s: %w", p.header.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close docx container: %w", err)
	}
	return buf.Bytes(), nil
}

// Paragraphs returns a snapshot of the body-level paragraphs in document order.
func (d *Document) Paragraphs() []*Paragraph {
	var out []*Paragraph
	for _, el := range d.body.ChildElements() {
		if isTag(el, "p") {
			out = append(out, &Paragraph{el: el})
		}
	}
	return out
}

// Tables returns a snapshot of the body-level tables in document order.
func (d *Document) Tables() []*Table {
	var out []*Table
	for _, el := range d.body.ChildElements() {
		if isTag(el, "tbl") {
			out = append(out, &Table{el: el})
		}
	}
	return out
}

// FindParagraph returns the first body paragraph whose text contains substr.
func (d *Document) FindParagraph(substr string) (*Paragraph, bool) {
	for _, p := range d.Paragraphs() {
		if strings.Contains(p.Text(), substr) {
			return p, true
		}
	}
	return nil, false
}

// ContainsText reports whether any paragraph anywhere in the body, table
// cells included, contains substr.
func (d *Document) ContainsText(substr string) bool {
	for _, el := range d.body.FindElements(".//w:p") {
		if strings.Contains(paragraphText(el), substr) {
			return true
		}
	}
	return false
}

func isTag(el *etree.Element, tag string) bool {
	return el.Space == "w" && el.Tag == tag
}
