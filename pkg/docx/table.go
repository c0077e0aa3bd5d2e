package docx

import (
	"strings"

	"github.com/beevik/etree"
)

// Table is a handle on one w:tbl element.
type Table struct {
	el *etree.Element
}

// Row is a handle on one w:tr element.
type Row struct {
	el *etree.Element
}

// Cell is a handle on one w:tc element.
type Cell struct {
	el *etree.Element
}

// Rows returns a snapshot of the table's rows.
func (t *Table) Rows() []*Row {
	var out []*Row
	for _, el := range t.el.ChildElements() {
		if isTag(el, "tr") {
			out = append(out, &Row{el: el})
		}
	}
	return out
}

// AppendRow appends a copy of prototype with every cell emptied. Cell and
// row properties of the prototype are kept. prototype may already be
// detached from the table.
func (t *Table) AppendRow(prototype *Row) *Row {
	nr := &Row{el: prototype.el.Copy()}
	for _, c := range nr.Cells() {
		c.SetText("")
	}
	t.el.AddChild(nr.el)
	return nr
}

// Cells returns the row's cells. Merged cells count once.
func (r *Row) Cells() []*Cell {
	var out []*Cell
	for _, el := range r.el.ChildElements() {
		if isTag(el, "tc") {
			out = append(out, &Cell{el: el})
		}
	}
	return out
}

// Remove detaches the row from its table.
func (r *Row) Remove() {
	if parent := r.el.Parent(); parent != nil {
		parent.RemoveChild(r.el)
	}
}

// Text returns the cell's paragraphs joined by '\n'.
func (c *Cell) Text() string {
	var parts []string
	for _, el := range c.el.ChildElements() {
		if isTag(el, "p") {
			parts = append(parts, paragraphText(el))
		}
	}
	return strings.Join(parts, "\n")
}

// SetText replaces the cell content with a single paragraph holding text.
// The first paragraph's properties and first run's formatting survive.
func (c *Cell) SetText(text string) {
	var first *etree.Element
	for _, el := range c.el.ChildElements() {
		switch {
		case isTag(el, "tcPr"):
		case isTag(el, "p") && first == nil:
			first = el
		default:
			c.el.RemoveChild(el)
		}
	}
	if first == nil {
		first = c.el.CreateElement("w:p")
	}

	var rPr *etree.Element
	if r := first.SelectElement("w:r"); r != nil {
		if rp := r.SelectElement("w:rPr"); rp != nil {
			rPr = rp.Copy()
		}
	}
	for _, el := range first.ChildElements() {
		if !isTag(el, "pPr") {
			first.RemoveChild(el)
		}
	}
	if text != "" {
		appendRun(first, rPr, text)
	}
}
