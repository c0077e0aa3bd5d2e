package docx

import (
	"strings"

	"github.com/beevik/etree"
)

// Paragraph is a handle on one w:p element.
type Paragraph struct {
	el *etree.Element
}

// Text returns the paragraph's plain text. Tabs and line breaks inside runs
// are rendered as '\t' and '\n'.
func (p *Paragraph) Text() string {
	return paragraphText(p.el)
}

// StyleID returns the paragraph style id, or "" when the paragraph uses the
// document default.
func (p *Paragraph) StyleID() string {
	ppr := p.el.SelectElement("w:pPr")
	if ppr == nil {
		return ""
	}
	ps := ppr.SelectElement("w:pStyle")
	if ps == nil {
		return ""
	}
	return ps.SelectAttrValue("w:val", "")
}

// InsertParagraphBefore inserts a new paragraph holding text immediately
// before p and returns it. An empty styleID leaves the default style.
func (p *Paragraph) InsertParagraphBefore(text, styleID string) *Paragraph {
	np := newParagraph(text, styleID)
	if parent := p.el.Parent(); parent != nil {
		parent.InsertChildAt(p.el.Index(), np)
	}
	return &Paragraph{el: np}
}

// Remove detaches the paragraph from its parent. Other handles stay valid.
func (p *Paragraph) Remove() {
	if parent := p.el.Parent(); parent != nil {
		parent.RemoveChild(p.el)
	}
}

func newParagraph(text, styleID string) *etree.Element {
	pe := etree.NewElement("w:p")
	if styleID != "" {
		pe.CreateElement("w:pPr").CreateElement("w:pStyle").CreateAttr("w:val", styleID)
	}
	if text != "" {
		appendRun(pe, nil, text)
	}
	return pe
}

// appendRun adds a w:r carrying text to parent, copying rPr when given.
// '\n' becomes w:br and '\t' becomes w:tab.
func appendRun(parent, rPr *etree.Element, text string) {
	run := parent.CreateElement("w:r")
	if rPr != nil {
		run.AddChild(rPr.Copy())
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if i > 0 {
			run.CreateElement("w:br")
		}
		for j, seg := range strings.Split(line, "\t") {
			if j > 0 {
				run.CreateElement("w:tab")
			}
			if seg == "" {
				continue
			}
			t := run.CreateElement("w:t")
			t.CreateAttr("xml:space", "preserve")
			t.SetText(seg)
		}
	}
}

func paragraphText(el *etree.Element) string {
	var sb strings.Builder
	collectText(el, &sb)
	return sb.String()
}

func collectText(el *etree.Element, sb *strings.Builder) {
	for _, c := range el.ChildElements() {
		if c.Space != "w" {
			continue
		}
		switch c.Tag {
		case "t":
			sb.WriteString(c.Text())
		case "tab":
			sb.WriteByte('\t')
		case "br", "cr":
			sb.WriteByte('\n')
		case "pPr", "rPr":
		default:
			collectText(c, sb)
		}
	}
}
