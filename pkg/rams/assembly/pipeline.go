package assembly

import (
	"context"
	"fmt"
	"time"

	"github.com/CustomGPTer/RAMS-Generator/internal/pkg/apperror"
	"github.com/CustomGPTer/RAMS-Generator/internal/pkg/logger"
	"github.com/CustomGPTer/RAMS-Generator/pkg/docx"
	"github.com/CustomGPTer/RAMS-Generator/pkg/rams/prompt"
	"github.com/CustomGPTer/RAMS-Generator/pkg/rams/section"
	"github.com/CustomGPTer/RAMS-Generator/pkg/rams/substitute"
	"github.com/CustomGPTer/RAMS-Generator/pkg/rams/template"
)

const module = "ASSEMBLY"

// SectionGenerator produces the text of one section.
type SectionGenerator interface {
	Generate(ctx context.Context, req section.Request) (string, error)
}

// Markers tell the pipeline where each section goes in the template.
type Markers struct {
	HazardSentinel string
	SequenceMarker string
	MethodMarker   string
	Table          substitute.TableOptions
}

type Config struct {
	SystemPrompt string
	Markers      Markers
	Filename     string
}

// Input is everything collected for one document.
type Input struct {
	Task  string
	Pairs []prompt.Pair
}

// Sections holds generated text keyed by section.
type Sections map[section.Kind]string

// Output is a finished document ready to send.
type Output struct {
	Bytes       []byte
	ContentType string
	Filename    string
}

type Pipeline struct {
	generator SectionGenerator
	templates template.Store
	cfg       Config
	log       logger.ILogger
}

func NewPipeline(generator SectionGenerator, templates template.Store, cfg Config, log logger.ILogger) *Pipeline {
	return &Pipeline{generator: generator, templates: templates, cfg: cfg, log: log}
}

// Assemble generates every section concurrently and renders them into a
// fresh template copy. Nothing is returned unless every step succeeds.
func (p *Pipeline) Assemble(ctx context.Context, in Input) (*Output, error) {
	start := time.Now()
	sections, err := p.GenerateSections(ctx, in)
	if err != nil {
		return nil, err
	}
	p.log.Info(module, "sections generated", map[string]interface{}{
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return p.Render(ctx, sections)
}

// GenerateSections fires one generation call per section and waits for all
// of them, or returns at the first failure. Calls still in flight after a
// failure run to completion and their results are dropped.
func (p *Pipeline) GenerateSections(ctx context.Context, in Input) (Sections, error) {
	reqs := make([]section.Request, 0, len(section.Kinds))
	for _, k := range section.Kinds {
		req, err := section.BuildRequest(k, p.cfg.SystemPrompt, in.Task, in.Pairs)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}

	type result struct {
		kind section.Kind
		text string
		err  error
	}
	results := make(chan result, len(reqs))
	for _, req := range reqs {
		go func(req section.Request) {
			text, err := p.generator.Generate(ctx, req)
			results <- result{kind: section.Kind(req.Section), text: text, err: err}
		}(req)
	}

	out := make(Sections, len(reqs))
	for range reqs {
		r := <-results
		if r.err != nil {
			p.log.Error(module, "section generation failed", map[string]interface{}{
				"section": string(r.kind),
				"error":   r.err.Error(),
			})
			return nil, r.err
		}
		out[r.kind] = r.text
	}
	return out, nil
}

// Render substitutes every section into a fresh template copy.
func (p *Pipeline) Render(ctx context.Context, sections Sections) (*Output, error) {
	doc, err := p.templates.Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, k := range section.Kinds {
		if err := p.apply(doc, k, sections[k]); err != nil {
			return nil, err
		}
	}
	return p.save(doc)
}

// RenderSection substitutes a single section and leaves the other
// placeholders in place.
func (p *Pipeline) RenderSection(ctx context.Context, kind section.Kind, content string) (*Output, error) {
	doc, err := p.templates.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := p.apply(doc, kind, content); err != nil {
		return nil, err
	}
	return p.save(doc)
}

func (p *Pipeline) apply(doc *docx.Document, kind section.Kind, content string) error {
	var (
		res substitute.Result
		err error
	)
	m := p.cfg.Markers
	switch kind {
	case section.RiskAssessment:
		res, err = substitute.ExpandTableRows(doc, m.HazardSentinel, content, m.Table)
	case section.SequenceOfActivities:
		res, err = substitute.ReplaceParagraph(doc, m.SequenceMarker, content)
	case section.MethodStatement:
		res, err = substitute.ReplaceParagraph(doc, m.MethodMarker, content)
	default:
		return apperror.Validation(fmt.Sprintf("unknown section %q", kind))
	}
	if err != nil {
		p.log.Error(module, "placeholder substitution failed", map[string]interface{}{
			"section": string(kind),
			"error":   err.Error(),
		})
		return err
	}
	p.log.Info(module, "section inserted", map[string]interface{}{
		"section":  string(kind),
		"inserted": res.Inserted,
	})
	return nil
}

func (p *Pipeline) save(doc *docx.Document) (*Output, error) {
	b, err := doc.Save()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrSerializationFailed, err)
	}
	return &Output{Bytes: b, ContentType: docx.ContentType, Filename: p.cfg.Filename}, nil
}
