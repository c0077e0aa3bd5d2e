package prompt

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

var templates = template.Must(
	template.New("prompts").
		Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
		ParseFS(templatesFS, "templates/*.tmpl"),
)

// MethodSubsections are the headings every method statement must cover.
var MethodSubsections = []string{
	"Scope of Works",
	"Roles and Responsibilities",
	"Hold Points",
	"Operated Plant",
	"Tools and Equipment",
	"Materials",
	"PPE",
	"Rescue Plan",
	"Applicable Site Standards",
	"CESWI Clauses",
	"Quality Control",
	"Environmental Considerations",
}

// Pair is one question with the answer collected for it. Question may be
// empty when only answers are known.
type Pair struct {
	Question string
	Answer   string
}

// SectionData feeds the section templates.
type SectionData struct {
	Task        string
	Pairs       []Pair
	MinHazards  int
	MinWords    int
	Subsections []string
}

// DefaultSystemPrompt is used when no system prompt file is configured.
func DefaultSystemPrompt() string {
	b, err := templatesFS.ReadFile("templates/system.tmpl")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

// Questions renders the instruction that asks the model for count questions
// about task.
func Questions(task string, count int) (string, error) {
	return render("questions", struct {
		Task  string
		Count int
	}{Task: task, Count: count})
}

// Section renders the user prompt for the named section template.
func Section(name string, data SectionData) (string, error) {
	return render(name, data)
}

// LoadSystemPrompt reads the system prompt file at path and cuts it at
// cutMarker. A missing file yields ("", fs.ErrNotExist).
func LoadSystemPrompt(path, cutMarker string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fs.ErrNotExist
		}
		return "", fmt.Errorf("read system prompt: %w", err)
	}
	text := string(b)
	if cutMarker != "" {
		if i := strings.Index(text, cutMarker); i >= 0 {
			text = text[:i]
		}
	}
	return strings.TrimSpace(text), nil
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name+".tmpl", data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}
