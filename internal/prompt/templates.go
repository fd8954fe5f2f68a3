package prompt

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/nidhogg/concerto-copilot/internal/corpus"
	"github.com/nidhogg/concerto-copilot/internal/namespace"
	"github.com/nidhogg/concerto-copilot/internal/provider"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Each file defines a "system" and a "user" template.
var (
	inlineConcertoTmpl = mustParse("inline_concerto.tmpl")
	inlineGenericTmpl  = mustParse("inline_generic.tmpl")
	fixTmpl            = mustParse("fix.tmpl")
	generalTmpl        = mustParse("general.tmpl")
	modelTmpl          = mustParse("model.tmpl")
	grammarTmpl        = mustParse("grammar.tmpl")
)

func mustParse(name string) *template.Template {
	return template.Must(template.New(name).ParseFS(templateFS, "templates/"+name))
}

type inlineData struct {
	Before      string
	After       string
	Instruction string
}

type fixData struct {
	Content     string
	Instruction string
}

type generalData struct {
	Instruction string
}

type templateView struct {
	Name    string
	Grammar string
	Sample  string
	Model   string
}

type modelData struct {
	Provider    string
	Instruction string
	Grammar     string
	PackageJSON string
	Imports     string
	Models      []corpus.ModelEmbeddings
	Templates   []templateView
}

type grammarData struct {
	Instruction string
	Sample      string
	Templates   []templateView
}

// render executes the system and user parts of t.
func render(t *template.Template, data any) ([]provider.Message, error) {
	system, err := execute(t, "system", data)
	if err != nil {
		return nil, err
	}
	user, err := execute(t, "user", data)
	if err != nil {
		return nil, err
	}
	return []provider.Message{
		{Role: provider.RoleSystem, Content: system},
		{Role: provider.RoleUser, Content: user},
	}, nil
}

func execute(t *template.Template, part string, data any) (string, error) {
	var b strings.Builder
	if err := t.ExecuteTemplate(&b, part, data); err != nil {
		return "", fmt.Errorf("render %s/%s: %w", t.Name(), part, err)
	}
	return b.String(), nil
}

func renderInline(lang Language, before, after, instruction string) ([]provider.Message, error) {
	t := inlineGenericTmpl
	if lang == Concerto {
		t = inlineConcertoTmpl
	}
	return render(t, inlineData{Before: before, After: after, Instruction: instruction})
}

func renderFix(content, instruction string) ([]provider.Message, error) {
	return render(fixTmpl, fixData{Content: content, Instruction: instruction})
}

func renderGeneral(instruction string) ([]provider.Message, error) {
	return render(generalTmpl, generalData{Instruction: instruction})
}

func renderModel(data modelData) ([]provider.Message, error) {
	return render(modelTmpl, data)
}

func renderGrammar(data grammarData) ([]provider.Message, error) {
	return render(grammarTmpl, data)
}

// views converts matched templates for rendering. Template models have their
// imports removed so they do not clash with the generated import block.
func views(templates []corpus.TemplateEmbeddings) []templateView {
	out := make([]templateView, 0, len(templates))
	for _, t := range templates {
		out = append(out, templateView{
			Name:    t.Name,
			Grammar: t.Grammar,
			Sample:  t.Sample,
			Model:   namespace.StripImports(t.Model),
		})
	}
	return out
}
