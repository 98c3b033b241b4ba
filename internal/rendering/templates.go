package rendering

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sync"

	"github.com/jonathan/resume-builder/internal/types"
)

//go:embed templates/*.html
var templateFS embed.FS

// DisplayTree is a rendered resume: a complete HTML document whose export
// target carries id TargetID.
type DisplayTree struct {
	Kind  types.Template
	Title string
	HTML  string
}

// Bytes returns the document as bytes.
func (d *DisplayTree) Bytes() []byte { return []byte(d.HTML) }

var (
	loadOnce  sync.Once
	loaded    map[types.Template]*template.Template
	loadError error
)

// parseTemplates builds one template set per layout. Each set shares the
// document shell and section partials and supplies its own "body".
func parseTemplates() (map[types.Template]*template.Template, error) {
	base, err := template.New("layout.html").ParseFS(templateFS, "templates/layout.html", "templates/partials.html")
	if err != nil {
		return nil, &TemplateError{Template: "layout", Message: "failed to parse shared templates", Cause: err}
	}
	sets := make(map[types.Template]*template.Template, len(types.Templates))
	for _, kind := range types.Templates {
		set, err := base.Clone()
		if err != nil {
			return nil, &TemplateError{Template: string(kind), Message: "failed to clone shared templates", Cause: err}
		}
		if _, err := set.ParseFS(templateFS, "templates/"+string(kind)+".html"); err != nil {
			return nil, &TemplateError{Template: string(kind), Message: "failed to parse template", Cause: err}
		}
		sets[kind] = set
	}
	return sets, nil
}

func templates() (map[types.Template]*template.Template, error) {
	loadOnce.Do(func() {
		loaded, loadError = parseTemplates()
	})
	return loaded, loadError
}

// Render draws doc with the named layout. Every layout goes through the same
// view so placeholders and empty-section rules apply identically.
func Render(kind types.Template, doc types.ResumeDocument, style Style) (*DisplayTree, error) {
	if kind == "" {
		kind = types.DefaultTemplate
	}
	if !kind.Valid() {
		return nil, &TemplateError{Template: string(kind), Message: "unknown template"}
	}
	sets, err := templates()
	if err != nil {
		return nil, err
	}

	view := NewView(kind, doc, style)
	var buf bytes.Buffer
	if err := sets[kind].ExecuteTemplate(&buf, "layout.html", view); err != nil {
		return nil, &TemplateError{Template: string(kind), Message: "failed to execute template", Cause: err}
	}
	return &DisplayTree{
		Kind:  kind,
		Title: fmt.Sprintf("%s - Resume", view.Name),
		HTML:  buf.String(),
	}, nil
}
