//nolint:revive // types is a standard Go package name pattern
package types

// Template names a visual layout.
type Template string

const (
	TemplateModern       Template = "modern"
	TemplateMinimal      Template = "minimal"
	TemplateCreative     Template = "creative"
	TemplateProfessional Template = "professional"
)

// Templates lists the supported layouts.
var Templates = []Template{TemplateModern, TemplateMinimal, TemplateCreative, TemplateProfessional}

// Valid reports whether t is a known template.
func (t Template) Valid() bool {
	for _, known := range Templates {
		if t == known {
			return true
		}
	}
	return false
}

// Record defaults applied when metadata is missing.
const (
	DefaultTitle       = "Untitled Resume"
	DefaultTemplate    = TemplateModern
	DefaultColorScheme = "purple"
)

// Metadata describes a stored resume. Timestamps are store-clock epoch milliseconds.
type Metadata struct {
	Title        string `json:"title"`
	CreatedAt    *int64 `json:"createdAt,omitempty"`
	LastModified *int64 `json:"lastModified,omitempty"`
	Template     string `json:"template"`
	ColorScheme  string `json:"colorScheme"`
	Shared       bool   `json:"shared"`
}

// ResumeRecord is the persisted unit at users/{uid}/resumes/{resumeId}.
type ResumeRecord struct {
	ResumeData ResumeDocument `json:"resumeData"`
	Metadata   Metadata       `json:"metadata"`
}

// CreateResumeRequest is the body of a create call. Empty fields take record defaults.
type CreateResumeRequest struct {
	Title       string `json:"title" validate:"omitempty,max=200"`
	Template    string `json:"template" validate:"omitempty,oneof=modern minimal creative professional"`
	ColorScheme string `json:"colorScheme" validate:"omitempty,max=32"`
}

// AppearanceRequest changes how a resume is rendered.
type AppearanceRequest struct {
	Template    string `json:"template" validate:"required,oneof=modern minimal creative professional"`
	ColorScheme string `json:"colorScheme" validate:"required,max=32"`
}

// TitleRequest renames a resume from the editor.
type TitleRequest struct {
	Title string `json:"title" validate:"max=200"`
}
