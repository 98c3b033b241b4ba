package resume

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/jonathan/resume-builder/internal/types"
)

// Normalize converts a loosely typed document tree, as read from the store, into a
// ResumeDocument. Missing sections become empty lists, a missing personalInfo becomes
// a blank record, and fields of the wrong type read as zero values. It never fails.
func Normalize(raw any) types.ResumeDocument {
	m := asMap(raw)
	doc := types.ResumeDocument{
		PersonalInfo: normalizePersonalInfo(m[types.SectionPersonalInfo]),
		Education:    []types.EducationEntry{},
		Experience:   []types.ExperienceEntry{},
		Skills:       []types.SkillCategory{},
		Projects:     []types.ProjectEntry{},
	}
	for _, item := range asList(m[types.SectionEducation]) {
		e := asMap(item)
		if e == nil {
			continue
		}
		doc.Education = append(doc.Education, types.EducationEntry{
			ID:          asInt(e["id"]),
			Institution: asString(e["institution"]),
			Degree:      asString(e["degree"]),
			Field:       asString(e["field"]),
			StartDate:   asString(e["startDate"]),
			EndDate:     asString(e["endDate"]),
			Location:    asString(e["location"]),
			Description: asString(e["description"]),
		})
	}
	for _, item := range asList(m[types.SectionExperience]) {
		e := asMap(item)
		if e == nil {
			continue
		}
		doc.Experience = append(doc.Experience, types.ExperienceEntry{
			ID:               asInt(e["id"]),
			Company:          asString(e["company"]),
			Position:         asString(e["position"]),
			Location:         asString(e["location"]),
			StartDate:        asString(e["startDate"]),
			EndDate:          asString(e["endDate"]),
			Current:          asBool(e["current"]),
			Responsibilities: asStrings(e["responsibilities"]),
		})
	}
	for _, item := range asList(m[types.SectionSkills]) {
		e := asMap(item)
		if e == nil {
			continue
		}
		doc.Skills = append(doc.Skills, types.SkillCategory{
			ID:     asInt(e["id"]),
			Name:   asString(e["name"]),
			Skills: asStrings(e["skills"]),
		})
	}
	for _, item := range asList(m[types.SectionProjects]) {
		e := asMap(item)
		if e == nil {
			continue
		}
		doc.Projects = append(doc.Projects, types.ProjectEntry{
			ID:           asInt(e["id"]),
			Title:        asString(e["title"]),
			Link:         asString(e["link"]),
			Description:  asString(e["description"]),
			Technologies: asString(e["technologies"]),
			StartDate:    asString(e["startDate"]),
			EndDate:      asString(e["endDate"]),
			Current:      asBool(e["current"]),
		})
	}
	return doc
}

func normalizePersonalInfo(raw any) types.PersonalInfo {
	m := asMap(raw)
	return types.PersonalInfo{
		FullName:  asString(m["fullName"]),
		JobTitle:  asString(m["jobTitle"]),
		Email:     asString(m["email"]),
		Phone:     asString(m["phone"]),
		Location:  asString(m["location"]),
		LinkedIn:  asString(m["linkedin"]),
		GitHub:    asString(m["github"]),
		Portfolio: asString(m["portfolio"]),
		Summary:   asString(m["summary"]),
	}
}

// NormalizeRecord converts a stored record tree into a ResumeRecord with metadata defaults applied.
func NormalizeRecord(raw any) types.ResumeRecord {
	m := asMap(raw)
	meta := asMap(m["metadata"])
	rec := types.ResumeRecord{
		ResumeData: Normalize(m["resumeData"]),
		Metadata: types.Metadata{
			Title:        asString(meta["title"]),
			CreatedAt:    asTimestamp(meta["createdAt"]),
			LastModified: asTimestamp(meta["lastModified"]),
			Template:     asString(meta["template"]),
			ColorScheme:  asString(meta["colorScheme"]),
			Shared:       asBool(meta["shared"]),
		},
	}
	if strings.TrimSpace(rec.Metadata.Title) == "" {
		rec.Metadata.Title = types.DefaultTitle
	}
	if !types.Template(rec.Metadata.Template).Valid() {
		rec.Metadata.Template = string(types.DefaultTemplate)
	}
	if rec.Metadata.ColorScheme == "" {
		rec.Metadata.ColorScheme = types.DefaultColorScheme
	}
	return rec
}

// ForEditing returns the shape the editor works on: every list holds at least one
// entry, every experience at least one responsibility, every category at least one
// skill, and current entries carry no end date.
func ForEditing(doc types.ResumeDocument) types.ResumeDocument {
	out := doc.Clone()
	if len(out.Education) == 0 {
		out.Education = []types.EducationEntry{BlankEducation(1)}
	}
	if len(out.Experience) == 0 {
		out.Experience = []types.ExperienceEntry{BlankExperience(1)}
	}
	if len(out.Projects) == 0 {
		out.Projects = []types.ProjectEntry{BlankProject(1)}
	}
	if len(out.Skills) == 0 {
		out.Skills = []types.SkillCategory{BlankSkillCategory(1)}
	}
	for i := range out.Experience {
		if len(out.Experience[i].Responsibilities) == 0 {
			out.Experience[i].Responsibilities = []string{""}
		}
		if out.Experience[i].Current {
			out.Experience[i].EndDate = ""
		}
	}
	for i := range out.Projects {
		if out.Projects[i].Current {
			out.Projects[i].EndDate = ""
		}
	}
	for i := range out.Skills {
		if len(out.Skills[i].Skills) == 0 {
			out.Skills[i].Skills = []string{""}
		}
	}
	return out
}

// ToTree converts a typed value into the generic tree shape the store persists.
func ToTree(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// asList accepts both arrays and objects keyed by index, which is how sparse
// arrays come back from the store.
func asList(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case map[string]any:
		keys := make([]int, 0, len(t))
		for k := range t {
			if n, err := strconv.Atoi(k); err == nil && n >= 0 {
				keys = append(keys, n)
			}
		}
		sort.Ints(keys)
		out := make([]any, 0, len(keys))
		for _, k := range keys {
			out = append(out, t[strconv.Itoa(k)])
		}
		return out
	}
	return nil
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	}
	return ""
}

func asStrings(v any) []string {
	items := asList(v)
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, asString(item))
	}
	return out
}

func asInt(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case int:
		return t
	case int64:
		return int(t)
	case json.Number:
		n, _ := t.Int64()
		return int(n)
	case string:
		n, _ := strconv.Atoi(t)
		return n
	}
	return 0
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asTimestamp(v any) *int64 {
	var ms int64
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil
		}
		ms = int64(t)
	case int64:
		ms = t
	case int:
		ms = int64(t)
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return nil
		}
		ms = n
	default:
		return nil
	}
	return &ms
}
