package export

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ComputedStyle is the resolved style of one element, as reported by the browser.
type ComputedStyle struct {
	BackgroundColor string `json:"backgroundColor"`
	Color           string `json:"color"`
	BorderWidth     string `json:"borderWidth"`
	BorderStyle     string `json:"borderStyle"`
	BorderColor     string `json:"borderColor"`
	Fill            string `json:"fill"`
}

// StaticTree is a detached copy of the export target with every visual
// property written inline.
type StaticTree struct {
	HTML     string
	Elements int
}

// SnapshotStyles clones the element matched by selector and writes styles onto
// the clone. styles holds one entry per element, the target first and then its
// descendants in document order. The parsed source is never modified.
func SnapshotStyles(html, selector string, styles []ComputedStyle) (*StaticTree, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	target := doc.Find(selector).First()
	if target.Length() == 0 {
		return nil, ErrTargetNotFound
	}

	clone := target.Clone()
	elements := make([]*goquery.Selection, 0, len(styles))
	elements = append(elements, clone)
	clone.Find("*").Each(func(_ int, s *goquery.Selection) {
		elements = append(elements, s)
	})
	if len(elements) != len(styles) {
		return nil, &StyleMismatchError{Elements: len(elements), Styles: len(styles)}
	}

	for i, el := range elements {
		applyStyle(el, styles[i])
	}
	clone.SetAttr("style", mergeStyle(clone.AttrOr("style", ""),
		"width: 210mm", "margin: 0", "transform: none", "box-sizing: border-box", "overflow: visible"))

	out, err := goquery.OuterHtml(clone)
	if err != nil {
		return nil, err
	}
	return &StaticTree{HTML: out, Elements: len(elements)}, nil
}

func applyStyle(el *goquery.Selection, cs ComputedStyle) {
	decls := []string{"-webkit-print-color-adjust: exact", "print-color-adjust: exact"}
	if !transparent(cs.BackgroundColor) {
		decls = append(decls, "background-color: "+cs.BackgroundColor)
	}
	if cs.Color != "" {
		decls = append(decls, "color: "+cs.Color)
	}
	if hasBorder(cs.BorderWidth) {
		decls = append(decls,
			"border-width: "+cs.BorderWidth,
			"border-style: "+cs.BorderStyle,
			"border-color: "+cs.BorderColor,
		)
	}
	decls = append(decls, "transition: none", "animation: none")
	el.SetAttr("style", mergeStyle(el.AttrOr("style", ""), decls...))

	if goquery.NodeName(el) == "svg" && cs.Color != "" {
		el.Find("path").Each(func(_ int, path *goquery.Selection) {
			fill, ok := path.Attr("fill")
			if !ok || fill == "" || strings.EqualFold(fill, "currentColor") {
				path.SetAttr("fill", cs.Color)
			}
		})
	}
}

func transparent(color string) bool {
	c := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(color)), " ", "")
	return c == "" || c == "transparent" || c == "rgba(0,0,0,0)"
}

// hasBorder reports whether any side of a computed border-width is non-zero.
func hasBorder(width string) bool {
	for _, side := range strings.Fields(width) {
		if side != "0px" && side != "0" {
			return true
		}
	}
	return false
}

func mergeStyle(existing string, decls ...string) string {
	existing = strings.TrimSpace(existing)
	joined := strings.Join(decls, "; ")
	if existing == "" {
		return joined + ";"
	}
	return strings.TrimSuffix(existing, ";") + "; " + joined + ";"
}

// stageID is the id of the container the static tree is rasterized from.
const stageID = "pdf-export-stage"

// Stage builds the document a rasterizer captures: the original head, so
// stylesheets still apply, and a body holding only the static tree inside the
// stage container.
func Stage(html string, tree *StaticTree) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	body := doc.Find("body")
	body.Empty()
	body.SetAttr("style", "margin: 0; background-color: #ffffff;")
	body.AppendHtml(`<div id="` + stageID + `" style="position: absolute; top: 0; left: 0; width: 210mm; height: auto; background-color: #ffffff; overflow: visible;">` + tree.HTML + `</div>`)
	return doc.Html()
}
