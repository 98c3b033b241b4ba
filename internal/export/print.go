package export

import "github.com/PuerkitoBio/goquery"

// PrintStylesID is the id of the injected print stylesheet.
const PrintStylesID = "pdf-print-styles"

// PrintCSS forces exact colours and an A4 layout when printing.
const PrintCSS = `
@page { size: A4; margin: 0; }
@media print {
  * {
    -webkit-print-color-adjust: exact !important;
    print-color-adjust: exact !important;
    color-adjust: exact !important;
  }
  body { margin: 0; background: #ffffff; -webkit-font-smoothing: antialiased; }
  .resume-container {
    width: 210mm !important;
    height: auto !important;
    margin: 0 !important;
    overflow: visible !important;
  }
  .entry, .chip, .skill-category, .no-break {
    page-break-inside: avoid !important;
  }
}
`

// AcquirePrintStyles adds the print stylesheet to doc and returns a function
// that removes it. When the stylesheet is already present the returned
// function leaves it in place for its original owner.
func AcquirePrintStyles(doc *goquery.Document) (release func()) {
	if doc.Find("#"+PrintStylesID).Length() > 0 {
		return func() {}
	}
	head := doc.Find("head")
	if head.Length() == 0 {
		doc.Find("html").PrependHtml("<head></head>")
		head = doc.Find("head")
	}
	head.AppendHtml(`<style id="` + PrintStylesID + `">` + PrintCSS + `</style>`)
	return func() {
		doc.Find("#" + PrintStylesID).Remove()
	}
}
