package export

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png" // register PNG for DecodeConfig

	"github.com/go-pdf/fpdf"
)

// Text of the fallback document.
const (
	SimpleTitle = "Your Resume"
	SimpleNote  = "For better results, please use the Print option instead"
)

const rasterName = "resume"

func newA4() *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	return pdf
}

// RichPDF lays a PNG rendering of the resume across as many A4 pages as its
// height needs. Every page draws the full image, shifted up by one page height
// per page.
func RichPDF(png []byte) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(png))
	if err != nil {
		return nil, fmt.Errorf("failed to decode raster: %w", err)
	}
	height := ImageHeight(cfg.Width, cfg.Height, PageWidthMM)
	offsets := Paginate(height, PageHeightMM)
	if len(offsets) == 0 {
		return nil, fmt.Errorf("raster has no area (%dx%d)", cfg.Width, cfg.Height)
	}

	pdf := newA4()
	opts := fpdf.ImageOptions{ImageType: "PNG", AllowNegativePosition: true}
	pdf.RegisterImageOptionsReader(rasterName, opts, bytes.NewReader(png))
	for _, y := range offsets {
		pdf.AddPage()
		pdf.ImageOptions(rasterName, 0, y, PageWidthMM, height, false, opts, 0, "")
	}
	return output(pdf)
}

// SimplePDF produces the single-page fallback document.
func SimplePDF() ([]byte, error) {
	pdf := newA4()
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 16)
	centered(pdf, 20, SimpleTitle)
	pdf.SetFont("Helvetica", "", 12)
	centered(pdf, 30, SimpleNote)
	return output(pdf)
}

func centered(pdf *fpdf.Fpdf, y float64, text string) {
	pdf.Text(PageWidthMM/2-pdf.GetStringWidth(text)/2, y, text)
}

func output(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
