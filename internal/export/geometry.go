package export

import "math"

// A4 page size in millimetres.
const (
	PageWidthMM  = 210.0
	PageHeightMM = 297.0
)

const epsilon = 1e-6

// ImageHeight is the height in millimetres of a bitmap scaled to pageWidth.
func ImageHeight(bitmapWidth, bitmapHeight int, pageWidth float64) float64 {
	if bitmapWidth <= 0 || bitmapHeight <= 0 {
		return 0
	}
	return float64(bitmapHeight) * pageWidth / float64(bitmapWidth)
}

// Paginate returns the vertical offset of the full image on each page. The
// first page shows the image at 0; each following page shifts it up by one
// page height until no height remains.
func Paginate(imageHeight, pageHeight float64) []float64 {
	if imageHeight <= 0 || pageHeight <= 0 {
		return nil
	}
	offsets := []float64{0}
	remaining := imageHeight - pageHeight
	for remaining > epsilon {
		offsets = append(offsets, -float64(len(offsets))*pageHeight)
		remaining -= pageHeight
	}
	return offsets
}

// Bands returns how much of the image each page shows.
func Bands(imageHeight, pageHeight float64) []float64 {
	offsets := Paginate(imageHeight, pageHeight)
	bands := make([]float64, len(offsets))
	for i, off := range offsets {
		bands[i] = math.Min(pageHeight, imageHeight+off)
	}
	return bands
}
