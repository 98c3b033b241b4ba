package export

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/resume-builder/internal/logging"
	"github.com/jonathan/resume-builder/internal/rendering"
)

// Engine performs the browser-backed export steps.
type Engine interface {
	Capture(ctx context.Context, html, selector string) ([]ComputedStyle, error)
	Rasterize(ctx context.Context, html, selector string) ([]byte, error)
	PrintToPDF(ctx context.Context, html string) ([]byte, error)
}

// Tier identifies which rendition produced a file.
type Tier int

const (
	TierRich Tier = iota + 1
	TierSimple
	TierPrint
)

func (t Tier) String() string {
	switch t {
	case TierRich:
		return "rich"
	case TierSimple:
		return "simple"
	case TierPrint:
		return "print"
	default:
		return "unknown"
	}
}

// Result is a produced PDF.
type Result struct {
	PDF      []byte
	Filename string
	Tier     Tier
	// Cause is the rich export failure when a fallback was used.
	Cause error
}

// Options configures a Pipeline.
type Options struct {
	Timeout time.Duration
	Log     *logging.Logger
	Gate    *Gate
}

// Pipeline runs exports with fallback.
type Pipeline struct {
	engine  Engine
	timeout time.Duration
	log     *logging.Logger
	gate    *Gate
}

// NewPipeline creates a pipeline over engine.
func NewPipeline(engine Engine, opts Options) *Pipeline {
	p := &Pipeline{engine: engine, timeout: opts.Timeout, log: opts.Log, gate: opts.Gate}
	if p.timeout <= 0 {
		p.timeout = 90 * time.Second
	}
	if p.log == nil {
		p.log = logging.NewNop()
	}
	if p.gate == nil {
		p.gate = NewGate()
	}
	return p
}

var targetSelector = "#" + rendering.TargetID

// Export produces a PDF of tree. key identifies the resume; a second export
// for the same key while one runs returns ErrExportInProgress. When the rich
// rendition fails the simple one is returned instead; when both fail the error
// is an *ExportError pointing at the print rendition.
func (p *Pipeline) Export(ctx context.Context, key string, tree *rendering.DisplayTree, fullName string) (*Result, error) {
	release, ok := p.gate.TryAcquire(key)
	if !ok {
		return nil, ErrExportInProgress
	}
	defer release()

	if tree == nil {
		return nil, &ExportError{NextAction: NextActionPrint, Cause: ErrTargetNotFound}
	}
	filename := Filename(fullName)
	pdf, richErr := p.rich(ctx, tree.HTML)
	if richErr == nil {
		return &Result{PDF: pdf, Filename: filename, Tier: TierRich}, nil
	}
	p.log.Warn("rich export failed, using simple pdf", "key", key, "error", richErr)

	pdf, simpleErr := p.simple(tree.HTML)
	if simpleErr == nil {
		return &Result{PDF: pdf, Filename: filename, Tier: TierSimple, Cause: richErr}, nil
	}
	p.log.Error("simple export failed", "key", key, "error", simpleErr)
	return nil, &ExportError{NextAction: NextActionPrint, Cause: errors.Join(richErr, simpleErr)}
}

func (p *Pipeline) rich(ctx context.Context, html string) (pdf []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("rich export panicked: %v", r)
		}
	}()
	if err := checkTarget(html); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	styles, err := p.engine.Capture(ctx, html, targetSelector)
	if err != nil {
		return nil, err
	}
	static, err := SnapshotStyles(html, targetSelector, styles)
	if err != nil {
		return nil, err
	}
	staged, err := Stage(html, static)
	if err != nil {
		return nil, err
	}
	png, err := p.engine.Rasterize(ctx, staged, "#"+stageID)
	if err != nil {
		return nil, err
	}
	return RichPDF(png)
}

func (p *Pipeline) simple(html string) ([]byte, error) {
	if err := checkTarget(html); err != nil {
		return nil, err
	}
	return SimplePDF()
}

// Print produces the print rendition of tree: the document with the print
// stylesheet applied, printed to PDF by the engine.
func (p *Pipeline) Print(ctx context.Context, key string, tree *rendering.DisplayTree, fullName string) (*Result, error) {
	release, ok := p.gate.TryAcquire(key)
	if !ok {
		return nil, ErrExportInProgress
	}
	defer release()

	if tree == nil {
		return nil, ErrTargetNotFound
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(tree.HTML))
	if err != nil {
		return nil, err
	}
	releaseStyles := AcquirePrintStyles(doc)
	html, err := doc.Html()
	releaseStyles()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	pdf, err := p.engine.PrintToPDF(ctx, html)
	if err != nil {
		return nil, fmt.Errorf("print rendition failed: %w", err)
	}
	return &Result{PDF: pdf, Filename: Filename(fullName), Tier: TierPrint}, nil
}

// Busy reports whether an export for key is running.
func (p *Pipeline) Busy(key string) bool { return p.gate.Busy(key) }

func checkTarget(html string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return err
	}
	if doc.Find(targetSelector).Length() == 0 {
		return ErrTargetNotFound
	}
	return nil
}
