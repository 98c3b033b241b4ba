package export

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// BrowserOptions configures the headless Chrome engine.
type BrowserOptions struct {
	// ChromePath overrides the Chrome binary. Empty uses the system default.
	ChromePath string
	// Timeout bounds each browser operation.
	Timeout time.Duration
	// Scale is the device scale factor used when rasterizing.
	Scale float64
}

// Browser runs export steps in headless Chrome. The browser process starts on
// first use and every step gets its own tab, closed when the step returns.
type Browser struct {
	opts BrowserOptions

	mu          sync.Mutex
	allocCancel context.CancelFunc
	browserCtx  context.Context
	cancel      context.CancelFunc
}

// NewBrowser creates an engine. No process is started until it is needed.
func NewBrowser(opts BrowserOptions) *Browser {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.Scale < 2 {
		opts.Scale = 2
	}
	return &Browser{opts: opts}
}

func (b *Browser) start() (context.Context, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browserCtx != nil {
		return b.browserCtx, nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if b.opts.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(b.opts.ChromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx)
	// Run with no actions launches the browser and its first tab.
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	b.allocCancel, b.browserCtx, b.cancel = allocCancel, browserCtx, cancel
	return browserCtx, nil
}

// tab opens a new tab bound to ctx. The returned cancel closes it.
func (b *Browser) tab(ctx context.Context) (context.Context, context.CancelFunc, error) {
	browserCtx, err := b.start()
	if err != nil {
		return nil, nil, err
	}
	tabCtx, closeTab := chromedp.NewContext(browserCtx)
	timeoutCtx, cancelTimeout := context.WithTimeout(tabCtx, b.opts.Timeout)
	stop := context.AfterFunc(ctx, cancelTimeout)
	return timeoutCtx, func() {
		stop()
		cancelTimeout()
		closeTab()
	}, nil
}

// setContent loads html into the tab's main frame.
func setContent(html string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		tree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return err
		}
		return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
	})
}

func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}

const computedStylesJS = `(() => {
  const root = document.querySelector(%s);
  if (!root) return { found: false, styles: [] };
  const styles = [root, ...root.querySelectorAll('*')].map((el) => {
    const cs = window.getComputedStyle(el);
    return {
      backgroundColor: cs.backgroundColor,
      color: cs.color,
      borderWidth: cs.borderWidth,
      borderStyle: cs.borderStyle,
      borderColor: cs.borderColor,
      fill: cs.fill,
    };
  });
  return { found: true, styles };
})()`

type captureResult struct {
	Found  bool            `json:"found"`
	Styles []ComputedStyle `json:"styles"`
}

// Capture loads html and returns the computed style of the element matched by
// selector followed by its descendants in document order.
func (b *Browser) Capture(ctx context.Context, html, selector string) ([]ComputedStyle, error) {
	tabCtx, closeTab, err := b.tab(ctx)
	if err != nil {
		return nil, err
	}
	defer closeTab()

	sel, _ := json.Marshal(selector)
	var res captureResult
	var fontsReady bool
	err = chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		setContent(html),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(`document.fonts.ready.then(() => true)`, &fontsReady, awaitPromise),
		chromedp.Evaluate(fmt.Sprintf(computedStylesJS, sel), &res),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to capture styles: %w", err)
	}
	if !res.Found {
		return nil, ErrTargetNotFound
	}
	return res.Styles, nil
}

// Rasterize loads html in a fresh tab and returns a PNG of the element matched
// by selector at the configured scale.
func (b *Browser) Rasterize(ctx context.Context, html, selector string) ([]byte, error) {
	tabCtx, closeTab, err := b.tab(ctx)
	if err != nil {
		return nil, err
	}
	defer closeTab()

	var png []byte
	var fontsReady bool
	err = chromedp.Run(tabCtx,
		chromedp.EmulateViewport(1240, 1754, chromedp.EmulateScale(b.opts.Scale)),
		chromedp.Navigate("about:blank"),
		setContent(html),
		chromedp.WaitReady(selector, chromedp.ByQuery),
		chromedp.Evaluate(`document.fonts.ready.then(() => true)`, &fontsReady, awaitPromise),
		// The device scale factor already sets the bitmap density.
		chromedp.Screenshot(selector, &png, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to rasterize: %w", err)
	}
	return png, nil
}

// PrintToPDF prints html to an A4 PDF with backgrounds.
func (b *Browser) PrintToPDF(ctx context.Context, html string) ([]byte, error) {
	tabCtx, closeTab, err := b.tab(ctx)
	if err != nil {
		return nil, err
	}
	defer closeTab()

	var pdf []byte
	err = chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		setContent(html),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// A4: 210mm x 297mm -> inches: 8.27 x 11.69
			pdf, _, err = page.PrintToPDF().WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to print: %w", err)
	}
	return pdf, nil
}

// Close shuts the browser down.
func (b *Browser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		b.cancel()
		b.allocCancel()
		b.browserCtx, b.cancel, b.allocCancel = nil, nil, nil
	}
}
