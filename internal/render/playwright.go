package render

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"seace-engine/internal/logger"
)

type LaunchOptions struct {
	Headless       bool
	ExecutablePath string
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	Args           []string
	// InstallDriver downloads the driver and chromium on first launch.
	InstallDriver bool
}

// Launcher owns one playwright driver and one chromium process. Each
// NewSession gets its own browser context, so sessions share no cookies,
// storage or pages.
type Launcher struct {
	opts LaunchOptions
	log  logger.Logger

	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
}

func NewLauncher(opts LaunchOptions, log logger.Logger) *Launcher {
	return &Launcher{opts: opts, log: logger.OrNop(log)}
}

// Start runs the driver and launches chromium. It is called lazily by
// NewSession, so serve can boot without a browser installed.
func (l *Launcher) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.startLocked()
}

func (l *Launcher) startLocked() error {
	if l.browser != nil && l.browser.IsConnected() {
		return nil
	}
	if l.opts.InstallDriver {
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			return fmt.Errorf("install playwright: %w", err)
		}
	}
	if l.pw == nil {
		pw, err := playwright.Run()
		if err != nil {
			return fmt.Errorf("start playwright: %w", err)
		}
		l.pw = pw
	}

	lo := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(l.opts.Headless),
		Args:     l.opts.Args,
	}
	if l.opts.ExecutablePath != "" {
		lo.ExecutablePath = playwright.String(l.opts.ExecutablePath)
	}
	b, err := l.pw.Chromium.Launch(lo)
	if err != nil {
		return fmt.Errorf("launch chromium: %w", err)
	}
	l.browser = b
	l.log.Info("browser launched", logger.Bool("headless", l.opts.Headless))
	return nil
}

func (l *Launcher) NewSession(ctx context.Context) (Renderer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	if err := l.startLocked(); err != nil {
		l.mu.Unlock()
		return nil, err
	}
	browser := l.browser
	l.mu.Unlock()

	co := playwright.BrowserNewContextOptions{}
	if l.opts.UserAgent != "" {
		co.UserAgent = playwright.String(l.opts.UserAgent)
	}
	if l.opts.ViewportWidth > 0 && l.opts.ViewportHeight > 0 {
		co.Viewport = &playwright.Size{Width: l.opts.ViewportWidth, Height: l.opts.ViewportHeight}
	}
	bctx, err := browser.NewContext(co)
	if err != nil {
		return nil, fmt.Errorf("new browser context: %w", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("new page: %w", err)
	}
	return &pwSession{bctx: bctx, page: page}, nil
}

func (l *Launcher) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var errs []error
	if l.browser != nil {
		errs = append(errs, l.browser.Close())
		l.browser = nil
	}
	if l.pw != nil {
		errs = append(errs, l.pw.Stop())
		l.pw = nil
	}
	return errors.Join(errs...)
}

type pwSession struct {
	bctx playwright.BrowserContext
	page playwright.Page

	closeOnce sync.Once
	closeErr  error
}

func ms(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}

func wrapTimeout(err error) error {
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

func (s *pwSession) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		Timeout:   ms(Budget(ctx, timeout)),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	return wrapTimeout(err)
}

func (s *pwSession) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: ms(Budget(ctx, timeout)),
	})
	return wrapTimeout(err)
}

func (s *pwSession) QueryAll(ctx context.Context, selector string) ([]Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	locs, err := s.page.Locator(selector).All()
	if err != nil {
		return nil, err
	}
	out := make([]Element, 0, len(locs))
	for _, l := range locs {
		out = append(out, pwElement{loc: l})
	}
	return out, nil
}

func (s *pwSession) Query(ctx context.Context, selector string) (Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	loc := s.page.Locator(selector)
	n, err := loc.Count()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	return pwElement{loc: loc.First()}, nil
}

func (s *pwSession) Content(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.page.Content()
}

func (s *pwSession) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = errors.Join(s.page.Close(), s.bctx.Close())
	})
	return s.closeErr
}

// Element operations are short; the locator default timeout applies.
const elementTimeout = 10 * time.Second

type pwElement struct {
	loc playwright.Locator
}

func (e pwElement) Text() (string, error) {
	return e.loc.InnerText(playwright.LocatorInnerTextOptions{Timeout: ms(elementTimeout)})
}

const snapshotJS = `el => [el.innerText, el.innerHTML]`

func (e pwElement) Snapshot() (string, string, error) {
	v, err := e.loc.Evaluate(snapshotJS, nil, playwright.LocatorEvaluateOptions{Timeout: ms(elementTimeout)})
	if err != nil {
		return "", "", wrapTimeout(err)
	}
	pair, ok := v.([]interface{})
	if !ok || len(pair) != 2 {
		return "", "", fmt.Errorf("render: unexpected snapshot %T", v)
	}
	text, _ := pair[0].(string)
	html, _ := pair[1].(string)
	return text, html, nil
}

func (e pwElement) Click() error {
	return wrapTimeout(e.loc.Click(playwright.LocatorClickOptions{Timeout: ms(elementTimeout)}))
}
