package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/hisui-dev/xmgame-autorenew/internal/locate"
)

const (
	// Settle delays after interactions, matching what the panel needs
	// to finish its asynchronous redraws before the next lookup.
	clickSettle  = 250 * time.Millisecond
	navSettle    = 500 * time.Millisecond
	scrollSettle = 400 * time.Millisecond

	maxQueryScopes = 20
)

// Cookie is one browser cookie to inject before navigation.
type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	Secure   bool
	HTTPOnly bool
}

// Controller exposes the page operations the bot needs. Element lookup
// and interaction go through Doc and the locate package; everything
// here is page-global.
type Controller interface {
	Close(ctx context.Context) error
	Navigate(ctx context.Context, url string) error
	WaitQuiet(ctx context.Context, timeout time.Duration)
	ScrollToBottom(ctx context.Context)
	PressEnter(ctx context.Context) error
	AddCookies(ctx context.Context, cookies []Cookie) error
	TextVisible(ctx context.Context, text string) bool
	Doc() locate.Document
	Screenshot(ctx context.Context, path string) error
	Content(ctx context.Context) (string, error)
}

// Launcher owns the playwright lifecycle.
type Launcher struct {
	pw      *playwright.Playwright
	browser playwright.Browser
}

func NewLauncher(ctx context.Context, headless bool) (*Launcher, error) {
	_ = ctx
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
		Args: []string{
			"--disable-dev-shm-usage",
			"--no-sandbox",
		},
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}
	return &Launcher{pw: pw, browser: browser}, nil
}

func (l *Launcher) NewController(ctx context.Context, navTimeout time.Duration) (Controller, error) {
	_ = ctx
	bctx, err := l.browser.NewContext(playwright.BrowserNewContextOptions{
		IgnoreHttpsErrors: playwright.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("new context: %w", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("new page: %w", err)
	}
	page.SetDefaultTimeout(float64(navTimeout.Milliseconds()))
	return &controller{context: bctx, page: page, navTimeout: navTimeout}, nil
}

func (l *Launcher) Close() error {
	if l.browser != nil {
		_ = l.browser.Close()
	}
	if l.pw != nil {
		return l.pw.Stop()
	}
	return nil
}

type controller struct {
	context    playwright.BrowserContext
	page       playwright.Page
	navTimeout time.Duration
}

func (c *controller) Close(ctx context.Context) error {
	_ = ctx
	if c.page != nil {
		_ = c.page.Close()
	}
	if c.context != nil {
		return c.context.Close()
	}
	return nil
}

func (c *controller) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(c.navTimeout.Milliseconds())),
	})
	if err != nil {
		return wrap(err)
	}
	c.WaitQuiet(ctx, c.navTimeout)
	time.Sleep(navSettle)
	return nil
}

// WaitQuiet waits for network idle, best effort. The panel keeps some
// beacons alive, so a timeout here is not a failure.
func (c *controller) WaitQuiet(ctx context.Context, timeout time.Duration) {
	if ctx.Err() != nil {
		return
	}
	_ = c.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
}

func (c *controller) ScrollToBottom(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	_, _ = c.page.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`)
	time.Sleep(scrollSettle)
}

func (c *controller) PressEnter(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return wrap(c.page.Keyboard().Press("Enter"))
}

func (c *controller) AddCookies(ctx context.Context, cookies []Cookie) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	converted := make([]playwright.OptionalCookie, 0, len(cookies))
	for _, ck := range cookies {
		converted = append(converted, playwright.OptionalCookie{
			Name:     ck.Name,
			Value:    ck.Value,
			Domain:   playwright.String(ck.Domain),
			Path:     playwright.String(ck.Path),
			Secure:   playwright.Bool(ck.Secure),
			HttpOnly: playwright.Bool(ck.HTTPOnly),
			SameSite: playwright.SameSiteAttributeLax,
		})
	}
	return wrap(c.context.AddCookies(converted))
}

func (c *controller) TextVisible(ctx context.Context, text string) bool {
	if ctx.Err() != nil {
		return false
	}
	first := c.page.GetByText(text, playwright.PageGetByTextOptions{
		Exact: playwright.Bool(false),
	}).First()
	visible, err := first.IsVisible()
	return err == nil && visible
}

func (c *controller) Doc() locate.Document {
	return pageDoc{page: c.page}
}

func (c *controller) Screenshot(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return wrap(err)
}

func (c *controller) Content(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	html, err := c.page.Content()
	return html, wrap(err)
}

func wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("playwright: %w", err)
}

func ariaRole(role string) playwright.AriaRole {
	return playwright.AriaRole(strings.ToLower(strings.TrimSpace(role)))
}
