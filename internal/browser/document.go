package browser

import (
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/hisui-dev/xmgame-autorenew/internal/locate"
)

// Playwright-backed implementations of locate.Document, locate.Scope
// and locate.Element. Locators are lazy, so every lookup is cheap until
// an interaction resolves it; interaction faults are returned to the
// primitives, which absorb them.

type pageDoc struct {
	page playwright.Page
}

func (d pageDoc) ByRole(role, name string) locate.Element {
	return element{loc: d.page.GetByRole(ariaRole(role), playwright.PageGetByRoleOptions{
		Name:  name,
		Exact: playwright.Bool(false),
	})}
}

func (d pageDoc) ByText(text string) locate.Element {
	return element{loc: d.page.GetByText(text, playwright.PageGetByTextOptions{
		Exact: playwright.Bool(false),
	})}
}

func (d pageDoc) ByLabel(text string) locate.Element {
	return element{loc: d.page.GetByLabel(text, playwright.PageGetByLabelOptions{
		Exact: playwright.Bool(false),
	})}
}

func (d pageDoc) BySelector(selector string) locate.Element {
	return element{loc: d.page.Locator(selector)}
}

func (d pageDoc) Frames() []locate.Scope {
	var scopes []locate.Scope
	for _, frame := range d.page.Frames() {
		if frame == d.page.MainFrame() {
			continue
		}
		scopes = append(scopes, frameScope{frame: frame})
	}
	return scopes
}

func (d pageDoc) Query(selector, hasText string) []locate.Scope {
	loc := d.page.Locator(selector)
	if hasText != "" {
		loc = loc.Filter(playwright.LocatorFilterOptions{HasText: hasText})
	}
	count, err := loc.Count()
	if err != nil {
		return nil
	}
	if count > maxQueryScopes {
		count = maxQueryScopes
	}
	scopes := make([]locate.Scope, 0, count)
	for i := 0; i < count; i++ {
		scopes = append(scopes, locScope{loc: loc.Nth(i)})
	}
	return scopes
}

func (d pageDoc) Elements(selector string) []locate.Element {
	loc := d.page.Locator(selector)
	count, err := loc.Count()
	if err != nil {
		return nil
	}
	if count > maxQueryScopes {
		count = maxQueryScopes
	}
	elems := make([]locate.Element, 0, count)
	for i := 0; i < count; i++ {
		elems = append(elems, element{loc: loc.Nth(i)})
	}
	return elems
}

type frameScope struct {
	frame playwright.Frame
}

func (f frameScope) ByRole(role, name string) locate.Element {
	return element{loc: f.frame.GetByRole(ariaRole(role), playwright.FrameGetByRoleOptions{
		Name:  name,
		Exact: playwright.Bool(false),
	})}
}

func (f frameScope) ByText(text string) locate.Element {
	return element{loc: f.frame.GetByText(text, playwright.FrameGetByTextOptions{
		Exact: playwright.Bool(false),
	})}
}

func (f frameScope) ByLabel(text string) locate.Element {
	return element{loc: f.frame.GetByLabel(text, playwright.FrameGetByLabelOptions{
		Exact: playwright.Bool(false),
	})}
}

func (f frameScope) BySelector(selector string) locate.Element {
	return element{loc: f.frame.Locator(selector)}
}

// locScope narrows lookups to one container, typically a table row.
type locScope struct {
	loc playwright.Locator
}

func (s locScope) ByRole(role, name string) locate.Element {
	return element{loc: s.loc.GetByRole(ariaRole(role), playwright.LocatorGetByRoleOptions{
		Name:  name,
		Exact: playwright.Bool(false),
	})}
}

func (s locScope) ByText(text string) locate.Element {
	return element{loc: s.loc.GetByText(text, playwright.LocatorGetByTextOptions{
		Exact: playwright.Bool(false),
	})}
}

func (s locScope) ByLabel(text string) locate.Element {
	return element{loc: s.loc.GetByLabel(text, playwright.LocatorGetByLabelOptions{
		Exact: playwright.Bool(false),
	})}
}

func (s locScope) BySelector(selector string) locate.Element {
	return element{loc: s.loc.Locator(selector)}
}

type element struct {
	loc playwright.Locator
}

func (e element) Click(timeout time.Duration) error {
	err := e.loc.First().Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return wrap(err)
	}
	time.Sleep(clickSettle)
	return nil
}

func (e element) Fill(value string, timeout time.Duration) error {
	return wrap(e.loc.First().Fill(value, playwright.LocatorFillOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	}))
}

func (e element) Check(timeout time.Duration) error {
	return wrap(e.loc.First().Check(playwright.LocatorCheckOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	}))
}

func (e element) Visible() bool {
	visible, err := e.loc.First().IsVisible()
	return err == nil && visible
}

func (e element) Checked() bool {
	checked, err := e.loc.First().IsChecked()
	return err == nil && checked
}
