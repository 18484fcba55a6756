// Package browsertest provides in-memory fakes of the browser and
// locate interfaces so the session and wizard logic can be exercised
// without a real page.
package browsertest

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/hisui-dev/xmgame-autorenew/internal/browser"
	"github.com/hisui-dev/xmgame-autorenew/internal/locate"
)

var errNoMatch = errors.New("browsertest: no matching element")

// Element is a scriptable locate.Element. A zero Element behaves like
// a locator that never resolves: every interaction fails.
type Element struct {
	Present bool
	Hidden  bool
	IsBox   bool

	Clicked int
	Checks  int
	Filled  []string
	checked bool

	// OnClick runs after a successful click, typically to swap the
	// controller's current document the way a navigation would.
	OnClick func()
}

func (e *Element) Click(timeout time.Duration) error {
	_ = timeout
	if e == nil || !e.Present || e.Hidden {
		return errNoMatch
	}
	e.Clicked++
	if e.OnClick != nil {
		e.OnClick()
	}
	return nil
}

func (e *Element) Fill(value string, timeout time.Duration) error {
	_ = timeout
	if e == nil || !e.Present || e.Hidden {
		return errNoMatch
	}
	e.Filled = append(e.Filled, value)
	return nil
}

func (e *Element) Check(timeout time.Duration) error {
	_ = timeout
	if e == nil || !e.Present || e.Hidden {
		return errNoMatch
	}
	e.checked = true
	e.Checks = e.Checks + 1
	return nil
}

func (e *Element) Visible() bool { return e != nil && e.Present && !e.Hidden }
func (e *Element) Checked() bool { return e != nil && e.checked }

// SetChecked pre-marks a checkbox, for pages that render them checked.
func (e *Element) SetChecked(v bool) { e.checked = v }

// Scope resolves lookups against a key/element table. Keys follow the
// lookup kind: "role:<role>:<name>", "text:<t>", "label:<t>" and
// "css:<selector>".
type Scope struct {
	Text     string
	Controls map[string]*Element
	Lookups  []string
}

func NewScope(text string) *Scope {
	return &Scope{Text: text, Controls: map[string]*Element{}}
}

// Add registers a present, visible element under key and returns it.
func (s *Scope) Add(key string) *Element {
	el := &Element{Present: true}
	s.Controls[key] = el
	return el
}

func (s *Scope) find(key string) locate.Element {
	s.Lookups = append(s.Lookups, key)
	if el, ok := s.Controls[key]; ok {
		return el
	}
	return &Element{}
}

func (s *Scope) ByRole(role, name string) locate.Element { return s.find("role:" + role + ":" + name) }
func (s *Scope) ByText(text string) locate.Element       { return s.find("text:" + text) }
func (s *Scope) ByLabel(text string) locate.Element      { return s.find("label:" + text) }
func (s *Scope) BySelector(sel string) locate.Element    { return s.find("css:" + sel) }

// Doc is a fake page document: a main scope plus frames, row tables
// and flat element lists.
type Doc struct {
	Scope
	Body        string
	FrameScopes []*Scope
	Rows        map[string][]*Scope   // selector -> row scopes
	Elems       map[string][]*Element // selector -> elements
}

func NewDoc(body string) *Doc {
	return &Doc{
		Scope: Scope{Controls: map[string]*Element{}},
		Body:  body,
		Rows:  map[string][]*Scope{},
		Elems: map[string][]*Element{},
	}
}

func (d *Doc) Frames() []locate.Scope {
	scopes := make([]locate.Scope, 0, len(d.FrameScopes))
	for _, fr := range d.FrameScopes {
		scopes = append(scopes, fr)
	}
	return scopes
}

func (d *Doc) Query(selector, hasText string) []locate.Scope {
	var scopes []locate.Scope
	for _, row := range d.Rows[selector] {
		if hasText != "" && !strings.Contains(row.Text, hasText) {
			continue
		}
		scopes = append(scopes, row)
	}
	return scopes
}

func (d *Doc) Elements(selector string) []locate.Element {
	elems := make([]locate.Element, 0, len(d.Elems[selector]))
	for _, el := range d.Elems[selector] {
		elems = append(elems, el)
	}
	return elems
}

// Controller is a fake browser.Controller over a URL -> Doc map.
// Doc() returns a live reference, so callers that hold a document
// across navigations see the current page, like a playwright Page.
type Controller struct {
	Pages   map[string]*Doc
	Current *Doc

	Nav          []string
	NavErr       map[string]error
	Cookies      [][]browser.Cookie
	CookieErr    error
	EnterPresses int
	OnEnter      func()
	ShotPaths    []string
}

func NewController() *Controller {
	return &Controller{
		Pages:   map[string]*Doc{},
		Current: NewDoc(""),
		NavErr:  map[string]error{},
	}
}

var _ browser.Controller = (*Controller)(nil)

func (c *Controller) Close(ctx context.Context) error { return nil }

func (c *Controller) Navigate(ctx context.Context, url string) error {
	c.Nav = append(c.Nav, url)
	if err := c.NavErr[url]; err != nil {
		return err
	}
	if doc, ok := c.Pages[url]; ok {
		c.Current = doc
	} else {
		c.Current = NewDoc("")
	}
	return nil
}

func (c *Controller) WaitQuiet(ctx context.Context, timeout time.Duration) {}
func (c *Controller) ScrollToBottom(ctx context.Context)                   {}

func (c *Controller) PressEnter(ctx context.Context) error {
	c.EnterPresses++
	if c.OnEnter != nil {
		c.OnEnter()
	}
	return nil
}

func (c *Controller) AddCookies(ctx context.Context, cookies []browser.Cookie) error {
	if c.CookieErr != nil {
		return c.CookieErr
	}
	c.Cookies = append(c.Cookies, cookies)
	return nil
}

func (c *Controller) TextVisible(ctx context.Context, text string) bool {
	return c.Current != nil && strings.Contains(c.Current.Body, text)
}

func (c *Controller) Doc() locate.Document { return docRef{c: c} }

func (c *Controller) Screenshot(ctx context.Context, path string) error {
	c.ShotPaths = append(c.ShotPaths, path)
	return os.WriteFile(path, []byte("png"), 0o644)
}

func (c *Controller) Content(ctx context.Context) (string, error) {
	return "<html>" + c.Current.Body + "</html>", nil
}

// docRef forwards every lookup to the controller's current document.
type docRef struct {
	c *Controller
}

func (d docRef) ByRole(role, name string) locate.Element { return d.c.Current.ByRole(role, name) }
func (d docRef) ByText(text string) locate.Element       { return d.c.Current.ByText(text) }
func (d docRef) ByLabel(text string) locate.Element      { return d.c.Current.ByLabel(text) }
func (d docRef) BySelector(sel string) locate.Element    { return d.c.Current.BySelector(sel) }
func (d docRef) Frames() []locate.Scope                  { return d.c.Current.Frames() }
func (d docRef) Query(selector, hasText string) []locate.Scope {
	return d.c.Current.Query(selector, hasText)
}
func (d docRef) Elements(selector string) []locate.Element { return d.c.Current.Elements(selector) }
