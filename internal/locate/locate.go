package locate

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Element is a lazily-resolved candidate control inside a Scope. Every
// interaction is bounded by a timeout and reports failure through its
// error return; implementations never panic on a missing element.
type Element interface {
	Click(timeout time.Duration) error
	Fill(value string, timeout time.Duration) error
	Check(timeout time.Duration) error
	Visible() bool
	Checked() bool
}

// Scope is one searchable context: the main document, an embedded
// frame, or a narrowed container such as a table row.
type Scope interface {
	ByRole(role, name string) Element
	ByText(text string) Element
	ByLabel(text string) Element
	BySelector(selector string) Element
}

// Document is the page-level scope. Frames returns the embedded
// sub-documents in document order, excluding the main document.
type Document interface {
	Scope
	Frames() []Scope
	// Query returns the containers matching selector, optionally
	// narrowed to those containing hasText, each as its own Scope.
	Query(selector, hasText string) []Scope
	// Elements returns every element matching selector.
	Elements(selector string) []Element
}

// Strategy is one way of identifying a logical control by its label.
type Strategy interface {
	Find(s Scope, label string) Element
	Describe() string
}

// RoleName matches by accessible role and non-exact accessible name.
type RoleName struct {
	Role string
}

func (r RoleName) Find(s Scope, label string) Element { return s.ByRole(r.Role, label) }
func (r RoleName) Describe() string                   { return "role=" + r.Role }

// FreeText matches by visible text, case-insensitive substring.
type FreeText struct{}

func (FreeText) Find(s Scope, label string) Element { return s.ByText(label) }
func (FreeText) Describe() string                   { return "text" }

// AttributePattern matches by a CSS-like selector template; the label
// is escaped and substituted for the single %s verb.
type AttributePattern struct {
	Template string
}

func (a AttributePattern) Find(s Scope, label string) Element {
	return s.BySelector(fmt.Sprintf(a.Template, escapeLabel(label)))
}
func (a AttributePattern) Describe() string { return a.Template }

// LabelAssociation matches a control through its associated form label.
type LabelAssociation struct{}

func (LabelAssociation) Find(s Scope, label string) Element { return s.ByLabel(label) }
func (LabelAssociation) Describe() string                   { return "label" }

// ClickStrategies is the default chain for click targets. Priority:
// interactive roles first, then free text, then attribute patterns for
// the markup variants the panel uses for styled buttons.
func ClickStrategies() []Strategy {
	return []Strategy{
		RoleName{Role: "button"},
		RoleName{Role: "link"},
		FreeText{},
		AttributePattern{Template: `a:has-text("%s")`},
		AttributePattern{Template: `button:has-text("%s")`},
		AttributePattern{Template: `input[value*="%s"]`},
		AttributePattern{Template: `label:has-text("%s")`},
	}
}

// Chain tries every strategy for every candidate label until one
// yields a clickable element. Breadth-first by label, depth by
// strategy: exact wording beats generic markup, and the main document
// beats embedded frames.
type Chain struct {
	Strategies []Strategy
	Timeout    time.Duration
	Logger     zerolog.Logger
}

func NewChain(timeout time.Duration, logger zerolog.Logger) Chain {
	return Chain{Strategies: ClickStrategies(), Timeout: timeout, Logger: logger}
}

// Click searches the main document first, then every frame in document
// order. Returns false when no label/strategy combination matched
// anywhere; it never propagates an interaction fault.
func (c Chain) Click(doc Document, labels ...string) bool {
	if c.ClickIn(doc, labels...) {
		return true
	}
	for _, fr := range doc.Frames() {
		if c.ClickIn(fr, labels...) {
			return true
		}
	}
	return false
}

// ClickIn runs the chain inside a single scope.
func (c Chain) ClickIn(s Scope, labels ...string) bool {
	for _, label := range labels {
		for _, st := range c.Strategies {
			if TryClick(st.Find(s, label), c.Timeout) {
				c.Logger.Debug().Str("label", label).Str("strategy", st.Describe()).Msg("matched")
				return true
			}
		}
	}
	return false
}

func escapeLabel(label string) string {
	return strings.ReplaceAll(label, `"`, `\"`)
}
