// Package session turns a fresh browsing context into an authenticated
// one. Two strategies exist: cookie injection and credential form
// submission. Neither counts as authenticated on its own; both must be
// confirmed by visible logged-in markers on the page.
package session

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/hisui-dev/xmgame-autorenew/internal/browser"
	"github.com/hisui-dev/xmgame-autorenew/internal/capture"
	"github.com/hisui-dev/xmgame-autorenew/internal/config"
	"github.com/hisui-dev/xmgame-autorenew/internal/locate"
)

var (
	// ErrNotConfigured means neither a cookie nor credentials were
	// supplied; no network interaction has happened.
	ErrNotConfigured = errors.New("no cookie or credentials configured")
	// ErrAuthFailed means every configured strategy ran but none
	// verified as logged in.
	ErrAuthFailed = errors.New("authentication failed")
)

// Text fragments that only render for a logged-in account.
var loginMarkers = []string{"ログアウト", "マイページ", "アカウント", "お知らせ"}

// The panel sets cookies on both the apex service host and the www
// host, so injected cookies cover both.
var cookieDomains = []string{"secure.xserver.ne.jp", "www.xserver.ne.jp"}

var (
	identifierLabels = []string{"メールアドレス", "ログインID", "アカウントID", "ID", "メール"}
	identifierCSS    = []string{
		`input[type="email"]`, `input[name*="mail"]`, `input[id*="mail"]`,
		`input[name*="login"]`, `input[name*="account"]`, `input[name*="user"]`, `input[name*="id"]`,
		`input[id*="login"]`, `input[id*="account"]`, `input[id*="user"]`, `input[id*="id"]`,
	}
	passwordLabels = []string{"パスワード", "Password"}
	passwordCSS    = []string{`input[type="password"]`, `input[name*="pass"]`, `input[id*="pass"]`}

	loginButtonLabels = []string{"ログイン", "ログインする", "サインイン", "ログオン", "ログインへ"}
)

type Establisher struct {
	ctrl   browser.Controller
	chain  locate.Chain
	cfg    config.Config
	rec    *capture.Recorder
	logger zerolog.Logger
}

func NewEstablisher(ctrl browser.Controller, chain locate.Chain, cfg config.Config, rec *capture.Recorder, logger zerolog.Logger) *Establisher {
	return &Establisher{ctrl: ctrl, chain: chain, cfg: cfg, rec: rec, logger: logger}
}

// Establish tries cookie injection first, then the credential form.
// Cookie goes first: it never exposes the password to the live page
// and usually skips a full form round trip.
func (e *Establisher) Establish(ctx context.Context) error {
	if !e.cfg.HasCookie() && !e.cfg.HasCredentials() {
		return ErrNotConfigured
	}
	if e.cfg.HasCookie() {
		if e.cookieLogin(ctx) {
			e.logger.Info().Str("strategy", "cookie").Msg("authenticated")
			return nil
		}
		e.logger.Warn().Msg("cookie login did not verify")
	}
	if e.cfg.HasCredentials() {
		if e.credentialLogin(ctx) {
			e.logger.Info().Str("strategy", "credentials").Msg("authenticated")
			return nil
		}
		e.logger.Warn().Msg("credential login did not verify")
	}
	return ErrAuthFailed
}

func (e *Establisher) cookieLogin(ctx context.Context) bool {
	var cookies []browser.Cookie
	for _, domain := range cookieDomains {
		cookies = append(cookies, ParseCookies(e.cfg.RawCookie, domain)...)
	}
	if len(cookies) == 0 {
		return false
	}
	if err := e.ctrl.AddCookies(ctx, cookies); err != nil {
		e.logger.Warn().Err(err).Msg("add cookies failed")
		return false
	}

	if err := e.ctrl.Navigate(ctx, e.cfg.IndexURL); err == nil {
		e.rec.Checkpoint(ctx, "after_cookie_goto_game_index")
		if e.loggedIn(ctx) {
			return true
		}
	}
	// Some sessions only resolve through the login entry point, which
	// redirects straight past the form when the cookie is live.
	if err := e.ctrl.Navigate(ctx, e.cfg.LoginURL); err == nil {
		e.rec.Checkpoint(ctx, "after_cookie_goto_login")
		if e.loggedIn(ctx) {
			return true
		}
	}
	return false
}

func (e *Establisher) credentialLogin(ctx context.Context) bool {
	if err := e.ctrl.Navigate(ctx, e.cfg.LoginURL); err != nil {
		e.logger.Warn().Err(err).Msg("open login page failed")
		return false
	}
	e.rec.Checkpoint(ctx, "login_form_loaded")

	doc := e.ctrl.Doc()
	filledID := e.fillField(doc, identifierLabels, identifierCSS, e.cfg.Email)
	if !filledID {
		e.logger.Warn().Msg("identifier field not found")
	}
	filledPwd := e.fillField(doc, passwordLabels, passwordCSS, e.cfg.Password)
	if !filledPwd {
		e.logger.Warn().Msg("password field not found")
	}

	if !e.chain.ClickIn(doc, loginButtonLabels...) && filledPwd {
		// No recognizable login button; the form's default submit key
		// is the last resort.
		if err := e.ctrl.PressEnter(ctx); err != nil {
			e.logger.Warn().Err(err).Msg("submit via enter failed")
		}
	}

	e.ctrl.WaitQuiet(ctx, e.cfg.NavTimeout)
	e.rec.Checkpoint(ctx, "after_login_submit")
	return e.loggedIn(ctx)
}

// fillField tries label association over the known label variants,
// then the attribute patterns the panel has used for the same field.
func (e *Establisher) fillField(doc locate.Document, labels, selectors []string, value string) bool {
	for _, label := range labels {
		if locate.TryFill(doc.ByLabel(label), value, e.cfg.ActionTimeout) {
			return true
		}
	}
	for _, sel := range selectors {
		if locate.TryFill(doc.BySelector(sel), value, e.cfg.ActionTimeout) {
			return true
		}
	}
	return false
}

func (e *Establisher) loggedIn(ctx context.Context) bool {
	for _, marker := range loginMarkers {
		if e.ctrl.TextVisible(ctx, marker) {
			return true
		}
	}
	return false
}
