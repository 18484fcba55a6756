package session

import (
	"strings"

	"github.com/hisui-dev/xmgame-autorenew/internal/browser"
)

// ParseCookies splits a raw "name=value; name2=value2" header copied
// out of a logged-in browser into injectable cookies for one domain.
// Segments with no name or no value are dropped; everything else is
// kept verbatim with surrounding whitespace trimmed.
func ParseCookies(raw, domain string) []browser.Cookie {
	var cookies []browser.Cookie
	for _, segment := range strings.Split(raw, ";") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		name, value, found := strings.Cut(segment, "=")
		if !found {
			continue
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if name == "" || value == "" {
			continue
		}
		cookies = append(cookies, browser.Cookie{
			Name:   name,
			Value:  value,
			Domain: domain,
			Path:   "/",
			Secure: true,
		})
	}
	return cookies
}
