package track

import (
	"fmt"
	"net/url"

	"github.com/pkg/errors"
)

// RedirectPath is the static interstitial page visitors are sent to
// after a tracked 404.
const RedirectPath = "/game/play.html"

// BuildRedirectURL encodes the site slug, the broken URL and the site's
// monetization link into the interstitial URL. Slugs are URL-safe by
// construction and stay unescaped.
func BuildRedirectURL(slug, brokenURL, bmcLink string) string {
	return fmt.Sprintf("%s?site=%s&from=%s&bmc=%s",
		RedirectPath, slug, url.QueryEscape(brokenURL), url.QueryEscape(bmcLink))
}

// ParseRedirectURL recovers the slug, broken URL and monetization link
// from a redirect URL built by BuildRedirectURL.
func ParseRedirectURL(redirectURL string) (slug, brokenURL, bmcLink string, err error) {
	u, err := url.Parse(redirectURL)
	if err != nil {
		return "", "", "", errors.Wrap(err, "parsing redirect url")
	}
	q := u.Query()
	return q.Get("site"), q.Get("from"), q.Get("bmc"), nil
}
