package agent

import "net/http"

// observedTransport wraps a RoundTripper so every completed call is seen
// by the observe hook. The wrapped original is a captured value, not a
// mutated global. Requests and responses pass through unchanged; the
// observation is a pure side effect.
type observedTransport struct {
	base    http.RoundTripper
	observe func(url string, status int)
}

func observeTransport(base http.RoundTripper, observe func(string, int)) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &observedTransport{base: base, observe: observe}
}

func (t *observedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	// report the resolved URL, which may differ from the requested one
	// after redirects
	u := req.URL.String()
	if resp.Request != nil && resp.Request.URL != nil {
		u = resp.Request.URL.String()
	}
	t.observe(u, resp.StatusCode)

	return resp, err
}
