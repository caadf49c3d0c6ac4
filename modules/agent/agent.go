package agent

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/smoke404/smoketrack/models"
)

// Version is exposed to host pages inspecting the agent.
const Version = "2.0.0"

// SiteAttr is the embed-tag attribute carrying the site slug.
const SiteAttr = "data-site"

// EndpointAttr optionally overrides the ingest endpoint per embed.
const EndpointAttr = "data-endpoint"

const (
	DefaultEndpoint       = "https://api.smoketrack.dev"
	DefaultHeuristicDelay = 500 * time.Millisecond
	DefaultRedirectDelay  = 100 * time.Millisecond
)

// ErrMissingSite means the hosting page carries no site slug. The agent
// refuses to activate; embedders swallow this and log it in debug mode.
var ErrMissingSite = errors.New("agent: missing site slug")

// Config is the agent's active configuration, readable by host pages.
type Config struct {
	Site     string
	Endpoint string
	Debug    bool

	// HeuristicDelay postpones the 404-page content check past document
	// ready so the heuristic reads final content. RedirectDelay debounces
	// navigation after an accepted report. Both are tunable, neither is
	// correctness-critical.
	HeuristicDelay time.Duration
	RedirectDelay  time.Duration
}

type Option func(*Agent)

// WithSite overrides the slug read from the embed tag.
func WithSite(slug string) Option {
	return func(a *Agent) { a.cfg.Site = slug }
}

// WithEndpoint points the agent at a specific ingest endpoint.
func WithEndpoint(base string) Option {
	return func(a *Agent) { a.cfg.Endpoint = strings.TrimRight(base, "/") }
}

func WithDebug() Option {
	return func(a *Agent) { a.cfg.Debug = true }
}

// WithPagePredicate swaps the 404-page classifier.
func WithPagePredicate(p PagePredicate) Option {
	return func(a *Agent) { a.is404 = p }
}

// WithDedup enables the per-URL duplicate suppression window. Off by
// default: the stock behavior reports the same failure once per
// detection channel.
func WithDedup(ttl time.Duration) Option {
	return func(a *Agent) { a.dedup = newDedupSet(ttl) }
}

// WithHTTPClient sets the client used to talk to the ingestor. Never the
// instrumented page client, or reports would observe themselves.
func WithHTTPClient(client *http.Client) Option {
	return func(a *Agent) { a.client = client }
}

func WithHeuristicDelay(d time.Duration) Option {
	return func(a *Agent) { a.cfg.HeuristicDelay = d }
}

func WithRedirectDelay(d time.Duration) Option {
	return func(a *Agent) { a.cfg.RedirectDelay = d }
}

// Agent observes one page runtime for 404-class failures and reports
// each observed failure once, best effort, to the ingestor.
type Agent struct {
	cfg    Config
	doc    Document
	nav    Navigator
	client *http.Client
	is404  PagePredicate
	dedup  *dedupSet

	// navigation is terminal for the page; first redirect wins
	navigated int32
}

// interceptor is the explicit interception layer around the page's two
// network primitives. The wrapped originals are captured values held by
// the wrappers, never re-read from mutable lookup tables.
type interceptor struct {
	agent *Agent
}

func (i *interceptor) onResponse(url string, status int) {
	if status == http.StatusNotFound {
		go i.agent.Track(url, i.agent.doc.Referrer())
	}
}

func (i *interceptor) onRequestLoaded(url string, status int) {
	if status == http.StatusNotFound {
		go i.agent.Track(url, i.agent.doc.Referrer())
	}
}

// Install wires an agent into a page runtime: it reads the site slug
// from the embed tag, wraps the runtime's network primitives, subscribes
// to resource load failures and schedules the 404-page heuristic on
// document ready. Nothing is installed when the slug is missing.
func Install(rt *Runtime, opts ...Option) (*Agent, error) {
	a := &Agent{
		cfg: Config{
			Endpoint:       DefaultEndpoint,
			HeuristicDelay: DefaultHeuristicDelay,
			RedirectDelay:  DefaultRedirectDelay,
		},
		doc:    rt.Document,
		nav:    rt.Navigator,
		client: http.DefaultClient,
		is404:  Default404Page,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.cfg.Site == "" {
		a.cfg.Site = rt.Document.EmbedAttr(SiteAttr)
	}
	if a.cfg.Site == "" {
		a.debug(log.Fields{}, "missing data-site attribute")
		return nil, ErrMissingSite
	}
	if endpoint := rt.Document.EmbedAttr(EndpointAttr); endpoint != "" && a.cfg.Endpoint == DefaultEndpoint {
		a.cfg.Endpoint = strings.TrimRight(endpoint, "/")
	}

	ic := &interceptor{agent: a}
	if rt.Client != nil {
		rt.Client.Transport = observeTransport(rt.Client.Transport, ic.onResponse)
	}
	if rt.Requests != nil {
		rt.Requests.observe(ic.onRequestLoaded)
	}

	rt.Document.OnResourceError(a.onResourceError)
	rt.Document.OnReady(func() {
		time.AfterFunc(a.cfg.HeuristicDelay, a.checkPage)
	})

	a.debug(log.Fields{"site": a.cfg.Site}, "agent installed")
	return a, nil
}

// Config returns the active configuration.
func (a *Agent) Config() Config {
	return a.cfg
}

// Track reports one broken URL to the ingestor and, when the answer
// carries a redirect target, schedules the page navigation. Failures of
// any kind are logged and dropped: reporting must never visibly break
// the host page, and there are no retries.
func (a *Agent) Track(brokenURL, referrer string) {
	if a.dedup != nil && !a.dedup.first(brokenURL) {
		a.debug(log.Fields{"url": brokenURL}, "duplicate report suppressed")
		return
	}
	a.debug(log.Fields{"url": brokenURL}, "tracking 404")

	payload, err := json.Marshal(models.Report{
		Site:     a.cfg.Site,
		URL:      brokenURL,
		Referrer: referrer,
	})
	if err != nil {
		a.debug(log.Fields{"url": brokenURL}, "marshalling report: "+err.Error())
		return
	}

	resp, err := a.client.Post(a.cfg.Endpoint+"/api/track", "application/json", bytes.NewReader(payload))
	if err != nil {
		a.debug(log.Fields{"url": brokenURL}, "track request failed: "+err.Error())
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// quota rejections and server failures end the same way: drop
		io.Copy(io.Discard, resp.Body)
		a.debug(log.Fields{"url": brokenURL, "status": resp.StatusCode}, "report rejected")
		return
	}

	var out struct {
		RedirectURL string `json:"redirect_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		a.debug(log.Fields{"url": brokenURL}, "decoding track response: "+err.Error())
		return
	}
	if out.RedirectURL == "" {
		return
	}
	a.redirect(out.RedirectURL)
}

var resourceTags = map[string]bool{
	"img":    true,
	"script": true,
	"link":   true,
	"iframe": true,
}

func (a *Agent) onResourceError(e ResourceError) {
	if !resourceTags[strings.ToLower(e.Tag)] {
		return
	}
	if e.Source == "" || !govalidator.IsRequestURL(e.Source) {
		return
	}
	a.debug(log.Fields{"tag": e.Tag, "src": e.Source}, "resource 404")
	go a.Track(e.Source, a.doc.Referrer())
}

func (a *Agent) checkPage() {
	if !a.is404(a.doc) {
		return
	}
	a.debug(log.Fields{"url": a.doc.URL()}, "404 page detected")
	a.Track(a.doc.URL(), a.doc.Referrer())
}

func (a *Agent) redirect(url string) {
	if !atomic.CompareAndSwapInt32(&a.navigated, 0, 1) {
		return
	}
	a.debug(log.Fields{"url": url}, "redirecting")
	time.AfterFunc(a.cfg.RedirectDelay, func() {
		a.nav.Navigate(url)
	})
}

func (a *Agent) debug(fields log.Fields, msg string) {
	if !a.cfg.Debug {
		return
	}
	log.WithFields(fields).WithField("agent", Version).Info(msg)
}
