package agent

import (
	"context"
	"io"
	"net/http"
	"sync"

	"github.com/pkg/errors"
)

// RequestState tracks an EventRequest through its lifecycle.
type RequestState int

const (
	StateUnsent RequestState = iota
	StateOpened
	StateSent
	StateLoaded
)

var (
	ErrAlreadyOpened = errors.New("agent: request already opened")
	ErrNotOpened     = errors.New("agent: request not opened")
)

// RequestFactory produces EventRequests. An installed agent observes
// every request the factory hands out.
type RequestFactory struct {
	// Client performs the underlying round trips; http.DefaultClient
	// when nil.
	Client *http.Client

	mu    sync.Mutex
	hooks []func(url string, status int)
}

// observe registers a load hook applied to every future request.
func (f *RequestFactory) observe(fn func(url string, status int)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hooks = append(f.hooks, fn)
}

// NewRequest returns a request in the unsent state.
func (f *RequestFactory) NewRequest() *EventRequest {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	f.mu.Lock()
	hooks := append([]func(string, int){}, f.hooks...)
	f.mu.Unlock()
	return &EventRequest{client: client, hooks: hooks}
}

// EventRequest is the callback-driven network primitive: it moves from
// unsent through opened and sent to loaded, firing OnLoad listeners once
// the response arrives. Observer hooks fire after the page's own
// listeners so instrumentation cannot reorder what the page sees.
type EventRequest struct {
	client *http.Client
	hooks  []func(url string, status int)

	mu        sync.Mutex
	state     RequestState
	method    string
	url       string
	status    int
	listeners []func(status int, body []byte)
}

func (r *EventRequest) State() RequestState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Status returns the response status once the request has loaded, 0
// before that or on transport failure.
func (r *EventRequest) Status() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Open sets the method and target URL.
func (r *EventRequest) Open(method, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateUnsent {
		return ErrAlreadyOpened
	}
	r.state = StateOpened
	r.method = method
	r.url = url
	return nil
}

// OnLoad registers a listener fired when the response has loaded.
func (r *EventRequest) OnLoad(fn func(status int, body []byte)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Send dispatches the request and returns immediately; listeners and
// hooks fire on the request's own goroutine once the response arrives.
// Transport failures still transition the request to loaded, with a
// zero status.
func (r *EventRequest) Send(ctx context.Context, body io.Reader) error {
	r.mu.Lock()
	if r.state != StateOpened {
		r.mu.Unlock()
		return ErrNotOpened
	}
	r.state = StateSent
	method, url := r.method, r.url
	r.mu.Unlock()

	go func() {
		var status int
		var payload []byte

		req, err := http.NewRequestWithContext(ctx, method, url, body)
		if err == nil {
			resp, derr := r.client.Do(req)
			if derr == nil {
				status = resp.StatusCode
				payload, _ = io.ReadAll(resp.Body)
				resp.Body.Close()
			}
		}

		r.mu.Lock()
		r.state = StateLoaded
		r.status = status
		listeners := append([]func(int, []byte){}, r.listeners...)
		r.mu.Unlock()

		for _, fn := range listeners {
			fn(status, payload)
		}
		for _, fn := range r.hooks {
			fn(url, status)
		}
	}()
	return nil
}
