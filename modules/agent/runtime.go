package agent

import "net/http"

// Document is the agent's read-only view of the hosting page.
type Document interface {
	// URL is the page's current address.
	URL() string
	Title() string
	// BodyText is the page's visible text content.
	BodyText() string
	Referrer() string
	// EmbedAttr returns an attribute of the tag that embedded the agent,
	// e.g. the data-site slug.
	EmbedAttr(name string) string
	// OnReady runs fn once the document is interactive. Implementations
	// call fn immediately when the document already is.
	OnReady(fn func())
	// OnResourceError subscribes to element load failures. The channel is
	// page-wide, so failures from nested elements are seen too.
	OnResourceError(fn func(ResourceError))
}

// Navigator performs whole-page navigation.
type Navigator interface {
	Navigate(url string)
}

// ResourceError describes a page element that failed to load.
type ResourceError struct {
	// Tag is the element name: img, script, link, iframe, ...
	Tag string
	// Source is the element's resolved src or href.
	Source string
}

// Runtime bundles the pieces of a page environment the agent instruments:
// the document, the navigator and the page's two network primitives.
type Runtime struct {
	Document  Document
	Navigator Navigator

	// Client is the awaited-style network primitive. Install wraps its
	// transport in place.
	Client *http.Client

	// Requests produces the event-driven network primitive. Install
	// registers an observer on it.
	Requests *RequestFactory
}
