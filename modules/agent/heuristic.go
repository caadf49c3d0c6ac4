package agent

import "strings"

// PagePredicate classifies the current document as a 404 page. The
// default is fragile string matching; deployments can swap in a stricter
// classifier (meta markers, server-injected flags) without touching the
// interception layer.
type PagePredicate func(doc Document) bool

// Default404Page is the stock classifier: case-insensitive substring
// checks over the title, the visible body text and the URL path.
func Default404Page(doc Document) bool {
	title := strings.ToLower(doc.Title())
	if strings.Contains(title, "404") ||
		strings.Contains(title, "not found") ||
		strings.Contains(title, "page not found") {
		return true
	}

	body := strings.ToLower(doc.BodyText())
	if strings.Contains(body, "404") &&
		(strings.Contains(body, "not found") || strings.Contains(body, "page does not exist")) {
		return true
	}

	url := doc.URL()
	return strings.Contains(url, "/404") || strings.Contains(url, "/error")
}
