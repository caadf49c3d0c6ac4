package models

// Report is the wire payload describing one detected failure. It is never
// persisted as-is; it lives only for the duration of one request.
type Report struct {
	Site     string `json:"site"`
	URL      string `json:"url"`
	Referrer string `json:"referrer,omitempty"`
	Country  string `json:"country,omitempty"`
}
