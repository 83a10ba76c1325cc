package inertiabase

// Page is the page object exchanged with the client.
//
// Version is nil when the application has no asset version,
// which is encoded as JSON null.
type Page struct {
	Component string         `json:"component"`
	Props     map[string]any `json:"props"`
	URL       string         `json:"url"`
	Version   *string        `json:"version"`
}

// VersionString returns the page version, or an empty string if none is set.
func (p *Page) VersionString() string {
	if p.Version == nil {
		return ""
	}

	return *p.Version
}
