package models

// DefaultSiteName is the display name used for the platform front page in
// sold/prediction mappings. The front page has no site row of its own, so
// campaigns and weights reference it with an empty site name.
const DefaultSiteName = "frontpage"

// Site identifies a sellable surface: either a named site or the
// distinguished front page.
type Site struct {
	Name    string `json:"name"`
	Default bool   `json:"default"`
}

// DefaultSite returns the front-page site.
func DefaultSite() Site {
	return Site{Name: DefaultSiteName, Default: true}
}

// Key returns the lookup key used by the campaign store. The front page is
// stored under the empty string; every other site under its name.
func (s Site) Key() string {
	if s.Default {
		return ""
	}
	return s.Name
}
