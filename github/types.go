package github

import (
	"net/url"
	"strings"
)

// TrackedRepo is one entry of the curated project list. URL doubles as
// the lookup key when merging a refresh with previously cached data.
type TrackedRepo struct {
	Name        string
	URL         string
	Description string // shown when neither upstream nor cache has anything better
}

// Slug extracts the "owner/repo" API slug from the repo URL.
func (t TrackedRepo) Slug() (string, bool) {
	u, err := url.Parse(t.URL)
	if err != nil {
		return "", false
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", false
	}
	return parts[0] + "/" + parts[1], true
}

// Language is one entry of a project's language breakdown. Percentage
// is pre-formatted to one decimal for direct display.
type Language struct {
	Name       string `json:"name"`
	Percentage string `json:"percentage"`
}

// Project is the cached view of one tracked repository.
type Project struct {
	Name        string     `json:"name"`
	URL         string     `json:"url"`
	Description string     `json:"description"`
	Stars       int        `json:"stars"`
	Languages   []Language `json:"languages"`
}

// Envelope is the persisted cache document for the project directory.
type Envelope struct {
	Timestamp int64     `json:"timestamp"` // ms since epoch of the last real refresh
	Projects  []Project `json:"projects"`
}

// RepoInfo matches the fields we use from the repository endpoint.
type RepoInfo struct {
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	Stars       int    `json:"stargazers_count"`
	HTMLURL     string `json:"html_url"`
}
