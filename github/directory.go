package github

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/davidwrenn/portfolio/store"
)

// DefaultTTL is how long a successful refresh is considered fresh.
const DefaultTTL = time.Hour

// API is the slice of the GitHub client the directory depends on.
type API interface {
	Repo(ctx context.Context, slug string) (*RepoInfo, error)
	Languages(ctx context.Context, slug string) (map[string]int64, error)
}

// Directory serves the curated project list, refreshing from the API at
// most once per TTL window and preserving previously good data across
// partial or total upstream failure.
type Directory struct {
	api   API
	file  *store.File[Envelope]
	repos []TrackedRepo
	ttl   time.Duration
	log   zerolog.Logger
	now   func() time.Time
}

type DirectoryOption func(*Directory)

func WithTTL(d time.Duration) DirectoryOption {
	return func(dir *Directory) { dir.ttl = d }
}

func WithLogger(l zerolog.Logger) DirectoryOption {
	return func(dir *Directory) { dir.log = l }
}

func NewDirectory(api API, file *store.File[Envelope], repos []TrackedRepo, opts ...DirectoryOption) *Directory {
	d := &Directory{
		api:   api,
		file:  file,
		repos: repos,
		ttl:   DefaultTTL,
		log:   zerolog.Nop(),
		now:   time.Now,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Projects returns the project list in configured order. It never
// fails: upstream or storage trouble degrades to cached entries, then
// to the curated fallback descriptions.
func (d *Directory) Projects(ctx context.Context) []Project {
	prev, _ := d.file.Read(Envelope{})
	nowMs := d.now().UnixMilli()

	if d.fresh(prev, nowMs) {
		return prev.Projects
	}

	type fetched struct {
		info  *RepoInfo
		langs map[string]int64
		ok    bool
	}
	results := make([]fetched, len(d.repos))

	// One goroutine per repo; a failure stays local to its slot so the
	// others keep going.
	g, gctx := errgroup.WithContext(ctx)
	for i, tr := range d.repos {
		i, tr := i, tr
		g.Go(func() error {
			slug, ok := tr.Slug()
			if !ok {
				d.log.Warn().Str("url", tr.URL).Msg("tracked repo has no owner/repo slug")
				return nil
			}
			info, err := d.api.Repo(gctx, slug)
			if err != nil {
				d.log.Warn().Err(err).Str("repo", slug).Msg("repo fetch failed")
				return nil
			}
			langs, err := d.api.Languages(gctx, slug)
			if err != nil {
				d.log.Warn().Err(err).Str("repo", slug).Msg("languages fetch failed")
				return nil
			}
			results[i] = fetched{info: info, langs: langs, ok: true}
			return nil
		})
	}
	_ = g.Wait()

	prevByURL := make(map[string]Project, len(prev.Projects))
	for _, p := range prev.Projects {
		prevByURL[p.URL] = p
	}

	// Reassemble in configured order, never fetch-completion order.
	out := make([]Project, 0, len(d.repos))
	succeeded := 0
	for i, tr := range d.repos {
		r := results[i]
		if r.ok {
			succeeded++
			desc := r.info.Description
			if desc == "" {
				desc = tr.Description
			}
			out = append(out, Project{
				Name:        tr.Name,
				URL:         tr.URL,
				Description: desc,
				Stars:       r.info.Stars,
				Languages:   LanguageBreakdown(r.langs),
			})
			continue
		}
		if p, ok := prevByURL[tr.URL]; ok {
			out = append(out, p)
			continue
		}
		out = append(out, Project{
			Name:        tr.Name,
			URL:         tr.URL,
			Description: tr.Description,
			Languages:   []Language{},
		})
	}

	// Total outage with good data on disk: keep the stale data, keep
	// its timestamp, skip the write.
	if succeeded == 0 && len(prev.Projects) > 0 {
		d.log.Warn().Msg("all repo fetches failed, serving stale project cache")
		return prev.Projects
	}

	next := Envelope{Timestamp: prev.Timestamp, Projects: out}
	if succeeded > 0 {
		next.Timestamp = nowMs
	}
	if err := d.file.Write(next); err != nil {
		d.log.Warn().Err(err).Msg("persisting project cache failed")
	}
	return out
}

// fresh reports whether the cached envelope can be served as-is. A
// non-empty language breakdown on at least one entry is the signal that
// the last refresh was a real success rather than fallback-only data.
func (d *Directory) fresh(e Envelope, nowMs int64) bool {
	if len(e.Projects) == 0 {
		return false
	}
	anyLangs := false
	for _, p := range e.Projects {
		if len(p.Languages) > 0 {
			anyLangs = true
			break
		}
	}
	if !anyLangs {
		return false
	}
	return nowMs-e.Timestamp < d.ttl.Milliseconds()
}

// LanguageBreakdown turns byte counts into display percentages: sorted
// descending by byte share (name as tie-break), top 5, one decimal.
func LanguageBreakdown(bytes map[string]int64) []Language {
	var total int64
	for _, b := range bytes {
		total += b
	}
	if total == 0 {
		return []Language{}
	}

	type entry struct {
		name  string
		bytes int64
	}
	entries := make([]entry, 0, len(bytes))
	for name, b := range bytes {
		entries = append(entries, entry{name, b})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].bytes != entries[j].bytes {
			return entries[i].bytes > entries[j].bytes
		}
		return entries[i].name < entries[j].name
	})
	if len(entries) > 5 {
		entries = entries[:5]
	}

	out := make([]Language, 0, len(entries))
	for _, e := range entries {
		pct := float64(e.bytes) / float64(total) * 100
		out = append(out, Language{
			Name:       e.name,
			Percentage: strconv.FormatFloat(pct, 'f', 1, 64),
		})
	}
	return out
}
