package github

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/davidwrenn/portfolio/store"
)

type fakeAPI struct {
	mu        sync.Mutex
	repoCalls int

	repos map[string]*RepoInfo
	langs map[string]map[string]int64
	fail  map[string]bool
	delay map[string]time.Duration
}

func (f *fakeAPI) Repo(ctx context.Context, slug string) (*RepoInfo, error) {
	f.mu.Lock()
	f.repoCalls++
	f.mu.Unlock()

	if d, ok := f.delay[slug]; ok {
		time.Sleep(d)
	}
	if f.fail[slug] {
		return nil, errors.New("upstream down")
	}
	info, ok := f.repos[slug]
	if !ok {
		return nil, errors.New("not found")
	}
	return info, nil
}

func (f *fakeAPI) Languages(ctx context.Context, slug string) (map[string]int64, error) {
	if f.fail[slug] {
		return nil, errors.New("upstream down")
	}
	langs, ok := f.langs[slug]
	if !ok {
		return nil, errors.New("not found")
	}
	return langs, nil
}

func (f *fakeAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.repoCalls
}

var testRepos = []TrackedRepo{
	{Name: "Alpha", URL: "https://github.com/w/alpha", Description: "alpha fallback"},
	{Name: "Beta", URL: "https://github.com/w/beta", Description: "beta fallback"},
	{Name: "Gamma", URL: "https://github.com/w/gamma", Description: "gamma fallback"},
}

func healthyAPI() *fakeAPI {
	return &fakeAPI{
		repos: map[string]*RepoInfo{
			"w/alpha": {Name: "alpha", Description: "alpha live", Stars: 12},
			"w/beta":  {Name: "beta", Description: "beta live", Stars: 3},
			"w/gamma": {Name: "gamma", Description: "gamma live", Stars: 7},
		},
		langs: map[string]map[string]int64{
			"w/alpha": {"Go": 1000},
			"w/beta":  {"Go": 500, "Shell": 100},
			"w/gamma": {"Rust": 900},
		},
		fail:  map[string]bool{},
		delay: map[string]time.Duration{},
	}
}

func newTestDirectory(t *testing.T, api API) *Directory {
	t.Helper()
	file := store.NewFile[Envelope](filepath.Join(t.TempDir(), "projects.json"))
	return NewDirectory(api, file, testRepos)
}

func TestLanguageBreakdown(t *testing.T) {
	got := LanguageBreakdown(map[string]int64{"A": 300, "B": 100, "C": 600})

	want := []Language{
		{Name: "C", Percentage: "60.0"},
		{Name: "A", Percentage: "30.0"},
		{Name: "B", Percentage: "10.0"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestLanguageBreakdownZeroTotal(t *testing.T) {
	if got := LanguageBreakdown(map[string]int64{"A": 0}); len(got) != 0 {
		t.Errorf("expected empty breakdown for zero total, got %v", got)
	}
	if got := LanguageBreakdown(nil); len(got) != 0 {
		t.Errorf("expected empty breakdown for nil map, got %v", got)
	}
}

func TestLanguageBreakdownTopFive(t *testing.T) {
	bytes := map[string]int64{
		"A": 700, "B": 600, "C": 500, "D": 400, "E": 300, "F": 200, "G": 100,
	}
	got := LanguageBreakdown(bytes)
	if len(got) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(got))
	}
	if got[0].Name != "A" || got[4].Name != "E" {
		t.Errorf("unexpected truncation order: %v", got)
	}
}

func TestProjectsFreshnessIdempotence(t *testing.T) {
	api := healthyAPI()
	d := newTestDirectory(t, api)

	t0 := time.Now()
	d.now = func() time.Time { return t0 }

	first := d.Projects(context.Background())
	callsAfterFirst := api.calls()
	if callsAfterFirst == 0 {
		t.Fatal("expected the first call to hit the API")
	}

	d.now = func() time.Time { return t0.Add(10 * time.Minute) }
	second := d.Projects(context.Background())

	if api.calls() != callsAfterFirst {
		t.Errorf("second call within TTL hit the API: %d -> %d calls", callsAfterFirst, api.calls())
	}
	if len(first) != len(second) {
		t.Fatalf("result length changed: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Name != second[i].Name || first[i].Description != second[i].Description ||
			first[i].Stars != second[i].Stars {
			t.Errorf("entry %d changed between calls: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestProjectsExpiredCacheRefetches(t *testing.T) {
	api := healthyAPI()
	d := newTestDirectory(t, api)

	t0 := time.Now()
	d.now = func() time.Time { return t0 }
	d.Projects(context.Background())
	calls := api.calls()

	d.now = func() time.Time { return t0.Add(2 * time.Hour) }
	d.Projects(context.Background())
	if api.calls() == calls {
		t.Error("expected a refetch after the TTL expired")
	}
}

func TestProjectsOrderDeterminism(t *testing.T) {
	api := healthyAPI()
	// Invert completion order relative to config order.
	api.delay["w/alpha"] = 60 * time.Millisecond
	api.delay["w/beta"] = 30 * time.Millisecond
	api.delay["w/gamma"] = 0

	d := newTestDirectory(t, api)
	got := d.Projects(context.Background())

	if len(got) != len(testRepos) {
		t.Fatalf("got %d projects, want %d", len(got), len(testRepos))
	}
	for i, tr := range testRepos {
		if got[i].Name != tr.Name {
			t.Errorf("position %d = %s, want %s", i, got[i].Name, tr.Name)
		}
	}
}

func TestProjectsNoWipeOnTotalFailure(t *testing.T) {
	api := healthyAPI()
	file := store.NewFile[Envelope](filepath.Join(t.TempDir(), "projects.json"))
	d := NewDirectory(api, file, testRepos)

	t0 := time.Now()
	d.now = func() time.Time { return t0 }
	before := d.Projects(context.Background())
	envBefore, ok := file.Read(Envelope{})
	if !ok {
		t.Fatal("expected a persisted envelope after the first refresh")
	}

	// Everything fails on the next refresh.
	for slug := range api.repos {
		api.fail[slug] = true
	}
	d.now = func() time.Time { return t0.Add(2 * time.Hour) }
	after := d.Projects(context.Background())

	if len(after) != len(before) {
		t.Fatalf("list length changed: %d vs %d", len(before), len(after))
	}
	for i := range before {
		if before[i].Description != after[i].Description || before[i].Stars != after[i].Stars {
			t.Errorf("entry %d changed on total failure: %+v vs %+v", i, before[i], after[i])
		}
	}

	envAfter, _ := file.Read(Envelope{})
	if envAfter.Timestamp != envBefore.Timestamp {
		t.Errorf("timestamp changed on total failure: %d vs %d", envBefore.Timestamp, envAfter.Timestamp)
	}
}

func TestProjectsPartialFailureFallbackChain(t *testing.T) {
	api := healthyAPI()
	file := store.NewFile[Envelope](filepath.Join(t.TempDir(), "projects.json"))
	d := NewDirectory(api, file, testRepos)

	t0 := time.Now()
	d.now = func() time.Time { return t0 }
	first := d.Projects(context.Background())
	if first[1].Description != "beta live" {
		t.Fatalf("precondition failed: %+v", first[1])
	}

	// Beta fails on the second refresh; the previous cached entry must
	// win over the static fallback.
	api.fail["w/beta"] = true
	api.repos["w/alpha"].Stars = 20
	d.now = func() time.Time { return t0.Add(2 * time.Hour) }
	second := d.Projects(context.Background())

	if second[1].Description != "beta live" {
		t.Errorf("beta entry = %q, want previous cached description", second[1].Description)
	}
	if second[1].Stars != 3 {
		t.Errorf("beta stars = %d, want cached 3", second[1].Stars)
	}
	if second[0].Stars != 20 {
		t.Errorf("alpha stars = %d, want fresh 20", second[0].Stars)
	}
}

func TestProjectsStaticFallbackWithoutCache(t *testing.T) {
	api := healthyAPI()
	api.fail["w/gamma"] = true
	d := newTestDirectory(t, api)

	got := d.Projects(context.Background())
	if got[2].Description != "gamma fallback" {
		t.Errorf("gamma description = %q, want static fallback", got[2].Description)
	}
	if got[2].Stars != 0 {
		t.Errorf("gamma stars = %d, want 0", got[2].Stars)
	}
	if len(got[2].Languages) != 0 {
		t.Errorf("gamma languages = %v, want empty", got[2].Languages)
	}
}

func TestProjectsEmptyUpstreamDescriptionUsesFallback(t *testing.T) {
	api := healthyAPI()
	api.repos["w/alpha"].Description = ""
	d := newTestDirectory(t, api)

	got := d.Projects(context.Background())
	if got[0].Description != "alpha fallback" {
		t.Errorf("description = %q, want operator fallback", got[0].Description)
	}
	if got[0].Stars != 12 {
		t.Errorf("stars = %d, want fresh 12", got[0].Stars)
	}
}

func TestProjectsDegradedCacheIsNotFresh(t *testing.T) {
	api := healthyAPI()
	file := store.NewFile[Envelope](filepath.Join(t.TempDir(), "projects.json"))

	// Simulate a previous refresh that degraded to fallback-only data:
	// recent timestamp but no language breakdown anywhere.
	degraded := Envelope{
		Timestamp: time.Now().UnixMilli(),
		Projects: []Project{
			{Name: "Alpha", URL: "https://github.com/w/alpha", Description: "alpha fallback", Languages: []Language{}},
		},
	}
	if err := file.Write(degraded); err != nil {
		t.Fatalf("seed write failed: %v", err)
	}

	d := NewDirectory(api, file, testRepos)
	got := d.Projects(context.Background())

	if api.calls() == 0 {
		t.Error("expected a refetch despite the recent timestamp")
	}
	if got[0].Description != "alpha live" {
		t.Errorf("description = %q, want refreshed value", got[0].Description)
	}
}

func TestTrackedRepoSlug(t *testing.T) {
	tests := []struct {
		url  string
		slug string
		ok   bool
	}{
		{"https://github.com/w/alpha", "w/alpha", true},
		{"https://github.com/w/alpha/tree/main", "w/alpha", true},
		{"https://github.com/", "", false},
		{"https://github.com/justowner", "", false},
		{"://bad", "", false},
	}
	for _, tt := range tests {
		slug, ok := TrackedRepo{URL: tt.url}.Slug()
		if slug != tt.slug || ok != tt.ok {
			t.Errorf("Slug(%q) = (%q, %v), want (%q, %v)", tt.url, slug, ok, tt.slug, tt.ok)
		}
	}
}
