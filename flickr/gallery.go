package flickr

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/davidwrenn/portfolio/store"
)

const (
	// DefaultTTL is how long a refresh with data is considered fresh.
	DefaultTTL = time.Hour

	// DefaultUserID is the account NSID used when username resolution
	// fails. Keeping the gallery alive beats failing the whole page.
	DefaultUserID = "198843541@N02"

	maxPhotoPages = 10
	photosPerPage = 100
	albumsPerPage = 50
)

// UserFinder is the slice of the client the resolver needs.
type UserFinder interface {
	FindByUsername(ctx context.Context, username string) (string, error)
}

// UserResolver memoizes the username-to-NSID lookup. Resolution runs
// at most once per resolver; a failed lookup pins the fallback id for
// the lifetime of the owner rather than retrying every request.
type UserResolver struct {
	api      UserFinder
	username string
	fallback string

	once sync.Once
	id   string
}

func NewUserResolver(api UserFinder, username, fallback string) *UserResolver {
	return &UserResolver{api: api, username: username, fallback: fallback}
}

func (r *UserResolver) Resolve(ctx context.Context) string {
	r.once.Do(func() {
		id, err := r.api.FindByUsername(ctx, r.username)
		if err != nil || id == "" {
			r.id = r.fallback
			return
		}
		r.id = id
	})
	return r.id
}

// API is the slice of the Flickr client the gallery depends on.
type API interface {
	UserFinder
	PublicPhotos(ctx context.Context, userID string, page, perPage int) (*PhotoPage, error)
	Photosets(ctx context.Context, userID string, perPage int) ([]PhotosetJSON, error)
	PublicFeed(ctx context.Context, userID string) ([]FeedItem, error)
}

// Gallery serves the photostream and album list, refreshing on a TTL
// window with a three-tier fallback: live API, then stale cache, then
// the unauthenticated public feed for the photostream.
type Gallery struct {
	api      API
	file     *store.File[Envelope]
	resolver *UserResolver
	ttl      time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

type GalleryOption func(*Gallery)

func WithTTL(d time.Duration) GalleryOption {
	return func(g *Gallery) { g.ttl = d }
}

func WithLogger(l zerolog.Logger) GalleryOption {
	return func(g *Gallery) { g.log = l }
}

func NewGallery(api API, file *store.File[Envelope], username string, opts ...GalleryOption) *Gallery {
	g := &Gallery{
		api:      api,
		file:     file,
		resolver: NewUserResolver(api, username, DefaultUserID),
		ttl:      DefaultTTL,
		log:      zerolog.Nop(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// PhotoData returns the photostream and albums. It never fails: every
// upstream problem degrades to cached data, and an empty photostream
// degrades further to the public feed.
func (g *Gallery) PhotoData(ctx context.Context) PhotoData {
	prev, existed := g.file.Read(Envelope{})
	nowMs := g.now().UnixMilli()

	if existed && nowMs-prev.Timestamp < g.ttl.Milliseconds() {
		return PhotoData{Photos: prev.Photos, Albums: prev.Albums}
	}

	userID := g.resolver.Resolve(ctx)

	var freshPhotos []Photo
	var freshAlbums []Album
	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		freshPhotos = g.fetchPhotostream(gctx, userID)
		return nil
	})
	grp.Go(func() error {
		freshAlbums = g.fetchAlbums(gctx, userID)
		return nil
	})
	_ = grp.Wait()

	hasNewData := len(freshPhotos) > 0 || len(freshAlbums) > 0

	// Empty-upstream protection: a transient empty response must not
	// wipe a populated cache.
	photos := freshPhotos
	if len(photos) == 0 {
		photos = prev.Photos
	}
	albums := freshAlbums
	if len(albums) == 0 {
		albums = prev.Albums
	}

	next := Envelope{Timestamp: prev.Timestamp, Photos: photos, Albums: albums}
	if hasNewData {
		next.Timestamp = nowMs
	} else if !existed {
		// A permanently-zero timestamp would refetch on every call.
		next.Timestamp = nowMs
	}
	if hasNewData || !existed {
		if err := g.file.Write(next); err != nil {
			g.log.Warn().Err(err).Msg("persisting photo cache failed")
		}
	}

	// Last resort for the photostream only; albums have no feed
	// equivalent.
	if len(photos) == 0 {
		if feed := g.fetchFeed(ctx, userID); len(feed) > 0 {
			photos = feed
			combined := Envelope{Timestamp: g.now().UnixMilli(), Photos: photos, Albums: albums}
			if err := g.file.Write(combined); err != nil {
				g.log.Warn().Err(err).Msg("persisting feed fallback failed")
			}
		}
	}

	return PhotoData{Photos: photos, Albums: albums}
}

// fetchPhotostream walks the paginated photostream, stopping early
// when the API reports fewer pages. A page failure keeps whatever was
// already collected; nothing propagates.
func (g *Gallery) fetchPhotostream(ctx context.Context, userID string) []Photo {
	var out []Photo
	for page := 1; page <= maxPhotoPages; page++ {
		pp, err := g.api.PublicPhotos(ctx, userID, page, photosPerPage)
		if err != nil {
			g.log.Warn().Err(err).Int("page", page).Msg("photostream fetch failed")
			break
		}
		for _, pj := range pp.Photos {
			out = append(out, photoFromJSON(pj, userID))
		}
		if len(pp.Photos) == 0 || (pp.Pages > 0 && page >= pp.Pages) {
			break
		}
	}
	return out
}

func (g *Gallery) fetchAlbums(ctx context.Context, userID string) []Album {
	sets, err := g.api.Photosets(ctx, userID, albumsPerPage)
	if err != nil {
		g.log.Warn().Err(err).Msg("album fetch failed")
		return nil
	}
	out := make([]Album, 0, len(sets))
	for _, s := range sets {
		out = append(out, albumFromJSON(s, userID))
	}
	return out
}

func (g *Gallery) fetchFeed(ctx context.Context, userID string) []Photo {
	items, err := g.api.PublicFeed(ctx, userID)
	if err != nil {
		g.log.Warn().Err(err).Msg("public feed fetch failed")
		return nil
	}
	out := make([]Photo, 0, len(items))
	for _, it := range items {
		out = append(out, photoFromFeedItem(it))
	}
	return out
}

// photoFromJSON maps an API photo record, synthesizing any size URL
// the extras left out from the (server, id, secret) triple.
func photoFromJSON(p PhotoJSON, userID string) Photo {
	owner := p.Owner
	if owner == "" {
		owner = userID
	}
	title := p.Title
	if title == "" {
		title = "Untitled"
	}

	small := p.URLM
	if small == "" {
		small = photoURL(p.Server, p.ID, p.Secret, suffixSmall)
	}
	medium := p.URLZ
	if medium == "" {
		medium = photoURL(p.Server, p.ID, p.Secret, suffixMedium)
	}
	large := p.URLL
	if large == "" {
		large = photoURL(p.Server, p.ID, p.Secret, suffixLarge)
	}

	return Photo{
		ID:          p.ID,
		Title:       title,
		Description: stripHTML(p.Description.Content),
		URLSmall:    small,
		URLMedium:   medium,
		URLLarge:    large,
		URLOriginal: p.URLO,
		Width:       p.WidthM,
		Height:      p.HeightM,
		PageURL:     "https://www.flickr.com/photos/" + owner + "/" + p.ID,
	}
}

func albumFromJSON(s PhotosetJSON, userID string) Album {
	title := s.Title.Content
	if title == "" {
		title = "Untitled"
	}
	cover := ""
	if s.Server != "" && s.Primary != "" && s.Secret != "" {
		cover = photoURL(s.Server, s.Primary, s.Secret, suffixMedium)
	}
	return Album{
		ID:          s.ID,
		Title:       title,
		Description: stripHTML(s.Description.Content),
		PhotoCount:  s.Photos,
		CoverURL:    cover,
		FlickrURL:   "https://www.flickr.com/photos/" + userID + "/albums/" + s.ID,
	}
}

// photoFromFeedItem maps a feed item into the Photo shape. The feed
// exposes a single medium-size URL; the other variants come from
// swapping its size token.
func photoFromFeedItem(it FeedItem) Photo {
	m := it.Media.M
	title := it.Title
	if title == "" {
		title = "Untitled"
	}
	return Photo{
		ID:          feedPhotoID(it),
		Title:       title,
		Description: stripHTML(it.Description),
		URLSmall:    m,
		URLMedium:   strings.Replace(m, "_m.", "_z.", 1),
		URLLarge:    strings.Replace(m, "_m.", "_b.", 1),
		URLOriginal: strings.Replace(m, "_m.", "_b.", 1),
		PageURL:     it.Link,
	}
}

// feedPhotoID recovers the photo id from the item's page link, falling
// back to the media URL's basename.
func feedPhotoID(it FeedItem) string {
	parts := strings.Split(strings.Trim(it.Link, "/"), "/")
	if len(parts) > 0 {
		if last := parts[len(parts)-1]; last != "" {
			return last
		}
	}
	base := it.Media.M
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.Index(base, "_"); i > 0 {
		return base[:i]
	}
	return base
}
