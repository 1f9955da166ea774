// cmd/refresh warms both caches once and exits. Useful after a deploy
// so the first visitor never waits on cold upstream calls. This is a
// one-shot tool, not a daemon; refreshes otherwise happen inside
// requests.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/davidwrenn/portfolio/flickr"
	"github.com/davidwrenn/portfolio/github"
	"github.com/davidwrenn/portfolio/internal/config"
	"github.com/davidwrenn/portfolio/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ghHTTP := http.DefaultClient
	if cfg.GitHub.Token != "" {
		ghHTTP = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.GitHub.Token}))
	}

	projects := github.NewDirectory(
		github.NewClient(github.WithHTTPClient(ghHTTP)),
		store.NewFile[github.Envelope](filepath.Join(cfg.CacheDir, "projects.json")),
		github.Tracked,
		github.WithLogger(logger),
		// Force a refresh regardless of what is on disk.
		github.WithTTL(0),
	)
	got := projects.Projects(ctx)
	log.Printf("projects: %d entries cached", len(got))

	apiKey := cfg.Flickr.APIKey
	if apiKey == "" {
		apiKey = "unset"
	}
	flClient, err := flickr.New(apiKey)
	if err != nil {
		log.Fatalf("flickr client error: %v", err)
	}
	gallery := flickr.NewGallery(
		flClient,
		store.NewFile[flickr.Envelope](filepath.Join(cfg.CacheDir, "photos.json")),
		cfg.Flickr.Username,
		flickr.WithLogger(logger),
		flickr.WithTTL(0),
	)
	data := gallery.PhotoData(ctx)
	log.Printf("gallery: %d photos, %d albums cached", len(data.Photos), len(data.Albums))
}
