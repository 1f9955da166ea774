// cmd/api/main.go
package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gregjones/httpcache"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"golang.org/x/oauth2"

	"github.com/davidwrenn/portfolio/flickr"
	"github.com/davidwrenn/portfolio/github"
	"github.com/davidwrenn/portfolio/internal/config"
	"github.com/davidwrenn/portfolio/internal/email"
	"github.com/davidwrenn/portfolio/internal/http/routes"
	"github.com/davidwrenn/portfolio/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Outbound clients share one in-memory caching transport on top of
	// the disk-level envelope caches.
	transport := httpcache.NewMemoryCacheTransport()
	httpClient := &http.Client{Transport: transport}

	ghHTTP := httpClient
	if cfg.GitHub.Token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.GitHub.Token})
		ghHTTP = &http.Client{Transport: &oauth2.Transport{Source: src, Base: transport}}
	}

	// Project directory
	ghClient := github.NewClient(github.WithHTTPClient(ghHTTP))
	projects := github.NewDirectory(
		ghClient,
		store.NewFile[github.Envelope](filepath.Join(cfg.CacheDir, "projects.json")),
		github.Tracked,
		github.WithLogger(logger),
	)

	// Gallery. Without an API key the REST calls fail and the gallery
	// degrades to its cache and the keyless public feed, which is
	// exactly the behavior we want on a revoked key.
	apiKey := cfg.Flickr.APIKey
	if apiKey == "" {
		logger.Warn().Msg("FLICKR_API_KEY not set, gallery will rely on cache and public feed")
		apiKey = "unset"
	}
	flClient, err := flickr.New(apiKey, flickr.WithHTTPClient(httpClient))
	if err != nil {
		log.Fatalf("flickr client error: %v", err)
	}
	gallery := flickr.NewGallery(
		flClient,
		store.NewFile[flickr.Envelope](filepath.Join(cfg.CacheDir, "photos.json")),
		cfg.Flickr.Username,
		flickr.WithLogger(logger),
	)

	// Contact delivery
	var sender email.Sender = email.StdoutSender{}
	if cfg.HasContact() {
		sender = email.NewSMTPSender(cfg.Contact.SMTPAddr, cfg.Contact.From)
	}

	// Router / server
	s := routes.New(routes.ServerOptions{
		Projects:  projects,
		Photos:    gallery,
		Email:     sender,
		ContactTo: cfg.Contact.To,
		Log:       logger,
	})
	h := hlog.NewHandler(logger)(s.Router)

	log.Printf("starting app on :%s", cfg.Port)
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: h}
	log.Fatal(srv.ListenAndServe())
}
