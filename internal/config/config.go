// Package config handles application configuration from environment variables
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	CacheDir string `env:"CACHE_DIR" envDefault:"data"`

	GitHub  GitHubConfig
	Flickr  FlickrConfig
	Contact ContactConfig
}

// GitHubConfig holds code-hosting API configuration. The token is
// optional; unauthenticated requests work at a lower rate limit.
type GitHubConfig struct {
	Token string `env:"GITHUB_TOKEN"`
}

// FlickrConfig holds photo API configuration
type FlickrConfig struct {
	APIKey   string `env:"FLICKR_API_KEY"`
	Username string `env:"FLICKR_USERNAME" envDefault:"dwrenn"`
}

// ContactConfig holds contact-form delivery configuration
type ContactConfig struct {
	SMTPAddr string `env:"SMTP_ADDR" envDefault:"localhost:1025"`
	From     string `env:"CONTACT_FROM" envDefault:"no-reply@davidwrenn.dev"`
	To       string `env:"CONTACT_TO"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// HasFlickr returns true if the photo API is usable
func (c *Config) HasFlickr() bool {
	return c.Flickr.APIKey != ""
}

// HasContact returns true if contact-form delivery is configured
func (c *Config) HasContact() bool {
	return c.Contact.To != ""
}
