// Package config defines the necessary types to configure the application.
// An example config file config.yaml is provided in the repository.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/creasty/defaults"
	"github.com/goccy/go-yaml"
)

type Config struct {
	Application Application `yaml:"application"`

	HTTP HTTPServer `yaml:"http"`

	Database Database `yaml:"database"`
	Valkey   Valkey   `yaml:"valkey"`
	Spotify  Spotify  `yaml:"spotify"`
	Session  Session  `yaml:"session"`
}

type Application struct {
	Name        string `yaml:"name" default:"flipside-player"`
	Environment string `yaml:"environment" default:"development"`
}

// IsProduction gates how much error detail leaves the service.
func (a Application) IsProduction() bool {
	return a.Environment == "production"
}

type HTTPServer struct {
	Address         string        `yaml:"address" default:":8080"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" default:"5s"`
}

type Database struct {
	Name     string    `yaml:"name" default:"flipside"`
	Port     string    `yaml:"port" default:"5432"`
	Host     SourceRef `yaml:"host"`
	User     SourceRef `yaml:"user"`
	Password SourceRef `yaml:"password"`
}

type Valkey struct {
	Host     SourceRef `yaml:"host"`
	User     SourceRef `yaml:"user"`
	Password SourceRef `yaml:"password"`
	Prefix   string    `yaml:"prefix" default:"flipside"`
}

// Spotify holds the provider endpoints and the client's own credentials.
// Mock switches the whole provider client to the deterministic test double;
// the choice is made once at composition time.
type Spotify struct {
	Mock              bool      `yaml:"mock"`
	AuthURL           string    `yaml:"authURL" default:"https://accounts.spotify.com/authorize"`
	TokenURL          string    `yaml:"tokenURL" default:"https://accounts.spotify.com/api/token"`
	APIBaseURL        string    `yaml:"apiBaseURL" default:"https://api.spotify.com/v1"`
	ClientID          SourceRef `yaml:"clientID"`
	ClientSecret      SourceRef `yaml:"clientSecret"`
	Scopes            string    `yaml:"scopes" default:"streaming user-read-email user-read-private user-read-playback-state user-modify-playback-state"`
	RequestsPerSecond float64   `yaml:"requestsPerSecond" default:"10"`
}

type Session struct {
	CallbackURL string        `yaml:"callbackURL" default:"http://localhost:8080/auth/spotify/callback"`
	FrontendURL string        `yaml:"frontendURL" default:"http://localhost:5173"`
	Duration    time.Duration `yaml:"duration" default:"12h"`

	CookieTemplate CookieTemplate `yaml:"cookie"`
	CSRFSecret     SourceRef      `yaml:"csrfSecret"`
}

type CookieSameSite string

const (
	CookieSameSiteNone   CookieSameSite = "None"
	CookieSameSiteLax    CookieSameSite = "Lax"
	CookieSameSiteStrict CookieSameSite = "Strict"
)

type CookieTemplate struct {
	Name     string         `yaml:"name" default:"flipside_session"`
	MaxAge   int            `yaml:"maxAge"`
	Path     string         `yaml:"path" default:"/"`
	Domain   string         `yaml:"domain"`
	Secure   bool           `yaml:"secure"`
	HTTPOnly bool           `yaml:"httpOnly" default:"true"`
	SameSite CookieSameSite `yaml:"sameSite" default:"Lax"`
}

// Load reads the first config.yaml found in the given directories, applying
// struct-tag defaults for everything the file leaves out. A missing file is
// not an error: the defaults alone form a runnable development config.
func Load(dirs ...string) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("applying config defaults: %w", err)
	}

	for _, dir := range dirs {
		path := filepath.Join(os.ExpandEnv(dir), "config.yaml")
		raw, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}

			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}

		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}

		break
	}

	return cfg, nil
}
