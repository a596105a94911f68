package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// CalendarsEnv is the environment variable holding a |-delimited list of
// calendar names. When set and non-empty it overrides the config file.
const CalendarsEnv = "GCAL_CALENDARS"

// ICSConfig describes one ICS subscription source mixed into the agenda
// alongside Google calendars.
type ICSConfig struct {
	// URL is the ICS endpoint.
	URL string `yaml:"url"`
	// Name is the label used in logs; defaults to the URL host if empty.
	Name string `yaml:"name"`
}

// Config is the effective configuration of a run, assembled from defaults,
// an optional YAML file, the environment and CLI flags (in that order).
type Config struct {
	// OutputDir is where the monthly .org files are written.
	OutputDir string `yaml:"output_dir"`

	// Credentials is the path to the OAuth client secret JSON.
	Credentials string `yaml:"credentials"`

	// Token is the path where the OAuth token is cached between runs.
	Token string `yaml:"token"`

	// Timezone is the IANA name of the target zone all output times are
	// expressed in.
	Timezone string `yaml:"timezone"`

	// Calendars are the Google calendar names to read. Empty means the
	// primary calendar.
	Calendars []string `yaml:"calendars"`

	// ICS lists additional ICS subscription sources.
	ICS []ICSConfig `yaml:"ics"`

	// Refresh is an optional cron expression; when set the tool keeps
	// running and regenerates the files on that schedule.
	Refresh string `yaml:"refresh"`

	// Months is the number of months to emit, starting at the current one.
	Months int `yaml:"months"`
}

func Default() *Config {
	return &Config{
		OutputDir:   ".",
		Credentials: "credentials.json",
		Token:       "token.json",
		Timezone:    "America/Los_Angeles",
		Months:      3,
	}
}

// Normalize fills zero values with defaults so a partially filled config
// file still behaves.
func (c *Config) Normalize() {
	d := Default()
	if c.OutputDir == "" {
		c.OutputDir = d.OutputDir
	}
	if c.Credentials == "" {
		c.Credentials = d.Credentials
	}
	if c.Token == "" {
		c.Token = d.Token
	}
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
	if c.Months <= 0 {
		c.Months = d.Months
	}
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Load reads the config file at path if it exists and applies the
// environment on top. An empty path means "no config file". A path that was
// explicitly requested but cannot be read or parsed is an error; the caller
// decides whether the path was explicit.
func Load(path string, explicit bool) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist) && !explicit:
			// Default location, nothing there: run on defaults.
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if names := CalendarsFromEnv(); names != nil {
		cfg.Calendars = names
	}

	cfg.Normalize()
	return cfg, nil
}

// CalendarsFromEnv parses CalendarsEnv into calendar names. Returns nil when
// the variable is absent or yields no names, which keeps the config file (or
// primary-calendar) selection in effect.
func CalendarsFromEnv() []string {
	raw := strings.TrimSpace(os.Getenv(CalendarsEnv))
	if raw == "" {
		return nil
	}
	var names []string
	for _, part := range strings.Split(raw, "|") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}
