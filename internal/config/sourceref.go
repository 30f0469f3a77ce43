package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// SourceRef resolves a configuration value from an inline literal, an
// environment variable, or a file (typically a mounted secret). At most one
// source may be set.
type SourceRef struct {
	Value string `yaml:"value"`
	Env   string `yaml:"env"`
	File  string `yaml:"file"`
}

var ErrAmbiguousSource = errors.New("more than one source set for value")

func (r SourceRef) Load() (string, error) {
	set := 0
	for _, s := range []string{r.Value, r.Env, r.File} {
		if s != "" {
			set++
		}
	}
	if set > 1 {
		return "", ErrAmbiguousSource
	}

	switch {
	case r.Value != "":
		return r.Value, nil
	case r.Env != "":
		return os.Getenv(r.Env), nil
	case r.File != "":
		raw, err := os.ReadFile(r.File)
		if err != nil {
			return "", fmt.Errorf("reading value from file %s: %w", r.File, err)
		}

		return strings.TrimSpace(string(raw)), nil
	default:
		return "", nil
	}
}

// IsZero reports whether no source is configured at all.
func (r SourceRef) IsZero() bool {
	return r.Value == "" && r.Env == "" && r.File == ""
}
