package storage

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Config is parsed from storage uri, `memory://` or `file:///<path>`.
type Config struct {
	Scheme string
	Path   string
	URI    *url.URL
}

func NewConfigFromString(s string) (*Config, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid storage uri, %q", s)
	}

	return NewConfig(u)
}

func NewConfig(u *url.URL) (*Config, error) {
	c := &Config{Scheme: strings.ToLower(u.Scheme), URI: u}

	switch c.Scheme {
	case "memory":
	case "file":
		if len(u.Path) < 1 {
			return nil, errors.Errorf("empty path in storage uri, %q", u.String())
		}
		path, err := filepath.Abs(u.Path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to get absolute path")
		}
		c.Path = path
	default:
		return nil, errors.Errorf("unsupported storage scheme, %q", u.Scheme)
	}

	return c, nil
}

func (c Config) String() string {
	if c.Scheme == "memory" {
		return "memory://"
	}

	return "file://" + c.Path
}
