package connector

import (
	"net"
	"net/url"
	"strconv"
)

// connectionURL renders cfg as a URL-style DSN. Params with empty values are
// skipped; query keys come out sorted.
func connectionURL(scheme string, cfg Config) *url.URL {
	u := &url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
	}

	switch {
	case cfg.Username != "" && cfg.Password != "":
		u.User = url.UserPassword(cfg.Username, cfg.Password)
	case cfg.Username != "":
		u.User = url.User(cfg.Username)
	}

	if cfg.Database != "" {
		u.Path = "/" + cfg.Database
	}

	q := url.Values{}
	for k, v := range cfg.Params {
		if v != "" {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u
}
