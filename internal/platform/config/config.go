// Package config reads service settings from prefixed environment variables
package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"policyxray/internal/platform/logger"
)

// Conf is a prefixed view over the environment. The zero value reads unprefixed names
type Conf struct{ prefix string }

// New returns an unprefixed Conf
func New() Conf { return Conf{} }

// Prefix returns a child view, e.g. New().Prefix("XRAY_").Prefix("MODEL_")
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

// Key returns the full variable name for k
func (c Conf) Key(k string) string { return c.prefix + k }

func (c Conf) lookup(k string) string { return strings.TrimSpace(os.Getenv(c.Key(k))) }

var errNotHTTP = errors.New("not an absolute http(s) url")

// may parses the value under k, falling back to def when unset or unparsable
func may[T any](c Conf, k string, def T, parse func(string) (T, error)) T {
	s := c.lookup(k)
	if s == "" {
		return def
	}
	v, err := parse(s)
	if err != nil {
		logger.Named("config").Warn().
			Str("key", c.Key(k)).
			Str("value", s).
			Interface("default", def).
			Msg("invalid value, using default")
		return def
	}
	return v
}

// MayString returns the trimmed value or def
func (c Conf) MayString(k, def string) string {
	return may(c, k, def, func(s string) (string, error) { return s, nil })
}

// MayInt returns the value as an int or def
func (c Conf) MayInt(k string, def int) int {
	return may(c, k, def, strconv.Atoi)
}

// MayBool returns the value as a bool or def. Accepts what strconv.ParseBool accepts
func (c Conf) MayBool(k string, def bool) bool {
	return may(c, k, def, strconv.ParseBool)
}

// MayDuration returns the value as a duration (250ms, 2m) or def
func (c Conf) MayDuration(k string, def time.Duration) time.Duration {
	return may(c, k, def, time.ParseDuration)
}

// MayURL returns the value when it is an absolute http(s) URL, else def
func (c Conf) MayURL(k, def string) string {
	return may(c, k, def, func(s string) (string, error) {
		u, err := url.Parse(s)
		if err != nil {
			return "", err
		}
		if !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return "", errNotHTTP
		}
		return strings.TrimRight(s, "/"), nil
	})
}

// MayCSV splits a comma separated value, dropping blanks. def when nothing remains
func (c Conf) MayCSV(k string, def []string) []string {
	var out []string
	for _, p := range strings.Split(c.lookup(k), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
