package llm

import (
	"strings"
	"time"

	"policyxray/internal/platform/config"
)

// OptionsFrom reads backend settings under c's prefix:
// KIND, URL, MODEL, TIMEOUT and API_KEY.
// Without API_KEY the vendor variable for the kind is used (BACKBOARD_API_KEY, OPENAI_API_KEY).
// MaxRetries stays 0: each model-path chunk gets exactly one call
func OptionsFrom(c config.Conf, defKind string) Options {
	o := Options{
		Kind:       strings.ToLower(c.MayString("KIND", defKind)),
		BaseURL:    c.MayURL("URL", ""),
		Model:      c.MayString("MODEL", ""),
		APIKey:     c.MayString("API_KEY", ""),
		Timeout:    c.MayDuration("TIMEOUT", 0),
	}
	if o.APIKey == "" {
		root := config.New()
		switch o.Kind {
		case KindBackboard:
			o.APIKey = root.MayString("BACKBOARD_API_KEY", "")
		case KindOpenAI:
			o.APIKey = root.MayString("OPENAI_API_KEY", "")
		}
	}
	if o.Timeout < 0 {
		o.Timeout = 0
	}
	return o
}

// EnhanceOptionsFrom is OptionsFrom plus RETRIES. Only the enhancement backend may retry
func EnhanceOptionsFrom(c config.Conf, defKind string) Options {
	o := OptionsFrom(c, defKind)
	o.MaxRetries = max(0, c.MayInt("RETRIES", 0))
	return o
}

// FromConfig is OptionsFrom followed by New
func FromConfig(c config.Conf, defKind string) (Backend, error) {
	return New(OptionsFrom(c, defKind))
}

// TimeoutOr returns o.Timeout or def when unset
func (o Options) TimeoutOr(def time.Duration) time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return def
}
