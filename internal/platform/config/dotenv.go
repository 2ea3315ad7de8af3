package config

import (
	"errors"
	"io/fs"

	"policyxray/internal/platform/logger"

	"github.com/subosito/gotenv"
)

// LoadDotEnv loads each file into the process environment. Variables already set win.
// Missing files are skipped; it returns the files that were actually read
func LoadDotEnv(files ...string) []string {
	var loaded []string
	for _, f := range files {
		if f == "" {
			continue
		}
		if err := gotenv.Load(f); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				logger.Get().Warn().Err(err).Str("file", f).Msg("dotenv load failed")
			}
			continue
		}
		loaded = append(loaded, f)
	}
	return loaded
}
