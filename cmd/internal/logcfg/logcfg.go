package logcfg

import (
	"os"

	logs "github.com/danmuck/smplog"
)

const envConfigPath = "SMPLOG_CONFIG"

// Load returns logging configuration from the first readable source: the
// explicit path, $SMPLOG_CONFIG, then the local candidates. Defaults apply
// when none can be read.
func Load(explicit ...string) logs.Config {
	candidates := append([]string{}, explicit...)
	if path := os.Getenv(envConfigPath); path != "" {
		candidates = append(candidates, path)
	}
	candidates = append(candidates,
		"./smplog.config.toml",
		"./local/smplog.config.toml",
	)

	for _, path := range candidates {
		if path == "" {
			continue
		}
		if cfg, err := logs.ConfigFromFile(path); err == nil {
			return cfg
		}
	}

	return logs.DefaultConfig()
}
