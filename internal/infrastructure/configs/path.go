package configs

import (
	"flag"
	"os"

	"github.com/shopmesh/relay/internal/infrastructure/env"
)

// DetermineConfigPath resolves the config file location from the --config
// flag, the RELAY_CONFIG env var, or a set of conventional candidates. An
// empty return means "no file, defaults only", which is a valid setup.
func DetermineConfigPath() string {
	var configPath string

	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	if configPath == "" {
		configPath = env.GetString("RELAY_CONFIG", "")
	}

	if configPath == "" {
		candidates := []string{
			"./config.yaml",
			"./config.yml",
			"/etc/shopmesh/relay.yaml",
			"/app/config.yaml", // common in Docker
		}

		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				configPath = p
				break
			}
		}
	}

	return configPath
}
