// Command optionslab prices options and analyzes multi-leg strategies.
package main

import (
	"os"
	"strings"

	"github.com/joho/godotenv"

	"options-lab/internal/cli"
	"options-lab/internal/config"
	"options-lab/internal/logging"
)

func main() {
	// A missing .env is fine; values then come from the environment.
	_ = godotenv.Load()

	configDir := configDirFromArgs(os.Args[1:])
	if configDir == "" {
		configDir = config.DefaultConfigDir()
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		bootLogger := logging.NewLogger()
		bootLogger.Error().Err(err).Str("config_dir", configDir).Msg("Failed to load configuration")
		os.Exit(1)
	}

	logger := logging.NewLoggerWithConfig(logging.FromConfig(cfg.Logging))
	logger.Debug().Str("config_dir", configDir).Msg("Configuration loaded")

	os.Exit(cli.Execute(cli.NewApp(cfg, configDir, logger), os.Args[1:]))
}

// configDirFromArgs finds --config before cobra parses flags, since the
// configuration is needed to build the command tree.
func configDirFromArgs(args []string) string {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		if v, ok := strings.CutPrefix(arg, "--config="); ok {
			return v
		}
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}
