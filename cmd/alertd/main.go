package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Priyanshu525/trading-alert/internal/cli"
	"github.com/Priyanshu525/trading-alert/internal/config"
	"github.com/Priyanshu525/trading-alert/internal/logging"
)

func main() {
	// Local .env, if present, feeds the env overrides applied during
	// config.Load.
	_ = godotenv.Load()

	cfg, err := config.Load(configDirFromArgs(os.Args))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger()

	rootCmd := cli.NewRootCmd(cfg, logger)
	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

// configDirFromArgs pre-scans the arguments for the --config flag so the
// config directory is known before cobra parses anything. Both the
// space-separated and the = form are accepted; like cobra, the last
// occurrence wins.
func configDirFromArgs(args []string) string {
	dir := ""
	for i, arg := range args {
		switch {
		case arg == "--config" && i+1 < len(args):
			dir = args[i+1]
		case strings.HasPrefix(arg, "--config="):
			dir = strings.TrimPrefix(arg, "--config=")
		}
	}
	return dir
}
