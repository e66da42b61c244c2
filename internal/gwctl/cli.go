package gwctl

import (
	"fmt"
	"os"
)

// Config carries the persistent CLI settings.
type Config struct {
	Server string
	LogLvl string
}

// DefaultConfig resolves defaults from the environment.
func DefaultConfig() *Config {
	return &Config{
		Server: envStr("MODELGW_SERVER", "http://127.0.0.1:8080"),
		LogLvl: envStr("GWCTL_LOG_LEVEL", "info"),
	}
}

// MainWithArgs is a testable variant of Main that accepts args explicitly.
// It returns an exit code (0 for success, non-zero on error).
func MainWithArgs(args []string) int {
	cfg := DefaultConfig()
	root := buildRootCmdWith(cfg)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	return 0
}

// Main returns an exit code (0 for success, non-zero on error) for use by cmd/gwctl.
func Main() int { return MainWithArgs(os.Args[1:]) }
