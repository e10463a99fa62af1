// Package main provides the entry point for the cordium TUI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/heckerdev/cordium/internal/app"
)

var (
	// Version is set at build time via ldflags
	Version = "dev"
	// Commit is the git commit hash, set at build time via ldflags
	Commit = "unknown"
)

var (
	settingsPath string
	stateDir     string
	releaseURL   string
	checkTimeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:          "cordium",
	Short:        "cordium - a terminal client with JSON-driven settings",
	RunE:         runMain,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cordium %s (%s)\n", Version, Commit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	rootCmd.Flags().StringVar(&settingsPath, "settings", "", "override the built-in settings document (optional)")
	rootCmd.Flags().StringVar(&stateDir, "state-dir", "", "override the state directory (optional)")
	rootCmd.Flags().StringVar(&releaseURL, "release-url", "", "override the release endpoint (optional)")
	rootCmd.Flags().DurationVar(&checkTimeout, "check-timeout", 0, "timeout for one update check (optional)")
}

func runMain(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return app.Run(ctx, app.Options{
		SettingsPath: settingsPath,
		StateDir:     stateDir,
		ReleaseURL:   releaseURL,
		CheckTimeout: checkTimeout,
		Version:      Version,
		Commit:       Commit,
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
