package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

var rootCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "AI-powered task verification for GitHub repositories",
	Long: `Checkpoint verifies whether the code changes between two commits
fulfill a task description.

A strict-reviewer model inspects the diff through a fixed set of GitHub
evidence tools (compare commits, fetch file contents, list files), then
returns a structured pass/fail verdict with per-requirement feedback,
hints, and issues found.

Every run produces a complete result: failures in the model, the GitHub
API, or the response format degrade to a failed verdict with explanatory
feedback, never a crash.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogging routes the standard logger to a rotating file so diagnostic
// output never interleaves with command output or the TUI.
func setupLogging() {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return
		}
		dataDir = filepath.Join(home, ".local", "share")
	}

	log.SetOutput(&lumberjack.Logger{
		Filename:   filepath.Join(dataDir, "checkpoint", "checkpoint.log"),
		MaxSize:    15, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	})
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(stopCmd)
}
