package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/checkpoint/internal/config"
	"github.com/ShayCichocki/checkpoint/internal/store"
)

var (
	historyLimit int
	historyPurge time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show past verification runs",
	Long: `List recent verification runs, or show the full stored result for a
single run by ID.

History is stored at ~/.local/share/checkpoint/checkpoint.db`,
	Run: func(cmd *cobra.Command, args []string) {
		if !cmd.Flags().Changed("limit") {
			if cfg, err := config.Load(); err == nil {
				historyLimit = cfg.Verify.HistoryLimit
			}
		}

		db, err := store.OpenDefault()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening history db: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.Migrate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error migrating history db: %v\n", err)
			os.Exit(1)
		}

		if historyPurge > 0 {
			deleted, err := db.PurgeOldRuns(historyPurge)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error purging runs: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("purged %d run(s)\n", deleted)
			return
		}

		if len(args) == 1 {
			showRun(db, args[0])
			return
		}

		listRuns(db)
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to list")
	historyCmd.Flags().DurationVar(&historyPurge, "purge-older-than", 0, "Delete runs older than this duration (e.g. 720h)")
}

func listRuns(db *store.DB) {
	runs, err := db.ListRuns(historyLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing runs: %v\n", err)
		os.Exit(1)
	}

	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return
	}

	for _, run := range runs {
		verdict := color.GreenString("PASS")
		if !run.Passed {
			verdict = color.RedString("FAIL")
		}
		title := run.TaskTitle
		if title == "" {
			title = truncate(run.TaskDescription, 40)
		}
		capped := ""
		if run.Capped {
			capped = " (capped)"
		}
		fmt.Printf("%s  %s  %s  %s%s\n",
			run.CreatedAt.Local().Format("2006-01-02 15:04"),
			verdict, run.ID[:8], title, capped)
	}
}

func showRun(db *store.DB, id string) {
	// Allow short ID prefixes from the list view
	run, err := findRun(db, id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("id:         %s\n", run.ID)
	fmt.Printf("created:    %s\n", run.CreatedAt.Local().Format(time.RFC1123))
	fmt.Printf("repo:       %s\n", run.RepoURL)
	fmt.Printf("commits:    %s..%s\n", run.BaseCommit, run.HeadCommit)
	fmt.Printf("task:       %s\n", run.TaskDescription)
	fmt.Printf("iterations: %d  tokens: %d in / %d out\n", run.Iterations, run.TokensIn, run.TokensOut)
	fmt.Println()

	data, err := json.MarshalIndent(run.Result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

func findRun(db *store.DB, id string) (*store.Run, error) {
	run, err := db.GetRun(id)
	if err == nil {
		return run, nil
	}

	runs, listErr := db.ListRuns(1000)
	if listErr != nil {
		return nil, err
	}
	for _, candidate := range runs {
		if len(id) >= 4 && len(candidate.ID) >= len(id) && candidate.ID[:len(id)] == id {
			return candidate, nil
		}
	}
	return nil, err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
