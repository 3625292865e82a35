package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ShayCichocki/checkpoint/internal/api"
	"github.com/ShayCichocki/checkpoint/internal/config"
	"github.com/ShayCichocki/checkpoint/internal/evidence"
	"github.com/ShayCichocki/checkpoint/internal/store"
	"github.com/ShayCichocki/checkpoint/internal/tui"
	"github.com/ShayCichocki/checkpoint/internal/verify"
)

var (
	verifyRepoURL    string
	verifyBase       string
	verifyHead       string
	verifyTask       string
	verifyTitle      string
	verifyType       string
	verifyMaxIter    int
	verifyWatch      bool
	verifyOutput     string
	verifyNoSave     bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify that commits fulfill a task description",
	Long: `Run a verification: the reviewer model examines the changes between
the base and head commits through GitHub evidence tools and returns a
structured verdict.

The command exits 0 when the task passed and 1 otherwise. Use --output
json or yaml for machine-readable results, or --watch for a live view.`,
	Example: `  checkpoint verify \
    --repo https://github.com/student/notebook \
    --base abc123 --head def456 \
    --task "Add input validation to the login endpoint"`,
	Run: func(cmd *cobra.Command, args []string) {
		if verifyRepoURL == "" || verifyBase == "" || verifyHead == "" || verifyTask == "" {
			fmt.Fprintln(os.Stderr, "Error: --repo, --base, --head, and --task are required")
			os.Exit(1)
		}

		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		outcome := runVerification(cfg)

		switch verifyOutput {
		case "json":
			printJSON(outcome.Result)
		case "yaml":
			printYAML(outcome.Result)
		default:
			printResult(outcome)
		}

		if !verifyNoSave {
			saveRun(outcome)
		}

		if !outcome.Result.Passed {
			os.Exit(1)
		}
	},
}

func init() {
	verifyCmd.Flags().StringVar(&verifyRepoURL, "repo", "", "GitHub repository URL")
	verifyCmd.Flags().StringVar(&verifyBase, "base", "", "Base commit SHA")
	verifyCmd.Flags().StringVar(&verifyHead, "head", "", "Head commit SHA")
	verifyCmd.Flags().StringVar(&verifyTask, "task", "", "Task description to verify against")
	verifyCmd.Flags().StringVar(&verifyTitle, "title", "", "Optional task title")
	verifyCmd.Flags().StringVar(&verifyType, "type", "", "Optional task type")
	verifyCmd.Flags().IntVar(&verifyMaxIter, "max-iterations", 0, "Override the iteration cap")
	verifyCmd.Flags().BoolVar(&verifyWatch, "watch", false, "Show a live view of the run")
	verifyCmd.Flags().StringVarP(&verifyOutput, "output", "o", "text", "Output format: text, json, or yaml")
	verifyCmd.Flags().BoolVar(&verifyNoSave, "no-save", false, "Do not record the run in history")
}

func runVerification(cfg *config.Config) *verify.Outcome {
	apiKey, _ := config.GetAPIKey(cfg)

	client, err := api.NewClient(api.ClientConfig{
		Model:             anthropic.Model(cfg.Anthropic.Model),
		APIKey:            apiKey,
		UseAWSBedrock:     cfg.AWS.UseBedrock,
		AWSRegion:         cfg.AWS.Region,
		AWSProfile:        cfg.AWS.Profile,
		RequestsPerMinute: cfg.Verify.RateLimitPerMinute,
		RequestTimeout:    cfg.Timeouts.Model,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	dispatcher := evidence.NewDispatcher(evidence.NewClient(evidence.ClientConfig{
		Timeout: cfg.Timeouts.GitHub,
	}))

	maxIter := cfg.Verify.MaxIterations
	if verifyMaxIter > 0 {
		maxIter = verifyMaxIter
	}

	cwd, _ := os.Getwd()
	signals, err := verify.NewSignalManager(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: signal handling disabled: %v\n", err)
		signals = nil
	} else {
		defer signals.Close()
	}

	agent := verify.NewAgent(verify.AgentConfig{
		Model:         client,
		Tools:         dispatcher,
		Signals:       signals,
		MaxIterations: maxIter,
		Temperature:   cfg.Verify.Temperature,
		MaxTokens:     cfg.Verify.MaxTokens,
	})

	req := verify.Request{
		TaskDescription: verifyTask,
		BaseCommit:      verifyBase,
		HeadCommit:      verifyHead,
		RepoURL:         verifyRepoURL,
		GitHubToken:     config.GetGitHubToken(cfg),
	}
	if verifyTitle != "" || verifyType != "" {
		req.Context = &verify.Context{TaskTitle: verifyTitle, TaskType: verifyType}
	}

	if verifyWatch && verifyOutput == "text" {
		return runWithWatch(agent, req, maxIter)
	}

	return agent.VerifyTask(context.Background(), req)
}

// runWithWatch runs the agent behind a live TUI and returns the outcome.
func runWithWatch(agent *verify.Agent, req verify.Request, maxIter int) *verify.Outcome {
	program := tui.NewWatchProgram(verifyTitle, maxIter)

	agent.SetEventHandler(func(e verify.Event) {
		program.Send(tui.EventMsg{Event: e})
	})

	outcomeCh := make(chan *verify.Outcome, 1)
	go func() {
		outcome := agent.VerifyTask(context.Background(), req)
		outcomeCh <- outcome
		program.Send(tui.DoneMsg{Outcome: outcome})
	}()

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running display: %v\n", err)
	}

	return <-outcomeCh
}

func printResult(outcome *verify.Outcome) {
	result := outcome.Result

	fmt.Println()
	if result.Passed {
		color.Green("✔ PASSED")
	} else {
		color.Red("✘ FAILED")
	}
	if outcome.Capped {
		color.Yellow("  iteration cap reached; verdict based on partial analysis")
	}
	if outcome.Stopped {
		color.Yellow("  run stopped by signal")
	}

	fmt.Printf("\n%s\n", result.OverallFeedback)

	if len(result.RequirementsCheck) > 0 {
		fmt.Println()
		color.New(color.Bold).Println("Requirements:")
		for name, check := range result.RequirementsCheck {
			mark := color.GreenString("✔")
			if !check.Met {
				mark = color.RedString("✘")
			}
			fmt.Printf("  %s %s: %s\n", mark, name, check.Feedback)
		}
	}

	if len(result.IssuesFound) > 0 {
		fmt.Println()
		color.New(color.Bold).Println("Issues:")
		for _, issue := range result.IssuesFound {
			fmt.Printf("  - %s\n", issue)
		}
	}

	if len(result.Hints) > 0 && !result.Passed {
		fmt.Println()
		color.New(color.Bold).Println("Hints:")
		for _, hint := range result.Hints {
			fmt.Printf("  - %s\n", hint)
		}
	}

	if len(result.Suggestions) > 0 {
		fmt.Println()
		color.New(color.Bold).Println("Suggestions:")
		for _, s := range result.Suggestions {
			fmt.Printf("  - %s\n", s)
		}
	}

	fmt.Println()
	fmt.Printf("quality: %s  tests: %s  patterns: %s\n",
		result.CodeQuality, result.TestStatus, result.PatternMatchStatus)
	fmt.Printf("iterations: %d  tool calls: %d  tokens: %d in / %d out\n",
		outcome.Iterations, outcome.ToolCalls, outcome.TokensIn, outcome.TokensOut)
}

func printJSON(result *verify.VerificationResult) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

// printYAML marshals through JSON first so the YAML keys match the JSON
// field names.
func printYAML(result *verify.VerificationResult) {
	jsonData, err := json.Marshal(result)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding result: %v\n", err)
		os.Exit(1)
	}
	var generic map[string]any
	if err := json.Unmarshal(jsonData, &generic); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding result: %v\n", err)
		os.Exit(1)
	}
	data, err := yaml.Marshal(generic)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding result: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(string(data))
}

func saveRun(outcome *verify.Outcome) {
	db, err := store.OpenDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open history db: %v\n", err)
		return
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not migrate history db: %v\n", err)
		return
	}

	run := &store.Run{
		TaskTitle:       verifyTitle,
		TaskDescription: verifyTask,
		RepoURL:         verifyRepoURL,
		BaseCommit:      verifyBase,
		HeadCommit:      verifyHead,
		Passed:          outcome.Result.Passed,
		Capped:          outcome.Capped,
		Result:          outcome.Result,
		Iterations:      outcome.Iterations,
		TokensIn:        outcome.TokensIn,
		TokensOut:       outcome.TokensOut,
	}
	if err := db.SaveRun(run); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save run: %v\n", err)
		return
	}

	fmt.Printf("\nrun saved: %s\n", run.ID)
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Signal a running verification in this directory to stop",
	Run: func(cmd *cobra.Command, args []string) {
		cwd, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		sm, err := verify.NewSignalManager(cwd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer sm.Close()

		if err := sm.SendStop(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("stop signal sent")
	},
}
