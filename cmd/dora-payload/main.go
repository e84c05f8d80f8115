package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/reillywatson/doratracker/internal/config"
	"github.com/reillywatson/doratracker/internal/deploy"
	"github.com/reillywatson/doratracker/internal/github"
)

// requiredFlags must be present on the command line; an explicitly empty value is allowed
var requiredFlags = []string{
	"environment", "is-production", "status", "repo", "run-id", "run-attempt", "run-number",
	"workflow", "job", "actor", "ref-name", "sha", "run-started-at", "completed-at", "run-url",
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run builds the DORA payload for one deployment job and prints it to stdout.
// It returns 2 for usage errors and 1 if the payload cannot be written. Enrichment failures are not errors.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("dora-payload", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// Define command line flags
	var in deploy.Inputs
	fs.StringVar(&in.Environment, "environment", "", "Deployment environment name")
	fs.StringVar(&in.IsProduction, "is-production", "", "Whether the environment is production (1/true/yes/y)")
	fs.StringVar(&in.Status, "status", "", "Deployment job status; anything but \"success\" is a change failure candidate")
	fs.StringVar(&in.Repo, "repo", "", "Repository in owner/name form")
	fs.StringVar(&in.RunID, "run-id", "", "Workflow run ID")
	fs.StringVar(&in.RunAttempt, "run-attempt", "", "Workflow run attempt")
	fs.StringVar(&in.RunNumber, "run-number", "", "Workflow run number")
	fs.StringVar(&in.Workflow, "workflow", "", "Workflow name")
	fs.StringVar(&in.Job, "job", "", "Job name")
	fs.StringVar(&in.Actor, "actor", "", "User that triggered the run")
	fs.StringVar(&in.RefName, "ref-name", "", "Branch or tag that was deployed")
	fs.StringVar(&in.SHA, "sha", "", "Deployed commit SHA")
	fs.StringVar(&in.RunStartedAt, "run-started-at", "", "Run start time (ISO-8601)")
	fs.StringVar(&in.CompletedAt, "completed-at", "", "Deployment completion time (ISO-8601)")
	fs.StringVar(&in.RunURL, "run-url", "", "URL of the workflow run")
	githubToken := fs.String("github-token", "", "GitHub token for the commit lookup (optional)")
	githubAPIURL := fs.String("github-api-url", "", "GitHub API base URL (defaults to https://api.github.com/)")
	configPath := fs.String("config", "", "YAML settings file (optional)")
	logLevel := fs.String("log-level", "", "Diagnostic log level on stderr: debug, info, warn, error")

	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: dora-payload [flags]")
		fmt.Fprintln(stderr, "Flags:")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nRequired:\n  --%s\n", strings.Join(requiredFlags, "\n  --"))
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unrecognized arguments: %s\n", strings.Join(fs.Args(), " "))
		fs.Usage()
		return 2
	}

	// Validate required parameters
	seen := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { seen[f.Name] = true })
	var missing []string
	for _, name := range requiredFlags {
		if !seen[name] {
			missing = append(missing, "--"+name)
		}
	}
	if len(missing) > 0 {
		fmt.Fprintf(stderr, "the following arguments are required: %s\n", strings.Join(missing, ", "))
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 2
	}
	if *githubAPIURL != "" {
		cfg.GitHub.APIURL = *githubAPIURL
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	logger := config.NewLogger(cfg.Logging, stderr)
	defer logger.Sync()

	client := github.NewGitHubClient(nil, *githubToken, logger)
	if err := client.SetBaseURL(cfg.GitHub.APIURL); err != nil {
		fmt.Fprintf(stderr, "Error configuring GitHub client: %v\n", err)
		return 2
	}

	event := deploy.BuildEvent(context.Background(), client, in, logger)

	if err := deploy.WritePayload(stdout, event); err != nil {
		logger.Errorw("Error writing payload", "error", err)
		return 1
	}
	return 0
}
