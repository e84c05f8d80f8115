package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v39/github"
	"github.com/reillywatson/doratracker/internal/deploy"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	DefaultBaseURL = "https://api.github.com/"

	mediaTypeGitHubJSON = "application/vnd.github+json"
	lookupTimeout       = 10 * time.Second
)

// GitHubClient resolves commit timestamps through the GitHub REST API
type GitHubClient struct {
	client  *github.Client
	logger  *zap.SugaredLogger
	timeout time.Duration
}

var _ deploy.CommitResolver = (*GitHubClient)(nil)

// NewGitHubClient creates a client that sends requests through base (http.DefaultClient if nil).
// When token is non-empty every request carries "Authorization: Bearer <token>".
func NewGitHubClient(base *http.Client, token string, logger *zap.SugaredLogger) *GitHubClient {
	if base == nil {
		base = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	httpClient := base
	if token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		httpClient = oauth2.NewClient(ctx, ts)
	}

	return &GitHubClient{
		client:  github.NewClient(httpClient),
		logger:  logger,
		timeout: lookupTimeout,
	}
}

// SetBaseURL points the client at a different API root, e.g. a GitHub Enterprise host
func (c *GitHubClient) SetBaseURL(rawURL string) error {
	if !strings.HasSuffix(rawURL, "/") {
		rawURL += "/"
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid GitHub API URL %q: %w", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid GitHub API URL %q: scheme and host are required", rawURL)
	}
	c.client.BaseURL = u
	return nil
}

// CommitTimestamp returns the committer date of repo@sha, or "" if it cannot be fetched.
// It makes no request when repo or sha is empty, and never waits longer than the lookup timeout.
func (c *GitHubClient) CommitTimestamp(ctx context.Context, repo, sha string) string {
	if repo == "" || sha == "" {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	date, err := c.FetchCommitDate(ctx, repo, sha)
	if err != nil {
		c.logger.Warnw("Error fetching commit timestamp", "repo", repo, "sha", sha, "error", err)
		return ""
	}
	return date
}

// FetchCommitDate fetches a single commit and returns its commit.committer.date.
// A response without that field yields "" and no error.
func (c *GitHubClient) FetchCommitDate(ctx context.Context, repo, sha string) (string, error) {
	u := fmt.Sprintf("repos/%v/commits/%v", repo, sha)
	req, err := c.client.NewRequest("GET", u, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", mediaTypeGitHubJSON)

	var commit commitResponse
	if _, err := c.client.Do(ctx, req, &commit); err != nil {
		return "", fmt.Errorf("failed to fetch commit %s: %w", sha, err)
	}

	date := commit.Commit.Committer.Date
	if date == "" {
		return "", nil
	}
	if _, err := deploy.ParseTimestamp(date); err != nil {
		return "", fmt.Errorf("commit %s: %w", sha, err)
	}
	return date, nil
}
