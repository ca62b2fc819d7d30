package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// GitHubClient posts scan reports as pull request comments.
type GitHubClient struct {
	HTTPClient *http.Client
	APIBase    string
	Token      string
}

// NewGitHubClient creates a client authenticated with the given token.
func NewGitHubClient(token string) *GitHubClient {
	return &GitHubClient{
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		APIBase:    "https://api.github.com",
		Token:      token,
	}
}

// CommentOnPR posts a markdown comment on a pull request. PR comments go
// through the issues API.
func (g *GitHubClient) CommentOnPR(ctx context.Context, owner, repo string, prNumber int, body string) error {
	if g.Token == "" {
		return fmt.Errorf("github token is not configured")
	}

	url := fmt.Sprintf("%s/repos/%s/%s/issues/%d/comments", g.APIBase, owner, repo, prNumber)
	payload, err := json.Marshal(map[string]string{"body": body})
	if err != nil {
		return fmt.Errorf("failed to marshal comment: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")

	client := g.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post PR comment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("github comment failed with status: %s", resp.Status)
	}

	return nil
}
