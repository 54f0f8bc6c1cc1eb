package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/chainscope/tokenscan/internal/token"
)

// GitHub - repository-activity provider. One repo lookup plus two
// fixed single-page listings (contributors, commits of the last 30
// days).
type GitHub struct {
	client *Client
	cfg    DataSource
	now    func() time.Time
}

// NewGitHub -
func NewGitHub(client *Client, cfg DataSource) *GitHub {
	return &GitHub{client: client, cfg: cfg, now: time.Now}
}

// Name -
func (g *GitHub) Name() string { return "github" }

type gitHubRepoResponse struct {
	StargazersCount int64      `json:"stargazers_count"`
	ForksCount      int64      `json:"forks_count"`
	PushedAt        *time.Time `json:"pushed_at"`
}

// Repository - resolves a repo URL to activity metrics
func (g *GitHub) Repository(ctx context.Context, repoURL string) (token.Development, Status, error) {
	fullName := repoFullName(repoURL)
	if fullName == "" {
		return token.Development{}, StatusNoData, nil
	}

	headers := map[string]string{}
	if g.cfg.Key != "" {
		headers["Authorization"] = "Bearer " + g.cfg.Key
	}

	var repo gitHubRepoResponse
	if err := g.client.GetJSON(ctx, fmt.Sprintf("%s/repos/%s", g.cfg.URL, fullName), headers, &repo); err != nil {
		if err == ErrNotFound {
			return token.Development{}, StatusNoData, nil
		}
		return token.Development{}, StatusError, err
	}

	development := token.Development{
		Stars:    &repo.StargazersCount,
		Forks:    &repo.ForksCount,
		LastPush: repo.PushedAt,
	}

	var contributors []struct {
		Login string `json:"login"`
	}
	if err := g.client.GetJSON(ctx, fmt.Sprintf("%s/repos/%s/contributors?per_page=100", g.cfg.URL, fullName), headers, &contributors); err == nil {
		count := int64(len(contributors))
		development.Contributors = &count
	}

	since := g.now().AddDate(0, 0, -30).Format(time.RFC3339)
	var commits []struct {
		SHA string `json:"sha"`
	}
	if err := g.client.GetJSON(ctx, fmt.Sprintf("%s/repos/%s/commits?since=%s&per_page=100", g.cfg.URL, fullName, url.QueryEscape(since)), headers, &commits); err == nil {
		count := int64(len(commits))
		development.Commits30d = &count
	}

	return development, StatusSuccess, nil
}

func repoFullName(repoURL string) string {
	parsed, err := url.Parse(repoURL)
	if err != nil {
		return ""
	}
	if !strings.HasSuffix(parsed.Host, "github.com") {
		return ""
	}

	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return ""
	}
	return parts[0] + "/" + strings.TrimSuffix(parts[1], ".git")
}
