package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/go-github/v81/github"
)

// DefaultMaxRepos caps discovery when no limit is configured.
const DefaultMaxRepos = 100

// DiscoverOptions filters organization repositories.
type DiscoverOptions struct {
	IncludeForks    bool
	IncludeArchived bool
	MaxRepos        int
}

// OrgCloneURLs lists the HTTPS clone URLs of org's repositories in the
// order the API returns them. Forks and archived repositories are skipped
// unless included.
func (c *Client) OrgCloneURLs(ctx context.Context, org string, opts DiscoverOptions) ([]string, error) {
	if org == "" {
		return nil, errors.New("organization name is required")
	}
	limit := opts.MaxRepos
	if limit <= 0 {
		limit = DefaultMaxRepos
	}

	urls := make([]string, 0, min(limit, 100))
	listOpts := &github.RepositoryListByOrgOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}
	for {
		repos, resp, err := c.Client.Repositories.ListByOrg(ctx, org, listOpts)
		if err != nil {
			return nil, fmt.Errorf("list repositories of %s: %w", org, err)
		}
		for _, r := range repos {
			if len(urls) >= limit {
				break
			}
			if r.GetFork() && !opts.IncludeForks {
				slog.Debug("skipping fork", "repo", r.GetFullName())
				continue
			}
			if r.GetArchived() && !opts.IncludeArchived {
				slog.Debug("skipping archived repository", "repo", r.GetFullName())
				continue
			}
			if u := r.GetCloneURL(); u != "" {
				urls = append(urls, u)
			}
		}
		if len(urls) >= limit || resp.NextPage == 0 {
			break
		}
		listOpts.Page = resp.NextPage
	}

	slog.Info("discovered repositories", "org", org, "count", len(urls))
	return urls, nil
}
