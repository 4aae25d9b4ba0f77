// Package git shells out to the git CLI to answer the three questions the
// change oracle's git-diff branch needs: is this a repo, what changed, and
// what's the merge-base.
package git

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.nabs.build/nabs/internal/core/domain"
	"go.nabs.build/nabs/internal/core/ports"
	"go.trai.ch/zerr"
)

const commandTimeout = 30 * time.Second

var _ ports.GitClient = (*Client)(nil)

// Client implements ports.GitClient by invoking the git binary found on
// PATH. It carries no state.
type Client struct{}

// NewClient creates a new Client.
func NewClient() *Client {
	return &Client{}
}

// IsRepo reports whether dir is inside a git working tree.
func (c *Client) IsRepo(dir string) bool {
	_, err := c.run(dir, "rev-parse", "--show-toplevel")
	return err == nil
}

// ChangedFiles returns the dir-relative paths that differ between ref and
// the working tree, including untracked and staged files, scoped to dir via
// an explicit pathspec (spec.md §6's "diff --name-only -r <base> [--
// paths...]") so a change elsewhere in the repository does not mark dir's
// project as affected. exclusions (absolute nested project roots) are
// turned into negative pathspecs so a change under a nested project is
// attributed only to that innermost project, never to dir's as well.
func (c *Client) ChangedFiles(dir, ref string, exclusions []string) ([]string, error) {
	pathspec := append([]string{"."}, excludePathspecs(dir, exclusions)...)

	diffArgs := append([]string{"diff", "--name-only", "--relative", ref, "--"}, pathspec...)
	tracked, err := c.run(dir, diffArgs...)
	if err != nil {
		return nil, err
	}
	lsArgs := append([]string{"ls-files", "--others", "--exclude-standard", "--"}, pathspec...)
	untracked, err := c.run(dir, lsArgs...)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var out []string
	for _, line := range append(splitLines(tracked), splitLines(untracked)...) {
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out, nil
}

// MergeBase returns the merge-base commit of ref and HEAD.
func (c *Client) MergeBase(dir, ref string) (string, error) {
	out, err := c.run(dir, "merge-base", "HEAD", ref)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (c *Client) run(dir string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...) //nolint:gosec // fixed binary, caller-controlled args
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrGit.Error()), "args", strings.Join(args, " "), "stderr", strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// excludePathspecs turns each absolute exclusion path into a ":(exclude)"
// pathspec relative to dir, dropping any that resolve outside dir (".." or
// empty), which git's pathspec magic would otherwise reject.
func excludePathspecs(dir string, exclusions []string) []string {
	out := make([]string, 0, len(exclusions))
	for _, ex := range exclusions {
		rel, err := filepath.Rel(dir, ex)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		out = append(out, ":(exclude)"+filepath.ToSlash(rel))
	}
	return out
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
