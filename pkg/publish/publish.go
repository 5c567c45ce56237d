// Package publish pushes updated board datasets to where the site serves
// them from. The data files live in a git repository; publishing a run is
// committing the changed files and pushing.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Publisher ships a set of changed data files.
type Publisher interface {
	Publish(ctx context.Context, message string, paths []string) error
}

// Git commits and pushes data files inside an existing checkout.
type Git struct {
	repoDir string
	remote  string
	branch  string
}

// NewGit creates a publisher over the checkout at repoDir. Empty remote
// and branch default to origin and main.
func NewGit(repoDir, remote, branch string) *Git {
	if remote == "" {
		remote = "origin"
	}
	if branch == "" {
		branch = "main"
	}
	return &Git{repoDir: repoDir, remote: remote, branch: branch}
}

func (g *Git) Publish(ctx context.Context, message string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	if err := g.run(ctx, append([]string{"add", "--"}, paths...)...); err != nil {
		return fmt.Errorf("git add: %w", err)
	}

	if err := g.run(ctx, "commit", "-m", message); err != nil {
		// A no-op run produces identical files; that is not a failure.
		if strings.Contains(err.Error(), "nothing to commit") {
			return nil
		}
		return fmt.Errorf("git commit: %w", err)
	}

	if err := g.run(ctx, "push", g.remote, g.branch); err != nil {
		return fmt.Errorf("git push: %w", err)
	}
	return nil
}

func (g *Git) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.repoDir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%v: %s", err, strings.TrimSpace(out.String()))
	}
	return nil
}

// Nop discards publishes. Used for dry runs and local setups.
type Nop struct{}

func (Nop) Publish(context.Context, string, []string) error { return nil }
