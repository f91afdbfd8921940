// Package git wraps the git binary for local, per-mutation versioning of a
// notes directory. It never talks to a remote.
package git

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ErrLockTimeout is returned when the repository lock cannot be acquired in time.
var ErrLockTimeout = errors.New("timed out waiting for git lock")

// Client wraps git command execution with a file-based lock for process safety.
type Client struct {
	WorkDir     string
	Logger      *slog.Logger
	LockTimeout time.Duration
	lockPath    string
}

// NewClient creates a git client for workDir. lockPath is relative to workDir.
func NewClient(workDir, lockPath string, logger *slog.Logger) *Client {
	if lockPath == "" {
		lockPath = ".swiftnote.lock"
	}
	return &Client{
		WorkDir:     workDir,
		Logger:      logger,
		LockTimeout: 10 * time.Second,
		lockPath:    lockPath,
	}
}

// IsInstalled reports whether git is on PATH.
func IsInstalled() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// Lock acquires the file-based lock, polling until LockTimeout elapses.
func (c *Client) Lock() (func(), error) {
	fullLockPath := filepath.Join(c.WorkDir, c.lockPath)
	if err := os.MkdirAll(filepath.Dir(fullLockPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to prepare lock dir: %w", err)
	}

	deadline := time.Now().Add(c.LockTimeout)
	for {
		f, err := os.OpenFile(fullLockPath, os.O_CREATE|os.O_EXCL, 0666)
		if err == nil {
			f.Close()
			return func() {
				os.Remove(fullLockPath)
			}, nil
		}

		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to acquire lock: %w", err)
		}
		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// Run executes a raw git command in the working directory.
// It does not take the lock; callers serialize through Lock.
func (c *Client) Run(args ...string) (string, error) {
	if c.Logger != nil {
		c.Logger.Debug("executing git", "args", args, "dir", c.WorkDir)
	}

	cmd := exec.Command("git", args...)
	cmd.Dir = c.WorkDir
	cmd.Env = append(os.Environ(), c.identityEnv()...)

	out, err := cmd.CombinedOutput()
	output := string(out)

	if err != nil {
		return output, fmt.Errorf("git %s failed: %w\nOutput: %s", args[0], err, output)
	}

	return strings.TrimSpace(output), nil
}

// identityEnv supplies a committer identity when none is configured, so
// commits work on fresh machines and CI.
func (c *Client) identityEnv() []string {
	if os.Getenv("GIT_AUTHOR_NAME") != "" {
		return nil
	}
	cmd := exec.Command("git", "config", "user.email")
	cmd.Dir = c.WorkDir
	if out, err := cmd.Output(); err == nil && strings.TrimSpace(string(out)) != "" {
		return nil
	}
	return []string{
		"GIT_AUTHOR_NAME=swiftnote",
		"GIT_AUTHOR_EMAIL=swiftnote@localhost",
		"GIT_COMMITTER_NAME=swiftnote",
		"GIT_COMMITTER_EMAIL=swiftnote@localhost",
	}
}

// IsRepo reports whether WorkDir is inside a git work tree.
func (c *Client) IsRepo() bool {
	out, err := c.Run("rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

// Init initializes a new git repository. Re-running it is harmless.
func (c *Client) Init() error {
	_, err := c.Run("init")
	return err
}

// Add adds files to the stage.
func (c *Client) Add(files ...string) error {
	if len(files) == 0 {
		return nil
	}
	args := append([]string{"add"}, files...)
	_, err := c.Run(args...)
	return err
}

// Rm removes files from the working tree and from the index.
func (c *Client) Rm(files ...string) error {
	if len(files) == 0 {
		return nil
	}
	args := append([]string{"rm", "-f", "--ignore-unmatch"}, files...)
	_, err := c.Run(args...)
	return err
}

// Commit records staged changes. An empty stage is not an error.
func (c *Client) Commit(msg string) error {
	if staged, err := c.Run("diff", "--cached", "--name-only"); err == nil && staged == "" {
		return nil
	}
	_, err := c.Run("commit", "-m", msg)
	return err
}

// Log returns the last n commit subjects, newest first.
func (c *Client) Log(n int) ([]string, error) {
	out, err := c.Run("log", fmt.Sprintf("-%d", n), "--pretty=%s")
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}
