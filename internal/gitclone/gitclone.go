// Package gitclone fetches a remote repository into a fresh working directory.
package gitclone

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/rs/zerolog/log"
	giturls "github.com/whilp/git-urls"
)

var ErrEmptyURL = errors.New("repository URL is empty")

var supportedSchemes = map[string]bool{
	"https": true,
	"http":  true,
	"ssh":   true,
	"git":   true,
	"file":  true,
}

// Cloner performs full clones of a repository's default branch.
type Cloner struct {
	// Progress receives the transport's progress output; nil discards it.
	Progress io.Writer
}

func New(progress io.Writer) *Cloner {
	return &Cloner{Progress: progress}
}

// Validate rejects URLs that cannot name a clonable repository.
func Validate(rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ErrEmptyURL
	}
	u, err := giturls.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("malformed repository URL %q: %w", rawURL, err)
	}
	if !supportedSchemes[u.Scheme] {
		return fmt.Errorf("malformed repository URL %q: unsupported scheme %q", rawURL, u.Scheme)
	}
	if u.Scheme != "file" && u.Host == "" {
		return fmt.Errorf("malformed repository URL %q: missing host", rawURL)
	}
	if strings.Trim(u.Path, "/") == "" {
		return fmt.Errorf("malformed repository URL %q: missing repository path", rawURL)
	}
	return nil
}

// Clone removes dest if it exists and clones url into it. On failure nothing
// is left behind at dest.
func (c *Cloner) Clone(ctx context.Context, url, dest string) error {
	if err := Validate(url); err != nil {
		return err
	}
	if err := resetDest(dest); err != nil {
		return err
	}

	log.Info().Str("url", url).Str("dest", dest).Msg("cloning repository")
	_, err := git.PlainCloneContext(ctx, dest, false, &git.CloneOptions{
		URL:      strings.TrimSpace(url),
		Progress: c.Progress,
	})
	if err != nil {
		if rmErr := os.RemoveAll(dest); rmErr != nil {
			log.Warn().Err(rmErr).Str("dest", dest).Msg("failed to remove partial clone")
		}
		return fmt.Errorf("git clone %s: %w", url, err)
	}
	return nil
}

// resetDest deletes any previous content at dest. It refuses to delete the
// filesystem root, the user's home directory, or the working directory and
// any of its ancestors.
func resetDest(dest string) error {
	abs, err := filepath.Abs(dest)
	if err != nil {
		return fmt.Errorf("resolve clone directory %s: %w", dest, err)
	}
	if abs == filepath.Dir(abs) {
		return fmt.Errorf("refusing to use filesystem root %s as clone directory", abs)
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" && abs == filepath.Clean(home) {
		return fmt.Errorf("refusing to use the home directory %s as clone directory", abs)
	}
	if wd, err := os.Getwd(); err == nil && contains(abs, wd) {
		return fmt.Errorf("refusing to use %s as clone directory: it contains the working directory %s", abs, wd)
	}

	if _, err := os.Lstat(abs); err == nil {
		log.Info().Str("dest", abs).Msg("removing existing clone directory")
		if err := os.RemoveAll(abs); err != nil {
			return fmt.Errorf("remove existing clone directory %s: %w", abs, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat clone directory %s: %w", abs, err)
	}
	return nil
}

// contains reports whether path is dir itself or lies below it.
func contains(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
