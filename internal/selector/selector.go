// Package selector walks a working tree and picks the files to document.
package selector

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"
	"github.com/rs/zerolog/log"
	gitignore "github.com/sabhiram/go-gitignore"
	"github.com/seanblong/repodoc/pkg/models"
)

// Config controls which paths are pruned, summarized and listed.
type Config struct {
	// ExcludeDirs are directory base names pruned at any depth.
	ExcludeDirs []string
	// Extensions are the allowed source extensions, matched case-insensitively.
	Extensions []string
	// DependencyFiles are base names listed but never summarized.
	DependencyFiles []string
	// RespectGitignore also skips paths matched by the root .gitignore.
	RespectGitignore bool
}

// Selection holds the two ordered result lists of a scan.
type Selection struct {
	Sources      []models.CandidateFile
	Dependencies []models.CandidateFile
}

// FileSystemWalker defines the interface for walking directories
type FileSystemWalker interface {
	Walk(root string, options *godirwalk.Options) error
}

// DefaultFileSystemWalker implements FileSystemWalker using godirwalk
type DefaultFileSystemWalker struct{}

func (d *DefaultFileSystemWalker) Walk(root string, options *godirwalk.Options) error {
	return godirwalk.Walk(root, options)
}

// Selector scans a tree according to a Config.
type Selector struct {
	Walker FileSystemWalker

	excluded  map[string]bool
	exts      map[string]bool
	deps      map[string]bool
	useIgnore bool
}

func New(cfg Config) *Selector {
	return NewWithWalker(cfg, &DefaultFileSystemWalker{})
}

// NewWithWalker creates a Selector that walks with w.
func NewWithWalker(cfg Config, w FileSystemWalker) *Selector {
	s := &Selector{
		Walker:    w,
		excluded:  make(map[string]bool, len(cfg.ExcludeDirs)),
		exts:      make(map[string]bool, len(cfg.Extensions)),
		deps:      make(map[string]bool, len(cfg.DependencyFiles)),
		useIgnore: cfg.RespectGitignore,
	}
	for _, d := range cfg.ExcludeDirs {
		if d = strings.TrimSpace(d); d != "" {
			s.excluded[d] = true
		}
	}
	for _, e := range cfg.Extensions {
		if e = normalizeExt(e); e != "" {
			s.exts[e] = true
		}
	}
	for _, f := range cfg.DependencyFiles {
		if f = strings.TrimSpace(f); f != "" {
			s.deps[f] = true
		}
	}
	return s
}

// Select walks root and returns source and dependency files sorted by
// relative path. Excluded directories are never entered.
func (s *Selector) Select(root string) (Selection, error) {
	root = filepath.Clean(root)
	fi, err := os.Stat(root)
	if err != nil {
		return Selection{}, fmt.Errorf("scan %s: %w", root, err)
	}
	if !fi.IsDir() {
		return Selection{}, fmt.Errorf("scan %s: not a directory", root)
	}

	ignore := s.loadIgnore(root)

	var sel Selection
	err = s.Walker.Walk(root, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			rel, err := filepath.Rel(root, path)
			if err != nil || rel == "." {
				return nil
			}
			rel = filepath.ToSlash(rel)

			if de.IsDir() {
				if s.excluded[de.Name()] || ignore.matchDir(rel) {
					log.Debug().Str("path", rel).Msg("pruning directory")
					return godirwalk.SkipThis
				}
				return nil
			}
			// symlinks are neither followed nor selected
			if !de.IsRegular() {
				return nil
			}
			if ignore.matchFile(rel) {
				return nil
			}

			name := de.Name()
			ext := strings.ToLower(filepath.Ext(name))
			switch {
			case s.deps[name]:
				sel.Dependencies = append(sel.Dependencies, models.CandidateFile{Path: rel, Extension: ext, Kind: models.KindDependency})
			case s.exts[ext]:
				sel.Sources = append(sel.Sources, models.CandidateFile{Path: rel, Extension: ext, Kind: models.KindSource})
			}
			return nil
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			log.Warn().Err(err).Str("path", path).Msg("skipping unreadable path")
			return godirwalk.SkipNode
		},
	})
	if err != nil {
		return Selection{}, fmt.Errorf("scan %s: %w", root, err)
	}

	sortByPath(sel.Sources)
	sortByPath(sel.Dependencies)
	log.Info().Int("sources", len(sel.Sources)).Int("dependencies", len(sel.Dependencies)).Msg("scan complete")
	return sel, nil
}

func sortByPath(files []models.CandidateFile) {
	sort.SliceStable(files, func(i, j int) bool { return files[i].Path < files[j].Path })
}

func normalizeExt(e string) string {
	e = strings.ToLower(strings.TrimSpace(e))
	if e == "" {
		return ""
	}
	if !strings.HasPrefix(e, ".") {
		e = "." + e
	}
	return e
}

// ignoreMatcher wraps the root .gitignore; the zero value matches nothing.
type ignoreMatcher struct {
	gi *gitignore.GitIgnore
}

func (s *Selector) loadIgnore(root string) ignoreMatcher {
	if !s.useIgnore {
		return ignoreMatcher{}
	}
	path := filepath.Join(root, ".gitignore")
	gi, err := gitignore.CompileIgnoreFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("path", path).Msg("ignoring unreadable .gitignore")
		}
		return ignoreMatcher{}
	}
	return ignoreMatcher{gi: gi}
}

func (m ignoreMatcher) matchFile(rel string) bool {
	return m.gi != nil && m.gi.MatchesPath(rel)
}

func (m ignoreMatcher) matchDir(rel string) bool {
	return m.gi != nil && (m.gi.MatchesPath(rel) || m.gi.MatchesPath(rel+"/"))
}
