package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/lumendocs/lumen/internal/entity"
)

// languageByExt routes file extensions to extraction languages.
var languageByExt = map[string]entity.Language{
	".py":   entity.LangPython,
	".js":   entity.LangJavaScript,
	".java": entity.LangJava,
	".sql":  entity.LangSQL,
}

// defaultIgnoreDirs are directory names skipped at any depth. They cover
// dependency trees, build output, and our own config directory.
var defaultIgnoreDirs = map[string]bool{
	"node_modules": true,
	"__pycache__":  true,
	".git":         true,
	"venv":         true,
	".venv":        true,
	"dist":         true,
	"build":        true,
	".lumen":       true,
}

// compiledPattern pairs a glob with its source text for error messages.
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Discovery walks a source tree and collects extraction Units.
type Discovery struct {
	root    string
	ignores []compiledPattern
}

// NewDiscovery compiles the ignore patterns and returns a walker rooted at
// root. Patterns use slash-separated glob syntax ("generated/**", "**/*.min.js").
func NewDiscovery(root string, ignorePatterns []string) (*Discovery, error) {
	d := &Discovery{root: root}
	for _, pattern := range ignorePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		d.ignores = append(d.ignores, compiledPattern{pattern: pattern, glob: g})
	}
	return d, nil
}

// Discover walks the root and returns one Unit per supported source file,
// in lexical path order. Files in ignored directories, files matching an
// ignore pattern, and files with unsupported extensions are skipped.
func (d *Discovery) Discover() ([]Unit, error) {
	info, err := os.Stat(d.root)
	if err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s is not a directory", d.root)
	}

	units := []Unit{}
	err = filepath.Walk(d.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(d.root, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)
		if relPath == "." {
			return nil
		}

		if info.IsDir() {
			if d.shouldIgnore(relPath, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.shouldIgnore(relPath, false) {
			return nil
		}

		language, ok := languageByExt[strings.ToLower(filepath.Ext(relPath))]
		if !ok {
			return nil
		}

		text, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", relPath, err)
		}

		units = append(units, Unit{
			Path:     relPath,
			Text:     string(text),
			Language: language,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return units, nil
}

// shouldIgnore reports whether a slash-separated relative path is excluded.
// Directories are also tested with a "/**" suffix so a pattern like
// "generated/**" prunes the whole subtree instead of testing every file.
func (d *Discovery) shouldIgnore(relPath string, isDir bool) bool {
	for _, segment := range strings.Split(relPath, "/") {
		if defaultIgnoreDirs[segment] {
			return true
		}
	}
	if d.matchesAnyIgnore(relPath) {
		return true
	}
	return isDir && d.matchesAnyIgnore(relPath+"/**")
}

// matchesAnyIgnore checks a path against every compiled ignore pattern.
// Root-level paths are also tested with any leading "**/" stripped, so
// "**/*.min.js" matches "bundle.min.js" as users expect.
func (d *Discovery) matchesAnyIgnore(path string) bool {
	for _, cp := range d.ignores {
		if cp.glob.Match(path) {
			return true
		}
	}
	if !strings.Contains(path, "/") {
		for _, cp := range d.ignores {
			if !strings.HasPrefix(cp.pattern, "**/") {
				continue
			}
			simplified := strings.TrimPrefix(cp.pattern, "**/")
			if g, err := glob.Compile(simplified, '/'); err == nil && g.Match(path) {
				return true
			}
		}
	}
	return false
}
