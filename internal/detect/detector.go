package detect

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"

	"wfip/internal/model"
)

// SnippetMaxLen caps how much of a matching line is kept as evidence.
const SnippetMaxLen = 100

// maxFileSize skips likely-binary or generated assets during tree scans.
const maxFileSize = 1024 * 1024

// DefaultExtensions is the allow-list of file types worth scanning.
var DefaultExtensions = []string{
	".js", ".jsx", ".ts", ".tsx", ".css", ".scss", ".sass", ".html", ".vue", ".svelte",
}

var ignoredDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	".wfip":        true,
}

// Detector finds web-platform feature usage in line-oriented text.
type Detector struct {
	signatures []Signature
}

// New creates a detector with the default signature table.
func New() *Detector {
	return &Detector{signatures: DefaultSignatures()}
}

// NewWithSignatures creates a detector with a custom table.
func NewWithSignatures(signatures []Signature) *Detector {
	return &Detector{signatures: signatures}
}

// ScanContent matches every signature against every line of content.
// Matching is strictly line-scoped: a rule split across lines is not
// detected, which is the accepted fidelity trade-off of signature scanning.
// Each match yields its own usage, including repeats on one line.
func (d *Detector) ScanContent(location, content string) []model.FeatureUsage {
	var usages []model.FeatureUsage
	lines := strings.Split(content, "\n")

	for _, sig := range d.signatures {
		for i, line := range lines {
			matches := sig.Pattern.FindAllStringIndex(line, -1)
			for range matches {
				usages = append(usages, model.FeatureUsage{
					FeatureName: sig.Name,
					Location:    location,
					LineNumber:  i + 1,
					Snippet:     truncateSnippet(line),
				})
			}
		}
	}
	return usages
}

// ScanDir walks a file tree and scans files whose extension is in exts
// (DefaultExtensions when nil). Unreadable or undecodable files are logged
// and skipped; a partial scan always completes.
func (d *Detector) ScanDir(root string, exts []string) ([]model.FeatureUsage, error) {
	if exts == nil {
		exts = DefaultExtensions
	}
	patterns := make([]string, len(exts))
	for i, ext := range exts {
		patterns[i] = "**/*" + ext
	}

	var usages []model.FeatureUsage
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if ignoredDirs[entry.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		if !matchesAny(patterns, filepath.ToSlash(rel)) {
			return nil
		}

		info, err := entry.Info()
		if err != nil || info.Size() > maxFileSize {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("skipping unreadable file", "path", path, "error", err)
			return nil
		}
		if !utf8.Valid(data) {
			slog.Warn("skipping undecodable file", "path", path)
			return nil
		}

		usages = append(usages, d.ScanContent(path, string(data))...)
		return nil
	})
	if err != nil {
		return usages, fmt.Errorf("scan of %s failed: %w", root, err)
	}
	return usages, nil
}

func matchesAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func truncateSnippet(line string) string {
	snippet := strings.TrimSpace(line)
	if len(snippet) > SnippetMaxLen {
		snippet = snippet[:SnippetMaxLen]
	}
	return snippet
}
