// Package corpus inspects a local corpus directory the way the search
// backend reads it: top-level files only, by extension.
package corpus

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/dustin/go-humanize"
)

// Extensions the backend can extract text from.
var Extensions = []string{".txt", ".pdf", ".docx"}

// Supported reports whether name has an indexable extension.
func Supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Stats summarizes one directory level.
type Stats struct {
	Root        string
	Documents   int
	Bytes       int64
	Unsupported int
	Subdirs     int
	ByExt       map[string]int
	Newest      time.Time
}

// Summary renders the stats for the corpus panel.
func (s Stats) Summary() string {
	noun := "documents"
	if s.Documents == 1 {
		noun = "document"
	}
	out := fmt.Sprintf("%s %s, %s", humanize.Comma(int64(s.Documents)), noun, humanize.Bytes(uint64(s.Bytes)))
	if len(s.ByExt) > 0 {
		exts := make([]string, 0, len(s.ByExt))
		for ext := range s.ByExt {
			exts = append(exts, ext)
		}
		sort.Strings(exts)
		parts := make([]string, 0, len(exts))
		for _, ext := range exts {
			parts = append(parts, fmt.Sprintf("%d %s", s.ByExt[ext], strings.TrimPrefix(ext, ".")))
		}
		out += " (" + strings.Join(parts, ", ") + ")"
	}
	if s.Unsupported > 0 {
		out += fmt.Sprintf(", %d skipped", s.Unsupported)
	}
	if !s.Newest.IsZero() {
		out += ", updated " + humanize.Time(s.Newest)
	}
	return out
}

// Scan counts the top-level files under root. Subdirectories are counted
// but never entered.
func Scan(ctx context.Context, root string) (Stats, error) {
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return Stats{}, fmt.Errorf("scan corpus: %w", err)
	}
	if !info.IsDir() {
		return Stats{}, fmt.Errorf("scan corpus: %s is not a directory", root)
	}

	stats := Stats{Root: root, ByExt: make(map[string]int)}
	var mu sync.Mutex

	conf := &fastwalk.Config{Follow: true}
	err = fastwalk.Walk(conf, root, func(fullPath string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil || fullPath == root {
			return nil
		}
		if d.IsDir() {
			mu.Lock()
			stats.Subdirs++
			mu.Unlock()
			return fastwalk.SkipDir
		}

		info, err := fastwalk.StatDirEntry(fullPath, d)
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}

		mu.Lock()
		defer mu.Unlock()
		if !Supported(d.Name()) {
			stats.Unsupported++
			return nil
		}
		stats.Documents++
		stats.Bytes += info.Size()
		stats.ByExt[strings.ToLower(filepath.Ext(d.Name()))]++
		if info.ModTime().After(stats.Newest) {
			stats.Newest = info.ModTime()
		}
		return nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("scan corpus: %w", err)
	}
	return stats, nil
}
