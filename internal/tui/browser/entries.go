package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/xplore-cli/xplore/internal/attr"
)

// Entry is one row of the browser listing.
type Entry struct {
	Name    string
	Path    string
	Size    int64
	IsDir   bool
	ModTime time.Time
	Note    string
}

// HasNote reports whether a note is attached to the entry.
func (e Entry) HasNote() bool {
	return e.Note != ""
}

// listDirectory reads one directory into browser rows, fetching each
// entry's note. Directories sort first, then names case-insensitively,
// with ".." pinned on top for upward navigation.
func listDirectory(attrs *attr.Store, dir string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("browser: listing %s: %w", dir, err)
	}

	var entries []Entry
	if parent := filepath.Dir(dir); parent != dir {
		entries = append(entries, Entry{
			Name:  "..",
			Path:  parent,
			IsDir: true,
		})
	}

	for _, de := range dirEntries {
		path := filepath.Join(dir, de.Name())
		entry := Entry{
			Name:  de.Name(),
			Path:  path,
			IsDir: de.IsDir(),
		}
		if info, err := de.Info(); err == nil {
			entry.Size = info.Size()
			entry.ModTime = info.ModTime()
		}
		if note, err := attrs.Read(path); err == nil {
			entry.Note = note.Text
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Name == ".." {
			return true
		}
		if b.Name == ".." {
			return false
		}
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})

	return entries, nil
}

// filterEntries keeps the rows whose name or note contains the query,
// case-folded, mirroring how the deep search evaluates single entries.
func filterEntries(entries []Entry, query string) []Entry {
	if strings.TrimSpace(query) == "" {
		return entries
	}

	q := strings.ToLower(query)
	var out []Entry
	for _, e := range entries {
		if e.Name == ".." {
			out = append(out, e)
			continue
		}
		if strings.Contains(strings.ToLower(e.Name), q) ||
			strings.Contains(strings.ToLower(e.Note), q) {
			out = append(out, e)
		}
	}
	return out
}

// humanSize renders byte counts the way the listing shows them.
func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
