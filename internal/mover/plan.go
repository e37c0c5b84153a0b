package mover

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrSourceVanished is the only fatal planning failure: the source path
// disappeared (or never existed) before the plan could be expanded.
var ErrSourceVanished = errors.New("mover: source path does not exist")

// Request describes one user-initiated move or copy.
type Request struct {
	Source string
	Dest   string
	Copy   bool
}

// Entry is one planned transfer. Directory entries always precede the
// entries beneath them.
type Entry struct {
	Source string
	Dest   string
	IsDir  bool
}

// Plan is the fully expanded, ordered list of transfers for one request.
// It exists only for the duration of that request.
type Plan struct {
	Entries []Entry
	Copy    bool
}

// Expand resolves a request into a Plan. Directories are walked up front so
// execution never discovers new work, and the relative structure beneath the
// source is preserved under the destination.
func Expand(req Request) (Plan, error) {
	src := filepath.Clean(req.Source)
	dst := filepath.Clean(req.Dest)

	info, err := os.Lstat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return Plan{}, fmt.Errorf("%w: %s", ErrSourceVanished, src)
		}
		return Plan{}, fmt.Errorf("mover: stat %s: %w", src, err)
	}

	// Moving or copying onto an existing directory nests the source
	// beneath it, matching what mv(1) and cp(1) do.
	if dstInfo, err := os.Stat(dst); err == nil && dstInfo.IsDir() {
		dst = filepath.Join(dst, filepath.Base(src))
	}

	plan := Plan{Copy: req.Copy}
	if !info.IsDir() {
		plan.Entries = append(plan.Entries, Entry{Source: src, Dest: dst})
		return plan, nil
	}

	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := dst
		if rel != "." {
			target = filepath.Join(dst, rel)
		}
		plan.Entries = append(plan.Entries, Entry{
			Source: path,
			Dest:   target,
			IsDir:  d.IsDir(),
		})
		return nil
	})
	if err != nil {
		return Plan{}, fmt.Errorf("mover: expanding %s: %w", src, err)
	}
	return plan, nil
}
