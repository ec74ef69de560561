package resource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/imamik/dkimctl/internal/host"
)

// DefaultFileMode is used when a File has no Mode.
const DefaultFileMode fs.FileMode = 0o644

// Directory asserts that a directory exists.
type Directory struct {
	Path string
	// Mode applies when the directory is created. Zero means 0755.
	Mode fs.FileMode
}

// Kind implements Resource.
func (d *Directory) Kind() string { return "directory" }

// ID implements Resource.
func (d *Directory) ID() string { return d.Path }

// Check implements Resource.
func (d *Directory) Check(ctx context.Context, h host.Host) (Evaluation, error) {
	info, err := h.Stat(ctx, d.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return Evaluation{NeedsApply: true, Message: "directory absent"}, nil
	}
	if err != nil {
		return Evaluation{}, err
	}
	if !info.IsDir {
		return Evaluation{}, fmt.Errorf("%s exists and is not a directory", d.Path)
	}
	return Evaluation{Message: "directory present"}, nil
}

// Apply implements Resource.
func (d *Directory) Apply(ctx context.Context, h host.Host) error {
	mode := d.Mode
	if mode == 0 {
		mode = 0o755
	}
	if err := h.MkdirAll(ctx, d.Path, mode); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", d.Path, err)
	}
	return nil
}

// File asserts the exact content of a regular file.
type File struct {
	Path    string
	Content []byte
	// Mode is asserted when non-zero and used on write. Zero writes DefaultFileMode.
	// A mode mismatch alone is fixed with chmod and reported as quiet drift.
	Mode fs.FileMode

	modeOnly bool
}

// Kind implements Resource.
func (f *File) Kind() string { return "file" }

// ID implements Resource.
func (f *File) ID() string { return f.Path }

// Check implements Resource.
func (f *File) Check(ctx context.Context, h host.Host) (Evaluation, error) {
	f.modeOnly = false
	current, err := h.ReadFile(ctx, f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return Evaluation{NeedsApply: true, Message: "file absent"}, nil
	}
	if err != nil {
		return Evaluation{}, err
	}
	if !bytes.Equal(current, f.Content) {
		return Evaluation{NeedsApply: true, Message: fmt.Sprintf("content differs (%d -> %d bytes)", len(current), len(f.Content))}, nil
	}

	if f.Mode != 0 {
		info, err := h.Stat(ctx, f.Path)
		if err != nil {
			return Evaluation{}, err
		}
		if info.Mode != f.Mode.Perm() {
			f.modeOnly = true
			return Evaluation{NeedsApply: true, Quiet: true, Message: fmt.Sprintf("mode %04o, want %04o", info.Mode, f.Mode.Perm())}, nil
		}
	}
	return Evaluation{Message: "content matches"}, nil
}

// Apply implements Resource.
func (f *File) Apply(ctx context.Context, h host.Host) error {
	if f.modeOnly {
		if err := h.Chmod(ctx, f.Path, f.Mode); err != nil {
			return fmt.Errorf("failed to set mode of %s: %w", f.Path, err)
		}
		return nil
	}

	mode := f.Mode
	if mode == 0 {
		mode = DefaultFileMode
	}
	if err := h.WriteFile(ctx, f.Path, f.Content, mode); err != nil {
		return fmt.Errorf("failed to write %s: %w", f.Path, err)
	}
	return nil
}

// Ownership asserts the owner and group of an existing path.
type Ownership struct {
	Path  string
	Owner string
	Group string
}

// Kind implements Resource.
func (o *Ownership) Kind() string { return "ownership" }

// ID implements Resource.
func (o *Ownership) ID() string { return o.Path }

// Check implements Resource. An absent path is reported as drift so that
// check mode can plan ownership of files an earlier step would create.
func (o *Ownership) Check(ctx context.Context, h host.Host) (Evaluation, error) {
	info, err := h.Stat(ctx, o.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return Evaluation{NeedsApply: true, Message: "path absent"}, nil
	}
	if err != nil {
		return Evaluation{}, err
	}
	if info.Owner != o.Owner || info.Group != o.Group {
		return Evaluation{NeedsApply: true, Message: fmt.Sprintf("owned by %s:%s", info.Owner, info.Group)}, nil
	}
	return Evaluation{Message: fmt.Sprintf("owned by %s:%s", o.Owner, o.Group)}, nil
}

// Apply implements Resource.
func (o *Ownership) Apply(ctx context.Context, h host.Host) error {
	if err := h.Chown(ctx, o.Path, o.Owner, o.Group); err != nil {
		return fmt.Errorf("failed to set ownership of %s to %s:%s: %w", o.Path, o.Owner, o.Group, err)
	}
	return nil
}
