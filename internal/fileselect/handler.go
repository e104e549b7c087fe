package fileselect

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/chronos-tachyon/go-snaptree/internal/item"
	"github.com/chronos-tachyon/go-snaptree/internal/metadata"
)

// Handler receives the walker's decisions. Copy is called for selected
// files and Ignore for excluded files and pruned directories; results is
// empty for pruned directories. An error from either aborts the walk.
// Close is called exactly once, on every exit path.
type Handler interface {
	Copy(relPath string, results []RuleResult) error
	Ignore(relPath string, results []RuleResult) error
	Close() error
}

// HandlerConfig is what a HandlerFactory gets to build a Handler from.
type HandlerConfig struct {
	SrcRoot string
	DstRoot string
	RuleSet *RuleSet
	Logger  zerolog.Logger
}

type HandlerFactory func(cfg HandlerConfig) (Handler, error)

// DefaultHandler builds a CopyHandler.
func DefaultHandler(cfg HandlerConfig) (Handler, error) {
	return NewCopyHandler(cfg.SrcRoot, cfg.DstRoot, cfg.Logger), nil
}

// CopyHandler mirrors selected files from SrcRoot to DstRoot, carrying over
// permission bits and optionally extended attributes.
type CopyHandler struct {
	SrcRoot        string
	DstRoot        string
	Logger         zerolog.Logger
	PreserveXattrs bool

	// HandleCopyError is offered every copy failure other than a vanished
	// source. Returning true swallows the error.
	HandleCopyError func(err error, src, dst string) bool
}

func NewCopyHandler(srcRoot, dstRoot string, logger zerolog.Logger) *CopyHandler {
	return &CopyHandler{
		SrcRoot: srcRoot,
		DstRoot: dstRoot,
		Logger:  logger,
	}
}

func (h *CopyHandler) Copy(relPath string, results []RuleResult) error {
	src := filepath.Join(h.SrcRoot, relPath)
	dst := filepath.Join(h.DstRoot, relPath)
	err := h.CopyFile(src, dst)
	if err == nil {
		return nil
	}
	if h.HandleCopyError != nil && h.HandleCopyError(err, src, dst) {
		h.Logger.Debug().
			Str("src", src).
			Str("dst", dst).
			Err(err).
			Msg("copy error handled")
		return nil
	}
	return err
}

func (h *CopyHandler) Ignore(relPath string, results []RuleResult) error {
	return nil
}

func (h *CopyHandler) Close() error {
	return nil
}

// CopyFile copies the contents and mode of src to dst, creating parent
// directories as needed. A src that no longer exists is not an error.
func (h *CopyHandler) CopyFile(src, dst string) (err error) {
	in, err := item.Open(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			h.Logger.Debug().
				Str("src", src).
				Msg("source vanished before copy")
			return nil
		}
		return err
	}
	defer func() {
		_ = in.Close()
	}()

	if err := os.MkdirAll(filepath.Dir(dst), 0o777); err != nil {
		return fmt.Errorf("%q: failed to create directory: %w", filepath.Dir(dst), err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o666)
	if err != nil {
		return fmt.Errorf("%q: failed to open file for writing: %w", dst, err)
	}
	defer func() {
		if out != nil {
			_ = out.Close()
		}
	}()

	if _, err := io.Copy(out, in.File); err != nil {
		return fmt.Errorf("%q: failed to copy from %q: %w", dst, src, err)
	}

	if h.PreserveXattrs {
		metadata.CopyXattrs(h.Logger, out, in.File)
	}

	f := out
	out = nil
	if err := f.Close(); err != nil {
		return fmt.Errorf("%q: failed to close file: %w", dst, err)
	}

	if err := metadata.CopyMode(dst, in.Mode); err != nil {
		return err
	}

	h.Logger.Debug().
		Str("src", src).
		Str("dst", dst).
		Int64("size", in.Size).
		Msg("copied")
	return nil
}

var _ Handler = (*CopyHandler)(nil)
