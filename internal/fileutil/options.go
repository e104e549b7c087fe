// Package fileutil collects the filesystem helpers around file selection:
// content classification, tolerant size probing, tree digests, disk usage
// and path searches.
package fileutil

import (
	"github.com/rs/zerolog"

	"github.com/chronos-tachyon/go-snaptree/internal/logging"
)

type options struct {
	logger      zerolog.Logger
	followLinks bool
	includeDirs bool
	unsorted    bool
}

type Option func(*options)

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithFollowLinks makes Find descend into symlinked directories.
func WithFollowLinks(follow bool) Option {
	return func(o *options) { o.followLinks = follow }
}

// WithDirs makes Find report directories as well as files.
func WithDirs(include bool) Option {
	return func(o *options) { o.includeDirs = include }
}

// WithUnsorted makes Find return paths in traversal order.
func WithUnsorted(unsorted bool) Option {
	return func(o *options) { o.unsorted = unsorted }
}

func buildOptions(opts []Option) options {
	o := options{logger: logging.Component("fileutil")}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
