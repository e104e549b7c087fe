package metadata

import (
	"bytes"
	"errors"
	"os"
	"syscall"

	"github.com/pkg/xattr"
	"github.com/rs/zerolog"
)

func isMissing(err error) bool {
	return errors.Is(err, xattr.ENOATTR) || errors.Is(err, syscall.ENODATA)
}

func isUnsupported(err error) bool {
	return errors.Is(err, syscall.ENOTSUP) || errors.Is(err, syscall.EOPNOTSUPP)
}

func MaybeFGet(logger zerolog.Logger, file *os.File, name string) ([]byte, bool) {
	value, err := xattr.FGet(file, name)
	if err == nil {
		logger.Trace().
			Str("path", file.Name()).
			Str("xaName", name).
			Bytes("xaValue", value).
			Msg("fgetxattr")
		return value, true
	}

	if isMissing(err) {
		return nil, false
	}

	logger.Error().
		Str("path", file.Name()).
		Str("xaName", name).
		Err(err).
		Msg("fgetxattr failed")
	return nil, false
}

func MaybeFSet(logger zerolog.Logger, file *os.File, name string, value []byte) bool {
	existing, err := xattr.FGet(file, name)
	switch {
	case err == nil:
		if bytes.Equal(value, existing) {
			return true
		}
	case isMissing(err):
		// pass
	default:
		return false
	}

	err = xattr.FSet(file, name, value)
	if err == nil {
		logger.Trace().
			Str("path", file.Name()).
			Str("xaName", name).
			Bytes("xaValue", value).
			Msg("fsetxattr")
		return true
	}

	logger.Error().
		Str("path", file.Name()).
		Str("xaName", name).
		Bytes("xaValue", value).
		Err(err).
		Msg("fsetxattr failed")
	return false
}

// CopyXattrs copies every extended attribute of src onto dst and returns
// how many were written. Filesystems without xattr support copy nothing.
func CopyXattrs(logger zerolog.Logger, dst *os.File, src *os.File) int {
	names, err := xattr.FList(src)
	if err != nil {
		if isUnsupported(err) {
			logger.Debug().
				Str("path", src.Name()).
				Msg("extended attributes not supported")
			return 0
		}
		logger.Warn().
			Str("path", src.Name()).
			Err(err).
			Msg("flistxattr failed")
		return 0
	}

	n := 0
	for _, name := range names {
		value, ok := MaybeFGet(logger, src, name)
		if !ok {
			continue
		}
		if MaybeFSet(logger, dst, name, value) {
			n++
		}
	}
	return n
}
