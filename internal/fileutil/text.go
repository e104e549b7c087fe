package fileutil

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

const sniffLen = 1024

// IsTextFile sniffs the first KiB of path. Empty files are text, any NUL
// byte means binary, valid UTF-8 is text, and anything else is binary when
// more than 30% of the sample is non-whitespace control bytes.
func IsTextFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("%q: failed to open file: %w", path, err)
	}
	defer f.Close()

	var buf [sniffLen]byte
	n, err := io.ReadFull(f, buf[:])
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false, fmt.Errorf("%q: failed to read file: %w", path, err)
	}
	return isText(buf[:n], n == sniffLen), nil
}

// SafeIsTextFile is IsTextFile with every failure reported as "not text".
func SafeIsTextFile(path string) bool {
	ok, err := IsTextFile(path)
	return err == nil && ok
}

func isText(sample []byte, truncated bool) bool {
	if len(sample) == 0 {
		return true
	}
	if bytes.IndexByte(sample, 0) >= 0 {
		return false
	}
	if truncated {
		sample = trimPartialRune(sample)
	}
	if utf8.Valid(sample) {
		return true
	}
	control := 0
	for _, b := range sample {
		if b < 0x20 && !isSpaceByte(b) {
			control++
		}
	}
	return control*10 <= len(sample)*3
}

// trimPartialRune drops a multi-byte sequence cut off at the end of sample.
func trimPartialRune(sample []byte) []byte {
	for i := 1; i <= utf8.UTFMax && i <= len(sample); i++ {
		b := sample[len(sample)-i]
		if b < utf8.RuneSelf {
			return sample
		}
		if utf8.RuneStart(b) {
			if !utf8.FullRune(sample[len(sample)-i:]) {
				return sample[:len(sample)-i]
			}
			return sample
		}
	}
	return sample
}

func isSpaceByte(b byte) bool {
	switch b {
	case '\t', '\n', '\r', '\f', '\b', '\v', 0x1b:
		return true
	default:
		return false
	}
}
