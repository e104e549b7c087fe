package fileutil

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
)

const digestChunkSize = 1 << 20

// FilesDigest hashes paths, in the order given, relative to rootDir. Each
// path contributes its slash-separated name, a NUL, the file's bytes and
// another NUL to one running MD5. Callers wanting an order-independent
// digest must sort paths themselves.
func FilesDigest(paths []string, rootDir string) (string, error) {
	h := md5.New()
	buf := make([]byte, digestChunkSize)
	for _, path := range paths {
		_, _ = io.WriteString(h, filepath.ToSlash(path))
		_, _ = h.Write([]byte{0})
		if err := digestFile(h, filepath.Join(rootDir, path), buf); err != nil {
			return "", err
		}
		_, _ = h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func digestFile(h hash.Hash, path string, buf []byte) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%q: failed to open file: %w", path, err)
	}
	defer f.Close()

	for {
		n, err := f.Read(buf)
		if n > 0 {
			_, _ = h.Write(buf[:n])
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%q: failed to read file: %w", path, err)
		}
	}
}

// FilesDiffer reports whether the two files differ in size or content.
func FilesDiffer(path1, path2 string) (bool, error) {
	fi1, err := os.Stat(path1)
	if err != nil {
		return false, fmt.Errorf("%q: failed to stat file: %w", path1, err)
	}
	fi2, err := os.Stat(path2)
	if err != nil {
		return false, fmt.Errorf("%q: failed to stat file: %w", path2, err)
	}
	if fi1.Size() != fi2.Size() {
		return true, nil
	}

	f1, err := os.Open(path1)
	if err != nil {
		return false, fmt.Errorf("%q: failed to open file: %w", path1, err)
	}
	defer f1.Close()
	f2, err := os.Open(path2)
	if err != nil {
		return false, fmt.Errorf("%q: failed to open file: %w", path2, err)
	}
	defer f2.Close()

	var buf1, buf2 [1 << 16]byte
	for {
		n1, err1 := io.ReadFull(f1, buf1[:])
		n2, err2 := io.ReadFull(f2, buf2[:])
		if n1 != n2 || string(buf1[:n1]) != string(buf2[:n2]) {
			return true, nil
		}
		done1 := err1 == io.EOF || err1 == io.ErrUnexpectedEOF
		done2 := err2 == io.EOF || err2 == io.ErrUnexpectedEOF
		if err1 != nil && !done1 {
			return false, fmt.Errorf("%q: failed to read file: %w", path1, err1)
		}
		if err2 != nil && !done2 {
			return false, fmt.Errorf("%q: failed to read file: %w", path2, err2)
		}
		if done1 || done2 {
			return done1 != done2, nil
		}
	}
}
