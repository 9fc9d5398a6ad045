// Package media stores uploaded report attachments on disk and hands back
// the public URL. Media travels by reference; nothing is inlined into the
// problem record.
package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"citywatch/api"

	"github.com/apex/log"
)

var (
	ErrNoFile       = errors.New("no file uploaded")
	ErrUploadFailed = errors.New("upload failed")
	ErrTooLarge     = errors.New("file too large")
)

// MaxUploadBytes bounds a single attachment. The web client records short
// clips and photos; 10 MiB covers those with room to spare.
const MaxUploadBytes = 10 << 20

var sanitizeRe = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// Storage writes uploads under root, one subdirectory per category tag.
type Storage struct {
	root string
	now  func() time.Time
}

func NewStorage(root string) *Storage {
	return &Storage{
		root: root,
		now:  time.Now,
	}
}

// Save persists the stream under a collision-resistant name and returns the
// public URL. The original name and category tag are sanitized to
// [A-Za-z0-9.-] before touching the filesystem.
func (s *Storage) Save(category, filename string, r io.Reader) (string, error) {
	tag := sanitizeRe.ReplaceAllString(category, "")
	// A tag of only dots and dashes would be meaningless or, worse, "..".
	if strings.Trim(tag, ".-") == "" {
		tag = "misc"
	}
	name := fmt.Sprintf("%d-%s", s.now().UnixMilli(), sanitizeRe.ReplaceAllString(filename, ""))

	dir := filepath.Join(s.root, tag)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Errorf("Failed to create upload dir %s: %v", dir, err)
		return "", ErrUploadFailed
	}

	dst := filepath.Join(dir, name)
	f, err := os.Create(dst)
	if err != nil {
		log.Errorf("Failed to create upload file %s: %v", dst, err)
		return "", ErrUploadFailed
	}
	defer f.Close()

	// Read one byte past the limit to tell "exactly at" from "over".
	written, err := io.Copy(f, io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		log.Errorf("Failed to write upload %s: %v", dst, err)
		os.Remove(dst)
		return "", ErrUploadFailed
	}
	if written > MaxUploadBytes {
		os.Remove(dst)
		return "", ErrTooLarge
	}

	url := path.Join(api.UploadsPrefix, tag, name)
	log.Infof("Stored upload %s (%d bytes)", url, written)
	return url, nil
}

// Root is the directory uploads are served from.
func (s *Storage) Root() string {
	return s.root
}
