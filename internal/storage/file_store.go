// Package storage keeps uploaded product photos on the local filesystem.
//
// Stored names are sanitized ASCII file names relative to a single upload
// directory; callers persist the returned name and later pass it back to
// Exists, Path or Delete.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidName is returned when a file name has nothing usable left after
// sanitizing.
var ErrInvalidName = errors.New("storage: invalid file name")

const maxNameAttempts = 5

// FileStore saves uploaded files to disk under a base directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the base directory if missing.
func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("storage base path is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the base directory.
func (f *FileStore) Dir() string { return f.dir }

// Path returns the location of a stored name under the base directory. Any
// directory components in name are discarded.
func (f *FileStore) Path(name string) string {
	return filepath.Join(f.dir, baseName(name))
}

// Exists reports whether a stored name is present on disk.
func (f *FileStore) Exists(name string) bool {
	if baseName(name) == "" {
		return false
	}
	st, err := os.Stat(f.Path(name))
	return err == nil && st.Mode().IsRegular()
}

// Save sanitizes name, writes r to a temp file in the base directory and
// links it into place under a name that is not taken yet. It returns the
// stored name.
func (f *FileStore) Save(name string, r io.Reader) (string, error) {
	clean := SanitizeFilename(name)
	if clean == "" {
		return "", ErrInvalidName
	}

	tmp, err := os.CreateTemp(f.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close file: %w", err)
	}

	candidate := clean
	for i := 0; i < maxNameAttempts; i++ {
		// Link fails with EEXIST instead of replacing, so two uploads with
		// the same name never clobber each other.
		err := os.Link(tmpName, filepath.Join(f.dir, candidate))
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("store file: %w", err)
		}
		candidate = withSuffix(clean, uuid.NewString()[:8])
	}
	return "", fmt.Errorf("store file %q: no free name after %d attempts", clean, maxNameAttempts)
}

// Delete removes a stored file. A missing file is not an error.
func (f *FileStore) Delete(name string) error {
	if baseName(name) == "" {
		return nil
	}
	err := os.Remove(f.Path(name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// baseName strips directory components; it returns "" for names that would
// resolve to the base directory itself.
func baseName(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	b := path.Base(path.Clean("/" + name))
	if b == "/" || b == "." {
		return ""
	}
	return b
}

func withSuffix(name, suffix string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return base + "-" + suffix + ext
}

var windowsDeviceNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {}, "COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {}, "LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// SanitizeFilename reduces an uploaded file name to a safe ASCII name with no
// directory components, e.g. "../../etc/passwd" becomes "etc_passwd". It
// returns "" when nothing usable remains.
func SanitizeFilename(name string) string {
	name = norm.NFKD.String(name)

	var ascii strings.Builder
	ascii.Grow(len(name))
	for _, r := range name {
		switch {
		case r == '/' || r == '\\':
			ascii.WriteByte(' ')
		case r < unicode.MaxASCII:
			ascii.WriteRune(r)
		}
	}

	joined := strings.Join(strings.Fields(ascii.String()), "_")

	var out strings.Builder
	out.Grow(len(joined))
	for _, r := range joined {
		if isSafeRune(r) {
			out.WriteRune(r)
		}
	}

	clean := strings.Trim(out.String(), "._")
	if clean == "" {
		return ""
	}
	stem := strings.ToUpper(strings.SplitN(clean, ".", 2)[0])
	if _, ok := windowsDeviceNames[stem]; ok {
		clean = "_" + clean
	}
	return clean
}

func isSafeRune(r rune) bool {
	return r == '_' || r == '.' || r == '-' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
