package reader

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/unicode/norm"

	"github.com/cognicore/lemmatopic/pkg/lemmatopic/internalerr"
)

// Document is one input file, read once.
type Document struct {
	ID   string // filename stem
	Path string
	Text string // all lines joined with a single space
}

// Reader enumerates and reads the documents of an input directory.
type Reader struct {
	// Include is a glob matched against file names; empty matches all.
	Include string
	// StripHTML renders every file as HTML. Files ending in .html or .htm
	// are always rendered.
	StripHTML bool
}

// List returns the regular files directly inside dir, sorted by name.
// Symlinks are followed; a link is listed when its target is a regular file.
func (r Reader) List(dir string) ([]string, error) {
	pattern := r.Include
	if pattern == "" {
		pattern = "*"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: bad include pattern %q", internalerr.ErrInvalidConfig, pattern)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrConfiguration, err)
	}

	var paths []string
	for _, e := range entries {
		if !regular(dir, e) {
			continue
		}
		ok, err := doublestar.Match(pattern, e.Name())
		if err != nil {
			return nil, err
		}
		if ok {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func regular(dir string, e os.DirEntry) bool {
	if e.Type()&os.ModeSymlink == 0 {
		return e.Type().IsRegular()
	}
	info, err := os.Stat(filepath.Join(dir, e.Name()))
	return err == nil && info.Mode().IsRegular()
}

// Read loads a single document. Failures wrap internalerr.ErrRead.
func (r Reader) Read(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, &internalerr.DocumentError{Path: path, Err: fmt.Errorf("%w: %v", internalerr.ErrRead, err)}
	}

	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return Document{}, &internalerr.DocumentError{Path: path, Err: fmt.Errorf("%w: not valid UTF-8", internalerr.ErrRead)}
	}

	text := norm.NFC.String(string(data))
	if r.StripHTML || isHTML(path) {
		text, err = htmlText(text)
		if err != nil {
			return Document{}, &internalerr.DocumentError{Path: path, Err: fmt.Errorf("%w: %v", internalerr.ErrRead, err)}
		}
	}

	return Document{
		ID:   Stem(path),
		Path: path,
		Text: joinLines(text),
	}, nil
}

// Stem returns the file name without directory and final extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func isHTML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	return false
}

// joinLines joins all lines of text with one space.
func joinLines(text string) string {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), len(text)+1)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	return strings.Join(lines, " ")
}
