package corpus

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cognicore/lemmatopic/pkg/lemmatopic/internalerr"
)

// Companion file names.
const (
	TextsFile = "texts_lemmatized.txt"
	IDsFile   = "text_IDs.txt"
)

// WriteFiles writes the texts and identifiers files into dir.
//
// Both files are fully rewritten: each goes to a temp file in dir that is
// renamed into place, so a new run never appends to stale content.
func WriteFiles(dir string, c *Corpus) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	textsTmp, err := writeTemp(dir, TextsFile, c.Texts())
	if err != nil {
		return err
	}
	idsTmp, err := writeTemp(dir, IDsFile, c.IDs())
	if err != nil {
		os.Remove(textsTmp)
		return err
	}

	if err := os.Rename(textsTmp, filepath.Join(dir, TextsFile)); err != nil {
		os.Remove(textsTmp)
		os.Remove(idsTmp)
		return err
	}
	if err := os.Rename(idsTmp, filepath.Join(dir, IDsFile)); err != nil {
		os.Remove(idsTmp)
		// the texts file is already new; drop it rather than leave a mismatched pair
		os.Remove(filepath.Join(dir, TextsFile))
		return err
	}
	return nil
}

func writeTemp(dir, name string, lines []string) (string, error) {
	f, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return "", err
	}
	w := bufio.NewWriter(f)
	for _, line := range lines {
		w.WriteString(line)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// ReadFiles reads the companion files back into a corpus.
func ReadFiles(dir string) (*Corpus, error) {
	texts, err := readLines(filepath.Join(dir, TextsFile))
	if err != nil {
		return nil, err
	}
	ids, err := readLines(filepath.Join(dir, IDsFile))
	if err != nil {
		return nil, err
	}
	if len(texts) != len(ids) {
		return nil, fmt.Errorf("%w: %s has %d lines but %s has %d",
			internalerr.ErrConfiguration, TextsFile, len(texts), IDsFile, len(ids))
	}

	pairs := make([]Pair, len(ids))
	for i := range ids {
		pairs[i] = Pair{ID: ids[i], Text: texts[i]}
	}
	c, err := FromPairs(pairs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrConfiguration, err)
	}
	return c, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	// one chunk of 1000 lemmas easily exceeds the default 64k token size
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
