package reader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/lemmatopic/pkg/lemmatopic/internalerr"
)

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadJoinsLines(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "speech_1861.txt", "Fellow citizens\r\nof the United States\nin compliance\n")

	doc, err := Reader{}.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if doc.ID != "speech_1861" {
		t.Errorf("ID = %q", doc.ID)
	}
	if want := "Fellow citizens of the United States in compliance"; doc.Text != want {
		t.Errorf("Text = %q, want %q", doc.Text, want)
	}
}

func TestReadStripsBOMAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	// "é" as e + combining acute
	path := write(t, dir, "bom.txt", "\xef\xbb\xbfcafe\u0301")

	doc, err := Reader{}.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if doc.Text != "caf\u00e9" {
		t.Errorf("Text = %q, want NFC form without BOM", doc.Text)
	}
}

func TestReadInvalidUTF8(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "latin1.txt", "caf\xe9")

	_, err := Reader{}.Read(path)
	if !errors.Is(err, internalerr.ErrRead) {
		t.Fatalf("expected ErrRead, got %v", err)
	}
	var de *internalerr.DocumentError
	if !errors.As(err, &de) || de.Path != path {
		t.Errorf("error should name the file, got %v", err)
	}
}

func TestReadMissing(t *testing.T) {
	_, err := Reader{}.Read(filepath.Join(t.TempDir(), "gone.txt"))
	if !errors.Is(err, internalerr.ErrRead) {
		t.Fatalf("expected ErrRead, got %v", err)
	}
}

func TestReadHTML(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "page.html", `<html><head><title>x</title><style>p{}</style></head>
<body><h1>Title</h1><p>First <b>bold</b> para.</p><script>var a;</script><p>Second</p></body></html>`)

	doc, err := Reader{}.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if want := "Title First bold para. Second"; doc.Text != want {
		t.Errorf("Text = %q, want %q", doc.Text, want)
	}
}

func TestListFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "b.txt", "b")
	write(t, dir, "a.txt", "a")
	write(t, dir, "notes.md", "n")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	write(t, filepath.Join(dir, "sub"), "c.txt", "c")

	paths, err := Reader{Include: "*.txt"}.List(dir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(paths) != 2 || filepath.Base(paths[0]) != "a.txt" || filepath.Base(paths[1]) != "b.txt" {
		t.Errorf("List = %v", paths)
	}

	all, err := Reader{}.List(dir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 files without filter, got %v", all)
	}
}

func TestListFollowsSymlinks(t *testing.T) {
	src := t.TempDir()
	target := write(t, src, "shared.txt", "linked text")
	dir := t.TempDir()
	write(t, dir, "a.txt", "a")
	if err := os.Symlink(target, filepath.Join(dir, "linked.txt")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := os.Symlink(src, filepath.Join(dir, "dirlink.txt")); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(src, "gone.txt"), filepath.Join(dir, "dangling.txt")); err != nil {
		t.Fatal(err)
	}

	paths, err := Reader{}.List(dir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(paths) != 2 || filepath.Base(paths[0]) != "a.txt" || filepath.Base(paths[1]) != "linked.txt" {
		t.Fatalf("List = %v", paths)
	}

	doc, err := Reader{}.Read(paths[1])
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if doc.ID != "linked" || doc.Text != "linked text" {
		t.Errorf("Read = %+v", doc)
	}
}

func TestListErrors(t *testing.T) {
	_, err := Reader{}.List(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, internalerr.ErrConfiguration) {
		t.Errorf("missing dir should be a configuration error, got %v", err)
	}

	_, err = Reader{Include: "[unclosed"}.List(t.TempDir())
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("bad pattern should be invalid config, got %v", err)
	}
}

func TestStem(t *testing.T) {
	cases := map[string]string{
		"/x/y/doc1.txt":     "doc1",
		"doc.tar.gz":        "doc.tar",
		"noext":             "noext",
		"/a/b/.hidden":      "",
	}
	for in, want := range cases {
		if got := Stem(in); got != want {
			t.Errorf("Stem(%q) = %q, want %q", in, got, want)
		}
	}
}
