package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// --- Discover tests ---

func TestDiscover_FiltersExtensions(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "movie.mkv")
	touch(t, dir, "show.mp4")
	touch(t, dir, "music.mp3")
	touch(t, dir, "readme.txt")
	touch(t, dir, "cover.jpg")
	touch(t, dir, "anime.avi")
	touch(t, dir, "special.m4v")

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	want := []string{"anime.avi", "movie.mkv", "music.mp3", "show.mp4", "special.m4v"}
	got := basenames(files)
	if !sliceEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDiscover_AllMediaExtensions(t *testing.T) {
	dir := t.TempDir()
	exts := []string{".mkv", ".mp4", ".avi", ".m4v", ".mov", ".wmv",
		".flv", ".webm", ".ts", ".m2ts", ".mpg", ".mpeg", ".vob", ".ogv"}
	for _, ext := range exts {
		touch(t, dir, "file"+ext)
	}
	touch(t, dir, "file.jpg")

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != len(exts) {
		t.Errorf("got %d files, want %d", len(files), len(exts))
	}
}

func TestDiscover_PrunesExtras(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "main.mkv")
	os.MkdirAll(filepath.Join(dir, "Extras"), 0o755)
	touch(t, filepath.Join(dir, "Extras"), "bonus.mkv")
	os.MkdirAll(filepath.Join(dir, "extras"), 0o755)
	touch(t, filepath.Join(dir, "extras"), "deleted_scenes.mp4")

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("got %d files, want 1 (extras should be pruned)", len(files))
	}
}

func TestDiscover_RecursiveAndSorted(t *testing.T) {
	dir := t.TempDir()
	os.MkdirAll(filepath.Join(dir, "Show", "Season 01"), 0o755)
	os.MkdirAll(filepath.Join(dir, "Show", "Season 02"), 0o755)
	touch(t, filepath.Join(dir, "Show", "Season 02"), "ep01.mkv")
	touch(t, filepath.Join(dir, "Show", "Season 01"), "ep02.mkv")
	touch(t, filepath.Join(dir, "Show", "Season 01"), "ep01.mkv")

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	if len(files) != 3 {
		t.Fatalf("got %d files, want 3", len(files))
	}
	// Should be sorted lexicographically.
	for i := 1; i < len(files); i++ {
		if files[i] < files[i-1] {
			t.Errorf("not sorted: %q before %q", files[i-1], files[i])
		}
	}
}

func TestDiscover_EmptyDir(t *testing.T) {
	dir := t.TempDir()
	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("got %d files, want 0", len(files))
	}
}

func TestDiscover_CaseInsensitiveExtension(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "MOVIE.MKV")
	touch(t, dir, "Show.Mp4")

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("got %d files, want 2 (case-insensitive ext matching)", len(files))
	}
}

func TestDiscover_ExtrasAsRootIsWalked(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "extras")
	os.MkdirAll(dir, 0o755)
	touch(t, dir, "bonus.mkv")

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("got %d files, want 1 (an explicit extras root is not pruned)", len(files))
	}
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "lib")
	os.MkdirAll(lib, 0o755)
	touch(t, lib, "b.mkv")
	touch(t, lib, "a.mp4")
	touch(t, lib, "notes.txt")
	single := filepath.Join(dir, "clip.bin")
	touch(t, dir, "clip.bin")
	missing := filepath.Join(dir, "missing.mkv")
	url := "https://cdn.example.com/v/trailer.mp4"

	got, err := Expand([]string{url, lib, single, missing, url, filepath.Join(lib, "a.mp4")})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	want := []string{url, filepath.Join(lib, "a.mp4"), filepath.Join(lib, "b.mkv"), single, missing}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] got %q, want %q", i, got[i], want[i])
		}
	}
}

func touch(t *testing.T, dir, name string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte{}, 0o644); err != nil {
		t.Fatalf("touch %s: %v", path, err)
	}
}

func basenames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}

func sliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !strings.EqualFold(a[i], b[i]) {
			return false
		}
	}
	return true
}
