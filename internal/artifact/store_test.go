package artifact

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStoreWritePlain(t *testing.T) {
	s, err := NewStore(t.TempDir(), "run-1", false)
	if err != nil {
		t.Fatal(err)
	}

	path, err := s.Write("iris", "stdout.log", []byte("Accuracy: 0.9\n"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if want := filepath.Join(s.Dir(), "iris", "stdout.log"); path != want {
		t.Errorf("path: got %q, want %q", path, want)
	}

	data, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Accuracy: 0.9\n" {
		t.Errorf("content: got %q", data)
	}
}

func TestStoreWriteCompressed(t *testing.T) {
	s, err := NewStore(t.TempDir(), "run-2", true)
	if err != nil {
		t.Fatal(err)
	}

	content := strings.Repeat("epoch 1 loss 0.5\n", 500)
	path, err := s.Write("iris", "stdout.log", []byte(content))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.HasSuffix(path, ".zst") {
		t.Fatalf("expected .zst suffix, got %q", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() >= int64(len(content)) {
		t.Errorf("compressed size %d not smaller than input %d", info.Size(), len(content))
	}

	data, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != content {
		t.Error("round trip through zstd changed the content")
	}
}

func TestStoreWriteOutputSkipsEmpty(t *testing.T) {
	s, err := NewStore(t.TempDir(), "run-3", false)
	if err != nil {
		t.Fatal(err)
	}

	paths, err := s.WriteOutput("iris", "Accuracy: 1\n", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 || filepath.Base(paths[0]) != "stdout.log" {
		t.Fatalf("paths: got %v", paths)
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), "iris", "stderr.log")); !os.IsNotExist(err) {
		t.Error("empty stderr should not be written")
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "nope.log")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
