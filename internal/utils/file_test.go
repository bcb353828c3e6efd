package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsShardFile(t *testing.T) {
	if !IsShardFile("train-0000.lmrd") {
		t.Error("Expected .lmrd to be a shard file")
	}
	if !IsShardFile("TRAIN.LMRD") {
		t.Error("Shard extension check should be case-insensitive")
	}
	if IsShardFile("image.jpg") {
		t.Error("jpg is not a shard file")
	}
}

func TestIsImageFile(t *testing.T) {
	for _, name := range []string{"a.jpg", "b.jpeg", "c.png", "d.webp"} {
		if !IsImageFile(name) {
			t.Errorf("Expected %s to be an image file", name)
		}
	}
	if IsImageFile("train.lmrd") {
		t.Error("lmrd is not an image file")
	}
}

func TestListShardFilesSortedAndRecursive(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{
		filepath.Join(dir, "b.lmrd"),
		filepath.Join(dir, "a.lmrd"),
		filepath.Join(sub, "c.lmrd"),
		filepath.Join(dir, "ignore.txt"),
	} {
		if err := os.WriteFile(name, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := ListShardFiles(dir)
	if err != nil {
		t.Fatalf("ListShardFiles failed: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("Expected 3 shard files, got %d: %v", len(files), files)
	}
	if filepath.Base(files[0]) != "a.lmrd" || filepath.Base(files[1]) != "b.lmrd" {
		t.Errorf("Expected sorted order, got %v", files)
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "deep")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir failed: %v", err)
	}
	if !DirExists(dir) {
		t.Error("Directory should exist after EnsureDir")
	}
	// Idempotent on existing directories.
	if err := EnsureDir(dir); err != nil {
		t.Errorf("EnsureDir on existing dir failed: %v", err)
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.lmrd")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if !FileExists(file) {
		t.Error("Expected file to exist")
	}
	if FileExists(dir) {
		t.Error("Directories are not files")
	}
	if FileExists(filepath.Join(dir, "missing")) {
		t.Error("Missing file should not exist")
	}
}

func TestFormatFileSize(t *testing.T) {
	cases := []struct {
		size int64
		want string
	}{
		{500, "500 B"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
	}
	for _, tc := range cases {
		if got := FormatFileSize(tc.size); got != tc.want {
			t.Errorf("FormatFileSize(%d) = %s, want %s", tc.size, got, tc.want)
		}
	}
}
