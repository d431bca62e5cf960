package fsutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOSFileSystem_Exists(t *testing.T) {
	fs := OSFileSystem{}

	if !fs.Exists("filesystem.go") {
		t.Error("expected filesystem.go to exist")
	}

	if fs.Exists("nonexistent_file_xyz.go") {
		t.Error("expected nonexistent file to not exist")
	}
}

func TestOSFileSystem_ListFiles(t *testing.T) {
	fs := OSFileSystem{}
	dir := t.TempDir()

	if err := fs.MkdirAll(filepath.Join(dir, "a", "b"), 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	for _, name := range []string{"a/b/2.json", "a/1.json", "z.txt"} {
		if err := fs.WriteFile(filepath.Join(dir, name), []byte("{}"), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}

	files, err := fs.ListFiles(dir)
	if err != nil {
		t.Fatalf("ListFiles failed: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a", "1.json"),
		filepath.Join(dir, "a", "b", "2.json"),
		filepath.Join(dir, "z.txt"),
	}
	if len(files) != len(want) {
		t.Fatalf("expected %d files, got %v", len(want), files)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}

	if _, err := fs.ListFiles(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestOSFileSystem_CreateAndRead(t *testing.T) {
	fs := OSFileSystem{}
	path := filepath.Join(t.TempDir(), "out.png")

	w, err := fs.Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := w.Write([]byte("png")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "png" {
		t.Errorf("expected %q, got %q", "png", data)
	}
}

func TestMemoryFileSystem_WriteAndRead(t *testing.T) {
	mfs := NewMemoryFileSystem()

	testData := []byte("hello, world")
	if err := mfs.WriteFile("/test.txt", testData, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := mfs.ReadFile("/test.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != string(testData) {
		t.Errorf("expected %q, got %q", testData, data)
	}

	// Mutating the returned slice must not touch the stored file.
	data[0] = 'H'
	again, _ := mfs.ReadFile("/test.txt")
	if string(again) != string(testData) {
		t.Errorf("stored data changed: %q", again)
	}
}

func TestMemoryFileSystem_CreateVisibleOnClose(t *testing.T) {
	mfs := NewMemoryFileSystem()

	w, err := mfs.Create("/created.txt")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := w.Write([]byte("abc")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if data, _ := mfs.ReadFile("/created.txt"); len(data) != 0 {
		t.Errorf("expected empty file before Close, got %q", data)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if data, _ := mfs.ReadFile("/created.txt"); string(data) != "abc" {
		t.Errorf("expected %q after Close, got %q", "abc", data)
	}
}

func TestMemoryFileSystem_StatAndMkdir(t *testing.T) {
	mfs := NewMemoryFileSystem()

	if err := mfs.MkdirAll("/a/b/c", 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	for _, dir := range []string{"/a", "/a/b", "/a/b/c"} {
		info, err := mfs.Stat(dir)
		if err != nil {
			t.Fatalf("Stat(%s) failed: %v", dir, err)
		}
		if !info.IsDir() {
			t.Errorf("expected %s to be a directory", dir)
		}
	}

	if err := mfs.WriteFile("/a/f.json", []byte("12345"), 0600); err != nil {
		t.Fatal(err)
	}
	info, err := mfs.Stat("/a/./f.json")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != 5 || info.Mode() != 0600 || info.Name() != "f.json" {
		t.Errorf("unexpected info: size=%d mode=%v name=%s", info.Size(), info.Mode(), info.Name())
	}

	if _, err := mfs.Stat("/nope"); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
	if !mfs.Exists("/a/b") || mfs.Exists("/nope") {
		t.Error("Exists reported wrong result")
	}
}

func TestMemoryFileSystem_ListFiles(t *testing.T) {
	mfs := NewMemoryFileSystem()
	for _, name := range []string{"/data/b.json", "/data/sub/a.json", "/database/x.json"} {
		_ = mfs.WriteFile(name, nil, 0644)
	}

	files, err := mfs.ListFiles("/data")
	if err != nil {
		t.Fatalf("ListFiles failed: %v", err)
	}
	if len(files) != 2 || files[0] != "/data/b.json" || files[1] != "/data/sub/a.json" {
		t.Errorf("unexpected listing %v", files)
	}

	if _, err := mfs.ListFiles("/missing"); err == nil {
		t.Error("expected error for missing root")
	}

	_ = mfs.MkdirAll("/empty", 0755)
	files, err = mfs.ListFiles("/empty")
	if err != nil || len(files) != 0 {
		t.Errorf("expected empty listing, got %v, %v", files, err)
	}
}

func TestMemoryFileSystem_WriteRegistersParents(t *testing.T) {
	mfs := NewMemoryFileSystem()
	if err := mfs.WriteFile("/out/s01/trial_features.json", []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	for _, dir := range []string{"/out", "/out/s01"} {
		if info, err := mfs.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("expected %s to be a directory, got %v", dir, err)
		}
	}
	files, err := mfs.ListFiles("/out")
	if err != nil || len(files) != 1 {
		t.Errorf("unexpected listing %v, %v", files, err)
	}
}
