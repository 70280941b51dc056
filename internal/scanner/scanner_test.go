package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/panbanda/cyclo/pkg/config"
)

func createFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to create file %s: %v", name, err)
		}
	}
}

func relNames(t *testing.T, root string, files []string) []string {
	t.Helper()
	names := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(root, f)
		if err != nil {
			t.Fatal(err)
		}
		names = append(names, filepath.ToSlash(rel))
	}
	sort.Strings(names)
	return names
}

func assertNames(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("found %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("found %v, want %v", got, want)
			return
		}
	}
}

func TestNewScanner(t *testing.T) {
	s := NewScanner(nil)
	if s == nil {
		t.Fatal("NewScanner(nil) returned nil")
	}
	if s.config == nil {
		t.Error("scanner.config should not be nil when passing nil")
	}

	cfg := config.DefaultConfig()
	s = NewScanner(cfg)
	if s.config != cfg {
		t.Error("scanner.config should be the provided config")
	}
}

func TestScanDir(t *testing.T) {
	tmpDir := t.TempDir()
	createFiles(t, tmpDir, map[string]string{
		"App.java":                    "class App {}\n",
		"src/main/java/acme/Svc.java": "class Svc {}\n",
		"src/main/resources/app.yml":  "a: 1\n",
		"scripts/build.py":            "# python\n",
		"README.md":                   "# readme\n",
	})

	s := NewScanner(nil)
	result, err := s.ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}

	assertNames(t, relNames(t, tmpDir, result), []string{"App.java", "src/main/java/acme/Svc.java"})
}

func TestScanDirExcludesDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	createFiles(t, tmpDir, map[string]string{
		"target/classes/Gen.java": "class Gen {}\n",
		"module/build/Gen.java":   "class Gen {}\n",
		".idea/Tool.java":         "class Tool {}\n",
		"src/App.java":            "class App {}\n",
	})

	s := NewScanner(nil)
	result, err := s.ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}

	assertNames(t, relNames(t, tmpDir, result), []string{"src/App.java"})
}

func TestScanDirExcludesPatterns(t *testing.T) {
	tmpDir := t.TempDir()
	createFiles(t, tmpDir, map[string]string{
		"App.java":                   "class App {}\n",
		"com/acme/package-info.java": "package com.acme;\n",
		"module-info.java":           "module acme {}\n",
		"com/acme/AppGenerated.java": "class AppGenerated {}\n",
	})

	cfg := config.DefaultConfig()
	cfg.Exclude.Patterns = append(cfg.Exclude.Patterns, "*Generated.java")

	s := NewScanner(cfg)
	result, err := s.ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}

	assertNames(t, relNames(t, tmpDir, result), []string{"App.java"})
}

func TestScanDirWithGitignore(t *testing.T) {
	tmpDir := t.TempDir()
	createFiles(t, tmpDir, map[string]string{
		".gitignore":         "skipme\n",
		"App.java":           "class App {}\n",
		"skipme/Skip.java":   "class Skip {}\n",
		"src/Main.java":      "class Main {}\n",
		"src/.gitignore":     "Local*.java\n",
		"src/LocalOnly.java": "class LocalOnly {}\n",
	})

	cfg := config.DefaultConfig()
	cfg.Exclude.Gitignore = true

	s := NewScanner(cfg)
	result, err := s.ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}

	assertNames(t, relNames(t, tmpDir, result), []string{"App.java", "src/Main.java"})
}

func TestScanDirGitignoreFromRepositoryRoot(t *testing.T) {
	repo := t.TempDir()
	createFiles(t, repo, map[string]string{
		".gitignore":             "generated/\n",
		"svc/App.java":           "class App {}\n",
		"svc/generated/Gen.java": "class Gen {}\n",
	})
	if err := os.Mkdir(filepath.Join(repo, ".git"), 0755); err != nil {
		t.Fatal(err)
	}

	s := NewScanner(nil)
	sub := filepath.Join(repo, "svc")
	result, err := s.ScanDir(sub)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}

	assertNames(t, relNames(t, sub, result), []string{"App.java"})
}

func TestScanDirDisabledGitignore(t *testing.T) {
	tmpDir := t.TempDir()
	createFiles(t, tmpDir, map[string]string{
		".gitignore":        "ignored/\n",
		"ignored/File.java": "class File {}\n",
	})

	cfg := config.DefaultConfig()
	cfg.Exclude.Gitignore = false

	s := NewScanner(cfg)
	result, err := s.ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}

	assertNames(t, relNames(t, tmpDir, result), []string{"ignored/File.java"})
}

func TestScanDirEmptyDirectory(t *testing.T) {
	s := NewScanner(nil)
	result, err := s.ScanDir(t.TempDir())
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("ScanDir() on empty dir found %d files", len(result))
	}
}

func TestScanDirMissingRoot(t *testing.T) {
	s := NewScanner(nil)
	if _, err := s.ScanDir(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("ScanDir() should fail for a missing root")
	}
}

func TestScanFile(t *testing.T) {
	tmpDir := t.TempDir()
	createFiles(t, tmpDir, map[string]string{
		"App.java":          "class App {}\n",
		"notes.txt":         "hello\n",
		"package-info.java": "package acme;\n",
	})

	s := NewScanner(nil)

	tests := []struct {
		name string
		want bool
	}{
		{"App.java", true},
		{"notes.txt", false},
		{"package-info.java", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ScanFile(filepath.Join(tmpDir, tt.name))
			if err != nil {
				t.Fatalf("ScanFile() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ScanFile(%s) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}

	got, err := s.ScanFile(tmpDir)
	if err != nil || got {
		t.Errorf("ScanFile(dir) = %v, %v; want false, nil", got, err)
	}
}

func TestScanFileNonExistent(t *testing.T) {
	s := NewScanner(nil)
	if _, err := s.ScanFile("/nonexistent/App.java"); err == nil {
		t.Error("ScanFile() should return error for non-existent file")
	}
}

func TestScanPaths(t *testing.T) {
	tmpDir := t.TempDir()
	createFiles(t, tmpDir, map[string]string{
		"a/A.java":  "class A {}\n",
		"b/B.java":  "class B {}\n",
		"b/C.java":  "class C {}\n",
		"notes.txt": "hello\n",
	})

	s := NewScanner(nil)
	result, err := s.ScanPaths([]string{
		filepath.Join(tmpDir, "b"),
		filepath.Join(tmpDir, "a", "A.java"),
		filepath.Join(tmpDir, "b", "B.java"), // duplicate of the directory scan
		filepath.Join(tmpDir, "notes.txt"),
	})
	if err != nil {
		t.Fatalf("ScanPaths() error: %v", err)
	}

	want := []string{
		filepath.Join(tmpDir, "a", "A.java"),
		filepath.Join(tmpDir, "b", "B.java"),
		filepath.Join(tmpDir, "b", "C.java"),
	}
	assertNames(t, result, want)

	if _, err := s.ScanPaths([]string{filepath.Join(tmpDir, "missing")}); err == nil {
		t.Error("ScanPaths() should fail for a missing path")
	}
}

func TestIsWithinRoot(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"root itself", root, true},
		{"child", filepath.Join(root, "a", "b.java"), true},
		{"sibling with shared prefix", root + "2", false},
		{"parent", filepath.Dir(root), false},
		{"escape via dot-dot", filepath.Join(root, "..", "x"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isWithinRoot(tt.path, root); got != tt.want {
				t.Errorf("isWithinRoot(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestFindGitRoot(t *testing.T) {
	tmpDir := t.TempDir()
	if result := findGitRoot(tmpDir); result != "" {
		t.Errorf("findGitRoot() on non-git dir should return empty string, got %q", result)
	}

	if err := os.Mkdir(filepath.Join(tmpDir, ".git"), 0755); err != nil {
		t.Fatalf("Failed to create .git dir: %v", err)
	}
	if result := findGitRoot(tmpDir); result != tmpDir {
		t.Errorf("findGitRoot() should return %q, got %q", tmpDir, result)
	}

	subDir := filepath.Join(tmpDir, "src", "main")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatalf("Failed to create subdir: %v", err)
	}
	if result := findGitRoot(subDir); result != tmpDir {
		t.Errorf("findGitRoot() from subdir should return %q, got %q", tmpDir, result)
	}
}

func TestScanDirWithUnresolvableSymlink(t *testing.T) {
	tmpDir := t.TempDir()

	if err := os.Symlink("/nonexistent/path/Gone.java", filepath.Join(tmpDir, "Dangling.java")); err != nil {
		t.Skip("Symlinks not supported on this system")
	}
	createFiles(t, tmpDir, map[string]string{"Real.java": "class Real {}\n"})

	s := NewScanner(nil)
	result, err := s.ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}

	assertNames(t, relNames(t, tmpDir, result), []string{"Real.java"})
}

func TestScanDirWithSymlinkOutsideRoot(t *testing.T) {
	tmpDir := t.TempDir()
	outside := t.TempDir()
	createFiles(t, outside, map[string]string{"Outside.java": "class Outside {}\n"})
	createFiles(t, tmpDir, map[string]string{"real/Real.java": "class Real {}\n"})

	if err := os.Symlink(filepath.Join(outside, "Outside.java"), filepath.Join(tmpDir, "Linked.java")); err != nil {
		t.Skip("Symlinks not supported on this system")
	}

	s := NewScanner(nil)
	result, err := s.ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}

	assertNames(t, relNames(t, tmpDir, result), []string{"real/Real.java"})
}
