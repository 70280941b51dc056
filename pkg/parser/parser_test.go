package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const helloJava = "class Hello {\n    void greet() {\n        System.out.println(\"hi\");\n    }\n}\n"

func TestNew(t *testing.T) {
	p := New()
	if p == nil {
		t.Fatal("New() returned nil")
	}
	if p.parser == nil {
		t.Error("parser field is nil")
	}
	p.Close()
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		{"Main.java", LangJava},
		{"src/main/java/com/acme/Service.java", LangJava},
		{"MAIN.JAVA", LangJava},
		{"main.go", LangUnknown},
		{"Main.kt", LangUnknown},
		{"Main.class", LangUnknown},
		{"file", LangUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := DetectLanguage(tt.path)
			if got != tt.want {
				t.Errorf("DetectLanguage(%q) = %v, want %v", tt.path, got, tt.want)
			}
			if IsSupported(tt.path) != (tt.want != LangUnknown) {
				t.Errorf("IsSupported(%q) disagrees with DetectLanguage", tt.path)
			}
		})
	}
}

func TestGetTreeSitterLanguage(t *testing.T) {
	tsLang, err := GetTreeSitterLanguage(LangJava)
	if err != nil {
		t.Fatalf("GetTreeSitterLanguage(java) returned error: %v", err)
	}
	if tsLang == nil {
		t.Fatal("GetTreeSitterLanguage(java) returned nil")
	}

	_, err = GetTreeSitterLanguage(LangUnknown)
	if !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("GetTreeSitterLanguage(unknown) error = %v, want ErrUnsupportedLanguage", err)
	}
}

func TestParse(t *testing.T) {
	p := New()
	defer p.Close()

	result, err := p.Parse([]byte(helloJava), LangJava, "Hello.java")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if result.Tree == nil {
		t.Fatal("result.Tree is nil")
	}
	if result.Language != LangJava {
		t.Errorf("result.Language = %v, want %v", result.Language, LangJava)
	}
	if string(result.Source) != helloJava {
		t.Error("result.Source doesn't match input")
	}
	if result.Path != "Hello.java" {
		t.Errorf("result.Path = %v, want Hello.java", result.Path)
	}

	root := result.Tree.RootNode()
	if root.Type() != "program" {
		t.Errorf("root type = %q, want program", root.Type())
	}
}

func TestParseFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "Hello.java")
	if err := os.WriteFile(path, []byte(helloJava), 0644); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	p := New()
	defer p.Close()

	result, err := p.ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error: %v", err)
	}
	if result.Language != LangJava {
		t.Errorf("result.Language = %v, want %v", result.Language, LangJava)
	}
	if result.Path != path {
		t.Errorf("result.Path = %v, want %v", result.Path, path)
	}
}

func TestParseFileErrors(t *testing.T) {
	p := New()
	defer p.Close()

	_, err := p.ParseFile("/nonexistent/path/Missing.java")
	if err == nil {
		t.Error("ParseFile() should return error for non-existent file")
	}

	tmpDir := t.TempDir()
	txtFile := filepath.Join(tmpDir, "notes.txt")
	if err := os.WriteFile(txtFile, []byte("hello"), 0644); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	_, err = p.ParseFile(txtFile)
	if !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("ParseFile(notes.txt) error = %v, want ErrUnsupportedLanguage", err)
	}
}

func TestGetNodeText(t *testing.T) {
	p := New()
	defer p.Close()

	result, err := p.Parse([]byte(helloJava), LangJava, "Hello.java")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	class := result.Tree.RootNode().NamedChild(0)
	if class == nil || class.Type() != "class_declaration" {
		t.Fatalf("first declaration = %v, want class_declaration", class)
	}
	method := class.ChildByFieldName("body").NamedChild(0)
	if method == nil || method.Type() != "method_declaration" {
		t.Fatalf("first member = %v, want method_declaration", method)
	}

	name := GetNodeText(method.ChildByFieldName("name"), result.Source)
	if name != "greet" {
		t.Errorf("GetNodeText(name) = %q, want %q", name, "greet")
	}

	if GetNodeText(nil, result.Source) != "" {
		t.Error("GetNodeText(nil) should be empty")
	}
}
