package scriptindex

import "testing"

func TestExtractLineCommentMetadata(t *testing.T) {
	src := []byte(`// Name: Resize Image
// Description: Resize the image on the clipboard
// Shortcut: cmd shift r
// Background: true

console.log("hi")
`)
	m := ExtractLineCommentMetadata(src)
	if m.Name != "Resize Image" {
		t.Errorf("Name = %q", m.Name)
	}
	if m.Description != "Resize the image on the clipboard" {
		t.Errorf("Description = %q", m.Description)
	}
	if m.Shortcut != "cmd shift r" {
		t.Errorf("Shortcut = %q", m.Shortcut)
	}
	if !m.Background {
		t.Error("Background = false, want true")
	}
}

func TestExtractLineCommentMetadataStopsAtFirstNonComment(t *testing.T) {
	src := []byte(`// Name: First
const x = 1
// Name: Second (should not be read, not a leading comment block)
`)
	m := ExtractLineCommentMetadata(src)
	if m.Name != "First" {
		t.Errorf("Name = %q, want %q", m.Name, "First")
	}
}

func TestExtractTypedMetadataBasic(t *testing.T) {
	src := []byte("// Name: Old Name\n\nmetadata = {\n  name: 'New Name',\n  description: \"typed wins\",\n  background: true,\n}\n\nawait arg()\n")
	m := ExtractMetadata(src)
	if m.Name != "New Name" {
		t.Errorf("Name = %q, want typed value", m.Name)
	}
	if m.Description != "typed wins" {
		t.Errorf("Description = %q", m.Description)
	}
	if !m.Background {
		t.Error("Background should be true from typed literal")
	}
}

func TestExtractTypedMetadataHandlesNestedBraces(t *testing.T) {
	src := []byte(`metadata = {
  name: "Nested",
  schema: { type: "object", properties: { q: { type: "string" } } },
}`)
	typed, ok := ExtractTypedMetadata(src)
	if !ok {
		t.Fatal("expected typed metadata to be found")
	}
	if typed.Name != "Nested" {
		t.Errorf("Name = %q", typed.Name)
	}
	if typed.Schema == nil {
		t.Fatal("expected schema to be parsed")
	}
}

func TestExtractTypedMetadataHandlesBacktickStrings(t *testing.T) {
	src := []byte("metadata = {\n  name: `Backtick Name`,\n}\n")
	typed, ok := ExtractTypedMetadata(src)
	if !ok {
		t.Fatal("expected typed metadata to be found")
	}
	if typed.Name != "Backtick Name" {
		t.Errorf("Name = %q", typed.Name)
	}
}

func TestExtractTypedMetadataAbsent(t *testing.T) {
	src := []byte("// Name: Only Comment\nconsole.log(1)\n")
	_, ok := ExtractTypedMetadata(src)
	if ok {
		t.Error("expected no typed metadata literal")
	}
	m := ExtractMetadata(src)
	if m.Name != "Only Comment" {
		t.Errorf("Name = %q, want fallback to line comment", m.Name)
	}
}

func TestExtractBalancedBracesIgnoresBracesInStrings(t *testing.T) {
	src := []byte(`{ "a": "{not a brace}", "b": 1 }`)
	got, ok := extractBalancedBraces(src)
	if !ok {
		t.Fatal("expected balanced braces to be found")
	}
	if got != string(src) {
		t.Errorf("got %q, want %q", got, string(src))
	}
}
