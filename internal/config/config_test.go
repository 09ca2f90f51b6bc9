package config

import "testing"

func TestDefaultValues(t *testing.T) {
	c := Default()
	if c.MaxRecursionDepth != 500 || c.ReplHistorySize != 500 || c.UseFakeLibraries {
		t.Fatalf("unexpected defaults: %+v", c)
	}
}

func TestLoadValidDocument(t *testing.T) {
	doc := []byte(`
max_recursion_depth: 200
repl_history_size: 50
use_fake_libraries: true
asset_manifest_url: "https://example.invalid/manifest.json"
`)
	c, err := Load(doc)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.MaxRecursionDepth != 200 {
		t.Fatalf("got %d, want 200", c.MaxRecursionDepth)
	}
	if !c.UseFakeLibraries {
		t.Fatal("expected use_fake_libraries to be true")
	}
	if c.AssetManifestURL != "https://example.invalid/manifest.json" {
		t.Fatalf("got %q", c.AssetManifestURL)
	}
}

func TestLoadRejectsUnknownField(t *testing.T) {
	doc := []byte(`totally_unknown_field: true`)
	if _, err := Load(doc); err == nil {
		t.Fatal("expected a schema validation error for an unknown field")
	}
}

func TestLoadRejectsOutOfRangeValue(t *testing.T) {
	doc := []byte(`max_recursion_depth: -5`)
	if _, err := Load(doc); err == nil {
		t.Fatal("expected a schema validation error for a negative recursion depth")
	}
}

func TestLoadEmptyObjectDocument(t *testing.T) {
	c, err := Load([]byte(`{}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.MaxRecursionDepth != 0 {
		t.Fatalf("got %d, want zero value for an omitted field", c.MaxRecursionDepth)
	}
}
