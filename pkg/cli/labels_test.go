package cli

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestParseLabels(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
		want []string
	}{
		{"text", "labels.txt", "_silence_\n_unknown_\n\nyes\n  no  \n", []string{"_silence_", "_unknown_", "yes", "no"}},
		{"no extension", "labels", "a\r\nb\r\n", []string{"a", "b"}},
		{"yaml", "labels.yaml", "- yes\n- no\n", []string{"yes", "no"}},
		{"json", "labels.json", `["up","down"]`, []string{"up", "down"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLabels([]byte(tt.data), tt.file)
			if err != nil {
				t.Fatalf("ParseLabels: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("ParseLabels = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseLabelsErrors(t *testing.T) {
	if _, err := ParseLabels([]byte("\n\n"), "labels.txt"); err == nil {
		t.Error("expected error for empty labels")
	}
	if _, err := ParseLabels([]byte("{"), "labels.json"); err == nil {
		t.Error("expected error for bad JSON")
	}
}

func TestLoadLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.txt")
	if err := os.WriteFile(path, []byte("yes\nno\n"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := LoadLabels(path)
	if err != nil || !slices.Equal(got, []string{"yes", "no"}) {
		t.Fatalf("LoadLabels = %q, %v", got, err)
	}
	if _, err := LoadLabels(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}
