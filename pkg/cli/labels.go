package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
)

// LoadLabels loads class labels from a file. YAML and JSON files hold a
// list of strings; any other file holds one label per line, with blank
// lines ignored.
func LoadLabels(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}
	labels, err := ParseLabels(data, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return labels, nil
}

// ParseLabels parses labels data based on file extension
func ParseLabels(data []byte, filename string) ([]string, error) {
	var labels []string
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &labels); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &labels); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		sc := bufio.NewScanner(bytes.NewReader(data))
		for sc.Scan() {
			if l := strings.TrimSpace(sc.Text()); l != "" {
				labels = append(labels, l)
			}
		}
		if err := sc.Err(); err != nil {
			return nil, err
		}
	}
	if len(labels) == 0 {
		return nil, errors.New("no labels")
	}
	return labels, nil
}
