package cli

import (
	"os"
	"path/filepath"
)

const (
	// DefaultBaseDir is the per-user directory under $HOME.
	DefaultBaseDir = ".kws"

	// DefaultConfigFile is the pipeline config file name in the base dir.
	DefaultConfigFile = "config.yaml"
)

// Paths provides access to the ~/.kws directory structure
type Paths struct {
	// HomeDir is the user's home directory
	HomeDir string
}

// NewPaths creates a Paths rooted at the user's home directory
func NewPaths() (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Paths{HomeDir: home}, nil
}

// BaseDir returns the base directory (~/.kws)
func (p *Paths) BaseDir() string {
	return filepath.Join(p.HomeDir, DefaultBaseDir)
}

// ConfigFile returns the default pipeline config path (~/.kws/config.yaml)
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.BaseDir(), DefaultConfigFile)
}

// ResultsDir returns the result store directory (~/.kws/results)
func (p *Paths) ResultsDir() string {
	return filepath.Join(p.BaseDir(), "results")
}

// EnsureResultsDir creates the result store directory if it doesn't exist
func (p *Paths) EnsureResultsDir() error {
	return os.MkdirAll(p.ResultsDir(), 0755)
}

// ConfigFileIfExists returns ConfigFile if it exists, or "".
func (p *Paths) ConfigFileIfExists() string {
	f := p.ConfigFile()
	if _, err := os.Stat(f); err != nil {
		return ""
	}
	return f
}
