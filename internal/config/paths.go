package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths holds the resolved, absolute file system locations used by the application
type Paths struct {
	BaseDir     string
	DataDir     string
	ExportsDir  string
	LogsDir     string
	DatasetFile string
	LogFile     string
}

// resolvePaths makes every configured path absolute against BaseDir.
func (c *Config) resolvePaths() error {
	base := c.Paths.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %v", err)
		}
		base = wd
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return fmt.Errorf("failed to resolve base directory: %v", err)
	}
	c.Paths.BaseDir = base
	c.Paths.DataDir = resolve(base, c.Paths.DataDir)
	c.Paths.ExportsDir = resolve(base, c.Paths.ExportsDir)
	c.Paths.LogsDir = resolve(base, c.Paths.LogsDir)
	c.Dataset.File = resolve(base, c.Dataset.File)
	if c.Logging.FilePath != "" {
		c.Logging.FilePath = resolve(base, c.Logging.FilePath)
	}
	return nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// GetPaths returns the resolved paths of the configuration
func (c *Config) GetPaths() *Paths {
	return &Paths{
		BaseDir:     c.Paths.BaseDir,
		DataDir:     c.Paths.DataDir,
		ExportsDir:  c.Paths.ExportsDir,
		LogsDir:     c.Paths.LogsDir,
		DatasetFile: c.Dataset.File,
		LogFile:     c.Logging.FilePath,
	}
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.ExportsDir,
		p.LogsDir,
	}

	logger := slog.Default()

	for _, dir := range directories {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
		logger.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// LogPathResolution logs the resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("data", p.DataDir),
			slog.String("exports", p.ExportsDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("files",
			slog.String("dataset", p.DatasetFile),
			slog.String("log", p.LogFile),
		))
}
