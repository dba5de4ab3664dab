package ruleset

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed defaults
var defaults embed.FS

const defaultsRoot = "defaults"

// WriteDefaults copies the bundled rulesets into dir, preserving the functions/
// layout Spectral expects. Existing files are left alone unless force is set.
// It returns the paths that were written.
func WriteDefaults(dir string, force bool) ([]string, error) {
	var written []string

	err := fs.WalkDir(defaults, defaultsRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(defaultsRoot, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dir, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}

		if !force {
			if _, err := os.Stat(target); err == nil {
				return nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return err
			}
		}

		data, err := defaults.ReadFile(path)
		if err != nil {
			return err
		}
		if err := os.WriteFile(target, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
		written = append(written, target)
		return nil
	})
	if err != nil {
		return written, fmt.Errorf("failed to write default rulesets: %w", err)
	}

	return written, nil
}
