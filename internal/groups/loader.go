// internal/groups/loader.go
package groups

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Definition is a system group as declared in a YAML file.
type Definition struct {
	ID          string   `yaml:"id" validate:"required,max=64"`
	Name        string   `yaml:"name" validate:"required,max=255"`
	Description string   `yaml:"description" validate:"max=500"`
	Repos       []string `yaml:"repos" validate:"required,min=1"`
}

var validate = validator.New()

// LoadDir reads every *.yml then *.yaml file in dir, each sorted by name.
// Files that fail to parse or validate are logged and skipped. A missing
// directory yields no definitions.
func LoadDir(dir string, logger *slog.Logger) ([]Definition, error) {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Group directory does not exist", "dir", dir)
		return nil, nil
	}

	var files []string
	for _, pattern := range []string{"*.yml", "*.yaml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)
		files = append(files, matches...)
	}

	defs := make([]Definition, 0, len(files))
	for _, file := range files {
		def, err := loadFile(file)
		if err != nil {
			logger.Error("Skipping invalid group file", "file", file, "error", err)
			continue
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func loadFile(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, err
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return Definition{}, fmt.Errorf("parse yaml: %w", err)
	}
	if err := validate.Struct(def); err != nil {
		return Definition{}, err
	}
	repos, err := NormalizeRepos(def.Repos)
	if err != nil {
		return Definition{}, err
	}
	def.Repos = repos
	return def, nil
}
