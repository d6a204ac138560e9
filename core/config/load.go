package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// Load loads the configuration from the directory.
func Load(fs afero.Fs, path string) (*Configuration, error) {
	// If given the path to a config.yaml file, move back up a level.
	if filepath.Base(path) == ConfigurationName {
		path = filepath.Dir(path)
	}

	configContents, err := afero.ReadFile(fs, filepath.Join(path, ConfigurationName))
	if err != nil {
		return nil, err
	}
	var out Configuration
	if err := yaml.UnmarshalStrict(configContents, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", ConfigurationName, err)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ConfigurationName, err)
	}
	out.configFs = afero.NewBasePathFs(fs, path)
	return &out, nil
}

// Initialize writes the default configuration into dir unless one is already
// there.
func Initialize(fs afero.Fs, dir string, logger *log.Logger) error {
	if err := fs.MkdirAll(dir, 0700); err != nil {
		return err
	}

	target := filepath.Join(dir, ConfigurationName)
	switch _, err := fs.Stat(target); {
	case err == nil:
		logger.Printf("Keeping existing %s\n", target)
		return nil
	case !os.IsNotExist(err):
		return err
	}

	logger.Printf("Writing %s\n", target)
	return afero.WriteFile(fs, target, defaultConfigData, 0600)
}
