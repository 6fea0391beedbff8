package main

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/lumenscript/lumen"
)

// hostConfig is the embedder's own configuration, loaded from an optional
// YAML file. It has nothing to do with the engine's scripting language; it
// only decides which builtin groups this particular host wires in and
// where `import` should resolve relative paths against — grounded on
// adest-aes-scripts/go-tools/cmd/devshell's YAML-backed config loading.
type hostConfig struct {
	ImportRoot string   `yaml:"import_root"`
	Builtins   []string `yaml:"builtins"`
}

func defaultConfig() hostConfig {
	return hostConfig{ImportRoot: ".", Builtins: []string{"math", "strings"}}
}

func loadConfig(path string) (hostConfig, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// rootedSourceReader resolves `import` path strings relative to the host
// config's import_root rather than the process's working directory.
type rootedSourceReader struct{ root string }

func (r rootedSourceReader) ReadSource(path string) (string, error) {
	b, err := os.ReadFile(filepath.Join(r.root, path))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

var _ lumen.SourceReader = rootedSourceReader{}
