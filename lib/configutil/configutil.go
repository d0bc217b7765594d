package configutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// localName returns the override file for name, "config.json5" becomes
// "config.local.json5".
func localName(name string) string {
	ext := filepath.Ext(name)
	return fmt.Sprintf("%s.local%s", strings.TrimSuffix(name, ext), ext)
}

// readFile decodes a json5 file into out, found is false if the file does
// not exist or is empty.
func readFile[T any](path string, out *T) (found bool, err error) {
	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(contents) == 0 {
		return false, nil
	}
	err = json5.Unmarshal(contents, out)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

// ReadConfig reads a json5 configuration file, `name` should come with a
// file extension. The following files are merged, later ones take
// priority over earlier ones:
// 1. <name>.<ext>
// 2. <name>.local.<ext>
//
// If neither exists os.ErrNotExist is returned.
func ReadConfig[T any](name string) (T, error) {
	var out T

	found, err := readFile(name, &out)
	if err != nil {
		return out, err
	}

	local := localName(name)
	var override T
	foundLocal, err := readFile(local, &override)
	if err != nil {
		return out, err
	}
	if foundLocal {
		err = mergo.Merge(&out, override, mergo.WithOverride)
		if err != nil {
			return out, err
		}
		slog.Debug("merging config with local overrides", "local", local)
	}

	if !found && !foundLocal {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ReadConfigWithDefaults is ReadConfig layered on top of defaults. Zero
// values in the files never clear a default. Missing files are not an
// error, defaults are returned as-is.
func ReadConfigWithDefaults[T any](name string, defaults T) (T, error) {
	config, err := ReadConfig[T](name)
	if os.IsNotExist(err) {
		return defaults, nil
	}
	if err != nil {
		return defaults, err
	}

	out := defaults
	err = mergo.Merge(&out, config, mergo.WithOverride)
	if err != nil {
		return defaults, err
	}
	return out, nil
}

// ReadRecursively is ReadConfig but it walks up from the working
// directory to the filesystem root until a file matching name is found.
func ReadRecursively[T any](name string) (T, error) {
	var defaultOut T

	current, err := os.Getwd()
	if err != nil {
		return defaultOut, err
	}

	for {
		config, err := ReadConfig[T](filepath.Join(current, name))
		if err == nil {
			return config, nil
		}
		if !os.IsNotExist(err) {
			return defaultOut, err
		}

		parent := filepath.Dir(current)
		if parent == current {
			return defaultOut, os.ErrNotExist
		}
		current = parent
	}
}
