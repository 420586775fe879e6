package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".sightscan"

// LoadConfigFile parses the YAML file at path. A missing file yields
// ErrConfigNotFound; whether that is fatal depends on whether the user
// named the file explicitly.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // reading the user's config file is the point
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrConfigNotFound
	}
	if err != nil {
		return nil, err
	}

	file := &File{}
	if err := yaml.Unmarshal(data, file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return file, nil
}

// FindConfigFile returns the configuration file to load, or "" when there
// is none. An explicit configPath is used only if it exists. Otherwise
// .sightscan is looked up in the working directory, then the home directory.
func FindConfigFile(configPath string) string {
	candidates := []string{configPath}
	if configPath == "" {
		candidates = candidates[:0]
		if cwd, err := os.Getwd(); err == nil {
			candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
		}
		if home, err := os.UserHomeDir(); err == nil {
			candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
		}
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// LoadSeedList reads the seed list file at path. See ReadSeedList.
func LoadSeedList(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from --list
	if err != nil {
		return nil, fmt.Errorf("failed to open seed list: %w", err)
	}
	defer f.Close()

	seeds, err := ReadSeedList(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed list %s: %w", path, err)
	}
	return seeds, nil
}

// ReadSeedList reads seed URLs, one per line. Blank lines and lines
// starting with '#' are skipped.
//
// Design decision: We use bufio.Scanner; a seed list is a plain line
// format that no config library models.
func ReadSeedList(r io.Reader) ([]string, error) {
	var seeds []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		seeds = append(seeds, line)
	}
	return seeds, scanner.Err()
}
