// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package userconf loads user configuration files for overlaying onto a
// parse result. TOML and YAML are supported, picked by file extension.
package userconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/jchip/nix-clap-sub000/pkg/nixclap"
)

// Load reads one config file into a flat key to value map.
func Load(path string) (map[string]any, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		var cfg map[string]any
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return cfg, nil
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var cfg map[string]any
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return cfg, nil
	}
	return nil, fmt.Errorf("unsupported config format: %s", path)
}

// Find walks from startDir toward the filesystem root looking for a config
// file with the given base name and one of the supported extensions. It
// returns os.ErrNotExist when no directory on the way up has one.
func Find(startDir, baseName string) (string, error) {
	exts := []string{".toml", ".yaml", ".yml"}
	dir := filepath.Clean(startDir)
	for {
		for _, ext := range exts {
			path := filepath.Join(dir, baseName+ext)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			} else if !os.IsNotExist(err) {
				return "", err
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

// Apply loads the config file at path and overlays it onto the result with
// source "user". Values already set on the command line stay untouched.
func Apply(res *nixclap.Result, path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	res.ApplyConfig(cfg)
	return nil
}
