package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"lorax/internal/diag"
	"lorax/internal/dialect/x86"
)

const manifestName = "lorax.toml"

type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Package   packageConfig   `toml:"package"`
	Build     buildConfig     `toml:"build"`
	Toolchain toolchainConfig `toml:"toolchain"`
}

type packageConfig struct {
	Name string `toml:"name"`
}

type buildConfig struct {
	Sources           []string `toml:"sources"`
	Output            string   `toml:"output"`
	Passes            []string `toml:"passes"`
	Jobs              int      `toml:"jobs"`
	KeepIntermediates bool     `toml:"keep_intermediates"`
	// nil means the default (enabled) for both
	Cache  *bool `toml:"cache"`
	Verify *bool `toml:"verify"`
}

type toolchainConfig struct {
	CC string `toml:"cc"`
}

func manifestError(code diag.Code, path, msg string) error {
	return diag.WithCode(code, fmt.Errorf("%s: %s", path, msg))
}

func findManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, manifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	manifestPath, ok, err := findManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := loadProjectConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &projectManifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

func loadProjectConfig(path string) (projectConfig, error) {
	var cfg projectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return projectConfig{}, manifestError(diag.ProjInvalidManifest, path, "failed to parse TOML: " + err.Error())
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return projectConfig{}, manifestError(diag.ProjInvalidManifest, path, "missing [package].name")
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return projectConfig{}, manifestError(diag.ProjInvalidManifest, path, "unknown key " + undecoded[0].String())
	}
	if _, err := x86.Pipeline(cfg.Build.Passes...); err != nil {
		return projectConfig{}, manifestError(diag.ProjInvalidManifest, path, "[build].passes: " + err.Error())
	}
	if cfg.Build.Jobs < 0 {
		return projectConfig{}, manifestError(diag.ProjInvalidManifest, path, "[build].jobs must not be negative")
	}
	return cfg, nil
}

// sources resolves [build].sources against the manifest directory.
func (m *projectManifest) sources() ([]string, error) {
	if len(m.Config.Build.Sources) == 0 {
		return nil, manifestError(diag.ProjNoSources, m.Path, "[build].sources is empty")
	}
	out := make([]string, 0, len(m.Config.Build.Sources))
	for _, s := range m.Config.Build.Sources {
		out = append(out, filepath.Join(m.Root, filepath.FromSlash(s)))
	}
	return out, nil
}

func (c buildConfig) cacheEnabled() bool  { return c.Cache == nil || *c.Cache }
func (c buildConfig) verifyEnabled() bool { return c.Verify == nil || *c.Verify }
