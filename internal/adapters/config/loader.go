// Package config loads weave manifests.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"text/template"

	"github.com/joho/godotenv"
	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/weave/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// DefaultFilename is the manifest looked up when none is given.
const DefaultFilename = "weave.yaml"

// Environment variables that override manifest settings.
const (
	EnvDefaultScope         = "WEAVE_DEFAULT_SCOPE"
	EnvLogLevel             = "WEAVE_LOG_LEVEL"
	EnvAutobind             = "WEAVE_AUTOBIND"
	EnvExcludeGlobalContext = "WEAVE_EXCLUDE_GLOBAL_CONTEXT"
)

// Loader implements ports.ManifestLoader for YAML files. Settings are overlaid
// by a .env file next to the manifest, then by the process environment.
type Loader struct {
	logger    ports.Logger
	lookupEnv func(string) (string, bool)
}

// NewLoader creates a Loader reading the process environment.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{logger: logger, lookupEnv: os.LookupEnv}
}

// WithLookupEnv replaces the process environment lookup.
func (l *Loader) WithLookupEnv(fn func(string) (string, bool)) *Loader {
	l.lookupEnv = fn
	return l
}

// Load reads the manifest at path.
func (l *Loader) Load(path string) (*domain.Manifest, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.With(fmt.Errorf("%w: %w", domain.ErrInvalidManifest, zerr.Wrap(err, "failed to read manifest")), "path", path)
	}

	var wf Weavefile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&wf); err != nil && !errors.Is(err, io.EOF) {
		return nil, zerr.With(fmt.Errorf("%w: %w", domain.ErrInvalidManifest, zerr.Wrap(err, "failed to parse manifest")), "path", path)
	}
	if wf.Version != "" && wf.Version != "1" {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidManifest, "unsupported manifest version"), "version", wf.Version)
	}

	env, err := l.environment(filepath.Join(filepath.Dir(path), ".env"))
	if err != nil {
		return nil, err
	}

	settings, err := buildSettings(wf.Settings, env)
	if err != nil {
		return nil, err
	}

	m := &domain.Manifest{Settings: settings}
	seen := make(map[string]bool)
	for _, dto := range wf.Modules {
		if dto.Name == "" {
			return nil, zerr.Wrap(domain.ErrInvalidManifest, "module name is required")
		}
		if seen[dto.Name] {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidManifest, "duplicate module"), "module", dto.Name)
		}
		seen[dto.Name] = true

		mod := domain.ManifestModule{Info: domain.ModuleInfo{Name: dto.Name, URL: dto.URL}}
		for _, b := range dto.Bindings {
			binding, err := buildBinding(b)
			if err != nil {
				return nil, zerr.With(err, "module", dto.Name)
			}
			mod.Bindings = append(mod.Bindings, binding)
		}
		m.Modules = append(m.Modules, mod)
	}

	if l.logger != nil {
		l.logger.Log(domain.LogLevelDebug, "manifest loaded", "path", path, "modules", len(m.Modules))
	}
	return m, nil
}

// environment merges the .env file at path, if any, with the process environment,
// which wins.
func (l *Loader) environment(path string) (map[string]string, error) {
	env := make(map[string]string)
	if _, err := os.Stat(path); err == nil {
		values, err := godotenv.Read(path)
		if err != nil {
			return nil, zerr.With(fmt.Errorf("%w: %w", domain.ErrInvalidManifest, zerr.Wrap(err, "failed to read env file")), "path", path)
		}
		env = values
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, zerr.Wrap(err, "failed to stat env file")
	}

	for _, key := range []string{EnvDefaultScope, EnvLogLevel, EnvAutobind, EnvExcludeGlobalContext} {
		if v, ok := l.lookupEnv(key); ok {
			env[key] = v
		}
	}
	return env, nil
}

func buildSettings(dto SettingsDTO, env map[string]string) (domain.ManifestSettings, error) {
	s := domain.ManifestSettings{
		DefaultScope: domain.ScopeTransient,
		LogLevel:     domain.LogLevelInfo,
	}

	scope := dto.DefaultScope
	if v, ok := env[EnvDefaultScope]; ok {
		scope = v
	}
	if scope != "" {
		parsed, err := domain.ParseScope(scope)
		if err != nil {
			return s, fmt.Errorf("%w: %w", domain.ErrInvalidManifest, err)
		}
		s.DefaultScope = parsed
	}

	level := dto.LogLevel
	if v, ok := env[EnvLogLevel]; ok {
		level = v
	}
	if level != "" {
		parsed, err := domain.ParseLogLevel(level)
		if err != nil {
			return s, fmt.Errorf("%w: %w", domain.ErrInvalidManifest, err)
		}
		s.LogLevel = parsed
	}

	var err error
	if s.AutobindClasses, err = boolSetting(dto.AutobindClasses, env, EnvAutobind); err != nil {
		return s, err
	}
	if s.ExcludeGlobalContext, err = boolSetting(dto.ExcludeGlobalContext, env, EnvExcludeGlobalContext); err != nil {
		return s, err
	}
	return s, nil
}

func boolSetting(value *bool, env map[string]string, key string) (bool, error) {
	if v, ok := env[key]; ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, zerr.With(zerr.Wrap(domain.ErrInvalidManifest, "invalid boolean"), key, v)
		}
		return b, nil
	}
	return value != nil && *value, nil
}

func buildBinding(dto BindingDTO) (domain.ManifestBinding, error) {
	b := domain.ManifestBinding{
		Token:     dto.Token,
		Template:  dto.Template,
		DependsOn: dto.DependsOn,
		Metadata:  domain.Metadata(dto.Metadata),
	}
	if dto.Token == "" {
		return b, zerr.Wrap(domain.ErrInvalidManifest, "binding token is required")
	}

	hasConstant := !dto.Constant.IsZero()
	switch {
	case hasConstant && dto.Template != "":
		return b, zerr.With(zerr.Wrap(domain.ErrInvalidManifest, "binding has both constant and template"), "token", dto.Token)
	case !hasConstant && dto.Template == "":
		return b, zerr.With(zerr.Wrap(domain.ErrInvalidManifest, "binding needs a constant or a template"), "token", dto.Token)
	case hasConstant:
		if len(dto.DependsOn) > 0 {
			return b, zerr.With(zerr.Wrap(domain.ErrInvalidManifest, "constant bindings cannot have dependencies"), "token", dto.Token)
		}
		if err := dto.Constant.Decode(&b.Constant); err != nil {
			return b, zerr.With(fmt.Errorf("%w: %w", domain.ErrInvalidManifest, err), "token", dto.Token)
		}
	default:
		if _, err := template.New(dto.Token).Option("missingkey=error").Parse(dto.Template); err != nil {
			return b, zerr.With(fmt.Errorf("%w: %w", domain.ErrInvalidManifest, err), "token", dto.Token)
		}
	}

	if dto.Scope != "" {
		scope, err := domain.ParseScope(dto.Scope)
		if err != nil {
			return b, zerr.With(fmt.Errorf("%w: %w", domain.ErrInvalidManifest, err), "token", dto.Token)
		}
		b.Scope = scope
	}
	return b, nil
}
