package config

import "gopkg.in/yaml.v3"

// Weavefile represents the structure of the weave.yaml manifest.
type Weavefile struct {
	Version  string      `yaml:"version"`
	Settings SettingsDTO `yaml:"settings"`
	Modules  []ModuleDTO `yaml:"modules"`
}

// SettingsDTO holds container options. Unset fields keep their defaults.
type SettingsDTO struct {
	DefaultScope         string `yaml:"defaultScope"`
	LogLevel             string `yaml:"logLevel"`
	AutobindClasses      *bool  `yaml:"autobindClasses"`
	ExcludeGlobalContext *bool  `yaml:"excludeGlobalContext"`
}

// ModuleDTO represents a named group of bindings.
type ModuleDTO struct {
	Name     string       `yaml:"name"`
	URL      string       `yaml:"url"`
	Bindings []BindingDTO `yaml:"bindings"`
}

// BindingDTO represents one binding. Constant is a node so that an explicit
// null can be told apart from a missing key.
type BindingDTO struct {
	Token     string         `yaml:"token"`
	Scope     string         `yaml:"scope"`
	Constant  yaml.Node      `yaml:"constant"`
	Template  string         `yaml:"template"`
	DependsOn []string       `yaml:"dependsOn"`
	Metadata  map[string]any `yaml:"metadata"`
}
