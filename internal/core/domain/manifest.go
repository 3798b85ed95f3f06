package domain

// Manifest is a declarative description of a container: its settings and the
// modules of bindings to load into it.
type Manifest struct {
	Settings ManifestSettings
	Modules  []ManifestModule
}

// ManifestSettings are the container options of a manifest.
type ManifestSettings struct {
	DefaultScope         Scope
	LogLevel             LogLevel
	AutobindClasses      bool
	ExcludeGlobalContext bool
}

// ManifestModule groups bindings under one module.
type ManifestModule struct {
	Info     ModuleInfo
	Bindings []ManifestBinding
}

// ManifestBinding declares one binding. Exactly one of Constant and Template is set;
// a template is rendered with the resolved DependsOn values, keyed by token name.
type ManifestBinding struct {
	Token     string
	Scope     Scope
	Constant  any
	Template  string
	DependsOn []string
	Metadata  Metadata
}
