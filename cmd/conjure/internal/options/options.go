// Package options holds the generator flags shared by the gen and check
// commands.
package options

import (
	"github.com/broady/conjure/conjuregen"
)

type Options struct {
	Config string `help:"YAML or TOML config file. Flags override its values." short:"c" type:"existingfile"`

	ModulePrefix       string            `help:"Go import path of the output directory."`
	StripPackagePrefix string            `help:"Conjure package prefix removed before mapping packages to directories."`
	SinglePackage      bool              `help:"Emit every definition into one Go package."`
	Module             string            `help:"Write a go.mod declaring this module path."`
	ProjectName        string            `help:"Project name recorded in the manifest."`
	ProjectVersion     string            `help:"Project version recorded in the manifest."`
	ExternalType       map[string]string `help:"Map an external type to a Go type (java.time.Instant=time.Time)." mapsep:","`
	NoComments         bool              `help:"Drop IDL documentation from the output."`
	MaxIDLSize         string            `help:"Largest accepted IR document (e.g. 64MiB)." name:"max-idl-size"`
	RuntimeImportPath  string            `help:"Import path of the runtime library."`
}

// Load reads the config file, if any, and applies the positional arguments
// and flags over it.
func (o *Options) Load(idl, out string) (conjuregen.Config, error) {
	var cfg conjuregen.Config
	if o.Config != "" {
		loaded, err := conjuregen.LoadConfig(o.Config)
		if err != nil {
			return cfg, err
		}
		cfg = *loaded
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.IDLPath, idl)
	set(&cfg.OutDir, out)
	set(&cfg.ModulePrefix, o.ModulePrefix)
	set(&cfg.StripPackagePrefix, o.StripPackagePrefix)
	set(&cfg.Module, o.Module)
	set(&cfg.ProjectName, o.ProjectName)
	set(&cfg.ProjectVersion, o.ProjectVersion)
	set(&cfg.MaxIDLSize, o.MaxIDLSize)
	set(&cfg.RuntimeImportPath, o.RuntimeImportPath)

	if o.SinglePackage {
		cfg.SinglePackage = true
	}
	if o.NoComments {
		emit := false
		cfg.EmitComments = &emit
	}
	if len(o.ExternalType) > 0 {
		merged := make(map[string]string, len(cfg.ExternalTypes)+len(o.ExternalType))
		for k, v := range cfg.ExternalTypes {
			merged[k] = v
		}
		for k, v := range o.ExternalType {
			merged[k] = v
		}
		cfg.ExternalTypes = merged
	}
	return cfg, nil
}
