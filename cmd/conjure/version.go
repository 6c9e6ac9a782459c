package main

import (
	_ "embed"
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/broady/conjure/conjuregen"
)

//go:embed VERSION
var embeddedVersion string

type VersionCmd struct {
	Short bool `help:"Print only the generator version." short:"s"`
}

func (c *VersionCmd) Run() error {
	fmt.Println(versionString(c.Short, Version(debug.ReadBuildInfo)))
	return nil
}

func versionString(short bool, version string) string {
	if short {
		return version
	}
	return fmt.Sprintf("conjure %s\nruntime %s\n%s %s/%s",
		version, conjuregen.RuntimeVersion, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Version reports the generator version. Released builds report their
// module version; anything else is "devel-<VERSION>[+<rev>]".
func Version(buildInfo func() (*debug.BuildInfo, bool)) string {
	base := strings.TrimSpace(embeddedVersion)
	if v, err := semver.NewVersion(base); err == nil {
		base = v.String()
	}

	info, ok := buildInfo()
	if !ok {
		return "devel-" + base
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return "devel-" + base + "+" + s.Value[:7]
		}
	}
	return "devel-" + base
}
