// Package compileinfo reports which build of a tool produced a file, so that
// calibrations can be traced back to the code that computed them.
package compileinfo

import (
	"fmt"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
)

type CompileInfo struct {
	Package    string
	Version    string
	GoVersion  string
	Commit     string
	CommitTime string
	Modified   bool
}

func (c CompileInfo) String() string {
	mod := ""
	if c.Modified {
		mod = " (modified)"
	}

	return fmt.Sprintf("%s %s, %s, commit %v at %v%s", c.Package, c.Version, c.GoVersion, c.Commit, c.CommitTime, mod)
}

// Fields lays the build information out for structured logging.
func (c CompileInfo) Fields() log.Fields {
	return log.Fields{
		"package":     c.Package,
		"version":     c.Version,
		"go":          c.GoVersion,
		"commit":      c.Commit,
		"commit_time": c.CommitTime,
		"modified":    c.Modified,
	}
}

func Get() CompileInfo {
	z, ok := debug.ReadBuildInfo()
	if !ok {
		return CompileInfo{}
	}

	return fromBuildInfo(z)
}

func fromBuildInfo(z *debug.BuildInfo) CompileInfo {
	out := CompileInfo{
		GoVersion: z.GoVersion,
		Package:   z.Path,
		Version:   z.Main.Version,
	}

	for _, s := range z.Settings {
		switch s.Key {
		case "vcs.revision":
			out.Commit = s.Value
		case "vcs.time":
			out.CommitTime = s.Value
		case "vcs.modified":
			out.Modified = s.Value == "true"
		}
	}

	return out
}

// Log writes the build information to the standard logger.
func Log() {
	log.WithFields(Get().Fields()).Infoln("Build")
}
