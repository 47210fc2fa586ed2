package version

import (
	"fmt"
	"runtime"
)

var (
	Version             string = "0.1.0" // must follow SemVer (https://semver.org)
	GitCommit, GitState string // overwritten by the build system
	BuildDate           string // overwritten by the build system
)

type Info struct {
	Version   string `json:"version" yaml:"version"`
	GitCommit string `json:"git-commit" yaml:"git-commit"`
	GitState  string `json:"git-state" yaml:"git-state"`
	BuildDate string `json:"build-date" yaml:"build-date"`
	GoVersion string `json:"go-version" yaml:"go-version"`
}

func Get() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		GitState:  GitState,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}
}

func ToDetailVersion() string {
	return fmt.Sprintf("version=%s git=%s build=%s", Version, GitCommit, BuildDate)
}
