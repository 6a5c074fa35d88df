package internal

import (
	"fmt"
	"os"
	"runtime"

	"github.com/g2-project/g2/pkg/config"
	"github.com/g2-project/g2/pkg/skills"
)

const Logo = "\U0001F6E0" // 🛠

var (
	version   = "dev"
	gitCommit string
	buildTime string
	goVersion string
)

// ProjectRoot resolves the project root every command operates on: the
// current working directory, unless G2_PROJECT_ROOT overrides it.
func ProjectRoot() (string, error) {
	if root := os.Getenv("G2_PROJECT_ROOT"); root != "" {
		return root, nil
	}
	return os.Getwd()
}

// LoadConfig loads the engine's runtime configuration from G2_* env vars.
func LoadConfig() (config.Config, error) {
	return config.Load()
}

// NewEngine builds the skills.Engine this process operates against.
func NewEngine() (*skills.Engine, error) {
	root, err := ProjectRoot()
	if err != nil {
		return nil, err
	}
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return skills.New(root, cfg), nil
}

// FormatVersion returns the version string with optional git commit.
func FormatVersion() string {
	v := version
	if gitCommit != "" {
		v += fmt.Sprintf(" (git: %s)", gitCommit)
	}
	return v
}

// FormatBuildInfo returns build time and go version info.
func FormatBuildInfo() (string, string) {
	build := buildTime
	goVer := goVersion
	if goVer == "" {
		goVer = runtime.Version()
	}
	return build, goVer
}

// GetVersion returns the version string.
func GetVersion() string {
	return version
}
