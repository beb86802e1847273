// Package env loads the mlopsenv file: per-checkout deployment settings.
package env

import (
	"os"
	"time"

	"github.com/mlopslab/mlopsctl/pkg/deploy"
	"github.com/mlopslab/mlopsctl/pkg/manifest"
	"gopkg.in/yaml.v3"
)

// DeployEnv is the content of an mlopsenv file.
//
// Every field is optional; zero values fall back to the built-in defaults.
type DeployEnv struct {
	// namespace to deploy into.
	Namespace string `yaml:"namespace"`

	// directory holding the manifest templates.
	ManifestDir string `yaml:"manifestDir"`

	// manifest files which must exist before deploying.
	Require []string `yaml:"require"`

	// deployments whose rollout is awaited.
	Targets []deploy.Target `yaml:"targets"`

	// rollout timeout, in seconds.
	TimeoutSeconds int `yaml:"timeoutSeconds"`
}

func New() *DeployEnv {
	return new(DeployEnv)
}

// LoadDeployEnv reads an mlopsenv file.
//
// A missing file is not an error; it yields the zero DeployEnv.
func LoadDeployEnv(filepath string) (*DeployEnv, error) {
	env := DeployEnv{}

	content, err := os.ReadFile(filepath)
	if err != nil {
		return &env, nil
	}

	if err := yaml.Unmarshal(content, &env); err != nil {
		return nil, err
	}

	return &env, nil
}

func (e *DeployEnv) NamespaceOrDefault() string {
	if e.Namespace == "" {
		return deploy.DefaultNamespace
	}
	return e.Namespace
}

func (e *DeployEnv) ManifestDirOrDefault() string {
	if e.ManifestDir == "" {
		return manifest.DefaultDir
	}
	return e.ManifestDir
}

func (e *DeployEnv) RequireOrDefault() []string {
	if len(e.Require) == 0 {
		return manifest.DefaultRequired
	}
	return e.Require
}

func (e *DeployEnv) TargetsOrDefault() []deploy.Target {
	if len(e.Targets) == 0 {
		return deploy.DefaultTargets()
	}
	return e.Targets
}

func (e *DeployEnv) TimeoutOrDefault() time.Duration {
	if e.TimeoutSeconds <= 0 {
		return deploy.DefaultRolloutTimeout
	}
	return time.Duration(e.TimeoutSeconds) * time.Second
}
