package deploy

import (
	"errors"
	"fmt"
)

// Environment is a named deployment environment.
type Environment string

const (
	Dev     Environment = "dev"
	Test    Environment = "test"
	Staging Environment = "staging"
	Prod    Environment = "prod"
)

var ErrUnknownEnvironment = errors.New("unknown environment")

// ParseEnvironment parses the --env flag value.
func ParseEnvironment(s string) (Environment, error) {
	switch e := Environment(s); e {
	case Dev, Test, Staging, Prod:
		return e, nil
	default:
		return "", fmt.Errorf("%w: %s (want dev|test|staging|prod)", ErrUnknownEnvironment, s)
	}
}

// DefaultImageVersion is used when --version is not passed.
const DefaultImageVersion = "latest"

// DefaultNamespace is used when --namespace is not passed.
const DefaultNamespace = "mlops"

var ErrEmptyNamespace = errors.New("namespace must not be empty")

// Request tells the orchestrator what to roll out, and where.
type Request struct {
	Environment Environment

	// image tag substituted for the manifest placeholder.
	ImageVersion string

	Namespace string
}

// WithDefaults fills unset fields.
func (r Request) WithDefaults() Request {
	if r.ImageVersion == "" {
		r.ImageVersion = DefaultImageVersion
	}
	if r.Namespace == "" {
		r.Namespace = DefaultNamespace
	}
	return r
}

func (r Request) Validate() error {
	if _, err := ParseEnvironment(string(r.Environment)); err != nil {
		return err
	}
	if r.Namespace == "" {
		return ErrEmptyNamespace
	}
	return nil
}

// Target is one managed service whose rollout the orchestrator awaits.
type Target struct {
	// name of the Deployment to wait on.
	Deployment string `yaml:"deployment"`

	// name of the Service fronting it. Informational; may be empty.
	Service string `yaml:"service"`
}

// DefaultTargets are the serving API and the experiment tracking server.
func DefaultTargets() []Target {
	return []Target{
		{Deployment: "mlops-app", Service: "mlops-app"},
		{Deployment: "mlflow", Service: "mlflow"},
	}
}

// Outcome is the per-resource result of a deployment run.
type Outcome struct {
	Kind  string
	Name  string
	Ready bool
	Err   error
}

func (o Outcome) String() string {
	if o.Err != nil {
		return fmt.Sprintf("%s/%s: %v", o.Kind, o.Name, o.Err)
	}
	if !o.Ready {
		return fmt.Sprintf("%s/%s: applied", o.Kind, o.Name)
	}
	return fmt.Sprintf("%s/%s: ready", o.Kind, o.Name)
}
