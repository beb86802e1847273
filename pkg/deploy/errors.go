package deploy

import (
	"errors"
	"fmt"
	"time"
)

// ErrRolloutTimeout is returned when a deployment does not become
// ready before the rollout timeout. The wrapping error names the
// stalled deployment.
var ErrRolloutTimeout = errors.New("rollout timed out")

func NewErrRolloutTimeout(deployment string, timeout time.Duration) error {
	return fmt.Errorf(
		"%w: deployment %s is not ready after %s", ErrRolloutTimeout, deployment, timeout,
	)
}

// ErrNamespaceCreate is returned when the target namespace does not
// exist and creating it fails.
var ErrNamespaceCreate = errors.New("failed to create namespace")

func NewErrNamespaceCreate(namespace string, cause error) error {
	return fmt.Errorf("%w %s: %w", ErrNamespaceCreate, namespace, cause)
}

// ErrUnsupportedKind is returned for manifest resources the
// orchestrator does not know how to apply.
var ErrUnsupportedKind = errors.New("unsupported manifest kind")

func NewErrUnsupportedKind(kind string, source string) error {
	return fmt.Errorf("%w: %s (in %s)", ErrUnsupportedKind, kind, source)
}
