package kube

import (
	"errors"
	"fmt"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
)

// ErrUnknownContext is returned when --context names a context
// the local kubeconfig does not know.
var ErrUnknownContext = errors.New("unknown cluster context")

func NewErrUnknownContext(name string) error {
	return fmt.Errorf("%w: %s", ErrUnknownContext, name)
}

// Connection is how to reach a cluster.
type Connection struct {
	// filepath to kubeconfig. empty means the default loading rules
	// (KUBECONFIG envvar, then ~/.kube/config).
	Kubeconfig string

	// cluster context to switch to. empty means the kubeconfig's current context.
	Context string
}

// Connect builds a Cluster client from the local kubeconfig.
//
// When conn.Context is set, it is verified against the kubeconfig before
// anything else happens; an unknown context fails with ErrUnknownContext.
func Connect(conn Connection) (Cluster, error) {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if conn.Kubeconfig != "" {
		rules.ExplicitPath = conn.Kubeconfig
	}

	if conn.Context != "" {
		raw, err := rules.Load()
		if err != nil {
			return nil, err
		}
		if _, ok := raw.Contexts[conn.Context]; !ok {
			return nil, NewErrUnknownContext(conn.Context)
		}
	}

	config, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		rules,
		&clientcmd.ConfigOverrides{CurrentContext: conn.Context},
	).ClientConfig()
	if err != nil {
		return nil, err
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, err
	}

	return WrapClientset(clientset), nil
}
