package common

import (
	"os"
	"path"
	"path/filepath"
)

// CommonFlags are shared by every subcommand in the group.
type CommonFlags struct {
	Kubeconfig string `flag:"kubeconfig" help:"path to kubeconfig. default: KUBECONFIG envvar, then ~/.kube/config"`
	Context    string `flag:"context" help:"cluster context to use. default: the kubeconfig's current context"`
	Env        string `flag:"env-file" help:"path to mlopsenv file"`
}

// Flags detects default common flag values, searching from the given
// directory upward for an mlopsenv file.
func Flags(from string) (CommonFlags, error) {
	if _from, err := filepath.Abs(from); err == nil {
		from = _from
	}

	env := path.Join(from, "mlopsenv")
	for searchpath := from; ; {
		candidate := path.Join(searchpath, "mlopsenv")
		if s, err := os.Stat(candidate); err == nil && s.Mode().IsRegular() {
			env = candidate
			break
		}

		next := path.Dir(searchpath)
		if next == searchpath {
			break
		}
		searchpath = next
	}

	// Kubeconfig stays empty: client-go's own loading rules already
	// honor KUBECONFIG and ~/.kube/config.
	return CommonFlags{
		Env: env,
	}, nil
}
