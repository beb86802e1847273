package check_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	denv "github.com/mlopslab/mlopsctl/cmd/mlopsctl/env"
	"github.com/mlopslab/mlopsctl/cmd/mlopsctl/subcommands/check"
	"github.com/mlopslab/mlopsctl/cmd/mlopsctl/subcommands/internal/commandline"
	"github.com/mlopslab/mlopsctl/cmd/mlopsctl/subcommands/logger"
	"github.com/mlopslab/mlopsctl/pkg/deploy"
	"github.com/mlopslab/mlopsctl/pkg/kube/mock"
	"github.com/mlopslab/mlopsctl/pkg/manifest"
	kubecore "k8s.io/api/core/v1"
	kubeerr "k8s.io/apimachinery/pkg/api/errors"
	kubeapimeta "k8s.io/apimachinery/pkg/apis/meta/v1"
)

func fixtures(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func deployable(t *testing.T) string {
	t.Helper()
	return fixtures(t, map[string]string{
		"deployment.yaml": `apiVersion: apps/v1
kind: Deployment
metadata:
  name: mlops-app
spec:
  template:
    spec:
      containers:
        - name: mlops-app
          image: mlops-app:{{VERSION}}
`,
		"service.yaml": `apiVersion: v1
kind: Service
metadata:
  name: mlops-app
`,
	})
}

func TestCheckCommand(t *testing.T) {
	env := denv.DeployEnv{
		Require: []string{"deployment.yaml", "service.yaml"},
	}

	t.Run("it reports a deployable setup", func(t *testing.T) {
		dir := deployable(t)

		cluster := mock.NewCluster()
		cluster.Impl.ServerVersion = func() (string, error) { return "v1.30.3", nil }
		cluster.Impl.GetNamespace = func(ctx context.Context, name string) (*kubecore.Namespace, error) {
			return &kubecore.Namespace{ObjectMeta: kubeapimeta.ObjectMeta{Name: name}}, nil
		}

		stdout := new(strings.Builder)
		err := check.Task()(
			context.Background(),
			logger.Null(),
			env,
			cluster,
			commandline.MockCommandline[check.Flag]{
				Fullname_: "mlopsctl check",
				Stdout_:   stdout,
				Stderr_:   new(strings.Builder),
				Flags_:    check.Flag{Version: "1.4.2", Manifests: dir},
			},
			[]any{},
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := stdout.String()
		for _, want := range []string{
			"cluster: ok (server version v1.30.3)",
			"namespace mlops: exists",
			"image: mlops-app:1.4.2",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("missing %q in output: %s", want, out)
			}
		}
	})

	t.Run("a missing namespace is reported, not an error", func(t *testing.T) {
		dir := deployable(t)

		cluster := mock.NewCluster()
		cluster.Impl.ServerVersion = func() (string, error) { return "v1.30.3", nil }
		cluster.Impl.GetNamespace = func(ctx context.Context, name string) (*kubecore.Namespace, error) {
			return nil, kubeerr.NewNotFound(kubecore.Resource("namespaces"), name)
		}

		stdout := new(strings.Builder)
		err := check.Task()(
			context.Background(),
			logger.Null(),
			env,
			cluster,
			commandline.MockCommandline[check.Flag]{
				Fullname_: "mlopsctl check",
				Stdout_:   stdout,
				Stderr_:   new(strings.Builder),
				Flags_:    check.Flag{Version: "latest", Manifests: dir},
			},
			[]any{},
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout.String(), "will be created on deploy") {
			t.Errorf("unmatch output: %s", stdout.String())
		}
	})

	t.Run("an unreachable cluster fails fast", func(t *testing.T) {
		fakeErr := errors.New("fake error")
		cluster := mock.NewCluster()
		cluster.Impl.ServerVersion = func() (string, error) { return "", fakeErr }

		err := check.Task()(
			context.Background(),
			logger.Null(),
			env,
			cluster,
			commandline.MockCommandline[check.Flag]{
				Fullname_: "mlopsctl check",
				Stdout_:   new(strings.Builder),
				Stderr_:   new(strings.Builder),
				Flags_:    check.Flag{Version: "latest"},
			},
			[]any{},
		)
		if !errors.Is(err, fakeErr) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("missing required manifests fail the check", func(t *testing.T) {
		dir := fixtures(t, map[string]string{
			"service.yaml": "apiVersion: v1\nkind: Service\nmetadata:\n  name: x\n",
		})

		cluster := mock.NewCluster()
		cluster.Impl.ServerVersion = func() (string, error) { return "v1.30.3", nil }
		cluster.Impl.GetNamespace = func(ctx context.Context, name string) (*kubecore.Namespace, error) {
			return &kubecore.Namespace{ObjectMeta: kubeapimeta.ObjectMeta{Name: name}}, nil
		}

		err := check.Task()(
			context.Background(),
			logger.Null(),
			env,
			cluster,
			commandline.MockCommandline[check.Flag]{
				Fullname_: "mlopsctl check",
				Stdout_:   new(strings.Builder),
				Stderr_:   new(strings.Builder),
				Flags_:    check.Flag{Version: "latest", Manifests: dir},
			},
			[]any{},
		)
		if !errors.Is(err, manifest.ErrMissingManifest) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("kinds deploy cannot apply fail the check", func(t *testing.T) {
		dir := fixtures(t, map[string]string{
			"deployment.yaml": `apiVersion: apps/v1
kind: Deployment
metadata:
  name: mlops-app
`,
			"service.yaml": `apiVersion: v1
kind: Secret
metadata:
  name: creds
`,
		})

		cluster := mock.NewCluster()
		cluster.Impl.ServerVersion = func() (string, error) { return "v1.30.3", nil }
		cluster.Impl.GetNamespace = func(ctx context.Context, name string) (*kubecore.Namespace, error) {
			return &kubecore.Namespace{ObjectMeta: kubeapimeta.ObjectMeta{Name: name}}, nil
		}

		err := check.Task()(
			context.Background(),
			logger.Null(),
			env,
			cluster,
			commandline.MockCommandline[check.Flag]{
				Fullname_: "mlopsctl check",
				Stdout_:   new(strings.Builder),
				Stderr_:   new(strings.Builder),
				Flags_:    check.Flag{Version: "latest", Manifests: dir},
			},
			[]any{},
		)
		if !errors.Is(err, deploy.ErrUnsupportedKind) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
