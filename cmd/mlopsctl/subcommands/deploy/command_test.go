package deploy_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	denv "github.com/mlopslab/mlopsctl/cmd/mlopsctl/env"
	cmd_deploy "github.com/mlopslab/mlopsctl/cmd/mlopsctl/subcommands/deploy"
	"github.com/mlopslab/mlopsctl/cmd/mlopsctl/subcommands/internal/commandline"
	"github.com/mlopslab/mlopsctl/cmd/mlopsctl/subcommands/logger"
	"github.com/mlopslab/mlopsctl/pkg/cmp"
	"github.com/mlopslab/mlopsctl/pkg/deploy"
	"github.com/mlopslab/mlopsctl/pkg/kube"
	"github.com/mlopslab/mlopsctl/pkg/kube/mock"
	"github.com/mlopslab/mlopsctl/pkg/manifest"
	"github.com/youta-t/flarc"
)

type mockDeployer struct {
	impl func(
		ctx context.Context,
		req deploy.Request,
		set manifest.Set,
		targets []deploy.Target,
	) ([]deploy.Outcome, error)
}

func (m *mockDeployer) Deploy(
	ctx context.Context,
	req deploy.Request,
	set manifest.Set,
	targets []deploy.Target,
) ([]deploy.Outcome, error) {
	return m.impl(ctx, req, set, targets)
}

func manifestDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range manifest.DefaultRequired {
		body := "# placeholder manifest\nimage: mlops-app:{{VERSION}}\n"
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestDeployCommand(t *testing.T) {
	t.Run("it deploys with defaults filled from mlopsenv", func(t *testing.T) {
		dir := manifestDir(t)

		var gotReq deploy.Request
		var gotTargets []deploy.Target
		deployer := &mockDeployer{
			impl: func(
				ctx context.Context,
				req deploy.Request,
				set manifest.Set,
				targets []deploy.Target,
			) ([]deploy.Outcome, error) {
				gotReq = req
				gotTargets = targets
				return []deploy.Outcome{
					{Kind: "Deployment", Name: "mlops-app", Ready: true},
				}, nil
			},
		}

		testee := cmd_deploy.Task(
			func(cluster kube.Cluster, options ...deploy.Option) cmd_deploy.Deployer {
				return deployer
			},
		)

		stdout := new(strings.Builder)
		err := testee(
			context.Background(),
			logger.Null(),
			denv.DeployEnv{Namespace: "mlops-staging"},
			mock.NewCluster(),
			commandline.MockCommandline[cmd_deploy.Flag]{
				Fullname_: "mlopsctl deploy",
				Stdout_:   stdout,
				Stderr_:   new(strings.Builder),
				Flags_:    cmd_deploy.Flag{Env: "staging", Version: "1.4.2", Manifests: dir},
			},
			[]any{},
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := deploy.Request{
			Environment: deploy.Staging, ImageVersion: "1.4.2", Namespace: "mlops-staging",
		}
		if gotReq != want {
			t.Errorf("unmatch request: %+v", gotReq)
		}
		if !cmp.SliceEq(gotTargets, deploy.DefaultTargets()) {
			t.Errorf("unmatch targets: %v", gotTargets)
		}
		if !strings.Contains(stdout.String(), "Deployment/mlops-app: ready") {
			t.Errorf("outcomes should be printed: %s", stdout.String())
		}
	})

	t.Run("an unknown environment is a usage error", func(t *testing.T) {
		testee := cmd_deploy.Task(
			func(cluster kube.Cluster, options ...deploy.Option) cmd_deploy.Deployer {
				t.Fatal("deployer should not be built")
				return nil
			},
		)

		err := testee(
			context.Background(),
			logger.Null(),
			denv.DeployEnv{},
			mock.NewCluster(),
			commandline.MockCommandline[cmd_deploy.Flag]{
				Fullname_: "mlopsctl deploy",
				Stdout_:   new(strings.Builder),
				Stderr_:   new(strings.Builder),
				Flags_:    cmd_deploy.Flag{Env: "production", Version: "latest"},
			},
			[]any{},
		)
		if !errors.Is(err, flarc.ErrUsage) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("missing manifest files stop the run before deploying", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(
			filepath.Join(dir, "deployment.yaml"), []byte("image: x:{{VERSION}}\n"), 0o644,
		); err != nil {
			t.Fatal(err)
		}

		testee := cmd_deploy.Task(
			func(cluster kube.Cluster, options ...deploy.Option) cmd_deploy.Deployer {
				return &mockDeployer{
					impl: func(
						ctx context.Context,
						req deploy.Request,
						set manifest.Set,
						targets []deploy.Target,
					) ([]deploy.Outcome, error) {
						t.Fatal("deployer should not run")
						return nil, nil
					},
				}
			},
		)

		err := testee(
			context.Background(),
			logger.Null(),
			denv.DeployEnv{},
			mock.NewCluster(),
			commandline.MockCommandline[cmd_deploy.Flag]{
				Fullname_: "mlopsctl deploy",
				Stdout_:   new(strings.Builder),
				Stderr_:   new(strings.Builder),
				Flags_:    cmd_deploy.Flag{Env: "dev", Version: "latest", Manifests: dir},
			},
			[]any{},
		)
		if !errors.Is(err, manifest.ErrMissingManifest) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("--skip-wait drops the rollout targets", func(t *testing.T) {
		dir := manifestDir(t)

		var gotTargets []deploy.Target
		testee := cmd_deploy.Task(
			func(cluster kube.Cluster, options ...deploy.Option) cmd_deploy.Deployer {
				return &mockDeployer{
					impl: func(
						ctx context.Context,
						req deploy.Request,
						set manifest.Set,
						targets []deploy.Target,
					) ([]deploy.Outcome, error) {
						gotTargets = targets
						return nil, nil
					},
				}
			},
		)

		err := testee(
			context.Background(),
			logger.Null(),
			denv.DeployEnv{},
			mock.NewCluster(),
			commandline.MockCommandline[cmd_deploy.Flag]{
				Fullname_: "mlopsctl deploy",
				Stdout_:   new(strings.Builder),
				Stderr_:   new(strings.Builder),
				Flags_:    cmd_deploy.Flag{Env: "dev", Version: "latest", Manifests: dir, SkipWait: true},
			},
			[]any{},
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(gotTargets) != 0 {
			t.Errorf("unmatch targets: %v", gotTargets)
		}
	})

	t.Run("--in-place writes rendered manifests over the templates", func(t *testing.T) {
		dir := manifestDir(t)

		testee := cmd_deploy.Task(
			func(cluster kube.Cluster, options ...deploy.Option) cmd_deploy.Deployer {
				return &mockDeployer{
					impl: func(
						ctx context.Context,
						req deploy.Request,
						set manifest.Set,
						targets []deploy.Target,
					) ([]deploy.Outcome, error) {
						return nil, nil
					},
				}
			},
		)

		err := testee(
			context.Background(),
			logger.Null(),
			denv.DeployEnv{},
			mock.NewCluster(),
			commandline.MockCommandline[cmd_deploy.Flag]{
				Fullname_: "mlopsctl deploy",
				Stdout_:   new(strings.Builder),
				Stderr_:   new(strings.Builder),
				Flags_:    cmd_deploy.Flag{Env: "dev", Version: "1.4.2", Manifests: dir, InPlace: true},
			},
			[]any{},
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		written, err := os.ReadFile(filepath.Join(dir, "deployment.yaml"))
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(written), "mlops-app:1.4.2") {
			t.Errorf("template should be rendered in place: %s", written)
		}
	})

	t.Run("deployer failures are passed through", func(t *testing.T) {
		dir := manifestDir(t)
		fakeErr := errors.New("fake error")

		testee := cmd_deploy.Task(
			func(cluster kube.Cluster, options ...deploy.Option) cmd_deploy.Deployer {
				return &mockDeployer{
					impl: func(
						ctx context.Context,
						req deploy.Request,
						set manifest.Set,
						targets []deploy.Target,
					) ([]deploy.Outcome, error) {
						return []deploy.Outcome{
							{Kind: "Deployment", Name: "mlflow", Err: fakeErr},
						}, fakeErr
					},
				}
			},
		)

		stdout := new(strings.Builder)
		err := testee(
			context.Background(),
			logger.Null(),
			denv.DeployEnv{},
			mock.NewCluster(),
			commandline.MockCommandline[cmd_deploy.Flag]{
				Fullname_: "mlopsctl deploy",
				Stdout_:   stdout,
				Stderr_:   new(strings.Builder),
				Flags_:    cmd_deploy.Flag{Env: "prod", Version: "latest", Manifests: dir},
			},
			[]any{},
		)
		if !errors.Is(err, fakeErr) {
			t.Errorf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout.String(), "mlflow") {
			t.Errorf("outcomes should be printed even on failure: %s", stdout.String())
		}
	})
}
