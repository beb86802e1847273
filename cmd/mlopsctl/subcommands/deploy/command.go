package deploy

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mlopslab/mlopsctl/cmd/mlopsctl/env"
	"github.com/mlopslab/mlopsctl/cmd/mlopsctl/subcommands/common"
	"github.com/mlopslab/mlopsctl/pkg/deploy"
	"github.com/mlopslab/mlopsctl/pkg/kube"
	"github.com/mlopslab/mlopsctl/pkg/manifest"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Env       string `flag:"env" alias:"e" metavar:"dev|test|staging|prod" help:"deployment environment. default: dev"`
	Version   string `flag:"version" alias:"v" metavar:"TAG" help:"image version to deploy. default: latest"`
	Namespace string `flag:"namespace" alias:"n" help:"namespace to deploy into. default: from mlopsenv, then mlops"`
	Manifests string `flag:"manifests" alias:"m" metavar:"DIR" help:"manifest template directory. default: from mlopsenv, then k8s"`
	Timeout   int    `flag:"timeout" metavar:"SECONDS" help:"rollout timeout per deployment. default: from mlopsenv, then 300"`
	SkipWait  bool   `flag:"skip-wait" help:"apply manifests without awaiting rollouts"`
	InPlace   bool   `flag:"in-place" help:"also write rendered manifests back over the templates"`
}

// Deployer runs one deployment.
type Deployer interface {
	Deploy(
		ctx context.Context,
		req deploy.Request,
		set manifest.Set,
		targets []deploy.Target,
	) ([]deploy.Outcome, error)
}

type Option struct {
	newDeployer func(cluster kube.Cluster, options ...deploy.Option) Deployer
}

// WithDeployer swaps how the orchestrator is built. For tests.
func WithDeployer(
	newDeployer func(cluster kube.Cluster, options ...deploy.Option) Deployer,
) func(*Option) *Option {
	return func(o *Option) *Option {
		o.newDeployer = newDeployer
		return o
	}
}

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{
		newDeployer: func(cluster kube.Cluster, opts ...deploy.Option) Deployer {
			return deploy.New(cluster, opts...)
		},
	}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Deploy the ML stack into a cluster.",
		Flag{
			Env:     string(deploy.Dev),
			Version: deploy.DefaultImageVersion,
		},
		flarc.Args{},
		common.NewTask(Task(option.newDeployer)),
		flarc.WithDescription(`
Substitute the image version into the manifest templates, apply them
into the target namespace and wait until every managed deployment has
rolled out.

The namespace is created when it does not exist yet. Manifests are
rendered in memory; templates on disk stay untouched unless --in-place
is passed.

Example
-------

Deploy version 1.4.2 to staging:

	{{ .Command }} --env staging --version 1.4.2

Deploy to a dedicated namespace on another cluster:

	{{ .Command }} -e prod -v 1.4.2 -n mlops-prod --context prod-cluster
`),
	)
}

func Task(
	newDeployer func(cluster kube.Cluster, options ...deploy.Option) Deployer,
) common.Task[Flag] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		deployEnv env.DeployEnv,
		cluster kube.Cluster,
		cl flarc.Commandline[Flag],
		params []any,
	) error {
		flags := cl.Flags()

		environment, err := deploy.ParseEnvironment(flags.Env)
		if err != nil {
			return errors.Join(flarc.ErrUsage, err)
		}

		namespace := flags.Namespace
		if namespace == "" {
			namespace = deployEnv.NamespaceOrDefault()
		}

		manifestDir := flags.Manifests
		if manifestDir == "" {
			manifestDir = deployEnv.ManifestDirOrDefault()
		}

		timeout := deployEnv.TimeoutOrDefault()
		if 0 < flags.Timeout {
			timeout = time.Duration(flags.Timeout) * time.Second
		}

		set, err := manifest.Load(manifestDir)
		if err != nil {
			return err
		}
		if err := set.Verify(deployEnv.RequireOrDefault()); err != nil {
			return err
		}

		req := deploy.Request{
			Environment:  environment,
			ImageVersion: flags.Version,
			Namespace:    namespace,
		}

		if flags.InPlace {
			if err := manifest.WriteDir(set.Render(req.ImageVersion), set.Dir); err != nil {
				return err
			}
			logger.Printf("rendered manifests written back to %s", set.Dir)
		}

		targets := deployEnv.TargetsOrDefault()
		if flags.SkipWait {
			targets = nil
		}

		logger.Printf(
			"deploying to %s (namespace: %s, version: %s)",
			environment, namespace, req.ImageVersion,
		)

		deployer := newDeployer(
			cluster,
			deploy.WithLogger(logger),
			deploy.WithTimeout(timeout),
		)
		outcomes, err := deployer.Deploy(ctx, req, set, targets)
		for _, o := range outcomes {
			fmt.Fprintln(cl.Stdout(), o)
		}
		if err != nil {
			return err
		}

		logger.Printf("deployment to %s completed", environment)
		return nil
	}
}
