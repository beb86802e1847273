package check

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/mlopslab/mlopsctl/cmd/mlopsctl/env"
	"github.com/mlopslab/mlopsctl/cmd/mlopsctl/subcommands/common"
	"github.com/mlopslab/mlopsctl/pkg/deploy"
	"github.com/mlopslab/mlopsctl/pkg/kube"
	"github.com/mlopslab/mlopsctl/pkg/manifest"
	"github.com/youta-t/flarc"
	kubeerr "k8s.io/apimachinery/pkg/api/errors"
)

type Flag struct {
	Version   string `flag:"version" alias:"v" metavar:"TAG" help:"image version used to validate the manifests. default: latest"`
	Namespace string `flag:"namespace" alias:"n" help:"namespace to check. default: from mlopsenv, then mlops"`
	Manifests string `flag:"manifests" alias:"m" metavar:"DIR" help:"manifest template directory. default: from mlopsenv, then k8s"`
}

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Check that a deployment would be possible, without deploying.",
		Flag{
			Version: deploy.DefaultImageVersion,
		},
		flarc.Args{},
		common.NewTask(Task()),
		flarc.WithDescription(`
Verify everything "deploy" needs, without changing anything:

- the cluster answers on the selected context,
- the manifest templates are all present and decode into known resources,
- the image references in them are well-formed.

The namespace is only reported; a missing one is not an error, since
"deploy" creates it.
`),
	)
}

func Task() common.Task[Flag] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		deployEnv env.DeployEnv,
		cluster kube.Cluster,
		cl flarc.Commandline[Flag],
		params []any,
	) error {
		flags := cl.Flags()

		version, err := cluster.ServerVersion()
		if err != nil {
			return fmt.Errorf("%w: cluster is not reachable", err)
		}
		fmt.Fprintf(cl.Stdout(), "cluster: ok (server version %s)\n", version)

		namespace := flags.Namespace
		if namespace == "" {
			namespace = deployEnv.NamespaceOrDefault()
		}
		if _, err := cluster.GetNamespace(ctx, namespace); err == nil {
			fmt.Fprintf(cl.Stdout(), "namespace %s: exists\n", namespace)
		} else if kubeerr.IsNotFound(err) {
			fmt.Fprintf(cl.Stdout(), "namespace %s: will be created on deploy\n", namespace)
		} else {
			return fmt.Errorf("%w: failed to query namespace %s", err, namespace)
		}

		manifestDir := flags.Manifests
		if manifestDir == "" {
			manifestDir = deployEnv.ManifestDirOrDefault()
		}

		set, err := manifest.Load(manifestDir)
		if err != nil {
			return err
		}
		if err := set.Verify(deployEnv.RequireOrDefault()); err != nil {
			return err
		}
		fmt.Fprintf(cl.Stdout(), "manifests: %d templates in %s\n", len(set.Templates), set.Dir)

		objects, err := manifest.DecodeAll(set.Render(flags.Version))
		if err != nil {
			return err
		}
		images, err := manifest.Images(objects)
		if err != nil {
			return err
		}

		errs := []error{}
		for _, obj := range objects {
			switch obj.GVK.Kind {
			case "Deployment", "Service", "ConfigMap":
				// appliable
			default:
				errs = append(errs, deploy.NewErrUnsupportedKind(obj.GVK.Kind, obj.Source))
			}
		}
		if err := errors.Join(errs...); err != nil {
			return err
		}

		fmt.Fprintf(cl.Stdout(), "resources: %d, all appliable\n", len(objects))
		for _, img := range images {
			fmt.Fprintf(cl.Stdout(), "image: %s\n", img)
		}

		logger.Printf("all checks passed")
		return nil
	}
}
