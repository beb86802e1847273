package render

import (
	"context"
	"fmt"
	"log"

	"github.com/mlopslab/mlopsctl/cmd/mlopsctl/env"
	"github.com/mlopslab/mlopsctl/cmd/mlopsctl/subcommands/common"
	"github.com/mlopslab/mlopsctl/pkg/deploy"
	"github.com/mlopslab/mlopsctl/pkg/manifest"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Version   string `flag:"version" alias:"v" metavar:"TAG" help:"image version to substitute. default: latest"`
	Manifests string `flag:"manifests" alias:"m" metavar:"DIR" help:"manifest template directory. default: from mlopsenv, then k8s"`
	Out       string `flag:"out" alias:"o" metavar:"DIR" help:"directory to write rendered manifests into. default: stdout"`
	InPlace   bool   `flag:"in-place" help:"write rendered manifests over the templates"`
}

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Render manifest templates without touching any cluster.",
		Flag{
			Version: deploy.DefaultImageVersion,
		},
		flarc.Args{},
		common.NewOfflineTask(Task()),
		flarc.WithDescription(`
Substitute the image version into the manifest templates and print the
result, to inspect what "deploy" would apply.

With --out, rendered manifests are written into a directory instead,
one file per template. With --in-place, the templates themselves are
overwritten.

Example
-------

See the manifests for version 1.4.2:

	{{ .Command }} --version 1.4.2

Stage them for a GitOps commit:

	{{ .Command }} -v 1.4.2 -o rendered/
`),
	)
}

func Task() common.OfflineTask[Flag] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		deployEnv env.DeployEnv,
		cl flarc.Commandline[Flag],
		params []any,
	) error {
		flags := cl.Flags()

		manifestDir := flags.Manifests
		if manifestDir == "" {
			manifestDir = deployEnv.ManifestDirOrDefault()
		}

		set, err := manifest.Load(manifestDir)
		if err != nil {
			return err
		}
		rendered := set.Render(flags.Version)

		if flags.InPlace {
			if err := manifest.WriteDir(rendered, set.Dir); err != nil {
				return err
			}
			logger.Printf("rendered %d manifests in place (%s)", len(rendered), set.Dir)
			return nil
		}

		if flags.Out != "" {
			if err := manifest.WriteDir(rendered, flags.Out); err != nil {
				return err
			}
			logger.Printf("rendered %d manifests into %s", len(rendered), flags.Out)
			return nil
		}

		for nth, r := range rendered {
			if 0 < nth {
				fmt.Fprintln(cl.Stdout(), "---")
			}
			fmt.Fprintf(cl.Stdout(), "# %s\n", r.Name)
			cl.Stdout().Write(r.Body)
		}
		return nil
	}
}
