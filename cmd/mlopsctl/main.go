package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"

	subcheck "github.com/mlopslab/mlopsctl/cmd/mlopsctl/subcommands/check"
	"github.com/mlopslab/mlopsctl/cmd/mlopsctl/subcommands/common"
	subdeploy "github.com/mlopslab/mlopsctl/cmd/mlopsctl/subcommands/deploy"
	"github.com/mlopslab/mlopsctl/cmd/mlopsctl/subcommands/logger"
	subrender "github.com/mlopslab/mlopsctl/cmd/mlopsctl/subcommands/render"
	subsmoke "github.com/mlopslab/mlopsctl/cmd/mlopsctl/subcommands/smoke"
	subver "github.com/mlopslab/mlopsctl/cmd/mlopsctl/subcommands/version"
	"github.com/mlopslab/mlopsctl/pkg/utils/try"
	"github.com/youta-t/flarc"
)

func main() {
	name := path.Base(os.Args[0])
	logger := logger.Default()
	logger.SetPrefix(fmt.Sprintf("[%s] ", name))

	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, os.Kill,
	)
	defer cancel()

	cf := try.To(common.Flags(".")).OrFatal(logger)
	deploy := try.To(subdeploy.New()).OrFatal(logger)
	render := try.To(subrender.New()).OrFatal(logger)
	check := try.To(subcheck.New()).OrFatal(logger)
	smoke := try.To(subsmoke.New()).OrFatal(logger)
	version := try.To(subver.New()).OrFatal(logger)

	mlopsctl := try.To(
		flarc.NewCommandGroup(
			"Deployment orchestrator for the MLOps stack",
			cf,
			flarc.WithSubcommand("deploy", deploy),
			flarc.WithSubcommand("render", render),
			flarc.WithSubcommand("check", check),
			flarc.WithSubcommand("smoke", smoke),
			flarc.WithSubcommand("version", version),
		),
	).OrFatal(logger)

	os.Exit(flarc.Run(ctx, mlopsctl, flarc.WithHelp(true)))
}
