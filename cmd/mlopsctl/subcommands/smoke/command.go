package smoke

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mlopslab/mlopsctl/cmd/mlopsctl/env"
	"github.com/mlopslab/mlopsctl/cmd/mlopsctl/subcommands/common"
	"github.com/mlopslab/mlopsctl/pkg/smoke"
	"github.com/mlopslab/mlopsctl/pkg/utils/retry"
	"github.com/youta-t/flarc"
)

const ARG_API_URL = "API_URL"

type Flag struct {
	Retries  int `flag:"retries" help:"attempts before giving up. default: 5"`
	Interval int `flag:"interval" metavar:"SECONDS" help:"wait between attempts. default: 5"`
}

// Prober runs the smoke test against one endpoint.
type Prober interface {
	Run(ctx context.Context, attempts int, backoff retry.Backoff) error
}

type Option struct {
	newProber func(baseURL string, options ...smoke.Option) Prober
}

// WithProber swaps how the probe client is built. For tests.
func WithProber(newProber func(baseURL string, options ...smoke.Option) Prober) func(*Option) *Option {
	return func(o *Option) *Option {
		o.newProber = newProber
		return o
	}
}

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{
		newProber: func(baseURL string, opts ...smoke.Option) Prober {
			return smoke.New(baseURL, opts...)
		},
	}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Smoke-test a deployed serving API.",
		Flag{
			Retries:  smoke.DefaultAttempts,
			Interval: int(smoke.DefaultInterval / time.Second),
		},
		flarc.Args{
			{
				Name: ARG_API_URL, Required: true,
				Help: "base URL of the serving API, e.g. http://mlops.example.com",
			},
		},
		common.NewOfflineTask(Task(option.newProber)),
		flarc.WithDescription(`
Probe the deployed serving API from the outside: GET /health must
answer {"status": "healthy"}, and POST /predict with a sample feature
vector must answer a prediction.

Fresh rollouts need a moment to start serving, so failing attempts are
retried.

Example
-------

	{{ .Command }} http://mlops.example.com --retries 10 --interval 3
`),
	)
}

func Task(
	newProber func(baseURL string, options ...smoke.Option) Prober,
) common.OfflineTask[Flag] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		deployEnv env.DeployEnv,
		cl flarc.Commandline[Flag],
		params []any,
	) error {
		flags := cl.Flags()
		baseURL := cl.Args()[ARG_API_URL][0]

		interval := time.Duration(flags.Interval) * time.Second
		if interval <= 0 {
			interval = smoke.DefaultInterval
		}

		prober := newProber(baseURL, smoke.WithLogger(logger))
		if err := prober.Run(ctx, flags.Retries, retry.StaticBackoff(interval)); err != nil {
			return err
		}

		fmt.Fprintf(cl.Stdout(), "smoke test passed: %s\n", baseURL)
		return nil
	}
}
