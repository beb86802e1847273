package smoke_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	denv "github.com/mlopslab/mlopsctl/cmd/mlopsctl/env"
	"github.com/mlopslab/mlopsctl/cmd/mlopsctl/subcommands/internal/commandline"
	"github.com/mlopslab/mlopsctl/cmd/mlopsctl/subcommands/logger"
	cmd_smoke "github.com/mlopslab/mlopsctl/cmd/mlopsctl/subcommands/smoke"
	"github.com/mlopslab/mlopsctl/pkg/smoke"
	"github.com/mlopslab/mlopsctl/pkg/utils/retry"
)

type mockProber struct {
	impl func(ctx context.Context, attempts int, backoff retry.Backoff) error
}

func (m *mockProber) Run(ctx context.Context, attempts int, backoff retry.Backoff) error {
	return m.impl(ctx, attempts, backoff)
}

func TestSmokeCommand(t *testing.T) {
	t.Run("it probes the given URL", func(t *testing.T) {
		var gotURL string
		var gotAttempts int

		testee := cmd_smoke.Task(
			func(baseURL string, options ...smoke.Option) cmd_smoke.Prober {
				gotURL = baseURL
				return &mockProber{
					impl: func(ctx context.Context, attempts int, backoff retry.Backoff) error {
						gotAttempts = attempts
						return nil
					},
				}
			},
		)

		stdout := new(strings.Builder)
		err := testee(
			context.Background(),
			logger.Null(),
			denv.DeployEnv{},
			commandline.MockCommandline[cmd_smoke.Flag]{
				Fullname_: "mlopsctl smoke",
				Stdout_:   stdout,
				Stderr_:   new(strings.Builder),
				Flags_:    cmd_smoke.Flag{Retries: 3, Interval: 1},
				Args_: map[string][]string{
					cmd_smoke.ARG_API_URL: {"http://mlops.example.com"},
				},
			},
			[]any{},
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if gotURL != "http://mlops.example.com" {
			t.Errorf("unmatch URL: %s", gotURL)
		}
		if gotAttempts != 3 {
			t.Errorf("unmatch attempts: %d", gotAttempts)
		}
		if !strings.Contains(stdout.String(), "smoke test passed") {
			t.Errorf("unmatch output: %s", stdout.String())
		}
	})

	t.Run("probe failures are passed through", func(t *testing.T) {
		fakeErr := errors.New("fake error")

		testee := cmd_smoke.Task(
			func(baseURL string, options ...smoke.Option) cmd_smoke.Prober {
				return &mockProber{
					impl: func(ctx context.Context, attempts int, backoff retry.Backoff) error {
						return fakeErr
					},
				}
			},
		)

		err := testee(
			context.Background(),
			logger.Null(),
			denv.DeployEnv{},
			commandline.MockCommandline[cmd_smoke.Flag]{
				Fullname_: "mlopsctl smoke",
				Stdout_:   new(strings.Builder),
				Stderr_:   new(strings.Builder),
				Flags_:    cmd_smoke.Flag{Retries: 5, Interval: 5},
				Args_: map[string][]string{
					cmd_smoke.ARG_API_URL: {"http://mlops.example.com"},
				},
			},
			[]any{},
		)
		if !errors.Is(err, fakeErr) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
