package common

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/mlopslab/mlopsctl/cmd/mlopsctl/env"
	"github.com/mlopslab/mlopsctl/pkg/kube"
	"github.com/youta-t/flarc"
)

type TaskWithCommonFlag[T any] func(
	ctx context.Context,
	logger *log.Logger,
	commonFlag CommonFlags,
	cl flarc.Commandline[T],
	params []any,
) error

func NewTaskWithCommonFlag[T any](task TaskWithCommonFlag[T]) flarc.Task[T] {
	return func(ctx context.Context, cl flarc.Commandline[T], pos []any) error {
		var commonFlag CommonFlags
		found := false
		newpos := make([]any, 0, len(pos))
		for _, p := range pos {
			switch v := p.(type) {
			case CommonFlags:
				found = true
				commonFlag = v
			default:
				newpos = append(newpos, p)
			}
		}
		if !found {
			return errors.New("programming error: common flags not found")
		}

		logger := log.New(cl.Stderr(), "", log.LstdFlags)
		logger.SetPrefix(fmt.Sprintf("[%s] ", cl.Fullname()))

		return task(
			ctx,
			logger,
			commonFlag,
			cl,
			newpos,
		)
	}
}

// OfflineTask is a task needing no cluster connection.
type OfflineTask[T any] func(
	ctx context.Context,
	logger *log.Logger,
	deployEnv env.DeployEnv,
	cl flarc.Commandline[T],
	params []any,
) error

func NewOfflineTask[T any](task OfflineTask[T]) flarc.Task[T] {
	return NewTaskWithCommonFlag(func(
		ctx context.Context,
		logger *log.Logger,
		commonFlag CommonFlags,
		cl flarc.Commandline[T],
		params []any,
	) error {
		e, err := env.LoadDeployEnv(commonFlag.Env)
		if err != nil {
			return fmt.Errorf("%w: failed to load mlopsenv (%s)", err, commonFlag.Env)
		}
		return task(ctx, logger, *e, cl, params)
	})
}

// Task is a task run against a cluster.
//
// The cluster client is built before the task starts; switching to an
// unknown context fails here, before anything is deployed.
type Task[T any] func(
	ctx context.Context,
	logger *log.Logger,
	deployEnv env.DeployEnv,
	cluster kube.Cluster,
	cl flarc.Commandline[T],
	params []any,
) error

type taskOption struct {
	connect func(kube.Connection) (kube.Cluster, error)
}

type TaskOption func(*taskOption) *taskOption

// WithConnect swaps how the cluster client is built. For tests.
func WithConnect(connect func(kube.Connection) (kube.Cluster, error)) TaskOption {
	return func(o *taskOption) *taskOption {
		o.connect = connect
		return o
	}
}

func NewTask[T any](task Task[T], options ...TaskOption) flarc.Task[T] {
	opt := &taskOption{connect: kube.Connect}
	for _, o := range options {
		opt = o(opt)
	}

	return NewTaskWithCommonFlag(func(
		ctx context.Context,
		logger *log.Logger,
		commonFlag CommonFlags,
		cl flarc.Commandline[T],
		params []any,
	) error {
		e, err := env.LoadDeployEnv(commonFlag.Env)
		if err != nil {
			return fmt.Errorf("%w: failed to load mlopsenv (%s)", err, commonFlag.Env)
		}

		cluster, err := opt.connect(kube.Connection{
			Kubeconfig: commonFlag.Kubeconfig,
			Context:    commonFlag.Context,
		})
		if err != nil {
			if errors.Is(err, kube.ErrUnknownContext) {
				return fmt.Errorf(
					"%w: check `kubectl config get-contexts` for known ones", err,
				)
			}
			return fmt.Errorf("%w: failed to connect to the cluster", err)
		}

		return task(ctx, logger, *e, cluster, cl, params)
	})
}
