package deploy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/mlopslab/mlopsctl/pkg/kube"
	"github.com/mlopslab/mlopsctl/pkg/loop"
	"github.com/mlopslab/mlopsctl/pkg/manifest"
	kubeapps "k8s.io/api/apps/v1"
	kubecore "k8s.io/api/core/v1"
	kubeerr "k8s.io/apimachinery/pkg/api/errors"
	kubeapimeta "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const (
	// DefaultRolloutTimeout bounds the wait for one deployment's rollout.
	DefaultRolloutTimeout = 300 * time.Second

	// DefaultPollInterval is how often rollout status is polled.
	DefaultPollInterval = 5 * time.Second
)

// Orchestrator rolls templated manifests out to a cluster.
type Orchestrator struct {
	cluster  kube.Cluster
	logger   *log.Logger
	timeout  time.Duration
	interval time.Duration
}

type Option func(*Orchestrator) *Orchestrator

func WithLogger(l *log.Logger) Option {
	return func(o *Orchestrator) *Orchestrator {
		o.logger = l
		return o
	}
}

func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) *Orchestrator {
		o.timeout = d
		return o
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(o *Orchestrator) *Orchestrator {
		o.interval = d
		return o
	}
}

func New(cluster kube.Cluster, options ...Option) *Orchestrator {
	o := &Orchestrator{
		cluster:  cluster,
		logger:   log.New(io.Discard, "", log.LstdFlags),
		timeout:  DefaultRolloutTimeout,
		interval: DefaultPollInterval,
	}
	for _, opt := range options {
		o = opt(o)
	}
	return o
}

// Deploy performs the whole rollout procedure, in order:
//
// 1. ensure the target namespace exists (an existing one is reused);
//
// 2. substitute the version placeholder in every manifest template;
//
// 3. decode the rendered manifests and validate their image references;
//
// 4. apply the whole batch, create-or-update per resource. A failing
// resource does not abort its siblings; the joined error is returned
// after the batch, together with per-resource outcomes;
//
// 5. for each target, block until its rollout completes or the timeout
// elapses.
//
// There is no retry and no rollback. The first fatal error stops the
// procedure, and resources already applied stay applied.
func (o *Orchestrator) Deploy(
	ctx context.Context,
	req Request,
	set manifest.Set,
	targets []Target,
) ([]Outcome, error) {
	req = req.WithDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := o.EnsureNamespace(ctx, req.Namespace); err != nil {
		return nil, err
	}

	rendered := set.Render(req.ImageVersion)
	objects, err := manifest.DecodeAll(rendered)
	if err != nil {
		return nil, err
	}
	images, err := manifest.Images(objects)
	if err != nil {
		return nil, err
	}
	for _, img := range images {
		o.logger.Printf("will roll out image %s", img)
	}

	outcomes, err := o.Apply(ctx, req.Namespace, objects)
	if err != nil {
		return outcomes, err
	}

	for _, target := range targets {
		o.logger.Printf("waiting for rollout of deployment %s (timeout: %s)", target.Deployment, o.timeout)
		if err := o.WaitRollout(ctx, req.Namespace, target); err != nil {
			outcomes = append(outcomes, Outcome{
				Kind: "Deployment", Name: target.Deployment, Err: err,
			})
			return outcomes, err
		}
		o.logger.Printf("deployment %s is ready", target.Deployment)
		outcomes = append(outcomes, Outcome{
			Kind: "Deployment", Name: target.Deployment, Ready: true,
		})
	}

	o.logAccessInfo(ctx, req.Namespace)

	return outcomes, nil
}

// EnsureNamespace creates the namespace unless it exists.
//
// "AlreadyExists" from a concurrent creator counts as success.
func (o *Orchestrator) EnsureNamespace(ctx context.Context, namespace string) error {
	if _, err := o.cluster.GetNamespace(ctx, namespace); err == nil {
		o.logger.Printf("namespace %s already exists", namespace)
		return nil
	} else if !kubeerr.IsNotFound(err) {
		return fmt.Errorf("failed to query namespace %s: %w", namespace, err)
	}

	ns := &kubecore.Namespace{
		ObjectMeta: kubeapimeta.ObjectMeta{Name: namespace},
	}
	if _, err := o.cluster.CreateNamespace(ctx, ns); err != nil {
		if kubeerr.IsAlreadyExists(err) {
			// someone else created it between Get and Create. fine.
			return nil
		}
		return NewErrNamespaceCreate(namespace, err)
	}

	o.logger.Printf("created namespace %s", namespace)
	return nil
}

// Apply submits decoded resources, one by one, create-or-update.
//
// Matching the apiserver's own partial-apply semantics, a failing
// resource is recorded and its siblings are still applied. The
// returned error joins every per-resource failure.
func (o *Orchestrator) Apply(
	ctx context.Context, namespace string, objects []manifest.Object,
) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(objects))
	errs := []error{}

	for _, obj := range objects {
		var name string
		var err error

		switch r := obj.Resource.(type) {
		case *kubeapps.Deployment:
			name = r.Name
			err = o.applyDeployment(ctx, namespace, r)
		case *kubecore.Service:
			name = r.Name
			err = o.applyService(ctx, namespace, r)
		case *kubecore.ConfigMap:
			name = r.Name
			err = o.applyConfigMap(ctx, namespace, r)
		default:
			name = obj.Source
			err = NewErrUnsupportedKind(obj.GVK.Kind, obj.Source)
		}

		if err != nil {
			o.logger.Printf("failed to apply %s/%s: %v", obj.GVK.Kind, name, err)
			errs = append(errs, err)
		} else {
			o.logger.Printf("applied %s/%s", obj.GVK.Kind, name)
		}
		outcomes = append(outcomes, Outcome{Kind: obj.GVK.Kind, Name: name, Err: err})
	}

	return outcomes, errors.Join(errs...)
}

func (o *Orchestrator) applyDeployment(ctx context.Context, namespace string, depl *kubeapps.Deployment) error {
	if _, err := o.cluster.CreateDeployment(ctx, namespace, depl); err == nil {
		return nil
	} else if !kubeerr.IsAlreadyExists(err) {
		return err
	}
	_, err := o.cluster.UpdateDeployment(ctx, namespace, depl)
	return err
}

func (o *Orchestrator) applyService(ctx context.Context, namespace string, svc *kubecore.Service) error {
	if _, err := o.cluster.CreateService(ctx, namespace, svc); err == nil {
		return nil
	} else if !kubeerr.IsAlreadyExists(err) {
		return err
	}

	existing, err := o.cluster.GetService(ctx, namespace, svc.Name)
	if err != nil {
		return err
	}

	// the apiserver rejects updates dropping an allocated ClusterIP.
	updated := svc.DeepCopy()
	updated.ResourceVersion = existing.ResourceVersion
	updated.Spec.ClusterIP = existing.Spec.ClusterIP

	_, err = o.cluster.UpdateService(ctx, namespace, updated)
	return err
}

func (o *Orchestrator) applyConfigMap(ctx context.Context, namespace string, cm *kubecore.ConfigMap) error {
	if _, err := o.cluster.CreateConfigMap(ctx, namespace, cm); err == nil {
		return nil
	} else if !kubeerr.IsAlreadyExists(err) {
		return err
	}
	_, err := o.cluster.UpdateConfigMap(ctx, namespace, cm)
	return err
}

// WaitRollout polls the target's deployment until its rollout has
// completed, the timeout elapses, or ctx is canceled.
func (o *Orchestrator) WaitRollout(ctx context.Context, namespace string, target Target) error {
	wctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	_, err := loop.Start(
		wctx, (*kubeapps.Deployment)(nil),
		func(ctx context.Context, last *kubeapps.Deployment) (*kubeapps.Deployment, loop.Next) {
			depl, err := o.cluster.GetDeployment(ctx, namespace, target.Deployment)
			if err != nil {
				return last, loop.Break(err)
			}
			if kube.DeploymentReady(depl) {
				return depl, loop.Break(nil)
			}
			o.logger.Printf(
				"deployment %s: %s", target.Deployment, kube.RolloutProgress(depl),
			)
			return depl, loop.Continue(o.interval)
		},
	)

	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return NewErrRolloutTimeout(target.Deployment, o.timeout)
	}
	return err
}

// logAccessInfo lists the namespace's services for the operator.
// Informational only; failures are logged and do not fail the run.
func (o *Orchestrator) logAccessInfo(ctx context.Context, namespace string) {
	services, err := o.cluster.ListServices(ctx, namespace)
	if err != nil {
		o.logger.Printf("cannot list services in %s: %v", namespace, err)
		return
	}
	for _, svc := range services {
		for _, port := range svc.Spec.Ports {
			o.logger.Printf(
				"service %s: %s:%d", svc.Name, svc.Spec.ClusterIP, port.Port,
			)
		}
	}
}
