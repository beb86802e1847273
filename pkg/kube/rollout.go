package kube

import (
	"fmt"

	kubeapps "k8s.io/api/apps/v1"
)

// DeploymentReady reports whether the latest rollout of the deployment has completed.
//
// It mirrors what `kubectl rollout status deployment` waits for:
// the controller has observed the current generation, and all desired
// replicas are updated, available and ready.
func DeploymentReady(d *kubeapps.Deployment) bool {
	if d.Status.ObservedGeneration < d.Generation {
		return false
	}

	desired := int32(1)
	if d.Spec.Replicas != nil {
		desired = *d.Spec.Replicas
	}

	return d.Status.UpdatedReplicas == desired &&
		d.Status.AvailableReplicas == desired &&
		d.Status.ReadyReplicas == desired
}

// RolloutProgress describes how far a rollout has come. For logs.
func RolloutProgress(d *kubeapps.Deployment) string {
	desired := int32(1)
	if d.Spec.Replicas != nil {
		desired = *d.Spec.Replicas
	}
	return fmt.Sprintf(
		"%d/%d updated, %d/%d available",
		d.Status.UpdatedReplicas, desired,
		d.Status.AvailableReplicas, desired,
	)
}
