package orchestrator

import (
	"context"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes"
)

// ReplicaReader reads the current replica count of a Deployment.
type ReplicaReader interface {
	Replicas(ctx context.Context, namespace, name string) (int32, error)
}

// ReplicaWriter sets the replica count of a Deployment.
type ReplicaWriter interface {
	ScaleReplicas(ctx context.Context, namespace, name string, replicas int32) error
}

// CompletionReader reads the current completion count of a Job.
type CompletionReader interface {
	Completions(ctx context.Context, namespace, name string) (int32, error)
}

// CompletionWriter sets the completion count of a Job.
type CompletionWriter interface {
	ScaleCompletions(ctx context.Context, namespace, name string, completions int32) error
}

// Client implements the four scaling interfaces against the Kubernetes API.
type Client struct {
	kube kubernetes.Interface
}

// NewClient creates an orchestration client backed by the given clientset.
func NewClient(kube kubernetes.Interface) *Client {
	return &Client{kube: kube}
}

// Replicas returns spec.replicas of the named Deployment. An unset replicas
// field reads as 1, matching the API server default.
func (c *Client) Replicas(ctx context.Context, namespace, name string) (int32, error) {
	dep, err := c.kube.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return 0, fmt.Errorf("orchestrator: get deployment %s/%s: %w", namespace, name, err)
	}
	if dep.Spec.Replicas == nil {
		return 1, nil
	}
	return *dep.Spec.Replicas, nil
}

// ScaleReplicas patches spec.replicas of the named Deployment.
func (c *Client) ScaleReplicas(ctx context.Context, namespace, name string, replicas int32) error {
	patch := []byte(fmt.Sprintf(`{"spec":{"replicas":%d}}`, replicas))
	_, err := c.kube.AppsV1().Deployments(namespace).Patch(ctx, name,
		types.StrategicMergePatchType, patch, metav1.PatchOptions{})
	if err != nil {
		return fmt.Errorf("orchestrator: patch deployment %s/%s: %w", namespace, name, err)
	}
	return nil
}

// Completions returns spec.completions of the named Job, 0 when unset.
func (c *Client) Completions(ctx context.Context, namespace, name string) (int32, error) {
	job, err := c.kube.BatchV1().Jobs(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return 0, fmt.Errorf("orchestrator: get job %s/%s: %w", namespace, name, err)
	}
	if job.Spec.Completions == nil {
		return 0, nil
	}
	return *job.Spec.Completions, nil
}

// ScaleCompletions patches spec.completions of the named Job.
func (c *Client) ScaleCompletions(ctx context.Context, namespace, name string, completions int32) error {
	patch := []byte(fmt.Sprintf(`{"spec":{"completions":%d}}`, completions))
	_, err := c.kube.BatchV1().Jobs(namespace).Patch(ctx, name,
		types.StrategicMergePatchType, patch, metav1.PatchOptions{})
	if err != nil {
		return fmt.Errorf("orchestrator: patch job %s/%s: %w", namespace, name, err)
	}
	return nil
}
