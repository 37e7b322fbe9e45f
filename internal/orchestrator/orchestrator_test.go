package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appsv1 "k8s.io/api/apps/v1"
	batchv1 "k8s.io/api/batch/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
	"k8s.io/utils/ptr"
)

func newDeployment(namespace, name string, replicas int32) *appsv1.Deployment {
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Spec:       appsv1.DeploymentSpec{Replicas: ptr.To(replicas)},
	}
}

func newJob(namespace, name string, completions int32) *batchv1.Job {
	return &batchv1.Job{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Spec:       batchv1.JobSpec{Completions: ptr.To(completions)},
	}
}

func TestReplicas(t *testing.T) {
	kube := fake.NewSimpleClientset(
		newDeployment("ns", "pod1", 4),
		newDeployment("ns", "pod2", 8),
	)
	c := NewClient(kube)

	got, err := c.Replicas(context.Background(), "ns", "pod1")
	require.NoError(t, err)
	assert.Equal(t, int32(4), got)

	got, err = c.Replicas(context.Background(), "ns", "pod2")
	require.NoError(t, err)
	assert.Equal(t, int32(8), got)
}

func TestReplicas_NotFound(t *testing.T) {
	c := NewClient(fake.NewSimpleClientset())

	_, err := c.Replicas(context.Background(), "ns", "missing")
	require.Error(t, err)
}

func TestReplicas_NilDefaultsToOne(t *testing.T) {
	dep := &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: "web", Namespace: "ns"},
	}
	c := NewClient(fake.NewSimpleClientset(dep))

	got, err := c.Replicas(context.Background(), "ns", "web")
	require.NoError(t, err)
	assert.Equal(t, int32(1), got)
}

func TestScaleReplicas(t *testing.T) {
	kube := fake.NewSimpleClientset(newDeployment("ns", "web", 2))
	c := NewClient(kube)

	err := c.ScaleReplicas(context.Background(), "ns", "web", 5)
	require.NoError(t, err)

	dep, err := kube.AppsV1().Deployments("ns").Get(context.Background(), "web", metav1.GetOptions{})
	require.NoError(t, err)
	require.NotNil(t, dep.Spec.Replicas)
	assert.Equal(t, int32(5), *dep.Spec.Replicas)
}

func TestCompletions(t *testing.T) {
	kube := fake.NewSimpleClientset(
		newJob("ns", "pod1", 1),
		newJob("ns", "pod2", 2),
	)
	c := NewClient(kube)

	got, err := c.Completions(context.Background(), "ns", "pod1")
	require.NoError(t, err)
	assert.Equal(t, int32(1), got)

	got, err = c.Completions(context.Background(), "ns", "pod2")
	require.NoError(t, err)
	assert.Equal(t, int32(2), got)
}

func TestScaleCompletions(t *testing.T) {
	kube := fake.NewSimpleClientset(newJob("ns", "batch", 1))
	c := NewClient(kube)

	err := c.ScaleCompletions(context.Background(), "ns", "batch", 3)
	require.NoError(t, err)

	job, err := kube.BatchV1().Jobs("ns").Get(context.Background(), "batch", metav1.GetOptions{})
	require.NoError(t, err)
	require.NotNil(t, job.Spec.Completions)
	assert.Equal(t, int32(3), *job.Spec.Completions)
}
