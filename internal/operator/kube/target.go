// Package kube submits DebeziumServer resources to a Kubernetes cluster.
package kube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/nucleus/cdc-conductor/internal/core"
	"github.com/nucleus/cdc-conductor/internal/operator"
)

// PodLabel is the label the operator puts on the pods of a DebeziumServer,
// valued with the resource name.
const PodLabel = "app"

// Target implements operator.Target against the cluster API.
type Target struct {
	dynamic   dynamic.Interface
	clientset kubernetes.Interface
	namespace string
}

// New creates a Target from existing clients.
func New(dyn dynamic.Interface, clientset kubernetes.Interface, namespace string) *Target {
	return &Target{dynamic: dyn, clientset: clientset, namespace: namespace}
}

// NewFromConfig builds clients from a kubeconfig path. An empty path falls
// back to the in-cluster configuration.
func NewFromConfig(kubeconfig, namespace string) (*Target, error) {
	cfg, err := clientcmd.BuildConfigFromFlags("", kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("load kube config: %w", err)
	}
	dyn, err := dynamic.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("create dynamic client: %w", err)
	}
	clientset, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("create clientset: %w", err)
	}
	return New(dyn, clientset, namespace), nil
}

// Namespace is where resources are created.
func (t *Target) Namespace() string { return t.namespace }

func (t *Target) resource() dynamic.ResourceInterface {
	return t.dynamic.Resource(operator.GroupVersionResource).Namespace(t.namespace)
}

// Apply creates the resource, or replaces the spec of the one with the same
// name when it belongs to the same pipeline. The suspended flag of an
// existing resource survives a redeploy.
func (t *Target) Apply(ctx context.Context, server *operator.DebeziumServer) (*operator.DebeziumServer, error) {
	obj, err := toUnstructured(server)
	if err != nil {
		return nil, err
	}
	obj.SetNamespace(t.namespace)

	existing, err := t.resource().Get(ctx, server.Name, metav1.GetOptions{})
	switch {
	case apierrors.IsNotFound(err):
		created, err := t.resource().Create(ctx, obj, metav1.CreateOptions{})
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", server.Name, err)
		}
		return fromUnstructured(created)
	case err != nil:
		return nil, fmt.Errorf("get %s: %w", server.Name, err)
	}

	if owner := existing.GetLabels()[operator.LabelConductorID]; owner != server.Labels[operator.LabelConductorID] {
		return nil, core.InvalidArgument("resource %s already belongs to pipeline %s", server.Name, owner)
	}
	suspended, _, err := unstructured.NestedBool(existing.Object, "spec", "runtime", "suspended")
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", server.Name, err)
	}
	if err := unstructured.SetNestedField(obj.Object, suspended, "spec", "runtime", "suspended"); err != nil {
		return nil, fmt.Errorf("convert %s: %w", server.Name, err)
	}

	obj.SetResourceVersion(existing.GetResourceVersion())
	updated, err := t.resource().Update(ctx, obj, metav1.UpdateOptions{})
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", server.Name, err)
	}
	return fromUnstructured(updated)
}

// Find returns the resource labelled with pipelineID.
func (t *Target) Find(ctx context.Context, pipelineID int64) (*operator.DebeziumServer, bool, error) {
	list, err := t.resource().List(ctx, metav1.ListOptions{LabelSelector: selector(pipelineID)})
	if err != nil {
		return nil, false, fmt.Errorf("list resources: %w", err)
	}
	if len(list.Items) == 0 {
		return nil, false, nil
	}
	server, err := fromUnstructured(&list.Items[0])
	if err != nil {
		return nil, false, err
	}
	return server, true, nil
}

// Delete removes every resource labelled with pipelineID.
func (t *Target) Delete(ctx context.Context, pipelineID int64) error {
	list, err := t.resource().List(ctx, metav1.ListOptions{LabelSelector: selector(pipelineID)})
	if err != nil {
		return fmt.Errorf("list resources: %w", err)
	}
	for _, item := range list.Items {
		err := t.resource().Delete(ctx, item.GetName(), metav1.DeleteOptions{})
		if err != nil && !apierrors.IsNotFound(err) {
			return fmt.Errorf("delete %s: %w", item.GetName(), err)
		}
	}
	return nil
}

// SetSuspended merge-patches spec.runtime.suspended.
func (t *Target) SetSuspended(ctx context.Context, server *operator.DebeziumServer, suspended bool) error {
	patch, err := json.Marshal(map[string]any{
		"spec": map[string]any{
			"runtime": map[string]any{"suspended": suspended},
		},
	})
	if err != nil {
		return err
	}
	if _, err := t.resource().Patch(ctx, server.Name, types.MergePatchType, patch, metav1.PatchOptions{}); err != nil {
		return fmt.Errorf("patch %s: %w", server.Name, err)
	}
	return nil
}

// Logs streams the log of the newest pod belonging to server.
func (t *Target) Logs(ctx context.Context, server *operator.DebeziumServer, follow bool) (io.ReadCloser, error) {
	pods, err := t.clientset.CoreV1().Pods(t.namespace).List(ctx, metav1.ListOptions{
		LabelSelector: PodLabel + "=" + server.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("list pods: %w", err)
	}
	if len(pods.Items) == 0 {
		return nil, fmt.Errorf("no pods for %s", server.Name)
	}
	sort.Slice(pods.Items, func(i, j int) bool {
		return pods.Items[j].CreationTimestamp.Before(&pods.Items[i].CreationTimestamp)
	})

	pod := pods.Items[0]
	return t.clientset.CoreV1().Pods(t.namespace).
		GetLogs(pod.Name, &corev1.PodLogOptions{Follow: follow}).
		Stream(ctx)
}

func selector(pipelineID int64) string {
	return operator.LabelConductorID + "=" + strconv.FormatInt(pipelineID, 10)
}

func toUnstructured(server *operator.DebeziumServer) (*unstructured.Unstructured, error) {
	obj, err := runtime.DefaultUnstructuredConverter.ToUnstructured(server)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", server.Name, err)
	}
	return &unstructured.Unstructured{Object: obj}, nil
}

func fromUnstructured(obj *unstructured.Unstructured) (*operator.DebeziumServer, error) {
	var server operator.DebeziumServer
	if err := runtime.DefaultUnstructuredConverter.FromUnstructured(obj.Object, &server); err != nil {
		return nil, fmt.Errorf("convert %s: %w", obj.GetName(), err)
	}
	return &server, nil
}

var _ operator.Target = (*Target)(nil)
