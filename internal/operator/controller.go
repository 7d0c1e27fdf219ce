package operator

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/nucleus/cdc-conductor/internal/core"
	"github.com/nucleus/cdc-conductor/internal/metrics"
)

// Target is the cluster side of deployment. Implementations submit resources
// and report what exists; the operator reconciles asynchronously.
type Target interface {
	// Apply creates the resource or updates the one with the same name.
	Apply(ctx context.Context, server *DebeziumServer) (*DebeziumServer, error)
	// Find looks up the resource labelled with pipelineID.
	Find(ctx context.Context, pipelineID int64) (*DebeziumServer, bool, error)
	// Delete removes every resource labelled with pipelineID.
	Delete(ctx context.Context, pipelineID int64) error
	// SetSuspended flips the paused flag of an existing resource.
	SetSuspended(ctx context.Context, server *DebeziumServer, suspended bool) error
	// Logs streams the log of the pod running the resource.
	Logs(ctx context.Context, server *DebeziumServer, follow bool) (io.ReadCloser, error)
}

// SignalProxy delivers a signal to a running deployment. It returns once the
// signal is accepted, not when the pipeline has processed it.
type SignalProxy interface {
	Send(ctx context.Context, server *DebeziumServer, signal core.Signal) error
}

// Controller runs deployment operations for pipelines.
type Controller struct {
	compiler *Compiler
	target   Target
	proxy    SignalProxy
	metrics  *metrics.Recorder
}

// Option configures a Controller.
type Option func(*Controller)

// WithMetrics records operation outcomes on m.
func WithMetrics(m *metrics.Recorder) Option {
	return func(c *Controller) { c.metrics = m }
}

// NewController wires a compiler to a cluster target and signal proxy.
func NewController(compiler *Compiler, target Target, proxy SignalProxy, opts ...Option) *Controller {
	c := &Controller{compiler: compiler, target: target, proxy: proxy}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile builds the deployment resource without submitting it.
func (c *Controller) Compile(pipeline *core.Pipeline) (*DebeziumServer, error) {
	return c.compiler.Compile(pipeline)
}

// Deploy compiles pipeline and submits the result. A compile failure aborts
// before anything reaches the cluster.
func (c *Controller) Deploy(ctx context.Context, pipeline *core.Pipeline) (server *DebeziumServer, err error) {
	defer func() { c.metrics.ObserveOperation("deploy", err) }()

	compiled, err := c.compiler.Compile(pipeline)
	if err != nil {
		log.Printf("[operator] compile failed: %v", err)
		return nil, err
	}
	applied, err := c.target.Apply(ctx, compiled)
	if err != nil {
		return nil, fmt.Errorf("apply pipeline %d: %w", pipeline.ID, err)
	}
	log.Printf("[operator] deployed pipeline %d as %s (hash %s)",
		pipeline.ID, applied.Name, applied.Annotations[AnnotationConfigHash])
	return applied, nil
}

// Undeploy removes the deployment of pipelineID. Removing an absent
// deployment is not an error.
func (c *Controller) Undeploy(ctx context.Context, pipelineID int64) (err error) {
	defer func() { c.metrics.ObserveOperation("undeploy", err) }()

	if err := c.target.Delete(ctx, pipelineID); err != nil {
		return fmt.Errorf("undeploy pipeline %d: %w", pipelineID, err)
	}
	log.Printf("[operator] undeployed pipeline %d", pipelineID)
	return nil
}

// Start resumes a stopped deployment.
func (c *Controller) Start(ctx context.Context, pipelineID int64) (err error) {
	defer func() { c.metrics.ObserveOperation("start", err) }()
	return c.changeStatus(ctx, pipelineID, false)
}

// Stop suspends a running deployment.
func (c *Controller) Stop(ctx context.Context, pipelineID int64) (err error) {
	defer func() { c.metrics.ObserveOperation("stop", err) }()
	return c.changeStatus(ctx, pipelineID, true)
}

func (c *Controller) changeStatus(ctx context.Context, pipelineID int64, suspended bool) error {
	server, err := c.mustFind(ctx, pipelineID)
	if err != nil {
		return err
	}
	if server.Spec.Runtime.Suspended == suspended {
		log.Printf("[operator] pipeline %d already suspended=%t", pipelineID, suspended)
		return nil
	}
	if err := c.target.SetSuspended(ctx, server, suspended); err != nil {
		return fmt.Errorf("set suspended=%t on pipeline %d: %w", suspended, pipelineID, err)
	}
	log.Printf("[operator] pipeline %d suspended=%t", pipelineID, suspended)
	return nil
}

// SendSignal forwards signal to the running deployment of pipelineID.
func (c *Controller) SendSignal(ctx context.Context, pipelineID int64, signal core.Signal) (err error) {
	defer func() { c.metrics.ObserveSignal(signal.Type, err) }()

	normalized, err := signal.Normalize()
	if err != nil {
		return err
	}
	signal = normalized

	server, err := c.mustFind(ctx, pipelineID)
	if err != nil {
		return err
	}
	if err := c.proxy.Send(ctx, server, signal); err != nil {
		return fmt.Errorf("send %s signal to pipeline %d: %w", signal.Type, pipelineID, err)
	}
	log.Printf("[operator] sent %s signal %s to pipeline %d", signal.Type, signal.ID, pipelineID)
	return nil
}

// FindDeployment reports the deployment of pipelineID, if any.
func (c *Controller) FindDeployment(ctx context.Context, pipelineID int64) (*DebeziumServer, bool, error) {
	server, ok, err := c.target.Find(ctx, pipelineID)
	if err != nil {
		return nil, false, fmt.Errorf("find pipeline %d: %w", pipelineID, err)
	}
	return server, ok, nil
}

// Logs opens the log stream of the deployment of pipelineID.
func (c *Controller) Logs(ctx context.Context, pipelineID int64, follow bool) (io.ReadCloser, error) {
	server, err := c.mustFind(ctx, pipelineID)
	if err != nil {
		return nil, err
	}
	return c.target.Logs(ctx, server, follow)
}

func (c *Controller) mustFind(ctx context.Context, pipelineID int64) (*DebeziumServer, error) {
	server, ok, err := c.FindDeployment(ctx, pipelineID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, core.NotFound("Pipeline with id %d not found", pipelineID)
	}
	return server, nil
}
