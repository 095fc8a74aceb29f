package engine

import "context"

// Invocation is the handle returned by GeneratePrediction. It identifies the
// run (the correlation id all its events share) and allows waiting for or
// cancelling it. Results are never delivered through the handle; subscribers
// observe them on the event bus.
type Invocation struct {
	correlationID string
	cancel        context.CancelFunc
	done          chan struct{}
	err           error
}

func newInvocation(correlationID string, cancel context.CancelFunc) *Invocation {
	return &Invocation{correlationID: correlationID, cancel: cancel, done: make(chan struct{})}
}

// CorrelationID returns the id stamped on every event of the run.
func (i *Invocation) CorrelationID() string { return i.correlationID }

// Done returns a channel closed when the run has finished, regardless of
// outcome.
func (i *Invocation) Done() <-chan struct{} { return i.done }

// Err returns the run's error, mirroring the payload of its ERROR event.
// It must only be read after Done is closed.
func (i *Invocation) Err() error {
	select {
	case <-i.done:
		return i.err
	default:
		return nil
	}
}

// Stop cancels the run. In-flight model and sandbox calls observe the
// cancellation through their context.
func (i *Invocation) Stop() { i.cancel() }

func (i *Invocation) finish(err error) {
	i.err = err
	close(i.done)
}
