package directions

import "context"

// CompletionFunc receives the outcome of an asynchronous call. Exactly one
// of the response or the error is non-nil. Completions for one client are
// always invoked sequentially on its dispatcher goroutine.
type CompletionFunc func(*RouteResponse, error)

// Task is a handle to one in-flight asynchronous call.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Cancel abandons the call. A cancelled task never invokes its completion;
// other in-flight calls are unaffected.
func (t *Task) Cancel() { t.cancel() }

// Done is closed once the call has finished or been cancelled.
func (t *Task) Done() <-chan struct{} { return t.done }

// GetRoutesAsync issues one asynchronous directions call. The completion
// fires exactly once on the client's dispatcher goroutine, unless the
// returned task is cancelled first.
func (c *Client) GetRoutesAsync(opts *RouteOptions, completion CompletionFunc) *Task {
	return c.async(func(ctx context.Context) (*RouteResponse, error) {
		return c.GetRoutes(ctx, opts)
	}, completion)
}

// MatchAsync issues one asynchronous map-matching call with the same
// delivery contract as GetRoutesAsync.
func (c *Client) MatchAsync(opts *MatchOptions, completion CompletionFunc) *Task {
	return c.async(func(ctx context.Context) (*RouteResponse, error) {
		return c.Match(ctx, opts)
	}, completion)
}

func (c *Client) async(call func(context.Context) (*RouteResponse, error), completion CompletionFunc) *Task {
	ctx, cancel := context.WithCancel(context.Background())
	task := &Task{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(task.done)
		defer cancel()
		resp, err := call(ctx)
		if ctx.Err() != nil {
			return
		}
		c.deliver(func() { completion(resp, err) })
	}()
	return task
}
