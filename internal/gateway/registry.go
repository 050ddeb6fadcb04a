package gateway

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/aabid-khan7222/myschool-sub002/internal/domain"
	"golang.org/x/sync/singleflight"
)

// Operation is one network round trip run on behalf of every caller that
// shares its fingerprint.
type Operation func(ctx context.Context) (domain.Payload, error)

// Registry guarantees at most one in-flight operation per fingerprint.
// An entry lives from the first call until its operation settles.
type Registry struct {
	group   singleflight.Group
	pending atomic.Int64
	metrics *Metrics
}

func NewRegistry(metrics *Metrics) *Registry {
	return &Registry{metrics: metrics}
}

// Dedupe joins the in-flight operation registered under fingerprint, or
// starts op and registers it. It does not block. The operation runs on a
// context detached from ctx cancellation so one caller giving up never
// aborts the request for the others.
func (r *Registry) Dedupe(ctx context.Context, fingerprint string, op Operation) *Future {
	detached := context.WithoutCancel(ctx)

	ch := r.group.DoChan(fingerprint, func() (any, error) {
		r.pending.Add(1)
		r.metrics.pendingDelta(1)
		defer func() {
			r.pending.Add(-1)
			r.metrics.pendingDelta(-1)
		}()

		return runOperation(detached, op)
	})

	return newFuture(ch, r.metrics)
}

// Pending reports the number of operations currently running.
func (r *Registry) Pending() int {
	return int(r.pending.Load())
}

func runOperation(ctx context.Context, op Operation) (payload domain.Payload, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			payload = nil
			err = fmt.Errorf("request operation panicked: %v", recovered)
		}
	}()

	return op(ctx)
}

// Future is one caller's handle on a registered operation. Every Future for
// the same operation settles with the identical payload and error.
type Future struct {
	done    chan struct{}
	payload domain.Payload
	err     error
	shared  bool
}

func newFuture(ch <-chan singleflight.Result, metrics *Metrics) *Future {
	f := &Future{done: make(chan struct{})}
	go func() {
		res := <-ch
		f.payload, _ = res.Val.(domain.Payload)
		f.err = res.Err
		f.shared = res.Shared
		if res.Shared {
			metrics.sharedResult()
		}
		close(f.done)
	}()
	return f
}

// Done is closed once the operation has settled.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the operation settles or ctx ends. Ending ctx only stops
// this caller from waiting; the operation itself keeps running.
func (f *Future) Wait(ctx context.Context) (domain.Payload, error) {
	select {
	case <-f.done:
		return f.payload, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Shared blocks until the operation settles and reports whether it served
// more than one caller.
func (f *Future) Shared() bool {
	<-f.done
	return f.shared
}
