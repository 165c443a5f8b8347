package replay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"recomp/internal/backend"
	"recomp/internal/literal"
	"recomp/internal/program"
	"recomp/internal/shape"
)

// FeedMode says whether and how a streaming input feed is required.
type FeedMode int

const (
	// FeedNone means the program takes no streamed input.
	FeedNone FeedMode = iota

	// FeedExplicit means the caller overrode the stream shape.
	FeedExplicit

	// FeedInferred means the shape was inferred from the program's single
	// streaming input operation.
	FeedInferred
)

// FeedPlan is the streaming decision, evaluated once before execution.
type FeedPlan struct {
	Mode  FeedMode
	Shape shape.Shape
}

// PlanFeed decides whether a streaming feed is required. First match
// wins: an explicit shape override, then inference from the program's
// streaming input operations (zero means no feed, exactly one supplies
// the shape, more than one is ErrAmbiguousStreamingSource), then no
// feed.
func PlanFeed(prog *program.Program, opts Options) (FeedPlan, error) {
	if opts.StreamShapeOverride != nil {
		return FeedPlan{Mode: FeedExplicit, Shape: *opts.StreamShapeOverride}, nil
	}

	if opts.InferStreamShape {
		shapes := prog.InfeedShapes()
		switch len(shapes) {
		case 0:
			return FeedPlan{Mode: FeedNone}, nil
		case 1:
			return FeedPlan{Mode: FeedInferred, Shape: shapes[0]}, nil
		default:
			return FeedPlan{}, fmt.Errorf("%w: program %s has %d streaming input operations, inference needs 0 or 1",
				ErrAmbiguousStreamingSource, prog.Name, len(shapes))
		}
	}

	return FeedPlan{Mode: FeedNone}, nil
}

// Feeder is the single background worker feeding the streaming input
// channel while the computation executes. At most one feeder exists per
// replayed computation: streamed values must arrive in order, so there
// is nothing to gain and a race to lose from concurrent producers.
type Feeder struct {
	cancel context.CancelFunc
	done   chan struct{}
	err    error // written by the worker before done is closed
}

// StartFeeder launches the feed worker, or returns nil when the plan
// requires no feed. The worker generates one synthetic value of the
// planned shape and pushes that same value count times, sequentially,
// blocking on each push until the engine accepts it. A failed push ends
// the worker; cancellation via Stop ends it between pushes.
func StartFeeder(ctx context.Context, client backend.Client, plan FeedPlan, count int, logger *slog.Logger) *Feeder {
	if plan.Mode == FeedNone {
		return nil
	}

	fctx, cancel := context.WithCancel(ctx)
	f := &Feeder{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(f.done)
		f.err = f.run(fctx, client, plan, count, logger)
	}()

	return f
}

func (f *Feeder) run(ctx context.Context, client backend.Client, plan FeedPlan, count int, logger *slog.Logger) error {
	// One value, reused across every push. Generating per push would
	// only burn time; the consumer sees identical data either way.
	lit := literal.MakeFake(plan.Shape)
	logger.Debug("feed worker started", "shape", plan.Shape.String(), "feeds", count)

	for i := 0; i < count; i++ {
		if err := client.PushToInfeed(ctx, lit); err != nil {
			if errors.Is(err, context.Canceled) {
				logger.Debug("feed worker cancelled", "pushed", i, "planned", count)
				return nil
			}
			return fmt.Errorf("%w: push %d of %d: %v", ErrFeedWorker, i+1, count, err)
		}
	}

	logger.Debug("feed worker finished", "pushed", count)
	return nil
}

// Stop cancels the worker and waits for it to terminate, bounded by
// timeout. It returns the worker's error, or ErrFeedWorker if the worker
// did not stop in time. Stop on a nil feeder is a no-op.
func (f *Feeder) Stop(timeout time.Duration) error {
	if f == nil {
		return nil
	}

	f.cancel()
	select {
	case <-f.done:
		return f.err
	case <-time.After(timeout):
		return fmt.Errorf("%w: worker did not stop within %v", ErrFeedWorker, timeout)
	}
}
