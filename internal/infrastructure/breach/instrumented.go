package breach

import (
	"context"
	"time"

	"github.com/oksasatya/auth-service/internal/domain/entity"
	"github.com/oksasatya/auth-service/pkg/metrics"
)

// Instrumented reports each lookup's result and latency to a metrics.Recorder.
type Instrumented struct {
	next     entity.BreachChecker
	recorder metrics.Recorder
	now      func() time.Time
}

func NewInstrumented(next entity.BreachChecker, recorder metrics.Recorder) *Instrumented {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Instrumented{next: next, recorder: recorder, now: time.Now}
}

func (i *Instrumented) IsBreached(ctx context.Context, password string) (bool, error) {
	start := i.now()
	breached, err := i.next.IsBreached(ctx, password)
	elapsed := i.now().Sub(start)

	switch {
	case err != nil:
		i.recorder.RecordBreachCheck(metrics.BreachError, elapsed)
	case breached:
		i.recorder.RecordBreachCheck(metrics.BreachFound, elapsed)
	default:
		i.recorder.RecordBreachCheck(metrics.BreachClean, elapsed)
	}
	return breached, err
}

var _ entity.BreachChecker = (*Instrumented)(nil)
