package commands

import (
	"context"
	"time"

	"flashsale-api/internal/infra/seckill"
)

// Ports to the admission-side store, narrowed so commands stay mockable
// without touching a live key-value store.
type IDGenerator interface {
	NextID(ctx context.Context, namespace string) (uint64, error)
}

type Admitter interface {
	Admit(ctx context.Context, promotionID, userID, orderID uint64, now time.Time) (seckill.Code, error)
}

type AdmissionWarmer interface {
	Warmup(ctx context.Context, promotionID uint64, stock int64, begin, end time.Time) error
}
