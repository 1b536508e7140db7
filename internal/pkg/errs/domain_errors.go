package errs

import "errors"

// Domain-specific sentinel errors for the usecase layers
var (
	// Promotion errors
	ErrPromotionNotFound = errors.New("promotion not found")
	ErrInvalidSaleWindow = errors.New("invalid sale window")

	// Admission errors
	ErrSeckillNotStarted = errors.New("seckill not started")
	ErrSeckillEnded      = errors.New("seckill ended")
	ErrSoldOut           = errors.New("sold out")
	ErrDuplicateOrder    = errors.New("duplicate order")
	ErrSystemBusy        = errors.New("system busy")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
