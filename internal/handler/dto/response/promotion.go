package response

import (
	"strconv"
	"time"

	"flashsale-api/internal/usecase/queries"
)

// Ids are decimal strings on the wire: they occupy the full uint64 range,
// which JSON number consumers truncate past 2^53.
type PromotionResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Stock     int64     `json:"stock"`
	BeginTime time.Time `json:"begin_time"`
	EndTime   time.Time `json:"end_time"`
	CreatedAt time.Time `json:"created_at"`
}

func FromPromotionView(v *queries.PromotionView) *PromotionResponse {
	return &PromotionResponse{
		ID:        strconv.FormatUint(v.ID, 10),
		Title:     v.Title,
		Stock:     v.Stock,
		BeginTime: v.BeginTime,
		EndTime:   v.EndTime,
		CreatedAt: v.CreatedAt,
	}
}
