package request

import "time"

type CreatePromotionRequest struct {
	Title     string    `json:"title" binding:"required"`
	Stock     int64     `json:"stock" binding:"required,gt=0"`
	BeginTime time.Time `json:"begin_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}
