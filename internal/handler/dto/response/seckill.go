package response

import "strconv"

type SeckillOrderResponse struct {
	OrderID string `json:"order_id"`
}

func FromOrderID(orderID uint64) *SeckillOrderResponse {
	return &SeckillOrderResponse{OrderID: strconv.FormatUint(orderID, 10)}
}
