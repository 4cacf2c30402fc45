package models

type ShippingCalculation struct {
	Subtotal      float64 `json:"subtotal"`
	Shipping      float64 `json:"shipping"`
	Total         float64 `json:"total"`
	FreeThreshold float64 `json:"free_threshold"`
	IsFree        bool    `json:"is_free"`
}
