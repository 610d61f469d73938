package domain

import "stock_go/pkg/quant"

// Quote is a point-in-time view of one instrument.
// Hot fields first for cache-line efficiency.
type Quote struct {
	PriceMicros     quant.PriceMicros `json:"price,string"`
	LastUpdateUnixM quant.TimeStamp   `json:"last_update,string"`
	Symbol          string            `json:"symbol"`
}
