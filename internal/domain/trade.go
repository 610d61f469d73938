package domain

import "stock_go/pkg/quant"

// Trade is the record emitted when two resting orders cross.
// Execution price is always the resting sell's quote.
type Trade struct {
	Symbol      string            `json:"symbol"`
	Qty         quant.Qty         `json:"qty"`
	PriceMicros quant.PriceMicros `json:"price"`
	BuySeq      uint64            `json:"buy_seq"`
	SellSeq     uint64            `json:"sell_seq"`
	TsUnixM     int64             `json:"ts"`
}
