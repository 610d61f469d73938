package event

import (
	"stock_go/internal/domain"
	"stock_go/pkg/quant"
)

// Type defines the type of event.
type Type uint16

const (
	EvPriceUpdate Type = iota + 1
	EvTrade
	EvSystemHalt
)

// Event is the interface for all market events.
type Event interface {
	GetSeq() uint64
	GetTs() quant.TimeStamp
	GetType() Type
}

// BaseEvent contains common fields for all events.
type BaseEvent struct {
	Seq uint64          `json:"seq"`
	Ts  quant.TimeStamp `json:"ts"`
}

func (e BaseEvent) GetSeq() uint64         { return e.Seq }
func (e BaseEvent) GetTs() quant.TimeStamp { return e.Ts }

// PriceUpdateEvent represents one simulator perturbation landing on the ledger.
type PriceUpdateEvent struct {
	BaseEvent
	Symbol      string            `json:"symbol"`
	PriceMicros quant.PriceMicros `json:"price"`
}

func (e PriceUpdateEvent) GetType() Type { return EvPriceUpdate }

// TradeEvent represents a matched pair of resting orders.
type TradeEvent struct {
	BaseEvent
	Trade domain.Trade `json:"trade"`
}

func (e TradeEvent) GetType() Type { return EvTrade }

// HaltEvent is emitted when the trading halt breaker trips or resets.
type HaltEvent struct {
	BaseEvent
	Symbol string `json:"symbol"`
	Open   bool   `json:"open"`
}

func (e HaltEvent) GetType() Type { return EvSystemHalt }
