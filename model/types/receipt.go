package types

import (
	"fmt"

	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

// Event is emitted by a service during a transaction. Events are not part of the state.
type Event struct {
	Service string `json:"service"`
	Topic   string `json:"topic"`
	Data    string `json:"data"`
}

func (e Event) String() string {
	return fmt.Sprintf("%s.%s: %s", e.Service, e.Topic, e.Data)
}

// Receipt captures the outcome of a single transaction in a block.
type Receipt struct {
	// StateRoot is the root committed by the block the receipt belongs to.
	StateRoot   Hash            `json:"state_root"`
	Height      uint64          `json:"height"`
	TxHash      Hash            `json:"tx_hash"`
	CyclesUsed  uint64          `json:"cycles_used"`
	Events      []Event         `json:"events"`
	ServiceName string          `json:"service_name"`
	Method      string          `json:"method"`
	Response    ServiceResponse `json:"response"`
}

// Failed returns true if the transaction body was reverted.
func (r Receipt) Failed() bool {
	return r.Response.IsError()
}

// Bloom is a 2048-bit bloom filter over the events of a block.
type Bloom = ethtypes.Bloom

// AddEventsToBloom adds the service and topic of each event to the bloom filter.
func AddEventsToBloom(bloom *Bloom, events []Event) {
	for _, e := range events {
		bloom.Add([]byte(e.Service))
		bloom.Add([]byte(e.Service + "." + e.Topic))
	}
}

// BloomContainsEvent tests the bloom filter for an event topic of a service.
func BloomContainsEvent(bloom Bloom, service, topic string) bool {
	return bloom.Test([]byte(service + "." + topic))
}
