package types

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

// ServiceParam is the genesis payload of a single service.
type ServiceParam struct {
	Name    string `toml:"name" json:"name"`
	Payload string `toml:"payload" json:"payload"`
}

// Genesis describes the initial state: one entry per service, applied in order.
type Genesis struct {
	Timestamp uint64         `toml:"timestamp" json:"timestamp"`
	PrevHash  string         `toml:"prevhash" json:"prevhash"`
	Services  []ServiceParam `toml:"services" json:"services"`
}

// ParseGenesisTOML decodes a genesis file.
func ParseGenesisTOML(data []byte) (*Genesis, error) {
	var genesis Genesis
	if err := toml.Unmarshal(data, &genesis); err != nil {
		return nil, fmt.Errorf("could not decode genesis: %w", err)
	}
	seen := make(map[string]struct{}, len(genesis.Services))
	for i, s := range genesis.Services {
		if s.Name == "" {
			return nil, fmt.Errorf("genesis service entry %d has no name", i)
		}
		if _, ok := seen[s.Name]; ok {
			return nil, fmt.Errorf("duplicate genesis entry for service %s", s.Name)
		}
		seen[s.Name] = struct{}{}
	}
	return &genesis, nil
}

// EncodeTOML encodes the genesis as a TOML document.
func (g *Genesis) EncodeTOML() ([]byte, error) {
	return toml.Marshal(g)
}

// PayloadOf returns the genesis payload of the given service.
func (g *Genesis) PayloadOf(service string) (string, bool) {
	for _, s := range g.Services {
		if s.Name == service {
			return s.Payload, true
		}
	}
	return "", false
}
