// Copyright 2024 The Erigon Authors
// (modifications)
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

// Package catalog embeds the two JSON resources spec.md §6 fixes at
// build time: unwinder error codes (for pretty-printing abort
// reasons) and metric specs (for internal/dbstore's merge operator to
// tell a counter from a gauge). Both loaders are parse-failure
// tolerant: a malformed catalog falls back to an empty one rather than
// failing startup, since neither is load-bearing for correctness --
// spec.md §5 already treats an unknown metric id as last-write-wins.
package catalog

import (
	_ "embed"
	"encoding/json"

	"github.com/flamehost/profsink/internal/model"
)

//go:embed data/errors.json
var errorsJSON []byte

//go:embed data/metrics.json
var metricsJSON []byte

// ErrorSpec describes one unwinder abort/error code.
type ErrorSpec struct {
	Id          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Obsolete    bool   `json:"obsolete,omitempty"`
}

// ErrorCatalog indexes ErrorSpec by id for O(1) pretty-printing.
type ErrorCatalog map[uint64]ErrorSpec

// Describe returns the human-readable name for an unwinder error code,
// or ("", false) if id isn't in the catalog.
func (c ErrorCatalog) Describe(id uint64) (ErrorSpec, bool) {
	spec, ok := c[id]
	return spec, ok
}

// LoadErrors decodes the embedded errors.json. A decode failure yields
// an empty, non-nil ErrorCatalog and no error -- see package doc.
func LoadErrors() ErrorCatalog {
	var specs []ErrorSpec
	if err := json.Unmarshal(errorsJSON, &specs); err != nil {
		return ErrorCatalog{}
	}
	out := make(ErrorCatalog, len(specs))
	for _, s := range specs {
		out[s.Id] = s
	}
	return out
}

type metricSpecJSON struct {
	Id    uint32 `json:"id"`
	Unit  string `json:"unit,omitempty"`
	Name  string `json:"name"`
	Field string `json:"field,omitempty"`
	Type  string `json:"type"`
}

// LoadMetrics decodes the embedded metrics.json into a
// model.MetricRegistry, the way internal/dbstore's merge operator
// expects to receive one. An unrecognized "type" value is skipped
// rather than failing the whole catalog; a decode failure yields an
// empty registry.
func LoadMetrics() model.MetricRegistry {
	var specs []metricSpecJSON
	if err := json.Unmarshal(metricsJSON, &specs); err != nil {
		return model.MetricRegistry{}
	}
	out := make(model.MetricRegistry, len(specs))
	for _, s := range specs {
		var kind model.MetricKind
		switch s.Type {
		case "counter":
			kind = model.MetricCounter
		case "gauge":
			kind = model.MetricGauge
		default:
			continue
		}
		out[s.Id] = model.MetricSpec{Name: s.Name, Kind: kind}
	}
	return out
}
