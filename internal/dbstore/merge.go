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

package dbstore

import (
	"github.com/flamehost/profsink/internal/model"
	"github.com/flamehost/profsink/internal/xmath"
)

// MergeFunc folds a previously-stored encoded value (if any) with a
// sequence of newly-written encoded values, in order, and returns the
// encoded result to store. It must produce the same output regardless
// of how the new values were batched (spec §4.1, "Merge operator").
//
// mdbx has no merge-operator concept of its own (that distinction is
// KV-engine internals, out of scope here); Table.Insert on a
// HasMerge table instead performs the fold eagerly -- read the
// current value, fold it with the one new write, store the result --
// which is observably identical to a lazy fold-on-read as long as the
// fold is associative, and the registry-selected reductions below are.
type MergeFunc func(key []byte, prev []byte, newValues [][]byte) ([]byte, error)

// MetricsMerge builds the metrics table's merge function against the
// given registry (spec §4.1.2).
func MetricsMerge(registry model.MetricRegistry) MergeFunc {
	return func(key []byte, prev []byte, newValues [][]byte) ([]byte, error) {
		mk, ok := model.DecodeMetricKey(key)
		if !ok {
			return nil, ErrCorruptKey
		}
		spec, known := registry.Lookup(mk.MetricId)
		if !known {
			// Unknown metric id: last write wins within the chain.
			if len(newValues) == 0 {
				return prev, nil
			}
			return newValues[len(newValues)-1], nil
		}

		acc := int64(0)
		if prev != nil {
			v, err := DecodeMetricValue(prev)
			if err != nil {
				return nil, err
			}
			acc = v
		}
		for _, raw := range newValues {
			v, err := DecodeMetricValue(raw)
			if err != nil {
				return nil, err
			}
			switch spec.Kind {
			case model.MetricCounter:
				sum := acc + v
				if v > 0 && sum < acc {
					sum = xmath.MaxInt64
				} else if v < 0 && sum > acc {
					sum = xmath.MinInt64
				}
				acc = sum
			case model.MetricGauge:
				acc = xmath.MaxInt64Val(acc, v)
			}
		}
		return EncodeMetricValue(acc), nil
	}
}
