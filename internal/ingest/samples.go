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

package ingest

import (
	"time"

	"github.com/flamehost/profsink/internal/dbstore"
	"github.com/flamehost/profsink/internal/model"
	"github.com/flamehost/profsink/internal/xmath"
)

const attrThreadName = "thread.name"

// nsBoundary is spec.md §8 testable property 5's
// `1_704_063_600` constant (2023-12-31T23:00:00Z, used only as a
// magnitude discriminator between nanosecond and millisecond epoch
// values, not as a calendar date).
const nsBoundary = 1_704_063_600

// Clock returns the current time in seconds since the epoch, used as
// the Pass 2 fallback timestamp when a sample carries none (spec
// §4.5 step 5: "fallback: a single 'now' in seconds if empty"). A
// package variable so tests can pin it.
var Clock = func() uint64 { return uint64(time.Now().Unix()) }

// normalizeTimestamp converts a raw `timestamps_unix_nano` entry into
// whole seconds, picking nanoseconds vs. milliseconds by magnitude
// (spec §8 property 5).
func normalizeTimestamp(ts uint64) uint64 {
	if ts > nsBoundary*1_000_000_000 {
		return ts / 1_000_000_000
	}
	return ts / 1_000
}

// runPass2 walks every profile's samples, computing trace hashes and
// queuing stack_traces/trace_events writes into one batch committed
// atomically at the end (spec §4.5: "All inserts in Pass 2 go through
// a single batched write").
func runPass2(store *dbstore.Store, dic *Dictionary, resources []ResourceProfiles, frames []model.Frame) error {
	batch := dbstore.NewWriteBatch(store.Engine)

	for _, rp := range resources {
		for _, sp := range rp.ScopeProfiles {
			for _, profile := range sp.Profiles {
				if len(profile.SampleType) != 1 {
					// PartialProfileSkip: not an error, spec.md §7.
					continue
				}
				kind := model.SampleKindFromTypeUnit(profile.SampleType[0].Type, profile.SampleType[0].Unit)
				if err := ingestProfileSamples(store, dic, batch, profile, frames, kind); err != nil {
					return err
				}
			}
		}
	}

	return batch.Commit()
}

func ingestProfileSamples(store *dbstore.Store, dic *Dictionary, batch *dbstore.WriteBatch, profile Profile, frames []model.Frame, kind model.SampleKind) error {
	for _, sample := range profile.Samples {
		traceFrames, err := sampleFrames(dic, profile, sample, frames)
		if err != nil {
			return err
		}

		hash := model.HashFrames(traceFrames)
		batch.Insert(store.StackTraces, hash[:], dbstore.EncodeFrameList(traceFrames))

		comm, _ := dic.attrByKey(sample.AttributeIndices, attrThreadName)

		var stamps []uint64
		if len(sample.TimestampsUnixNano) == 0 {
			stamps = []uint64{Clock()}
		}
		for _, raw := range sample.TimestampsUnixNano {
			stamps = append(stamps, normalizeTimestamp(raw))
		}
		for _, seconds := range stamps {
			id, err := xmath.RandUint64()
			if err != nil {
				return err
			}
			key := model.TraceCountId{Timestamp: seconds, Id: id, Kind: kind}.Encode()
			value := model.TraceCount{Timestamp: seconds, TraceHash: hash, Count: 1, Comm: comm}
			batch.Insert(store.TraceEvents, key[:], dbstore.EncodeTraceCount(value))
		}
	}
	return nil
}

// sampleFrames resolves a sample's location range
// (locations_start_index/locations_length into
// profile.location_indices, which in turn indexes the Pass-1 frame
// list) into the ordered Frame slice HashFrames expects.
func sampleFrames(dic *Dictionary, profile Profile, sample Sample, frames []model.Frame) ([]model.Frame, error) {
	start := int(sample.LocationsStartIndex)
	length := int(sample.LocationsLength)
	if start < 0 || length < 0 || start+length > len(profile.LocationIndices) {
		return nil, ErrIndexOutOfBounds
	}

	out := make([]model.Frame, length)
	for i := 0; i < length; i++ {
		locIdx := profile.LocationIndices[start+i]
		if locIdx < 0 || int(locIdx) >= len(frames) {
			return nil, ErrIndexOutOfBounds
		}
		out[i] = frames[locIdx]
	}
	_ = dic
	return out, nil
}
