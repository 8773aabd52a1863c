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
	"fmt"

	"github.com/flamehost/profsink/internal/model"
	"go.uber.org/zap"
)

// StoreReader is the typed read facade used by the aggregation and
// RPC layers: one small struct wrapping a Store, with SetTrace toggling
// verbose per-lookup logging the way HistoryReaderV3 does for state
// reads, and one typed Get per domain value type instead of callers
// decoding table bytes themselves.
type StoreReader struct {
	store  *Store
	trace  bool
	logger *zap.Logger
}

func NewStoreReader(store *Store, logger *zap.Logger) *StoreReader {
	return &StoreReader{store: store, logger: logger}
}

func (r *StoreReader) SetTrace(trace bool) { r.trace = trace }

func (r *StoreReader) String() string {
	return fmt.Sprintf("StoreReader(trace=%t)", r.trace)
}

func (r *StoreReader) GetFrameMetaData(id model.FrameId) (model.FrameMetaData, bool, error) {
	key := id.Encode()
	raw, ok, err := r.store.StackFrames.Get(key[:])
	if err != nil || !ok {
		r.traceLog("GetFrameMetaData", id, nil, err)
		return model.FrameMetaData{}, false, err
	}
	v, err := DecodeFrameMetaData(raw)
	r.traceLog("GetFrameMetaData", id, v, err)
	return v, err == nil, err
}

func (r *StoreReader) GetExecutableMeta(id model.FileId) (model.ExecutableMeta, bool, error) {
	raw, ok, err := r.store.Executables.Get(id[:])
	if err != nil || !ok {
		r.traceLog("GetExecutableMeta", id, nil, err)
		return model.ExecutableMeta{}, false, err
	}
	v, err := DecodeExecutableMeta(raw)
	r.traceLog("GetExecutableMeta", id, v, err)
	return v, err == nil, err
}

func (r *StoreReader) GetStackTrace(hash model.TraceHash) ([]model.Frame, bool, error) {
	raw, ok, err := r.store.StackTraces.Get(hash[:])
	if err != nil || !ok {
		r.traceLog("GetStackTrace", hash, nil, err)
		return nil, false, err
	}
	v, err := DecodeFrameList(raw)
	r.traceLog("GetStackTrace", hash, v, err)
	return v, err == nil, err
}

func (r *StoreReader) GetTraceCount(id model.TraceCountId) (model.TraceCount, bool, error) {
	key := id.Encode()
	raw, ok, err := r.store.TraceEvents.Get(key[:])
	if err != nil || !ok {
		r.traceLog("GetTraceCount", id, nil, err)
		return model.TraceCount{}, false, err
	}
	v, err := DecodeTraceCount(raw)
	r.traceLog("GetTraceCount", id, v, err)
	return v, err == nil, err
}

func (r *StoreReader) GetMetricValue(key model.MetricKey) (int64, bool, error) {
	k := key.Encode()
	raw, ok, err := r.store.Metrics.Get(k[:])
	if err != nil || !ok {
		r.traceLog("GetMetricValue", key, nil, err)
		return 0, false, err
	}
	v, err := DecodeMetricValue(raw)
	r.traceLog("GetMetricValue", key, v, err)
	return v, err == nil, err
}

func (r *StoreReader) traceLog(op string, key, value any, err error) {
	if !r.trace || r.logger == nil {
		return
	}
	r.logger.Debug(op, zap.Any("key", key), zap.Any("value", value), zap.Error(err))
}
