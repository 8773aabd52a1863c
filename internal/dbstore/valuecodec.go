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
	"time"

	"github.com/flamehost/profsink/internal/dbstore/archive"
	"github.com/flamehost/profsink/internal/model"
)

// Each Encode*/Decode* pair here is the "archived companion type" that
// spec.md §4.2 asks for: Encode produces the stable byte layout and
// Decode fully materializes an owned value from it. Readers of these
// values (reader.go and the other packages) always go through Decode.

func EncodeFrameMetaData(v model.FrameMetaData) []byte {
	b := archive.NewBuilder()
	b.PutOptionalString(v.FileName)
	b.PutOptionalString(v.FunctionName)
	b.PutU32(v.LineNumber)
	b.PutU32(v.FunctionOffset)
	return b.Finish()
}

func DecodeFrameMetaData(buf []byte) (model.FrameMetaData, error) {
	v, err := archive.OpenView(buf)
	if err != nil {
		return model.FrameMetaData{}, err
	}
	fileName, err := v.OptionalString()
	if err != nil {
		return model.FrameMetaData{}, err
	}
	funcName, err := v.OptionalString()
	if err != nil {
		return model.FrameMetaData{}, err
	}
	line, err := v.U32()
	if err != nil {
		return model.FrameMetaData{}, err
	}
	offset, err := v.U32()
	if err != nil {
		return model.FrameMetaData{}, err
	}
	return model.FrameMetaData{FileName: fileName, FunctionName: funcName, LineNumber: line, FunctionOffset: offset}, nil
}

const (
	symbTagNotAttempted      = 0
	symbTagTempError         = 1
	symbTagNotPresentGlobally = 2
	symbTagComplete          = 3
)

func EncodeExecutableMeta(v model.ExecutableMeta) []byte {
	b := archive.NewBuilder()
	b.PutOptionalString(v.BuildId)
	b.PutOptionalString(v.FileName)
	var tag uint8
	switch v.SymbStatus.Tag {
	case model.SymbNotAttempted:
		tag = symbTagNotAttempted
	case model.SymbTempError:
		tag = symbTagTempError
	case model.SymbNotPresentGlobally:
		tag = symbTagNotPresentGlobally
	case model.SymbComplete:
		tag = symbTagComplete
	}
	b.PutU8(tag)
	b.PutI64(v.SymbStatus.LastAttempt.UnixNano())
	b.PutU32(v.SymbStatus.NumSymbols)
	return b.Finish()
}

func DecodeExecutableMeta(buf []byte) (model.ExecutableMeta, error) {
	v, err := archive.OpenView(buf)
	if err != nil {
		return model.ExecutableMeta{}, err
	}
	buildId, err := v.OptionalString()
	if err != nil {
		return model.ExecutableMeta{}, err
	}
	fileName, err := v.OptionalString()
	if err != nil {
		return model.ExecutableMeta{}, err
	}
	tag, err := v.U8()
	if err != nil {
		return model.ExecutableMeta{}, err
	}
	lastAttemptNano, err := v.I64()
	if err != nil {
		return model.ExecutableMeta{}, err
	}
	numSymbols, err := v.U32()
	if err != nil {
		return model.ExecutableMeta{}, err
	}
	status := model.SymbStatus{NumSymbols: numSymbols}
	switch tag {
	case symbTagNotAttempted:
		status.Tag = model.SymbNotAttempted
	case symbTagTempError:
		status.Tag = model.SymbTempError
		status.LastAttempt = time.Unix(0, lastAttemptNano).UTC()
	case symbTagNotPresentGlobally:
		status.Tag = model.SymbNotPresentGlobally
	case symbTagComplete:
		status.Tag = model.SymbComplete
	default:
		return model.ExecutableMeta{}, archive.ErrCorrupt
	}
	return model.ExecutableMeta{BuildId: buildId, FileName: fileName, SymbStatus: status}, nil
}

func EncodeTraceCount(v model.TraceCount) []byte {
	b := archive.NewBuilder()
	b.PutU64(v.Timestamp)
	b.PutBytes(v.TraceHash[:])
	b.PutU64(v.Count)
	b.PutString(v.Comm)
	b.PutOptionalString(v.PodName)
	b.PutOptionalString(v.ContainerName)
	return b.Finish()
}

func DecodeTraceCount(buf []byte) (model.TraceCount, error) {
	v, err := archive.OpenView(buf)
	if err != nil {
		return model.TraceCount{}, err
	}
	ts, err := v.U64()
	if err != nil {
		return model.TraceCount{}, err
	}
	hashBytes, err := v.Bytes()
	if err != nil {
		return model.TraceCount{}, err
	}
	if len(hashBytes) != 16 {
		return model.TraceCount{}, archive.ErrCorrupt
	}
	var hash model.TraceHash
	copy(hash[:], hashBytes)
	count, err := v.U64()
	if err != nil {
		return model.TraceCount{}, err
	}
	comm, err := v.String()
	if err != nil {
		return model.TraceCount{}, err
	}
	pod, err := v.OptionalString()
	if err != nil {
		return model.TraceCount{}, err
	}
	container, err := v.OptionalString()
	if err != nil {
		return model.TraceCount{}, err
	}
	return model.TraceCount{
		Timestamp: ts, TraceHash: hash, Count: count,
		Comm: comm, PodName: pod, ContainerName: container,
	}, nil
}

const frameRecordLen = model.FrameIdEncodedLen + 1

// EncodeFrameList is the stack_traces table's value codec: an ordered
// sequence of Frame (spec §3).
func EncodeFrameList(frames []model.Frame) []byte {
	b := archive.NewBuilder()
	b.PutU32(uint32(len(frames)))
	packed := make([]byte, 0, len(frames)*frameRecordLen)
	for _, f := range frames {
		enc := f.Id.Encode()
		packed = append(packed, enc[:]...)
		packed = append(packed, f.Kind.Raw())
	}
	b.PutBytes(packed)
	return b.Finish()
}

func DecodeFrameList(buf []byte) ([]model.Frame, error) {
	v, err := archive.OpenView(buf)
	if err != nil {
		return nil, err
	}
	count, err := v.U32()
	if err != nil {
		return nil, err
	}
	packed, err := v.Bytes()
	if err != nil {
		return nil, err
	}
	if len(packed) != int(count)*frameRecordLen {
		return nil, archive.ErrCorrupt
	}
	frames := make([]model.Frame, count)
	for i := range frames {
		off := i * frameRecordLen
		fid, ok := model.DecodeFrameId(packed[off : off+model.FrameIdEncodedLen])
		if !ok {
			return nil, archive.ErrCorrupt
		}
		kind := model.FrameKindFromRaw(packed[off+model.FrameIdEncodedLen])
		frames[i] = model.Frame{Id: fid, Kind: kind}
	}
	return frames, nil
}

// EncodeMetricValue/DecodeMetricValue: the metrics table's value is a
// signed 64-bit integer (spec §3), archive-framed like every other
// value; the merge operator (merge.go) decodes and re-encodes it on
// every write.
func EncodeMetricValue(v int64) []byte {
	b := archive.NewBuilder()
	b.PutI64(v)
	return b.Finish()
}

func DecodeMetricValue(buf []byte) (int64, error) {
	v, err := archive.OpenView(buf)
	if err != nil {
		return 0, err
	}
	return v.I64()
}
