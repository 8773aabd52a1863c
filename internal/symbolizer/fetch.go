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

package symbolizer

import (
	"bufio"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/klauspost/compress/zstd"

	"github.com/flamehost/profsink/internal/model"
	"github.com/flamehost/profsink/internal/symstore"
)

// ErrNotPresentGlobally signals the symbolizer backend affirmatively
// has no symbols for this executable (spec.md §4.6 step 1's 404 case,
// or a metadata payload missing symbolFileReferences.dwarfFileId).
var ErrNotPresentGlobally = errors.New("symbolizer: not present globally")

// ErrReturnPad is returned when the range stream contains a
// ReturnPad record, which spec.md §4.6 step 2 says must be rejected.
var ErrReturnPad = errors.New("symbolizer: unsupported ReturnPad record in range stream")

// metadataDoc is the JSON shape of step 1's metadata.json (spec.md
// §4.6): "The parsed JSON's version must equal 1;
// symbolFileReferences.dwarfFileId selects the file id for step 2".
type metadataDoc struct {
	Version              int `json:"version"`
	SymbolFileReferences struct {
		DwarfFileId string `json:"dwarfFileId"`
	} `json:"symbolFileReferences"`
}

// Fetcher performs the two-step HTTP fetch of spec.md §4.6. Production
// code uses httpFetcher; controller tests use a hand-written double
// (SPEC_FULL.md's ambient-stack note on concurrency-boundary doubles).
type Fetcher interface {
	FetchRanges(ctx context.Context, fileId model.FileId, buildId string) (*symstore.TreeBuilder, error)
}

// httpFetcher implements Fetcher against a real symbolizer backend
// over HTTPS, matching spec.md §4.6 exactly.
type httpFetcher struct {
	client  *retryablehttp.Client
	baseURL string
}

// NewHTTPFetcher builds a Fetcher backed by go-retryablehttp against
// baseURL (SPEC_FULL.md's `--symbolizer.url` config field).
func NewHTTPFetcher(baseURL string) Fetcher {
	client := retryablehttp.NewClient()
	client.Logger = nil
	return &httpFetcher{client: client, baseURL: baseURL}
}

func (f *httpFetcher) FetchRanges(ctx context.Context, fileId model.FileId, buildId string) (*symstore.TreeBuilder, error) {
	hexID := fileId.Hex()
	metaURL := fmt.Sprintf("%s/%s/%s/%s/metadata.json", f.baseURL, hexID[0:2], hexID[2:4], hexID)
	doc, err := f.fetchMetadata(ctx, metaURL)
	if err != nil {
		return nil, err
	}
	if doc.Version != 1 || doc.SymbolFileReferences.DwarfFileId == "" {
		return nil, ErrNotPresentGlobally
	}

	rangesURL := fmt.Sprintf("%s/ranges/%s", f.baseURL, doc.SymbolFileReferences.DwarfFileId)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rangesURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("symbolizer: ranges fetch %s: status %d", rangesURL, resp.StatusCode)
	}

	dec, err := zstd.NewReader(resp.Body)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	return decodeRangeStream(dec)
}

func (f *httpFetcher) fetchMetadata(ctx context.Context, url string) (*metadataDoc, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotPresentGlobally
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("symbolizer: metadata fetch %s: status %d", url, resp.StatusCode)
	}
	var doc metadataDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("symbolizer: parse metadata %s: %w", url, err)
	}
	return &doc, nil
}

const (
	recordKindRange     = 0
	recordKindReturnPad = 1
)

// decodeRangeStream reads spec.md §4.6 step 2's sequence of
// {Range, ReturnPad} records and folds every Range into a TreeBuilder,
// insertion order giving the string table order the spec requires.
// The wire format is a simple length-prefixed binary record stream:
// kind byte, then for Range addrStart/addrEnd (u64 LE),
// func/file/callFile (u32-length-prefixed UTF-8), an optional call
// line (presence byte + u32), depth (u32, kept as u16), and a line table
// (u32 count, then offset/line u32 pairs).
func decodeRangeStream(r io.Reader) (*symstore.TreeBuilder, error) {
	br := bufio.NewReader(r)
	builder := symstore.NewTreeBuilder()
	for {
		kind, err := br.ReadByte()
		if err == io.EOF {
			return builder, nil
		}
		if err != nil {
			return nil, err
		}
		switch kind {
		case recordKindReturnPad:
			return nil, ErrReturnPad
		case recordKindRange:
			if err := readRangeRecord(br, builder); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("symbolizer: unknown range stream record kind %d", kind)
		}
	}
}

func readRangeRecord(br *bufio.Reader, builder *symstore.TreeBuilder) error {
	var u64buf [8]byte
	readU64 := func() (uint64, error) {
		if _, err := io.ReadFull(br, u64buf[:]); err != nil {
			return 0, err
		}
		return binary.LittleEndian.Uint64(u64buf[:]), nil
	}
	var u32buf [4]byte
	readU32 := func() (uint32, error) {
		if _, err := io.ReadFull(br, u32buf[:]); err != nil {
			return 0, err
		}
		return binary.LittleEndian.Uint32(u32buf[:]), nil
	}
	readString := func() (string, error) {
		n, err := readU32()
		if err != nil {
			return "", err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(br, buf); err != nil {
			return "", err
		}
		return string(buf), nil
	}

	addrStart, err := readU64()
	if err != nil {
		return err
	}
	addrEnd, err := readU64()
	if err != nil {
		return err
	}
	funcName, err := readString()
	if err != nil {
		return err
	}
	file, err := readString()
	if err != nil {
		return err
	}
	callFile, err := readString()
	if err != nil {
		return err
	}
	hasCallLine, err := br.ReadByte()
	if err != nil {
		return err
	}
	var callLine *uint32
	if hasCallLine != 0 {
		v, err := readU32()
		if err != nil {
			return err
		}
		callLine = &v
	}
	depth16, err := readU32()
	if err != nil {
		return err
	}
	lineCount, err := readU32()
	if err != nil {
		return err
	}
	lineTable := make([]symstore.LineEntry, lineCount)
	for i := range lineTable {
		offset, err := readU32()
		if err != nil {
			return err
		}
		line, err := readU32()
		if err != nil {
			return err
		}
		lineTable[i] = symstore.LineEntry{Offset: offset, Line: line}
	}

	builder.AddRange(addrStart, addrEnd, funcName, file, callFile, callLine, uint16(depth16), lineTable)
	return nil
}
