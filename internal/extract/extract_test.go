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

package extract

import (
	"debug/elf"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeExtractor struct {
	name   string
	ranges []Range
	err    error
	calls  *[]string
}

func (f fakeExtractor) Name() string { return f.name }

func (f fakeExtractor) Extract(*elf.File) ([]Range, error) {
	if f.calls != nil {
		*f.calls = append(*f.calls, f.name)
	}
	return f.ranges, f.err
}

func TestCompositeReturnsFirstSuccessfulBackend(t *testing.T) {
	var calls []string
	c := NewComposite(
		fakeExtractor{name: "a", err: ErrUnsupported, calls: &calls},
		fakeExtractor{name: "b", ranges: []Range{{Func: "main"}}, calls: &calls},
		fakeExtractor{name: "c", ranges: []Range{{Func: "unreached"}}, calls: &calls},
	)

	got, err := c.Extract(nil)
	require.NoError(t, err)
	require.Equal(t, []Range{{Func: "main"}}, got)
	require.Equal(t, []string{"a", "b"}, calls)
}

func TestCompositeReturnsErrUnsupportedWhenAllBackendsDecline(t *testing.T) {
	c := NewComposite(
		fakeExtractor{name: "a", err: ErrUnsupported},
		fakeExtractor{name: "b", err: ErrUnsupported},
	)

	_, err := c.Extract(nil)
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestCompositeStopsAtNonUnsupportedError(t *testing.T) {
	boom := errors.New("boom")
	var calls []string
	c := NewComposite(
		fakeExtractor{name: "a", err: boom, calls: &calls},
		fakeExtractor{name: "b", ranges: []Range{{Func: "unreached"}}, calls: &calls},
	)

	_, err := c.Extract(nil)
	require.ErrorIs(t, err, boom)
	require.Equal(t, []string{"a"}, calls)
}

func TestStubBackendsReportUnsupported(t *testing.T) {
	for _, b := range []Extractor{goSymtabExtractor{}, debugSymtabExtractor{}, dynSymtabExtractor{}} {
		_, err := b.Extract(nil)
		require.ErrorIs(t, err, ErrUnsupported, b.Name())
	}
}
