package model

import (
	"bytes"
	"math/rand"
	"sort"
	"testing"
)

// TestFrameIdKeyOrder is testable property 1 for FrameId: key ordering
// must equal byte ordering of the encoded form.
func TestFrameIdKeyOrder(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	ids := make([]FrameId, 200)
	for i := range ids {
		var fid FileId
		r.Read(fid[:])
		ids[i] = FrameId{FileId: fid, VirtAddr: VirtAddr(r.Uint64())}
	}
	// adversarial: equal FileId, differing VirtAddr boundary values
	base := FileId{1, 2, 3}
	ids = append(ids,
		FrameId{FileId: base, VirtAddr: 0},
		FrameId{FileId: base, VirtAddr: ^VirtAddr(0)},
		FrameId{FileId: base, VirtAddr: 1},
	)

	sorted := make([]FrameId, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i].Encode(), sorted[j].Encode()
		return bytes.Compare(a[:], b[:]) < 0
	})

	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1].Encode(), sorted[i].Encode()
		if bytes.Compare(prev[:], cur[:]) > 0 {
			t.Fatalf("sorted order violates byte order at %d", i)
		}
		// same relation must hold on the decoded struct's natural field order
		if !lessOrEqualFrameId(sorted[i-1], sorted[i]) {
			t.Fatalf("byte order and field order disagree at %d", i)
		}
	}
}

func lessOrEqualFrameId(a, b FrameId) bool {
	if !bytes.Equal(a.FileId[:], b.FileId[:]) {
		return bytes.Compare(a.FileId[:], b.FileId[:]) < 0
	}
	return a.VirtAddr <= b.VirtAddr
}

func TestFrameIdEncodeDecodeRoundTrip(t *testing.T) {
	f := FrameId{FileId: FileId{1, 2, 3, 4}, VirtAddr: 0xdeadbeefcafebabe}
	enc := f.Encode()
	got, ok := DecodeFrameId(enc[:])
	if !ok || got != f {
		t.Fatalf("round trip failed: got %+v, ok=%v", got, ok)
	}
}

func TestTraceCountIdKeyOrder(t *testing.T) {
	// Equal timestamps, differing ids: order must follow timestamp
	// first (big-endian) regardless of the little-endian id bytes.
	a := TraceCountId{Timestamp: 100, Id: 0xFFFFFFFFFFFFFFFF, Kind: SampleOnCPU}
	b := TraceCountId{Timestamp: 101, Id: 0, Kind: SampleOnCPU}
	ea, eb := a.Encode(), b.Encode()
	if bytes.Compare(ea[:], eb[:]) >= 0 {
		t.Fatal("timestamp must dominate ordering even across id/kind byte noise")
	}

	// Zero and max boundary values round-trip and compare consistently.
	zero := TraceCountId{}
	max := TraceCountId{Timestamp: ^uint64(0), Id: ^uint64(0), Kind: SampleMixed}
	ez, em := zero.Encode(), max.Encode()
	if bytes.Compare(ez[:], em[:]) >= 0 {
		t.Fatal("zero key must sort before max key")
	}
	if got, ok := DecodeTraceCountId(ez[:]); !ok || got != zero {
		t.Fatalf("zero round trip: %+v, %v", got, ok)
	}
	if got, ok := DecodeTraceCountId(em[:]); !ok || got != max {
		t.Fatalf("max round trip: %+v, %v", got, ok)
	}
}

func TestHashFramesDeterministic(t *testing.T) {
	frames := []Frame{
		{Id: FrameId{FileId: FileId{1}, VirtAddr: 10}, Kind: RegularFrameKind(InterpPython)},
		{Id: FrameId{FileId: FileId{2}, VirtAddr: 20}, Kind: RegularFrameKind(InterpNative)},
	}
	h1 := HashFrames(frames)
	h2 := HashFrames(frames)
	if h1 != h2 {
		t.Fatal("HashFrames must be deterministic")
	}
	reversed := []Frame{frames[1], frames[0]}
	if HashFrames(reversed) == h1 {
		t.Fatal("frame order must affect the hash (leaf-first is significant)")
	}
}
