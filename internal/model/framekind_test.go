package model

import "testing"

// TestFrameKindFromRaw exercises spec.md testable property 4 exactly.
func TestFrameKindFromRaw(t *testing.T) {
	cases := []struct {
		raw  byte
		want FrameKind
	}{
		{0xFF, AbortFrameKind()},
		{0x85, ErrorFrameKind(InterpJvm)},
		{0x04, RegularFrameKind(InterpKernel)},
		{0x01, RegularFrameKind(InterpPython)},
		{0x0A, RegularFrameKind(InterpDotNet)},
		{0x00, unknownFrameKind(0)},
	}
	for _, c := range cases {
		got := FrameKindFromRaw(c.raw)
		if got != c.want {
			t.Errorf("FrameKindFromRaw(%#x) = %+v, want %+v", c.raw, got, c.want)
		}
	}
}

func TestFrameKindRoundTrip(t *testing.T) {
	for b := 0; b <= 0xFF; b++ {
		k := FrameKindFromRaw(byte(b))
		if got := k.Raw(); got != byte(b) {
			t.Errorf("FrameKindFromRaw(%#x).Raw() = %#x, want %#x", b, got, b)
		}
	}
}

func TestFrameKindInterpOnlyOnRegularOrError(t *testing.T) {
	if _, ok := AbortFrameKind().Interp(); ok {
		t.Error("Abort should not report an interp")
	}
	if interp, ok := RegularFrameKind(InterpGo).Interp(); !ok || interp != InterpGo {
		t.Errorf("Regular(Go).Interp() = %v, %v", interp, ok)
	}
}
