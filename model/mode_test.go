package model

import "testing"

func TestModeIndex_ZeroValueIsNoMode(t *testing.T) {
	var i ModeIndex
	if i.Valid() {
		t.Fatalf("zero ModeIndex should not be valid")
	}
	if i != NoMode {
		t.Fatalf("zero ModeIndex should equal NoMode")
	}
	if i.Hop() != -1 || i.Slot() != -1 {
		t.Fatalf("NoMode hop/slot = %d/%d, want -1/-1", i.Hop(), i.Slot())
	}
}

func TestModeIndex_SlotsRoundTrip(t *testing.T) {
	for slot := 0; slot < MaxModes; slot++ {
		i := ModeFromSlot(slot)
		if !i.Valid() {
			t.Fatalf("slot %d produced NoMode", slot)
		}
		if got := i.Slot(); got != slot {
			t.Errorf("slot %d round-tripped to %d", slot, got)
		}
	}
	if ModeFromSlot(MaxModes).Valid() || ModeFromSlot(-1).Valid() {
		t.Fatalf("out of range slots should map to NoMode")
	}
}

func TestModeIndex_OutOfRangeHops(t *testing.T) {
	if EMode(MaxEModes).Valid() {
		t.Errorf("EMode(%d) should be NoMode", MaxEModes)
	}
	if F2Mode(MaxF2Modes).Valid() {
		t.Errorf("F2Mode(%d) should be NoMode", MaxF2Modes)
	}
}

func TestModeIndex_String(t *testing.T) {
	cases := map[ModeIndex]string{
		EMode(0):  "1E",
		EMode(2):  "3E",
		F2Mode(1): "2F2",
		NoMode:    "none",
	}
	for i, want := range cases {
		if got := i.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}

func TestMode_Exists(t *testing.T) {
	var m Mode
	if m.Exists() {
		t.Fatalf("zero mode should not exist")
	}
	m.BMUF = 12.5
	if !m.Exists() {
		t.Fatalf("mode with BMUF should exist")
	}
	var nilMode *Mode
	if nilMode.Exists() {
		t.Fatalf("nil mode should not exist")
	}
}

func TestModeIndex_UnmarshalText(t *testing.T) {
	for _, want := range []ModeIndex{EMode(0), EMode(2), F2Mode(0), F2Mode(5), NoMode} {
		b, _ := want.MarshalText()
		var got ModeIndex
		if err := got.UnmarshalText(b); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", b, err)
		}
		if got != want {
			t.Errorf("UnmarshalText(%q) = %v, want %v", b, got, want)
		}
	}
	for _, bad := range []string{"4E", "7F2", "xF2", "2D"} {
		var i ModeIndex
		if err := i.UnmarshalText([]byte(bad)); err == nil {
			t.Errorf("UnmarshalText(%q) should fail", bad)
		}
	}
}
