package model

import "testing"

func TestAntenna_FreqIndexPicksNearest(t *testing.T) {
	a := NewAntenna("yagi", []float64{2, 4, 8, 16})
	cases := []struct {
		freq float64
		want int
	}{
		{1, 0},
		{3.1, 1},
		{7.9, 2},
		{30, 3},
	}
	for _, tc := range cases {
		if got := a.FreqIndex(tc.freq); got != tc.want {
			t.Errorf("FreqIndex(%v) = %d, want %d", tc.freq, got, tc.want)
		}
	}
}

func TestAntenna_SetAt(t *testing.T) {
	a := NewAntenna("dipole", []float64{5, 10})
	a.Set(1, 359, 90, 7.5)
	if got := a.At(1, 359, 90); got != 7.5 {
		t.Fatalf("At = %v, want 7.5", got)
	}
	if got := a.At(0, 359, 90); got != 0 {
		t.Fatalf("neighbouring frequency was written: %v", got)
	}
	if err := a.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestIsotropic(t *testing.T) {
	a := Isotropic(2.15)
	if a.FreqIndex(12) != 0 {
		t.Fatalf("isotropic antenna should have one pattern")
	}
	if got := a.At(0, 123, 45); got != 2.15 {
		t.Fatalf("gain = %v, want 2.15", got)
	}
}

func TestIonoMap_LookupUsesFileOrder(t *testing.T) {
	m := NewIonoMap(3)
	i := IonoIndex(5, 10, 20, 1)
	m.FoF2[i] = 7.25
	m.M3kF2[i] = 3.5
	foF2, m3k := m.Lookup(5, 10, 20, 1)
	if foF2 != 7.25 || m3k != 3.5 {
		t.Fatalf("Lookup = (%v, %v), want (7.25, 3.5)", foF2, m3k)
	}
	if IonoIndex(1, 0, 0, 0) != 1 {
		t.Fatalf("hour should vary fastest")
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestDecileTable_SetLookup(t *testing.T) {
	d := NewDecileTable()
	d.Set(2, 23, 18, 2, DecileUpper, 1.3)
	if got := d.Lookup(2, 23, 18, 2, DecileUpper); got != 1.3 {
		t.Fatalf("Lookup = %v, want 1.3", got)
	}
	if got := d.Lookup(2, 23, 18, 2, DecileLower); got != 0 {
		t.Fatalf("lower decile overwritten: %v", got)
	}
}

func TestParseManMade(t *testing.T) {
	cases := []struct {
		in   string
		want ManMade
	}{
		{"CITY", City},
		{"quietrural", QuietRural},
		{"145", 145},
		{"-140", -140},
	}
	for _, tc := range cases {
		got, err := ParseManMade(tc.in)
		if err != nil {
			t.Fatalf("ParseManMade(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseManMade(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
	if _, err := ParseManMade("LOUD"); err == nil {
		t.Fatalf("expected error for unknown category")
	}
	if !ManMade(-140).IsOverride() {
		t.Fatalf("negative value should override")
	}
}
