package money

import "testing"

func TestParseAndString(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"240", "240.00"},
		{"240.5", "240.50"},
		{"240.00", "240.00"},
		{"0", "0.00"},
		{"1299.99", "1299.99"},
		{"-12.30", "-12.30"},
		{"0.375", "0.375"},
	}
	for _, tc := range cases {
		a, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.in, err)
		}
		if got := a.String(); got != tc.want {
			t.Fatalf("Parse(%q).String() = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "abc", "1.2.3", "1.00000", "12,30"} {
		if _, err := Parse(in); err == nil {
			t.Fatalf("Parse(%q): expected error", in)
		}
	}
}

func TestUnitPriceDerivation(t *testing.T) {
	cost, err := Parse("480.00")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	unit := cost.DivInt(2)
	if got := unit.String(); got != "240.00" {
		t.Fatalf("unit price = %s, want 240.00", got)
	}
	if got := unit.MulInt(3).String(); got != "720.00" {
		t.Fatalf("scaled cost = %s, want 720.00", got)
	}
}

func TestDivIntRoundsHalfUp(t *testing.T) {
	a, _ := Parse("100.00")
	if got := a.DivInt(3).String(); got != "33.33" {
		t.Fatalf("100.00/3 = %s, want 33.33", got)
	}
	b, _ := Parse("0.05")
	if got := b.DivInt(2).String(); got != "0.03" {
		t.Fatalf("0.05/2 = %s, want 0.03", got)
	}
}

func TestAddAlignsScales(t *testing.T) {
	a, _ := Parse("1.5")
	b, _ := Parse("0.375")
	if got := a.Add(b).String(); got != "1.875" {
		t.Fatalf("1.5+0.375 = %s, want 1.875", got)
	}
}

func TestFromMinor(t *testing.T) {
	if got := FromMinor(24000, 2).String(); got != "240.00" {
		t.Fatalf("FromMinor = %s, want 240.00", got)
	}
	if !Zero().IsZero() {
		t.Fatalf("Zero should be zero")
	}
}
