package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0.01", "0.01", true},
		{".5", "0.5", true},
		{"1.005", "1.01", true}, // half-up rounding
		{" 2.50 ", "2.5", true},
		{"1500000.75", "1500000.75", true},
		{"-1", "", false},
		{"+1", "", false},
		{"0", "", false},
		{"0.001", "", false}, // rounds to zero
		{"abc", "", false},
		{"1.2.3", "", false},
		{"1e5", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error, got %s", tc.in, got)
			}
		}
	}
}

func TestAmountOrZero(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"", "0"},
		{"   ", "0"},
		{"abc", "0"},
		{"NaN", "0"},
		{"12.50", "12.5"},
		{"12,50", "12.5"},
		{"-3", "-3"},
	}
	for _, tc := range cases {
		if got := AmountOrZero(tc.in); got.String() != tc.out {
			t.Fatalf("AmountOrZero(%q) = %s, want %s", tc.in, got, tc.out)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	d, err := ParseAmount("12.5")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := FormatAmount(d); got != "12.50" {
		t.Fatalf("FormatAmount = %q, want 12.50", got)
	}
}
