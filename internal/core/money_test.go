package core

import (
	"encoding/json"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"-1", -100, true},
		{"+2.5", 250, true},
		{"-586.92", -58692, true},
		{"-586,92", -58692, true},
		{"0", 0, true},
		{"1.005", 101, true}, // half-up rounding
		{"-1.005", -101, true},
		{" 2.50 ", 250, true},
		{"1 234,56", 123456, true},
		{"1 000", 100000, true},
		{".5", 50, true},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"-", 0, false},
		{"", 0, false},
		{"1e3", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := map[int64]string{
		0:       "0.00",
		5:       "0.05",
		-5:      "-0.05",
		250000:  "2500.00",
		-123456: "-1234.56",
	}
	for cents, want := range cases {
		if got := (Money{Cents: cents}).String(); got != want {
			t.Errorf("Money{%d}.String() = %q, want %q", cents, got, want)
		}
	}
}

func TestMoneyFloorUnits(t *testing.T) {
	cases := []struct {
		total int64
		want  int64
	}{
		{250000, 2500},   // 2500.00 -> 25
		{4289384, 42800}, // 42893.84 -> 428
		{9999, 0},        // 99.99 -> 0
		{10000, 100},     // 100.00 -> 1
		{0, 0},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.total}).FloorUnits(100); got.Cents != tc.want {
			t.Errorf("FloorUnits(%d) = %d, want %d", tc.total, got.Cents, tc.want)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		A Money `json:"a"`
	}{A: Money{Cents: -100000}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"a":-1000.00}` {
		t.Fatalf("unexpected json: %s", b)
	}

	var back struct {
		A Money `json:"a"`
	}
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.A.Cents != -100000 {
		t.Fatalf("round trip cents = %d", back.A.Cents)
	}
}
