package main

import "testing"

func TestParsePercentRange(t *testing.T) {
	cases := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"1", 0.01, false},
		{"50", 0.5, false},
		{"99", 0.99, false},
		{"0", 0, true},
		{"100", 0, true},
		{"abc", 0, true},
	}
	for _, c := range cases {
		got, err := parsePercent(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("parsePercent(%q) = %v, want error", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parsePercent(%q) unexpected error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("parsePercent(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
