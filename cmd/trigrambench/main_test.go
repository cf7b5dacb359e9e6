package main

import "testing"

func TestCalculateStats(t *testing.T) {
	s := calculateStats([]float64{1, 2, 3, 4, 5})
	if s.Min != 1 || s.Max != 5 {
		t.Errorf("Min/Max = %v/%v, want 1/5", s.Min, s.Max)
	}
	if s.Mean != 3 {
		t.Errorf("Mean = %v, want 3", s.Mean)
	}
	if s.Samples != 5 {
		t.Errorf("Samples = %d, want 5", s.Samples)
	}
}

func TestCalculateStatsEmpty(t *testing.T) {
	s := calculateStats(nil)
	if s.Samples != 0 {
		t.Errorf("Samples = %d, want 0", s.Samples)
	}
}
