package util

import (
	"math"
	"sync"
	"testing"
)

func TestNewStats(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   Stats
	}{
		{
			name:   "empty",
			values: nil,
			want:   Stats{},
		},
		{
			name:   "single value",
			values: []float64{42},
			want:   Stats{Min: 42, Max: 42, Mean: 42, StdDeviation: 0},
		},
		{
			name:   "uniform values",
			values: []float64{5, 5, 5, 5},
			want:   Stats{Min: 5, Max: 5, Mean: 5, StdDeviation: 0},
		},
		{
			name:   "mixed values",
			values: []float64{2, 4, 4, 4, 5, 5, 7, 9},
			want:   Stats{Min: 2, Max: 9, Mean: 5, StdDeviation: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewStats(tt.values)
			if got.Min != tt.want.Min || got.Max != tt.want.Max {
				t.Errorf("min/max = %v/%v, want %v/%v", got.Min, got.Max, tt.want.Min, tt.want.Max)
			}
			if got.Mean != tt.want.Mean {
				t.Errorf("mean = %v, want %v", got.Mean, tt.want.Mean)
			}
			if math.Abs(got.StdDeviation-tt.want.StdDeviation) > 1e-9 {
				t.Errorf("std deviation = %v, want %v", got.StdDeviation, tt.want.StdDeviation)
			}
		})
	}
}

func TestSizeHistogramEmpty(t *testing.T) {
	h := NewSizeHistogram()

	if h.Count() != 0 {
		t.Errorf("count = %d, want 0", h.Count())
	}
	if h.AverageSize() != 0 {
		t.Errorf("average = %d, want 0", h.AverageSize())
	}
	if h.MedianEstimate() != 0 {
		t.Errorf("median = %d, want 0", h.MedianEstimate())
	}
}

func TestSizeHistogramSamples(t *testing.T) {
	h := NewSizeHistogram()

	h.AddSample(10)
	h.AddSample(20)
	h.AddSample(30)

	if h.Count() != 3 {
		t.Errorf("count = %d, want 3", h.Count())
	}
	if h.AverageSize() != 20 {
		t.Errorf("average = %d, want 20", h.AverageSize())
	}

	// median estimate is bucket based, it only needs to be in a sane range
	if median := h.MedianEstimate(); median <= 0 || median > 64 {
		t.Errorf("median estimate = %d, outside expected range", median)
	}
}

func TestSizeHistogramReset(t *testing.T) {
	h := NewSizeHistogram()

	h.AddSample(1024)
	h.Reset()

	if h.Count() != 0 {
		t.Errorf("count after reset = %d, want 0", h.Count())
	}
	if h.AverageSize() != 0 {
		t.Errorf("average after reset = %d, want 0", h.AverageSize())
	}
}

func TestSizeHistogramConcurrent(t *testing.T) {
	h := NewSizeHistogram()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				h.AddSample(100)
			}
		}()
	}
	wg.Wait()

	if h.Count() != 8000 {
		t.Errorf("count = %d, want 8000", h.Count())
	}
	if h.AverageSize() != 100 {
		t.Errorf("average = %d, want 100", h.AverageSize())
	}
}
