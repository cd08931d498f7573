package api

import (
	"reflect"
	"testing"
)

func TestSplitIDs(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []int64
	}{
		{"empty", "", nil},
		{"single", "3", []int64{3}},
		{"multiple", "3,11,42", []int64{3, 11, 42}},
		{"spaces tolerated", " 3 , 11 ", []int64{3, 11}},
		{"garbage dropped", "3,abc,-1,0,4", []int64{3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := splitIDs(tt.raw); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitIDs(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
