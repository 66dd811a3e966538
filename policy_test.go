package motionchart_test

import (
	"testing"

	"github.com/comalice/motionchart"
)

func TestDistancePolicy(t *testing.T) {
	p := motionchart.DistancePolicy{StepLength: 0.5}
	tests := []struct {
		current motionchart.NodeType
		d       float64
		want    motionchart.NodeType
	}{
		{motionchart.NodeIdle, 0, motionchart.NodeIdle},
		{motionchart.NodeIdle, 0.5, motionchart.NodeIdle},
		{motionchart.NodeIdle, 0.6, motionchart.NodeStart},
		{motionchart.NodeStart, 2, motionchart.NodeStandard},
		{motionchart.NodeStart, 0.1, motionchart.NodeEnd},
		{motionchart.NodeStandard, 2, motionchart.NodeStandard},
		{motionchart.NodeStandard, 0, motionchart.NodeEnd},
		{motionchart.NodeEnd, 5, motionchart.NodeIdle},
		{motionchart.NodeSingle, 5, motionchart.NodeIdle},
	}
	for _, tt := range tests {
		if got := p.NextType(tt.current, tt.d); got != tt.want {
			t.Errorf("NextType(%v, %v) = %v, want %v", tt.current, tt.d, got, tt.want)
		}
	}
}
