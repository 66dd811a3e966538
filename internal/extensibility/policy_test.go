package extensibility

import (
	"testing"

	"github.com/comalice/motionchart"
)

func TestFixedPolicy(t *testing.T) {
	p := FixedPolicy{Type: motionchart.NodeSingle}
	if got := p.NextType(motionchart.NodeIdle, 10); got != motionchart.NodeSingle {
		t.Errorf("expected single, got %v", got)
	}
}

func TestParseRule(t *testing.T) {
	tests := []struct {
		in      string
		want    Rule
		wantErr bool
	}{
		{"idle: distance > 0.5 -> start", Rule{motionchart.NodeIdle, ">", 0.5, motionchart.NodeStart}, false},
		{"standard: distance <= 1 -> end", Rule{motionchart.NodeStandard, "<=", 1, motionchart.NodeEnd}, false},
		{"end: * -> idle", Rule{motionchart.NodeEnd, "*", 0, motionchart.NodeIdle}, false},
		{"idle distance > 1 -> start", Rule{}, true},
		{"idle: distance > 1", Rule{}, true},
		{"idle: distance ~ 1 -> start", Rule{}, true},
		{"idle: distance > far -> start", Rule{}, true},
		{"hover: * -> idle", Rule{}, true},
		{"idle: speed > 1 -> start", Rule{}, true},
	}
	for _, tt := range tests {
		got, err := ParseRule(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRule(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseRule(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestRulePolicy(t *testing.T) {
	p, err := NewRulePolicy(nil,
		"idle: distance > 2 -> start",
		"single: * -> single",
	)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		current motionchart.NodeType
		d       float64
		want    motionchart.NodeType
	}{
		{motionchart.NodeIdle, 3, motionchart.NodeStart},      // rule
		{motionchart.NodeIdle, 1, motionchart.NodeStart},      // fallback
		{motionchart.NodeIdle, 0.1, motionchart.NodeIdle},     // fallback
		{motionchart.NodeSingle, 0, motionchart.NodeSingle},   // rule
		{motionchart.NodeStandard, 0.2, motionchart.NodeEnd},  // fallback
		{motionchart.NodeStart, 5, motionchart.NodeStandard}, // fallback
	}
	for _, tt := range tests {
		if got := p.NextType(tt.current, tt.d); got != tt.want {
			t.Errorf("NextType(%v, %v) = %v, want %v", tt.current, tt.d, got, tt.want)
		}
	}

	if _, err := NewRulePolicy(nil, "bogus"); err == nil {
		t.Error("expected error for bad rule")
	}
}
