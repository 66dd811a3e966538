package realtime

import "testing"

// TestTriggerSorting tests the trigger sorting logic
func TestTriggerSorting(t *testing.T) {
	triggers := []TriggerWithMeta{
		{Trigger: Trigger{Action: "a"}, SequenceNum: 3, Priority: 0},
		{Trigger: Trigger{Action: "b"}, SequenceNum: 1, Priority: 0},
		{Trigger: Trigger{Action: "c"}, SequenceNum: 2, Priority: 10}, // High priority
		{Trigger: Trigger{Action: "d"}, SequenceNum: 4, Priority: 0},
		{Trigger: Trigger{Action: "e"}, SequenceNum: 5, Priority: 5}, // Medium priority
	}

	sortTriggers(triggers)

	// Priority 10 (seq 2), priority 5 (seq 5), priority 0 (seq 1, 3, 4)
	expected := []string{"c", "e", "b", "a", "d"}
	for i, tr := range triggers {
		if tr.Trigger.Action != expected[i] {
			t.Errorf("Trigger at position %d: expected %s, got %s", i, expected[i], tr.Trigger.Action)
		}
	}
}

func TestSelectReasonString(t *testing.T) {
	for r, want := range map[SelectReason]string{
		SelectExplicit: "explicit",
		SelectGraph:    "graph",
		SelectFallback: "fallback",
	} {
		if r.String() != want {
			t.Errorf("%d: expected %s, got %s", r, want, r.String())
		}
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Defaults invalid: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("Expected defaults %+v, got %+v", DefaultConfig(), cfg)
	}

	cfg.QueryWait = -1
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for negative query wait")
	}
}

func TestZeroSpeedSelectsDefault(t *testing.T) {
	cfg := Config{Speed: 0, BufferSize: 4}.withDefaults()
	if cfg.Speed != DefaultConfig().Speed {
		t.Errorf("Expected default speed %v, got %v", DefaultConfig().Speed, cfg.Speed)
	}
	if cfg.BufferSize != 4 {
		t.Errorf("Expected buffer size 4 to be kept, got %d", cfg.BufferSize)
	}
	if got := (Config{Speed: 0.5}).withDefaults().Speed; got != 0.5 {
		t.Errorf("Expected speed 0.5 to be kept, got %v", got)
	}
	if err := (Config{Speed: -1}).withDefaults().Validate(); err == nil {
		t.Error("Expected error for negative speed")
	}
}
