package main

import (
	"testing"
)

// TestVectorReplayFixture replays a small hand-written vector fixture through
// the same RunVectorCase path RunVectorDir uses for the real SingleStepTests
// corpus, using the same Tom Harte-style replay harness.
func TestVectorReplayFixture(t *testing.T) {
	cases, err := LoadVectorFileUncompressed("testdata/basic_vectors.json")
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	if len(cases) != 2 {
		t.Fatalf("got %d cases, want 2", len(cases))
	}

	for _, tc := range cases {
		mismatches := RunVectorCase(tc)
		for _, m := range mismatches {
			t.Errorf("%s", m)
		}
	}
}

// TestVectorCaseDetectsRegisterMismatch confirms RunVectorCase actually
// reports a failing final-register assertion rather than silently passing.
func TestVectorCaseDetectsRegisterMismatch(t *testing.T) {
	tc := VectorCase{
		Name: "broken nop",
		Initial: VectorState{
			PC: 0x1000, SP: 0xFFFE,
			RAM: []VectorRAMCell{{Address: 0x1000, Value: 0x00}},
		},
		Final: VectorState{
			PC: 0x1000, SP: 0xFFFE, // wrong: NOP always advances PC
			RAM: []VectorRAMCell{{Address: 0x1000, Value: 0x00}},
		},
		Cycles: []VectorCycle{{Address: 0x1000, Data: 0x00, Flags: "r"}},
	}

	mismatches := RunVectorCase(tc)
	found := false
	for _, m := range mismatches {
		if m.Field == "PC" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a PC mismatch to be reported")
	}
}
