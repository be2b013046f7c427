package world

import "testing"

func TestNewChunkSectionCount(t *testing.T) {
	c := NewChunk(24)
	if len(c.Sections) != 24 {
		t.Fatalf("len(Sections) = %d, want 24", len(c.Sections))
	}
	for i, s := range c.Sections {
		if !s.IsSingleRun() || s.SingleBlock() != BlockAir {
			t.Fatalf("section %d not all-air on creation", i)
		}
	}
	if c.Ready {
		t.Fatalf("freshly created chunk must not be ready")
	}
}

func TestNewChunkMinimumOneSection(t *testing.T) {
	c := NewChunk(0)
	if len(c.Sections) != 1 {
		t.Fatalf("len(Sections) = %d, want minimum 1", len(c.Sections))
	}
}
