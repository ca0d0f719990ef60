package api

import (
	"fmt"
	"strings"
	"testing"
)

func TestGenerationStoreEvictsOldest(t *testing.T) {
	t.Parallel()

	s := NewGenerationStore(3)
	for i := 0; i < 5; i++ {
		s.Save(Generation{ID: fmt.Sprintf("g%d", i)})
	}
	if _, ok := s.Get("g1"); ok {
		t.Fatalf("g1 should have been evicted")
	}
	var ids []string
	for _, g := range s.List() {
		ids = append(ids, g.ID)
	}
	if got := strings.Join(ids, ","); got != "g4,g3,g2" {
		t.Fatalf("list = %s", got)
	}
}

func TestGenerationStoreSaveReplaces(t *testing.T) {
	t.Parallel()

	s := NewGenerationStore(2)
	s.Save(Generation{ID: "a", Status: "in_progress"})
	s.Save(Generation{ID: "b"})
	s.Save(Generation{ID: "a", Status: "completed"})
	if got, _ := s.Get("a"); got.Status != "completed" {
		t.Fatalf("a = %+v", got)
	}
	if len(s.List()) != 2 {
		t.Fatalf("list = %+v", s.List())
	}
	if !s.Delete("a") || s.Delete("a") {
		t.Fatalf("delete semantics broken")
	}
	if _, ok := s.Get("b"); !ok {
		t.Fatalf("b missing")
	}
}

func TestNewGenerationIDPrefix(t *testing.T) {
	t.Parallel()

	id := newGenerationID()
	if !strings.HasPrefix(id, "gen_") || len(id) != len("gen_")+36 {
		t.Fatalf("id = %q", id)
	}
}
