package api

import (
	"sync"

	"github.com/google/uuid"
)

// DefaultStoreCapacity bounds the in-memory generation history.
const DefaultStoreCapacity = 256

// GenerationStore keeps the most recent generations in memory. The oldest
// entry is evicted once capacity is reached.
type GenerationStore struct {
	mu       sync.Mutex
	capacity int
	order    []string
	items    map[string]Generation
}

func NewGenerationStore(capacity int) *GenerationStore {
	if capacity <= 0 {
		capacity = DefaultStoreCapacity
	}
	return &GenerationStore{
		capacity: capacity,
		items:    make(map[string]Generation),
	}
}

// Save inserts or replaces gen.
func (s *GenerationStore) Save(gen Generation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[gen.ID]; !ok {
		s.order = append(s.order, gen.ID)
		for len(s.order) > s.capacity {
			delete(s.items, s.order[0])
			s.order = s.order[1:]
		}
	}
	s.items[gen.ID] = gen
}

func (s *GenerationStore) Get(id string) (Generation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gen, ok := s.items[id]
	return gen, ok
}

// List returns generations newest first.
func (s *GenerationStore) List() []Generation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Generation, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, s.items[s.order[i]])
	}
	return out
}

func (s *GenerationStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func newGenerationID() string {
	return "gen_" + uuid.NewString()
}
