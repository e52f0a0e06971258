package persona

import "github.com/zhouzirui/z-memory/backend/internal/apperr"

// Store exposes persona retrieval for handlers and services.
type Store interface {
	List() []Persona
	FindByID(id string) (Persona, bool)
	Get(id string) (Persona, error)
}

// MemoryStore implements Store with an in-memory slice. It is never mutated
// after construction, so concurrent reads are safe.
type MemoryStore struct {
	items []Persona
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied personas.
func NewMemoryStore(items []Persona) *MemoryStore {
	return &MemoryStore{items: clonePersonas(items)}
}

// List returns the personas in declaration order.
func (s *MemoryStore) List() []Persona {
	return clonePersonas(s.items)
}

// FindByID looks up a persona by identifier.
func (s *MemoryStore) FindByID(id string) (Persona, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return clonePersona(item), true
		}
	}
	return Persona{}, false
}

// Get is FindByID returning a not-found error for unknown ids.
func (s *MemoryStore) Get(id string) (Persona, error) {
	p, ok := s.FindByID(id)
	if !ok {
		return Persona{}, apperr.NotFound("persona %q not found", id)
	}
	return p, nil
}

func clonePersonas(items []Persona) []Persona {
	out := make([]Persona, len(items))
	for i, item := range items {
		out[i] = clonePersona(item)
	}
	return out
}

func clonePersona(p Persona) Persona {
	p.Characteristics = append([]string(nil), p.Characteristics...)
	return p
}
