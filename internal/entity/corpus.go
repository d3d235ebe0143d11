package entity

import "fmt"

// Corpus is the arena holding one run's entities in insertion order, with an
// id lookup map. Insertion order is significant: it is the deterministic
// unit-then-declaration order the normalizer produces, and the semantic
// index uses it to break score ties.
type Corpus struct {
	entities []Entity
	index    map[string]int
}

// NewCorpus returns an empty corpus.
func NewCorpus() *Corpus {
	return &Corpus{index: make(map[string]int)}
}

// Add appends an entity. The id must be unique within the corpus.
func (c *Corpus) Add(e Entity) error {
	if e.ID == "" {
		return fmt.Errorf("entity %q has no id", e.Name)
	}
	if _, exists := c.index[e.ID]; exists {
		return fmt.Errorf("duplicate entity id %s (%s)", e.ID, e.Name)
	}
	c.index[e.ID] = len(c.entities)
	c.entities = append(c.entities, e)
	return nil
}

// Len returns the number of entities.
func (c *Corpus) Len() int {
	return len(c.entities)
}

// Get returns the entity with the given id.
func (c *Corpus) Get(id string) (*Entity, bool) {
	i, ok := c.index[id]
	if !ok {
		return nil, false
	}
	return &c.entities[i], true
}

// Seq returns the insertion sequence of the entity with the given id.
func (c *Corpus) Seq(id string) (int, bool) {
	i, ok := c.index[id]
	return i, ok
}

// At returns the entity at insertion position i. The pointer aliases corpus
// storage so the enrichment stages can write their once-only fields.
func (c *Corpus) At(i int) *Entity {
	return &c.entities[i]
}

// Entities returns the backing slice in insertion order. Callers must treat
// it as read-only.
func (c *Corpus) Entities() []Entity {
	return c.entities
}

// ChildrenOf returns the entities whose ParentID is id, in insertion order.
func (c *Corpus) ChildrenOf(id string) []*Entity {
	var children []*Entity
	for i := range c.entities {
		if c.entities[i].ParentID == id {
			children = append(children, &c.entities[i])
		}
	}
	return children
}

// Units returns the distinct source unit paths in first-seen order.
func (c *Corpus) Units() []string {
	seen := make(map[string]bool)
	var units []string
	for i := range c.entities {
		u := c.entities[i].Unit
		if !seen[u] {
			seen[u] = true
			units = append(units, u)
		}
	}
	return units
}
