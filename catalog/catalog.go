package catalog

import (
	"context"
	"fmt"

	"rowlly_listings/identity"
	"rowlly_listings/logging"
	"rowlly_listings/models"
)

// Catalog is an immutable snapshot of every listing and agent. It is built
// once and shared read-only; reloading produces a new Catalog.
type Catalog struct {
	properties []models.Property
	agents     []models.Agent
	byID       map[string]int
	agentByID  map[string]int
}

// Source produces a fresh catalog snapshot (embedded sample, file, S3, Postgres).
type Source interface {
	Load(ctx context.Context) (*Catalog, error)
}

// SourceFunc adapts a function to Source
type SourceFunc func(ctx context.Context) (*Catalog, error)

func (f SourceFunc) Load(ctx context.Context) (*Catalog, error) { return f(ctx) }

// New validates the records and builds a catalog. The inputs are copied.
func New(properties []models.Property, agents []models.Agent) (*Catalog, error) {
	c := &Catalog{
		properties: make([]models.Property, len(properties)),
		agents:     make([]models.Agent, len(agents)),
		byID:       make(map[string]int, len(properties)),
		agentByID:  make(map[string]int, len(agents)),
	}
	copy(c.agents, agents)
	for i, p := range properties {
		p.Description = PlainText(p.Description)
		c.properties[i] = p
	}

	if err := validate(c.properties, c.agents); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	for i, a := range c.agents {
		c.agentByID[a.ID] = i
	}
	seen := make(map[string]string, len(c.properties))
	for i, p := range c.properties {
		c.byID[p.ID] = i

		fp := identity.Fingerprint(p)
		if other, dup := seen[fp]; dup {
			logging.Warnf("catalog: listings %s and %s look like the same home", other, p.ID)
			continue
		}
		seen[fp] = p.ID
	}

	return c, nil
}

func (c *Catalog) Len() int { return len(c.properties) }

// Properties returns the listings in catalog order.
func (c *Catalog) Properties() []models.Property {
	out := make([]models.Property, len(c.properties))
	copy(out, c.properties)
	return out
}

func (c *Catalog) Agents() []models.Agent {
	out := make([]models.Agent, len(c.agents))
	copy(out, c.agents)
	return out
}

func (c *Catalog) Property(id string) (models.Property, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Property{}, false
	}
	return c.properties[i], true
}

func (c *Catalog) Agent(id string) (models.Agent, bool) {
	i, ok := c.agentByID[id]
	if !ok {
		return models.Agent{}, false
	}
	return c.agents[i], true
}

// Featured returns the featured listings in catalog order.
func (c *Catalog) Featured() []models.Property {
	out := []models.Property{}
	for _, p := range c.properties {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out
}

// AgentListings returns up to limit listings handled by the agent; limit <= 0
// means all of them.
func (c *Catalog) AgentListings(agentID string, limit int) []models.Property {
	out := []models.Property{}
	for _, p := range c.properties {
		if limit > 0 && len(out) == limit {
			break
		}
		if p.AgentID == agentID {
			out = append(out, p)
		}
	}
	return out
}

// Resolve maps ids to listings in catalog order. Unknown ids are skipped.
func (c *Catalog) Resolve(ids []string) []models.Property {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := []models.Property{}
	for _, p := range c.properties {
		if _, ok := want[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out
}
