package game

// Catalog is the set of playable difficulty tiers. It is built once at
// startup and never mutated afterwards, so lookups need no locking.
type Catalog struct {
	tiers     map[string]Tier
	order     []string
	defaultID string
}

// NewCatalog builds a catalog from the given tiers. The first tier is the
// default used by sessions that never called Configure.
func NewCatalog(tiers ...Tier) *Catalog {
	c := &Catalog{tiers: make(map[string]Tier, len(tiers))}
	for i, t := range tiers {
		c.tiers[t.ID] = t
		c.order = append(c.order, t.ID)
		if i == 0 {
			c.defaultID = t.ID
		}
	}
	return c
}

// DefaultCatalog returns the standard tier set. Ranges follow the classic
// game (10/50/100/1000); attempt budgets and point awards grow with the
// range so harder tiers stay winnable but pay proportionally more.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		Tier{ID: "easy", MaxNumber: 10, MaxAttempts: 3, Points: 3},
		Tier{ID: "medium", MaxNumber: 50, MaxAttempts: 5, Points: 10},
		Tier{ID: "hard", MaxNumber: 100, MaxAttempts: 7, Points: 25},
		Tier{ID: "impossible", MaxNumber: 1000, MaxAttempts: 10, Points: 100},
	)
}

// Lookup resolves a tier id, returning ErrUnknownDifficulty for ids that
// were never registered.
func (c *Catalog) Lookup(id string) (Tier, error) {
	t, ok := c.tiers[id]
	if !ok {
		return Tier{}, ErrUnknownDifficulty
	}
	return t, nil
}

// Default returns the catalog's default tier.
func (c *Catalog) Default() Tier {
	return c.tiers[c.defaultID]
}

// Tiers lists all registered tiers in registration order, for menus and
// the diagnostics endpoint.
func (c *Catalog) Tiers() []Tier {
	out := make([]Tier, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.tiers[id])
	}
	return out
}
