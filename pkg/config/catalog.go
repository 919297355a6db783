package config

// Catalog is the known-extensions lookup. It is built once from the loaded
// configuration and never mutated afterwards, so lookups are pure and safe
// for concurrent use.
type Catalog struct {
	byName map[string]ExtensionConfig
	order  []string
}

// NewCatalog builds a catalog from the given entries. Later entries with a
// duplicate name win, matching viper's last-declaration-wins merge behavior.
func NewCatalog(entries []ExtensionConfig) *Catalog {
	c := &Catalog{byName: make(map[string]ExtensionConfig, len(entries))}
	for _, entry := range entries {
		if _, seen := c.byName[entry.Name]; !seen {
			c.order = append(c.order, entry.Name)
		}
		c.byName[entry.Name] = entry
	}
	return c
}

// GetExtensionByName looks up a catalog entry. Names are case-sensitive.
func (c *Catalog) GetExtensionByName(name string) (ExtensionConfig, bool) {
	entry, ok := c.byName[name]
	return entry, ok
}

// All returns the catalog entries in declaration order.
func (c *Catalog) All() []ExtensionConfig {
	entries := make([]ExtensionConfig, 0, len(c.order))
	for _, name := range c.order {
		entries = append(entries, c.byName[name])
	}
	return entries
}
