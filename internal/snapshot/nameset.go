package snapshot

// NameSet is an insertion-ordered set of names. It serializes as a JSON array.
type NameSet []string

// Add appends name unless it is already present. Reports whether it was added.
func (s *NameSet) Add(name string) bool {
	if s.Contains(name) {
		return false
	}
	*s = append(*s, name)
	return true
}

// Contains reports whether name is in the set.
func (s NameSet) Contains(name string) bool {
	for _, n := range s {
		if n == name {
			return true
		}
	}
	return false
}

// NameCollector builds a NameSet with constant-time membership checks.
type NameCollector struct {
	seen  map[string]bool
	names NameSet
}

// NewNameCollector creates an empty collector
func NewNameCollector() *NameCollector {
	return &NameCollector{seen: make(map[string]bool), names: NameSet{}}
}

// Add records name on first appearance; empty names are ignored.
func (c *NameCollector) Add(name string) {
	if name == "" || c.seen[name] {
		return
	}
	c.seen[name] = true
	c.names = append(c.names, name)
}

// Names returns the collected set in order of first appearance.
func (c *NameCollector) Names() NameSet {
	return c.names
}
