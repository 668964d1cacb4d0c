package compile

// Exclusions is the set of component-group names that are never compiled.
// The default set covers the vendor's diagnostic subsystems, which depend
// on headers absent from this minimal configuration.
type Exclusions struct {
	names map[string]bool
}

// NewExclusions builds the set from its configuration form.
func NewExclusions(names []string) *Exclusions {
	e := &Exclusions{names: make(map[string]bool, len(names))}
	for _, n := range names {
		e.names[n] = true
	}
	return e
}

// Excluded reports whether the named component group is denylisted.
func (e *Exclusions) Excluded(name string) bool {
	return e.names[name]
}

// Len returns the number of excluded names.
func (e *Exclusions) Len() int { return len(e.names) }
