package core

// Column is a named discrete input variable.
type Column struct {
	Name Symbol `json:"name"`

	// Position is the column's left-to-right index.
	Position int `json:"position"`

	// Domain is the column's values in rank order.  In Boolean mode
	// it's always [false true].
	Domain []Symbol `json:"domain,omitempty"`

	// Closed means that Domain was declared (see ColumnResolver)
	// rather than discovered.
	Closed bool `json:"closed,omitempty"`

	ranks map[Symbol]int
}

// Arity is the size of the column's domain.
func (c *Column) Arity() int {
	return len(c.Domain)
}

// Rank gives the value's position in the domain.
func (c *Column) Rank(v Symbol) (int, bool) {
	r, have := c.ranks[v]
	return r, have
}

// observe returns the value's rank, adding it to an open domain if
// needed.  Returns -1 for a value outside a closed domain.
func (c *Column) observe(v Symbol) int {
	if r, have := c.ranks[v]; have {
		return r
	}
	if c.Closed {
		return -1
	}
	c.ranks[v] = len(c.Domain)
	c.Domain = append(c.Domain, v)
	return c.ranks[v]
}

// init seeds the domain according to the mode.
func (c *Column) init(mode Mode, r Resolver) {
	c.ranks = make(map[Symbol]int, 4)
	switch mode {
	case Boolean:
		c.Domain = nil
		c.observe(False)
		c.observe(True)
		c.Closed = true
	default:
		if cr, is := r.(ColumnResolver); is {
			if enum := cr.Enum(c.Name); enum != nil {
				for _, v := range enum {
					c.observe(v)
				}
				c.Closed = true
			}
		}
	}
}

// copy returns a Column that shares nothing mutable with c.
func (c *Column) copy() Column {
	domain := make([]Symbol, len(c.Domain))
	copy(domain, c.Domain)
	return Column{
		Name:     c.Name,
		Position: c.Position,
		Domain:   domain,
		Closed:   c.Closed,
		ranks:    c.ranks,
	}
}

// BuildColumns resolves the header cells (not including the outcome
// label cell) into Columns.
func BuildColumns(header []string, r Resolver) ([]*Column, error) {
	cols := make([]*Column, 0, len(header))
	seen := make(map[Symbol]bool, len(header))
	for i, cell := range header {
		name, ok := resolve(r, cell)
		if !ok {
			return nil, &UnknownSymbol{Token: cell}
		}
		if seen[name] {
			return nil, &DuplicateColumn{Name: name}
		}
		seen[name] = true
		cols = append(cols, &Column{
			Name:     name,
			Position: i,
		})
	}
	return cols, nil
}
