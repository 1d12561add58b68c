// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package zudd

// Unions returns the union of a sequence of families.
func (b *DD) Unions(n ...Node) Node {
	if len(n) == 1 {
		return n[0]
	}
	if len(n) == 0 {
		return ddzero
	}
	return b.Union(n[0], b.Unions(n[1:]...))
}

// Intersects returns the intersection of a non-empty sequence of families.
func (b *DD) Intersects(n ...Node) Node {
	if len(n) == 0 {
		return b.seterror("empty sequence in call to Intersects")
	}
	if len(n) == 1 {
		return n[0]
	}
	return b.Intersect(n[0], b.Intersects(n[1:]...))
}

// Products returns the Cartesian product of a sequence of families. The
// product of an empty sequence is the base family.
func (b *DD) Products(n ...Node) Node {
	if len(n) == 1 {
		return n[0]
	}
	if len(n) == 0 {
		return b.Base()
	}
	return b.Product(n[0], b.Products(n[1:]...))
}

// Includes returns true if every combination of g is also in f.
func (b *DD) Includes(f, g Node) bool {
	d := b.Diff(g, f)
	return d != nil && *d == 0
}
