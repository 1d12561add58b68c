// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package zudd

import "sort"

// AddFormula registers f under the given name, replacing any previous formula
// with the same name. Named formulas are never reclaimed by the garbage
// collector and survive reordering.
func (b *DD) AddFormula(name string, f Node) error {
	if err := b.checkptr(f); err != nil {
		b.seterror("wrong operand in call to AddFormula(%s); %s", name, err)
		return b.error
	}
	b.formulas[name] = f
	return nil
}

// Formula returns the family registered under name.
func (b *DD) Formula(name string) (Node, bool) {
	f, ok := b.formulas[name]
	return f, ok
}

// DeleteFormula removes the formula with the given name. The nodes of the
// formula can be reclaimed if there are no other references to them.
func (b *DD) DeleteFormula(name string) {
	delete(b.formulas, name)
}

// Formulas returns the names of all registered formulas, in lexical order.
func (b *DD) Formulas() []string {
	res := make([]string, 0, len(b.formulas))
	for k := range b.formulas {
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}
