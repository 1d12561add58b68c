// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

/*
Package zudd defines a concrete type for decision diagrams representing
families of combinations, that is sets of subsets of a universe of element
variables. Two representation variants share the same kernel and the same API:
zero-suppressed diagrams (ZBDD), where a variable missing from a path is absent
from the combinations of that path, and ordered diagrams (OBDD), where it is a
don't care.

Basics

Variables are declared one at a time with AddVar and are identified by a Var.
Each variable is placed at a level in the order of the diagram; levels can be
changed with Sift, identifiers never change. Most operations return a Node;
that is a pointer to a "vertex" in the diagram that includes a variable level,
and the address of the absent (low) and present (high) branch for this node. We
use integer to represent the address of Nodes, with the convention that 0 is
the address of the empty family and 1 the address of the base family (ZBDD) or
of the family of all the combinations (OBDD).

Operations

The set algebra includes Union, Intersect, Diff, the Cartesian Product,
Quotient and Remainder by a variable, Change, Subset0, Subset1,
ElementAbstract, Supset and Permitsym. Families can be counted (Count),
enumerated (Allcomb) and sampled (Pick, Extract). Nodes can also be walked
structurally with Top, Cofactors and Compose, for instance to implement custom
recursive operations that consult the payload attached to variables with
SetVarData.

Use of build tags

To get access to better statistics about caches and garbage collection, as well
as to unlock logging of some operations, you can compile your executable with
the build tag `debug`.

Automatic memory management

The library is written in pure Go. "External" references to nodes made by user
code are automatically managed by the Go runtime, using finalizers. Families can
also be kept alive by name, with AddFormula, or until the next call to Purge,
with KeepUntilPurge. Each garbage collection, and each reordering, increments a
generation counter (see Generation) that can be used to invalidate external
caches indexed by raw node addresses.
*/
package zudd
