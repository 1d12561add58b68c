// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

/*
Package planner implements a symbolic production planner and scheduler on top
of the decision diagrams of package zudd.

A Model describes operations, machine types with a number of instances, the
processing time of each operation on each machine type, and parts with their
alternative process plans. Plans are sequences of items: a plain operation, a
run of operations that may be executed in any order (PERMUTATION) or a
reference to a sub-part whose own plans are spliced in place (ALTERNATIVE).

The planner works entirely with families of combinations of element
variables. It first encodes every process plan, then assigns machine types to
operations and restricts the result with the factory capacity
(FeasiblePlans). The scheduler then explores the state space one time tick at
a time, starting operations on free machine instances, completing them and
collecting the combinations where every part is finished (Schedule). Finally,
a representative schedule with a minimal number of installed machines can be
extracted and written as a Gantt chart.
*/
package planner
