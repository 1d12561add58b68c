// Copyright 2021. Silvano DAL ZILIO.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package zudd

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
)

// Stats returns information about the diagram: node table, garbage
// collections and, with the debug build tag, cache performance.
func (b *DD) Stats() string {
	res := fmt.Sprintf("Kind:       %s\n", b.Kind())
	res += fmt.Sprintf("Varnum:     %d\n", b.varnum)
	res += fmt.Sprintf("Formulas:   %d\n", len(b.formulas))
	res += fmt.Sprintf("Generation: %d\n", b.generation)
	res += b.hudd.stats()
	if _DEBUG {
		res += "==============\n"
		res += b.cacheStat.String() + "\n"
	}
	return res
}

// humanSize returns a human-readable version of a size in bytes
func humanSize(b int, unit uintptr) string {
	b = b * int(unit)
	const k = 1024
	if b < k {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(k), 0
	for n := b / k; n >= k; n /= k {
		div *= k
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}

// ******************************************************************************************************

// Print returns a one-line description of node n.
func (b *DD) Print(n Node) string {
	if n == nil {
		return "Error (nil node)"
	}
	switch {
	case *n == 0:
		return "Empty"
	case *n == 1 && b.zbdd:
		return "Base"
	case *n == 1:
		return "Universe"
	case *n < 0:
		return "Error"
	case *n >= len(b.nodes):
		return fmt.Sprintf("Error (%d not a valid index)", *n)
	case b.nodes[*n].low == -1:
		return fmt.Sprintf("Error (node %d[%d] undefined)", *n, b.nodes[*n].level)
	}
	return fmt.Sprintf("(%d[%s] ? %d : %d)", *n, b.names[b.level2var[b.nodes[*n].level]], b.nodes[*n].high, b.nodes[*n].low)
}

// PrintTable outputs the list of nodes reachable from n, one per line.
func (b *DD) PrintTable(w io.Writer, n Node) error {
	if err := b.checkptr(n); err != nil {
		return err
	}
	cnodes := b.markcount(*n)
	nodes := make([]int, 0, cnodes)
	for i := 2; i < len(b.nodes); i++ {
		if b.ismarked(i) {
			b.unmarknode(i)
			nodes = append(nodes, i)
		}
	}
	tw := tabwriter.NewWriter(w, 0, 0, 0, ' ', 0)
	sort.Ints(nodes)
	for _, n := range nodes {
		fmt.Fprintf(tw, "%d\t[%s\t] ? \t%d\t : %d\n", n, b.names[b.level2var[b.nodes[n].level]], b.nodes[n].high, b.nodes[n].low)
	}
	return tw.Flush()
}

// Format writes the combinations of f, one per line, using variable names.
// The empty combination is written as {}.
func (b *DD) Format(w io.Writer, f Node) error {
	bw := bufio.NewWriter(w)
	err := b.Allcomb(f, func(vars []Var) error {
		names := make([]string, len(vars))
		for k, v := range vars {
			names[k] = b.names[v]
		}
		_, err := fmt.Fprintf(bw, "{%s}\n", strings.Join(names, ", "))
		return err
	})
	if err != nil {
		return err
	}
	return bw.Flush()
}

// ******************************************************************************************************

// PrintDot writes a graph-like description of the family with root n using
// the DOT format.
func (b *DD) PrintDot(w io.Writer, n Node) error {
	bw := bufio.NewWriter(w)
	if err := b.checkptr(n); err != nil {
		fmt.Fprintf(bw, "ERROR: %s\n", err)
		bw.Flush()
		return err
	}
	// We build the list of nodes reachable from n, using the marks of the
	// garbage collector.
	cnodes := b.markcount(*n)
	nodes := make([]int, 0, cnodes)
	for i := 2; i < len(b.nodes); i++ {
		if b.ismarked(i) {
			b.unmarknode(i)
			nodes = append(nodes, i)
		}
	}
	b.print_dot(bw, *n, nodes)
	return bw.Flush()
}

// print_dot returns a GraphViz DOT file from a list of nodes. We do not draw
// arcs that go to the empty family.
func (b *DD) print_dot(w *bufio.Writer, root int, nodes []int) {
	sort.Ints(nodes)
	fmt.Fprintln(w, "digraph G {")
	if root == 0 {
		fmt.Fprintln(w, "0 [shape=box, label=\"0\", style=filled, shape=box, height=0.3, width=0.3];")
	}
	fmt.Fprintln(w, "1 [shape=box, label=\"1\", style=filled, shape=box, height=0.3, width=0.3];")

	for _, v := range nodes {
		fmt.Fprintf(w, "%d %s\n", v, dotlabel(v, b.names[b.level2var[b.nodes[v].level]]))
		if b.nodes[v].low != 0 {
			fmt.Fprintf(w, "%d -> %d [style=dotted];\n", v, b.nodes[v].low)
		}
		if b.nodes[v].high != 0 {
			fmt.Fprintf(w, "%d -> %d [style=filled];\n", v, b.nodes[v].high)
		}
	}
	fmt.Fprintln(w, "}")
}

func dotlabel(a int, name string) string {
	return fmt.Sprintf(`[label=<
	<FONT POINT-SIZE="20">%s</FONT>
	<FONT POINT-SIZE="10">[%d]</FONT>
>];`, name, a)
}
