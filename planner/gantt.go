// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package planner

import (
	"bufio"
	"fmt"
	"io"
	"sort"
)

// WriteGantt writes a schedule as a Markdown document: a summary, a table
// with one line per operation and a mermaid Gantt chart with one section per
// machine instance.
func WriteGantt(w io.Writer, m *Model, sched *Schedule) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# Schedule\n\n")
	fmt.Fprintf(bw, "- makespan: %d\n", sched.Makespan)
	fmt.Fprintf(bw, "- installed machines: %d", sched.Machines)
	if len(sched.Installed) > 0 {
		types := make([]int, 0, len(sched.Installed))
		for i := range sched.Installed {
			types = append(types, i)
		}
		sort.Ints(types)
		fmt.Fprintf(bw, " (")
		for k, i := range types {
			if k > 0 {
				fmt.Fprintf(bw, ", ")
			}
			fmt.Fprintf(bw, "%s: %d", m.Machines[i].Name, sched.Installed[i])
		}
		fmt.Fprintf(bw, ")")
	}
	fmt.Fprintf(bw, "\n\n")

	fmt.Fprintf(bw, "| Part | Slot | Operation | Machine | Start | End |\n")
	fmt.Fprintf(bw, "| --- | --- | --- | --- | --- | --- |\n")
	for _, it := range sched.Items {
		fmt.Fprintf(bw, "| %s | %d | %s | %s | %d | %d |\n",
			m.Parts[it.Part].Name, it.Slot, m.Operations[it.Operation].Name,
			instanceName(m, it.Machine, it.Instance), it.Start, it.End)
	}

	fmt.Fprintf(bw, "\n```mermaid\ngantt\n    dateFormat X\n    axisFormat %%s\n")
	sections := make(map[string][]GanttItem)
	names := []string{}
	for _, it := range sched.Items {
		name := instanceName(m, it.Machine, it.Instance)
		if _, ok := sections[name]; !ok {
			names = append(names, name)
		}
		sections[name] = append(sections[name], it)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(bw, "    section %s\n", name)
		for _, it := range sections[name] {
			fmt.Fprintf(bw, "    %s %s : %d, %d\n", m.Parts[it.Part].Name, m.Operations[it.Operation].Name, it.Start, it.End)
		}
	}
	fmt.Fprintf(bw, "```\n")
	return bw.Flush()
}

func instanceName(m *Model, i, j int) string {
	return fmt.Sprintf("%s#%d", m.Machines[i].Name, j)
}
