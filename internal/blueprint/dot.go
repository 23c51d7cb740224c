package blueprint

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/vk/superelastix/internal/criteria"
)

// WriteDOT writes the blueprint as a Graphviz digraph.
func (b *Blueprint) WriteDOT(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "digraph blueprint {")
	fmt.Fprintln(bw, "  node [shape=box];")
	for _, name := range b.ComponentNames() {
		m, _ := b.GetComponent(name)
		fmt.Fprintf(bw, "  %q [label=%q];\n", name, label(name, m))
	}
	for _, c := range b.Connections() {
		if len(c.Criteria) == 0 {
			fmt.Fprintf(bw, "  %q -> %q;\n", c.Upstream, c.Downstream)
			continue
		}
		fmt.Fprintf(bw, "  %q -> %q [label=%q];\n", c.Upstream, c.Downstream, label("", c.Criteria))
	}
	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

func label(title string, m criteria.Map) string {
	lines := make([]string, 0, len(m)+1)
	if title != "" {
		lines = append(lines, title)
	}
	for _, c := range m.Criteria() {
		lines = append(lines, c.Key+": "+strings.Join(c.Values, ", "))
	}
	return strings.Join(lines, "\n")
}
