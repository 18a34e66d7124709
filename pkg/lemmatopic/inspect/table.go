package inspect

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// WriteTable prints one line per topic: index, coherence, then the terms
// with their weights.
func WriteTable(w io.Writer, summaries []TopicSummary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TOPIC\tNPMI\tTERMS")
	for _, s := range summaries {
		parts := make([]string, len(s.Terms))
		for i, t := range s.Terms {
			parts[i] = fmt.Sprintf("%s (%.4f)", t.Term, t.Weight)
		}
		fmt.Fprintf(tw, "%d\t%.3f\t%s\n", s.Topic, s.Coherence, strings.Join(parts, ", "))
	}
	return tw.Flush()
}
