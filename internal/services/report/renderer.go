package report

import (
	"fmt"
	"sort"
	"strings"
)

// TextRenderer renders a chart as a plain-text summary document. It
// stands in for a real PDF layout engine behind the same Renderer
// contract.
type TextRenderer struct{}

func (TextRenderer) Render(chart ChartData) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Monthly report %s (%s)\n", chart.Month, chart.Role)
	fmt.Fprintf(&b, "Total volume: %s\n", chart.TotalVolume)
	fmt.Fprintf(&b, "Transactions: %d (avg %s)\n", chart.TxCount, chart.AvgTx)
	fmt.Fprintf(&b, "Active users: %d, active merchants: %d\n", chart.ActiveUsers, chart.ActiveMerchants)

	if len(chart.Categories) > 0 {
		b.WriteString("\nBy category:\n")
		names := make([]string, 0, len(chart.Categories))
		for name := range chart.Categories {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "  %-16s %s\n", name, chart.Categories[name])
		}
	}

	if len(chart.Daily) > 0 {
		b.WriteString("\nDaily volume:\n")
		for _, day := range chart.Daily {
			fmt.Fprintf(&b, "  %s  %s (%d tx)\n", day.Date, day.Volume, day.Count)
		}
	}
	return []byte(b.String()), nil
}
