package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/urfave/cli/v2"

	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/motionplan"
)

// CostAction prints the length, scaling factor and cost of every connection.
func CostAction(c *cli.Context) error {
	s, err := loadScene(c, false)
	if err != nil {
		return err
	}
	metric := motionplan.NewLengthPenaltyMetric(s.estimator)
	evals, err := metric.EvaluateBatch(c.Context, s.connections)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Start", "End", "Utopia", "Scaling", "Cost"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	var totalUtopia, totalCost float64
	unsafe := 0
	for i, conn := range s.connections {
		utopia := metric.Utopia(conn.Start, conn.End)
		totalUtopia += utopia
		totalCost += evals[i].Cost
		t.AppendRow(table.Row{
			i,
			formatInputs(conn.Start),
			formatInputs(conn.End),
			fmt.Sprintf("%.4f", utopia),
			formatScaling(evals[i]),
			fmt.Sprintf("%.4g", evals[i].Cost),
		})
		if evals[i].Unsafe() {
			unsafe++
		}
	}
	t.AppendFooter(table.Row{"", "", "Total", fmt.Sprintf("%.4f", totalUtopia), "", fmt.Sprintf("%.4g", totalCost)})
	printf(c.App.Writer, "%s", t.Render())
	s.logger.Infow("evaluated connections",
		"connections", len(s.connections), "obstacles", s.estimator.Obstacles().Len(), "unsafe", unsafe)
	return nil
}

func formatScaling(e motionplan.Evaluation) string {
	switch {
	case e.Length == 0:
		return "-"
	case e.Unsafe():
		return "unsafe"
	default:
		return fmt.Sprintf("%.4f", e.Lambda)
	}
}
