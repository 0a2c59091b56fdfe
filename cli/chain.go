package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"

	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/referenceframe"
)

// ChainAction prints the joints of a model and the position of its links at a configuration.
func ChainAction(c *cli.Context) error {
	chain, err := loadChain(c)
	if err != nil {
		return err
	}
	q := make([]referenceframe.Input, chain.DoF())
	if c.IsSet(chainFlagConfiguration) {
		q = referenceframe.FloatsToInputs(c.Float64Slice(chainFlagConfiguration))
	}
	joints, links, err := chainTables(chain, q)
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s\n\n%s", joints, links)
	return nil
}

func chainTables(chain referenceframe.KinematicChain, q []referenceframe.Input) (string, string, error) {
	poses, err := chain.Poses(q)
	if err != nil {
		return "", "", err
	}

	joints := table.NewWriter()
	joints.SetTitle(fmt.Sprintf("%s: %d joints", chain.Name(), chain.DoF()))
	joints.AppendHeader(table.Row{"#", "Min", "Max", "Max speed", "Position"})
	limits := chain.Limits()
	speeds := chain.MaxSpeeds()
	for i := range limits {
		joints.AppendRow(table.Row{
			i,
			fmt.Sprintf("%.4f", limits[i].Min),
			fmt.Sprintf("%.4f", limits[i].Max),
			fmt.Sprintf("%.4f", speeds[i]),
			fmt.Sprintf("%.4f", q[i]),
		})
	}

	links := table.NewWriter()
	links.AppendHeader(table.Row{"#", "Link", "X", "Y", "Z"})
	for i, name := range chain.LinkNames() {
		pt := poses[i].Point()
		links.AppendRow(table.Row{i, name, fmt.Sprintf("%.4f", pt.X), fmt.Sprintf("%.4f", pt.Y), fmt.Sprintf("%.4f", pt.Z)})
	}
	return joints.Render(), links.Render(), nil
}
