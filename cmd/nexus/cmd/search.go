package cmd

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/nexus/internal/daemon"
	"github.com/Aman-CERP/nexus/internal/output"
)

func newSearchCmd(g *globalOptions) *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Rank entries for a query in the running instance",
		Long: `Run a query against the running instance's index and print the ranked
results without launching anything. Useful for checking what the window
would show and why.`,
		Example: `  nexus search fire
  nexus search "2+2*3" --json
  nexus search doc --limit 3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient(g)
			if err != nil {
				return err
			}
			results, err := client.Search(cmd.Context(), daemon.SearchParams{
				Query: strings.Join(args, " "),
				Limit: limit,
			})
			if err != nil {
				return err
			}

			out := output.New(cmd.OutOrStdout())
			if jsonOutput {
				return out.JSON(results)
			}
			if len(results) == 0 {
				out.Status("", "No matches")
				return nil
			}
			rows := make([][]string, 0, len(results))
			for i, r := range results {
				rows = append(rows, []string{strconv.Itoa(i + 1), r.Name, r.Kind, r.Tier, strconv.Itoa(r.Score), r.Target})
			}
			out.Table([]string{"#", "NAME", "KIND", "TIER", "SCORE", "TARGET"}, rows)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum results (default: search.max_results)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
