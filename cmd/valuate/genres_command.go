package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/okian/valuator/internal/domain/valuation"
)

func newGenresCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "genres",
		Short: "List the genre catalog and weights",
		RunE: func(cmd *cobra.Command, _ []string) error {
			genres := valuation.Genres()
			if asJSON {
				return writeJSON(cmd, genres)
			}
			rows := make([][]string, 0, len(genres))
			for _, g := range genres {
				rows = append(rows, []string{g.Name, strconv.Itoa(g.Weight)})
			}
			title := fmt.Sprintf("Genres (pick up to %d)", valuation.MaxGenres)
			_, err := fmt.Fprintln(cmd.OutOrStdout(), renderTable(title, []string{"Genre", "Weight"}, rows,
				[]columnAlignment{alignLeft, alignRight}))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}
