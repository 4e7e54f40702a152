package cli

import (
	"fmt"
	"strconv"

	"shelter-operations/internal/domain/catalog"

	"github.com/spf13/cobra"
)

func newStatusesCommand(app *App) *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "statuses",
		Short: "Print the status and location catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tag := app.Labels.Match(lang, app.Config.DefaultLocale)

			rows := make([][]string, 0, len(catalog.Statuses()))
			for _, s := range catalog.Statuses() {
				rows = append(rows, []string{
					string(s),
					app.Labels.StatusLabel(tag, string(s)),
					strconv.FormatBool(s.Terminal()),
					strconv.FormatBool(s.Active()),
					strconv.FormatBool(s.Adoptable()),
				})
			}
			fmt.Fprintln(app.out, renderTable([]string{"STATUS", "LABEL", "TERMINAL", "IN RESIDENCE", "ADOPTABLE"}, rows))

			rows = rows[:0]
			for _, l := range catalog.Locations() {
				rows = append(rows, []string{string(l), app.Labels.LocationLabel(tag, string(l))})
			}
			fmt.Fprintln(app.out, renderTable([]string{"LOCATION", "LABEL"}, rows))
			return nil
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "label locale (en, es)")
	return cmd
}
