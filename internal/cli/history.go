package cli

import (
	"fmt"
	"strconv"
	"time"

	"shelter-operations/internal/adapters/storage"
	"shelter-operations/internal/domain/animals"

	"github.com/spf13/cobra"
)

func newHistoryCommand(app *App) *cobra.Command {
	var (
		limit  int
		offset int
	)
	cmd := &cobra.Command{
		Use:   "history <animal-id>",
		Short: "Print the status/location history of an animal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := storage.Open(ctx, storageOptions(app))
			if err != nil {
				return err
			}
			defer store.Close()

			svc := animals.NewService(store.Animals, animals.WithLogger(app.Log))
			a, err := svc.GetByID(ctx, args[0])
			if err != nil {
				return fmt.Errorf("animal %s: %w", args[0], err)
			}
			items, total, err := svc.History(ctx, a.ID, animals.Page{Limit: limit, Offset: offset})
			if err != nil {
				return err
			}

			tag := app.Labels.Match(app.Config.DefaultLocale)
			fmt.Fprintln(app.out, titleStyle.Render(fmt.Sprintf("%s (%s) · %s · %s",
				a.Name, a.ID,
				app.Labels.StatusLabel(tag, string(a.Status)),
				app.Labels.LocationLabel(tag, string(a.LocationType)),
			)))

			rows := make([][]string, 0, len(items))
			for _, h := range items {
				rows = append(rows, []string{
					strconv.FormatInt(h.Seq, 10),
					h.ChangedAt.Format(time.RFC3339),
					string(h.Field),
					orDash(h.OldValue),
					orDash(h.NewValue),
					orDash(h.ChangedBy),
					h.Reason,
				})
			}
			fmt.Fprintln(app.out, renderTable(
				[]string{"SEQ", "CHANGED AT", "FIELD", "OLD", "NEW", "BY", "REASON"},
				rows,
			))
			fmt.Fprintf(app.out, "%d of %d records\n", len(items), total)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", animals.DefaultPageLimit, "page size (max 200)")
	cmd.Flags().IntVar(&offset, "offset", 0, "records to skip")
	return cmd
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
