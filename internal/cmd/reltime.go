package cmd

import (
	"fmt"
	"io"
	"time"

	"pagekit/internal/reltime"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var reltimeNow string

var reltimeCmd = &cobra.Command{
	Use:   "reltime DATE...",
	Short: "Render dates relative to now",
	Long: `Render each DATE (RFC 3339 or YYYY-MM-DD) as whole days and as the
detailed label used on post pages, with locale strings from the configuration.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		now := time.Now()
		if reltimeNow != "" {
			if now, err = parseDate(reltimeNow); err != nil {
				return fmt.Errorf("invalid --now: %w", err)
			}
		}
		f := reltime.New(cfg.Locale.Time, reltime.WithNow(func() time.Time { return now }))

		rows := make([]reltimeRow, 0, len(args))
		for _, arg := range args {
			t, err := parseDate(arg)
			if err != nil {
				return err
			}
			rows = append(rows, reltimeRow{Input: arg, Days: f.Days(t), Detailed: f.Detailed(t)})
		}
		return renderReltimeTable(cmd.OutOrStdout(), rows)
	},
}

func init() {
	rootCmd.AddCommand(reltimeCmd)
	reltimeCmd.Flags().StringVar(&reltimeNow, "now", "", "reference time instead of the wall clock")
}

type reltimeRow struct {
	Input    string
	Days     int64
	Detailed string
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: want RFC 3339 or YYYY-MM-DD", s)
	}
	return t, nil
}

func renderReltimeTable(w io.Writer, rows []reltimeRow) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"Date", "Days", "Relative"})
	for _, row := range rows {
		t.AppendRow(table.Row{row.Input, row.Days, row.Detailed})
	}

	t.Render()
	return nil
}
