package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/haivivi/kws/pkg/cli"
	"github.com/haivivi/kws/pkg/kws"
	"github.com/haivivi/kws/pkg/resultstore"
)

var resultsLimit int

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Inspect stored runs",
	Long: `List, show and delete the reports saved by 'kws classify' and 'kws serve'.

Examples:
  kws results list
  kws results list --limit 10 -f json
  kws results get 6f1c...
  kws results delete 6f1c...`,
}

// requireStore opens the result store, which must not be disabled.
func requireStore() (*resultstore.Store, error) {
	store, err := openResultStore()
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("the result store is disabled (--store -)")
	}
	return store, nil
}

var resultsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs, newest last",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := requireStore()
		if err != nil {
			return err
		}
		defer store.Close()

		var recs []resultstore.Record
		for rec, err := range store.List(cmdContext(cmd)) {
			if err != nil {
				return err
			}
			recs = append(recs, rec)
		}
		if resultsLimit > 0 && len(recs) > resultsLimit {
			recs = recs[len(recs)-resultsLimit:]
		}

		if formatOutput != string(cli.FormatText) {
			reports := make([]kws.ClipReport, len(recs))
			for i, rec := range recs {
				reports[i] = rec.Report
			}
			return cli.Output(reports, outputOptions(cmd))
		}

		w, closeOut, err := outputWriter(cmd)
		if err != nil {
			return err
		}
		defer closeOut()
		if len(recs) == 0 {
			fmt.Fprintln(w, "no runs")
			return nil
		}
		st := styles(cmd)
		for _, rec := range recs {
			fmt.Fprintln(w, cli.RecordLine(rec, st, 0))
		}
		return nil
	},
}

var resultsGetCmd = &cobra.Command{
	Use:   "get <run-id>",
	Short: "Show a stored run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := requireStore()
		if err != nil {
			return err
		}
		defer store.Close()

		rec, err := store.Get(cmdContext(cmd), args[0])
		if err != nil {
			return err
		}

		w, closeOut, err := outputWriter(cmd)
		if err != nil {
			return err
		}
		defer closeOut()
		return printReport(w, rec.Report, styles(cmd))
	},
}

var resultsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>...",
	Short: "Delete stored runs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := requireStore()
		if err != nil {
			return err
		}
		defer store.Close()

		var w io.Writer = cmd.OutOrStdout()
		for _, id := range args {
			if err := store.Delete(cmdContext(cmd), id); err != nil {
				return err
			}
			cli.PrintSuccess(w, "deleted %s", id)
		}
		return nil
	},
}

func init() {
	resultsListCmd.Flags().IntVar(&resultsLimit, "limit", 0, "show only the newest N runs")
	resultsCmd.AddCommand(resultsListCmd, resultsGetCmd, resultsDeleteCmd)
	rootCmd.AddCommand(resultsCmd)
}
