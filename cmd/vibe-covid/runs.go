package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/vibe-covid/internal/duckdb"
	"github.com/inodb/vibe-covid/internal/match"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Query recorded typing runs",
		Long:  "List, search and show runs recorded by 'vibe-covid type' in the run database.",
	}

	cmd.AddCommand(newRunsListCmd())
	cmd.AddCommand(newRunsSearchCmd())
	cmd.AddCommand(newRunsShowCmd())
	return cmd
}

func openStore() (*duckdb.Store, error) {
	return duckdb.Open(viper.GetString("db"))
}

func newRunsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN\tCREATED\tVCF\tPROTEIN\tTOLERANCE\tMUTATIONS\tMATCHES")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%g\t%d\t%s\n",
					r.ID, r.CreatedAt.Local().Format(time.DateTime), r.VCFPath,
					r.Protein, r.Tolerance, r.Mutations, r.Matches)
			}
			return tw.Flush()
		},
	}
}

func newRunsSearchCmd() *cobra.Command {
	var proteinName string

	cmd := &cobra.Command{
		Use:     "search <mutation>",
		Short:   "Find runs in which a mutation was observed",
		Example: "  vibe-covid runs search N501Y --protein S",
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			hits, err := store.SearchByMutation(cmd.Context(), args[0], proteinName)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN\tCREATED\tVCF\tPROTEIN\tMUTATION")
			for _, h := range hits {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					h.RunID, h.CreatedAt.Local().Format(time.DateTime), h.VCFPath, h.Protein, h.Mutation)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&proteinName, "protein", "", "Restrict to one protein")
	return cmd
}

func newRunsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the mutations and matches of a run",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Run:       %s\n", run.ID)
			fmt.Printf("Created:   %s\n", run.CreatedAt.Local().Format(time.DateTime))
			fmt.Printf("VCF:       %s (%s)\n", run.VCF.Path, formatSize(run.VCF.Size))
			fmt.Printf("Reference: %s\n", run.Reference)
			fmt.Printf("Edits:     %d\n\n", len(run.Edits))

			rep := &match.Report{Protein: run.Protein, Hits: run.Hits}
			for _, m := range run.Mutations {
				if m.Protein == run.Protein {
					rep.Mutations = append(rep.Mutations, m.Mutation)
				}
			}
			return rep.WriteText(os.Stdout)
		},
	}
}
