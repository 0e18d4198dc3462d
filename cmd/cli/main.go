package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"divnest/adapters/excel"
	"divnest/adapters/randomizer"
	"divnest/app"
	"divnest/domain/community"
	"divnest/domain/diversity"
	"divnest/domain/randtest"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "divnest-cli",
		Short: "Permutation tests for nested diversity decomposition",
	}

	rootCmd.AddCommand(newRunCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var (
		tablePath     string
		structurePath string
		disPath       string
		level         int
		nrep          int
		alternative   string
		formula       string
		option        string
		meanType      string
		tol           float64
		seed          int64
		workers       int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a permutation test from data files",
		Long: `Run a Monte-Carlo permutation test on an abundance table, optionally
constrained by a nested grouping structure.

Example: divnest-cli run --table sites.csv --structure regions.csv --level 2 --nrep 999 --seed 42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := excel.NewDataReader(tablePath).ReadAbundanceTable()
			if err != nil {
				return fmt.Errorf("reading abundance table: %w", err)
			}

			var str *community.StructureTable
			if structurePath != "" {
				str, err = excel.NewDataReader(structurePath).ReadStructureTable()
				if err != nil {
					return fmt.Errorf("reading structure table: %w", err)
				}
			}

			var dis *community.DissimilarityMatrix
			if disPath != "" {
				dis, err = excel.NewDataReader(disPath).ReadDissimilarity()
				if err != nil {
					return fmt.Errorf("reading dissimilarity: %w", err)
				}
			}

			service := app.NewPermutationService(
				diversity.NewRaoProvider(),
				community.NestingValidator{},
				randomizer.NewSeededRNG(),
				nil,
				workers,
			)
			result, err := service.RunTest(cmd.Context(), app.TestRequest{
				Table:         table,
				Dissimilarity: dis,
				Structure:     str,
				Level:         level,
				Repetitions:   nrep,
				Alternative:   randtest.Alternative(alternative),
				Seed:          seed,
				Options: diversity.Options{
					Formula:  diversity.Formula(formula),
					Option:   diversity.Option(option),
					MeanType: diversity.MeanType(meanType),
					Tol:      tol,
				},
			})
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&tablePath, "table", "", "abundance table file (csv or xlsx)")
	cmd.Flags().StringVar(&structurePath, "structure", "", "nested structure table file")
	cmd.Flags().StringVar(&disPath, "dissimilarity", "", "species dissimilarity matrix file")
	cmd.Flags().IntVar(&level, "level", 1, "hierarchy level to test")
	cmd.Flags().IntVar(&nrep, "nrep", 999, "number of repetitions")
	cmd.Flags().StringVar(&alternative, "alternative", "greater", "alternative hypothesis: greater, less, two-sided")
	cmd.Flags().StringVar(&formula, "formula", "QE", "diversity formula: QE or EDI")
	cmd.Flags().StringVar(&option, "option", "eq", "rescaling option: eq, normed1, normed2")
	cmd.Flags().StringVar(&meanType, "mean", "arithmetic", "mean type: arithmetic or harmonic")
	cmd.Flags().Float64Var(&tol, "tol", diversity.DefaultTol, "minimum site abundance tolerance")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for reproducible runs")
	cmd.Flags().IntVar(&workers, "workers", 0, "trial workers (0 = one per CPU)")
	_ = cmd.MarkFlagRequired("table")

	return cmd
}
