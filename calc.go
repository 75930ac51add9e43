package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"loan-calculator/config"
	"loan-calculator/domain"
	"loan-calculator/repository"
	"loan-calculator/service"
	"loan-calculator/table"
)

func offlineLoanService(cfg config.Config) *service.LoanService {
	return service.NewLoanService(
		repository.NewLoanRepositoryMemory(1),
		nil,
		0,
		cfg.Calculator.Defaults.Locale,
		nil,
		nil,
	)
}

// newCalcCmd computes a single loan. Amounts are read the same way the
// calculator inputs are, so "2 500 000" and "3,5" are accepted.
func newCalcCmd(a *app) *cobra.Command {
	var amount, rate, term string

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Compute the monthly payment for one loan",
		Example: `  loancalc calc --amount "500 000" --rate 5 --term 60
  loancalc calc --amount 100000 --rate 3,5 --term 12`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := offlineLoanService(a.cfg)
			locale := svc.Locale()

			in := domain.LoanInputs{
				Principal:         locale.Parse(amount),
				AnnualRatePercent: locale.Parse(rate),
				TermMonths:        domain.WholeMonths(locale.Parse(term)),
			}
			_, display, err := svc.CalculateLoan(cmd.Context(), in)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Loan amount\t%s\n", display.LoanAmount)
			fmt.Fprintf(w, "Monthly payment\t%s\n", display.MonthlyPayment)
			fmt.Fprintf(w, "Total payment\t%s\n", display.TotalPayment)
			fmt.Fprintf(w, "Total interest\t%s\n", display.TotalInterest)
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "loan amount in kr")
	cmd.Flags().StringVar(&rate, "rate", "", "annual interest rate in percent")
	cmd.Flags().StringVar(&term, "term", "", "term in months")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("rate")
	_ = cmd.MarkFlagRequired("term")
	return cmd
}

// newCompareCmd prints a term comparison table.
func newCompareCmd(a *app) *cobra.Command {
	var (
		amount, rate string
		terms        []int
		minTerm      int
		maxTerm      int
		sortColumn   int
		descending   bool
	)

	cmd := &cobra.Command{
		Use:     "compare",
		Short:   "Compare loan terms side by side",
		Example: `  loancalc compare --amount 500000 --rate 5 --terms 12,36,60 --sort 1 --desc`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := offlineLoanService(a.cfg)
			locale := svc.Locale()
			termService := service.NewTermService(svc, a.logger)

			tbl, err := termService.CompareTerms(cmd.Context(), domain.TermComparisonInput{
				Principal:         locale.Parse(amount),
				AnnualRatePercent: locale.Parse(rate),
				Terms:             terms,
				MinTermMonths:     minTerm,
				MaxTermMonths:     maxTerm,
				SortColumn:        sortColumn,
				Descending:        descending,
			})
			if err != nil {
				return err
			}
			return printTable(cmd, tbl)
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "loan amount in kr")
	cmd.Flags().StringVar(&rate, "rate", "", "annual interest rate in percent")
	cmd.Flags().IntSliceVar(&terms, "terms", nil, "terms in months to compare")
	cmd.Flags().IntVar(&minTerm, "min-term", 0, "first term of a range, used when --terms is empty")
	cmd.Flags().IntVar(&maxTerm, "max-term", 0, "last term of a range, used when --terms is empty")
	cmd.Flags().IntVar(&sortColumn, "sort", service.ColumnTerm, "column to sort by (0 term, 1 monthly, 2 total, 3 interest)")
	cmd.Flags().BoolVar(&descending, "desc", false, "sort descending")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("rate")
	return cmd
}

func printTable(cmd *cobra.Command, tbl *table.Table) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)

	headers := make([]string, len(tbl.Columns))
	for i, col := range tbl.Columns {
		headers[i] = col.Name
		switch col.Sorted {
		case table.Ascending:
			headers[i] += " ▲"
		case table.Descending:
			headers[i] += " ▼"
		}
	}
	fmt.Fprintln(w, strings.Join(headers, "\t")+"\t")

	for _, row := range tbl.Rows {
		cells := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			cells[i] = c.Text
		}
		fmt.Fprintln(w, strings.Join(cells, "\t")+"\t")
	}
	return w.Flush()
}
