package cli

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	appCurrency "github.com/turtacn/KeyIP-Renewals/internal/application/currency"
	domainCurrency "github.com/turtacn/KeyIP-Renewals/internal/domain/currency"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Renewals/pkg/errors"
)

func newCurrencyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "currency",
		Short: "Inspect and import the currency rate table",
	}
	cmd.AddCommand(newCurrencyListCmd(), newCurrencyImportCmd())
	return cmd
}

func currencyDeps(cmd *cobra.Command) (*CLIContext, CurrencyService, error) {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return nil, nil, err
	}
	if cliCtx.Deps == nil || cliCtx.Deps.Currencies == nil {
		return nil, nil, errors.New(errors.ErrCodeServiceUnavailable, "currency service is not configured")
	}
	return cliCtx, cliCtx.Deps.Currencies, nil
}

func newCurrencyListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the current rate table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, svc, err := currencyDeps(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, cliCtx)
			defer cancel()

			table, err := svc.List(ctx)
			if err != nil {
				return err
			}
			return PrintResult(cmd, NewCurrencyView(table))
		},
	}
}

func newCurrencyImportCmd() *cobra.Command {
	var (
		file   string
		format string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the rate table from a CSV or JSON file",
		Long: `Imports code,to_base rows.  CSV files may start with a "code,to_base"
header.  JSON files hold either an array of {"code","to_base"} objects or
{"rates": [...]}.  The import is all-or-nothing and publishes a rates-updated
event so the worker recomputes stored prices.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, svc, err := currencyDeps(cmd)
			if err != nil {
				return err
			}
			inputs, err := readRateInputs(cmd, file, format)
			if err != nil {
				return err
			}
			if len(inputs) == 0 {
				return errors.InvalidParam("no rates found in input")
			}

			ctx, cancel := commandContext(cmd, cliCtx)
			defer cancel()

			table, err := svc.ImportRates(ctx, inputs)
			if err != nil {
				return err
			}
			cliCtx.Logger.Info("rates imported", logging.Int("count", len(inputs)), logging.String("file", file))
			return PrintResult(cmd, NewCurrencyView(table))
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "rates file, - for stdin [REQUIRED]")
	cmd.Flags().StringVar(&format, "format", "", "csv or json (default: from the file extension)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// readRateInputs picks the decoder by --format or the file extension.
func readRateInputs(cmd *cobra.Command, path, format string) ([]appCurrency.RateInput, error) {
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json":
			format = "json"
		default:
			format = "csv"
		}
	}

	data, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(format) {
	case "json":
		if bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) {
			var rates []appCurrency.RateInput
			if err := decodeJSON(data, path, &rates); err != nil {
				return nil, err
			}
			return rates, nil
		}
		var doc struct {
			Rates []appCurrency.RateInput `json:"rates"`
		}
		if err := decodeJSON(data, path, &doc); err != nil {
			return nil, err
		}
		return doc.Rates, nil
	case "csv":
		return parseRateCSV(bytes.NewReader(data))
	default:
		return nil, errors.InvalidParam(fmt.Sprintf("unsupported format %q", format))
	}
}

// parseRateCSV reads code,to_base rows.  A first row whose rate column is not a
// number is treated as a header.
func parseRateCSV(r io.Reader) ([]appCurrency.RateInput, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "malformed rates csv")
	}

	inputs := make([]appCurrency.RateInput, 0, len(records))
	for i, rec := range records {
		code := strings.ToUpper(strings.TrimSpace(rec[0]))
		rate, err := decimal.NewFromString(strings.TrimSpace(rec[1]))
		if err != nil {
			if i == 0 {
				continue
			}
			return nil, errors.New(errors.ErrCodeCurrencyRateInvalid, "rate is not a decimal").
				WithDetail(fmt.Sprintf("line %d: %s", i+1, rec[1]))
		}
		inputs = append(inputs, appCurrency.RateInput{Code: code, ToBase: rate})
	}
	return inputs, nil
}

// CurrencyView renders a rate table.
type CurrencyView struct {
	Currencies []domainCurrency.Currency `json:"currencies"`
	Count      int                       `json:"count"`
}

// NewCurrencyView snapshots table for output.
func NewCurrencyView(table *domainCurrency.Table) *CurrencyView {
	rows := table.Currencies()
	return &CurrencyView{Currencies: rows, Count: len(rows)}
}

func (v *CurrencyView) TableHeaders() []string {
	return []string{"CODE", "TO_BASE"}
}

func (v *CurrencyView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Currencies))
	for _, c := range v.Currencies {
		rows = append(rows, []string{c.Name, c.ToBase.String()})
	}
	return rows
}

//Personal.AI order the ending
