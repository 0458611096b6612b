package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	appRenewal "github.com/turtacn/KeyIP-Renewals/internal/application/renewal"
	domainPortfolio "github.com/turtacn/KeyIP-Renewals/internal/domain/portfolio"
	domainRenewal "github.com/turtacn/KeyIP-Renewals/internal/domain/renewal"
	"github.com/turtacn/KeyIP-Renewals/pkg/errors"
)

const cliSource = "cli"

func newRenewalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "renewal",
		Short: "Ingest, instruct and price renewals",
	}
	cmd.PersistentFlags().String("user", os.Getenv("USER"), "acting user for portfolio access checks")

	cmd.AddCommand(
		newRenewalIngestCmd(),
		newRenewalInstructCmd(),
		newRenewalPayTotalCmd(),
		newRenewalBhipCmd(),
		newRenewalRefreshCmd(),
	)
	return cmd
}

// renewalDeps resolves the renewal service and the acting user.
func renewalDeps(cmd *cobra.Command) (*CLIContext, RenewalService, string, error) {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return nil, nil, "", err
	}
	if cliCtx.Deps == nil || cliCtx.Deps.Renewals == nil {
		return nil, nil, "", errors.New(errors.ErrCodeServiceUnavailable, "renewal service is not configured")
	}
	user, _ := cmd.Flags().GetString("user")
	return cliCtx, cliCtx.Deps.Renewals, strings.TrimSpace(user), nil
}

func requireUser(user string) error {
	if user == "" {
		return errors.InvalidParam("--user is required")
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// ingest
// ─────────────────────────────────────────────────────────────────────────────

func newRenewalIngestCmd() *cobra.Command {
	var (
		file        string
		portfolioID int64
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Build renewals for one matter from a provider payload file",
		Long: `Reads a JSON document of the form

  {"portfolio_id": 7, "matter": {"matterUcid": "...", "applicationCountry": "US", "serialNumber": "..."}, "renewals": [...]}

and stores one renewal per payload element with its computed prices.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, svc, user, err := renewalDeps(cmd)
			if err != nil {
				return err
			}
			if err := requireUser(user); err != nil {
				return err
			}

			var req appRenewal.IngestRequest
			if err := readJSONFile(cmd, file, &req); err != nil {
				return err
			}
			if portfolioID > 0 {
				req.PortfolioID = portfolioID
			}
			req.UserID = user
			req.Source = cliSource

			ctx, cancel := commandContext(cmd, cliCtx)
			defer cancel()

			renewals, err := svc.IngestMatterRenewals(ctx, req)
			if err != nil {
				return err
			}
			return PrintResult(cmd, RenewalList(renewals))
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "payload file, - for stdin [REQUIRED]")
	cmd.Flags().Int64Var(&portfolioID, "portfolio", 0, "portfolio id (overrides portfolio_id in the file)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// ─────────────────────────────────────────────────────────────────────────────
// instruct
// ─────────────────────────────────────────────────────────────────────────────

func newRenewalInstructCmd() *cobra.Command {
	var (
		file string
		sets []string
	)

	cmd := &cobra.Command{
		Use:   "instruct",
		Short: "Record instructions on renewals",
		Long: `Applies a batch of instruction updates.  The batch is all-or-nothing.

Updates come from --set id=instruction[:confidence] (repeatable) or from a
JSON file holding an array of {"id", "current_instruction", "confidence"}.`,
		Example: "  renewalctl renewal instruct --user alice --set 12=pay:high --set 13=abandon",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, svc, user, err := renewalDeps(cmd)
			if err != nil {
				return err
			}
			if err := requireUser(user); err != nil {
				return err
			}

			var updates []domainRenewal.InstructionUpdate
			if file != "" {
				if err := readJSONFile(cmd, file, &updates); err != nil {
					return err
				}
			}
			for _, s := range sets {
				u, err := parseInstructionSet(s)
				if err != nil {
					return err
				}
				updates = append(updates, u)
			}
			if len(updates) == 0 {
				return errors.InvalidParam("no updates given; use --set or --file")
			}

			ctx, cancel := commandContext(cmd, cliCtx)
			defer cancel()

			renewals, err := svc.ApplyInstructions(ctx, user, updates)
			if err != nil {
				return err
			}
			return PrintResult(cmd, RenewalList(renewals))
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON array of updates, - for stdin")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "id=instruction[:confidence]")
	return cmd
}

// parseInstructionSet reads "12=pay" or "12=pay:high".
func parseInstructionSet(s string) (domainRenewal.InstructionUpdate, error) {
	idPart, rest, ok := strings.Cut(s, "=")
	if !ok || rest == "" {
		return domainRenewal.InstructionUpdate{}, errors.InvalidParam(fmt.Sprintf("malformed --set %q, want id=instruction[:confidence]", s))
	}
	id, err := strconv.ParseInt(strings.TrimSpace(idPart), 10, 64)
	if err != nil || id <= 0 {
		return domainRenewal.InstructionUpdate{}, errors.InvalidParam(fmt.Sprintf("malformed renewal id in --set %q", s))
	}
	u := domainRenewal.InstructionUpdate{ID: &id}
	ins, conf, hasConf := strings.Cut(rest, ":")
	ins = strings.TrimSpace(ins)
	u.CurrentInstruction = &ins
	if hasConf {
		conf = strings.TrimSpace(conf)
		u.Confidence = &conf
	}
	return u, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// pay-total / bhip / refresh-prices
// ─────────────────────────────────────────────────────────────────────────────

func newRenewalPayTotalCmd() *cobra.Command {
	var portfolioID int64

	cmd := &cobra.Command{
		Use:   "pay-total",
		Short: "Sum the renewals instructed to pay in a portfolio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, svc, user, err := renewalDeps(cmd)
			if err != nil {
				return err
			}
			if err := requireUser(user); err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, cliCtx)
			defer cancel()

			total, err := svc.GetPortfolioPayTotal(ctx, user, portfolioID)
			if err != nil {
				return err
			}
			return PrintResult(cmd, (*PayTotalView)(total))
		},
	}

	cmd.Flags().Int64Var(&portfolioID, "portfolio", 0, "portfolio id [REQUIRED]")
	_ = cmd.MarkFlagRequired("portfolio")
	return cmd
}

func newRenewalBhipCmd() *cobra.Command {
	var renewalID int64

	cmd := &cobra.Command{
		Use:   "bhip",
		Short: "Resolve the bhip surcharge that applies to a renewal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, svc, user, err := renewalDeps(cmd)
			if err != nil {
				return err
			}
			if err := requireUser(user); err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, cliCtx)
			defer cancel()

			res, err := svc.GetRenewalBhipPrice(ctx, user, renewalID)
			if err != nil {
				return err
			}
			return PrintResult(cmd, &BhipView{RenewalID: renewalID, Resolution: res})
		},
	}

	cmd.Flags().Int64Var(&renewalID, "renewal", 0, "renewal id [REQUIRED]")
	_ = cmd.MarkFlagRequired("renewal")
	return cmd
}

func newRenewalRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh-prices",
		Short: "Recompute stored prices against the current rate table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, svc, _, err := renewalDeps(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, cliCtx)
			defer cancel()

			res, err := svc.RefreshPrices(ctx)
			if err != nil {
				return err
			}
			return PrintResult(cmd, (*RefreshView)(res))
		},
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Views
// ─────────────────────────────────────────────────────────────────────────────

// RenewalList renders renewals one per row.
type RenewalList []*domainRenewal.Renewal

func (l RenewalList) TableHeaders() []string {
	return []string{"ID", "PORTFOLIO", "COUNTRY", "SERIAL", "DUE", "GRACE", "INSTRUCTION", "CONFIDENCE", "DUE_PRICE", "GRACE_PRICE"}
}

func (l RenewalList) TableRows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, r := range l {
		due, grace := "-", "-"
		if r.Price != nil {
			due = r.Price.CalculatedDuePrice.StringFixed(2)
			grace = r.Price.CalculatedGracePrice.StringFixed(2)
		}
		conf := string(r.Confidence)
		if conf == "" {
			conf = "-"
		}
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			strconv.FormatInt(r.PortfolioID, 10),
			r.Country,
			r.SerialNo,
			r.DueDate,
			r.GraceDate,
			string(r.CurrentInstruction),
			conf,
			due,
			grace,
		})
	}
	return rows
}

func (l RenewalList) String() string {
	return fmt.Sprintf("%d renewal(s)\n%s", len(l), FormatTable(l.TableHeaders(), l.TableRows()))
}

// PayTotalView renders a pay total.
type PayTotalView appRenewal.PayTotal

func (v *PayTotalView) TableHeaders() []string {
	return []string{"PORTFOLIO", "RENEWALS", "FEES", "SURCHARGE", "TOTAL"}
}

func (v *PayTotalView) TableRows() [][]string {
	return [][]string{{
		strconv.FormatInt(v.PortfolioID, 10),
		strconv.Itoa(v.Renewals),
		v.Fees.StringFixed(2),
		v.Surcharge.StringFixed(2),
		v.Total.StringFixed(2),
	}}
}

func (v *PayTotalView) String() string {
	return fmt.Sprintf("portfolio %d: %d renewal(s) to pay, fees %s + surcharge %s = %s",
		v.PortfolioID, v.Renewals, v.Fees.StringFixed(2), v.Surcharge.StringFixed(2), v.Total.StringFixed(2))
}

// BhipView renders a surcharge resolution.
type BhipView struct {
	RenewalID  int64                       `json:"renewal_id"`
	Resolution *domainPortfolio.Resolution `json:"resolution"`
}

func (v *BhipView) TableHeaders() []string {
	return []string{"RENEWAL", "TIER", "AMOUNT"}
}

func (v *BhipView) TableRows() [][]string {
	return [][]string{{strconv.FormatInt(v.RenewalID, 10), v.Resolution.Tier, v.Resolution.Amount.StringFixed(2)}}
}

func (v *BhipView) String() string {
	return fmt.Sprintf("renewal %d: bhip %s (%s)", v.RenewalID, v.Resolution.Amount.StringFixed(2), v.Resolution.Tier)
}

// RefreshView renders a refresh summary.
type RefreshView appRenewal.RefreshResult

func (v *RefreshView) String() string {
	return fmt.Sprintf("refreshed prices: scanned=%d changed=%d currencies=%d in %s",
		v.Scanned, v.Changed, v.Currencies, v.Duration.Round(time.Millisecond))
}

// readInput returns the bytes of path, or the command's stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "failed to read input file").WithDetail(path)
	}
	return data, nil
}

func readJSONFile(cmd *cobra.Command, path string, dst interface{}) error {
	data, err := readInput(cmd, path)
	if err != nil {
		return err
	}
	return decodeJSON(data, path, dst)
}

func decodeJSON(data []byte, path string, dst interface{}) error {
	if err := json.Unmarshal(data, dst); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "input file is not valid JSON").WithDetail(path)
	}
	return nil
}

//Personal.AI order the ending
