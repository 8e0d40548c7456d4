package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/valuator/internal/adapters/repository"
	service "github.com/okian/valuator/internal/app"
	"github.com/okian/valuator/internal/domain/types"
	"github.com/okian/valuator/pkg/logger"
)

type estimateOptions struct {
	input     string
	asJSON    bool
	dbPath    string
	catalogID string
	asOf      string
	adminFee  float64
}

func newEstimateCommand() *cobra.Command {
	var opts estimateOptions

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Value a catalog from a JSON request file",
		Long: "Reads a valuation request (genres, owner ids, earnings, stream counts and,\n" +
			"unless --catalog is given, tracks) and prints the valuation trace.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEstimate(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "Request file, or - for stdin")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the report as JSON")
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "sqlite catalog database (with --catalog)")
	cmd.Flags().StringVar(&opts.catalogID, "catalog", "", "Value a stored catalog instead of inline tracks")
	cmd.Flags().StringVar(&opts.asOf, "as-of", "", "Value as of this date (YYYY-MM-DD); defaults to today")
	cmd.Flags().Float64Var(&opts.adminFee, "admin-fee", 0, "Admin fee percentage used when the request has none")
	_ = cmd.MarkFlagRequired("input")
	cmd.MarkFlagsRequiredTogether("db", "catalog")

	return cmd
}

func runEstimate(cmd *cobra.Command, opts estimateOptions) error {
	ctx := cmd.Context()

	var req types.ValuationRequest
	if err := readJSON(cmd, opts.input, &req); err != nil {
		return err
	}

	svcOpts := []service.Option{
		service.WithLogger(logger.Get()),
		service.WithDefaultAdminFee(opts.adminFee),
	}
	if opts.asOf != "" {
		day, err := time.Parse(time.DateOnly, opts.asOf)
		if err != nil {
			return fmt.Errorf("invalid --as-of %q: %w", opts.asOf, err)
		}
		svcOpts = append(svcOpts, service.WithClock(func() time.Time { return day }))
	}

	var (
		report types.Report
		err    error
	)
	if opts.catalogID != "" {
		store, openErr := repository.OpenSQLStore(opts.dbPath, repository.WithLogger(logger.Get()))
		if openErr != nil {
			return openErr
		}
		defer func() { _ = store.Close() }()

		svc := service.New(append(svcOpts, service.WithStore(store))...)
		report, err = svc.EstimateCatalog(ctx, opts.catalogID, req)
	} else {
		report, err = service.New(svcOpts...).Estimate(ctx, req)
	}
	if err != nil {
		return err
	}

	if opts.asJSON {
		return writeJSON(cmd, report)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), renderReport(report))
	return err
}

func renderReport(r types.Report) string {
	scores := renderTable("Scores", []string{"Stage", "Score", "Detail"}, [][]string{
		{"Genre", decimal(r.Scores.Genre), strings.Join(r.UnknownGenres, ", ")},
		{"Age", decimal(r.Scores.Age), ""},
		{"Ownership", strconv.Itoa(r.Scores.Ownership), decimal(r.Scores.OwnershipPercentage) + "%"},
		{"Consistency", strconv.Itoa(r.Scores.Consistency),
			fmt.Sprintf("avg gap %s mo, max gap %s mo", decimal(r.Scores.AvgGapMonths), decimal(r.Scores.MaxGapMonths))},
		{"Weighted", decimal(r.Scores.Weighted), fmt.Sprintf("span %s yrs", decimal(r.Scores.TotalSpanYears))},
	}, []columnAlignment{alignLeft, alignRight, alignLeft})

	multipliers := renderTable("Multipliers", []string{"Source", "Range", "Weight"}, [][]string{
		{"Characteristic", multiple(r.Characteristic), decimal(r.Weights.Characteristic)},
		{"Revenue", multiple(r.Revenue.Range), decimal(r.Weights.Revenue)},
		{"Combined", multiple(r.Combined), ""},
		{"Final", multiple(r.Final), ""},
	}, []columnAlignment{alignLeft, alignRight, alignRight})

	revenue := renderTable("Revenue", []string{"Metric", "Value"}, [][]string{
		{"Trailing 12 months", money(r.Revenue.TotalTLM)},
		{"Lifetime", money(r.Revenue.TotalLifetime)},
		{"Dollar age", fmt.Sprintf("%s (%s)", decimal(r.Revenue.DollarAge), r.Revenue.AgeCategory)},
		{"Concentration", fmt.Sprintf("%s (%s)", decimal(r.Revenue.Concentration), r.Revenue.ConcentrationCategory)},
	}, []columnAlignment{alignLeft, alignRight})

	value := renderTable("Valuation", []string{"Lower", "Upper"}, [][]string{
		{money(r.Valuation.Lower), money(r.Valuation.Upper)},
	}, []columnAlignment{alignRight, alignRight})

	out := []string{scores, multipliers, revenue, value}
	if len(r.MalformedTracks) > 0 {
		out = append(out, "Malformed publisher splits: "+strings.Join(r.MalformedTracks, ", "))
	}
	return strings.Join(out, "\n")
}

// readJSON decodes the JSON file at path, or stdin when path is "-".
func readJSON(cmd *cobra.Command, path string, v any) error {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
