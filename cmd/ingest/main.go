package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/FACorreiaa/extrato-ledger/internal/domain/categorization"
	importservice "github.com/FACorreiaa/extrato-ledger/internal/domain/import/service"
	"github.com/FACorreiaa/extrato-ledger/internal/domain/insights"
	"github.com/FACorreiaa/extrato-ledger/internal/domain/report"
	"github.com/FACorreiaa/extrato-ledger/internal/domain/transaction"
	"github.com/FACorreiaa/extrato-ledger/pkg/money"
)

type options struct {
	jsonOut bool
	xlsxOut string
	verbose bool
	path    string
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	// Create context with timeout so CLI doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := run(ctx, opts, os.Stdout, logger); err != nil {
		logger.Error("ingestion failed", slog.String("file", opts.path), slog.Any("error", err))
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("ingest", flag.ContinueOnError)
	fs.BoolVar(&opts.jsonOut, "json", false, "print transactions and metrics as JSON")
	fs.StringVar(&opts.xlsxOut, "xlsx", "", "also write an xlsx workbook to this path")
	fs.BoolVar(&opts.verbose, "v", false, "verbose logging")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: ingest [-json] [-xlsx out.xlsx] [-v] <statement.pdf|statement.csv>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return opts, errors.New("exactly one statement file is required")
	}
	opts.path = fs.Arg(0)
	return opts, nil
}

func run(ctx context.Context, opts options, out io.Writer, logger *slog.Logger) error {
	data, err := os.ReadFile(opts.path)
	if err != nil {
		return err
	}

	svc := importservice.NewImportService(categorization.NewDefaultEngine(), nil, logger)
	txs, err := svc.IngestFile(ctx, filepath.Base(opts.path), "", data)
	if err != nil {
		return err
	}
	summary := insights.Aggregate(txs)

	if opts.xlsxOut != "" {
		if err := writeWorkbook(opts.xlsxOut, txs, summary); err != nil {
			return err
		}
		logger.Info("workbook written", slog.String("path", opts.xlsxOut))
	}

	if opts.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Transactions []transaction.Transaction `json:"transacoes"`
			Metrics      *insights.MetricsSummary  `json:"metricas"`
		}{txs, summary})
	}
	return printTable(out, txs, summary)
}

func writeWorkbook(path string, txs []transaction.Transaction, summary *insights.MetricsSummary) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteWorkbook(f, txs, summary); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func printTable(out io.Writer, txs []transaction.Transaction, summary *insights.MetricsSummary) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATA\tDESCRIÇÃO\tVALOR\tCATEGORIA\tTIPO")
	for _, tx := range txs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", tx.Date, tx.Description, money.Display(tx.Amount), tx.Category, tx.Kind)
	}
	if summary != nil {
		fmt.Fprintln(tw)
		fmt.Fprintf(tw, "Receitas\t%s\n", money.Display(summary.IncomeTotal))
		fmt.Fprintf(tw, "Despesas\t%s\n", money.Display(summary.ExpenseTotal))
		fmt.Fprintf(tw, "Saldo\t%s\n", money.Display(summary.Balance))
		fmt.Fprintf(tw, "Aportes\t%s\n", money.Display(summary.InvestmentContributions))
		fmt.Fprintf(tw, "Resgates\t%s\n", money.Display(summary.InvestmentWithdrawals))
		fmt.Fprintf(tw, "Taxa de poupança\t%s%%\n", money.Round(summary.SavingsRate).StringFixed(2))
		fmt.Fprintf(tw, "Transações\t%d\n", summary.TransactionCount)
	}
	return tw.Flush()
}
