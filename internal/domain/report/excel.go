// Package report renders the ledger as an xlsx workbook.
package report

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/extrato-ledger/internal/domain/insights"
	"github.com/FACorreiaa/extrato-ledger/internal/domain/transaction"
	"github.com/FACorreiaa/extrato-ledger/pkg/money"
)

const (
	SheetTransactions = "Transacoes"
	SheetSummary      = "Resumo"
	SheetMonthly      = "Mensal"

	// ContentType is the media type of the workbook.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// numFmtCurrency is the built-in "#,##0.00" format.
	numFmtCurrency = 4
)

var transactionHeaders = []any{"Data", "Descrição", "Valor", "Categoria", "Tipo", "Fonte", "Vencimento"}

// WriteWorkbook writes txs, their monthly totals and summary to w. A nil summary
// leaves the summary sheet with headers only.
func WriteWorkbook(w io.Writer, txs []transaction.Transaction, summary *insights.MetricsSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetTransactions); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	currency, err := f.NewStyle(&excelize.Style{NumFmt: numFmtCurrency})
	if err != nil {
		return fmt.Errorf("failed to create currency style: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeTransactions(f, txs, currency, header); err != nil {
		return err
	}
	if err := writeMonthly(f, insights.ByMonth(txs), currency, header); err != nil {
		return err
	}
	if err := writeSummary(f, summary, currency, header); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeTransactions(f *excelize.File, txs []transaction.Transaction, currency, header int) error {
	if err := writeHeader(f, SheetTransactions, transactionHeaders, header); err != nil {
		return err
	}

	for i, tx := range txs {
		due := ""
		if tx.DueDate != nil {
			due = tx.DueDate.String()
		}
		row := []any{
			tx.Date.String(),
			tx.Description,
			cents(tx.Amount),
			tx.Category.String(),
			string(tx.Kind),
			string(tx.Source),
			due,
		}
		if err := setRow(f, SheetTransactions, i+2, row); err != nil {
			return err
		}
	}

	if len(txs) > 0 {
		last := fmt.Sprintf("C%d", len(txs)+1)
		if err := f.SetCellStyle(SheetTransactions, "C2", last, currency); err != nil {
			return fmt.Errorf("failed to style amounts: %w", err)
		}
	}
	if err := f.SetColWidth(SheetTransactions, "B", "B", 42); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}
	return f.SetColWidth(SheetTransactions, "C", "G", 14)
}

func writeMonthly(f *excelize.File, months []insights.MonthlyTotals, currency, header int) error {
	if _, err := f.NewSheet(SheetMonthly); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", SheetMonthly, err)
	}
	headers := []any{"Mês", "Receitas", "Despesas", "Saldo", "Investido", "Transações"}
	if err := writeHeader(f, SheetMonthly, headers, header); err != nil {
		return err
	}

	for i, m := range months {
		row := []any{m.Month, cents(m.Income), cents(m.Expenses), cents(m.Net()), cents(m.Invested), m.TransactionCount}
		if err := setRow(f, SheetMonthly, i+2, row); err != nil {
			return err
		}
	}
	if len(months) > 0 {
		if err := f.SetCellStyle(SheetMonthly, "B2", fmt.Sprintf("E%d", len(months)+1), currency); err != nil {
			return fmt.Errorf("failed to style monthly totals: %w", err)
		}
	}
	return nil
}

func writeSummary(f *excelize.File, summary *insights.MetricsSummary, currency, header int) error {
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", SheetSummary, err)
	}
	if err := writeHeader(f, SheetSummary, []any{"Indicador", "Valor"}, header); err != nil {
		return err
	}
	if summary == nil {
		return nil
	}

	rows := [][]any{
		{"Receitas", cents(summary.IncomeTotal)},
		{"Despesas", cents(summary.ExpenseTotal)},
		{"Saldo", cents(summary.Balance)},
		{"Aportes em investimentos", cents(summary.InvestmentContributions)},
		{"Resgates de investimentos", cents(summary.InvestmentWithdrawals)},
		{"Taxa de poupança (%)", cents(summary.SavingsRate)},
		{"Total de transações", summary.TransactionCount},
	}
	for i, row := range rows {
		if err := setRow(f, SheetSummary, i+2, row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(SheetSummary, "B2", "B6", currency); err != nil {
		return fmt.Errorf("failed to style summary: %w", err)
	}
	return f.SetColWidth(SheetSummary, "A", "B", 28)
}

func writeHeader(f *excelize.File, sheet string, headers []any, style int) error {
	if err := setRow(f, sheet, 1, headers); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return fmt.Errorf("failed to resolve header range: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("failed to style header of %s: %w", sheet, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to resolve row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}

// cents is the numeric cell value of d rounded to two fractional digits.
func cents(d decimal.Decimal) float64 {
	return money.Round(d).InexactFloat64()
}
