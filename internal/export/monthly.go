// Package export writes dashboard reports as Excel workbooks.
package export

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	SheetDaily  = "Faturamento"
	SheetOrders = "Pedidos"
)

type DayRow struct {
	Date    string
	Count   int
	Revenue decimal.Decimal
}

type OrderRow struct {
	ID      uint
	Date    string
	Client  string
	Status  string
	Items   int
	Revenue decimal.Decimal
}

// Monthly is the revenue report of one month.
type Monthly struct {
	Month   string
	Revenue decimal.Decimal
	Days    []DayRow
	Orders  []OrderRow
}

// Filename is the suggested download name.
func (m Monthly) Filename() string {
	return fmt.Sprintf("faturamento_%s.xlsx", m.Month)
}

// MonthlyXLSX renders the report with one sheet of daily totals and one of
// orders.
func MonthlyXLSX(m Monthly) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	first := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(first, SheetDaily); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SheetOrders); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	moneyFmt := "#,##0.00"
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt})
	if err != nil {
		return nil, err
	}

	header := []interface{}{"data", "pedidos", "faturamento"}
	if err := f.SetSheetRow(SheetDaily, "A1", &header); err != nil {
		return nil, err
	}
	row := 2
	for _, d := range m.Days {
		if err := setRow(f, SheetDaily, row, []interface{}{d.Date, d.Count, d.Revenue.InexactFloat64()}); err != nil {
			return nil, err
		}
		row++
	}
	if err := setRow(f, SheetDaily, row, []interface{}{"total", sumCounts(m.Days), m.Revenue.InexactFloat64()}); err != nil {
		return nil, err
	}
	if err := styleSheet(f, SheetDaily, row, "C", bold, money); err != nil {
		return nil, err
	}

	header = []interface{}{"pedido", "data", "cliente", "status", "itens", "valor"}
	if err := f.SetSheetRow(SheetOrders, "A1", &header); err != nil {
		return nil, err
	}
	row = 2
	for _, o := range m.Orders {
		if err := setRow(f, SheetOrders, row, []interface{}{o.ID, o.Date, o.Client, o.Status, o.Items, o.Revenue.InexactFloat64()}); err != nil {
			return nil, err
		}
		row++
	}
	if err := styleSheet(f, SheetOrders, row-1, "F", bold, money); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(SheetOrders, "C", "C", 32); err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// styleSheet bolds the header and formats the money column down to lastRow.
func styleSheet(f *excelize.File, sheet string, lastRow int, moneyCol string, bold, money int) error {
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return err
	}
	if lastRow < 2 {
		return nil
	}
	return f.SetCellStyle(sheet, moneyCol+"2", fmt.Sprintf("%s%d", moneyCol, lastRow), money)
}

func sumCounts(days []DayRow) int {
	n := 0
	for _, d := range days {
		n += d.Count
	}
	return n
}
