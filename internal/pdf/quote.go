// Package pdf renders order quotes.
package pdf

import (
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
)

// ToCombine is printed for payment terms and delivery time.
const ToCombine = "A COMBINAR"

const intro = "Atendendo a solicitação de V. S°(a) apresentamos nossas melhores condições " +
	"para execução dos serviços abaixo discriminados:"

type CompanyData struct {
	Name    string
	Tagline string
	Address string
	Phone   string
}

type ClientData struct {
	Name    string
	Company string
}

type QuoteItem struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

type QuoteData struct {
	Number   string
	Date     string // already formatted, e.g. "05 de março de 2024"
	Company  CompanyData
	Client   ClientData
	Items    []QuoteItem
	Discount decimal.Decimal
	Total    decimal.Decimal
	Notes    string
}

// BRL formats an amount as "R$ 1234,56".
func BRL(d decimal.Decimal) string {
	return "R$ " + strings.Replace(d.StringFixed(2), ".", ",", 1)
}

var (
	gray  = &props.Color{Red: 220, Green: 220, Blue: 220}
	green = &props.Color{Red: 0, Green: 120, Blue: 60}
	boxed = &props.Cell{BorderType: border.Full, BorderThickness: 0.2}

	bold     = props.Text{Style: fontstyle.Bold, Size: 9, Top: 1.5}
	normal   = props.Text{Size: 9, Top: 1.5}
	centered = props.Text{Size: 9, Top: 1.5, Align: align.Center}
	right    = props.Text{Size: 9, Top: 1.5, Right: 2, Align: align.Right}
)

// QuotePDF renders the quote on a single A4 page.
func QuotePDF(q QuoteData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		Build()
	m := maroto.New(cfg)

	m.AddRows(header(q.Company)...)
	m.AddRows(line.NewRow(4))
	m.AddRows(clientBox(q)...)
	m.AddRows(text.NewRow(12, intro, props.Text{Size: 9, Top: 3, Align: align.Center}))
	m.AddRows(itemsTable(q)...)
	m.AddRows(footer(q)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate quote %s: %w", q.Number, err)
	}
	return doc.GetBytes(), nil
}

func header(c CompanyData) []core.Row {
	contact := []string{}
	if c.Address != "" {
		contact = append(contact, "End.: "+c.Address)
	}
	if c.Phone != "" {
		contact = append(contact, "Fone: "+c.Phone)
	}
	return []core.Row{
		row.New(12).Add(
			text.NewCol(7, strings.ToUpper(c.Name), props.Text{Size: 18, Style: fontstyle.Bold, Color: green}),
			text.NewCol(5, strings.Join(contact, "\n"), props.Text{Size: 8, Align: align.Right}),
		),
		text.NewRow(6, strings.ToUpper(c.Tagline), props.Text{Size: 9, Style: fontstyle.Bold}),
	}
}

func clientBox(q QuoteData) []core.Row {
	company := strings.TrimSpace(q.Client.Company)
	if company == "" {
		company = q.Client.Name
	}
	name := q.Client.Name
	if name == "" {
		name = "Cliente"
	}
	return []core.Row{
		row.New(8).Add(
			text.NewCol(8, fmt.Sprintf("Ilm°(s)/Sr(s) (%s)", strings.ToUpper(company)), normal),
			text.NewCol(4, "ORÇAMENTO N° "+q.Number, bold),
		).WithStyle(boxed),
		row.New(8).Add(
			text.NewCol(8, name, bold),
			text.NewCol(4, "Data : "+q.Date, normal),
		).WithStyle(boxed),
	}
}

func itemsTable(q QuoteData) []core.Row {
	rows := []core.Row{
		row.New(7).Add(
			text.NewCol(1, "Item", props.Text{Size: 9, Top: 1.5, Style: fontstyle.Bold, Align: align.Center}),
			text.NewCol(1, "Quant.", props.Text{Size: 9, Top: 1.5, Style: fontstyle.Bold, Align: align.Center}),
			text.NewCol(6, "Discriminação", props.Text{Size: 9, Top: 1.5, Style: fontstyle.Bold, Left: 2}),
			text.NewCol(2, "Valor Unit.", props.Text{Size: 9, Top: 1.5, Style: fontstyle.Bold, Align: align.Center}),
			text.NewCol(2, "Preço Total", props.Text{Size: 9, Top: 1.5, Style: fontstyle.Bold, Align: align.Center}),
		).WithStyle(&props.Cell{BackgroundColor: gray, BorderType: border.Full, BorderThickness: 0.2}),
	}
	if len(q.Items) == 0 {
		rows = append(rows, row.New(6).Add(
			col.New(2),
			text.NewCol(10, "Nenhum item encontrado no pedido", normal),
		).WithStyle(boxed))
	}
	for i, it := range q.Items {
		rows = append(rows, row.New(6).Add(
			text.NewCol(1, fmt.Sprint(i+1), centered),
			text.NewCol(1, fmt.Sprint(it.Quantity), centered),
			text.NewCol(6, it.Description, props.Text{Size: 9, Top: 1.5, Left: 2}),
			text.NewCol(2, BRL(it.UnitPrice), right),
			text.NewCol(2, BRL(it.Total), right),
		).WithStyle(boxed))
	}
	if q.Discount.IsPositive() {
		rows = append(rows, row.New(6).Add(
			col.New(2),
			text.NewCol(8, "DESCONTO ESPECIAL", props.Text{Size: 9, Top: 1.5, Left: 2, Style: fontstyle.Bold}),
			text.NewCol(2, BRL(q.Discount), right),
		).WithStyle(boxed))
	}
	rows = append(rows, row.New(9).Add(
		col.New(8),
		text.NewCol(4, "TOTAL : "+BRL(q.Total), props.Text{Size: 11, Top: 2, Style: fontstyle.Bold, Align: align.Center}).
			WithStyle(boxed),
	))
	return rows
}

func footer(q QuoteData) []core.Row {
	notes := strings.TrimSpace(q.Notes)
	return []core.Row{
		row.New(4),
		row.New(12).Add(
			col.New(6).Add(
				text.New("Cond. de Pagamento", bold),
				text.New(ToCombine, props.Text{Size: 9, Top: 6}),
			).WithStyle(boxed),
			col.New(6).Add(
				text.New("Prazo de Entrega", bold),
				text.New(ToCombine, props.Text{Size: 9, Top: 6}),
			).WithStyle(boxed),
		),
		row.New(14).Add(
			col.New(12).Add(
				text.New("Observações:", bold),
				text.New(notes, props.Text{Size: 9, Top: 6}),
			).WithStyle(boxed),
		),
		row.New(6),
		text.NewRow(5, "Sem Mais", props.Text{Size: 9, Align: align.Right}),
		text.NewRow(5, "atenciosamente", props.Text{Size: 9, Align: align.Right}),
		row.New(10),
		text.NewRow(5, "______________________________", props.Text{Size: 9, Align: align.Right}),
		text.NewRow(5, strings.ToUpper(q.Company.Name), props.Text{Size: 8, Align: align.Right}),
	}
}
