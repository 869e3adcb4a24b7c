// Package pdf genera los documentos PDF: tablas de registro con Maroto v2 y el ticket de venta con fpdf.
//
// Layout de las tablas:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + Subtítulo (periodo)   │  Fecha generación  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: encabezados sobre fondo oscuro, filas con cebra      │
//	│  Fila de totales en negrita                                  │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/pharmacy-api/internal/application/reports"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorHeader  = &props.Color{Red: 33, Green: 37, Blue: 41}
	colorStripe  = &props.Color{Red: 242, Green: 242, Blue: 242}
)

var _ reports.TableRenderer = (*TableRenderer)(nil)

// TableRenderer implementa reports.TableRenderer usando Maroto v2.
type TableRenderer struct {
	author string
}

// NewTableRenderer construye el generador. author se escribe en los metadatos del PDF.
func NewTableRenderer(author string) *TableRenderer { return &TableRenderer{author: author} }

// Render genera el PDF y devuelve sus bytes.
func (g *TableRenderer) Render(ctx context.Context, doc *reports.Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(doc.Columns) == 0 {
		return nil, fmt.Errorf("pdf: documento sin columnas")
	}
	builder := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle(doc.Title, true).
		WithAuthor(g.author, true)
	if doc.Landscape {
		builder = builder.WithOrientation(orientation.Horizontal)
	}
	m := maroto.New(builder.Build())

	m.AddRows(titleRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(row.New(3))

	widths := gridWidths(doc.Columns)
	m.AddRows(tableHeaderRow(doc.Columns, widths))
	for i, r := range doc.Rows {
		m.AddRows(tableDataRow(doc.Columns, widths, r, i%2 == 1))
	}

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// titleRow: título y periodo (izq), fecha de generación (der).
func titleRow(doc *reports.Document) core.Row {
	generated := ""
	if !doc.GeneratedAt.IsZero() {
		generated = "Generated: " + doc.GeneratedAt.Format("02 Jan 2006 15:04")
	}
	return row.New(16).Add(
		col.New(8).Add(
			text.New(doc.Title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(doc.Subtitle, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New(generated, props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow(cols []reports.Column, widths []int) core.Row {
	cells := make([]core.Col, 0, len(cols))
	for i, c := range cols {
		cells = append(cells, col.New(widths[i]).Add(text.New(c.Header, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: toAlign(c.Align),
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		})))
	}
	return row.New(8).Add(cells...).WithStyle(&props.Cell{BackgroundColor: colorHeader})
}

func tableDataRow(cols []reports.Column, widths []int, r reports.Row, stripe bool) core.Row {
	style := fontstyle.Normal
	if r.Emphasis {
		style = fontstyle.Bold
	}
	lines := 1
	cells := make([]core.Col, 0, len(cols))
	for i, c := range cols {
		value := ""
		if i < len(r.Cells) {
			value = r.Cells[i]
		}
		if n := estimateLines(value, widths[i]); n > lines {
			lines = n
		}
		cells = append(cells, col.New(widths[i]).Add(text.New(value, props.Text{
			Style: style, Size: 8, Align: toAlign(c.Align), Top: 1, Left: 1, Right: 1,
		})))
	}
	rw := row.New(float64(2 + 4*lines)).Add(cells...)
	if stripe {
		rw = rw.WithStyle(&props.Cell{BackgroundColor: colorStripe})
	}
	return rw
}

// ── helpers ───────────────────────────────────────────────────────────────────

// gridWidths ajusta los anchos declarados a la grilla de 12 columnas de Maroto.
func gridWidths(cols []reports.Column) []int {
	widths := make([]int, len(cols))
	total := 0
	for i, c := range cols {
		w := c.Width
		if w <= 0 {
			w = 1
		}
		widths[i] = w
		total += w
	}
	for total > 12 {
		// recortar la columna más ancha
		maxIdx := 0
		for i := range widths {
			if widths[i] > widths[maxIdx] {
				maxIdx = i
			}
		}
		if widths[maxIdx] == 1 {
			break
		}
		widths[maxIdx]--
		total--
	}
	return widths
}

// estimateLines aproxima cuántas líneas ocupa s en una columna de ancho w (unidades de grilla).
func estimateLines(s string, w int) int {
	perLine := w * 9
	if perLine <= 0 || s == "" {
		return 1
	}
	n := 0
	for _, part := range strings.Split(s, "\n") {
		n += (len([]rune(part)) + perLine - 1) / perLine
		if part == "" {
			n++
		}
	}
	if n < 1 {
		n = 1
	}
	return n
}

func toAlign(a reports.Align) align.Type {
	switch a {
	case reports.AlignRight:
		return align.Right
	case reports.AlignCenter:
		return align.Center
	default:
		return align.Left
	}
}
