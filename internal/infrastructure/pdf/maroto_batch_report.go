// Package pdf membuat laporan produksi batch dalam PDF.
//
// Layout halaman A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: SKU batch + status  │  Produk + tanggal            │
//	│  ───────────────────────────────────────────────────────── │
//	│  RINGKASAN: target / hasil jahit / good / reject            │
//	│  TABEL: permintaan ukuran+warna vs hasil potong             │
//	│  TABEL: sub-batch (SKU, asal, status, good, reject)         │
//	│  TIMELINE: kronologi kejadian                               │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/konveksipro/produksi-api/internal/application/report"
	"github.com/konveksipro/produksi-api/internal/domain/entity"
	"github.com/konveksipro/produksi-api/internal/domain/production"
)

var (
	colorPrimary = &props.Color{Red: 20, Green: 60, Blue: 110}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// angka printer lokal id-ID untuk pemisah ribuan.
var angka = message.NewPrinter(language.Indonesian)

// MarotoBatchReport implementasi report.BatchPDFGenerator memakai Maroto v2.
type MarotoBatchReport struct{}

// NewMarotoBatchReport membangun generator.
func NewMarotoBatchReport() *MarotoBatchReport { return &MarotoBatchReport{} }

// GenerateBatchReport membuat PDF dan mengembalikan byte-nya.
func (g *MarotoBatchReport) GenerateBatchReport(_ context.Context, data *report.BatchReportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Laporan Produksi "+data.Batch.BatchSKU, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(requestHeaderRow())
	for _, r := range requestRows(data) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(subBatchHeaderRow())
	for _, r := range subBatchRows(data.SubBatches) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	for _, r := range timelineRows(data.Timeline) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate dokumen: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: SKU + status (kiri), produk + tanggal (kanan).
func headerRow(data *report.BatchReportData) core.Row {
	productName := "—"
	if data.Product != nil {
		productName = data.Product.Name
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(data.Batch.BatchSKU, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Status: "+string(data.Batch.Status), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("LAPORAN PRODUKSI", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(productName, props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 7,
			}),
			text.New("Dicetak: "+data.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// summaryRow: target / hasil jahit / good / reject.
func summaryRow(data *report.BatchReportData) core.Row {
	cell := func(label, value string) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Size: 7, Color: colorGray, Top: 1}),
			text.New(value, props.Text{Style: fontstyle.Bold, Size: 11, Top: 6}),
		)
	}
	return row.New(14).Add(
		cell("Target", angka.Sprintf("%d pcs", data.Batch.TargetQuantity)),
		cell("Hasil jahit", angka.Sprintf("%d pcs", data.GoodBySource(production.SourceSewing))),
		cell("Good", angka.Sprintf("%d pcs", data.GoodBySource(production.SourceFinishing))),
		cell("Reject", angka.Sprintf("%d pcs", data.RejectTotal())),
	)
}

// requestHeaderRow: kepala tabel permintaan vs hasil potong.
func requestHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2,
		}))
	}
	return row.New(8).Add(
		h("Ukuran", 3, align.Left),
		h("Warna", 3, align.Left),
		h("Diminta", 3, align.Right),
		h("Hasil potong", 3, align.Right),
	)
}

// requestRows: satu baris per (ukuran, warna), hasil potong disandingkan.
func requestRows(data *report.BatchReportData) []core.Row {
	cut := make(map[production.SizeColor]int, len(data.CuttingResults))
	for _, res := range data.CuttingResults {
		cut[production.SizeColor{Size: res.ProductSize, Color: res.Color}] = res.ActualPieces
	}
	rows := make([]core.Row, 0, len(data.Requests))
	for _, req := range data.Requests {
		actual := cut[production.SizeColor{Size: req.ProductSize, Color: req.Color}]
		rows = append(rows, row.New(6).Add(
			col.New(3).Add(text.New(req.ProductSize, props.Text{Size: 8, Top: 1})),
			col.New(3).Add(text.New(req.Color, props.Text{Size: 8, Top: 1})),
			col.New(3).Add(text.New(angka.Sprintf("%d", req.Quantity), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(3).Add(text.New(angka.Sprintf("%d", actual), props.Text{Size: 8, Align: align.Right, Top: 1})),
		))
	}
	return rows
}

// subBatchHeaderRow: kepala tabel sub-batch.
func subBatchHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2,
		}))
	}
	return row.New(8).Add(
		h("Sub-batch", 4, align.Left),
		h("Asal", 2, align.Left),
		h("Status", 3, align.Left),
		h("Good", 1, align.Right),
		h("Reject", 2, align.Right),
	)
}

// subBatchRows: satu baris per sub-batch.
func subBatchRows(subBatches []*entity.SubBatch) []core.Row {
	rows := make([]core.Row, 0, len(subBatches))
	for _, sb := range subBatches {
		rows = append(rows, row.New(6).Add(
			col.New(4).Add(text.New(sb.SubBatchSKU, props.Text{Size: 8, Top: 1})),
			col.New(2).Add(text.New(string(sb.Source), props.Text{Size: 8, Top: 1})),
			col.New(3).Add(text.New(string(sb.Status), props.Text{Size: 8, Top: 1})),
			col.New(1).Add(text.New(angka.Sprintf("%d", sb.GoodOutput()), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(2).Add(text.New(angka.Sprintf("%d", sb.RejectOutput()), props.Text{Size: 8, Align: align.Right, Top: 1})),
		))
	}
	return rows
}

// timelineRows: kronologi kejadian, terbaru di bawah.
func timelineRows(timeline []*entity.TimelineEvent) []core.Row {
	rows := []core.Row{
		row.New(7).Add(col.New(12).Add(
			text.New("KRONOLOGI", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
	}
	for _, ev := range timeline {
		rows = append(rows, row.New(5).Add(
			col.New(3).Add(text.New(ev.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 7, Color: colorGray, Top: 1,
			})),
			col.New(9).Add(text.New(ev.Description, props.Text{Size: 7, Top: 1})),
		))
	}
	return rows
}
