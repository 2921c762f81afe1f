// Package invoices renders order invoices as PDF documents. The layout
// mirrors the back-office export: one section per order with a line-item
// table and two summary rows pulled from the order's frozen totals.
package invoices

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/sportshoplabs/sportshop-backend/pkg/config"
	"github.com/sportshoplabs/sportshop-backend/pkg/db/models"
	pkgerrors "github.com/sportshoplabs/sportshop-backend/pkg/errors"
	"github.com/sportshoplabs/sportshop-backend/pkg/logger"
)

const (
	fontFamily = "DejaVuSans"
	marginMM   = 20.0
	pageHeight = 297.0 // A4 portrait, mm

	headerFontSize = 14.0
	infoFontSize   = 12.0
	tableFontSize  = 10.0

	rowHeight  = 6.0
	dateLayout = "02.01.2006 15:04"
)

// Column widths of the line-item table, in mm.
var colWidths = [5]float64{80, 20, 30, 20, 30}

var colTitles = [5]string{"Товар", "Кол-во", "Цена", "Скидка", "Сумма"}

// Renderer produces invoice PDFs for one or more orders.
type Renderer struct {
	fontPath string
	currency string
	logg     *logger.Logger
}

// NewRenderer builds a renderer using the configured UTF-8 font, required
// for the Cyrillic labels.
func NewRenderer(cfg config.InvoiceConfig, logg *logger.Logger) (*Renderer, error) {
	if cfg.FontPath == "" {
		return nil, fmt.Errorf("invoice font path required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Renderer{fontPath: cfg.FontPath, currency: cfg.Currency, logg: logg}, nil
}

// Render writes one section per order into a single PDF document. Orders
// must come with their items, products, discounts, and user preloaded.
//
// The per-row amount column multiplies the frozen unit price by the
// quantity without applying the line's discount, while the summary rows use
// total_price and discounted_total. The asymmetry is inherited from the
// legacy export and kept intact; a warning is logged whenever it shows.
func (r *Renderer) Render(ctx context.Context, orders []models.Order) ([]byte, error) {
	if len(orders) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one order is required")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddUTF8Font(fontFamily, "", r.fontPath)
	pdf.SetMargins(marginMM, marginMM, marginMM)
	pdf.SetAutoPageBreak(false, marginMM)
	pdf.AddPage()

	for _, order := range orders {
		r.renderOrder(ctx, pdf, order)

		// Start a fresh page once the running position drops into the
		// bottom margin, before the next section begins.
		if pdf.GetY() > pageHeight-marginMM {
			pdf.AddPage()
		}
	}

	if err := pdf.Error(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rendering invoice pdf")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing invoice pdf")
	}
	return buf.Bytes(), nil
}

func (r *Renderer) renderOrder(ctx context.Context, pdf *gofpdf.Fpdf, order models.Order) {
	pdf.SetFont(fontFamily, "", headerFontSize)
	pdf.CellFormat(0, rowHeight, fmt.Sprintf("Заказ #%s", order.ID), "", 1, "L", false, 0, "")

	pdf.SetFont(fontFamily, "", infoFontSize)
	info := []string{
		fmt.Sprintf("Клиент: %s", customerName(order.User)),
		fmt.Sprintf("Дата: %s", order.CreatedAt.Format(dateLayout)),
		fmt.Sprintf("Статус: %s", order.Status.Display()),
	}
	for _, line := range info {
		pdf.CellFormat(0, 5, line, "", 1, "L", false, 0, "")
	}
	pdf.Ln(5)

	pdf.SetFont(fontFamily, "", tableFontSize)
	for i, title := range colTitles {
		pdf.CellFormat(colWidths[i], rowHeight, title, "B", 0, "L", false, 0, "")
	}
	pdf.Ln(rowHeight)

	discountedLines := 0
	for _, item := range order.Items {
		discountLabel := "-"
		if item.Discount != nil {
			discountLabel = fmt.Sprintf("%d%%", item.Discount.Percent)
			discountedLines++
		}
		rowSum := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))

		cells := [5]string{
			item.Product.Name,
			fmt.Sprintf("%d", item.Quantity),
			r.amount(item.Price),
			discountLabel,
			r.amount(rowSum),
		}
		for i, cell := range cells {
			pdf.CellFormat(colWidths[i], rowHeight, cell, "", 0, "L", false, 0, "")
		}
		pdf.Ln(rowHeight)

		if pdf.GetY() > pageHeight-marginMM {
			pdf.AddPage()
			pdf.SetFont(fontFamily, "", tableFontSize)
		}
	}

	if discountedLines > 0 {
		r.logg.Warn(r.logg.WithFields(ctx, map[string]any{
			"order_id":         order.ID.String(),
			"discounted_lines": discountedLines,
		}), "invoice line sums use undiscounted prices; summary rows carry the discounted total")
	}

	r.summaryRow(pdf, "ИТОГО:", order.TotalPrice, "T")
	r.summaryRow(pdf, "Со скидкой:", order.DiscountedTotal, "")
	pdf.Ln(15)
}

func (r *Renderer) summaryRow(pdf *gofpdf.Fpdf, label string, amount decimal.Decimal, border string) {
	pdf.CellFormat(colWidths[0], rowHeight, label, border, 0, "L", false, 0, "")
	for _, w := range colWidths[1:4] {
		pdf.CellFormat(w, rowHeight, "", border, 0, "L", false, 0, "")
	}
	pdf.CellFormat(colWidths[4], rowHeight, r.amount(amount), border, 1, "L", false, 0, "")
}

func (r *Renderer) amount(value decimal.Decimal) string {
	return fmt.Sprintf("%s %s", value.StringFixed(2), r.currency)
}

func customerName(u models.User) string {
	if u.FirstName != "" || u.LastName != "" {
		name := u.FirstName
		if u.LastName != "" {
			if name != "" {
				name += " "
			}
			name += u.LastName
		}
		return name
	}
	return u.Email
}
