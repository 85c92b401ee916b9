package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/tillware/posd/internal/errors"
	"github.com/tillware/posd/internal/printing/domain"
)

// documentWidth is the column count of the page-based layout.
const documentWidth = 72

// Renderer turns an order snapshot into a printable artifact. Rendering is
// deterministic: the same order always yields the same bytes, so a retried
// job reprints exactly what the first attempt would have produced.
type Renderer struct {
	spoolDir string
}

// NewRenderer creates a new Renderer
func NewRenderer(spoolDir string) *Renderer {
	return &Renderer{
		spoolDir: spoolDir,
	}
}

// Render produces the artifact for a job. Thermal jobs carry the raw markup
// inline; page-based jobs are spooled to disk and carry the file path.
func (r *Renderer) Render(order *domain.Order, jobType domain.JobType, format domain.JobFormat) (string, error) {
	switch format {
	case domain.JobFormatThermal:
		return r.renderThermal(order, jobType), nil
	case domain.JobFormatPDF:
		content := r.renderDocument(order, jobType)

		path := filepath.Join(r.spoolDir, fmt.Sprintf("%s-%s.txt", order.Number, jobType))
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return "", fmt.Errorf("failed to spool document: %w", err)
		}

		return path, nil
	default:
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, fmt.Sprintf("unknown print format %q", format))
	}
}

// documentTitle maps a job type to its printed heading.
func documentTitle(jobType domain.JobType) string {
	switch jobType {
	case domain.JobTypeInvoice:
		return "INVOICE"
	case domain.JobTypeKitchen:
		return "KITCHEN"
	default:
		return "RECEIPT"
	}
}

// renderThermal produces the bridge's line-printer markup: [C]/[L] set the
// alignment of a line, [R] splits a line into a left and a right part, and
// <b> marks emphasis.
func (r *Renderer) renderThermal(order *domain.Order, jobType domain.JobType) string {
	var b strings.Builder

	divider := "[C]" + strings.Repeat("-", 32) + "\n"

	fmt.Fprintf(&b, "[C]<b>%s</b>\n", documentTitle(jobType))
	fmt.Fprintf(&b, "[C]%s\n", order.Number)
	fmt.Fprintf(&b, "[C]%s\n", order.CreatedAt.UTC().Format("2006-01-02 15:04"))
	b.WriteString(divider)

	if jobType == domain.JobTypeKitchen {
		// Kitchen tickets carry quantities and descriptions only.
		for _, line := range order.Lines {
			fmt.Fprintf(&b, "[L]<b>%dx</b> %s\n", line.Quantity, line.Description)
		}
		b.WriteString(divider)

		return b.String()
	}

	for _, line := range order.Lines {
		fmt.Fprintf(&b, "[L]%s\n", line.Description)
		fmt.Fprintf(&b, "[L]%d x %.2f[R]%.2f\n", line.Quantity, line.UnitPrice, line.Total)
	}
	b.WriteString(divider)

	fmt.Fprintf(&b, "[L]Subtotal[R]%.2f\n", order.Subtotal)
	fmt.Fprintf(&b, "[L]Tax[R]%.2f\n", order.Tax)
	fmt.Fprintf(&b, "[L]<b>Total</b>[R]<b>%.2f</b>\n", order.Total)
	fmt.Fprintf(&b, "[L]Paid %s[R]%.2f\n", order.PaymentMethod, order.AmountPaid)
	fmt.Fprintf(&b, "[L]Change[R]%.2f\n", order.Change)

	if order.CustomerName != "" {
		fmt.Fprintf(&b, "[C]Customer: %s\n", order.CustomerName)
	}
	b.WriteString("[C]Thank you!\n")

	return b.String()
}

// renderDocument produces the page-based layout for invoice-style printing.
func (r *Renderer) renderDocument(order *domain.Order, jobType domain.JobType) string {
	var b strings.Builder

	divider := strings.Repeat("-", documentWidth) + "\n"

	b.WriteString(centered(documentTitle(jobType)) + "\n")
	b.WriteString("\n")
	fmt.Fprintf(&b, "Order: %s\n", order.Number)
	fmt.Fprintf(&b, "Date:  %s\n", order.CreatedAt.UTC().Format("2006-01-02 15:04"))
	if order.CustomerName != "" {
		fmt.Fprintf(&b, "Customer: %s\n", order.CustomerName)
	}
	b.WriteString(divider)

	fmt.Fprintf(&b, "%-40s %5s %12s %12s\n", "Description", "Qty", "Unit Price", "Total")
	for _, line := range order.Lines {
		fmt.Fprintf(&b, "%-40s %5d %12.2f %12.2f\n",
			line.Description, line.Quantity, line.UnitPrice, line.Total)
	}
	b.WriteString(divider)

	fmt.Fprintf(&b, "%59s %12.2f\n", "Subtotal", order.Subtotal)
	fmt.Fprintf(&b, "%59s %12.2f\n", "Tax", order.Tax)
	fmt.Fprintf(&b, "%59s %12.2f\n", "Total", order.Total)
	fmt.Fprintf(&b, "%59s %12.2f\n", "Paid ("+order.PaymentMethod+")", order.AmountPaid)
	fmt.Fprintf(&b, "%59s %12.2f\n", "Change", order.Change)

	return b.String()
}

// centered pads a heading into the middle of the document width.
func centered(s string) string {
	pad := (documentWidth - len(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}
