package service

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/flicky/greenmart/internal/dto"
)

// ReceiptWidth fits an 80 mm thermal roll at the printer's default font.
const ReceiptWidth = 42

const (
	receiptQtyWidth = 5
	receiptAmtWidth = 11
	receiptItemCols = ReceiptWidth - receiptQtyWidth - receiptAmtWidth
)

// WriteReceipt renders the invoice as a plain-text point-of-sale receipt.
func WriteReceipt(w io.Writer, inv *dto.InvoiceResponse) error {
	bw := bufio.NewWriter(w)
	rule := strings.Repeat("-", ReceiptWidth)

	center(bw, strings.ToUpper(inv.StoreName))
	center(bw, "Fresh & Organic Store")
	fmt.Fprintln(bw, rule)
	fmt.Fprintf(bw, "Invoice: %s\n", inv.Order.Code)
	fmt.Fprintf(bw, "Date: %s\n", inv.Order.CreatedAt.Format("02-01-2006 15:04"))
	fmt.Fprintf(bw, "Customer: %s\n", truncate(inv.Customer.Name, ReceiptWidth-len("Customer: ")))
	fmt.Fprintln(bw, rule)

	fmt.Fprintf(bw, "%-*s%*s%*s\n", receiptItemCols, "Item", receiptQtyWidth, "Qty", receiptAmtWidth, "Amt")
	for _, item := range inv.Order.Items {
		right := fmt.Sprintf("%*d %*s", receiptQtyWidth, item.Quantity, receiptAmtWidth-1, item.LineTotal.StringFixed(2))
		row(bw, item.ProductName, right)
	}

	fmt.Fprintln(bw, rule)
	totalLine(bw, "Subtotal:", inv.Subtotal)
	totalLine(bw, fmt.Sprintf("Tax (%s%%):", inv.TaxRate.Shift(2).String()), inv.Tax)
	totalLine(bw, "Total:", inv.GrandTotal)
	fmt.Fprintln(bw, rule)
	center(bw, "Thank you!")
	center(bw, "Visit Again!")
	return bw.Flush()
}

func totalLine(w io.Writer, label string, amount decimal.Decimal) {
	row(w, label, fmt.Sprintf("%*s", receiptAmtWidth, amount.StringFixed(2)))
}

// row left-aligns label and right-aligns value on one line. A wide value
// takes columns from the label, which is cut to fit. A value wider than the
// roll is printed as a line of '#'.
func row(w io.Writer, label, value string) {
	cols := ReceiptWidth - len([]rune(value))
	if cols < 1 {
		fmt.Fprintln(w, truncate(label, ReceiptWidth))
		fmt.Fprintln(w, strings.Repeat("#", ReceiptWidth))
		return
	}
	fmt.Fprintf(w, "%-*s%s\n", cols, truncate(label, cols-1), value)
}

func center(w io.Writer, s string) {
	s = truncate(s, ReceiptWidth)
	pad := (ReceiptWidth - len([]rune(s))) / 2
	fmt.Fprintf(w, "%s%s\n", strings.Repeat(" ", pad), s)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
