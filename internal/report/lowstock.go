package report

import (
	"fmt"
	"io"
	"time"

	"github.com/tealeg/xlsx"

	"github.com/flicky/greenmart/internal/model"
)

const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var lowStockHeaders = []string{"ID", "Name", "Stock", "Price", "Category ID", "Updated At"}

// WriteLowStock writes one sheet listing the products below threshold.
func WriteLowStock(w io.Writer, products []model.Product, threshold int, generatedAt time.Time) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Low Stock")
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	title := sheet.AddRow()
	title.AddCell().SetValue(fmt.Sprintf("Products with stock below %d", threshold))
	title.AddCell().SetValue(generatedAt.Format("2006-01-02 15:04"))

	header := sheet.AddRow()
	for _, h := range lowStockHeaders {
		header.AddCell().SetValue(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID)
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(p.Stock)
		price, _ := p.Price.Round(2).Float64()
		row.AddCell().SetValue(price)
		category := row.AddCell()
		if p.CategoryID != nil {
			category.SetValue(*p.CategoryID)
		}
		row.AddCell().SetValue(p.UpdatedAt.Format("2006-01-02 15:04:05"))
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func LowStockFilename(now time.Time) string {
	return "low-stock-" + now.Format("20060102") + ".xlsx"
}
