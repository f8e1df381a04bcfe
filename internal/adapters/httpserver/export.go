package httpserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// apiSupplierExport streams the logged-in supplier's listings as an XLSX
// workbook.
func (s *Server) apiSupplierExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method", 405)
		return
	}
	sup, ok := s.requireSupplier(w)
	if !ok {
		return
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Listings"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Name", "Category", "Price", "Stock", "Status", "Created"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for row, l := range s.suppliers.Listings(sup.ID) {
		values := []any{l.ID, l.Name, l.Category, l.Price, l.Stock, l.Status, l.CreatedAt.Format(time.RFC3339)}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=listings-%s.xlsx", time.Now().Format("2006-01-02")))
	if err := f.Write(w); err != nil {
		log.Error().Err(err).Msg("listing export failed")
	}
}
