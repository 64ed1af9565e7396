package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/xuri/excelize/v2"
	"odeplac.in/pro/config"
	"odeplac.in/pro/models"
)

// ExportMaterialsToExcel downloads the catalog as an xlsx workbook.
func ExportMaterialsToExcel(w http.ResponseWriter, r *http.Request) {
	var materials []models.Material
	q := config.DB.Preload("Supplier").Where("materials.deleted_at IS NULL").Order("category asc, name asc")
	if category := r.URL.Query().Get("category"); category != "" {
		q = q.Where("category = ?", category)
	}
	if err := q.Find(&materials).Error; err != nil {
		respondDBError(w, err)
		return
	}

	f, err := createMaterialsWorkbook(materials)
	if err != nil {
		respondError(w, http.StatusInternalServerError, CodeInternal, "failed to generate Excel file")
		return
	}
	writeWorkbook(w, f, "catalogo")
}

// ExportObraBudgetToExcel downloads an obra's budget as an xlsx workbook.
func ExportObraBudgetToExcel(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var obra models.Obra
	if err := config.DB.Preload("Client").Preload("BudgetItems.Material").
		First(&obra, "id = ? AND deleted_at IS NULL", id).Error; err != nil {
		respondDBError(w, err)
		return
	}

	f, err := createBudgetWorkbook(&obra)
	if err != nil {
		respondError(w, http.StatusInternalServerError, CodeInternal, "failed to generate Excel file")
		return
	}
	writeWorkbook(w, f, "presupuesto_"+sanitizeFilename(obra.Title))
}

func writeWorkbook(w http.ResponseWriter, f *excelize.File, baseName string) {
	buffer, err := f.WriteToBuffer()
	if err != nil {
		respondError(w, http.StatusInternalServerError, CodeInternal, "failed to write Excel file")
		return
	}

	filename := fmt.Sprintf("%s_%s.xlsx", baseName, time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buffer.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buffer.Bytes())
}

func headerStyle(f *excelize.File) int {
	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDDDDD"}, Pattern: 1},
	})
	return style
}

func createMaterialsWorkbook(materials []models.Material) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Catálogo"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Material", "Unidad", "Categoría", "Proveedor", "Costo", "Precio venta"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	f.SetRowStyle(sheet, 1, 1, headerStyle(f))

	for row, m := range materials {
		supplierName := ""
		if m.Supplier != nil {
			supplierName = m.Supplier.Name
		}
		values := []interface{}{m.Name, m.Unit, m.Category, supplierName, m.CostPrice, m.SalePrice}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}
	return f, nil
}

func createBudgetWorkbook(obra *models.Obra) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Presupuesto"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	clientName := ""
	if obra.Client != nil {
		clientName = obra.Client.Name
	}
	f.SetCellValue(sheet, "A1", obra.Title)
	f.SetCellValue(sheet, "A2", "Cliente: "+clientName)

	headers := []string{"Material", "Unidad", "Cantidad", "Precio aplicado", "Margen %", "Subtotal"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		f.SetCellValue(sheet, cell, h)
	}
	f.SetRowStyle(sheet, 4, 4, headerStyle(f))

	row := 5
	var total float64
	for _, item := range obra.BudgetItems {
		name, unit := "", ""
		if item.Material != nil {
			name, unit = item.Material.Name, item.Material.Unit
		}
		values := []interface{}{name, unit, item.Quantity, item.AppliedPrice, item.MarginPct, item.Subtotal}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheet, cell, v)
		}
		total += item.Subtotal
		row++
	}

	totalLabel, _ := excelize.CoordinatesToCellName(5, row)
	totalCell, _ := excelize.CoordinatesToCellName(6, row)
	f.SetCellValue(sheet, totalLabel, "Total")
	f.SetCellValue(sheet, totalCell, total)

	return f, nil
}

// sanitizeFilename keeps download names shell- and header-safe.
func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "export"
	}
	return b.String()
}
