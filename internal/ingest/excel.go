package ingest

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gestion-notas/internal/model"
	"gestion-notas/internal/validate"
	"gestion-notas/pkg/errors"

	"github.com/xuri/excelize/v2"
)

// ExcelParser reads the first worksheet, maps columns by header name and
// hands the rows to the same bulk validator the JSON path uses. The
// promedio column is optional in sheets; a missing one is filled with
// the recomputed mean so the consistency check stays meaningful for
// sheets that do carry it.
type ExcelParser struct{}

func NewExcelParser() *ExcelParser {
	return &ExcelParser{}
}

var requiredColumns = []string{"id", "nombre", "parcial1", "parcial2"}

func (p *ExcelParser) Parse(ctx context.Context, data []byte) ([]model.Student, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.ErrInvalidFileFormat
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	if len(rows) < 2 { // Header + at least one data row
		return nil, errors.ErrInvalidFileFormat
	}

	columnMap := make(map[string]int)
	for i, col := range rows[0] {
		columnMap[strings.ToLower(strings.TrimSpace(col))] = i
	}

	for _, col := range requiredColumns {
		if _, exists := columnMap[col]; !exists {
			return nil, errors.ValidationError{Field: col, Message: "missing required column"}
		}
	}

	raw := make([]interface{}, 0, len(rows)-1)
	for _, row := range rows[1:] {
		raw = append(raw, p.rowToObject(row, columnMap))
	}

	if err := validate.ValidateImportStrict(raw); err != nil {
		return nil, err
	}

	return p.toStudents(raw), nil
}

// rowToObject builds the same generic shape the JSON decoder produces.
// Unparsable numeric cells stay strings so the validator reports them as
// type errors instead of this parser failing the whole sheet.
func (p *ExcelParser) rowToObject(row []string, columnMap map[string]int) map[string]interface{} {
	getValue := func(colName string) (string, bool) {
		if idx, exists := columnMap[colName]; exists && idx < len(row) {
			val := strings.TrimSpace(row[idx])
			return val, val != ""
		}
		return "", false
	}

	obj := make(map[string]interface{})
	if id, ok := getValue("id"); ok {
		obj["id"] = id
	}
	if nombre, ok := getValue("nombre"); ok {
		obj["nombre"] = nombre
	}

	for _, field := range []string{"parcial1", "parcial2", "parcial3", "promedio"} {
		cell, ok := getValue(field)
		if !ok {
			continue
		}
		if num, err := strconv.ParseFloat(cell, 64); err == nil {
			obj[field] = num
		} else {
			obj[field] = cell
		}
	}

	p1, ok1 := obj["parcial1"].(float64)
	p2, ok2 := obj["parcial2"].(float64)
	if _, has := obj["promedio"]; !has && ok1 && ok2 {
		obj["promedio"] = validate.Promedio(p1, p2)
	}

	return obj
}

func (p *ExcelParser) toStudents(raw []interface{}) []model.Student {
	now := time.Now()
	students := make([]model.Student, 0, len(raw))

	for _, r := range raw {
		obj := r.(map[string]interface{})
		st := model.Student{
			ID:        obj["id"].(string),
			Nombre:    obj["nombre"].(string),
			Parcial1:  obj["parcial1"].(float64),
			Parcial2:  obj["parcial2"].(float64),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if p3, ok := obj["parcial3"].(float64); ok {
			st.Parcial3 = &p3
		}
		st.Promedio = validate.PromedioDe(st.Parcial1, st.Parcial2, st.Parcial3)
		students = append(students, st)
	}

	return students
}
