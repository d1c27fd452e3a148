package ingest

import (
	"bytes"
	"context"
	"testing"

	"gestion-notas/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildSheet(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestExcelParser_Parse(t *testing.T) {
	data := buildSheet(t, [][]interface{}{
		{"id", "nombre", "parcial1", "parcial2", "parcial3"},
		{"e1", "Ana", 4.0, 2.0, nil},
		{"e2", "Luis", 3.0, 4.0, 4.25},
	})

	students, err := NewExcelParser().Parse(context.Background(), data)
	require.NoError(t, err)
	require.Len(t, students, 2)

	assert.Equal(t, "Ana", students[0].Nombre)
	assert.Nil(t, students[0].Parcial3)
	assert.InDelta(t, 3.0, students[0].Promedio, 1e-9)

	require.NotNil(t, students[1].Parcial3)
	assert.InDelta(t, 3.8, students[1].Promedio, 1e-9) // 30/30/40 weighting
}

func TestExcelParser_Parse_MissingColumn(t *testing.T) {
	data := buildSheet(t, [][]interface{}{
		{"id", "nombre", "parcial1"},
		{"e1", "Ana", 4.0},
	})

	_, err := NewExcelParser().Parse(context.Background(), data)
	require.Error(t, err)

	var vErr errors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "parcial2", vErr.Field)
}

func TestExcelParser_Parse_InvalidRows(t *testing.T) {
	data := buildSheet(t, [][]interface{}{
		{"id", "nombre", "parcial1", "parcial2"},
		{"e1", "Ana", "cuatro", 2.0},
		{"e1", "Luis", 3.0, 4.0},
	})

	_, err := NewExcelParser().Parse(context.Background(), data)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidImport)
	// Both problems reported in one pass
	assert.Contains(t, err.Error(), "Fila 1")
	assert.Contains(t, err.Error(), "Fila 2")
}

func TestExcelParser_Parse_EmptySheet(t *testing.T) {
	data := buildSheet(t, [][]interface{}{
		{"id", "nombre", "parcial1", "parcial2"},
	})

	_, err := NewExcelParser().Parse(context.Background(), data)
	assert.ErrorIs(t, err, errors.ErrInvalidFileFormat)
}

func TestExcelParser_Parse_NotAnExcelFile(t *testing.T) {
	_, err := NewExcelParser().Parse(context.Background(), []byte("plain text"))
	assert.Error(t, err)
}
