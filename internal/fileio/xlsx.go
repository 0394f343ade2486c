package fileio

import (
	"bytes"
	"io"

	excelize "github.com/xuri/excelize/v2"

	"merge-service/internal/merge/model"
)

// readXLSX читает первый лист. Значения берутся отформатированными, как их видит пользователь.
func readXLSX(r io.Reader, headerRow int) (*model.Table, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return &model.Table{}, nil
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &model.Table{}, nil
	}
	h := pickHeader(rows, headerRow)
	return rowsToTable(rows, h, headerRow), nil
}
