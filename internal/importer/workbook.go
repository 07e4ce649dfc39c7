package importer

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"creances/internal/util"
)

type sheetData struct {
	Name string
	Rows [][]string
}

// Sheet names loosely matched when the configured target sheet is absent.
var sheetKeywords = []string{"creance", "etat"}

// decodeWorkbook turns the raw file into per-sheet string grids. Legacy .xls
// goes through extrame/xls, everything else through excelize.
func decodeWorkbook(blob []byte, name string) ([]sheetData, error) {
	if strings.EqualFold(filepath.Ext(name), ".xls") {
		return decodeXLS(blob)
	}
	return decodeXLSX(blob)
}

func decodeXLSX(blob []byte) ([]sheetData, error) {
	f, err := excelize.OpenReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("lecture du classeur: %w", err)
	}
	defer f.Close()

	var sheets []sheetData
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		sheets = append(sheets, sheetData{Name: name, Rows: rows})
	}
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}
	return sheets, nil
}

func decodeXLS(blob []byte) ([]sheetData, error) {
	wb, err := xls.OpenReader(bytes.NewReader(blob), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("lecture du classeur xls: %w", err)
	}

	var sheets []sheetData
	for i := 0; i < wb.NumSheets(); i++ {
		sheet := wb.GetSheet(i)
		if sheet == nil {
			continue
		}
		rows := make([][]string, 0, int(sheet.MaxRow)+1)
		for r := 0; r <= int(sheet.MaxRow); r++ {
			row := sheet.Row(r)
			if row == nil {
				rows = append(rows, nil)
				continue
			}
			cells := make([]string, 0, row.LastCol())
			for c := 0; c < row.LastCol(); c++ {
				cells = append(cells, row.Col(c))
			}
			rows = append(rows, cells)
		}
		sheets = append(sheets, sheetData{Name: sheet.Name, Rows: rows})
	}
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}
	return sheets, nil
}

// selectSheet picks the sheet to parse: exact target name, then the first
// sheet whose name loosely matches a domain keyword, then the first sheet.
func selectSheet(sheets []sheetData, target string) sheetData {
	for _, s := range sheets {
		if s.Name == target {
			return s
		}
	}
	for _, s := range sheets {
		folded := util.FoldValue(s.Name)
		for _, kw := range sheetKeywords {
			if strings.Contains(folded, kw) {
				return s
			}
		}
	}
	return sheets[0]
}
