package importer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"creances/internal"
	"creances/internal/config"
)

func testCfg() config.Config {
	return config.Config{
		MaxUploadMB:    20,
		TargetSheet:    "Etat des créances",
		HeaderScanRows: 11,
		DateFormat:     "02/01/2006",
	}
}

func testImporter() *Importer {
	return New(testCfg(), zap.NewNop())
}

func mkXLSX(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	buf := bytes.NewBuffer(nil)
	if _, err := f.WriteTo(buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func importBlob(t *testing.T, imp *Importer, blob []byte) (Result, error) {
	t.Helper()
	return imp.ImportReader(context.Background(), bytes.NewReader(blob), int64(len(blob)), "test.xlsx")
}

func TestImportEndToEnd(t *testing.T) {
	blob := mkXLSX(t, [][]any{
		{"N° Police", "Assuré", "TTC", "Encaissé"},
		{"P001", "Dupont", 1000, 1000},
		{"P002", "Martin", 500, 200},
		{"P003", "Durand", 800, 0},
	})

	res, err := importBlob(t, testImporter(), blob)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 3 {
		t.Fatalf("records=%d", len(res.Records))
	}

	wantStatus := []internal.Status{internal.StatusRecouvre, internal.StatusPartiel, internal.StatusCreance}
	wantRemaining := []float64{0, 300, 800}
	for i, rec := range res.Records {
		if rec.Status != wantStatus[i] {
			t.Fatalf("record %d status=%s want %s", i, rec.Status, wantStatus[i])
		}
		if rec.RemainingAmount != wantRemaining[i] {
			t.Fatalf("record %d remaining=%v want %v", i, rec.RemainingAmount, wantRemaining[i])
		}
	}
}

func TestImportColumnOrderIndependent(t *testing.T) {
	straight := mkXLSX(t, [][]any{
		{"N° Police", "Assuré", "TTC", "Encaissé"},
		{"P001", "Dupont", 1000, 400},
	})
	permuted := mkXLSX(t, [][]any{
		{"Encaissé", "TTC", "Assuré", "N° Police"},
		{400, 1000, "Dupont", "P001"},
	})

	a, err := importBlob(t, testImporter(), straight)
	if err != nil {
		t.Fatal(err)
	}
	b, err := importBlob(t, testImporter(), permuted)
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Records) != 1 || len(b.Records) != 1 {
		t.Fatalf("records=%d/%d", len(a.Records), len(b.Records))
	}
	if a.Records[0] != b.Records[0] {
		t.Fatalf("permuted import differs:\n%+v\n%+v", a.Records[0], b.Records[0])
	}
}

func TestImportHeaderAfterTitleBlock(t *testing.T) {
	rows := make([][]any, 0, 13)
	rows = append(rows, []any{"ETAT DES CREANCES - EXERCICE 2023"})
	for i := 0; i < 9; i++ {
		rows = append(rows, []any{""})
	}
	rows = append(rows,
		[]any{"N° Police", "Assuré", "Prime TTC", "Encaissé", "Reste"},
		[]any{"P100", "Benali", 2000, 500, 1500},
	)

	res, err := importBlob(t, testImporter(), mkXLSX(t, rows))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 1 {
		t.Fatalf("records=%d", len(res.Records))
	}
	rec := res.Records[0]
	if rec.ContractNumber != "P100" || rec.RemainingAmount != 1500 || rec.Status != internal.StatusPartiel {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestImportMissingMandatoryColumns(t *testing.T) {
	blob := mkXLSX(t, [][]any{
		{"Montant", "Reste"},
		{1000, 400},
	})

	_, err := importBlob(t, testImporter(), blob)
	var missing *MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("want MissingColumnsError, got %v", err)
	}
	if len(missing.Fields) == 0 {
		t.Fatal("missing fields not named")
	}
}

func TestImportEmptySheet(t *testing.T) {
	blob := mkXLSX(t, [][]any{{"N° Police", "Assuré"}})
	if _, err := importBlob(t, testImporter(), blob); !errors.Is(err, ErrEmptySheet) {
		t.Fatalf("want ErrEmptySheet, got %v", err)
	}
}

func TestImportFileTooLarge(t *testing.T) {
	cfg := testCfg()
	cfg.MaxUploadMB = 0
	imp := New(cfg, zap.NewNop())

	blob := mkXLSX(t, [][]any{{"N° Police", "Assuré"}, {"P1", "X"}})
	_, err := imp.ImportReader(context.Background(), bytes.NewReader(blob), int64(len(blob)), "big.xlsx")
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("want ErrFileTooLarge, got %v", err)
	}
}

func TestImportSyntheticKeysUniquePerRow(t *testing.T) {
	blob := mkXLSX(t, [][]any{
		{"N° Police", "Assuré", "TTC"},
		{"", "Dupont", 100},
		{"#N/A", "Martin", 200},
		{"", "", 300},
	})

	res, err := importBlob(t, testImporter(), blob)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 2 {
		t.Fatalf("records=%d", len(res.Records))
	}
	if res.Skipped != 1 {
		t.Fatalf("skipped=%d", res.Skipped)
	}
	if res.Records[0].ContractNumber == res.Records[1].ContractNumber {
		t.Fatalf("synthetic contract numbers collide: %s", res.Records[0].ContractNumber)
	}
}

func TestImportSerialDates(t *testing.T) {
	blob := mkXLSX(t, [][]any{
		{"N° Police", "Assuré", "Date d'effet", "TTC"},
		{"P1", "Dupont", "44927", 100},
	})

	res, err := importBlob(t, testImporter(), blob)
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Records[0].DateEmission; got != "01/01/2023" {
		t.Fatalf("DateEmission=%q", got)
	}
	if res.Records[0].TimePassed == "" {
		t.Fatal("TimePassed empty for known date")
	}
}

func TestResolveColumnsAccents(t *testing.T) {
	for _, header := range []string{"Assuré", "ASSURE", "assure "} {
		mapping, missing := ResolveColumns([]string{"N° Police", header})
		if idx, ok := mapping[FieldClientName]; !ok || idx != 1 {
			t.Fatalf("header %q: clientName not resolved (mapping=%v missing=%v)", header, mapping, missing)
		}
	}
}

func TestSelectSheetFallback(t *testing.T) {
	sheets := []sheetData{
		{Name: "Synthèse"},
		{Name: "Etat des créances 2023"},
	}
	if got := selectSheet(sheets, "Etat des créances"); got.Name != "Etat des créances 2023" {
		t.Fatalf("got %q", got.Name)
	}

	none := []sheetData{{Name: "Feuil1"}, {Name: "Feuil2"}}
	if got := selectSheet(none, "Etat des créances"); got.Name != "Feuil1" {
		t.Fatalf("got %q", got.Name)
	}
}
