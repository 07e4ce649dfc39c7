package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"creances/internal"
	"creances/internal/config"
)

// Importer turns a raw spreadsheet file into canonical insurance records.
// It is a pure transformation: no state is retained between calls.
type Importer struct {
	cfg config.Config
	log *zap.Logger
	now func() time.Time
}

func New(cfg config.Config, log *zap.Logger) *Importer {
	return &Importer{cfg: cfg, log: log, now: time.Now}
}

// Result is one parsed file: the validated records plus what the parse did.
type Result struct {
	Records []internal.InsuranceRecord
	Mapping ColumnMap
	Sheet   string
	Rows    int
	Skipped int
}

// Import parses the spreadsheet at path. The size ceiling is enforced from
// file metadata before a single byte is decoded.
func (imp *Importer) Import(ctx context.Context, path string) (Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Result{}, err
	}
	if info.Size() > imp.cfg.MaxUploadBytes() {
		return Result{}, fmt.Errorf("%w (%d Mo max)", ErrFileTooLarge, imp.cfg.MaxUploadMB)
	}

	blob, err := os.ReadFile(path)
	if err != nil {
		return Result{}, err
	}
	return imp.importBlob(ctx, blob, info.Name())
}

// ImportReader parses a spreadsheet from a stream whose size is known up
// front (an upload). name is only used for format dispatch and logging.
func (imp *Importer) ImportReader(ctx context.Context, r io.Reader, size int64, name string) (Result, error) {
	if size > imp.cfg.MaxUploadBytes() {
		return Result{}, fmt.Errorf("%w (%d Mo max)", ErrFileTooLarge, imp.cfg.MaxUploadMB)
	}
	blob, err := io.ReadAll(io.LimitReader(r, imp.cfg.MaxUploadBytes()+1))
	if err != nil {
		return Result{}, err
	}
	if int64(len(blob)) > imp.cfg.MaxUploadBytes() {
		return Result{}, fmt.Errorf("%w (%d Mo max)", ErrFileTooLarge, imp.cfg.MaxUploadMB)
	}
	return imp.importBlob(ctx, blob, name)
}

func (imp *Importer) importBlob(ctx context.Context, blob []byte, name string) (Result, error) {
	sheets, err := decodeWorkbook(blob, name)
	if err != nil {
		return Result{}, err
	}

	sheet := selectSheet(sheets, imp.cfg.TargetSheet)
	if len(sheet.Rows) == 0 {
		return Result{}, ErrEmptySheet
	}

	mapping, headerIdx, err := imp.locateHeader(sheet.Rows)
	if err != nil {
		return Result{}, err
	}

	dataRows := sheet.Rows[headerIdx+1:]
	if len(dataRows) == 0 {
		return Result{}, ErrEmptySheet
	}

	result := Result{Mapping: mapping, Sheet: sheet.Name, Rows: len(dataRows)}
	now := imp.now()
	for i, row := range dataRows {
		// Stay cancellable on very large files without reordering rows.
		if i%512 == 0 {
			select {
			case <-ctx.Done():
				return Result{}, ctx.Err()
			default:
			}
		}

		rec, ok := imp.buildRecord(mapping, row, headerIdx+i+2, now)
		if !ok {
			result.Skipped++
			imp.log.Debug("ligne ignorée, ni contrat ni assuré",
				zap.String("sheet", sheet.Name),
				zap.Int("row", headerIdx+i+2))
			continue
		}
		result.Records = append(result.Records, rec)
	}

	if len(result.Records) == 0 && result.Skipped == 0 {
		return Result{}, ErrEmptySheet
	}

	imp.log.Info("fichier importé",
		zap.String("file", name),
		zap.String("sheet", sheet.Name),
		zap.Int("rows", result.Rows),
		zap.Int("records", len(result.Records)),
		zap.Int("skipped", result.Skipped))

	return result, nil
}

// locateHeader scans the first HeaderScanRows rows (source files reserve a
// title block above the real header) for the first row that maps both
// mandatory fields. When none does, the error names the missing fields of the
// closest candidate.
func (imp *Importer) locateHeader(rows [][]string) (ColumnMap, int, error) {
	limit := imp.cfg.HeaderScanRows
	if limit <= 0 || limit > len(rows) {
		limit = len(rows)
	}

	bestMissing := mandatoryFields
	for i := 0; i < limit; i++ {
		if len(rows[i]) == 0 {
			continue
		}
		mapping, missing := ResolveColumns(rows[i])
		if len(missing) == 0 {
			return mapping, i, nil
		}
		if len(missing) < len(bestMissing) {
			bestMissing = missing
		}
	}
	return nil, 0, &MissingColumnsError{Fields: bestMissing}
}
