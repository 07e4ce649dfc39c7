package importer

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"creances/internal"
)

// Column titles of the email-mapping sheet. Unlike the receivables sheet these
// are fixed names, not fuzzy-matched.
const (
	mappingClientHeader = "Client Name"
	mappingEmailHeader  = "Email"
)

// ImportEmailMappings parses the two-column client/address sheet. Mappings
// are deduplicated by email value, first occurrence kept.
func (imp *Importer) ImportEmailMappings(ctx context.Context, path string) ([]internal.EmailMapping, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > imp.cfg.MaxUploadBytes() {
		return nil, fmt.Errorf("%w (%d Mo max)", ErrFileTooLarge, imp.cfg.MaxUploadMB)
	}

	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	sheets, err := decodeWorkbook(blob, info.Name())
	if err != nil {
		return nil, err
	}
	rows := sheets[0].Rows
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}

	nameIdx, emailIdx, headerIdx := -1, -1, -1
	sawName, sawEmail := false, false
	limit := imp.cfg.HeaderScanRows
	if limit <= 0 || limit > len(rows) {
		limit = len(rows)
	}
	for i := 0; i < limit && headerIdx < 0; i++ {
		n, e := -1, -1
		for c, h := range rows[i] {
			switch {
			case strings.EqualFold(strings.TrimSpace(h), mappingClientHeader):
				n = c
			case strings.EqualFold(strings.TrimSpace(h), mappingEmailHeader):
				e = c
			}
		}
		sawName = sawName || n >= 0
		sawEmail = sawEmail || e >= 0
		if n >= 0 && e >= 0 {
			nameIdx, emailIdx, headerIdx = n, e, i
		}
	}
	if headerIdx < 0 {
		var missing []Field
		if !sawName {
			missing = append(missing, Field(mappingClientHeader))
		}
		if !sawEmail {
			missing = append(missing, Field(mappingEmailHeader))
		}
		if len(missing) == 0 {
			missing = []Field{Field(mappingClientHeader), Field(mappingEmailHeader)}
		}
		return nil, &MissingColumnsError{Fields: missing}
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	seen := map[string]struct{}{}
	var out []internal.EmailMapping
	for _, row := range rows[headerIdx+1:] {
		cell := func(idx int) string {
			if idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}
		name, email := cell(nameIdx), cell(emailIdx)
		if name == "" || email == "" {
			continue
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		out = append(out, internal.EmailMapping{ClientName: name, Email: email})
	}

	if len(out) == 0 {
		return nil, ErrEmptySheet
	}

	imp.log.Info("correspondances email importées",
		zap.String("file", info.Name()),
		zap.Int("mappings", len(out)))
	return out, nil
}
