package importer

import (
	"fmt"
	"strings"
	"time"

	"creances/internal"
	"creances/internal/util"
)

// buildRecord transforms one data row. Rows are independent of each other;
// all per-cell failures fall back to a safe default instead of failing the
// row. The second return is false only when the row has neither a usable
// contract number nor a client name.
func (imp *Importer) buildRecord(mapping ColumnMap, row []string, sheetRow int, now time.Time) (internal.InsuranceRecord, bool) {
	cell := func(f Field) string {
		idx, ok := mapping[f]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	contract := util.CleanContractNumber(cell(FieldContractNumber))
	client := cell(FieldClientName)
	if contract == "" && client == "" {
		return internal.InsuranceRecord{}, false
	}
	// Per-row placeholders so several unknown rows never collide as one key.
	if contract == "" {
		contract = fmt.Sprintf("%s (ligne %d)", internal.NoContract, sheetRow)
	}
	if client == "" {
		client = fmt.Sprintf("%s (ligne %d)", internal.NotProvided, sheetRow)
	}

	agency := cell(FieldCodeAgence)
	if agency == "" {
		agency = internal.NotProvided
	}

	emission, emissionOK := util.ParseCellDate(cell(FieldDateEmission))
	echeance, echeanceOK := util.ParseCellDate(cell(FieldDateEcheance))

	total := util.ParseAmount(cell(FieldTotalAmount))
	paid := util.ParseAmount(cell(FieldAmountPaid))
	remaining := util.ParseAmount(cell(FieldRemainingAmount))
	if _, mapped := mapping[FieldRemainingAmount]; !mapped {
		// No outstanding-balance column at all: the balance is what is left
		// of the premium.
		remaining = total - paid
	}
	total, paid, remaining = util.DeriveAmounts(total, paid, remaining)

	return internal.InsuranceRecord{
		ContractNumber:  contract,
		ClientName:      client,
		CodeAgence:      agency,
		DateEmission:    util.FormatDate(emission, emissionOK, imp.cfg.DateFormat, internal.UnknownDate),
		DateEcheance:    util.FormatDate(echeance, echeanceOK, imp.cfg.DateFormat, internal.UnknownDate),
		TotalAmount:     total,
		AmountPaid:      paid,
		RemainingAmount: remaining,
		TimePassed:      util.TimePassed(emission, emissionOK, now),
		Status:          internal.StatusFor(total, remaining),
	}, true
}
