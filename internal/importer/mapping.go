package importer

import (
	"regexp"
	"strings"

	"creances/internal/util"
)

// Field is a canonical record field a spreadsheet column can map to.
type Field string

const (
	FieldContractNumber  Field = "contractNumber"
	FieldClientName      Field = "clientName"
	FieldCodeAgence      Field = "codeAgence"
	FieldDateEmission    Field = "dateEmission"
	FieldDateEcheance    Field = "dateEcheance"
	FieldTotalAmount     Field = "totalAmount"
	FieldAmountPaid      Field = "amountPaid"
	FieldRemainingAmount Field = "remainingAmount"
)

// ColumnMap assigns each resolved field the index of its header column.
type ColumnMap map[Field]int

// Contract number and client name are the only fields an import cannot do
// without.
var mandatoryFields = []Field{FieldContractNumber, FieldClientName}

var fieldOrder = []Field{
	FieldContractNumber,
	FieldClientName,
	FieldCodeAgence,
	FieldDateEmission,
	FieldDateEcheance,
	FieldTotalAmount,
	FieldAmountPaid,
	FieldRemainingAmount,
}

// Keywords observed across source files, most specific first. Short generic
// tokens ("no", "fin") sit last so they only catch headers nothing else
// claimed.
var fieldKeywords = map[Field][]string{
	FieldContractNumber:  {"n° police", "police", "contrat", "contract", "numéro", "numero", "n°", "no"},
	FieldClientName:      {"assuré", "assure", "souscripteur", "client", "nom", "name"},
	FieldCodeAgence:      {"code agence", "agence", "numag", "num ag", "agency"},
	FieldDateEmission:    {"date d'effet", "effet", "émission", "emission", "date début", "date debut", "start date"},
	FieldDateEcheance:    {"échéance", "echeance", "date fin", "end date", "expiry", "fin"},
	FieldTotalAmount:     {"prime ttc", "net à payer", "net a payer", "montant total", "ttc", "prime", "amount due", "total"},
	FieldAmountPaid:      {"encaissé", "encaisse", "payé", "paye", "reglé", "regle", "paid", "payment"},
	FieldRemainingAmount: {"reste", "créance", "creance", "solde", "impayé", "impaye", "outstanding", "remaining"},
}

// ResolveColumns maps literal header strings to canonical fields through an
// ordered cascade, each pass more permissive than the last, stopping at the
// first hit per field. The second return lists mandatory fields no header
// matched.
func ResolveColumns(headers []string) (ColumnMap, []Field) {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = util.NormalizeHeader(h)
	}

	mapping := ColumnMap{}
	for _, field := range fieldOrder {
		if idx, ok := resolveField(headers, normalized, fieldKeywords[field]); ok {
			mapping[field] = idx
		}
	}

	var missing []Field
	for _, f := range mandatoryFields {
		if _, ok := mapping[f]; !ok {
			missing = append(missing, f)
		}
	}
	return mapping, missing
}

func resolveField(headers, normalized []string, keywords []string) (int, bool) {
	// Pass 1: exact case-insensitive equality.
	for _, kw := range keywords {
		for i, h := range headers {
			if strings.EqualFold(strings.TrimSpace(h), kw) {
				return i, true
			}
		}
	}

	// Pass 2: normalized header contains normalized keyword.
	for _, kw := range keywords {
		nkw := util.NormalizeHeader(kw)
		for i, nh := range normalized {
			if nh != "" && strings.Contains(nh, nkw) {
				return i, true
			}
		}
	}

	// Pass 3: same normalization, containment checked both ways.
	for _, kw := range keywords {
		nkw := util.NormalizeHeader(kw)
		for i, nh := range normalized {
			if nh != "" && (strings.Contains(nh, nkw) || strings.Contains(nkw, nh)) {
				return i, true
			}
		}
	}

	// Pass 4: wildcard regex containment, last resort.
	for _, kw := range keywords {
		re, err := regexp.Compile("(?i).*" + regexp.QuoteMeta(util.NormalizeHeader(kw)) + ".*")
		if err != nil {
			continue
		}
		for i, nh := range normalized {
			if nh != "" && re.MatchString(nh) {
				return i, true
			}
		}
	}

	return 0, false
}
