package reminder

import (
	"fmt"
	"strings"

	"creances/internal"
)

// DefaultSubject is the subject line of reminder mail; %s is the policy
// number.
const DefaultSubject = "Rappel de paiement - Police n°%s"

// DefaultTemplate is the stock reminder body. Placeholder tokens are replaced
// verbatim by Render.
const DefaultTemplate = `Cher/Chère {clientName},

Nous souhaitons vous rappeler que votre police d'assurance n°{contractNumber} présente actuellement un solde impayé de {remainingAmount} DZD. Cette police est en attente de paiement depuis {timePassed}.

Pour toute question ou pour effectuer le paiement, veuillez contacter notre service client à {contactInfo}.

Cordialement,
Le service recouvrement`

// Render substitutes the placeholder tokens of a reminder template with the
// record's values.
func Render(template string, rec internal.InsuranceRecord, contactInfo string) string {
	r := strings.NewReplacer(
		"{clientName}", rec.ClientName,
		"{contractNumber}", rec.ContractNumber,
		"{remainingAmount}", formatAmount(rec.RemainingAmount),
		"{timePassed}", rec.TimePassed,
		"{contactInfo}", contactInfo,
	)
	return r.Replace(template)
}

// Subject builds the subject line for one record.
func Subject(rec internal.InsuranceRecord) string {
	return fmt.Sprintf(DefaultSubject, rec.ContractNumber)
}

func formatAmount(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	return strings.TrimSuffix(s, ".00")
}
