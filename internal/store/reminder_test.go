package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"creances/internal"
	"creances/internal/reminder"
)

func loadReminderFixtures(t *testing.T, s *Store, dir string) {
	t.Helper()

	records := filepath.Join(dir, "creances.xlsx")
	writeXLSX(t, records, [][]any{
		{"N° Police", "Assuré", "Date d'effet", "TTC", "Encaissé"},
		{"P001", "Dupont", "01/01/2020", 1000, 200},
		{"P002", "Martin", "01/01/2020", 500, 500},
		{"P003", "Durand", "01/01/2020", 800, 0},
	})
	if _, err := s.Load(context.Background(), records); err != nil {
		t.Fatal(err)
	}

	mapping := filepath.Join(dir, "emails.xlsx")
	writeXLSX(t, mapping, [][]any{
		{"Client Name", "Email", "Remarque"},
		{"DUPONT", "dupont@example.dz", "casse différente"},
		{"Durand", "durand@example.dz", ""},
		{"Autre", "dupont@example.dz", "doublon ignoré"},
	})
	added, err := s.LoadEmailMapping(context.Background(), mapping)
	if err != nil {
		t.Fatal(err)
	}
	if added != 2 {
		t.Fatalf("mappings added=%d", added)
	}
}

func TestSendReminders(t *testing.T) {
	s, sender, dir := testStore(t)
	loadReminderFixtures(t, s, dir)

	account := internal.EmailAccount{Name: "Recouvrement", Address: "rec@example.dz"}
	report, err := s.SendReminders(context.Background(), account, reminder.DefaultTemplate, "0555 00 00 00", 30, false)
	if err != nil {
		t.Fatal(err)
	}

	// P002 is settled; P001 and P003 are overdue and both resolve an address
	// (name match is case-insensitive).
	if report.Eligible != 2 || report.Sent != 2 || report.NoMapping != 0 {
		t.Fatalf("report: %+v", report)
	}
	if len(sender.msgs) != 2 {
		t.Fatalf("messages=%d", len(sender.msgs))
	}

	body := sender.msgs[0].Body
	for _, token := range []string{"{clientName}", "{contractNumber}", "{remainingAmount}", "{timePassed}", "{contactInfo}"} {
		if strings.Contains(body, token) {
			t.Fatalf("unreplaced token %s in body:\n%s", token, body)
		}
	}
	if !strings.Contains(body, "Dupont") || !strings.Contains(body, "P001") || !strings.Contains(body, "800") {
		t.Fatalf("body missing record values:\n%s", body)
	}

	sent, err := s.EmailsSent()
	if err != nil {
		t.Fatal(err)
	}
	if len(sent) != 2 {
		t.Fatalf("audit entries=%d", len(sent))
	}
	last, err := s.LastReminderRun()
	if err != nil {
		t.Fatal(err)
	}
	if last == nil {
		t.Fatal("last reminder run not recorded")
	}

	// A second pass re-sends but never duplicates the audit trail.
	report, err = s.SendReminders(context.Background(), account, reminder.DefaultTemplate, "0555 00 00 00", 30, false)
	if err != nil {
		t.Fatal(err)
	}
	if report.Audited != 0 {
		t.Fatalf("audit duplicated: %+v", report)
	}
	sent, err = s.EmailsSent()
	if err != nil {
		t.Fatal(err)
	}
	if len(sent) != 2 {
		t.Fatalf("audit entries after re-send=%d", len(sent))
	}
}

func TestSendRemindersSkipsRecentAndUnmapped(t *testing.T) {
	s, sender, dir := testStore(t)

	records := filepath.Join(dir, "creances.xlsx")
	writeXLSX(t, records, [][]any{
		{"N° Police", "Assuré", "Date d'effet", "TTC", "Encaissé"},
		{"P001", "Dupont", "01/01/2020", 1000, 0},
	})
	if _, err := s.Load(context.Background(), records); err != nil {
		t.Fatal(err)
	}

	account := internal.EmailAccount{Address: "rec@example.dz"}

	// No mapping loaded: eligible but skipped, not an error.
	report, err := s.SendReminders(context.Background(), account, reminder.DefaultTemplate, "", 30, false)
	if err != nil {
		t.Fatal(err)
	}
	if report.Eligible != 1 || report.NoMapping != 1 || len(sender.msgs) != 0 {
		t.Fatalf("report: %+v msgs=%d", report, len(sender.msgs))
	}

	// Absurdly long reminder period: nothing is eligible.
	report, err = s.SendReminders(context.Background(), account, reminder.DefaultTemplate, "", 1<<20, false)
	if err != nil {
		t.Fatal(err)
	}
	if report.Eligible != 0 {
		t.Fatalf("report: %+v", report)
	}
}
