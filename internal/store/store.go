package store

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"creances/internal"
	"creances/internal/config"
	"creances/internal/importer"
	"creances/internal/reminder"
	"creances/internal/storage"
	"creances/internal/util"
)

// Store owns the canonical record collection. Mutations go through its
// methods only; every mutation rewrites the durable snapshot.
type Store struct {
	mu     sync.Mutex
	cfg    config.Config
	log    *zap.Logger
	db     *storage.DB
	imp    *importer.Importer
	sender reminder.Sender

	records  []internal.InsuranceRecord
	mappings []internal.EmailMapping
	sent     []internal.SentEmailRecord
}

// New builds a store and loads the persisted snapshot.
func New(cfg config.Config, log *zap.Logger, db *storage.DB, imp *importer.Importer, sender reminder.Sender) (*Store, error) {
	records, mappings, sent, err := db.LoadSnapshot()
	if err != nil {
		return nil, err
	}
	return &Store{
		cfg:      cfg,
		log:      log,
		db:       db,
		imp:      imp,
		sender:   sender,
		records:  records,
		mappings: mappings,
		sent:     sent,
	}, nil
}

// Load imports a receivables spreadsheet and merges it into the collection.
// Nothing is committed when the import fails.
func (s *Store) Load(ctx context.Context, path string) (internal.ImportReport, error) {
	start := time.Now()
	res, err := s.imp.Import(ctx, path)
	if err != nil {
		return internal.ImportReport{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged, appended := s.merge(res.Records)
	if err := s.persist(); err != nil {
		return internal.ImportReport{}, err
	}

	report := internal.ImportReport{
		TraceID:  uuid.NewString(),
		FileName: filepath.Base(path),
		Rows:     res.Rows,
		Imported: len(res.Records),
		Merged:   merged,
		Appended: appended,
		Skipped:  res.Skipped,
		TookMs:   time.Since(start).Milliseconds(),
	}
	if err := s.db.InsertImport(report); err != nil {
		s.log.Warn("historique d'import non enregistré", zap.Error(err))
	}

	s.log.Info("import fusionné",
		zap.String("file", report.FileName),
		zap.Int("merged", merged),
		zap.Int("appended", appended))
	return report, nil
}

// merge applies the selective-overwrite policy: a matched contract gets its
// payment state refreshed (remaining, status, agency when the new file names
// one, paid only when the new file carries a value); descriptive fields from
// the first import stay authoritative. Unmatched rows are appended.
func (s *Store) merge(incoming []internal.InsuranceRecord) (merged, appended int) {
	index := make(map[string]int, len(s.records))
	for i, r := range s.records {
		index[r.ContractNumber] = i
	}

	for _, in := range incoming {
		i, ok := index[in.ContractNumber]
		if !ok {
			s.records = append(s.records, in)
			index[in.ContractNumber] = len(s.records) - 1
			appended++
			continue
		}

		existing := &s.records[i]
		existing.RemainingAmount = in.RemainingAmount
		existing.Status = in.Status
		if in.CodeAgence != "" && in.CodeAgence != internal.NotProvided {
			existing.CodeAgence = in.CodeAgence
		}
		if in.AmountPaid != 0 {
			existing.AmountPaid = in.AmountPaid
		}
		merged++
	}
	return merged, appended
}

// Reset clears records, email mappings and the sent-email audit together.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.ResetAll(); err != nil {
		return err
	}
	s.records, s.mappings, s.sent = nil, nil, nil
	s.log.Info("données réinitialisées")
	return nil
}

// Records returns a copy of the collection in original order.
func (s *Store) Records() []internal.InsuranceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]internal.InsuranceRecord, len(s.records))
	copy(out, s.records)
	return out
}

// TopDebtors returns the n unsettled records with the largest outstanding
// balance, ties kept in collection order.
func (s *Store) TopDebtors(n int) []internal.InsuranceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	debtors := make([]internal.InsuranceRecord, 0, len(s.records))
	for _, r := range s.records {
		if r.Status != internal.StatusRecouvre {
			debtors = append(debtors, r)
		}
	}
	stableSortByRemainingDesc(debtors)
	if n >= 0 && n < len(debtors) {
		debtors = debtors[:n]
	}
	return debtors
}

// LoadEmailMapping imports the client-to-address sheet, deduplicating by
// email address and keeping the first occurrence.
func (s *Store) LoadEmailMapping(ctx context.Context, path string) (int, error) {
	mappings, err := s.imp.ImportEmailMappings(ctx, path)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(s.mappings))
	for _, m := range s.mappings {
		seen[m.Email] = struct{}{}
	}
	added := 0
	for _, m := range mappings {
		if _, dup := seen[m.Email]; dup {
			continue
		}
		seen[m.Email] = struct{}{}
		s.mappings = append(s.mappings, m)
		added++
	}

	if err := s.persist(); err != nil {
		return 0, err
	}
	return added, nil
}

// EmailMappings returns a copy of the loaded mappings.
func (s *Store) EmailMappings() []internal.EmailMapping {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]internal.EmailMapping, len(s.mappings))
	copy(out, s.mappings)
	return out
}

// SendReminders dispatches a reminder for every unsettled record whose issue
// date is at least periodDays old and whose client resolves to an address.
// The audit trail is appended at most once per contract; re-sends do not
// duplicate it.
func (s *Store) SendReminders(ctx context.Context, account internal.EmailAccount, template, contactInfo string, periodDays int, automatic bool) (reminder.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	report := reminder.Report{Automatic: automatic}

	byName := make(map[string]string, len(s.mappings))
	for _, m := range s.mappings {
		key := strings.ToLower(strings.TrimSpace(m.ClientName))
		if _, ok := byName[key]; !ok {
			byName[key] = m.Email
		}
	}
	audited := make(map[string]bool, len(s.sent))
	for _, e := range s.sent {
		audited[e.ContractNumber] = true
	}

	for _, rec := range s.records {
		if rec.Status == internal.StatusRecouvre {
			continue
		}
		emission, err := time.Parse(s.cfg.DateFormat, rec.DateEmission)
		if err != nil {
			// Unknown issue date: the age of the debt cannot be established.
			continue
		}
		if util.DaysBetween(emission, now) < periodDays {
			continue
		}
		report.Eligible++

		address, ok := byName[strings.ToLower(strings.TrimSpace(rec.ClientName))]
		if !ok {
			report.NoMapping++
			continue
		}

		msg := reminder.Message{
			From:    account,
			To:      address,
			ToName:  rec.ClientName,
			Subject: reminder.Subject(rec),
			Body:    reminder.Render(template, rec, contactInfo),
		}
		if err := s.sender.Send(ctx, msg); err != nil {
			s.log.Warn("envoi du rappel en échec",
				zap.String("contract", rec.ContractNumber),
				zap.Error(err))
			report.Failed++
			continue
		}
		report.Sent++

		if !audited[rec.ContractNumber] {
			s.sent = append(s.sent, internal.SentEmailRecord{
				ContractNumber: rec.ContractNumber,
				EmailSent:      true,
				SentAt:         now.Format(time.RFC3339),
			})
			audited[rec.ContractNumber] = true
			report.Audited++
		}
	}

	if err := s.persist(); err != nil {
		return report, err
	}
	if err := s.db.SetMetadata(storage.KeyLastReminderRun, now.Format(time.RFC3339)); err != nil {
		s.log.Warn("horodatage du dernier cycle non enregistré", zap.Error(err))
	}
	return report, nil
}

// LastReminderRun returns when reminders were last dispatched, nil when never.
func (s *Store) LastReminderRun() (*string, error) {
	return s.db.GetMetadata(storage.KeyLastReminderRun)
}

// EmailsSent returns the reminder audit trail, falling back to the durable
// copy when the in-memory one is empty.
func (s *Store) EmailsSent() ([]internal.SentEmailRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sent) == 0 {
		loaded, err := s.db.LoadSentEmails()
		if err != nil {
			return nil, err
		}
		s.sent = loaded
	}
	out := make([]internal.SentEmailRecord, len(s.sent))
	copy(out, s.sent)
	return out, nil
}

func (s *Store) persist() error {
	return s.db.SaveSnapshot(s.records, s.mappings, s.sent)
}
