package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"creances/internal"
)

// KeyLastReminderRun is the metadata key holding the time of the last
// reminder dispatch, RFC 3339.
const KeyLastReminderRun = "lastReminderRun"

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS records (
  contractNumber TEXT PRIMARY KEY,
  clientName TEXT NOT NULL,
  codeAgence TEXT NOT NULL,
  dateEmission TEXT NOT NULL,
  dateEcheance TEXT NOT NULL,
  totalAmount REAL NOT NULL,
  amountPaid REAL NOT NULL,
  remainingAmount REAL NOT NULL,
  timePassed TEXT NOT NULL,
  status TEXT NOT NULL,
  position INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_status ON records(status);
CREATE INDEX IF NOT EXISTS idx_records_agence ON records(codeAgence);

CREATE TABLE IF NOT EXISTS email_mappings (
  email TEXT PRIMARY KEY,
  clientName TEXT NOT NULL,
  position INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS sent_emails (
  contractNumber TEXT PRIMARY KEY,
  emailSent INTEGER NOT NULL,
  sentAt TEXT
);

CREATE TABLE IF NOT EXISTS imports (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  fileName TEXT NOT NULL,
  reportJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// SaveSnapshot rewrites the three collections in one transaction, so the
// durable copy always holds a single consistent snapshot of the store.
func (d *DB) SaveSnapshot(records []internal.InsuranceRecord, mappings []internal.EmailMapping, sent []internal.SentEmailRecord) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"records", "email_mappings", "sent_emails"} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return err
		}
	}

	recStmt, err := tx.Prepare(`
INSERT INTO records (
  contractNumber, clientName, codeAgence, dateEmission, dateEcheance,
  totalAmount, amountPaid, remainingAmount, timePassed, status, position
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer recStmt.Close()

	for i, r := range records {
		if _, err := recStmt.Exec(
			r.ContractNumber, r.ClientName, r.CodeAgence, r.DateEmission, r.DateEcheance,
			r.TotalAmount, r.AmountPaid, r.RemainingAmount, r.TimePassed, string(r.Status), i,
		); err != nil {
			return fmt.Errorf("snapshot record %s: %w", r.ContractNumber, err)
		}
	}

	mapStmt, err := tx.Prepare(`INSERT INTO email_mappings (email, clientName, position) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer mapStmt.Close()

	for i, m := range mappings {
		if _, err := mapStmt.Exec(m.Email, m.ClientName, i); err != nil {
			return fmt.Errorf("snapshot mapping %s: %w", m.Email, err)
		}
	}

	sentStmt, err := tx.Prepare(`INSERT INTO sent_emails (contractNumber, emailSent, sentAt) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer sentStmt.Close()

	for _, s := range sent {
		if _, err := sentStmt.Exec(s.ContractNumber, s.EmailSent, s.SentAt); err != nil {
			return fmt.Errorf("snapshot sent email %s: %w", s.ContractNumber, err)
		}
	}

	return tx.Commit()
}

// LoadSnapshot reads the durable state back, in original collection order.
func (d *DB) LoadSnapshot() ([]internal.InsuranceRecord, []internal.EmailMapping, []internal.SentEmailRecord, error) {
	records, err := d.loadRecords()
	if err != nil {
		return nil, nil, nil, err
	}
	mappings, err := d.loadMappings()
	if err != nil {
		return nil, nil, nil, err
	}
	sent, err := d.LoadSentEmails()
	if err != nil {
		return nil, nil, nil, err
	}
	return records, mappings, sent, nil
}

func (d *DB) loadRecords() ([]internal.InsuranceRecord, error) {
	rows, err := d.conn.Query(`
SELECT contractNumber, clientName, codeAgence, dateEmission, dateEcheance,
       totalAmount, amountPaid, remainingAmount, timePassed, status
FROM records ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.InsuranceRecord
	for rows.Next() {
		var r internal.InsuranceRecord
		var status string
		if err := rows.Scan(
			&r.ContractNumber, &r.ClientName, &r.CodeAgence, &r.DateEmission, &r.DateEcheance,
			&r.TotalAmount, &r.AmountPaid, &r.RemainingAmount, &r.TimePassed, &status,
		); err != nil {
			return nil, err
		}
		r.Status = internal.Status(status)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (d *DB) loadMappings() ([]internal.EmailMapping, error) {
	rows, err := d.conn.Query(`SELECT email, clientName FROM email_mappings ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.EmailMapping
	for rows.Next() {
		var m internal.EmailMapping
		if err := rows.Scan(&m.Email, &m.ClientName); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (d *DB) LoadSentEmails() ([]internal.SentEmailRecord, error) {
	rows, err := d.conn.Query(`SELECT contractNumber, emailSent, sentAt FROM sent_emails ORDER BY sentAt`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.SentEmailRecord
	for rows.Next() {
		var s internal.SentEmailRecord
		var sentAt sql.NullString
		if err := rows.Scan(&s.ContractNumber, &s.EmailSent, &sentAt); err != nil {
			return nil, err
		}
		s.SentAt = sentAt.String
		out = append(out, s)
	}
	return out, rows.Err()
}

// ResetAll clears the three collections together, atomically.
func (d *DB) ResetAll() error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"records", "email_mappings", "sent_emails"} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// InsertImport appends one entry to the import history.
func (d *DB) InsertImport(report internal.ImportReport) error {
	blob, err := json.Marshal(report)
	if err != nil {
		return err
	}
	_, err = d.conn.Exec(`INSERT INTO imports (traceId, fileName, reportJson) VALUES (?, ?, ?)`,
		report.TraceID, report.FileName, string(blob))
	return err
}

// ListImports returns the recorded import reports, newest first.
func (d *DB) ListImports(limit int) ([]internal.ImportReport, error) {
	rows, err := d.conn.Query(`SELECT reportJson FROM imports ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ImportReport
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, err
		}
		var report internal.ImportReport
		if err := json.Unmarshal([]byte(blob), &report); err != nil {
			return nil, err
		}
		out = append(out, report)
	}
	return out, rows.Err()
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
