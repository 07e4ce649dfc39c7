package reminder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/jhillyerd/enmime"

	"creances/internal"
)

// Message is one rendered reminder, ready for dispatch.
type Message struct {
	From    internal.EmailAccount
	To      string
	ToName  string
	Subject string
	Body    string
}

// Sender dispatches a rendered reminder. Real delivery is out of scope; the
// production configuration uses OutboxSender, which only materializes the
// message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// OutboxSender builds the full MIME message and writes it as an .eml file
// into an outbox directory instead of talking to an SMTP server.
type OutboxSender struct {
	Dir string
	now func() time.Time
}

func NewOutboxSender(dir string) *OutboxSender {
	return &OutboxSender{Dir: dir, now: time.Now}
}

var reUnsafe = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func (s *OutboxSender) Send(_ context.Context, msg Message) error {
	part, err := enmime.Builder().
		From(msg.From.Name, msg.From.Address).
		To(msg.ToName, msg.To).
		Subject(msg.Subject).
		Text([]byte(msg.Body)).
		Build()
	if err != nil {
		return fmt.Errorf("build reminder mime: %w", err)
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}

	name := fmt.Sprintf("%s-%s.eml", s.now().Format("20060102-150405.000"), reUnsafe.ReplaceAllString(msg.To, "_"))
	f, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return err
	}
	defer f.Close()

	if err := part.Encode(f); err != nil {
		return fmt.Errorf("encode reminder mime: %w", err)
	}
	return nil
}
