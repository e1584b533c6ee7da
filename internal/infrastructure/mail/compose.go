// Package mail renders outbound messages as MIME and relays them over SMTP.
package mail

import (
	"bytes"
	"fmt"
	"io"
	"time"

	gomail "github.com/emersion/go-message/mail"

	"github.com/fastygo/tasktracker/domain"
)

// Compose renders msg as a multipart/alternative message with a plain text
// and an HTML part. An empty HTML body yields a text-only alternative.
func Compose(msg domain.Message) ([]byte, error) {
	if msg.From == "" || len(msg.To) == 0 {
		return nil, domain.NewError(domain.ErrCodeInvalid, "message needs a sender and a recipient")
	}

	var h gomail.Header
	date := msg.Date
	if date.IsZero() {
		date = time.Now()
	}
	h.SetDate(date)
	h.SetSubject(msg.Subject)
	h.SetAddressList("From", []*gomail.Address{{Address: msg.From}})

	to := make([]*gomail.Address, 0, len(msg.To))
	for _, addr := range msg.To {
		to = append(to, &gomail.Address{Address: addr})
	}
	h.SetAddressList("To", to)
	if err := h.GenerateMessageID(); err != nil {
		return nil, fmt.Errorf("generating message id: %w", err)
	}

	var buf bytes.Buffer
	w, err := gomail.CreateInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("creating message writer: %w", err)
	}

	if err := writePart(w, "text/plain", msg.TextBody); err != nil {
		return nil, err
	}
	if msg.HTMLBody != "" {
		if err := writePart(w, "text/html", msg.HTMLBody); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing message: %w", err)
	}
	return buf.Bytes(), nil
}

func writePart(w *gomail.InlineWriter, contentType, body string) error {
	var h gomail.InlineHeader
	h.SetContentType(contentType, map[string]string{"charset": "utf-8"})

	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("creating %s part: %w", contentType, err)
	}
	if _, err := io.WriteString(part, body); err != nil {
		return fmt.Errorf("writing %s part: %w", contentType, err)
	}
	return part.Close()
}
