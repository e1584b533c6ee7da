package domain

import "time"

// Message is a fully formed outbound email.
type Message struct {
	From     string
	To       []string
	Subject  string
	TextBody string
	HTMLBody string
	Date     time.Time
}
