package mail

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"io"
	"log"
	"math/big"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/internal/config"
)

type delivery struct {
	from string
	to   []string
	data string
}

// relay is an in-process SMTP server accepting PLAIN auth for one account.
type relay struct {
	user, password string
	hold           chan struct{}

	mu         sync.Mutex
	deliveries []delivery
}

func (r *relay) NewSession(*smtp.Conn) (smtp.Session, error) {
	return &relaySession{relay: r}, nil
}

func (r *relay) received() []delivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]delivery(nil), r.deliveries...)
}

type relaySession struct {
	relay  *relay
	authed bool
	cur    delivery
}

func (s *relaySession) AuthMechanisms() []string { return []string{sasl.Plain} }

func (s *relaySession) Auth(string) (sasl.Server, error) {
	return sasl.NewPlainServer(func(_, username, password string) error {
		if username != s.relay.user || password != s.relay.password {
			return errors.New("invalid credentials")
		}
		s.authed = true
		return nil
	}), nil
}

func (s *relaySession) Mail(from string, _ *smtp.MailOptions) error {
	if !s.authed {
		return smtp.ErrAuthRequired
	}
	s.cur = delivery{from: from}
	return nil
}

func (s *relaySession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.cur.to = append(s.cur.to, to)
	return nil
}

func (s *relaySession) Data(r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if s.relay.hold != nil {
		<-s.relay.hold
	}
	s.cur.data = string(b)
	s.relay.mu.Lock()
	s.relay.deliveries = append(s.relay.deliveries, s.cur)
	s.relay.mu.Unlock()
	return nil
}

func (s *relaySession) Reset()        { s.cur = delivery{} }
func (s *relaySession) Logout() error { return nil }

// startRelay serves r on a loopback port and returns host and port.
func startRelay(t *testing.T, r *relay, tlsConfig *tls.Config) (string, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	srv := smtp.NewServer(r)
	srv.Domain = "localhost"
	srv.AllowInsecureAuth = tlsConfig == nil
	srv.TLSConfig = tlsConfig
	srv.ErrorLog = log.New(io.Discard, "", 0)
	go srv.Serve(ln)
	t.Cleanup(func() { srv.Close() })

	host, port, _ := net.SplitHostPort(ln.Addr().String())
	n, _ := strconv.Atoi(port)
	return host, n
}

func selfSignedTLS(t *testing.T) *tls.Config {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "127.0.0.1"},
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("CreateCertificate() error = %v", err)
	}
	return &tls.Config{Certificates: []tls.Certificate{{Certificate: [][]byte{der}, PrivateKey: key}}}
}

func testMessage(address string) domain.Message {
	return domain.Message{
		From:     address,
		To:       []string{address},
		Subject:  "Todo reminder: 1 task(s) due 2024-06-01",
		TextBody: "1. Pay rent [High priority]",
		HTMLBody: "<p>Pay rent</p>",
		Date:     time.Date(2024, 6, 1, 7, 0, 0, 0, time.UTC),
	}
}

var account = domain.EmailSettings{Address: "me@example.com", Password: "app-password", Enabled: true}

func TestSendPlainRelay(t *testing.T) {
	r := &relay{user: account.Address, password: account.Password}
	host, port := startRelay(t, r, nil)
	sender := NewSMTPSender(config.SMTPConfig{Host: host, Port: port, Timeout: 5 * time.Second}, nil)

	if err := sender.Send(context.Background(), account, testMessage(account.Address)); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	got := r.received()
	if len(got) != 1 {
		t.Fatalf("deliveries = %d, want 1", len(got))
	}
	if got[0].from != account.Address || len(got[0].to) != 1 || got[0].to[0] != account.Address {
		t.Errorf("envelope = %s -> %v", got[0].from, got[0].to)
	}
	if !strings.Contains(got[0].data, "Subject: Todo reminder: 1 task(s) due 2024-06-01") {
		t.Errorf("data missing subject:\n%s", got[0].data)
	}
}

func TestSendStartTLS(t *testing.T) {
	r := &relay{user: account.Address, password: account.Password}
	host, port := startRelay(t, r, selfSignedTLS(t))
	sender := NewSMTPSender(config.SMTPConfig{Host: host, Port: port, StartTLS: true, Timeout: 5 * time.Second}, nil)
	sender.tlsConfig = &tls.Config{InsecureSkipVerify: true}

	if err := sender.Send(context.Background(), account, testMessage(account.Address)); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if got := len(r.received()); got != 1 {
		t.Errorf("deliveries = %d, want 1", got)
	}
}

func TestSendWrongPassword(t *testing.T) {
	r := &relay{user: account.Address, password: "other"}
	host, port := startRelay(t, r, nil)
	sender := NewSMTPSender(config.SMTPConfig{Host: host, Port: port, Timeout: 5 * time.Second}, nil)

	if err := sender.Send(context.Background(), account, testMessage(account.Address)); err == nil {
		t.Fatal("Send() error = nil, want auth failure")
	}
	if got := len(r.received()); got != 0 {
		t.Errorf("deliveries = %d, want 0", got)
	}
}

func TestSendSettingsNotReady(t *testing.T) {
	// Nothing listens here; a dial would fail with a connection error instead.
	sender := NewSMTPSender(config.SMTPConfig{Host: "127.0.0.1", Port: 1, Timeout: time.Second}, nil)

	tests := []struct {
		name     string
		settings domain.EmailSettings
		want     error
	}{
		{name: "disabled", settings: domain.EmailSettings{Address: "me@example.com", Password: "x"}, want: domain.ErrNotificationsDisabled},
		{name: "no password", settings: domain.EmailSettings{Address: "me@example.com", Enabled: true}, want: domain.ErrEmailNotConfigured},
		{name: "no address", settings: domain.EmailSettings{Password: "x", Enabled: true}, want: domain.ErrEmailNotConfigured},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sender.Send(context.Background(), tt.settings, testMessage("me@example.com"))
			if !errors.Is(err, tt.want) {
				t.Errorf("Send() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSendCancelAbortsDelivery(t *testing.T) {
	r := &relay{user: account.Address, password: account.Password, hold: make(chan struct{})}
	host, port := startRelay(t, r, nil)
	sender := NewSMTPSender(config.SMTPConfig{Host: host, Port: port, Timeout: 5 * time.Second}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := sender.Send(ctx, account, testMessage(account.Address))
	close(r.hold)

	if err == nil {
		t.Fatal("Send() error = nil, want failure after cancellation")
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("Send() took %s after cancellation", elapsed)
	}
}
