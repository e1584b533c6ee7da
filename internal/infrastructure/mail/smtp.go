package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/internal/config"
)

// SMTPSender delivers messages through an authenticated SMTP relay using the
// stored address and credential.
type SMTPSender struct {
	addr        string
	implicitTLS bool
	startTLS    bool
	timeout     time.Duration
	tlsConfig   *tls.Config
	logger      *zap.Logger
}

func NewSMTPSender(cfg config.SMTPConfig, logger *zap.Logger) *SMTPSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SMTPSender{
		addr:        net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		implicitTLS: cfg.ImplicitTLS,
		startTLS:    cfg.StartTLS,
		timeout:     timeout,
		tlsConfig:   &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12},
		logger:      logger,
	}
}

// Send composes msg and submits it, authenticating as settings.Address.
// Cancelling ctx aborts the connection. Once the relay has accepted the
// message, Send reports success whatever happens afterwards.
func (s *SMTPSender) Send(ctx context.Context, settings domain.EmailSettings, msg domain.Message) error {
	if err := settings.Ready(); err != nil {
		return err
	}

	payload, err := Compose(msg)
	if err != nil {
		return err
	}

	if err := s.deliver(ctx, settings, msg, payload); err != nil {
		s.logger.Warn("smtp delivery failed", zap.String("relay", s.addr), zap.Error(err))
		return err
	}
	s.logger.Info("smtp message sent",
		zap.String("relay", s.addr),
		zap.Int("recipients", len(msg.To)),
		zap.String("subject", msg.Subject))
	return nil
}

func (s *SMTPSender) deliver(ctx context.Context, settings domain.EmailSettings, msg domain.Message, payload []byte) error {
	client, release, err := s.dial(ctx)
	if err != nil {
		return err
	}
	defer release()

	client.CommandTimeout = s.timeout
	client.SubmissionTimeout = s.timeout

	if err := client.Auth(sasl.NewPlainClient("", settings.Address, settings.Password)); err != nil {
		return fmt.Errorf("authenticating: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := client.SendMail(msg.From, msg.To, bytes.NewReader(payload)); err != nil {
		return fmt.Errorf("sending: %w", err)
	}

	// The message is queued at this point.
	if err := client.Quit(); err != nil {
		s.logger.Debug("smtp quit failed", zap.String("relay", s.addr), zap.Error(err))
	}
	return nil
}

// dial connects under ctx and keeps ctx bound to the connection until
// release: cancelling it expires the deadline, which fails any command in flight.
func (s *SMTPSender) dial(ctx context.Context) (*smtp.Client, func(), error) {
	dialer := &net.Dialer{Timeout: s.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to %s: %w", s.addr, err)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})

	var client *smtp.Client
	switch {
	case s.implicitTLS:
		tlsConn := tls.Client(conn, s.tlsConfig)
		if err = tlsConn.HandshakeContext(ctx); err == nil {
			client = smtp.NewClient(tlsConn)
		}
	case s.startTLS:
		client, err = smtp.NewClientStartTLS(conn, s.tlsConfig)
	default:
		client = smtp.NewClient(conn)
	}
	if err != nil {
		stop()
		conn.Close()
		return nil, nil, fmt.Errorf("tls with %s: %w", s.addr, err)
	}
	return client, func() {
		stop()
		client.Close()
	}, nil
}
