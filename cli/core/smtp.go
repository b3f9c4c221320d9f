package core

import (
	"context"

	"github.com/wneessen/go-mail"

	"github.com/pizzashop/pizzasetup/pkg/probe"
)

const (
	smtpServiceName = "SMTP"

	// smtpImplicitTLSPort is the submission port that expects TLS from the
	// first byte instead of STARTTLS.
	smtpImplicitTLSPort = 465

	TestEmailSubject = "Test Email - Pizza Management System"
	TestEmailBody    = "This is a test email from your Pizza Management System."
)

func newSMTPClient(cfg SMTPConfig) (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.User),
		mail.WithPassword(cfg.Pass),
	}
	if cfg.Port == smtpImplicitTLSPort {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, &ValidationError{Key: probe.KeySMTPHost, Message: err.Error()}
	}
	return client, nil
}

// DialSMTP connects to the relay, negotiates TLS, logs in and disconnects.
func DialSMTP(ctx context.Context, cfg SMTPConfig) error {
	client, err := newSMTPClient(cfg)
	if err != nil {
		return err
	}
	if err := client.DialWithContext(ctx); err != nil {
		return &ConnectivityError{Service: smtpServiceName, Op: "login", Err: err}
	}
	if err := client.Close(); err != nil {
		return &ConnectivityError{Service: smtpServiceName, Op: "quit", Err: err}
	}
	return nil
}

// NewTestMessage builds the test email. An empty to sends it back to the
// configured user.
func NewTestMessage(cfg SMTPConfig, to string) (*mail.Msg, error) {
	if to == "" {
		to = cfg.User
	}
	msg := mail.NewMsg()
	if err := msg.From(cfg.User); err != nil {
		return nil, &ValidationError{Key: probe.KeySMTPUser, Message: err.Error()}
	}
	if err := msg.To(to); err != nil {
		return nil, &ValidationError{Key: "recipient", Message: err.Error()}
	}
	msg.Subject(TestEmailSubject)
	msg.SetBodyString(mail.TypeTextPlain, TestEmailBody)
	return msg, nil
}

// SendTestEmail logs in and sends one test message.
func SendTestEmail(ctx context.Context, cfg SMTPConfig, to string) error {
	msg, err := NewTestMessage(cfg, to)
	if err != nil {
		return err
	}
	client, err := newSMTPClient(cfg)
	if err != nil {
		return err
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return &ConnectivityError{Service: smtpServiceName, Op: "send test email", Err: err}
	}
	return nil
}
