// Package notifications sends the templated emails and SMS messages that
// follow account-lifecycle transitions. Delivery is fire-and-forget from
// the caller's point of view: services log failures and never roll back the
// state transition that triggered the send.
package notifications

import "context"

// EmailSender delivers one templated email per lifecycle event.
type EmailSender interface {
	// SendCadastroRecebido confirms a registration landed and awaits approval.
	SendCadastroRecebido(ctx context.Context, to string) error

	// SendContaAprovada tells the doctor the account was approved.
	SendContaAprovada(ctx context.Context, to, nome string) error

	// SendContaRejeitada tells the applicant the account was rejected.
	SendContaRejeitada(ctx context.Context, to, nome string) error

	// SendResetSenha delivers the password-reset link.
	SendResetSenha(ctx context.Context, to, resetURL string) error
}

// SMSSender delivers short operational messages.
type SMSSender interface {
	// SendCadastroPendente alerts the coordinators' number that a new
	// registration is waiting for approval.
	SendCadastroPendente(ctx context.Context, phone, email string) error
}

// NoopEmailSender is used when email notifications are disabled. Sends
// succeed silently, matching how the app behaves without SES configured.
type NoopEmailSender struct{}

func (NoopEmailSender) SendCadastroRecebido(ctx context.Context, to string) error { return nil }
func (NoopEmailSender) SendContaAprovada(ctx context.Context, to, nome string) error {
	return nil
}
func (NoopEmailSender) SendContaRejeitada(ctx context.Context, to, nome string) error {
	return nil
}
func (NoopEmailSender) SendResetSenha(ctx context.Context, to, resetURL string) error {
	return nil
}

// NoopSMSSender is used when SMS notifications are disabled.
type NoopSMSSender struct{}

func (NoopSMSSender) SendCadastroPendente(ctx context.Context, phone, email string) error {
	return nil
}
