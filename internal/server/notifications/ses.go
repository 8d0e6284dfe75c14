package notifications

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESEmailSender delivers email through Amazon SES.
type SESEmailSender struct {
	client  *sesv2.Client
	from    string
	replyTo string
}

func NewSESEmailSender(cfg aws.Config, from, replyTo string) *SESEmailSender {
	return &SESEmailSender{
		client:  sesv2.NewFromConfig(cfg),
		from:    from,
		replyTo: replyTo,
	}
}

func (s *SESEmailSender) send(ctx context.Context, to, subject, html string) error {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(html)},
				},
			},
		},
	}
	if s.replyTo != "" {
		input.ReplyToAddresses = []string{s.replyTo}
	}
	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("ses send: %w", err)
	}
	return nil
}

func (s *SESEmailSender) SendCadastroRecebido(ctx context.Context, to string) error {
	html, err := renderEmail("cadastro_recebido", nil)
	if err != nil {
		return err
	}
	return s.send(ctx, to, subjectCadastroRecebido, html)
}

func (s *SESEmailSender) SendContaAprovada(ctx context.Context, to, nome string) error {
	html, err := renderEmail("conta_aprovada", struct{ Nome string }{Nome: nome})
	if err != nil {
		return err
	}
	return s.send(ctx, to, subjectContaAprovada, html)
}

func (s *SESEmailSender) SendContaRejeitada(ctx context.Context, to, nome string) error {
	html, err := renderEmail("conta_rejeitada", struct{ Nome string }{Nome: nome})
	if err != nil {
		return err
	}
	return s.send(ctx, to, subjectContaRejeitada, html)
}

func (s *SESEmailSender) SendResetSenha(ctx context.Context, to, resetURL string) error {
	html, err := renderEmail("reset_senha", struct{ ResetURL string }{ResetURL: resetURL})
	if err != nil {
		return err
	}
	return s.send(ctx, to, subjectResetSenha, html)
}
