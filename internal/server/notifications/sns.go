package notifications

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"github.com/plantaofacil/accounts/internal/common"
)

// SNSSMSSender delivers SMS through Amazon SNS.
type SNSSMSSender struct {
	client *sns.Client
}

func NewSNSSMSSender(cfg aws.Config) *SNSSMSSender {
	return &SNSSMSSender{client: sns.NewFromConfig(cfg)}
}

func (s *SNSSMSSender) SendCadastroPendente(ctx context.Context, phone, email string) error {
	e164, err := FormatToBrazilianE164(phone)
	if err != nil {
		return err
	}
	_, err = s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(e164),
		Message:     aws.String(smsCadastroPendente(email)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SMSType": {
				DataType:    aws.String("String"),
				StringValue: aws.String("Transactional"),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}

// FormatToBrazilianE164 normalizes a Brazilian phone number to +55 E.164.
// Accepts numbers with or without the country code; the national part must
// be 10 or 11 digits (DDD plus the subscriber number).
func FormatToBrazilianE164(phone string) (string, error) {
	var digits strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	national := digits.String()
	// strip the country code only when it is actually there; DDD 55 exists
	if len(national) > 11 && strings.HasPrefix(national, "55") {
		national = national[2:]
	}
	if len(national) != 10 && len(national) != 11 {
		return "", fmt.Errorf("%w: invalid phone number", common.ErrInternal)
	}
	return "+55" + national, nil
}
