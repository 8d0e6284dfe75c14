// Package awsx builds the AWS SDK configuration shared by the DynamoDB,
// SES and SNS clients.
package awsx

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// LoadConfig resolves an aws.Config for the given region. When accessKeyID
// and secretAccessKey are both set they are used as static credentials;
// otherwise the SDK's default chain (env, shared config, IAM role) applies.
func LoadConfig(ctx context.Context, region, accessKeyID, secretAccessKey string) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if accessKeyID != "" && secretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")))
	}
	return config.LoadDefaultConfig(ctx, opts...)
}
