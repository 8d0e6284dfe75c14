package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config with values from the environment. A .env file in
// the working directory is loaded first when present; real environment
// variables win over it. Variable names follow the ones the hosted app
// already uses.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	setString(&config.EndpointAddr, "ENDPOINT_ADDR")
	setString(&config.Backend, "AUTH_SOURCE")
	setString(&config.DatabaseDSN, "DATABASE_DSN")
	setString(&config.AWSRegion, "AWS_REGION")
	setString(&config.AWSAccessKeyID, "AWS_ACCESS_KEY_ID")
	setString(&config.AWSSecretAccessKey, "AWS_SECRET_ACCESS_KEY")
	setString(&config.DynamoEndpoint, "AWS_DYNAMODB_ENDPOINT")
	setString(&config.DynamoUsersTable, "AWS_DYNAMODB_USERS_TABLE")
	setString(&config.DynamoResetTable, "AWS_DYNAMODB_RESET_TABLE")
	setString(&config.DynamoEmailIndex, "AWS_DYNAMODB_USERS_EMAIL_GSI")
	setString(&config.SecretKey, "SECRET_KEY")
	setString(&config.AppBaseURL, "APP_BASE_URL")
	setString(&config.EmailFrom, "AWS_SES_FROM_EMAIL")
	setString(&config.EmailReplyTo, "AWS_SES_REPLY_TO")
	setString(&config.SMSAlertPhone, "SMS_ALERT_PHONE")
	setString(&config.SeedFile, "SEED_FILE")

	if v := os.Getenv("PASSWORD_RESET_TOKEN_TTL_MINUTES"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil {
			config.ResetTokenTTL = time.Duration(minutes) * time.Minute
		}
	}
	if v := os.Getenv("SESSION_VALIDITY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.SessionValidity = d
		}
	}
	if v, ok := os.LookupEnv("ENABLE_EMAIL_NOTIFICATIONS"); ok {
		config.EmailEnabled = v == "true"
	}
	if v, ok := os.LookupEnv("ENABLE_SMS_NOTIFICATIONS"); ok {
		config.SMSEnabled = v == "true"
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
