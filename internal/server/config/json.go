package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/plantaofacil/accounts/internal/flagx"
	"github.com/plantaofacil/accounts/internal/timex"
)

// JsonConfig is the intermediate DTO for reading JSON configuration files.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "30m" and integer nanoseconds. Empty fields leave
// the target Config untouched.
type JsonConfig struct {
	EndpointAddr       string         `json:"endpoint_addr"`
	Backend            string         `json:"backend"`
	DatabaseDSN        string         `json:"database_dsn"`
	AWSRegion          string         `json:"aws_region"`
	AWSAccessKeyID     string         `json:"aws_access_key_id"`
	AWSSecretAccessKey string         `json:"aws_secret_access_key"`
	DynamoEndpoint     string         `json:"dynamo_endpoint"`
	DynamoUsersTable   string         `json:"dynamo_users_table"`
	DynamoResetTable   string         `json:"dynamo_reset_table"`
	DynamoEmailIndex   string         `json:"dynamo_email_index"`
	SecretKey          string         `json:"secret_key"`
	SessionValidity    timex.Duration `json:"session_validity"`
	ResetTokenTTL      timex.Duration `json:"reset_token_ttl"`
	AppBaseURL         string         `json:"app_base_url"`
	EmailEnabled       bool           `json:"email_enabled"`
	EmailFrom          string         `json:"email_from"`
	EmailReplyTo       string         `json:"email_reply_to"`
	SMSEnabled         bool           `json:"sms_enabled"`
	SMSAlertPhone      string         `json:"sms_alert_phone"`
	SeedFile           string         `json:"seed_file"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into the provided Config. No flag means no file is
// loaded. Read or parse failures panic: a config file that exists but does
// not load is a deployment error, not something to run past.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	overlayString(&config.EndpointAddr, c.EndpointAddr)
	overlayString(&config.Backend, c.Backend)
	overlayString(&config.DatabaseDSN, c.DatabaseDSN)
	overlayString(&config.AWSRegion, c.AWSRegion)
	overlayString(&config.AWSAccessKeyID, c.AWSAccessKeyID)
	overlayString(&config.AWSSecretAccessKey, c.AWSSecretAccessKey)
	overlayString(&config.DynamoEndpoint, c.DynamoEndpoint)
	overlayString(&config.DynamoUsersTable, c.DynamoUsersTable)
	overlayString(&config.DynamoResetTable, c.DynamoResetTable)
	overlayString(&config.DynamoEmailIndex, c.DynamoEmailIndex)
	overlayString(&config.SecretKey, c.SecretKey)
	overlayString(&config.AppBaseURL, c.AppBaseURL)
	overlayString(&config.EmailFrom, c.EmailFrom)
	overlayString(&config.EmailReplyTo, c.EmailReplyTo)
	overlayString(&config.SMSAlertPhone, c.SMSAlertPhone)
	overlayString(&config.SeedFile, c.SeedFile)

	if c.SessionValidity.Duration != 0 {
		config.SessionValidity = time.Duration(c.SessionValidity.Duration)
	}
	if c.ResetTokenTTL.Duration != 0 {
		config.ResetTokenTTL = time.Duration(c.ResetTokenTTL.Duration)
	}
	if c.EmailEnabled {
		config.EmailEnabled = true
	}
	if c.SMSEnabled {
		config.SMSEnabled = true
	}
}

func overlayString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
