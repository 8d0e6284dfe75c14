package config

import (
	"flag"
	"os"
	"time"

	"github.com/plantaofacil/accounts/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-b string   storage backend: dynamodb, postgres or memory
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-r int      reset token validity, minutes
//	-u string   app base URL for reset links
//	-f string   seed file path
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with flags owned elsewhere.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-b", "-d", "-s", "-r", "-u", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.Backend, "b", config.Backend, "storage backend (dynamodb|postgres|memory)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	resetTokenTTL := fs.Int("r", int(config.ResetTokenTTL.Minutes()), "reset token validity (in minutes)")

	fs.StringVar(&config.AppBaseURL, "u", config.AppBaseURL, "app base URL")
	fs.StringVar(&config.SeedFile, "f", config.SeedFile, "seed file path")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.ResetTokenTTL = time.Duration(*resetTokenTTL) * time.Minute
}
