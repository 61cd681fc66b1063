package config

import (
	"flag"

	"github.com/dmitrijs2005/ventas/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-k string   API key for GET /sales
//	-u string   S3 access key
//	-p string   S3 secret key
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-l string   lockout backend: postgres, redis or bolt
//	-m int      photo size cap, megabytes
//
// Arguments are filtered with flagx.FilterArgs first so the -c/-config flag
// and positional arguments do not make parsing fail.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"a", "d", "k", "u", "p", "b", "g", "e", "l", "m"})

	fs := flag.NewFlagSet("ventas", flag.ContinueOnError)

	fs.StringVar(&config.ServerAddr, "a", config.ServerAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.APIKey, "k", config.APIKey, "API key for the sales listing")
	fs.StringVar(&config.S3AccessKey, "u", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LockoutBackend, "l", config.LockoutBackend, "lockout backend (postgres, redis, bolt)")

	maxPhotoMB := fs.Int64("m", config.MaxPhotoBytes>>20, "photo size cap (in megabytes)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	config.MaxPhotoBytes = *maxPhotoMB << 20
	return nil
}
