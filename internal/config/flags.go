package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/cmgshare/internal/flagx"
)

var configFlags = []string{"-d", "-s", "-t", "-v", "-x", "-k", "-o", "-u", "-p", "-b", "-g", "-e", "-l"}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   credential store DSN (SQLite path or postgres:// URL)
//	-s string   JWT HMAC secret key
//	-t int      session validity, minutes
//	-v int      current pepper version
//	-x string   AEAD for new containers (xchacha20poly1305, aes256gcm)
//	-k string   container storage kind (file, s3)
//	-o string   container directory for file storage
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-l string   log level
//
// os.Args is first filtered with flagx.FilterArgs, so subcommand flags such
// as -code or -in do not collide with these.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], configFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "credential store DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	sessionValidity := fs.Int("t", int(config.SessionValidityDuration.Minutes()), "session_validity_duration (in minutes)")
	fs.IntVar(&config.PepperVersion, "v", config.PepperVersion, "current pepper version")
	fs.StringVar(&config.Algorithm, "x", config.Algorithm, "container algorithm")
	fs.StringVar(&config.StorageKind, "k", config.StorageKind, "container storage kind")
	fs.StringVar(&config.StorageDir, "o", config.StorageDir, "container directory")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionValidityDuration = time.Duration(*sessionValidity) * time.Minute
}
