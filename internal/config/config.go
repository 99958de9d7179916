// Package config loads application configuration from a .env file (if
// present) and environment variables, once, at startup.
package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/escobedo-lab/school/internal/storage"
)

type Config struct {
	HTTPAddr string
	AppEnv   string

	DBDriver string
	DBDSN    string

	JWTSecret string

	// Teacher account. A single staff login, checked against a bcrypt hash.
	AdminUser     string
	AdminPassHash string

	CORSOrigins []string

	// Object storage (S3-compatible; MinIO locally, iDrive e2 in production).
	// Leaving endpoint/key/secret empty disables the remote backend and all
	// uploads land on local disk.
	StorageEndpoint  string
	StorageAccessKey string
	StorageSecretKey string
	StorageBucket    string
	StorageUseSSL    bool
	UploadDir        string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading from environment")
	}
	return Config{
		HTTPAddr: envOr("HTTP_ADDR", ":8080"),
		AppEnv:   envOr("APP_ENV", "development"),

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    os.Getenv("DB_DSN"),

		JWTSecret: envOr("JWT_SECRET", "change_me_in_production"),

		AdminUser: envOr("ADMIN_USER", "profesor"),
		// bcrypt("admin") — dev only, override in production.
		AdminPassHash: envOr("ADMIN_PASS_HASH", "$2a$12$LQv3c1yqBWVHxkd0LHAkCOYz6TtxMQJqhN8/LewKyNiLXdkWtWxPu"),

		CORSOrigins: csvOr("CORS_ORIGINS", "http://localhost:3000"),

		StorageEndpoint:  os.Getenv("S3_ENDPOINT"),
		StorageAccessKey: os.Getenv("S3_KEY"),
		StorageSecretKey: os.Getenv("S3_SECRET"),
		StorageBucket:    envOr("S3_BUCKET_NAME", "taller-computo"),
		StorageUseSSL:    envBool("S3_USE_SSL", true),
		UploadDir:        envOr("UPLOAD_DIR", "uploads"),
	}
}

// Storage maps the relevant fields into the gateway's own config struct.
func (c Config) Storage() storage.Config {
	return storage.Config{
		Endpoint:  c.StorageEndpoint,
		AccessKey: c.StorageAccessKey,
		SecretKey: c.StorageSecretKey,
		Bucket:    c.StorageBucket,
		UseSSL:    c.StorageUseSSL,
		UploadDir: c.UploadDir,
	}
}

func (c Config) IsProduction() bool { return c.AppEnv == "production" }

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
