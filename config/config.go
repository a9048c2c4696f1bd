package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

type Config struct {
	Debug                    bool          `envconfig:"debug"`
	Port                     int           `envconfig:"port" default:"8000"`
	Env                      string        `envconfig:"env" default:"dev"`
	LogLevel                 string        `envconfig:"log_level" default:"info"`
	BaseUrl                  string        `envconfig:"base_url" default:"http://localhost:8000"`
	PostgresHost             string        `envconfig:"postgres_host" default:"localhost"`
	PostgresPort             int           `envconfig:"postgres_port" default:"5432"`
	PostgresUser             string        `envconfig:"postgres_user"`
	PostgresPassword         string        `envconfig:"postgres_password"`
	PostgresDB               string        `envconfig:"postgres_db"`
	PostgresTimeZone         string        `envconfig:"postgres_timezone" default:"UTC"`
	JWTSecret                string        `envconfig:"jwt_secret"`
	TokenTTL                 time.Duration `envconfig:"token_ttl" default:"1h"`
	LoginRateLimit           uint          `envconfig:"login_rate_limit" default:"5"`
	LoginRateWindow          time.Duration `envconfig:"login_rate_window" default:"1m"`
	AccessControlAllowOrigin string        `envconfig:"access_control_allow_origin" default:"*"`
	StorageDriver            string        `envconfig:"storage_driver" default:"local"`
	UploadDir                string        `envconfig:"upload_dir" default:"uploads"`
	AWSRegion                string        `envconfig:"aws_region"`
	AWSBucket                string        `envconfig:"aws_bucket"`
	AWSAccessKeyID           string        `envconfig:"aws_access_key_id"`
	AWSSecretAccessKey       string        `envconfig:"aws_secret_access_key"`
	MailgunApiKey            string        `envconfig:"mg_public_api_key"`
	MgDomain                 string        `envconfig:"mg_domain"`
	MgEmailFrom              string        `envconfig:"email_from"`
	FirebaseCredentialsFile  string        `envconfig:"firebase_credentials_file"`
	GoogleClientID           string        `envconfig:"google_client_id"`
	GoogleClientSecret       string        `envconfig:"google_client_secret"`
	GoogleRedirectURL        string        `envconfig:"google_redirect_url"`
	SocketSendBuffer         int           `envconfig:"socket_send_buffer" default:"128"`
	SocketReadTimeout        time.Duration `envconfig:"socket_read_timeout" default:"60s"`
	SocketWriteTimeout       time.Duration `envconfig:"socket_write_timeout" default:"10s"`
}

func Load() (*Config, error) {
	env := os.Getenv("GIN_MODE")
	if env != "release" {
		if err := godotenv.Load("./.env"); err != nil {
			log.Printf("couldn't load env vars: %v", err)
		}
	}

	c := &Config{}
	err := envconfig.Process("bookclub", c)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the settings that have no usable default.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("config: jwt_secret is required")
	}
	switch c.StorageDriver {
	case StorageLocal:
	case StorageS3:
		if c.AWSBucket == "" || c.AWSRegion == "" {
			return fmt.Errorf("config: aws_bucket and aws_region are required for the s3 storage driver")
		}
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.StorageDriver)
	}
	return nil
}

func (c *Config) IsProd() bool {
	return c.Env == "prod"
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d TimeZone=%s",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresPort, c.PostgresTimeZone)
}
