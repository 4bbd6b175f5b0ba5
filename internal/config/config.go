package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	MongoURI string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDB  string `envconfig:"MONGO_DB" default:"ecommerce"`

	JWTSecret   string        `envconfig:"JWT_SECRET" required:"true"`
	JWTIssuer   string        `envconfig:"JWT_ISSUER" default:"ecommerce-backend"`
	TokenExpiry time.Duration `envconfig:"TOKEN_EXPIRY" default:"24h"`

	BcryptCost int `envconfig:"BCRYPT_COST" default:"10"`

	SendGridKey   string `envconfig:"SENDGRID_KEY"`
	SenderEmail   string `envconfig:"SENDER_EMAIL" default:"no-reply@ecommerce.local"`
	SenderName    string `envconfig:"SENDER_NAME" default:"ECommerce Shop"`
	ConfirmBase   string `envconfig:"CONFIRM_BASE_URL" default:"http://localhost:3000/accountConfirm"`
	CloudinaryURL string `envconfig:"CLOUDINARY_URL"`

	// Bound on outbound SaaS calls (email, image upload). Never applied
	// while a database transaction is open.
	ExternalTimeout time.Duration `envconfig:"EXTERNAL_TIMEOUT" default:"10s"`
}

func Load() (*Config, error) {
	// Load .env only when present; production relies on real
	// environment variables.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Println("error loading .env file:", err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
