package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	StoreFirestore = "firestore"
	StoreMongo     = "mongo"
	StoreMemory    = "memory"

	AuthFirebase = "firebase"
	AuthLocal    = "local"
)

type Config struct {
	Port                    string
	Env                     string
	LogLevel                string
	StoreDriver             string
	AuthProvider            string
	FirebaseCredentialsPath string
	FirebaseProjectID       string
	FirebaseAPIKey          string
	StorageBucket           string
	MongoURI                string
	MongoDatabase           string
	PostgresConnStr         string
	JWTSecret               string
	JWTTTLHours             int
	DefaultImage            string
}

// Load reads the configuration from the environment. A .env file is honoured
// when present but never required.
func Load() *Config {
	// Missing .env is the normal case in deployed environments.
	_ = godotenv.Load()

	ttl, err := strconv.Atoi(getEnv("JWT_TTL_HOURS", "72"))
	if err != nil || ttl <= 0 {
		ttl = 72
	}

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		StoreDriver:             getEnv("STORE_DRIVER", StoreFirestore),
		AuthProvider:            getEnv("AUTH_PROVIDER", AuthFirebase),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseAPIKey:          getEnv("FIREBASE_API_KEY", ""),
		StorageBucket:           getEnv("STORAGE_BUCKET", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "socialape"),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		JWTSecret:               getEnv("JWT_SECRET", ""),
		JWTTTLHours:             ttl,
		DefaultImage:            getEnv("DEFAULT_IMAGE", "blank-profile-pic.png"),
	}
}

// Validate checks that the selected drivers have what they need to start.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreFirestore:
		if c.FirebaseCredentialsPath == "" {
			return fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required for the firestore store")
		}
	case StoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required for the mongo store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.AuthProvider {
	case AuthFirebase:
		if c.FirebaseCredentialsPath == "" || c.FirebaseAPIKey == "" {
			return fmt.Errorf("FIREBASE_CREDENTIALS_PATH and FIREBASE_API_KEY are required for firebase auth")
		}
	case AuthLocal:
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required for local auth")
		}
	default:
		return fmt.Errorf("unknown AUTH_PROVIDER %q", c.AuthProvider)
	}
	return nil
}

// NeedsFirebase reports whether any configured component talks to Firebase.
func (c *Config) NeedsFirebase() bool {
	return c.StoreDriver == StoreFirestore || c.AuthProvider == AuthFirebase || c.StorageBucket != ""
}

// DefaultImageURL is the imageUrl given to users who never uploaded a picture.
func (c *Config) DefaultImageURL() string {
	return PublicImageURL(c.StorageBucket, c.DefaultImage)
}

// PublicImageURL builds the download URL for an object in the storage bucket.
func PublicImageURL(bucket, name string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media", bucket, name)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
