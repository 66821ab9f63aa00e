package log

import (
	"os"

	"github.com/sirupsen/logrus"
)

const serviceName = "socialape-api"

// global accessible logger
var (
	logger *logrus.Logger
	Log    *logrus.Entry
)

// Tests and tools that never call InitLogger still get a usable logger.
func init() {
	InitLogger("development", "info")
}

// InitLogger configures the global logger. Production logs are JSON so they
// can be shipped as-is, everything else stays human readable on stderr.
func InitLogger(env, level string) {
	logger = logrus.New()
	logger.SetOutput(os.Stderr)

	if env == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	Log = logger.WithFields(logrus.Fields{
		"service": serviceName,
		"env":     env,
	})
}
