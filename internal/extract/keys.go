package extract

import (
	"os"

	"github.com/joho/godotenv"

	"eventcal/internal/errs"
)

// API key environment variables, checked in order.
var keyEnvVars = []string{"EVENTCAL_API_KEY", "GEMINI_API_KEY"}

// LoadAPIKey returns the extraction API key from the environment,
// loading a .env file from the working directory first if one exists.
func LoadAPIKey() (string, error) {
	// Missing .env is the normal case; real environments set the
	// variable directly.
	_ = godotenv.Load()

	for _, name := range keyEnvVars {
		if v := os.Getenv(name); v != "" {
			return v, nil
		}
	}
	return "", errs.Newf(errs.CodePermanentCall,
		"no API key found; set %s or %s", keyEnvVars[0], keyEnvVars[1])
}
