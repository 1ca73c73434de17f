package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	// service
	Addr     string
	DBPath   string
	SeedFile string

	// client
	ServerURL   string
	Student     string
	HTTPTimeout time.Duration
}

// Load reads configuration from the environment (prefix TESTPREP_), after
// loading a local .env file when one exists.
func Load() Config {
	conf := viper.New()
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("addr", ":8080")
	conf.SetDefault("dbPath", "testprep.db")
	conf.SetDefault("seedFile", "tests.json")
	conf.SetDefault("serverURL", "http://127.0.0.1:8080")
	conf.SetDefault("student", "")
	conf.SetDefault("httpTimeout", 5*time.Second)

	// load .env if it exists (ignore if it does not)
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
	conf.SetEnvPrefix("TESTPREP")
	conf.AutomaticEnv()

	return Config{
		Addr:        conf.GetString("addr"),
		DBPath:      conf.GetString("dbPath"),
		SeedFile:    conf.GetString("seedFile"),
		ServerURL:   conf.GetString("serverURL"),
		Student:     conf.GetString("student"),
		HTTPTimeout: conf.GetDuration("httpTimeout"),
	}
}
