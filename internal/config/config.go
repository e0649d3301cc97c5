package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                  string
	Port                 string
	SessionSecret        string
	DatabaseURL          string
	RedisURL             string
	FrontendURLEndsWith  string
	DevPassword          string
	AllowCrossSiteDev    bool
	HealthAdminKey       string
	SendinblueAPIKey     string // SENDINBLUE_API_KEY for approval/waitlist emails (Brevo)
	MailFrom             string // MAIL_FROM sender email (default noreply@teed.club)
	AnalyticsStream      string // Redis stream for analytics events
	BetaCap              int    // BETA_CAP total beta slots
	AutoApproveThreshold int    // AUTO_APPROVE_THRESHOLD overrides the rubric default when > 0
	CapacityBuffer       int    // CAPACITY_BUFFER slots held back from auto-approval
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL_DEV")
	if env == "production" {
		dbURL = viper.GetString("DATABASE_URL_PROD")
	} else if env == "test" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL_DEV")
	}

	betaCap := viper.GetInt("BETA_CAP")
	if betaCap <= 0 {
		betaCap = 150
	}

	return &Config{
		Env:                  env,
		Port:                 port,
		SessionSecret:        viper.GetString("SESSION_SECRET"),
		DatabaseURL:          dbURL,
		RedisURL:             viper.GetString("REDIS_URL"),
		FrontendURLEndsWith:  viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:          viper.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:    strings.EqualFold(viper.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		HealthAdminKey:       viper.GetString("HEALTH_ADMIN_KEY"),
		SendinblueAPIKey:     viper.GetString("SENDINBLUE_API_KEY"),
		MailFrom:             viper.GetString("MAIL_FROM"),
		AnalyticsStream:      viper.GetString("ANALYTICS_STREAM"),
		BetaCap:              betaCap,
		AutoApproveThreshold: viper.GetInt("AUTO_APPROVE_THRESHOLD"),
		CapacityBuffer:       viper.GetInt("CAPACITY_BUFFER"),
	}, nil
}
