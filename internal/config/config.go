package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the application configuration
type Config struct {
	TelegramToken string
	AdminUserIDs  []int64

	// Bot mode configuration
	WebhookMode bool   // If true, use webhook mode; if false, use polling mode
	WebhookURL  string // URL for webhook (required if WebhookMode is true)

	// Path to the persisted settings/block-list file
	ConfigFile string

	// Apify actor used for phone number lookups
	ApifyActor string

	Debug bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	config := &Config{}

	// Telegram Bot Token (required)
	config.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if config.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	// Admin User IDs (required)
	adminIDsStr := os.Getenv("ADMIN_USER_IDS")
	if adminIDsStr == "" {
		return nil, fmt.Errorf("ADMIN_USER_IDS is required (comma-separated list of Telegram user IDs)")
	}

	idStrs := strings.Split(adminIDsStr, ",")
	for _, idStr := range idStrs {
		id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user ID in ADMIN_USER_IDS: %s", idStr)
		}
		config.AdminUserIDs = append(config.AdminUserIDs, id)
	}

	// Bot mode configuration
	config.WebhookMode = os.Getenv("WEBHOOK_MODE") == "true"
	if config.WebhookMode {
		config.WebhookURL = os.Getenv("WEBHOOK_URL")
		if config.WebhookURL == "" {
			return nil, fmt.Errorf("WEBHOOK_URL is required when WEBHOOK_MODE is true")
		}
	}

	// Settings file (default: config.json in the working directory)
	config.ConfigFile = os.Getenv("CONFIG_FILE")
	if config.ConfigFile == "" {
		config.ConfigFile = "config.json"
	}

	// Lookup actor (default: the public phone number checker)
	config.ApifyActor = os.Getenv("APIFY_ACTOR")
	if config.ApifyActor == "" {
		config.ApifyActor = "wilcode~telegram-phone-number-checker"
	}

	config.Debug = os.Getenv("DEBUG") == "true"

	return config, nil
}
