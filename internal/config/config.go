package config

import (
	"encoding/hex"
	"os"

	"gopkg.in/yaml.v3"
)

type CookieConfig struct {
	// Key is hex-encoded; must decode to 32 bytes (AES-256)
	Key    string `yaml:"key"`
	Secure bool   `yaml:"secure"`
}

type AIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
	DryRun  bool   `yaml:"dry_run"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
}

type FilesConfig struct {
	RootDir string `yaml:"root_dir"`
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUser     string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
	} `yaml:"email"`
	Cookie   CookieConfig   `yaml:"cookie"`
	AI       AIConfig       `yaml:"ai"`
	Telegram TelegramConfig `yaml:"telegram"`
	Files    FilesConfig    `yaml:"files"`
}

func LoadConfig() *Config {
	f, err := os.Open("config/config.yaml")
	if err != nil {
		panic("Failed to open config.yaml: " + err.Error())
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		panic("Failed to parse config.yaml: " + err.Error())
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Files.RootDir == "" {
		cfg.Files.RootDir = "./files"
	}
	return &cfg
}

// CookieKey decodes the configured hex key and insists on AES-256
// size; a bad key is a startup failure, not a runtime one.
func (c *Config) CookieKey() []byte {
	key, err := hex.DecodeString(c.Cookie.Key)
	if err != nil {
		panic("cookie.key must be hex: " + err.Error())
	}
	if len(key) != 32 {
		panic("cookie.key must decode to 32 bytes")
	}
	return key
}
