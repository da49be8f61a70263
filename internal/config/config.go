package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DiscordToken   string         `yaml:"discord_token"`
	DatabasePath   string         `yaml:"database_path"`
	LogLevel       string         `yaml:"log_level"`
	OwnerID        string         `yaml:"owner_id"`
	DefaultPrefix  string         `yaml:"default_prefix"`
	GuildBlacklist string         `yaml:"guild_blacklist"`
	Health         HealthConfig   `yaml:"health"`
	Trigen         TrigenConfig   `yaml:"trigen"`
	Weather        WeatherConfig  `yaml:"weather"`
	CatAPIKey      string         `yaml:"cat_api_key"`
	Cooldowns      CooldownConfig `yaml:"cooldowns"`
	EmbedColors    EmbedColors    `yaml:"embed_colors"`
}

type HealthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type TrigenConfig struct {
	Enabled  bool   `yaml:"enabled"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	Endpoint string `yaml:"endpoint"`
}

type WeatherConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

type CooldownConfig struct {
	AltSeconds    int `yaml:"alt_seconds"`
	AnimalSeconds int `yaml:"animal_seconds"`
}

type EmbedColors struct {
	Action  int `yaml:"action"`
	Info    int `yaml:"info"`
	Warning int `yaml:"warning"`
	Error   int `yaml:"error"`
}

func DefaultConfig() Config {
	return Config{
		DatabasePath:  "/data/modbot.db",
		LogLevel:      "info",
		DefaultPrefix: "!",
		Health:        HealthConfig{Enabled: false, Addr: ":8080"},
		Trigen: TrigenConfig{
			Enabled:  false,
			BaseURL:  "https://trigen.io",
			Endpoint: "/api/alt/generate",
		},
		Weather: WeatherConfig{
			BaseURL: "https://api.openweathermap.org/data/2.5/weather",
		},
		Cooldowns: CooldownConfig{AltSeconds: 5, AnimalSeconds: 5},
		EmbedColors: EmbedColors{
			Action:  0x57F287,
			Info:    0x3498DB,
			Warning: 0xE67E22,
			Error:   0xED4245,
		},
	}
}

func Load() (Config, error) {
	cfg := DefaultConfig()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)
	if cfg.DiscordToken == "" {
		return Config{}, errors.New("DISCORD_TOKEN is required")
	}
	if cfg.DefaultPrefix == "" || len(cfg.DefaultPrefix) > 5 {
		cfg.DefaultPrefix = "!"
	}
	cfg.Trigen.BaseURL = strings.TrimRight(cfg.Trigen.BaseURL, "/")

	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.DiscordToken = envString("DISCORD_TOKEN", cfg.DiscordToken)
	cfg.DatabasePath = envString("DATABASE_PATH", cfg.DatabasePath)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.OwnerID = envString("OWNER_ID", cfg.OwnerID)
	cfg.DefaultPrefix = envString("DEFAULT_PREFIX", cfg.DefaultPrefix)
	cfg.GuildBlacklist = envString("GUILD_BLACKLIST", cfg.GuildBlacklist)
	cfg.Health.Enabled = envBool("HEALTH_ENABLED", cfg.Health.Enabled)
	cfg.Health.Addr = envString("HEALTH_ADDR", cfg.Health.Addr)
	cfg.Trigen.Enabled = envBool("MOD_ENABLE_RBX_ALT", cfg.Trigen.Enabled)
	cfg.Trigen.APIKey = envString("TRIGEN_API_KEY", cfg.Trigen.APIKey)
	cfg.Trigen.BaseURL = envString("TRIGEN_BASE", cfg.Trigen.BaseURL)
	cfg.Trigen.Endpoint = envString("TRIGEN_ALT_ENDPOINT", cfg.Trigen.Endpoint)
	cfg.Weather.APIKey = envString("OPENWEATHER_API_KEY", cfg.Weather.APIKey)
	cfg.Weather.BaseURL = envString("OPENWEATHER_BASE", cfg.Weather.BaseURL)
	cfg.CatAPIKey = envString("CAT_API_KEY", cfg.CatAPIKey)
	cfg.Cooldowns.AltSeconds = envInt("ALT_COOLDOWN_SECONDS", cfg.Cooldowns.AltSeconds)
	cfg.Cooldowns.AnimalSeconds = envInt("ANIMAL_COOLDOWN_SECONDS", cfg.Cooldowns.AnimalSeconds)
}

// ParseGuildBlacklist splits the configured blacklist into a set of guild IDs.
// Accepts comma, semicolon, or whitespace separators and skips junk tokens.
func ParseGuildBlacklist(raw string) map[string]struct{} {
	set := make(map[string]struct{})
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n'
	})
	for _, field := range fields {
		id := strings.TrimSpace(field)
		if id == "" {
			continue
		}
		if _, err := strconv.ParseUint(id, 10, 64); err != nil {
			continue
		}
		set[id] = struct{}{}
	}
	return set
}

func BuildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl := strings.ToLower(level)
	switch lvl {
	case "debug", "info", "warn", "error":
		cfg.Level = zap.NewAtomicLevelAt(parseLevel(lvl))
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		lower := strings.ToLower(value)
		return lower == "1" || lower == "true" || lower == "yes" || lower == "y"
	}
	return fallback
}
