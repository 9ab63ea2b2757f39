// Package config предоставляет управление конфигурацией приложения
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Поддерживаемые драйверы реестра пользователей.
const (
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// ErrInvalidConfig оборачивает все ошибки валидации.
var ErrInvalidConfig = errors.New("invalid configuration")

// Bot содержит настройки Telegram-бота
type Bot struct {
	Token                 string `yaml:"token" env:"TELEGRAM_BOT_TOKEN"`
	AdminID               int64  `yaml:"admin_id" env:"ADMIN_TELEGRAM_ID"`
	WebAppURL             string `yaml:"web_app_url" env:"WEB_APP_URL"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds" env:"BOT_REQUEST_TIMEOUT_SECONDS"`
	PollTimeoutSeconds    int    `yaml:"poll_timeout_seconds" env:"BOT_POLL_TIMEOUT_SECONDS"`
}

// Membership содержит список обязательных сообществ
type Membership struct {
	RequiredChannels    []string `yaml:"required_channels" env:"REQUIRED_CHANNELS" envSeparator:","`
	CheckTimeoutSeconds int      `yaml:"check_timeout_seconds" env:"MEMBERSHIP_CHECK_TIMEOUT_SECONDS"`
}

// Relay содержит настройки конвейера загрузки изображений
type Relay struct {
	ImgBBAPIKey          string `yaml:"imgbb_api_key" env:"IMG_BB_API_KEY"`
	ImgBBEndpoint        string `yaml:"imgbb_endpoint" env:"IMG_BB_ENDPOINT"`
	FetchTimeoutSeconds  int    `yaml:"fetch_timeout_seconds" env:"RELAY_FETCH_TIMEOUT_SECONDS"`
	UploadTimeoutSeconds int    `yaml:"upload_timeout_seconds" env:"RELAY_UPLOAD_TIMEOUT_SECONDS"`
	MaxImageBytes        int64  `yaml:"max_image_bytes" env:"RELAY_MAX_IMAGE_BYTES"`
}

// Broadcast содержит настройки рассылки
type Broadcast struct {
	PoolSize           int `yaml:"pool_size" env:"BROADCAST_POOL_SIZE"`
	SendTimeoutSeconds int `yaml:"send_timeout_seconds" env:"BROADCAST_SEND_TIMEOUT_SECONDS"`
}

// StorageConfig содержит настройки реестра пользователей
type StorageConfig struct {
	Driver        string `yaml:"driver" env:"STORAGE_DRIVER"`
	SQLitePath    string `yaml:"sqlite_path" env:"SQLITE_PATH"`
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"REDIS_DB"`
	RedisPrefix   string `yaml:"redis_prefix" env:"REDIS_PREFIX"`
}

// Server содержит конфигурацию health-сервера
type Server struct {
	Host                   string `yaml:"host" env:"SERVER_HOST"`
	Port                   int    `yaml:"port" env:"SERVER_PORT"`
	ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds" env:"SERVER_SHUTDOWN_TIMEOUT_SECONDS"`
}

// Logging содержит конфигурацию логирования
type Logging struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`   // debug, info, warn, error
	Format string `yaml:"format" env:"LOG_FORMAT"` // json, text
}

// Assets содержит ссылки на статические изображения
type Assets struct {
	GateImageURL         string `yaml:"gate_image_url" env:"GATE_IMAGE_URL"`
	WelcomeImageURL      string `yaml:"welcome_image_url" env:"WELCOME_IMAGE_URL"`
	InstructionsImageURL string `yaml:"instructions_image_url" env:"INSTRUCTIONS_IMAGE_URL"`
}

// Config содержит конфигурацию приложения
type Config struct {
	Bot        Bot           `yaml:"bot"`
	Membership Membership    `yaml:"membership"`
	Relay      Relay         `yaml:"relay"`
	Broadcast  Broadcast     `yaml:"broadcast"`
	Storage    StorageConfig `yaml:"storage"`
	Server     Server        `yaml:"server"`
	Logging    Logging       `yaml:"logging"`
	Assets     Assets        `yaml:"assets"`
}

// LoadConfig загружает конфигурацию в порядке: значения по умолчанию, config.yml,
// переменные окружения (в том числе из .env). Результат проходит валидацию.
func LoadConfig() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadStorageConfig загружает конфигурацию из тех же источников, но проверяет
// только хранилище и логирование. Используется утилитами, которым не нужен бот.
func LoadStorageConfig() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if err := cfg.validateStorage(); err != nil {
		return nil, err
	}
	if err := cfg.validateLogging(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func load() (*Config, error) {
	// Отсутствие .env не ошибка, переменные могут быть заданы напрямую.
	_ = godotenv.Load()

	path := os.Getenv("GATEWAY_CONFIG")
	if path == "" {
		path = DefaultConfigPath
	}

	cfg := defaultConfig()
	if err := loadFromYAML(path, cfg); err != nil {
		return nil, err
	}
	if err := loadFromEnv(cfg, nil); err != nil {
		return nil, err
	}
	cfg.normalize()
	return cfg, nil
}

// loadFromYAML накладывает значения из YAML-файла. Отсутствующий файл пропускается.
func loadFromYAML(filename string, cfg *Config) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("не удалось прочитать файл конфигурации %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("не удалось разобрать YAML конфигурацию: %w", err)
	}
	return nil
}

// loadFromEnv накладывает переменные окружения. Незаданные переменные не трогают поля.
// environ == nil означает окружение процесса.
func loadFromEnv(cfg *Config, environ map[string]string) error {
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("не удалось разобрать переменные окружения: %w", err)
	}
	return nil
}

// normalize убирает пробелы и пустые элементы из списка сообществ.
func (c *Config) normalize() {
	channels := make([]string, 0, len(c.Membership.RequiredChannels))
	for _, ch := range c.Membership.RequiredChannels {
		if ch = strings.TrimSpace(ch); ch != "" {
			channels = append(channels, ch)
		}
	}
	c.Membership.RequiredChannels = channels
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
}

// Address возвращает адрес сервера в формате "host:port"
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (b Bot) RequestTimeout() time.Duration {
	return time.Duration(b.RequestTimeoutSeconds) * time.Second
}

func (m Membership) CheckTimeout() time.Duration {
	return time.Duration(m.CheckTimeoutSeconds) * time.Second
}

func (r Relay) FetchTimeout() time.Duration {
	return time.Duration(r.FetchTimeoutSeconds) * time.Second
}

func (r Relay) UploadTimeout() time.Duration {
	return time.Duration(r.UploadTimeoutSeconds) * time.Second
}

func (b Broadcast) SendTimeout() time.Duration {
	return time.Duration(b.SendTimeoutSeconds) * time.Second
}

func (s Server) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutSeconds) * time.Second
}

// Validate проверяет, являются ли значения конфигурации допустимыми
func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return invalidf("bot.token (TELEGRAM_BOT_TOKEN) не может быть пустым")
	}
	if c.Bot.AdminID <= 0 {
		return invalidf("bot.admin_id (ADMIN_TELEGRAM_ID) должен быть положительным")
	}
	if c.Bot.RequestTimeoutSeconds <= 0 {
		return invalidf("bot.request_timeout_seconds должно быть положительным")
	}
	if c.Bot.PollTimeoutSeconds <= 0 {
		return invalidf("bot.poll_timeout_seconds должно быть положительным")
	}
	// Long polling выполняется тем же HTTP-клиентом, что и остальные запросы.
	if c.Bot.PollTimeoutSeconds >= c.Bot.RequestTimeoutSeconds {
		return invalidf("bot.poll_timeout_seconds должно быть меньше bot.request_timeout_seconds")
	}

	if c.Relay.ImgBBAPIKey == "" {
		return invalidf("relay.imgbb_api_key (IMG_BB_API_KEY) не может быть пустым")
	}
	if c.Relay.FetchTimeoutSeconds <= 0 || c.Relay.UploadTimeoutSeconds <= 0 {
		return invalidf("таймауты relay должны быть положительными")
	}
	if c.Relay.MaxImageBytes <= 0 {
		return invalidf("relay.max_image_bytes должно быть положительным")
	}

	if c.Membership.CheckTimeoutSeconds <= 0 {
		return invalidf("membership.check_timeout_seconds должно быть положительным")
	}

	if c.Broadcast.PoolSize <= 0 {
		return invalidf("broadcast.pool_size должно быть положительным")
	}
	if c.Broadcast.SendTimeoutSeconds <= 0 {
		return invalidf("broadcast.send_timeout_seconds должно быть положительным")
	}

	if err := c.validateStorage(); err != nil {
		return err
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return invalidf("server.port должен быть действительным номером порта (1-65535)")
	}
	if c.Server.ShutdownTimeoutSeconds <= 0 {
		return invalidf("server.shutdown_timeout_seconds должно быть положительным")
	}

	return c.validateLogging()
}

func (c *Config) validateStorage() error {
	switch c.Storage.Driver {
	case StorageSQLite:
		if c.Storage.SQLitePath == "" {
			return invalidf("storage.sqlite_path не может быть пустым")
		}
	case StorageRedis:
		if c.Storage.RedisAddr == "" {
			return invalidf("storage.redis_addr не может быть пустым")
		}
	case StorageMemory:
	default:
		return invalidf("storage.driver должен быть одним из: sqlite, redis, memory")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalidf("logging.level должен быть одним из: debug, info, warn, error")
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return invalidf("logging.format должен быть одним из: json, text")
	}
	return nil
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
