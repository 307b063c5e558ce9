package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Relay struct {
		DefaultProvider string `yaml:"default_provider"`
		ScratchDir      string `yaml:"scratch_dir"`    // Каталог для staging-файлов
		MaxBodyBytes    int64  `yaml:"max_body_bytes"` // Лимит тела запроса
		MaxDimension    int    `yaml:"max_dimension"`  // 0 = не уменьшать
		ImageQuality    int    `yaml:"image_quality"`  // JPEG quality (1-100)

		// Фоновая очистка scratch от файлов, переживших запрос
		ScratchSweepInterval time.Duration `yaml:"scratch_sweep_interval"` // 0 = выключено
		ScratchMaxAge        time.Duration `yaml:"scratch_max_age"`
	} `yaml:"relay"`

	// Переопределения встроенных провайдеров и новые провайдеры
	Providers []ProviderConfig `yaml:"providers"`

	// Объектное хранилище для провайдера bucket (пустой type = выключено)
	Storage struct {
		Type       string `yaml:"type"`        // s3, cloudflare_r2
		Provider   string `yaml:"provider"`    // Имя провайдера в реестре
		BaseURL    string `yaml:"base_url"`    // Public URL base
		Bucket     string `yaml:"bucket"`      // For S3/R2
		Region     string `yaml:"region"`      // For S3
		AccessKey  string `yaml:"access_key"`  // For S3/R2
		SecretKey  string `yaml:"secret_key"`  // For S3/R2
		Endpoint   string `yaml:"endpoint"`    // For R2 or custom S3
		UseSSL     bool   `yaml:"use_ssl"`     // For custom S3
		PublicRead bool   `yaml:"public_read"` // Make objects public
	} `yaml:"storage"`
}

type ProviderConfig struct {
	Name              string            `yaml:"name"`
	Kind              string            `yaml:"kind"`
	Endpoint          string            `yaml:"endpoint"`
	FieldName         string            `yaml:"field_name"`
	Headers           map[string]string `yaml:"headers"`
	Stage             *bool             `yaml:"stage"`
	Timeout           time.Duration     `yaml:"timeout"`
	DirectURLTemplate string            `yaml:"direct_url_template"`
	Response          string            `yaml:"response"`
}

var AppConfig *Config

// Default возвращает конфигурацию без файла и переменных окружения
func Default() *Config {
	var cfg Config

	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 3000
	cfg.Server.Env = "production"

	cfg.Relay.DefaultProvider = "quax"
	cfg.Relay.ScratchDir = filepath.Join(os.TempDir(), "imgrelay")
	cfg.Relay.MaxBodyBytes = 20 * 1024 * 1024 // 20MB
	cfg.Relay.ImageQuality = 85
	cfg.Relay.ScratchSweepInterval = 10 * time.Minute
	cfg.Relay.ScratchMaxAge = time.Hour

	cfg.Storage.Provider = "bucket"

	return &cfg
}

// LoadConfig загружает .env, config.yaml и переменные окружения в AppConfig
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig = cfg
}

// Load собирает конфиг: defaults < YAML (если файл есть) < окружение
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("Config file %s not found, using defaults", path)
			return nil
		}
		return fmt.Errorf("failed to open config file at %s: %w", path, err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse config file at %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = n
		}
		return nil
	}

	setString("SERVER_HOST", &cfg.Server.Host)
	setString("SERVER_ENV", &cfg.Server.Env)
	if err := setInt("SERVER_PORT", &cfg.Server.Port); err != nil {
		return err
	}

	setString("RELAY_DEFAULT_PROVIDER", &cfg.Relay.DefaultProvider)
	setString("RELAY_SCRATCH_DIR", &cfg.Relay.ScratchDir)
	if v := os.Getenv("RELAY_MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid RELAY_MAX_BODY_BYTES: %w", err)
		}
		cfg.Relay.MaxBodyBytes = n
	}
	if err := setInt("RELAY_MAX_DIMENSION", &cfg.Relay.MaxDimension); err != nil {
		return err
	}

	setString("STORAGE_TYPE", &cfg.Storage.Type)
	setString("STORAGE_BUCKET", &cfg.Storage.Bucket)
	setString("STORAGE_ENDPOINT", &cfg.Storage.Endpoint)
	setString("STORAGE_REGION", &cfg.Storage.Region)
	setString("STORAGE_ACCESS_KEY", &cfg.Storage.AccessKey)
	setString("STORAGE_SECRET_KEY", &cfg.Storage.SecretKey)
	setString("STORAGE_BASE_URL", &cfg.Storage.BaseURL)
	return nil
}
