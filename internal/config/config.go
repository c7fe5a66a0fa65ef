package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigFile = "data/config.yaml"
	configFileEnvKey  = "CONFIG_FILE"
)

type config struct {
	Telegram     TelegramConfig     `yaml:"telegram"`
	App          AppConfig          `yaml:"app"`
	Postgres     PostgresConfig     `yaml:"postgres"`
	SQLite       SQLiteConfig       `yaml:"sqlite"`
	Memcached    MemcachedConfig    `yaml:"memcached"`
	Kafka        KafkaConfig        `yaml:"kafka"`
	GoogleSheets GoogleSheetsConfig `yaml:"google-sheets"`
	Metrics      MetricsConfig      `yaml:"metrics"`
	Jaeger       JaegerConfig       `yaml:"jaeger"`
}

type Service struct {
	config config
}

// New reads the file named by CONFIG_FILE, or data/config.yaml.
func New() (*Service, error) {
	path := os.Getenv(configFileEnvKey)
	if path == "" {
		path = defaultConfigFile
	}
	return NewFromFile(path)
}

func NewFromFile(path string) (*Service, error) {
	rawYAML, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config file")
	}
	return Parse(rawYAML)
}

func Parse(rawYAML []byte) (*Service, error) {
	s := &Service{config: defaults()}

	err := yaml.Unmarshal(rawYAML, &s.config)
	if err != nil {
		return nil, errors.Wrap(err, "parsing yaml")
	}

	if err = s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func defaults() config {
	return config{
		App: AppConfig{
			StorageBackend:    StorageMemory,
			CacheBackend:      CacheMemory,
			DashboardCacheTTL: 5 * time.Minute,
			RecentCount:       5,
			ExportDirectory:   "data/exports",
			ExportFileFormat:  FormatXLSX,
		},
		Postgres: PostgresConfig{Portnum: 5432, SSL: "disable"},
		SQLite:   SQLiteConfig{File: "data/expenses.db"},
		Metrics:  MetricsConfig{Address: ":8080"},
		Jaeger:   JaegerConfig{Service: "expense-tracker"},
	}
}

// Validate reports every configuration problem at once.
func (s *Service) Validate() error {
	var problems []string
	c := &s.config

	switch c.App.StorageBackend {
	case StorageMemory:
	case StoragePostgres:
		if c.Postgres.Hostname == "" || c.Postgres.Db == "" {
			problems = append(problems, "postgres host and db are required for postgres storage")
		}
	case StorageSQLite:
		if c.SQLite.File == "" {
			problems = append(problems, "sqlite path is required for sqlite storage")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown storage backend %q", c.App.StorageBackend))
	}

	switch c.App.CacheBackend {
	case CacheMemory:
	case CacheMemcached:
		if len(c.Memcached.NodeHosts) == 0 {
			problems = append(problems, "memcached hosts are required for memcached cache")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown cache backend %q", c.App.CacheBackend))
	}

	if c.App.DashboardCacheTTL < 0 {
		problems = append(problems, "dashboard cache ttl cannot be negative")
	}
	if c.App.RecentCount < 0 {
		problems = append(problems, "recent count cannot be negative")
	}

	switch c.App.ExportFileFormat {
	case FormatXLSX, FormatCSV:
	default:
		problems = append(problems, fmt.Sprintf("unknown export format %q", c.App.ExportFileFormat))
	}

	if len(c.Kafka.BrokerList) > 0 && c.Kafka.ExpTopic == "" {
		problems = append(problems, "kafka exports topic is required when brokers are set")
	}
	// the exporter worker reads the same records as the bot
	if len(c.Kafka.BrokerList) > 0 && c.App.StorageBackend == StorageMemory {
		problems = append(problems, "kafka exports need a shared storage backend (postgres or sqlite)")
	}

	if c.GoogleSheets.Spreadsheet != "" && c.GoogleSheets.Credentials == "" {
		problems = append(problems, "google sheets credentials file is required when spreadsheet id is set")
	}

	if len(problems) > 0 {
		return errors.Errorf("invalid configuration:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func (s *Service) Telegram() *TelegramConfig {
	return &s.config.Telegram
}

func (s *Service) App() *AppConfig {
	return &s.config.App
}

func (s *Service) Postgres() *PostgresConfig {
	return &s.config.Postgres
}

func (s *Service) SQLite() *SQLiteConfig {
	return &s.config.SQLite
}

func (s *Service) Memcached() *MemcachedConfig {
	return &s.config.Memcached
}

func (s *Service) Kafka() *KafkaConfig {
	return &s.config.Kafka
}

func (s *Service) GoogleSheets() *GoogleSheetsConfig {
	return &s.config.GoogleSheets
}

func (s *Service) Metrics() *MetricsConfig {
	return &s.config.Metrics
}

func (s *Service) Jaeger() *JaegerConfig {
	return &s.config.Jaeger
}
