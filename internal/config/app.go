package config

import "time"

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"

	CacheMemory    = "memory"
	CacheMemcached = "memcached"

	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

type AppConfig struct {
	StorageBackend    string        `yaml:"storage"`
	CacheBackend      string        `yaml:"cache"`
	DashboardCacheTTL time.Duration `yaml:"dashboard-cache-ttl"`
	RecentCount       int           `yaml:"recent-count"`
	ExportDirectory   string        `yaml:"export-dir"`
	ExportFileFormat  string        `yaml:"export-format"`
}

func (s *AppConfig) Storage() string {
	return s.StorageBackend
}

func (s *AppConfig) Cache() string {
	return s.CacheBackend
}

func (s *AppConfig) DashboardTTL() time.Duration {
	return s.DashboardCacheTTL
}

func (s *AppConfig) RecentExpenses() int {
	return s.RecentCount
}

func (s *AppConfig) ExportDir() string {
	return s.ExportDirectory
}

func (s *AppConfig) ExportFormat() string {
	return s.ExportFileFormat
}
