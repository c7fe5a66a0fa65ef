package config

type SQLiteConfig struct {
	File string `yaml:"path"`
}

func (s *SQLiteConfig) Path() string {
	return s.File
}
