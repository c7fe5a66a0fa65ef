package config

type MetricsConfig struct {
	Address string `yaml:"addr"`
}

func (s *MetricsConfig) Addr() string {
	return s.Address
}
