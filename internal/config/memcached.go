package config

import "time"

type MemcachedConfig struct {
	NodeHosts []string      `yaml:"hosts"`
	IOTimeout time.Duration `yaml:"timeout"`
}

func (s *MemcachedConfig) Hosts() []string {
	return s.NodeHosts
}

func (s *MemcachedConfig) Timeout() time.Duration {
	return s.IOTimeout
}
