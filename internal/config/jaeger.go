package config

type JaegerConfig struct {
	Agent   string `yaml:"agent"`
	Service string `yaml:"service-name"`
}

func (s *JaegerConfig) AgentAddr() string {
	return s.Agent
}

func (s *JaegerConfig) ServiceName() string {
	return s.Service
}
