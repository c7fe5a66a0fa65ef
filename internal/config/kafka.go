package config

type KafkaConfig struct {
	BrokerList []string `yaml:"brokers"`
	Consumer   string   `yaml:"consumer-group"`
	ExpTopic   string   `yaml:"exports-topic"`
}

func (s *KafkaConfig) Brokers() []string {
	return s.BrokerList
}

func (s *KafkaConfig) ConsumerGroup() string {
	return s.Consumer
}

func (s *KafkaConfig) ExportsTopic() string {
	return s.ExpTopic
}

// Enabled reports whether exports should be queued instead of built in-process.
func (s *KafkaConfig) Enabled() bool {
	return len(s.BrokerList) > 0
}
