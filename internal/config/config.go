package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"timed-quiz/internal/notify"
)

type Config struct {
	Env    string `yaml:"env"`
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		ID       string `yaml:"id"`
		Path     string `yaml:"path"`
		TTL      string `yaml:"ttl"`
		Duration string `yaml:"duration"`
	} `yaml:"quiz"`
	Notify struct {
		Kind      string            `yaml:"kind"` // log, smtp or amqp
		Recipient string            `yaml:"recipient"`
		Timeout   string            `yaml:"timeout"`
		SMTP      notify.SMTPConfig `yaml:"smtp"`
		AMQP      notify.AMQPConfig `yaml:"amqp"`
	} `yaml:"notify"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// DefaultQuizID is served when neither the config nor the client picks a quiz.
const DefaultQuizID = "general-knowledge"

// QuizID returns the configured default quiz.
func (c Config) QuizID() string {
	if c.Quiz.ID == "" {
		return DefaultQuizID
	}
	return c.Quiz.ID
}
