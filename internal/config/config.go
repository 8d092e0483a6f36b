package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"

	"zmq_listener/internal/domain/notify"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	ZMQ     ZMQConfig     `yaml:"zmq"`
	Logger  LoggerConfig  `yaml:"logger"`
	Metrics MetricsConfig `yaml:"metrics"`
	Printer PrinterConfig `yaml:"printer"`
	Relay   RelayConfig   `yaml:"relay"`
	Kafka   KafkaConfig   `yaml:"kafka"`
	Valkey  ValkeyConfig  `yaml:"valkey"`
	Mail    MailConfig    `yaml:"mail"`
}

type ZMQConfig struct {
	Host   string   `yaml:"host" env:"ZMQ_HOST" env-default:"127.0.0.1"`
	Port   int      `yaml:"port" env:"ZMQ_PORT" env-default:"28332"`
	Topics []string `yaml:"topics" env:"ZMQ_TOPICS" env-default:"hashblock,hashtx,rawblock,rawtx"`
}

type LoggerConfig struct {
	Driver       string `yaml:"driver" env:"LOG_DRIVER" env-default:"zap"`
	Level        string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	GRPCAddress  string `yaml:"grpc_address" env:"LOG_GRPC_ADDRESS"`
	FallbackPath string `yaml:"fallback_path" env:"LOG_FALLBACK_PATH"`
	ServiceName  string `yaml:"service_name" env:"LOG_SERVICE_NAME" env-default:"zmq_listener"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED" env-default:"false"`
	Address string `yaml:"address" env:"METRICS_ADDRESS" env-default:":2112"`
}

// cleanenv fills zero values from env-default, so flags here default to false.
type PrinterConfig struct {
	Disabled bool `yaml:"disabled" env:"PRINTER_DISABLED"`
}

type RelayConfig struct {
	Encoding string `yaml:"encoding" env:"RELAY_ENCODING" env-default:"json"`
}

type KafkaConfig struct {
	Enabled bool     `yaml:"enabled" env:"KAFKA_ENABLED" env-default:"false"`
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS"`
	Topic   string   `yaml:"topic" env:"KAFKA_TOPIC" env-default:"node-notifications"`
}

type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled" env:"VALKEY_ENABLED" env-default:"false"`
	Host    string `yaml:"host" env:"VALKEY_HOST" env-default:"127.0.0.1"`
	Port    int    `yaml:"port" env:"VALKEY_PORT" env-default:"6379"`
	Stream  string `yaml:"stream" env:"VALKEY_STREAM" env-default:"node-notifications"`
}

type MailConfig struct {
	Enabled  bool     `yaml:"enabled" env:"MAIL_ENABLED" env-default:"false"`
	Host     string   `yaml:"host" env:"MAIL_HOST"`
	Port     int      `yaml:"port" env:"MAIL_PORT" env-default:"25"`
	Username string   `yaml:"username" env:"MAIL_USERNAME"`
	Password string   `yaml:"password" env:"MAIL_PASSWORD"`
	From     string   `yaml:"from" env:"MAIL_FROM"`
	To       []string `yaml:"to" env:"MAIL_TO"`
}

func MustLoad() *Config {
	cfg, err := Load(fetchConfigPath())
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

func MustLoadPath(configPath string) *Config {
	if configPath == "" {
		panic("config path is empty")
	}
	cfg, err := Load(configPath)
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

// Load reads the YAML file at configPath with env overrides, or only the
// environment when configPath is empty, and validates the result.
func Load(configPath string) (*Config, error) {
	var cfg Config

	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("cannot read config from env: %w", err)
		}
	} else {
		// check if file exists
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", configPath)
		}
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("cannot read config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// fetchConfigPath fetches config path from command line flag or environment variable.
// Priority: flag > env > default.
// Default value is empty string.
func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}

func (c *Config) Validate() error {
	if err := c.ZMQ.validate(); err != nil {
		return err
	}
	switch c.Logger.Driver {
	case "zap":
	case "loglib":
		if c.Logger.GRPCAddress == "" || c.Logger.FallbackPath == "" {
			return errors.New("logger.grpc_address and logger.fallback_path are required for loglib")
		}
	default:
		return fmt.Errorf("unsupported logger driver: %s", c.Logger.Driver)
	}
	switch c.Relay.Encoding {
	case "json", "cbor":
	default:
		return fmt.Errorf("unsupported relay encoding: %s", c.Relay.Encoding)
	}
	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		return errors.New("kafka.brokers and kafka.topic are required when kafka is enabled")
	}
	if c.Valkey.Enabled {
		if err := validateHostPort("valkey", c.Valkey.Host, c.Valkey.Port); err != nil {
			return err
		}
		if c.Valkey.Stream == "" {
			return errors.New("valkey.stream is empty")
		}
	}
	if c.Mail.Enabled {
		if err := validateHostPort("mail", c.Mail.Host, c.Mail.Port); err != nil {
			return err
		}
		if c.Mail.From == "" || len(c.Mail.To) == 0 {
			return errors.New("mail.from and mail.to are required when mail is enabled")
		}
	}
	return nil
}

func (c ZMQConfig) validate() error {
	if err := validateHostPort("zmq", c.Host, c.Port); err != nil {
		return err
	}
	_, err := c.TopicSet()
	return err
}

func validateHostPort(section, host string, port int) error {
	if host == "" {
		return fmt.Errorf("%s.host is empty", section)
	}
	if port <= 0 || port > 65535 {
		return fmt.Errorf("%s.port is invalid: %d", section, port)
	}
	return nil
}

// Endpoint returns the publisher address in ZeroMQ form, e.g. tcp://127.0.0.1:28332.
func (c ZMQConfig) Endpoint() string {
	u := &url.URL{
		Scheme: "tcp",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
	}
	return u.String()
}

// TopicSet parses the configured topic names, dropping duplicates.
func (c ZMQConfig) TopicSet() ([]notify.Topic, error) {
	if len(c.Topics) == 0 {
		return nil, errors.New("zmq.topics is empty")
	}
	seen := make(map[notify.Topic]bool, len(c.Topics))
	topics := make([]notify.Topic, 0, len(c.Topics))
	for _, name := range c.Topics {
		t, err := notify.ParseTopic(name)
		if err != nil {
			return nil, fmt.Errorf("zmq.topics: %w", err)
		}
		if !seen[t] {
			seen[t] = true
			topics = append(topics, t)
		}
	}
	return topics, nil
}

// Redacted returns the SMTP address with the password masked, for logging.
func (c MailConfig) Redacted() string {
	u := &url.URL{
		Scheme: "smtp",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
	}
	if c.Username != "" {
		u.User = url.UserPassword(c.Username, "REDACTED")
	}
	return u.String()
}
