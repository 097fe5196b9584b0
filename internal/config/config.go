package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"ptbxl-annotator/common/config"

	"gopkg.in/yaml.v3"
)

// Config 注释生成器配置
// 优先级：环境变量 > YAML 配置文件 > 默认值；命令行参数在 cmd 中最后覆盖。
type Config struct {
	Database config.DatabaseConfig `yaml:"database"`
	Redis    config.RedisConfig    `yaml:"redis"`
	MQTT     config.MQTTConfig     `yaml:"mqtt"`
	HTTP     config.HTTPConfig     `yaml:"http"`

	// 注释生成器特定配置
	Annotator struct {
		Workers         int    `yaml:"workers"`          // 并行生成注释的 worker 数
		DictionaryTable string `yaml:"dictionary_table"` // 字典来源为 PostgreSQL 时的表名
		MetricsFile     string `yaml:"metrics_file"`     // 指标 textfile 路径，空表示不写
	} `yaml:"annotator"`

	// 注释文档的附加发布目标（输出目录始终写入）
	Publish struct {
		Redis struct {
			Enabled bool   `yaml:"enabled"`
			Stream  string `yaml:"stream"` // 如 "ptbxl:annotations"
		} `yaml:"redis"`
		MQTT struct {
			Enabled     bool   `yaml:"enabled"`
			TopicPrefix string `yaml:"topic_prefix"` // 如 "ptbxl/annotations"
		} `yaml:"mqtt"`
	} `yaml:"publish"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Default 默认配置
func Default() *Config {
	cfg := &Config{}

	cfg.Database.Port = 5432
	cfg.Database.SSLMode = "disable"
	cfg.Database.MaxConns = 4
	cfg.Database.MaxIdle = 2

	cfg.Redis.Addr = "localhost:6379"

	cfg.MQTT.Broker = "tcp://localhost:1883"
	cfg.MQTT.ClientID = "ptbxl-annotator"
	cfg.MQTT.QoS = 1

	cfg.HTTP.Timeout = 2 * time.Minute
	cfg.HTTP.RetryCount = 2

	cfg.Annotator.Workers = runtime.NumCPU()
	cfg.Annotator.DictionaryTable = "ptbxl_dictionary"

	cfg.Publish.Redis.Stream = "ptbxl:annotations"
	cfg.Publish.MQTT.TopicPrefix = "ptbxl/annotations"

	cfg.Log.Level = "info"
	cfg.Log.Format = "console"

	return cfg
}

// Load 加载配置；ANNOTATOR_CONFIG 指定的 YAML 文件可选
func Load() (*Config, error) {
	return LoadFile(os.Getenv("ANNOTATOR_CONFIG"))
}

// LoadFile 读取 YAML 配置文件（path 为空时跳过），再用环境变量覆盖
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadEnv() error {
	c.Database.LoadFromEnv("DB")
	c.Redis.LoadFromEnv("REDIS")
	c.MQTT.LoadFromEnv("MQTT")
	c.HTTP.LoadFromEnv("HTTP")

	var err error
	if c.Annotator.Workers, err = getEnvInt("ANNOTATOR_WORKERS", c.Annotator.Workers); err != nil {
		return err
	}
	c.Annotator.DictionaryTable = getEnv("ANNOTATOR_DICTIONARY_TABLE", c.Annotator.DictionaryTable)
	c.Annotator.MetricsFile = getEnv("ANNOTATOR_METRICS_FILE", c.Annotator.MetricsFile)

	if c.Publish.Redis.Enabled, err = getEnvBool("REDIS_ENABLED", c.Publish.Redis.Enabled); err != nil {
		return err
	}
	c.Publish.Redis.Stream = getEnv("ANNOTATION_STREAM", c.Publish.Redis.Stream)

	if c.Publish.MQTT.Enabled, err = getEnvBool("MQTT_ENABLED", c.Publish.MQTT.Enabled); err != nil {
		return err
	}
	c.Publish.MQTT.TopicPrefix = getEnv("MQTT_TOPIC_PREFIX", c.Publish.MQTT.TopicPrefix)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	return nil
}

// Validate 检查配置取值
func (c *Config) Validate() error {
	if c.Annotator.Workers <= 0 {
		return fmt.Errorf("annotator workers must be positive, got %d", c.Annotator.Workers)
	}
	if c.Publish.Redis.Enabled && c.Publish.Redis.Stream == "" {
		return fmt.Errorf("redis publishing enabled without a stream name")
	}
	if c.Publish.MQTT.Enabled && c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt publishing enabled without a broker")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
