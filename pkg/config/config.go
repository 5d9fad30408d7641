package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"StockAtlas/pkg/adapter"
)

// Config 应用配置
type Config struct {
	App struct {
		Name string `yaml:"name"`
		Env  string `yaml:"env"`
	} `yaml:"app"`

	DataSources struct {
		Eastmoney struct {
			Enabled bool   `yaml:"enabled"`
			BaseURL string `yaml:"base_url"`
		} `yaml:"eastmoney"`
		Cls struct {
			Enabled bool   `yaml:"enabled"`
			BaseURL string `yaml:"base_url"`
		} `yaml:"cls"`
		CSV struct {
			Enabled bool   `yaml:"enabled"`
			Path    string `yaml:"path"`
		} `yaml:"csv"`
		Static struct {
			Enabled bool                  `yaml:"enabled"`
			Stocks  []adapter.StaticStock `yaml:"stocks"`
		} `yaml:"static"`
	} `yaml:"data_sources"`

	Database struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		DBName   string `yaml:"dbname"`
		SSLMode  string `yaml:"sslmode"`
	} `yaml:"database"`

	NATS struct {
		Enabled   bool   `yaml:"enabled"`
		URL       string `yaml:"url"`
		ClusterID string `yaml:"cluster_id"`
		ClientID  string `yaml:"client_id"`
		Subject   string `yaml:"subject"`
	} `yaml:"nats"`

	API struct {
		Port         string        `yaml:"port"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"api"`

	Pipeline struct {
		Workers       int           `yaml:"workers"`
		FetchTimeout  time.Duration `yaml:"fetch_timeout"`
		FetchRetries  int           `yaml:"fetch_retries"`
		FetchBackoff  time.Duration `yaml:"fetch_backoff"`
		CronSpec      string        `yaml:"cron_spec"`      // 定时运行表达式，空则不定时运行
		RetentionDays int           `yaml:"retention_days"` // 热点保留天数，0 取 30
	} `yaml:"pipeline"`

	RulesPath string `yaml:"rules_path"` // 分类规则与词表文件，空则使用内置表
}

// LoadConfig 从文件加载配置
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	overrideFromEnv(&config)
	applyDefaults(&config)

	return &config, nil
}

// overrideFromEnv 使用环境变量覆盖配置
func overrideFromEnv(config *Config) {
	if env := os.Getenv("APP_NAME"); env != "" {
		config.App.Name = env
	}
	if env := os.Getenv("APP_ENV"); env != "" {
		config.App.Env = env
	}

	if env := os.Getenv("EASTMONEY_BASE_URL"); env != "" {
		config.DataSources.Eastmoney.BaseURL = env
	}
	if env := os.Getenv("CLS_BASE_URL"); env != "" {
		config.DataSources.Cls.BaseURL = env
	}

	if env := os.Getenv("DB_HOST"); env != "" {
		config.Database.Host = env
	}
	if env := os.Getenv("DB_PORT"); env != "" {
		var port int
		fmt.Sscanf(env, "%d", &port)
		if port > 0 {
			config.Database.Port = port
		}
	}
	if env := os.Getenv("DB_USER"); env != "" {
		config.Database.User = env
	}
	if env := os.Getenv("DB_PASSWORD"); env != "" {
		config.Database.Password = env
	}
	if env := os.Getenv("DB_NAME"); env != "" {
		config.Database.DBName = env
	}

	if env := os.Getenv("NATS_URL"); env != "" {
		config.NATS.URL = env
	}
	if env := os.Getenv("NATS_CLUSTER_ID"); env != "" {
		config.NATS.ClusterID = env
	}
	if env := os.Getenv("NATS_CLIENT_ID"); env != "" {
		config.NATS.ClientID = env
	}

	if env := os.Getenv("API_PORT"); env != "" {
		config.API.Port = env
	}
	if env := os.Getenv("RULES_PATH"); env != "" {
		config.RulesPath = env
	}
}

// applyDefaults 填充未配置项的缺省值
func applyDefaults(config *Config) {
	if config.Pipeline.Workers <= 0 {
		config.Pipeline.Workers = 4
	}
	if config.Pipeline.FetchTimeout <= 0 {
		config.Pipeline.FetchTimeout = 30 * time.Second
	}
	if config.Pipeline.FetchBackoff <= 0 {
		config.Pipeline.FetchBackoff = 3 * time.Second
	}
	if config.Pipeline.RetentionDays <= 0 {
		config.Pipeline.RetentionDays = 30
	}
	if config.API.Port == "" {
		config.API.Port = "8080"
	}
}

// DSN 构建数据库连接字符串
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User,
		c.Database.Password, c.Database.DBName, c.Database.SSLMode,
	)
}

// GetDefaultConfigPath 获取默认配置文件路径
func GetDefaultConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev" // 默认开发环境
	}

	return fmt.Sprintf("configs/%s/app.yaml", env)
}
