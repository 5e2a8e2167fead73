package config

import (
	"time"

	"github.com/blues/des/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Task     TaskConfig     `mapstructure:"task"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// LedgerConfig XRP Ledger 节点配置
type LedgerConfig struct {
	WsURL     string `mapstructure:"ws_url"`     // rippled websocket 地址
	FaucetURL string `mapstructure:"faucet_url"` // 测试网水龙头地址
	Timeout   int    `mapstructure:"timeout"`    // 单次请求超时（秒）
}

// TaskConfig 后台扫描任务配置
type TaskConfig struct {
	CreateInterval int `mapstructure:"create_interval"` // 托管创建扫描间隔（秒）
	FinishInterval int `mapstructure:"finish_interval"` // 托管释放扫描间隔（秒）
	ReleaseWindow  int `mapstructure:"release_window"`  // 托管释放等待窗口（秒）
	CancelWindow   int `mapstructure:"cancel_window"`   // 托管可回收窗口（秒），0 表示不设置
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, stderr, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

// RequestTimeout 账本调用超时
func (l LedgerConfig) RequestTimeout() time.Duration {
	return time.Duration(l.Timeout) * time.Second
}

// ReleaseAfter 托管释放等待时长
func (t TaskConfig) ReleaseAfter() time.Duration {
	return time.Duration(t.ReleaseWindow) * time.Second
}

// CancelAfter 托管回收等待时长，0 表示未启用
func (t TaskConfig) CancelAfter() time.Duration {
	return time.Duration(t.CancelWindow) * time.Second
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/des")

	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "donation_escrow")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("ledger.ws_url", "wss://s.altnet.rippletest.net:51233")
	viper.SetDefault("ledger.faucet_url", "https://faucet.altnet.rippletest.net/accounts")
	viper.SetDefault("ledger.timeout", 15)
	viper.SetDefault("task.create_interval", 60)
	viper.SetDefault("task.finish_interval", 300)
	viper.SetDefault("task.release_window", 24*60*60)
	viper.SetDefault("task.cancel_window", 0)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	// 自动读取环境变量
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}
