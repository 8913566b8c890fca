package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ==================== 应用配置 ====================

// Config 应用配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Allegro  AllegroConfig  `mapstructure:"allegro"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Task     TaskConfig     `mapstructure:"task"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug | release
}

// DatabaseConfig Postgres 连接配置
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN 拼接 Postgres 连接串
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode,
	)
}

// AllegroConfig Allegro 应用配置
// 默认指向沙箱环境，生产环境通过配置文件/环境变量覆盖
type AllegroConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	AuthURL      string `mapstructure:"auth_url"`
	TokenURL     string `mapstructure:"token_url"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURI  string `mapstructure:"redirect_uri"`
}

// JWTConfig JWT 配置
type JWTConfig struct {
	SecretKey string `mapstructure:"secret_key"`
}

// TaskConfig 定时任务开关
type TaskConfig struct {
	TokenEnabled bool `mapstructure:"token_enabled"`
	OrderEnabled bool `mapstructure:"order_enabled"`
}

// Load 加载配置：配置文件 + ALLEGRO_ 前缀环境变量，环境变量优先
// 配置文件不存在时直接用默认值，部署侧可以纯靠环境变量跑起来
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("ALLEGRO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	return &cfg, nil
}

// setDefaults 默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "allegro_erp")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.sslmode", "disable")

	// 沙箱环境地址
	v.SetDefault("allegro.base_url", "https://api.allegro.pl.allegrosandbox.pl")
	v.SetDefault("allegro.auth_url", "https://allegro.pl.allegrosandbox.pl/auth/oauth/authorize")
	v.SetDefault("allegro.token_url", "https://allegro.pl.allegrosandbox.pl/auth/oauth/token")
	v.SetDefault("allegro.redirect_uri", "http://localhost:8080/api/oauth/callback")

	v.SetDefault("task.token_enabled", true)
	v.SetDefault("task.order_enabled", true)
}
