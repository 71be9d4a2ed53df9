// Package config 统一配置管理
//
// 配置加载策略：
//  1. 从 .env 加载敏感信息（JWT_SECRET、数据库/Redis 密码）和 APP_ENV
//  2. 根据 APP_ENV 加载对应的 configs/{env}.yaml 配置文件
//  3. 环境变量可覆盖 YAML 配置
//
// 凭据单一数据源：密码/密钥只存在 .env 文件中，YAML 中不存储任何密码。
//
// 使用方式：
//   - 开发环境: APP_ENV=dev (默认)
//   - 测试环境: APP_ENV=test
//   - 生产环境: APP_ENV=prod
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment 环境类型
type Environment string

const (
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
	EnvDevelopment Environment = "dev"
)

// YAMLConfig YAML 配置文件结构
type YAMLConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port string `yaml:"port"`
}

// DatabaseConfig MongoDB 配置
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"-"` // 只从 MONGO_PASSWORD 环境变量读取
	Name     string `yaml:"name"`
	URI      string `yaml:"uri"` // 直接指定连接 URI（优先于 host/port）
}

// RedisConfig Redis 配置（用户摘要缓存，可选）
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	DB       int    `yaml:"db"`
	Password string `yaml:"-"` // 只从 REDIS_PASSWORD 环境变量读取
}

// AuthConfig 认证配置
// 注意：JWTSecret/AdminEmail/AdminPassword 只从环境变量读取，不存储在 YAML 中
type AuthConfig struct {
	JWTSecret        string        `yaml:"-"`                 // 只从 JWT_SECRET 环境变量读取
	AccessTokenTTL   time.Duration `yaml:"access_token_ttl"`  // 例如 "15m"
	RefreshTokenTTL  time.Duration `yaml:"refresh_token_ttl"` // 例如 "168h"
	StrictRevalidate bool          `yaml:"strict_revalidate"` // 每个请求回源校验角色/状态
	CacheTTL         time.Duration `yaml:"cache_ttl"`         // 严格模式用户摘要缓存 TTL
	AdminEmail       string        `yaml:"-"`                 // 只从 ADMIN_EMAIL 环境变量读取
	AdminPassword    string        `yaml:"-"`                 // 只从 ADMIN_PASSWORD 环境变量读取
}

// UnmarshalYAML 手动解析 AuthConfig
//
// yaml.v3 不支持把 "15m" 这类字符串解码为 time.Duration，
// 这里显式走 time.ParseDuration；缺省字段保留已有值（默认值或 common.yaml）。
func (a *AuthConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		AccessTokenTTL   string `yaml:"access_token_ttl"`
		RefreshTokenTTL  string `yaml:"refresh_token_ttl"`
		StrictRevalidate *bool  `yaml:"strict_revalidate"`
		CacheTTL         string `yaml:"cache_ttl"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	set := func(dst *time.Duration, field, s string) error {
		if s == "" {
			return nil
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		*dst = d
		return nil
	}
	if err := set(&a.AccessTokenTTL, "access_token_ttl", raw.AccessTokenTTL); err != nil {
		return err
	}
	if err := set(&a.RefreshTokenTTL, "refresh_token_ttl", raw.RefreshTokenTTL); err != nil {
		return err
	}
	if err := set(&a.CacheTTL, "cache_ttl", raw.CacheTTL); err != nil {
		return err
	}
	if raw.StrictRevalidate != nil {
		a.StrictRevalidate = *raw.StrictRevalidate
	}
	return nil
}

// Config 应用配置（最终使用的配置）
type Config struct {
	Env      Environment
	MongoURI string
	DBName   string
	Redis    RedisConfig
	RedisURL string
	APIPort  string
	Auth     AuthConfig
}

var configPaths = []string{
	"configs",
	"../configs",
	"../../configs",
	"../../../configs",
}

var envPaths = []string{
	".env",
	"../.env",
	"../../.env",
	"../../../.env",
}

// Load 加载配置
// 1. 加载 .env（敏感信息 + APP_ENV）
// 2. 根据 APP_ENV 加载 configs/{env}.yaml
// 3. 构建最终配置
func Load() *Config {
	// 加载 .env
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	// 解析环境
	env := parseEnv(getEnv("APP_ENV", "dev"))

	// 加载 YAML 配置
	yamlCfg := loadYAMLConfig(env)

	// 从环境变量获取敏感信息
	yamlCfg.Database.Password = os.Getenv("MONGO_PASSWORD")
	yamlCfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	yamlCfg.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	yamlCfg.Auth.AdminEmail = os.Getenv("ADMIN_EMAIL")
	yamlCfg.Auth.AdminPassword = os.Getenv("ADMIN_PASSWORD")

	// 构建最终配置
	cfg := &Config{
		Env:      env,
		MongoURI: buildMongoURI(yamlCfg.Database),
		DBName:   yamlCfg.Database.Name,
		Redis:    yamlCfg.Redis,
		RedisURL: buildRedisURL(yamlCfg.Redis),
		APIPort:  yamlCfg.Server.Port,
		Auth:     yamlCfg.Auth,
	}

	return cfg
}

// loadYAMLConfig 加载 YAML 配置文件
// 加载顺序：默认值 → common.yaml → {env}.yaml
func loadYAMLConfig(env Environment) *YAMLConfig {
	// 1. 初始化默认值
	cfg := &YAMLConfig{
		Server:   ServerConfig{Port: "8000"},
		Database: DatabaseConfig{Host: "localhost", Port: 27017, Name: "moderation_admin"},
		Redis:    RedisConfig{Host: "localhost", Port: 6379, DB: 0},
		Auth: AuthConfig{
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 7 * 24 * time.Hour,
			CacheTTL:        30 * time.Second,
		},
	}

	// 2. 加载 common.yaml（公共配置）
	for _, base := range configPaths {
		path := filepath.Join(base, "common.yaml")
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, cfg)
			break
		}
	}

	// 3. 加载 {env}.yaml（环境特定配置，覆盖公共配置）
	filename := fmt.Sprintf("%s.yaml", env)
	for _, base := range configPaths {
		path := filepath.Join(base, filename)
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, cfg)
			break
		}
	}

	return cfg
}

// buildMongoURI 构建 MongoDB 连接字符串
func buildMongoURI(db DatabaseConfig) string {
	if db.URI != "" {
		return db.URI
	}
	if db.User != "" && db.Password != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%d", db.User, db.Password, db.Host, db.Port)
	}
	return fmt.Sprintf("mongodb://%s:%d", db.Host, db.Port)
}

// buildRedisURL 构建 Redis 连接字符串
func buildRedisURL(r RedisConfig) string {
	if r.Password != "" {
		return fmt.Sprintf("redis://:%s@%s:%d/%d", r.Password, r.Host, r.Port, r.DB)
	}
	return fmt.Sprintf("redis://%s:%d/%d", r.Host, r.Port, r.DB)
}

func parseEnv(env string) Environment {
	switch strings.ToLower(env) {
	case "test":
		return EnvTest
	case "prod", "production":
		return EnvProduction
	default:
		return EnvDevelopment
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsTest 是否为测试环境
func (c *Config) IsTest() bool {
	return c.Env == EnvTest
}

// String 返回配置摘要（隐藏密码）
func (c *Config) String() string {
	return fmt.Sprintf("Config{Env: %s, Mongo: %s, DB: %s, Port: %s, Strict: %v}",
		c.Env, maskPassword(c.MongoURI), c.DBName, c.APIPort, c.Auth.StrictRevalidate)
}

// maskPassword 隐藏密码
func maskPassword(url string) string {
	re := regexp.MustCompile(`(://[^:/]*:)([^@]+)(@)`)
	return re.ReplaceAllString(url, "${1}***${3}")
}
