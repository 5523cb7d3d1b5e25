package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Refresh RefreshConfig `mapstructure:"refresh"`
	Sources SourcesConfig `mapstructure:"sources"`
	Update  UpdateConfig  `mapstructure:"update"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug or release
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

type HTTPConfig struct {
	Timeout        time.Duration `mapstructure:"timeout"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
	Proxy          string        `mapstructure:"proxy"`
	// 每个 host 的请求速率, 0 表示不限制
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
	Brotli    bool    `mapstructure:"brotli"`
	Location  string  `mapstructure:"location"`
}

type CacheConfig struct {
	Backend string      `mapstructure:"backend"` // memory or redis
	Redis   RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type RefreshConfig struct {
	BoxOffice time.Duration `mapstructure:"box_office"`
	TVRatings time.Duration `mapstructure:"tv_ratings"`
}

type SourcesConfig struct {
	Douban   string `mapstructure:"douban"`
	Bilibili string `mapstructure:"bilibili"`
	CMDB     string `mapstructure:"cmdb"`
	HuanTV   string `mapstructure:"huantv"`
	GitHub   string `mapstructure:"github"`
}

type UpdateConfig struct {
	Source  string `mapstructure:"source"` // note or github
	NoteURL string `mapstructure:"note_url"`
	Repo    string `mapstructure:"repo"`
	Key     string `mapstructure:"key"`
	IV      string `mapstructure:"iv"`
	// 诊断文件目录, 为空时跳过写入
	DiagnosticsDir string `mapstructure:"diagnostics_dir"`
}

const (
	UserAgentMobile  = "Mozilla/5.0 (Linux; Android 16; MCE16 Build/BP3A.250905.014; ) AppleWebKit/537.36 (KHTML, like Gecko) Version/4.0 Chrome/123.0.0.0 Mobile Safari/537.36 EdgA/123.0.2420.102"
	UserAgentDesktop = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36 Edg/123.0.2420.81"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8306)
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("http.timeout", 30*time.Second)
	v.SetDefault("http.connect_timeout", 15*time.Second)
	v.SetDefault("http.user_agent", UserAgentMobile)
	v.SetDefault("http.proxy", "")
	v.SetDefault("http.rate_limit", 0)
	v.SetDefault("http.rate_burst", 1)
	v.SetDefault("http.brotli", true)
	v.SetDefault("http.location", "Local")

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.prefix", "tvbox:")

	v.SetDefault("refresh.box_office", 12345*time.Millisecond)
	v.SetDefault("refresh.tv_ratings", 32123*time.Millisecond)

	v.SetDefault("sources.douban", "https://m.douban.com")
	v.SetDefault("sources.bilibili", "https://api.bilibili.com")
	v.SetDefault("sources.cmdb", "https://zgdypf.zgdypw.cn")
	v.SetDefault("sources.huantv", "https://tv-zone-api.huan.tv")
	v.SetDefault("sources.github", "https://api.github.com")

	v.SetDefault("update.source", "note")
	v.SetDefault("update.note_url", "https://share.note.youdao.com/yws/api/note/d56e2e56e3434f73519e10dc3b831662?sev=j1&cstk=LnuyBs-w")
	v.SetDefault("update.repo", "geoisam/TVB-Mobile")
	v.SetDefault("update.key", "tvbox-pjs-update")
	v.SetDefault("update.iv", "tvbox-pjs-update")
	v.SetDefault("update.diagnostics_dir", "data")
}

// Load reads config.yaml (optional), .env (optional) and TVBOX_* environment variables.
func Load(configPath string) (*Config, error) {
	// .env 不存在是正常的
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}

	// 环境变量替换 (使用 TVBOX_ 前缀)
	// 比如 TVBOX_SERVER_PORT=9090
	v.SetEnvPrefix("TVBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	switch c.Update.Source {
	case "note", "github":
	default:
		return fmt.Errorf("unknown update source %q", c.Update.Source)
	}
	if c.Refresh.BoxOffice <= 0 || c.Refresh.TVRatings <= 0 {
		return errors.New("refresh intervals must be positive")
	}
	return nil
}

// TimeLocation resolves http.location; unknown names fall back to time.Local.
func (c *Config) TimeLocation() *time.Location {
	if c.HTTP.Location == "" || c.HTTP.Location == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.HTTP.Location)
	if err != nil {
		return time.Local
	}
	return loc
}
