package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	OAuth    OAuthConfig    `mapstructure:"oauth"`
	Email    EmailConfig    `mapstructure:"email"`
	Queue    QueueConfig    `mapstructure:"queue"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Comments CommentsConfig `mapstructure:"comments"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type OAuthConfig struct {
	Github GithubOAuthConfig `mapstructure:"github"`
}

type GithubOAuthConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURI  string `mapstructure:"redirect_uri"`
}

type EmailConfig struct {
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type QueueConfig struct {
	MailQueue  string `mapstructure:"mail_queue"`
	MaxWorkers int    `mapstructure:"max_workers"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

// CommentsConfig 评论子系统全局配置
type CommentsConfig struct {
	Secret             string                   `mapstructure:"secret"`               // 提交表单签名密钥（与 JWT 密钥独立）
	Salt               string                   `mapstructure:"salt"`                 // 确认 token 额外盐值
	ConfirmEmail       bool                     `mapstructure:"confirm_email"`        // 匿名评论是否需要邮件确认
	TimestampMaxAge    int64                    `mapstructure:"timestamp_max_age"`    // 表单 timestamp 最大有效期（秒）
	ConfirmExpireHours int                      `mapstructure:"confirm_expire_hours"` // 确认 token 有效期（小时）
	MaxLength          int                      `mapstructure:"max_length"`           // 评论最大长度（字符）
	ConfirmURLBase     string                   `mapstructure:"confirm_url_base"`     // 确认链接前缀
	Targets            map[string]TargetOptions `mapstructure:"targets"`              // 按 content_type 的目标选项
}

// TargetOptions 单个 content_type 的评论策略
type TargetOptions struct {
	WhoCanPost     string `mapstructure:"who_can_post"`     // all：任何人可发；users：仅登录用户
	AllowFeedback  bool   `mapstructure:"allow_feedback"`   // 是否允许点赞/点踩
	AllowFlagging  bool   `mapstructure:"allow_flagging"`   // 是否允许举报
	MaxThreadLevel int    `mapstructure:"max_thread_level"` // 最大回复嵌套层级，0 表示不允许回复
	IsPublic       bool   `mapstructure:"is_public"`        // 新评论是否默认公开（false 则进入待审核）
}

// OptionsFor 返回 content_type 对应的目标选项，未配置时回退到 default
func (c *CommentsConfig) OptionsFor(contentType string) TargetOptions {
	if opts, ok := c.Targets[contentType]; ok {
		return opts
	}
	if opts, ok := c.Targets["default"]; ok {
		return opts
	}
	// 无任何配置时的保守默认值
	return TargetOptions{
		WhoCanPost:     "all",
		AllowFeedback:  true,
		AllowFlagging:  false,
		MaxThreadLevel: 3,
		IsPublic:       true,
	}
}

func Load(configPath string) (*Config, error) {
	// 优先尝试读取 config.local.yaml（包含真实密钥，不提交到git）
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	// 检查 config.local.yaml 是否存在
	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// 环境变量覆盖
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
