package config

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v2"
)

type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Mode     string `yaml:"mode" json:"mode"` // development | production
}

type WebConfig struct {
	Host  string `yaml:"host" json:"host"`
	Port  int    `yaml:"port" json:"port"`
	Debug bool   `yaml:"debug" json:"debug"`
}

type DBConfig struct {
	Type     string `yaml:"type" json:"type"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Passwd   string `yaml:"passwd" json:"passwd"`
	MaxConn  int    `yaml:"max_conn" json:"max_conn"`
	IdleConn int    `yaml:"idle_conn" json:"idle_conn"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type RedisConfig struct {
	Addr   string `yaml:"addr" json:"addr"`
	Passwd string `yaml:"passwd" json:"passwd"`
	DB     int    `yaml:"db" json:"db"`
}

// IyzicoConfig holds hosted-checkout provider credentials. CallbackURL is the
// absolute URL the provider redirects the buyer to after checkout completes.
type IyzicoConfig struct {
	BaseURL     string        `yaml:"base_url" json:"base_url"`
	APIKey      string        `yaml:"api_key" json:"api_key"`
	SecretKey   string        `yaml:"secret_key" json:"secret_key"`
	CallbackURL string        `yaml:"callback_url" json:"callback_url"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
}

type SmtpConfig struct {
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Username string `yaml:"username" json:"username"`
	Passwd   string `yaml:"passwd" json:"passwd"`
	From     string `yaml:"from" json:"from"`
	FromName string `yaml:"from_name" json:"from_name"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type AppConfig struct {
	System   SysConfig    `yaml:"system" json:"system"`
	Web      WebConfig    `yaml:"web" json:"web"`
	Database DBConfig     `yaml:"database" json:"database"`
	Redis    RedisConfig  `yaml:"redis" json:"redis"`
	Iyzico   IyzicoConfig `yaml:"iyzico" json:"iyzico"`
	Smtp     SmtpConfig   `yaml:"smtp" json:"smtp"`
	Logger   LogConfig    `yaml:"logger" json:"logger"`
}

func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) IsDevelopment() bool {
	return c.System.Mode == "development"
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "tamkeenpay",
		Location: "Europe/Istanbul",
		Workdir:  "/var/tamkeenpay",
		Mode:     "production",
	},
	Web: WebConfig{
		Host:  "0.0.0.0",
		Port:  1816,
		Debug: false,
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "tamkeenpay",
		User:     "postgres",
		Passwd:   "",
		MaxConn:  100,
		IdleConn: 10,
	},
	Redis: RedisConfig{
		Addr: "127.0.0.1:6379",
		DB:   0,
	},
	Iyzico: IyzicoConfig{
		BaseURL: "https://sandbox-api.iyzipay.com",
		Timeout: 30 * time.Second,
	},
	Smtp: SmtpConfig{
		Host:     "smtp-relay.brevo.com",
		Port:     587,
		From:     "no-reply@tamkeen.org",
		FromName: "Tamkeen Organization",
	},
	Logger: LogConfig{
		Mode:       "production",
		FileEnable: true,
		Filename:   "/var/tamkeenpay/tamkeenpay.log",
	},
}

func setEnvString(name string, val *string) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		*val = evalue
	}
}

func setEnvInt(name string, val *int) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		*val = cast.ToInt(evalue)
	}
}

func setEnvBool(name string, val *bool) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		*val = cast.ToBool(evalue)
	}
}

// LoadConfig reads the yaml configuration file and applies TAMKEENPAY_*
// environment overrides on top of it. A missing file yields the defaults.
func LoadConfig(cfile string) *AppConfig {
	cfg := DefaultAppConfig
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			cfg = new(AppConfig)
			if err := yaml.Unmarshal(data, cfg); err != nil {
				fmt.Fprintf(os.Stderr, "config parse error: %v\n", err)
				cfg = DefaultAppConfig
			}
		}
	}

	setEnvString("TAMKEENPAY_SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvString("TAMKEENPAY_SYSTEM_MODE", &cfg.System.Mode)
	setEnvString("TAMKEENPAY_WEB_HOST", &cfg.Web.Host)
	setEnvInt("TAMKEENPAY_WEB_PORT", &cfg.Web.Port)
	setEnvBool("TAMKEENPAY_WEB_DEBUG", &cfg.Web.Debug)
	setEnvString("TAMKEENPAY_DB_HOST", &cfg.Database.Host)
	setEnvInt("TAMKEENPAY_DB_PORT", &cfg.Database.Port)
	setEnvString("TAMKEENPAY_DB_NAME", &cfg.Database.Name)
	setEnvString("TAMKEENPAY_DB_USER", &cfg.Database.User)
	setEnvString("TAMKEENPAY_DB_PWD", &cfg.Database.Passwd)
	setEnvString("TAMKEENPAY_REDIS_ADDR", &cfg.Redis.Addr)
	setEnvString("TAMKEENPAY_REDIS_PWD", &cfg.Redis.Passwd)
	setEnvInt("TAMKEENPAY_REDIS_DB", &cfg.Redis.DB)
	setEnvString("TAMKEENPAY_IYZICO_BASE_URL", &cfg.Iyzico.BaseURL)
	setEnvString("TAMKEENPAY_IYZICO_API_KEY", &cfg.Iyzico.APIKey)
	setEnvString("TAMKEENPAY_IYZICO_SECRET_KEY", &cfg.Iyzico.SecretKey)
	setEnvString("TAMKEENPAY_IYZICO_CALLBACK_URL", &cfg.Iyzico.CallbackURL)
	setEnvString("TAMKEENPAY_SMTP_HOST", &cfg.Smtp.Host)
	setEnvInt("TAMKEENPAY_SMTP_PORT", &cfg.Smtp.Port)
	setEnvString("TAMKEENPAY_SMTP_USERNAME", &cfg.Smtp.Username)
	setEnvString("TAMKEENPAY_SMTP_PWD", &cfg.Smtp.Passwd)

	return cfg
}
