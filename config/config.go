package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v2"
)

type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host   string `yaml:"host" json:"host"`
	Port   int    `yaml:"port" json:"port"`
	Secret string `yaml:"secret" json:"secret"`
}

type DBConfig struct {
	Type   string `yaml:"type" json:"type"`
	Host   string `yaml:"host" json:"host"`
	Port   int    `yaml:"port" json:"port"`
	Name   string `yaml:"name" json:"name"`
	User   string `yaml:"user" json:"user"`
	Passwd string `yaml:"passwd" json:"passwd"`
	Debug  bool   `yaml:"debug" json:"debug"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type AppConfig struct {
	System   SysConfig `yaml:"system" json:"system"`
	Web      WebConfig `yaml:"web" json:"web"`
	Database DBConfig  `yaml:"database" json:"database"`
	Logger   LogConfig `yaml:"logger" json:"logger"`
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "SitePortal",
		Location: "Asia/Amman",
		Workdir:  "/var/siteportal",
		Debug:    true,
	},
	Web: WebConfig{
		Host:   "0.0.0.0",
		Port:   1890,
		Secret: "",
	},
	Database: DBConfig{
		Type:   "postgres",
		Host:   "127.0.0.1",
		Port:   5432,
		Name:   "siteportal",
		User:   "postgres",
		Passwd: "root",
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/siteportal/siteportal.log",
	},
}

func setEnvValue(name string, f func(v string)) {
	if v, ok := os.LookupEnv(name); ok {
		f(v)
	}
}

func setEnvBoolValue(name string, f func(v bool)) {
	if v, ok := os.LookupEnv(name); ok {
		f(cast.ToBool(v))
	}
}

func setEnvIntValue(name string, f func(v int)) {
	if v, ok := os.LookupEnv(name); ok {
		f(cast.ToInt(v))
	}
}

// LoadConfig reads the YAML config file when it exists, otherwise starts
// from defaults, then applies SITEPORTAL_* environment overrides.
func LoadConfig(cfile string) *AppConfig {
	cfg := new(AppConfig)
	*cfg = *DefaultAppConfig
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			cfg = new(AppConfig)
			if err := yaml.Unmarshal(data, cfg); err != nil {
				panic(err)
			}
		}
	}

	setEnvValue("SITEPORTAL_SYSTEM_WORKDIR", func(v string) { cfg.System.Workdir = v })
	setEnvBoolValue("SITEPORTAL_SYSTEM_DEBUG", func(v bool) { cfg.System.Debug = v })
	setEnvValue("SITEPORTAL_WEB_HOST", func(v string) { cfg.Web.Host = v })
	setEnvIntValue("SITEPORTAL_WEB_PORT", func(v int) { cfg.Web.Port = v })
	setEnvValue("SITEPORTAL_WEB_SECRET", func(v string) { cfg.Web.Secret = v })
	setEnvValue("SITEPORTAL_DB_TYPE", func(v string) { cfg.Database.Type = v })
	setEnvValue("SITEPORTAL_DB_HOST", func(v string) { cfg.Database.Host = v })
	setEnvIntValue("SITEPORTAL_DB_PORT", func(v int) { cfg.Database.Port = v })
	setEnvValue("SITEPORTAL_DB_NAME", func(v string) { cfg.Database.Name = v })
	setEnvValue("SITEPORTAL_DB_USER", func(v string) { cfg.Database.User = v })
	setEnvValue("SITEPORTAL_DB_PASSWD", func(v string) { cfg.Database.Passwd = v })

	return cfg
}

// InitDirs creates the working directory layout.
func (c *AppConfig) InitDirs() {
	_ = os.MkdirAll(c.System.Workdir, 0755)
	_ = os.MkdirAll(filepath.Join(c.System.Workdir, "data"), 0755)
	_ = os.MkdirAll(filepath.Join(c.System.Workdir, "logs"), 0755)
}
