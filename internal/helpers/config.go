package helpers

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

var Version = "0.1.0"
var ReleaseDate = "2026-10-19"

// ListMode 目录展开方式
type ListMode string

const (
	ListModeEager ListMode = "eager" // 一次性递归展开全部子目录
	ListModeLazy  ListMode = "lazy"  // 只列出当前层，子目录返回续取参数
)

// ParseListMode 空字符串返回空模式，由调用方使用默认值
func ParseListMode(s string) (ListMode, error) {
	switch ListMode(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return "", nil
	case ListModeEager:
		return ListModeEager, nil
	case ListModeLazy:
		return ListModeLazy, nil
	}
	return "", fmt.Errorf("unsupported mode %q, expected eager or lazy", s)
}

type ConfigLog struct {
	Dir        string `yaml:"dir"`
	File       string `yaml:"file"`
	TeraBox    string `yaml:"teraBox"`
	Web        string `yaml:"web"`
	Console    bool   `yaml:"console"`
	Rotate     bool   `yaml:"rotate"`
	RotateCron string `yaml:"rotateCron"` // 定时轮转表达式，为空则不定时轮转
}

type ConfigTeraBox struct {
	Domain         string `yaml:"domain"`
	AppId          string `yaml:"appId"`
	Email          string `yaml:"email"`
	Password       string `yaml:"password"`
	UserAgent      string `yaml:"userAgent"`
	Timeout        int    `yaml:"timeout"`        // 单次请求超时，单位秒
	SessionTTL     int    `yaml:"sessionTTL"`     // 登录Cookie缓存时间，单位秒
	CacheSize      int    `yaml:"cacheSize"`      // 会话缓存大小，单位字节
	MaxDirectories int    `yaml:"maxDirectories"` // eager模式下最多展开的目录数，0为不限制
}

type Config struct {
	HttpHost string        `yaml:"httpHost"`
	Mode     ListMode      `yaml:"mode"`
	Log      ConfigLog     `yaml:"log"`
	TeraBox  ConfigTeraBox `yaml:"teraBox"`
}

var GlobalConfig Config

// DefaultConfig 默认配置，与线上部署一致：懒加载，8秒超时，1小时会话
func DefaultConfig() Config {
	return Config{
		HttpHost: ":3000",
		Mode:     ListModeLazy,
		Log: ConfigLog{
			Dir:        "logs",
			File:       "app.log",
			TeraBox:    "terabox.log",
			Web:        "web.log",
			Console:    true,
			Rotate:     true,
			RotateCron: "0 0 * * *",
		},
		TeraBox: ConfigTeraBox{
			Domain:     "https://www.1024tera.com",
			AppId:      "250528",
			UserAgent:  "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_3_1) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			Timeout:    8,
			SessionTTL: 3600,
			CacheSize:  16 * 1024 * 1024,
		},
	}
}

func (c ConfigTeraBox) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

func (c ConfigTeraBox) SessionTimeout() time.Duration {
	return time.Duration(c.SessionTTL) * time.Second
}

// LoadConfig 加载配置文件（可选），再用环境变量覆盖
// configPath为空或文件不存在时只使用默认值和环境变量
func LoadConfig(configPath string) (Config, error) {
	cfg := DefaultConfig()
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := loadYaml(configPath, &cfg); err != nil {
				return cfg, err
			}
		} else if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// InitConfig 加载配置到GlobalConfig，同目录下的.env会先被读入环境变量
func InitConfig(configPath string) error {
	if configPath != "" {
		if err := LoadEnvFromFile(filepath.Join(filepath.Dir(configPath), ".env")); err != nil {
			return err
		}
	}
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}
	GlobalConfig = cfg
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TERABOX_EMAIL"); v != "" {
		cfg.TeraBox.Email = v
	}
	if v := os.Getenv("TERABOX_PASSWORD"); v != "" {
		cfg.TeraBox.Password = v
	}
	if v := os.Getenv("TERALINK_MODE"); v != "" {
		cfg.Mode = ListMode(v)
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.HttpHost = ":" + v
	}
}

func (c *Config) Validate() error {
	mode, err := ParseListMode(string(c.Mode))
	if err != nil {
		return err
	}
	if mode == "" {
		mode = ListModeLazy
	}
	c.Mode = mode
	if c.TeraBox.Domain == "" {
		return fmt.Errorf("teraBox.domain 不能为空")
	}
	if c.TeraBox.Timeout <= 0 {
		return fmt.Errorf("teraBox.timeout 必须大于0")
	}
	if c.TeraBox.SessionTTL <= 0 {
		return fmt.Errorf("teraBox.sessionTTL 必须大于0")
	}
	if c.TeraBox.MaxDirectories < 0 {
		return fmt.Errorf("teraBox.maxDirectories 不能为负数")
	}
	return nil
}

// HasCredentials 是否配置了登录账号
func (c ConfigTeraBox) HasCredentials() bool {
	return c.Email != "" && c.Password != ""
}

func LoadEnvFromFile(envPath string) error {
	f, err := os.Open(envPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	// 提示写到stderr，stdout只留给命令输出
	fmt.Fprintf(os.Stderr, "已加载环境变量配置文件：%s\n", envPath)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.Index(line, "=")
		if idx <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		if key == "" {
			continue
		}
		os.Setenv(key, line[idx+1:])
	}

	return scanner.Err()
}

func loadYaml(configPath string, cfg interface{}) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("读取配置文件失败: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("解析配置文件失败: %w", err)
	}

	return nil
}
