package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config 离线评分工具的配置
type Config struct {
	LLM         LLMConfig         `yaml:"llm"`
	Guidelines  string            `yaml:"guidelines"`
	Log         LogConfig         `yaml:"log"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
}

// LLMConfig LLM 相关配置
type LLMConfig struct {
	Provider string `yaml:"provider"` // openai or gemini
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ConcurrencyConfig 并发控制配置
type ConcurrencyConfig struct {
	QPS int `yaml:"qps"`
	RPM int `yaml:"rpm"`
}

// DefaultGuidelines 承保偏好的默认描述
const DefaultGuidelines = `Carrier appetite:
- Commercial Property
- TIV > $10M
- Loss ratio < 0.7
- Construction: Fire Resistive or Non-Combustible preferred
- Built after 1950
- States: CA or TX prioritized`

// Default 返回未提供配置文件时使用的配置
func Default() *Config {
	return &Config{
		Guidelines:  DefaultGuidelines,
		Log:         LogConfig{Level: "info"},
		Concurrency: ConcurrencyConfig{QPS: 2, RPM: 60},
	}
}

// LoadConfig 从指定路径加载配置，缺省字段使用默认值
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Guidelines == "" {
		cfg.Guidelines = DefaultGuidelines
	}
	if cfg.Concurrency.QPS <= 0 {
		cfg.Concurrency.QPS = 1
	}
	if cfg.Concurrency.RPM <= 0 {
		cfg.Concurrency.RPM = 60
	}
	return cfg, nil
}
