package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// 默认值
const (
	DefaultCommunityName          = "research-collective"
	DefaultMaxConcurrentAgents    = 16
	DefaultPromotionCheckInterval = 10
	DefaultSaveInterval           = 20
	DefaultEventHistoryCapacity   = 10000
	DefaultHandlerTimeout         = Duration(5 * time.Second)
	DefaultStorePath              = "data/community.db"
	DefaultLogLevel               = "info"
)

// Duration time.Duration 的 YAML 包装，支持 "2s" 这样的写法
type Duration time.Duration

// UnmarshalYAML 实现 yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML 实现 yaml.Marshaler
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std 转换为 time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Matching 匹配默认条件
type Matching struct {
	MinExpertiseGap int     `yaml:"min_expertise_gap"`
	MaxExpertiseGap int     `yaml:"max_expertise_gap"`
	ReputationFloor float64 `yaml:"reputation_floor"`
}

// Settings 社区运行配置
type Settings struct {
	CommunityName          string   `yaml:"community_name"`
	MaxConcurrentAgents    int      `yaml:"max_concurrent_agents"`
	PromotionCheckInterval int      `yaml:"promotion_check_interval"` // 步数
	SaveInterval           int      `yaml:"save_interval"`            // 步数
	EventHistoryCapacity   int      `yaml:"event_history_capacity"`
	HandlerTimeout         Duration `yaml:"handler_timeout"`
	Matching               Matching `yaml:"matching"`
	StorePath              string   `yaml:"store_path"`
	LogLevel               string   `yaml:"log_level"`
}

// Default 返回全默认配置
func Default() Settings {
	return Settings{
		CommunityName:          DefaultCommunityName,
		MaxConcurrentAgents:    DefaultMaxConcurrentAgents,
		PromotionCheckInterval: DefaultPromotionCheckInterval,
		SaveInterval:           DefaultSaveInterval,
		EventHistoryCapacity:   DefaultEventHistoryCapacity,
		HandlerTimeout:         DefaultHandlerTimeout,
		Matching: Matching{
			MinExpertiseGap: 1,
			MaxExpertiseGap: 3,
			ReputationFloor: 0.5,
		},
		StorePath: DefaultStorePath,
		LogLevel:  DefaultLogLevel,
	}
}

// Load 从 YAML 文件加载配置
//
// 缺失字段回退到默认值，非法字段报错。
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse 解析 YAML 配置
func Parse(data []byte) (Settings, error) {
	s := Default()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("config: parse: %w", err)
	}

	s.normalize()
	if err := s.validate(); err != nil {
		return Settings{}, fmt.Errorf("config: %w", err)
	}
	return s, nil
}

func (s *Settings) normalize() {
	s.CommunityName = strings.TrimSpace(s.CommunityName)
	if s.CommunityName == "" {
		s.CommunityName = DefaultCommunityName
	}
	s.StorePath = strings.TrimSpace(s.StorePath)
	if s.StorePath == "" {
		s.StorePath = DefaultStorePath
	}
	s.LogLevel = strings.ToLower(strings.TrimSpace(s.LogLevel))
	if s.LogLevel == "" {
		s.LogLevel = DefaultLogLevel
	}
	if s.HandlerTimeout == 0 {
		s.HandlerTimeout = DefaultHandlerTimeout
	}
	if s.EventHistoryCapacity == 0 {
		s.EventHistoryCapacity = DefaultEventHistoryCapacity
	}
	if s.Matching.MinExpertiseGap == 0 {
		s.Matching.MinExpertiseGap = 1
	}
	if s.Matching.MaxExpertiseGap == 0 {
		s.Matching.MaxExpertiseGap = 3
	}
	if s.Matching.ReputationFloor == 0 {
		s.Matching.ReputationFloor = 0.5
	}
}

func (s Settings) validate() error {
	if s.MaxConcurrentAgents <= 0 {
		return fmt.Errorf("max_concurrent_agents must be positive, got %d", s.MaxConcurrentAgents)
	}
	if s.PromotionCheckInterval <= 0 {
		return fmt.Errorf("promotion_check_interval must be positive, got %d", s.PromotionCheckInterval)
	}
	if s.SaveInterval <= 0 {
		return fmt.Errorf("save_interval must be positive, got %d", s.SaveInterval)
	}
	if s.HandlerTimeout < 0 {
		return fmt.Errorf("handler_timeout must not be negative")
	}
	if s.Matching.MinExpertiseGap > s.Matching.MaxExpertiseGap {
		return fmt.Errorf("matching gap window [%d,%d] is inverted",
			s.Matching.MinExpertiseGap, s.Matching.MaxExpertiseGap)
	}
	if s.Matching.ReputationFloor < 0 || s.Matching.ReputationFloor > 1 {
		return fmt.Errorf("matching.reputation_floor must be in [0,1], got %g", s.Matching.ReputationFloor)
	}
	switch s.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug/info/warn/error, got %q", s.LogLevel)
	}
	return nil
}

// SlogLevel 转换为 slog 日志级别
func (s Settings) SlogLevel() slog.Level {
	switch s.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
