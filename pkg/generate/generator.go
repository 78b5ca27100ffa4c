package generate

import (
	"context"
	"fmt"
	"log/slog"

	baseagent "github.com/lwmacct/251215-go-pkg-agent/pkg/agent"
	"github.com/lwmacct/251215-go-pkg-llm/pkg/llm"
)

// Generator 文本生成协作方
type Generator interface {
	// Generate 根据提示词生成文本
	Generate(ctx context.Context, prompt string) (string, error)
}

// ═══════════════════════════════════════════════════════════════════════════
// LLMGenerator
// ═══════════════════════════════════════════════════════════════════════════

// LLMGenerator 基于 LLM Agent 的生成器
type LLMGenerator struct {
	agent  baseagent.AgentInterface
	logger *slog.Logger
}

var _ Generator = (*LLMGenerator)(nil)

// Option LLMGenerator 配置选项
type Option func(*LLMGenerator)

// WithLogger 设置日志器
func WithLogger(logger *slog.Logger) Option {
	return func(g *LLMGenerator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewLLM 用已构建的 LLM Agent 创建生成器
func NewLLM(ag baseagent.AgentInterface, opts ...Option) *LLMGenerator {
	g := &LLMGenerator{
		agent:  ag,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// BuildAgent 构建一个带系统提示词的 LLM Agent
func BuildAgent(provider llm.Provider, name, system string) (baseagent.AgentInterface, error) {
	return baseagent.New().
		Provider(provider).
		Name(name).
		System(system).
		Build()
}

// Generate 执行一次生成，消费事件流直到完成
func (g *LLMGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	eventCh := g.agent.Run(ctx, prompt)

	var text string
	var lastErr error
	for event := range eventCh {
		switch event.Type {
		case llm.EventTypeDone:
			if event.Result != nil {
				text = event.Result.Text
			}
		case llm.EventTypeError:
			lastErr = event.Error
			g.logger.Error("generation event failed",
				"agent_id", g.agent.ID(),
				"error", event.Error)
		}
	}

	if lastErr != nil && text == "" {
		return "", fmt.Errorf("generate: %w", lastErr)
	}
	if err := ctx.Err(); err != nil && text == "" {
		return "", fmt.Errorf("generate: %w", err)
	}
	return text, nil
}

// Close 释放底层 Agent
func (g *LLMGenerator) Close() error {
	return g.agent.Close()
}
