package community

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lwmacct/251215-go-pkg-collective/pkg/agent"
	"github.com/lwmacct/251215-go-pkg-collective/pkg/eventbus"
	"github.com/lwmacct/251215-go-pkg-collective/pkg/evolution"
	"github.com/lwmacct/251215-go-pkg-collective/pkg/matchmaker"
)

// StateStore Agent 状态持久化协作方
//
// 由 store.SQLiteStore 实现。Community 在注册、晋升、
// 周期保存等节点调用；失败时记录日志并降级。
type StateStore interface {
	SaveAgent(ctx context.Context, state agent.State) error
	LoadAgent(ctx context.Context, id string) (agent.State, error)
	ListAgents(ctx context.Context) ([]agent.State, error)
	UpdateAgentStage(ctx context.Context, id string, stage agent.Stage) error
	DeleteAgent(ctx context.Context, id string) error
}

// 默认值
const (
	DefaultName                   = "research-collective"
	DefaultPromotionCheckInterval = 10 // 步
	DefaultSaveInterval           = 20 // 步
)

// Community Agent 社区编排器
//
// Thread Safety: 并发安全，注册表与任务表由读写锁保护。
type Community struct {
	mu     sync.RWMutex
	agents map[string]*agent.Agent
	tasks  map[string]*activityTask

	name      string
	maxAgents int // 0 表示不限

	promotionCheckInterval int
	saveInterval           int
	steps                  atomic.Int64

	store  StateStore
	bus    *eventbus.Bus
	engine *evolution.Engine
	stats  *statsCollector
	logger *slog.Logger
}

var (
	_ matchmaker.Directory    = (*Community)(nil)
	_ matchmaker.GraphQuerier = (*Community)(nil)
)

// Option Community 配置选项
type Option func(*Community)

// WithName 设置社区名称
func WithName(name string) Option {
	return func(c *Community) {
		if name != "" {
			c.name = name
		}
	}
}

// WithMaxAgents 设置并发 Agent 上限，0 表示不限
func WithMaxAgents(n int) Option {
	return func(c *Community) {
		if n >= 0 {
			c.maxAgents = n
		}
	}
}

// WithStore 设置状态持久化协作方
func WithStore(st StateStore) Option {
	return func(c *Community) {
		c.store = st
	}
}

// WithBus 设置事件总线
func WithBus(bus *eventbus.Bus) Option {
	return func(c *Community) {
		if bus != nil {
			c.bus = bus
		}
	}
}

// WithEngine 设置晋升引擎
func WithEngine(engine *evolution.Engine) Option {
	return func(c *Community) {
		if engine != nil {
			c.engine = engine
		}
	}
}

// WithPromotionCheckInterval 设置晋升检查的步数间隔，0 表示关闭
func WithPromotionCheckInterval(steps int) Option {
	return func(c *Community) {
		if steps >= 0 {
			c.promotionCheckInterval = steps
		}
	}
}

// WithSaveInterval 设置周期保存的步数间隔，0 表示关闭
func WithSaveInterval(steps int) Option {
	return func(c *Community) {
		if steps >= 0 {
			c.saveInterval = steps
		}
	}
}

// WithLogger 设置日志器
func WithLogger(logger *slog.Logger) Option {
	return func(c *Community) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New 创建 Community
//
// 未提供事件总线时内部创建一个，未提供晋升引擎时使用默认引擎。
// StateStore 可以为空，此时跳过所有持久化。
func New(opts ...Option) *Community {
	c := &Community{
		agents:                 make(map[string]*agent.Agent),
		tasks:                  make(map[string]*activityTask),
		name:                   DefaultName,
		promotionCheckInterval: DefaultPromotionCheckInterval,
		saveInterval:           DefaultSaveInterval,
		stats:                  newStatsCollector(),
		logger:                 slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.bus == nil {
		c.bus = eventbus.New(eventbus.WithLogger(c.logger))
	}
	if c.engine == nil {
		c.engine = evolution.NewEngine(evolution.WithLogger(c.logger))
	}
	return c
}

// Name 社区名称
func (c *Community) Name() string {
	return c.name
}

// Bus 事件总线
func (c *Community) Bus() *eventbus.Bus {
	return c.bus
}

// ═══════════════════════════════════════════════════════════════════════════
// 注册表
// ═══════════════════════════════════════════════════════════════════════════

// Register 注册 Agent
//
// 注册成功后持久化状态并广播 agent_created 事件；
// 持久化失败只记录日志，不回滚注册。
func (c *Community) Register(ctx context.Context, a *agent.Agent) error {
	if a == nil {
		return fmt.Errorf("community: agent cannot be nil")
	}
	if a.ID() == "" {
		return fmt.Errorf("community: agent ID cannot be empty")
	}

	c.mu.Lock()
	if _, exists := c.agents[a.ID()]; exists {
		c.mu.Unlock()
		return fmt.Errorf("community: agent %s already registered", a.ID())
	}
	if c.maxAgents > 0 && len(c.agents) >= c.maxAgents {
		c.mu.Unlock()
		return fmt.Errorf("community: at capacity (%d agents)", c.maxAgents)
	}
	c.agents[a.ID()] = a
	count := len(c.agents)
	c.mu.Unlock()

	c.logger.Info("agent registered",
		"community", c.name,
		"agent_id", a.ID(),
		"name", a.Name(),
		"stage", a.Stage(),
		"total", count)

	c.persistAgent(ctx, a)
	c.bus.EmitAgentCreated(ctx, a.ID(), a.Name(), string(a.Stage()))
	return nil
}

// Unregister 注销 Agent
//
// 先取消并等待该 Agent 的在途活动任务，再从注册表移除，
// 删除持久化记录并广播 agent_deleted 事件。
// Agent 不存在时返回 false。
func (c *Community) Unregister(ctx context.Context, id string) bool {
	c.mu.RLock()
	_, exists := c.agents[id]
	c.mu.RUnlock()
	if !exists {
		return false
	}

	c.StopActivity(id)

	c.mu.Lock()
	delete(c.agents, id)
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.DeleteAgent(ctx, id); err != nil {
			c.logger.Warn("delete agent from store failed",
				"agent_id", id,
				"error", err)
		}
	}

	c.logger.Info("agent unregistered", "community", c.name, "agent_id", id)
	c.bus.EmitAgentDeleted(ctx, id)
	return true
}

// Get 获取 Agent
func (c *Community) Get(id string) (*agent.Agent, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	a, ok := c.agents[id]
	return a, ok
}

// List 当前全部 Agent 的快照
func (c *Community) List() []*agent.Agent {
	c.mu.RLock()
	defer c.mu.RUnlock()

	agents := make([]*agent.Agent, 0, len(c.agents))
	for _, a := range c.agents {
		agents = append(agents, a)
	}
	return agents
}

// AgentFilter List 的过滤条件，零值字段不过滤
type AgentFilter struct {
	Stage          agent.Stage
	Specialization string
	ActiveWithin   time.Duration // 只返回最近活跃时间落在窗口内的 Agent
	BusyOnly       bool          // 只返回有在途任务的 Agent
}

// ListBy 按条件过滤的 Agent 快照
func (c *Community) ListBy(filter AgentFilter) []*agent.Agent {
	c.mu.RLock()
	defer c.mu.RUnlock()

	agents := make([]*agent.Agent, 0)
	for id, a := range c.agents {
		if filter.Stage != "" && a.Stage() != filter.Stage {
			continue
		}
		if filter.Specialization != "" && a.Specialization() != filter.Specialization {
			continue
		}
		if filter.ActiveWithin > 0 && time.Since(a.LastActive()) > filter.ActiveWithin {
			continue
		}
		if filter.BusyOnly {
			if _, busy := c.tasks[id]; !busy {
				continue
			}
		}
		agents = append(agents, a)
	}
	return agents
}

// Count 注册 Agent 数量
func (c *Community) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.agents)
}

// ═══════════════════════════════════════════════════════════════════════════
// 图查询（matchmaker.GraphQuerier 实现）
// ═══════════════════════════════════════════════════════════════════════════

// SharedTopics 两个 Agent 共同掌握的主题
func (c *Community) SharedTopics(ctx context.Context, agentA, agentB string) ([]string, error) {
	a, ok := c.Get(agentA)
	if !ok {
		return nil, fmt.Errorf("community: agent not found: %s", agentA)
	}
	b, ok := c.Get(agentB)
	if !ok {
		return nil, fmt.Errorf("community: agent not found: %s", agentB)
	}

	known := make(map[string]bool)
	for _, topic := range a.Knowledge().TopicNames() {
		known[topic] = true
	}

	var shared []string
	for _, topic := range b.Knowledge().TopicNames() {
		if known[topic] {
			shared = append(shared, topic)
		}
	}
	return shared, nil
}

// ActiveMentorships 当前活跃的师徒关系数
//
// 只从导师侧统计，避免同一关系在师徒两侧重复计数。
func (c *Community) ActiveMentorships(ctx context.Context) (int, error) {
	c.mu.RLock()
	agents := make([]*agent.Agent, 0, len(c.agents))
	for _, a := range c.agents {
		agents = append(agents, a)
	}
	c.mu.RUnlock()

	count := 0
	for _, a := range agents {
		for _, rel := range a.Students() {
			if rel.Active {
				count++
			}
		}
	}
	return count, nil
}

// persistAgent 保存 Agent 状态，失败降级为日志
func (c *Community) persistAgent(ctx context.Context, a *agent.Agent) {
	if c.store == nil {
		return
	}
	if err := c.store.SaveAgent(ctx, a.ExportState()); err != nil {
		c.logger.Warn("save agent failed",
			"agent_id", a.ID(),
			"error", err)
	}
}
