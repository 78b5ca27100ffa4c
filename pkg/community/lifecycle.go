package community

import (
	"context"
	"sort"

	"github.com/lwmacct/251215-go-pkg-collective/pkg/agent"
	"github.com/lwmacct/251215-go-pkg-collective/pkg/evolution"
)

// ═══════════════════════════════════════════════════════════════════════════
// 晋升
// ═══════════════════════════════════════════════════════════════════════════

// PromoteAgent 评估并尝试晋升一个 Agent
//
// 晋升成功后同步存储中的阶段并广播 agent_promoted 事件；
// 协作方失败只记录日志，晋升本身不回滚。
func (c *Community) PromoteAgent(ctx context.Context, agentID string) (evolution.Evaluation, bool) {
	a, ok := c.Get(agentID)
	if !ok {
		return evolution.Evaluation{}, false
	}

	from := a.Stage()
	promoted, eval := c.engine.CheckAndPromote(a)
	if !promoted {
		return eval, false
	}

	if c.store != nil {
		if err := c.store.UpdateAgentStage(ctx, agentID, a.Stage()); err != nil {
			c.logger.Warn("sync stage to store failed",
				"agent_id", agentID,
				"stage", a.Stage(),
				"error", err)
		}
	}
	c.bus.EmitAgentPromoted(ctx, agentID, string(from), string(a.Stage()))
	return eval, true
}

// CheckPromotions 评估全部 Agent，返回本轮晋升的 Agent ID
//
// 无人晋升时返回空切片而非 nil，便于区分“检查过但无人合格”。
func (c *Community) CheckPromotions(ctx context.Context) []string {
	promoted := make([]string, 0)
	for _, a := range c.List() {
		if _, ok := c.PromoteAgent(ctx, a.ID()); ok {
			promoted = append(promoted, a.ID())
		}
	}
	sort.Strings(promoted)

	if len(promoted) > 0 {
		c.logger.Info("promotion check completed",
			"community", c.name,
			"promoted", len(promoted))
	}
	return promoted
}

// ═══════════════════════════════════════════════════════════════════════════
// 持久化
// ═══════════════════════════════════════════════════════════════════════════

// SaveAll 保存全部 Agent 状态，返回成功保存的数量
//
// 单个 Agent 保存失败只记录日志，不中断其余保存。
func (c *Community) SaveAll(ctx context.Context) int {
	if c.store == nil {
		return 0
	}

	saved := 0
	for _, a := range c.List() {
		if err := c.store.SaveAgent(ctx, a.ExportState()); err != nil {
			c.logger.Warn("save agent failed",
				"agent_id", a.ID(),
				"error", err)
			continue
		}
		saved++
	}
	return saved
}

// LoadFromStore 从存储恢复全部 Agent 到注册表
//
// 已注册的 ID 跳过，不覆盖内存中的状态。恢复不广播
// agent_created 事件。返回本次恢复的数量。
func (c *Community) LoadFromStore(ctx context.Context) (int, error) {
	if c.store == nil {
		return 0, nil
	}

	states, err := c.store.ListAgents(ctx)
	if err != nil {
		return 0, err
	}

	loaded := 0
	for _, state := range states {
		a := agent.FromState(state, agent.WithLogger(c.logger))

		c.mu.Lock()
		if _, exists := c.agents[a.ID()]; exists {
			c.mu.Unlock()
			continue
		}
		if c.maxAgents > 0 && len(c.agents) >= c.maxAgents {
			c.mu.Unlock()
			c.logger.Warn("load stopped at capacity",
				"community", c.name,
				"loaded", loaded)
			break
		}
		c.agents[a.ID()] = a
		c.mu.Unlock()
		loaded++
	}

	c.logger.Info("agents loaded from store",
		"community", c.name,
		"loaded", loaded)
	return loaded, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// 生命周期
// ═══════════════════════════════════════════════════════════════════════════

// Shutdown 关闭社区
//
// 取消并等待全部在途任务，保存全部 Agent 状态。
// 注册表保留，允许关闭后继续只读查询。
func (c *Community) Shutdown(ctx context.Context) {
	c.mu.RLock()
	tasks := make([]*activityTask, 0, len(c.tasks))
	for _, task := range c.tasks {
		tasks = append(tasks, task)
	}
	c.mu.RUnlock()

	for _, task := range tasks {
		task.cancel()
	}
	for _, task := range tasks {
		<-task.done
	}

	saved := c.SaveAll(ctx)
	c.logger.Info("community shut down",
		"community", c.name,
		"agents", c.Count(),
		"saved", saved)
}
