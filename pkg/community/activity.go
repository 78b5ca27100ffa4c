package community

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lwmacct/251215-go-pkg-collective/pkg/agent"
)

// ActivityFunc 活动任务函数
//
// 长时间运行的任务应定期检查 ctx.Done() 以支持协作式取消。
type ActivityFunc func(ctx context.Context, a *agent.Agent) error

// activityTask 一个 Agent 的在途活动任务
type activityTask struct {
	name      string
	startedAt time.Time
	cancel    context.CancelFunc
	done      chan struct{}
}

// ═══════════════════════════════════════════════════════════════════════════
// 活动任务生命周期
// ═══════════════════════════════════════════════════════════════════════════

// StartActivity 为 Agent 启动一个活动任务
//
// 每个 Agent 同时最多一个在途任务：已有任务时先协作式取消并
// 等待其结束，再启动新任务。任务在独立 goroutine 中运行，
// panic 被捕获并计为失败。
func (c *Community) StartActivity(ctx context.Context, agentID, name string, fn ActivityFunc) error {
	if fn == nil {
		return fmt.Errorf("community: activity func cannot be nil")
	}

	var a *agent.Agent
	for {
		c.mu.Lock()
		var ok bool
		a, ok = c.agents[agentID]
		if !ok {
			c.mu.Unlock()
			return fmt.Errorf("community: agent not found: %s", agentID)
		}
		prev, busy := c.tasks[agentID]
		if !busy {
			break // 持有锁，下面登记新任务
		}
		c.mu.Unlock()
		prev.cancel()
		<-prev.done
	}

	taskCtx, cancel := context.WithCancel(ctx)
	task := &activityTask{
		name:      name,
		startedAt: time.Now(),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	c.tasks[agentID] = task
	c.mu.Unlock()

	c.stats.RecordStarted()
	c.logger.Debug("activity started",
		"agent_id", agentID,
		"activity", name)

	go func() {
		defer close(task.done)
		defer cancel()

		err := c.runActivity(taskCtx, a, fn)
		latency := time.Since(task.startedAt)

		c.mu.Lock()
		if c.tasks[agentID] == task {
			delete(c.tasks, agentID)
		}
		c.mu.Unlock()

		switch {
		case err == nil:
			c.stats.RecordCompleted(latency)
			c.logger.Debug("activity completed",
				"agent_id", agentID,
				"activity", name,
				"latency", latency)
		case errors.Is(err, context.Canceled):
			c.stats.RecordCancelled(latency)
			c.logger.Debug("activity cancelled",
				"agent_id", agentID,
				"activity", name)
		default:
			c.stats.RecordFailed(err, latency)
			c.logger.Error("activity failed",
				"agent_id", agentID,
				"activity", name,
				"error", err)
		}
	}()

	return nil
}

// runActivity 执行任务函数，panic 转为错误
func (c *Community) runActivity(ctx context.Context, a *agent.Agent, fn ActivityFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("activity panicked: %v", r)
		}
	}()
	return fn(ctx, a)
}

// StopActivity 取消并等待 Agent 的在途任务结束
//
// 没有在途任务时返回 false。
func (c *Community) StopActivity(agentID string) bool {
	c.mu.RLock()
	task, ok := c.tasks[agentID]
	c.mu.RUnlock()
	if !ok {
		return false
	}

	task.cancel()
	<-task.done
	return true
}

// ActiveActivity 返回 Agent 在途任务的名称
func (c *Community) ActiveActivity(agentID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	task, ok := c.tasks[agentID]
	if !ok {
		return "", false
	}
	return task.name, true
}

// ActiveActivities 在途任务数量
func (c *Community) ActiveActivities() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tasks)
}

// ═══════════════════════════════════════════════════════════════════════════
// 步进执行
// ═══════════════════════════════════════════════════════════════════════════

// StepResult 一步执行的结果
type StepResult struct {
	Step     int64         `json:"step"`
	Activity string        `json:"activity"`
	Agents   int           `json:"agents"`
	Failed   int           `json:"failed"`
	Promoted []string      `json:"promoted,omitempty"` // 本步晋升的 Agent ID
	Saved    int           `json:"saved"`              // 本步持久化的 Agent 数
	Duration time.Duration `json:"duration"`
}

// RunStep 对全部 Agent 并发执行一次活动
//
// 所有任务通过 WaitGroup 汇合，单个任务失败或 panic 不影响其他
// 任务。按步数间隔触发晋升检查与周期保存。
func (c *Community) RunStep(ctx context.Context, activity string, fn ActivityFunc) StepResult {
	start := time.Now()
	step := c.steps.Add(1)
	agents := c.List()

	var (
		wg     sync.WaitGroup
		failMu sync.Mutex
		failed int
	)
	for _, a := range agents {
		wg.Add(1)
		go func(a *agent.Agent) {
			defer wg.Done()
			c.stats.RecordStarted()
			taskStart := time.Now()

			err := c.runActivity(ctx, a, fn)
			latency := time.Since(taskStart)
			if err != nil {
				c.stats.RecordFailed(err, latency)
				c.logger.Error("step activity failed",
					"step", step,
					"agent_id", a.ID(),
					"activity", activity,
					"error", err)
				failMu.Lock()
				failed++
				failMu.Unlock()
				return
			}
			a.Touch()
			c.stats.RecordCompleted(latency)
		}(a)
	}
	wg.Wait()

	result := StepResult{
		Step:     step,
		Activity: activity,
		Agents:   len(agents),
		Failed:   failed,
	}

	if c.promotionCheckInterval > 0 && step%int64(c.promotionCheckInterval) == 0 {
		result.Promoted = c.CheckPromotions(ctx)
	}
	if c.saveInterval > 0 && step%int64(c.saveInterval) == 0 {
		result.Saved = c.SaveAll(ctx)
	}

	result.Duration = time.Since(start)
	c.logger.Debug("step completed",
		"step", step,
		"activity", activity,
		"agents", result.Agents,
		"failed", result.Failed,
		"duration", result.Duration)
	return result
}

// Steps 已执行的步数
func (c *Community) Steps() int64 {
	return c.steps.Load()
}
