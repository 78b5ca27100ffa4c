package community

import (
	"sync"
	"time"

	"github.com/lwmacct/251215-go-pkg-collective/pkg/agent"
	"github.com/lwmacct/251215-go-pkg-collective/pkg/eventbus"
)

// ═══════════════════════════════════════════════════════════════════════════
// 活动任务统计
// ═══════════════════════════════════════════════════════════════════════════

// ActivityStats 活动任务运行统计
type ActivityStats struct {
	// 任务计数
	Started   int64 // 启动的任务总数
	Completed int64 // 成功完成数
	Failed    int64 // 失败数
	Cancelled int64 // 取消数

	// 延迟统计
	TotalLatency   time.Duration
	AverageLatency time.Duration
	MaxLatency     time.Duration
	MinLatency     time.Duration

	// 时间戳
	StartedAt      time.Time // 收集器启动时间
	LastActivityAt time.Time // 最后任务结束时间
	LastErrorAt    time.Time // 最后错误时间

	// 错误信息
	LastError error
}

// statsCollector 线程安全的活动统计收集器
type statsCollector struct {
	mu    sync.RWMutex
	stats ActivityStats
}

func newStatsCollector() *statsCollector {
	return &statsCollector{
		stats: ActivityStats{
			StartedAt:  time.Now(),
			MinLatency: time.Duration(1<<63 - 1), // 最大值，确保第一次会被更新
		},
	}
}

// RecordStarted 记录任务启动
func (c *statsCollector) RecordStarted() {
	c.mu.Lock()
	c.stats.Started++
	c.mu.Unlock()
}

// RecordCompleted 记录任务成功完成
func (c *statsCollector) RecordCompleted(latency time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Completed++
	c.recordLatencyLocked(latency)
}

// RecordFailed 记录任务失败
func (c *statsCollector) RecordFailed(err error, latency time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Failed++
	c.stats.LastError = err
	c.stats.LastErrorAt = time.Now()
	c.recordLatencyLocked(latency)
}

// RecordCancelled 记录任务取消
func (c *statsCollector) RecordCancelled(latency time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Cancelled++
	c.recordLatencyLocked(latency)
}

func (c *statsCollector) recordLatencyLocked(latency time.Duration) {
	c.stats.TotalLatency += latency
	c.stats.LastActivityAt = time.Now()

	finished := c.stats.Completed + c.stats.Failed + c.stats.Cancelled
	if finished > 0 {
		c.stats.AverageLatency = c.stats.TotalLatency / time.Duration(finished)
	}
	if latency > c.stats.MaxLatency {
		c.stats.MaxLatency = latency
	}
	if latency < c.stats.MinLatency {
		c.stats.MinLatency = latency
	}
}

// Stats 获取统计快照
func (c *statsCollector) Stats() ActivityStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// Reset 重置统计
func (c *statsCollector) Reset() {
	c.mu.Lock()
	c.stats = ActivityStats{
		StartedAt:  time.Now(),
		MinLatency: time.Duration(1<<63 - 1),
	}
	c.mu.Unlock()
}

// ═══════════════════════════════════════════════════════════════════════════
// 状态查询
// ═══════════════════════════════════════════════════════════════════════════

// AgentStatus Agent 当前状态摘要
type AgentStatus struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Specialization  string        `json:"specialization"`
	Stage           agent.Stage   `json:"stage"`
	Busy            bool          `json:"busy"`
	CurrentActivity string        `json:"current_activity,omitempty"`
	TotalXP         int           `json:"total_xp"`
	PapersRead      int           `json:"papers_read"`
	PapersAuthored  int           `json:"papers_authored"`
	TopicCount      int           `json:"topic_count"`
	Reputation      float64       `json:"reputation"`
	EventsEmitted   int           `json:"events_emitted"` // 事件历史中以该 Agent 为来源的条数
	TimeInStage     time.Duration `json:"time_in_stage"`
}

// AgentStatus 获取 Agent 状态摘要
//
// EventsEmitted 从事件总线的历史中派生，历史被裁剪或清空后
// 计数相应减少。
func (c *Community) AgentStatus(id string) (AgentStatus, bool) {
	a, ok := c.Get(id)
	if !ok {
		return AgentStatus{}, false
	}

	status := AgentStatus{
		ID:             a.ID(),
		Name:           a.Name(),
		Specialization: a.Specialization(),
		Stage:          a.Stage(),
		TotalXP:        a.TotalXP(),
		PapersRead:     a.PapersRead(),
		PapersAuthored: a.PapersAuthored(),
		TopicCount:     a.Knowledge().TopicCount(),
		Reputation:     a.Reputation().Overall(),
		TimeInStage:    a.TimeInStage(),
	}
	if name, busy := c.ActiveActivity(id); busy {
		status.Busy = true
		status.CurrentActivity = name
	}
	status.EventsEmitted = len(c.bus.History(eventbus.HistoryFilter{Source: id}))
	return status, true
}

// CommunityStats 社区整体统计
type CommunityStats struct {
	Name              string              `json:"name"`
	TotalAgents       int                 `json:"total_agents"`
	ByStage           map[agent.Stage]int `json:"by_stage"`
	BySpecialization  map[string]int      `json:"by_specialization"`
	AverageReputation float64             `json:"average_reputation"`
	ActiveActivities  int                 `json:"active_activities"`
	Steps             int64               `json:"steps"`
	Events            eventbus.Statistics `json:"events"`
	Activities        ActivityStats       `json:"activities"`
}

// Stats 获取社区整体统计快照
func (c *Community) Stats() CommunityStats {
	agents := c.List()

	stats := CommunityStats{
		Name:             c.name,
		TotalAgents:      len(agents),
		ByStage:          make(map[agent.Stage]int),
		BySpecialization: make(map[string]int),
		ActiveActivities: c.ActiveActivities(),
		Steps:            c.steps.Load(),
		Events:           c.bus.Stats(),
		Activities:       c.stats.Stats(),
	}

	var repSum float64
	for _, a := range agents {
		stats.ByStage[a.Stage()]++
		stats.BySpecialization[a.Specialization()]++
		repSum += a.Reputation().Overall()
	}
	if len(agents) > 0 {
		stats.AverageReputation = repSum / float64(len(agents))
	}
	return stats
}
