package agent

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lwmacct/251215-go-pkg-collective/pkg/knowledge"
	"github.com/lwmacct/251215-go-pkg-collective/pkg/reputation"
)

// DefaultMaxStudents 默认的同时指导学生上限
const DefaultMaxStudents = 3

// ═══════════════════════════════════════════════════════════════════════════
// Agent
// ═══════════════════════════════════════════════════════════════════════════

// Agent 社区中的研究 Agent
type Agent struct {
	mu sync.RWMutex

	id             string
	name           string
	specialization string
	stage          Stage
	capabilities   Capabilities

	createdAt      time.Time
	lastActive     time.Time
	enteredStageAt time.Time

	knowledge  *knowledge.Graph
	reputation *reputation.Score

	goals       []Goal
	mentors     []MentorshipRelation // 作为学生的关系
	students    []MentorshipRelation // 作为导师的关系
	maxStudents int

	experiences []Experience
	totalXP     int

	papersRead     []string
	papersAuthored []string
	experiments    []string
	promotions     int

	logger *slog.Logger
}

// Option Agent 配置选项
type Option func(*Agent)

// WithID 指定 Agent ID（默认自动生成）
func WithID(id string) Option {
	return func(a *Agent) {
		if id != "" {
			a.id = id
		}
	}
}

// WithStage 指定初始阶段（默认学徒）
func WithStage(stage Stage) Option {
	return func(a *Agent) {
		if stage.Valid() {
			a.stage = stage
		}
	}
}

// WithMaxStudents 指定同时指导学生上限
func WithMaxStudents(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxStudents = n
		}
	}
}

// WithLogger 设置日志器
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New 创建 Agent
//
// 默认从学徒阶段开始，持有空的知识图谱和初始声誉评分。
func New(name, specialization string, opts ...Option) *Agent {
	now := time.Now()
	a := &Agent{
		id:             uuid.NewString(),
		name:           name,
		specialization: specialization,
		stage:          StageApprentice,
		createdAt:      now,
		lastActive:     now,
		enteredStageAt: now,
		reputation:     reputation.New(),
		maxStudents:    DefaultMaxStudents,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.knowledge = knowledge.New(knowledge.WithOwner(a.id))
	a.capabilities = CapabilitiesFor(a.stage)
	return a
}

// ═══════════════════════════════════════════════════════════════════════════
// 身份与阶段
// ═══════════════════════════════════════════════════════════════════════════

// ID Agent 唯一标识
func (a *Agent) ID() string {
	return a.id
}

// Name Agent 名称
func (a *Agent) Name() string {
	return a.name
}

// Specialization 专业方向
func (a *Agent) Specialization() string {
	return a.specialization
}

// Stage 当前阶段
func (a *Agent) Stage() Stage {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stage
}

// Capabilities 当前阶段的能力
func (a *Agent) Capabilities() Capabilities {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.capabilities
}

// CreatedAt 创建时间
func (a *Agent) CreatedAt() time.Time {
	return a.createdAt
}

// LastActive 最近活跃时间
func (a *Agent) LastActive() time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastActive
}

// EnteredStageAt 进入当前阶段的时间
func (a *Agent) EnteredStageAt() time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enteredStageAt
}

// TimeInStage 在当前阶段停留的时长
func (a *Agent) TimeInStage() time.Duration {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return time.Since(a.enteredStageAt)
}

// Touch 刷新活跃时间
func (a *Agent) Touch() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastActive = time.Now()
}

// AdvanceStage 前进到指定阶段
//
// 仅允许向前移动；晋升逻辑由 evolution 引擎负责，这里只做状态切换：
// 更新阶段、重算能力、递增晋升计数并重置阶段进入时间。
func (a *Agent) AdvanceStage(next Stage) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !next.Valid() || next.Index() <= a.stage.Index() {
		return false
	}

	prev := a.stage
	a.stage = next
	a.capabilities = CapabilitiesFor(next)
	a.promotions++
	a.enteredStageAt = time.Now()
	a.lastActive = a.enteredStageAt

	a.logger.Info("agent stage advanced",
		"agent_id", a.id,
		"name", a.name,
		"from", prev,
		"to", next)
	return true
}

// Promotions 晋升次数
func (a *Agent) Promotions() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.promotions
}

// ═══════════════════════════════════════════════════════════════════════════
// 知识与声誉
// ═══════════════════════════════════════════════════════════════════════════

// Knowledge Agent 的知识图谱（自身并发安全）
func (a *Agent) Knowledge() *knowledge.Graph {
	return a.knowledge
}

// Reputation Agent 的声誉评分（自身并发安全）
func (a *Agent) Reputation() *reputation.Score {
	return a.reputation
}

// ═══════════════════════════════════════════════════════════════════════════
// 经验日志
// ═══════════════════════════════════════════════════════════════════════════

// LogExperience 追加一条经验记录并累计经验值
func (a *Agent) LogExperience(activity ActivityType, description string, outcome Outcome) Experience {
	exp := Experience{
		ID:          uuid.NewString(),
		Activity:    activity,
		Description: description,
		Outcome:     outcome,
		XP:          outcome.XP(),
		Timestamp:   time.Now(),
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.experiences = append(a.experiences, exp)
	a.totalXP += exp.XP
	a.lastActive = exp.Timestamp
	return exp
}

// TotalXP 累计经验值
func (a *Agent) TotalXP() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.totalXP
}

// Experiences 全部经验记录的副本
func (a *Agent) Experiences() []Experience {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]Experience(nil), a.experiences...)
}

// RecentExperiences 最近 n 条经验记录（时间正序）
func (a *Agent) RecentExperiences(n int) []Experience {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if n <= 0 || n > len(a.experiences) {
		n = len(a.experiences)
	}
	return append([]Experience(nil), a.experiences[len(a.experiences)-n:]...)
}

// ExperiencesByActivity 指定活动类型的经验记录
func (a *Agent) ExperiencesByActivity(activity ActivityType) []Experience {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var result []Experience
	for _, exp := range a.experiences {
		if exp.Activity == activity {
			result = append(result, exp)
		}
	}
	return result
}

// LearningVelocity 学习速度：每天获得的经验值
//
// 创建不足一天时按一天计算。
func (a *Agent) LearningVelocity() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()

	days := time.Since(a.createdAt).Hours() / 24
	if days < 1 {
		days = 1
	}
	return float64(a.totalXP) / days
}

// ═══════════════════════════════════════════════════════════════════════════
// 论文与实验
// ═══════════════════════════════════════════════════════════════════════════

// RecordPaperRead 记录读过的论文
func (a *Agent) RecordPaperRead(paperID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.papersRead = append(a.papersRead, paperID)
	a.lastActive = time.Now()
}

// RecordPaperAuthored 记录发表的论文
func (a *Agent) RecordPaperAuthored(paperID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.papersAuthored = append(a.papersAuthored, paperID)
	a.lastActive = time.Now()
}

// RecordExperiment 记录完成的实验
func (a *Agent) RecordExperiment(experimentID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.experiments = append(a.experiments, experimentID)
	a.lastActive = time.Now()
}

// PapersRead 读过的论文数
func (a *Agent) PapersRead() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.papersRead)
}

// PapersAuthored 发表的论文数
func (a *Agent) PapersAuthored() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.papersAuthored)
}

// Experiments 完成的实验数
func (a *Agent) Experiments() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.experiments)
}
