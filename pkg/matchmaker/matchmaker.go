package matchmaker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/lwmacct/251215-go-pkg-collective/pkg/agent"
)

// ═══════════════════════════════════════════════════════════════════════════
// 协作方接口
// ═══════════════════════════════════════════════════════════════════════════

// Directory 提供候选 Agent 列表
type Directory interface {
	// List 当前全部 Agent 的快照
	List() []*agent.Agent
}

// GraphQuerier 跨 Agent 的图查询协作方
//
// 查询失败时匹配流程降级为空结果，不中断。
type GraphQuerier interface {
	// SharedTopics 两个 Agent 共同掌握的主题
	SharedTopics(ctx context.Context, agentA, agentB string) ([]string, error)
	// ActiveMentorships 当前活跃的师徒关系数
	ActiveMentorships(ctx context.Context) (int, error)
}

// ═══════════════════════════════════════════════════════════════════════════
// Criteria 匹配条件
// ═══════════════════════════════════════════════════════════════════════════

// 默认匹配条件
const (
	DefaultMinExpertiseGap = 1
	DefaultMaxExpertiseGap = 3
	DefaultReputationFloor = 0.5 // 归一化声誉下限
)

// Criteria 导师匹配条件
type Criteria struct {
	MinExpertiseGap            int     // 最小深度档差
	MaxExpertiseGap            int     // 最大深度档差
	ReputationFloor            float64 // 归一化声誉下限
	RequireSpecializationMatch bool    // 是否要求专业方向一致
}

// DefaultCriteria 默认匹配条件
func DefaultCriteria() Criteria {
	return Criteria{
		MinExpertiseGap: DefaultMinExpertiseGap,
		MaxExpertiseGap: DefaultMaxExpertiseGap,
		ReputationFloor: DefaultReputationFloor,
	}
}

// Match 一次导师匹配结果
type Match struct {
	MentorID     string   `json:"mentor_id"`
	StudentID    string   `json:"student_id"`
	Topic        string   `json:"topic"`
	Score        float64  `json:"compatibility_score"`
	SharedTopics []string `json:"shared_topics,omitempty"`
	MentorLevel  int      `json:"mentor_expertise_level"`
	StudentLevel int      `json:"student_current_level"`
	Reasoning    string   `json:"reasoning"` // 可读的匹配依据
}

// ScoredAgent 带评分的候选 Agent
type ScoredAgent struct {
	Agent *agent.Agent
	Score float64
}

// ═══════════════════════════════════════════════════════════════════════════
// Matchmaker
// ═══════════════════════════════════════════════════════════════════════════

// Matchmaker 导师/协作者/评审人匹配器
type Matchmaker struct {
	directory Directory
	graph     GraphQuerier
	logger    *slog.Logger
}

// Option Matchmaker 配置选项
type Option func(*Matchmaker)

// WithGraphQuerier 设置图查询协作方
func WithGraphQuerier(querier GraphQuerier) Option {
	return func(m *Matchmaker) { m.graph = querier }
}

// WithLogger 设置日志器
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matchmaker) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New 创建匹配器
func New(directory Directory, opts ...Option) *Matchmaker {
	m := &Matchmaker{
		directory: directory,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// normalizedReputation 归一化声誉（overall/100）
func normalizedReputation(a *agent.Agent) float64 {
	return a.Reputation().Overall() / 100
}

// depthLevel 主题深度换算为整数档位（0-10）
func depthLevel(a *agent.Agent, topic string) int {
	t, ok := a.Knowledge().Topic(topic)
	if !ok {
		return 0
	}
	return int(math.Round(t.Depth * 10))
}

// ═══════════════════════════════════════════════════════════════════════════
// 导师匹配
// ═══════════════════════════════════════════════════════════════════════════

// FindMentorForStudent 为学生按主题匹配最优导师
//
// 候选池为全部具备教学能力的 Agent。criteria 为 nil 时使用默认条件。
// 没有合适导师时返回 (zero, false)。
func (m *Matchmaker) FindMentorForStudent(ctx context.Context, student *agent.Agent, topic string, criteria *Criteria) (Match, bool) {
	c := DefaultCriteria()
	if criteria != nil {
		c = *criteria
	}

	var best Match
	found := false
	for _, candidate := range m.directory.List() {
		if candidate.ID() == student.ID() {
			continue
		}
		if !candidate.Capabilities().CanTeach {
			continue
		}

		match, ok := m.evaluateMentor(ctx, candidate, student, topic, c)
		if !ok {
			continue
		}
		if !found || match.Score > best.Score {
			best = match
			found = true
		}
	}

	if !found {
		m.logger.Info("no suitable mentor found",
			"student_id", student.ID(),
			"topic", topic)
		return Match{}, false
	}

	m.logger.Info("mentor match found",
		"student_id", student.ID(),
		"mentor_id", best.MentorID,
		"topic", topic,
		"score", best.Score)
	return best, true
}

// evaluateMentor 评估单个候选导师
func (m *Matchmaker) evaluateMentor(ctx context.Context, mentor, student *agent.Agent, topic string, c Criteria) (Match, bool) {
	if normalizedReputation(mentor) < c.ReputationFloor {
		return Match{}, false
	}
	if c.RequireSpecializationMatch && mentor.Specialization() != student.Specialization() {
		return Match{}, false
	}

	mentorLevel := depthLevel(mentor, topic)
	studentLevel := depthLevel(student, topic)
	gap := mentorLevel - studentLevel
	if gap < c.MinExpertiseGap || gap > c.MaxExpertiseGap {
		return Match{}, false
	}

	shared := m.sharedTopics(ctx, mentor.ID(), student.ID())

	score := 0.0
	switch gap {
	case 1:
		score += 0.4
	case 2:
		score += 0.3
	default:
		score += 0.2
	}
	score += min(float64(len(shared))*0.05, 0.3)
	score += min(normalizedReputation(mentor)/5, 0.2)
	score += min(float64(mentor.Reputation().TeachingSessions())*0.02, 0.1)
	score = min(score, 1.0)

	reasoning := fmt.Sprintf(
		"mentor has depth level %d on %q vs student's %d; expertise gap of %d is within the window; reputation %.2f; shared topics: %d",
		mentorLevel, topic, studentLevel, gap, normalizedReputation(mentor), len(shared))

	return Match{
		MentorID:     mentor.ID(),
		StudentID:    student.ID(),
		Topic:        topic,
		Score:        score,
		SharedTopics: shared,
		MentorLevel:  mentorLevel,
		StudentLevel: studentLevel,
		Reasoning:    reasoning,
	}, true
}

// sharedTopics 查询共享主题，失败时降级为空
func (m *Matchmaker) sharedTopics(ctx context.Context, mentorID, studentID string) []string {
	if m.graph == nil {
		return nil
	}
	topics, err := m.graph.SharedTopics(ctx, mentorID, studentID)
	if err != nil {
		m.logger.Error("failed to find shared topics",
			"mentor_id", mentorID,
			"student_id", studentID,
			"error", err)
		return nil
	}
	return topics
}

// ═══════════════════════════════════════════════════════════════════════════
// 协作者匹配
// ═══════════════════════════════════════════════════════════════════════════

// FindCollaborationPartners 匹配研究协作者
//
// 候选为同阶段的其他 Agent，深度相近者优先。
// maxPartners <= 0 时默认 3。没有候选时返回空列表。
func (m *Matchmaker) FindCollaborationPartners(ctx context.Context, a *agent.Agent, topic string, maxPartners int) []*agent.Agent {
	if maxPartners <= 0 {
		maxPartners = 3
	}

	ownDepth := 0.0
	if t, ok := a.Knowledge().Topic(topic); ok {
		ownDepth = t.Depth
	}

	var scored []ScoredAgent
	for _, candidate := range m.directory.List() {
		if candidate.ID() == a.ID() || candidate.Stage() != a.Stage() {
			continue
		}

		depth := 0.0
		if t, ok := candidate.Knowledge().Topic(topic); ok {
			depth = t.Depth
		}

		diff := ownDepth - depth
		if diff < 0 {
			diff = -diff
		}
		score := max(0, 1.0-diff*0.2)
		score += normalizedReputation(candidate) * 0.1
		scored = append(scored, ScoredAgent{Agent: candidate, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > maxPartners {
		scored = scored[:maxPartners]
	}

	partners := make([]*agent.Agent, 0, len(scored))
	for _, s := range scored {
		partners = append(partners, s.Agent)
	}

	m.logger.Info("collaboration partners found",
		"agent_id", a.ID(),
		"topic", topic,
		"num_partners", len(partners))
	return partners
}

// ═══════════════════════════════════════════════════════════════════════════
// 评审人匹配
// ═══════════════════════════════════════════════════════════════════════════

// FindReviewersForPaper 为论文匹配评审人
//
// 候选为研究者及以上阶段、不在排除列表（作者）中的 Agent。
// numReviewers <= 0 时默认 3。
func (m *Matchmaker) FindReviewersForPaper(ctx context.Context, topics []string, excludeIDs []string, numReviewers int) []*agent.Agent {
	if numReviewers <= 0 {
		numReviewers = 3
	}

	excluded := make(map[string]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}

	var scored []ScoredAgent
	for _, candidate := range m.directory.List() {
		if excluded[candidate.ID()] {
			continue
		}
		if !candidate.Capabilities().CanReview {
			continue
		}

		score := 0.0
		var depths []float64
		for _, topic := range topics {
			if t, ok := candidate.Knowledge().Topic(topic); ok {
				depths = append(depths, t.Depth)
			}
		}
		if len(depths) > 0 {
			var sum float64
			for _, d := range depths {
				sum += d
			}
			score += sum / float64(len(depths)) * 0.4
		}
		score += normalizedReputation(candidate) * 0.3
		score += min(float64(candidate.Reputation().ReviewsGiven())*0.03, 0.3)

		scored = append(scored, ScoredAgent{Agent: candidate, Score: score})
	}

	if len(scored) == 0 {
		m.logger.Warn("no reviewer candidates found")
		return nil
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > numReviewers {
		scored = scored[:numReviewers]
	}

	reviewers := make([]*agent.Agent, 0, len(scored))
	for _, s := range scored {
		reviewers = append(reviewers, s.Agent)
	}

	m.logger.Info("reviewers found", "num_reviewers", len(reviewers))
	return reviewers
}

// ═══════════════════════════════════════════════════════════════════════════
// 统计
// ═══════════════════════════════════════════════════════════════════════════

// Stats 匹配统计
type Stats struct {
	ActiveMentorships int `json:"active_mentorships"`
}

// GetStats 查询匹配统计，图查询失败时降级为 0
func (m *Matchmaker) GetStats(ctx context.Context) Stats {
	if m.graph == nil {
		return Stats{}
	}
	count, err := m.graph.ActiveMentorships(ctx)
	if err != nil {
		m.logger.Error("failed to query active mentorships", "error", err)
		return Stats{}
	}
	return Stats{ActiveMentorships: count}
}
