package agent

import (
	"time"

	"github.com/google/uuid"
)

// ═══════════════════════════════════════════════════════════════════════════
// Experience 经验日志
// ═══════════════════════════════════════════════════════════════════════════

// ActivityType 经验活动类型
type ActivityType string

const (
	ActivityPaperRead     ActivityType = "paper_read"     // 阅读论文
	ActivityTeaching      ActivityType = "teaching"       // 教学
	ActivityLearning      ActivityType = "learning"       // 学习
	ActivityExperiment    ActivityType = "experiment"     // 实验
	ActivityReview        ActivityType = "review"         // 评审
	ActivityCollaboration ActivityType = "collaboration"  // 协作
	ActivityPublication   ActivityType = "publication"    // 发表
	ActivityPromotion     ActivityType = "promotion"      // 晋升
	ActivityHelpGiven     ActivityType = "help_given"     // 提供帮助
	ActivityHelpReceived  ActivityType = "help_received"  // 接受帮助
)

// Outcome 活动结果
type Outcome string

const (
	OutcomeSuccess Outcome = "success" // 成功
	OutcomePartial Outcome = "partial" // 部分成功
	OutcomeFailure Outcome = "failure" // 失败
)

// 各结果对应的经验值
var outcomeXP = map[Outcome]int{
	OutcomeSuccess: 10,
	OutcomePartial: 5,
	OutcomeFailure: 2,
}

// XP 结果对应的经验值，未知结果返回 0
func (o Outcome) XP() int {
	return outcomeXP[o]
}

// Experience 一条追加式经验记录
type Experience struct {
	ID          string         `json:"id"`
	Activity    ActivityType   `json:"activity"`
	Description string         `json:"description"`
	Outcome     Outcome        `json:"outcome"`
	XP          int            `json:"xp"`
	Timestamp   time.Time      `json:"timestamp"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// ═══════════════════════════════════════════════════════════════════════════
// Goal 目标
// ═══════════════════════════════════════════════════════════════════════════

// GoalStatus 目标状态
type GoalStatus string

const (
	GoalActive    GoalStatus = "active"    // 进行中
	GoalCompleted GoalStatus = "completed" // 已完成
	GoalAbandoned GoalStatus = "abandoned" // 已放弃
)

// Goal Agent 的一个目标，进度达到 Target 时自动完成
type Goal struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	Target      float64    `json:"target"`
	Progress    float64    `json:"progress"`
	Status      GoalStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt time.Time  `json:"completed_at,omitzero"`
}

// ═══════════════════════════════════════════════════════════════════════════
// MentorshipRelation 师徒关系
// ═══════════════════════════════════════════════════════════════════════════

// MentorshipRelation 一段师徒关系
//
// 关系结束时标记 Active=false 并记录 EndedAt 与评分，从不删除。
type MentorshipRelation struct {
	ID           string    `json:"id"`
	MentorID     string    `json:"mentor_id"`
	StudentID    string    `json:"student_id"`
	Topics       []string  `json:"topics,omitempty"`
	Sessions     int       `json:"sessions"`
	Progress     float64   `json:"progress"`                // [0,100]
	MentorRating *float64  `json:"mentor_rating,omitempty"` // [0,5]，结束时由学生给出
	Active       bool      `json:"active"`
	StartedAt    time.Time `json:"started_at"`
	EndedAt      time.Time `json:"ended_at,omitzero"`
}

// Successful 关系是否算作一次成功指导：已结束且进度 >= 70
func (r MentorshipRelation) Successful() bool {
	return !r.Active && r.Progress >= 70
}

// newRelationID 生成关系 ID
func newRelationID() string {
	return uuid.NewString()
}
