package knowledge

import (
	"time"

	"github.com/google/uuid"
)

// ═══════════════════════════════════════════════════════════════════════════
// 评分常量
// ═══════════════════════════════════════════════════════════════════════════

// 掌握度权重：mastery = 0.4*depth + 0.3*breadth + 0.3*confidence
const (
	masteryDepthWeight      = 0.4
	masteryBreadthWeight    = 0.3
	masteryConfidenceWeight = 0.3
)

// DefaultPrereqThreshold 前置主题的默认掌握度门槛
const DefaultPrereqThreshold = 0.6

// reviewStaleAfter 超过此时长未访问的主题需要复习
const reviewStaleAfter = 30 * 24 * time.Hour

// ═══════════════════════════════════════════════════════════════════════════
// Source 知识来源
// ═══════════════════════════════════════════════════════════════════════════

// SourceType 知识来源类型
type SourceType string

const (
	SourcePaper      SourceType = "paper"      // 论文
	SourceMentor     SourceType = "mentor"     // 导师
	SourceExperiment SourceType = "experiment" // 实验
	SourceSelfStudy  SourceType = "self-study" // 自学
)

// Source 一条知识的来源记录
type Source struct {
	Type        SourceType `json:"source_type"`
	ID          string     `json:"source_id"` // 论文 ID、导师 Agent ID、实验 ID 等
	Timestamp   time.Time  `json:"timestamp"`
	Reliability float64    `json:"reliability"` // [0,1]
}

// NewSource creates a Source stamped with the current time.
func NewSource(sourceType SourceType, id string, reliability float64) Source {
	return Source{
		Type:        sourceType,
		ID:          id,
		Timestamp:   time.Now(),
		Reliability: clamp01(reliability),
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// TopicKnowledge 主题知识
// ═══════════════════════════════════════════════════════════════════════════

// TopicKnowledge 单个主题的掌握状态
type TopicKnowledge struct {
	TopicID         string     `json:"topic_id"`
	Name            string     `json:"name"`
	Depth           float64    `json:"depth_score"`      // 理解深度 [0,1]
	Breadth         float64    `json:"breadth_score"`    // 跨子主题广度 [0,1]
	Confidence      float64    `json:"confidence"`       // 自评信心 [0,1]
	Validated       bool       `json:"validated"`        // 知识是否经过检验
	ValidationCount int        `json:"validation_count"` // 检验次数
	LastAccessed    time.Time  `json:"last_accessed"`
	LastUpdated     time.Time  `json:"last_updated"`
	Sources         []Source   `json:"sources,omitempty"`
	Prerequisites   []string   `json:"prerequisites,omitempty"` // 前置主题名
	Subtopics       []string   `json:"subtopics,omitempty"`
	RelatedPapers   []string   `json:"related_papers,omitempty"`
	Notes           string     `json:"notes,omitempty"`
}

// newTopic 创建新主题，评分在构造时钳制到 [0,1]
func newTopic(name string, depth, confidence float64, prerequisites []string) *TopicKnowledge {
	now := time.Now()
	return &TopicKnowledge{
		TopicID:       uuid.NewString(),
		Name:          name,
		Depth:         clamp01(depth),
		Confidence:    clamp01(confidence),
		LastAccessed:  now,
		LastUpdated:   now,
		Prerequisites: prerequisites,
	}
}

// Mastery 综合掌握度评分
func (t *TopicKnowledge) Mastery() float64 {
	return t.Depth*masteryDepthWeight +
		t.Breadth*masteryBreadthWeight +
		t.Confidence*masteryConfidenceWeight
}

// NeedsReview reports whether the topic should be revisited.
//
// 规则：超过 30 天未访问、未经检验、或信心低于 0.6。
func (t *TopicKnowledge) NeedsReview() bool {
	return time.Since(t.LastAccessed) > reviewStaleAfter ||
		!t.Validated ||
		t.Confidence < 0.6
}

// applyDelta 应用理解度增量，饱和式钳制到 [0,1]
func (t *TopicKnowledge) applyDelta(d Delta) {
	t.Depth = clamp01(t.Depth + d.Depth)
	t.Breadth = clamp01(t.Breadth + d.Breadth)
	t.Confidence = clamp01(t.Confidence + d.Confidence)
	t.LastUpdated = time.Now()
}

// validate 记录一次检验结果并调整信心
func (t *TopicKnowledge) validate(success bool) {
	t.ValidationCount++
	if success {
		t.Validated = true
		t.Confidence = clamp01(t.Confidence + 0.1)
	} else {
		t.Confidence = clamp01(t.Confidence - 0.15)
	}
	t.LastUpdated = time.Now()
}

// clone 返回深拷贝，切片独立
func (t *TopicKnowledge) clone() TopicKnowledge {
	c := *t
	c.Sources = append([]Source(nil), t.Sources...)
	c.Prerequisites = append([]string(nil), t.Prerequisites...)
	c.Subtopics = append([]string(nil), t.Subtopics...)
	c.RelatedPapers = append([]string(nil), t.RelatedPapers...)
	return c
}

// ═══════════════════════════════════════════════════════════════════════════
// Delta 理解度增量
// ═══════════════════════════════════════════════════════════════════════════

// Delta 一次更新中应用于主题评分的增量，可附带知识来源
type Delta struct {
	Depth      float64
	Breadth    float64
	Confidence float64
	Source     *Source // 可选，记录本次更新的知识来源
}

// ═══════════════════════════════════════════════════════════════════════════
// Relation 概念关系
// ═══════════════════════════════════════════════════════════════════════════

// RelationKind 概念关系类型
type RelationKind string

const (
	RelationPrerequisite RelationKind = "prerequisite" // 前置
	RelationRelated      RelationKind = "related"      // 相关
	RelationSubtopic     RelationKind = "subtopic"     // 子主题
	RelationApplication  RelationKind = "application"  // 应用
)

// Relation 两个主题之间的有向关系
type Relation struct {
	From      string       `json:"from_topic"`
	To        string       `json:"to_topic"`
	Kind      RelationKind `json:"relation_type"`
	Strength  float64      `json:"strength"` // [0,1]
	CreatedAt time.Time    `json:"created_at"`
}

// ═══════════════════════════════════════════════════════════════════════════
// Transfer 知识转移
// ═══════════════════════════════════════════════════════════════════════════

// Transfer 教学会话中从其他来源（导师、论文）转移的知识
//
// 已存在的主题应用 Boost 增量；新主题按 Initial 值创建，
// Initial 为零时使用默认起点（depth 0.3 / confidence 0.4）。
type Transfer struct {
	DepthBoost        float64
	BreadthBoost      float64
	ConfidenceBoost   float64
	InitialDepth      float64
	InitialConfidence float64
}

// 新主题的默认起点
const (
	transferDefaultDepth      = 0.3
	transferDefaultConfidence = 0.4
)

// clamp01 钳制到 [0,1]
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
