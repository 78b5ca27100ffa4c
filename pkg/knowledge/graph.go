package knowledge

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ═══════════════════════════════════════════════════════════════════════════
// Graph 知识图谱
// ═══════════════════════════════════════════════════════════════════════════

// Graph Agent 的个人知识图谱
//
// 管理主题集合与主题间的有向关系，所有方法并发安全。
type Graph struct {
	mu        sync.RWMutex
	id        string
	ownerID   string
	topics    map[string]*TopicKnowledge // key: topic name
	relations []Relation
	logger    *slog.Logger
}

// Option Graph 配置选项
type Option func(*Graph)

// WithOwner 设置图谱所属的 Agent ID
func WithOwner(agentID string) Option {
	return func(g *Graph) { g.ownerID = agentID }
}

// WithLogger 设置日志器
func WithLogger(logger *slog.Logger) Option {
	return func(g *Graph) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New 创建空的知识图谱
func New(opts ...Option) *Graph {
	g := &Graph{
		id:     uuid.NewString(),
		topics: make(map[string]*TopicKnowledge),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ID 图谱唯一标识
func (g *Graph) ID() string {
	return g.id
}

// OwnerID 图谱所属 Agent ID
func (g *Graph) OwnerID() string {
	return g.ownerID
}

// ═══════════════════════════════════════════════════════════════════════════
// 主题操作
// ═══════════════════════════════════════════════════════════════════════════

// AddTopic 添加主题（幂等）
//
// 主题已存在时不做任何修改，返回现有主题的副本。
// 初始评分在进入图谱前钳制到 [0,1]。
func (g *Graph) AddTopic(name string, depth, confidence float64, prerequisites ...string) TopicKnowledge {
	g.mu.Lock()
	defer g.mu.Unlock()

	if existing, ok := g.topics[name]; ok {
		return existing.clone()
	}

	topic := newTopic(name, depth, confidence, append([]string(nil), prerequisites...))
	g.topics[name] = topic
	g.logger.Debug("topic added",
		"graph_id", g.id,
		"topic", name,
		"depth", topic.Depth,
		"confidence", topic.Confidence)
	return topic.clone()
}

// Topic 查询主题，命中时刷新访问时间
func (g *Graph) Topic(name string) (TopicKnowledge, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	topic, ok := g.topics[name]
	if !ok {
		return TopicKnowledge{}, false
	}
	topic.LastAccessed = time.Now()
	return topic.clone(), true
}

// HasTopic 主题是否存在（不刷新访问时间）
func (g *Graph) HasTopic(name string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.topics[name]
	return ok
}

// UpdateTopic 应用理解度增量
//
// 主题不存在时返回 (zero, false)，不自动创建。
func (g *Graph) UpdateTopic(name string, delta Delta) (TopicKnowledge, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	topic, ok := g.topics[name]
	if !ok {
		return TopicKnowledge{}, false
	}

	topic.applyDelta(delta)
	if delta.Source != nil {
		topic.Sources = append(topic.Sources, *delta.Source)
	}
	return topic.clone(), true
}

// ValidateTopic 记录一次主题知识的检验结果
//
// 成功：信心 +0.1 且标记为已检验；失败：信心 −0.15。
func (g *Graph) ValidateTopic(name string, success bool) (TopicKnowledge, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	topic, ok := g.topics[name]
	if !ok {
		return TopicKnowledge{}, false
	}
	topic.validate(success)
	return topic.clone(), true
}

// AttachPaper 记录主题关联的论文
func (g *Graph) AttachPaper(name, paperID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	topic, ok := g.topics[name]
	if !ok {
		return false
	}
	topic.RelatedPapers = append(topic.RelatedPapers, paperID)
	topic.LastUpdated = time.Now()
	return true
}

// TopicNames 所有主题名
func (g *Graph) TopicNames() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	names := make([]string, 0, len(g.topics))
	for name := range g.topics {
		names = append(names, name)
	}
	return names
}

// TopicCount 主题数量
func (g *Graph) TopicCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.topics)
}

// ═══════════════════════════════════════════════════════════════════════════
// 关系操作
// ═══════════════════════════════════════════════════════════════════════════

// AddRelation 添加主题间的有向关系
//
// 不做去重，重复添加会产生重复关系。strength 钳制到 [0,1]。
func (g *Graph) AddRelation(from, to string, kind RelationKind, strength float64) Relation {
	g.mu.Lock()
	defer g.mu.Unlock()

	rel := Relation{
		From:      from,
		To:        to,
		Kind:      kind,
		Strength:  clamp01(strength),
		CreatedAt: time.Now(),
	}
	g.relations = append(g.relations, rel)

	// prerequisite 关系同步到目标主题的前置列表
	if kind == RelationPrerequisite {
		if topic, ok := g.topics[to]; ok && !contains(topic.Prerequisites, from) {
			topic.Prerequisites = append(topic.Prerequisites, from)
		}
	}
	return rel
}

// Relations 所有关系的副本
func (g *Graph) Relations() []Relation {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]Relation(nil), g.relations...)
}

// RelatedTopics 与指定主题有关系的主题名（双向，去重）
func (g *Graph) RelatedTopics(name string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.relatedTopicsLocked(name)
}

func (g *Graph) relatedTopicsLocked(name string) []string {
	seen := make(map[string]bool)
	var related []string
	for _, rel := range g.relations {
		var other string
		switch {
		case rel.From == name:
			other = rel.To
		case rel.To == name:
			other = rel.From
		default:
			continue
		}
		if !seen[other] {
			seen[other] = true
			related = append(related, other)
		}
	}
	return related
}

// Prerequisites 主题的前置主题名
func (g *Graph) Prerequisites(name string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	topic, ok := g.topics[name]
	if !ok {
		return nil
	}
	return append([]string(nil), topic.Prerequisites...)
}

// CheckPrerequisitesMet 检查前置主题是否全部达到掌握度门槛
//
// threshold <= 0 时使用默认门槛 0.6。前置主题缺失视为未满足。
// 返回是否满足以及未满足的前置主题列表。
func (g *Graph) CheckPrerequisitesMet(name string, threshold float64) (bool, []string) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.checkPrerequisitesLocked(name, threshold)
}

func (g *Graph) checkPrerequisitesLocked(name string, threshold float64) (bool, []string) {
	if threshold <= 0 {
		threshold = DefaultPrereqThreshold
	}

	topic, ok := g.topics[name]
	if !ok {
		return false, nil
	}

	var unmet []string
	for _, prereq := range topic.Prerequisites {
		pt, ok := g.topics[prereq]
		if !ok || pt.Mastery() < threshold {
			unmet = append(unmet, prereq)
		}
	}
	return len(unmet) == 0, unmet
}

// ═══════════════════════════════════════════════════════════════════════════
// 聚合查询
// ═══════════════════════════════════════════════════════════════════════════

// AverageDepth 所有主题的平均深度，空图谱返回 0
func (g *Graph) AverageDepth() float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if len(g.topics) == 0 {
		return 0
	}
	var sum float64
	for _, topic := range g.topics {
		sum += topic.Depth
	}
	return sum / float64(len(g.topics))
}

// AverageConfidence 所有主题的平均信心，空图谱返回 0
func (g *Graph) AverageConfidence() float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if len(g.topics) == 0 {
		return 0
	}
	var sum float64
	for _, topic := range g.topics {
		sum += topic.Confidence
	}
	return sum / float64(len(g.topics))
}

// MasteryByTopic 每个主题的综合掌握度
func (g *Graph) MasteryByTopic() map[string]float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()

	result := make(map[string]float64, len(g.topics))
	for name, topic := range g.topics {
		result[name] = topic.Mastery()
	}
	return result
}

// TopicsNeedingReview 需要复习的主题名
//
// 规则见 [TopicKnowledge.NeedsReview]。
func (g *Graph) TopicsNeedingReview() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var names []string
	for name, topic := range g.topics {
		if topic.NeedsReview() {
			names = append(names, name)
		}
	}
	return names
}

// Snapshot 所有主题的副本，key 为主题名
func (g *Graph) Snapshot() map[string]TopicKnowledge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	result := make(map[string]TopicKnowledge, len(g.topics))
	for name, topic := range g.topics {
		result[name] = topic.clone()
	}
	return result
}

// ═══════════════════════════════════════════════════════════════════════════
// 知识转移
// ═══════════════════════════════════════════════════════════════════════════

// Merge 合并来自其他来源的知识（教学会话的学生侧）
//
// 已存在的主题应用 Boost 增量；新主题按 Initial 值创建，
// Initial 为零时使用默认起点。返回新增主题的数量。
func (g *Graph) Merge(transfers map[string]Transfer, source *Source) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	created := 0
	for name, tr := range transfers {
		if topic, ok := g.topics[name]; ok {
			topic.applyDelta(Delta{
				Depth:      tr.DepthBoost,
				Breadth:    tr.BreadthBoost,
				Confidence: tr.ConfidenceBoost,
			})
			if source != nil {
				topic.Sources = append(topic.Sources, *source)
			}
			continue
		}

		depth := tr.InitialDepth
		if depth == 0 {
			depth = transferDefaultDepth
		}
		confidence := tr.InitialConfidence
		if confidence == 0 {
			confidence = transferDefaultConfidence
		}
		topic := newTopic(name, depth, confidence, nil)
		if source != nil {
			topic.Sources = append(topic.Sources, *source)
		}
		g.topics[name] = topic
		created++
	}

	if created > 0 {
		g.logger.Debug("knowledge merged", "graph_id", g.id, "new_topics", created)
	}
	return created
}

// Restore 用持久化快照整体替换图谱内容（持久化层加载时使用）
func (g *Graph) Restore(topics map[string]TopicKnowledge, relations []Relation) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.topics = make(map[string]*TopicKnowledge, len(topics))
	for name, topic := range topics {
		t := topic.clone()
		t.Depth = clamp01(t.Depth)
		t.Breadth = clamp01(t.Breadth)
		t.Confidence = clamp01(t.Confidence)
		g.topics[name] = &t
	}
	g.relations = append([]Relation(nil), relations...)
}

// contains 线性查找
func contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
