package reputation

import (
	"sync"
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════
// 维度与权重
// ═══════════════════════════════════════════════════════════════════════════

// Dimension 声誉维度
type Dimension string

const (
	DimensionTeaching      Dimension = "teaching"      // 教学
	DimensionResearch      Dimension = "research"      // 研究
	DimensionReview        Dimension = "review"        // 评审
	DimensionCollaboration Dimension = "collaboration" // 协作
)

// 综合评分权重
const (
	weightTeaching      = 0.25
	weightResearch      = 0.35
	weightReview        = 0.20
	weightCollaboration = 0.20
)

// initialScore 每个维度的初始值
const initialScore = 50.0

// DefaultQualificationThreshold 资格判定的默认门槛
const DefaultQualificationThreshold = 60.0

// clamp100 钳制到 [0,100]
func clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// ═══════════════════════════════════════════════════════════════════════════
// Score 声誉评分
// ═══════════════════════════════════════════════════════════════════════════

// Score Agent 的多维声誉评分
type Score struct {
	mu sync.RWMutex

	teaching      float64
	research      float64
	review        float64
	collaboration float64
	overall       float64

	papersPublished  int
	citations        int
	hIndex           int
	teachingSessions int
	studentSuccesses int
	reviewsGiven     int
	collaborations   int

	studentSuccessRate float64 // 学生成功率的滑动均值
	reviewHelpfulness  float64 // 评审有用度的滑动均值

	lastUpdated time.Time
}

// New 创建声誉评分，所有维度初始为 50
func New() *Score {
	s := &Score{
		teaching:      initialScore,
		research:      initialScore,
		review:        initialScore,
		collaboration: initialScore,
		lastUpdated:   time.Now(),
	}
	s.recalculate()
	return s
}

// recalculate 重算综合评分，调用方必须持有写锁
func (s *Score) recalculate() {
	s.overall = s.teaching*weightTeaching +
		s.research*weightResearch +
		s.review*weightReview +
		s.collaboration*weightCollaboration
	s.lastUpdated = time.Now()
}

// ═══════════════════════════════════════════════════════════════════════════
// 记录方法
// ═══════════════════════════════════════════════════════════════════════════

// RecordPublication 记录一次论文发表
//
// research += 2 + 3*impactFactor
func (s *Score) RecordPublication(impactFactor float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.papersPublished++
	s.research = clamp100(s.research + 2 + 3*impactFactor)
	s.recalculate()
}

// RecordCitation 记录一次被引用
//
// research += 0.5
func (s *Score) RecordCitation() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.citations++
	s.research = clamp100(s.research + 0.5)
	s.recalculate()
}

// UpdateHIndex 更新 h 指数
//
// 仅在升高时生效，research += 5 * 增量。
func (s *Score) UpdateHIndex(newHIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if newHIndex <= s.hIndex {
		return
	}
	delta := newHIndex - s.hIndex
	s.hIndex = newHIndex
	s.research = clamp100(s.research + 5*float64(delta))
	s.recalculate()
}

// RecordStudentOutcome 记录一次学生结果
//
// 维护学生成功率的滑动均值；teaching 成功 +5，失败 −2。
func (s *Score) RecordStudentOutcome(success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.teachingSessions++
	if success {
		s.studentSuccesses++
		s.teaching = clamp100(s.teaching + 5)
	} else {
		s.teaching = clamp100(s.teaching - 2)
	}
	s.studentSuccessRate = float64(s.studentSuccesses) / float64(s.teachingSessions)
	s.recalculate()
}

// RecordReviewFeedback 记录一次评审反馈
//
// rating 范围 [0,5]；review += (rating − 2.5) * 2，低分评审降低声誉。
func (s *Score) RecordReviewFeedback(rating float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reviewsGiven++
	// 滑动均值：helpfulness = (prev*(n-1) + rating) / n
	s.reviewHelpfulness = (s.reviewHelpfulness*float64(s.reviewsGiven-1) + rating) / float64(s.reviewsGiven)
	s.review = clamp100(s.review + (rating-2.5)*2)
	s.recalculate()
}

// RecordCollaboration 记录一次协作结果
//
// 成功 +3，失败 −1。
func (s *Score) RecordCollaboration(success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.collaborations++
	if success {
		s.collaboration = clamp100(s.collaboration + 3)
	} else {
		s.collaboration = clamp100(s.collaboration - 1)
	}
	s.recalculate()
}

// ═══════════════════════════════════════════════════════════════════════════
// 查询方法
// ═══════════════════════════════════════════════════════════════════════════

// Overall 综合声誉评分
func (s *Score) Overall() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.overall
}

// Dimension 单个维度的评分，未知维度返回 0
func (s *Score) Dimension(dim Dimension) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimensionLocked(dim)
}

func (s *Score) dimensionLocked(dim Dimension) float64 {
	switch dim {
	case DimensionTeaching:
		return s.teaching
	case DimensionResearch:
		return s.research
	case DimensionReview:
		return s.review
	case DimensionCollaboration:
		return s.collaboration
	default:
		return 0
	}
}

// IsQualifiedFor 判断指定维度是否达到门槛
//
// threshold <= 0 时使用默认门槛 60。纯查询，不修改状态。
func (s *Score) IsQualifiedFor(dim Dimension, threshold float64) bool {
	if threshold <= 0 {
		threshold = DefaultQualificationThreshold
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimensionLocked(dim) >= threshold
}

// Breakdown 声誉评分的完整快照
type Breakdown struct {
	Teaching           float64   `json:"teaching"`
	Research           float64   `json:"research"`
	Review             float64   `json:"review"`
	Collaboration      float64   `json:"collaboration"`
	Overall            float64   `json:"overall"`
	PapersPublished    int       `json:"papers_published"`
	Citations          int       `json:"citations"`
	HIndex             int       `json:"h_index"`
	TeachingSessions   int       `json:"teaching_sessions"`
	StudentSuccessRate float64   `json:"student_success_rate"`
	ReviewsGiven       int       `json:"reviews_given"`
	ReviewHelpfulness  float64   `json:"review_helpfulness"`
	Collaborations     int       `json:"collaborations"`
	LastUpdated        time.Time `json:"last_updated"`
}

// Snapshot 返回当前评分的完整快照
func (s *Score) Snapshot() Breakdown {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Breakdown{
		Teaching:           s.teaching,
		Research:           s.research,
		Review:             s.review,
		Collaboration:      s.collaboration,
		Overall:            s.overall,
		PapersPublished:    s.papersPublished,
		Citations:          s.citations,
		HIndex:             s.hIndex,
		TeachingSessions:   s.teachingSessions,
		StudentSuccessRate: s.studentSuccessRate,
		ReviewsGiven:       s.reviewsGiven,
		ReviewHelpfulness:  s.reviewHelpfulness,
		Collaborations:     s.collaborations,
		LastUpdated:        s.lastUpdated,
	}
}

// Restore 从快照恢复评分状态（持久化层加载时使用）
func (s *Score) Restore(b Breakdown) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.teaching = clamp100(b.Teaching)
	s.research = clamp100(b.Research)
	s.review = clamp100(b.Review)
	s.collaboration = clamp100(b.Collaboration)
	s.papersPublished = b.PapersPublished
	s.citations = b.Citations
	s.hIndex = b.HIndex
	s.teachingSessions = b.TeachingSessions
	s.studentSuccessRate = b.StudentSuccessRate
	s.reviewsGiven = b.ReviewsGiven
	s.reviewHelpfulness = b.ReviewHelpfulness
	s.collaborations = b.Collaborations
	s.recalculate()
}

// PapersPublished 发表论文数
func (s *Score) PapersPublished() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.papersPublished
}

// TeachingSessions 教学会话数
func (s *Score) TeachingSessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.teachingSessions
}

// ReviewsGiven 给出的评审数
func (s *Score) ReviewsGiven() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reviewsGiven
}

// CompareTo 与另一个评分比较综合分
//
// 返回正值表示当前评分更高。
func (s *Score) CompareTo(other *Score) float64 {
	return s.Overall() - other.Overall()
}
