package agent

// ═══════════════════════════════════════════════════════════════════════════
// Stage 发展阶段
// ═══════════════════════════════════════════════════════════════════════════

// Stage Agent 的发展阶段，只能前进不能后退
type Stage string

const (
	StageApprentice   Stage = "apprentice"   // 学徒
	StagePractitioner Stage = "practitioner" // 实践者
	StageTeacher      Stage = "teacher"      // 教师
	StageResearcher   Stage = "researcher"   // 研究者
	StageExpert       Stage = "expert"       // 专家
)

// stageOrder 阶段的全序
var stageOrder = map[Stage]int{
	StageApprentice:   0,
	StagePractitioner: 1,
	StageTeacher:      2,
	StageResearcher:   3,
	StageExpert:       4,
}

// Stages 按晋升顺序排列的全部阶段
func Stages() []Stage {
	return []Stage{StageApprentice, StagePractitioner, StageTeacher, StageResearcher, StageExpert}
}

// Valid 是否为已知阶段
func (s Stage) Valid() bool {
	_, ok := stageOrder[s]
	return ok
}

// Index 阶段序号，未知阶段返回 -1
func (s Stage) Index() int {
	idx, ok := stageOrder[s]
	if !ok {
		return -1
	}
	return idx
}

// Next 下一阶段，专家或未知阶段返回 ("", false)
func (s Stage) Next() (Stage, bool) {
	idx, ok := stageOrder[s]
	if !ok || idx >= len(stageOrder)-1 {
		return "", false
	}
	return Stages()[idx+1], true
}

// GapTo 到另一阶段的序号差（other - s），任一未知时返回 0
func (s Stage) GapTo(other Stage) int {
	si, ok1 := stageOrder[s]
	oi, ok2 := stageOrder[other]
	if !ok1 || !ok2 {
		return 0
	}
	return oi - si
}

// ═══════════════════════════════════════════════════════════════════════════
// Capabilities 阶段能力
// ═══════════════════════════════════════════════════════════════════════════

// Capabilities 由阶段决定的能力集合
type Capabilities struct {
	CanTeach                bool `json:"can_teach"`
	CanResearch             bool `json:"can_research"`
	CanReview               bool `json:"can_review"`
	RequiresMentor          bool `json:"requires_mentor"`
	MaxConcurrentActivities int  `json:"max_concurrent_activities"`
}

// stageCapabilities 各阶段的能力表
var stageCapabilities = map[Stage]Capabilities{
	StageApprentice:   {RequiresMentor: true, MaxConcurrentActivities: 2},
	StagePractitioner: {RequiresMentor: true, MaxConcurrentActivities: 4},
	StageTeacher:      {CanTeach: true, CanResearch: true, MaxConcurrentActivities: 6},
	StageResearcher:   {CanTeach: true, CanResearch: true, CanReview: true, MaxConcurrentActivities: 8},
	StageExpert:       {CanTeach: true, CanResearch: true, CanReview: true, MaxConcurrentActivities: 10},
}

// CapabilitiesFor 返回阶段对应的能力（纯函数）
//
// 未知阶段返回学徒能力。
func CapabilitiesFor(stage Stage) Capabilities {
	caps, ok := stageCapabilities[stage]
	if !ok {
		return stageCapabilities[StageApprentice]
	}
	return caps
}
