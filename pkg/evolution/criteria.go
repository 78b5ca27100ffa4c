package evolution

import (
	"time"

	"github.com/lwmacct/251215-go-pkg-collective/pkg/agent"
)

// ═══════════════════════════════════════════════════════════════════════════
// Criteria 晋升标准
// ═══════════════════════════════════════════════════════════════════════════

// Criteria 从某一阶段晋升到下一阶段的标准
type Criteria struct {
	FromStage              agent.Stage   `json:"from_stage"`
	ToStage                agent.Stage   `json:"to_stage"`
	MinPapersRead          int           `json:"min_papers_read"`
	MinKnowledgeDepth      float64       `json:"min_knowledge_depth"`      // 平均深度
	MinConfidence          float64       `json:"min_confidence"`           // 平均信心
	MinSuccessfulStudents  int           `json:"min_successful_students"`  // 成功指导的学生数
	MinPublications        int           `json:"min_publications"`         // 发表论文数
	MinReputation          float64       `json:"min_reputation"`           // 综合声誉
	MinTimeInStage         time.Duration `json:"min_time_in_stage"`        // 最短停留时间
	RequiresMentorApproval bool          `json:"requires_mentor_approval"` // 需要导师批准
}

// promotionLadder 各阶段跃迁的标准表（不可变）
var promotionLadder = map[agent.Stage]Criteria{
	agent.StageApprentice: {
		FromStage:              agent.StageApprentice,
		ToStage:                agent.StagePractitioner,
		MinPapersRead:          5,
		MinKnowledgeDepth:      0.65,
		MinConfidence:          0.60,
		MinTimeInStage:         7 * 24 * time.Hour,
		RequiresMentorApproval: true,
	},
	agent.StagePractitioner: {
		FromStage:             agent.StagePractitioner,
		ToStage:               agent.StageTeacher,
		MinPapersRead:         15,
		MinKnowledgeDepth:     0.75,
		MinConfidence:         0.70,
		MinSuccessfulStudents: 3,
		MinReputation:         55,
		MinTimeInStage:        14 * 24 * time.Hour,
	},
	agent.StageTeacher: {
		FromStage:             agent.StageTeacher,
		ToStage:               agent.StageResearcher,
		MinPapersRead:         30,
		MinKnowledgeDepth:     0.80,
		MinConfidence:         0.75,
		MinSuccessfulStudents: 5,
		MinPublications:       2,
		MinReputation:         65,
		MinTimeInStage:        21 * 24 * time.Hour,
	},
	agent.StageResearcher: {
		FromStage:             agent.StageResearcher,
		ToStage:               agent.StageExpert,
		MinPapersRead:         50,
		MinKnowledgeDepth:     0.85,
		MinConfidence:         0.80,
		MinSuccessfulStudents: 10,
		MinPublications:       10,
		MinReputation:         80,
		MinTimeInStage:        30 * 24 * time.Hour,
	},
}

// CriteriaFor 返回从指定阶段晋升的标准
//
// 专家阶段或未知阶段没有下一级，返回 (zero, false)。
func CriteriaFor(stage agent.Stage) (Criteria, bool) {
	c, ok := promotionLadder[stage]
	return c, ok
}
