package evolution

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/lwmacct/251215-go-pkg-collective/pkg/agent"
)

// ═══════════════════════════════════════════════════════════════════════════
// Evaluation 评估结果
// ═══════════════════════════════════════════════════════════════════════════

// Evaluation 一次晋升评估的结果
type Evaluation struct {
	AgentID      string          `json:"agent_id"`
	CurrentStage agent.Stage     `json:"current_stage"`
	NextStage    agent.Stage     `json:"next_stage,omitempty"`
	Eligible     bool            `json:"eligible"`
	Checks       map[string]bool `json:"checks"`             // 逐项判定
	Missing      []string        `json:"missing,omitempty"`  // 缺失项的可读说明
	Notes        string          `json:"notes,omitempty"`
	EvaluatedAt  time.Time       `json:"evaluated_at"`
}

// ═══════════════════════════════════════════════════════════════════════════
// Engine 晋升引擎
// ═══════════════════════════════════════════════════════════════════════════

// Engine 阶段晋升引擎，无可变状态
type Engine struct {
	logger *slog.Logger
}

// EngineOption Engine 配置选项
type EngineOption func(*Engine)

// WithLogger 设置日志器
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine 创建晋升引擎
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate 评估 Agent 是否满足晋升到下一阶段的标准
//
// 只读操作，不修改 Agent 状态。专家阶段返回 Eligible=false 并注明已到顶。
func (e *Engine) Evaluate(a *agent.Agent) Evaluation {
	eval := Evaluation{
		AgentID:      a.ID(),
		CurrentStage: a.Stage(),
		Checks:       make(map[string]bool),
		EvaluatedAt:  time.Now(),
	}

	criteria, ok := CriteriaFor(eval.CurrentStage)
	if !ok {
		eval.Notes = "already at the highest stage"
		return eval
	}
	eval.NextStage = criteria.ToStage

	papersRead := a.PapersRead()
	avgDepth := a.Knowledge().AverageDepth()
	avgConfidence := a.Knowledge().AverageConfidence()
	students := a.SuccessfulStudents()
	publications := a.PapersAuthored()
	reput := a.Reputation().Overall()
	timeInStage := a.TimeInStage()

	check := func(name string, ok bool, missing string) {
		eval.Checks[name] = ok
		if !ok {
			eval.Missing = append(eval.Missing, missing)
		}
	}

	check("papers_read", papersRead >= criteria.MinPapersRead,
		fmt.Sprintf("papers read %d/%d", papersRead, criteria.MinPapersRead))
	check("knowledge_depth", avgDepth >= criteria.MinKnowledgeDepth,
		fmt.Sprintf("average knowledge depth %.2f/%.2f", avgDepth, criteria.MinKnowledgeDepth))
	check("confidence", avgConfidence >= criteria.MinConfidence,
		fmt.Sprintf("average confidence %.2f/%.2f", avgConfidence, criteria.MinConfidence))
	check("successful_students", students >= criteria.MinSuccessfulStudents,
		fmt.Sprintf("successful students %d/%d", students, criteria.MinSuccessfulStudents))
	check("publications", publications >= criteria.MinPublications,
		fmt.Sprintf("publications %d/%d", publications, criteria.MinPublications))
	check("reputation", reput >= criteria.MinReputation,
		fmt.Sprintf("reputation %.1f/%.1f", reput, criteria.MinReputation))
	check("time_in_stage", timeInStage >= criteria.MinTimeInStage,
		fmt.Sprintf("time in stage %s/%s", timeInStage.Round(time.Hour), criteria.MinTimeInStage))

	if criteria.RequiresMentorApproval {
		check("mentor_approval", a.HasMentor(),
			"an active mentor is required to approve this promotion")
	}

	eval.Eligible = len(eval.Missing) == 0
	return eval
}

// Promote 按评估结果执行晋升
//
// 评估不合格或阶段已变化时不做任何事并返回 false。
// 晋升会切换阶段、重算能力、递增晋升计数并记录一条经验。
func (e *Engine) Promote(a *agent.Agent, eval Evaluation) bool {
	if !eval.Eligible || eval.NextStage == "" {
		return false
	}
	if a.Stage() != eval.CurrentStage {
		e.logger.Warn("stale evaluation, stage changed since",
			"agent_id", a.ID(),
			"evaluated_stage", eval.CurrentStage,
			"current_stage", a.Stage())
		return false
	}

	if !a.AdvanceStage(eval.NextStage) {
		return false
	}

	a.LogExperience(agent.ActivityPromotion,
		fmt.Sprintf("promoted from %s to %s", eval.CurrentStage, eval.NextStage),
		agent.OutcomeSuccess)

	e.logger.Info("agent promoted",
		"agent_id", a.ID(),
		"from", eval.CurrentStage,
		"to", eval.NextStage)
	return true
}

// CheckAndPromote 评估并在合格时立即晋升
func (e *Engine) CheckAndPromote(a *agent.Agent) (bool, Evaluation) {
	eval := e.Evaluate(a)
	if !eval.Eligible {
		return false, eval
	}
	return e.Promote(a, eval), eval
}

// ═══════════════════════════════════════════════════════════════════════════
// Progress 晋升进度
// ═══════════════════════════════════════════════════════════════════════════

// Progress 各项标准的完成百分比（[0,100]）
//
// 专家阶段返回 (nil, false)。标准为零的项直接记为 100。
func (e *Engine) Progress(a *agent.Agent) (map[string]float64, bool) {
	criteria, ok := CriteriaFor(a.Stage())
	if !ok {
		return nil, false
	}

	progress := make(map[string]float64)
	ratio := func(current, required float64) float64 {
		if required <= 0 {
			return 100
		}
		pct := current / required * 100
		if pct > 100 {
			pct = 100
		}
		return pct
	}

	progress["papers_read"] = ratio(float64(a.PapersRead()), float64(criteria.MinPapersRead))
	progress["knowledge_depth"] = ratio(a.Knowledge().AverageDepth(), criteria.MinKnowledgeDepth)
	progress["confidence"] = ratio(a.Knowledge().AverageConfidence(), criteria.MinConfidence)
	progress["successful_students"] = ratio(float64(a.SuccessfulStudents()), float64(criteria.MinSuccessfulStudents))
	progress["publications"] = ratio(float64(a.PapersAuthored()), float64(criteria.MinPublications))
	progress["reputation"] = ratio(a.Reputation().Overall(), criteria.MinReputation)
	progress["time_in_stage"] = ratio(a.TimeInStage().Hours(), criteria.MinTimeInStage.Hours())

	if criteria.RequiresMentorApproval {
		if a.HasMentor() {
			progress["mentor_approval"] = 100
		} else {
			progress["mentor_approval"] = 0
		}
	}
	return progress, true
}
