package evolution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/251215-go-pkg-collective/pkg/agent"
	"github.com/lwmacct/251215-go-pkg-collective/pkg/knowledge"
)

// seasonedApprentice 构造一个在学徒阶段停留了 8 天的 Agent
func seasonedApprentice(t *testing.T) *agent.Agent {
	t.Helper()
	past := time.Now().Add(-8 * 24 * time.Hour)
	return agent.FromState(agent.State{
		Name:           "ada",
		Specialization: "nlp",
		Stage:          agent.StageApprentice,
		CreatedAt:      past,
		EnteredStageAt: past,
	})
}

func qualifyApprentice(a *agent.Agent) {
	for i := 0; i < 5; i++ {
		a.RecordPaperRead("paper")
	}
	a.Knowledge().AddTopic("attention", 0.7, 0.65)
	a.AddMentor(agent.MentorshipRelation{
		ID:        "rel-1",
		MentorID:  "mentor-1",
		StudentID: a.ID(),
		Active:    true,
		StartedAt: time.Now(),
	})
}

func TestCriteriaFor(t *testing.T) {
	t.Run("ladder covers every stage below expert", func(t *testing.T) {
		for _, stage := range agent.Stages() {
			c, ok := CriteriaFor(stage)
			if stage == agent.StageExpert {
				assert.False(t, ok)
				continue
			}
			require.True(t, ok, string(stage))
			next, _ := stage.Next()
			assert.Equal(t, next, c.ToStage)
		}
	})

	t.Run("only the first rung needs mentor approval", func(t *testing.T) {
		for stage, want := range map[agent.Stage]bool{
			agent.StageApprentice:   true,
			agent.StagePractitioner: false,
			agent.StageTeacher:      false,
			agent.StageResearcher:   false,
		} {
			c, _ := CriteriaFor(stage)
			assert.Equal(t, want, c.RequiresMentorApproval, string(stage))
		}
	})
}

func TestEvaluate(t *testing.T) {
	engine := NewEngine()

	t.Run("qualified apprentice is eligible", func(t *testing.T) {
		a := seasonedApprentice(t)
		qualifyApprentice(a)

		eval := engine.Evaluate(a)
		assert.True(t, eval.Eligible, "missing: %v", eval.Missing)
		assert.Equal(t, agent.StagePractitioner, eval.NextStage)
		assert.Empty(t, eval.Missing)
		for name, ok := range eval.Checks {
			assert.True(t, ok, name)
		}
	})

	t.Run("insufficient depth reports one missing item", func(t *testing.T) {
		a := seasonedApprentice(t)
		qualifyApprentice(a)
		// 调整为略低于门槛的深度
		a.Knowledge().UpdateTopic("attention", knowledge.Delta{Depth: -0.06})

		eval := engine.Evaluate(a)
		assert.False(t, eval.Eligible)
		require.Len(t, eval.Missing, 1)
		assert.Contains(t, eval.Missing[0], "knowledge depth")
		assert.False(t, eval.Checks["knowledge_depth"])
	})

	t.Run("missing mentor blocks the first rung", func(t *testing.T) {
		a := seasonedApprentice(t)
		for i := 0; i < 5; i++ {
			a.RecordPaperRead("paper")
		}
		a.Knowledge().AddTopic("attention", 0.7, 0.65)

		eval := engine.Evaluate(a)
		assert.False(t, eval.Eligible)
		assert.False(t, eval.Checks["mentor_approval"])
	})

	t.Run("fresh apprentice fails time in stage", func(t *testing.T) {
		a := agent.New("bob", "nlp")
		eval := engine.Evaluate(a)
		assert.False(t, eval.Eligible)
		assert.False(t, eval.Checks["time_in_stage"])
	})

	t.Run("expert has no next stage", func(t *testing.T) {
		a := agent.New("eve", "nlp", agent.WithStage(agent.StageExpert))
		eval := engine.Evaluate(a)
		assert.False(t, eval.Eligible)
		assert.Empty(t, eval.NextStage)
		assert.NotEmpty(t, eval.Notes)
	})
}

func TestPromote(t *testing.T) {
	engine := NewEngine()

	t.Run("promotes eligible agent", func(t *testing.T) {
		a := seasonedApprentice(t)
		qualifyApprentice(a)

		eval := engine.Evaluate(a)
		require.True(t, eval.Eligible)

		ok := engine.Promote(a, eval)
		assert.True(t, ok)
		assert.Equal(t, agent.StagePractitioner, a.Stage())
		assert.Equal(t, 1, a.Promotions())

		// 晋升写入经验日志
		promos := a.ExperiencesByActivity(agent.ActivityPromotion)
		require.Len(t, promos, 1)
		assert.Contains(t, promos[0].Description, "practitioner")
	})

	t.Run("refuses ineligible evaluation", func(t *testing.T) {
		a := agent.New("bob", "nlp")
		eval := engine.Evaluate(a)
		assert.False(t, engine.Promote(a, eval))
		assert.Equal(t, agent.StageApprentice, a.Stage())
	})

	t.Run("refuses stale evaluation", func(t *testing.T) {
		a := seasonedApprentice(t)
		qualifyApprentice(a)
		eval := engine.Evaluate(a)
		require.True(t, eval.Eligible)

		// 评估之后阶段已经变化
		a.AdvanceStage(agent.StagePractitioner)
		assert.False(t, engine.Promote(a, eval))
	})
}

func TestCheckAndPromote(t *testing.T) {
	engine := NewEngine()
	a := seasonedApprentice(t)
	qualifyApprentice(a)

	promoted, eval := engine.CheckAndPromote(a)
	assert.True(t, promoted)
	assert.True(t, eval.Eligible)
	assert.Equal(t, agent.StagePractitioner, a.Stage())

	// 刚晋升，立即复查不合格（停留时间清零）
	promoted, eval = engine.CheckAndPromote(a)
	assert.False(t, promoted)
	assert.False(t, eval.Eligible)
}

func TestProgress(t *testing.T) {
	engine := NewEngine()

	t.Run("partial progress", func(t *testing.T) {
		a := agent.New("ada", "nlp")
		a.RecordPaperRead("p1")

		progress, ok := engine.Progress(a)
		require.True(t, ok)
		assert.InDelta(t, 20.0, progress["papers_read"], 1e-9) // 1/5
		assert.Equal(t, 0.0, progress["mentor_approval"])
		// 学徒阶段不要求学生和发表，直接记满
		assert.Equal(t, 100.0, progress["successful_students"])
		assert.Equal(t, 100.0, progress["publications"])
	})

	t.Run("capped at 100", func(t *testing.T) {
		a := agent.New("ada", "nlp")
		for i := 0; i < 20; i++ {
			a.RecordPaperRead("p")
		}
		progress, ok := engine.Progress(a)
		require.True(t, ok)
		assert.Equal(t, 100.0, progress["papers_read"])
	})

	t.Run("expert has no progress", func(t *testing.T) {
		a := agent.New("eve", "nlp", agent.WithStage(agent.StageExpert))
		_, ok := engine.Progress(a)
		assert.False(t, ok)
	})
}
