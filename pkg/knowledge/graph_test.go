package knowledge

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddTopic(t *testing.T) {
	t.Run("creates topic with clamped scores", func(t *testing.T) {
		g := New()
		topic := g.AddTopic("transformers", 1.5, -0.2)

		assert.Equal(t, "transformers", topic.Name)
		assert.NotEmpty(t, topic.TopicID)
		assert.Equal(t, 1.0, topic.Depth)
		assert.Equal(t, 0.0, topic.Confidence)
		assert.Equal(t, 0.0, topic.Breadth)
		assert.False(t, topic.Validated)
	})

	t.Run("is idempotent", func(t *testing.T) {
		g := New()
		first := g.AddTopic("attention", 0.3, 0.4)
		second := g.AddTopic("attention", 0.9, 0.9)

		assert.Equal(t, first.TopicID, second.TopicID)
		assert.Equal(t, 0.3, second.Depth)
		assert.Equal(t, 0.4, second.Confidence)
		assert.Equal(t, 1, g.TopicCount())
	})

	t.Run("records prerequisites", func(t *testing.T) {
		g := New()
		g.AddTopic("transformers", 0.3, 0.4, "linear-algebra", "attention")

		prereqs := g.Prerequisites("transformers")
		assert.Equal(t, []string{"linear-algebra", "attention"}, prereqs)
	})
}

func TestUpdateTopic(t *testing.T) {
	t.Run("applies delta with clamping", func(t *testing.T) {
		g := New()
		g.AddTopic("attention", 0.5, 0.5)

		updated, ok := g.UpdateTopic("attention", Delta{Depth: 0.3, Breadth: 0.2, Confidence: 0.7})
		require.True(t, ok)
		assert.InDelta(t, 0.8, updated.Depth, 1e-9)
		assert.InDelta(t, 0.2, updated.Breadth, 1e-9)
		assert.Equal(t, 1.0, updated.Confidence)
	})

	t.Run("negative delta saturates at zero", func(t *testing.T) {
		g := New()
		g.AddTopic("attention", 0.1, 0.1)

		updated, ok := g.UpdateTopic("attention", Delta{Depth: -0.5, Confidence: -0.5})
		require.True(t, ok)
		assert.Equal(t, 0.0, updated.Depth)
		assert.Equal(t, 0.0, updated.Confidence)
	})

	t.Run("extreme deltas stay clamped", func(t *testing.T) {
		g := New()
		g.AddTopic("attention", 0.5, 0.5)

		updated, ok := g.UpdateTopic("attention", Delta{Depth: 1e9, Breadth: 1e9, Confidence: 1e9})
		require.True(t, ok)
		assert.Equal(t, 1.0, updated.Depth)
		assert.Equal(t, 1.0, updated.Breadth)
		assert.Equal(t, 1.0, updated.Confidence)

		updated, ok = g.UpdateTopic("attention", Delta{Depth: -1e9, Breadth: -1e9, Confidence: -1e9})
		require.True(t, ok)
		assert.Equal(t, 0.0, updated.Depth)
		assert.Equal(t, 0.0, updated.Breadth)
		assert.Equal(t, 0.0, updated.Confidence)
	})

	t.Run("returns false for unknown topic", func(t *testing.T) {
		g := New()
		_, ok := g.UpdateTopic("missing", Delta{Depth: 0.1})
		assert.False(t, ok)
		assert.Equal(t, 0, g.TopicCount())
	})

	t.Run("records source", func(t *testing.T) {
		g := New()
		g.AddTopic("attention", 0.5, 0.5)
		src := NewSource(SourcePaper, "paper-1", 0.9)

		updated, ok := g.UpdateTopic("attention", Delta{Depth: 0.1, Source: &src})
		require.True(t, ok)
		require.Len(t, updated.Sources, 1)
		assert.Equal(t, SourcePaper, updated.Sources[0].Type)
		assert.Equal(t, "paper-1", updated.Sources[0].ID)
	})
}

func TestValidateTopic(t *testing.T) {
	t.Run("success raises confidence and marks validated", func(t *testing.T) {
		g := New()
		g.AddTopic("attention", 0.5, 0.5)

		topic, ok := g.ValidateTopic("attention", true)
		require.True(t, ok)
		assert.True(t, topic.Validated)
		assert.Equal(t, 1, topic.ValidationCount)
		assert.InDelta(t, 0.6, topic.Confidence, 1e-9)
	})

	t.Run("failure lowers confidence without clearing validated", func(t *testing.T) {
		g := New()
		g.AddTopic("attention", 0.5, 0.5)
		g.ValidateTopic("attention", true)

		topic, ok := g.ValidateTopic("attention", false)
		require.True(t, ok)
		assert.True(t, topic.Validated)
		assert.Equal(t, 2, topic.ValidationCount)
		assert.InDelta(t, 0.45, topic.Confidence, 1e-9)
	})
}

func TestRelations(t *testing.T) {
	t.Run("allows duplicate relations", func(t *testing.T) {
		g := New()
		g.AddTopic("a", 0.5, 0.5)
		g.AddTopic("b", 0.5, 0.5)

		g.AddRelation("a", "b", RelationRelated, 0.8)
		g.AddRelation("a", "b", RelationRelated, 0.8)

		assert.Len(t, g.Relations(), 2)
		assert.Equal(t, []string{"b"}, g.RelatedTopics("a"))
	})

	t.Run("prerequisite relation syncs topic prerequisites", func(t *testing.T) {
		g := New()
		g.AddTopic("calculus", 0.8, 0.8)
		g.AddTopic("optimization", 0.3, 0.3)

		g.AddRelation("calculus", "optimization", RelationPrerequisite, 1.0)

		assert.Equal(t, []string{"calculus"}, g.Prerequisites("optimization"))
	})

	t.Run("related topics are bidirectional", func(t *testing.T) {
		g := New()
		g.AddRelation("a", "b", RelationRelated, 0.5)

		assert.Equal(t, []string{"b"}, g.RelatedTopics("a"))
		assert.Equal(t, []string{"a"}, g.RelatedTopics("b"))
	})
}

func TestCheckPrerequisitesMet(t *testing.T) {
	t.Run("met when all prerequisites above threshold", func(t *testing.T) {
		g := New()
		g.AddTopic("linear-algebra", 0.8, 0.8)
		g.UpdateTopic("linear-algebra", Delta{Breadth: 0.7})
		g.AddTopic("transformers", 0.2, 0.2, "linear-algebra")

		met, unmet := g.CheckPrerequisitesMet("transformers", 0)
		assert.True(t, met)
		assert.Empty(t, unmet)
	})

	t.Run("unmet when mastery below threshold", func(t *testing.T) {
		g := New()
		g.AddTopic("linear-algebra", 0.3, 0.3)
		g.AddTopic("transformers", 0.2, 0.2, "linear-algebra")

		met, unmet := g.CheckPrerequisitesMet("transformers", 0)
		assert.False(t, met)
		assert.Equal(t, []string{"linear-algebra"}, unmet)
	})

	t.Run("missing prerequisite topic counts as unmet", func(t *testing.T) {
		g := New()
		g.AddTopic("transformers", 0.2, 0.2, "linear-algebra")

		met, unmet := g.CheckPrerequisitesMet("transformers", 0)
		assert.False(t, met)
		assert.Equal(t, []string{"linear-algebra"}, unmet)
	})

	t.Run("unknown topic is unmet", func(t *testing.T) {
		g := New()
		met, _ := g.CheckPrerequisitesMet("missing", 0)
		assert.False(t, met)
	})
}

func TestAggregates(t *testing.T) {
	t.Run("averages are zero on empty graph", func(t *testing.T) {
		g := New()
		assert.Equal(t, 0.0, g.AverageDepth())
		assert.Equal(t, 0.0, g.AverageConfidence())
	})

	t.Run("averages over all topics", func(t *testing.T) {
		g := New()
		g.AddTopic("a", 0.2, 0.4)
		g.AddTopic("b", 0.6, 0.8)

		assert.InDelta(t, 0.4, g.AverageDepth(), 1e-9)
		assert.InDelta(t, 0.6, g.AverageConfidence(), 1e-9)
	})

	t.Run("mastery by topic uses weighted formula", func(t *testing.T) {
		g := New()
		g.AddTopic("a", 0.5, 0.5)
		g.UpdateTopic("a", Delta{Breadth: 0.5})

		mastery := g.MasteryByTopic()
		// 0.4*0.5 + 0.3*0.5 + 0.3*0.5 = 0.5
		assert.InDelta(t, 0.5, mastery["a"], 1e-9)
	})
}

func TestTopicsNeedingReview(t *testing.T) {
	g := New()
	g.AddTopic("solid", 0.8, 0.9)
	g.ValidateTopic("solid", true) // validated, confidence 1.0
	g.AddTopic("shaky", 0.8, 0.3) // unvalidated and low confidence

	names := g.TopicsNeedingReview()
	assert.Equal(t, []string{"shaky"}, names)
}

func TestMerge(t *testing.T) {
	t.Run("boosts existing and creates new topics", func(t *testing.T) {
		g := New()
		g.AddTopic("attention", 0.5, 0.5)
		src := NewSource(SourceMentor, "mentor-1", 0.8)

		created := g.Merge(map[string]Transfer{
			"attention":    {DepthBoost: 0.2, ConfidenceBoost: 0.1},
			"transformers": {},
		}, &src)

		assert.Equal(t, 1, created)

		attention, _ := g.Topic("attention")
		assert.InDelta(t, 0.7, attention.Depth, 1e-9)
		assert.InDelta(t, 0.6, attention.Confidence, 1e-9)

		transformers, ok := g.Topic("transformers")
		require.True(t, ok)
		assert.InDelta(t, 0.3, transformers.Depth, 1e-9)
		assert.InDelta(t, 0.4, transformers.Confidence, 1e-9)
		require.Len(t, transformers.Sources, 1)
		assert.Equal(t, SourceMentor, transformers.Sources[0].Type)
	})

	t.Run("respects explicit initial values", func(t *testing.T) {
		g := New()
		g.Merge(map[string]Transfer{
			"optimization": {InitialDepth: 0.55, InitialConfidence: 0.65},
		}, nil)

		topic, ok := g.Topic("optimization")
		require.True(t, ok)
		assert.Equal(t, 0.55, topic.Depth)
		assert.Equal(t, 0.65, topic.Confidence)
	})
}

func TestTopicAccessTracking(t *testing.T) {
	g := New()
	g.AddTopic("attention", 0.5, 0.5)

	before, _ := g.Topic("attention")
	time.Sleep(2 * time.Millisecond)
	after, _ := g.Topic("attention")

	assert.True(t, after.LastAccessed.After(before.LastAccessed) ||
		after.LastAccessed.Equal(before.LastAccessed))
	assert.False(t, after.LastAccessed.Before(before.LastAccessed))
}

func TestGraphConcurrentAccess(t *testing.T) {
	g := New()
	g.AddTopic("shared", 0.5, 0.5)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			g.UpdateTopic("shared", Delta{Depth: 0.001})
		}()
		go func() {
			defer wg.Done()
			_ = g.AssessCompetency("shared")
			_ = g.MasteryByTopic()
		}()
	}
	wg.Wait()

	topic, ok := g.Topic("shared")
	require.True(t, ok)
	assert.InDelta(t, 0.55, topic.Depth, 1e-9)
}
