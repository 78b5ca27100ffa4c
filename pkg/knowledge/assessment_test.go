package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssessCompetency(t *testing.T) {
	t.Run("unknown topic", func(t *testing.T) {
		g := New()
		a := g.AssessCompetency("quantum-computing")

		assert.False(t, a.Known)
		assert.Equal(t, "quantum-computing", a.Topic)
		require.Len(t, a.Recommendations, 1)
		assert.Contains(t, a.Recommendations[0], "fundamentals")
	})

	t.Run("weak topic gets full recommendation set", func(t *testing.T) {
		g := New()
		g.AddTopic("transformers", 0.3, 0.4, "linear-algebra")

		a := g.AssessCompetency("transformers")
		assert.True(t, a.Known)
		assert.False(t, a.Validated)
		assert.False(t, a.PrerequisitesMet)
		assert.True(t, a.NeedsReview)
		// 信心、深度、广度、检验、前置各触发一条建议
		assert.Len(t, a.Recommendations, 5)
	})

	t.Run("strong topic has no recommendations", func(t *testing.T) {
		g := New()
		g.AddTopic("attention", 0.9, 0.8)
		g.UpdateTopic("attention", Delta{Breadth: 0.7})
		g.ValidateTopic("attention", true)

		a := g.AssessCompetency("attention")
		assert.True(t, a.Known)
		assert.True(t, a.Validated)
		assert.True(t, a.PrerequisitesMet)
		assert.Empty(t, a.Recommendations)
		assert.False(t, a.NeedsReview)
	})

	t.Run("includes related topics", func(t *testing.T) {
		g := New()
		g.AddTopic("attention", 0.9, 0.9)
		g.AddRelation("attention", "transformers", RelationApplication, 0.9)

		a := g.AssessCompetency("attention")
		assert.Equal(t, []string{"transformers"}, a.RelatedTopics)
	})
}

func TestLearningPath(t *testing.T) {
	t.Run("prerequisites come before target", func(t *testing.T) {
		g := New()
		g.AddTopic("linear-algebra", 0.8, 0.8)
		g.AddTopic("calculus", 0.8, 0.8)
		g.AddTopic("optimization", 0.4, 0.4, "calculus")
		g.AddTopic("transformers", 0.2, 0.2, "linear-algebra", "optimization")

		path := g.LearningPath("transformers")
		require.Equal(t, 4, len(path))
		assert.Equal(t, "transformers", path[len(path)-1])

		index := make(map[string]int)
		for i, name := range path {
			index[name] = i
		}
		assert.Less(t, index["linear-algebra"], index["transformers"])
		assert.Less(t, index["calculus"], index["optimization"])
		assert.Less(t, index["optimization"], index["transformers"])
	})

	t.Run("unknown prerequisites still appear", func(t *testing.T) {
		g := New()
		g.AddTopic("transformers", 0.2, 0.2, "attention")

		path := g.LearningPath("transformers")
		assert.Equal(t, []string{"attention", "transformers"}, path)
	})

	t.Run("cycle is broken at traversal", func(t *testing.T) {
		g := New()
		g.AddTopic("a", 0.5, 0.5, "b")
		g.AddTopic("b", 0.5, 0.5, "a")

		path := g.LearningPath("a")
		require.Len(t, path, 2)
		assert.Equal(t, "a", path[len(path)-1])
		assert.Contains(t, path, "b")
	})

	t.Run("shared prerequisite appears once", func(t *testing.T) {
		g := New()
		g.AddTopic("math", 0.9, 0.9)
		g.AddTopic("ml", 0.5, 0.5, "math")
		g.AddTopic("nlp", 0.5, 0.5, "math", "ml")

		path := g.LearningPath("nlp")
		assert.Equal(t, []string{"math", "ml", "nlp"}, path)
	})
}

func TestExportForTeaching(t *testing.T) {
	t.Run("applies teaching discount", func(t *testing.T) {
		g := New()
		g.AddTopic("attention", 1.0, 0.9, "linear-algebra")
		g.UpdateTopic("attention", Delta{Breadth: 0.5})

		pkg, ok := g.ExportForTeaching("attention")
		require.True(t, ok)
		assert.Equal(t, "attention", pkg.Topic)
		assert.InDelta(t, 0.7, pkg.Depth, 1e-9)
		assert.InDelta(t, 0.35, pkg.Breadth, 1e-9)
		assert.Equal(t, []string{"linear-algebra"}, pkg.Prerequisites)
	})

	t.Run("unknown topic", func(t *testing.T) {
		g := New()
		_, ok := g.ExportForTeaching("missing")
		assert.False(t, ok)
	})
}
