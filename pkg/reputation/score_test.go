package reputation

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScore(t *testing.T) {
	rep := New()

	b := rep.Snapshot()
	assert.Equal(t, 50.0, b.Teaching)
	assert.Equal(t, 50.0, b.Research)
	assert.Equal(t, 50.0, b.Review)
	assert.Equal(t, 50.0, b.Collaboration)
	// 0.25*50 + 0.35*50 + 0.20*50 + 0.20*50 = 50
	assert.InDelta(t, 50.0, b.Overall, 1e-9)
}

func TestRecordPublication(t *testing.T) {
	rep := New()
	rep.RecordPublication(0.8)

	b := rep.Snapshot()
	assert.Equal(t, 1, b.PapersPublished)
	// 50 + 2 + 3*0.8 = 54.4
	assert.InDelta(t, 54.4, b.Research, 1e-9)
	assert.InDelta(t, 50+4.4*0.35, b.Overall, 1e-9)
}

func TestRecordCitation(t *testing.T) {
	rep := New()
	rep.RecordCitation()
	rep.RecordCitation()

	b := rep.Snapshot()
	assert.Equal(t, 2, b.Citations)
	assert.InDelta(t, 51.0, b.Research, 1e-9)
}

func TestUpdateHIndex(t *testing.T) {
	t.Run("increase awards research points", func(t *testing.T) {
		rep := New()
		rep.UpdateHIndex(3)

		b := rep.Snapshot()
		assert.Equal(t, 3, b.HIndex)
		assert.InDelta(t, 65.0, b.Research, 1e-9)
	})

	t.Run("decrease is ignored", func(t *testing.T) {
		rep := New()
		rep.UpdateHIndex(3)
		rep.UpdateHIndex(2)

		b := rep.Snapshot()
		assert.Equal(t, 3, b.HIndex)
		assert.InDelta(t, 65.0, b.Research, 1e-9)
	})
}

func TestRecordStudentOutcome(t *testing.T) {
	rep := New()
	rep.RecordStudentOutcome(true)
	rep.RecordStudentOutcome(true)
	rep.RecordStudentOutcome(false)

	b := rep.Snapshot()
	assert.Equal(t, 3, b.TeachingSessions)
	assert.InDelta(t, 2.0/3.0, b.StudentSuccessRate, 1e-9)
	// 50 + 5 + 5 - 2 = 58
	assert.InDelta(t, 58.0, b.Teaching, 1e-9)
}

func TestRecordReviewFeedback(t *testing.T) {
	t.Run("good review raises score", func(t *testing.T) {
		rep := New()
		rep.RecordReviewFeedback(4.5)

		b := rep.Snapshot()
		assert.Equal(t, 1, b.ReviewsGiven)
		// 50 + (4.5-2.5)*2 = 54
		assert.InDelta(t, 54.0, b.Review, 1e-9)
		assert.InDelta(t, 4.5, b.ReviewHelpfulness, 1e-9)
	})

	t.Run("poor review lowers score", func(t *testing.T) {
		rep := New()
		rep.RecordReviewFeedback(1.0)

		b := rep.Snapshot()
		// 50 + (1.0-2.5)*2 = 47
		assert.InDelta(t, 47.0, b.Review, 1e-9)
	})

	t.Run("helpfulness is running average", func(t *testing.T) {
		rep := New()
		rep.RecordReviewFeedback(4.0)
		rep.RecordReviewFeedback(2.0)

		b := rep.Snapshot()
		assert.InDelta(t, 3.0, b.ReviewHelpfulness, 1e-9)
	})
}

func TestRecordCollaboration(t *testing.T) {
	rep := New()
	rep.RecordCollaboration(true)
	rep.RecordCollaboration(false)

	b := rep.Snapshot()
	assert.Equal(t, 2, b.Collaborations)
	// 50 + 3 - 1 = 52
	assert.InDelta(t, 52.0, b.Collaboration, 1e-9)
}

func TestClamping(t *testing.T) {
	rep := New()
	for i := 0; i < 30; i++ {
		rep.RecordPublication(1.0) // +5 each
	}

	b := rep.Snapshot()
	assert.Equal(t, 100.0, b.Research)

	for i := 0; i < 60; i++ {
		rep.RecordReviewFeedback(0) // -5 each
	}
	b = rep.Snapshot()
	assert.Equal(t, 0.0, b.Review)

	// 极端输入同样停在边界
	rep.RecordPublication(1e9)
	rep.RecordReviewFeedback(-1e9)
	b = rep.Snapshot()
	assert.Equal(t, 100.0, b.Research)
	assert.Equal(t, 0.0, b.Review)
	assert.LessOrEqual(t, b.Overall, 100.0)
}

func TestIsQualifiedFor(t *testing.T) {
	rep := New()
	assert.False(t, rep.IsQualifiedFor(DimensionTeaching, 0)) // default 60

	for i := 0; i < 3; i++ {
		rep.RecordStudentOutcome(true)
	}
	// teaching = 65
	assert.True(t, rep.IsQualifiedFor(DimensionTeaching, 0))
	assert.True(t, rep.IsQualifiedFor(DimensionTeaching, 65))
	assert.False(t, rep.IsQualifiedFor(DimensionTeaching, 66))
}

func TestCompareTo(t *testing.T) {
	a := New()
	b := New()
	a.RecordPublication(1.0)

	assert.Positive(t, a.CompareTo(b))
	assert.Negative(t, b.CompareTo(a))
}

func TestRestore(t *testing.T) {
	rep := New()
	rep.RecordPublication(0.5)
	rep.RecordStudentOutcome(true)
	saved := rep.Snapshot()

	restored := New()
	restored.Restore(saved)

	got := restored.Snapshot()
	assert.Equal(t, saved.Research, got.Research)
	assert.Equal(t, saved.Teaching, got.Teaching)
	assert.Equal(t, saved.PapersPublished, got.PapersPublished)
	assert.InDelta(t, saved.Overall, got.Overall, 1e-9)
}

func TestScoreConcurrentAccess(t *testing.T) {
	rep := New()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			rep.RecordCitation()
		}()
		go func() {
			defer wg.Done()
			_ = rep.Overall()
			_ = rep.Snapshot()
		}()
	}
	wg.Wait()

	b := rep.Snapshot()
	require.Equal(t, 20, b.Citations)
	assert.InDelta(t, 60.0, b.Research, 1e-9)
}
