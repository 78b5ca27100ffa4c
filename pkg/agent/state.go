package agent

import (
	"time"

	"github.com/lwmacct/251215-go-pkg-collective/pkg/knowledge"
	"github.com/lwmacct/251215-go-pkg-collective/pkg/reputation"
)

// ═══════════════════════════════════════════════════════════════════════════
// State 持久化状态
// ═══════════════════════════════════════════════════════════════════════════

// State Agent 的完整可序列化状态，供持久化层保存与恢复
type State struct {
	ID             string               `json:"id"`
	Name           string               `json:"name"`
	Specialization string               `json:"specialization"`
	Stage          Stage                `json:"stage"`
	CreatedAt      time.Time            `json:"created_at"`
	LastActive     time.Time            `json:"last_active"`
	EnteredStageAt time.Time            `json:"entered_stage_at"`
	MaxStudents    int                  `json:"max_students"`
	Promotions     int                  `json:"promotions"`
	TotalXP        int                  `json:"total_xp"`
	PapersRead     []string             `json:"papers_read,omitempty"`
	PapersAuthored []string             `json:"papers_authored,omitempty"`
	Experiments    []string             `json:"experiments,omitempty"`
	Goals          []Goal               `json:"goals,omitempty"`
	Mentors        []MentorshipRelation `json:"mentors,omitempty"`
	Students       []MentorshipRelation `json:"students,omitempty"`
	Experiences    []Experience         `json:"experiences,omitempty"`

	Topics     map[string]knowledge.TopicKnowledge `json:"topics,omitempty"`
	Relations  []knowledge.Relation                `json:"relations,omitempty"`
	Reputation reputation.Breakdown                `json:"reputation"`
}

// ExportState 导出完整状态快照
func (a *Agent) ExportState() State {
	a.mu.RLock()
	state := State{
		ID:             a.id,
		Name:           a.name,
		Specialization: a.specialization,
		Stage:          a.stage,
		CreatedAt:      a.createdAt,
		LastActive:     a.lastActive,
		EnteredStageAt: a.enteredStageAt,
		MaxStudents:    a.maxStudents,
		Promotions:     a.promotions,
		TotalXP:        a.totalXP,
		PapersRead:     append([]string(nil), a.papersRead...),
		PapersAuthored: append([]string(nil), a.papersAuthored...),
		Experiments:    append([]string(nil), a.experiments...),
		Goals:          append([]Goal(nil), a.goals...),
		Mentors:        append([]MentorshipRelation(nil), a.mentors...),
		Students:       append([]MentorshipRelation(nil), a.students...),
		Experiences:    append([]Experience(nil), a.experiences...),
	}
	a.mu.RUnlock()

	state.Topics = a.knowledge.Snapshot()
	state.Relations = a.knowledge.Relations()
	state.Reputation = a.reputation.Snapshot()
	return state
}

// FromState 从持久化状态恢复 Agent
func FromState(state State, opts ...Option) *Agent {
	a := New(state.Name, state.Specialization, opts...)

	a.mu.Lock()
	if state.ID != "" {
		a.id = state.ID
	}
	if state.Stage.Valid() {
		a.stage = state.Stage
		a.capabilities = CapabilitiesFor(state.Stage)
	}
	if !state.CreatedAt.IsZero() {
		a.createdAt = state.CreatedAt
	}
	if !state.LastActive.IsZero() {
		a.lastActive = state.LastActive
	}
	if !state.EnteredStageAt.IsZero() {
		a.enteredStageAt = state.EnteredStageAt
	}
	if state.MaxStudents > 0 {
		a.maxStudents = state.MaxStudents
	}
	a.promotions = state.Promotions
	a.totalXP = state.TotalXP
	a.papersRead = append([]string(nil), state.PapersRead...)
	a.papersAuthored = append([]string(nil), state.PapersAuthored...)
	a.experiments = append([]string(nil), state.Experiments...)
	a.goals = append([]Goal(nil), state.Goals...)
	a.mentors = append([]MentorshipRelation(nil), state.Mentors...)
	a.students = append([]MentorshipRelation(nil), state.Students...)
	a.experiences = append([]Experience(nil), state.Experiences...)
	ownerID := a.id
	a.mu.Unlock()

	a.knowledge = knowledge.New(knowledge.WithOwner(ownerID))
	a.knowledge.Restore(state.Topics, state.Relations)
	a.reputation.Restore(state.Reputation)
	return a
}
