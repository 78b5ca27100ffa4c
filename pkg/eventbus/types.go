package eventbus

import (
	"time"

	"github.com/google/uuid"
)

// ═══════════════════════════════════════════════════════════════════════════
// EventType 事件类型
// ═══════════════════════════════════════════════════════════════════════════

// EventType 事件类型，封闭集合
type EventType string

const (
	// Agent 生命周期
	EventAgentCreated  EventType = "agent_created"
	EventAgentPromoted EventType = "agent_promoted"
	EventAgentDeleted  EventType = "agent_deleted"

	// 学习
	EventPaperRead      EventType = "paper_read"
	EventConceptLearned EventType = "concept_learned"
	EventHelpRequested  EventType = "help_requested"
	EventHelpReceived   EventType = "help_received"

	// 教学
	EventTeachingSessionStarted   EventType = "teaching_session_started"
	EventTeachingSessionCompleted EventType = "teaching_session_completed"
	EventStudentAssessed          EventType = "student_assessed"

	// 研究
	EventHypothesisGenerated EventType = "hypothesis_generated"
	EventExperimentStarted   EventType = "experiment_started"
	EventExperimentCompleted EventType = "experiment_completed"
	EventPaperSubmitted      EventType = "paper_submitted"
	EventReviewRequested     EventType = "review_requested"
	EventReviewSubmitted     EventType = "review_submitted"

	// 协作
	EventCollaborationProposed  EventType = "collaboration_proposed"
	EventCollaborationAccepted  EventType = "collaboration_accepted"
	EventCollaborationCompleted EventType = "collaboration_completed"

	// 仿真控制
	EventSimulationStarted EventType = "simulation_started"
	EventSimulationPaused  EventType = "simulation_paused"
	EventSimulationStopped EventType = "simulation_stopped"
)

// allEventTypes 全部已知事件类型
var allEventTypes = []EventType{
	EventAgentCreated, EventAgentPromoted, EventAgentDeleted,
	EventPaperRead, EventConceptLearned, EventHelpRequested, EventHelpReceived,
	EventTeachingSessionStarted, EventTeachingSessionCompleted, EventStudentAssessed,
	EventHypothesisGenerated, EventExperimentStarted, EventExperimentCompleted,
	EventPaperSubmitted, EventReviewRequested, EventReviewSubmitted,
	EventCollaborationProposed, EventCollaborationAccepted, EventCollaborationCompleted,
	EventSimulationStarted, EventSimulationPaused, EventSimulationStopped,
}

// Valid 是否为已知事件类型
func (t EventType) Valid() bool {
	for _, known := range allEventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// EventTypes 全部已知事件类型的副本
func EventTypes() []EventType {
	return append([]EventType(nil), allEventTypes...)
}

// ═══════════════════════════════════════════════════════════════════════════
// Event 事件
// ═══════════════════════════════════════════════════════════════════════════

// Event 一条事件
type Event struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Source    string         `json:"source_agent,omitempty"` // 来源 Agent ID
	Target    string         `json:"target_agent,omitempty"` // 目标 Agent ID，可为空
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Processed bool           `json:"processed"`
}

// normalize 填充缺失的 ID 和时间戳
func (e *Event) normalize() {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
}
