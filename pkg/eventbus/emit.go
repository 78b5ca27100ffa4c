package eventbus

import "context"

// ═══════════════════════════════════════════════════════════════════════════
// 便捷发布
// ═══════════════════════════════════════════════════════════════════════════

// EmitAgentCreated 发布 Agent 创建事件
func (b *Bus) EmitAgentCreated(ctx context.Context, agentID, name, stage string) Event {
	return b.Publish(ctx, Event{
		Type:   EventAgentCreated,
		Source: agentID,
		Payload: map[string]any{
			"name":  name,
			"stage": stage,
		},
	})
}

// EmitAgentPromoted 发布 Agent 晋升事件
func (b *Bus) EmitAgentPromoted(ctx context.Context, agentID, fromStage, toStage string) Event {
	return b.Publish(ctx, Event{
		Type:   EventAgentPromoted,
		Source: agentID,
		Payload: map[string]any{
			"from_stage": fromStage,
			"to_stage":   toStage,
		},
	})
}

// EmitAgentDeleted 发布 Agent 移除事件
func (b *Bus) EmitAgentDeleted(ctx context.Context, agentID string) Event {
	return b.Publish(ctx, Event{
		Type:   EventAgentDeleted,
		Source: agentID,
	})
}

// EmitPaperRead 发布论文阅读事件
func (b *Bus) EmitPaperRead(ctx context.Context, agentID, paperID string) Event {
	return b.Publish(ctx, Event{
		Type:   EventPaperRead,
		Source: agentID,
		Payload: map[string]any{
			"paper_id": paperID,
		},
	})
}

// EmitConceptLearned 发布概念学习事件
func (b *Bus) EmitConceptLearned(ctx context.Context, agentID, topic string, mastery float64) Event {
	return b.Publish(ctx, Event{
		Type:   EventConceptLearned,
		Source: agentID,
		Payload: map[string]any{
			"topic":   topic,
			"mastery": mastery,
		},
	})
}

// EmitHelpRequested 发布求助事件
func (b *Bus) EmitHelpRequested(ctx context.Context, studentID, mentorID, topic string) Event {
	return b.Publish(ctx, Event{
		Type:   EventHelpRequested,
		Source: studentID,
		Target: mentorID,
		Payload: map[string]any{
			"topic": topic,
		},
	})
}

// EmitExperimentCompleted 发布实验完成事件
func (b *Bus) EmitExperimentCompleted(ctx context.Context, agentID, experimentID string, success bool) Event {
	return b.Publish(ctx, Event{
		Type:   EventExperimentCompleted,
		Source: agentID,
		Payload: map[string]any{
			"experiment_id": experimentID,
			"success":       success,
		},
	})
}
