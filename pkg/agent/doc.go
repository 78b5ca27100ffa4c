// Package agent 提供社区中的研究 Agent 实体
//
// # Overview
//
// agent 包定义社区的核心实体 [Agent]，包括：
//   - 身份信息（ID、名称、专业方向）
//   - 发展阶段 [Stage]（apprentice → practitioner → teacher → researcher → expert）
//   - 阶段能力 [Capabilities]（能否教学/研究/评审、是否需要导师、活动并发上限）
//   - 个人知识图谱（knowledge.Graph）与声誉评分（reputation.Score）
//   - 目标 [Goal]、师徒关系 [MentorshipRelation]、追加式经验日志 [Experience]
//
// 阶段只能前进不能后退，晋升由 evolution 包的引擎执行。
//
// # Usage
//
//	a := agent.New("ada", "nlp",
//		agent.WithStage(agent.StagePractitioner),
//	)
//
//	a.Knowledge().AddTopic("attention", 0.5, 0.5)
//	a.LogExperience(agent.ActivityPaperRead, "read attention survey", agent.OutcomeSuccess)
//
//	caps := a.Capabilities()
//	if caps.CanTeach {
//		// ...
//	}
//
// # Thread Safety
//
// Agent 的可变状态由读写锁保护；Knowledge() 和 Reputation() 返回的
// 子对象各自并发安全。查询方法返回副本。
package agent
