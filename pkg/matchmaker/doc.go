// Package matchmaker 提供导师、协作者与评审人的匹配
//
// # Overview
//
// matchmaker 包基于知识图谱与声誉为 Agent 做三类匹配：
//   - [Matchmaker.FindMentorForStudent]: 为学生按主题匹配导师，
//     要求专业深度差落在合适区间（默认 [1,3] 档）
//   - [Matchmaker.FindCollaborationPartners]: 匹配同阶段、
//     主题深度相近的研究协作者
//   - [Matchmaker.FindReviewersForPaper]: 为论文匹配研究者及以上
//     阶段的评审人，排除作者
//
// 共享主题等图查询通过 [GraphQuerier] 协作方完成，查询失败时
// 记录日志并降级为空结果，匹配流程不中断。
//
// 评分公式中的声誉使用归一化值（overall/100，范围 [0,1]）。
//
// # Usage
//
//	mm := matchmaker.New(directory,
//		matchmaker.WithGraphQuerier(querier),
//	)
//
//	match, ok := mm.FindMentorForStudent(ctx, student, "transformers", nil)
//	partners := mm.FindCollaborationPartners(ctx, agent, "attention", 3)
//
// # Thread Safety
//
// Matchmaker 无可变状态，所有方法并发安全。
package matchmaker
