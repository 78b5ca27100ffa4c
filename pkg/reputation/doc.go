// Package reputation 提供 Agent 的多维声誉评分
//
// # Overview
//
// reputation 包实现 Agent 在社区中的多维声誉模型：
//   - 教学（teaching）、研究（research）、评审（review）、协作（collaboration）
//     四个维度，范围 [0,100]，初始值 50
//   - 综合评分 overall = 0.25*teaching + 0.35*research + 0.20*review + 0.20*collaboration
//
// 每次记录事件后综合评分立即重算，维度越界时饱和钳制到区间边界。
//
// # Usage
//
//	rep := reputation.New()
//
//	// 记录一次发表（影响因子 0.8）
//	rep.RecordPublication(0.8)
//
//	// 记录学生结果
//	rep.RecordStudentOutcome(true)
//
//	// 查询
//	overall := rep.Overall()
//	ok := rep.IsQualifiedFor(reputation.DimensionTeaching, 60)
//
// # Thread Safety
//
// Score 是并发安全的，记录方法使用写锁，查询方法使用读锁。
package reputation
