// Package evolution 提供 Agent 的阶段晋升引擎
//
// # Overview
//
// evolution 包实现阶段晋升的评估与执行：
//   - [CriteriaFor]: 每个阶段跃迁的固定晋升标准（论文数、知识深度、
//     信心、学生数、发表数、声誉、最短停留时间、导师批准）
//   - [Engine.Evaluate]: 纯评估，产出逐项判定与缺失项说明
//   - [Engine.Promote]: 按评估结果执行晋升（切换阶段、重算能力、记录经验）
//   - [Engine.Progress]: 各项标准的完成百分比
//
// 评估是只读的，晋升是显式的第二步，两者可分开调用，
// [Engine.CheckAndPromote] 将二者合并。
//
// # Usage
//
//	engine := evolution.NewEngine()
//
//	eval := engine.Evaluate(a)
//	if eval.Eligible {
//		engine.Promote(a, eval)
//	}
//
//	// 或者一步完成
//	promoted, eval := engine.CheckAndPromote(a)
//
// # Thread Safety
//
// Engine 无可变状态，可被多个 goroutine 同时使用。
package evolution
