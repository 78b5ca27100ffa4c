// Package knowledge 提供 Agent 的个人知识图谱
//
// # Overview
//
// knowledge 包实现 Agent 的个人知识图谱，追踪 Agent 知道什么、
// 掌握程度如何、知识从何而来，包括：
//   - [TopicKnowledge]: 单个主题的掌握状态（深度/广度/信心）
//   - [Source]: 知识来源（论文、导师、实验、自学）
//   - [Relation]: 主题之间的有向关系（前置、相关、子主题、应用）
//   - [Graph]: 知识图谱本体，管理主题与关系
//
// # Mastery Model
//
// 每个主题有三个 [0,1] 区间的评分维度：
//
//	depth      - 理解深度
//	breadth    - 跨子主题的广度
//	confidence - Agent 的自我评估信心
//
// 综合掌握度 mastery = 0.4*depth + 0.3*breadth + 0.3*confidence。
// 所有评分更新都是饱和式的：越界的增量会被钳制到区间边界，而不是报错。
//
// # Usage
//
//	kg := knowledge.New()
//
//	// 添加主题（幂等，已存在则返回现有主题）
//	kg.AddTopic("transformers", 0.3, 0.4, "linear-algebra")
//
//	// 应用学习增量
//	kg.UpdateTopic("transformers", knowledge.Delta{Depth: 0.1, Confidence: 0.05})
//
//	// 生成学习路径（前置主题排在目标之前）
//	path := kg.LearningPath("transformers")
//
//	// 能力评估
//	assessment := kg.AssessCompetency("transformers")
//
// # Thread Safety
//
// Graph 是并发安全的，所有方法都使用读写锁保护。
// 查询方法返回副本，调用方持有的数据不会与图谱内部状态产生数据竞争。
package knowledge
