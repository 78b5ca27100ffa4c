// Package community 提供 Agent 社区的注册与活动编排
//
// # Overview
//
// community 包是整个系统的编排层：维护 Agent 注册表，
// 调度活动任务（每个 Agent 最多一个在途任务，协作式取消），
// 按步数驱动晋升检查与状态持久化，并通过事件总线对外广播
// 生命周期事件。
//
// Community 同时实现 matchmaker 的 Directory 与 GraphQuerier
// 协作方接口，可直接作为匹配器的数据来源。
//
// # Architecture
//
//	┌───────────────────────────────────────────────┐
//	│                  Community                     │
//	│  ┌──────────┐ ┌──────────┐ ┌───────────────┐  │
//	│  │ Registry │ │ Activity │ │ Step Counter  │  │
//	│  │ (agents) │ │ Tasks    │ │ (promotions,  │  │
//	│  │          │ │          │ │  persistence) │  │
//	│  └──────────┘ └──────────┘ └───────────────┘  │
//	└───────┬──────────────┬──────────────┬─────────┘
//	        │              │              │
//	   StateStore    evolution.Engine  eventbus.Bus
//
// 协作方（StateStore、事件总线）失败时记录日志并降级，
// 不会在状态已变更后向调用方传播错误。
//
// # Usage
//
//	bus := eventbus.New()
//	comm := community.New(
//		community.WithName("research-collective"),
//		community.WithBus(bus),
//		community.WithStore(st),
//	)
//	defer comm.Shutdown(ctx)
//
//	a := agent.New("alice", "machine-learning")
//	if err := comm.Register(ctx, a); err != nil {
//		// ...
//	}
//
//	result := comm.RunStep(ctx, "read-papers", func(ctx context.Context, a *agent.Agent) error {
//		a.RecordPaperRead("paper-001")
//		return nil
//	})
package community
