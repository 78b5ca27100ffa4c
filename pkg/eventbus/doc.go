// Package eventbus 提供社区内的事件发布订阅总线
//
// # Overview
//
// eventbus 包实现进程内的事件总线：
//   - [EventType]: 封闭的事件类型集合（Agent 生命周期、学习、教学、
//     研究、协作、仿真控制）
//   - [Event]: 一条事件，含来源/目标 Agent、负载与时间戳
//   - [Bus]: 发布订阅总线，带有界历史与统计
//
// Publish 先在锁内把事件追加到历史，然后并发执行全部订阅者并等待完成。
// 单个订阅者的 panic、错误或超时只影响它自己：会被记录日志，
// 不会阻止其他订阅者，事件也总是被标记为已处理。
//
// # Usage
//
//	bus := eventbus.New(
//		eventbus.WithHistoryCapacity(1000),
//		eventbus.WithHandlerTimeout(2*time.Second),
//	)
//
//	bus.Subscribe(eventbus.EventAgentPromoted, func(ctx context.Context, e eventbus.Event) error {
//		// ...
//		return nil
//	})
//
//	bus.Publish(ctx, eventbus.Event{
//		Type:   eventbus.EventAgentPromoted,
//		Source: agentID,
//	})
//
// # Thread Safety
//
// Bus 的全部方法并发安全。
package eventbus
