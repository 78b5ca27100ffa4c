// Package store 提供基于 SQLite 的社区状态持久化
//
// # Overview
//
// store 包实现社区状态的本地持久化：
//   - Agent 完整状态（agent.State 的 JSON 文档，阶段单列便于查询）
//   - 论文记录 [Paper] 与实验记录 [Experiment]
//
// 使用 modernc.org/sqlite（纯 Go 驱动，无 CGO），开启 WAL 与
// busy_timeout，首次打开时自动建表。
//
// # Usage
//
//	st, err := store.Open("data/community.db")
//	if err != nil {
//		// ...
//	}
//	defer st.Close()
//
//	if err := st.SaveAgent(ctx, a.ExportState()); err != nil {
//		// ...
//	}
//
//	states, err := st.ListAgents(ctx)
//
// # Thread Safety
//
// 写操作串行化，读操作直接走 database/sql 连接池，可并发使用。
package store
