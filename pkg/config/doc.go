// Package config 提供社区运行配置
//
// # Overview
//
// config 包定义 [Settings]：社区名称、并发上限、晋升检查与保存的
// 步数间隔、事件历史容量、处理函数超时、匹配默认值、存储路径与
// 日志级别。配置从 YAML 文件加载，缺失字段回退到默认值，
// 非法字段在加载时报错。
//
// # Usage
//
//	settings, err := config.Load("community.yaml")
//	if err != nil {
//		// ...
//	}
//
//	// 或直接使用默认值
//	settings := config.Default()
package config
