// Package generate 提供文本生成协作方
//
// # Overview
//
// generate 包把 LLM Agent 封装为简单的 [Generator] 接口，供社区活动
// （假设生成、论文摘要、教学讲解）使用。核心组件只依赖接口，
// 测试时可以替换为固定响应的实现。
//
// # Usage
//
//	provider := localmock.New(localmock.WithResponse("..."))
//	ag, err := generate.BuildAgent(provider, "hypothesis-writer", "You generate research hypotheses.")
//	if err != nil {
//		// ...
//	}
//
//	gen := generate.NewLLM(ag)
//	defer gen.Close()
//
//	text, err := gen.Generate(ctx, "Propose a hypothesis about attention sparsity.")
package generate
