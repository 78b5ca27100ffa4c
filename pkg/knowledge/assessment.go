package knowledge

import "sort"

// ═══════════════════════════════════════════════════════════════════════════
// Assessment 能力评估
// ═══════════════════════════════════════════════════════════════════════════

// Assessment 单个主题的能力评估结果
type Assessment struct {
	Topic            string   `json:"topic"`
	Known            bool     `json:"known"`
	Mastery          float64  `json:"mastery"`
	Depth            float64  `json:"depth"`
	Breadth          float64  `json:"breadth"`
	Confidence       float64  `json:"confidence"`
	Validated        bool     `json:"validated"`
	ValidationCount  int      `json:"validation_count"`
	PrerequisitesMet bool     `json:"prerequisites_met"`
	RelatedTopics    []string `json:"related_topics,omitempty"`
	NeedsReview      bool     `json:"needs_review"`
	Recommendations  []string `json:"recommendations,omitempty"`
}

// AssessCompetency 评估 Agent 在指定主题上的能力
//
// 主题不存在时返回 Known=false，并给出学习该主题的建议。
func (g *Graph) AssessCompetency(name string) Assessment {
	g.mu.RLock()
	defer g.mu.RUnlock()

	topic, ok := g.topics[name]
	if !ok {
		return Assessment{
			Topic:           name,
			Recommendations: []string{"start learning the fundamentals of " + name},
		}
	}

	prereqsMet, _ := g.checkPrerequisitesLocked(name, DefaultPrereqThreshold)

	a := Assessment{
		Topic:            name,
		Known:            true,
		Mastery:          topic.Mastery(),
		Depth:            topic.Depth,
		Breadth:          topic.Breadth,
		Confidence:       topic.Confidence,
		Validated:        topic.Validated,
		ValidationCount:  topic.ValidationCount,
		PrerequisitesMet: prereqsMet,
		RelatedTopics:    g.relatedTopicsLocked(name),
		NeedsReview:      topic.NeedsReview(),
	}

	if topic.Confidence < 0.6 {
		a.Recommendations = append(a.Recommendations, "practice more to build confidence")
	}
	if topic.Depth < 0.7 {
		a.Recommendations = append(a.Recommendations, "study deeper material on this topic")
	}
	if topic.Breadth < 0.5 {
		a.Recommendations = append(a.Recommendations, "explore subtopics to broaden understanding")
	}
	if !topic.Validated {
		a.Recommendations = append(a.Recommendations, "validate knowledge through practice or teaching")
	}
	if !prereqsMet {
		a.Recommendations = append(a.Recommendations, "review prerequisite topics first")
	}
	return a
}

// ═══════════════════════════════════════════════════════════════════════════
// LearningPath 学习路径
// ═══════════════════════════════════════════════════════════════════════════

// LearningPath 生成到达目标主题的学习路径
//
// 前置主题按依赖顺序排在目标之前（DFS 后序）。
// 图谱中不存在的前置主题仍会出现在路径里，提示调用方先获取它们。
// 前置关系成环时在遍历处断开，给出尽力而为的顺序。
func (g *Graph) LearningPath(target string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var path []string
	visited := make(map[string]bool)  // 已输出
	visiting := make(map[string]bool) // 当前 DFS 栈上，用于断环

	var visit func(name string)
	visit = func(name string) {
		if visited[name] || visiting[name] {
			return
		}
		visiting[name] = true

		if topic, ok := g.topics[name]; ok {
			// 排序保证同一图谱的路径稳定
			prereqs := append([]string(nil), topic.Prerequisites...)
			sort.Strings(prereqs)
			for _, prereq := range prereqs {
				visit(prereq)
			}
		}

		visiting[name] = false
		visited[name] = true
		path = append(path, name)
	}

	visit(target)
	return path
}

// ═══════════════════════════════════════════════════════════════════════════
// ExportForTeaching 教学导出
// ═══════════════════════════════════════════════════════════════════════════

// TeachingPackage 可传授的主题知识包（教学会话的导师侧）
type TeachingPackage struct {
	Topic         string   `json:"topic"`
	Depth         float64  `json:"depth"`
	Breadth       float64  `json:"breadth"`
	Prerequisites []string `json:"prerequisites,omitempty"`
	Subtopics     []string `json:"subtopics,omitempty"`
	RelatedPapers []string `json:"related_papers,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}

// ExportForTeaching 导出主题用于教学
//
// 传授的内容按导师自身掌握度打折（教学损耗 30%）。
// 主题不存在时返回 (zero, false)。
func (g *Graph) ExportForTeaching(name string) (TeachingPackage, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	topic, ok := g.topics[name]
	if !ok {
		return TeachingPackage{}, false
	}

	return TeachingPackage{
		Topic:         name,
		Depth:         topic.Depth * 0.7,
		Breadth:       topic.Breadth * 0.7,
		Prerequisites: append([]string(nil), topic.Prerequisites...),
		Subtopics:     append([]string(nil), topic.Subtopics...),
		RelatedPapers: append([]string(nil), topic.RelatedPapers...),
		Notes:         topic.Notes,
	}, true
}
