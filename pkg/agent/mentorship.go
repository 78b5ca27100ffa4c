package agent

import "time"

// ═══════════════════════════════════════════════════════════════════════════
// 师徒关系
// ═══════════════════════════════════════════════════════════════════════════

// CanAcceptStudent 是否还能接收新学生
//
// 需要教学能力且活跃学生数低于上限。
func (a *Agent) CanAcceptStudent() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if !a.capabilities.CanTeach {
		return false
	}
	active := 0
	for _, rel := range a.students {
		if rel.Active {
			active++
		}
	}
	return active < a.maxStudents
}

// AddStudent 作为导师建立一段师徒关系
func (a *Agent) AddStudent(studentID string, topics ...string) MentorshipRelation {
	rel := MentorshipRelation{
		ID:        newRelationID(),
		MentorID:  a.id,
		StudentID: studentID,
		Topics:    topics,
		Active:    true,
		StartedAt: time.Now(),
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.students = append(a.students, rel)
	return rel
}

// AddMentor 作为学生记录一段师徒关系
func (a *Agent) AddMentor(rel MentorshipRelation) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mentors = append(a.mentors, rel)
}

// UpdateMentorshipProgress 更新指定关系的进度（导师侧与学生侧各自调用）
//
// progress 钳制到 [0,100]。关系不存在时返回 false。
func (a *Agent) UpdateMentorshipProgress(relationID string, progress float64) bool {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for i := range a.students {
		if a.students[i].ID == relationID {
			a.students[i].Progress = progress
			return true
		}
	}
	for i := range a.mentors {
		if a.mentors[i].ID == relationID {
			a.mentors[i].Progress = progress
			return true
		}
	}
	return false
}

// RecordMentorshipSession 记录一次教学会话
//
// 师徒两侧各自调用，为本侧持有的关系副本累加会话数。
// 关系不存在或已结束时返回 false。
func (a *Agent) RecordMentorshipSession(relationID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := range a.students {
		if a.students[i].ID == relationID && a.students[i].Active {
			a.students[i].Sessions++
			return true
		}
	}
	for i := range a.mentors {
		if a.mentors[i].ID == relationID && a.mentors[i].Active {
			a.mentors[i].Sessions++
			return true
		}
	}
	return false
}

// EndMentorship 结束一段师徒关系并记录评分
//
// 关系标记为不活跃、记录结束时间与评分（钳制到 [0,5]），
// 从不删除。返回是否找到。
func (a *Agent) EndMentorship(relationID string, rating float64) bool {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	now := time.Now()
	found := false
	for i := range a.students {
		if a.students[i].ID == relationID && a.students[i].Active {
			r := rating
			a.students[i].Active = false
			a.students[i].EndedAt = now
			a.students[i].MentorRating = &r
			found = true
		}
	}
	for i := range a.mentors {
		if a.mentors[i].ID == relationID && a.mentors[i].Active {
			r := rating
			a.mentors[i].Active = false
			a.mentors[i].EndedAt = now
			a.mentors[i].MentorRating = &r
			found = true
		}
	}
	return found
}

// Students 作为导师的全部关系副本
func (a *Agent) Students() []MentorshipRelation {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]MentorshipRelation(nil), a.students...)
}

// Mentors 作为学生的全部关系副本
func (a *Agent) Mentors() []MentorshipRelation {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]MentorshipRelation(nil), a.mentors...)
}

// ActiveMentor 当前活跃的导师关系
func (a *Agent) ActiveMentor() (MentorshipRelation, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for _, rel := range a.mentors {
		if rel.Active {
			return rel, true
		}
	}
	return MentorshipRelation{}, false
}

// HasMentor 是否有活跃导师
func (a *Agent) HasMentor() bool {
	_, ok := a.ActiveMentor()
	return ok
}

// SuccessfulStudents 成功指导的学生数
//
// 成功 = 关系已结束且进度 >= 70。
func (a *Agent) SuccessfulStudents() int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	count := 0
	for _, rel := range a.students {
		if rel.Successful() {
			count++
		}
	}
	return count
}

// ═══════════════════════════════════════════════════════════════════════════
// 目标
// ═══════════════════════════════════════════════════════════════════════════

// AddGoal 添加目标
func (a *Agent) AddGoal(description string, target float64) Goal {
	goal := Goal{
		ID:          newRelationID(),
		Description: description,
		Target:      target,
		Status:      GoalActive,
		CreatedAt:   time.Now(),
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.goals = append(a.goals, goal)
	return goal
}

// UpdateGoalProgress 更新目标进度
//
// 进度达到目标值时自动标记完成。目标不存在时返回 (zero, false)。
func (a *Agent) UpdateGoalProgress(goalID string, progress float64) (Goal, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := range a.goals {
		if a.goals[i].ID != goalID {
			continue
		}
		a.goals[i].Progress = progress
		if a.goals[i].Status == GoalActive && progress >= a.goals[i].Target {
			a.goals[i].Status = GoalCompleted
			a.goals[i].CompletedAt = time.Now()
		}
		return a.goals[i], true
	}
	return Goal{}, false
}

// AbandonGoal 放弃目标
func (a *Agent) AbandonGoal(goalID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := range a.goals {
		if a.goals[i].ID == goalID && a.goals[i].Status == GoalActive {
			a.goals[i].Status = GoalAbandoned
			return true
		}
	}
	return false
}

// Goals 全部目标的副本
func (a *Agent) Goals() []Goal {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]Goal(nil), a.goals...)
}

// ActiveGoals 进行中的目标
func (a *Agent) ActiveGoals() []Goal {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var active []Goal
	for _, goal := range a.goals {
		if goal.Status == GoalActive {
			active = append(active, goal)
		}
	}
	return active
}
