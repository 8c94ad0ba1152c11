package progress

import (
	"fmt"
	"sync"
)

const (
	// TaskCount is the number of tasks in a project walkthrough.
	TaskCount = 5
	// SubtasksPerTask applies to every task except the first, which has none.
	SubtasksPerTask = 4
)

// Outcome describes the effect of a transition.
type Outcome string

const (
	OutcomeIgnored       Outcome = "ignored"
	OutcomeSelected      Outcome = "selected"
	OutcomeAdvanced      Outcome = "advanced"
	OutcomeTaskCompleted Outcome = "task_completed"
)

// Transition is returned by every state change.
type Transition struct {
	Outcome  Outcome `json:"outcome"`
	Task     int     `json:"task"`
	Subtask  int     `json:"subtask"`
	Unlocked int     `json:"unlocked"`
}

// Changed reports whether the transition modified the state.
func (t Transition) Changed() bool {
	return t.Outcome != OutcomeIgnored
}

// Snapshot is an immutable copy of the machine state.
type Snapshot struct {
	SelectedTask      *int     `json:"selectedTaskIndex"`
	CurrentSubtask    int      `json:"currentSubtaskIndex"`
	CompletedSubtasks [][]bool `json:"completedSubtasks"`
	UnlockedTask      int      `json:"unlockedTaskIndex"`
	AllUnlocked       bool     `json:"allUnlocked"`
}

// SubtaskCount returns the number of subtasks in task t.
func SubtaskCount(t int) int {
	if t == 0 {
		return 0
	}
	return SubtasksPerTask
}

// Machine tracks which task is selected, the active subtask, completed
// subtasks and the highest task that may be entered. It is safe for
// concurrent use.
type Machine struct {
	mu        sync.Mutex
	selected  int
	hasTask   bool
	subtask   int
	completed [][]bool
	unlocked  int
}

func New() *Machine {
	completed := make([][]bool, TaskCount)
	for t := range completed {
		completed[t] = make([]bool, SubtaskCount(t))
	}
	return &Machine{completed: completed}
}

// Resume returns a machine with task t selected at subtask s, as if every
// earlier task and subtask had been completed.
func Resume(t, s int) (*Machine, error) {
	if t < 0 || t >= TaskCount {
		return nil, fmt.Errorf("task %d out of range [0,%d)", t, TaskCount)
	}
	if s < 0 || (s > 0 && s >= SubtaskCount(t)) {
		return nil, fmt.Errorf("subtask %d out of range for task %d", s, t)
	}
	m := New()
	for prev := range t {
		for i := range m.completed[prev] {
			m.completed[prev][i] = true
		}
	}
	for i := range s {
		m.completed[t][i] = true
	}
	m.unlocked = t
	m.selected, m.hasTask, m.subtask = t, true, s
	return m, nil
}

// SelectTask enters task t at subtask 0. It is ignored while a task is
// selected, and for tasks that are out of range or still locked.
func (m *Machine) SelectTask(t int) Transition {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hasTask || t < 0 || t >= TaskCount || t > m.unlocked {
		return m.transition(OutcomeIgnored)
	}
	m.selected, m.hasTask, m.subtask = t, true, 0
	return m.transition(OutcomeSelected)
}

// CompleteSubtask marks subtask s of the selected task complete.
// Task 0 completes on any call. Other tasks only accept the active subtask;
// completing the last one deselects the task and unlocks the next.
func (m *Machine) CompleteSubtask(s int) Transition {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasTask {
		return m.transition(OutcomeIgnored)
	}
	t := m.selected
	if SubtaskCount(t) == 0 {
		return m.finish(t)
	}
	if s != m.subtask {
		return m.transition(OutcomeIgnored)
	}
	m.completed[t][s] = true
	if s == SubtaskCount(t)-1 {
		return m.finish(t)
	}
	m.subtask = s + 1
	return m.transition(OutcomeAdvanced)
}

// finish deselects task t and unlocks t+1. The returned transition names t.
func (m *Machine) finish(t int) Transition {
	m.hasTask = false
	m.subtask = 0
	m.unlocked = t + 1
	tr := m.transition(OutcomeTaskCompleted)
	tr.Task = t
	return tr
}

// transition must be called with mu held.
func (m *Machine) transition(o Outcome) Transition {
	task := -1
	if m.hasTask {
		task = m.selected
	}
	return Transition{Outcome: o, Task: task, Subtask: m.subtask, Unlocked: m.unlocked}
}

// Selected returns the selected task and its active subtask.
func (m *Machine) Selected() (task, subtask int, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selected, m.subtask, m.hasTask
}

// Unlocked returns the highest task index that may be entered.
func (m *Machine) Unlocked() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unlocked
}

// AllUnlocked reports whether the last task has been completed.
func (m *Machine) AllUnlocked() bool {
	return m.Unlocked() >= TaskCount
}

// IsCompleted reports whether subtask s of task t is complete.
func (m *Machine) IsCompleted(t, s int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t < 0 || t >= TaskCount || s < 0 || s >= len(m.completed[t]) {
		return false
	}
	return m.completed[t][s]
}

func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	completed := make([][]bool, len(m.completed))
	for t := range m.completed {
		completed[t] = append([]bool{}, m.completed[t]...)
	}
	snap := Snapshot{
		CurrentSubtask:    m.subtask,
		CompletedSubtasks: completed,
		UnlockedTask:      m.unlocked,
		AllUnlocked:       m.unlocked >= TaskCount,
	}
	if m.hasTask {
		t := m.selected
		snap.SelectedTask = &t
	}
	return snap
}
