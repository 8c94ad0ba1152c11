package progress

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// enter drives a fresh machine until task t is selected.
func enter(t *testing.T, task int) *Machine {
	t.Helper()
	m := New()
	for done := 0; done < task; done++ {
		require.True(t, m.SelectTask(done).Changed())
		if done == 0 {
			m.CompleteSubtask(0)
			continue
		}
		for s := 0; s < SubtasksPerTask; s++ {
			require.True(t, m.CompleteSubtask(s).Changed())
		}
	}
	require.True(t, m.SelectTask(task).Changed())
	return m
}

func TestMachine_Initial(t *testing.T) {
	t.Run("Should start with no task and task 0 unlocked", func(t *testing.T) {
		snap := New().Snapshot()
		assert.Nil(t, snap.SelectedTask)
		assert.Equal(t, 0, snap.CurrentSubtask)
		assert.Equal(t, 0, snap.UnlockedTask)
		assert.Equal(t, [][]bool{{}, {false, false, false, false}, {false, false, false, false}, {false, false, false, false}, {false, false, false, false}}, snap.CompletedSubtasks)
	})
}

func TestMachine_SelectTask(t *testing.T) {
	t.Run("Should ignore selection while a task is selected", func(t *testing.T) {
		m := enter(t, 1)
		m.CompleteSubtask(0)

		tr := m.SelectTask(1)

		assert.Equal(t, OutcomeIgnored, tr.Outcome)
		task, sub, ok := m.Selected()
		assert.True(t, ok)
		assert.Equal(t, 1, task)
		assert.Equal(t, 1, sub)
	})

	t.Run("Should ignore locked and out of range tasks", func(t *testing.T) {
		m := New()
		assert.False(t, m.SelectTask(2).Changed())
		assert.False(t, m.SelectTask(-1).Changed())
		assert.False(t, m.SelectTask(TaskCount).Changed())
		assert.True(t, m.SelectTask(0).Changed())
	})
}

func TestMachine_CompleteSubtask(t *testing.T) {
	t.Run("Should ignore every subtask but the active one", func(t *testing.T) {
		for task := 1; task < TaskCount; task++ {
			for current := 0; current < SubtasksPerTask; current++ {
				for s := 0; s < SubtasksPerTask; s++ {
					if s == current {
						continue
					}
					m := enter(t, task)
					for i := 0; i < current; i++ {
						m.CompleteSubtask(i)
					}
					before := m.Snapshot()

					tr := m.CompleteSubtask(s)

					assert.Equal(t, OutcomeIgnored, tr.Outcome)
					assert.Equal(t, before, m.Snapshot())
				}
			}
		}
	})

	t.Run("Should unlock the next task after the last subtask", func(t *testing.T) {
		for task := 1; task < TaskCount; task++ {
			m := enter(t, task)
			for s := 0; s < SubtasksPerTask-1; s++ {
				assert.Equal(t, OutcomeAdvanced, m.CompleteSubtask(s).Outcome)
			}

			tr := m.CompleteSubtask(SubtasksPerTask - 1)

			assert.Equal(t, OutcomeTaskCompleted, tr.Outcome)
			assert.Equal(t, task, tr.Task)
			snap := m.Snapshot()
			assert.Nil(t, snap.SelectedTask)
			assert.Equal(t, 0, snap.CurrentSubtask)
			assert.Equal(t, task+1, snap.UnlockedTask)
			assert.Equal(t, []bool{true, true, true, true}, snap.CompletedSubtasks[task])
		}
	})

	t.Run("Should complete task 0 with any subtask index", func(t *testing.T) {
		for _, s := range []int{-1, 0, 1, 3, 7} {
			m := New()
			m.SelectTask(0)

			tr := m.CompleteSubtask(s)

			assert.Equal(t, OutcomeTaskCompleted, tr.Outcome)
			assert.Equal(t, 0, tr.Task)
			_, _, ok := m.Selected()
			assert.False(t, ok)
			assert.Equal(t, 1, m.Unlocked())
		}
	})

	t.Run("Should ignore completion with no task selected", func(t *testing.T) {
		assert.False(t, New().CompleteSubtask(0).Changed())
	})

	t.Run("Should report all tasks unlocked after the last task", func(t *testing.T) {
		m := enter(t, TaskCount-1)
		for s := 0; s < SubtasksPerTask; s++ {
			m.CompleteSubtask(s)
		}
		assert.True(t, m.AllUnlocked())
		assert.True(t, m.Snapshot().AllUnlocked)
		assert.True(t, m.IsCompleted(TaskCount-1, 3))
	})
}

func TestResume(t *testing.T) {
	t.Run("Should match a machine driven to the same step", func(t *testing.T) {
		m, err := Resume(2, 1)
		require.NoError(t, err)
		driven := enter(t, 2)
		driven.CompleteSubtask(0)
		assert.Equal(t, driven.Snapshot(), m.Snapshot())
	})
	t.Run("Should accept only the active subtask after resuming", func(t *testing.T) {
		m, err := Resume(3, 2)
		require.NoError(t, err)
		assert.False(t, m.CompleteSubtask(1).Changed())
		assert.Equal(t, OutcomeAdvanced, m.CompleteSubtask(2).Outcome)
	})
	t.Run("Should reject positions outside the walkthrough", func(t *testing.T) {
		_, err := Resume(TaskCount, 0)
		assert.Error(t, err)
		_, err = Resume(0, 1)
		assert.Error(t, err)
		_, err = Resume(1, SubtasksPerTask)
		assert.Error(t, err)
	})
}

func TestSnapshot(t *testing.T) {
	t.Run("Should not share state with the machine", func(t *testing.T) {
		m := enter(t, 1)
		snap := m.Snapshot()
		snap.CompletedSubtasks[1][0] = true
		assert.False(t, m.IsCompleted(1, 0))
	})

	t.Run("Should encode a missing selection as null", func(t *testing.T) {
		data, err := json.Marshal(New().Snapshot())
		require.NoError(t, err)
		assert.Contains(t, string(data), `"selectedTaskIndex":null`)
	})
}

func TestLayout(t *testing.T) {
	t.Run("Should never keep both panels at the maximum", func(t *testing.T) {
		l := NewLayout()
		l.ExpandAssistant()
		l.ExpandProgress()
		assert.Equal(t, MaxPanelHeight, l.Progress)
		assert.Equal(t, DefaultAssistantHeight, l.Assistant)

		l.ExpandAssistant()
		assert.Equal(t, MaxPanelHeight, l.Assistant)
		assert.Equal(t, DefaultProgressHeight, l.Progress)
	})

	t.Run("Should leave the other panel alone below the maximum", func(t *testing.T) {
		l := NewLayout()
		l.ExpandAssistant()
		l.SetProgressHeight(40)
		assert.Equal(t, MaxPanelHeight, l.Assistant)
		assert.Equal(t, 40, l.Progress)
	})

	t.Run("Should clamp heights and restore defaults on collapse", func(t *testing.T) {
		l := NewLayout()
		l.SetProgressHeight(90)
		assert.Equal(t, MaxPanelHeight, l.Progress)
		l.SetAssistantHeight(0)
		assert.Equal(t, MinPanelHeight, l.Assistant)
		l.CollapseProgress()
		l.CollapseAssistant()
		assert.Equal(t, NewLayout(), l)
	})
}
