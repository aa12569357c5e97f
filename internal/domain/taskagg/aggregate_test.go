package taskagg_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/core-api/internal/domain"
	"github.com/taskforge/core-api/internal/domain/entity"
	"github.com/taskforge/core-api/internal/domain/taskagg"
)

func newTask() *entity.Task {
	return &entity.Task{
		ID:       "task-1",
		TenantID: "tenant-1",
		Status:   entity.StatusTodo,
		Version:  3,
	}
}

func TestChangeStatus_DirectTodoToDoneRejected(t *testing.T) {
	agg := taskagg.New(newTask())
	err := agg.ChangeStatus(entity.StatusDone, "", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestChangeStatus_HappyPathToReviewRequiresAssignee(t *testing.T) {
	task := newTask()
	agg := taskagg.New(task)

	require.NoError(t, agg.ChangeStatus(entity.StatusInProgress, "", false))
	assert.Equal(t, int64(4), task.Version)

	err := agg.ChangeStatus(entity.StatusInReview, "", false)
	require.Error(t, err, "IN_REVIEW requires an assignee")

	agg.AssignTo("user-1")
	require.NoError(t, agg.ChangeStatus(entity.StatusInReview, "", false))

	require.NoError(t, agg.ChangeStatus(entity.StatusDone, "", false))
	assert.Equal(t, entity.StatusDone, task.Status)
	assert.Equal(t, int64(7), task.Version)

	events := agg.Events()
	require.Len(t, events, 3)
	assert.Equal(t, entity.StatusInProgress, events[0].To)
	assert.Equal(t, entity.StatusInReview, events[1].To)
	assert.Equal(t, entity.StatusDone, events[2].To)
}

func TestChangeStatus_DoneIsTerminalExceptAdminCancel(t *testing.T) {
	task := newTask()
	task.Status = entity.StatusDone
	agg := taskagg.New(task)

	err := agg.ChangeStatus(entity.StatusTodo, "", false)
	require.Error(t, err)

	err = agg.ChangeStatus(entity.StatusCancelled, "", false)
	require.Error(t, err, "non-admin cannot cancel a DONE task")
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	require.NoError(t, agg.ChangeStatus(entity.StatusCancelled, "", true))
	assert.Equal(t, entity.StatusCancelled, task.Status)
}

func TestChangeStatus_BlockedRequiresReason(t *testing.T) {
	agg := taskagg.New(newTask())
	err := agg.ChangeStatus(entity.StatusBlocked, "", false)
	require.Error(t, err)

	require.NoError(t, agg.ChangeStatus(entity.StatusBlocked, "waiting on vendor", false))
	assert.Equal(t, "waiting on vendor", agg.Task().BlockedReason)
}

func TestCheckVersion_StaleWriteConflicts(t *testing.T) {
	agg := taskagg.New(newTask())
	require.NoError(t, agg.CheckVersion(3))
	err := agg.CheckVersion(2)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
}
