package task

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/core-api/internal/application/dto"
	"github.com/taskforge/core-api/internal/domain"
	"github.com/taskforge/core-api/internal/domain/entity"
	"github.com/taskforge/core-api/internal/domain/repository"
	"github.com/taskforge/core-api/internal/platform/events"
	"github.com/taskforge/core-api/internal/platform/reqcontext"
)

// fakeCrossTenantObserver counts calls instead of touching Prometheus.
type fakeCrossTenantObserver struct{ denials []string }

func (f *fakeCrossTenantObserver) ObserveCrossTenantDenial(reason string) {
	f.denials = append(f.denials, reason)
}

func newTestService() *Service {
	return NewService(zerolog.Nop(), &fakeCrossTenantObserver{})
}

type fakeTaskRepo struct {
	byID map[string]*entity.Task
}

func newFakeTaskRepo() *fakeTaskRepo { return &fakeTaskRepo{byID: map[string]*entity.Task{}} }

func (f *fakeTaskRepo) Create(ctx context.Context, t *entity.Task) error {
	f.byID[t.ID] = t
	return nil
}
func (f *fakeTaskRepo) get(tenantID, id string) (*entity.Task, error) {
	t, ok := f.byID[id]
	if !ok || t.TenantID != tenantID || t.IsDeleted {
		return nil, domain.ErrNotFound
	}
	return t, nil
}
func (f *fakeTaskRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Task, error) {
	return f.get(tenantID, id)
}
func (f *fakeTaskRepo) GetByIDForUpdate(ctx context.Context, tenantID, id string) (*entity.Task, error) {
	return f.get(tenantID, id)
}
func (f *fakeTaskRepo) TenantOf(ctx context.Context, id string) (string, bool, error) {
	t, ok := f.byID[id]
	if !ok || t.IsDeleted {
		return "", false, nil
	}
	return t.TenantID, true, nil
}
func (f *fakeTaskRepo) Update(ctx context.Context, t *entity.Task) error {
	f.byID[t.ID] = t
	return nil
}
func (f *fakeTaskRepo) ListByTenant(ctx context.Context, tenantID string, filter repository.TaskFilter) ([]*entity.Task, int, error) {
	var out []*entity.Task
	for _, t := range f.byID {
		if t.TenantID != tenantID || t.IsDeleted {
			continue
		}
		if filter.AssignedToUserID != "" && (t.AssignedToUserID == nil || *t.AssignedToUserID != filter.AssignedToUserID) {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.ProjectID != "" && t.ProjectID != filter.ProjectID {
			continue
		}
		out = append(out, t)
	}
	return out, len(out), nil
}
func (f *fakeTaskRepo) Statistics(ctx context.Context, tenantID string) (*repository.TaskStatistics, error) {
	stats := &repository.TaskStatistics{ByStatus: map[string]int{}, ByPriority: map[string]int{}}
	for _, t := range f.byID {
		if t.TenantID != tenantID || t.IsDeleted {
			continue
		}
		stats.TotalTasks++
		stats.ByStatus[t.Status]++
		stats.ByPriority[t.Priority]++
	}
	return stats, nil
}

type fakeCommentRepo struct {
	byTask map[string][]*entity.Comment
}

func newFakeCommentRepo() *fakeCommentRepo { return &fakeCommentRepo{byTask: map[string][]*entity.Comment{}} }

func (f *fakeCommentRepo) Create(ctx context.Context, c *entity.Comment) error {
	f.byTask[c.TaskID] = append(f.byTask[c.TaskID], c)
	return nil
}
func (f *fakeCommentRepo) ListByTask(ctx context.Context, tenantID, taskID string, limit, offset int) ([]*entity.Comment, error) {
	return f.byTask[taskID], nil
}

type fakeAuditRepo struct {
	entries []*entity.AuditLogEntry
}

func (f *fakeAuditRepo) Create(ctx context.Context, e *entity.AuditLogEntry) error {
	f.entries = append(f.entries, e)
	return nil
}
func (f *fakeAuditRepo) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.AuditLogEntry, error) {
	return f.entries, nil
}

type fakeTx struct {
	tasks    *fakeTaskRepo
	comments *fakeCommentRepo
	audit    *fakeAuditRepo
}

func newFakeTx() *fakeTx {
	return &fakeTx{tasks: newFakeTaskRepo(), comments: newFakeCommentRepo(), audit: &fakeAuditRepo{}}
}
func (f *fakeTx) Users() repository.UserRepository                 { return nil }
func (f *fakeTx) Tenants() repository.TenantRepository             { return nil }
func (f *fakeTx) RefreshTokens() repository.RefreshTokenRepository { return nil }
func (f *fakeTx) Tasks() repository.TaskRepository                 { return f.tasks }
func (f *fakeTx) Comments() repository.CommentRepository           { return f.comments }
func (f *fakeTx) AuditLogs() repository.AuditLogRepository         { return f.audit }
func (f *fakeTx) Outbox() repository.OutboxRepository              { return nil }
func (f *fakeTx) Commit(ctx context.Context) error                 { return nil }
func (f *fakeTx) Rollback(ctx context.Context) error                { return nil }

// readTx adapts fakeTx to cqrs.ReadTx without re-declaring the repos.
type readTx struct{ *fakeTx }

func (r readTx) Close(ctx context.Context) {}

func memberContext(userID string) *reqcontext.RequestContext {
	return &reqcontext.RequestContext{
		TenantID:    "tenant-1",
		UserID:      userID,
		Roles:       []string{entity.RoleMember},
		Permissions: entity.DefaultPermissionsForRole(entity.RoleMember),
	}
}

func adminContext() *reqcontext.RequestContext {
	return &reqcontext.RequestContext{
		TenantID:    "tenant-1",
		UserID:      "admin-1",
		Roles:       []string{entity.RoleTenantAdmin},
		Permissions: entity.DefaultPermissionsForRole(entity.RoleTenantAdmin),
	}
}

func TestHandleCreate_DefaultsPriorityAndAssignsCreator(t *testing.T) {
	svc := newTestService()
	tx := newFakeTx()
	rc := memberContext("user-1")
	recorder := events.NewRecorder(rc.TenantID)

	result, err := svc.handleCreate(context.Background(), tx, rc, recorder, CreateTaskCommand{
		ProjectID: "proj-1",
		Title:     "write the docs",
	})
	require.NoError(t, err)

	resp := result.(dto.TaskResponse)
	assert.Equal(t, entity.PriorityMedium, resp.Priority)
	assert.Equal(t, "user-1", resp.CreatedByUserID)
	require.Len(t, recorder.Recorded(), 1)
	assert.Equal(t, events.TypeTaskCreated, recorder.Recorded()[0].Type)
}

func TestHandleUpdate_RejectsStaleVersion(t *testing.T) {
	svc := newTestService()
	tx := newFakeTx()
	rc := memberContext("user-1")
	now := time.Now().UTC()
	task := &entity.Task{ID: "task-1", TenantID: "tenant-1", Title: "old", Status: entity.StatusTodo,
		CreatedByUserID: "user-1", Version: 2, CreatedAt: now, UpdatedAt: now}
	tx.tasks.byID[task.ID] = task

	newTitle := "new title"
	_, err := svc.handleUpdate(context.Background(), tx, rc, events.NewRecorder(rc.TenantID), UpdateTaskCommand{
		TaskID: task.ID, Title: &newTitle, ExpectedVersion: 1,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestHandleUpdate_DeniesNonOwnerNonAdmin(t *testing.T) {
	svc := newTestService()
	tx := newFakeTx()
	now := time.Now().UTC()
	task := &entity.Task{ID: "task-1", TenantID: "tenant-1", Title: "old", Status: entity.StatusTodo,
		CreatedByUserID: "owner", Version: 1, CreatedAt: now, UpdatedAt: now}
	tx.tasks.byID[task.ID] = task

	rc := memberContext("someone-else")
	newTitle := "new title"
	_, err := svc.handleUpdate(context.Background(), tx, rc, events.NewRecorder(rc.TenantID), UpdateTaskCommand{
		TaskID: task.ID, Title: &newTitle, ExpectedVersion: 1,
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestHandleChangeStatus_BlockedRequiresReasonAndWritesAuditLog(t *testing.T) {
	svc := newTestService()
	tx := newFakeTx()
	now := time.Now().UTC()
	task := &entity.Task{ID: "task-1", TenantID: "tenant-1", Title: "t", Status: entity.StatusTodo,
		CreatedByUserID: "user-1", Version: 1, CreatedAt: now, UpdatedAt: now}
	tx.tasks.byID[task.ID] = task

	rc := memberContext("user-1")
	_, err := svc.handleChangeStatus(context.Background(), tx, rc, events.NewRecorder(rc.TenantID), ChangeTaskStatusCommand{
		TaskID: task.ID, NewStatus: entity.StatusBlocked, ExpectedVersion: 1,
	})
	require.Error(t, err)
	assert.Equal(t, entity.StatusTodo, task.Status)
	assert.Empty(t, tx.audit.entries)

	_, err = svc.handleChangeStatus(context.Background(), tx, rc, events.NewRecorder(rc.TenantID), ChangeTaskStatusCommand{
		TaskID: task.ID, NewStatus: entity.StatusBlocked, BlockedReason: "waiting on design", ExpectedVersion: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusBlocked, task.Status)
	require.Len(t, tx.audit.entries, 1)
	assert.Equal(t, "status_changed", tx.audit.entries[0].Action)
}

func TestHandleChangeStatus_CancelledRequiresAdmin(t *testing.T) {
	svc := newTestService()
	tx := newFakeTx()
	now := time.Now().UTC()
	task := &entity.Task{ID: "task-1", TenantID: "tenant-1", Title: "t", Status: entity.StatusTodo,
		CreatedByUserID: "user-1", Version: 1, CreatedAt: now, UpdatedAt: now}
	tx.tasks.byID[task.ID] = task

	rc := memberContext("user-1")
	_, err := svc.handleChangeStatus(context.Background(), tx, rc, events.NewRecorder(rc.TenantID), ChangeTaskStatusCommand{
		TaskID: task.ID, NewStatus: entity.StatusCancelled, ExpectedVersion: 1,
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	rc2 := adminContext()
	_, err = svc.handleChangeStatus(context.Background(), tx, rc2, events.NewRecorder(rc2.TenantID), ChangeTaskStatusCommand{
		TaskID: task.ID, NewStatus: entity.StatusCancelled, ExpectedVersion: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCancelled, task.Status)
}

func TestHandleDelete_SoftDeletesAndHidesFromGetByID(t *testing.T) {
	svc := newTestService()
	tx := newFakeTx()
	now := time.Now().UTC()
	task := &entity.Task{ID: "task-1", TenantID: "tenant-1", Title: "t", Status: entity.StatusTodo,
		CreatedByUserID: "user-1", Version: 1, CreatedAt: now, UpdatedAt: now}
	tx.tasks.byID[task.ID] = task

	rc := memberContext("user-1")
	_, err := svc.handleDelete(context.Background(), tx, rc, events.NewRecorder(rc.TenantID), DeleteTaskCommand{TaskID: task.ID})
	require.NoError(t, err)

	_, err = svc.handleGetByID(context.Background(), readTx{tx}, rc, GetTaskByIDQuery{TaskID: task.ID})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHandleAddComment_SameDepartmentMemberWithReadCanComment(t *testing.T) {
	svc := newTestService()
	tx := newFakeTx()
	now := time.Now().UTC()
	dept := "eng"
	task := &entity.Task{ID: "task-1", TenantID: "tenant-1", Title: "t", Status: entity.StatusTodo,
		CreatedByUserID: "owner", DepartmentID: &dept, Version: 1, CreatedAt: now, UpdatedAt: now}
	tx.tasks.byID[task.ID] = task

	rc := memberContext("colleague")
	rc.DepartmentID = &dept

	_, err := svc.handleAddComment(context.Background(), tx, rc, events.NewRecorder(rc.TenantID), AddTaskCommentCommand{
		TaskID: task.ID, Content: "looks good",
	})
	require.NoError(t, err)
	assert.Len(t, tx.comments.byTask[task.ID], 1)
}

func TestHandleGetByID_CrossTenantTaskReportsNotFoundAndCountsDenial(t *testing.T) {
	observer := &fakeCrossTenantObserver{}
	svc := NewService(zerolog.Nop(), observer)
	tx := newFakeTx()
	now := time.Now().UTC()
	task := &entity.Task{ID: "task-1", TenantID: "tenant-2", Title: "t", Status: entity.StatusTodo,
		CreatedByUserID: "owner", Version: 1, CreatedAt: now, UpdatedAt: now}
	tx.tasks.byID[task.ID] = task

	rc := memberContext("user-1")
	_, err := svc.handleGetByID(context.Background(), readTx{tx}, rc, GetTaskByIDQuery{TaskID: task.ID})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.Len(t, observer.denials, 1)
	assert.Equal(t, "task_tenant_mismatch", observer.denials[0])
}

func TestHandleGetByID_UnknownTaskReportsNotFoundWithoutDenial(t *testing.T) {
	observer := &fakeCrossTenantObserver{}
	svc := NewService(zerolog.Nop(), observer)
	tx := newFakeTx()
	rc := memberContext("user-1")

	_, err := svc.handleGetByID(context.Background(), readTx{tx}, rc, GetTaskByIDQuery{TaskID: "nope"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, observer.denials)
}

func TestHandleStatistics_CountsByStatusAndPriority(t *testing.T) {
	svc := newTestService()
	tx := newFakeTx()
	now := time.Now().UTC()
	tx.tasks.byID["t1"] = &entity.Task{ID: "t1", TenantID: "tenant-1", Status: entity.StatusTodo, Priority: entity.PriorityHigh, CreatedAt: now, UpdatedAt: now}
	tx.tasks.byID["t2"] = &entity.Task{ID: "t2", TenantID: "tenant-1", Status: entity.StatusDone, Priority: entity.PriorityLow, CreatedAt: now, UpdatedAt: now}

	rc := adminContext()
	result, err := svc.handleStatistics(context.Background(), readTx{tx}, rc, GetTaskStatisticsQuery{})
	require.NoError(t, err)
	resp := result.(dto.TaskStatisticsResponse)
	assert.Equal(t, 2, resp.TotalCount)
}

func TestHandleList_MemberOnlySeesOwnTasks(t *testing.T) {
	svc := newTestService()
	tx := newFakeTx()
	now := time.Now().UTC()
	mine := "user-1"
	other := "user-2"
	tx.tasks.byID["t1"] = &entity.Task{ID: "t1", TenantID: "tenant-1", Status: entity.StatusTodo,
		AssignedToUserID: &mine, CreatedByUserID: mine, CreatedAt: now, UpdatedAt: now}
	tx.tasks.byID["t2"] = &entity.Task{ID: "t2", TenantID: "tenant-1", Status: entity.StatusTodo,
		AssignedToUserID: &other, CreatedByUserID: other, CreatedAt: now, UpdatedAt: now}

	rc := memberContext(mine)
	result, err := svc.handleList(context.Background(), readTx{tx}, rc, ListTasksQuery{})
	require.NoError(t, err)

	resp := result.(dto.TaskListResponse)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "t1", resp.Items[0].ID)
}

func TestHandleList_AdminSeesEveryTenantTask(t *testing.T) {
	svc := newTestService()
	tx := newFakeTx()
	now := time.Now().UTC()
	userA := "user-1"
	userB := "user-2"
	tx.tasks.byID["t1"] = &entity.Task{ID: "t1", TenantID: "tenant-1", Status: entity.StatusTodo,
		AssignedToUserID: &userA, CreatedByUserID: userA, CreatedAt: now, UpdatedAt: now}
	tx.tasks.byID["t2"] = &entity.Task{ID: "t2", TenantID: "tenant-1", Status: entity.StatusTodo,
		AssignedToUserID: &userB, CreatedByUserID: userB, CreatedAt: now, UpdatedAt: now}

	rc := adminContext()
	result, err := svc.handleList(context.Background(), readTx{tx}, rc, ListTasksQuery{})
	require.NoError(t, err)

	resp := result.(dto.TaskListResponse)
	assert.Len(t, resp.Items, 2)
}
