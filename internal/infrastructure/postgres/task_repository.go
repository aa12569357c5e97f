package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/taskforge/core-api/internal/domain"
	"github.com/taskforge/core-api/internal/domain/entity"
	"github.com/taskforge/core-api/internal/domain/repository"
)

var _ repository.TaskRepository = (*TaskRepo)(nil)

// TaskRepo implements repository.TaskRepository. GetByIDForUpdate locks
// the row the same way RefreshTokenRepo.GetByTokenHashForUpdate does, so
// the mediator's transactional stage can apply taskagg.CheckVersion
// without a concurrent writer changing the row underneath it.
type TaskRepo struct {
	q Querier
}

// NewTaskRepository builds the adapter. Pass pool or tx (Querier).
func NewTaskRepository(q Querier) *TaskRepo {
	return &TaskRepo{q: q}
}

const taskColumns = `id, tenant_id, project_id, department_id, title, description, status, priority,
	assigned_to_user_id, created_by_user_id, watchers, tags, due_date, estimated_hours,
	actual_hours, blocked_reason, version, is_deleted, created_at, updated_at`

func scanTask(row interface {
	Scan(dest ...any) error
}) (*entity.Task, error) {
	var t entity.Task
	err := row.Scan(
		&t.ID, &t.TenantID, &t.ProjectID, &t.DepartmentID, &t.Title, &t.Description, &t.Status,
		&t.Priority, &t.AssignedToUserID, &t.CreatedByUserID, &t.Watchers, &t.Tags, &t.DueDate,
		&t.EstimatedHours, &t.ActualHours, &t.BlockedReason, &t.Version, &t.IsDeleted,
		&t.CreatedAt, &t.UpdatedAt,
	)
	return &t, err
}

func (r *TaskRepo) Create(ctx context.Context, task *entity.Task) error {
	if err := requireTenant(task.TenantID); err != nil {
		return err
	}
	query := fmt.Sprintf(`INSERT INTO tasks (%s) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`, taskColumns)
	_, err := r.q.Exec(ctx, query,
		task.ID, task.TenantID, task.ProjectID, task.DepartmentID, task.Title, task.Description,
		task.Status, task.Priority, task.AssignedToUserID, task.CreatedByUserID, task.Watchers,
		task.Tags, task.DueDate, task.EstimatedHours, task.ActualHours, task.BlockedReason,
		task.Version, task.IsDeleted, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *TaskRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Task, error) {
	return r.getByID(ctx, tenantID, id, false)
}

func (r *TaskRepo) GetByIDForUpdate(ctx context.Context, tenantID, id string) (*entity.Task, error) {
	return r.getByID(ctx, tenantID, id, true)
}

func (r *TaskRepo) getByID(ctx context.Context, tenantID, id string, forUpdate bool) (*entity.Task, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE tenant_id = $1 AND id = $2 AND is_deleted = false`, taskColumns)
	if forUpdate {
		query += " FOR UPDATE"
	}
	t, err := scanTask(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (r *TaskRepo) TenantOf(ctx context.Context, id string) (string, bool, error) {
	var tenantID string
	err := r.q.QueryRow(ctx, `SELECT tenant_id FROM tasks WHERE id = $1 AND is_deleted = false`, id).Scan(&tenantID)
	if err != nil {
		if isNoRows(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("tenant of task: %w", err)
	}
	return tenantID, true, nil
}

func (r *TaskRepo) Update(ctx context.Context, task *entity.Task) error {
	if err := requireTenant(task.TenantID); err != nil {
		return err
	}
	const query = `
		UPDATE tasks SET
			title = $3, description = $4, status = $5, priority = $6, assigned_to_user_id = $7,
			watchers = $8, tags = $9, due_date = $10, estimated_hours = $11, actual_hours = $12,
			blocked_reason = $13, version = $14, is_deleted = $15, updated_at = $16
		WHERE tenant_id = $1 AND id = $2`
	cmd, err := r.q.Exec(ctx, query,
		task.TenantID, task.ID, task.Title, task.Description, task.Status, task.Priority,
		task.AssignedToUserID, task.Watchers, task.Tags, task.DueDate, task.EstimatedHours,
		task.ActualHours, task.BlockedReason, task.Version, task.IsDeleted, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TaskRepo) ListByTenant(ctx context.Context, tenantID string, filter repository.TaskFilter) ([]*entity.Task, int, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, 0, err
	}
	where := []string{"tenant_id = $1"}
	args := []any{tenantID}
	if !filter.IncludeDeleted {
		where = append(where, "is_deleted = false")
	}
	if filter.ProjectID != "" {
		args = append(args, filter.ProjectID)
		where = append(where, fmt.Sprintf("project_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.AssignedToUserID != "" {
		args = append(args, filter.AssignedToUserID)
		where = append(where, fmt.Sprintf("assigned_to_user_id = $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	countQuery := fmt.Sprintf(`SELECT count(*) FROM tasks WHERE %s`, strings.Join(where, " AND "))
	var total int
	if err := r.q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	args = append(args, limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		taskColumns, strings.Join(where, " AND "), len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var list []*entity.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan task: %w", err)
		}
		list = append(list, t)
	}
	return list, total, rows.Err()
}

func (r *TaskRepo) Statistics(ctx context.Context, tenantID string) (*repository.TaskStatistics, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	stats := &repository.TaskStatistics{
		ByStatus:   map[string]int{},
		ByPriority: map[string]int{},
	}

	rows, err := r.q.Query(ctx, `SELECT status, count(*) FROM tasks WHERE tenant_id = $1 AND is_deleted = false GROUP BY status`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("statistics by status: %w", err)
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan statistics by status: %w", err)
		}
		stats.ByStatus[status] = n
		stats.TotalTasks += n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.q.Query(ctx, `SELECT priority, count(*) FROM tasks WHERE tenant_id = $1 AND is_deleted = false GROUP BY priority`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("statistics by priority: %w", err)
	}
	for rows.Next() {
		var priority string
		var n int
		if err := rows.Scan(&priority, &n); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan statistics by priority: %w", err)
		}
		stats.ByPriority[priority] = n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const overdueQuery = `SELECT count(*) FROM tasks WHERE tenant_id = $1 AND is_deleted = false AND due_date < now() AND status NOT IN ('DONE', 'CANCELLED')`
	if err := r.q.QueryRow(ctx, overdueQuery, tenantID).Scan(&stats.OverdueCount); err != nil {
		return nil, fmt.Errorf("statistics overdue count: %w", err)
	}

	const avgQuery = `SELECT coalesce(avg(actual_hours), 0) FROM tasks WHERE tenant_id = $1 AND is_deleted = false AND actual_hours IS NOT NULL`
	if err := r.q.QueryRow(ctx, avgQuery, tenantID).Scan(&stats.AvgActualHours); err != nil {
		return nil, fmt.Errorf("statistics avg actual hours: %w", err)
	}

	return stats, nil
}
