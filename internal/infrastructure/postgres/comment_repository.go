package postgres

import (
	"context"
	"fmt"

	"github.com/taskforge/core-api/internal/domain/entity"
	"github.com/taskforge/core-api/internal/domain/repository"
)

var _ repository.CommentRepository = (*CommentRepo)(nil)

// CommentRepo implements repository.CommentRepository.
type CommentRepo struct {
	q Querier
}

// NewCommentRepository builds the adapter. Pass pool or tx (Querier).
func NewCommentRepository(q Querier) *CommentRepo {
	return &CommentRepo{q: q}
}

func (r *CommentRepo) Create(ctx context.Context, comment *entity.Comment) error {
	if err := requireTenant(comment.TenantID); err != nil {
		return err
	}
	const query = `
		INSERT INTO task_comments (id, tenant_id, task_id, user_id, content, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`
	_, err := r.q.Exec(ctx, query, comment.ID, comment.TenantID, comment.TaskID, comment.UserID, comment.Content, comment.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *CommentRepo) ListByTask(ctx context.Context, tenantID, taskID string, limit, offset int) ([]*entity.Comment, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	const query = `
		SELECT id, tenant_id, task_id, user_id, content, created_at
		FROM task_comments WHERE tenant_id = $1 AND task_id = $2
		ORDER BY created_at ASC LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, tenantID, taskID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var list []*entity.Comment
	for rows.Next() {
		var c entity.Comment
		if err := rows.Scan(&c.ID, &c.TenantID, &c.TaskID, &c.UserID, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

