package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/taskforge/core-api/internal/application/cqrs"
	"github.com/taskforge/core-api/internal/application/task"
)

// TaskHandler exposes the task lifecycle — create, update, assign,
// status transitions, soft-delete, comments — over the mediator.
type TaskHandler struct {
	mediator *cqrs.Mediator
}

// NewTaskHandler constructs the task handler.
func NewTaskHandler(mediator *cqrs.Mediator) *TaskHandler {
	return &TaskHandler{mediator: mediator}
}

type createTaskRequest struct {
	ProjectID        string     `json:"project_id"`
	DepartmentID     *string    `json:"department_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Priority         string     `json:"priority"`
	AssignedToUserID *string    `json:"assigned_to_user_id"`
	DueDate          *time.Time `json:"due_date"`
	Tags             []string   `json:"tags"`
	EstimatedHours   *float64   `json:"estimated_hours"`
}

// Create godoc
// @Summary      Create a task in the caller's tenant
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        body  body  createTaskRequest  true  "task fields"
// @Success      201   {object}  dto.TaskResponse
// @Failure      400   {object}  errorBody
// @Router       /api/v1/tasks [post]
func (h *TaskHandler) Create(c *fiber.Ctx) error {
	var in createTaskRequest
	if err := c.BodyParser(&in); err != nil {
		return err
	}
	rc := requestContext(c)
	result, err := h.mediator.Send(c.Context(), rc, task.CreateTaskCommand{
		ProjectID:        in.ProjectID,
		DepartmentID:     in.DepartmentID,
		Title:            in.Title,
		Description:      in.Description,
		Priority:         in.Priority,
		AssignedToUserID: in.AssignedToUserID,
		CreatedByUserID:  rc.UserID,
		DueDate:          in.DueDate,
		Tags:             in.Tags,
		EstimatedHours:   in.EstimatedHours,
	})
	if err != nil {
		return err
	}
	return respondCreated(c, result)
}

// GetByID godoc
// @Summary      Fetch a single task
// @Tags         tasks
// @Produce      json
// @Param        id   path  string  true  "task id"
// @Success      200  {object}  dto.TaskResponse
// @Failure      404  {object}  errorBody
// @Router       /api/v1/tasks/{id} [get]
func (h *TaskHandler) GetByID(c *fiber.Ctx) error {
	result, err := h.mediator.Query(c.Context(), requestContext(c), task.GetTaskByIDQuery{TaskID: c.Params("id")})
	if err != nil {
		return err
	}
	return respondOK(c, result)
}

// List godoc
// @Summary      List tasks in the caller's tenant
// @Tags         tasks
// @Produce      json
// @Param        project_id          query  string  false  "filter by project"
// @Param        status              query  string  false  "filter by status"
// @Param        assigned_to_user_id query  string  false  "filter by assignee"
// @Param        limit               query  int     false  "page size"
// @Param        offset              query  int     false  "page offset"
// @Success      200  {object}  dto.TaskListResponse
// @Router       /api/v1/tasks [get]
func (h *TaskHandler) List(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	result, err := h.mediator.Query(c.Context(), requestContext(c), task.ListTasksQuery{
		ProjectID:        c.Query("project_id"),
		Status:           c.Query("status"),
		AssignedToUserID: c.Query("assigned_to_user_id"),
		Limit:            limit,
		Offset:           offset,
	})
	if err != nil {
		return err
	}
	return respondOK(c, result)
}

// Statistics godoc
// @Summary      Aggregate task counts for the caller's tenant
// @Tags         tasks
// @Produce      json
// @Success      200  {object}  dto.TaskStatisticsResponse
// @Router       /api/v1/tasks/reports/statistics [get]
func (h *TaskHandler) Statistics(c *fiber.Ctx) error {
	result, err := h.mediator.Query(c.Context(), requestContext(c), task.GetTaskStatisticsQuery{})
	if err != nil {
		return err
	}
	return respondOK(c, result)
}

type updateTaskRequest struct {
	Title           *string    `json:"title"`
	Description     *string    `json:"description"`
	Priority        *string    `json:"priority"`
	DueDate         *time.Time `json:"due_date"`
	EstimatedHours  *float64   `json:"estimated_hours"`
	ActualHours     *float64   `json:"actual_hours"`
	Tags            []string   `json:"tags"`
	Watchers        []string   `json:"watchers"`
	ExpectedVersion int64      `json:"expected_version"`
}

// Update godoc
// @Summary      Apply a partial update to a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "task id"
// @Param        body  body  updateTaskRequest  true  "fields to change"
// @Success      200   {object}  dto.TaskResponse
// @Failure      409   {object}  errorBody
// @Router       /api/v1/tasks/{id} [put]
func (h *TaskHandler) Update(c *fiber.Ctx) error {
	var in updateTaskRequest
	if err := c.BodyParser(&in); err != nil {
		return err
	}
	result, err := h.mediator.Send(c.Context(), requestContext(c), task.UpdateTaskCommand{
		TaskID:          c.Params("id"),
		Title:           in.Title,
		Description:     in.Description,
		Priority:        in.Priority,
		DueDate:         in.DueDate,
		EstimatedHours:  in.EstimatedHours,
		ActualHours:     in.ActualHours,
		Tags:            in.Tags,
		Watchers:        in.Watchers,
		ExpectedVersion: in.ExpectedVersion,
	})
	if err != nil {
		return err
	}
	return respondOK(c, result)
}

type assignTaskRequest struct {
	AssignedToUserID string `json:"assigned_to_user_id"`
	ExpectedVersion  int64  `json:"expected_version"`
}

// Assign godoc
// @Summary      Reassign a task's owner
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "task id"
// @Param        body  body  assignTaskRequest  true  "assigned_to_user_id, expected_version"
// @Success      200   {object}  dto.TaskResponse
// @Router       /api/v1/tasks/{id}/assign [patch]
func (h *TaskHandler) Assign(c *fiber.Ctx) error {
	var in assignTaskRequest
	if err := c.BodyParser(&in); err != nil {
		return err
	}
	rc := requestContext(c)
	result, err := h.mediator.Send(c.Context(), rc, task.AssignTaskCommand{
		TaskID:           c.Params("id"),
		AssignedToUserID: in.AssignedToUserID,
		AssignedByUserID: rc.UserID,
		ExpectedVersion:  in.ExpectedVersion,
	})
	if err != nil {
		return err
	}
	return respondOK(c, result)
}

type changeStatusRequest struct {
	NewStatus       string `json:"new_status"`
	BlockedReason   string `json:"blocked_reason"`
	ExpectedVersion int64  `json:"expected_version"`
}

// ChangeStatus godoc
// @Summary      Drive a task through its status state machine
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "task id"
// @Param        body  body  changeStatusRequest  true  "new_status, blocked_reason, expected_version"
// @Success      200   {object}  dto.TaskResponse
// @Failure      409   {object}  errorBody
// @Router       /api/v1/tasks/{id}/status [patch]
func (h *TaskHandler) ChangeStatus(c *fiber.Ctx) error {
	var in changeStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return err
	}
	rc := requestContext(c)
	result, err := h.mediator.Send(c.Context(), rc, task.ChangeTaskStatusCommand{
		TaskID:          c.Params("id"),
		NewStatus:       in.NewStatus,
		BlockedReason:   in.BlockedReason,
		ActorUserID:     rc.UserID,
		ActorIsAdmin:    rc.IsAdmin(),
		ExpectedVersion: in.ExpectedVersion,
	})
	if err != nil {
		return err
	}
	return respondOK(c, result)
}

// Delete godoc
// @Summary      Soft-delete a task
// @Tags         tasks
// @Param        id  path  string  true  "task id"
// @Success      204
// @Router       /api/v1/tasks/{id} [delete]
func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	rc := requestContext(c)
	if _, err := h.mediator.Send(c.Context(), rc, task.DeleteTaskCommand{TaskID: c.Params("id"), ActorUserID: rc.UserID}); err != nil {
		return err
	}
	return respondNoContent(c)
}

type addCommentRequest struct {
	Content string `json:"content"`
}

// AddComment godoc
// @Summary      Append a comment to a task's thread
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "task id"
// @Param        body  body  addCommentRequest  true  "content"
// @Success      201   {object}  dto.CommentResponse
// @Router       /api/v1/tasks/{id}/comments [post]
func (h *TaskHandler) AddComment(c *fiber.Ctx) error {
	var in addCommentRequest
	if err := c.BodyParser(&in); err != nil {
		return err
	}
	rc := requestContext(c)
	result, err := h.mediator.Send(c.Context(), rc, task.AddTaskCommentCommand{
		TaskID:      c.Params("id"),
		ActorUserID: rc.UserID,
		Content:     in.Content,
	})
	if err != nil {
		return err
	}
	return respondCreated(c, result)
}

// ListComments godoc
// @Summary      List a task's comment thread
// @Tags         tasks
// @Produce      json
// @Param        id      path   string  true   "task id"
// @Param        limit   query  int     false  "page size"
// @Param        offset  query  int     false  "page offset"
// @Success      200  {array}  dto.CommentResponse
// @Router       /api/v1/tasks/{id}/comments [get]
func (h *TaskHandler) ListComments(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	result, err := h.mediator.Query(c.Context(), requestContext(c), task.ListTaskCommentsQuery{
		TaskID: c.Params("id"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return err
	}
	return respondOK(c, result)
}
