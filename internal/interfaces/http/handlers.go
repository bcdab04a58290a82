package http

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/docuflow/docuflow/internal/application/port"
	"github.com/docuflow/docuflow/internal/application/service"
	"github.com/docuflow/docuflow/internal/domain/entity"
	"github.com/docuflow/docuflow/internal/domain/workflow"
)

const (
	actorKey     = "actor"
	requestIDKey = "request_id"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	lifecycle        service.LifecycleService
	transitions      service.TransitionService
	catalog          service.CatalogService
	docRepo          port.DocumentRepository
	userRepo         port.UserRepository
	activityRepo     port.ActivityRepository
	notificationRepo port.NotificationRepository
	policy           port.DocumentPolicy
	extractor        port.ContentExtractor
	logger           *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	lifecycle service.LifecycleService,
	transitions service.TransitionService,
	catalog service.CatalogService,
	docRepo port.DocumentRepository,
	userRepo port.UserRepository,
	activityRepo port.ActivityRepository,
	notificationRepo port.NotificationRepository,
	policy port.DocumentPolicy,
	extractor port.ContentExtractor,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		lifecycle:        lifecycle,
		transitions:      transitions,
		catalog:          catalog,
		docRepo:          docRepo,
		userRepo:         userRepo,
		activityRepo:     activityRepo,
		notificationRepo: notificationRepo,
		policy:           policy,
		extractor:        extractor,
		logger:           logger,
	}
}

// loadVisibleDocument loads a document and enforces the view policy.
// It writes the error response itself and returns nil when the caller
// should stop.
func (h *Handlers) loadVisibleDocument(c *gin.Context, id int64) (*entity.Document, error) {
	doc, err := h.docRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load document", zap.Int64("document_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to load document"})
		return nil, err
	}
	if doc == nil {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "document not found"})
		return nil, nil
	}
	if !h.policy.CanView(actor(c), doc) {
		c.JSON(http.StatusForbidden, Response{Success: false, Error: "not authorized to view document"})
		return nil, nil
	}
	return doc, nil
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ActorMiddleware resolves the acting user from the X-User-ID header.
// Authentication is handled upstream; this layer only needs the
// identity for role and policy checks.
func (h *Handlers) ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		idStr := c.GetHeader("X-User-ID")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil || id <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "missing or invalid X-User-ID header",
			})
			return
		}

		user, err := h.userRepo.GetByID(c.Request.Context(), id)
		if err != nil {
			h.logger.Error("Failed to resolve acting user", zap.Int64("user_id", id), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, Response{
				Success: false,
				Error:   "failed to resolve user",
			})
			return
		}
		if user == nil || !user.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "unknown or inactive user",
			})
			return
		}

		c.Set(actorKey, user)
		c.Next()
	}
}

func actor(c *gin.Context) *entity.User {
	return c.MustGet(actorKey).(*entity.User)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid id"})
		return 0, false
	}
	return id, true
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"status":    "healthy",
			"service":   "docuflow",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// CreateDocumentRequest is the POST /api/documents body
type CreateDocumentRequest struct {
	Title        string     `json:"title" binding:"required"`
	Description  string     `json:"description"`
	Priority     string     `json:"priority"`
	StatusID     int64      `json:"status_id"`
	AssignedTo   *int64     `json:"assigned_to"`
	BranchID     *int64     `json:"branch_id"`
	DepartmentID *int64     `json:"department_id"`
	DueAt        *time.Time `json:"due_at"`
}

// CreateDocument handles POST /api/documents
func (h *Handlers) CreateDocument(c *gin.Context) {
	var req CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	user := actor(c)
	if req.Priority != "" && !entity.Priority(req.Priority).IsValid() {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid priority"})
		return
	}

	doc := &entity.Document{
		CompanyID:    user.CompanyID,
		BranchID:     req.BranchID,
		DepartmentID: req.DepartmentID,
		StatusID:     req.StatusID,
		Priority:     entity.Priority(req.Priority),
		Title:        req.Title,
		Description:  req.Description,
		AssignedTo:   req.AssignedTo,
		DueAt:        req.DueAt,
	}

	if doc.StatusID == 0 {
		initial, err := h.catalog.InitialStatus(c.Request.Context(), user.CompanyID)
		if err != nil {
			h.respondWorkflowError(c, err)
			return
		}
		doc.StatusID = initial.ID
	}

	if err := h.lifecycle.CreateDocument(c.Request.Context(), doc, user); err != nil {
		h.logger.Error("Failed to create document", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to create document"})
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: doc})
}

// GetDocument handles GET /api/documents/:id
func (h *Handlers) GetDocument(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	doc, err := h.loadVisibleDocument(c, id)
	if err != nil || doc == nil {
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: doc})
}

// UpdateDocumentRequest is the PUT /api/documents/:id body. Only
// supplied fields change.
type UpdateDocumentRequest struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	Priority      *string    `json:"priority"`
	AssignedTo    *int64     `json:"assigned_to"`
	ClearAssignee bool       `json:"clear_assignee"`
	DueAt         *time.Time `json:"due_at"`
	ClearDueAt    bool       `json:"clear_due_at"`
	DepartmentID  *int64     `json:"department_id"`
	Comment       string     `json:"comment"`
}

// UpdateDocument handles PUT /api/documents/:id
func (h *Handlers) UpdateDocument(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	doc, err := h.loadVisibleDocument(c, id)
	if err != nil || doc == nil {
		return
	}

	updated := doc.Clone()
	if req.Title != nil {
		updated.Title = *req.Title
	}
	if req.Description != nil {
		updated.Description = *req.Description
	}
	if req.Priority != nil {
		if !entity.Priority(*req.Priority).IsValid() {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid priority"})
			return
		}
		updated.Priority = entity.Priority(*req.Priority)
	}
	if req.AssignedTo != nil {
		updated.AssignedTo = req.AssignedTo
	}
	if req.ClearAssignee {
		updated.AssignedTo = nil
	}
	if req.DueAt != nil {
		updated.DueAt = req.DueAt
	}
	if req.ClearDueAt {
		updated.DueAt = nil
	}
	if req.DepartmentID != nil {
		updated.DepartmentID = req.DepartmentID
	}

	changes, err := h.lifecycle.UpdateDocument(c.Request.Context(), updated, actor(c), req.Comment)
	if err != nil {
		h.logger.Error("Failed to update document", zap.Int64("document_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to update document"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{
		"document": updated,
		"changes":  changes,
	}})
}

// DeleteDocument handles DELETE /api/documents/:id
func (h *Handlers) DeleteDocument(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.lifecycle.DeleteDocument(c.Request.Context(), id, actor(c)); err != nil {
		h.logger.Error("Failed to delete document", zap.Int64("document_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to delete document"})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// RestoreDocument handles POST /api/documents/:id/restore
func (h *Handlers) RestoreDocument(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.lifecycle.RestoreDocument(c.Request.Context(), id, actor(c)); err != nil {
		h.logger.Error("Failed to restore document", zap.Int64("document_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to restore document"})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// TransitionRequest is the POST /api/documents/:id/transition body
type TransitionRequest struct {
	TargetStatusID int64  `json:"target_status_id" binding:"required"`
	Comment        string `json:"comment"`
}

// Transition handles POST /api/documents/:id/transition
func (h *Handlers) Transition(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	result, err := h.transitions.Transition(c.Request.Context(), id, req.TargetStatusID, actor(c), req.Comment)
	if err != nil {
		h.respondWorkflowError(c, err)
		return
	}

	data := gin.H{
		"transition":       result.Definition.Name,
		"new_status_id":    result.NewStatusID,
		"pending_approval": result.PendingApproval,
		"completed":        result.Completed,
	}
	if result.DueAt != nil {
		data["due_at"] = result.DueAt
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// PermittedTransitions handles GET /api/documents/:id/transitions
func (h *Handlers) PermittedTransitions(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	defs, err := h.transitions.PermittedTransitions(c.Request.Context(), id, actor(c))
	if err != nil {
		h.respondWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: defs})
}

// CreateVersionRequest is the POST /api/documents/:id/versions body
type CreateVersionRequest struct {
	Content string `json:"content" binding:"required"`
}

// CreateVersion handles POST /api/documents/:id/versions
func (h *Handlers) CreateVersion(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req CreateVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	version, err := h.lifecycle.CreateVersion(c.Request.Context(), id, req.Content, actor(c))
	if err != nil {
		h.logger.Error("Failed to create version", zap.Int64("document_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to create version"})
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: version})
}

// UploadVersion handles POST /api/documents/:id/versions/upload. The
// uploaded file is extracted to plain text and stored as a new version.
func (h *Handlers) UploadVersion(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "missing file"})
		return
	}

	tmp, err := os.CreateTemp("", "docuflow_upload_*"+filepath.Ext(file.Filename))
	if err != nil {
		h.logger.Error("Failed to create temp file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to store upload"})
		return
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		h.logger.Error("Failed to save upload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to store upload"})
		return
	}

	content, err := h.extractor.Extract(tmpPath)
	if err != nil {
		h.logger.Warn("Failed to extract content",
			zap.String("filename", file.Filename),
			zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, Response{Success: false, Error: "could not extract text from file"})
		return
	}

	version, err := h.lifecycle.CreateVersion(c.Request.Context(), id, content, actor(c))
	if err != nil {
		h.logger.Error("Failed to create version", zap.Int64("document_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to create version"})
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: version})
}

// ListActivity handles GET /api/documents/:id/activity
func (h *Handlers) ListActivity(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	entries, err := h.activityRepo.ListBySubject(c.Request.Context(), entity.SubjectDocument, id)
	if err != nil {
		h.logger.Error("Failed to list activity", zap.Int64("document_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to list activity"})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: entries})
}

// ListNotifications handles GET /api/notifications
func (h *Handlers) ListNotifications(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	notifications, err := h.notificationRepo.ListByUser(c.Request.Context(), actor(c).ID, limit)
	if err != nil {
		h.logger.Error("Failed to list notifications", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to list notifications"})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: notifications})
}

// InstallWorkflow handles POST /api/companies/:id/workflow
func (h *Handlers) InstallWorkflow(c *gin.Context) {
	companyID, ok := pathID(c)
	if !ok {
		return
	}

	user := actor(c)
	if !user.IsSuperAdmin() && !(user.HasRole(entity.RoleAdmin) && user.CompanyID == companyID) {
		c.JSON(http.StatusForbidden, Response{Success: false, Error: "not authorized to install workflows"})
		return
	}

	if err := h.catalog.InstallBasicWorkflow(c.Request.Context(), companyID); err != nil {
		h.logger.Error("Failed to install workflow", zap.Int64("company_id", companyID), zap.Error(err))
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true})
}

// respondWorkflowError maps the engine's typed errors to HTTP statuses.
// These are expected user-facing outcomes, not server failures.
func (h *Handlers) respondWorkflowError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, workflow.ErrStatusNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: err.Error()})
	case errors.Is(err, workflow.ErrTransitionNotDefined):
		c.JSON(http.StatusUnprocessableEntity, Response{Success: false, Error: err.Error()})
	case errors.Is(err, workflow.ErrRoleNotAuthorized):
		c.JSON(http.StatusForbidden, Response{Success: false, Error: err.Error()})
	case errors.Is(err, workflow.ErrCommentRequired):
		c.JSON(http.StatusUnprocessableEntity, Response{Success: false, Error: err.Error()})
	case errors.Is(err, workflow.ErrNoInitialStatus):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	default:
		h.logger.Error("Workflow operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
	}
}
