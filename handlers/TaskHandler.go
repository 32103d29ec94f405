// Package handlers provides the HTTP request handlers for KanbanService.
//
// This package contains the handlers of the task service consumed by the board client:
// listing the tasks of a project, creating a task, fetching one task and moving a task to
// another board column, plus the project endpoints.
// Every handler keeps track of calls and errors using Prometheus counters, trims and
// validates its input, and logs each outcome with structured fields.
// Errors are reported as a JSON body of the form {"message": "..."}.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"KanbanService/commands"
	"KanbanService/models"
	"KanbanService/response"
	"KanbanService/store"
	"KanbanService/validation"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Repository is the persistence the handlers need. *store.Store implements it.
type Repository interface {
	ListTasks(ctx context.Context, projectID int) ([]models.Task, error)
	GetTask(ctx context.Context, id int) (*models.Task, error)
	CreateTask(ctx context.Context, task *models.Task) error
	UpdateTaskStatus(ctx context.Context, id int, status models.Status) (*models.Task, error)
	ListProjects(ctx context.Context) ([]models.Project, error)
	GetProject(ctx context.Context, id int) (*models.Project, error)
	CreateProject(ctx context.Context, project *models.Project) error
}

// Handler serves the task and project endpoints.
type Handler struct {
	repo     Repository
	log      logrus.FieldLogger
	validate *validator.Validate
}

// New returns a Handler backed by repo.
func New(repo Repository, log logrus.FieldLogger) *Handler {
	return &Handler{repo: repo, log: log, validate: validation.New()}
}

// failure describes a failed request for fail.
type failure struct {
	endpoint  string
	operation string
	request   string
	status    int
	message   string
	err       error
}

// fail counts the error, logs it and writes the {"message"} body.
func (h *Handler) fail(res http.ResponseWriter, errorCounter *prometheus.CounterVec, f failure) {
	errorCounter.WithLabelValues(f.endpoint).Inc()
	entry := h.log.WithFields(logrus.Fields{
		"task operation": f.operation,
		"request":        f.request,
		"status":         f.status,
	})
	if f.err != nil {
		entry = entry.WithError(f.err)
	}
	entry.Error(f.message)
	response.Error(res, f.status, f.message)
}

// sanitizeTask trims the task fields. Values are stored as sent; clients escape on output.
func sanitizeTask(cmd *commands.CreateTaskCommand) {
	cmd.Title = strings.TrimSpace(cmd.Title)
	cmd.Description = strings.TrimSpace(cmd.Description)
	cmd.Tags = strings.TrimSpace(cmd.Tags)
	cmd.Status = strings.TrimSpace(cmd.Status)
	cmd.Priority = strings.TrimSpace(cmd.Priority)
}

// GetTasksHandler returns the tasks of one project with author, assignee, comments and
// attachments included.
//
// Example request:
// GET /tasks?projectId=1
//
// Example response:
//
//	[
//	  {
//	    "id": 1,
//	    "title": "Task 1",
//	    "status": "To Do",
//	    "priority": "High",
//	    "tags": "docs,planning",
//	    "projectId": 1,
//	    "authorUserId": 1,
//	    "author": {"userId": 1, "username": "alice"}
//	  }
//	]
func (h *Handler) GetTasksHandler(res http.ResponseWriter, req *http.Request, endPointCounter *prometheus.CounterVec, errorCounter *prometheus.CounterVec) {
	const endpoint, operation, request = "/tasks", "get project tasks", "GET /tasks"
	endPointCounter.WithLabelValues(endpoint).Inc()

	projectID, err := strconv.Atoi(req.URL.Query().Get("projectId"))
	if err != nil {
		h.fail(res, errorCounter, failure{endpoint, operation, request, http.StatusBadRequest, "projectId must be an integer", err})
		return
	}
	tasks, err := h.repo.ListTasks(req.Context(), projectID)
	if err != nil {
		h.fail(res, errorCounter, failure{endpoint, operation, request, http.StatusInternalServerError,
			fmt.Sprintf("Error Fetching tasks: %s", err.Error()), err})
		return
	}
	h.log.WithFields(logrus.Fields{
		"task operation": operation,
		"request":        request,
		"project":        projectID,
		"count":          len(tasks),
	}).Info("Processing request")
	response.JSON(res, http.StatusOK, tasks)
}

// GetTaskHandler returns one task by its id.
//
// Example request:
// GET /tasks/1
func (h *Handler) GetTaskHandler(res http.ResponseWriter, req *http.Request, endPointCounter *prometheus.CounterVec, errorCounter *prometheus.CounterVec) {
	const endpoint, operation, request = "/tasks/{id}", "get task by id", "GET /tasks/{id}"
	endPointCounter.WithLabelValues(endpoint).Inc()

	taskID, err := strconv.Atoi(chi.URLParam(req, "id"))
	if err != nil {
		h.fail(res, errorCounter, failure{endpoint, operation, request, http.StatusBadRequest, "Invalid task ID", err})
		return
	}
	task, err := h.repo.GetTask(req.Context(), taskID)
	if errors.Is(err, store.ErrNotFound) {
		h.fail(res, errorCounter, failure{endpoint, operation, request, http.StatusNotFound, "Task not found", err})
		return
	}
	if err != nil {
		h.fail(res, errorCounter, failure{endpoint, operation, request, http.StatusInternalServerError,
			fmt.Sprintf("Error retrieving task: %s", err.Error()), err})
		return
	}
	h.log.WithFields(logrus.Fields{
		"task operation": operation,
		"request":        request,
		"task":           taskID,
	}).Info("Processing request")
	response.JSON(res, http.StatusOK, task)
}

// CreateTaskHandler handles the HTTP request for creating a new task.
// It reads the request body to get the task details, trims the inputs and validates
// them. The title, projectId and authorUserId fields are required;
// a missing status defaults to "To Do".
//
// Example request body:
//
//	{
//	  "title": "Task 1",
//	  "description": "Description of Task 1",
//	  "priority": "Urgent",
//	  "startDate": "2024-03-01",
//	  "dueDate": "2024-03-08",
//	  "points": 3,
//	  "projectId": 1,
//	  "authorUserId": 1
//	}
//
// The created task is returned with status 201.
func (h *Handler) CreateTaskHandler(res http.ResponseWriter, req *http.Request, endPointCounter *prometheus.CounterVec, errorCounter *prometheus.CounterVec) {
	const endpoint, operation, request = "/tasks", "Create a task", "POST /tasks"
	endPointCounter.WithLabelValues(endpoint).Inc()

	cmd := commands.CreateTaskCommand{}
	if err := json.NewDecoder(req.Body).Decode(&cmd); err != nil {
		h.fail(res, errorCounter, failure{endpoint, operation, request, http.StatusBadRequest, "Invalid request body", err})
		return
	}
	sanitizeTask(&cmd)
	if cmd.MissingRequired() {
		h.fail(res, errorCounter, failure{endpoint, operation, request, http.StatusBadRequest, commands.MissingTaskFieldsMessage, nil})
		return
	}
	if err := h.validate.Struct(cmd); err != nil {
		h.fail(res, errorCounter, failure{endpoint, operation, request, http.StatusBadRequest, validation.Describe(err), err})
		return
	}
	task, err := cmd.Task()
	if err != nil {
		h.fail(res, errorCounter, failure{endpoint, operation, request, http.StatusBadRequest, err.Error(), err})
		return
	}
	if err := h.repo.CreateTask(req.Context(), task); err != nil {
		h.fail(res, errorCounter, failure{endpoint, operation, request, http.StatusInternalServerError,
			fmt.Sprintf("Error creating task: %s", err.Error()), err})
		return
	}
	h.log.WithFields(logrus.Fields{
		"task operation": operation,
		"request":        request,
		"task":           task.Id,
		"project":        task.ProjectId,
	}).Info("Processing request")
	response.JSON(res, http.StatusCreated, task)
}

// UpdateTaskStatusHandler moves a task to another board column.
// The status must be one of "To Do", "Work In Progress", "Under Review" or "Completed".
//
// Example request:
// PATCH /tasks/1/status
//
//	{"status": "Completed"}
//
// The updated task is returned with status 200; an unknown task yields 404.
func (h *Handler) UpdateTaskStatusHandler(res http.ResponseWriter, req *http.Request, endPointCounter *prometheus.CounterVec, errorCounter *prometheus.CounterVec) {
	const endpoint, operation, request = "/tasks/{id}/status", "update task status", "PATCH /tasks/{id}/status"
	endPointCounter.WithLabelValues(endpoint).Inc()

	taskID, err := strconv.Atoi(chi.URLParam(req, "id"))
	if err != nil || taskID < 1 {
		h.fail(res, errorCounter, failure{endpoint, operation, request, http.StatusBadRequest, "Invalid task ID", err})
		return
	}
	cmd := commands.UpdateTaskStatusCommand{}
	if err := json.NewDecoder(req.Body).Decode(&cmd); err != nil {
		h.fail(res, errorCounter, failure{endpoint, operation, request, http.StatusBadRequest, "Invalid request body", err})
		return
	}
	cmd.Status = strings.TrimSpace(cmd.Status)
	if err := h.validate.Struct(cmd); err != nil {
		h.fail(res, errorCounter, failure{endpoint, operation, request, http.StatusBadRequest, validation.Describe(err), err})
		return
	}
	task, err := h.repo.UpdateTaskStatus(req.Context(), taskID, models.Status(cmd.Status))
	if errors.Is(err, store.ErrNotFound) {
		h.fail(res, errorCounter, failure{endpoint, operation, request, http.StatusNotFound, "Task not found", err})
		return
	}
	if err != nil {
		h.fail(res, errorCounter, failure{endpoint, operation, request, http.StatusInternalServerError,
			fmt.Sprintf("Error updating task: %s", err.Error()), err})
		return
	}
	h.log.WithFields(logrus.Fields{
		"task operation": operation,
		"request":        request,
		"task":           taskID,
		"status":         cmd.Status,
	}).Info("Processing request")
	response.JSON(res, http.StatusOK, task)
}
