package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"KanbanService/commands"
	"KanbanService/response"
	"KanbanService/store"
	"KanbanService/validation"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// GetProjectsHandler returns every project.
func (h *Handler) GetProjectsHandler(res http.ResponseWriter, req *http.Request, endPointCounter *prometheus.CounterVec, errorCounter *prometheus.CounterVec) {
	const endpoint, operation, request = "/projects", "get all projects", "GET /projects"
	endPointCounter.WithLabelValues(endpoint).Inc()

	projects, err := h.repo.ListProjects(req.Context())
	if err != nil {
		h.fail(res, errorCounter, failure{endpoint, operation, request, http.StatusInternalServerError,
			fmt.Sprintf("Error retrieving projects: %s", err.Error()), err})
		return
	}
	h.log.WithFields(logrus.Fields{
		"task operation": operation,
		"request":        request,
		"count":          len(projects),
	}).Info("Processing request")
	response.JSON(res, http.StatusOK, projects)
}

// GetProjectHandler returns one project by its id.
//
// Example request:
// GET /projects/1
func (h *Handler) GetProjectHandler(res http.ResponseWriter, req *http.Request, endPointCounter *prometheus.CounterVec, errorCounter *prometheus.CounterVec) {
	const endpoint, operation, request = "/projects/{id}", "get project by id", "GET /projects/{id}"
	endPointCounter.WithLabelValues(endpoint).Inc()

	projectID, err := strconv.Atoi(chi.URLParam(req, "id"))
	if err != nil {
		h.fail(res, errorCounter, failure{endpoint, operation, request, http.StatusBadRequest, "Invalid project ID", err})
		return
	}
	project, err := h.repo.GetProject(req.Context(), projectID)
	if errors.Is(err, store.ErrNotFound) {
		h.fail(res, errorCounter, failure{endpoint, operation, request, http.StatusNotFound, "Project not found", err})
		return
	}
	if err != nil {
		h.fail(res, errorCounter, failure{endpoint, operation, request, http.StatusInternalServerError,
			fmt.Sprintf("Error retrieving project: %s", err.Error()), err})
		return
	}
	h.log.WithFields(logrus.Fields{
		"task operation": operation,
		"request":        request,
		"project":        projectID,
	}).Info("Processing request")
	response.JSON(res, http.StatusOK, project)
}

// CreateProjectHandler creates a project. The name is required and the end date, when
// given, cannot be earlier than the start date.
//
// Example request body:
//
//	{
//	  "name": "Apollo",
//	  "description": "Launch site",
//	  "startDate": "2024-03-01T00:00:00Z",
//	  "endDate": "2024-06-30T00:00:00Z"
//	}
func (h *Handler) CreateProjectHandler(res http.ResponseWriter, req *http.Request, endPointCounter *prometheus.CounterVec, errorCounter *prometheus.CounterVec) {
	const endpoint, operation, request = "/projects", "Create a project", "POST /projects"
	endPointCounter.WithLabelValues(endpoint).Inc()

	cmd := commands.CreateProjectCommand{}
	if err := json.NewDecoder(req.Body).Decode(&cmd); err != nil {
		h.fail(res, errorCounter, failure{endpoint, operation, request, http.StatusBadRequest, "Invalid request body", err})
		return
	}
	cmd.Name = strings.TrimSpace(cmd.Name)
	cmd.Description = strings.TrimSpace(cmd.Description)
	if err := h.validate.Struct(cmd); err != nil {
		h.fail(res, errorCounter, failure{endpoint, operation, request, http.StatusBadRequest, validation.Describe(err), err})
		return
	}
	project, err := cmd.Project()
	if err != nil {
		h.fail(res, errorCounter, failure{endpoint, operation, request, http.StatusBadRequest, err.Error(), err})
		return
	}
	if err := h.repo.CreateProject(req.Context(), project); err != nil {
		h.fail(res, errorCounter, failure{endpoint, operation, request, http.StatusInternalServerError,
			fmt.Sprintf("Error creating project: %s", err.Error()), err})
		return
	}
	h.log.WithFields(logrus.Fields{
		"task operation": operation,
		"request":        request,
		"project":        project.Id,
	}).Info("Processing request")
	response.JSON(res, http.StatusCreated, project)
}
