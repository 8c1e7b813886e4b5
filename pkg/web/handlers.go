// Package web provides HTTP handlers and REST API endpoints for process graphs.
package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dukex/swimlane/pkg/log"
	"github.com/dukex/swimlane/pkg/models"
	"github.com/dukex/swimlane/pkg/passport"
	"github.com/dukex/swimlane/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"gopkg.in/yaml.v3"
)

type APIHandlers struct {
	processService *services.Process
	validator      *validator.Validate
	logs           *log.RingBuffer
}

func NewAPIHandlers(
	processService *services.Process,
	validator *validator.Validate,
	logs *log.RingBuffer,
) *APIHandlers {
	return &APIHandlers{
		processService: processService,
		validator:      validator,
		logs:           logs,
	}
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.processService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Swimlane API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "Swimlane API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

// Build runs the deterministic builder on the posted answers.
func (h *APIHandlers) Build(c fiber.Ctx) error {
	var req BuildRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	return c.JSON(h.processService.Build(req.Answers, req.CompanyName))
}

// Validate scores the posted graph.
func (h *APIHandlers) Validate(c fiber.Ctx) error {
	var data models.ProcessData
	if err := c.Bind().JSON(&data); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	result, err := h.processService.Validate(&data)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

// Passport projects the posted graph.
func (h *APIHandlers) Passport(c fiber.Ctx) error {
	var data models.ProcessData
	if err := c.Bind().JSON(&data); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	return h.renderPassport(c, h.processService.Project(&data))
}

func (h *APIHandlers) GetProcesses(c fiber.Ctx) error {
	req, err := parseListProcessesRequest(c)
	if err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	result, err := h.processService.List(c.Context(), *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"processes":     result.Processes,
		"total_count":   result.TotalCount,
		"has_next_page": result.HasNextPage,
		"pagination": fiber.Map{
			"limit":  req.Limit,
			"offset": req.Offset,
		},
	})
}

func parseListProcessesRequest(c fiber.Ctx) (*services.ListProcessesRequest, error) {
	req := &services.ListProcessesRequest{
		OwnerID:   c.Query("owner_id"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return nil, err
		}

		req.Limit = limit
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return nil, err
		}

		req.Offset = offset
	}

	return req, nil
}

func (h *APIHandlers) GenerateProcess(c fiber.Ctx) error {
	var req GenerateProcessRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.processService.Generate(c.Context(), services.GenerateRequest{
		ProcessID:   req.ProcessID,
		Owner:       req.Owner,
		CompanyName: req.CompanyName,
		Answers:     req.Answers,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(createdOrOK(result.Process)).JSON(result)
}

func (h *APIHandlers) ImportProcess(c fiber.Ctx) error {
	var req ImportProcessRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.processService.Import(c.Context(), services.ImportRequest{
		ProcessID:   req.ProcessID,
		Owner:       req.Owner,
		CompanyName: req.CompanyName,
		Answers:     req.Answers,
		Label:       req.Label,
		Raw:         req.graphPayload(),
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(createdOrOK(result.Process)).JSON(result)
}

func (h *APIHandlers) GetProcess(c fiber.Ctx) error {
	process, err := h.processService.FetchByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(process)
}

func (h *APIHandlers) DeleteProcess(c fiber.Ctx) error {
	if err := h.processService.Delete(c.Context(), c.Params("id")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) GetProcessQuality(c fiber.Ctx) error {
	result, err := h.processService.Quality(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) GetProcessPassport(c fiber.Ctx) error {
	pass, err := h.processService.Passport(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return h.renderPassport(c, pass)
}

func (h *APIHandlers) GetProcessSnapshots(c fiber.Ctx) error {
	snapshots, err := h.processService.Snapshots(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"snapshots":   snapshots,
		"total_count": len(snapshots),
	})
}

func (h *APIHandlers) RollbackProcess(c fiber.Ctx) error {
	result, err := h.processService.Rollback(c.Context(), c.Params("id"), c.Params("snapshotId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

// GetLogs returns the buffered log entries, oldest first.
func (h *APIHandlers) GetLogs(c fiber.Ctx) error {
	if h.logs == nil {
		return internalError(c, errors.New("log buffer is not configured"))
	}

	entries := h.logs.Entries()

	response := LogsResponse{
		Entries:  make([]LogEntry, 0, len(entries)),
		Count:    len(entries),
		Capacity: h.logs.Cap(),
	}

	for _, entry := range entries {
		response.Entries = append(response.Entries, LogEntry{
			Time:    entry.Time.UTC().Format(time.RFC3339Nano),
			Level:   entry.Level,
			Message: entry.Message,
			Attrs:   entry.Attrs,
		})
	}

	return c.JSON(response)
}

func (h *APIHandlers) renderPassport(c fiber.Ctx, pass *models.ProcessPassport) error {
	switch c.Query("format", "json") {
	case "json":
		return c.JSON(pass)
	case "yaml":
		body, err := yaml.Marshal(pass)
		if err != nil {
			return internalError(c, err)
		}

		c.Set(fiber.HeaderContentType, "application/yaml; charset=utf-8")

		return c.Send(body)
	case "markdown":
		body, err := passport.RenderMarkdown(pass)
		if err != nil {
			return internalError(c, err)
		}

		c.Set(fiber.HeaderContentType, "text/markdown; charset=utf-8")

		return c.Send(body)
	default:
		return badRequest(c, "format must be json, yaml or markdown")
	}
}

func createdOrOK(process *models.Process) int {
	if process.Version == 1 {
		return fiber.StatusCreated
	}

	return fiber.StatusOK
}
