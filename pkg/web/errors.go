package web

import (
	"errors"

	"github.com/dukex/swimlane/pkg/intake"
	"github.com/dukex/swimlane/pkg/models"
	"github.com/dukex/swimlane/pkg/services"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

// RejectionProblem is the 422 body for graphs that failed the quality gate.
type RejectionProblem struct {
	*problems.Problem

	Quality *models.QualityCheckResult `json:"quality"`
}

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleServiceError provides typed error handling for service layer errors.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case services.IsValidationError(err):
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("validation_error").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	case services.IsRejectedError(err):
		var rejection *intake.RejectionError
		if !errors.As(err, &rejection) {
			return internalError(c, err)
		}

		problem := problems.NewStatusProblem(422).
			WithInstance(c.Path()).
			WithType("process_rejected").
			WithDetail(rejection.Result.Summary)

		return c.Status(fiber.StatusUnprocessableEntity).JSON(RejectionProblem{
			Problem: problem,
			Quality: rejection.Result,
		})

	case services.IsConflictError(err):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("conflict").
			WithDetail(err.Error())

		return c.Status(fiber.StatusConflict).JSON(problem)

	case errors.Is(err, services.ErrSnapshotNotFound):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType("snapshot_not_found").
			WithDetail("snapshot not found")

		return c.Status(fiber.StatusNotFound).JSON(problem)

	case errors.Is(err, services.ErrProcessNotFound):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType("process_not_found").
			WithDetail("process not found")

		return c.Status(fiber.StatusNotFound).JSON(problem)

	default:
		return internalError(c, err)
	}
}
