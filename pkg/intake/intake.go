// Package intake is the boundary for process graphs produced outside the core,
// typically by the external generation service. A graph is admitted only after it
// decodes into the ProcessData shape and passes the quality battery without errors.
package intake

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dukex/swimlane/pkg/models"
	"github.com/dukex/swimlane/pkg/quality"
	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
)

var (
	// ErrMalformedGraph indicates the payload does not match the ProcessData shape.
	ErrMalformedGraph = errors.New("malformed process graph")

	// ErrGraphRejected indicates the graph decoded but failed error-severity quality checks.
	ErrGraphRejected = errors.New("process graph rejected by quality checks")
)

// ShapeError lists the schema or struct violations of a malformed payload.
type ShapeError struct {
	Violations []string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%v: %s", ErrMalformedGraph, strings.Join(e.Violations, "; "))
}

func (e *ShapeError) Unwrap() error {
	return ErrMalformedGraph
}

// RejectionError carries the quality report of a rejected graph.
type RejectionError struct {
	Result *models.QualityCheckResult
}

func (e *RejectionError) Error() string {
	failed := e.Result.Failed(models.SeverityError)

	rules := make([]string, 0, len(failed))
	for _, item := range failed {
		rules = append(rules, item.Rule)
	}

	return fmt.Sprintf("%v: %s", ErrGraphRejected, strings.Join(rules, "; "))
}

func (e *RejectionError) Unwrap() error {
	return ErrGraphRejected
}

// IsMalformed checks if an error indicates a payload that failed shape validation.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedGraph)
}

// IsRejected checks if an error indicates a graph that failed quality checks.
func IsRejected(err error) bool {
	return errors.Is(err, ErrGraphRejected)
}

// Gate decodes and admits external graphs. It is safe for concurrent use.
type Gate struct {
	schema    gojsonschema.JSONLoader
	validate  *validator.Validate
	validator *quality.Validator
}

// NewGate creates a gate that scores admitted graphs with the given validator.
func NewGate(qualityValidator *quality.Validator) *Gate {
	return &Gate{
		schema:    gojsonschema.NewGoLoader(models.ProcessDataSchema()),
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		validator: qualityValidator,
	}
}

// Decode checks raw against the ProcessData JSON schema and decodes it.
// Markdown code fences around the document are tolerated.
func (g *Gate) Decode(raw []byte) (*models.ProcessData, error) {
	payload := stripFences(raw)
	if len(payload) == 0 {
		return nil, &ShapeError{Violations: []string{"empty payload"}}
	}

	result, err := gojsonschema.Validate(g.schema, gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return nil, &ShapeError{Violations: []string{err.Error()}}
	}

	if !result.Valid() {
		violations := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			violations = append(violations, desc.String())
		}

		return nil, &ShapeError{Violations: violations}
	}

	var process models.ProcessData

	if err := json.Unmarshal(payload, &process); err != nil {
		return nil, &ShapeError{Violations: []string{err.Error()}}
	}

	if err := g.validate.Struct(&process); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			violations := make([]string, 0, len(validationErrors))
			for _, fieldErr := range validationErrors {
				violations = append(violations, fmt.Sprintf("%s failed on %s", fieldErr.Namespace(), fieldErr.Tag()))
			}

			return nil, &ShapeError{Violations: violations}
		}

		return nil, &ShapeError{Violations: []string{err.Error()}}
	}

	return &process, nil
}

// Admit decodes raw and runs the quality battery. The report is returned with
// both admitted and rejected graphs; rejected graphs come back with a *RejectionError.
func (g *Gate) Admit(raw []byte) (*models.ProcessData, *models.QualityCheckResult, error) {
	process, err := g.Decode(raw)
	if err != nil {
		return nil, nil, err
	}

	result, err := g.validator.Validate(process)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to validate process graph: %w", err)
	}

	if result.HasErrors() {
		return nil, result, &RejectionError{Result: result}
	}

	return process, result, nil
}

func stripFences(raw []byte) []byte {
	payload := bytes.TrimSpace(raw)
	if !bytes.HasPrefix(payload, []byte("```")) {
		return payload
	}

	payload = bytes.TrimPrefix(payload, []byte("```"))
	if newline := bytes.IndexByte(payload, '\n'); newline >= 0 {
		payload = payload[newline+1:]
	}

	payload = bytes.TrimSuffix(bytes.TrimSpace(payload), []byte("```"))

	return bytes.TrimSpace(payload)
}
