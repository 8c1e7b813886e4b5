package quality

import (
	"errors"
	"fmt"

	"github.com/dukex/swimlane/pkg/models"
)

var (
	// ErrNilProcess is returned when the validator is handed no graph at all.
	ErrNilProcess = errors.New("process data cannot be nil")

	// ErrMalformedProcess is returned when a collection contains nil entries.
	ErrMalformedProcess = errors.New("malformed process data")
)

// ContractError describes which part of the input violated the graph shape.
type ContractError struct {
	Collection string
	Index      int
	Err        error
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("%s[%d]: %v", e.Collection, e.Index, e.Err)
}

func (e *ContractError) Unwrap() error {
	return e.Err
}

// IsContractViolation reports whether err is a programming-contract violation
// rather than a business finding.
func IsContractViolation(err error) bool {
	return errors.Is(err, ErrNilProcess) || errors.Is(err, ErrMalformedProcess)
}

func checkContract(p *models.ProcessData) error {
	if p == nil {
		return ErrNilProcess
	}

	for i, role := range p.Roles {
		if role == nil {
			return &ContractError{Collection: "roles", Index: i, Err: ErrMalformedProcess}
		}
	}

	for i, stage := range p.Stages {
		if stage == nil {
			return &ContractError{Collection: "stages", Index: i, Err: ErrMalformedProcess}
		}
	}

	for i, block := range p.Blocks {
		if block == nil {
			return &ContractError{Collection: "blocks", Index: i, Err: ErrMalformedProcess}
		}
	}

	return nil
}
