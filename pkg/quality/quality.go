// Package quality checks process graphs against BPMN-style structural rules and
// produces a scored report. Findings are returned as data, never as errors.
package quality

import (
	"fmt"
	"math"

	"github.com/dukex/swimlane/pkg/models"
)

// Rule categories, in the order they are evaluated.
const (
	CategoryLogic       = "Логическая полнота"
	CategoryGateways    = "Шлюзы и условия"
	CategoryRoles       = "Роли и передачи"
	CategoryReadability = "Читаемость"
	CategoryDocuments   = "Документы и данные"
	CategoryValue       = "Ценность"
	CategoryAutomation  = "Автоматизация"
)

// Score penalties per failed check.
const (
	ErrorPenalty   = 5
	WarningPenalty = 2
)

// Thresholds holds the tunable limits used by the rules. The handoff and
// missing-ratio values are empirical and kept configurable.
type Thresholds struct {
	MinHandoffs          int     `yaml:"min_handoffs"           env:"SWIMLANE_QUALITY_MIN_HANDOFFS"`
	MaxMissingRatio      float64 `yaml:"max_missing_ratio"      env:"SWIMLANE_QUALITY_MAX_MISSING_RATIO"`
	MaxBlocks            int     `yaml:"max_blocks"             env:"SWIMLANE_QUALITY_MAX_BLOCKS"`
	MinRoles             int     `yaml:"min_roles"              env:"SWIMLANE_QUALITY_MIN_ROLES"`
	MinStages            int     `yaml:"min_stages"             env:"SWIMLANE_QUALITY_MIN_STAGES"`
	MinProducts          int     `yaml:"min_products"           env:"SWIMLANE_QUALITY_MIN_PRODUCTS"`
	MinDecisions         int     `yaml:"min_decisions"          env:"SWIMLANE_QUALITY_MIN_DECISIONS"`
	MinSystems           int     `yaml:"min_systems"            env:"SWIMLANE_QUALITY_MIN_SYSTEMS"`
	MinDescriptionLength int     `yaml:"min_description_length" env:"SWIMLANE_QUALITY_MIN_DESCRIPTION_LENGTH"`
	MinGoalLength        int     `yaml:"min_goal_length"        env:"SWIMLANE_QUALITY_MIN_GOAL_LENGTH"`
}

// DefaultThresholds returns the limits the rules were calibrated with.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinHandoffs:          5,
		MaxMissingRatio:      0.3,
		MaxBlocks:            50,
		MinRoles:             3,
		MinStages:            3,
		MinProducts:          2,
		MinDecisions:         1,
		MinSystems:           2,
		MinDescriptionLength: 5,
		MinGoalLength:        4,
	}
}

// Validator runs the fixed rule battery. It holds no mutable state and is safe
// for concurrent use.
type Validator struct {
	thresholds Thresholds
}

// New creates a validator with the given thresholds.
func New(thresholds Thresholds) *Validator {
	return &Validator{thresholds: thresholds}
}

// Validate checks p with the default thresholds.
func Validate(p *models.ProcessData) (*models.QualityCheckResult, error) {
	return New(DefaultThresholds()).Validate(p)
}

// Validate runs every rule against p. An error is returned only when p violates
// the input contract (nil graph or nil collection entries).
func (v *Validator) Validate(p *models.ProcessData) (*models.QualityCheckResult, error) {
	if err := checkContract(p); err != nil {
		return nil, err
	}

	r := &report{idx: newIndex(p), process: p, thresholds: v.thresholds}

	r.checkLogic()
	r.checkGateways()
	r.checkRoles()
	r.checkReadability()
	r.checkDocuments()
	r.checkValue()
	r.checkAutomation()

	return r.result(), nil
}

// report accumulates check items for one validation run.
type report struct {
	idx        *index
	process    *models.ProcessData
	thresholds Thresholds
	items      []*models.CheckItem
}

func (r *report) add(category, id, rule string, passed bool, details string, severity models.Severity) {
	r.items = append(r.items, &models.CheckItem{
		ID:       id,
		Category: category,
		Rule:     rule,
		Passed:   passed,
		Details:  details,
		Severity: severity,
	})
}

func (r *report) result() *models.QualityCheckResult {
	var passed, failedErrors, failedWarnings int

	for _, item := range r.items {
		switch {
		case item.Passed:
			passed++
		case item.Severity == models.SeverityError:
			failedErrors++
		case item.Severity == models.SeverityWarning:
			failedWarnings++
		}
	}

	return &models.QualityCheckResult{
		Score:   Score(passed, len(r.items), failedErrors, failedWarnings),
		Items:   r.items,
		Summary: Summary(failedErrors, failedWarnings),
	}
}

// Score computes round(passed/total*100 - errors*5 - warnings*2) clamped to [0, 100].
func Score(passed, total, failedErrors, failedWarnings int) int {
	if total == 0 {
		return 0
	}

	raw := float64(passed)/float64(total)*100 -
		float64(failedErrors*ErrorPenalty) -
		float64(failedWarnings*WarningPenalty)

	return int(math.Max(0, math.Min(100, math.Round(raw))))
}

// Summary picks the report headline by priority: errors, then warnings, then compliance.
func Summary(failedErrors, failedWarnings int) string {
	switch {
	case failedErrors > 0:
		return fmt.Sprintf("Критических ошибок: %d. Процесс требует доработки", failedErrors)
	case failedWarnings > 0:
		return fmt.Sprintf("Ошибок нет, предупреждений: %d", failedWarnings)
	default:
		return "Процесс полностью соответствует правилам качества"
	}
}
