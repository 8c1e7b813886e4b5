// Package passport projects a process graph into a read-only reporting summary.
package passport

import (
	"fmt"
	"strings"

	"github.com/dukex/swimlane/pkg/models"
)

// MetricPrefix starts every SLA metric string.
const MetricPrefix = "Время: "

// Project derives the passport of p. It performs no validation and tolerates
// missing optional fields and dangling references; a nil graph yields an empty passport.
func Project(p *models.ProcessData) *models.ProcessPassport {
	pass := &models.ProcessPassport{
		InputDocuments:  []string{},
		OutputDocuments: []string{},
		InfoSystems:     []string{},
		MainFlow:        []*models.PassportStep{},
		Exceptions:      []string{},
		Documents:       []*models.PassportDoc{},
		Roles:           []*models.PassportRole{},
		SLA:             []*models.PassportMetric{},
		Risks:           []*models.PassportRisk{},
	}

	if p == nil {
		return pass
	}

	pass.Name = p.Name
	pass.Goal = p.Goal
	pass.Owner = p.Owner
	pass.StartEvent = p.StartEvent
	pass.EndEvent = p.EndEvent

	blocks := make([]*models.Block, 0, len(p.Blocks))
	for _, block := range p.Blocks {
		if block != nil {
			blocks = append(blocks, block)
		}
	}

	inputs := newSet()
	outputs := newSet()
	systems := newSet()

	for _, block := range blocks {
		inputs.add(block.InputDocuments...)
		outputs.add(block.OutputDocuments...)
		systems.add(block.InfoSystems...)
	}

	pass.InputDocuments = inputs.items
	pass.OutputDocuments = outputs.items
	pass.InfoSystems = systems.items

	pass.MainFlow = mainFlow(p, blocks)
	pass.Exceptions = exceptions(p, blocks)
	pass.Documents = documents(blocks)
	pass.Roles = roles(p, blocks)
	pass.SLA = sla(p, blocks)
	pass.Risks = risks(p, blocks)

	return pass
}

func mainFlow(p *models.ProcessData, blocks []*models.Block) []*models.PassportStep {
	steps := []*models.PassportStep{}

	for _, block := range blocks {
		if !block.IsAction() {
			continue
		}

		steps = append(steps, &models.PassportStep{
			Order:        len(steps) + 1,
			BlockID:      block.ID,
			Name:         block.Name,
			Role:         roleName(p, block.Role),
			Stage:        stageName(p, block.Stage),
			TimeEstimate: block.TimeEstimate,
		})
	}

	return steps
}

func exceptions(p *models.ProcessData, blocks []*models.Block) []string {
	out := []string{}

	for _, decision := range blocks {
		if !decision.IsDecision() {
			continue
		}

		for _, targetID := range decision.Connections {
			target := p.BlockByID(targetID)
			if target == nil || target.IsDefault {
				continue
			}

			condition := strings.TrimSpace(target.ConditionLabel)
			if condition == "" {
				continue
			}

			out = append(out, fmt.Sprintf("%s: %s → %s", decision.Name, condition, target.Name))
		}
	}

	return out
}

func documents(blocks []*models.Block) []*models.PassportDoc {
	docs := []*models.PassportDoc{}
	seen := make(map[models.PassportDoc]bool)

	add := func(name string, kind models.DocumentKind) {
		name = strings.TrimSpace(name)
		key := models.PassportDoc{Name: name, Kind: kind}

		if name == "" || seen[key] {
			return
		}

		seen[key] = true
		docs = append(docs, &models.PassportDoc{Name: name, Kind: kind})
	}

	for _, block := range blocks {
		for _, doc := range block.InputDocuments {
			add(doc, models.DocumentKindInput)
		}
	}

	for _, block := range blocks {
		if block.IsProduct() {
			add(block.Name, models.DocumentKindIntermediate)
		}
	}

	for _, block := range blocks {
		for _, doc := range block.OutputDocuments {
			add(doc, models.DocumentKindOutput)
		}
	}

	return docs
}

func roles(p *models.ProcessData, blocks []*models.Block) []*models.PassportRole {
	counts := make(map[string]int, len(p.Roles))
	for _, block := range blocks {
		counts[block.Role]++
	}

	out := []*models.PassportRole{}

	for _, role := range p.Roles {
		if role == nil {
			continue
		}

		responsibility := models.RACIResponsible
		if len(out) == 0 {
			responsibility = models.RACIAccountable
		}

		out = append(out, &models.PassportRole{
			Name:           role.Name,
			Department:     role.Department,
			Responsibility: responsibility,
			Blocks:         counts[role.ID],
		})
	}

	return out
}

func sla(p *models.ProcessData, blocks []*models.Block) []*models.PassportMetric {
	out := []*models.PassportMetric{}

	for _, block := range blocks {
		estimate := strings.TrimSpace(block.TimeEstimate)
		if !block.IsAction() || estimate == "" {
			continue
		}

		out = append(out, &models.PassportMetric{
			Step:   block.Name,
			Role:   roleName(p, block.Role),
			Metric: MetricPrefix + estimate,
		})
	}

	return out
}

func risks(p *models.ProcessData, blocks []*models.Block) []*models.PassportRisk {
	out := []*models.PassportRisk{}

	for _, decision := range blocks {
		if !decision.IsDecision() {
			continue
		}

		mitigation := "Зафиксировать критерии принятия решения"

		for _, targetID := range decision.Connections {
			if target := p.BlockByID(targetID); target != nil && target.IsDefault {
				mitigation = fmt.Sprintf("По умолчанию процесс продолжается шагом «%s»", target.Name)

				break
			}
		}

		out = append(out, &models.PassportRisk{
			Decision:   decision.Name,
			Risk:       fmt.Sprintf("Неверное или затянутое решение на шаге «%s» (%s)", decision.Name, roleName(p, decision.Role)),
			Mitigation: mitigation,
		})
	}

	return out
}

func roleName(p *models.ProcessData, id string) string {
	if role := p.RoleByID(id); role != nil {
		return role.Name
	}

	return id
}

func stageName(p *models.ProcessData, id string) string {
	if stage := p.StageByID(id); stage != nil {
		return stage.Name
	}

	return id
}

// set keeps trimmed, non-empty strings in first-seen order.
type set struct {
	seen  map[string]bool
	items []string
}

func newSet() *set {
	return &set{seen: make(map[string]bool), items: []string{}}
}

func (s *set) add(values ...string) {
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" || s.seen[value] {
			continue
		}

		s.seen[value] = true
		s.items = append(s.items, value)
	}
}
