// Package builder constructs a complete process graph from interview answers
// without any external generation service.
package builder

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dukex/swimlane/pkg/models"
)

// Build returns a structurally valid process graph for the given answers.
// The result is a pure function of its inputs and never fails; missing answers
// fall back to the default phrases, roles and stages.
func Build(answers models.Answers, companyName string) *models.ProcessData {
	roles, hasPartner := buildRoles(answers)
	stages := buildStages(answers)
	systems := padNames(splitList(answers.Get(QuestionSystems), ",;"), DefaultSystems, len(DefaultSystems))

	replacer := strings.NewReplacer(
		placeholderTrigger, orDefault(answers.Get(QuestionTrigger), DefaultTrigger),
		placeholderResult, orDefault(answers.Get(QuestionResult), DefaultResult),
	)

	blocks := make([]*models.Block, 0, len(template))
	for _, spec := range template {
		blocks = append(blocks, resolveBlock(spec, roleSlot(spec.RoleSlot, hasPartner), roles, stages, systems, replacer))
	}

	return &models.ProcessData{
		Name:       processName(answers, companyName),
		Goal:       orDefault(answers.Get(QuestionGoal), DefaultGoal),
		Owner:      orDefault(answers.Get(QuestionOwner), DefaultOwner),
		StartEvent: orDefault(answers.Get(QuestionTrigger), DefaultTrigger),
		EndEvent:   orDefault(answers.Get(QuestionResult), DefaultResult),
		Roles:      roles,
		Stages:     stages,
		Blocks:     blocks,
	}
}

func processName(answers models.Answers, companyName string) string {
	if name := answers.Get(QuestionProcessName); name != "" {
		return name
	}

	if company := strings.TrimSpace(companyName); company != "" {
		return fmt.Sprintf("%s компании «%s»", DefaultProcessName, company)
	}

	return DefaultProcessName
}

// buildRoles returns the internal lanes followed by the optional partner lane.
// Parsed roles beyond the template's internal lanes are dropped so that every
// declared role owns at least one block.
func buildRoles(answers models.Answers) ([]*models.Role, bool) {
	names := splitList(answers.Get(QuestionRoles), ",;")
	names = padNames(names[:min(len(names), InternalRoleSlots)], DefaultRoles, MinRoles)

	roles := make([]*models.Role, 0, len(names)+1)
	for _, name := range names {
		roles = append(roles, &models.Role{Name: name})
	}

	partners := splitList(answers.Get(QuestionPartners), ",;")
	if len(partners) > 0 {
		roles = append(roles, &models.Role{
			Name:       partners[0] + externalSuffix,
			Department: externalDepartment,
		})
	}

	for i, role := range roles {
		role.ID = fmt.Sprintf("role_%d", i+1)
		role.Color = Palette[i%len(Palette)]
	}

	return roles, len(partners) > 0
}

// roleSlot maps the partner slot onto the quality lane when no partner is declared.
func roleSlot(slot int, hasPartner bool) int {
	if slot == RolePartner && !hasPartner {
		return RoleQuality
	}

	return slot
}

func buildStages(answers models.Answers) []*models.Stage {
	names := splitList(answers.Get(QuestionStages), ",;.")
	if len(names) < MinParsedStages {
		names = DefaultStages
	}

	stages := make([]*models.Stage, 0, len(names))
	for i, name := range names {
		stages = append(stages, &models.Stage{
			ID:    fmt.Sprintf("stage_%d", i+1),
			Name:  name,
			Order: i + 1,
		})
	}

	return stages
}

func resolveBlock(
	spec BlockSpec,
	slot int,
	roles []*models.Role,
	stages []*models.Stage,
	systems []string,
	replacer *strings.Replacer,
) *models.Block {
	block := &models.Block{
		ID:              spec.Key,
		Name:            replacer.Replace(spec.Name),
		Description:     spec.Description,
		Type:            spec.Type,
		Role:            roles[clamp(slot, len(roles))].ID,
		Stage:           stages[clamp(spec.StageSlot, len(stages))].ID,
		TimeEstimate:    spec.TimeEstimate,
		InputDocuments:  slices.Clone(spec.Inputs),
		OutputDocuments: slices.Clone(spec.Outputs),
		Connections:     slices.Clone(spec.Next),
		ConditionLabel:  spec.ConditionLabel,
		IsDefault:       spec.IsDefault,
	}

	for _, slot := range spec.SystemSlots {
		system := systems[clamp(slot, len(systems))]
		if !slices.Contains(block.InfoSystems, system) {
			block.InfoSystems = append(block.InfoSystems, system)
		}
	}

	return block
}

// splitList splits an answer on any of the separator runes, trims the items
// and drops empty and repeated entries.
func splitList(answer string, separators string) []string {
	parts := strings.FieldsFunc(answer, func(r rune) bool {
		return strings.ContainsRune(separators, r)
	})

	items := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" || containsFold(items, item) {
			continue
		}

		items = append(items, item)
	}

	return items
}

// padNames appends defaults not already present until names has at least minimum entries.
func padNames(names []string, defaults []string, minimum int) []string {
	out := slices.Clone(names)

	for _, name := range defaults {
		if len(out) >= minimum {
			break
		}

		if !containsFold(out, name) {
			out = append(out, name)
		}
	}

	return out
}

func containsFold(items []string, item string) bool {
	return slices.ContainsFunc(items, func(existing string) bool {
		return strings.EqualFold(existing, item)
	})
}

func clamp(index, length int) int {
	if index >= length {
		return length - 1
	}

	if index < 0 {
		return 0
	}

	return index
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}
