package quality

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/dukex/swimlane/pkg/models"
)

// Check ids.
const (
	CheckStartExists      = "logic.start"
	CheckEndExists        = "logic.end"
	CheckReachable        = "logic.reachable"
	CheckEndNoOutgoing    = "logic.end_no_outgoing"
	CheckOutgoing         = "logic.outgoing"
	CheckEdgeTargets      = "logic.edge_targets"
	CheckUniqueIDs        = "logic.unique_ids"
	CheckDecisionBranches = "gateway.branches"
	CheckDecisionLabels   = "gateway.labels" // Suffixed with ":<decision id>"
	CheckDecisionDefault  = "gateway.default"
	CheckUnusedRoles      = "roles.unused"
	CheckRoleReferences   = "roles.references"
	CheckHandoffs         = "roles.handoffs"
	CheckRoleCount        = "roles.count"
	CheckBlockCount       = "readability.blocks"
	CheckStageCount       = "readability.stages"
	CheckStageReferences  = "readability.stage_references"
	CheckDescriptions     = "readability.descriptions"
	CheckInputDocuments   = "documents.inputs"
	CheckInfoSystems      = "documents.systems"
	CheckTimeEstimates    = "documents.time"
	CheckProducts         = "value.products"
	CheckDecisions        = "value.decisions"
	CheckGoal             = "value.goal"
	CheckAutomation       = "automation.systems"
)

// DecisionLabelCheckID returns the id of the label check for a decision block.
func DecisionLabelCheckID(decisionID string) string {
	return CheckDecisionLabels + ":" + decisionID
}

func (r *report) checkLogic() {
	starts := r.process.BlocksByType(models.BlockTypeStart)
	ends := r.process.BlocksByType(models.BlockTypeEnd)

	r.add(CategoryLogic, CheckStartExists, "есть стартовое событие",
		len(starts) > 0, countDetails("Стартовых блоков", len(starts)), models.SeverityError)

	r.add(CategoryLogic, CheckEndExists, "есть завершающее событие",
		len(ends) > 0, countDetails("Завершающих блоков", len(ends)), models.SeverityError)

	var unreachable, endsWithEdges, deadEnds, dangling []string

	for _, block := range r.process.Blocks {
		if !r.idx.reachable[block.ID] {
			unreachable = append(unreachable, quote(block.Name))
		}

		if block.IsEnd() && len(block.Connections) > 0 {
			endsWithEdges = append(endsWithEdges, quote(block.Name))
		}

		if !block.IsEnd() && len(block.Connections) == 0 {
			deadEnds = append(deadEnds, quote(block.Name))
		}

		for _, target := range block.Connections {
			if _, ok := r.idx.blocks[target]; !ok {
				dangling = append(dangling, fmt.Sprintf("%s → %s", quote(block.Name), target))
			}
		}
	}

	r.add(CategoryLogic, CheckReachable, "все блоки достижимы от старта",
		len(unreachable) == 0, listDetails("Недостижимые блоки", unreachable), models.SeverityError)

	r.add(CategoryLogic, CheckEndNoOutgoing, "у завершающих блоков нет исходящих связей",
		len(endsWithEdges) == 0, listDetails("Завершающие блоки со связями", endsWithEdges), models.SeverityError)

	r.add(CategoryLogic, CheckOutgoing, "у всех незавершающих блоков есть исходящие связи",
		len(deadEnds) == 0, listDetails("Тупиковые блоки", deadEnds), models.SeverityError)

	r.add(CategoryLogic, CheckEdgeTargets, "все связи ссылаются на существующие блоки",
		len(dangling) == 0, listDetails("Битые связи", dangling), models.SeverityError)

	var duplicates []string
	duplicates = append(duplicates, duplicateIDs("роль", r.process.Roles, func(role *models.Role) string { return role.ID })...)
	duplicates = append(duplicates, duplicateIDs("этап", r.process.Stages, func(stage *models.Stage) string { return stage.ID })...)
	duplicates = append(duplicates, duplicateIDs("блок", r.process.Blocks, func(block *models.Block) string { return block.ID })...)

	r.add(CategoryLogic, CheckUniqueIDs, "идентификаторы ролей, этапов и блоков уникальны",
		len(duplicates) == 0, listDetails("Повторяющиеся идентификаторы", duplicates), models.SeverityError)
}

func (r *report) checkGateways() {
	decisions := r.process.BlocksByType(models.BlockTypeDecision)

	var narrow []string

	for _, decision := range decisions {
		if len(decision.Connections) < 2 {
			narrow = append(narrow, quote(decision.Name))
		}
	}

	r.add(CategoryGateways, CheckDecisionBranches, "у каждого решения не меньше двух исходов",
		len(narrow) == 0, listDetails("Решения с одним исходом", narrow), models.SeverityError)

	var withoutDefault []string

	for _, decision := range decisions {
		var unlabeled []string

		hasDefault := false

		for _, targetID := range decision.Connections {
			target, ok := r.idx.blocks[targetID]
			if !ok {
				continue
			}

			if target.IsDefault {
				hasDefault = true

				continue
			}

			if strings.TrimSpace(target.ConditionLabel) == "" {
				unlabeled = append(unlabeled, quote(target.Name))
			}
		}

		r.add(CategoryGateways, DecisionLabelCheckID(decision.ID),
			"ветви подписаны условиями: "+quote(decision.Name),
			len(unlabeled) == 0, listDetails("Ветви без условия", unlabeled), models.SeverityWarning)

		if !hasDefault {
			withoutDefault = append(withoutDefault, quote(decision.Name))
		}
	}

	r.add(CategoryGateways, CheckDecisionDefault, "у каждого решения есть ветвь по умолчанию",
		len(withoutDefault) == 0, listDetails("Решения без ветви по умолчанию", withoutDefault), models.SeverityWarning)
}

func (r *report) checkRoles() {
	used := make(map[string]bool, len(r.process.Roles))

	var unknownRole []string

	for _, block := range r.process.Blocks {
		used[block.Role] = true

		if _, ok := r.idx.roles[block.Role]; !ok {
			unknownRole = append(unknownRole, quote(block.Name))
		}
	}

	var unused []string

	for _, role := range r.process.Roles {
		if !used[role.ID] {
			unused = append(unused, quote(role.Name))
		}
	}

	r.add(CategoryRoles, CheckUnusedRoles, "нет ролей без задач",
		len(unused) == 0, listDetails("Роли без задач", unused), models.SeverityWarning)

	r.add(CategoryRoles, CheckRoleReferences, "все блоки назначены объявленным ролям",
		len(unknownRole) == 0, listDetails("Блоки с неизвестной ролью", unknownRole), models.SeverityWarning)

	handoffs := 0

	for _, block := range r.process.Blocks {
		for _, targetID := range block.Connections {
			if target, ok := r.idx.blocks[targetID]; ok && target.Role != block.Role {
				handoffs++
			}
		}
	}

	r.add(CategoryRoles, CheckHandoffs,
		fmt.Sprintf("передач между ролями не меньше %d", r.thresholds.MinHandoffs),
		handoffs >= r.thresholds.MinHandoffs, countDetails("Передач между ролями", handoffs), models.SeverityInfo)

	r.add(CategoryRoles, CheckRoleCount,
		fmt.Sprintf("ролей не меньше %d", r.thresholds.MinRoles),
		len(r.process.Roles) >= r.thresholds.MinRoles, countDetails("Ролей", len(r.process.Roles)), models.SeverityWarning)
}

func (r *report) checkReadability() {
	r.add(CategoryReadability, CheckBlockCount,
		fmt.Sprintf("блоков не больше %d", r.thresholds.MaxBlocks),
		len(r.process.Blocks) <= r.thresholds.MaxBlocks, countDetails("Блоков", len(r.process.Blocks)), models.SeverityWarning)

	r.add(CategoryReadability, CheckStageCount,
		fmt.Sprintf("этапов не меньше %d", r.thresholds.MinStages),
		len(r.process.Stages) >= r.thresholds.MinStages, countDetails("Этапов", len(r.process.Stages)), models.SeverityWarning)

	var unknownStage, undescribed []string

	for _, block := range r.process.Blocks {
		if _, ok := r.idx.stages[block.Stage]; !ok {
			unknownStage = append(unknownStage, quote(block.Name))
		}

		if utf8.RuneCountInString(strings.TrimSpace(block.Description)) < r.thresholds.MinDescriptionLength {
			undescribed = append(undescribed, quote(block.Name))
		}
	}

	r.add(CategoryReadability, CheckStageReferences, "все блоки отнесены к объявленным этапам",
		len(unknownStage) == 0, listDetails("Блоки с неизвестным этапом", unknownStage), models.SeverityWarning)

	r.add(CategoryReadability, CheckDescriptions, "у всех блоков есть описание",
		len(undescribed) == 0, listDetails("Блоки без описания", undescribed), models.SeverityInfo)
}

func (r *report) checkDocuments() {
	actions := r.process.BlocksByType(models.BlockTypeAction)

	var noInputs, noSystems, noTime []string

	for _, action := range actions {
		if len(nonEmpty(action.InputDocuments)) == 0 {
			noInputs = append(noInputs, quote(action.Name))
		}

		if len(nonEmpty(action.InfoSystems)) == 0 {
			noSystems = append(noSystems, quote(action.Name))
		}

		if strings.TrimSpace(action.TimeEstimate) == "" {
			noTime = append(noTime, quote(action.Name))
		}
	}

	r.addRatio(CheckInputDocuments, "у действий указаны входящие документы", "Без входящих документов", noInputs, len(actions))
	r.addRatio(CheckInfoSystems, "у действий указаны информационные системы", "Без информационных систем", noSystems, len(actions))
	r.addRatio(CheckTimeEstimates, "у действий указано время выполнения", "Без оценки времени", noTime, len(actions))
}

func (r *report) addRatio(id, rule, label string, missing []string, total int) {
	ratio := 0.0
	if total > 0 {
		ratio = float64(len(missing)) / float64(total)
	}

	details := fmt.Sprintf("%s: %d из %d (%d%%)", label, len(missing), total, int(math.Round(ratio*100)))
	if len(missing) > 0 {
		details += ": " + strings.Join(missing, ", ")
	}

	r.add(CategoryDocuments, id,
		fmt.Sprintf("%s (пропусков не больше %d%%)", rule, int(math.Round(r.thresholds.MaxMissingRatio*100))),
		ratio <= r.thresholds.MaxMissingRatio, details, models.SeverityWarning)
}

func (r *report) checkValue() {
	products := len(r.process.BlocksByType(models.BlockTypeProduct))
	decisions := len(r.process.BlocksByType(models.BlockTypeDecision))
	goal := strings.TrimSpace(r.process.Goal)

	r.add(CategoryValue, CheckProducts,
		fmt.Sprintf("продуктов не меньше %d", r.thresholds.MinProducts),
		products >= r.thresholds.MinProducts, countDetails("Продуктов", products), models.SeverityWarning)

	r.add(CategoryValue, CheckDecisions,
		fmt.Sprintf("решений не меньше %d", r.thresholds.MinDecisions),
		decisions >= r.thresholds.MinDecisions, countDetails("Решений", decisions), models.SeverityInfo)

	goalDetails := "Цель: " + quote(goal)
	if goal == "" {
		goalDetails = "Цель не указана"
	}

	r.add(CategoryValue, CheckGoal, "цель процесса сформулирована",
		utf8.RuneCountInString(goal) >= r.thresholds.MinGoalLength, goalDetails, models.SeverityWarning)
}

func (r *report) checkAutomation() {
	seen := make(map[string]bool)

	var systems []string

	for _, block := range r.process.Blocks {
		for _, system := range nonEmpty(block.InfoSystems) {
			if !seen[system] {
				seen[system] = true
				systems = append(systems, system)
			}
		}
	}

	details := countDetails("Информационных систем", len(systems))
	if len(systems) > 0 {
		details += ": " + strings.Join(systems, ", ")
	}

	r.add(CategoryAutomation, CheckAutomation,
		fmt.Sprintf("используется не меньше %d информационных систем", r.thresholds.MinSystems),
		len(systems) >= r.thresholds.MinSystems, details, models.SeverityInfo)
}

func duplicateIDs[T any](kind string, items []T, id func(T) string) []string {
	seen := make(map[string]int, len(items))

	var duplicates []string

	for _, item := range items {
		key := id(item)
		seen[key]++

		if seen[key] == 2 {
			duplicates = append(duplicates, fmt.Sprintf("%s %s", kind, key))
		}
	}

	return duplicates
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))

	for _, value := range values {
		if v := strings.TrimSpace(value); v != "" {
			out = append(out, v)
		}
	}

	return out
}

func quote(name string) string {
	return "«" + name + "»"
}

func countDetails(label string, n int) string {
	return fmt.Sprintf("%s: %d", label, n)
}

func listDetails(label string, names []string) string {
	if len(names) == 0 {
		return "Нарушений нет"
	}

	return fmt.Sprintf("%s (%d): %s", label, len(names), strings.Join(names, ", "))
}
