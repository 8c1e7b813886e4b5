package builder

// Interview question ids read by the builder.
const (
	QuestionProcessName = "process_name"
	QuestionGoal        = "goal"
	QuestionOwner       = "owner"
	QuestionTrigger     = "trigger"
	QuestionResult      = "result"
	QuestionRoles       = "roles"
	QuestionStages      = "stages"
	QuestionPartners    = "partners"
	QuestionSystems     = "systems"
)

const (
	// MinRoles is the size the role list is padded up to.
	MinRoles = 6
	// MinParsedStages is the smallest parsed stage list that replaces the default stages.
	MinParsedStages = 5

	externalSuffix     = " (внешний)"
	externalDepartment = "Внешний партнёр"
)

// Default phrases used when an answer is missing.
const (
	DefaultProcessName = "Основной бизнес-процесс"
	DefaultGoal        = "Выполнить заказ клиента качественно и в срок"
	DefaultOwner       = "Руководитель компании"
	DefaultTrigger     = "Поступила заявка клиента"
	DefaultResult      = "Заказ выполнен и оплачен"
)

// DefaultRoles is the fixed role sequence used to pad parsed roles.
var DefaultRoles = []string{
	"Менеджер по продажам",
	"Руководитель отдела",
	"Специалист",
	"Финансовый менеджер",
	"Исполнитель",
	"Контролёр качества",
}

// DefaultStages is the fixed 7-stage sequence.
var DefaultStages = []string{
	"Приём заявки",
	"Квалификация",
	"Подготовка предложения",
	"Внутреннее согласование",
	"Согласование с клиентом",
	"Исполнение",
	"Закрытие",
}

// DefaultSystems pads the parsed information systems.
var DefaultSystems = []string{
	"CRM",
	"Электронная почта",
	"Учётная система",
}

// Palette is cycled by role position to assign display colors.
var Palette = []string{
	"#4F46E5",
	"#0EA5E9",
	"#10B981",
	"#F59E0B",
	"#EF4444",
	"#8B5CF6",
	"#EC4899",
	"#14B8A6",
}
