package builder

import "github.com/dukex/swimlane/pkg/models"

// Role slots index into the padded role list.
const (
	RoleSales = iota
	RoleHead
	RoleSpecialist
	RoleFinance
	RoleExecutor
	RoleQuality
	RolePartner // Resolves to RoleQuality when no partner answer is present
)

// InternalRoleSlots is the number of lanes the template assigns to the company's own roles.
const InternalRoleSlots = RolePartner

// Stage slots index into the stage list.
const (
	StageIntake = iota
	StageQualification
	StagePreparation
	StageApproval
	StageClient
	StageExecution
	StageClosing
)

// System slots index into the padded information system list.
const (
	SystemCRM = iota
	SystemMail
	SystemAccounting
)

// Placeholders substituted in block names.
const (
	placeholderTrigger = "{trigger}"
	placeholderResult  = "{result}"
)

// BlockSpec declares one template block. Slots are resolved against the padded
// role, stage and system lists at build time; Next holds template keys.
type BlockSpec struct {
	Key            string
	Type           models.BlockType
	RoleSlot       int
	StageSlot      int
	Name           string
	Description    string
	TimeEstimate   string
	Inputs         []string
	Outputs        []string
	SystemSlots    []int
	Next           []string
	ConditionLabel string
	IsDefault      bool
}

var template = []BlockSpec{
	// Linear intake.
	{
		Key: "intake_start", Type: models.BlockTypeStart, RoleSlot: RoleSales, StageSlot: StageIntake,
		Name:        placeholderTrigger,
		Description: "Клиент обращается в компанию с запросом",
		Next:        []string{"register_request"},
	},
	{
		Key: "register_request", Type: models.BlockTypeAction, RoleSlot: RoleSales, StageSlot: StageIntake,
		Name:         "Зарегистрировать заявку",
		Description:  "Внести обращение клиента в систему учёта заявок",
		TimeEstimate: "15 минут",
		Inputs:       []string{"Заявка клиента"},
		Outputs:      []string{"Карточка заявки"},
		SystemSlots:  []int{SystemCRM},
		Next:         []string{"clarify_needs"},
	},
	{
		Key: "clarify_needs", Type: models.BlockTypeAction, RoleSlot: RoleSales, StageSlot: StageIntake,
		Name:         "Уточнить потребности клиента",
		Description:  "Провести первичный разговор и зафиксировать требования",
		TimeEstimate: "1 час",
		Inputs:       []string{"Карточка заявки"},
		Outputs:      []string{"Список требований"},
		SystemSlots:  []int{SystemCRM, SystemMail},
		Next:         []string{"qualify_request"},
	},

	// Qualification with a rejection terminal.
	{
		Key: "qualify_request", Type: models.BlockTypeDecision, RoleSlot: RoleHead, StageSlot: StageQualification,
		Name:        "Заявка соответствует профилю компании?",
		Description: "Оценить, может ли компания выполнить запрос",
		Next:        []string{"write_brief", "notify_rejection"},
	},
	{
		Key: "notify_rejection", Type: models.BlockTypeAction, RoleSlot: RoleSales, StageSlot: StageQualification,
		Name:           "Уведомить клиента об отказе",
		Description:    "Сообщить клиенту причину отказа и предложить альтернативы",
		TimeEstimate:   "30 минут",
		Inputs:         []string{"Список требований"},
		Outputs:        []string{"Письмо с отказом"},
		SystemSlots:    []int{SystemMail},
		Next:           []string{"request_rejected"},
		ConditionLabel: "Не соответствует профилю",
	},
	{
		Key: "request_rejected", Type: models.BlockTypeEnd, RoleSlot: RoleSales, StageSlot: StageQualification,
		Name:        "Заявка отклонена",
		Description: "Работа по заявке прекращена",
	},
	{
		Key: "write_brief", Type: models.BlockTypeAction, RoleSlot: RoleSpecialist, StageSlot: StageQualification,
		Name:         "Составить техническое задание",
		Description:  "Описать объём работ и критерии приёмки",
		TimeEstimate: "4 часа",
		Inputs:       []string{"Список требований"},
		Outputs:      []string{"Техническое задание"},
		SystemSlots:  []int{SystemCRM},
		Next:         []string{"brief_document"},
		IsDefault:    true,
	},
	{
		Key: "brief_document", Type: models.BlockTypeProduct, RoleSlot: RoleSpecialist, StageSlot: StageQualification,
		Name:        "Техническое задание",
		Description: "Согласованное описание объёма работ",
		Next:        []string{"prepare_solution"},
	},

	// Prepare, cost, verify.
	{
		Key: "prepare_solution", Type: models.BlockTypeAction, RoleSlot: RoleSpecialist, StageSlot: StagePreparation,
		Name:         "Подготовить решение",
		Description:  "Разработать состав работ и график выполнения",
		TimeEstimate: "1 день",
		Inputs:       []string{"Техническое задание"},
		Outputs:      []string{"Проект решения"},
		SystemSlots:  []int{SystemCRM},
		Next:         []string{"calculate_cost"},
	},
	{
		Key: "calculate_cost", Type: models.BlockTypeAction, RoleSlot: RoleFinance, StageSlot: StagePreparation,
		Name:         "Рассчитать стоимость",
		Description:  "Оценить себестоимость работ и сформировать цену",
		TimeEstimate: "2 часа",
		Inputs:       []string{"Проект решения"},
		Outputs:      []string{"Расчёт стоимости"},
		SystemSlots:  []int{SystemAccounting},
		Next:         []string{"verify_calculation"},
	},
	{
		Key: "verify_calculation", Type: models.BlockTypeAction, RoleSlot: RoleHead, StageSlot: StagePreparation,
		Name:         "Проверить расчёт",
		Description:  "Сверить расчёт с проектом решения и нормами маржинальности",
		TimeEstimate: "1 час",
		Inputs:       []string{"Расчёт стоимости", "Проект решения"},
		Outputs:      []string{"Коммерческое предложение"},
		SystemSlots:  []int{SystemAccounting},
		Next:         []string{"proposal_document"},
	},
	{
		Key: "proposal_document", Type: models.BlockTypeProduct, RoleSlot: RoleFinance, StageSlot: StagePreparation,
		Name:        "Коммерческое предложение",
		Description: "Предложение с составом работ, сроками и ценой",
		Next:        []string{"approve_proposal"},
	},

	// Four-eyes approval with a rework loop into the pipeline.
	{
		Key: "approve_proposal", Type: models.BlockTypeDecision, RoleSlot: RoleHead, StageSlot: StageApproval,
		Name:        "Предложение утверждено руководителем?",
		Description: "Второй сотрудник проверяет предложение перед отправкой",
		Next:        []string{"send_proposal", "rework_proposal"},
	},
	{
		Key: "rework_proposal", Type: models.BlockTypeAction, RoleSlot: RoleSpecialist, StageSlot: StageApproval,
		Name:           "Доработать предложение",
		Description:    "Внести правки по замечаниям руководителя",
		TimeEstimate:   "2 часа",
		Inputs:         []string{"Коммерческое предложение"},
		Outputs:        []string{"Замечания к предложению"},
		SystemSlots:    []int{SystemCRM},
		Next:           []string{"prepare_solution"},
		ConditionLabel: "Требуются правки",
	},
	{
		Key: "send_proposal", Type: models.BlockTypeAction, RoleSlot: RoleSales, StageSlot: StageApproval,
		Name:         "Направить предложение клиенту",
		Description:  "Отправить утверждённое предложение и назначить встречу",
		TimeEstimate: "30 минут",
		Inputs:       []string{"Коммерческое предложение"},
		Outputs:      []string{"Письмо клиенту"},
		SystemSlots:  []int{SystemMail, SystemCRM},
		Next:         []string{"client_accepts"},
		IsDefault:    true,
	},

	// Client acceptance with a renegotiation loop.
	{
		Key: "client_accepts", Type: models.BlockTypeDecision, RoleSlot: RoleSales, StageSlot: StageClient,
		Name:        "Клиент принял предложение?",
		Description: "Получить решение клиента по предложению",
		Next:        []string{"sign_contract", "renegotiate_terms"},
	},
	{
		Key: "renegotiate_terms", Type: models.BlockTypeAction, RoleSlot: RoleSales, StageSlot: StageClient,
		Name:           "Согласовать изменения с клиентом",
		Description:    "Зафиксировать пожелания клиента и вернуть предложение на пересчёт",
		TimeEstimate:   "1 час",
		Inputs:         []string{"Письмо клиенту"},
		Outputs:        []string{"Протокол разногласий"},
		SystemSlots:    []int{SystemMail},
		Next:           []string{"calculate_cost"},
		ConditionLabel: "Клиент запросил изменения",
	},
	{
		Key: "sign_contract", Type: models.BlockTypeAction, RoleSlot: RoleFinance, StageSlot: StageClient,
		Name:         "Подписать договор",
		Description:  "Оформить и подписать договор с клиентом",
		TimeEstimate: "1 день",
		Inputs:       []string{"Коммерческое предложение"},
		Outputs:      []string{"Договор"},
		SystemSlots:  []int{SystemAccounting},
		Next:         []string{"plan_work"},
		IsDefault:    true,
	},

	// Execution with a quality check and a rework loop.
	{
		Key: "plan_work", Type: models.BlockTypeAction, RoleSlot: RoleExecutor, StageSlot: StageExecution,
		Name:         "Спланировать работы",
		Description:  "Распределить задачи и ресурсы по графику",
		TimeEstimate: "2 часа",
		Inputs:       []string{"Договор", "Техническое задание"},
		Outputs:      []string{"План работ"},
		SystemSlots:  []int{SystemCRM},
		Next:         []string{"supply_materials"},
	},
	{
		Key: "supply_materials", Type: models.BlockTypeAction, RoleSlot: RolePartner, StageSlot: StageExecution,
		Name:         "Обеспечить материалы и ресурсы",
		Description:  "Поставить материалы и ресурсы, необходимые по плану работ",
		TimeEstimate: "2 дня",
		Inputs:       []string{"План работ"},
		Outputs:      []string{"Накладная"},
		SystemSlots:  []int{SystemAccounting},
		Next:         []string{"execute_work"},
	},
	{
		Key: "execute_work", Type: models.BlockTypeAction, RoleSlot: RoleExecutor, StageSlot: StageExecution,
		Name:         "Выполнить работы",
		Description:  "Выполнить работы согласно плану и техническому заданию",
		TimeEstimate: "5 дней",
		Inputs:       []string{"План работ", "Техническое задание"},
		Outputs:      []string{"Результат работ"},
		SystemSlots:  []int{SystemCRM},
		Next:         []string{"quality_check"},
	},
	{
		Key: "quality_check", Type: models.BlockTypeDecision, RoleSlot: RoleQuality, StageSlot: StageExecution,
		Name:        "Результат соответствует требованиям?",
		Description: "Проверить результат по критериям приёмки",
		Next:        []string{"deliver_result", "fix_defects"},
	},
	{
		Key: "fix_defects", Type: models.BlockTypeAction, RoleSlot: RoleExecutor, StageSlot: StageExecution,
		Name:           "Устранить замечания",
		Description:    "Исправить выявленные несоответствия",
		TimeEstimate:   "1 день",
		Inputs:         []string{"Результат работ"},
		Outputs:        []string{"Перечень замечаний"},
		SystemSlots:    []int{SystemCRM},
		Next:           []string{"execute_work"},
		ConditionLabel: "Выявлены замечания",
	},

	// Closing sequence.
	{
		Key: "deliver_result", Type: models.BlockTypeAction, RoleSlot: RoleSales, StageSlot: StageClosing,
		Name:         "Передать результат клиенту",
		Description:  "Провести сдачу результата и получить подтверждение",
		TimeEstimate: "2 часа",
		Inputs:       []string{"Результат работ"},
		Outputs:      []string{"Акт выполненных работ"},
		SystemSlots:  []int{SystemMail},
		Next:         []string{"acceptance_act"},
		IsDefault:    true,
	},
	{
		Key: "acceptance_act", Type: models.BlockTypeProduct, RoleSlot: RoleFinance, StageSlot: StageClosing,
		Name:        "Акт выполненных работ",
		Description: "Подписанный клиентом акт приёмки",
		Next:        []string{"issue_invoice"},
	},
	{
		Key: "issue_invoice", Type: models.BlockTypeAction, RoleSlot: RoleFinance, StageSlot: StageClosing,
		Name:         "Выставить счёт и закрыть сделку",
		Description:  "Выставить счёт, проконтролировать оплату и закрыть сделку",
		TimeEstimate: "3 дня",
		Inputs:       []string{"Акт выполненных работ", "Договор"},
		Outputs:      []string{"Счёт"},
		SystemSlots:  []int{SystemAccounting, SystemCRM},
		Next:         []string{"process_completed"},
	},
	{
		Key: "process_completed", Type: models.BlockTypeEnd, RoleSlot: RoleHead, StageSlot: StageClosing,
		Name:        placeholderResult,
		Description: "Клиент получил результат, оплата поступила",
	},
}

// Template returns a copy of the block template in emission order.
func Template() []BlockSpec {
	out := make([]BlockSpec, len(template))
	copy(out, template)

	return out
}
