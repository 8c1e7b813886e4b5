package models

// DocumentKind tags where a document sits in the flow.
type DocumentKind string

const (
	DocumentKindInput        DocumentKind = "input"
	DocumentKindIntermediate DocumentKind = "intermediate" // Product blocks
	DocumentKindOutput       DocumentKind = "output"
)

// RACI letters used by the passport role list.
const (
	RACIAccountable = "A"
	RACIResponsible = "R"
)

// ProcessPassport is a read-only reporting summary derived from a process graph.
type ProcessPassport struct {
	Name            string            `json:"name"            yaml:"name"`
	Goal            string            `json:"goal"            yaml:"goal"`
	Owner           string            `json:"owner"           yaml:"owner"`
	StartEvent      string            `json:"startEvent"      yaml:"startEvent"`
	EndEvent        string            `json:"endEvent"        yaml:"endEvent"`
	InputDocuments  []string          `json:"inputDocuments"  yaml:"inputDocuments"`
	OutputDocuments []string          `json:"outputDocuments" yaml:"outputDocuments"`
	InfoSystems     []string          `json:"infoSystems"     yaml:"infoSystems"`
	MainFlow        []*PassportStep   `json:"mainFlow"        yaml:"mainFlow"`
	Exceptions      []string          `json:"exceptions"      yaml:"exceptions"`
	Documents       []*PassportDoc    `json:"documents"       yaml:"documents"`
	Roles           []*PassportRole   `json:"roles"           yaml:"roles"`
	SLA             []*PassportMetric `json:"sla"             yaml:"sla"`
	Risks           []*PassportRisk   `json:"risks"           yaml:"risks"`
}

// PassportStep is one action of the main flow.
type PassportStep struct {
	Order        int    `json:"order"                  yaml:"order"`
	BlockID      string `json:"blockId"                yaml:"blockId"`
	Name         string `json:"name"                   yaml:"name"`
	Role         string `json:"role"                   yaml:"role"`
	Stage        string `json:"stage"                  yaml:"stage"`
	TimeEstimate string `json:"timeEstimate,omitempty" yaml:"timeEstimate,omitempty"`
}

// PassportDoc is one entry of the document inventory.
type PassportDoc struct {
	Name string       `json:"name" yaml:"name"`
	Kind DocumentKind `json:"kind" yaml:"kind"`
}

// PassportRole is a role with its naive RACI letter.
type PassportRole struct {
	Name           string `json:"name"                 yaml:"name"`
	Department     string `json:"department,omitempty" yaml:"department,omitempty"`
	Responsibility string `json:"responsibility"       yaml:"responsibility"`
	Blocks         int    `json:"blocks"               yaml:"blocks"`
}

// PassportMetric is an SLA entry built from an action's time estimate.
type PassportMetric struct {
	Step   string `json:"step"   yaml:"step"`
	Role   string `json:"role"   yaml:"role"`
	Metric string `json:"metric" yaml:"metric"`
}

// PassportRisk is the risk attached to a decision point.
type PassportRisk struct {
	Decision   string `json:"decision"   yaml:"decision"`
	Risk       string `json:"risk"       yaml:"risk"`
	Mitigation string `json:"mitigation" yaml:"mitigation"`
}
