// Package models defines the process graph data contract shared by the builder, the quality validator and the passport projector.
package models

// BlockType represents the BPMN-like kind of a block.
type BlockType string

const (
	BlockTypeStart    BlockType = "start"    // Start event, entry point of the flow
	BlockTypeAction   BlockType = "action"   // Unit of work performed by a role
	BlockTypeProduct  BlockType = "product"  // Named intermediate artifact or document
	BlockTypeDecision BlockType = "decision" // Exclusive gateway with labelled branches
	BlockTypeSplit    BlockType = "split"    // Parallel fork
	BlockTypeEnd      BlockType = "end"      // Terminal event
)

// BlockTypes lists every supported block type in declaration order.
var BlockTypes = []BlockType{
	BlockTypeStart,
	BlockTypeAction,
	BlockTypeProduct,
	BlockTypeDecision,
	BlockTypeSplit,
	BlockTypeEnd,
}

// Role is a swimlane: a person, department or external partner responsible for blocks.
type Role struct {
	ID         string `json:"id"                   validate:"required"`
	Name       string `json:"name"                 validate:"required"`
	Department string `json:"department,omitempty"`
	Color      string `json:"color,omitempty"`
}

// Stage is an ordered phase of the process.
type Stage struct {
	ID    string `json:"id"    validate:"required"`
	Name  string `json:"name"  validate:"required"`
	Order int    `json:"order" validate:"min=1"`
}

// Block is the core unit of the graph. Outgoing edges are embedded in Connections.
type Block struct {
	ID              string    `json:"id"                        validate:"required"`
	Name            string    `json:"name"                      validate:"required"`
	Description     string    `json:"description"`
	Type            BlockType `json:"type"                      validate:"required,oneof=start action product decision split end"`
	Role            string    `json:"role"`
	Stage           string    `json:"stage"`
	TimeEstimate    string    `json:"timeEstimate,omitempty"`
	InputDocuments  []string  `json:"inputDocuments,omitempty"`
	OutputDocuments []string  `json:"outputDocuments,omitempty"`
	InfoSystems     []string  `json:"infoSystems,omitempty"`
	Connections     []string  `json:"connections,omitempty"`    // Target block IDs, in order
	ConditionLabel  string    `json:"conditionLabel,omitempty"` // Set on blocks reached from a decision
	IsDefault       bool      `json:"isDefault,omitempty"`      // Marks the else branch out of a decision
}

// Helper methods for type checking.
func (b *Block) IsStart() bool {
	return b.Type == BlockTypeStart
}

func (b *Block) IsEnd() bool {
	return b.Type == BlockTypeEnd
}

func (b *Block) IsAction() bool {
	return b.Type == BlockTypeAction
}

func (b *Block) IsDecision() bool {
	return b.Type == BlockTypeDecision
}

func (b *Block) IsProduct() bool {
	return b.Type == BlockTypeProduct
}

// ProcessData is the aggregate root of a generated swimlane diagram.
// A value is produced whole and never mutated afterwards.
type ProcessData struct {
	Name       string   `json:"name"       validate:"required"`
	Goal       string   `json:"goal"`
	Owner      string   `json:"owner"`
	StartEvent string   `json:"startEvent"`
	EndEvent   string   `json:"endEvent"`
	Roles      []*Role  `json:"roles"      validate:"dive,required"`
	Stages     []*Stage `json:"stages"     validate:"dive,required"`
	Blocks     []*Block `json:"blocks"     validate:"dive,required"`
}

// BlockByID returns the block with the given id, or nil if no such block exists.
func (p *ProcessData) BlockByID(id string) *Block {
	for _, block := range p.Blocks {
		if block != nil && block.ID == id {
			return block
		}
	}

	return nil
}

// RoleByID returns the role with the given id, or nil if no such role exists.
func (p *ProcessData) RoleByID(id string) *Role {
	for _, role := range p.Roles {
		if role != nil && role.ID == id {
			return role
		}
	}

	return nil
}

// StageByID returns the stage with the given id, or nil if no such stage exists.
func (p *ProcessData) StageByID(id string) *Stage {
	for _, stage := range p.Stages {
		if stage != nil && stage.ID == id {
			return stage
		}
	}

	return nil
}

// BlocksByType returns all blocks of the given type in declaration order.
func (p *ProcessData) BlocksByType(blockType BlockType) []*Block {
	var blocks []*Block

	for _, block := range p.Blocks {
		if block != nil && block.Type == blockType {
			blocks = append(blocks, block)
		}
	}

	return blocks
}
