package models

// JSONSchema represents a JSON Schema document used to shape-check external graphs.
type JSONSchema struct {
	Schema      string               `json:"$schema,omitempty"`
	Type        string               `json:"type"`
	Properties  map[string]*Property `json:"properties,omitempty"`
	Required    []string             `json:"required,omitempty"`
	Title       string               `json:"title,omitempty"`
	Description string               `json:"description,omitempty"`
}

// Property represents a JSON Schema property.
type Property struct {
	Type        string               `json:"type"`
	Description string               `json:"description,omitempty"`
	Enum        []any                `json:"enum,omitempty"`
	MinLength   *int                 `json:"minLength,omitempty"`
	Items       *Property            `json:"items,omitempty"`
	Properties  map[string]*Property `json:"properties,omitempty"`
	Required    []string             `json:"required,omitempty"`
}

func intPtr(i int) *int {
	return &i
}

func stringProperty(description string) *Property {
	return &Property{Type: "string", Description: description}
}

func stringList(description string) *Property {
	return &Property{Type: "array", Description: description, Items: &Property{Type: "string"}}
}

// ProcessDataSchema returns the JSON Schema of the ProcessData wire shape.
func ProcessDataSchema() *JSONSchema {
	blockTypes := make([]any, 0, len(BlockTypes))
	for _, t := range BlockTypes {
		blockTypes = append(blockTypes, string(t))
	}

	role := &Property{
		Type: "object",
		Properties: map[string]*Property{
			"id":         {Type: "string", MinLength: intPtr(1)},
			"name":       {Type: "string", MinLength: intPtr(1)},
			"department": stringProperty("Department the role belongs to"),
			"color":      stringProperty("Display color"),
		},
		Required: []string{"id", "name"},
	}

	stage := &Property{
		Type: "object",
		Properties: map[string]*Property{
			"id":    {Type: "string", MinLength: intPtr(1)},
			"name":  {Type: "string", MinLength: intPtr(1)},
			"order": {Type: "integer"},
		},
		Required: []string{"id", "name", "order"},
	}

	block := &Property{
		Type: "object",
		Properties: map[string]*Property{
			"id":              {Type: "string", MinLength: intPtr(1)},
			"name":            {Type: "string", MinLength: intPtr(1)},
			"description":     stringProperty("What happens in the block"),
			"type":            {Type: "string", Enum: blockTypes},
			"role":            stringProperty("Role id"),
			"stage":           stringProperty("Stage id"),
			"timeEstimate":    stringProperty("Expected duration"),
			"inputDocuments":  stringList("Documents consumed"),
			"outputDocuments": stringList("Documents produced"),
			"infoSystems":     stringList("Information systems used"),
			"connections":     stringList("Outgoing edges as target block ids"),
			"conditionLabel":  stringProperty("Branch condition when reached from a decision"),
			"isDefault":       {Type: "boolean", Description: "Default branch out of a decision"},
		},
		Required: []string{"id", "name", "type"},
	}

	return &JSONSchema{
		Schema: "http://json-schema.org/draft-07/schema#",
		Type:   "object",
		Title:  "ProcessData",
		Properties: map[string]*Property{
			"name":       {Type: "string", MinLength: intPtr(1)},
			"goal":       stringProperty("Business goal"),
			"owner":      stringProperty("Process owner"),
			"startEvent": stringProperty("Triggering event"),
			"endEvent":   stringProperty("Resulting event"),
			"roles":      {Type: "array", Items: role},
			"stages":     {Type: "array", Items: stage},
			"blocks":     {Type: "array", Items: block},
		},
		Required: []string{"name", "roles", "stages", "blocks"},
	}
}
