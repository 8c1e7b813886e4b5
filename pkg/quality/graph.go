package quality

import "github.com/dukex/swimlane/pkg/models"

// index is a one-pass lookup over a process graph shared by all rules.
type index struct {
	blocks    map[string]*models.Block
	roles     map[string]*models.Role
	stages    map[string]*models.Stage
	reachable map[string]bool
}

func newIndex(p *models.ProcessData) *index {
	idx := &index{
		blocks: make(map[string]*models.Block, len(p.Blocks)),
		roles:  make(map[string]*models.Role, len(p.Roles)),
		stages: make(map[string]*models.Stage, len(p.Stages)),
	}

	// First declaration wins when ids repeat; duplicates are reported separately.
	for _, block := range p.Blocks {
		if _, ok := idx.blocks[block.ID]; !ok {
			idx.blocks[block.ID] = block
		}
	}

	for _, role := range p.Roles {
		if _, ok := idx.roles[role.ID]; !ok {
			idx.roles[role.ID] = role
		}
	}

	for _, stage := range p.Stages {
		if _, ok := idx.stages[stage.ID]; !ok {
			idx.stages[stage.ID] = stage
		}
	}

	idx.reachable = idx.traverse(p.BlocksByType(models.BlockTypeStart))

	return idx
}

// traverse runs a breadth-first search from every start block and returns the
// set of visited block ids. Edges to unknown ids are skipped.
func (idx *index) traverse(starts []*models.Block) map[string]bool {
	visited := make(map[string]bool, len(idx.blocks))
	queue := make([]string, 0, len(idx.blocks))

	for _, start := range starts {
		if !visited[start.ID] {
			visited[start.ID] = true
			queue = append(queue, start.ID)
		}
	}

	for len(queue) > 0 {
		current := idx.blocks[queue[0]]
		queue = queue[1:]

		for _, target := range current.Connections {
			if _, ok := idx.blocks[target]; !ok || visited[target] {
				continue
			}

			visited[target] = true
			queue = append(queue, target)
		}
	}

	return visited
}

// Reachable returns the ids of blocks reachable from any start block, in
// declaration order.
func Reachable(p *models.ProcessData) ([]string, error) {
	if err := checkContract(p); err != nil {
		return nil, err
	}

	idx := newIndex(p)

	ids := make([]string, 0, len(idx.reachable))
	seen := make(map[string]bool, len(idx.reachable))

	for _, block := range p.Blocks {
		if idx.reachable[block.ID] && !seen[block.ID] {
			seen[block.ID] = true
			ids = append(ids, block.ID)
		}
	}

	return ids, nil
}
