package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Current process graph per company
			CREATE TABLE processes (
				id VARCHAR(64) PRIMARY KEY,
				owner VARCHAR(255) NOT NULL,
				company_name VARCHAR(255) NOT NULL DEFAULT '',
				name VARCHAR(512) NOT NULL DEFAULT '',
				answers JSONB,
				source VARCHAR(32) NOT NULL CHECK (source IN ('builder', 'external')),
				version INTEGER NOT NULL DEFAULT 1,
				data JSONB NOT NULL,
				score INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_processes_owner ON processes(owner);
			CREATE INDEX idx_processes_created_at ON processes(created_at);
		`,
		2: `
			-- Immutable historical versions
			CREATE TABLE process_snapshots (
				id VARCHAR(64) PRIMARY KEY,
				process_id VARCHAR(64) NOT NULL REFERENCES processes(id) ON DELETE CASCADE,
				version INTEGER NOT NULL,
				label VARCHAR(64) NOT NULL,
				source VARCHAR(32) NOT NULL,
				data JSONB NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_process_snapshots_process_id ON process_snapshots(process_id, version DESC);
		`,
	}
}
