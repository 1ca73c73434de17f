package sqlite

import (
	"context"
)

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	// Schema intentionally avoids FK constraints so seed reload/overwrite
	// flows stay simple and fully controlled by application transactions.
	statements := []string{
		`CREATE TABLE IF NOT EXISTS tests (
			test_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			subject TEXT NOT NULL DEFAULT '',
			duration_seconds INTEGER NOT NULL,
			passing_score INTEGER NOT NULL,
			question_count INTEGER NOT NULL,
			created_at_unix INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS questions (
			question_id TEXT PRIMARY KEY,
			subject TEXT NOT NULL DEFAULT '',
			prompt TEXT NOT NULL,
			options_json TEXT NOT NULL,
			correct_option_id TEXT NOT NULL,
			explanation TEXT NOT NULL DEFAULT '',
			created_at_unix INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS test_questions (
			test_id TEXT NOT NULL,
			question_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY (test_id, position),
			UNIQUE (test_id, question_id)
		);`,
		`CREATE TABLE IF NOT EXISTS attempts (
			attempt_id TEXT PRIMARY KEY,
			test_id TEXT NOT NULL,
			student_norm TEXT NOT NULL,
			started_at_unix INTEGER NOT NULL,
			ends_at_unix INTEGER NOT NULL,
			submitted_at_unix INTEGER,
			score INTEGER,
			total INTEGER,
			percentage INTEGER,
			passed INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS attempt_answers (
			attempt_id TEXT NOT NULL,
			question_id TEXT NOT NULL,
			selected_option_id TEXT NOT NULL DEFAULT '',
			marked_for_review INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (attempt_id, question_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tests_created_at ON tests(created_at_unix DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_test_student ON attempts(test_id, student_norm);`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
