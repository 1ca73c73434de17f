package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"testprep-app/internal/exam"
)

func (s *SQLiteStore) CreateTest(ctx context.Context, test exam.Test, questions []exam.Question) error {
	if test.TestID == "" {
		return errors.New("test id is required")
	}

	if test.QuestionCount <= 0 {
		test.QuestionCount = len(questions)
	}

	if test.CreatedAt.IsZero() {
		test.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Reloading a test replaces its question links; question rows themselves
	// are content-addressed and upserted in place.
	if _, err := tx.ExecContext(ctx, `DELETE FROM test_questions WHERE test_id = ?`, test.TestID); err != nil {
		return err
	}

	_, err = tx.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO tests (test_id, name, subject, duration_seconds, passing_score, question_count, created_at_unix)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		test.TestID,
		test.Name,
		test.Subject,
		int64(test.Duration/time.Second),
		test.PassingScore,
		test.QuestionCount,
		test.CreatedAt.UnixNano(),
	)
	if err != nil {
		return err
	}

	for idx := range questions {
		question := questions[idx]
		if question.QuestionID == "" {
			question.QuestionID = exam.MakeQuestionID(question)
		}

		optionsJSON, err := json.Marshal(question.Options)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO questions (question_id, subject, prompt, options_json, correct_option_id, explanation, created_at_unix)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(question_id) DO UPDATE SET
				subject = excluded.subject,
				prompt = excluded.prompt,
				options_json = excluded.options_json,
				correct_option_id = excluded.correct_option_id,
				explanation = excluded.explanation`,
			question.QuestionID,
			question.Subject,
			question.Text,
			string(optionsJSON),
			question.CorrectOptionID,
			question.Explanation,
			test.CreatedAt.UnixNano(),
		)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO test_questions (test_id, question_id, position) VALUES (?, ?, ?)`,
			test.TestID,
			question.QuestionID,
			idx,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetTest(ctx context.Context, testID string) (exam.Test, error) {
	var (
		test            exam.Test
		durationSeconds int64
		createdAtUnix   int64
	)
	err := s.db.QueryRowContext(
		ctx,
		`SELECT test_id, name, subject, duration_seconds, passing_score, question_count, created_at_unix
		 FROM tests WHERE test_id = ?`,
		testID,
	).Scan(&test.TestID, &test.Name, &test.Subject, &durationSeconds, &test.PassingScore, &test.QuestionCount, &createdAtUnix)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return exam.Test{}, exam.ErrTestNotFound
		}
		return exam.Test{}, err
	}

	test.Duration = time.Duration(durationSeconds) * time.Second
	test.CreatedAt = time.Unix(0, createdAtUnix).UTC()
	return test, nil
}

func (s *SQLiteStore) GetTestQuestions(ctx context.Context, testID string) ([]exam.Question, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT q.question_id, tq.position, q.subject, q.prompt, q.options_json, q.correct_option_id, q.explanation
		 FROM test_questions tq
		 JOIN questions q ON q.question_id = tq.question_id
		 WHERE tq.test_id = ?
		 ORDER BY tq.position ASC`,
		testID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := make([]exam.Question, 0)
	for rows.Next() {
		var (
			question    exam.Question
			optionsJSON string
		)
		if err := rows.Scan(&question.QuestionID, &question.Order, &question.Subject, &question.Text, &optionsJSON, &question.CorrectOptionID, &question.Explanation); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(optionsJSON), &question.Options); err != nil {
			return nil, err
		}
		questions = append(questions, question)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(questions) == 0 {
		exists, err := s.testExists(ctx, testID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, exam.ErrTestNotFound
		}
	}

	return questions, nil
}

func (s *SQLiteStore) ListTests(ctx context.Context, limit int) ([]exam.Test, error) {
	query := `SELECT test_id, name, subject, duration_seconds, passing_score, question_count, created_at_unix
	          FROM tests ORDER BY created_at_unix DESC`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tests := make([]exam.Test, 0)
	for rows.Next() {
		var (
			test            exam.Test
			durationSeconds int64
			createdAtUnix   int64
		)
		if err := rows.Scan(&test.TestID, &test.Name, &test.Subject, &durationSeconds, &test.PassingScore, &test.QuestionCount, &createdAtUnix); err != nil {
			return nil, err
		}
		test.Duration = time.Duration(durationSeconds) * time.Second
		test.CreatedAt = time.Unix(0, createdAtUnix).UTC()
		tests = append(tests, test)
	}

	return tests, rows.Err()
}

func (s *SQLiteStore) testExists(ctx context.Context, testID string) (bool, error) {
	var found int
	err := s.db.QueryRowContext(
		ctx,
		`SELECT 1 FROM tests WHERE test_id = ? LIMIT 1`,
		testID,
	).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
