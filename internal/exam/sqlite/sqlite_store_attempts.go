package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"testprep-app/internal/exam"
)

func (s *SQLiteStore) CreateAttempt(ctx context.Context, attempt exam.Attempt) error {
	if attempt.AttemptID == "" {
		return errors.New("attempt id is required")
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO attempts (attempt_id, test_id, student_norm, started_at_unix, ends_at_unix)
		 VALUES (?, ?, ?, ?, ?)`,
		attempt.AttemptID,
		attempt.TestID,
		attempt.Student,
		attempt.StartTime.UnixNano(),
		attempt.EndTime.UnixNano(),
	)
	return err
}

func (s *SQLiteStore) GetAttempt(ctx context.Context, attemptID string) (exam.Attempt, error) {
	var (
		attempt         exam.Attempt
		startedAtUnix   int64
		endsAtUnix      int64
		submittedAtUnix sql.NullInt64
	)
	err := s.db.QueryRowContext(
		ctx,
		`SELECT attempt_id, test_id, student_norm, started_at_unix, ends_at_unix, submitted_at_unix
		 FROM attempts WHERE attempt_id = ?`,
		attemptID,
	).Scan(&attempt.AttemptID, &attempt.TestID, &attempt.Student, &startedAtUnix, &endsAtUnix, &submittedAtUnix)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return exam.Attempt{}, exam.ErrAttemptNotFound
		}
		return exam.Attempt{}, err
	}

	attempt.StartTime = time.Unix(0, startedAtUnix).UTC()
	attempt.EndTime = time.Unix(0, endsAtUnix).UTC()
	if submittedAtUnix.Valid {
		submittedAt := time.Unix(0, submittedAtUnix.Int64).UTC()
		attempt.SubmittedAt = &submittedAt
	}
	return attempt, nil
}

// SaveSubmission runs as a single transaction so the first submission wins
// deterministically.
//
// Invariants:
//   - submitted_at_unix transitions from NULL exactly once; the guarded
//     UPDATE is the only writer.
//   - A second submission never overwrites the stored result or answers.
func (s *SQLiteStore) SaveSubmission(ctx context.Context, attemptID string, answers []exam.Answer, result exam.Result, submittedAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	passed := 0
	if result.Passed {
		passed = 1
	}

	updateResult, err := tx.ExecContext(
		ctx,
		`UPDATE attempts
		 SET submitted_at_unix = ?, score = ?, total = ?, percentage = ?, passed = ?
		 WHERE attempt_id = ? AND submitted_at_unix IS NULL`,
		submittedAt.UnixNano(),
		result.Score,
		result.Total,
		result.Percentage,
		passed,
		attemptID,
	)
	if err != nil {
		return err
	}

	updated, err := updateResult.RowsAffected()
	if err != nil {
		return err
	}
	if updated == 0 {
		var found int
		err := tx.QueryRowContext(
			ctx,
			`SELECT 1 FROM attempts WHERE attempt_id = ? LIMIT 1`,
			attemptID,
		).Scan(&found)
		if errors.Is(err, sql.ErrNoRows) {
			return exam.ErrAttemptNotFound
		}
		if err != nil {
			return err
		}
		return exam.ErrAttemptAlreadySubmitted
	}

	for _, answer := range answers {
		markedForReview := 0
		if answer.MarkedForReview {
			markedForReview = 1
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT OR IGNORE INTO attempt_answers (attempt_id, question_id, selected_option_id, marked_for_review)
			 VALUES (?, ?, ?, ?)`,
			attemptID,
			answer.QuestionID,
			answer.SelectedOptionID,
			markedForReview,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetSubmission(ctx context.Context, attemptID string) ([]exam.Answer, exam.Result, error) {
	var (
		result      exam.Result
		score       sql.NullInt64
		total       sql.NullInt64
		percentage  sql.NullInt64
		passed      sql.NullInt64
		submittedAt sql.NullInt64
	)
	err := s.db.QueryRowContext(
		ctx,
		`SELECT submitted_at_unix, score, total, percentage, passed
		 FROM attempts WHERE attempt_id = ?`,
		attemptID,
	).Scan(&submittedAt, &score, &total, &percentage, &passed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, exam.Result{}, exam.ErrAttemptNotFound
		}
		return nil, exam.Result{}, err
	}
	if !submittedAt.Valid {
		return nil, exam.Result{}, exam.ErrAttemptNotFound
	}

	result.Score = int(score.Int64)
	result.Total = int(total.Int64)
	result.Percentage = int(percentage.Int64)
	result.Passed = passed.Int64 != 0

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT question_id, selected_option_id, marked_for_review
		 FROM attempt_answers WHERE attempt_id = ?`,
		attemptID,
	)
	if err != nil {
		return nil, exam.Result{}, err
	}
	defer rows.Close()

	answers := make([]exam.Answer, 0)
	for rows.Next() {
		var (
			answer          exam.Answer
			markedForReview int
		)
		if err := rows.Scan(&answer.QuestionID, &answer.SelectedOptionID, &markedForReview); err != nil {
			return nil, exam.Result{}, err
		}
		answer.MarkedForReview = markedForReview != 0
		answers = append(answers, answer)
	}

	return answers, result, rows.Err()
}
