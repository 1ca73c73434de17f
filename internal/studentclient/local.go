package studentclient

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"testprep-app/internal/exam"
	"testprep-app/internal/seed"
)

// RunOffline runs a timed practice session straight from a local test-bank
// file, scoring locally with the same session machinery the online mode
// uses. No network, no persistence.
func RunOffline(ctx context.Context, in io.Reader, out io.Writer, path, testID string) error {
	file, err := seed.LoadFile(path)
	if err != nil {
		return err
	}

	spec, err := pickTest(file, testID)
	if err != nil {
		return err
	}

	test, questions := seed.Build(spec)
	now := time.Now().UTC()
	attempt := exam.Attempt{
		AttemptID: uuid.NewString(),
		TestID:    test.TestID,
		Student:   "offline",
		StartTime: now,
		EndTime:   now.Add(test.Duration),
	}

	fmt.Fprintf(out, "offline practice: %s (%d questions, %s, pass at %d%%)\n",
		test.Name, len(questions), formatDuration(test.Duration), test.PassingScore)

	submitter := localSubmitter{questions: questions, passingScore: test.PassingScore}
	reader := bufio.NewReader(in)

	session := exam.NewSession(attempt, questions, submitter, exam.TickerScheduler{}, exam.SessionEvents{
		OnAutoSubmit: func() {
			fmt.Fprintln(out, "\nTime is up. Scoring your answers...")
		},
		OnSubmitted: func(result exam.Result) {
			printResult(out, result)
			fmt.Fprintln(out, "(press enter to continue)")
		},
	})
	session.Start(ctx)
	defer session.Close()

	return attemptLoop(ctx, reader, out, session)
}

func pickTest(file seed.File, testID string) (seed.TestSpec, error) {
	testID = strings.TrimSpace(testID)
	if testID == "" {
		return file.Tests[0], nil
	}
	for _, spec := range file.Tests {
		if spec.TestID == testID {
			return spec, nil
		}
	}
	return seed.TestSpec{}, errors.New("test " + testID + " not found in file")
}

// localSubmitter scores in memory, playing the service's role for offline
// practice.
type localSubmitter struct {
	questions    []exam.Question
	passingScore int
}

func (s localSubmitter) Submit(_ context.Context, _ string, answers []exam.Answer) (exam.Result, error) {
	return exam.ScoreAnswers(s.questions, answers, s.passingScore), nil
}
