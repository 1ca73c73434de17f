package studentclient

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"testprep-app/internal/exam"
)

const (
	defaultServer      = "http://127.0.0.1:8080"
	defaultListLimit   = 20
	defaultHTTPTimeout = 5 * time.Second
)

type Config struct {
	Student     string
	ServerURL   string
	ListLimit   int
	HTTPTimeout time.Duration
}

func Run(ctx context.Context, in io.Reader, out io.Writer, cfg Config) error {
	student := strings.TrimSpace(cfg.Student)
	if student == "" {
		return errors.New("student name is required")
	}

	serverURL := strings.TrimSpace(cfg.ServerURL)
	if serverURL == "" {
		serverURL = defaultServer
	}

	listLimit := cfg.ListLimit
	if listLimit <= 0 {
		listLimit = defaultListLimit
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	client := NewHTTPClient(serverURL, &http.Client{Timeout: timeout})
	reader := bufio.NewReader(in)

	fmt.Fprintf(out, "testprep\nstudent=%s\nserver=%s\n\n", student, serverURL)
	printHelp(out)

	for {
		fmt.Fprint(out, "\n> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		args := strings.Fields(line)
		command := strings.ToLower(args[0])

		switch command {
		case "help":
			printHelp(out)
		case "exit":
			return nil
		case "tests":
			if err := runListTests(ctx, out, client, listLimit); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		case "start":
			if len(args) != 2 {
				fmt.Fprintln(out, "usage: start <test_id>")
				continue
			}
			if err := runAttempt(ctx, reader, out, client, student, args[1]); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		case "review":
			if len(args) != 2 {
				fmt.Fprintln(out, "usage: review <attempt_id>")
				continue
			}
			if err := runReview(ctx, out, client, args[1]); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		default:
			fmt.Fprintf(out, "unknown command %q (try help)\n", command)
		}
	}
}

func runListTests(ctx context.Context, out io.Writer, client *HTTPClient, limit int) error {
	tests, err := client.ListTests(ctx, limit)
	if err != nil {
		return err
	}

	if len(tests) == 0 {
		fmt.Fprintln(out, "no tests available")
		return nil
	}

	for _, test := range tests {
		fmt.Fprintf(out, "%s  %s  (%d questions, %s, pass at %d%%)\n",
			test.TestID, test.Name, test.QuestionCount, formatDuration(test.Duration), test.PassingScore)
	}
	return nil
}

func runAttempt(ctx context.Context, reader *bufio.Reader, out io.Writer, client *HTTPClient, student, testID string) error {
	attempt, err := client.StartAttempt(ctx, testID, student)
	if err != nil {
		return err
	}

	_, questions, err := client.GetTestQuestions(ctx, attempt.TestID)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\nattempt %s started, ends at %s\n", attempt.AttemptID, attempt.EndTime.Local().Format(time.Kitchen))

	session := exam.NewSession(attempt, questions, client, exam.TickerScheduler{}, exam.SessionEvents{
		OnAutoSubmit: func() {
			fmt.Fprintln(out, "\nTime is up. Submitting your answers automatically...")
		},
		OnSubmitted: func(result exam.Result) {
			printResult(out, result)
			fmt.Fprintln(out, "(press enter to continue)")
		},
		OnSubmitFailed: func(err error) {
			fmt.Fprintf(out, "\nsubmission failed: %v\nYour answers are kept; submit again to retry.\n", err)
		},
	})
	session.Start(ctx)
	defer session.Close()

	return attemptLoop(ctx, reader, out, session)
}

// attemptLoop drives one timed session. It is shared by the online and
// offline modes; the session's submitter decides where scoring happens.
func attemptLoop(ctx context.Context, reader *bufio.Reader, out io.Writer, session *exam.Session) error {
	printCurrentQuestion(out, session)

	for {
		if session.State() == exam.StateSubmitted {
			return nil
		}

		fmt.Fprint(out, "attempt> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}

		// Auto-submission may have finished while we were blocked on input.
		if session.State() == exam.StateSubmitted {
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		args := strings.Fields(line)
		command := strings.ToLower(args[0])

		switch command {
		case "help":
			printAttemptHelp(out)
		case "quit":
			fmt.Fprintln(out, "leaving attempt; unsubmitted answers are discarded")
			return nil
		case "a", "answer":
			if len(args) != 2 {
				fmt.Fprintln(out, "usage: answer <letter>")
				continue
			}
			handleAnswer(out, session, args[1])
		case "flag":
			_, question := session.Current()
			if err := session.ToggleReview(question.QuestionID); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			printCurrentQuestion(out, session)
		case "next":
			if err := session.Next(); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			printCurrentQuestion(out, session)
		case "prev":
			if err := session.Prev(); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			printCurrentQuestion(out, session)
		case "goto":
			if len(args) != 2 {
				fmt.Fprintln(out, "usage: goto <question number>")
				continue
			}
			number, parseErr := parseQuestionNumber(args[1])
			if parseErr != nil {
				fmt.Fprintf(out, "error: %v\n", parseErr)
				continue
			}
			if err := session.Goto(number - 1); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			printCurrentQuestion(out, session)
		case "status":
			printStatus(out, session)
		case "pause":
			session.Background()
			fmt.Fprintln(out, "attempt paused: interaction is disabled but the clock keeps running")
		case "resume":
			session.Foreground()
			if session.State() == exam.StateInProgress {
				fmt.Fprintf(out, "resumed, %s remaining\n", formatRemaining(session.Remaining()))
			}
		case "submit":
			handleSubmit(ctx, reader, out, session)
		default:
			fmt.Fprintf(out, "unknown command %q (try help)\n", command)
		}
	}
}

func handleAnswer(out io.Writer, session *exam.Session, raw string) {
	_, question := session.Current()

	letter := strings.ToUpper(strings.TrimSpace(raw))
	if len(letter) != 1 || letter[0] < 'A' || int(letter[0]-'A') >= len(question.Options) {
		maxLetter := byte('A' + len(question.Options) - 1)
		fmt.Fprintf(out, "please answer with a letter A-%c\n", maxLetter)
		return
	}

	option := question.Options[letter[0]-'A']
	if err := session.SelectOption(question.QuestionID, option.OptionID); err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}

	fmt.Fprintf(out, "recorded %s for question %d\n", letter, questionNumber(session))
	if err := session.Next(); err == nil {
		printCurrentQuestion(out, session)
	}
}

func handleSubmit(ctx context.Context, reader *bufio.Reader, out io.Writer, session *exam.Session) {
	result, err := session.Submit(ctx, false)
	if err == nil {
		_ = result // printed by the OnSubmitted event
		return
	}

	if errors.Is(err, exam.ErrUnansweredQuestions) {
		unanswered := session.Unanswered()
		fmt.Fprintf(out, "You have %d unanswered question(s). Submit anyway? (y/N): ", len(unanswered))
		if !promptYes(reader) {
			fmt.Fprintln(out, "submission cancelled")
			return
		}
		if _, err := session.Submit(ctx, true); err != nil && !errors.Is(err, exam.ErrSubmissionInFlight) {
			fmt.Fprintf(out, "error: %v\n", err)
		}
		return
	}

	// An expiry-driven submission racing the manual one is not an error
	// worth surfacing; the result arrives through the session events.
	if errors.Is(err, exam.ErrSubmissionInFlight) || errors.Is(err, exam.ErrAttemptAlreadySubmitted) {
		return
	}

	fmt.Fprintf(out, "error: %v\n", err)
}

func runReview(ctx context.Context, out io.Writer, client *HTTPClient, attemptID string) error {
	result, items, err := client.GetAttemptReview(ctx, attemptID)
	if err != nil {
		return err
	}

	printResult(out, result)
	for idx, item := range items {
		marker := "✗"
		if item.Correct {
			marker = "✓"
		}
		fmt.Fprintf(out, "\n%s Q%d: %s\n", marker, idx+1, item.Text)
		for _, option := range item.Options {
			suffix := ""
			if option.OptionID == item.CorrectOptionID {
				suffix = " (correct)"
			}
			if option.OptionID == item.SelectedOptionID && option.OptionID != item.CorrectOptionID {
				suffix = " (your answer)"
			}
			fmt.Fprintf(out, "  %s. %s%s\n", option.Label, option.Text, suffix)
		}
		if item.SelectedOptionID == "" {
			fmt.Fprintln(out, "  (not answered)")
		}
		if item.Explanation != "" {
			fmt.Fprintf(out, "  explanation: %s\n", item.Explanation)
		}
	}
	return nil
}
