package studentclient

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"testprep-app/internal/exam"
)

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  help")
	fmt.Fprintln(out, "  tests")
	fmt.Fprintln(out, "  start <test_id>")
	fmt.Fprintln(out, "  review <attempt_id>")
	fmt.Fprintln(out, "  exit")
}

func printAttemptHelp(out io.Writer) {
	fmt.Fprintln(out, "Attempt commands:")
	fmt.Fprintln(out, "  answer <letter>   record an answer for the current question")
	fmt.Fprintln(out, "  flag              toggle the review flag on the current question")
	fmt.Fprintln(out, "  next / prev       move between questions")
	fmt.Fprintln(out, "  goto <n>          jump to question n")
	fmt.Fprintln(out, "  status            remaining time and progress")
	fmt.Fprintln(out, "  pause / resume    background / foreground the attempt")
	fmt.Fprintln(out, "  submit            submit the attempt")
	fmt.Fprintln(out, "  quit              abandon the attempt")
}

func printCurrentQuestion(out io.Writer, session *exam.Session) {
	index, question := session.Current()
	if question.QuestionID == "" {
		return
	}

	total := len(session.Questions())
	answer, _ := session.AnswerFor(question.QuestionID)

	fmt.Fprintln(out)
	header := fmt.Sprintf("Q%d/%d", index+1, total)
	if answer.MarkedForReview {
		header += " [flagged]"
	}
	fmt.Fprintf(out, "%s: %s\n\n", header, question.Text)
	for _, option := range question.Options {
		marker := "  "
		if option.OptionID == answer.SelectedOptionID {
			marker = "* "
		}
		fmt.Fprintf(out, "%s%s. %s\n", marker, option.Label, option.Text)
	}
	fmt.Fprintln(out)
}

func printStatus(out io.Writer, session *exam.Session) {
	total := len(session.Questions())
	flagged := 0
	for _, question := range session.Questions() {
		if answer, ok := session.AnswerFor(question.QuestionID); ok && answer.MarkedForReview {
			flagged++
		}
	}

	fmt.Fprintf(out, "time remaining: %s\n", formatRemaining(session.Remaining()))
	fmt.Fprintf(out, "answered: %d/%d, flagged: %d\n", session.AnsweredCount(), total, flagged)
	if session.Backgrounded() {
		fmt.Fprintln(out, "attempt is paused")
	}
}

func printResult(out io.Writer, result exam.Result) {
	verdict := "FAILED"
	if result.Passed {
		verdict = "PASSED"
	}
	fmt.Fprintf(out, "\nResult: %d/%d correct (%d%%) - %s\n", result.Score, result.Total, result.Percentage, verdict)
}

func questionNumber(session *exam.Session) int {
	index, _ := session.Current()
	return index + 1
}

func parseQuestionNumber(raw string) (int, error) {
	number, err := strconv.Atoi(raw)
	if err != nil || number <= 0 {
		return 0, errors.New("question number must be a positive integer")
	}
	return number, nil
}

func promptYes(reader *bufio.Reader) bool {
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func formatRemaining(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	if seconds >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func formatDuration(d time.Duration) string {
	minutes := int(d / time.Minute)
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	if minutes%60 == 0 {
		return fmt.Sprintf("%d h", minutes/60)
	}
	return fmt.Sprintf("%d h %d min", minutes/60, minutes%60)
}
