package telegram

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"question_cycle_service/internal/app"
	"question_cycle_service/internal/domain/question"
)

var errAddQuestionUsage = errors.New("usage: /add_question <region> <cycle> <text>")

const helpText = "Available commands:\n\n" +
	"/question <region> - Show the question of the current cycle for a region.\n" +
	"/cycle - Show the current cycle and when the next one starts.\n" +
	"/help - Show this message."

const adminHelpText = "\n\nAdmin commands:\n\n" +
	"/add_question <region> <cycle> <text> - Add a question for a region and cycle.\n" +
	"/list_questions [region] - List stored questions, optionally for one region."

// formatAssignment renders a resolved assignment for chat.
func formatAssignment(a app.Assignment) string {
	if !a.Found() {
		return a.Message()
	}
	return fmt.Sprintf("Question of cycle %d for %s:\n\n%s", a.Question.AssignedCycle, a.Question.Region, a.Question.Text)
}

func formatCycle(info app.CycleInfo) string {
	return fmt.Sprintf("Current cycle: %d (started %s). Next cycle starts %s (%s).",
		info.Cycle,
		info.StartedAt.Format(time.DateOnly),
		info.NextStart.Format("2006-01-02 15:04"),
		info.Timezone)
}

func formatRollover(result app.RolloverResult) string {
	if len(result.Regions) == 0 {
		return fmt.Sprintf("Cycle %d rollover finished. No region has a question assigned for this cycle.", result.Cycle)
	}
	regions := append([]string(nil), result.Regions...)
	sort.Strings(regions)
	return fmt.Sprintf("Cycle %d rollover finished. Refreshed %d region(s): %s.", result.Cycle, len(regions), strings.Join(regions, ", "))
}

// formatQuestionList groups questions by region and cycle. When region is not
// empty only that region is listed.
func formatQuestionList(questions []*question.Question, region string) string {
	filtered := make([]*question.Question, 0, len(questions))
	for _, q := range questions {
		if region == "" || strings.EqualFold(q.Region, region) {
			filtered = append(filtered, q)
		}
	}
	if len(filtered) == 0 {
		return "No questions found."
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].Region != filtered[j].Region {
			return filtered[i].Region < filtered[j].Region
		}
		return filtered[i].AssignedCycle < filtered[j].AssignedCycle
	})

	var b strings.Builder
	b.WriteString(fmt.Sprintf("--- Questions (%d) ---\n", len(filtered)))
	for _, q := range filtered {
		b.WriteString(fmt.Sprintf("%s, cycle %d: %s\n", q.Region, q.AssignedCycle, q.Text))
	}
	return b.String()
}

// parseAddQuestion splits "<region> <cycle> <text...>".
func parseAddQuestion(payload string) (region string, cycle int, text string, err error) {
	fields := strings.Fields(payload)
	if len(fields) < 3 {
		return "", 0, "", errAddQuestionUsage
	}
	cycle, err = strconv.Atoi(fields[1])
	if err != nil || cycle < 1 {
		return "", 0, "", fmt.Errorf("cycle must be a positive number, got %q", fields[1])
	}
	return fields[0], cycle, strings.Join(fields[2:], " "), nil
}
