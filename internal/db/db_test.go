package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionStepConstants(t *testing.T) {
	steps := []string{
		StepCompany,
		StepPosition,
		StepSalary,
		StepResult,
	}

	for _, step := range steps {
		assert.NotEmpty(t, step, "step constant should not be empty")
	}
}

func TestEvalSessionType(t *testing.T) {
	code := "15-1252"
	s := EvalSession{
		CompanyName:    "Acme Corp",
		Employees:      50,
		AnnualRevenue:  5000000,
		PositionTitle:  "Software Engineer",
		OccupationCode: &code,
		ProposedSalary: 95000,
		Step:           StepSalary,
	}

	assert.Equal(t, "Acme Corp", s.CompanyName)
	assert.Equal(t, StepSalary, s.Step)
	assert.Equal(t, "15-1252", *s.OccupationCode)
}

func TestFeedbackRecordType(t *testing.T) {
	f := FeedbackRecord{
		Category: "bug",
		Message:  "Percentile looks off",
	}

	assert.Equal(t, "bug", f.Category)
	assert.Nil(t, f.IssueURL)
}
