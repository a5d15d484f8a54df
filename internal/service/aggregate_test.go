package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"formbuilder/internal/model"
)

func responsesFor(questionID uint, values ...string) []model.Response {
	out := make([]model.Response, 0, len(values))
	for _, v := range values {
		out = append(out, model.Response{Answers: []model.Answer{{QuestionID: questionID, Value: datatypes.JSON(v)}}})
	}
	return out
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name           string
		qType          model.QuestionType
		values         []string
		wantCount      int
		wantAverage    *float64
		wantMostCommon *string
	}{
		{"integer mean", model.QuestionTypeInteger, []string{"2", "4", "6"}, 3, floatPtr(4), nil},
		{"integer rounds to two places", model.QuestionTypeInteger, []string{"1", "2", "2"}, 3, floatPtr(1.67), nil},
		{"integer accepts numeric strings", model.QuestionTypeInteger, []string{`"10"`, "5"}, 2, floatPtr(7.5), nil},
		{"integer ignores non numeric", model.QuestionTypeInteger, []string{`"abc"`, "3"}, 2, floatPtr(3), nil},
		{"integer accepts whole decimals", model.QuestionTypeInteger, []string{"4.0", `"6"`}, 2, floatPtr(5), nil},
		{"integer skips huge exponents", model.QuestionTypeInteger, []string{"1e100000000", "2"}, 2, floatPtr(2), nil},
		{"integer skips values beyond int64", model.QuestionTypeInteger, []string{"9223372036854775808", `"-1e19"`, "8"}, 3, floatPtr(8), nil},
		{"integer without answers", model.QuestionTypeInteger, nil, 0, nil, nil},
		{"integer without numeric answers", model.QuestionTypeInteger, []string{`"n/a"`}, 1, nil, nil},
		{"text most common", model.QuestionTypeText, []string{`"red"`, `"blue"`, `"red"`}, 3, nil, strPtr("red")},
		{"string tie goes to lexicographic first", model.QuestionTypeString, []string{`"pear"`, `"apple"`}, 2, nil, strPtr("apple")},
		{"string without answers", model.QuestionTypeString, nil, 0, nil, nil},
		{"null answers are not counted", model.QuestionTypeString, []string{"null", `"x"`}, 1, nil, strPtr("x")},
		{"checkbox count only", model.QuestionTypeCheckbox, []string{"true", `["a"]`}, 2, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := &model.Template{Questions: []model.Question{{ID: 1, Title: "q", Type: tt.qType}}}

			got := Aggregate(tpl, responsesFor(1, tt.values...))

			require.Contains(t, got, uint(1))
			summary := got[1]
			assert.Equal(t, tt.wantCount, summary.Count)
			assert.Equal(t, tt.wantAverage, summary.Average)
			assert.Equal(t, tt.wantMostCommon, summary.MostCommon)
		})
	}
}

func TestAggregate_IgnoresUnknownQuestions(t *testing.T) {
	tpl := &model.Template{Questions: []model.Question{{ID: 1, Type: model.QuestionTypeInteger}}}
	responses := []model.Response{{Answers: []model.Answer{
		{QuestionID: 1, Value: datatypes.JSON("4")},
		{QuestionID: 2, Value: datatypes.JSON("100")},
	}}}

	got := Aggregate(tpl, responses)

	assert.Len(t, got, 1)
	assert.Equal(t, floatPtr(4), got[1].Average)
}

func floatPtr(f float64) *float64 { return &f }

func TestIntegerValue(t *testing.T) {
	tests := []struct {
		raw    string
		want   int64
		wantOK bool
	}{
		{"42", 42, true},
		{`" 17 "`, 17, true},
		{"-3", -3, true},
		{"1e3", 1000, true},
		{"9223372036854775807", 9223372036854775807, true},
		{"9223372036854775808", 0, false},
		{"1e100000000", 0, false},
		{`"1e100000000"`, 0, false},
		{"2.5", 0, false},
		{`"NaN"`, 0, false},
		{`"Inf"`, 0, false},
		{"true", 0, false},
		{`"abc"`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := integerValue([]byte(tt.raw))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
