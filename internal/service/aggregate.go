package service

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"formbuilder/internal/model"
)

// QuestionSummary aggregates every answer given to one question.
type QuestionSummary struct {
	QuestionID uint               `json:"questionId"`
	Title      string             `json:"title"`
	Type       model.QuestionType `json:"type"`
	Count      int                `json:"count"`
	Average    *float64           `json:"average,omitempty"`
	MostCommon *string            `json:"mostCommon,omitempty"`
}

// TemplateSummary is the per-question aggregate of a template's responses.
type TemplateSummary struct {
	TemplateID    uint                     `json:"templateId"`
	ResponseCount int                      `json:"responseCount"`
	Questions     map[uint]QuestionSummary `json:"questions"`
}

// Aggregate summarises responses per question of template. Integer questions get the mean of
// their numeric answers rounded to two places; string and text questions get the most frequent
// value, ties going to the lexicographically smallest. Answers to unknown questions are ignored.
func Aggregate(template *model.Template, responses []model.Response) map[uint]QuestionSummary {
	values := make(map[uint][]json.RawMessage, len(template.Questions))
	for _, resp := range responses {
		for _, ans := range resp.Answers {
			if isNullJSON(ans.Value) {
				continue
			}
			values[ans.QuestionID] = append(values[ans.QuestionID], json.RawMessage(ans.Value))
		}
	}

	summaries := make(map[uint]QuestionSummary, len(template.Questions))
	for _, q := range template.Questions {
		vals := values[q.ID]
		summary := QuestionSummary{
			QuestionID: q.ID,
			Title:      q.Title,
			Type:       q.Type,
			Count:      len(vals),
		}
		switch q.Type {
		case model.QuestionTypeInteger:
			summary.Average = average(vals)
		case model.QuestionTypeString, model.QuestionTypeText:
			summary.MostCommon = mostCommon(vals)
		}
		summaries[q.ID] = summary
	}
	return summaries
}

func average(vals []json.RawMessage) *float64 {
	sum := decimal.Zero
	n := 0
	for _, v := range vals {
		i, ok := integerValue(v)
		if !ok {
			continue
		}
		sum = sum.Add(decimal.NewFromInt(i))
		n++
	}
	if n == 0 {
		return nil
	}
	avg := sum.Div(decimal.NewFromInt(int64(n))).Round(2).InexactFloat64()
	return &avg
}

func mostCommon(vals []json.RawMessage) *string {
	counts := make(map[string]int, len(vals))
	for _, v := range vals {
		counts[textValue(v)]++
	}
	if len(counts) == 0 {
		return nil
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best := keys[0]
	for _, k := range keys[1:] {
		if counts[k] > counts[best] {
			best = k
		}
	}
	return &best
}

// integerValue accepts JSON numbers and numeric strings holding a whole number within int64.
// Parsing is bounded: exponents that leave the int64 range are rejected, never expanded.
func integerValue(raw json.RawMessage) (int64, bool) {
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return 0, false
		}
		text = n.String()
	}
	text = strings.TrimSpace(text)

	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// textValue returns string answers verbatim and any other scalar as its JSON text.
func textValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}

func isNullJSON(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
