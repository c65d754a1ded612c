package aijson

import (
	"testing"

	"github.com/echoprep/echoprep_backend/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestExtractObject(t *testing.T) {
	got, ok := ExtractObject("Sure! Here you go:\n```json\n{\"a\":{\"b\":1}}\n```\nHope it helps")
	assert.True(t, ok)
	assert.Equal(t, `{"a":{"b":1}}`, got)

	_, ok = ExtractObject("no braces here")
	assert.False(t, ok)

	_, ok = ExtractObject("} backwards {")
	assert.False(t, ok)
}

func TestDecodeJudgementOK(t *testing.T) {
	raw := "```json\n{\"overallScore\":\"85\",\"technicalScore\":80,\"communicationScore\":90,\"summary\":\"Solid\",\"strengths\":[\"SQL\"]}\n```"
	res := Decode(raw, domain.DefaultJudgement())

	assert.True(t, res.OK())
	assert.Equal(t, 85, res.Value.OverallScore.Int())
	assert.Equal(t, "Solid", res.Value.Summary)
	assert.Equal(t, []string{"SQL"}, res.Value.Strengths)
	// omitted lists keep the seed
	assert.Equal(t, []string{}, res.Value.Actions)
}

func TestDecodeKeepsSeedSummaryWhenOmitted(t *testing.T) {
	res := Decode(`{"overallScore":50}`, domain.DefaultJudgement())
	assert.True(t, res.OK())
	assert.Equal(t, domain.PendingSummary, res.Value.Summary)
}

func TestDecodeParseError(t *testing.T) {
	res := Decode("I cannot grade this interview.", domain.DefaultJudgement())
	assert.Equal(t, ParseError, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrNoObject)
	assert.Equal(t, domain.PendingSummary, res.Value.Summary)

	res = Decode(`{"overallScore": 50,}`, domain.DefaultJudgement())
	assert.Equal(t, ParseError, res.Outcome)
}

func TestDecodeSchemaErrorOnWrongListType(t *testing.T) {
	res := Decode(`{"overallScore":50,"strengths":"everything"}`, domain.DefaultJudgement())
	assert.Equal(t, SchemaError, res.Outcome)
	assert.Equal(t, 0, res.Value.OverallScore.Int())
}

func TestDecodeATSReport(t *testing.T) {
	raw := `{"score":78,"status":"Good","message":"Clean layout.","issues":["Add metrics"]}`
	res := Decode(raw, domain.ATSReport{})
	assert.True(t, res.OK())
	assert.Equal(t, 78, res.Value.Score.Int())

	res = Decode(`{"score":78,"status":"Needs Improvement","message":"m","issues":["x"]}`, domain.ATSReport{})
	assert.True(t, res.OK(), "quoted oneof value with a space")

	res = Decode(`{"score":78,"status":"Amazing","message":"m","issues":["x"]}`, domain.ATSReport{})
	assert.Equal(t, SchemaError, res.Outcome)

	res = Decode(`{"status":"Good","message":"m","issues":["x"]}`, domain.ATSReport{})
	assert.Equal(t, SchemaError, res.Outcome, "missing score")

	res = Decode(`{"score":50,"status":"Good","message":"m","issues":[]}`, domain.ATSReport{})
	assert.Equal(t, SchemaError, res.Outcome, "empty issues")
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "ok", OK.String())
	assert.Equal(t, "parse_error", ParseError.String())
	assert.Equal(t, "schema_error", SchemaError.String())
}
