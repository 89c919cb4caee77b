package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelection(t *testing.T) {
	for _, s := range []string{"Original", "Advanced"} {
		sel, ok := ParseSelection(s)
		assert.True(t, ok, s)
		assert.Equal(t, Selection(s), sel)
	}
	for _, s := range []string{"", "original", "Both"} {
		sel, ok := ParseSelection(s)
		assert.False(t, ok, s)
		assert.Equal(t, SelectionNone, sel)
	}
}

func TestCommentVariant(t *testing.T) {
	c := Comment{
		Original: []CommentResponse{{Response: "first"}, {Response: "second"}},
	}
	got, ok := c.Variant(SelectionOriginal)
	require.True(t, ok)
	assert.Equal(t, "first", got)

	_, ok = c.Variant(SelectionAdvanced)
	assert.False(t, ok, "empty variant list")
}

func TestErrorMatching(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("save: %w", NewError(ErrPersistence, "write feedback", cause))

	assert.True(t, errors.Is(err, Code(ErrPersistence)))
	assert.False(t, errors.Is(err, Code(ErrValidation)))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ErrPersistence, CodeOf(err))
	assert.Equal(t, "save: write feedback: disk full", err.Error())

	var v error = &ValidationError{Field: "selected_option", Message: "required"}
	assert.True(t, errors.Is(v, Code(ErrValidation)))
	assert.Equal(t, ErrValidation, CodeOf(fmt.Errorf("wrap: %w", v)))
	assert.Equal(t, "selected_option: required", v.Error())

	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
}

func TestMalformedError(t *testing.T) {
	err := &MalformedError{Source: "survey.csv", Cells: []CellError{
		{Row: 1, Column: "q1", Value: "abc"},
		{Row: 2, Column: "q1", Value: "?"},
		{Row: 3, Column: "q2", Value: "x"},
		{Row: 4, Column: "q2", Value: "y"},
	}}
	msg := err.Error()
	assert.Contains(t, msg, "4 malformed cell(s)")
	assert.Contains(t, msg, `row 1 "q1"="abc"`)
	assert.Contains(t, msg, ", ...")
	assert.NotContains(t, msg, `"y"`)
	assert.Equal(t, ErrMalformed, CodeOf(err))
	assert.True(t, errors.Is(err, Code(ErrMalformed)))
}

func TestRegistryValidate(t *testing.T) {
	scale := Question{Text: "리더의 동기부여", Short: "동기부여", Kind: KindScale, ScaleMin: 1, ScaleMax: 5}
	multi := Question{Text: "문제점", Kind: KindMultiSelect, Choices: []string{"소통", "보상"}}

	tests := []struct {
		name    string
		reg     Registry
		wantErr bool
	}{
		{"valid", Registry{Questions: []Question{scale, multi}}, false},
		{"empty", Registry{}, true},
		{"blank text", Registry{Questions: []Question{{Text: " ", Kind: KindScale}}}, true},
		{"duplicate", Registry{Questions: []Question{scale, scale}}, true},
		{"inverted scale", Registry{Questions: []Question{{Text: "q", Kind: KindScale, ScaleMin: 5, ScaleMax: 1}}}, true},
		{"no choices", Registry{Questions: []Question{{Text: "q", Kind: KindMultiSelect}}}, true},
		{"unknown kind", Registry{Questions: []Question{{Text: "q", Kind: "free"}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.reg.Validate()
			if tt.wantErr {
				assert.Equal(t, ErrInvalidInput, CodeOf(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRegistryLookup(t *testing.T) {
	reg := Registry{
		Categories: []string{"성별", "직급"},
		Questions: []Question{
			{Text: "리더의 동기부여", Short: "동기부여", Kind: KindScale},
			{Text: "문제점", Kind: KindMultiSelect, Choices: []string{"소통"}},
			{Text: "업무 몰입", Kind: KindScale},
		},
	}
	q, ok := reg.Question("동기부여")
	require.True(t, ok)
	assert.Equal(t, "리더의 동기부여", q.Text)
	assert.Equal(t, "동기부여", q.Label())

	_, ok = reg.Question("없음")
	assert.False(t, ok)

	assert.Len(t, reg.ScaleQuestions(), 2)
	assert.Equal(t, "업무 몰입", reg.ScaleQuestions()[1].Label())
	assert.Len(t, reg.MultiSelectQuestions(), 1)
	assert.True(t, reg.IsCategory("직급"))
	assert.False(t, reg.IsCategory("연령"))
}

func TestResponseRecord(t *testing.T) {
	rec := ResponseRecord{
		"성별":    TextAnswer(" 남 "),
		"점수":    NumberAnswer(4),
		"빈칸":    TextAnswer("  "),
		"텍스트점수": TextAnswer("4점"),
	}

	got, ok := rec.Text("성별")
	assert.True(t, ok)
	assert.Equal(t, "남", got)

	score, ok := rec.Score("점수")
	assert.True(t, ok)
	assert.Equal(t, 4.0, score)
	assert.Equal(t, "4", rec["점수"].String())

	_, ok = rec.Get("빈칸")
	assert.False(t, ok, "blank cells are missing")
	_, ok = rec.Score("텍스트점수")
	assert.False(t, ok, "text cells have no score")
	_, ok = rec.Get("absent")
	assert.False(t, ok)

	next := rec.With("연령대", TextAnswer("30대"))
	_, had := rec["연령대"]
	assert.False(t, had, "With must not mutate the receiver")
	assert.Equal(t, "30대", next["연령대"].Raw)
}
