package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodePatch(t *testing.T, raw string) Patch {
	t.Helper()
	var p Patch
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	return p
}

func fieldCode(t *testing.T, err error, field string) string {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	detail, ok := verr.Fields[field]
	require.True(t, ok, "no error for %q in %v", field, verr.Fields)
	return detail.Code
}

func TestParseID(t *testing.T) {
	id, err := ParseID("team_id", " 12 ", "Team ID")
	require.NoError(t, err)
	assert.Equal(t, uint(12), id)

	_, err = ParseID("team_id", "", "Team ID")
	assert.Equal(t, CodeBlank, fieldCode(t, err, "team_id"))
	assert.Equal(t, "Team ID cannot be empty.", err.(*ValidationError).Fields["team_id"].String)

	for _, raw := range []string{"abc", "-1", "0", "1.5"} {
		_, err = ParseID("team_id", raw, "Team ID")
		assert.Equal(t, CodeInvalid, fieldCode(t, err, "team_id"), raw)
	}
}

func TestPatchBlankVersusAbsent(t *testing.T) {
	p := decodePatch(t, `{"title": "", "done": null, "order": 0, "note": "  "}`)

	assert.True(t, p.Blank("title"))
	assert.True(t, p.Blank("done"))
	assert.True(t, p.Blank("note"))
	assert.False(t, p.Blank("order"), "zero is a value")
	assert.False(t, p.Blank("missing"))
	assert.False(t, p.Has("missing"))
}

func TestCheckNotBlankReportsFirstRule(t *testing.T) {
	p := decodePatch(t, `{"title": "", "order": ""}`)

	err := p.CheckNotBlank(
		FieldRule{Key: "done", Field: "data.done", Message: "Done cannot be empty."},
		FieldRule{Key: "title", Field: "data.title", Message: "Title cannot be empty."},
		FieldRule{Key: "order", Field: "data.order", Message: "Order cannot be empty."},
	)
	assert.Equal(t, CodeBlank, fieldCode(t, err, "data.title"))
	assert.Len(t, err.(*ValidationError).Fields, 1)

	assert.NoError(t, decodePatch(t, `{}`).CheckNotBlank(FieldRule{Key: "title", Field: "title"}))
}

func TestPatchDecoders(t *testing.T) {
	p := decodePatch(t, `{"n": 3, "s": "4", "b": true, "bs": "false", "t": "hi", "d": null, "bad": [1]}`)

	n, err := p.Int("n", "n")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = p.Int("s", "s")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	b, err := p.Bool("b", "b")
	require.NoError(t, err)
	assert.True(t, b)

	b, err = p.Bool("bs", "bs")
	require.NoError(t, err)
	assert.False(t, b)

	s, err := p.Text("t", "t")
	require.NoError(t, err)
	assert.Equal(t, "hi", s)

	d, err := p.OptionalText("d", "d")
	require.NoError(t, err)
	assert.Nil(t, d)

	_, err = p.Int("bad", "bad")
	assert.Equal(t, CodeInvalid, fieldCode(t, err, "bad"))
	_, err = p.Bool("t", "t")
	assert.Equal(t, CodeInvalid, fieldCode(t, err, "t"))
	_, err = p.Text("n", "n")
	assert.Equal(t, CodeInvalid, fieldCode(t, err, "n"))
}

func TestPatchID(t *testing.T) {
	p := decodePatch(t, `{"a": 5, "b": "6", "c": "", "d": "x", "e": 0}`)

	id, err := p.ID("a", "a", "Task ID")
	require.NoError(t, err)
	assert.Equal(t, uint(5), id)

	id, err = p.ID("b", "b", "Task ID")
	require.NoError(t, err)
	assert.Equal(t, uint(6), id)

	_, err = p.ID("c", "c", "Task ID")
	assert.Equal(t, CodeBlank, fieldCode(t, err, "c"))
	_, err = p.ID("missing", "missing", "Task ID")
	assert.Equal(t, CodeBlank, fieldCode(t, err, "missing"))
	_, err = p.ID("d", "d", "Task ID")
	assert.Equal(t, CodeInvalid, fieldCode(t, err, "d"))
	_, err = p.ID("e", "e", "Task ID")
	assert.Equal(t, CodeInvalid, fieldCode(t, err, "e"))
}

func TestPatchErrorsOnNestedFields(t *testing.T) {
	data := decodePatch(t, `{"title": 5}`)

	_, err := data.Text("title", "data.title")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, ErrorDetail{String: "Title must be a string.", Code: CodeInvalid}, verr.Fields["data.title"])
}
