package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhrase_UnmarshalJSON(t *testing.T) {
	var p Phrase
	require.NoError(t, json.Unmarshal([]byte(`["Норма", "Normal ECG"]`), &p))
	assert.Equal(t, Phrase{{"Норма"}, {"Normal ECG"}}, p)

	require.NoError(t, json.Unmarshal([]byte(`[["ЭОС: норма", "угол 30"], ["Axis: normal", "angle 30"]]`), &p))
	assert.Equal(t, Phrase{{"ЭОС: норма", "угол 30"}, {"Axis: normal", "angle 30"}}, p)

	require.NoError(t, json.Unmarshal([]byte(`["Одна", ["One", "Two"]]`), &p))
	assert.Equal(t, Phrase{{"Одна"}, {"One; Two"}}, p)

	require.NoError(t, json.Unmarshal([]byte(`[["Отклонение ЭОС влево", "", "Горизонтальная ЭОС"], "Left axis deviation"]`), &p))
	assert.Equal(t, Phrase{{"Отклонение ЭОС влево; Горизонтальная ЭОС"}, {"Left axis deviation"}}, p)
}

func TestPhrase_UnmarshalJSON_Invalid(t *testing.T) {
	for _, in := range []string{`"text"`, `["only one"]`, `["a", "b", "c"]`, `[1, 2]`, `[null, "x"]`, `{}`, `[[], "x"]`, `["", "x"]`, `["  ", ["\n"]]`} {
		var p Phrase
		err := json.Unmarshal([]byte(in), &p)
		assert.True(t, errors.Is(err, ErrDictionaryEntry), "input %s: %v", in, err)
	}
}

func TestPhrase_Aligned(t *testing.T) {
	tests := []struct {
		name string
		in   Phrase
		want Phrase
		ok   bool
	}{
		{
			name: "equal counts unchanged",
			in:   Phrase{{"А", "Б"}, {"A", "B"}},
			want: Phrase{{"А", "Б"}, {"A", "B"}},
			ok:   true,
		},
		{
			name: "longer first language is folded",
			in:   Phrase{{"А", "Б", "В"}, {"A"}},
			want: Phrase{{"А; Б; В"}, {"A"}},
			ok:   true,
		},
		{
			name: "longer second language is folded into its last aligned line",
			in:   Phrase{{"А", "Б"}, {"A", "B", "C"}},
			want: Phrase{{"А", "Б"}, {"A", "B; C"}},
			ok:   true,
		},
		{
			name: "embedded newlines and blank lines",
			in:   Phrase{{"А\n\nБ"}, {"A", " ", "B\r"}},
			want: Phrase{{"А", "Б"}, {"A", "B"}},
			ok:   true,
		},
		{
			name: "language without text",
			in:   Phrase{{"А"}, {"", " "}},
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.in.Aligned()
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestBilingualText_RenderAndInvariant(t *testing.T) {
	text := NewBilingualText([LanguageCount]string{"Аннотация:", "Annotation:"})
	text.Append(Phrase{{"Синусовый ритм"}, {"Sinus rhythm"}})
	text.Append(Phrase{{"А", "Б"}, {"A"}})
	text.Append(Phrase{{"В"}, {"C", "D"}})
	text.Append(Phrase{{}, {}})
	text.Append(Phrase{{"только русский"}, {}})

	assert.Equal(t, 4, text.Len())
	assert.Len(t, text.Lines(0), 4)
	assert.Len(t, text.Lines(1), 4)

	out := text.Render()
	assert.Equal(t, 1, strings.Count(out, "\n\n"))
	blocks := strings.Split(out, "\n\n")
	require.Len(t, blocks, 2)
	assert.Equal(t, "Аннотация:\nСинусовый ритм\nА; Б\nВ", blocks[0])
	assert.Equal(t, "Annotation:\nSinus rhythm\nA\nC; D", blocks[1])
}

func TestPhrase_MapLines(t *testing.T) {
	p := Phrase{{"a", "b"}, {"c"}}
	got := p.MapLines(func(lang int, line string) string { return strings.ToUpper(line) })
	assert.Equal(t, Phrase{{"A", "B"}, {"C"}}, got)
	assert.Equal(t, Phrase{{"a", "b"}, {"c"}}, p)
}
