package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	commoncfg "ptbxl-annotator/common/config"
	"ptbxl-annotator/common/httpclient"
	"ptbxl-annotator/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testDictionaryJSON = `{
  "NORM": ["Норма", "Normal ECG"],
  "UNK": [["ЭОС: не определена"], ["Heart axis: unknown"]],
  "ES": ["Экстрасистолы", "Extrasystoles"],
  "broken": ["only one language"],
  "also_broken": 42
}`

func TestLookupFold(t *testing.T) {
	dict := NewCodeDictionary(map[string]models.Phrase{
		"ES":  {{"Экстрасистолы"}, {"Extrasystoles"}},
		"svt": {{"lower"}, {"lower"}},
	})

	p, ok := LookupFold(dict, "es")
	require.True(t, ok)
	assert.Equal(t, "Extrasystoles", p[1][0])

	p, ok = LookupFold(dict, "svt")
	require.True(t, ok)
	assert.Equal(t, "lower", p[0][0], "exact case is tried first")

	_, ok = LookupFold(dict, "vt")
	assert.False(t, ok)

	_, ok = dict.Lookup("es")
	assert.False(t, ok, "exact lookup does not fold case")
}

func TestNewCodeDictionary_Copies(t *testing.T) {
	entries := map[string]models.Phrase{"NORM": {{"a"}, {"b"}}}
	dict := NewCodeDictionary(entries)
	delete(entries, "NORM")

	_, ok := dict.Lookup("NORM")
	assert.True(t, ok)
	assert.Equal(t, 1, dict.Len())
}

func TestParseDictionaryJSON_SkipsMalformedEntries(t *testing.T) {
	dict, err := ParseDictionaryJSON([]byte(testDictionaryJSON), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{"ES", "NORM", "UNK"}, dict.Codes())

	p, ok := dict.Lookup("UNK")
	require.True(t, ok)
	assert.Equal(t, models.Phrase{{"ЭОС: не определена"}, {"Heart axis: unknown"}}, p)
}

func TestParseDictionaryJSON_AlignsUnevenEntries(t *testing.T) {
	dict, err := ParseDictionaryJSON([]byte(`{
  "LAD": [["Отклонение ЭОС влево", "Горизонтальная ЭОС"], "Left axis deviation"],
  "EMPTY": [[], ["No Russian text"]]
}`), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{"LAD"}, dict.Codes())

	p, ok := dict.Lookup("LAD")
	require.True(t, ok)
	assert.Equal(t, models.Phrase{{"Отклонение ЭОС влево; Горизонтальная ЭОС"}, {"Left axis deviation"}}, p)
}

func TestParseDictionaryJSON_NotAnObject(t *testing.T) {
	_, err := ParseDictionaryJSON([]byte(`["NORM"]`), zap.NewNop())
	assert.Error(t, err)
}

func TestDictionaryLoader_FileAndURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dict.json")
	require.NoError(t, os.WriteFile(path, []byte(testDictionaryJSON), 0o644))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testDictionaryJSON))
	}))
	defer srv.Close()

	loader := NewDictionaryLoader(
		httpclient.NewClient(&commoncfg.HTTPConfig{Timeout: 5 * time.Second}),
		commoncfg.DatabaseConfig{},
		"ptbxl_dictionary",
		zap.NewNop(),
	)

	for _, source := range []string{path, srv.URL + "/dict.json"} {
		dict, err := loader.Load(context.Background(), source)
		require.NoError(t, err, source)
		assert.Equal(t, 3, dict.Len(), source)
	}

	_, err := loader.Load(context.Background(), filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.json")
}
