package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"ptbxl-annotator/internal/config"
	"ptbxl-annotator/internal/metrics"
	"ptbxl-annotator/internal/models"
	"ptbxl-annotator/internal/repository"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubSource struct {
	rows []models.Row
	err  error
}

func (s *stubSource) ReadRows(ctx context.Context, source string) ([]models.Row, error) {
	return s.rows, s.err
}

type memoryStore struct {
	name  string
	err   error
	saved map[string]*models.AnnotationDocument
}

func (s *memoryStore) Name() string { return s.name }

func (s *memoryStore) Save(ctx context.Context, docs map[string]*models.AnnotationDocument) error {
	if s.err != nil {
		return s.err
	}
	s.saved = docs
	return nil
}

func testDictionary() repository.Dictionary {
	return repository.NewCodeDictionary(map[string]models.Phrase{
		"UNK":  {{"Ось не определена"}, {"Axis unknown"}},
		"NORM": {{"Норма"}, {"Normal ECG"}},
		"IMI":  {{"Инфаркт миокарда"}, {"Myocardial infarction"}},
	})
}

func testConfig(workers int) *config.Config {
	cfg := config.Default()
	cfg.Annotator.Workers = workers
	return cfg
}

func newTestService(source RowSource, stores []repository.AnnotationStore, m *metrics.Metrics) *AnnotatorService {
	s := NewAnnotatorService(testConfig(4), testDictionary(), source, stores, m, zap.NewNop())
	s.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }
	return s
}

func normRow(id string) models.Row {
	return models.Row{"ecg_id": id, "scp_codes": "{'NORM': 100.0}"}
}

func TestBuildAnnotations(t *testing.T) {
	rows := make([]models.Row, 0, 50)
	for i := 1; i <= 50; i++ {
		rows = append(rows, normRow(fmt.Sprint(i)))
	}
	s := newTestService(&stubSource{}, nil, nil)

	batch, err := s.BuildAnnotations(context.Background(), rows)
	require.NoError(t, err)

	assert.Equal(t, 50, batch.Rows)
	assert.Len(t, batch.Documents, 50)
	assert.Zero(t, batch.Duplicates)

	doc := batch.Documents["00007_hr"]
	require.NotNil(t, doc)
	assert.Equal(t, "00007_hr", doc.Record)
	assert.Equal(t, "2024-05-06T07:08:09.000000Z", doc.Date)
	assert.Equal(t, "Аннотация PTB-XL:\nОсь не определена\nНорма\n\nPTB-XL annotation:\nAxis unknown\nNormal ECG", doc.Comment)
}

func TestBuildAnnotations_DuplicateIDsLastRowWins(t *testing.T) {
	m := metrics.New()
	s := newTestService(&stubSource{}, nil, m)
	rows := []models.Row{
		normRow("7"),
		{"ecg_id": "8", "scp_codes": "{'NORM': 100.0}"},
		{"ecg_id": "7.0", "scp_codes": "{'IMI': 100.0}"},
	}

	batch, err := s.BuildAnnotations(context.Background(), rows)
	require.NoError(t, err)

	assert.Len(t, batch.Documents, 2)
	assert.Equal(t, 1, batch.Duplicates)
	assert.Contains(t, batch.Documents["00007_hr"].Comment, "Myocardial infarction")
	expected := `
# HELP ptbxl_annotator_duplicate_records_total Rows whose record name was already produced earlier in the table
# TYPE ptbxl_annotator_duplicate_records_total counter
ptbxl_annotator_duplicate_records_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "ptbxl_annotator_duplicate_records_total"))
}

func TestBuildAnnotations_MalformedSCPCodes(t *testing.T) {
	s := newTestService(&stubSource{}, nil, nil)
	rows := []models.Row{
		normRow("1"),
		{"ecg_id": "2", "scp_codes": "{'NORM': 100.0"},
	}

	_, err := s.BuildAnnotations(context.Background(), rows)
	require.Error(t, err)

	var scpErr *models.SCPCodesError
	require.ErrorAs(t, err, &scpErr)
	assert.Equal(t, 2, scpErr.ECGID)
	assert.Contains(t, err.Error(), "row 3")
}

func TestBuildAnnotations_Canceled(t *testing.T) {
	s := newTestService(&stubSource{}, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.BuildAnnotations(ctx, []models.Row{normRow("1"), normRow("2")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun(t *testing.T) {
	m := metrics.New()
	file := &memoryStore{name: "file"}
	stream := &memoryStore{name: "redis"}
	source := &stubSource{rows: []models.Row{normRow("1"), normRow("2"), normRow("3")}}
	s := newTestService(source, []repository.AnnotationStore{file, stream}, m)

	summary, err := s.Run(context.Background(), "ptbxl_database.csv")
	require.NoError(t, err)

	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 3, summary.Rows)
	assert.Equal(t, 3, summary.Documents)
	assert.Equal(t, []string{"file", "redis"}, summary.Stores)
	assert.Len(t, file.saved, 3)
	assert.Len(t, stream.saved, 3)
}

func TestRun_Errors(t *testing.T) {
	t.Run("source failure", func(t *testing.T) {
		s := newTestService(&stubSource{err: errors.New("no such file")}, nil, nil)
		_, err := s.Run(context.Background(), "missing.csv")
		assert.ErrorContains(t, err, "failed to read annotation table")
	})

	t.Run("store failure aborts", func(t *testing.T) {
		failing := &memoryStore{name: "mqtt", err: assert.AnError}
		after := &memoryStore{name: "file"}
		source := &stubSource{rows: []models.Row{normRow("1")}}
		s := newTestService(source, []repository.AnnotationStore{failing, after}, nil)

		_, err := s.Run(context.Background(), "table.csv")
		require.ErrorIs(t, err, assert.AnError)
		assert.True(t, strings.Contains(err.Error(), "mqtt store"))
		assert.Nil(t, after.saved)
	})
}
