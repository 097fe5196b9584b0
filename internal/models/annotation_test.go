package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnotationDocument_MarshalIndent(t *testing.T) {
	doc := &AnnotationDocument{
		Version:             AnnotationVersion,
		Type:                AnnotationType,
		Date:                "2026-10-16T08:00:00.000000Z",
		Annotator:           AnnotatorName,
		Database:            DatabaseName,
		Record:              "00007_hr",
		ConclusionThesaurus: ConclusionThesaurus,
		Comment:             "Аннотация PTB-XL:\n<норма>\n\nPTB-XL annotation:\n<normal> & more",
	}

	data, err := doc.MarshalIndent()
	require.NoError(t, err)

	want := `{
  "version": 1,
  "type": "STANDARD",
  "date": "2026-10-16T08:00:00.000000Z",
  "annotator": "PTB-XL annotators",
  "database": "PTB-XL ECG Dataset",
  "record": "00007_hr",
  "conclusionThesaurus": "PTB-XL ECG Dataset",
  "conclusions": [],
  "comment": "Аннотация PTB-XL:\n<норма>\n\nPTB-XL annotation:\n<normal> & more"
}`
	assert.Equal(t, want, string(data))
	assert.Nil(t, doc.Conclusions, "marshal must not mutate the document")
}
