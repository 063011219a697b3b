package summary

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/imamik/kbstack/internal/config"
	"github.com/imamik/kbstack/internal/orchestration"
	"github.com/imamik/kbstack/internal/platform/bedrock"
	"github.com/imamik/kbstack/internal/provisioning"
	"github.com/imamik/kbstack/internal/provisioning/destroy"
	"github.com/imamik/kbstack/internal/query"
)

func TestResultSuccess(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	New(&buf, false).Result(&orchestration.Result{
		Region:            "us-east-1",
		AccountID:         "123456789012",
		Prefix:            "kb",
		Suffix:            "abc123",
		BucketName:        "kb-bucket-abc123",
		KnowledgeBaseName: "kb-kb-abc123",
		KnowledgeBaseID:   "KB123",
		IngestionJobID:    "JOB1",
		Ingestion:         bedrock.IngestionStatistics{Scanned: 2, NewIndexed: 2},
	})

	out := buf.String()
	assert.Contains(t, out, "[OK] Knowledge base stack ready")
	assert.Contains(t, out, "kb-abc123 in us-east-1 (account 123456789012)")
	assert.Contains(t, out, "kb-bucket-abc123")
	assert.Contains(t, out, "kb-kb-abc123 (KB123)")
	assert.Contains(t, out, "scanned=2 new=2 modified=0 deleted=0 failed=0")
	assert.NotContains(t, out, "Execution role")
	assert.NotContains(t, out, "\x1b[")
}

func TestResultFailureListsSurvivors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	New(&buf, false).Result(&orchestration.Result{
		Error: "collection phase failed: boom",
		Resources: []provisioning.Resource{
			{Kind: provisioning.ResourceRole, Name: "kb-role-abc123"},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "[!!] Provisioning failed")
	assert.Contains(t, out, "collection phase failed: boom")
	assert.Contains(t, out, "Left behind")
	assert.Contains(t, out, "kb-role-abc123")
	assert.Contains(t, out, "kbstack destroy")
}

func TestReport(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	New(&buf, false).Report(&destroy.Report{
		Deleted: []provisioning.Resource{{Kind: provisioning.ResourceBucket, Name: "kb-bucket-abc123"}},
		Errors: []destroy.ResourceError{{
			Resource: provisioning.Resource{Kind: provisioning.ResourceRole, Name: "kb-role-abc123"},
			Err:      errors.New("access denied"),
		}},
	})

	out := buf.String()
	assert.Contains(t, out, "Deleted 1 resources, 1 left behind")
	assert.Contains(t, out, "kb-bucket-abc123")
	assert.Contains(t, out, "kb-role-abc123: access denied")
}

func TestAnswer(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	New(&buf, false).Answer(&query.Answer{
		Text:      "Net income per share was $1.00",
		Citations: []string{"s3://bucket/doc.pdf"},
	})
	assert.Equal(t, "Net income per share was $1.00\n\nSources\n  s3://bucket/doc.pdf\n", buf.String())

	buf.Reset()
	New(&buf, false).Answer(&query.Answer{Text: "I don't know"})
	assert.Contains(t, buf.String(), "none")
}

func TestModels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	New(&buf, false).Models(config.EmbeddingModels())

	out := buf.String()
	assert.Contains(t, out, "MODEL")
	assert.Contains(t, out, "amazon.titan-embed-text-v2:0")
	assert.Contains(t, out, "256, 512, 1024")
}
