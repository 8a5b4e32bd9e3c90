package agent

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/diogo/tobchat/internal/errors"
	"github.com/diogo/tobchat/internal/models"
	"github.com/diogo/tobchat/internal/tools"
)

func newTool(t *testing.T) *CompanyInfoTool {
	t.Helper()
	tool, err := NewCompanyInfoTool(zerolog.Nop())
	require.NoError(t, err)
	tool.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return tool
}

func TestEmbeddedKnowledgeCoversEveryType(t *testing.T) {
	tool := newTool(t)
	for _, typ := range models.CompanyInfoTypes {
		entry, ok := tool.entries[typ]
		require.True(t, ok, "missing %s", typ)
		assert.NotEmpty(t, entry.Content, typ)
		assert.NotEmpty(t, entry.Keywords, typ)
	}
}

func TestLookup(t *testing.T) {
	tool := newTool(t)

	res, err := tool.Lookup("contact-info", "How can I reach you?")
	require.NoError(t, err)
	assert.Equal(t, "Contact us at info@company.com or +1-800-123-4567.", res.Content)
	assert.Equal(t, "company_database", res.Source)
	assert.Equal(t, 0.95, res.Score)
	assert.Equal(t, "contact-info", res.Metadata["infoType"])
	assert.Equal(t, "2026-01-02T03:04:05Z", res.Metadata["timestamp"])
}

func TestLookup_Errors(t *testing.T) {
	tool := newTool(t)

	tests := []struct {
		name     string
		infoType string
		query    string
	}{
		{"empty query", "services", "   "},
		{"query over tool limit", "services", strings.Repeat("q", MaxToolQueryRunes+1)},
		{"unknown type", "weather", "Is it sunny?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tool.Lookup(tt.infoType, tt.query)
			require.Error(t, err)
			ce := apierrors.HandleChatbotError(err, models.ErrMsgGeneral)
			assert.Equal(t, apierrors.CodeInvalidQuery, ce.Code)
			assert.Equal(t, 400, ce.StatusCode)
		})
	}
}

func TestLookup_MissingCategory(t *testing.T) {
	tool, err := NewCompanyInfoToolFromYAML([]byte("services:\n  content: Only services.\n"), zerolog.Nop())
	require.NoError(t, err)

	res, err := tool.Lookup("policies", "What is the return policy?")
	require.NoError(t, err)
	assert.Equal(t, noInformation, res.Content)
}

func TestNewCompanyInfoToolFromYAML_Invalid(t *testing.T) {
	_, err := NewCompanyInfoToolFromYAML([]byte("weather:\n  content: sunny\n"), zerolog.Nop())
	assert.Error(t, err)

	_, err = NewCompanyInfoToolFromYAML([]byte("{not: [yaml"), zerolog.Nop())
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	tool := newTool(t)

	tests := []struct {
		query string
		want  []models.CompanyInfoType
	}{
		{"Who leads the IT department?", []models.CompanyInfoType{models.InfoCompanyStructure}},
		{"What SERVICES do you offer?", []models.CompanyInfoType{models.InfoServices}},
		{"Give me your email and return policy", []models.CompanyInfoType{models.InfoContactInfo, models.InfoPolicies}},
		{"What's the weather like?", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, tool.Classify(tt.query))
		})
	}
}

func TestClassify_CapsAtTopK(t *testing.T) {
	tool := newTool(t)
	q := "company structure partner service contact policy"
	assert.Len(t, tool.Classify(q), models.RAGTopK)
}

func TestCompanyInfoTool_Execute(t *testing.T) {
	tool := newTool(t)
	assert.Equal(t, ToolID, tool.Name())

	input := tools.NewInput().
		WithParam("infoType", "services").
		WithParam("query", "What do you offer?")
	out, err := tool.Execute(context.Background(), input)
	require.NoError(t, err)

	res, ok := out.Result["result"].(*RAGResult)
	require.True(t, ok)
	assert.Equal(t, res.Content, out.Message)
	assert.Equal(t, "services", out.Metadata["infoType"])

	_, err = tool.Execute(context.Background(), tools.NewInput().WithParam("infoType", "services"))
	assert.Error(t, err)
}
