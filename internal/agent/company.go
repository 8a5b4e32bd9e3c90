package agent

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	apierrors "github.com/diogo/tobchat/internal/errors"
	"github.com/diogo/tobchat/internal/models"
	"github.com/diogo/tobchat/internal/tools"
)

//go:embed knowledge.yaml
var defaultKnowledge []byte

// Tool limits
const (
	ToolID            = "get-company-info"
	ToolSource        = "company_database"
	ToolScore         = 0.95
	MaxToolQueryRunes = 500
	noInformation     = "No information available for the requested category."
)

// RAGResult is one retrieved piece of company information
type RAGResult struct {
	Content  string         `json:"content"`
	Source   string         `json:"source"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// knowledgeEntry is one category of the knowledge base
type knowledgeEntry struct {
	Content  string   `yaml:"content"`
	Keywords []string `yaml:"keywords"`
}

// CompanyInfoTool answers company questions from a static knowledge base
type CompanyInfoTool struct {
	entries map[models.CompanyInfoType]knowledgeEntry
	logger  zerolog.Logger
	now     func() time.Time
}

// NewCompanyInfoTool loads the embedded knowledge base
func NewCompanyInfoTool(logger zerolog.Logger) (*CompanyInfoTool, error) {
	return NewCompanyInfoToolFromYAML(defaultKnowledge, logger)
}

// NewCompanyInfoToolFromYAML loads a knowledge base keyed by info type
func NewCompanyInfoToolFromYAML(data []byte, logger zerolog.Logger) (*CompanyInfoTool, error) {
	raw := map[string]knowledgeEntry{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge base: %w", err)
	}

	entries := make(map[models.CompanyInfoType]knowledgeEntry, len(raw))
	for key, entry := range raw {
		if !models.IsCompanyInfoType(key) {
			return nil, fmt.Errorf("unknown info type %q in knowledge base", key)
		}
		for i, kw := range entry.Keywords {
			entry.Keywords[i] = strings.ToLower(kw)
		}
		entries[models.CompanyInfoType(key)] = entry
	}

	return &CompanyInfoTool{entries: entries, logger: logger, now: time.Now}, nil
}

// Name implements tools.Tool
func (t *CompanyInfoTool) Name() string {
	return ToolID
}

// Description implements tools.Tool
func (t *CompanyInfoTool) Description() string {
	return "Retrieves company information for one knowledge base category."
}

// Execute implements tools.Tool. It expects the "infoType" and "query"
// parameters and returns the *RAGResult under the "result" key.
func (t *CompanyInfoTool) Execute(ctx context.Context, input *tools.Input) (*tools.Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := t.Lookup(input.GetParamString("infoType"), input.GetParamString("query"))
	if err != nil {
		return nil, err
	}
	return tools.NewOutput().
		WithResult("result", res).
		WithMetadata("infoType", input.GetParamString("infoType")).
		WithMessage(res.Content), nil
}

var _ tools.Tool = (*CompanyInfoTool)(nil)

// Lookup returns the information stored for infoType
func (t *CompanyInfoTool) Lookup(infoType, query string) (*RAGResult, error) {
	if !models.IsValidQuery(query) || utf8.RuneCountInString(query) > MaxToolQueryRunes {
		return nil, apierrors.NewChatbotError("Invalid query provided", apierrors.CodeInvalidQuery, 400, map[string]any{"infoType": infoType})
	}
	if !models.IsCompanyInfoType(infoType) {
		return nil, apierrors.NewChatbotError(fmt.Sprintf("unknown info type %q", infoType), apierrors.CodeInvalidQuery, 400, nil)
	}

	t.logger.Debug().Str("infoType", infoType).Str("query", query).Msg("retrieving company information")

	content := noInformation
	if entry, ok := t.entries[models.CompanyInfoType(infoType)]; ok && entry.Content != "" {
		content = entry.Content
	}

	return &RAGResult{
		Content: content,
		Source:  ToolSource,
		Score:   ToolScore,
		Metadata: map[string]any{
			"infoType":  infoType,
			"timestamp": t.now().UTC().Format(time.RFC3339),
		},
	}, nil
}

// Classify returns the info types whose keywords appear in query,
// in CompanyInfoTypes order and at most RAGTopK of them
func (t *CompanyInfoTool) Classify(query string) []models.CompanyInfoType {
	q := strings.ToLower(query)
	var out []models.CompanyInfoType
	for _, typ := range models.CompanyInfoTypes {
		entry, ok := t.entries[typ]
		if !ok {
			continue
		}
		for _, kw := range entry.Keywords {
			if strings.Contains(q, kw) {
				out = append(out, typ)
				break
			}
		}
		if len(out) == models.RAGTopK {
			break
		}
	}
	return out
}
