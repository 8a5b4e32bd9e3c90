package agent

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/diogo/tobchat/internal/models"
	"github.com/diogo/tobchat/internal/tools"
)

// CompanyInfoWorkflow grounds an agent with company information.
// When RAG is enabled, the latest user query is classified, matching
// knowledge is looked up and injected as a system message.
type CompanyInfoWorkflow struct {
	agent      Agent
	tool       *CompanyInfoTool
	executor   *tools.Executor
	ragEnabled bool
	logger     zerolog.Logger
}

// NewCompanyInfoWorkflow wraps agent with the company-info tool
func NewCompanyInfoWorkflow(agent Agent, tool *CompanyInfoTool, ragEnabled bool, logger zerolog.Logger) *CompanyInfoWorkflow {
	registry := tools.NewRegistry(tool)
	executor := tools.NewExecutor(registry, []tools.Middleware{
		tools.Recovery(logger),
		tools.Logging(logger),
		tools.Timing(),
	})
	return &CompanyInfoWorkflow{agent: agent, tool: tool, executor: executor, ragEnabled: ragEnabled, logger: logger}
}

// Name implements Agent
func (w *CompanyInfoWorkflow) Name() string {
	return "company-info-workflow/" + w.agent.Name()
}

// Retrieve returns the knowledge matching query. Failed lookups are
// logged and skipped.
func (w *CompanyInfoWorkflow) Retrieve(ctx context.Context, query string) []*RAGResult {
	var results []*RAGResult
	for _, typ := range w.tool.Classify(query) {
		input := tools.NewInput().
			WithParam("infoType", string(typ)).
			WithParam("query", query)
		out, err := w.executor.Execute(ctx, ToolID, input)
		if err != nil {
			w.logger.Warn().Err(err).Str("infoType", string(typ)).Msg("company info lookup failed")
			continue
		}
		if res, ok := out.Result["result"].(*RAGResult); ok {
			results = append(results, res)
		}
	}
	return results
}

// contextMessage formats retrieved knowledge for the model
func contextMessage(results []*RAGResult) models.Message {
	var sb strings.Builder
	sb.WriteString("Company information (source: ")
	sb.WriteString(ToolSource)
	sb.WriteString("):\n")
	for _, r := range results {
		sb.WriteString("- [")
		sb.WriteString(r.Metadata["infoType"].(string))
		sb.WriteString("] ")
		sb.WriteString(r.Content)
		sb.WriteString("\n")
	}
	sb.WriteString("If the information above does not answer the question, say: ")
	sb.WriteString(models.ErrMsgNoContext)
	return models.Message{Role: models.RoleSystem, Content: sb.String()}
}

// Augment returns messages with retrieved knowledge prepended
func (w *CompanyInfoWorkflow) Augment(ctx context.Context, messages []models.Message) []models.Message {
	if !w.ragEnabled {
		return messages
	}
	query := lastUserQuery(messages)
	if query == "" {
		return messages
	}

	results := w.Retrieve(ctx, query)
	w.logger.Debug().Int("results", len(results)).Msg("company info retrieved")
	if len(results) == 0 {
		return messages
	}

	out := make([]models.Message, 0, len(messages)+1)
	out = append(out, contextMessage(results))
	out = append(out, messages...)
	return out
}

// Stream implements Agent
func (w *CompanyInfoWorkflow) Stream(ctx context.Context, messages []models.Message, emit EmitFunc) error {
	return w.agent.Stream(ctx, w.Augment(ctx, messages), emit)
}
