package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/jmaxwell/sellforge/internal/batch"
	"github.com/jmaxwell/sellforge/pkg/formatting"
)

const transformPrompt = `You format technology summaries into sell sheet fields.

Given the technology summary below, respond with a JSON object containing:
- "title": a concise product title
- "statement": a one-sentence executive statement
- "description": a short overview paragraph
- "advantages": a list of key advantages
- "problems": a list of problems the technology solves
- "applications": a list of commercial applications

Respond with JSON only.

Summary for %s:
%s`

// Transformer turns an extracted summary into the publishable field set
// using a single chat inference against the configured agent.
type Transformer struct {
	agent  gaconfig.AgentConfig
	logger *slog.Logger
}

// NewTransformer creates a Transformer over the given agent configuration.
func NewTransformer(agentCfg gaconfig.AgentConfig, logger *slog.Logger) *Transformer {
	return &Transformer{
		agent:  agentCfg,
		logger: logger.With("system", "transformer"),
	}
}

// Format fills st.Fields from st.Summary.
func (t *Transformer) Format(ctx context.Context, st *batch.ItemState) error {
	if st.Summary == nil || strings.TrimSpace(st.Summary.Body) == "" {
		return fmt.Errorf("no summary to format for %s", st.Item.Identifier)
	}

	a, err := agent.New(&t.agent)
	if err != nil {
		return fmt.Errorf("create agent: %w", err)
	}

	prompt := fmt.Sprintf(transformPrompt, st.Summary.Identifier, st.Summary.Body)

	resp, err := a.Chat(ctx, prompt)
	if err != nil {
		return fmt.Errorf("chat call: %w", err)
	}

	fields, err := formatting.Parse[batch.Fields](resp.Content())
	if err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	if err := validateFields(&fields); err != nil {
		return err
	}

	st.Fields = &fields

	t.logger.Info(
		"fields formatted",
		"identifier", st.Item.Identifier,
		"advantages", len(fields.Advantages),
		"problems", len(fields.Problems),
		"applications", len(fields.Applications),
	)
	return nil
}

func validateFields(f *batch.Fields) error {
	if strings.TrimSpace(f.Title) == "" {
		return fmt.Errorf("formatted fields missing a title")
	}
	if strings.TrimSpace(f.Description) == "" {
		return fmt.Errorf("formatted fields missing a description")
	}
	return nil
}
