package retrieval

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/valacy/retrieval/internal/llm"
)

// DefaultRerankK is the default number of documents the reranker asks the
// model to keep.
const DefaultRerankK = 5

// Reranker orders an accumulated session buffer by relevance with a single
// LLM call. Reranking is best-effort: any model or parse failure degrades to
// an empty result rather than failing the turn.
type Reranker struct {
	client llm.LLM
	model  string
	logger *slog.Logger
}

// RerankerOption configures a Reranker.
type RerankerOption func(*Reranker)

// WithRerankModel overrides the model used for the rerank call.
func WithRerankModel(model string) RerankerOption {
	return func(r *Reranker) {
		r.model = model
	}
}

// WithRerankLogger sets the logger.
func WithRerankLogger(logger *slog.Logger) RerankerOption {
	return func(r *Reranker) {
		r.logger = logger
	}
}

// NewReranker creates a reranker backed by the given LLM client.
func NewReranker(client llm.LLM, opts ...RerankerOption) *Reranker {
	r := &Reranker{
		client: client,
		model:  "qwen2-72b-instruct",
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// rerankResult is the JSON object the model must answer with.
type rerankResult struct {
	Documents []int `json:"documents"`
}

// Rerank asks the model to pick and order the topk most relevant entries from
// the session buffer. It returns the selected lines joined into one context
// block and the metadata of each selected entry, in rank order.
//
// An empty session returns ("", nil) without calling the model. Model errors
// and unparseable responses also return ("", nil); they are logged, never
// propagated, because a failed rerank must not fail the conversation turn.
func (r *Reranker) Rerank(ctx context.Context, query string, session *Session, topk int) (string, []map[string]string) {
	if session == nil || session.Empty() {
		return "", nil
	}
	if topk <= 0 {
		topk = DefaultRerankK
	}

	prompt, err := renderRerankPrompt(query, session.Context(), topk)
	if err != nil {
		r.logger.Error("failed to render rerank prompt", "error", err)
		return "", nil
	}

	response, err := r.client.Generate(ctx, prompt, llm.GenerateOptions{
		Model:       r.model,
		Temperature: 0,
	})
	if err != nil {
		r.logger.Error("rerank generation failed", "error", err)
		return "", nil
	}

	var result rerankResult
	if err := json.Unmarshal([]byte(stripCodeFences(response)), &result); err != nil {
		r.logger.Warn("failed to parse rerank response", "error", err, "response", response)
		return "", nil
	}
	if len(result.Documents) == 0 {
		return "", nil
	}

	var sb strings.Builder
	metas := make([]map[string]string, 0, len(result.Documents))
	for _, id := range result.Documents {
		entry, ok := session.Lookup(id)
		if !ok {
			r.logger.Warn("rerank response referenced unknown document id", "id", id)
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(entry.Line())
		metas = append(metas, entry.Meta)
	}
	if sb.Len() == 0 {
		return "", nil
	}
	return sb.String(), metas
}

// stripCodeFences removes a surrounding markdown code fence, which some models
// wrap around JSON answers despite instructions.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
