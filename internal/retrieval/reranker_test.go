package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valacy/retrieval/internal/llm"
)

type fakeLLM struct {
	response string
	err      error
	calls    int
	lastOpts llm.GenerateOptions
	prompt   string
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts llm.GenerateOptions) (string, error) {
	f.calls++
	f.prompt = prompt
	f.lastOpts = opts
	return f.response, f.err
}

func (f *fakeLLM) GenerateStream(ctx context.Context, prompt string, opts llm.GenerateOptions) (<-chan llm.StreamChunk, error) {
	ch := make(chan llm.StreamChunk)
	close(ch)
	return ch, nil
}

func sessionWith(texts ...string) *Session {
	s := NewSession()
	for _, text := range texts {
		s.Append("doc-1", text, map[string]string{"embedding_model": "FakeEmbedding"})
	}
	return s
}

func TestRerank_OrdersByModelChoice(t *testing.T) {
	client := &fakeLLM{response: `{"documents": [2, 1]}`}
	reranker := NewReranker(client)

	session := sessionWith("first candidate.", "second candidate.", "third candidate.")
	ranked, metas := reranker.Rerank(context.Background(), "query", session, 2)

	assert.Equal(t, "2. second candidate.\n1. first candidate.", ranked)
	require.Len(t, metas, 2)
	assert.Equal(t, "FakeEmbedding", metas[0]["embedding_model"])
	assert.Equal(t, 1, client.calls)
	assert.EqualValues(t, 0, client.lastOpts.Temperature)
}

func TestRerank_EmptySessionSkipsLLM(t *testing.T) {
	client := &fakeLLM{response: `{"documents": [1]}`}
	reranker := NewReranker(client)

	ranked, metas := reranker.Rerank(context.Background(), "query", NewSession(), 5)

	assert.Empty(t, ranked)
	assert.Nil(t, metas)
	assert.Zero(t, client.calls, "no LLM call on an empty buffer")

	ranked, metas = reranker.Rerank(context.Background(), "query", nil, 5)
	assert.Empty(t, ranked)
	assert.Nil(t, metas)
	assert.Zero(t, client.calls)
}

func TestRerank_LLMErrorDegrades(t *testing.T) {
	client := &fakeLLM{err: assert.AnError}
	reranker := NewReranker(client)

	ranked, metas := reranker.Rerank(context.Background(), "query", sessionWith("a."), 5)

	assert.Empty(t, ranked)
	assert.Nil(t, metas)
}

func TestRerank_MalformedJSONDegrades(t *testing.T) {
	for _, response := range []string{
		"not json at all",
		`{"documents": "oops"}`,
		`[1, 2]`,
		"__import__('os')",
	} {
		client := &fakeLLM{response: response}
		reranker := NewReranker(client)

		ranked, metas := reranker.Rerank(context.Background(), "query", sessionWith("a."), 5)
		assert.Empty(t, ranked, "response %q", response)
		assert.Nil(t, metas, "response %q", response)
	}
}

func TestRerank_NoRelevantDocuments(t *testing.T) {
	client := &fakeLLM{response: `{"documents": []}`}
	reranker := NewReranker(client)

	ranked, metas := reranker.Rerank(context.Background(), "query", sessionWith("a."), 5)

	assert.Empty(t, ranked)
	assert.Nil(t, metas)
}

func TestRerank_StripsCodeFences(t *testing.T) {
	client := &fakeLLM{response: "```json\n{\"documents\": [1]}\n```"}
	reranker := NewReranker(client)

	ranked, metas := reranker.Rerank(context.Background(), "query", sessionWith("fenced answer."), 5)

	assert.Equal(t, "1. fenced answer.", ranked)
	require.Len(t, metas, 1)
}

func TestRerank_UnknownIDsSkipped(t *testing.T) {
	client := &fakeLLM{response: `{"documents": [99, 1, -3]}`}
	reranker := NewReranker(client)

	ranked, metas := reranker.Rerank(context.Background(), "query", sessionWith("only entry."), 5)

	assert.Equal(t, "1. only entry.", ranked)
	require.Len(t, metas, 1)
}

func TestRerank_AllUnknownIDsDegrade(t *testing.T) {
	client := &fakeLLM{response: `{"documents": [7, 8]}`}
	reranker := NewReranker(client)

	ranked, metas := reranker.Rerank(context.Background(), "query", sessionWith("a."), 5)

	assert.Empty(t, ranked)
	assert.Nil(t, metas)
}

func TestRerank_PromptCarriesBufferAndTopK(t *testing.T) {
	client := &fakeLLM{response: `{"documents": [1]}`}
	reranker := NewReranker(client, WithRerankModel("test-model"))

	session := sessionWith("needle text.")
	reranker.Rerank(context.Background(), "what is the needle", session, 3)

	assert.Contains(t, client.prompt, "1. needle text.")
	assert.Contains(t, client.prompt, "what is the needle")
	assert.Contains(t, client.prompt, "top 3")
	assert.Equal(t, "test-model", client.lastOpts.Model)
}

func TestRerank_EndToEndWithEngine(t *testing.T) {
	store := &fakeSearcher{vectorHits: hits("alpha chunk.", "beta chunk.")}
	engine := NewEngine(&fakeEmbedder{dimension: 4}, store, testConfig())

	_, err := engine.Retrieve(context.Background(), "query", 5)
	require.NoError(t, err)

	client := &fakeLLM{response: `{"documents": [2, 1]}`}
	reranker := NewReranker(client)

	ranked, metas := reranker.Rerank(context.Background(), "query", engine.Session(), 2)

	assert.Equal(t, "2. beta chunk.\n1. alpha chunk.", ranked)
	require.Len(t, metas, 2)
}
