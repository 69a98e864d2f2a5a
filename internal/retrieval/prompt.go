package retrieval

import (
	"strings"
	"text/template"
)

// rerankPromptTmpl asks the model for a strict JSON object listing the chosen
// enumeration indices in relevance order. The whole accumulated buffer goes
// into one call.
var rerankPromptTmpl = template.Must(template.New("rerank").Parse(`Your task is to rerank the given documents based on the given query. You will receive a query and a list of documents. The documents are split with '\n'.
You need to check the relevance of the documents to the query. If no document is relevant to the query, you should answer {"documents": []}
If some of the documents are relevant to the query, rerank them by relevance to the query.
Choose the top {{.TopK}} most relevant documents and answer with the reranked list of their document IDs, most relevant first, as a JSON object of the form {"documents": [id, id, ...]}.
Query: {{.Query}}
Documents: {{.Documents}}
Answer with the JSON object only. Do not give any explanation or other information.`))

type rerankPromptData struct {
	Query     string
	Documents string
	TopK      int
}

func renderRerankPrompt(query, documents string, topk int) (string, error) {
	var sb strings.Builder
	err := rerankPromptTmpl.Execute(&sb, rerankPromptData{
		Query:     query,
		Documents: documents,
		TopK:      topk,
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}
