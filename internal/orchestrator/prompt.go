package orchestrator

import (
	"fmt"
	"strings"

	"github.com/aktuarialabs/docchat/internal/vectorstore"
)

// groundedPromptTemplate embeds retrieved document context and recent
// conversation into the generation request.
const groundedPromptTemplate = `You are an expert actuarial assistant supporting an insurance company's internal teams.
Use the provided document context to answer questions accurately and professionally.

DOCUMENT CONTEXT:
%s

CONVERSATION HISTORY:
%s

ANSWER GUIDELINES:
1. Base your answer on the documents provided above
2. If the question requires a calculation, show the steps clearly
3. Reference the source documents where relevant
4. If the documents do not contain the needed information, say so explicitly
5. Present tables and formulas in a clean, readable format

QUESTION: %s

ANSWER:`

// fallbackPromptTemplate is used when no relevant passages exist for the
// session. The model must disclose the absence of document grounding.
const fallbackPromptTemplate = `You are an expert actuarial assistant supporting an insurance company's internal teams.
No uploaded documents contain information relevant to this question, so answer from general actuarial domain knowledge.

CONVERSATION HISTORY:
%s

ANSWER GUIDELINES:
1. Answer from general domain knowledge, accurately and professionally
2. State clearly that the answer is not based on the uploaded documents
3. If the question requires a calculation, show the steps clearly

QUESTION: %s

ANSWER:`

// buildGroundedPrompt assembles the generation request for document-grounded
// mode from the question, retrieved passages and formatted recent history.
func buildGroundedPrompt(question string, results []vectorstore.SearchResult, history string) string {
	contexts := make([]string, len(results))
	for i, res := range results {
		filename := vectorstore.MetadataString(res.Metadata, vectorstore.MetaFilename)
		contexts[i] = fmt.Sprintf("[%s]\n%s", filename, res.Content)
	}
	if history == "" {
		history = "(none)"
	}
	return fmt.Sprintf(groundedPromptTemplate, strings.Join(contexts, "\n\n---\n\n"), history, question)
}

// buildFallbackPrompt assembles the generation request for fallback mode.
func buildFallbackPrompt(question, history string) string {
	if history == "" {
		history = "(none)"
	}
	return fmt.Sprintf(fallbackPromptTemplate, history, question)
}
