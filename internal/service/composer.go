package service

import (
	"context"
	"fmt"
	"strings"

	"agriinsight/internal/applog"
	"agriinsight/internal/domain"
)

const (
	// SystemInstruction frames the assistant's domain.
	SystemInstruction = "You are AgriInsight — an expert assistant for Indian agriculture."

	// DefaultTopK is the number of context rows sent with each question.
	DefaultTopK = 4

	answerInstruction = "Answer concisely and cite context rows when relevant."
	errorPrefix       = "⚠️ Groq API Error: "
)

// Composer answers free-form questions with retrieved dataset context and
// a hosted language model.
type Composer struct {
	retriever domain.Retriever
	completer domain.Completer
	topK      int
}

// NewComposer wires a retriever and a completer. A non-positive topK uses DefaultTopK.
func NewComposer(retriever domain.Retriever, completer domain.Completer, topK int) *Composer {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Composer{retriever: retriever, completer: completer, topK: topK}
}

// Ask never fails: model errors are returned as a marked message.
func (c *Composer) Ask(ctx context.Context, query string) string {
	results := c.retriever.Retrieve(query, c.topK)
	contexts := make([]string, len(results))
	for i, r := range results {
		contexts[i] = r.Document.Text
	}
	prompt := BuildPrompt(contexts, query)

	answer, err := c.completer.Complete(ctx, SystemInstruction, prompt)
	if err != nil {
		applog.Warn("language model request failed", "error", err)
		return errorPrefix + err.Error()
	}
	return strings.TrimSpace(answer)
}

// BuildPrompt assembles the user message from context rows and the question.
func BuildPrompt(contexts []string, query string) string {
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s\n%s", strings.Join(contexts, "\n"), query, answerInstruction)
}
