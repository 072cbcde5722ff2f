package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agriinsight/internal/domain"
	"agriinsight/internal/retrieval"
)

type recordingCompleter struct {
	system, prompt string
	reply          string
	err            error
}

func (r *recordingCompleter) Complete(_ context.Context, system, prompt string) (string, error) {
	r.system, r.prompt = system, prompt
	return r.reply, r.err
}

type fixedRetriever struct {
	k    int
	docs []string
}

func (f *fixedRetriever) Retrieve(_ string, k int) []domain.SearchResult {
	f.k = k
	out := make([]domain.SearchResult, len(f.docs))
	for i, d := range f.docs {
		out[i] = domain.SearchResult{Document: domain.Document{Index: i, Text: d}}
	}
	return out
}

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt([]string{"row one", "row two"}, "Which crop?")
	assert.Equal(t, "Context:\nrow one\nrow two\n\nQuestion: Which crop?\nAnswer concisely and cite context rows when relevant.", got)
}

func TestAsk_UsesTopFourContextsInOrder(t *testing.T) {
	r := &fixedRetriever{docs: []string{"d0", "d1", "d2", "d3"}}
	c := &recordingCompleter{reply: "\n  Sugarcane in Pune.  \n"}

	answer := NewComposer(r, c, 0).Ask(context.Background(), "What grows in Pune?")

	assert.Equal(t, 4, r.k)
	assert.Equal(t, "Sugarcane in Pune.", answer)
	assert.Equal(t, SystemInstruction, c.system)
	assert.True(t, strings.HasPrefix(c.prompt, "Context:\nd0\nd1\nd2\nd3\n\nQuestion: What grows in Pune?\n"))
}

func TestAsk_ErrorBecomesMessage(t *testing.T) {
	r := &fixedRetriever{docs: []string{"d0"}}
	c := &recordingCompleter{err: errors.New("status code: 429, rate limit reached")}

	answer := NewComposer(r, c, 4).Ask(context.Background(), "q")
	assert.Equal(t, "⚠️ Groq API Error: status code: 429, rate limit reached", answer)
}

func TestAsk_WithRealIndex(t *testing.T) {
	ix, err := retrieval.Build([]string{
		"Maharashtra | Pune | Crop: Sugarcane | Production: High",
		"Karnataka | Belgaum | Crop: Rice | Production: Medium",
		"Kerala | Thrissur | Crop: Coconut | Production: High",
	})
	require.NoError(t, err)
	c := &recordingCompleter{reply: "ok"}

	NewComposer(ix, c, 4).Ask(context.Background(), "coconut kerala")

	lines := strings.Split(c.prompt, "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Equal(t, "Context:", lines[0])
	assert.Equal(t, "Kerala | Thrissur | Crop: Coconut | Production: High", lines[1])
	assert.Len(t, lines, 1+3+1+2, "k above store size returns every document")
}
