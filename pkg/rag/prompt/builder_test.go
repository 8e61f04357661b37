package prompt

import (
	"fmt"
	"strings"
	"testing"

	"genai-chatbot-be/internal/constant"
	"genai-chatbot-be/internal/entity"

	"github.com/stretchr/testify/assert"
)

func makeTurns(n int) []*entity.ChatTurn {
	turns := make([]*entity.ChatTurn, n)
	for i := range turns {
		turns[i] = &entity.ChatTurn{
			SessionId:   "s1",
			UserMessage: fmt.Sprintf("question %d", i),
			BotResponse: fmt.Sprintf("answer %d", i),
		}
	}
	return turns
}

func TestBuild_WithoutContext(t *testing.T) {
	got := Build("What is Go?", "", nil)

	want := constant.AssistantPersonaPrompt + "\n\n" +
		"User Question: \"What is Go?\"\n\n" +
		constant.GeneralClosingPrompt
	assert.Equal(t, want, got)
	assert.NotContains(t, got, "Context:")
	assert.NotContains(t, got, "Conversation so far:")
}

func TestBuild_WithContext(t *testing.T) {
	got := Build("Summarize", "Alpha Beta Gamma", nil)

	assert.True(t, strings.HasPrefix(got, constant.AssistantPersonaPrompt))
	assert.Contains(t, got, constant.ContextAnswerInstruction)
	assert.Contains(t, got, "User Question: \"Summarize\"")
	assert.Contains(t, got, "Context: Alpha Beta Gamma")
	assert.True(t, strings.HasSuffix(got, constant.ContextClosingPrompt))
	assert.NotContains(t, got, constant.GeneralClosingPrompt)

	// question comes before the context block
	assert.Less(t, strings.Index(got, "User Question:"), strings.Index(got, "Context:"))
}

func TestBuild_HistoryWindow(t *testing.T) {
	got := Build("next", "", makeTurns(7))

	assert.NotContains(t, got, "question 0")
	assert.NotContains(t, got, "question 1")
	for i := 2; i < 7; i++ {
		assert.Contains(t, got, fmt.Sprintf("User: question %d\nAssistant: answer %d\n", i, i))
	}

	// oldest first, between persona and question
	assert.Less(t, strings.Index(got, constant.AssistantPersonaPrompt), strings.Index(got, "Conversation so far:"))
	assert.Less(t, strings.Index(got, "question 2"), strings.Index(got, "question 6"))
	assert.Less(t, strings.Index(got, "question 6"), strings.Index(got, "User Question:"))
}

func TestBuild_ShortHistoryRenderedInFull(t *testing.T) {
	got := Build("next", "doc", makeTurns(2))

	assert.Contains(t, got, "Conversation so far:\nUser: question 0\nAssistant: answer 0\nUser: question 1\nAssistant: answer 1\n\n")
}

func TestBuild_Deterministic(t *testing.T) {
	turns := makeTurns(3)
	assert.Equal(t, Build("q", "doc", turns), Build("q", "doc", turns))
	assert.Equal(t, NewContextualBuilder("q", "", turns).Build(), Build("q", "", turns))
}
