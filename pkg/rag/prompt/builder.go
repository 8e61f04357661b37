package prompt

import (
	"strings"

	"genai-chatbot-be/internal/constant"
	"genai-chatbot-be/internal/entity"
)

// ContextualBuilder assembles the single prompt sent to the generation backend.
type ContextualBuilder struct {
	query        string
	documentText string
	recentTurns  []*entity.ChatTurn
}

func NewContextualBuilder(query, documentText string, recentTurns []*entity.ChatTurn) *ContextualBuilder {
	return &ContextualBuilder{
		query:        query,
		documentText: documentText,
		recentTurns:  recentTurns,
	}
}

// Build is a shorthand for NewContextualBuilder(...).Build().
func Build(query, documentText string, recentTurns []*entity.ChatTurn) string {
	return NewContextualBuilder(query, documentText, recentTurns).Build()
}

// Build renders persona, conversation window, question and, when present,
// the document context. The output depends only on the inputs.
func (b *ContextualBuilder) Build() string {
	var prompt strings.Builder

	b.writePersona(&prompt)
	b.writeConversation(&prompt)
	b.writeUserQuery(&prompt)
	b.writeContext(&prompt)
	b.writeClosing(&prompt)

	return prompt.String()
}

func (b *ContextualBuilder) hasContext() bool {
	return b.documentText != ""
}

func (b *ContextualBuilder) writePersona(prompt *strings.Builder) {
	prompt.WriteString(constant.AssistantPersonaPrompt)
	if b.hasContext() {
		prompt.WriteString(" ")
		prompt.WriteString(constant.ContextAnswerInstruction)
	}
	prompt.WriteString("\n\n")
}

func (b *ContextualBuilder) writeConversation(prompt *strings.Builder) {
	turns := b.recentTurns
	if len(turns) == 0 {
		return
	}
	if len(turns) > constant.HistoryWindow {
		turns = turns[len(turns)-constant.HistoryWindow:]
	}

	prompt.WriteString("Conversation so far:\n")
	for _, turn := range turns {
		prompt.WriteString("User: ")
		prompt.WriteString(turn.UserMessage)
		prompt.WriteString("\nAssistant: ")
		prompt.WriteString(turn.BotResponse)
		prompt.WriteString("\n")
	}
	prompt.WriteString("\n")
}

func (b *ContextualBuilder) writeUserQuery(prompt *strings.Builder) {
	prompt.WriteString("User Question: \"")
	prompt.WriteString(b.query)
	prompt.WriteString("\"\n\n")
}

func (b *ContextualBuilder) writeContext(prompt *strings.Builder) {
	if !b.hasContext() {
		return
	}
	prompt.WriteString("Context: ")
	prompt.WriteString(b.documentText)
	prompt.WriteString("\n\n")
}

func (b *ContextualBuilder) writeClosing(prompt *strings.Builder) {
	if b.hasContext() {
		prompt.WriteString(constant.ContextClosingPrompt)
		return
	}
	prompt.WriteString(constant.GeneralClosingPrompt)
}
