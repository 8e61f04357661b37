package constant

const (
	// HistoryWindow is the number of most recent turns rendered into a prompt.
	HistoryWindow = 5

	AssistantPersonaPrompt = "You are an expert AI assistant. Provide helpful, accurate, and well-structured responses with relevant emojis."

	ContextAnswerInstruction = "Analyze the context and answer precisely."
	ContextClosingPrompt     = "Provide accurate answers based on context. If insufficient, state what's missing."
	GeneralClosingPrompt     = "Give clear, actionable answers with appropriate technical depth and examples."

	ExtractionFailedPrefix = "Could not extract text from this file: "
)

// Sampling defaults and bounds
const (
	DefaultTemperature = 0.7
	DefaultTopP        = 0.9
	DefaultTopK        = 40

	MinTemperature = 0.0
	MaxTemperature = 1.0
	MinTopP        = 0.0
	MaxTopP        = 1.0
	MinTopK        = 1
	MaxTopK        = 100
)
