package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"genai-chatbot-be/internal/dto"
	"genai-chatbot-be/internal/entity"
	"genai-chatbot-be/internal/pkg/logger"
	"genai-chatbot-be/internal/pkg/serverutils"
	"genai-chatbot-be/pkg/extractor"
	"genai-chatbot-be/pkg/llm"
	"genai-chatbot-be/pkg/rag/history"
	"genai-chatbot-be/pkg/rag/message"
	"genai-chatbot-be/pkg/rag/prompt"
	"genai-chatbot-be/pkg/rag/session"
	"genai-chatbot-be/pkg/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const chatbotModule = "CHATBOT"

var safeExtension = regexp.MustCompile(`^\.[a-z0-9]{1,10}$`)

// IChatbotService defines the chatbot service interface
type IChatbotService interface {
	Generate(ctx context.Context, request *dto.GenerateRequest) (*dto.GenerateResponse, error)
	GetHistory(ctx context.Context, sessionId string) []*dto.ChatTurnResponse
	ListSessions(ctx context.Context) []string
	Health() *dto.HealthResponse
}

// DocumentExtractor turns an uploaded file into text. The text is always
// usable; a non-nil error only explains a placeholder.
type DocumentExtractor interface {
	Extract(path string) (string, error)
}

type chatbotService struct {
	contextStore     store.ContextStore
	llmProvider      llm.LLMProvider
	docExtractor     DocumentExtractor
	publisherService IPublisherService
	logger           logger.ILogger
	tempDir          string
	tracer           trace.Tracer

	sessionManager *session.Manager
	historyLoader  *history.Loader
	messageFactory *message.Factory
}

// NewChatbotService wires the turn pipeline. publisherService may be nil, in
// which case no telemetry is emitted.
func NewChatbotService(
	contextStore store.ContextStore,
	llmProvider llm.LLMProvider,
	docExtractor DocumentExtractor,
	publisherService IPublisherService,
	sysLogger logger.ILogger,
	tempDir string,
) IChatbotService {
	return &chatbotService{
		contextStore:     contextStore,
		llmProvider:      llmProvider,
		docExtractor:     docExtractor,
		publisherService: publisherService,
		logger:           sysLogger,
		tempDir:          tempDir,
		tracer:           otel.Tracer("genai-chatbot-be/chatbot"),

		sessionManager: session.NewManager(contextStore, sysLogger),
		historyLoader:  history.NewLoader(contextStore, sysLogger),
		messageFactory: message.NewFactory(),
	}
}

// Generate answers one question. Only validation and generation failures
// reach the caller; store and extraction problems degrade the turn instead.
func (cs *chatbotService) Generate(ctx context.Context, request *dto.GenerateRequest) (*dto.GenerateResponse, error) {
	start := time.Now()
	cs.logger.Info(chatbotModule, "Generate request started", nil)

	ctx, span := cs.tracer.Start(ctx, "chatbot.Generate")
	defer span.End()

	// 1. Session identity
	sessionId, isNew := cs.sessionManager.ResolveSessionID(request.SessionId)
	span.SetAttributes(
		attribute.String("chat.session_id", sessionId),
		attribute.Bool("chat.new_session", isNew),
		attribute.String("chat.provider", cs.llmProvider.Name()),
	)

	// 2. Validation
	query := strings.TrimSpace(request.Prompt)
	if err := cs.validate(request, query); err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return nil, err
	}

	// 3. Uploaded document
	extracted := ""
	if request.File != nil {
		path, cleanup, err := cs.stageUpload(request.File)
		if err != nil {
			cs.logger.Warn(chatbotModule, "Failed to stage uploaded file", map[string]interface{}{
				"session_id": sessionId,
				"filename":   request.File.Filename,
				"error":      err.Error(),
			})
			extracted = extractor.Placeholder(err)
		} else {
			defer cleanup()
			extracted = cs.extract(sessionId, request.File.Filename, path)
		}
	}

	// 4. Context precedence, 5. history window
	documentText, persistContext := cs.sessionManager.ResolveDocumentContext(ctx, sessionId, isNew, extracted)
	var recentTurns []*entity.ChatTurn
	if !isNew {
		recentTurns = cs.historyLoader.LoadRecentTurns(ctx, sessionId)
	}
	span.SetAttributes(
		attribute.Bool("chat.document_context_used", documentText != ""),
		attribute.Bool("chat.document_uploaded", persistContext != nil),
		attribute.Int("chat.history_turns", len(recentTurns)),
	)

	// 6. Generation
	fullPrompt := prompt.Build(query, documentText, recentTurns)
	completion, err := cs.llmProvider.Generate(ctx, fullPrompt,
		llm.WithTemperature(request.Temperature),
		llm.WithTopP(request.TopP),
		llm.WithTopK(request.TopK),
	)
	if err != nil {
		cs.logger.Error(chatbotModule, "Generation failed", map[string]interface{}{
			"session_id": sessionId,
			"provider":   cs.llmProvider.Name(),
			"error":      err.Error(),
		})
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		return nil, &GatewayError{Provider: cs.llmProvider.Name(), Err: err}
	}

	// 7. Persistence
	turn := cs.messageFactory.CreateTurn(sessionId, query, completion.Text, persistContext, time.Now())
	persisted := true
	if _, err := cs.contextStore.AppendTurn(ctx, turn); err != nil {
		persisted = false
		cs.logger.Warn(chatbotModule, "Failed to persist turn", map[string]interface{}{
			"session_id": sessionId,
			"store":      cs.contextStore.Name(),
			"error":      err.Error(),
		})
	}
	span.SetAttributes(attribute.Bool("chat.persisted", persisted))

	duration := time.Since(start)
	if persisted {
		cs.publishTurnRecorded(ctx, turn, completion, duration, documentText != "")
	}

	cs.logger.Info(chatbotModule, fmt.Sprintf("Request completed in %.2fs", duration.Seconds()), map[string]interface{}{
		"session_id": sessionId,
		"persisted":  persisted,
	})

	return &dto.GenerateResponse{
		Response:            completion.Text,
		SessionId:           sessionId,
		Persisted:           persisted,
		DocumentContextUsed: documentText != "",
		Model:               completion.Model,
		Metadata:            completion.Metadata,
	}, nil
}

func (cs *chatbotService) validate(request *dto.GenerateRequest, query string) error {
	if query == "" {
		return &ValidationError{Message: "prompt is required"}
	}
	if err := serverutils.ValidateRequest(request); err != nil {
		return &ValidationError{Message: err.Error()}
	}
	return nil
}

// stageUpload copies the upload into a private temp file. Only a sanitized
// extension of the client filename is kept, for extractor dispatch.
func (cs *chatbotService) stageUpload(file *dto.UploadedFile) (string, func(), error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(file.Filename)))
	if !safeExtension.MatchString(ext) {
		ext = ""
	}

	tmp, err := os.CreateTemp(cs.tempDir, "upload-*"+ext)
	if err != nil {
		return "", nil, err
	}
	path := tmp.Name()

	cleanup := func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			cs.logger.Warn(chatbotModule, "Cleanup failed", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
		}
	}

	_, copyErr := io.Copy(tmp, file.Content)
	closeErr := tmp.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}

func (cs *chatbotService) extract(sessionId, filename, path string) string {
	text, err := cs.docExtractor.Extract(path)
	if err != nil {
		cs.logger.Warn(chatbotModule, "Failed to extract uploaded file", map[string]interface{}{
			"session_id": sessionId,
			"filename":   filename,
			"error":      err.Error(),
		})
		return text
	}

	cs.logger.Info(chatbotModule, "Processed file", map[string]interface{}{
		"session_id": sessionId,
		"filename":   filename,
		"chars":      len([]rune(text)),
	})
	return text
}

func (cs *chatbotService) publishTurnRecorded(ctx context.Context, turn *entity.ChatTurn, completion *llm.Completion, duration time.Duration, contextUsed bool) {
	if cs.publisherService == nil {
		return
	}

	payload, err := json.Marshal(dto.TurnRecordedMessage{
		TurnId:              turn.Id,
		SessionId:           turn.SessionId,
		Provider:            cs.llmProvider.Name(),
		Model:               completion.Model,
		DurationMs:          duration.Milliseconds(),
		DocumentContextUsed: contextUsed,
		Metadata:            completion.Metadata,
		OccurredAt:          turn.CreatedAt,
	})
	if err == nil {
		err = cs.publisherService.Publish(ctx, payload)
	}
	if err != nil {
		cs.logger.Warn(chatbotModule, "Failed to publish turn recorded event", map[string]interface{}{
			"turn_id": turn.Id.String(),
			"error":   err.Error(),
		})
	}
}

// GetHistory returns every turn of the session, oldest first. An unavailable
// store yields an empty history.
func (cs *chatbotService) GetHistory(ctx context.Context, sessionId string) []*dto.ChatTurnResponse {
	turns, err := cs.contextStore.GetTurns(ctx, strings.TrimSpace(sessionId))
	if err != nil {
		cs.logger.Warn(chatbotModule, "Failed to get chat history", map[string]interface{}{
			"session_id": sessionId,
			"store":      cs.contextStore.Name(),
			"error":      err.Error(),
		})
		return []*dto.ChatTurnResponse{}
	}

	res := make([]*dto.ChatTurnResponse, 0, len(turns))
	for _, turn := range turns {
		res = append(res, &dto.ChatTurnResponse{
			Id:              turn.Id,
			UserMessage:     turn.UserMessage,
			BotResponse:     turn.BotResponse,
			Timestamp:       turn.CreatedAt,
			DocumentContext: turn.DocumentContext,
		})
	}
	return res
}

func (cs *chatbotService) ListSessions(ctx context.Context) []string {
	ids, err := cs.contextStore.ListSessionIDs(ctx)
	if err != nil {
		cs.logger.Warn(chatbotModule, "Failed to get sessions", map[string]interface{}{
			"store": cs.contextStore.Name(),
			"error": err.Error(),
		})
		return []string{}
	}
	if ids == nil {
		ids = []string{}
	}
	return ids
}

func (cs *chatbotService) Health() *dto.HealthResponse {
	return &dto.HealthResponse{
		Store:    cs.contextStore.Name(),
		Provider: cs.llmProvider.Name(),
	}
}
