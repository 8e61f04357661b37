package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"genai-chatbot-be/internal/dto"
	"genai-chatbot-be/internal/pkg/serverutils"
	"genai-chatbot-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatbotService struct {
	lastRequest *dto.GenerateRequest
	fileContent string
	err         error
}

func (f *fakeChatbotService) Generate(ctx context.Context, request *dto.GenerateRequest) (*dto.GenerateResponse, error) {
	f.lastRequest = request
	if request.File != nil {
		content, _ := io.ReadAll(request.File.Content)
		f.fileContent = string(content)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &dto.GenerateResponse{Response: "hi", SessionId: "s-1", Persisted: true}, nil
}

func (f *fakeChatbotService) GetHistory(ctx context.Context, sessionId string) []*dto.ChatTurnResponse {
	return []*dto.ChatTurnResponse{{UserMessage: "q for " + sessionId, BotResponse: "a"}}
}

func (f *fakeChatbotService) ListSessions(ctx context.Context) []string {
	return []string{"s-1", "s-2"}
}

func (f *fakeChatbotService) Health() *dto.HealthResponse {
	return &dto.HealthResponse{Store: "memory", Provider: "fake"}
}

func newTestApp(svc service.IChatbotService) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: serverutils.FiberErrorHandler})
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewChatbotController(svc).RegisterRoutes(app.Group("/api"))
	app.Use(serverutils.NotFoundHandler)
	return app
}

func multipartRequest(t *testing.T, method string, fields map[string]string, filename, content string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("context_file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, "/api/chatbot/v1/generate", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestGenerate_MultipartDefaults(t *testing.T) {
	svc := &fakeChatbotService{}
	app := newTestApp(svc)

	resp, err := app.Test(multipartRequest(t, http.MethodPost, map[string]string{"prompt": "hello"}, "", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "hi", data["response"])
	assert.Equal(t, "s-1", data["session_id"])

	require.NotNil(t, svc.lastRequest)
	assert.Equal(t, "hello", svc.lastRequest.Prompt)
	assert.Equal(t, 0.7, svc.lastRequest.Temperature)
	assert.Equal(t, 0.9, svc.lastRequest.TopP)
	assert.Equal(t, 40, svc.lastRequest.TopK)
	assert.Nil(t, svc.lastRequest.File)
}

func TestGenerate_MultipartWithFileAndParams(t *testing.T) {
	svc := &fakeChatbotService{}
	app := newTestApp(svc)

	fields := map[string]string{
		"prompt":      "summarise",
		"session_id":  "abc",
		"temperature": "0.2",
		"top_p":       "1",
		"top_k":       "5",
	}
	resp, err := app.Test(multipartRequest(t, http.MethodPost, fields, "notes.txt", "Alpha Beta"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req := svc.lastRequest
	require.NotNil(t, req)
	assert.Equal(t, "abc", req.SessionId)
	assert.Equal(t, 0.2, req.Temperature)
	assert.Equal(t, 1.0, req.TopP)
	assert.Equal(t, 5, req.TopK)
	require.NotNil(t, req.File)
	assert.Equal(t, "notes.txt", req.File.Filename)
	assert.Equal(t, "Alpha Beta", svc.fileContent)
}

func TestGenerate_UnparseableNumber(t *testing.T) {
	svc := &fakeChatbotService{}
	app := newTestApp(svc)

	resp, err := app.Test(multipartRequest(t, http.MethodPost, map[string]string{"prompt": "q", "top_k": "many"}, "", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "top_k must be a number", body["message"])
	assert.Nil(t, svc.lastRequest)
}

func TestGenerate_ServiceErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"validation", &service.ValidationError{Message: "prompt is required"}, http.StatusBadRequest, "prompt is required"},
		{"gateway", &service.GatewayError{Provider: "fake", Err: io.ErrUnexpectedEOF}, http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(&fakeChatbotService{err: tt.err})

			resp, err := app.Test(multipartRequest(t, http.MethodPost, map[string]string{"prompt": "q"}, "", ""))
			require.NoError(t, err)
			assert.Equal(t, tt.code, resp.StatusCode)
			assert.Equal(t, tt.message, decode(t, resp)["message"])
		})
	}
}

func TestGenerateJSON(t *testing.T) {
	svc := &fakeChatbotService{}
	app := newTestApp(svc)

	req := httptest.NewRequest(http.MethodPut, "/api/chatbot/v1/generate", strings.NewReader(`{"prompt":"hello","top_k":3}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NotNil(t, svc.lastRequest)
	assert.Equal(t, "hello", svc.lastRequest.Prompt)
	assert.Equal(t, 3, svc.lastRequest.TopK)
	assert.Equal(t, 0.7, svc.lastRequest.Temperature)
	assert.Equal(t, 0.9, svc.lastRequest.TopP)
}

func TestGenerateJSON_InvalidBody(t *testing.T) {
	app := newTestApp(&fakeChatbotService{})

	req := httptest.NewRequest(http.MethodPut, "/api/chatbot/v1/generate", strings.NewReader(`{"prompt":`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid request body", decode(t, resp)["message"])
}

func TestReadRoutes(t *testing.T) {
	app := newTestApp(&fakeChatbotService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/chatbot/v1/sessions", nil))
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"s-1", "s-2"}, decode(t, resp)["data"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/chatbot/v1/sessions/s-9/history", nil))
	require.NoError(t, err)
	turns := decode(t, resp)["data"].([]interface{})
	require.Len(t, turns, 1)
	assert.Equal(t, "q for s-9", turns[0].(map[string]interface{})["user_message"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.NoError(t, err)
	health := decode(t, resp)["data"].(map[string]interface{})
	assert.Equal(t, "memory", health["store"])
	assert.Equal(t, "fake", health["provider"])
}

func TestUnknownRoute(t *testing.T) {
	app := newTestApp(&fakeChatbotService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Endpoint not found", decode(t, resp)["message"])
}
