package controller

import (
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"

	"genai-chatbot-be/internal/constant"
	"genai-chatbot-be/internal/dto"
	"genai-chatbot-be/internal/pkg/serverutils"
	"genai-chatbot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const contextFileField = "context_file"

type IChatbotController interface {
	RegisterRoutes(r fiber.Router)
	Generate(ctx *fiber.Ctx) error
	GenerateJSON(ctx *fiber.Ctx) error
	ListSessions(ctx *fiber.Ctx) error
	GetHistory(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type chatbotController struct {
	chatbotService service.IChatbotService
}

func NewChatbotController(chatbotService service.IChatbotService) IChatbotController {
	return &chatbotController{
		chatbotService: chatbotService,
	}
}

func (c *chatbotController) RegisterRoutes(r fiber.Router) {
	r.Get("health", c.Health)

	h := r.Group("/chatbot/v1")
	h.Post("generate", c.Generate)
	h.Put("generate", c.GenerateJSON)
	h.Get("sessions", c.ListSessions)
	h.Get("sessions/:session_id/history", c.GetHistory)
}

// Generate handles the multipart form, with an optional context_file upload.
func (c *chatbotController) Generate(ctx *fiber.Ctx) error {
	req := newGenerateRequest()
	req.Prompt = ctx.FormValue("prompt")
	req.SessionId = ctx.FormValue("session_id")

	if err := parseSampling(ctx, req); err != nil {
		return err
	}

	fileHeader, err := ctx.FormFile(contextFileField)
	if err == nil && fileHeader.Filename != "" {
		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "unable to read context_file")
		}
		defer closeQuietly(file)

		req.File = &dto.UploadedFile{
			Filename: fileHeader.Filename,
			Content:  file,
		}
	}

	res, err := c.chatbotService.Generate(ctx.UserContext(), req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate response", res))
}

// GenerateJSON is the JSON body variant. It carries no file.
func (c *chatbotController) GenerateJSON(ctx *fiber.Ctx) error {
	req := newGenerateRequest()
	if err := ctx.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	req.File = nil

	res, err := c.chatbotService.Generate(ctx.UserContext(), req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate response", res))
}

func (c *chatbotController) ListSessions(ctx *fiber.Ctx) error {
	res := c.chatbotService.ListSessions(ctx.UserContext())
	return ctx.JSON(serverutils.SuccessResponse("Success get sessions", res))
}

func (c *chatbotController) GetHistory(ctx *fiber.Ctx) error {
	res := c.chatbotService.GetHistory(ctx.UserContext(), ctx.Params("session_id"))
	return ctx.JSON(serverutils.SuccessResponse("Success get chat history", res))
}

func (c *chatbotController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("healthy", c.chatbotService.Health()))
}

func newGenerateRequest() *dto.GenerateRequest {
	return &dto.GenerateRequest{
		Temperature: constant.DefaultTemperature,
		TopP:        constant.DefaultTopP,
		TopK:        constant.DefaultTopK,
	}
}

// parseSampling reads the optional numeric form fields. Absent or blank
// values keep their defaults; anything unparseable is a 400.
func parseSampling(ctx *fiber.Ctx, req *dto.GenerateRequest) error {
	if raw := strings.TrimSpace(ctx.FormValue("temperature")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return numberError("temperature")
		}
		req.Temperature = v
	}
	if raw := strings.TrimSpace(ctx.FormValue("top_p")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return numberError("top_p")
		}
		req.TopP = v
	}
	if raw := strings.TrimSpace(ctx.FormValue("top_k")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return numberError("top_k")
		}
		req.TopK = v
	}
	return nil
}

func numberError(field string) error {
	return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("%s must be a number", field))
}

func closeQuietly(file multipart.File) {
	_ = file.Close()
}
