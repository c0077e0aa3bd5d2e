package controller

import (
	"time"

	"github.com/CustomGPTer/RAMS-Generator/internal/constant"
	"github.com/CustomGPTer/RAMS-Generator/internal/dto"
	"github.com/CustomGPTer/RAMS-Generator/internal/pkg/apperror"
	"github.com/CustomGPTer/RAMS-Generator/internal/pkg/serverutils"
	"github.com/CustomGPTer/RAMS-Generator/internal/service"
	"github.com/CustomGPTer/RAMS-Generator/pkg/rams/assembly"
	"github.com/CustomGPTer/RAMS-Generator/pkg/rams/section"

	"github.com/gofiber/fiber/v2"
)

type IRamsController interface {
	RegisterRoutes(r fiber.Router)
	RegisterLegacyRoutes(r fiber.Router)
	StartSession(ctx *fiber.Ctx) error
	SubmitAnswer(ctx *fiber.Ctx) error
	GetSession(ctx *fiber.Ctx) error
	Generate(ctx *fiber.Ctx) error
	GenerateFromAnswers(ctx *fiber.Ctx) error
	RenderSection(ctx *fiber.Ctx) error
}

type ramsController struct {
	questionnaire service.IQuestionnaireService
	documents     service.IDocumentService
	cookieTTL     time.Duration
}

func NewRamsController(
	questionnaire service.IQuestionnaireService,
	documents service.IDocumentService,
	cookieTTL time.Duration,
) IRamsController {
	return &ramsController{
		questionnaire: questionnaire,
		documents:     documents,
		cookieTTL:     cookieTTL,
	}
}

func (c *ramsController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/rams/v1")
	h.Post("/session", c.StartSession)
	h.Get("/session/:id", c.GetSession)
	h.Post("/answer", c.SubmitAnswer)
	h.Get("/generate", c.Generate)
	h.Post("/generate", c.Generate)
	h.Post("/generate-rams", c.GenerateFromAnswers)
	h.Post("/section/:kind", c.RenderSection)
}

// RegisterLegacyRoutes keeps the original single-shot endpoints reachable
// for existing GPT actions.
func (c *ramsController) RegisterLegacyRoutes(r fiber.Router) {
	r.Post("/generate_rams", c.GenerateFromAnswers)
	r.Post("/generate_risk_assessment", c.renderKind(section.RiskAssessment))
	r.Post("/generate_sequence", c.renderKind(section.SequenceOfActivities))
	r.Post("/generate_method_statement", c.renderKind(section.MethodStatement))
}

func (c *ramsController) StartSession(ctx *fiber.Ctx) error {
	var req dto.StartSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.questionnaire.Start(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	c.setSessionCookie(ctx, res.SessionId)
	return ctx.JSON(serverutils.SuccessResponse("Success start session", res))
}

func (c *ramsController) SubmitAnswer(ctx *fiber.Ctx) error {
	var req dto.SubmitAnswerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.questionnaire.SubmitAnswer(ctx.UserContext(), c.sessionId(ctx, req.SessionId), req.Answer)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success submit answer", res))
}

func (c *ramsController) GetSession(ctx *fiber.Ctx) error {
	res, err := c.questionnaire.Status(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get session", res))
}

func (c *ramsController) Generate(ctx *fiber.Ctx) error {
	var req dto.GenerateRequest
	if err := ctx.QueryParser(&req); err != nil {
		return apperror.Validation("invalid query")
	}
	if ctx.Method() == fiber.MethodPost && len(ctx.Body()) > 0 {
		var body dto.GenerateRequest
		if err := ctx.BodyParser(&body); err != nil {
			return apperror.Validation("invalid request body")
		}
		if body.SessionId != "" {
			req.SessionId = body.SessionId
		}
	}

	out, err := c.documents.Generate(ctx.UserContext(), c.sessionId(ctx, req.SessionId))
	if err != nil {
		return err
	}

	ctx.ClearCookie(constant.SessionCookieName)
	return sendDocument(ctx, out)
}

func (c *ramsController) GenerateFromAnswers(ctx *fiber.Ctx) error {
	var req dto.GenerateFromAnswersRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	out, err := c.documents.GenerateFromAnswers(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return sendDocument(ctx, out)
}

func (c *ramsController) RenderSection(ctx *fiber.Ctx) error {
	return c.render(ctx, ctx.Params("kind"))
}

func (c *ramsController) renderKind(kind section.Kind) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		return c.render(ctx, string(kind))
	}
}

func (c *ramsController) render(ctx *fiber.Ctx, kind string) error {
	var req dto.RenderSectionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	out, err := c.documents.RenderSection(ctx.UserContext(), kind, &req)
	if err != nil {
		return err
	}

	return sendDocument(ctx, out)
}

// sessionId prefers the explicit id and falls back to the session cookie.
func (c *ramsController) sessionId(ctx *fiber.Ctx, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return ctx.Cookies(constant.SessionCookieName)
}

func (c *ramsController) setSessionCookie(ctx *fiber.Ctx, id string) {
	ctx.Cookie(&fiber.Cookie{
		Name:     constant.SessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(c.cookieTTL.Seconds()),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func sendDocument(ctx *fiber.Ctx, out *assembly.Output) error {
	ctx.Set(fiber.HeaderContentType, out.ContentType)
	ctx.Set(fiber.HeaderContentDisposition, "attachment; filename="+out.Filename)
	return ctx.Send(out.Bytes)
}
