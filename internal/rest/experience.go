package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"nfcExperience/business/experience"
	"nfcExperience/business/nfcparams"
	"nfcExperience/domain"
	"nfcExperience/internal/i18n"
	"nfcExperience/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

// HeaderExperienceSession carries the token issued by POST /api/v1/sessions.
const HeaderExperienceSession = "X-Experience-Session"

type ExperienceService interface {
	ResolveInSession(ctx context.Context, sessionID string, params nfcparams.Params, userAgent string) (experience.Resolution, error)
}

type SessionTokenParser interface {
	Parse(token string) (string, error)
}

type ExperienceHandler struct {
	experienceService ExperienceService
	tokens            SessionTokenParser
	timeout           time.Duration
}

func NewExperienceHandler(experienceService ExperienceService, tokens SessionTokenParser, timeout time.Duration) *ExperienceHandler {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ExperienceHandler{
		experienceService: experienceService,
		tokens:            tokens,
		timeout:           timeout,
	}
}

type ExperienceResponse struct {
	Experience experience.Experience  `json:"experience"`
	FirstScan  bool                   `json:"first_scan"`
	Lang       string                 `json:"lang"`
	Theme      domain.Theme           `json:"theme"`
	Unit       domain.Unit            `json:"unit"`
	Model      *domain.ModelTransform `json:"model,omitempty"`
}

// ExperienceError is the body of a failed resolution. Reload is false
// only for bad links, where reloading cannot help.
type ExperienceError struct {
	Code    experience.Code `json:"code"`
	Message string          `json:"message"`
	Reload  bool            `json:"reload"`
}

// GET /:lang/product/:brand?type=&cc=&prd=&uid=
func (h *ExperienceHandler) Resolve(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	params := nfcparams.Parse(c.Param("lang"), c.Param("brand"), c.QueryParams())

	if tag, ok := i18n.Parse(params.Lang); ok {
		i18n.SetLanguageCookie(c.Response(), tag)
	}

	sessionID := ""
	if token := c.Request().Header.Get(HeaderExperienceSession); token != "" {
		id, err := h.tokens.Parse(token)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, ResponseError{Message: i18n.T(params.Lang, "errors.invalidSession")})
		}
		sessionID = id
	}

	res, err := h.experienceService.ResolveInSession(ctx, sessionID, params, c.Request().UserAgent())
	if err != nil {
		return h.resolveError(c, params.Lang, err)
	}

	body := ExperienceResponse{
		Experience: res.Experience,
		FirstScan:  res.FirstScan,
		Lang:       res.Lang,
		Theme:      res.Theme,
		Unit:       res.Unit,
	}
	if res.Experience == experience.Unboxing {
		model := res.Unit.Product.Transform()
		body.Model = &model
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(body))
}

func (h *ExperienceHandler) resolveError(c echo.Context, lang string, err error) error {
	var resErr *experience.Error
	if !errors.As(err, &resErr) {
		return err
	}

	body := ExperienceError{Code: resErr.Code, Reload: true}
	switch resErr.Code {
	case experience.CodeInvalidParams:
		body.Message = resErr.Message
		body.Reload = false
	case experience.CodeInvalidUnit:
		body.Message = i18n.T(lang, "errors.invalidUnit")
	case experience.CodeInvalidProductOrCampaign:
		body.Message = i18n.T(lang, "errors.invalidProductOrCampaign")
	default:
		logger.Error("experience resolution failed", "path", c.Request().URL.Path, "error", err)
		body.Message = i18n.T(lang, "errors.networkError")
	}

	return c.JSON(resErr.Code.HTTPStatus(), body)
}

type LandingResponse struct {
	Lang       string   `json:"lang"`
	Title      string   `json:"title"`
	Subtitle   string   `json:"subtitle"`
	SampleURLs []string `json:"sample_urls"`
}

// GET /:lang
func (h *ExperienceHandler) Landing(c echo.Context) error {
	tag, ok := i18n.Parse(c.Param("lang"))
	if !ok {
		tag = i18n.Default()
	}
	i18n.SetLanguageCookie(c.Response(), tag)

	lang := i18n.Base(tag)
	return c.JSON(http.StatusOK, fres.Response.StatusOK(LandingResponse{
		Lang:     lang,
		Title:    i18n.T(lang, "landing.title"),
		Subtitle: i18n.T(lang, "landing.subtitle"),
		SampleURLs: []string{
			nfcparams.BuildURL(nfcparams.LangEN, "IQOS", "d", 101, 1001, 999001),
			nfcparams.BuildURL(nfcparams.LangFR, "IQOS", "d", 102, 1001, 999002),
		},
	}))
}

// GET / sends the visitor to their preferred language.
func (h *ExperienceHandler) RedirectToLanguage(c echo.Context) error {
	tag := i18n.PreferredTag(c.Request())
	return c.Redirect(http.StatusFound, "/"+i18n.Base(tag))
}
