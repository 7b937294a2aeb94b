package rest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"nfcExperience/business/admin"
	"nfcExperience/domain"
	"nfcExperience/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminService interface {
	GetSetting(ctx context.Context, key string) (domain.Setting, error)
	UpdateSetting(ctx context.Context, key, value string) (domain.Setting, error)
	RegisterUnit(ctx context.Context, req admin.RegisterUnitRequest) (domain.Unit, error)
	GetUnit(ctx context.Context, uid int64) (domain.Unit, error)
	GetScan(ctx context.Context, uid int64) (domain.Scan, error)
	ExportScans(ctx context.Context, w io.Writer) (int, error)
	NFCURL(req admin.NFCURLRequest) (string, error)
}

type AdminAuthService interface {
	Login(ctx context.Context, username, password string) (string, error)
}

type AdminHandler struct {
	adminService AdminService
	authService  AdminAuthService
	validator    *validator.Validate
	timeout      time.Duration
}

func NewAdminHandler(adminService AdminService, authService AdminAuthService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		authService:  authService,
		validator:    validator.New(),
		timeout:      10 * time.Second,
	}
}

type AdminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UpdateSettingRequest struct {
	Value string `json:"value" validate:"required"`
}

// POST /api/v1/admin/login
func (h *AdminHandler) Login(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	var req AdminLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	token, err := h.authService.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, admin.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]string{"token": token}))
}

// GET /api/v1/admin/settings/:key
func (h *AdminHandler) GetSetting(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	setting, err := h.adminService.GetSetting(ctx, c.Param("key"))
	if err != nil {
		return adminError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(setting))
}

// PUT /api/v1/admin/settings/:key
func (h *AdminHandler) UpdateSetting(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	var req UpdateSettingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	setting, err := h.adminService.UpdateSetting(ctx, c.Param("key"), req.Value)
	if err != nil {
		return adminError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(setting))
}

// POST /api/v1/admin/units
func (h *AdminHandler) RegisterUnit(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	var req admin.RegisterUnitRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	unit, err := h.adminService.RegisterUnit(ctx, req)
	if err != nil {
		return adminError(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(unit))
}

// GET /api/v1/admin/units/:uid
func (h *AdminHandler) GetUnit(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	uid, err := strconv.ParseInt(c.Param("uid"), 10, 64)
	if err != nil || uid <= 0 {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid uid"})
	}

	unit, err := h.adminService.GetUnit(ctx, uid)
	if err != nil {
		return adminError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(unit))
}

// GET /api/v1/admin/scans/:uid
func (h *AdminHandler) GetScan(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	uid, err := strconv.ParseInt(c.Param("uid"), 10, 64)
	if err != nil || uid <= 0 {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid uid"})
	}

	scan, err := h.adminService.GetScan(ctx, uid)
	if err != nil {
		return adminError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(scan))
}

// GET /api/v1/admin/scans/export
func (h *AdminHandler) ExportScans(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	var buf bytes.Buffer
	n, err := h.adminService.ExportScans(ctx, &buf)
	if err != nil {
		logger.Error("failed to export scans", "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: "failed to export scans"})
	}

	filename := fmt.Sprintf("scans-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	c.Response().Header().Set("X-Total-Count", strconv.Itoa(n))

	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

// GET /api/v1/admin/nfc-url?lang=&brand=&type=&cc=&prd=&uid=
func (h *AdminHandler) NFCURL(c echo.Context) error {
	var req admin.NFCURLRequest
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	url, err := h.adminService.NFCURL(req)
	if err != nil {
		return adminError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]string{"url": url}))
}

func adminError(c echo.Context, err error) error {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs),
		errors.Is(err, domain.ErrInvalidSetting):
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, admin.ErrUnknownSetting),
		errors.Is(err, admin.ErrProductOrCampaignNotFound):
		return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
	case errors.Is(err, domain.ErrUnitExists):
		return c.JSON(http.StatusConflict, ResponseError{Message: err.Error()})
	default:
		logger.Error("admin request failed", "path", c.Request().URL.Path, "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: "internal server error"})
	}
}
