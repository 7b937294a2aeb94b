package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"nfcExperience/business/experience"
	"nfcExperience/business/nfcparams"
	"nfcExperience/internal/i18n"
	"nfcExperience/internal/repository/sqlite"

	"github.com/labstack/echo/v4"
)

// payload digs the object carrying key out of a success envelope.
func payload(t *testing.T, body []byte, key string, out any) {
	t.Helper()
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	obj := findObject(raw, key)
	if obj == nil {
		t.Fatalf("no object with %q in %s", key, body)
	}
	b, _ := json.Marshal(obj)
	if err := json.Unmarshal(b, out); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
}

func findObject(v any, key string) map[string]any {
	switch x := v.(type) {
	case map[string]any:
		if _, ok := x[key]; ok {
			return x
		}
		for _, child := range x {
			if found := findObject(child, key); found != nil {
				return found
			}
		}
	case []any:
		for _, child := range x {
			if found := findObject(child, key); found != nil {
				return found
			}
		}
	}
	return nil
}

type stubExperienceService struct {
	res       experience.Resolution
	err       error
	sessionID string
	params    nfcparams.Params
}

func (s *stubExperienceService) ResolveInSession(ctx context.Context, sessionID string, params nfcparams.Params, userAgent string) (experience.Resolution, error) {
	s.sessionID = sessionID
	s.params = params
	return s.res, s.err
}

type stubTokens struct {
	id  string
	err error
}

func (s stubTokens) Parse(token string) (string, error) { return s.id, s.err }

func newExperienceEcho(h *ExperienceHandler) *echo.Echo {
	e := echo.New()
	e.GET("/", h.RedirectToLanguage)
	e.GET("/:lang", h.Landing)
	e.GET("/:lang/product/:brand", h.Resolve)
	return e
}

func get(e *echo.Echo, target string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestResolveErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		lang       string
		err        error
		wantStatus int
		wantMsg    string
		wantReload bool
	}{
		{
			name:       "invalid params keep the joined message",
			lang:       "en",
			err:        &experience.Error{Code: experience.CodeInvalidParams, Message: "Invalid or missing unit ID (uid)"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Invalid or missing unit ID (uid)",
		},
		{
			name:       "invalid unit is localised",
			lang:       "fr",
			err:        &experience.Error{Code: experience.CodeInvalidUnit},
			wantStatus: http.StatusNotFound,
			wantMsg:    i18n.T("fr", "errors.invalidUnit"),
			wantReload: true,
		},
		{
			name:       "missing product or campaign",
			lang:       "en",
			err:        &experience.Error{Code: experience.CodeInvalidProductOrCampaign},
			wantStatus: http.StatusNotFound,
			wantMsg:    i18n.T("en", "errors.invalidProductOrCampaign"),
			wantReload: true,
		},
		{
			name:       "network",
			lang:       "en",
			err:        &experience.Error{Code: experience.CodeNetwork, Cause: errors.New("db down")},
			wantStatus: http.StatusServiceUnavailable,
			wantMsg:    i18n.T("en", "errors.networkError"),
			wantReload: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewExperienceHandler(&stubExperienceService{err: tt.err}, stubTokens{}, time.Second)
			rec := get(newExperienceEcho(h), "/"+tt.lang+"/product/IQOS?type=d&cc=101&prd=1001&uid=1", nil)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body ExperienceError
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.Message != tt.wantMsg || body.Reload != tt.wantReload {
				t.Fatalf("unexpected body %+v", body)
			}
		})
	}
}

func TestResolveSessionHeader(t *testing.T) {
	svc := &stubExperienceService{res: experience.Resolution{Experience: experience.SupportHub}}
	h := NewExperienceHandler(svc, stubTokens{id: "abc"}, time.Second)
	e := newExperienceEcho(h)

	rec := get(e, "/en/product/IQOS?type=d&cc=101&prd=1001&uid=1", map[string]string{HeaderExperienceSession: "token"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if svc.sessionID != "abc" {
		t.Fatalf("session id = %q", svc.sessionID)
	}

	bad := NewExperienceHandler(svc, stubTokens{err: experience.ErrInvalidSessionToken}, time.Second)
	rec = get(newExperienceEcho(bad), "/en/product/IQOS?type=d&cc=101&prd=1001&uid=1", map[string]string{HeaderExperienceSession: "forged"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRedirectToLanguage(t *testing.T) {
	h := NewExperienceHandler(&stubExperienceService{}, stubTokens{}, time.Second)
	e := newExperienceEcho(h)

	rec := get(e, "/", nil)
	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != "/en" {
		t.Fatalf("got %d -> %s", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}

	rec = get(e, "/", map[string]string{"Accept-Language": "fr-FR,fr;q=0.9"})
	if rec.Header().Get(echo.HeaderLocation) != "/fr" {
		t.Fatalf("got %s, want /fr", rec.Header().Get(echo.HeaderLocation))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: i18n.LangCookieName, Value: "fr"})
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Header().Get(echo.HeaderLocation) != "/fr" {
		t.Fatalf("cookie ignored: %s", rec.Header().Get(echo.HeaderLocation))
	}
}

func TestLanding(t *testing.T) {
	h := NewExperienceHandler(&stubExperienceService{}, stubTokens{}, time.Second)
	rec := get(newExperienceEcho(h), "/fr", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body LandingResponse
	payload(t, rec.Body.Bytes(), "sample_urls", &body)
	if body.Lang != "fr" || len(body.SampleURLs) != 2 {
		t.Fatalf("unexpected landing %+v", body)
	}
}

func TestResolveEndToEnd(t *testing.T) {
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "nfc.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if err := store.SeedSample(context.Background()); err != nil {
		t.Fatal(err)
	}

	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	svc := experience.NewService(store, experience.WithClock(func() time.Time { return now }))
	e := newExperienceEcho(NewExperienceHandler(svc, stubTokens{}, time.Second))

	target := "/en/product/IQOS?type=d&cc=101&prd=1001&uid=999001"
	rec := get(e, target, map[string]string{"User-Agent": "Mozilla/5.0"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var first ExperienceResponse
	payload(t, rec.Body.Bytes(), "experience", &first)
	if first.Experience != experience.Unboxing || first.Model == nil {
		t.Fatalf("expected unboxing with model, got %+v", first)
	}
	if first.Unit.ManufacturedAt != nil {
		t.Fatal("synthesized unit must have no manufactured_at")
	}

	cookies := rec.Result().Cookies()
	if len(cookies) == 0 || cookies[0].Name != i18n.LangCookieName || cookies[0].Value != "en" {
		t.Fatalf("language cookie not set: %+v", cookies)
	}

	now = now.Add(400 * time.Second)
	rec = get(e, target, nil)
	var second ExperienceResponse
	payload(t, rec.Body.Bytes(), "experience", &second)
	if second.Experience != experience.SupportHub || second.Model != nil {
		t.Fatalf("expected support hub, got %+v", second)
	}

	scan, ok, err := store.FindScan(context.Background(), 999001)
	if err != nil || !ok || scan.ScanCount != 2 {
		t.Fatalf("scan = %+v ok=%v err=%v", scan, ok, err)
	}
}
