package experience

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"nfcExperience/business/nfcparams"
	"nfcExperience/domain"
)

type clock struct {
	t time.Time
}

func (c *clock) Now() time.Time { return c.t }

func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func seededGateway() *fakeGateway {
	g := newFakeGateway()
	modelURL := "/models/iqos.glb"
	g.addProduct(domain.Product{Prd: 1001, Brand: "IQOS", Name: "IQOS ILUMA", Type: "d", ModelURL: &modelURL, ModelScale: 10})
	g.campaigns[101] = domain.Campaign{Cc: 101, Name: "Launch", ThemePrimary: "#111111", ThemeSecondary: "#222222", ThemeAccent: "#333333"}
	g.settings[domain.SettingPreRegistrationRequired] = "false"
	g.settings[domain.SettingScanCooldownSeconds] = "300"
	return g
}

func params(t *testing.T, lang, brand, rawQuery string) nfcparams.Params {
	t.Helper()
	q, err := url.ParseQuery(rawQuery)
	if err != nil {
		t.Fatalf("parse query: %v", err)
	}
	return nfcparams.Parse(lang, brand, q)
}

func newTestService(g Gateway, c *clock, opts ...Option) *Service {
	opts = append([]Option{WithClock(c.Now)}, opts...)
	return NewService(g, opts...)
}

const sampleQuery = "type=d&cc=101&prd=1001&uid=999001"

func TestResolveFirstScanCreatesRecord(t *testing.T) {
	g := seededGateway()
	c := &clock{t: time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)}
	svc := newTestService(g, c)

	res, err := svc.Resolve(context.Background(), params(t, "en", "IQOS", sampleQuery), "Mozilla/5.0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.FirstScan || res.Experience != Unboxing {
		t.Fatalf("expected unboxing first scan, got %+v", res)
	}

	scan, ok := g.scans[999001]
	if !ok {
		t.Fatal("expected scan row")
	}
	if scan.ScanCount != 1 {
		t.Fatalf("scan_count = %d, want 1", scan.ScanCount)
	}
	if !scan.FirstScanAt.Equal(c.t) || !scan.LastScanAt.Equal(c.t) {
		t.Fatalf("unexpected timestamps %+v", scan)
	}
	if scan.UserAgent == nil || *scan.UserAgent != "Mozilla/5.0" {
		t.Fatalf("user agent not stored: %+v", scan.UserAgent)
	}
}

func TestResolveRepeatAfterCooldown(t *testing.T) {
	g := seededGateway()
	c := &clock{t: time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)}
	svc := newTestService(g, c)
	p := params(t, "en", "IQOS", sampleQuery)

	if _, err := svc.Resolve(context.Background(), p, "ua"); err != nil {
		t.Fatal(err)
	}
	firstScanAt := g.scans[999001].FirstScanAt

	c.Advance(400 * time.Second)
	res, err := svc.Resolve(context.Background(), p, "ua")
	if err != nil {
		t.Fatal(err)
	}
	if res.FirstScan || res.Experience != SupportHub {
		t.Fatalf("expected support hub, got %+v", res)
	}

	scan := g.scans[999001]
	if scan.ScanCount != 2 {
		t.Fatalf("scan_count = %d, want 2", scan.ScanCount)
	}
	if !scan.FirstScanAt.Equal(firstScanAt) {
		t.Fatal("first_scan_at must not change")
	}
	if !scan.LastScanAt.Equal(c.t) {
		t.Fatal("last_scan_at must advance")
	}
}

func TestResolveCooldownBoundary(t *testing.T) {
	tests := []struct {
		name      string
		elapsed   time.Duration
		firstScan bool
	}{
		{"just scanned", 0, true},
		{"inside window", 299*time.Second + 999*time.Millisecond, true},
		{"exactly at window", 300 * time.Second, false},
		{"long after", 72 * time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := seededGateway()
			start := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
			g.scans[999001] = domain.Scan{UID: 999001, ScanCount: 7, FirstScanAt: start, LastScanAt: start}

			c := &clock{t: start.Add(tt.elapsed)}
			svc := newTestService(g, c)

			res, err := svc.Resolve(context.Background(), params(t, "en", "IQOS", sampleQuery), "")
			if err != nil {
				t.Fatal(err)
			}
			if res.FirstScan != tt.firstScan {
				t.Fatalf("first scan = %v, want %v", res.FirstScan, tt.firstScan)
			}
			if g.scans[999001].ScanCount != 8 {
				t.Fatalf("scan_count = %d, want 8", g.scans[999001].ScanCount)
			}
		})
	}
}

func TestResolveCooldownDefaults(t *testing.T) {
	for _, raw := range []string{"", "abc"} {
		g := seededGateway()
		if raw == "" {
			delete(g.settings, domain.SettingScanCooldownSeconds)
		} else {
			g.settings[domain.SettingScanCooldownSeconds] = raw
		}
		start := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
		g.scans[999001] = domain.Scan{UID: 999001, ScanCount: 1, FirstScanAt: start, LastScanAt: start}

		svc := newTestService(g, &clock{t: start.Add(299 * time.Second)})
		res, err := svc.Resolve(context.Background(), params(t, "en", "IQOS", sampleQuery), "")
		if err != nil {
			t.Fatal(err)
		}
		if !res.FirstScan {
			t.Fatalf("cooldown %q: expected default 300s window", raw)
		}
	}
}

func TestResolveInvalidParamsSkipsDataAccess(t *testing.T) {
	g := seededGateway()
	svc := newTestService(g, &clock{t: time.Now()})

	_, err := svc.Resolve(context.Background(), params(t, "en", "ACME", "type=z&cc=101"), "")
	if CodeOf(err) != CodeInvalidParams {
		t.Fatalf("expected invalid params, got %v", err)
	}
	want := "Invalid or missing brand: ACME, Invalid or missing type: z, Invalid or missing product code (prd), Invalid or missing unit ID (uid)"
	var e *Error
	if !errors.As(err, &e) || e.Message != want {
		t.Fatalf("message = %q", e.Message)
	}
	if g.calls != 0 {
		t.Fatalf("expected no gateway calls, got %d", g.calls)
	}
}

func TestResolvePreRegistrationMissingUnit(t *testing.T) {
	g := seededGateway()
	g.settings[domain.SettingPreRegistrationRequired] = "true"
	svc := newTestService(g, &clock{t: time.Now()})

	_, err := svc.Resolve(context.Background(), params(t, "en", "IQOS", "type=d&cc=101&prd=1001&uid=999999"), "")
	if !errors.Is(err, &Error{Code: CodeInvalidUnit}) {
		t.Fatalf("expected invalid unit, got %v", err)
	}
	if g.scanReads != 0 || g.upserts != 0 {
		t.Fatalf("expected no scan access, reads=%d upserts=%d", g.scanReads, g.upserts)
	}
}

func TestResolvePreRegistrationLoadsUnit(t *testing.T) {
	g := seededGateway()
	g.settings[domain.SettingPreRegistrationRequired] = "true"
	made := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)
	g.units[999001] = domain.Unit{UID: 999001, Prd: 1001, Brand: "IQOS", Cc: 101, ManufacturedAt: &made}
	svc := newTestService(g, &clock{t: time.Now()})

	res, err := svc.Resolve(context.Background(), params(t, "en", "IQOS", sampleQuery), "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Unit.ManufacturedAt == nil || !res.Unit.ManufacturedAt.Equal(made) {
		t.Fatalf("expected stored unit, got %+v", res.Unit)
	}
	if res.Unit.Product.Name != "IQOS ILUMA" {
		t.Fatalf("expected joined product, got %+v", res.Unit.Product)
	}
	if res.Theme.Primary != "#111111" {
		t.Fatalf("expected campaign theme, got %+v", res.Theme)
	}
}

func TestResolvePreRegistrationOnlyExactTrue(t *testing.T) {
	g := seededGateway()
	g.settings[domain.SettingPreRegistrationRequired] = "TRUE"
	svc := newTestService(g, &clock{t: time.Now()})

	if _, err := svc.Resolve(context.Background(), params(t, "en", "IQOS", "type=d&cc=101&prd=1001&uid=999999"), ""); err != nil {
		t.Fatalf("expected synthesized unit, got %v", err)
	}
}

func TestResolveSynthesizesUnit(t *testing.T) {
	g := seededGateway()
	now := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	svc := newTestService(g, &clock{t: now})

	res, err := svc.Resolve(context.Background(), params(t, "fr", "IQOS", "type=d&cc=101&prd=1001&uid=424242"), "")
	if err != nil {
		t.Fatal(err)
	}
	u := res.Unit
	if u.UID != 424242 || u.Prd != 1001 || u.Brand != "IQOS" || u.Cc != 101 {
		t.Fatalf("unexpected unit %+v", u)
	}
	if u.ManufacturedAt != nil {
		t.Fatal("synthesized unit must have no manufactured_at")
	}
	if !u.CreatedAt.Equal(now) {
		t.Fatalf("created_at = %v, want %v", u.CreatedAt, now)
	}
	if res.Lang != "fr" {
		t.Fatalf("lang = %s", res.Lang)
	}
	if _, persisted := g.units[424242]; persisted {
		t.Fatal("synthesized unit must not be persisted")
	}
}

func TestResolveMissingProductOrCampaign(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"unknown product", "type=d&cc=101&prd=5555&uid=1"},
		{"unknown campaign", "type=d&cc=909&prd=1001&uid=1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := seededGateway()
			svc := newTestService(g, &clock{t: time.Now()})
			_, err := svc.Resolve(context.Background(), params(t, "en", "IQOS", tt.query), "")
			if CodeOf(err) != CodeInvalidProductOrCampaign {
				t.Fatalf("expected invalid product or campaign, got %v", err)
			}
			if g.upserts != 0 {
				t.Fatal("no scan must be written")
			}
		})
	}
}

func TestResolveReadFailureIsNetworkError(t *testing.T) {
	g := seededGateway()
	cause := errors.New("connection refused")
	g.readErr = cause
	svc := newTestService(g, &clock{t: time.Now()})

	_, err := svc.Resolve(context.Background(), params(t, "en", "IQOS", sampleQuery), "")
	if CodeOf(err) != CodeNetwork {
		t.Fatalf("expected network error, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to be wrapped")
	}
}

func TestResolveSwallowsPersistFailure(t *testing.T) {
	g := seededGateway()
	g.upsertErr = errors.New("write timeout")
	pub := &fakePublisher{}
	svc := newTestService(g, &clock{t: time.Now()}, WithPublisher(pub))

	res, err := svc.Resolve(context.Background(), params(t, "en", "IQOS", sampleQuery), "")
	if err != nil {
		t.Fatalf("persist failure must not surface: %v", err)
	}
	if res.Experience != Unboxing {
		t.Fatalf("unexpected experience %s", res.Experience)
	}
	if len(pub.events) != 0 {
		t.Fatal("no event must be published for a failed write")
	}
}

func TestResolvePublishesScanEvent(t *testing.T) {
	g := seededGateway()
	pub := &fakePublisher{err: errors.New("broker down")}
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestService(g, &clock{t: now}, WithPublisher(pub))

	if _, err := svc.Resolve(context.Background(), params(t, "en", "IQOS", sampleQuery), ""); err != nil {
		t.Fatalf("publish failure must not surface: %v", err)
	}
	if len(pub.events) != 1 {
		t.Fatalf("events = %d, want 1", len(pub.events))
	}
	ev := pub.events[0]
	if ev.UID != 999001 || ev.ScanCount != 1 || ev.Experience != Unboxing || !ev.ScannedAt.Equal(now) {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestResolveDefaultTheme(t *testing.T) {
	if got := domain.ThemeOf(nil); got != domain.DefaultTheme {
		t.Fatalf("got %+v", got)
	}
	if got := domain.ThemeOf(&domain.Campaign{}); got.Primary != "#0066CC" {
		t.Fatalf("got %+v", got)
	}
}

func TestSelect(t *testing.T) {
	if Select(true) != Unboxing {
		t.Fatal("first scan must select unboxing")
	}
	if Select(false) != SupportHub {
		t.Fatal("repeat scan must select support hub")
	}
}

func TestCodeHTTPStatus(t *testing.T) {
	tests := map[Code]int{
		CodeInvalidParams:            400,
		CodeInvalidUnit:              404,
		CodeInvalidProductOrCampaign: 404,
		CodeNetwork:                  503,
		Code("other"):                500,
	}
	for code, want := range tests {
		if got := code.HTTPStatus(); got != want {
			t.Errorf("%s: got %d, want %d", code, got, want)
		}
	}
}
