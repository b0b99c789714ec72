package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"reposition/internal/jobs"
	"reposition/internal/models"
	"reposition/internal/pipeline"
	"reposition/internal/repository"
	"reposition/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }
func strp(v string) *string     { return &v }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// testStack is the whole service wired over in-memory sqlite with a stub
// scorer, close enough to production wiring to exercise the routes.
type testStack struct {
	db       *repository.DB
	players  *repository.PlayerRepository
	compat   *repository.CompatibilityRepository
	catalog  *repository.CatalogRepository
	favs     *repository.FavoriteRepository
	pipeline *pipeline.Pipeline
	analyzer *jobs.Analyzer
}

type scoreFunc func(ctx context.Context, inputPath, outputPath string) error

func (f scoreFunc) Score(ctx context.Context, inputPath, outputPath string) error {
	return f(ctx, inputPath, outputPath)
}

func writeOutput(doc string) scoreFunc {
	return func(ctx context.Context, inputPath, outputPath string) error {
		return os.WriteFile(outputPath, []byte(doc), 0o644)
	}
}

func newTestStack(t *testing.T, scorer scoreFunc) *testStack {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db := repository.NewDB(gdb)
	if err := db.AutoMigrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	s := &testStack{
		db:      db,
		players: repository.NewPlayerRepository(db),
		compat:  repository.NewCompatibilityRepository(db),
		catalog: repository.NewCatalogRepository(db),
		favs:    repository.NewFavoriteRepository(db),
	}
	s.pipeline = pipeline.New(scorer, s.compat, nil, quietLogger())
	s.analyzer = jobs.NewAnalyzer(s.players, s.pipeline, 100, quietLogger())
	return s
}

func (s *testStack) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	err := s.catalog.BulkCreateCompetitions(ctx, []models.Competition{
		{CompetitionID: "ES1", Name: "LaLiga", CountryName: strp("Spain")},
	}, 10)
	if err != nil {
		t.Fatalf("seed competitions: %v", err)
	}
	err = s.catalog.BulkCreateClubs(ctx, []models.Club{
		{ClubID: 1, Name: "Real Madrid", DomesticCompetitionID: strp("ES1")},
	}, 10)
	if err != nil {
		t.Fatalf("seed clubs: %v", err)
	}
	err = s.players.BulkCreate(ctx, []models.Player{
		{PlayerID: 100, Name: "Alvaro Costa", SubPosition: strp("ST"), Position: strp("Attack"),
			CurrentClubName: strp("Real Madrid"), Age: intp(24), Ovr: intp(88)},
		{PlayerID: 101, Name: "Ben Turner", SubPosition: strp("CB"), Position: strp("Defender"),
			CurrentClubName: strp("Real Madrid"), Age: intp(29), Ovr: intp(84)},
	}, 10)
	if err != nil {
		t.Fatalf("seed players: %v", err)
	}
	err = s.compat.BulkUpsert(ctx, []models.PositionCompatibility{
		{PlayerID: 100, NaturalPos: strp("ST"), StFit: floatp(92),
			BestPos: strp("ST"), BestFitScore: floatp(92)},
	})
	if err != nil {
		t.Fatalf("seed compatibility: %v", err)
	}
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request %s %s: %v", req.Method, req.URL, err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	resp.Body.Close()
	return resp, body
}

func TestSearchEndpoint(t *testing.T) {
	s := newTestStack(t, nil)
	s.seed(t)
	h := NewPlayerHandler(service.NewPlayerService(s.players, s.compat))
	app := fiber.New()
	app.Get("/api/v1/players", h.Search)

	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet,
		"/api/v1/players?position=ST&sortBy=compatibility", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	var payload struct {
		Count   int                              `json:"count"`
		Players []models.PlayerWithCompatibility `json:"players"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.Count != 1 || payload.Players[0].PlayerID != 100 {
		t.Errorf("payload = %+v", payload)
	}
	if payload.Players[0].Compatibility == nil {
		t.Error("compatibility not attached")
	}

	// Compatibility sort without a position is the caller's mistake.
	resp, _ = doRequest(t, app, httptest.NewRequest(http.MethodGet,
		"/api/v1/players?sortBy=compatibility", nil))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}

	resp, _ = doRequest(t, app, httptest.NewRequest(http.MethodGet,
		"/api/v1/players?ageMin=abc", nil))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("non-numeric ageMin: status = %d, want 400", resp.StatusCode)
	}
}

func TestSearchEndpoint_PaginationDefaults(t *testing.T) {
	s := newTestStack(t, nil)
	s.seed(t)
	h := NewPlayerHandler(service.NewPlayerService(s.players, s.compat))
	app := fiber.New()
	app.Get("/api/v1/players", h.Search)

	var payload struct {
		Count    int                              `json:"count"`
		PageSize int                              `json:"pageSize"`
		Players  []models.PlayerWithCompatibility `json:"players"`
	}

	// No pageSize means the whole set, not a default slice.
	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/players", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.Count != 2 || payload.PageSize != 0 {
		t.Errorf("count = %d, pageSize = %d, want 2 and 0", payload.Count, payload.PageSize)
	}

	// An explicit pageSize is honored as given, with no upper cap.
	resp, body = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/players?pageSize=500", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.Count != 2 || payload.PageSize != 500 {
		t.Errorf("count = %d, pageSize = %d, want 2 and 500", payload.Count, payload.PageSize)
	}

	resp, body = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/players?pageSize=1&page=2", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.Count != 1 || len(payload.Players) != 1 {
		t.Errorf("page 2 of size 1: count = %d", payload.Count)
	}
}

func TestPlayerDetailEndpoints(t *testing.T) {
	s := newTestStack(t, nil)
	s.seed(t)
	h := NewPlayerHandler(service.NewPlayerService(s.players, s.compat))
	app := fiber.New()
	app.Get("/api/v1/players/:playerID", h.Get)
	app.Get("/api/v1/players/:playerID/compatibility", h.Compatibility)

	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/players/100", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	var player models.PlayerWithCompatibility
	if err := json.Unmarshal(body, &player); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if player.Name != "Alvaro Costa" {
		t.Errorf("name = %q", player.Name)
	}

	resp, _ = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/players/999", nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown player: status = %d, want 404", resp.StatusCode)
	}

	// Player 101 exists but was never scored.
	resp, _ = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/players/101/compatibility", nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unscored player: status = %d, want 404", resp.StatusCode)
	}
}

func multipartCSV(t *testing.T, field, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, "players.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	w.Close()
	return &buf, w.FormDataContentType()
}

func TestUploadEndpoint(t *testing.T) {
	s := newTestStack(t, writeOutput(
		"player_id,name,natural_pos,st_fit,best_pos,best_fit_score\n"+
			"200,New Player,ST,88,ST,88\n",
	))
	h := NewUploadHandler(s.pipeline, s.analyzer)
	app := fiber.New()
	app.Post("/api/v1/compatibility/upload", h.Upload)

	body, contentType := multipartCSV(t, "csvFile", "player_id,name,sub_position\n200,New Player,ST\n")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/compatibility/upload", body)
	req.Header.Set("Content-Type", contentType)

	resp, respBody := doRequest(t, app, req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, respBody)
	}
	var upload models.UploadResponse
	if err := json.Unmarshal(respBody, &upload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if upload.Count != 1 || upload.Results[0].Status != models.RowStatusOK {
		t.Errorf("upload = %+v", upload)
	}

	// The scored record is queryable afterwards.
	rec, err := s.compat.Get(context.Background(), 200)
	if err != nil {
		t.Fatalf("get persisted record: %v", err)
	}
	if rec.StFit == nil || *rec.StFit != 88 {
		t.Errorf("persisted st_fit = %v", rec.StFit)
	}
}

func TestUploadEndpoint_Failures(t *testing.T) {
	s := newTestStack(t, func(ctx context.Context, in, out string) error {
		return context.DeadlineExceeded
	})
	h := NewUploadHandler(s.pipeline, s.analyzer)
	app := fiber.New()
	app.Post("/api/v1/compatibility/upload", h.Upload)

	// Wrong field name.
	body, contentType := multipartCSV(t, "wrongField", "player_id\n1\n")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/compatibility/upload", body)
	req.Header.Set("Content-Type", contentType)
	resp, _ := doRequest(t, app, req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("wrong field: status = %d, want 400", resp.StatusCode)
	}
}

func TestUploadEndpoint_OracleFailureIsBadGateway(t *testing.T) {
	s := newTestStack(t, func(ctx context.Context, in, out string) error {
		return nil // no output file written
	})
	h := NewUploadHandler(s.pipeline, s.analyzer)
	app := fiber.New()
	app.Post("/api/v1/compatibility/upload", h.Upload)

	body, contentType := multipartCSV(t, "csvFile", "player_id,name\n1,X\n")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/compatibility/upload", body)
	req.Header.Set("Content-Type", contentType)
	resp, _ := doRequest(t, app, req)
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.StatusCode)
	}
}

func TestTeamAnalysisEndpoint(t *testing.T) {
	s := newTestStack(t, nil)
	s.seed(t)
	svc := service.NewAnalyticsService(s.players, s.compat, s.catalog, nil, 0, nil)
	h := NewAnalyticsHandler(svc)
	app := fiber.New()
	app.Get("/api/v1/teams/:clubName/analysis", h.TeamAnalysis)

	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet,
		"/api/v1/teams/Real%20Madrid/analysis", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	var analysis models.TeamAnalysisResponse
	if err := json.Unmarshal(body, &analysis); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if analysis.ClubName != "Real Madrid" {
		t.Errorf("club = %q", analysis.ClubName)
	}
	if analysis.Analytics.PlayerCount != 2 || analysis.Analytics.BestPosition != "ST" {
		t.Errorf("analytics = %+v", analysis.Analytics)
	}
}

func TestStatsEndpoint(t *testing.T) {
	s := newTestStack(t, nil)
	s.seed(t)
	svc := service.NewAnalyticsService(s.players, s.compat, s.catalog, nil, 0, nil)
	h := NewAnalyticsHandler(svc)
	app := fiber.New()
	app.Get("/api/v1/stats", h.Stats)

	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get(fiber.HeaderCacheControl); got != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", got)
	}
	var stats models.GlobalStats
	if err := json.Unmarshal(body, &stats); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if stats.TotalPlayers != 2 || stats.TotalTeams != 1 || stats.TotalCompetitions != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	s := newTestStack(t, nil)
	s.seed(t)
	h := NewCatalogHandler(s.catalog)
	app := fiber.New()
	app.Get("/api/v1/countries", h.Countries)
	app.Get("/api/v1/clubs", h.Clubs)

	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/countries", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var countries struct {
		Countries []string `json:"countries"`
	}
	if err := json.Unmarshal(body, &countries); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(countries.Countries) != 1 || countries.Countries[0] != "Spain" {
		t.Errorf("countries = %v", countries.Countries)
	}

	resp, body = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/clubs?country=Spain", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("clubs status = %d, body %s", resp.StatusCode, body)
	}
}

func TestFavoriteEndpoints(t *testing.T) {
	s := newTestStack(t, nil)
	s.seed(t)
	svc := service.NewFavoriteService(s.players, s.compat, s.favs)
	h := NewFavoriteHandler(svc)
	app := fiber.New()
	app.Get("/api/v1/favorites", h.List)
	app.Get("/api/v1/favorites/:playerID/status", h.Status)
	app.Post("/api/v1/favorites/:playerID", h.Add)
	app.Delete("/api/v1/favorites/:playerID", h.Remove)

	// No X-User-ID header.
	resp, _ := doRequest(t, app, httptest.NewRequest(http.MethodPost, "/api/v1/favorites/100", nil))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing user header: status = %d, want 400", resp.StatusCode)
	}

	add := httptest.NewRequest(http.MethodPost, "/api/v1/favorites/100", nil)
	add.Header.Set("X-User-ID", "7")
	if resp, _ := doRequest(t, app, add); resp.StatusCode != http.StatusOK {
		t.Fatalf("add: status = %d", resp.StatusCode)
	}

	list := httptest.NewRequest(http.MethodGet, "/api/v1/favorites", nil)
	list.Header.Set("X-User-ID", "7")
	resp, body := doRequest(t, app, list)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: status = %d", resp.StatusCode)
	}
	var favorites struct {
		Count   int                              `json:"count"`
		Players []models.PlayerWithCompatibility `json:"players"`
	}
	if err := json.Unmarshal(body, &favorites); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if favorites.Count != 1 || favorites.Players[0].PlayerID != 100 {
		t.Errorf("favorites = %+v", favorites)
	}

	status := httptest.NewRequest(http.MethodGet, "/api/v1/favorites/100/status", nil)
	status.Header.Set("X-User-ID", "7")
	resp, body = doRequest(t, app, status)
	if resp.StatusCode != http.StatusOK || !bytes.Contains(body, []byte("true")) {
		t.Errorf("status: %d %s", resp.StatusCode, body)
	}

	del := httptest.NewRequest(http.MethodDelete, "/api/v1/favorites/100", nil)
	del.Header.Set("X-User-ID", "7")
	if resp, _ := doRequest(t, app, del); resp.StatusCode != http.StatusOK {
		t.Fatalf("remove: status = %d", resp.StatusCode)
	}

	missing := httptest.NewRequest(http.MethodPost, "/api/v1/favorites/999", nil)
	missing.Header.Set("X-User-ID", "7")
	if resp, _ := doRequest(t, app, missing); resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown player: status = %d, want 404", resp.StatusCode)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestStack(t, nil)
	h := NewHealthHandler(s.db, nil)
	app := fiber.New()
	app.Get("/api/v1/health", h.Check)

	resp, _ := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	s := newTestStack(t, writeOutput("player_id,st_fit\n"))
	h := NewUploadHandler(s.pipeline, s.analyzer)
	app := fiber.New()
	app.Post("/api/v1/admin/analyze", h.Analyze)
	app.Get("/api/v1/admin/analyze", h.AnalyzeStatus)

	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodPost, "/api/v1/admin/analyze", nil))
	if resp.StatusCode != http.StatusAccepted {
		t.Errorf("trigger: status = %d, body %s", resp.StatusCode, body)
	}

	resp, body = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/admin/analyze", nil))
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status check: %d %s", resp.StatusCode, body)
	}
}
