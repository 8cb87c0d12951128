package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/agent"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	users := memory.NewUserRepository()
	tickets := memory.NewTicketRepository()
	replies := memory.NewReplyRepository()
	suggestions := memory.NewSuggestionRepository()
	audits := memory.NewAuditEventRepository()
	articles := memory.NewArticleRepository()
	policies := memory.NewPolicyRepository()

	tokenManager := auth.NewTokenManager("test-secret", 60)
	authService := service.NewAuthService(users, tokenManager, config.AuthConfig{BcryptCost: 4}, logger)
	auditService := service.NewAuditService(audits, logger)
	kbService := service.NewKBService(articles)
	configService := service.NewConfigService(policies)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: tickets,
		ReplyRepo:  replies,
		UserRepo:   users,
		Audit:      auditService,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	triageService := service.NewTriageService(service.TriageDependencies{
		TicketRepo:     tickets,
		ReplyRepo:      replies,
		SuggestionRepo: suggestions,
		PolicyRepo:     policies,
		KB:             kbService,
		Classifier:     agent.NewClassifier(config.AgentConfig{}, agent.DefaultRetryPolicy(), logger, nil),
		Drafter:        agent.NewDrafter(),
		Audit:          auditService,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("test", "dev", &persistence.Postgres{}, &persistence.Redis{}),
		Users:          handlers.NewUsersHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService, auditService),
		KB:             handlers.NewKBHandler(kbService),
		Agent:          handlers.NewAgentHandler(triageService),
		Config:         handlers.NewConfigHandler(configService),
		AuthMiddleware: auth.NewAuthMiddleware(tokenManager, users),
		RateLimiter:    NewRateLimiter(nil, logger),
		Metrics:        metrics,
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*nethttp.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	parsed := map[string]any{}
	if len(raw) > 0 && strings.Contains(resp.Header.Get("Content-Type"), "json") {
		if err := json.Unmarshal(raw, &parsed); err != nil {
			t.Fatalf("parse response %q: %v", raw, err)
		}
	}
	parsed["_raw"] = string(raw)
	return resp, parsed
}

func registerAndLogin(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	resp, _ := doJSON(t, app, fiber.MethodPost, "/auth/register", "", fiber.Map{
		"name": "Test User", "email": email, "password": "longenough",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("register status = %d", resp.StatusCode)
	}
	resp, body := doJSON(t, app, fiber.MethodPost, "/auth/login", "", fiber.Map{
		"email": email, "password": "longenough",
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}
	data := body["data"].(map[string]any)
	return data["token"].(string)
}

func TestTicketLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t)
	token := registerAndLogin(t, app, "user@example.com")

	resp, body := doJSON(t, app, fiber.MethodPost, "/tickets", token, fiber.Map{
		"title":       "Refund request",
		"description": "Please refund my invoice",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("create ticket status = %d: %v", resp.StatusCode, body["_raw"])
	}
	ticketID := body["data"].(map[string]any)["id"].(string)

	resp, body = doJSON(t, app, fiber.MethodGet, "/tickets/"+ticketID, token, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("get ticket status = %d", resp.StatusCode)
	}
	if got := body["data"].(map[string]any)["status"].(string); got != "OPEN" {
		t.Errorf("ticket status = %q, want OPEN", got)
	}

	resp, body = doJSON(t, app, fiber.MethodGet, fmt.Sprintf("/tickets/%s/audit.ndjson", ticketID), token, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("audit export status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/x-ndjson") {
		t.Errorf("content type = %q", ct)
	}
	if raw := body["_raw"].(string); !strings.Contains(raw, "TICKET_CREATED") {
		t.Errorf("audit export missing creation event: %q", raw)
	}
}

func TestAuthRequired(t *testing.T) {
	app := newTestApp(t)

	resp, _ := doJSON(t, app, fiber.MethodGet, "/tickets", "", nil)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("unauthenticated list status = %d, want 401", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, fiber.MethodGet, "/tickets", "bogus-token", nil)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("bogus token status = %d, want 401", resp.StatusCode)
	}
}

func TestStaffOnlyRoutes(t *testing.T) {
	app := newTestApp(t)
	token := registerAndLogin(t, app, "enduser@example.com")

	resp, _ := doJSON(t, app, fiber.MethodPost, "/agent/triage", token, fiber.Map{"ticket_id": "t1"})
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("end-user triage status = %d, want 403", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, fiber.MethodGet, "/config/triage", token, nil)
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("end-user config status = %d, want 403", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, fiber.MethodPost, "/kb/articles", token, fiber.Map{"title": "t", "body": "b"})
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("end-user kb create status = %d, want 403", resp.StatusCode)
	}
}

func TestErrorEnvelopeShape(t *testing.T) {
	app := newTestApp(t)
	token := registerAndLogin(t, app, "shape@example.com")

	resp, body := doJSON(t, app, fiber.MethodGet, "/tickets/unknown-id", token, nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	errObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("missing error envelope: %v", body["_raw"])
	}
	if errObj["code"] != "NOT_FOUND" {
		t.Errorf("error code = %v", errObj["code"])
	}
}
