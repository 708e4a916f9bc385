package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/foresttrail/trailops/api/controllers"
	"github.com/foresttrail/trailops/internal/catalog"
	"github.com/foresttrail/trailops/internal/inventory"
	"github.com/foresttrail/trailops/internal/transfers"
	"github.com/foresttrail/trailops/pkg/config"
	"github.com/foresttrail/trailops/pkg/db/dbtest"
	"github.com/foresttrail/trailops/pkg/db/models"
	"github.com/foresttrail/trailops/pkg/metrics"
	"github.com/foresttrail/trailops/pkg/outbox"
)

type memoryStore struct {
	data map[string]string
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (m *memoryStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.data[key], _ = value.(string)
	return nil
}

func (m *memoryStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key], _ = value.(string)
	return true, nil
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memoryStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("mem:%s:%s", scope, id)
}

type harness struct {
	handler http.Handler
	ledger  inventory.Ledger
	src     models.Location
	dst     models.Location
	item    models.Item
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	client := dbtest.New(t)
	conn := client.DB()

	h := &harness{
		ledger: inventory.NewLedger(conn),
		src:    models.Location{ID: uuid.New(), Code: "NORTH", Name: "North Trailhead", Active: true},
		dst:    models.Location{ID: uuid.New(), Code: "SOUTH", Name: "South Trailhead", Active: true},
		item:   models.Item{ID: uuid.New(), Code: "ROPE-30", Name: "Rope 30m"},
	}
	for _, row := range []any{&h.src, &h.dst, &h.item} {
		if err := conn.Create(row).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	movements := inventory.NewMovementLog(conn)
	catalogRepo := catalog.NewRepository(conn)
	reg := prometheus.NewRegistry()
	transferSvc, err := transfers.NewService(transfers.ServiceParams{
		TxRunner:  client,
		Repo:      transfers.NewRepository(conn),
		Ledger:    h.ledger,
		Movements: movements,
		Catalog:   catalogRepo,
		Outbox:    outbox.NewService(outbox.NewRepository(conn), nil),
		Codes:     transfers.NewCodeGenerator("TRF", time.UTC),
		Metrics:   metrics.NewTransferMetrics(reg),
		MaxLines:  50,
	})
	if err != nil {
		t.Fatalf("transfer service: %v", err)
	}
	inventorySvc, err := inventory.NewService(h.ledger, movements, catalogRepo)
	if err != nil {
		t.Fatalf("inventory service: %v", err)
	}

	h.handler = NewRouter(Deps{
		Config:           &config.Config{App: config.AppConfig{Env: "test"}, Transfers: config.TransfersConfig{IdempotencyTTL: time.Hour}},
		Transfers:        transferSvc,
		Inventory:        inventorySvc,
		IdempotencyStore: &memoryStore{data: map[string]string{}},
		Gatherer:         reg,
		HTTPMetrics:      metrics.NewHTTPMetrics(reg),
		Ready:            []controllers.Dependency{{Name: "db", Pinger: client}},
	})
	return h
}

func (h *harness) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	h.handler.ServeHTTP(resp, req)
	return resp
}

func decodeData(t *testing.T, resp *httptest.ResponseRecorder, dest any) {
	t.Helper()
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if err := json.Unmarshal(envelope.Data, dest); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func TestTransferLifecycleOverHTTP(t *testing.T) {
	h := newHarness(t)
	if err := h.ledger.Adjust(context.Background(), h.src.ID, h.item.ID, 50); err != nil {
		t.Fatalf("seed stock: %v", err)
	}
	actor := map[string]string{"X-Actor-ID": "ranger.kim"}

	createBody := fmt.Sprintf(`{"source_location_id":%q,"destination_location_id":%q,"lines":[{"item_id":%q,"quantity":20}]}`,
		h.src.ID, h.dst.ID, h.item.ID)

	if resp := h.do(t, http.MethodPost, "/api/v1/transfers", createBody, nil); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without actor, got %d", resp.Code)
	}

	withKey := map[string]string{"X-Actor-ID": "ranger.kim", "Idempotency-Key": "create-1"}
	resp := h.do(t, http.MethodPost, "/api/v1/transfers", createBody, withKey)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created transfers.TransferDetail
	decodeData(t, resp, &created)
	if created.Lines[0].AvailableSnapshot != 50 {
		t.Fatalf("expected snapshot 50, got %d", created.Lines[0].AvailableSnapshot)
	}

	replay := h.do(t, http.MethodPost, "/api/v1/transfers", createBody, withKey)
	var replayed transfers.TransferDetail
	decodeData(t, replay, &replayed)
	if replay.Code != http.StatusCreated || replayed.ID != created.ID {
		t.Fatalf("expected replay of the first response, got %d id=%s", replay.Code, replayed.ID)
	}

	statusPath := "/api/v1/transfers/" + created.ID.String() + "/status"
	resp = h.do(t, http.MethodPost, statusPath, `{"status":"completed"}`, actor)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = h.do(t, http.MethodGet, fmt.Sprintf("/api/v1/stock/%s/%s", h.dst.ID, h.item.ID), "", nil)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"quantity":20`) {
		t.Fatalf("expected destination stock 20, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = h.do(t, http.MethodPost, statusPath, `{"status":"completed"}`, actor)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 on double completion, got %d", resp.Code)
	}

	resp = h.do(t, http.MethodPut, "/api/v1/transfers/"+created.ID.String()+"/lines",
		fmt.Sprintf(`{"lines":[{"item_id":%q,"quantity":5}]}`, h.item.ID), actor)
	if resp.Code != http.StatusUnprocessableEntity || !strings.Contains(resp.Body.String(), "INVALID_STATE") {
		t.Fatalf("expected invalid state, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = h.do(t, http.MethodPost, statusPath, `{"status":"returned","notes":"wrong trail"}`, actor)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 on return, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = h.do(t, http.MethodGet, "/api/v1/transfers/"+created.ID.String()+"/movements", "", nil)
	var moves []inventory.MovementDTO
	decodeData(t, resp, &moves)
	if len(moves) != 2 {
		t.Fatalf("expected 2 movements, got %d", len(moves))
	}

	resp = h.do(t, http.MethodGet, "/api/v1/locations/"+h.src.ID.String()+"/movements?limit=1", "", nil)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "next_cursor") {
		t.Fatalf("expected paged movements, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = h.do(t, http.MethodGet, "/api/v1/transfers?status=returned", "", nil)
	var list []transfers.TransferSummary
	decodeData(t, resp, &list)
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("expected the returned transfer in the list, got %+v", list)
	}
}

func TestCreateInsufficientStockOverHTTP(t *testing.T) {
	h := newHarness(t)
	body := fmt.Sprintf(`{"source_location_id":%q,"destination_location_id":%q,"lines":[{"item_id":%q,"quantity":1}]}`,
		h.src.ID, h.dst.ID, h.item.ID)
	resp := h.do(t, http.MethodPost, "/api/v1/transfers", body, map[string]string{"X-Actor-ID": "ranger.kim"})
	if resp.Code != http.StatusConflict || !strings.Contains(resp.Body.String(), "INSUFFICIENT_STOCK") {
		t.Fatalf("expected insufficient stock, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestHealthAndMetricsRoutes(t *testing.T) {
	h := newHarness(t)
	if resp := h.do(t, http.MethodGet, "/health/live", "", nil); resp.Code != http.StatusOK {
		t.Fatalf("live: %d", resp.Code)
	}
	if resp := h.do(t, http.MethodGet, "/health/ready", "", nil); resp.Code != http.StatusOK {
		t.Fatalf("ready: %d %s", resp.Code, resp.Body.String())
	}
	h.do(t, http.MethodGet, "/api/v1/transfers", "", nil)
	resp := h.do(t, http.MethodGet, "/metrics", "", nil)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "http_requests_total") {
		t.Fatalf("expected metrics exposition, got %d", resp.Code)
	}
	if resp := h.do(t, http.MethodGet, "/api/v1/transfers/not-a-uuid", "", nil); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", resp.Code)
	}
}
