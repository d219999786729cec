package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"folioman/internal/config"
	"folioman/internal/services"
	"folioman/internal/store"
	"folioman/internal/testutil"
	"folioman/internal/validator"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validator.Register()
	os.Exit(m.Run())
}

// setupRouter builds the API over a fresh in-memory service. The service
// itself needs no external resources, so handler tests run against the real
// thing instead of a mock.
func setupRouter(t *testing.T) (*gin.Engine, services.PortfolioServicer) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	cfg := &config.Config{
		StartDate:     time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC),
		TickInterval:  time.Second,
		EventsEnabled: false,
	}
	svc := services.NewPortfolioService(store.New(db), cfg)
	return NewRouter(svc), svc
}

func doRequest(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return body
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody(t, w)
	errObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("no error object in %q", w.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}

func createPortfolio(t *testing.T, router *gin.Engine) string {
	t.Helper()

	w := doRequest(t, router, http.MethodPost, "/api/v1/portfolios", gin.H{"name": "Main", "owner": "John Smith"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create portfolio status = %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	portfolio := body["portfolio"].(map[string]any)
	return portfolio["id"].(string)
}

func TestCreatePortfolioEndpoint(t *testing.T) {
	router, _ := setupRouter(t)

	t.Run("created", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPost, "/api/v1/portfolios", gin.H{"name": "Retirement", "owner": "Mary Watson-Jones"})
		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("owner rejected by binding", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPost, "/api/v1/portfolios", gin.H{"name": "Retirement", "owner": "john"})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
		if code := errorCode(t, w); code != "INVALID_INPUT" {
			t.Errorf("error code = %q", code)
		}
	})

	t.Run("missing name", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPost, "/api/v1/portfolios", gin.H{"owner": "John Smith"})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})
}

func TestGetPortfolioEndpoint(t *testing.T) {
	router, _ := setupRouter(t)
	id := createPortfolio(t, router)

	t.Run("found with summaries", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/api/v1/portfolios/"+id, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		body := decodeBody(t, w)
		if _, ok := body["summaries"]; !ok {
			t.Error("response missing summaries")
		}
	})

	t.Run("not found", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/api/v1/portfolios/missing", nil)
		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", w.Code)
		}
		if code := errorCode(t, w); code != "PORTFOLIO_NOT_FOUND" {
			t.Errorf("error code = %q", code)
		}
	})
}

func TestUpdateOwnerEndpoint(t *testing.T) {
	router, svc := setupRouter(t)
	id := createPortfolio(t, router)

	w := doRequest(t, router, http.MethodPut, "/api/v1/portfolios/"+id+"/owner", gin.H{"owner": "Jane Doe"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	p, err := svc.GetPortfolio(id)
	testutil.AssertNoError(t, err)
	if p.Owner() != "Jane Doe" {
		t.Errorf("owner = %q, want Jane Doe", p.Owner())
	}
}

func TestClonePortfolioEndpoint(t *testing.T) {
	router, _ := setupRouter(t)
	id := createPortfolio(t, router)

	w := doRequest(t, router, http.MethodPost, "/api/v1/portfolios/"+id+"/clone", gin.H{"name": "Backup"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	clone := body["portfolio"].(map[string]any)
	if clone["id"].(string) == id {
		t.Error("clone shares the source id")
	}
	if clone["name"].(string) != "Backup" {
		t.Errorf("clone name = %v", clone["name"])
	}
}

func TestDeletePortfolioEndpoint(t *testing.T) {
	router, _ := setupRouter(t)
	id := createPortfolio(t, router)

	w := doRequest(t, router, http.MethodDelete, "/api/v1/portfolios/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	w = doRequest(t, router, http.MethodDelete, "/api/v1/portfolios/"+id, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", w.Code)
	}
}

func TestAnalyticsEndpoints(t *testing.T) {
	router, _ := setupRouter(t)
	id := createPortfolio(t, router)

	w := doRequest(t, router, http.MethodPost, "/api/v1/portfolios/"+id+"/assets", gin.H{
		"type": "stock", "name": "Apple Inc.", "symbol": "AAPL", "quantity": 10, "purchase_price": 150,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add asset status = %d: %s", w.Code, w.Body.String())
	}

	t.Run("top movers", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/api/v1/portfolios/"+id+"/top-movers?n=3", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		body := decodeBody(t, w)
		movers := body["top_movers"].([]any)
		if len(movers) != 1 {
			t.Errorf("movers = %d, want 1", len(movers))
		}
	})

	t.Run("top movers invalid n", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/api/v1/portfolios/"+id+"/top-movers?n=zero", nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})

	t.Run("allocation", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/api/v1/portfolios/"+id+"/allocation", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		body := decodeBody(t, w)
		alloc := body["allocation"].(map[string]any)
		if alloc["stock"].(float64) != 100 {
			t.Errorf("stock allocation = %v, want 100", alloc["stock"])
		}
	})
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := setupRouter(t)
	w := doRequest(t, router, http.MethodGet, "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}
