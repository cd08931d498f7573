package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/burrowhq/burrow/internal/core"
)

func TestParsePagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "", 1, 20},
		{"explicit", "page=3&limit=50", 3, 50},
		{"zero page clamps", "page=0", 1, 20},
		{"negative limit clamps", "limit=-5", 1, 20},
		{"oversize limit clamps", "limit=5000", 1, 100},
		{"garbage falls back", "page=abc&limit=xyz", 1, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			p := parsePagination(c)
			if p.Page != tt.wantPage || p.Limit != tt.wantLimit {
				t.Errorf("parsePagination() = %+v, want page %d limit %d", p, tt.wantPage, tt.wantLimit)
			}
		})
	}
}

func TestPaginationOffset(t *testing.T) {
	if got := (pagination{Page: 1, Limit: 20}).Offset(); got != 0 {
		t.Errorf("first page offset = %d, want 0", got)
	}
	if got := (pagination{Page: 3, Limit: 20}).Offset(); got != 40 {
		t.Errorf("third page offset = %d, want 40", got)
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total int64
		limit int
		want  int64
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{100, 20, 5},
		{5, 0, 0},
	}

	for _, tt := range tests {
		if got := totalPages(tt.total, tt.limit); got != tt.want {
			t.Errorf("totalPages(%d, %d) = %d, want %d", tt.total, tt.limit, got, tt.want)
		}
	}
}

func TestRespondPageEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	respondPage(c, "posts", []string{"a", "b"}, 41, pagination{Page: 2, Limit: 20})

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body["success"] != true {
		t.Error("expected success:true")
	}
	if body["total"] != float64(41) || body["totalPages"] != float64(3) || body["currentPage"] != float64(2) {
		t.Errorf("unexpected pagination metadata: %v", body)
	}
	if _, ok := body["posts"]; !ok {
		t.Error("expected entity key 'posts'")
	}
}

func TestRespondErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"validation", core.Validationf("bad input"), http.StatusBadRequest, "bad input"},
		{"not found", core.NotFoundf("post 9 not found"), http.StatusNotFound, "post 9 not found"},
		{"conflict", core.Conflictf("already saved"), http.StatusConflict, "already saved"},
		{"forbidden", core.Forbiddenf("nope"), http.StatusForbidden, "nope"},
		{"internal hides cause", core.Internalf(nil, "db exploded"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body map[string]interface{}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid body: %v", err)
			}
			if body["success"] != false || body["message"] != tt.wantMsg {
				t.Errorf("unexpected envelope: %v", body)
			}
		})
	}
}
