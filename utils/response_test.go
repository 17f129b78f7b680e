package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kataras/iris/v12"
)

func pageBody(t *testing.T, page, perPage int, total int64) map[string]interface{} {
	t.Helper()
	app := iris.New()
	app.Get("/things", func(ctx iris.Context) {
		JSONPage(ctx, []string{"a", "b"}, page, perPage, total)
	})
	if err := app.Build(); err != nil {
		t.Fatalf("app build failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/things", nil)
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	var body map[string]interface{}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	return body
}

func TestJSONPageLinks(t *testing.T) {
	body := pageBody(t, 2, 10, 35)
	links := body["links"].(map[string]interface{})

	if links["self"] != "/things?page=2&per_page=10" {
		t.Errorf("self = %v", links["self"])
	}
	if links["prev"] != "/things?page=1&per_page=10" {
		t.Errorf("prev = %v", links["prev"])
	}
	if links["next"] != "/things?page=3&per_page=10" {
		t.Errorf("next = %v", links["next"])
	}

	meta := body["meta"].(map[string]interface{})
	if meta["total"] != float64(35) || meta["page"] != float64(2) {
		t.Errorf("meta = %v", meta)
	}
}

func TestJSONPageLinksAtEdges(t *testing.T) {
	first := pageBody(t, 1, 10, 35)["links"].(map[string]interface{})
	if _, ok := first["prev"]; ok {
		t.Error("first page must not link prev")
	}
	if first["next"] != "/things?page=2&per_page=10" {
		t.Errorf("next = %v", first["next"])
	}

	last := pageBody(t, 4, 10, 35)["links"].(map[string]interface{})
	if _, ok := last["next"]; ok {
		t.Error("last page must not link next")
	}
	if last["prev"] != "/things?page=3&per_page=10" {
		t.Errorf("prev = %v", last["prev"])
	}
}
