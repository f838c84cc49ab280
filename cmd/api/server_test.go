package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"nurseryml/internal/data"
	"nurseryml/internal/models"
)

func testServer(t *testing.T, key string) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	inst, err := data.LoadARFF(filepath.Join("..", "..", "internal", "data", "testdata", "weather.nominal.arff"))
	if err != nil {
		t.Fatal(err)
	}
	if err := inst.SetClassIndex(-1); err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	dt := models.NewDecisionTree()
	if err := dt.Fit(inst); err != nil {
		t.Fatal(err)
	}
	if err := models.Save(filepath.Join(dir, "DecisionTree_1.model"), dt); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.model"), []byte("junk"), 0o644); err != nil {
		t.Fatal(err)
	}
	loaded, err := loadModels(dir, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 1 {
		t.Fatalf("loaded %d models, want the broken one skipped", len(loaded))
	}
	return &server{models: loaded, defaultModel: "DecisionTree_1", apiKey: key, log: zap.NewNop()}
}

func do(t *testing.T, r http.Handler, method, path, key string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

var overcast = map[string]string{"outlook": "overcast", "temperature": "hot", "humidity": "high", "windy": "FALSE"}

func TestPredict(t *testing.T) {
	r := newRouter(testServer(t, ""))
	w, out := do(t, r, http.MethodPost, "/predict", "", predictReq{Record: overcast})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body)
	}
	if out["class"] != "yes" || out["model"] != "DecisionTree_1" {
		t.Errorf("response = %v", out)
	}
	dist := out["distribution"].(map[string]any)
	if dist["yes"].(float64) != 1 {
		t.Errorf("distribution = %v", dist)
	}

	w, _ = do(t, r, http.MethodPost, "/predict", "", predictReq{Record: map[string]string{"outlook": "foggy"}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown label status = %d", w.Code)
	}
	w, _ = do(t, r, http.MethodPost, "/predict", "", predictReq{Model: "nope", Record: overcast})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown model status = %d", w.Code)
	}
	w, _ = do(t, r, http.MethodPost, "/predict", "", map[string]string{"model": "DecisionTree_1"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing record status = %d", w.Code)
	}
}

func TestBatch(t *testing.T) {
	r := newRouter(testServer(t, ""))
	w, out := do(t, r, http.MethodPost, "/batch", "", batchReq{Records: []map[string]string{
		overcast,
		{"outlook": "sunny", "humidity": "high"},
		{"planet": "mars"},
	}})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body)
	}
	results := out["results"].([]any)
	if len(results) != 3 {
		t.Fatalf("results = %v", results)
	}
	if got := results[1].(map[string]any)["class"]; got != "no" {
		t.Errorf("sunny/high = %v", got)
	}
	if _, ok := results[2].(map[string]any)["error"]; !ok {
		t.Errorf("unknown attribute should report an error: %v", results[2])
	}
	if w, _ := do(t, r, http.MethodPost, "/batch", "", batchReq{}); w.Code != http.StatusBadRequest {
		t.Errorf("empty batch status = %d", w.Code)
	}
}

func TestBatchRows(t *testing.T) {
	r := newRouter(testServer(t, ""))
	w, out := do(t, r, http.MethodPost, "/batch", "", batchReq{
		Records: []map[string]string{overcast},
		Rows:    [][]string{{"sunny", "hot", "high", "FALSE"}, {"rainy", "mild", "high", "TRUE", "no", "extra"}},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body)
	}
	results := out["results"].([]any)
	if len(results) != 3 {
		t.Fatalf("results = %v", results)
	}
	if got := results[0].(map[string]any)["class"]; got != "yes" {
		t.Errorf("record = %v", got)
	}
	if got := results[1].(map[string]any)["class"]; got != "no" {
		t.Errorf("positional sunny/high = %v", got)
	}
	if _, ok := results[2].(map[string]any)["error"]; !ok {
		t.Errorf("too many values should report an error: %v", results[2])
	}
}

func TestDashboardMetrics(t *testing.T) {
	s := testServer(t, "")
	s.curvePath = filepath.Join(t.TempDir(), "learning_curve.csv")
	r := newRouter(s)

	w, out := do(t, r, http.MethodGet, "/dashboard/metrics", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if m := out["metrics"].(map[string]any); len(m) != 0 {
		t.Errorf("missing curve should give no metrics, got %v", m)
	}

	curve := `size,train_acc,test_acc
100,0.910000,0.880000
200,0.930000,0.905000
`
	if err := os.WriteFile(s.curvePath, []byte(curve), 0o644); err != nil {
		t.Fatal(err)
	}
	w, out = do(t, r, http.MethodGet, "/dashboard/metrics", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	m := out["metrics"].(map[string]any)
	want := map[string]string{"size": "200", "train_acc": "0.930000", "test_acc": "0.905000"}
	if len(m) != len(want) {
		t.Errorf("metrics = %v", m)
	}
	for k, v := range want {
		if m[k] != v {
			t.Errorf("%s = %v, want %s", k, m[k], v)
		}
	}
}

func TestAPIKey(t *testing.T) {
	r := newRouter(testServer(t, "s3cret"))
	if w, _ := do(t, r, http.MethodPost, "/predict", "", predictReq{Record: overcast}); w.Code != http.StatusUnauthorized {
		t.Errorf("missing key status = %d", w.Code)
	}
	if w, _ := do(t, r, http.MethodPost, "/predict", "s3cret", predictReq{Record: overcast}); w.Code != http.StatusOK {
		t.Errorf("valid key status = %d", w.Code)
	}
	if w, _ := do(t, r, http.MethodGet, "/models", "", nil); w.Code != http.StatusOK {
		t.Errorf("listing should not need a key, got %d", w.Code)
	}
}

func TestModels(t *testing.T) {
	r := newRouter(testServer(t, ""))
	w, out := do(t, r, http.MethodGet, "/models", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	list := out["models"].([]any)
	first := list[0].(map[string]any)
	if len(list) != 1 || first["algorithm"] != "DecisionTree" || first["class"] != "play" {
		t.Errorf("models = %v", list)
	}
	w, out = do(t, r, http.MethodGet, "/models/DecisionTree_1", "", nil)
	if w.Code != http.StatusOK || out["text"] == "" {
		t.Errorf("describe = %d %v", w.Code, out)
	}
	if w, _ := do(t, r, http.MethodGet, "/models/missing", "", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing model status = %d", w.Code)
	}
}
