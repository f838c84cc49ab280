package main

import (
	"encoding/csv"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"nurseryml/internal/features"
	"nurseryml/internal/models"
)

type server struct {
	models       map[string]models.Classifier
	defaultModel string
	apiKey       string
	curvePath    string
	log          *zap.Logger
}

// loadModels reads every *.model file in dir, keyed by file name without the
// extension. Unreadable files are logged and skipped.
func loadModels(dir string, log *zap.Logger) (map[string]models.Classifier, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.model"))
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.Classifier, len(paths))
	for _, p := range paths {
		m, err := models.Load(p)
		if err != nil {
			log.Warn("skipping model", zap.String("path", p), zap.Error(err))
			continue
		}
		out[strings.TrimSuffix(filepath.Base(p), ".model")] = m
	}
	return out, nil
}

func (s *server) names() []string {
	names := make([]string, 0, len(s.models))
	for n := range s.models {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func newRouter(s *server) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok", "models": len(s.models)}) })
	r.GET("/models", s.listModels)
	r.GET("/models/:name", s.describeModel)
	r.GET("/dashboard/metrics", s.dashboardMetrics)

	api := r.Group("/")
	api.Use(s.apiKeyMiddleware)
	api.POST("/predict", s.handlePredict)
	api.POST("/batch", s.handleBatch)
	return r
}

func (s *server) apiKeyMiddleware(c *gin.Context) {
	if s.apiKey == "" {
		c.Next()
		return
	}
	if c.GetHeader("X-API-Key") != s.apiKey {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Next()
}

func (s *server) listModels(c *gin.Context) {
	items := make([]gin.H, 0, len(s.models))
	for _, name := range s.names() {
		items = append(items, s.summary(name))
	}
	c.JSON(http.StatusOK, gin.H{"models": items, "default": s.defaultModel})
}

func (s *server) summary(name string) gin.H {
	m := s.models[name]
	h := m.Header()
	attrs := make([]string, 0, h.NumAttributes())
	for i, a := range h.Attributes {
		if i != h.ClassIndex {
			attrs = append(attrs, a.Name)
		}
	}
	return gin.H{
		"name":       name,
		"algorithm":  m.Name(),
		"relation":   h.Relation,
		"class":      h.ClassAttribute().Name,
		"labels":     h.ClassAttribute().Values,
		"attributes": attrs,
	}
}

func (s *server) describeModel(c *gin.Context) {
	name := c.Param("name")
	m, ok := s.models[name]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown model " + name})
		return
	}
	out := s.summary(name)
	out["text"] = m.String()
	c.JSON(http.StatusOK, out)
}

type predictReq struct {
	Model  string            `json:"model"`
	Record map[string]string `json:"record" binding:"required"`
}

// batchReq carries named records, positional rows in header order, or both.
type batchReq struct {
	Model   string              `json:"model"`
	Records []map[string]string `json:"records"`
	Rows    [][]string          `json:"rows"`
}

// pick resolves the requested model name, falling back to the default.
func (s *server) pick(c *gin.Context, name string) (string, models.Classifier, bool) {
	if name == "" {
		name = s.defaultModel
	}
	m, ok := s.models[name]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown model " + name, "available": s.names()})
		return "", nil, false
	}
	return name, m, true
}

func classify(m models.Classifier, record map[string]string) (gin.H, error) {
	h := m.Header()
	x, err := features.Vectorize(h, record)
	if err != nil {
		return nil, err
	}
	dist, err := m.Distribution(x)
	if err != nil {
		return nil, err
	}
	probs := make(map[string]float64, len(dist))
	for i, p := range dist {
		probs[h.ClassLabel(i)] = p
	}
	pred, err := models.Predict(m, x)
	if err != nil {
		return nil, err
	}
	label := ""
	if pred >= 0 {
		label = h.ClassLabel(pred)
	}
	return gin.H{"class": label, "distribution": probs}, nil
}

func (s *server) handlePredict(c *gin.Context) {
	var req predictReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json: " + err.Error()})
		return
	}
	name, m, ok := s.pick(c, req.Model)
	if !ok {
		return
	}
	out, err := classify(m, req.Record)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out["model"] = name
	c.JSON(http.StatusOK, out)
}

func (s *server) handleBatch(c *gin.Context) {
	var req batchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json: " + err.Error()})
		return
	}
	if len(req.Records)+len(req.Rows) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "records or rows required"})
		return
	}
	name, m, ok := s.pick(c, req.Model)
	if !ok {
		return
	}
	score := func(rec map[string]string, err error) gin.H {
		if err == nil {
			var res gin.H
			if res, err = classify(m, rec); err == nil {
				return res
			}
		}
		return gin.H{"error": err.Error()}
	}
	out := make([]gin.H, 0, len(req.Records)+len(req.Rows))
	for _, rec := range req.Records {
		out = append(out, score(rec, nil))
	}
	for _, row := range req.Rows {
		out = append(out, score(features.BuildRecord(m.Header(), row)))
	}
	s.log.Debug("batch scored", zap.String("model", name), zap.Int("records", len(out)))
	c.JSON(http.StatusOK, gin.H{"model": name, "results": out})
}

// dashboardMetrics reports the last row of the learning curve CSV.
func (s *server) dashboardMetrics(c *gin.Context) {
	f, err := os.Open(s.curvePath)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"metrics": gin.H{}})
		return
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil || len(rows) < 2 {
		c.JSON(http.StatusOK, gin.H{"metrics": gin.H{}})
		return
	}
	hdr, last := rows[0], rows[len(rows)-1]
	out := gin.H{}
	for i, k := range hdr {
		if i < len(last) {
			out[k] = last[i]
		}
	}
	c.JSON(http.StatusOK, gin.H{"metrics": out})
}
