// internal/server/handlers.go
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"calorie-log/internal/models"
	"calorie-log/internal/parser"
	"calorie-log/internal/storage"
)

const maxPayloadSize = 1 << 20 // 1MB

var logPage = template.Must(template.New("log").Parse(`<!doctype html>
<html>
<head>
  <meta charset="utf-8"/>
  <meta name="viewport" content="width=device-width, initial-scale=1"/>
  <title>Calorie Log - Paste Entry</title>
  <style>
      body { font-family: system-ui, -apple-system, Segoe UI, Roboto, Arial, sans-serif; margin: 24px; }
      .wrap { max-width: 980px; margin: 0 auto; }
      textarea { width: 100%; height: 320px; font-family: ui-monospace, SFMono-Regular, Menlo, Monaco, Consolas, "Liberation Mono", monospace; font-size: 14px; padding: 12px; }
      .row { display: flex; gap: 16px; align-items: center; margin: 12px 0; flex-wrap: wrap; }
      button { padding: 10px 14px; font-size: 14px; cursor: pointer; }
      input[type="checkbox"] { transform: scale(1.2); }
      .msg { padding: 10px 12px; border-radius: 8px; background: #f3f4f6; margin: 12px 0; }
      .err { background: #fee2e2; }
      .ok { background: #dcfce7; }
      a { color: inherit; }
      .hint { color: #444; font-size: 13px; line-height: 1.35; }
      pre.sample { background: #111; color: #eee; padding: 12px; border-radius: 8px; overflow: auto; }
  </style>
</head>
<body>
  <div class="wrap">
    <h1>Paste Daily Entry</h1>
    <div class="row">
      <a href="/">Dashboard</a>
      <a href="/data/entries.jsonl">entries.jsonl</a>
    </div>

    {{if .Message}}<div class="msg {{if .OK}}ok{{else}}err{{end}}">{{.Message}}</div>{{end}}

    <form method="POST" action="/save">
      <div class="row">
        <label><input type="checkbox" name="overwrite" value="1"/> Overwrite if date exists</label>
        <label><input type="checkbox" name="merge" value="1"/> Merge into existing entry</label>
        <button type="submit">Save Entry</button>
      </div>
      <textarea name="payload" placeholder="Paste your daily log block here...">{{.Payload}}</textarea>
    </form>

    <h2>Paste Format</h2>
    <div class="hint">
      Required: date (YYYY-MM-DD) OR omit date to default to today. Recommended: meals_text + estimates.
      Indentation: 2 spaces. Multiline uses |.
    </div>
<pre class="sample">date: 2025-12-30
day_type: normal
source: ai_estimate

meals_text:
  breakfast: |
    2 eggs
    toast with butter
    coffee w/ cream
  lunch: |
    chicken rice bowl
    broccoli
    sauce
  dinner: |
    burger
    medium fries
    mayo
  snacks: |
    protein bar

estimates:
  breakfast_kcal: 350
  lunch_kcal: 650
  dinner_kcal: 1050
  snacks_kcal: 220
  total_kcal: 2270
  protein_g: 140

notes: |
  late dinner, ate out</pre>
  </div>
</body>
</html>
`))

func guessMIME(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html":
		return "text/html; charset=utf-8"
	case ".js":
		return "text/javascript; charset=utf-8"
	case ".css":
		return "text/css; charset=utf-8"
	case ".json", ".jsonl":
		return "application/json; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

func (s *Server) handleIndex(c *gin.Context) {
	s.serveFile(c, filepath.Join(s.config.SiteDir, "index.html"))
}

func (s *Server) handleAppJS(c *gin.Context) {
	s.serveFile(c, filepath.Join(s.config.SiteDir, "app.js"))
}

func (s *Server) handleSite(c *gin.Context) {
	s.serveStatic(c, s.config.SiteDir, c.Param("name"))
}

func (s *Server) handleData(c *gin.Context) {
	s.serveStatic(c, s.config.DataDir, c.Param("name"))
}

func (s *Server) serveStatic(c *gin.Context, dir, name string) {
	// Reject traversal before joining with the base directory.
	clean := filepath.Clean("/" + name)
	if strings.Contains(clean, "..") {
		c.String(http.StatusNotFound, "Not found")
		return
	}
	s.serveFile(c, filepath.Join(dir, clean))
}

func (s *Server) serveFile(c *gin.Context, path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		c.String(http.StatusNotFound, "File not found")
		return
	}
	c.Header("Content-Type", guessMIME(path))
	c.File(path)
}

func (s *Server) handleLogPage(c *gin.Context) {
	s.renderLogPage(c, "", false, "")
}

func (s *Server) renderLogPage(c *gin.Context, message string, ok bool, payload string) {
	c.HTML(http.StatusOK, "log", gin.H{
		"Message": message,
		"OK":      ok,
		"Payload": payload,
	})
}

func policyFromForm(c *gin.Context) models.Policy {
	switch {
	case c.PostForm("merge") == "1":
		return models.PolicyMerge
	case c.PostForm("overwrite") == "1":
		return models.PolicyOverwrite
	default:
		return models.PolicyReject
	}
}

// handleSave is the paste-form submission path: parse the block, normalize
// it, upsert per the selected policy, and re-render the form with the
// outcome message and the payload preserved for correction.
func (s *Server) handleSave(c *gin.Context) {
	payload := strings.TrimSpace(c.PostForm("payload"))
	if payload == "" {
		s.renderLogPage(c, "Paste is empty.", false, "")
		return
	}
	if len(payload) > maxPayloadSize {
		s.renderLogPage(c, "Paste exceeds maximum size of 1MB.", false, "")
		return
	}

	entry, err := parser.NormalizeText(payload)
	if err != nil {
		s.renderLogPage(c, userMessage(err, nil), false, payload)
		return
	}

	result, err := s.store.Upsert(entry, policyFromForm(c))
	if err != nil {
		s.renderLogPage(c, userMessage(err, result), false, payload)
		return
	}

	s.log.Info("entry saved", "date", result.Date, "status", result.Status)
	s.renderLogPage(c, result.Message, true, payload)
}

// userMessage maps core errors to the text shown on the form page.
func userMessage(err error, result *models.UpsertResult) string {
	var pe *parser.ParseError
	switch {
	case errors.As(err, &pe):
		return pe.Message
	case errors.Is(err, storage.ErrInvalidDate):
		return "date must be YYYY-MM-DD"
	case errors.Is(err, storage.ErrConflict) && result != nil:
		return result.Message
	default:
		return fmt.Sprintf("Server error: %v", err)
	}
}

// JSON API handlers

func parsePolicy(raw string) (models.Policy, error) {
	switch models.Policy(strings.ToLower(raw)) {
	case models.PolicyReject, "":
		return models.PolicyReject, nil
	case models.PolicyOverwrite:
		return models.PolicyOverwrite, nil
	case models.PolicyMerge:
		return models.PolicyMerge, nil
	default:
		return "", fmt.Errorf("unknown policy %q", raw)
	}
}

func (s *Server) handleAPIList(c *gin.Context) {
	entries, err := s.store.All()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(entries),
		"entries": entries,
	})
}

func (s *Server) handleAPIGet(c *gin.Context) {
	entry, err := s.store.Lookup(c.Param("date"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "entry not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "entry": entry})
}

func (s *Server) handleAPICreate(c *gin.Context) {
	policy, err := parsePolicy(c.DefaultQuery("policy", "reject"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	// UseNumber keeps integers distinguishable for the derived kcal total.
	dec := json.NewDecoder(http.MaxBytesReader(c.Writer, c.Request.Body, maxPayloadSize))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": fmt.Sprintf("invalid JSON: %v", err)})
		return
	}

	entry, err := parser.Normalize(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	result, err := s.store.Upsert(entry, policy)
	switch {
	case errors.Is(err, storage.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"status":  result.Status,
			"date":    result.Date,
			"error":   result.Message,
		})
		return
	case errors.Is(err, storage.ErrInvalidDate):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "date must be YYYY-MM-DD"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	code := http.StatusOK
	if result.Status == models.StatusCreated {
		code = http.StatusCreated
	}
	c.JSON(code, gin.H{
		"success": true,
		"status":  result.Status,
		"date":    result.Date,
		"message": result.Message,
		"entry":   entry,
	})
}
