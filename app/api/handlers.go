package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/postpulse/analytics-engine/app/database"
	"github.com/postpulse/analytics-engine/app/importer"
	"github.com/postpulse/analytics-engine/app/metrics"
	"github.com/postpulse/analytics-engine/app/schema"
	"github.com/postpulse/analytics-engine/app/workbook"
)

func NewHandler(imports ImportService, runs database.RunRepository, maxUploadSize int64) *Handler {
	return &Handler{
		imports:       imports,
		runs:          runs,
		maxUploadSize: maxUploadSize,
	}
}

// userID identifies the caller. Session handling lives outside this
// service; the gateway forwards the authenticated user in a header.
func userID(c *gin.Context) string {
	if id := c.GetHeader("X-User-ID"); id != "" {
		return id
	}
	return "default"
}

// ImportFile runs the full import pipeline for an uploaded export file.
// Only one import may run at a time per service instance.
func (h *Handler) ImportFile(c *gin.Context) {
	if !h.importMu.TryLock() {
		c.JSON(http.StatusConflict, gin.H{
			"error": "an import is already in progress",
		})
		return
	}
	defer h.importMu.Unlock()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file upload"})
		return
	}
	if fileHeader.Size > h.maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open upload"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
		return
	}

	user := userID(c)
	summary, err := h.imports.Run(c.Request.Context(), user, fileHeader.Filename, data)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, workbook.ErrUnsupportedFormat) ||
			errors.Is(err, workbook.ErrCorruptFile) ||
			errors.Is(err, schema.ErrEmptyImport) {
			status = http.StatusBadRequest
		}
		slog.Error("Import failed", "user", user, "file", fileHeader.Filename, "error", err)

		body := gin.H{"error": err.Error()}
		if summary != nil {
			body["summary"] = summaryResponse(summary)
		}
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, summaryResponse(summary))
}

func summaryResponse(summary *importer.Summary) gin.H {
	warnings := summary.Warnings
	if warnings == nil {
		warnings = []string{}
	}

	body := gin.H{
		"run_id":        summary.RunID,
		"export_type":   summary.ExportType,
		"posts_found":   summary.PostsFound,
		"posts_new":     summary.PostsNew,
		"posts_updated": summary.PostsUpdated,
		"daily_rows":    summary.DailyRows,
		"errors_count":  summary.ErrorsCount,
		"warnings":      warnings,
		"started_at":    summary.StartedAt.Format(time.RFC3339),
		"completed_at":  summary.CompletedAt.Format(time.RFC3339),
	}
	if summary.Discovery != nil {
		body["discovery"] = summary.Discovery
	}
	return body
}

// GetMetrics recomputes the derived views for the requested time window.
func (h *Handler) GetMetrics(c *gin.Context) {
	from, to, err := parseWindow(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snapshot, err := h.imports.LoadSnapshot(userID(c), from, to)
	if err != nil {
		slog.Error("Database error", "operation", "load_snapshot", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	if snapshot.Page == nil {
		c.JSON(http.StatusOK, gin.H{"imported": false})
		return
	}

	response := gin.H{
		"imported":         true,
		"export_type":      snapshot.ExportType,
		"engagement":       metrics.Engagement(snapshot.Posts),
		"daily_trend":      metrics.DailyTrend(snapshot.ExportType, snapshot.Posts, snapshot.DailyStats),
		"weekly_frequency": metrics.WeeklyFrequency(snapshot.Posts),
		"performance":      metrics.Performance(snapshot.Posts),
	}

	// Absent (not zeroed) when no post in the window has impressions.
	if impressions := metrics.Impressions(snapshot.Posts); impressions != nil {
		response["impressions"] = impressions
	}
	if snapshot.LastRun != nil {
		response["last_run"] = runResponse(*snapshot.LastRun)
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) GetPosts(c *gin.Context) {
	from, to, err := parseWindow(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snapshot, err := h.imports.LoadSnapshot(userID(c), from, to)
	if err != nil {
		slog.Error("Database error", "operation", "load_snapshot", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	posts := snapshot.Posts
	if posts == nil {
		posts = []database.Post{}
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts, "count": len(posts)})
}

func (h *Handler) GetRuns(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	runs, err := h.runs.GetRuns(userID(c), limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_runs", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	responses := make([]gin.H, 0, len(runs))
	for _, run := range runs {
		responses = append(responses, runResponse(run))
	}
	c.JSON(http.StatusOK, gin.H{"runs": responses, "count": len(responses)})
}

func runResponse(run database.Run) gin.H {
	body := gin.H{
		"id":            run.ID,
		"file_name":     run.FileName,
		"status":        run.Status,
		"posts_found":   run.PostsFound,
		"posts_new":     run.PostsNew,
		"posts_updated": run.PostsUpdated,
		"errors_count":  run.ErrorsCount,
		"started_at":    run.StartedAt.Format(time.RFC3339),
	}
	if run.CompletedAt != nil {
		body["completed_at"] = run.CompletedAt.Format(time.RFC3339)
	}
	if run.Error != "" {
		body["error"] = run.Error
	}
	return body
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	snapshot, err := h.imports.LoadSnapshot(userID(c), time.Time{}, time.Time{})
	if err != nil {
		slog.Error("Database error", "operation", "load_snapshot", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	stats := gin.H{
		"imported":   snapshot.Page != nil,
		"post_count": len(snapshot.Posts),
		"daily_rows": len(snapshot.DailyStats),
	}
	if snapshot.LastRun != nil {
		stats["last_run"] = runResponse(*snapshot.LastRun)
	}

	c.JSON(http.StatusOK, stats)
}

// parseWindow reads the optional from/to query parameters as ISO dates.
// The "to" bound is inclusive of the whole day.
func parseWindow(c *gin.Context) (time.Time, time.Time, error) {
	var from, to time.Time

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return from, to, errors.New("invalid 'from' date, expected YYYY-MM-DD")
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return from, to, errors.New("invalid 'to' date, expected YYYY-MM-DD")
		}
		to = parsed.AddDate(0, 0, 1).Add(-time.Second)
	}

	return from, to, nil
}
