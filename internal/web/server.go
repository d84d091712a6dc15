// Package web serves the dashboard page, the user actions that drive it and
// the chart, export, health and metrics endpoints.
package web

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"accessdash/internal/apiclient"
	"accessdash/internal/chart"
	"accessdash/internal/dashboard"
	"accessdash/internal/export"
	"accessdash/internal/format"
	"accessdash/internal/httpmiddleware"
	"accessdash/internal/logging"
	"accessdash/internal/model"
	"accessdash/internal/page"
	"accessdash/internal/sections"
	"accessdash/internal/store"
)

// Chart image size.
const (
	ChartWidth  = 800
	ChartHeight = 300
)

// Backend is what the export, pass-through and health handlers call.
type Backend interface {
	export.Source
	Employees(ctx context.Context) ([]model.Employee, error)
	Search(ctx context.Context, f model.SearchFilter) ([]model.AccessRecord, error)
	Health(ctx context.Context) error
}

// Deps wires the server. Limiter, Redis and Gatherer are optional.
type Deps struct {
	Dashboard *dashboard.Dashboard
	Backend   Backend
	Log       *zap.Logger
	Limiter   httpmiddleware.Limiter
	Redis     *store.Redis
	Gatherer  prometheus.Gatherer
	// RefreshSeconds is the page reload period while auto-refresh is on.
	RefreshSeconds int
	Now            func() time.Time
	Location       *time.Location
}

type server struct {
	Deps
	tmpl *template.Template
}

// NewRouter builds the gin engine with logging, CORS, security headers and
// rate limiting in front of every route.
func NewRouter(deps Deps) *gin.Engine {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	if deps.RefreshSeconds <= 0 {
		deps.RefreshSeconds = 10
	}
	s := &server{Deps: deps, tmpl: template.Must(template.New("page").Parse(pageTemplate))}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.GinMiddleware(deps.Log, "/healthz", "/metrics"))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", logging.RequestIDHeader},
		ExposeHeaders:   []string{logging.RequestIDHeader, "Content-Disposition"},
		MaxAge:          12 * time.Hour,
	}))
	r.Use(securityHeaders())
	if deps.Limiter != nil {
		r.Use(httpmiddleware.GinMiddleware(deps.Limiter, deps.Log))
	}

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	r.GET("/healthz", s.health)

	r.GET("/", s.index)
	r.GET("/api/view", s.view)
	r.POST("/tabs/:tab", s.activateTab)
	r.POST("/images/page/:page", s.imagePage)
	r.POST("/unauthorized/hours", s.unauthorizedHours)
	r.POST("/autorefresh", s.autoRefresh)
	r.POST("/reports/generate", s.generateReport)
	r.POST("/modal/open", s.openModal)
	r.POST("/modal/close", s.closeModal)
	r.POST("/modal/click", s.clickModal)
	r.POST("/alert/dismiss", s.dismissAlert)

	r.GET(sections.ChartPath, s.chart)
	r.GET("/export/attendance.csv", s.exportAttendance)
	r.GET("/export/report.csv", s.exportReport("csv"))
	r.GET("/export/report.xlsx", s.exportReport("xlsx"))

	r.GET(apiclient.PathEmployees, s.employees)
	r.GET(apiclient.PathSearch, s.search)
	return r
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}

func backendCtx(c *gin.Context) context.Context {
	return apiclient.WithRequestID(c.Request.Context(), c.GetString("request_id"))
}

// back returns the browser to the page after an action.
func back(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/")
}

type tabView struct {
	Name     string
	Label    string
	ButtonID string
	PanelID  string
}

var tabLabels = map[dashboard.Tab]string{
	dashboard.TabLive:         "Live Monitor",
	dashboard.TabAttendance:   "Attendance",
	dashboard.TabUnauthorized: "Unauthorized Access",
	dashboard.TabCameras:      "Cameras",
	dashboard.TabReports:      "Reports",
}

type hourOption struct {
	Value string
	Label string
}

var hourOptions = []hourOption{
	{"1", "Last hour"},
	{"6", "Last 6 hours"},
	{"12", "Last 12 hours"},
	{"24", "Last 24 hours"},
	{"48", "Last 48 hours"},
	{"168", "Last 7 days"},
}

type pageView struct {
	page.Snapshot
	Tabs           []tabView
	HourOptions    []hourOption
	StreamURL      string
	AutoRefresh    bool
	RefreshSeconds int
	ChartSrc       string
}

func (s *server) index(c *gin.Context) {
	snap := s.Dashboard.Snapshot()
	v := pageView{
		Snapshot:       snap,
		HourOptions:    hourOptions,
		StreamURL:      s.Dashboard.StreamURL(c.Request.Host),
		AutoRefresh:    s.Dashboard.Refresh.State() == dashboard.Enabled,
		RefreshSeconds: s.RefreshSeconds,
		ChartSrc:       snap.Attr(page.IDActivityChart, "src"),
	}
	if v.ChartSrc == "" {
		v.ChartSrc = sections.ChartPath
	}
	for _, t := range dashboard.Tabs {
		v.Tabs = append(v.Tabs, tabView{
			Name:     string(t),
			Label:    tabLabels[t],
			ButtonID: dashboard.ButtonID(t),
			PanelID:  dashboard.PanelID(t),
		})
	}
	c.Header("Cache-Control", "no-store")
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := s.tmpl.Execute(c.Writer, v); err != nil {
		s.Log.Error("render page", zap.Error(err))
	}
}

func (s *server) view(c *gin.Context) {
	current, total := s.Dashboard.Sections().ImagePages()
	c.JSON(http.StatusOK, gin.H{
		"page":         s.Dashboard.Snapshot(),
		"current_tab":  s.Dashboard.Tabs.Current(),
		"auto_refresh": s.Dashboard.Refresh.State().String(),
		"countdown":    s.Dashboard.Refresh.Countdown(),
		"image_page":   current,
		"image_pages":  total,
	})
}

func (s *server) activateTab(c *gin.Context) {
	if err := s.Dashboard.Tabs.Activate(c.Param("tab")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	back(c)
}

func (s *server) imagePage(c *gin.Context) {
	n, err := strconv.Atoi(c.Param("page"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be a number"})
		return
	}
	if err := s.Dashboard.ImagePage(n); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	back(c)
}

func (s *server) unauthorizedHours(c *gin.Context) {
	s.Dashboard.SetUnauthorizedHours(c.PostForm("hours"))
	back(c)
}

func (s *server) autoRefresh(c *gin.Context) {
	v := strings.ToLower(c.PostForm("enabled"))
	s.Dashboard.SetAutoRefresh(v == "on" || v == "true" || v == "1")
	back(c)
}

func (s *server) generateReport(c *gin.Context) {
	if err := s.Dashboard.GenerateReport(c.PostForm("start"), c.PostForm("end")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": sections.MissingDates})
		return
	}
	back(c)
}

func (s *server) openModal(c *gin.Context) {
	if err := s.Dashboard.Modal.Open(c.PostForm("url"), c.PostForm("filename")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	back(c)
}

func (s *server) closeModal(c *gin.Context) {
	s.Dashboard.Modal.Close()
	back(c)
}

func (s *server) clickModal(c *gin.Context) {
	s.Dashboard.Modal.Click(c.PostForm("target"))
	back(c)
}

func (s *server) dismissAlert(c *gin.Context) {
	s.Dashboard.DismissAlert()
	back(c)
}

func (s *server) chart(c *gin.Context) {
	buckets := s.Dashboard.Sections().Buckets()
	c.Header("Content-Type", "image/png")
	c.Header("Cache-Control", "no-store")
	c.Status(http.StatusOK)
	if err := chart.RenderPNG(c.Writer, buckets, ChartWidth, ChartHeight, s.Location); err != nil {
		s.Log.Error("render chart", zap.Error(err))
	}
}

func (s *server) download(c *gin.Context, f export.File) {
	if err := format.WriteDownload(c.Writer, f.Name, f.ContentType, f.Body); err != nil {
		s.Log.Warn("download interrupted", zap.String("file", f.Name), zap.Error(err))
	}
}

func (s *server) exportAttendance(c *gin.Context) {
	today := format.Date(s.Now().In(s.Location))
	f, err := export.Attendance(backendCtx(c), s.Backend, today)
	if err != nil {
		s.Log.Error("export attendance", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to export attendance"})
		return
	}
	s.download(c, f)
}

// exportReport reads the range from the query, falling back to the page's
// date inputs.
func (s *server) exportReport(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := s.Dashboard.Snapshot()
		start := c.DefaultQuery("start", snap.Value(page.IDReportStart))
		end := c.DefaultQuery("end", snap.Value(page.IDReportEnd))

		var (
			f   export.File
			err error
		)
		if kind == "xlsx" {
			f, err = export.ReportXLSX(backendCtx(c), s.Backend, start, end)
		} else {
			f, err = export.ReportCSV(backendCtx(c), s.Backend, start, end)
		}
		switch {
		case errors.Is(err, export.ErrMissingDates):
			// raises the page alert
			_ = s.Dashboard.GenerateReport(start, end)
			c.JSON(http.StatusBadRequest, gin.H{"error": sections.MissingDates})
		case err != nil:
			s.Log.Error("export report", zap.String("kind", kind), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to export report"})
		default:
			s.download(c, f)
		}
	}
}

func (s *server) employees(c *gin.Context) {
	list, err := s.Backend.Employees(backendCtx(c))
	if err != nil {
		s.Log.Error("list employees", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *server) search(c *gin.Context) {
	f := model.SearchFilter{
		SubjectName: c.Query("subject_name"),
		CameraName:  c.Query("camera_name"),
		StartDate:   c.Query("start_date"),
		EndDate:     c.Query("end_date"),
	}
	if v := c.Query("is_authorized"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "is_authorized must be true or false"})
			return
		}
		f.IsAuthorized = &b
	}
	records, err := s.Backend.Search(backendCtx(c), f)
	if err != nil {
		s.Log.Error("search access log", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	backendHealthy := s.Backend.Health(ctx) == nil
	body := gin.H{"status": "ok", "backend": backendHealthy}
	healthy := backendHealthy
	if s.Redis != nil {
		redisHealthy := s.Redis.Healthy(ctx)
		body["redis"] = redisHealthy
		healthy = healthy && redisHealthy
	}
	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
	}
	c.JSON(status, body)
}
