package controllers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	logger "gitlab.com/floodguard1/fg.sensor_server/src/production/FG.Logger"
)

// DashboardController serves the pull-based monitoring dashboard
type DashboardController struct {
	dashboardFile string
	logger        *logger.Logger
}

// NewDashboardController creates a new dashboard controller
func NewDashboardController(dashboardFile string, logger *logger.Logger) *DashboardController {
	return &DashboardController{
		dashboardFile: dashboardFile,
		logger:        logger,
	}
}

// RegisterRoutes registers the dashboard routes with Gin
func (c *DashboardController) RegisterRoutes(router *gin.Engine) {
	router.GET("/", c.Root)
	router.GET("/dashboard", c.GetDashboard)
}

// Root redirects to the dashboard
func (c *DashboardController) Root(ctx *gin.Context) {
	ctx.Redirect(http.StatusTemporaryRedirect, "/dashboard")
}

// GetDashboard serves dashboard.html when present, or an inline fallback
// page linking to the API endpoints
func (c *DashboardController) GetDashboard(ctx *gin.Context) {
	if content, err := os.ReadFile(c.dashboardFile); err == nil {
		ctx.Data(http.StatusOK, "text/html; charset=utf-8", content)
		return
	}
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", []byte(fallbackDashboardHTML))
}

const fallbackDashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>ESP32 Sensor Dashboard</title>
    <style>
        body { font-family: 'Segoe UI', sans-serif; margin: 0; background: #667eea; min-height: 100vh; color: white; }
        .container { max-width: 800px; margin: 0 auto; padding: 40px 20px; text-align: center; }
        .card { background: rgba(255,255,255,0.95); color: #333; padding: 40px; border-radius: 20px; }
        .btn { background: #764ba2; color: white; padding: 12px 25px; border-radius: 25px; text-decoration: none; display: inline-block; margin: 10px; font-weight: 600; }
    </style>
</head>
<body>
    <div class="container">
        <div class="card">
            <h1>ESP32 Sensor Dashboard</h1>
            <p>Dashboard HTML file not found. Create <code>dashboard.html</code> in the server directory for the full dashboard experience.</p>
            <div>
                <a href="/data" class="btn">Raw Data</a>
                <a href="/data/latest" class="btn">Latest Reading</a>
                <a href="/stats" class="btn">Statistics</a>
                <a href="/data/file" class="btn">Download Data</a>
            </div>
        </div>
    </div>
</body>
</html>
`
