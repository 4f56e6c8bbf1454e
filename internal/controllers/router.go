package controllers

import (
	"net/http"
	"time"

	"TeraLink/internal/helpers"
	"TeraLink/internal/metrics"

	"github.com/gin-gonic/gin"
)

const BANNER = "Terabox API Server is running. Use /api?link=YOUR_TERABOX_URL endpoint."

// Cors 所有响应都允许跨域
func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Metrics 记录请求数和耗时，path使用路由模板避免标签爆炸
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

func SetupRouter(share *ShareController) *gin.Engine {
	r := gin.New()
	r.Use(gin.LoggerWithWriter(helpers.WebLog.Writer()), gin.Recovery(), Cors(), Metrics())

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, BANNER)
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	{
		api.GET("", share.GetShareList)
		api.GET("/directory", share.GetShareDirectory)
		api.GET("/stream", share.StreamShareList)
	}
	return r
}
