package core

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	log "github.com/sirupsen/logrus"

	ex "capm.service/data/extensions"
	sm "capm.service/models"
)

const maxBodyBytes = 10 << 20

func GetHttpServer(sc *ServiceContext) *http.Server {
	// a misspelled field would otherwise fall back to its default without telling anyone
	binding.EnableDecoderDisallowUnknownFields = true

	origins := sc.Settings.CorsOrigins
	if len(origins) == 0 {
		origins = []string{DefaultOrigin}
	}

	engine := gin.Default()

	engine.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(limitBody)

	engine.GET("/api/ping", func(c *gin.Context) { ping(c, sc) })
	engine.POST("/api/capm", func(c *gin.Context) { runCapm(c, sc) })
	engine.POST("/api/prediction", func(c *gin.Context) { runPrediction(c, sc) })
	engine.POST("/api/prices/:symbol", func(c *gin.Context) { importPrices(c, sc) })

	addr := sc.Settings.HttpAddr
	if addr == "" {
		addr = DefaultAddr
	}

	server := &http.Server{
		Addr:           addr,
		Handler:        engine,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	return server
}

func limitBody(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	c.Next()
}

// ping answers pong only when the database answers too
func ping(c *gin.Context, sc *ServiceContext) {
	if err := sc.PostgresConnection.Ping(c.Request.Context()); err != nil {
		log.Errorf("database ping failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, sm.GetServiceResponseError("database unavailable"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

func runCapm(c *gin.Context, sc *ServiceContext) {
	var req sm.CapmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, sm.GetServiceResponseError(err.Error()))
		return
	}

	res, err := sc.WithContext(c.Request.Context()).RunCapmAnalysis(req)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, sm.GetServiceResponseOk(res))
}

func runPrediction(c *gin.Context, sc *ServiceContext) {
	var req sm.PredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, sm.GetServiceResponseError(err.Error()))
		return
	}

	res, err := sc.WithContext(c.Request.Context()).RunPricePrediction(req)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, sm.GetServiceResponseOk(res))
}

func importPrices(c *gin.Context, sc *ServiceContext) {
	var req sm.PriceImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, sm.GetServiceResponseError(err.Error()))
		return
	}

	symbol := ex.NormalizeSymbol(c.Param("symbol"))
	inserted, lastRefreshed, err := sc.WithContext(c.Request.Context()).ImportPriceHistory(symbol, sm.MapPriceImportRequestToDataModel(req))
	if err != nil {
		writeError(c, err)
		return
	}

	respond(c, http.StatusOK, sm.GetServiceResponseOk(&sm.PriceImportResponse{
		Symbol:        symbol,
		Received:      len(req.Bars),
		Inserted:      inserted,
		LastRefreshed: lastRefreshed,
	}))
}

// writeError maps the error kinds to a status, anything unknown is on us
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, ErrInsufficientData),
		errors.Is(err, ErrDegenerateSeries),
		errors.Is(err, ErrDegenerateRegression),
		errors.Is(err, ErrMisalignedSeries):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		log.Errorf("request failed: %v", err)
	}
	c.JSON(status, sm.GetServiceResponseError(err.Error()))
}

// respond renders v, gin leaves nothing written when the body cannot be encoded so that case becomes a 500
func respond(c *gin.Context, status int, v any) {
	c.JSON(status, v)
	if c.Writer.Written() {
		return
	}

	log.Errorf("error writing response: %v", c.Errors.Last())
	c.JSON(http.StatusInternalServerError, sm.GetServiceResponseError("response could not be encoded"))
}
