package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/cafeteria-api/internal/httpx"
	"github.com/MikeMC777/cafeteria-api/internal/stats"
)

func salesSummaryHandler(svc *stats.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := svc.Summary(c.Request.Context())
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, s)
	}
}

func salesByPeriodHandler(svc *stats.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.ByPeriod(c.Request.Context(), c.Query("period"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func topProductsHandler(svc *stats.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.Query("limit"))
		out, err := svc.TopProducts(c.Request.Context(), limit)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func customerStatsHandler(svc *stats.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.Customers(c.Request.Context())
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}
