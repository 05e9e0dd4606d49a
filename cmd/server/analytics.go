package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront/internal/analytics"
	"storefront/internal/apperr"
	"storefront/internal/models"
)

func recordAnalytic(traffic *analytics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Type     models.AnalyticType `json:"type"`
			TargetID uuid.UUID           `json:"targetId"`
			URL      string              `json:"url"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || body.Type == "" || body.URL == "" {
			fail(c, apperr.Invalid("type and url are required"))
			return
		}
		event, err := traffic.Record(c.Request.Context(), analytics.RecordInput{
			Type:      body.Type,
			TargetID:  body.TargetID,
			URL:       body.URL,
			IPAddress: c.ClientIP(),
		})
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusCreated, event, "analytic recorded")
	}
}

func trafficReport(traffic *analytics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := traffic.Traffic(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, report, "")
	}
}
