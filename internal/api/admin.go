package api

import (
	"net/http"
	"strconv"

	"pet_portrait_go_backend/internal/auth"
	apperrors "pet_portrait_go_backend/internal/errors"
	"pet_portrait_go_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func SetupAdminRoutes(r *gin.Engine, accessService *services.AccessService, supportService *services.SupportService, usageService services.UsageServiceDB) {
	admin := r.Group("/api/admin", auth.AuthMiddleware(accessService), auth.RequireAdmin())
	{
		admin.GET("/accounts", listAccountsHandler(accessService))
		admin.POST("/accounts/:id/allowlist", setAllowlistHandler(accessService))
		admin.PATCH("/accounts/:id/limit", setDailyLimitHandler(accessService))
		admin.GET("/usage", listUsageEventsHandler(usageService))
		admin.GET("/support", listOpenTicketsHandler(supportService))
		admin.POST("/support/:id/reply", replyTicketHandler(supportService))
	}
}

func listAccountsHandler(accessService *services.AccessService) gin.HandlerFunc {
	return func(c *gin.Context) {
		accounts, err := accessService.ListAccounts(c.Query("status"))
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"accounts": accounts})
	}
}

func setAllowlistHandler(accessService *services.AccessService) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid account id"})
			return
		}

		var request struct {
			Action string `json:"action" binding:"required"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		account, err := accessService.SetAllowlistStatus(accountID, request.Action)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"account": account})
	}
}

func setDailyLimitHandler(accessService *services.AccessService) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid account id"})
			return
		}

		var request struct {
			DailyGenerationLimit *int `json:"daily_generation_limit" binding:"required"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		account, err := accessService.SetDailyLimit(accountID, *request.DailyGenerationLimit)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"account": account})
	}
}

func listUsageEventsHandler(usageService services.UsageServiceDB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 100
		if raw := c.Query("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 1000 {
				limit = parsed
			}
		}

		events, err := usageService.ListRecentUsageEvents(limit)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"events": events})
	}
}

func listOpenTicketsHandler(supportService *services.SupportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tickets, err := supportService.ListOpenTickets()
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"tickets": tickets})
	}
}

func replyTicketHandler(supportService *services.SupportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ticketID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket id"})
			return
		}

		var request struct {
			Reply string `json:"reply" binding:"required"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ticket, err := supportService.ReplyToTicket(uint(ticketID), request.Reply)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"ticket": ticket})
	}
}
