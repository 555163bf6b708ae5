package api

import (
	"encoding/base64"
	"net/http"

	"pet_portrait_go_backend/internal/auth"
	apperrors "pet_portrait_go_backend/internal/errors"
	"pet_portrait_go_backend/internal/models"
	"pet_portrait_go_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func SetupRoutes(r *gin.Engine, generationService *services.GenerationService, orderService *services.OrderService, supportService *services.SupportService, accessService *services.AccessService, maxBodyBytes int64) {
	api := r.Group("/api")
	{
		api.GET("/styles", getStyles)
		api.POST("/generate", auth.OptionalAuthMiddleware(accessService), generateHandler(generationService, maxBodyBytes))
		api.GET("/quota", auth.OptionalAuthMiddleware(accessService), getQuotaHandler(generationService))

		api.POST("/orders", auth.AuthMiddleware(accessService), auth.RequireAllowlisted(), placeOrderHandler(orderService))
		api.GET("/orders", auth.AuthMiddleware(accessService), auth.RequireAllowlisted(), listOrdersHandler(orderService))
		api.GET("/orders/:id", auth.AuthMiddleware(accessService), auth.RequireAllowlisted(), getOrderHandler(orderService))

		api.POST("/feedback", auth.AuthMiddleware(accessService), submitFeedbackHandler(supportService))
		api.POST("/support", openTicketHandler(supportService))
	}
}

// callerFrom assembles the generation gateway's view of the request principal.
func callerFrom(c *gin.Context) services.Caller {
	caller := services.Caller{ClientIP: auth.ClientIP(c.Request)}
	if authz, ok := auth.GetAuthz(c); ok {
		caller.Account = authz.Account
		caller.Authz = authz
	}
	return caller
}

func accountFrom(c *gin.Context) (*models.Account, bool) {
	value, exists := c.Get("account")
	if !exists {
		return nil, false
	}
	account, ok := value.(*models.Account)
	return account, ok && account != nil
}

func getStyles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"styles": services.Styles()})
}

func generateHandler(generationService *services.GenerationService, maxBodyBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

		var request struct {
			Image    string `json:"image" binding:"required"`
			MimeType string `json:"mime_type"`
			Style    string `json:"style" binding:"required"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			if err.Error() == "http: request body too large" {
				apperrors.HandleError(c, apperrors.New413Error("request body exceeds the 2 MiB limit"))
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if int64(len(request.Image)) > maxBodyBytes {
			apperrors.HandleError(c, apperrors.New413Error("encoded image exceeds the 2 MiB limit"))
			return
		}

		imageData, err := base64.StdEncoding.DecodeString(request.Image)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image must be base64 encoded"})
			return
		}

		mimeType := request.MimeType
		if mimeType == "" {
			mimeType = "image/jpeg"
		}

		result, err := generationService.Generate(c.Request.Context(), callerFrom(c), services.GenerationRequest{
			ImageData: imageData,
			MimeType:  mimeType,
			StyleTag:  request.Style,
		})
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"image":       base64.StdEncoding.EncodeToString(result.Image),
			"mime_type":   result.MimeType,
			"description": result.Description,
			"price_cents": result.PriceCents,
			"degraded":    result.Degraded,
			"quota":       result.Quota,
		})
	}
}

func getQuotaHandler(generationService *services.GenerationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, err := generationService.QuotaFor(callerFrom(c))
		if err != nil {
			apperrors.HandleError(c, apperrors.New500Error(err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"quota": status})
	}
}

func placeOrderHandler(orderService *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := accountFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
			return
		}

		var request struct {
			Style           string `json:"style" binding:"required"`
			CanvasSize      string `json:"canvas_size" binding:"required"`
			PetName         string `json:"pet_name"`
			ShippingName    string `json:"shipping_name" binding:"required"`
			ShippingAddress string `json:"shipping_address" binding:"required"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		order, err := orderService.PlaceOrder(account.ID, services.PlaceOrderInput{
			StyleTag:        request.Style,
			CanvasSize:      request.CanvasSize,
			PetName:         request.PetName,
			ShippingName:    request.ShippingName,
			ShippingAddress: request.ShippingAddress,
		})
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

func listOrdersHandler(orderService *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := accountFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
			return
		}

		orders, err := orderService.ListOrders(account.ID)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"orders": orders})
	}
}

func getOrderHandler(orderService *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := accountFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
			return
		}

		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
			return
		}

		order, err := orderService.GetOrder(account.ID, orderID)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

func submitFeedbackHandler(supportService *services.SupportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := accountFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
			return
		}

		var request struct {
			Rating  int    `json:"rating" binding:"required"`
			Comment string `json:"comment"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		feedback, err := supportService.SubmitFeedback(account.ID, request.Rating, request.Comment)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"feedback": feedback})
	}
}

func openTicketHandler(supportService *services.SupportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			Email   string `json:"email" binding:"required"`
			Subject string `json:"subject" binding:"required"`
			Message string `json:"message" binding:"required"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ticket, err := supportService.OpenTicket(request.Email, request.Subject, request.Message)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"ticket": ticket})
	}
}
