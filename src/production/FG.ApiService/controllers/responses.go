package controllers

import (
	"github.com/gin-gonic/gin"
	api_models "gitlab.com/floodguard1/fg.sensor_server/src/production/FG.Models/api"
)

// Error codes reported in the error envelope.
const (
	codeBadRequest    = "400"
	codeNotFound      = "404"
	codeInternalError = "INTERNAL_SERVER_ERROR"
)

func respondError(ctx *gin.Context, status int, code, message string) {
	ctx.JSON(status, api_models.NewErrorResponse(code, message))
}

func respondInternalError(ctx *gin.Context) {
	respondError(ctx, 500, codeInternalError, "An unexpected error occurred")
}
