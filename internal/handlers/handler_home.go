package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// getHome godoc
// @Summary Show the status of server.
// @Description get the status of server.
// @Tags root
// @Accept */*
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func getHome(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"message": "Hello World From EchoPrep Backend API v1"})
}

// getHealth reports liveness only; it does not touch the store.
func getHealth(ctx *gin.Context) {
	ctx.String(http.StatusOK, "OK")
}
