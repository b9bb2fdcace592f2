package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"kmarket/internal/app/catalog/entity"
)

type MainServiceInterface interface {
	GetMain(ctx context.Context) (*entity.MainPage, error)
}

type MainHandler struct {
	mainService MainServiceInterface
}

func NewMainHandler(mainService MainServiceInterface) *MainHandler {
	return &MainHandler{mainService: mainService}
}

func (h *MainHandler) GetMain(c *gin.Context) {
	page, err := h.mainService.GetMain(c.Request.Context())
	if err != nil {
		respondInternal(c, err)
		return
	}

	respondSuccess(c, page, "Main page retrieved successfully")
}
