package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mx-social/domain/dto"
	"mx-social/infrastructure/logger"
	"mx-social/usecase"
)

type IReportHandler interface {
	AccountActivity(c *gin.Context)
}

type ReportHandler struct {
	reportUsecase usecase.IReportUsecase
}

func NewReportHandler(reportUsecase usecase.IReportUsecase) IReportHandler {
	return &ReportHandler{reportUsecase: reportUsecase}
}

// AccountActivity returns the normalized recent-activity feed for one
// connected account.
func (reportHandler *ReportHandler) AccountActivity(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "01", ResponseMessage: "invalid account id"})
		return
	}

	result, err := reportHandler.reportUsecase.AccountActivity(c.Request.Context(), id, c.GetString("guard"))
	if err != nil {
		logger.GetLogger().WithField("error", err).Info("Activity lookup failed")
		c.JSON(http.StatusNotFound, dto.Res{ResponseCode: "01", ResponseMessage: "Account not found"})
		return
	}

	code := "00"
	if !result.Status {
		code = "01"
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: code, ResponseMessage: result.Message, Data: result})
}
