package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mx-social/domain/dto"
	"mx-social/infrastructure/cache"
	"mx-social/infrastructure/logger"
	"mx-social/usecase"
)

type IAccountHandler interface {
	Redirect(c *gin.Context)
	Callback(c *gin.Context)
	List(c *gin.Context)
	Get(c *gin.Context)
	Disconnect(c *gin.Context)
	Platforms(c *gin.Context)
}

type AccountHandler struct {
	accountUsecase usecase.IAccountUsecase
}

func NewAccountHandler(accountUsecase usecase.IAccountUsecase) IAccountHandler {
	return &AccountHandler{accountUsecase: accountUsecase}
}

// Redirect builds the provider authorization URL and returns it so the
// client can open the consent screen itself. With ?mode=redirect the server
// answers with a 302 instead.
func (accountHandler *AccountHandler) Redirect(c *gin.Context) {
	platform := c.Param("platform")
	guard := c.GetString("guard")
	if guard == "" {
		guard = usecase.DefaultGuard
	}

	redirect, err := accountHandler.accountUsecase.AuthRedirect(c.Request.Context(), platform, guard)
	if err != nil {
		logger.GetLogger().
			WithField("platform", platform).
			WithField("error", err).
			Error("Error while building authorization redirect")
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "01", ResponseMessage: err.Error()})
		return
	}

	if c.Query("mode") == "redirect" {
		c.Redirect(http.StatusFound, redirect)
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "00", ResponseMessage: "Success", Data: gin.H{"auth_url": redirect}})
}

func (accountHandler *AccountHandler) Callback(c *gin.Context) {
	platform := c.Param("platform")
	if medium := c.Query("medium"); medium != "" {
		platform = medium
	}
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "01", ResponseMessage: "code and state are required"})
		return
	}

	result, err := accountHandler.accountUsecase.HandleCallback(c.Request.Context(), platform, code, state)
	if err != nil {
		logger.GetLogger().
			WithField("platform", platform).
			WithField("error", err).
			Error("Error while completing connection")
		status := http.StatusBadGateway
		if errors.Is(err, cache.ErrStateNotFound) || errors.Is(err, usecase.ErrStateMismatch) {
			status = http.StatusBadRequest
		}
		c.JSON(status, dto.Res{ResponseCode: "01", ResponseMessage: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.Res{ResponseCode: "00", ResponseMessage: "Success", Data: result})
}

func (accountHandler *AccountHandler) List(c *gin.Context) {
	guard := c.GetString("guard")

	accounts, err := accountHandler.accountUsecase.ListAccounts(c.Request.Context(), guard)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while listing accounts")
		c.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "99", ResponseMessage: "General error"})
		return
	}

	c.JSON(http.StatusOK, dto.Res{ResponseCode: "00", ResponseMessage: "Success", Data: accounts})
}

func (accountHandler *AccountHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "01", ResponseMessage: "invalid account id"})
		return
	}

	account, err := accountHandler.accountUsecase.GetAccount(c.Request.Context(), id, c.GetString("guard"))
	if err != nil {
		logger.GetLogger().WithField("error", err).Info("Account lookup failed")
		c.JSON(http.StatusNotFound, dto.Res{ResponseCode: "01", ResponseMessage: "Account not found"})
		return
	}

	c.JSON(http.StatusOK, dto.Res{ResponseCode: "00", ResponseMessage: "Success", Data: account})
}

func (accountHandler *AccountHandler) Disconnect(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "01", ResponseMessage: "invalid account id"})
		return
	}

	if err := accountHandler.accountUsecase.Disconnect(c.Request.Context(), id, c.GetString("guard")); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while disconnecting account")
		c.JSON(http.StatusNotFound, dto.Res{ResponseCode: "01", ResponseMessage: "Account not found"})
		return
	}

	c.JSON(http.StatusOK, dto.Res{ResponseCode: "00", ResponseMessage: "Success"})
}

func (accountHandler *AccountHandler) Platforms(c *gin.Context) {
	platforms, err := accountHandler.accountUsecase.ListPlatforms(c.Request.Context())
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while listing platforms")
		c.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "99", ResponseMessage: "General error"})
		return
	}

	c.JSON(http.StatusOK, dto.Res{ResponseCode: "00", ResponseMessage: "Success", Data: platforms})
}
