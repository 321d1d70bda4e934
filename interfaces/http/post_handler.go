package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mx-social/domain/dto"
	"mx-social/infrastructure/logger"
	"mx-social/usecase"
)

type IPostHandler interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	Publish(c *gin.Context)
}

type PostHandler struct {
	publishUsecase usecase.IPublishUsecase
}

func NewPostHandler(publishUsecase usecase.IPublishUsecase) IPostHandler {
	return &PostHandler{publishUsecase: publishUsecase}
}

func (postHandler *PostHandler) Create(c *gin.Context) {
	var req dto.CreatePostRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().WithField("error", err).Error(ErrorUnmarshal)
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: ErrorUnmarshal})
		return
	}

	post, err := postHandler.publishUsecase.CreatePost(c.Request.Context(), c.GetString("guard"), &req)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while creating post")
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "01", ResponseMessage: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.Res{ResponseCode: "00", ResponseMessage: "Success", Data: post})
}

func (postHandler *PostHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "01", ResponseMessage: "invalid post id"})
		return
	}

	post, err := postHandler.publishUsecase.GetPost(c.Request.Context(), id, c.GetString("guard"))
	if err != nil {
		logger.GetLogger().WithField("error", err).Info("Post lookup failed")
		c.JSON(http.StatusNotFound, dto.Res{ResponseCode: "01", ResponseMessage: "Post not found"})
		return
	}

	c.JSON(http.StatusOK, dto.Res{ResponseCode: "00", ResponseMessage: "Success", Data: post})
}

// Publish pushes one post to its platform immediately. The adapter result
// is returned as-is, failed publishes still answer 200 with status false.
func (postHandler *PostHandler) Publish(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "01", ResponseMessage: "invalid post id"})
		return
	}

	if _, err := postHandler.publishUsecase.GetPost(c.Request.Context(), id, c.GetString("guard")); err != nil {
		logger.GetLogger().WithField("error", err).Info("Post lookup failed")
		c.JSON(http.StatusNotFound, dto.Res{ResponseCode: "01", ResponseMessage: "Post not found"})
		return
	}

	result, err := postHandler.publishUsecase.Publish(c.Request.Context(), id)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while publishing post")
		c.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "99", ResponseMessage: "General error"})
		return
	}

	code := "00"
	if !result.Status {
		code = "01"
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: code, ResponseMessage: result.Response, Data: result})
}
