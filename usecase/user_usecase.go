package usecase

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"time"

	"mx-social/domain/dto"
	"mx-social/domain/model"
	"mx-social/domain/repository"
	"mx-social/infrastructure/logger"
	"mx-social/infrastructure/utils"
)

// DefaultGuard scopes accounts connected through the panel.
const DefaultGuard = "admin"

var ErrInvalidCredentials = errors.New("invalid username or password")

type IUserUsecase interface {
	Login(ctx context.Context, req model.ReqLogin) (dto.ResLogin, error)
	Register(ctx context.Context, req model.ReqRegister) error
}

type userUsecase struct {
	userRepo  repository.IUser
	secretKey string
}

func NewUserUsecase(userRepo repository.IUser, secretKey string) IUserUsecase {
	return &userUsecase{userRepo: userRepo, secretKey: secretKey}
}

func (u *userUsecase) Login(ctx context.Context, req model.ReqLogin) (dto.ResLogin, error) {
	var res dto.ResLogin
	user, err := u.userRepo.GetByUserName(ctx, req.UserName)
	if err != nil {
		logger.GetLogger().WithField("user_name", req.UserName).Info("Login attempt for unknown user")
		res.ResponseCode = "01"
		res.ResponseMessage = "Invalid username or password"
		return res, ErrInvalidCredentials
	}
	if hashPassword(req.Password) != user.Password {
		res.ResponseCode = "01"
		res.ResponseMessage = "Invalid username or password"
		return res, ErrInvalidCredentials
	}

	guard := user.Guard
	if guard == "" {
		guard = DefaultGuard
	}
	token, err := utils.GenerateToken(map[string]interface{}{
		"user_name": user.UserName,
		"guard":     guard,
		"exp":       time.Now().Add(24 * time.Hour).Unix(),
	}, u.secretKey)
	if err != nil {
		res.ResponseCode = "99"
		res.ResponseMessage = "Failed to issue token"
		return res, err
	}
	res.ResponseCode = "00"
	res.ResponseMessage = "Success"
	res.AccessToken = token
	return res, nil
}

func (u *userUsecase) Register(ctx context.Context, req model.ReqRegister) error {
	if _, err := u.userRepo.GetByUserName(ctx, req.UserName); err == nil {
		return errors.New("username already taken")
	}
	return u.userRepo.CreateUser(ctx, model.User{
		Name:     req.Name,
		UserName: req.UserName,
		Password: hashPassword(req.Password),
	})
}

func hashPassword(password string) string {
	sum := md5.Sum([]byte(password))
	return hex.EncodeToString(sum[:])
}
