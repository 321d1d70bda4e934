package repository

import (
	"context"

	"mx-social/domain/model"
)

// IUser is the operator store backing login and the auth middleware.
type IUser interface {
	GetById(ctx context.Context, id int64) (model.User, error)
	GetByUserName(ctx context.Context, userName string) (model.User, error)
	CreateUser(ctx context.Context, user model.User) error
}
