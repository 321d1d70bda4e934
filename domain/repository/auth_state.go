package repository

import (
	"context"

	"mx-social/domain/model"
)

// IAuthState is the single-use keyed store for in-flight OAuth states.
// Take removes the state atomically so a nonce can never be replayed.
type IAuthState interface {
	Put(ctx context.Context, state *model.AuthState) error
	Take(ctx context.Context, nonce string) (*model.AuthState, error)
}
