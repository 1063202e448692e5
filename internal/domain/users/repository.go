package users

import "context"

// Repository devuelve ErrNotFound / ErrAlreadyExists de este paquete.
type Repository interface {
	Create(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	HasAdmin(ctx context.Context) (bool, error)
}
