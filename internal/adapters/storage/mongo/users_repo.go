package mongo

import (
	"context"
	"errors"
	"time"

	"psyjaciele/internal/domain/users"
	"psyjaciele/internal/ports/auth"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type userDoc struct {
	ID           string    `bson:"_id"`
	Username     string    `bson:"username"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	Role         string    `bson:"role"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

type UsersRepo struct {
	col *mongo.Collection
}

func NewUsersRepo(db *mongo.Database) *UsersRepo {
	return &UsersRepo{col: db.Collection(usersCollection)}
}

func (r *UsersRepo) Create(ctx context.Context, u users.User) error {
	_, err := r.col.InsertOne(ctx, userDoc{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	})
	if mongo.IsDuplicateKeyError(err) {
		return users.ErrAlreadyExists
	}
	return err
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UsersRepo) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"$or": bson.A{
		bson.M{"email": email},
		bson.M{"username": username},
	}})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *UsersRepo) HasAdmin(ctx context.Context) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"role": string(auth.RoleAdmin)})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *UsersRepo) findOne(ctx context.Context, filter bson.M) (users.User, error) {
	var doc userDoc
	err := r.col.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return users.User{}, users.ErrNotFound
	}
	if err != nil {
		return users.User{}, err
	}
	return users.User{
		ID:           doc.ID,
		Username:     doc.Username,
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		Role:         auth.ParseRole(doc.Role),
		CreatedAt:    doc.CreatedAt.UTC(),
		UpdatedAt:    doc.UpdatedAt.UTC(),
	}, nil
}
