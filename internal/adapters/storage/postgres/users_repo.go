package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"psyjaciele/internal/domain/users"
	"psyjaciele/internal/ports/auth"

	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// userRow es el mapeo gorm de la tabla users (creada por goose, no AutoMigrate).
type userRow struct {
	ID           string `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"not null;default:'user'"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userRow) TableName() string { return "users" }

// UsersRepo usa gorm sobre el mismo *sql.DB del resto de los repos.
type UsersRepo struct {
	db *gorm.DB
}

func NewUsersRepo(sqlDB *sql.DB) (*UsersRepo, error) {
	db, err := gorm.Open(gormpg.New(gormpg.Config{Conn: sqlDB}), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("gorm open: %w", err)
	}
	return &UsersRepo{db: db}, nil
}

func (r *UsersRepo) Create(ctx context.Context, u users.User) error {
	row := userRow{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	err := r.db.WithContext(ctx).Create(&row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return users.ErrAlreadyExists
	}
	return err
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *UsersRepo) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&userRow{}).
		Where("email = ? OR username = ?", email, username).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *UsersRepo) HasAdmin(ctx context.Context) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&userRow{}).
		Where("role = ?", string(auth.RoleAdmin)).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *UsersRepo) first(ctx context.Context, query string, arg any) (users.User, error) {
	var row userRow
	err := r.db.WithContext(ctx).Where(query, arg).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return users.User{}, users.ErrNotFound
	}
	if err != nil {
		return users.User{}, err
	}
	return users.User{
		ID:           row.ID,
		Username:     row.Username,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		Role:         auth.ParseRole(row.Role),
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}, nil
}
