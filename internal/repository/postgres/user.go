package postgres

import (
	"context"
	"time"

	"github.com/jwalitptl/chronosync/internal/model"
	"github.com/jwalitptl/chronosync/internal/repository"
)

type userRepository struct {
	table[model.User]
}

func NewUserRepository(base BaseRepository) repository.UserRepository {
	return &userRepository{table[model.User]{BaseRepository: base, name: "users"}}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) (err error) {
	defer r.observe("users.create", time.Now(), &err)

	query := `
		INSERT INTO users (
			first_name, last_name, address, phone, email, unique_identifier,
			username, password_hash, role, is_enabled, is_locked, firm_id,
			created_at, updated_at, created_by, updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id
	`
	err = r.conn(ctx).QueryRowxContext(ctx, query,
		user.FirstName,
		user.LastName,
		user.Address,
		user.Phone,
		user.Email,
		user.UniqueIdentifier,
		user.Username,
		user.PasswordHash,
		user.Role,
		user.Enabled,
		user.Locked,
		user.FirmID,
		user.CreatedAt,
		user.UpdatedAt,
		user.CreatedBy,
		user.UpdatedBy,
	).Scan(&user.ID)
	return mapError(err)
}

func (r *userRepository) Update(ctx context.Context, user *model.User) (err error) {
	defer r.observe("users.update", time.Now(), &err)

	query := `
		UPDATE users SET
			first_name = $1,
			last_name = $2,
			address = $3,
			phone = $4,
			email = $5,
			unique_identifier = $6,
			password_hash = $7,
			role = $8,
			is_enabled = $9,
			is_locked = $10,
			updated_at = $11,
			updated_by = $12
		WHERE id = $13
	`
	result, err := r.conn(ctx).ExecContext(ctx, query,
		user.FirstName,
		user.LastName,
		user.Address,
		user.Phone,
		user.Email,
		user.UniqueIdentifier,
		user.PasswordHash,
		user.Role,
		user.Enabled,
		user.Locked,
		user.UpdatedAt,
		user.UpdatedBy,
		user.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return expectOne(result)
}
