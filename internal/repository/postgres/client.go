package postgres

import (
	"context"
	"time"

	"github.com/jwalitptl/chronosync/internal/model"
	"github.com/jwalitptl/chronosync/internal/repository"
)

type clientRepository struct {
	table[model.Client]
}

func NewClientRepository(base BaseRepository) repository.ClientRepository {
	return &clientRepository{table[model.Client]{BaseRepository: base, name: "clients"}}
}

// Create relies on uk_client_identifiers_per_firm; a concurrent duplicate
// surfaces as repository.ErrDuplicate.
func (r *clientRepository) Create(ctx context.Context, client *model.Client) (err error) {
	defer r.observe("clients.create", time.Now(), &err)

	query := `
		INSERT INTO clients (
			first_name, last_name, address, phone, email, unique_identifier,
			firm_id, created_at, updated_at, created_by, updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err = r.conn(ctx).QueryRowxContext(ctx, query,
		client.FirstName,
		client.LastName,
		client.Address,
		client.Phone,
		client.Email,
		client.UniqueIdentifier,
		client.FirmID,
		client.CreatedAt,
		client.UpdatedAt,
		client.CreatedBy,
		client.UpdatedBy,
	).Scan(&client.ID)
	return mapError(err)
}

func (r *clientRepository) Update(ctx context.Context, client *model.Client) (err error) {
	defer r.observe("clients.update", time.Now(), &err)

	query := `
		UPDATE clients SET
			first_name = $1,
			last_name = $2,
			address = $3,
			phone = $4,
			email = $5,
			unique_identifier = $6,
			updated_at = $7,
			updated_by = $8
		WHERE id = $9
	`
	result, err := r.conn(ctx).ExecContext(ctx, query,
		client.FirstName,
		client.LastName,
		client.Address,
		client.Phone,
		client.Email,
		client.UniqueIdentifier,
		client.UpdatedAt,
		client.UpdatedBy,
		client.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return expectOne(result)
}
