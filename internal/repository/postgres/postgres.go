package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/chronosync/internal/repository"
	"github.com/jwalitptl/chronosync/pkg/metrics"
)

// Repositories bundles every postgres repository over one pool.
type Repositories struct {
	Tx               repository.TxManager
	Firms            repository.FirmRepository
	Users            repository.UserRepository
	Clients          repository.ClientRepository
	AppointmentTypes repository.AppointmentTypeRepository
	Appointments     repository.AppointmentRepository
	Tokens           repository.TokenStore
}

func NewRepositories(db *sqlx.DB, m *metrics.Metrics) *Repositories {
	base := NewBaseRepository(db, m)
	return &Repositories{
		Tx:               NewTxManager(base),
		Firms:            NewFirmRepository(base),
		Users:            NewUserRepository(base),
		Clients:          NewClientRepository(base),
		AppointmentTypes: NewAppointmentTypeRepository(base),
		Appointments:     NewAppointmentRepository(base),
		Tokens:           NewTokenRepository(base),
	}
}
