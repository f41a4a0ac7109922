package memory

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jwalitptl/chronosync/internal/model"
	"github.com/jwalitptl/chronosync/internal/repository"
)

type (
	FirmRepository            struct{ *table[model.Firm] }
	UserRepository            struct{ *table[model.User] }
	ClientRepository          struct{ *table[model.Client] }
	AppointmentTypeRepository struct{ *table[model.AppointmentType] }
	AppointmentRepository     struct{ *table[model.Appointment] }
)

var (
	_ repository.FirmRepository            = FirmRepository{}
	_ repository.UserRepository            = UserRepository{}
	_ repository.ClientRepository          = ClientRepository{}
	_ repository.AppointmentTypeRepository = AppointmentTypeRepository{}
	_ repository.AppointmentRepository     = AppointmentRepository{}
)

// Store holds one set of tables sharing a lock and a transaction scope.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	Firms            FirmRepository
	Users            UserRepository
	Clients          ClientRepository
	AppointmentTypes AppointmentTypeRepository
	Appointments     AppointmentRepository
	Tokens           *TokenStore
}

func NewStore() *Store {
	s := &Store{Tokens: NewTokenStore()}
	s.Firms = FirmRepository{newTable(&s.mu, func(f *model.Firm) *int64 { return &f.ID }, firmField)}
	s.Users = UserRepository{newTable(&s.mu, func(u *model.User) *int64 { return &u.ID }, userField,
		func(u *model.User) string { return strings.ToLower(u.Username) },
	)}
	s.Clients = ClientRepository{newTable(&s.mu, func(c *model.Client) *int64 { return &c.ID }, clientField,
		func(c *model.Client) string {
			return strings.Join([]string{c.FirstName, c.LastName, c.Email, c.Phone, strconv.FormatInt(c.FirmID, 10)}, "\x00")
		},
	)}
	s.AppointmentTypes = AppointmentTypeRepository{newTable(&s.mu, func(a *model.AppointmentType) *int64 { return &a.ID }, appointmentTypeField)}
	s.Appointments = AppointmentRepository{newTable(&s.mu, func(a *model.Appointment) *int64 { return &a.ID }, appointmentField)}
	return s
}

type txKey struct{}

// WithinTx serializes transactions and rolls every table back when fn
// fails.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	firms, firmsID := s.Firms.snapshot()
	users, usersID := s.Users.snapshot()
	clients, clientsID := s.Clients.snapshot()
	types, typesID := s.AppointmentTypes.snapshot()
	appointments, appointmentsID := s.Appointments.snapshot()
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.Firms.restore(firms, firmsID)
		s.Users.restore(users, usersID)
		s.Clients.restore(clients, clientsID)
		s.AppointmentTypes.restore(types, typesID)
		s.Appointments.restore(appointments, appointmentsID)
		s.mu.Unlock()
		return err
	}
	return nil
}

func baseField(b *model.Base, column string) (any, bool) {
	switch column {
	case "id":
		return b.ID, true
	case "created_at":
		return b.CreatedAt, true
	case "updated_at":
		return b.UpdatedAt, true
	case "created_by":
		return b.CreatedBy, true
	case "updated_by":
		return b.UpdatedBy, true
	}
	return nil, false
}

func personField(p *model.Person, column string) (any, bool) {
	switch column {
	case "first_name":
		return p.FirstName, true
	case "last_name":
		return p.LastName, true
	case "address":
		return p.Address, true
	case "phone":
		return p.Phone, true
	case "email":
		return p.Email, true
	case "unique_identifier":
		return p.UniqueIdentifier, true
	}
	return nil, false
}

func firmField(f *model.Firm, column string) any {
	if v, ok := baseField(&f.Base, column); ok {
		return v
	}
	if column == "name" {
		return f.Name
	}
	return nil
}

func userField(u *model.User, column string) any {
	if v, ok := baseField(&u.Base, column); ok {
		return v
	}
	if v, ok := personField(&u.Person, column); ok {
		return v
	}
	switch column {
	case "username":
		return u.Username
	case "role":
		return u.Role
	case "is_enabled":
		return u.Enabled
	case "is_locked":
		return u.Locked
	case "firm_id":
		return u.FirmID
	}
	return nil
}

func clientField(c *model.Client, column string) any {
	if v, ok := baseField(&c.Base, column); ok {
		return v
	}
	if v, ok := personField(&c.Person, column); ok {
		return v
	}
	if column == "firm_id" {
		return c.FirmID
	}
	return nil
}

func appointmentTypeField(a *model.AppointmentType, column string) any {
	if v, ok := baseField(&a.Base, column); ok {
		return v
	}
	switch column {
	case "name":
		return a.Name
	case "duration_minutes":
		return a.DurationMinutes
	case "price":
		return a.Price
	case "currency":
		return a.Currency
	case "color_code":
		return a.ColorCode
	case "firm_id":
		return a.FirmID
	}
	return nil
}

func appointmentField(a *model.Appointment, column string) any {
	if v, ok := baseField(&a.Base, column); ok {
		return v
	}
	switch column {
	case "note":
		return a.Note
	case "start_time":
		return a.StartTime
	case "end_time":
		return a.EndTime
	case "client_id":
		return a.ClientID
	case "appointment_type_id":
		return a.AppointmentTypeID
	case "employee_id":
		return a.EmployeeID
	case "firm_id":
		return a.FirmID
	}
	return nil
}

// TokenStore is an in-process TokenStore.
type TokenStore struct {
	mu     sync.Mutex
	tokens map[int64]storedToken
	now    func() time.Time
}

type storedToken struct {
	id        string
	expiresAt time.Time
}

func NewTokenStore() *TokenStore {
	return &TokenStore{tokens: make(map[int64]storedToken), now: time.Now}
}

var _ repository.TokenStore = (*TokenStore)(nil)

func (s *TokenStore) Store(_ context.Context, userID int64, tokenID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[userID] = storedToken{id: tokenID, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *TokenStore) Active(_ context.Context, userID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[userID]
	if !ok || !s.now().Before(t.expiresAt) {
		return "", repository.ErrNotFound
	}
	return t.id, nil
}

func (s *TokenStore) Revoke(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, userID)
	return nil
}
