// Package memory implementa los repositorios en memoria. Se usa en modo demo (DB_DRIVER=memory)
// y como almacén de pruebas de los casos de uso.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/pharmacy-api/internal/application/inventory"
	"github.com/jhoicas/pharmacy-api/internal/domain"
	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
	domaininv "github.com/jhoicas/pharmacy-api/internal/domain/inventory"
	"github.com/jhoicas/pharmacy-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

type state struct {
	users         map[string]entity.User
	products      map[string]entity.Product
	generics      map[string]entity.GenericDrug
	suppliers     map[string]entity.Supplier
	batches       map[string]entity.Batch
	movements     []entity.Movement
	sales         map[string]entity.SalesTransaction
	saleOrder     []string
	items         []entity.SaleItem
	prescriptions map[string]entity.PrescriptionDetail // por TransactionID
}

func newState() *state {
	return &state{
		users:         map[string]entity.User{},
		products:      map[string]entity.Product{},
		generics:      map[string]entity.GenericDrug{},
		suppliers:     map[string]entity.Supplier{},
		batches:       map[string]entity.Batch{},
		sales:         map[string]entity.SalesTransaction{},
		prescriptions: map[string]entity.PrescriptionDetail{},
	}
}

// clone copia el estado; las entidades se guardan por valor, así que basta copiar mapas y slices.
func (s *state) clone() *state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.generics {
		c.generics[k] = v
	}
	for k, v := range s.suppliers {
		c.suppliers[k] = v
	}
	for k, v := range s.batches {
		c.batches[k] = v
	}
	for k, v := range s.sales {
		c.sales[k] = v
	}
	for k, v := range s.prescriptions {
		c.prescriptions[k] = v
	}
	c.movements = append([]entity.Movement(nil), s.movements...)
	c.saleOrder = append([]string(nil), s.saleOrder...)
	c.items = append([]entity.SaleItem(nil), s.items...)
	return c
}

// Store almacén en memoria protegido por RWMutex. Las transacciones se serializan con txMu
// y se deshacen restaurando una copia del estado. Las escrituras fuera de Run también toman
// txMu, así ningún rollback pisa datos escritos mientras la transacción estaba abierta.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data *state
	now  func() time.Time
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{data: newState(), now: time.Now}
}

// Run ejecuta fn con repositorios del almacén; si fn falla se restaura el estado previo.
func (s *Store) Run(ctx context.Context, fn func(repos inventory.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: begin transaction: %w", domain.ErrStore, err)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(s.Repos()); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// Repos devuelve los repositorios transaccionales sobre este almacén. Solo son válidos
// dentro de Run: escriben sin tomar txMu.
func (s *Store) Repos() inventory.Repos {
	return inventory.Repos{
		Batches:   &BatchRepo{s: s, tx: true},
		Products:  &ProductRepo{s: s, tx: true},
		Suppliers: &SupplierRepo{s: s, tx: true},
		Movements: &MovementRepo{s: s, tx: true},
		Sales:     &SaleRepo{s: s, tx: true},
	}
}

// lock toma el candado de escritura. Fuera de una transacción espera antes a txMu.
func (s *Store) lock(inTx bool) func() {
	if !inTx {
		s.txMu.Lock()
	}
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		if !inTx {
			s.txMu.Unlock()
		}
	}
}

func conflict(what string) error {
	return fmt.Errorf("%s already exists: %w", what, domain.ErrConflict)
}

func inRange(t time.Time, r repository.DateRange) bool {
	d := domaininv.DateOnly(t)
	if r.From != nil && d.Before(domaininv.DateOnly(*r.From)) {
		return false
	}
	if r.To != nil && d.After(domaininv.DateOnly(*r.To)) {
		return false
	}
	return true
}
