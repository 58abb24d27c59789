package shopping

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"philcali.me/groceries/internal/identity"
)

var (
	ErrBudgetExceeded     = errors.New("item exceeds the remaining budget")
	ErrSaveInProgress     = errors.New("a purchase is already being saved")
	ErrIdentityUnresolved = errors.New("identity has not been resolved yet")
	ErrSignInRequired     = errors.New("sign in is required")
)

// Gateway is the document store behind signed-in sessions. Guest sessions
// never touch it.
type Gateway interface {
	ListPurchases(ctx context.Context, ownerId string) ([]Purchase, error)
	SavePurchase(ctx context.Context, purchase Purchase) (string, error)
	DeletePurchase(ctx context.Context, ownerId string, purchaseId string) error
	ListProducts(ctx context.Context, ownerId string) ([]Product, error)
	SaveProduct(ctx context.Context, ownerId string, name string, itemType ItemType) (string, error)
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func WithIdGenerator(newId func() string) Option {
	return func(s *Store) {
		s.newId = newId
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// Store owns the session state. Every mutation goes through one of its
// methods, one at a time; readers get copies and derived totals are computed
// on each call.
type Store struct {
	mu       sync.Mutex
	saving   atomic.Bool
	state    State
	user     *identity.User
	resolved bool
	gateway  Gateway
	now      func() time.Time
	newId    func() string
	log      logrus.FieldLogger
}

func NewStore(gateway Gateway, opts ...Option) *Store {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	store := &Store{
		gateway: gateway,
		now:     time.Now,
		newId:   uuid.NewString,
		log:     logger,
	}
	for _, opt := range opts {
		opt(store)
	}
	store.log = store.log.WithField("module", "shopping")
	return store
}

func (s *Store) Budget() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Budget
}

func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.state.ShoppingList)
}

func (s *Store) History() []Purchase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePurchases(s.state.PurchaseHistory)
}

func (s *Store) TotalCost() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalCost(s.state.ShoppingList).InexactFloat64()
}

// RemainingBudget is budget minus total cost, negative when over budget.
func (s *Store) RemainingBudget() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remainingLocked().InexactFloat64()
}

func (s *Store) remainingLocked() decimal.Decimal {
	return decimal.NewFromFloat(s.state.Budget).Sub(totalCost(s.state.ShoppingList))
}

// CheckBudget is the caller's pre-check before AddItem: it fails with
// ErrBudgetExceeded when the item would push the total above the budget.
func (s *Store) CheckBudget(item Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := totalCost(s.state.ShoppingList).Add(item.cost())
	if total.GreaterThan(decimal.NewFromFloat(s.state.Budget)) {
		return fmt.Errorf("%w: %s costs %s, %s left", ErrBudgetExceeded, item.Name,
			item.cost().StringFixed(2), s.remainingLocked().StringFixed(2))
	}
	return nil
}

func (s *Store) SetBudget(value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if value < 0 {
		value = 0
	}
	s.state.Budget = value
}

// AddItem appends item as a new line. It does not check the budget nor merge
// lines with the same name.
func (s *Store) AddItem(item Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID == "" {
		item.ID = s.newId()
	}
	s.state.ShoppingList = append(s.state.ShoppingList, item)
}

func (s *Store) RemoveItem(itemId string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := make([]Item, 0, len(s.state.ShoppingList))
	for _, item := range s.state.ShoppingList {
		if item.ID != itemId {
			kept = append(kept, item)
		}
	}
	s.state.ShoppingList = kept
}

// UpdateItem replaces the line with the same id. A quantity of zero is not a
// removal; callers use RemoveItem for that.
func (s *Store) UpdateItem(item Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.ShoppingList {
		if s.state.ShoppingList[i].ID == item.ID {
			s.state.ShoppingList[i] = item
			return
		}
	}
}

// ClearList ends the session: empty list and no budget.
func (s *Store) ClearList() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *Store) clearLocked() {
	s.state.ShoppingList = []Item{}
	s.state.Budget = 0
}

// FinalizeAndSave turns the cart into a Purchase, records it at the head of
// the history and ends the session. Signed-in purchases are written to the
// gateway first; if that fails nothing changes locally. Each call creates a
// new purchase, and a call made while another is saving is refused.
func (s *Store) FinalizeAndSave(ctx context.Context) (Purchase, error) {
	if !s.saving.CompareAndSwap(false, true) {
		return Purchase{}, ErrSaveInProgress
	}
	defer s.saving.Store(false)
	s.mu.Lock()
	defer s.mu.Unlock()
	purchase := Purchase{
		Date:       s.now().UnixMilli(),
		Budget:     s.state.Budget,
		TotalSpent: totalCost(s.state.ShoppingList).InexactFloat64(),
		Items:      cloneItems(s.state.ShoppingList),
	}
	if s.user != nil {
		purchase.OwnerID = s.user.ID
		purchaseId, err := s.gateway.SavePurchase(ctx, purchase)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"funcName": "FinalizeAndSave",
				"owner":    purchase.OwnerID,
			}).Error(err.Error())
			return Purchase{}, fmt.Errorf("saving purchase: %w", err)
		}
		purchase.ID = purchaseId
	} else {
		purchase.ID = s.newId()
	}
	history := make([]Purchase, 0, len(s.state.PurchaseHistory)+1)
	history = append(history, purchase)
	s.state.PurchaseHistory = append(history, s.state.PurchaseHistory...)
	s.clearLocked()
	s.log.WithFields(logrus.Fields{
		"purchase":   purchase.ID,
		"totalSpent": purchase.TotalSpent,
		"items":      len(purchase.Items),
	}).Info("Purchase finalized")
	return clonePurchase(purchase), nil
}

// RemovePurchase permanently deletes a purchase. Unknown ids are ignored.
func (s *Store) RemovePurchase(ctx context.Context, purchaseId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	index := -1
	for i, p := range s.state.PurchaseHistory {
		if p.ID == purchaseId {
			index = i
			break
		}
	}
	if index < 0 {
		return nil
	}
	if s.user != nil {
		if err := s.gateway.DeletePurchase(ctx, s.user.ID, purchaseId); err != nil {
			return fmt.Errorf("deleting purchase %s: %w", purchaseId, err)
		}
	}
	history := make([]Purchase, 0, len(s.state.PurchaseHistory)-1)
	history = append(history, s.state.PurchaseHistory[:index]...)
	s.state.PurchaseHistory = append(history, s.state.PurchaseHistory[index+1:]...)
	return nil
}

// Snapshot returns an independent copy of the session for the local slot.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Load replaces the session with a previously saved snapshot.
func (s *Store) Load(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state.clone()
	if s.state.Budget < 0 {
		s.state.Budget = 0
	}
	SortNewestFirst(s.state.PurchaseHistory)
}

func (s *Store) Identity() *identity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	user := *s.user
	return &user
}

// SetIdentity is the auth-state handler. It marks the identity resolved and,
// for a signed-in user, loads that user's history from the gateway. Signing
// out drops the previous user's history.
func (s *Store) SetIdentity(ctx context.Context, user *identity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous := s.user
	s.resolved = true
	if user == nil {
		s.user = nil
		if previous != nil {
			s.state.PurchaseHistory = []Purchase{}
		}
		return nil
	}
	copied := *user
	s.user = &copied
	if previous == nil || previous.ID != user.ID {
		s.state.PurchaseHistory = []Purchase{}
	}
	return s.refreshLocked(ctx)
}

// RefreshHistory reloads the signed-in user's history. It refuses to run
// before the identity is known.
func (s *Store) RefreshHistory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.resolved {
		return ErrIdentityUnresolved
	}
	if s.user == nil {
		return nil
	}
	return s.refreshLocked(ctx)
}

func (s *Store) refreshLocked(ctx context.Context) error {
	history, err := s.gateway.ListPurchases(ctx, s.user.ID)
	if err != nil {
		return fmt.Errorf("listing purchases: %w", err)
	}
	history = clonePurchases(history)
	SortNewestFirst(history)
	s.state.PurchaseHistory = history
	return nil
}

// Catalog manages the signed-in user's product names.
type Catalog struct {
	gateway Gateway
}

func NewCatalog(gateway Gateway) *Catalog {
	return &Catalog{
		gateway: gateway,
	}
}

func (c *Catalog) List(ctx context.Context, user *identity.User) ([]Product, error) {
	if user == nil {
		return nil, ErrSignInRequired
	}
	return c.gateway.ListProducts(ctx, user.ID)
}

// AddProduct saves a new catalog name, rejecting names already present
// regardless of case.
func (c *Catalog) AddProduct(ctx context.Context, user *identity.User, product Product) (Product, error) {
	if user == nil {
		return Product{}, ErrSignInRequired
	}
	product.Name = strings.TrimSpace(product.Name)
	if err := ValidateProduct(product); err != nil {
		return Product{}, err
	}
	existing, err := c.gateway.ListProducts(ctx, user.ID)
	if err != nil {
		return Product{}, fmt.Errorf("listing products: %w", err)
	}
	if conflict, ok := FindProduct(existing, product.Name); ok {
		return Product{}, duplicateProduct(conflict)
	}
	productId, err := c.gateway.SaveProduct(ctx, user.ID, product.Name, product.Type)
	if err != nil {
		return Product{}, fmt.Errorf("saving product: %w", err)
	}
	product.ID = productId
	return product, nil
}
