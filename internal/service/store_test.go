package service

import (
	"context"
	"slices"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/flicky/greenmart/internal/model"
	"github.com/flicky/greenmart/internal/repository"
)

// memStore is an in-memory repository.Store. InTx runs against a deep copy
// of the data and swaps it in only when fn succeeds, which mirrors the
// commit/rollback behaviour of the postgres store.
type memStore struct {
	data *memData
	fail map[string]error
}

type cartKey struct{ userID, productID int64 }

type memData struct {
	nextID     int64
	users      map[int64]model.User
	products   map[int64]model.Product
	categories map[int64]model.Category
	carts      map[cartKey]model.CartItem
	wishlists  map[cartKey]model.WishlistItem
	orders     map[int64]model.Order
	contacts   []model.ContactMessage
}

func newMemStore() *memStore {
	return &memStore{
		data: &memData{
			users:      map[int64]model.User{},
			products:   map[int64]model.Product{},
			categories: map[int64]model.Category{},
			carts:      map[cartKey]model.CartItem{},
			wishlists:  map[cartKey]model.WishlistItem{},
			orders:     map[int64]model.Order{},
		},
		fail: map[string]error{},
	}
}

func (d *memData) clone() *memData {
	c := &memData{
		nextID:     d.nextID,
		users:      make(map[int64]model.User, len(d.users)),
		products:   make(map[int64]model.Product, len(d.products)),
		categories: make(map[int64]model.Category, len(d.categories)),
		carts:      make(map[cartKey]model.CartItem, len(d.carts)),
		wishlists:  make(map[cartKey]model.WishlistItem, len(d.wishlists)),
		orders:     make(map[int64]model.Order, len(d.orders)),
		contacts:   slices.Clone(d.contacts),
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.products {
		if v.CategoryID != nil {
			id := *v.CategoryID
			v.CategoryID = &id
		}
		c.products[k] = v
	}
	for k, v := range d.categories {
		c.categories[k] = v
	}
	for k, v := range d.carts {
		c.carts[k] = v
	}
	for k, v := range d.wishlists {
		c.wishlists[k] = v
	}
	for k, v := range d.orders {
		v.Items = slices.Clone(v.Items)
		c.orders[k] = v
	}
	return c
}

func (d *memData) id() int64 {
	d.nextID++
	return d.nextID
}

func (s *memStore) failure(op string) error { return s.fail[op] }

func (s *memStore) Users() repository.UserRepository { return memUsers{s} }
func (s *memStore) Products() repository.ProductRepository { return memProducts{s} }
func (s *memStore) Categories() repository.CategoryRepository { return memCategories{s} }
func (s *memStore) Carts() repository.CartRepository { return memCarts{s} }
func (s *memStore) Wishlists() repository.WishlistRepository { return memWishlists{s} }
func (s *memStore) Orders() repository.OrderRepository { return memOrders{s} }
func (s *memStore) Contacts() repository.ContactRepository { return memContacts{s} }

func (s *memStore) InTx(_ context.Context, fn func(repository.Store) error) error {
	tx := &memStore{data: s.data.clone(), fail: s.fail}
	if err := fn(tx); err != nil {
		return err
	}
	s.data = tx.data
	return nil
}

// --- users ---

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, user *model.User) error {
	for _, u := range r.s.data.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	if user.Role == "" {
		user.Role = model.RoleCustomer
	}
	user.ID = r.s.data.id()
	user.CreatedAt = time.Now()
	r.s.data.users[user.ID] = *user
	return nil
}

func (r memUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.s.data.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r memUsers) List(_ context.Context) ([]model.User, error) {
	var users []model.User
	for _, u := range r.s.data.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r memUsers) Count(_ context.Context) (int, error) { return len(r.s.data.users), nil }

func (r memUsers) update(id int64, fn func(*model.User)) error {
	u, ok := r.s.data.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&u)
	r.s.data.users[id] = u
	return nil
}

func (r memUsers) UpdateName(_ context.Context, id int64, name string) error {
	return r.update(id, func(u *model.User) { u.Name = name })
}

func (r memUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	return r.update(id, func(u *model.User) { u.PasswordHash = hash })
}

func (r memUsers) SetRole(_ context.Context, id int64, role model.Role) error {
	return r.update(id, func(u *model.User) { u.Role = role })
}

// --- products ---

type memProducts struct{ s *memStore }

func (r memProducts) sorted() []model.Product {
	products := make([]model.Product, 0, len(r.s.data.products))
	for _, p := range r.s.data.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products
}

func (r memProducts) Create(_ context.Context, p *model.Product) error {
	p.ID = r.s.data.id()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	r.s.data.products[p.ID] = *p
	return nil
}

func (r memProducts) GetByID(_ context.Context, id int64) (*model.Product, error) {
	if err := r.s.failure("products.GetByID"); err != nil {
		return nil, err
	}
	p, ok := r.s.data.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r memProducts) List(_ context.Context, f repository.ProductFilter) ([]model.Product, int, error) {
	var matched []model.Product
	for _, p := range r.sorted() {
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
			continue
		}
		if f.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *f.CategoryID) {
			continue
		}
		matched = append(matched, p)
	}
	total := len(matched)
	if f.Offset >= total {
		return nil, total, nil
	}
	end := min(f.Offset+f.Limit, total)
	return matched[f.Offset:end], total, nil
}

func (r memProducts) Search(ctx context.Context, q string, limit int) ([]model.Product, error) {
	products, _, err := r.List(ctx, repository.ProductFilter{Search: q, Limit: limit})
	return products, err
}

func (r memProducts) Update(_ context.Context, p *model.Product) error {
	if _, ok := r.s.data.products[p.ID]; !ok {
		return repository.ErrNotFound
	}
	p.UpdatedAt = time.Now()
	r.s.data.products[p.ID] = *p
	return nil
}

func (r memProducts) Delete(_ context.Context, id int64) error {
	if _, ok := r.s.data.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.data.products, id)
	return nil
}

func (r memProducts) Count(_ context.Context) (int, error) { return len(r.s.data.products), nil }

func (r memProducts) ListLowStock(_ context.Context, threshold int) ([]model.Product, error) {
	var low []model.Product
	for _, p := range r.sorted() {
		if p.Stock < threshold {
			low = append(low, p)
		}
	}
	return low, nil
}

func (r memProducts) GetForUpdate(_ context.Context, ids []int64) ([]model.Product, error) {
	var locked []model.Product
	for _, p := range r.sorted() {
		if slices.Contains(ids, p.ID) {
			locked = append(locked, p)
		}
	}
	return locked, nil
}

func (r memProducts) DecrementStock(_ context.Context, id int64, qty int) (bool, error) {
	if err := r.s.failure("products.DecrementStock"); err != nil {
		return false, err
	}
	p, ok := r.s.data.products[id]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	r.s.data.products[id] = p
	return true, nil
}

// --- categories ---

type memCategories struct{ s *memStore }

func (r memCategories) Create(_ context.Context, c *model.Category) error {
	c.ID = r.s.data.id()
	r.s.data.categories[c.ID] = *c
	return nil
}

func (r memCategories) GetByID(_ context.Context, id int64) (*model.Category, error) {
	c, ok := r.s.data.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r memCategories) List(_ context.Context) ([]model.Category, error) {
	var categories []model.Category
	for _, c := range r.s.data.categories {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (r memCategories) Update(_ context.Context, c *model.Category) error {
	if _, ok := r.s.data.categories[c.ID]; !ok {
		return repository.ErrNotFound
	}
	r.s.data.categories[c.ID] = *c
	return nil
}

func (r memCategories) Delete(_ context.Context, id int64) ([]int64, error) {
	if _, ok := r.s.data.categories[id]; !ok {
		return nil, repository.ErrNotFound
	}
	delete(r.s.data.categories, id)
	var detached []int64
	for pid, p := range r.s.data.products {
		if p.CategoryID != nil && *p.CategoryID == id {
			p.CategoryID = nil
			r.s.data.products[pid] = p
			detached = append(detached, pid)
		}
	}
	return detached, nil
}

func (r memCategories) Count(_ context.Context) (int, error) { return len(r.s.data.categories), nil }

// --- cart ---

type memCarts struct{ s *memStore }

func (r memCarts) ListByUser(_ context.Context, userID int64) ([]model.CartItem, error) {
	var items []model.CartItem
	for k, v := range r.s.data.carts {
		if k.userID == userID {
			items = append(items, v)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
	return items, nil
}

func (r memCarts) Add(_ context.Context, userID, productID int64, qty int) (*model.CartItem, error) {
	k := cartKey{userID, productID}
	item, ok := r.s.data.carts[k]
	if !ok {
		item = model.CartItem{UserID: userID, ProductID: productID, CreatedAt: time.Now()}
	}
	item.Quantity += qty
	r.s.data.carts[k] = item
	return &item, nil
}

func (r memCarts) AdjustQuantity(_ context.Context, userID, productID int64, delta int) (int, error) {
	k := cartKey{userID, productID}
	item, ok := r.s.data.carts[k]
	if !ok {
		return 0, repository.ErrNotFound
	}
	q := item.Quantity + delta
	if q < 1 {
		return q, nil
	}
	item.Quantity = q
	r.s.data.carts[k] = item
	return q, nil
}

func (r memCarts) Delete(_ context.Context, userID, productID int64) error {
	k := cartKey{userID, productID}
	if _, ok := r.s.data.carts[k]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.data.carts, k)
	return nil
}

func (r memCarts) Clear(_ context.Context, userID int64) error {
	if err := r.s.failure("carts.Clear"); err != nil {
		return err
	}
	for k := range r.s.data.carts {
		if k.userID == userID {
			delete(r.s.data.carts, k)
		}
	}
	return nil
}

// --- wishlist ---

type memWishlists struct{ s *memStore }

func (r memWishlists) ListByUser(_ context.Context, userID int64) ([]model.WishlistItem, error) {
	var items []model.WishlistItem
	for k, v := range r.s.data.wishlists {
		if k.userID == userID {
			items = append(items, v)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
	return items, nil
}

func (r memWishlists) Add(_ context.Context, userID, productID int64) (bool, error) {
	k := cartKey{userID, productID}
	if _, ok := r.s.data.wishlists[k]; ok {
		return false, nil
	}
	r.s.data.wishlists[k] = model.WishlistItem{UserID: userID, ProductID: productID, CreatedAt: time.Now()}
	return true, nil
}

func (r memWishlists) Delete(_ context.Context, userID, productID int64) error {
	k := cartKey{userID, productID}
	if _, ok := r.s.data.wishlists[k]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.data.wishlists, k)
	return nil
}

func (r memWishlists) Clear(_ context.Context, userID int64) error {
	for k := range r.s.data.wishlists {
		if k.userID == userID {
			delete(r.s.data.wishlists, k)
		}
	}
	return nil
}

// --- orders ---

type memOrders struct{ s *memStore }

func (r memOrders) Create(_ context.Context, o *model.Order) error {
	o.ID = r.s.data.id()
	o.CreatedAt = time.Now()
	stored := *o
	stored.Items = nil
	r.s.data.orders[o.ID] = stored
	return nil
}

func (r memOrders) CreateItems(_ context.Context, orderID int64, items []model.OrderItem) error {
	if err := r.s.failure("orders.CreateItems"); err != nil {
		return err
	}
	o, ok := r.s.data.orders[orderID]
	if !ok {
		return repository.ErrNotFound
	}
	for i := range items {
		items[i].ID = r.s.data.id()
		items[i].OrderID = orderID
		o.Items = append(o.Items, items[i])
	}
	r.s.data.orders[orderID] = o
	return nil
}

func (r memOrders) GetByID(_ context.Context, id int64) (*model.Order, error) {
	o, ok := r.s.data.orders[id]
	if !ok {
		return nil, nil
	}
	o.Items = slices.Clone(o.Items)
	return &o, nil
}

func (r memOrders) filter(keep func(model.Order) bool) []model.Order {
	var orders []model.Order
	for _, o := range r.s.data.orders {
		if keep(o) {
			o.Items = slices.Clone(o.Items)
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })
	return orders
}

func (r memOrders) ListByUserID(_ context.Context, userID int64) ([]model.Order, error) {
	return r.filter(func(o model.Order) bool { return o.UserID == userID }), nil
}

func (r memOrders) List(_ context.Context) ([]model.Order, error) {
	return r.filter(func(model.Order) bool { return true }), nil
}

func (r memOrders) UpdateStatus(_ context.Context, id int64, status model.OrderStatus) error {
	o, ok := r.s.data.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.Status = status
	r.s.data.orders[id] = o
	return nil
}

func (r memOrders) Count(_ context.Context) (int, error) { return len(r.s.data.orders), nil }

func (r memOrders) Revenue(_ context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, o := range r.s.data.orders {
		if o.Status != model.OrderStatusCancelled {
			total = total.Add(o.TotalAmount)
		}
	}
	return total, nil
}

// --- contacts ---

type memContacts struct{ s *memStore }

func (r memContacts) Create(_ context.Context, msg *model.ContactMessage) error {
	msg.ID = r.s.data.id()
	msg.CreatedAt = time.Now()
	r.s.data.contacts = append(r.s.data.contacts, *msg)
	return nil
}

// --- fixtures ---

func seedUser(t *testing.T, s *memStore, email string) *model.User {
	t.Helper()
	u := &model.User{Name: "Test User", Email: email, PasswordHash: "x"}
	require.NoError(t, s.Users().Create(context.Background(), u))
	return u
}

func seedProduct(t *testing.T, s *memStore, name, price string, stock int) *model.Product {
	t.Helper()
	p := &model.Product{Name: name, Price: decimal.RequireFromString(price), Stock: stock}
	require.NoError(t, s.Products().Create(context.Background(), p))
	return p
}

func stockOf(s *memStore, id int64) int {
	return s.data.products[id].Stock
}
