package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/bensaadi/parapharma/internal/domain"
	"github.com/bensaadi/parapharma/internal/repository"
)

// memStore is an in-memory repository.Store. Transactions are serialized by
// a mutex and roll back by restoring a deep copy of the state, so service
// tests exercise the real transactional contracts without a database.
type memStore struct {
	mu     sync.Mutex
	nextID int64

	products   map[int64]*domain.Product
	clients    map[int64]bool
	wilayas    map[int64]*domain.Wilaya
	communes   map[int64]*domain.Commune
	tariffs    map[int64]*domain.DeliveryTariff
	carts      map[int64]*domain.Cart
	cartItems  map[int64]*domain.CartItem
	promos     map[int64]*domain.PromoCode
	loyalty    []domain.LoyaltyEntry
	orders     map[int64]*domain.Order
	orderItems map[int64]*domain.OrderItem
}

var _ repository.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		products:   make(map[int64]*domain.Product),
		clients:    make(map[int64]bool),
		wilayas:    make(map[int64]*domain.Wilaya),
		communes:   make(map[int64]*domain.Commune),
		tariffs:    make(map[int64]*domain.DeliveryTariff),
		carts:      make(map[int64]*domain.Cart),
		cartItems:  make(map[int64]*domain.CartItem),
		promos:     make(map[int64]*domain.PromoCode),
		orders:     make(map[int64]*domain.Order),
		orderItems: make(map[int64]*domain.OrderItem),
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

// ExecTx serializes transactions and restores the prior state if fn fails.
func (m *memStore) ExecTx(_ context.Context, fn func(repository.Querier) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	backup := m.snapshot()
	if err := fn(m); err != nil {
		m.restore(backup)
		return err
	}
	return nil
}

type memSnapshot struct {
	nextID     int64
	products   map[int64]*domain.Product
	clients    map[int64]bool
	wilayas    map[int64]*domain.Wilaya
	communes   map[int64]*domain.Commune
	tariffs    map[int64]*domain.DeliveryTariff
	carts      map[int64]*domain.Cart
	cartItems  map[int64]*domain.CartItem
	promos     map[int64]*domain.PromoCode
	loyalty    []domain.LoyaltyEntry
	orders     map[int64]*domain.Order
	orderItems map[int64]*domain.OrderItem
}

func (m *memStore) snapshot() memSnapshot {
	s := memSnapshot{
		nextID:     m.nextID,
		products:   make(map[int64]*domain.Product, len(m.products)),
		clients:    make(map[int64]bool, len(m.clients)),
		wilayas:    make(map[int64]*domain.Wilaya, len(m.wilayas)),
		communes:   make(map[int64]*domain.Commune, len(m.communes)),
		tariffs:    make(map[int64]*domain.DeliveryTariff, len(m.tariffs)),
		carts:      make(map[int64]*domain.Cart, len(m.carts)),
		cartItems:  make(map[int64]*domain.CartItem, len(m.cartItems)),
		promos:     make(map[int64]*domain.PromoCode, len(m.promos)),
		loyalty:    append([]domain.LoyaltyEntry(nil), m.loyalty...),
		orders:     make(map[int64]*domain.Order, len(m.orders)),
		orderItems: make(map[int64]*domain.OrderItem, len(m.orderItems)),
	}
	for k, v := range m.products {
		s.products[k] = copyProduct(v)
	}
	for k, v := range m.clients {
		s.clients[k] = v
	}
	for k, v := range m.wilayas {
		w := *v
		s.wilayas[k] = &w
	}
	for k, v := range m.communes {
		c := *v
		s.communes[k] = &c
	}
	for k, v := range m.tariffs {
		t := *v
		s.tariffs[k] = &t
	}
	for k, v := range m.carts {
		c := *v
		s.carts[k] = &c
	}
	for k, v := range m.cartItems {
		ci := *v
		s.cartItems[k] = &ci
	}
	for k, v := range m.promos {
		p := *v
		s.promos[k] = &p
	}
	for k, v := range m.orders {
		o := *v
		s.orders[k] = &o
	}
	for k, v := range m.orderItems {
		oi := *v
		s.orderItems[k] = &oi
	}
	return s
}

func (m *memStore) restore(s memSnapshot) {
	m.nextID = s.nextID
	m.products = s.products
	m.clients = s.clients
	m.wilayas = s.wilayas
	m.communes = s.communes
	m.tariffs = s.tariffs
	m.carts = s.carts
	m.cartItems = s.cartItems
	m.promos = s.promos
	m.loyalty = s.loyalty
	m.orders = s.orders
	m.orderItems = s.orderItems
}

func copyProduct(p *domain.Product) *domain.Product {
	cp := *p
	cp.Variants = append([]domain.ProductVariant(nil), p.Variants...)
	if p.Specifications != nil {
		cp.Specifications = make(map[string]string, len(p.Specifications))
		for k, v := range p.Specifications {
			cp.Specifications[k] = v
		}
	}
	return &cp
}

// ---- seeding helpers ----

func (m *memStore) seedClient() int64 {
	id := m.id()
	m.clients[id] = true
	return id
}

func (m *memStore) seedProduct(p domain.Product) *domain.Product {
	if p.ID == 0 {
		p.ID = m.id()
	}
	if p.Status == "" {
		p.Status = domain.ProductStatusActive
	}
	for i := range p.Variants {
		if p.Variants[i].ID == 0 {
			p.Variants[i].ID = m.id()
		}
		p.Variants[i].ProductID = p.ID
	}
	m.products[p.ID] = &p
	return &p
}

func (m *memStore) seedGeography(tariffPrice int64, dt domain.DeliveryType) (wilayaID, communeID int64) {
	wilayaID = m.id()
	m.wilayas[wilayaID] = &domain.Wilaya{
		ID:       wilayaID,
		Code:     int32(wilayaID),
		Name:     domain.Translated{"fr": "Alger", "ar": "الجزائر"},
		IsActive: true,
	}
	communeID = m.id()
	m.communes[communeID] = &domain.Commune{
		ID:       communeID,
		WilayaID: wilayaID,
		Name:     domain.Translated{"fr": "Bab El Oued"},
		IsActive: true,
	}
	tariffID := m.id()
	m.tariffs[tariffID] = &domain.DeliveryTariff{
		ID:           tariffID,
		WilayaID:     wilayaID,
		DeliveryType: dt,
		Price:        tariffPrice,
		IsActive:     true,
	}
	return wilayaID, communeID
}

func (m *memStore) seedPromo(p domain.PromoCode) *domain.PromoCode {
	if p.ID == 0 {
		p.ID = m.id()
	}
	p.CreatedAt = time.Now()
	m.promos[p.ID] = &p
	return &p
}

func (m *memStore) seedLoyalty(clientID, points int64) {
	m.loyalty = append(m.loyalty, domain.LoyaltyEntry{
		ID:        m.id(),
		ClientID:  clientID,
		Points:    points,
		CreatedAt: time.Now(),
	})
}

// ---- catalog ----

func (m *memStore) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyProduct(p), nil
}

func (m *memStore) ListActiveProducts(context.Context) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range m.products {
		if p.Status == domain.ProductStatusActive {
			out = append(out, *copyProduct(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetVariantsForUpdate(_ context.Context, productID int64) ([]domain.ProductVariant, error) {
	p, ok := m.products[productID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	var out []domain.ProductVariant
	for _, v := range p.Variants {
		if v.IsActive {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) DecrementProductStock(_ context.Context, id int64, quantity int32) (int64, error) {
	p, ok := m.products[id]
	if !ok || p.Stock < quantity {
		return 0, nil
	}
	p.Stock -= quantity
	return 1, nil
}

func (m *memStore) IncrementProductStock(_ context.Context, id int64, quantity int32) error {
	p, ok := m.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Stock += quantity
	return nil
}

func (m *memStore) findVariant(id int64) *domain.ProductVariant {
	for _, p := range m.products {
		for i := range p.Variants {
			if p.Variants[i].ID == id {
				return &p.Variants[i]
			}
		}
	}
	return nil
}

func (m *memStore) DecrementVariantStock(_ context.Context, id int64, quantity int32) (int64, error) {
	v := m.findVariant(id)
	if v == nil || v.Stock < quantity {
		return 0, nil
	}
	v.Stock -= quantity
	return 1, nil
}

func (m *memStore) IncrementVariantStock(_ context.Context, id int64, quantity int32) error {
	v := m.findVariant(id)
	if v == nil {
		return repository.ErrNotFound
	}
	v.Stock += quantity
	return nil
}

// ---- clients ----

func (m *memStore) LockClient(_ context.Context, id int64) error {
	if !m.clients[id] {
		return repository.ErrNotFound
	}
	return nil
}

// ---- geography and tariffs ----

func (m *memStore) GetWilaya(_ context.Context, id int64) (*domain.Wilaya, error) {
	w, ok := m.wilayas[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (m *memStore) GetCommune(_ context.Context, id int64) (*domain.Commune, error) {
	c, ok := m.communes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) ListActiveWilayas(context.Context) ([]domain.Wilaya, error) {
	var out []domain.Wilaya
	for _, w := range m.wilayas {
		if w.IsActive {
			out = append(out, *w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *memStore) GetActiveTariff(_ context.Context, wilayaID int64, dt domain.DeliveryType) (*domain.DeliveryTariff, error) {
	for _, t := range m.tariffs {
		if t.WilayaID == wilayaID && t.DeliveryType == dt && t.IsActive {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) ListTariffs(_ context.Context, wilayaID int64) ([]domain.DeliveryTariff, error) {
	var out []domain.DeliveryTariff
	for _, t := range m.tariffs {
		if t.WilayaID == wilayaID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeliveryType < out[j].DeliveryType })
	return out, nil
}

func (m *memStore) UpsertTariff(_ context.Context, arg repository.UpsertTariffParams) (*domain.DeliveryTariff, error) {
	for _, t := range m.tariffs {
		if t.WilayaID == arg.WilayaID && t.DeliveryType == arg.DeliveryType {
			t.Price = arg.Price
			t.IsActive = true
			cp := *t
			return &cp, nil
		}
	}
	t := &domain.DeliveryTariff{
		ID:           m.id(),
		WilayaID:     arg.WilayaID,
		DeliveryType: arg.DeliveryType,
		Price:        arg.Price,
		IsActive:     true,
	}
	m.tariffs[t.ID] = t
	cp := *t
	return &cp, nil
}

func (m *memStore) SetTariffActive(_ context.Context, wilayaID int64, dt domain.DeliveryType, active bool) (int64, error) {
	for _, t := range m.tariffs {
		if t.WilayaID == wilayaID && t.DeliveryType == dt {
			t.IsActive = active
			return 1, nil
		}
	}
	return 0, nil
}

func (m *memStore) SetAllTariffsActive(_ context.Context, wilayaID int64, active bool) error {
	for _, t := range m.tariffs {
		if t.WilayaID == wilayaID {
			t.IsActive = active
		}
	}
	return nil
}

func (m *memStore) CountActiveTariffs(_ context.Context, wilayaID int64) (int64, error) {
	var count int64
	for _, t := range m.tariffs {
		if t.WilayaID == wilayaID && t.IsActive {
			count++
		}
	}
	return count, nil
}

func (m *memStore) SetWilayaActive(_ context.Context, wilayaID int64, active bool) error {
	w, ok := m.wilayas[wilayaID]
	if !ok {
		return repository.ErrNotFound
	}
	w.IsActive = active
	return nil
}

// ---- carts ----

func (m *memStore) GetCartByClient(_ context.Context, clientID int64) (*domain.Cart, error) {
	for _, c := range m.carts {
		if c.ClientID != nil && *c.ClientID == clientID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) GetCartBySession(_ context.Context, sessionID string) (*domain.Cart, error) {
	for _, c := range m.carts {
		if c.SessionID != nil && *c.SessionID == sessionID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) CreateCart(_ context.Context, clientID *int64, sessionID *string) (*domain.Cart, error) {
	c := &domain.Cart{
		ID:        m.id(),
		ClientID:  clientID,
		SessionID: sessionID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	m.carts[c.ID] = c
	cp := *c
	return &cp, nil
}

func (m *memStore) GetCartItems(_ context.Context, cartID int64) ([]domain.CartItem, error) {
	var out []domain.CartItem
	for _, item := range m.cartItems {
		if item.CartID == cartID {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func sameVariant(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (m *memStore) GetCartItem(_ context.Context, arg repository.GetCartItemParams) (*domain.CartItem, error) {
	for _, item := range m.cartItems {
		if item.CartID == arg.CartID && item.ProductID == arg.ProductID && sameVariant(item.VariantID, arg.VariantID) {
			cp := *item
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) AddCartItem(_ context.Context, arg repository.AddCartItemParams) (*domain.CartItem, error) {
	item := &domain.CartItem{
		ID:            m.id(),
		CartID:        arg.CartID,
		ProductID:     arg.ProductID,
		VariantID:     arg.VariantID,
		Quantity:      arg.Quantity,
		PriceSnapshot: arg.PriceSnapshot,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	m.cartItems[item.ID] = item
	cp := *item
	return &cp, nil
}

func (m *memStore) UpdateCartItem(_ context.Context, arg repository.UpdateCartItemParams) error {
	item, ok := m.cartItems[arg.ID]
	if !ok {
		return repository.ErrNotFound
	}
	item.Quantity = arg.Quantity
	item.PriceSnapshot = arg.PriceSnapshot
	item.UpdatedAt = time.Now()
	return nil
}

func (m *memStore) DeleteCartItem(_ context.Context, id int64) error {
	delete(m.cartItems, id)
	return nil
}

func (m *memStore) ClearCart(_ context.Context, cartID int64) error {
	for id, item := range m.cartItems {
		if item.CartID == cartID {
			delete(m.cartItems, id)
		}
	}
	return nil
}

func (m *memStore) DeleteCart(_ context.Context, cartID int64) error {
	delete(m.carts, cartID)
	return nil
}

// ---- promo codes ----

func (m *memStore) GetActivePromoByCode(_ context.Context, code string) (*domain.PromoCode, error) {
	for _, p := range m.promos {
		if p.Code == code && p.IsActive {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) CreatePromo(_ context.Context, arg repository.CreatePromoParams) (*domain.PromoCode, error) {
	p := &domain.PromoCode{
		ID:            m.id(),
		Code:          arg.Code,
		Type:          arg.Type,
		UsageType:     arg.UsageType,
		DiscountValue: arg.DiscountValue,
		ClientID:      arg.ClientID,
		ExpiresAt:     arg.ExpiresAt,
		IsActive:      true,
		CreatedAt:     time.Now(),
	}
	m.promos[p.ID] = p
	cp := *p
	return &cp, nil
}

func (m *memStore) SetPromoActive(_ context.Context, id int64, active bool) error {
	p, ok := m.promos[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.IsActive = active
	return nil
}

func (m *memStore) ListPromos(context.Context) ([]domain.PromoCode, error) {
	var out []domain.PromoCode
	for _, p := range m.promos {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// ---- loyalty ----

func (m *memStore) InsertLoyaltyEntry(_ context.Context, arg repository.InsertLoyaltyEntryParams) (*domain.LoyaltyEntry, error) {
	e := domain.LoyaltyEntry{
		ID:          m.id(),
		ClientID:    arg.ClientID,
		Points:      arg.Points,
		Description: arg.Description,
		CreatedAt:   time.Now(),
	}
	m.loyalty = append(m.loyalty, e)
	return &e, nil
}

func (m *memStore) SumLoyaltyPoints(_ context.Context, clientID int64) (int64, error) {
	var sum int64
	for _, e := range m.loyalty {
		if e.ClientID == clientID {
			sum += e.Points
		}
	}
	return sum, nil
}

func (m *memStore) ListLoyaltyEntries(_ context.Context, clientID int64) ([]domain.LoyaltyEntry, error) {
	var out []domain.LoyaltyEntry
	for _, e := range m.loyalty {
		if e.ClientID == clientID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// ---- orders ----

func (m *memStore) InsertOrder(_ context.Context, arg repository.InsertOrderParams) (*domain.Order, error) {
	o := &domain.Order{
		ID:                m.id(),
		ClientID:          arg.ClientID,
		FirstName:         arg.FirstName,
		LastName:          arg.LastName,
		Phone:             arg.Phone,
		Address:           arg.Address,
		WilayaName:        arg.WilayaName,
		CommuneName:       arg.CommuneName,
		DeliveryType:      arg.DeliveryType,
		DeliveryPrice:     arg.DeliveryPrice,
		ProductsTotal:     arg.ProductsTotal,
		DiscountTotal:     arg.DiscountTotal,
		TotalPrice:        arg.TotalPrice,
		PromoCode:         arg.PromoCode,
		LoyaltyPointsUsed: arg.LoyaltyPointsUsed,
		Status:            arg.Status,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	m.orders[o.ID] = o
	cp := *o
	return &cp, nil
}

func (m *memStore) InsertOrderItem(_ context.Context, arg repository.InsertOrderItemParams) (*domain.OrderItem, error) {
	item := &domain.OrderItem{
		ID:        m.id(),
		OrderID:   arg.OrderID,
		ProductID: arg.ProductID,
		VariantID: arg.VariantID,
		Quantity:  arg.Quantity,
		UnitPrice: arg.UnitPrice,
		Snapshot:  arg.Snapshot,
		CreatedAt: time.Now(),
	}
	m.orderItems[item.ID] = item
	cp := *item
	return &cp, nil
}

func (m *memStore) GetOrder(_ context.Context, id int64) (*domain.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memStore) GetOrderForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	return m.GetOrder(ctx, id)
}

func (m *memStore) GetOrderItems(_ context.Context, orderID int64) ([]domain.OrderItem, error) {
	var out []domain.OrderItem
	for _, item := range m.orderItems {
		if item.OrderID == orderID {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) UpdateOrderStatus(_ context.Context, id int64, status domain.OrderStatus) error {
	o, ok := m.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	return nil
}

func (m *memStore) ListOrdersByStatus(_ context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range m.orders {
		if o.Status == status {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}
