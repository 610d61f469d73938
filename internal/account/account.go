package account

import (
	"errors"
	"fmt"
	"sync"

	"stock_go/internal/domain"
	"stock_go/internal/ledger"
	"stock_go/pkg/quant"
	"stock_go/pkg/safe"
)

var (
	ErrUserExists         = errors.New("username already taken")
	ErrUnknownUser        = errors.New("unknown user")
	ErrBadCredentials     = errors.New("invalid credentials")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInsufficientFunds  = errors.New("insufficient balance")
	ErrInsufficientMargin = errors.New("insufficient margin")
	ErrInsufficientShares = errors.New("insufficient shares")
)

// Manager owns every user account. Market buys and sells settle
// immediately at the ledger's current price; resting limit orders are the
// book's concern and never settle here.
type Manager struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	ledger *ledger.Ledger

	initialBalance int64 // micros credited at registration
}

// NewManager creates an account manager backed by the given ledger.
func NewManager(l *ledger.Ledger, initialBalanceMicros int64) *Manager {
	return &Manager{
		users:          make(map[string]*domain.User),
		ledger:         l,
		initialBalance: initialBalanceMicros,
	}
}

// Register creates a user with the starting cash balance and a margin
// line of twice that.
func (m *Manager) Register(username, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[username]; exists {
		return ErrUserExists
	}
	m.users[username] = &domain.User{
		Username:      username,
		Password:      password,
		BalanceMicros: m.initialBalance,
		MarginMicros:  safe.SafeMul(m.initialBalance, 2),
		Portfolio:     make(map[string]int64),
	}
	return nil
}

// Login checks credentials and returns the username as a session key.
func (m *Manager) Login(username, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[username]
	if !ok || u.Password != password {
		return ErrBadCredentials
	}
	return nil
}

// Deposit adds cash and credits the margin line at 2x.
func (m *Manager) Deposit(username string, amountMicros int64) error {
	if amountMicros <= 0 {
		return ErrInvalidAmount
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[username]
	if !ok {
		return ErrUnknownUser
	}
	u.BalanceMicros = safe.SafeAdd(u.BalanceMicros, amountMicros)
	u.MarginMicros = safe.SafeAdd(u.MarginMicros, safe.SafeMul(amountMicros, 2))
	u.History = append(u.History, fmt.Sprintf("Deposit: $%s", quant.PriceMicros(amountMicros)))
	return nil
}

// Buy settles a market buy at the current ledger price.
func (m *Manager) Buy(username, symbol string, qty int64) error {
	if qty <= 0 {
		return ErrInvalidAmount
	}
	price, err := m.ledger.Price(symbol)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[username]
	if !ok {
		return ErrUnknownUser
	}

	total := safe.SafeMul(int64(price), qty)
	if u.BalanceMicros < total {
		return ErrInsufficientFunds
	}

	u.BalanceMicros -= total
	u.AddToPortfolio(symbol, qty)
	u.History = append(u.History, fmt.Sprintf("Buy: %d of %s at $%s", qty, symbol, price))
	return nil
}

// Sell settles a market sell at the current ledger price.
func (m *Manager) Sell(username, symbol string, qty int64) error {
	if qty <= 0 {
		return ErrInvalidAmount
	}
	price, err := m.ledger.Price(symbol)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[username]
	if !ok {
		return ErrUnknownUser
	}
	if u.Portfolio[symbol] < qty {
		return ErrInsufficientShares
	}

	u.BalanceMicros = safe.SafeAdd(u.BalanceMicros, safe.SafeMul(int64(price), qty))
	u.RemoveFromPortfolio(symbol, qty)
	u.History = append(u.History, fmt.Sprintf("Sell: %d of %s at $%s", qty, symbol, price))
	return nil
}

// MarginBuy buys against the margin line, accruing debt for the full
// notional.
func (m *Manager) MarginBuy(username, symbol string, qty int64) error {
	if qty <= 0 {
		return ErrInvalidAmount
	}
	price, err := m.ledger.Price(symbol)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[username]
	if !ok {
		return ErrUnknownUser
	}

	total := safe.SafeMul(int64(price), qty)
	if u.MarginMicros < total {
		return ErrInsufficientMargin
	}

	u.MarginMicros -= total
	u.DebtMicros = safe.SafeAdd(u.DebtMicros, total)
	u.AddToPortfolio(symbol, qty)
	u.History = append(u.History, fmt.Sprintf("Margin buy: %d of %s at $%s", qty, symbol, price))
	return nil
}

// ShortSell credits the sale proceeds immediately and accrues the same
// amount as debt. Shares are never held, so the short position exists
// only as debt.
func (m *Manager) ShortSell(username, symbol string, qty int64) error {
	if qty <= 0 {
		return ErrInvalidAmount
	}
	price, err := m.ledger.Price(symbol)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[username]
	if !ok {
		return ErrUnknownUser
	}

	total := safe.SafeMul(int64(price), qty)
	u.BalanceMicros = safe.SafeAdd(u.BalanceMicros, total)
	u.DebtMicros = safe.SafeAdd(u.DebtMicros, total)
	u.History = append(u.History, fmt.Sprintf("Short sold: %d of %s at $%s", qty, symbol, price))
	return nil
}

// Get returns a copy of the user's account for display.
func (m *Manager) Get(username string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[username]
	if !ok {
		return domain.User{}, ErrUnknownUser
	}

	out := *u
	out.Portfolio = make(map[string]int64, len(u.Portfolio))
	for k, v := range u.Portfolio {
		out.Portfolio[k] = v
	}
	out.History = append([]string(nil), u.History...)
	return out, nil
}

// PortfolioValue values the user's holdings at current ledger prices.
// Unknown symbols in the portfolio are skipped; the ledger never deletes
// instruments, so that state is unreachable in practice.
func (m *Manager) PortfolioValue(username string) (int64, error) {
	u, err := m.Get(username)
	if err != nil {
		return 0, err
	}

	var total int64
	for symbol, qty := range u.Portfolio {
		price, err := m.ledger.Price(symbol)
		if err != nil {
			continue
		}
		total = safe.SafeAdd(total, safe.SafeMul(int64(price), qty))
	}
	return total, nil
}
