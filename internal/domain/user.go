package domain

// User holds a trading account: cash, margin line, debt and holdings.
// All monetary values are strictly int64 micros.
type User struct {
	Username      string
	Password      string
	BalanceMicros int64 // Cash available for spot buys.
	MarginMicros  int64 // Margin line, credited at 2x deposits.
	DebtMicros    int64 // Accrued from margin buys and short sales.

	Portfolio map[string]int64 // symbol -> shares held
	History   []string         // Human-readable transaction log.
}

// AddToPortfolio credits shares of a symbol.
func (u *User) AddToPortfolio(symbol string, qty int64) {
	if u.Portfolio == nil {
		u.Portfolio = make(map[string]int64)
	}
	u.Portfolio[symbol] += qty
}

// RemoveFromPortfolio debits shares, dropping the entry at zero.
func (u *User) RemoveFromPortfolio(symbol string, qty int64) {
	current := u.Portfolio[symbol]
	if current > qty {
		u.Portfolio[symbol] = current - qty
		return
	}
	delete(u.Portfolio, symbol)
}
