package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"stock_go/internal/account"
	"stock_go/internal/book"
	"stock_go/internal/domain"
	"stock_go/internal/infra"
	"stock_go/internal/ledger"
	"stock_go/internal/news"
	"stock_go/internal/storage"
	"stock_go/pkg/quant"
)

// ErrConsoleClosed is returned when the input stream ends.
var ErrConsoleClosed = errors.New("console input closed")

// Console is the interactive trading terminal. It is the only layer
// that parses human decimal input; everything past it is int64 micros.
type Console struct {
	in  *bufio.Scanner
	out io.Writer

	accounts *account.Manager
	ledger   *ledger.Ledger
	book     *book.Book
	news     *news.Feed
	journal  *storage.Journal
	limiter  *infra.RateLimiter
}

func New(in io.Reader, out io.Writer, accounts *account.Manager, l *ledger.Ledger,
	b *book.Book, n *news.Feed, j *storage.Journal, limiter *infra.RateLimiter) *Console {
	return &Console{
		in:       bufio.NewScanner(in),
		out:      out,
		accounts: accounts,
		ledger:   l,
		book:     b,
		news:     n,
		journal:  j,
		limiter:  limiter,
	}
}

// Run drives the register/login loop until Exit, EOF or ctx cancel.
func (c *Console) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fmt.Fprintln(c.out, "\n1. Register\n2. Login\n3. Exit")
		choice, err := c.readLine()
		if err != nil {
			return err
		}
		switch choice {
		case "1":
			c.register()
		case "2":
			if user, ok := c.login(); ok {
				if err := c.userMenu(ctx, user); err != nil {
					return err
				}
			}
		case "3":
			return nil
		default:
			fmt.Fprintln(c.out, "Unknown choice.")
		}
	}
}

func (c *Console) register() {
	username, err := c.prompt("Username: ")
	if err != nil {
		return
	}
	password, err := c.prompt("Password: ")
	if err != nil {
		return
	}
	if err := c.accounts.Register(username, password); err != nil {
		fmt.Fprintf(c.out, "Registration failed: %v\n", err)
		return
	}
	fmt.Fprintln(c.out, "Registered successfully!")
}

func (c *Console) login() (string, bool) {
	username, err := c.prompt("Username: ")
	if err != nil {
		return "", false
	}
	password, err := c.prompt("Password: ")
	if err != nil {
		return "", false
	}
	if err := c.accounts.Login(username, password); err != nil {
		fmt.Fprintln(c.out, "Invalid credentials.")
		return "", false
	}
	fmt.Fprintln(c.out, "Login successful!")
	return username, true
}

func (c *Console) userMenu(ctx context.Context, user string) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fmt.Fprintln(c.out, "\n1. Portfolio\n2. Market\n3. Buy\n4. Sell\n5. Add Funds\n6. Margin Trade\n7. Short Sell\n8. Limit Order\n9. News\n10. Analytics\n11. History\n12. Indicators\n13. Logout")
		choice, err := c.readLine()
		if err != nil {
			return err
		}
		switch choice {
		case "1":
			c.viewPortfolio(user)
		case "2":
			c.viewMarket()
		case "3":
			c.trade(user, c.accounts.Buy, "Buy executed.")
		case "4":
			c.trade(user, c.accounts.Sell, "Sell executed.")
		case "5":
			c.addFunds(user)
		case "6":
			c.trade(user, c.accounts.MarginBuy, "Margin trade executed.")
		case "7":
			c.trade(user, c.accounts.ShortSell, "Short sell executed.")
		case "8":
			c.placeLimitOrder()
		case "9":
			c.viewNews()
		case "10":
			c.viewAnalytics()
		case "11":
			c.viewHistory(user)
		case "12":
			c.viewIndicators()
		case "13":
			return nil
		default:
			fmt.Fprintln(c.out, "Unknown choice.")
		}
	}
}

func (c *Console) viewPortfolio(user string) {
	u, err := c.accounts.Get(user)
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(c.out, "\nPortfolio:")
	for symbol, shares := range u.Portfolio {
		price, err := c.ledger.Price(symbol)
		if err != nil {
			continue
		}
		fmt.Fprintf(c.out, "%s: %d shares @ $%s\n", symbol, shares, price)
	}
	total, err := c.accounts.PortfolioValue(user)
	if err == nil {
		fmt.Fprintf(c.out, "Total: $%s\n", quant.PriceMicros(total))
	}
	fmt.Fprintf(c.out, "Balance: $%s, Debt: $%s, Margin: $%s\n",
		quant.PriceMicros(u.BalanceMicros), quant.PriceMicros(u.DebtMicros), quant.PriceMicros(u.MarginMicros))
}

func (c *Console) viewMarket() {
	for _, q := range c.ledger.Quotes() {
		fmt.Fprintf(c.out, "%s: $%s\n", q.Symbol, q.PriceMicros)
	}
}

// trade runs one symbol+quantity prompt against an account operation.
// Buy, Sell, MarginBuy and ShortSell all share this shape.
func (c *Console) trade(user string, op func(username, symbol string, qty int64) error, okMsg string) {
	symbol, err := c.prompt("Stock Symbol: ")
	if err != nil {
		return
	}
	qty, err := c.promptQty()
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	if err := op(user, symbol, qty); err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(c.out, okMsg)
}

func (c *Console) addFunds(user string) {
	amount, err := c.promptMoney("Amount: ")
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	if err := c.accounts.Deposit(user, amount); err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(c.out, "Funds added.")
}

func (c *Console) placeLimitOrder() {
	symbol, err := c.prompt("Stock Symbol: ")
	if err != nil {
		return
	}
	qty, err := c.promptQty()
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	price, err := c.promptMoney("Limit Price: ")
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	sideStr, err := c.prompt("Order Type (buy/sell): ")
	if err != nil {
		return
	}
	var side domain.Side
	switch strings.ToLower(sideStr) {
	case "buy":
		side = domain.SideBuy
	case "sell":
		side = domain.SideSell
	default:
		fmt.Fprintln(c.out, "Order type must be buy or sell.")
		return
	}

	if !c.limiter.TryAcquire() {
		fmt.Fprintln(c.out, "Too many orders, slow down.")
		return
	}
	seq, err := c.book.Submit(domain.Order{
		Symbol:       symbol,
		Side:         side,
		PriceMicros:  quant.PriceMicros(price),
		Qty:          quant.Qty(qty),
		CreatedUnixM: time.Now().UnixMicro(),
	})
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "Limit order placed. (seq %d)\n", seq)
}

func (c *Console) viewNews() {
	for _, item := range c.news.Items() {
		fmt.Fprintln(c.out, item.Headline)
	}
}

func (c *Console) viewAnalytics() {
	top, worst, ok := c.ledger.TopMovers()
	if !ok {
		fmt.Fprintln(c.out, "No market data.")
		return
	}
	fmt.Fprintf(c.out, "Top: %s ($%s)\n", top.Symbol, top.PriceMicros)
	fmt.Fprintf(c.out, "Worst: %s ($%s)\n", worst.Symbol, worst.PriceMicros)

	if c.journal == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	trades, err := c.journal.LoadTrades(ctx, 5)
	if err != nil || len(trades) == 0 {
		return
	}
	fmt.Fprintln(c.out, "Recent trades:")
	for _, t := range trades {
		fmt.Fprintf(c.out, "  %s %d @ $%s\n", t.Symbol, t.Qty, t.PriceMicros)
	}
}

func (c *Console) viewHistory(user string) {
	u, err := c.accounts.Get(user)
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	for _, line := range u.History {
		fmt.Fprintln(c.out, line)
	}
}

func (c *Console) viewIndicators() {
	symbol, err := c.prompt("Stock Symbol: ")
	if err != nil {
		return
	}
	smaPeriod, err := c.promptInt("SMA Period: ")
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	sma, ok, err := c.ledger.SMA(symbol, smaPeriod)
	switch {
	case err != nil:
		fmt.Fprintln(c.out, "Stock not found.")
		return
	case !ok:
		fmt.Fprintln(c.out, "SMA: unavailable (not enough history)")
	default:
		fmt.Fprintf(c.out, "SMA: $%s\n", sma)
	}

	emaPeriod, err := c.promptInt("EMA Period: ")
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	ema, ok, err := c.ledger.EMA(symbol, emaPeriod)
	switch {
	case err != nil:
		fmt.Fprintln(c.out, "Stock not found.")
	case !ok:
		fmt.Fprintln(c.out, "EMA: unavailable (not enough history)")
	default:
		fmt.Fprintf(c.out, "EMA: $%s\n", ema)
	}
}

func (c *Console) prompt(label string) (string, error) {
	fmt.Fprint(c.out, label)
	return c.readLine()
}

func (c *Console) promptQty() (int64, error) {
	s, err := c.prompt("Quantity: ")
	if err != nil {
		return 0, err
	}
	qty, err := strconv.ParseInt(s, 10, 64)
	if err != nil || qty <= 0 {
		return 0, fmt.Errorf("invalid quantity %q", s)
	}
	return qty, nil
}

func (c *Console) promptInt(label string) (int, error) {
	s, err := c.prompt(label)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return n, nil
}

// promptMoney parses a dollar amount into micros without ever touching
// float64. decimal carries the user's input exactly to the int64 boundary.
func (c *Console) promptMoney(label string) (int64, error) {
	s, err := c.prompt(label)
	if err != nil {
		return 0, err
	}
	d, err := decimal.NewFromString(strings.TrimPrefix(s, "$"))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	micros := d.Shift(6)
	if !micros.IsInteger() {
		return 0, fmt.Errorf("amount %q has more than 6 decimal places", s)
	}
	if !micros.BigInt().IsInt64() {
		return 0, fmt.Errorf("amount %q out of range", s)
	}
	if v := micros.IntPart(); v > 0 {
		return v, nil
	}
	return 0, fmt.Errorf("amount %q must be positive", s)
}

func (c *Console) readLine() (string, error) {
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", ErrConsoleClosed
	}
	return strings.TrimSpace(c.in.Text()), nil
}
