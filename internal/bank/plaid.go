package bank

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/plaid/plaid-go/v20/plaid"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/kantoor/internal/common"
	"github.com/Veraticus/kantoor/internal/model"
	"github.com/Veraticus/kantoor/internal/service"
)

// Plaid environments.
const (
	PlaidSandbox    = "sandbox"
	PlaidProduction = "production"
)

// PlaidConfig holds Plaid API configuration.
type PlaidConfig struct {
	ClientID    string
	Secret      string
	Environment string
	AccessToken string
}

// validateClient checks the fields needed to talk to Plaid at all.
func (c *PlaidConfig) validateClient() error {
	if c.ClientID == "" {
		return fmt.Errorf("%w: plaid client ID is required", common.ErrMissingConfig)
	}
	if c.Secret == "" {
		return fmt.Errorf("%w: plaid secret is required", common.ErrMissingConfig)
	}
	switch c.Environment {
	case "":
		return fmt.Errorf("%w: plaid environment is required", common.ErrMissingConfig)
	case PlaidSandbox, PlaidProduction:
		return nil
	default:
		return fmt.Errorf("%w: invalid Plaid environment: must be sandbox or production", common.ErrInvalidConfig)
	}
}

// Validate ensures every field needed to fetch transactions is present.
func (c *PlaidConfig) Validate() error {
	if err := c.validateClient(); err != nil {
		return err
	}
	if c.AccessToken == "" {
		return fmt.Errorf("%w: plaid access token is required", common.ErrMissingConfig)
	}
	return nil
}

// PlaidSource fetches bank transactions from Plaid.
type PlaidSource struct {
	client      *plaid.APIClient
	logger      *slog.Logger
	retryOpts   service.RetryOptions
	accessToken string
	environment string
}

// NewPlaid creates a Plaid source. The access token may be empty for the Link flow.
func NewPlaid(cfg PlaidConfig) (*PlaidSource, error) {
	if err := cfg.validateClient(); err != nil {
		return nil, err
	}

	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	configuration.AddDefaultHeader("PLAID-SECRET", cfg.Secret)

	switch cfg.Environment {
	case PlaidSandbox:
		configuration.UseEnvironment(plaid.Sandbox)
	case PlaidProduction:
		configuration.UseEnvironment(plaid.Production)
	}

	return &PlaidSource{
		client:      plaid.NewAPIClient(configuration),
		accessToken: cfg.AccessToken,
		environment: cfg.Environment,
		logger:      common.Component("plaid"),
		retryOpts: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}, nil
}

// GetTransactions fetches transactions from Plaid within the specified date range.
func (p *PlaidSource) GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.BankTransaction, error) {
	if startDate.After(endDate) {
		return nil, errors.New("start date must be before end date")
	}
	if p.accessToken == "" {
		return nil, fmt.Errorf("%w: plaid access token is required", common.ErrMissingConfig)
	}

	p.logger.Info("Fetching transactions from Plaid",
		"start_date", startDate.Format("2006-01-02"),
		"end_date", endDate.Format("2006-01-02"))

	var all []plaid.Transaction
	offset := int32(0)
	const pageSize = int32(500)

	for {
		var batch []plaid.Transaction

		retryErr := common.WithRetry(ctx, func() error {
			request := plaid.NewTransactionsGetRequest(
				p.accessToken,
				startDate.Format("2006-01-02"),
				endDate.Format("2006-01-02"),
			)
			request.SetOptions(plaid.TransactionsGetRequestOptions{
				Count:  plaid.PtrInt32(pageSize),
				Offset: plaid.PtrInt32(offset),
			})

			resp, _, err := p.client.PlaidApi.TransactionsGet(ctx).TransactionsGetRequest(*request).Execute()
			if err != nil {
				return p.wrapError("fetch transactions", err)
			}

			batch = resp.GetTransactions()
			p.logger.Debug("Fetched transaction batch",
				"count", len(batch),
				"offset", offset,
				"total", resp.GetTotalTransactions())
			return nil
		}, p.retryOpts)
		if retryErr != nil {
			return nil, retryErr
		}

		all = append(all, batch...)
		if len(batch) < int(pageSize) {
			break
		}
		offset += pageSize
	}

	p.logger.Info("Fetched all transactions", "count", len(all))

	transactions := make([]model.BankTransaction, 0, len(all))
	for _, pt := range all {
		merchant := pt.GetMerchantName()
		if merchant == "" {
			merchant = pt.GetName()
		}
		tx, err := plaidTransaction(pt.GetTransactionId(), pt.GetAccountId(), pt.GetDate(),
			pt.GetName(), merchant, string(pt.GetPaymentChannel()), pt.GetAmount())
		if err != nil {
			p.logger.Warn("Skipping transaction", "id", pt.GetTransactionId(), "error", err)
			continue
		}
		transactions = append(transactions, tx)
	}

	return transactions, nil
}

// GetAccounts fetches the account IDs linked to the access token.
func (p *PlaidSource) GetAccounts(ctx context.Context) ([]string, error) {
	var accounts []plaid.AccountBase
	retryErr := common.WithRetry(ctx, func() error {
		request := plaid.NewAccountsGetRequest(p.accessToken)
		resp, _, err := p.client.PlaidApi.AccountsGet(ctx).AccountsGetRequest(*request).Execute()
		if err != nil {
			return p.wrapError("fetch accounts", err)
		}
		accounts = resp.GetAccounts()
		return nil
	}, p.retryOpts)
	if retryErr != nil {
		return nil, retryErr
	}

	ids := make([]string, 0, len(accounts))
	for _, account := range accounts {
		ids = append(ids, account.GetAccountId())
	}
	return ids, nil
}

// CreateLinkToken creates a Link token for connecting a Dutch bank account.
func (p *PlaidSource) CreateLinkToken(ctx context.Context, userID string) (string, error) {
	request := plaid.NewLinkTokenCreateRequest(
		"Kantoor",
		"nl",
		[]plaid.CountryCode{plaid.COUNTRYCODE_NL},
		plaid.LinkTokenCreateRequestUser{ClientUserId: userID},
	)
	request.SetProducts([]plaid.Products{plaid.PRODUCTS_TRANSACTIONS})

	resp, _, err := p.client.PlaidApi.LinkTokenCreate(ctx).LinkTokenCreateRequest(*request).Execute()
	if err != nil {
		return "", p.wrapError("create link token", err)
	}
	return resp.GetLinkToken(), nil
}

// ExchangePublicToken exchanges a public token from Link for an access token and item ID.
func (p *PlaidSource) ExchangePublicToken(ctx context.Context, publicToken string) (string, string, error) {
	request := plaid.NewItemPublicTokenExchangeRequest(publicToken)
	resp, _, err := p.client.PlaidApi.ItemPublicTokenExchange(ctx).ItemPublicTokenExchangeRequest(*request).Execute()
	if err != nil {
		return "", "", p.wrapError("exchange public token", err)
	}
	return resp.GetAccessToken(), resp.GetItemId(), nil
}

func (p *PlaidSource) wrapError(op string, err error) error {
	plaidErr, convErr := plaid.ToPlaidError(err)
	if convErr != nil {
		return fmt.Errorf("%w: failed to %s: %w", common.ErrPlaidConnection, op, err)
	}
	if plaidErr.ErrorCode == "RATE_LIMIT_EXCEEDED" {
		p.logger.Warn("Rate limit hit, will retry", "error", plaidErr.ErrorMessage)
		return &common.RetryableError{
			Err:       fmt.Errorf("%w: %s", common.ErrPlaidRateLimit, plaidErr.ErrorMessage),
			Retryable: true,
		}
	}
	return &common.RetryableError{
		Err:       fmt.Errorf("%w: %s - %s", common.ErrPlaidConnection, plaidErr.ErrorCode, plaidErr.ErrorMessage),
		Retryable: false,
	}
}

// plaidTransaction maps Plaid fields onto a BankTransaction. Plaid reports money leaving
// the account as a positive amount; BankTransaction uses negative amounts for debits.
func plaidTransaction(id, accountID, date, name, merchant, channel string, amount float64) (model.BankTransaction, error) {
	posted, err := time.Parse("2006-01-02", date)
	if err != nil {
		return model.BankTransaction{}, fmt.Errorf("invalid transaction date %q: %w", date, err)
	}

	txType := "OTHER"
	switch channel {
	case "online":
		txType = "ONLINE"
	case "in store":
		txType = "POS"
	}

	return model.BankTransaction{
		ID:           id,
		Date:         posted,
		Name:         name,
		Counterparty: cleanMerchantName(merchant),
		AccountID:    accountID,
		Type:         txType,
		Amount:       decimal.NewFromFloat(amount).Neg().Round(2),
	}, nil
}

// Legal-form suffixes dropped from merchant names.
var merchantSuffixes = []string{" B.V.", " Bv", " N.V.", " Nv", " V.O.F.", " Vof", " Holding"}

// cleanMerchantName title-cases a merchant name and strips trailing transaction
// numbers and legal-form suffixes.
func cleanMerchantName(name string) string {
	words := strings.Fields(strings.ToLower(name))
	for i, word := range words {
		runes := []rune(word)
		for j := range runes {
			if j == 0 || !unicode.IsLetter(runes[j-1]) {
				runes[j] = unicode.ToUpper(runes[j])
			}
		}
		words[i] = string(runes)
	}

	if len(words) > 1 {
		last := words[len(words)-1]
		if len(last) > 5 && isAllDigits(last) {
			words = words[:len(words)-1]
		}
	}
	name = strings.Join(words, " ")

	for changed := true; changed; {
		changed = false
		for _, suffix := range merchantSuffixes {
			if strings.HasSuffix(name, suffix) {
				name = strings.TrimSuffix(name, suffix)
				changed = true
			}
		}
	}

	return strings.TrimSpace(name)
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

var _ service.TransactionSource = (*PlaidSource)(nil)
