// Package bank turns bank feeds (OFX statements, Plaid) into expense drafts.
package bank

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/kantoor/internal/common"
	"github.com/Veraticus/kantoor/internal/model"
	"github.com/Veraticus/kantoor/internal/service"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// SGML tags with a missing closing bracket at the end of a line.
	tagFixRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Prefixes Dutch banks put in front of the counterparty name.
var descriptionPrefixes = []string{
	"BETAALAUTOMAAT ",
	"SEPA OVERBOEKING ",
	"SEPA INCASSO ",
	"INCASSO ",
	"IDEAL ",
	"BEA ",
	"GEA ",
}

// ParseOFX reads an OFX/QFX statement and returns its transactions in posting order.
func ParseOFX(ctx context.Context, reader io.Reader) ([]model.BankTransaction, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse OFX file: %w", common.ErrInvalidFile, err)
	}

	logger := common.Component("ofx")
	var transactions []model.BankTransaction
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		bankStmts++
		txns, convErr := convertAll(stmt.BankTranList.Transactions, string(stmt.BankAcctFrom.AcctID))
		if convErr != nil {
			logger.Warn("Failed to process bank statement",
				"account", stmt.BankAcctFrom.AcctID,
				"error", convErr)
			continue
		}
		transactions = append(transactions, txns...)
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		ccStmts++
		txns, convErr := convertAll(stmt.BankTranList.Transactions, string(stmt.CCAcctFrom.AcctID))
		if convErr != nil {
			logger.Warn("Failed to process credit card statement",
				"account", stmt.CCAcctFrom.AcctID,
				"error", convErr)
			continue
		}
		transactions = append(transactions, txns...)
	}

	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].Date.Before(transactions[j].Date)
	})

	logger.InfoContext(ctx, "Parsed OFX file",
		"total_transactions", len(transactions),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return transactions, nil
}

func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

func convertAll(list []ofxgo.Transaction, accountID string) ([]model.BankTransaction, error) {
	out := make([]model.BankTransaction, 0, len(list))
	for _, ofxTx := range list {
		amount, err := decimal.NewFromString(ofxTx.TrnAmt.FloatString(2))
		if err != nil {
			return nil, fmt.Errorf("transaction %s: invalid amount: %w", ofxTx.FiTID, err)
		}
		out = append(out, model.BankTransaction{
			ID:           string(ofxTx.FiTID),
			Date:         ofxTx.DtPosted.Time,
			Name:         string(ofxTx.Name),
			Counterparty: counterparty(ofxTx),
			AccountID:    accountID,
			Type:         fmt.Sprintf("%v", ofxTx.TrnType),
			Amount:       amount,
		})
	}
	return out, nil
}

func counterparty(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && isGenericDescription(name) {
		name = strings.TrimSpace(string(tx.Memo))
	}

	upper := strings.ToUpper(name)
	for _, prefix := range descriptionPrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = strings.TrimSpace(name[len(prefix):])
			break
		}
	}

	return name
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "", "DEBIT", "CREDIT", "BETALING", "OVERBOEKING", "INCASSO", "PAYMENT":
		return true
	}
	return false
}

// OFXSource serves the transactions of an OFX file as a service.TransactionSource.
type OFXSource struct {
	Path string
}

// GetTransactions returns the transactions of the file posted within [startDate, endDate].
// A zero startDate or endDate leaves that side of the range open.
func (s OFXSource) GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.BankTransaction, error) {
	f, err := os.Open(s.Path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to open OFX file: %w", err)
	}
	defer func() { _ = f.Close() }()

	all, err := ParseOFX(ctx, f)
	if err != nil {
		return nil, err
	}

	out := all[:0]
	for _, tx := range all {
		if !startDate.IsZero() && tx.Date.Before(startDate) {
			continue
		}
		if !endDate.IsZero() && tx.Date.After(endDate) {
			continue
		}
		out = append(out, tx)
	}

	slog.Debug("Filtered OFX transactions", "path", s.Path, "kept", len(out), "total", len(all))
	return out, nil
}

var _ service.TransactionSource = OFXSource{}
