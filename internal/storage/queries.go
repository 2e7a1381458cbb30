package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Rows as stored. Amounts and dates are TEXT and decoded by the repository.
type (
	EntryRow struct {
		ID            int64
		UserID        int64
		Date          string
		Description   string
		Amount        string
		PaymentMethod string
		Category      string
	}

	InvoiceRow struct {
		ID          int64
		UserID      int64
		Number      string
		ClientName  string
		ClientEmail string
		IssueDate   string
		DueDate     string
		Subtotal    string
		TaxAmount   string
		Total       string
		Status      string
		RemindedAt  string
	}

	TransferRow struct {
		ID          int64
		UserID      int64
		Date        string
		FromAccount string
		ToAccount   string
		Amount      string
		Note        string
	}

	SettingsRow struct {
		UserID       int64
		BusinessName string
		Currency     string
		OpeningCash  string
		TaxRate      string
		TaxEnabled   bool
	}

	BankDetailsRow struct {
		UserID        int64
		BankName      string
		AccountName   string
		AccountNumber string
		Branch        string
	}
)

const createIncome = `INSERT INTO incomes (user_id, date, description, amount, payment_method, category)
VALUES (?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateIncome(ctx context.Context, arg EntryRow) (int64, error) {
	return q.insert(ctx, createIncome, arg.UserID, arg.Date, arg.Description, arg.Amount, arg.PaymentMethod, arg.Category)
}

const createExpense = `INSERT INTO expenses (user_id, date, description, amount, payment_method, category)
VALUES (?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateExpense(ctx context.Context, arg EntryRow) (int64, error) {
	return q.insert(ctx, createExpense, arg.UserID, arg.Date, arg.Description, arg.Amount, arg.PaymentMethod, arg.Category)
}

const listIncomes = `SELECT id, user_id, date, description, amount, payment_method, category
FROM incomes WHERE user_id = ? ORDER BY date DESC, id DESC`

func (q *Queries) ListIncomes(ctx context.Context, userID int64) ([]EntryRow, error) {
	return q.listEntries(ctx, listIncomes, userID)
}

const listExpenses = `SELECT id, user_id, date, description, amount, payment_method, category
FROM expenses WHERE user_id = ? ORDER BY date DESC, id DESC`

func (q *Queries) ListExpenses(ctx context.Context, userID int64) ([]EntryRow, error) {
	return q.listEntries(ctx, listExpenses, userID)
}

func (q *Queries) listEntries(ctx context.Context, query string, userID int64) ([]EntryRow, error) {
	rows, err := q.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []EntryRow
	for rows.Next() {
		var i EntryRow
		if err := rows.Scan(&i.ID, &i.UserID, &i.Date, &i.Description, &i.Amount, &i.PaymentMethod, &i.Category); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	return items, rows.Err()
}

const createInvoice = `INSERT INTO invoices
(user_id, number, client_name, client_email, issue_date, due_date, subtotal, tax_amount, total, status)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateInvoice(ctx context.Context, arg InvoiceRow) (int64, error) {
	return q.insert(ctx, createInvoice, arg.UserID, arg.Number, arg.ClientName, arg.ClientEmail,
		arg.IssueDate, arg.DueDate, arg.Subtotal, arg.TaxAmount, arg.Total, arg.Status)
}

const invoiceColumns = `id, user_id, number, client_name, client_email, issue_date, due_date,
subtotal, tax_amount, total, status, reminded_at`

const listInvoices = `SELECT ` + invoiceColumns + `
FROM invoices WHERE user_id = ? ORDER BY issue_date DESC, id DESC`

func (q *Queries) ListInvoices(ctx context.Context, userID int64) ([]InvoiceRow, error) {
	return q.listInvoices(ctx, listInvoices, userID)
}

const listOpenInvoicesWithEmail = `SELECT ` + invoiceColumns + `
FROM invoices WHERE lower(status) <> 'paid' AND client_email <> '' ORDER BY due_date, id`

func (q *Queries) ListOpenInvoicesWithEmail(ctx context.Context) ([]InvoiceRow, error) {
	return q.listInvoices(ctx, listOpenInvoicesWithEmail)
}

func (q *Queries) listInvoices(ctx context.Context, query string, args ...interface{}) ([]InvoiceRow, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []InvoiceRow
	for rows.Next() {
		var i InvoiceRow
		if err := rows.Scan(&i.ID, &i.UserID, &i.Number, &i.ClientName, &i.ClientEmail, &i.IssueDate,
			&i.DueDate, &i.Subtotal, &i.TaxAmount, &i.Total, &i.Status, &i.RemindedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	return items, rows.Err()
}

const markInvoicePaid = `UPDATE invoices SET status = 'paid' WHERE user_id = ? AND id = ?`

func (q *Queries) MarkInvoicePaid(ctx context.Context, userID, id int64) (int64, error) {
	return q.exec(ctx, markInvoicePaid, userID, id)
}

const markInvoiceReminded = `UPDATE invoices SET reminded_at = ? WHERE user_id = ? AND id = ?`

func (q *Queries) MarkInvoiceReminded(ctx context.Context, at string, userID, id int64) (int64, error) {
	return q.exec(ctx, markInvoiceReminded, at, userID, id)
}

const createTransfer = `INSERT INTO transfers (user_id, date, from_account, to_account, amount, note)
VALUES (?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateTransfer(ctx context.Context, arg TransferRow) (int64, error) {
	return q.insert(ctx, createTransfer, arg.UserID, arg.Date, arg.FromAccount, arg.ToAccount, arg.Amount, arg.Note)
}

const listTransfers = `SELECT id, user_id, date, from_account, to_account, amount, note
FROM transfers WHERE user_id = ? ORDER BY date DESC, id DESC`

func (q *Queries) ListTransfers(ctx context.Context, userID int64) ([]TransferRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransfers, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransferRow
	for rows.Next() {
		var i TransferRow
		if err := rows.Scan(&i.ID, &i.UserID, &i.Date, &i.FromAccount, &i.ToAccount, &i.Amount, &i.Note); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	return items, rows.Err()
}

const getSettings = `SELECT user_id, business_name, currency, opening_cash, tax_rate, tax_enabled
FROM settings WHERE user_id = ?`

func (q *Queries) GetSettings(ctx context.Context, userID int64) (SettingsRow, error) {
	var i SettingsRow
	err := q.db.QueryRowContext(ctx, getSettings, userID).Scan(
		&i.UserID, &i.BusinessName, &i.Currency, &i.OpeningCash, &i.TaxRate, &i.TaxEnabled)
	return i, err
}

const upsertSettings = `INSERT INTO settings (user_id, business_name, currency, opening_cash, tax_rate, tax_enabled)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
    business_name = excluded.business_name,
    currency      = excluded.currency,
    opening_cash  = excluded.opening_cash,
    tax_rate      = excluded.tax_rate,
    tax_enabled   = excluded.tax_enabled,
    updated_at    = datetime('now')`

func (q *Queries) UpsertSettings(ctx context.Context, arg SettingsRow) error {
	_, err := q.db.ExecContext(ctx, upsertSettings, arg.UserID, arg.BusinessName, arg.Currency,
		arg.OpeningCash, arg.TaxRate, arg.TaxEnabled)
	return err
}

const getBankDetails = `SELECT user_id, bank_name, account_name, account_number, branch
FROM bank_details WHERE user_id = ?`

func (q *Queries) GetBankDetails(ctx context.Context, userID int64) (BankDetailsRow, error) {
	var i BankDetailsRow
	err := q.db.QueryRowContext(ctx, getBankDetails, userID).Scan(
		&i.UserID, &i.BankName, &i.AccountName, &i.AccountNumber, &i.Branch)
	return i, err
}

const upsertBankDetails = `INSERT INTO bank_details (user_id, bank_name, account_name, account_number, branch)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
    bank_name      = excluded.bank_name,
    account_name   = excluded.account_name,
    account_number = excluded.account_number,
    branch         = excluded.branch,
    updated_at     = datetime('now')`

func (q *Queries) UpsertBankDetails(ctx context.Context, arg BankDetailsRow) error {
	_, err := q.db.ExecContext(ctx, upsertBankDetails, arg.UserID, arg.BankName, arg.AccountName,
		arg.AccountNumber, arg.Branch)
	return err
}

// Deletes are scoped by owner; the returned count is zero for foreign or missing rows.
const (
	deleteIncome   = `DELETE FROM incomes WHERE user_id = ? AND id = ?`
	deleteExpense  = `DELETE FROM expenses WHERE user_id = ? AND id = ?`
	deleteInvoice  = `DELETE FROM invoices WHERE user_id = ? AND id = ?`
	deleteTransfer = `DELETE FROM transfers WHERE user_id = ? AND id = ?`
)

func (q *Queries) DeleteIncome(ctx context.Context, userID, id int64) (int64, error) {
	return q.exec(ctx, deleteIncome, userID, id)
}

func (q *Queries) DeleteExpense(ctx context.Context, userID, id int64) (int64, error) {
	return q.exec(ctx, deleteExpense, userID, id)
}

func (q *Queries) DeleteInvoice(ctx context.Context, userID, id int64) (int64, error) {
	return q.exec(ctx, deleteInvoice, userID, id)
}

func (q *Queries) DeleteTransfer(ctx context.Context, userID, id int64) (int64, error) {
	return q.exec(ctx, deleteTransfer, userID, id)
}

func (q *Queries) insert(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *Queries) exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
