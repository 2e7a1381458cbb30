package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"ledgerly/internal/core"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// errBadRequest marks malformed requests, as opposed to well-formed but
// invalid entries.
var errBadRequest = errors.New("bad request")

// decodeJSON reads a single JSON object into dst. Unknown fields and
// trailing data are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return fmt.Errorf("%w: empty body", errBadRequest)
		case errors.As(err, &maxErr):
			return fmt.Errorf("%w: body larger than %d bytes", errBadRequest, maxErr.Limit)
		default:
			return fmt.Errorf("%w: %v", errBadRequest, err)
		}
	}
	if dec.More() {
		return fmt.Errorf("%w: unexpected data after JSON object", errBadRequest)
	}
	return nil
}

// pathID reads the {id} route variable.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id", errBadRequest)
	}
	return id, nil
}

// boolQuery reads an optional boolean query parameter.
func boolQuery(r *http.Request, key string) (bool, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean", errBadRequest, key)
	}
	return b, nil
}

// flexString accepts either a JSON string or a JSON number, so amounts may be
// sent as 12.5 or "12,50".
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected a number or string, got %s", data)
	}
	*f = flexString(n.String())
	return nil
}

// optionalAmount parses a non-negative amount; blank means zero.
func optionalAmount(s flexString) (decimal.Decimal, error) {
	v := strings.TrimSpace(string(s))
	if v == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(v, ",", "."))
	if err != nil || d.IsNegative() {
		return decimal.Zero, core.ErrInvalidAmount
	}
	return d.Round(core.AmountPlaces), nil
}

// optionalDate parses a date that may be left blank.
func optionalDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	d := core.ParseLedgerDate(s)
	if d.IsZero() {
		return time.Time{}, core.ErrInvalidDate
	}
	return d, nil
}

type incomeRequest struct {
	Date          string     `json:"date"`
	Description   string     `json:"description"`
	Amount        flexString `json:"amount"`
	PaymentMethod string     `json:"paymentMethod"`
	Category      string     `json:"category"`
}

func (req incomeRequest) toIncome(userID int64) (core.Income, error) {
	amount, err := core.ParseAmount(string(req.Amount))
	if err != nil {
		return core.Income{}, err
	}
	return core.Income{
		UserID:        userID,
		Date:          core.ParseLedgerDate(req.Date),
		Description:   sanitizeInput(req.Description),
		Amount:        amount,
		PaymentMethod: sanitizeInput(req.PaymentMethod),
		Category:      sanitizeInput(req.Category),
	}, nil
}

type expenseRequest struct {
	Date          string     `json:"date"`
	Description   string     `json:"description"`
	Amount        flexString `json:"amount"`
	PaymentMethod string     `json:"paymentMethod"`
	Category      string     `json:"category"`
}

func (req expenseRequest) toExpense(userID int64) (core.Expense, error) {
	amount, err := core.ParseAmount(string(req.Amount))
	if err != nil {
		return core.Expense{}, err
	}
	return core.Expense{
		UserID:        userID,
		Date:          core.ParseLedgerDate(req.Date),
		Description:   sanitizeInput(req.Description),
		Amount:        amount,
		PaymentMethod: sanitizeInput(req.PaymentMethod),
		Category:      sanitizeInput(req.Category),
	}, nil
}

type invoiceRequest struct {
	Number      string     `json:"number"`
	ClientName  string     `json:"clientName"`
	ClientEmail string     `json:"clientEmail"`
	IssueDate   string     `json:"issueDate"`
	DueDate     string     `json:"dueDate"`
	Subtotal    flexString `json:"subtotal"`
	TaxAmount   flexString `json:"taxAmount"`
	Total       flexString `json:"total"`
	Status      string     `json:"status"`
}

func (req invoiceRequest) toInvoice(userID int64) (core.Invoice, error) {
	subtotal, err := optionalAmount(req.Subtotal)
	if err != nil {
		return core.Invoice{}, err
	}
	tax, err := optionalAmount(req.TaxAmount)
	if err != nil {
		return core.Invoice{}, err
	}
	total, err := optionalAmount(req.Total)
	if err != nil {
		return core.Invoice{}, err
	}
	due, err := optionalDate(req.DueDate)
	if err != nil {
		return core.Invoice{}, err
	}
	return core.Invoice{
		UserID:      userID,
		Number:      sanitizeInput(req.Number),
		ClientName:  sanitizeInput(req.ClientName),
		ClientEmail: strings.TrimSpace(req.ClientEmail),
		IssueDate:   core.ParseLedgerDate(req.IssueDate),
		DueDate:     due,
		Subtotal:    subtotal,
		TaxAmount:   tax,
		Total:       total,
		Status:      sanitizeInput(req.Status),
	}, nil
}

type transferRequest struct {
	Date   string     `json:"date"`
	From   string     `json:"from"`
	To     string     `json:"to"`
	Amount flexString `json:"amount"`
	Note   string     `json:"note"`
}

func (req transferRequest) toTransfer(userID int64) (core.Transfer, error) {
	from, err := core.ParseAccount(req.From)
	if err != nil {
		return core.Transfer{}, err
	}
	to, err := core.ParseAccount(req.To)
	if err != nil {
		return core.Transfer{}, err
	}
	amount, err := core.ParseAmount(string(req.Amount))
	if err != nil {
		return core.Transfer{}, err
	}
	return core.Transfer{
		UserID: userID,
		Date:   core.ParseLedgerDate(req.Date),
		From:   from,
		To:     to,
		Amount: amount,
		Note:   sanitizeInput(req.Note),
	}, nil
}

type settingsRequest struct {
	BusinessName string     `json:"businessName"`
	Currency     string     `json:"currency"`
	OpeningCash  flexString `json:"openingCash"`
	TaxRate      flexString `json:"taxRate"`
	TaxEnabled   bool       `json:"taxEnabled"`
}

func (req settingsRequest) toSettings(userID int64) (core.Settings, error) {
	opening, err := optionalAmount(req.OpeningCash)
	if err != nil {
		return core.Settings{}, err
	}
	rate, err := optionalAmount(req.TaxRate)
	if err != nil {
		return core.Settings{}, core.ErrInvalidTaxRate
	}
	return core.Settings{
		UserID:       userID,
		BusinessName: sanitizeInput(req.BusinessName),
		Currency:     strings.ToUpper(strings.TrimSpace(req.Currency)),
		OpeningCash:  opening,
		TaxRate:      rate,
		TaxEnabled:   req.TaxEnabled,
	}, nil
}

type bankDetailsRequest struct {
	BankName      string `json:"bankName"`
	AccountName   string `json:"accountName"`
	AccountNumber string `json:"accountNumber"`
	Branch        string `json:"branch"`
}

func (req bankDetailsRequest) toBankDetails(userID int64) core.BankDetails {
	return core.BankDetails{
		UserID:        userID,
		BankName:      sanitizeInput(req.BankName),
		AccountName:   sanitizeInput(req.AccountName),
		AccountNumber: strings.ReplaceAll(sanitizeInput(req.AccountNumber), " ", ""),
		Branch:        sanitizeInput(req.Branch),
	}
}

type advisorRequest struct {
	Question string `json:"question"`
}

// sanitizeInput drops control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
