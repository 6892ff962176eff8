package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"payment-collect-visa/internal/clients"
	"payment-collect-visa/internal/currency"
	"payment-collect-visa/internal/domain"
	"payment-collect-visa/internal/repository"

	"github.com/shopspring/decimal"
)

var testNow = time.Date(2024, time.March, 5, 14, 7, 0, 0, time.UTC)

func testInvoice(id int64, partyCode, card, amount string) domain.Invoice {
	return domain.Invoice{
		ID:          id,
		Number:      "INV-" + partyCode,
		AmountToPay: decimal.RequireFromString(amount),
		Currency:    currency.FromCode("ARS"),
		PartyCode:   partyCode,
		PartyName:   "Party " + partyCode,
		CardNumber:  card,
		PayModeType: VisaPayModeType,
	}
}

func returnLine(party string, code byte) string {
	var b strings.Builder
	b.WriteByte('1')
	b.WriteString(strings.Repeat(" ", 97))
	b.WriteString(strings.Repeat("0", 11-len(party)) + party)
	b.WriteString(strings.Repeat(" ", 20))
	b.WriteByte(code)
	b.WriteString(strings.Repeat(" ", 10))
	return b.String()
}

type fakeInvoices struct {
	pending []domain.Invoice
	byParty map[string]domain.Invoice
	err     error

	lastFilter repository.InvoiceFilter
}

func (f *fakeInvoices) ListPending(_ context.Context, flt repository.InvoiceFilter) ([]domain.Invoice, error) {
	f.lastFilter = flt
	return f.pending, f.err
}

func (f *fakeInvoices) FindByPartyCode(_ context.Context, flt repository.InvoiceFilter, code string) (*domain.Invoice, error) {
	f.lastFilter = flt
	if f.err != nil {
		return nil, f.err
	}
	inv, ok := f.byParty[code]
	if !ok {
		return nil, nil
	}
	return &inv, nil
}

type fakeConfigs struct {
	cfg domain.Configuration
	err error
}

func (f fakeConfigs) Get(context.Context, int64) (domain.Configuration, error) {
	return f.cfg, f.err
}

type fakeTransactions struct {
	collects []domain.Collect
	saved    []domain.Transaction
	err      error
}

func (f *fakeTransactions) CreateBatch(_ context.Context, c domain.Collect, txs []domain.Transaction) error {
	if f.err != nil {
		return f.err
	}
	f.collects = append(f.collects, c)
	f.saved = append(f.saved, txs...)
	return nil
}

type fakeCollects struct {
	saved []domain.Collect
}

func (f *fakeCollects) Create(_ context.Context, c domain.Collect) error {
	f.saved = append(f.saved, c)
	return nil
}

type fakeFiles struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
}

func (f *fakeFiles) Save(_ context.Context, name string, data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.files == nil {
		f.files = map[string][]byte{}
	}
	key := "k_" + name
	f.files[key] = data
	return key, nil
}

func (f *fakeFiles) URL(_ context.Context, key string) (string, error) {
	return "/files/" + key, nil
}

func (f *fakeFiles) get(name string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.files["k_"+name]
}

type fakeKV struct {
	mu   sync.Mutex
	data map[string]string
	sets map[string][]string
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}, sets: map[string][]string{}}
}

func (f *fakeKV) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := value.(string)
	if !ok {
		return errors.New("fake kv stores strings only")
	}
	f.data[key] = s
	return nil
}

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return "", clients.ErrKeyNotFound
	}
	return v, nil
}

func (f *fakeKV) SAdd(_ context.Context, key string, members ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range members {
		s := m.(string)
		found := false
		for _, existing := range f.sets[key] {
			if existing == s {
				found = true
				break
			}
		}
		if !found {
			f.sets[key] = append(f.sets[key], s)
		}
	}
	return nil
}

func (f *fakeKV) SRem(_ context.Context, key string, members ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range members {
		kept := f.sets[key][:0]
		for _, existing := range f.sets[key] {
			if existing != m.(string) {
				kept = append(kept, existing)
			}
		}
		f.sets[key] = kept
	}
	return nil
}

func (f *fakeKV) SMembers(_ context.Context, key string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sets[key]...), nil
}

type notification struct {
	kind     string
	userID   int64
	id       string
	progress float64
	files    []domain.Attachment
	message  string
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []notification
}

func (f *fakeNotifier) add(n notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, n)
}

func (f *fakeNotifier) NotifyCollectProgress(_ context.Context, userID int64, id string, progress float64, _ string) error {
	f.add(notification{kind: "progress", userID: userID, id: id, progress: progress})
	return nil
}

func (f *fakeNotifier) NotifyCollectComplete(_ context.Context, userID int64, id string, _ string, files []domain.Attachment) error {
	f.add(notification{kind: "complete", userID: userID, id: id, files: files})
	return nil
}

func (f *fakeNotifier) NotifyCollectFailed(_ context.Context, userID int64, id string, msg string) error {
	f.add(notification{kind: "failed", userID: userID, id: id, message: msg})
	return nil
}

func (f *fakeNotifier) last() notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) == 0 {
		return notification{}
	}
	return f.events[len(f.events)-1]
}

type visaFixture struct {
	invoices     *fakeInvoices
	transactions *fakeTransactions
	collects     *fakeCollects
	files        *fakeFiles
	pm           *VisaPayMode
}

func newVisaFixture(cfg domain.Configuration, invoices ...domain.Invoice) *visaFixture {
	fx := &visaFixture{
		invoices:     &fakeInvoices{pending: invoices, byParty: map[string]domain.Invoice{}},
		transactions: &fakeTransactions{},
		collects:     &fakeCollects{},
		files:        &fakeFiles{},
	}
	for _, inv := range invoices {
		fx.invoices.byParty[inv.PartyCode] = inv
	}
	fx.pm = NewVisaPayMode(fx.invoices, fakeConfigs{cfg: cfg}, fx.transactions, fx.collects, fx.files,
		currency.NewRounder(), VisaOptions{CompanyID: 1})
	fx.pm.now = func() time.Time { return testNow }
	return fx
}

func visaConfig() domain.Configuration {
	method := int64(7)
	return domain.Configuration{
		CompanyID:       1,
		CompanyName:     "ACME SA",
		CompanyCode:     "12345",
		PaymentMethodID: &method,
	}
}
