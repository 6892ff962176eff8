package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"payment-collect-visa/internal/debliqc"
	"payment-collect-visa/internal/domain"
	"payment-collect-visa/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PayMode is a collection channel able to emit a collect file and to apply the bank's answer.
type PayMode interface {
	Type() string
	Name() string
	CheckSend(ctx context.Context, start SendStart) error
	GenerateCollect(ctx context.Context, start SendStart) ([]domain.Collect, error)
	ReturnCollect(ctx context.Context, start ReturnStart) ([]domain.Collect, error)
}

type SendStart struct {
	CollectID      string
	UserID         int64
	PeriodIDs      []int64
	ExpirationDate time.Time
	CSV            bool
}

type ReturnStart struct {
	CollectID  string
	UserID     int64
	PeriodIDs  []int64
	ReturnFile []byte
}

type InvoiceRepository interface {
	ListPending(ctx context.Context, f repository.InvoiceFilter) ([]domain.Invoice, error)
	FindByPartyCode(ctx context.Context, f repository.InvoiceFilter, code string) (*domain.Invoice, error)
}

type ConfigurationRepository interface {
	Get(ctx context.Context, companyID int64) (domain.Configuration, error)
}

// TransactionRepository stores a return collect together with its ledger rows, atomically.
type TransactionRepository interface {
	CreateBatch(ctx context.Context, c domain.Collect, txs []domain.Transaction) error
}

type CollectRepository interface {
	Create(ctx context.Context, c domain.Collect) error
}

// FileStore keeps collect attachments. Save returns the storage key.
type FileStore interface {
	Save(ctx context.Context, fileName string, data []byte) (string, error)
	URL(ctx context.Context, key string) (string, error)
}

const (
	VisaPayModeType = "payment.paymode.visa"
	visaName        = "VISA"
	receiptFileName = "REMITO.txt"
	sheetFileName   = "DEBLIQC.xlsx"
)

type VisaOptions struct {
	CompanyID     int64
	Layout        debliqc.Layout
	ReturnCharset string
}

type VisaPayMode struct {
	invoices     InvoiceRepository
	configs      ConfigurationRepository
	transactions TransactionRepository
	collects     CollectRepository
	files        FileStore
	rounder      debliqc.Rounder
	opts         VisaOptions
	now          func() time.Time
}

func NewVisaPayMode(
	invoices InvoiceRepository,
	configs ConfigurationRepository,
	transactions TransactionRepository,
	collects CollectRepository,
	files FileStore,
	rounder debliqc.Rounder,
	opts VisaOptions,
) *VisaPayMode {
	if opts.Layout == (debliqc.Layout{}) {
		opts.Layout = debliqc.DefaultLayout
	}
	return &VisaPayMode{
		invoices:     invoices,
		configs:      configs,
		transactions: transactions,
		collects:     collects,
		files:        files,
		rounder:      rounder,
		opts:         opts,
		now:          time.Now,
	}
}

func (m *VisaPayMode) Type() string { return VisaPayModeType }

func (m *VisaPayMode) Name() string { return visaName }

func (m *VisaPayMode) filter(periods []int64) repository.InvoiceFilter {
	return repository.InvoiceFilter{
		CompanyID:   m.opts.CompanyID,
		PeriodIDs:   periods,
		PayModeType: m.Type(),
	}
}

func (m *VisaPayMode) configuration(ctx context.Context) (domain.Configuration, error) {
	cfg, err := m.configs.Get(ctx, m.opts.CompanyID)
	if err != nil {
		return domain.Configuration{}, fmt.Errorf("load collect configuration: %w", err)
	}
	return cfg, nil
}

// CheckSend fails when the VISA company code is not configured.
func (m *VisaPayMode) CheckSend(ctx context.Context, _ SendStart) error {
	cfg, err := m.configuration(ctx)
	if err != nil {
		return err
	}
	if strings.TrimSpace(cfg.CompanyCode) == "" {
		return fmt.Errorf("%w: missing VISA company code for company %d", debliqc.ErrConfiguration, m.opts.CompanyID)
	}
	return nil
}

func (m *VisaPayMode) GenerateCollect(ctx context.Context, start SendStart) ([]domain.Collect, error) {
	log.Printf("[COLLECT] generate_collect: visa periods=%v", start.PeriodIDs)

	cfg, err := m.configuration(ctx)
	if err != nil {
		return nil, err
	}

	invoices, err := m.invoices.ListPending(ctx, m.filter(start.PeriodIDs))
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}

	runAt := m.now()
	res, err := debliqc.Generate(invoices, debliqc.RunConfig{
		CompanyCode:    cfg.CompanyCode,
		ExpirationDate: start.ExpirationDate,
		RunAt:          runAt,
		CSV:            start.CSV,
		Layout:         m.opts.Layout,
	}, m.rounder)
	if err != nil {
		return nil, err
	}

	var digits int32
	if len(invoices) > 0 {
		digits = invoices[0].Currency.Digits
	}

	sheet, err := BuildDetailSheet(invoices, res.Batch, m.rounder)
	if err != nil {
		return nil, fmt.Errorf("build detail sheet: %w", err)
	}

	collect := domain.Collect{
		ID:          collectID(start.CollectID),
		Type:        domain.CollectTypeSend,
		PayMode:     m.Type(),
		Origin:      m.Name(),
		PeriodIDs:   start.PeriodIDs,
		FileName:    debliqc.FileName,
		Count:       res.Summary.Count,
		TotalAmount: res.Summary.TotalAmount,
		CreatedBy:   start.UserID,
		CreatedAt:   runAt,
	}

	attachments := []struct {
		name string
		data []byte
	}{
		{debliqc.FileName, res.Data},
		{receiptFileName, BuildReceipt(cfg.CompanyName, start.ExpirationDate, res.Summary, digits)},
		{sheetFileName, sheet},
	}
	for _, a := range attachments {
		att, err := m.attach(ctx, a.name, a.data)
		if err != nil {
			return nil, err
		}
		collect.Attachments = append(collect.Attachments, att)
	}
	collect.FileURL = collect.Attachments[0].URL

	if err := m.collects.Create(ctx, collect); err != nil {
		return nil, fmt.Errorf("save collect: %w", err)
	}

	debitsTotal.WithLabelValues(m.Type()).Add(float64(collect.Count))
	log.Printf("[COLLECT] visa collect %s: %d debits, total %s", collect.ID, collect.Count, collect.TotalAmount.String())
	return []domain.Collect{collect}, nil
}

func (m *VisaPayMode) ReturnCollect(ctx context.Context, start ReturnStart) ([]domain.Collect, error) {
	log.Printf("[COLLECT] return_collect: visa periods=%v", start.PeriodIDs)

	if len(start.ReturnFile) == 0 {
		return nil, fmt.Errorf("%w: return file is empty", debliqc.ErrEmptyInput)
	}

	payload, err := DecodePayload(start.ReturnFile, m.opts.ReturnCharset)
	if err != nil {
		return nil, err
	}

	cfg, err := m.configuration(ctx)
	if err != nil {
		return nil, err
	}

	now := m.now()
	payDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	resolver := partyResolver{repo: m.invoices, filter: m.filter(start.PeriodIDs)}
	outcomes, err := debliqc.ApplyReturn(ctx, payload, resolver, debliqc.ReturnConfig{
		SettlementDate:  payDate,
		PaymentMethodID: cfg.PaymentMethodID,
	})
	if err != nil {
		return nil, err
	}

	collect := domain.Collect{
		ID:        collectID(start.CollectID),
		Type:      domain.CollectTypeReturn,
		PayMode:   m.Type(),
		Origin:    m.Name(),
		PeriodIDs: start.PeriodIDs,
		FileName:  "visa-return-" + payDate.Format("2006-01-02") + ".txt",
		Count:     len(outcomes),
		CreatedBy: start.UserID,
		CreatedAt: now,
	}

	txs := make([]domain.Transaction, 0, len(outcomes))
	accepted := decimal.Zero
	for _, o := range outcomes {
		if o.Accepted {
			collect.Accepted++
			accepted = accepted.Add(o.Amount)
		} else {
			collect.Rejected++
		}
		txs = append(txs, domain.Transaction{
			CollectID:       collect.ID,
			InvoiceID:       o.InvoiceID,
			State:           o.Code,
			Description:     o.Message,
			Amount:          o.Amount,
			PayDate:         o.SettlementDate,
			PaymentMethodID: o.PaymentMethodID,
		})
	}
	collect.TotalAmount = accepted

	sheet, err := BuildOutcomeSheet(outcomes)
	if err != nil {
		return nil, fmt.Errorf("build outcome sheet: %w", err)
	}

	// attachments go first: the ledger write below is the commit point of the run
	for _, a := range []struct {
		name string
		data []byte
	}{
		{collect.FileName, start.ReturnFile},
		{strings.TrimSuffix(collect.FileName, ".txt") + ".xlsx", sheet},
	} {
		att, err := m.attach(ctx, a.name, a.data)
		if err != nil {
			return nil, err
		}
		collect.Attachments = append(collect.Attachments, att)
	}
	collect.FileURL = collect.Attachments[0].URL

	if err := m.transactions.CreateBatch(ctx, collect, txs); err != nil {
		return nil, fmt.Errorf("save collect transactions: %w", err)
	}

	for _, o := range outcomes {
		outcomesTotal.WithLabelValues(m.Type(), o.Code).Inc()
	}

	log.Printf("[COLLECT] visa return %s: %d accepted, %d rejected", collect.ID, collect.Accepted, collect.Rejected)
	return []domain.Collect{collect}, nil
}

func (m *VisaPayMode) attach(ctx context.Context, name string, data []byte) (domain.Attachment, error) {
	key, err := m.files.Save(ctx, name, data)
	if err != nil {
		return domain.Attachment{}, fmt.Errorf("save %s: %w", name, err)
	}
	url, err := m.files.URL(ctx, key)
	if err != nil {
		return domain.Attachment{}, fmt.Errorf("url of %s: %w", name, err)
	}
	return domain.Attachment{Name: name, Key: key, URL: url}, nil
}

type partyResolver struct {
	repo   InvoiceRepository
	filter repository.InvoiceFilter
}

func (r partyResolver) ResolveParty(ctx context.Context, partyKey string) (*domain.Invoice, error) {
	return r.repo.FindByPartyCode(ctx, r.filter, partyKey)
}

func collectID(id string) string {
	if id != "" {
		return id
	}
	return collectKeyPrefix + uuid.NewString()
}
