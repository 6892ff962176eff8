package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"payment-collect-visa/internal/debliqc"
	"payment-collect-visa/internal/domain"

	"github.com/google/uuid"
)

const (
	collectKeyPrefix = "collects:"
	collectSetKey    = "collect_ids"
	defaultStatusTTL = 24 * time.Hour
)

var (
	ErrUnknownPayMode  = errors.New("unknown pay mode")
	ErrCollectNotFound = errors.New("collect not found")
)

// KeyValueStore keeps collect statuses between requests.
type KeyValueStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	SAdd(ctx context.Context, key string, members ...any) error
	SRem(ctx context.Context, key string, members ...any) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

type Notifier interface {
	NotifyCollectProgress(ctx context.Context, userID int64, collectID string, progress float64, stage string) error
	NotifyCollectComplete(ctx context.Context, userID int64, collectID string, collectType string, files []domain.Attachment) error
	NotifyCollectFailed(ctx context.Context, userID int64, collectID string, errMsg string) error
}

type CollectStatus struct {
	Key      string              `json:"key"`
	Type     string              `json:"type"`
	PayMode  string              `json:"paymode"`
	UserID   int64               `json:"user_id"`
	Params   map[string]any      `json:"params"`
	Progress float64             `json:"progress"`
	Stage    string              `json:"stage,omitempty"`
	Files    []domain.Attachment `json:"files"`
	Summary  *StatusSummary      `json:"summary,omitempty"`
	Error    *string             `json:"error"`
	Created  time.Time           `json:"created_at"`
}

type StatusSummary struct {
	Count       int    `json:"count"`
	Accepted    int    `json:"accepted"`
	Rejected    int    `json:"rejected"`
	TotalAmount string `json:"total_amount"`
}

type CollectService struct {
	paymodes map[string]PayMode
	kv       KeyValueStore
	ws       Notifier
	ttl      time.Duration
	now      func() time.Time

	wg sync.WaitGroup
}

// NewCollectService registers paymodes under both their type and their
// lowercased name, so "payment.paymode.visa" and "visa" resolve alike.
func NewCollectService(kv KeyValueStore, ws Notifier, ttl time.Duration, paymodes ...PayMode) *CollectService {
	if ttl <= 0 {
		ttl = defaultStatusTTL
	}
	s := &CollectService{
		paymodes: make(map[string]PayMode, len(paymodes)*2),
		kv:       kv,
		ws:       ws,
		ttl:      ttl,
		now:      time.Now,
	}
	for _, pm := range paymodes {
		s.paymodes[pm.Type()] = pm
		s.paymodes[lower(pm.Name())] = pm
	}
	return s
}

func (s *CollectService) payMode(name string) (PayMode, error) {
	pm, ok := s.paymodes[lower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPayMode, name)
	}
	return pm, nil
}

func (s *CollectService) StartSend(ctx context.Context, payMode string, start SendStart) (string, error) {
	pm, err := s.payMode(payMode)
	if err != nil {
		return "", err
	}
	if err := pm.CheckSend(ctx, start); err != nil {
		return "", err
	}

	start.CollectID = collectKeyPrefix + uuid.NewString()
	status := &CollectStatus{
		Key:     start.CollectID,
		Type:    domain.CollectTypeSend,
		PayMode: pm.Type(),
		UserID:  start.UserID,
		Params: map[string]any{
			"period_ids":      start.PeriodIDs,
			"expiration_date": start.ExpirationDate.Format("2006-01-02"),
			"csv_format":      start.CSV,
		},
		Created: s.now(),
	}
	s.saveStatus(ctx, status)

	s.wg.Add(1)
	go s.run(context.Background(), status, "generating", func(ctx context.Context) ([]domain.Collect, error) {
		return pm.GenerateCollect(ctx, start)
	})

	return status.Key, nil
}

func (s *CollectService) StartReturn(ctx context.Context, payMode string, start ReturnStart) (string, error) {
	pm, err := s.payMode(payMode)
	if err != nil {
		return "", err
	}
	if len(start.ReturnFile) == 0 {
		return "", fmt.Errorf("%w: return file is empty", debliqc.ErrEmptyInput)
	}

	start.CollectID = collectKeyPrefix + uuid.NewString()
	status := &CollectStatus{
		Key:     start.CollectID,
		Type:    domain.CollectTypeReturn,
		PayMode: pm.Type(),
		UserID:  start.UserID,
		Params: map[string]any{
			"period_ids": start.PeriodIDs,
			"size":       len(start.ReturnFile),
		},
		Created: s.now(),
	}
	s.saveStatus(ctx, status)

	s.wg.Add(1)
	go s.run(context.Background(), status, "applying", func(ctx context.Context) ([]domain.Collect, error) {
		return pm.ReturnCollect(ctx, start)
	})

	return status.Key, nil
}

// Wait blocks until every started collect has finished.
func (s *CollectService) Wait() {
	s.wg.Wait()
}

func (s *CollectService) run(ctx context.Context, status *CollectStatus, stage string, fn func(context.Context) ([]domain.Collect, error)) {
	defer s.wg.Done()

	activeCollects.Inc()
	started := s.now()
	defer func() {
		activeCollects.Dec()
		collectDuration.WithLabelValues(status.Type).Observe(s.now().Sub(started).Seconds())
	}()

	s.progress(ctx, status, 10, stage)

	collects, err := fn(ctx)
	if err != nil {
		collectsTotal.WithLabelValues(status.PayMode, status.Type, "failed").Inc()
		errStr := err.Error()
		log.Printf("[COLLECT] %s failed: %v", status.Key, err)
		status.Error = &errStr
		status.Progress = 100
		s.saveStatus(ctx, status)
		if s.ws != nil {
			_ = s.ws.NotifyCollectFailed(ctx, status.UserID, status.Key, errStr)
		}
		return
	}

	summary := &StatusSummary{}
	total := "0"
	for i, c := range collects {
		status.Files = append(status.Files, c.Attachments...)
		summary.Count += c.Count
		summary.Accepted += c.Accepted
		summary.Rejected += c.Rejected
		if i == 0 {
			total = c.TotalAmount.String()
		}
	}
	summary.TotalAmount = total
	status.Summary = summary

	collectsTotal.WithLabelValues(status.PayMode, status.Type, "ready").Inc()
	s.progress(ctx, status, 100, "ready")
	if s.ws != nil {
		_ = s.ws.NotifyCollectComplete(ctx, status.UserID, status.Key, status.Type, status.Files)
	}
}

func (s *CollectService) progress(ctx context.Context, status *CollectStatus, progress float64, stage string) {
	status.Progress = progress
	status.Stage = stage
	s.saveStatus(ctx, status)
	if s.ws != nil {
		_ = s.ws.NotifyCollectProgress(ctx, status.UserID, status.Key, progress, stage)
	}
}

func (s *CollectService) saveStatus(ctx context.Context, st *CollectStatus) {
	if s.kv == nil {
		return
	}
	data, err := json.Marshal(st)
	if err != nil {
		log.Printf("[COLLECT] marshal status %s: %v", st.Key, err)
		return
	}
	if err := s.kv.Set(ctx, st.Key, string(data), s.ttl); err != nil {
		log.Printf("[COLLECT] save status %s: %v", st.Key, err)
		return
	}
	if err := s.kv.SAdd(ctx, collectSetKey, st.Key); err != nil {
		log.Printf("[COLLECT] index status %s: %v", st.Key, err)
	}
}
