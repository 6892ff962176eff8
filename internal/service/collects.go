package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"payment-collect-visa/internal/clients"
)

func (s *CollectService) loadStatus(ctx context.Context, key string) (*CollectStatus, error) {
	data, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var status CollectStatus
	if err := json.Unmarshal([]byte(data), &status); err != nil {
		return nil, fmt.Errorf("failed to parse collect status: %w", err)
	}
	return &status, nil
}

func (s *CollectService) GetCollects(ctx context.Context, userID int64) ([]map[string]any, error) {
	if s.kv == nil {
		return nil, errors.New("status store not configured")
	}

	keys, err := s.kv.SMembers(ctx, collectSetKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get collect keys: %w", err)
	}

	var statuses []CollectStatus
	for _, key := range keys {
		status, err := s.loadStatus(ctx, key)
		if errors.Is(err, clients.ErrKeyNotFound) {
			// the status expired, drop it from the index
			if err := s.kv.SRem(ctx, collectSetKey, key); err != nil {
				log.Printf("[COLLECT] unindex status %s: %v", key, err)
			}
			continue
		}
		if err != nil {
			continue
		}
		if status.UserID == userID {
			statuses = append(statuses, *status)
		}
	}

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Created.After(statuses[j].Created)
	})

	collects := make([]map[string]any, 0, len(statuses))
	for _, status := range statuses {
		collects = append(collects, s.view(status))
	}
	return collects, nil
}

func (s *CollectService) GetCollect(ctx context.Context, collectID string, userID int64) (map[string]any, error) {
	if s.kv == nil {
		return nil, errors.New("status store not configured")
	}

	status, err := s.loadStatus(ctx, collectID)
	if err != nil {
		return nil, ErrCollectNotFound
	}
	if status.UserID != userID {
		return nil, ErrCollectNotFound
	}
	return s.view(*status), nil
}

func (s *CollectService) view(status CollectStatus) map[string]any {
	return map[string]any{
		"key":        status.Key,
		"type":       status.Type,
		"paymode":    status.PayMode,
		"user_id":    status.UserID,
		"progress":   status.Progress,
		"stage":      status.Stage,
		"files":      status.Files,
		"summary":    status.Summary,
		"error":      status.Error,
		"params":     status.Params,
		"created_at": humanizeEsAgo(status.Created, s.now()),
	}
}

func humanizeEsAgo(t, now time.Time) string {
	if t.After(now) {
		return "recién"
	}

	diff := now.Sub(t)
	minutes := int(diff.Minutes())
	if minutes < 1 {
		return "recién"
	}
	if minutes < 60 {
		return fmt.Sprintf("hace %d %s", minutes, esPlural(minutes, "minuto", "minutos"))
	}
	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("hace %d %s", hours, esPlural(hours, "hora", "horas"))
	}
	days := hours / 24
	if days < 30 {
		return fmt.Sprintf("hace %d %s", days, esPlural(days, "día", "días"))
	}
	return t.Format("02/01/2006 15:04")
}

func esPlural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
