// Package services implements the OFAC sanctions screening use cases:
// periodic ingestion of the SDN feed and exact-match address lookups.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	common "github.com/stablepay/gateway/pkg/domain"
	"github.com/stablepay/gateway/pkg/domain/ofac/entities"
	"github.com/stablepay/gateway/pkg/domain/ofac/extract"
	out "github.com/stablepay/gateway/pkg/domain/ofac/ports/out"
)

const (
	sdnFeedURL    = "https://www.treasury.gov/ofac/downloads/sdn_advanced/sdn_advanced.xml"
	fetchTimeout  = 120 * time.Second
	publishBatch  = 100
	userAgent     = "stablepay-gateway/1.0 (+compliance-screening)"
)

// Service implements the OFAC screening use cases against a Storage port.
// isUpdating is process-local: it guards against overlapping ingestion runs
// within one process, not across instances.
type Service struct {
	storage    out.Storage
	httpClient *http.Client
	feedURL    string
	isUpdating atomic.Bool
	logger     *slog.Logger
}

func NewService(storage out.Storage) *Service {
	return &Service{
		storage:    storage,
		httpClient: &http.Client{Timeout: fetchTimeout},
		feedURL:    sdnFeedURL,
		logger:     slog.Default().With("component", "ofac_service"),
	}
}

// StartupRefreshIfEmpty fetches the feed only if the address set is
// currently empty, per the process-start acquisition rule.
func (s *Service) StartupRefreshIfEmpty(ctx context.Context) error {
	count, err := s.storage.CountSanctioned(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return s.Refresh(ctx)
}

// Refresh performs one full ingestion run: fetch, parse, and publish
// (full-replace). Concurrent invocation returns an error without blocking.
func (s *Service) Refresh(ctx context.Context) error {
	if !s.isUpdating.CompareAndSwap(false, true) {
		return common.NewErrConflict("INTERNAL_ERROR", "OFAC refresh already in progress")
	}
	defer s.isUpdating.Store(false)

	oldCount, err := s.storage.CountSanctioned(ctx)
	if err != nil {
		oldCount = 0
	}

	found, usedFallback, fetchErr := s.fetchAndExtract(ctx)
	if fetchErr != nil {
		logEntry := entities.NewUpdateLog(oldCount, oldCount, false, fetchErr.Error())
		_ = s.storage.AppendUpdateLog(ctx, logEntry)
		return fmt.Errorf("ofac_service.Refresh: %w", fetchErr)
	}

	now := time.Now().UTC()
	rows := make([]*entities.SanctionedAddress, 0, len(found))
	for _, f := range found {
		rows = append(rows, entities.NewSanctionedAddress(f.Address, f.Ticker, f.SDNName, f.SDNID, now))
	}

	if err := s.storage.ReplaceAll(ctx, rows, publishBatch); err != nil {
		logEntry := entities.NewUpdateLog(oldCount, oldCount, false, err.Error())
		_ = s.storage.AppendUpdateLog(ctx, logEntry)
		return fmt.Errorf("ofac_service.Refresh: publish: %w", err)
	}

	logEntry := entities.NewUpdateLog(oldCount, len(rows), true, "")
	if err := s.storage.AppendUpdateLog(ctx, logEntry); err != nil {
		s.logger.Error("failed to append update log", "error", err)
	}

	s.logger.Info("ofac refresh complete", "total", len(rows), "used_fallback_parse", usedFallback)
	return nil
}

func (s *Service) fetchAndExtract(ctx context.Context) ([]extract.Found, bool, error) {
	reqCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, s.feedURL, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("fetch sdn feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("fetch sdn feed: unexpected status %d", resp.StatusCode)
	}

	return extract.Extract(resp.Body)
}

// CheckAddress implements out.OfacScreener for the payment engine, and the
// checkAddress HTTP surface, by exact match on the normalized address.
func (s *Service) CheckAddress(ctx context.Context, address string) (bool, string, error) {
	normalized := entities.NormalizeAddress(address)
	matches, err := s.storage.FindByAddressLower(ctx, normalized)
	if err != nil {
		return false, "", err
	}
	if len(matches) == 0 {
		return false, "", nil
	}
	return true, matches[0].SDNName, nil
}

// CheckAddressDetailed is the richer form used by GET /ofac/check/:address,
// returning every cross-chain match.
func (s *Service) CheckAddressDetailed(ctx context.Context, address string) (isSanctioned bool, matches []*entities.SanctionedAddress, checkedAt time.Time, err error) {
	normalized := entities.NormalizeAddress(address)
	matches, err = s.storage.FindByAddressLower(ctx, normalized)
	if err != nil {
		return false, nil, time.Time{}, err
	}
	return len(matches) > 0, matches, time.Now().UTC(), nil
}

// StatusCounts backs GET /ofac/status.
type StatusCounts struct {
	LastUpdate        time.Time
	TotalAddresses    int
	LastUpdateSuccess bool
	AddressTypeCounts map[string]int
}

func (s *Service) Status(ctx context.Context) (*StatusCounts, error) {
	total, err := s.storage.CountSanctioned(ctx)
	if err != nil {
		return nil, err
	}
	byType, err := s.storage.CountByType(ctx)
	if err != nil {
		return nil, err
	}
	latest, err := s.storage.LatestUpdateLog(ctx)
	if err != nil {
		return nil, err
	}

	status := &StatusCounts{TotalAddresses: total, AddressTypeCounts: byType}
	if latest != nil {
		status.LastUpdate = latest.RanAt
		status.LastUpdateSuccess = latest.Success
	}
	return status, nil
}
