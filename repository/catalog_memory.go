package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/andescargo/freight-quotes/models"
	"github.com/andescargo/freight-quotes/utils"
	"github.com/google/uuid"
)

type memTxKey struct{}

// MemoryCatalog is an in-memory backend implementing the catalog repositories
// and TxRunner. It backs unit tests and embedded deployments that have no
// Postgres; the exclusivity invariant is upheld by holding the catalog write
// lock across each WithTx unit, so readers never observe a half-closed
// version.
type MemoryCatalog struct {
	mu sync.RWMutex

	locations []*models.Location
	versions  []*models.RateVersion
	tiers     []*models.WeightTier
	quotes    []*models.Quote
	audits    []*models.AuditLog

	nextLocationID uint
	nextVersionID  uint
	nextTierID     uint
	nextQuoteID    uint
	nextItemID     uint
	nextAuditID    uint
}

// NewMemoryCatalog creates an empty in-memory catalog
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		nextLocationID: 1,
		nextVersionID:  1,
		nextTierID:     1,
		nextQuoteID:    1,
		nextItemID:     1,
		nextAuditID:    1,
	}
}

// WithTx runs fn while holding the catalog write lock. On error every change
// made inside fn is rolled back to the snapshot taken at entry.
func (c *MemoryCatalog) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if inMemTx(ctx) {
		return fn(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := c.snapshotLocked()
	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		c.restoreLocked(snapshot)
		return err
	}
	return nil
}

func inMemTx(ctx context.Context) bool {
	v, ok := ctx.Value(memTxKey{}).(bool)
	return ok && v
}

type memSnapshot struct {
	locations []*models.Location
	versions  []*models.RateVersion
	tiers     []*models.WeightTier
	quotes    []*models.Quote
	audits    []*models.AuditLog

	nextLocationID, nextVersionID, nextTierID, nextQuoteID, nextItemID, nextAuditID uint
}

func (c *MemoryCatalog) snapshotLocked() memSnapshot {
	s := memSnapshot{
		locations:      make([]*models.Location, len(c.locations)),
		versions:       make([]*models.RateVersion, len(c.versions)),
		tiers:          make([]*models.WeightTier, len(c.tiers)),
		quotes:         make([]*models.Quote, len(c.quotes)),
		audits:         make([]*models.AuditLog, len(c.audits)),
		nextLocationID: c.nextLocationID,
		nextVersionID:  c.nextVersionID,
		nextTierID:     c.nextTierID,
		nextQuoteID:    c.nextQuoteID,
		nextItemID:     c.nextItemID,
		nextAuditID:    c.nextAuditID,
	}
	for i, v := range c.locations {
		clone := *v
		s.locations[i] = &clone
	}
	for i, v := range c.versions {
		clone := *v
		s.versions[i] = &clone
	}
	for i, v := range c.tiers {
		clone := *v
		s.tiers[i] = &clone
	}
	for i, v := range c.quotes {
		clone := *v
		s.quotes[i] = &clone
	}
	for i, v := range c.audits {
		clone := *v
		s.audits[i] = &clone
	}
	return s
}

func (c *MemoryCatalog) restoreLocked(s memSnapshot) {
	c.locations = s.locations
	c.versions = s.versions
	c.tiers = s.tiers
	c.quotes = s.quotes
	c.audits = s.audits
	c.nextLocationID = s.nextLocationID
	c.nextVersionID = s.nextVersionID
	c.nextTierID = s.nextTierID
	c.nextQuoteID = s.nextQuoteID
	c.nextItemID = s.nextItemID
	c.nextAuditID = s.nextAuditID
}

// lockRead acquires the read lock unless the caller already holds the write
// lock through WithTx
func (c *MemoryCatalog) lockRead(ctx context.Context) func() {
	if inMemTx(ctx) {
		return func() {}
	}
	c.mu.RLock()
	return c.mu.RUnlock
}

func (c *MemoryCatalog) lockWrite(ctx context.Context) func() {
	if inMemTx(ctx) {
		return func() {}
	}
	c.mu.Lock()
	return c.mu.Unlock
}

// RateVersions returns the catalog's RateVersionRepository view
func (c *MemoryCatalog) RateVersions() RateVersionRepository { return (*memRateVersions)(c) }

// WeightTiers returns the catalog's WeightTierRepository view
func (c *MemoryCatalog) WeightTiers() WeightTierRepository { return (*memWeightTiers)(c) }

// Quotes returns the catalog's QuoteRepository view
func (c *MemoryCatalog) Quotes() QuoteRepository { return (*memQuotes)(c) }

// AuditLogs returns the catalog's AuditLogRepository view
func (c *MemoryCatalog) AuditLogs() AuditLogRepository { return (*memAuditLogs)(c) }

// Locations returns the catalog's LocationRepository view
func (c *MemoryCatalog) Locations() LocationRepository { return (*memLocations)(c) }

type memRateVersions MemoryCatalog

func (m *memRateVersions) catalog() *MemoryCatalog { return (*MemoryCatalog)(m) }

func (m *memRateVersions) ByID(ctx context.Context, id uint) (*models.RateVersion, error) {
	c := m.catalog()
	defer c.lockRead(ctx)()
	for i := len(c.versions) - 1; i >= 0; i-- {
		if c.versions[i].ID == id {
			clone := *c.versions[i]
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *memRateVersions) ByUUID(ctx context.Context, id uuid.UUID) (*models.RateVersion, error) {
	c := m.catalog()
	defer c.lockRead(ctx)()
	for i := len(c.versions) - 1; i >= 0; i-- {
		if c.versions[i].UUID == id {
			clone := *c.versions[i]
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *memRateVersions) Save(ctx context.Context, version *models.RateVersion) error {
	c := m.catalog()
	defer c.lockWrite(ctx)()
	version.ID = c.nextVersionID
	c.nextVersionID++
	if version.UUID == uuid.Nil {
		version.UUID = uuid.New()
	}
	if version.CreatedAt.IsZero() {
		version.CreatedAt = utils.UTCNow()
	}
	version.UpdatedAt = version.CreatedAt
	clone := *version
	c.versions = append(c.versions, &clone)
	return nil
}

func (m *memRateVersions) EffectiveAsOf(ctx context.Context, key models.PricingKey, asOf time.Time) (*models.RateVersion, error) {
	c := m.catalog()
	defer c.lockRead(ctx)()
	asOf = utils.DateOnly(asOf)

	var best *models.RateVersion
	for _, v := range c.versions {
		if v.PricingKey != key.String() || !v.IsActive || !v.CoversDate(asOf) {
			continue
		}
		if best == nil ||
			v.EffectiveFrom.After(best.EffectiveFrom) ||
			(v.EffectiveFrom.Equal(best.EffectiveFrom) && v.ID > best.ID) {
			best = v
		}
	}
	if best == nil {
		return nil, nil
	}
	clone := *best
	return &clone, nil
}

func (m *memRateVersions) OpenForUpdate(ctx context.Context, key models.PricingKey) (*models.RateVersion, error) {
	if !inMemTx(ctx) {
		return nil, fmt.Errorf("OpenForUpdate requires a transaction")
	}
	c := m.catalog()
	var open *models.RateVersion
	for _, v := range c.versions {
		if v.PricingKey == key.String() && v.IsOpen() {
			if open == nil || v.ID > open.ID {
				open = v
			}
		}
	}
	if open == nil {
		return nil, nil
	}
	clone := *open
	return &clone, nil
}

func (m *memRateVersions) Close(ctx context.Context, id uint, effectiveTo time.Time) error {
	c := m.catalog()
	defer c.lockWrite(ctx)()
	for _, v := range c.versions {
		if v.ID == id {
			end := utils.DateOnly(effectiveTo)
			v.EffectiveTo = &end
			v.IsActive = false
			v.UpdatedAt = utils.UTCNow()
			return nil
		}
	}
	return fmt.Errorf("rate version %d not found", id)
}

func (m *memRateVersions) CountOpen(ctx context.Context, key models.PricingKey) (int64, error) {
	c := m.catalog()
	defer c.lockRead(ctx)()
	var count int64
	for _, v := range c.versions {
		if v.PricingKey == key.String() && v.IsOpen() {
			count++
		}
	}
	return count, nil
}

func (m *memRateVersions) History(ctx context.Context, key models.PricingKey, limit, offset int) ([]*models.RateVersion, error) {
	c := m.catalog()
	defer c.lockRead(ctx)()
	var out []*models.RateVersion
	for i := len(c.versions) - 1; i >= 0; i-- {
		if c.versions[i].PricingKey == key.String() {
			clone := *c.versions[i]
			out = append(out, &clone)
		}
	}
	return paginate(out, limit, offset), nil
}

type memWeightTiers MemoryCatalog

func (m *memWeightTiers) catalog() *MemoryCatalog { return (*MemoryCatalog)(m) }

func (m *memWeightTiers) ByID(ctx context.Context, id uint) (*models.WeightTier, error) {
	c := m.catalog()
	defer c.lockRead(ctx)()
	for i := len(c.tiers) - 1; i >= 0; i-- {
		if c.tiers[i].ID == id {
			clone := *c.tiers[i]
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *memWeightTiers) Save(ctx context.Context, tier *models.WeightTier) error {
	c := m.catalog()
	defer c.lockWrite(ctx)()
	tier.ID = c.nextTierID
	c.nextTierID++
	if tier.CreatedAt.IsZero() {
		tier.CreatedAt = utils.UTCNow()
	}
	tier.UpdatedAt = tier.CreatedAt
	clone := *tier
	clone.RateVersion = models.RateVersion{}
	c.tiers = append(c.tiers, &clone)
	return nil
}

func (m *memWeightTiers) ActiveByRateVersion(ctx context.Context, rateVersionID uint) ([]*models.WeightTier, error) {
	c := m.catalog()
	defer c.lockRead(ctx)()
	var out []*models.WeightTier
	for _, t := range c.tiers {
		if t.RateVersionID == rateVersionID && t.IsActive {
			clone := *t
			out = append(out, &clone)
		}
	}
	// Resolution order: min weight ascending, id ascending
	for i := 1; i < len(out); i++ {
		for j := i; j > 0; j-- {
			a, b := out[j-1], out[j]
			if b.MinWeightKg.LessThan(a.MinWeightKg) ||
				(b.MinWeightKg.Equal(a.MinWeightKg) && b.ID < a.ID) {
				out[j-1], out[j] = b, a
			} else {
				break
			}
		}
	}
	return out, nil
}

func (m *memWeightTiers) Deactivate(ctx context.Context, id uint) error {
	c := m.catalog()
	defer c.lockWrite(ctx)()
	for _, t := range c.tiers {
		if t.ID == id {
			t.IsActive = false
			t.UpdatedAt = utils.UTCNow()
			return nil
		}
	}
	return fmt.Errorf("weight tier %d not found", id)
}

type memQuotes MemoryCatalog

func (m *memQuotes) catalog() *MemoryCatalog { return (*MemoryCatalog)(m) }

func (m *memQuotes) ByID(ctx context.Context, id uint) (*models.Quote, error) {
	c := m.catalog()
	defer c.lockRead(ctx)()
	for i := len(c.quotes) - 1; i >= 0; i-- {
		if c.quotes[i].ID == id {
			clone := *c.quotes[i]
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *memQuotes) ByUUID(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	c := m.catalog()
	defer c.lockRead(ctx)()
	for i := len(c.quotes) - 1; i >= 0; i-- {
		if c.quotes[i].UUID == id {
			clone := *c.quotes[i]
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *memQuotes) Save(ctx context.Context, quote *models.Quote) error {
	c := m.catalog()
	defer c.lockWrite(ctx)()
	quote.ID = c.nextQuoteID
	c.nextQuoteID++
	if quote.UUID == uuid.Nil {
		quote.UUID = uuid.New()
	}
	if quote.CreatedAt.IsZero() {
		quote.CreatedAt = utils.UTCNow()
	}
	for i := range quote.Items {
		quote.Items[i].ID = c.nextItemID
		c.nextItemID++
		quote.Items[i].QuoteID = quote.ID
	}
	clone := *quote
	clone.Items = append([]models.QuoteItem(nil), quote.Items...)
	c.quotes = append(c.quotes, &clone)
	return nil
}

func (m *memQuotes) ListByCreator(ctx context.Context, createdBy string, limit, offset int) ([]*models.Quote, error) {
	c := m.catalog()
	defer c.lockRead(ctx)()
	var out []*models.Quote
	for i := len(c.quotes) - 1; i >= 0; i-- {
		if c.quotes[i].CreatedBy == createdBy {
			clone := *c.quotes[i]
			out = append(out, &clone)
		}
	}
	return paginate(out, limit, offset), nil
}

func (m *memQuotes) ListRecent(ctx context.Context, limit, offset int) ([]*models.Quote, error) {
	c := m.catalog()
	defer c.lockRead(ctx)()
	var out []*models.Quote
	for i := len(c.quotes) - 1; i >= 0; i-- {
		clone := *c.quotes[i]
		out = append(out, &clone)
	}
	return paginate(out, limit, offset), nil
}

type memAuditLogs MemoryCatalog

func (m *memAuditLogs) catalog() *MemoryCatalog { return (*MemoryCatalog)(m) }

func (m *memAuditLogs) Save(ctx context.Context, entry *models.AuditLog) error {
	c := m.catalog()
	defer c.lockWrite(ctx)()
	entry.ID = c.nextAuditID
	c.nextAuditID++
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = utils.UTCNow()
	}
	clone := *entry
	c.audits = append(c.audits, &clone)
	return nil
}

func (m *memAuditLogs) ListByAction(ctx context.Context, action string, limit, offset int) ([]*models.AuditLog, error) {
	c := m.catalog()
	defer c.lockRead(ctx)()
	var out []*models.AuditLog
	for i := len(c.audits) - 1; i >= 0; i-- {
		if c.audits[i].Action == action {
			clone := *c.audits[i]
			out = append(out, &clone)
		}
	}
	return paginate(out, limit, offset), nil
}

func (m *memAuditLogs) ListByActor(ctx context.Context, actor string, limit, offset int) ([]*models.AuditLog, error) {
	c := m.catalog()
	defer c.lockRead(ctx)()
	var out []*models.AuditLog
	for i := len(c.audits) - 1; i >= 0; i-- {
		if c.audits[i].Actor == actor {
			clone := *c.audits[i]
			out = append(out, &clone)
		}
	}
	return paginate(out, limit, offset), nil
}

type memLocations MemoryCatalog

func (m *memLocations) catalog() *MemoryCatalog { return (*MemoryCatalog)(m) }

func (m *memLocations) ByID(ctx context.Context, id uint) (*models.Location, error) {
	c := m.catalog()
	defer c.lockRead(ctx)()
	for i := len(c.locations) - 1; i >= 0; i-- {
		if c.locations[i].ID == id {
			clone := *c.locations[i]
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *memLocations) ByCode(ctx context.Context, code string) (*models.Location, error) {
	c := m.catalog()
	defer c.lockRead(ctx)()
	code = strings.ToUpper(strings.TrimSpace(code))
	for i := len(c.locations) - 1; i >= 0; i-- {
		if c.locations[i].Code == code {
			clone := *c.locations[i]
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *memLocations) ListActive(ctx context.Context, locationType string) ([]*models.Location, error) {
	c := m.catalog()
	defer c.lockRead(ctx)()
	var out []*models.Location
	for _, l := range c.locations {
		if l.IsActive && (locationType == "" || l.LocationType == locationType) {
			clone := *l
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *memLocations) Save(ctx context.Context, location *models.Location) error {
	c := m.catalog()
	defer c.lockWrite(ctx)()
	code := strings.ToUpper(strings.TrimSpace(location.Code))
	for _, l := range c.locations {
		if l.Code == code {
			return fmt.Errorf("location code %s already exists", code)
		}
	}
	location.ID = c.nextLocationID
	c.nextLocationID++
	location.Code = code
	if location.CreatedAt.IsZero() {
		location.CreatedAt = utils.UTCNow()
	}
	clone := *location
	c.locations = append(c.locations, &clone)
	return nil
}

func paginate[T any](items []*T, limit, offset int) []*T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
