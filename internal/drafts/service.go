package drafts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/gaspos-terminal/pkg/db"
	"github.com/angelmondragon/gaspos-terminal/pkg/db/models"
	pkgerrors "github.com/angelmondragon/gaspos-terminal/pkg/errors"
	"github.com/angelmondragon/gaspos-terminal/pkg/types"
)

// DefaultTTL is how long a parked cart stays loadable.
const DefaultTTL = 24 * time.Hour

// Service stores carts the cashier parked for later. Drafts are local only and
// never synced.
type Service interface {
	Save(ctx context.Context, input SaveInput) (*models.PosDraft, error)
	List(ctx context.Context, terminalID string) ([]models.PosDraft, error)
	Load(ctx context.Context, id uuid.UUID) (*models.PosDraft, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Clear(ctx context.Context, terminalID string) (int64, error)
	EvictExpired(ctx context.Context) (int64, error)
}

// SaveInput describes a cart to park.
type SaveInput struct {
	TerminalID string
	Label      string
	Snapshot   types.CartSnapshot
	Total      decimal.Decimal
}

type service struct {
	db   *db.Client
	repo Repository
	ttl  time.Duration
	now  func() time.Time
}

// NewService wires the draft store. A non-positive ttl falls back to DefaultTTL.
func NewService(client *db.Client, repo Repository, ttl time.Duration, now func() time.Time) (Service, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "database client required")
	}
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "drafts repository required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &service{db: client, repo: repo, ttl: ttl, now: now}, nil
}

func (s *service) Save(ctx context.Context, input SaveInput) (*models.PosDraft, error) {
	if len(input.Snapshot.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot save an empty cart")
	}
	created := s.now().UTC()
	draft := &models.PosDraft{
		ID:         uuid.New(),
		TerminalID: input.TerminalID,
		Label:      strings.TrimSpace(input.Label),
		Snapshot:   input.Snapshot,
		ItemCount:  len(input.Snapshot.Items),
		Total:      input.Total.Round(2),
		CreatedAt:  created,
		ExpiresAt:  created.Add(s.ttl).UnixMilli(),
	}
	if draft.Label == "" {
		draft.Label = input.Snapshot.Customer.DisplayName()
	}
	if err := s.repo.Create(ctx, draft); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "draft was not saved")
	}
	return draft, nil
}

// List returns live drafts and deletes expired ones as a side effect.
func (s *service) List(ctx context.Context, terminalID string) ([]models.PosDraft, error) {
	nowMillis := s.now().UnixMilli()
	if _, err := s.repo.DeleteExpired(ctx, nowMillis); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "evict expired drafts")
	}
	rows, err := s.repo.ListActive(ctx, terminalID, nowMillis)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list drafts")
	}
	return rows, nil
}

// Load returns the draft and removes it. Expired drafts are removed and reported missing.
func (s *service) Load(ctx context.Context, id uuid.UUID) (*models.PosDraft, error) {
	var loaded *models.PosDraft
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		draft, err := repo.Find(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "draft not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find draft")
		}
		if _, err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete loaded draft")
		}
		if draft.ExpiresAt <= s.now().UnixMilli() {
			return nil
		}
		loaded = draft
		return nil
	})
	if err != nil {
		return nil, err
	}
	if loaded == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "draft expired")
	}
	return loaded, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete draft")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "draft not found")
	}
	return nil
}

// Clear removes every draft of the terminal, or all drafts when terminalID is empty.
func (s *service) Clear(ctx context.Context, terminalID string) (int64, error) {
	n, err := s.repo.DeleteAll(ctx, terminalID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear drafts")
	}
	return n, nil
}

func (s *service) EvictExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now().UnixMilli())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "evict expired drafts")
	}
	return n, nil
}
