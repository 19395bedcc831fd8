package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/debt"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/journal"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
)

// JournalStore is the single gate through which entries are posted, changed
// and removed.
type JournalStore struct {
	entries   journal.Repository
	debts     debt.Repository
	chart     *ChartOfAccounts
	guard     *LockGuard
	publisher EventPublisher
	tx        TxManager
	now       clock
	logger    *slog.Logger
}

func NewJournalStore(
	entries journal.Repository,
	debts debt.Repository,
	chart *ChartOfAccounts,
	guard *LockGuard,
	publisher EventPublisher,
	tx TxManager,
	logger *slog.Logger,
) *JournalStore {
	return &JournalStore{
		entries:   entries,
		debts:     debts,
		chart:     chart,
		guard:     guard,
		publisher: publisher,
		tx:        tx,
		now:       utcNow,
		logger:    logger.With("component", "journal_store"),
	}
}

// ManualEntryInput is a caller-built entry.
type ManualEntryInput struct {
	TransactionDate time.Time
	Memo            string
	Lines           []journal.Line
	CorrelationID   string
}

// EntryPatch replaces the editable parts of an entry. Nil fields are kept.
type EntryPatch struct {
	TransactionDate *time.Time
	Memo            *string
	Lines           []journal.Line
}

// Post validates, stamps and persists entry, then publishes
// ledger.entry.posted. It joins the caller's transaction when there is one.
func (s *JournalStore) Post(ctx context.Context, entry *journal.Entry) (*journal.Entry, error) {
	if entry.Reference == "" {
		entry.Reference = journal.NewReference(entry.Type.ReferencePrefix(), entry.TransactionDate)
	}
	entry.TransactionDate = shared.StartOfDay(entry.TransactionDate)

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.chart.EnsureAll(ctx, entry.AccountCodes()); err != nil {
			return err
		}
		if err := s.guard.EnsureUnlocked(ctx, entry.TransactionDate); err != nil {
			return err
		}

		existing, err := s.entries.GetByReference(ctx, entry.Reference)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if existing != nil {
			return journal.ErrDuplicateReference(entry.Reference)
		}

		if entry.CorrelationID == "" {
			entry.CorrelationID = shared.CorrelationID(ctx)
		}
		entry.MarkPosted(s.now())
		if err := s.entries.Insert(ctx, entry); err != nil {
			return err
		}

		debit, _ := entry.Totals()
		return s.publisher.Publish(ctx, shared.TopicEntryPosted, entry.ID, EntryPostedEvent{
			EntryID:         entry.ID,
			Reference:       entry.Reference,
			Type:            entry.Type,
			TransactionDate: entry.TransactionDate,
			SourceType:      entry.SourceType,
			SourceID:        entry.SourceID,
			TotalDebit:      debit,
			PostedAt:        entry.PostedAt,
		})
	})
	if err != nil {
		s.logger.Warn("Failed to post journal entry", "reference", entry.Reference, "type", entry.Type, "error", err)
		return nil, err
	}

	s.logger.Info("Journal entry posted", "entry_id", entry.ID, "reference", entry.Reference, "type", entry.Type)
	return entry, nil
}

// CreateManual posts a manual entry.
func (s *JournalStore) CreateManual(ctx context.Context, in ManualEntryInput) (*journal.Entry, error) {
	date := in.TransactionDate
	if date.IsZero() {
		date = s.now()
	}
	entry := journal.NewEntry(journal.TypeManual, date, in.Memo, in.Lines)
	entry.CorrelationID = in.CorrelationID
	return s.Post(ctx, entry)
}

// Get returns one entry.
func (s *JournalStore) Get(ctx context.Context, id string) (*journal.Entry, error) {
	return s.entries.GetByID(ctx, id)
}

// List returns a page of entries and the total count.
func (s *JournalStore) List(ctx context.Context, filter journal.ListFilter) ([]*journal.Entry, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.entries.List(ctx, filter)
}

// Update replaces memo, date or lines of an entry no debt depends on.
func (s *JournalStore) Update(ctx context.Context, id string, patch EntryPatch) (*journal.Entry, error) {
	var updated *journal.Entry
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		entry, err := s.mutable(ctx, id)
		if err != nil {
			return err
		}

		if patch.Memo != nil {
			entry.Memo = *patch.Memo
		}
		if patch.TransactionDate != nil {
			entry.TransactionDate = shared.StartOfDay(*patch.TransactionDate)
			if err := s.guard.EnsureUnlocked(ctx, entry.TransactionDate); err != nil {
				return err
			}
		}
		if patch.Lines != nil {
			entry.Lines = patch.Lines
		}
		if err := entry.Validate(); err != nil {
			return err
		}
		if _, err := s.chart.EnsureAll(ctx, entry.AccountCodes()); err != nil {
			return err
		}

		entry.UpdatedAt = s.now()
		if err := s.entries.Replace(ctx, entry); err != nil {
			return err
		}
		updated = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Journal entry updated", "entry_id", id, "reference", updated.Reference)
	return updated, nil
}

// Delete removes an entry no debt or asset depends on.
func (s *JournalStore) Delete(ctx context.Context, id string) error {
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.mutable(ctx, id); err != nil {
			return err
		}
		return s.entries.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info("Journal entry deleted", "entry_id", id)
	return nil
}

// mutable loads an entry and checks the guards shared by Update and Delete.
func (s *JournalStore) mutable(ctx context.Context, id string) (*journal.Entry, error) {
	entry, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.Type == journal.TypeClosing {
		return nil, shared.NewStateError("closing entries cannot be changed", "entry_id", id)
	}
	// Settlements and depreciation are mirrored on the debt and asset records.
	switch entry.SourceType {
	case journal.SourceDebt:
		return nil, shared.NewStateError("payment entries are recorded on a debt and cannot be changed",
			"entry_id", id, "debt_id", entry.SourceID)
	case journal.SourceAsset:
		return nil, shared.NewStateError("depreciation entries are recorded on an asset and cannot be changed",
			"entry_id", id, "asset_id", entry.SourceID)
	}
	if err := s.guard.EnsureUnlocked(ctx, entry.TransactionDate); err != nil {
		return nil, err
	}
	n, err := s.debts.CountByJournalEntry(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count debts for entry %s: %w", id, err)
	}
	if n > 0 {
		return nil, shared.NewStateError("entry is referenced by a debt", "entry_id", id, "debts", n)
	}
	return entry, nil
}
