package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/partner"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartnerDirectory_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty ref resolves to the default partner", func(t *testing.T) {
		h := newHarness()
		first, err := h.dir.Resolve(ctx, partner.KindCustomer, partner.Ref{})
		require.NoError(t, err)
		assert.True(t, first.IsDefault)
		assert.Equal(t, "default-customer", first.ExternalID)

		again, err := h.dir.Resolve(ctx, partner.KindCustomer, partner.Ref{Name: "  "})
		require.NoError(t, err)
		assert.Equal(t, first.ID, again.ID)

		supplier, err := h.dir.Resolve(ctx, partner.KindSupplier, partner.Ref{})
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, supplier.ID)
	})

	t.Run("External id is stable and backfills contact", func(t *testing.T) {
		h := newHarness()
		first, err := h.dir.Resolve(ctx, partner.KindCustomer, partner.Ref{ExternalID: "u-1"})
		require.NoError(t, err)
		assert.Equal(t, "u-1", first.Name)

		second, err := h.dir.Resolve(ctx, partner.KindCustomer, partner.Ref{ExternalID: "u-1", Name: "Pham Thi D", Phone: "+84 912-000-111"})
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "Pham Thi D", second.Name)
		assert.Equal(t, "84912000111", second.Phone)
	})

	t.Run("Name deduplication", func(t *testing.T) {
		h := newHarness()
		base, err := h.dir.Resolve(ctx, partner.KindSupplier, partner.Ref{Name: "Công ty Xanh"})
		require.NoError(t, err)
		assert.Equal(t, "auto-supplier-cong-ty-xanh", base.ExternalID)

		adopted, err := h.dir.Resolve(ctx, partner.KindSupplier, partner.Ref{Name: "công ty xanh", Phone: "0901"})
		require.NoError(t, err)
		assert.Equal(t, base.ID, adopted.ID, "a record without a phone adopts the caller's")
		assert.Equal(t, "0901", adopted.Phone)

		same, err := h.dir.Resolve(ctx, partner.KindSupplier, partner.Ref{Name: "Công ty Xanh", Phone: "0901"})
		require.NoError(t, err)
		assert.Equal(t, base.ID, same.ID)

		noPhone, err := h.dir.Resolve(ctx, partner.KindSupplier, partner.Ref{Name: "Công ty Xanh"})
		require.NoError(t, err)
		assert.Equal(t, base.ID, noPhone.ID)

		other, err := h.dir.Resolve(ctx, partner.KindSupplier, partner.Ref{Name: "Công ty Xanh", Phone: "0902"})
		require.NoError(t, err)
		assert.NotEqual(t, base.ID, other.ID, "a different phone is a different partner")
		assert.Equal(t, "auto-supplier-cong-ty-xanh-2", other.ExternalID)
	})

	t.Run("Composed and decomposed names are one partner", func(t *testing.T) {
		h := newHarness()
		first, err := h.dir.Resolve(ctx, partner.KindCustomer, partner.Ref{Name: "Nguy\u1ec5n Th\u1ecb Hoa", Phone: "0987"})
		require.NoError(t, err)

		again, err := h.dir.Resolve(ctx, partner.KindCustomer, partner.Ref{Name: "Nguye\u0302\u0303n Thi\u0323 Hoa", Phone: "0987"})
		require.NoError(t, err)
		assert.Equal(t, first.ID, again.ID)
		assert.Equal(t, 1, h.partnerCount())
	})

	t.Run("Falls back to default after exhausting synthetic ids", func(t *testing.T) {
		h := newHarness()
		h.partners.createErr = func(p *partner.Partner) error {
			if !p.IsDefault {
				return partner.ErrDuplicatePartner(p.Kind, p.ExternalID)
			}
			return nil
		}
		p, err := h.dir.Resolve(ctx, partner.KindCustomer, partner.Ref{Name: "Hoang Van E"})
		require.NoError(t, err)
		assert.True(t, p.IsDefault)
	})

	t.Run("Storage errors surface", func(t *testing.T) {
		h := newHarness()
		boom := errors.New("connection reset")
		h.partners.createErr = func(*partner.Partner) error { return boom }
		_, err := h.dir.Resolve(ctx, partner.KindCustomer, partner.Ref{Name: "Hoang Van E"})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("Invalid kind", func(t *testing.T) {
		h := newHarness()
		_, err := h.dir.Resolve(ctx, "vendor", partner.Ref{Name: "x"})
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}
