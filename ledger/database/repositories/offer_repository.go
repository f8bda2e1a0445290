package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmomarket/marketd/ledger/database/models"
	"github.com/mmomarket/marketd/ledger/logger"
	"github.com/uptrace/bun"
)

const offerEntity = "market_offer"

// ErrInsufficientAmount is returned when an accept asks for more than the
// offer has left.
var ErrInsufficientAmount = errors.New("offer has less amount than requested")

type OfferRepository interface {
	Create(ctx context.Context, offer *models.MarketOffer) error
	GetByID(ctx context.Context, id int64) (*models.MarketOffer, error)
	Accept(ctx context.Context, id int64, amount int64) (int64, error)
	Fill(ctx context.Context, id int64, amount int64, now int64) (*models.MarketOffer, error)
	Delete(ctx context.Context, id int64) error
	MoveToHistory(ctx context.Context, id int64, state models.OfferState, now int64) (*models.MarketOffer, error)
	GetExpired(ctx context.Context, cutoff int64) ([]*models.MarketOffer, error)
	GetActive(ctx context.Context, action models.MarketAction, itemType uint16) ([]*models.MarketOffer, error)
	GetByPlayer(ctx context.Context, playerID int64, action models.MarketAction) ([]*models.MarketOffer, error)
	GetByCounter(ctx context.Context, created int64, counter uint16) (*models.MarketOffer, error)
	CountByPlayer(ctx context.Context, playerID int64) (int, error)
}

type offerRepository struct {
	*BaseRepository
}

func NewOfferRepository(db *bun.DB) OfferRepository {
	return &offerRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *offerRepository) Create(ctx context.Context, offer *models.MarketOffer) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	ql := logger.NewQueryLogger("offer.create", "INSERT market_offers", offer.PlayerID, offer.ItemType)
	_, err := r.db.NewInsert().Model(offer).Exec(ctx)
	ql.Log(err, 1)
	if err != nil {
		return r.HandleError("create", offerEntity, err)
	}
	return nil
}

func (r *offerRepository) GetByID(ctx context.Context, id int64) (*models.MarketOffer, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	offer := new(models.MarketOffer)
	err := r.db.NewSelect().
		Model(offer).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("get", offerEntity, id, err)
	}
	return offer, nil
}

// Accept takes amount units off the offer and returns what is left. The
// update is guarded so the stored amount never goes negative, and an offer
// taken down to zero is deleted in the same transaction.
func (r *offerRepository) Accept(ctx context.Context, id int64, amount int64) (int64, error) {
	var remaining int64
	err := r.Transaction(ctx, func(ctx context.Context, tx bun.Tx) error {
		offer, err := r.take(ctx, tx, id, amount)
		if err != nil {
			return err
		}
		remaining = offer.Amount
		return nil
	})
	if errors.Is(err, ErrInsufficientAmount) {
		return 0, err
	}
	if err != nil {
		return 0, r.HandleErrorWithID("accept", offerEntity, id, err)
	}
	return remaining, nil
}

// Fill takes amount units off the offer like Accept and archives the taken
// part for the owner as an Accepted history row, all in one transaction. The
// returned offer carries the remaining amount.
func (r *offerRepository) Fill(ctx context.Context, id int64, amount int64, now int64) (*models.MarketOffer, error) {
	var offer *models.MarketOffer
	err := r.Transaction(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error
		offer, err = r.take(ctx, tx, id, amount)
		if err != nil {
			return err
		}

		_, err = tx.NewInsert().
			Model(&models.MarketHistory{
				PlayerID:  offer.PlayerID,
				Sale:      offer.Sale,
				ItemType:  offer.ItemType,
				Amount:    amount,
				Price:     offer.Price,
				ExpiresAt: now,
				Inserted:  now,
				State:     models.OfferStateAccepted,
			}).
			Exec(ctx)
		return err
	})
	if errors.Is(err, ErrInsufficientAmount) {
		return nil, err
	}
	if err != nil {
		return nil, r.HandleErrorWithID("fill", offerEntity, id, err)
	}
	return offer, nil
}

// take runs the guarded decrement inside tx and removes the row once nothing
// is left.
func (r *offerRepository) take(ctx context.Context, tx bun.Tx, id int64, amount int64) (*models.MarketOffer, error) {
	res, err := tx.NewUpdate().
		Model((*models.MarketOffer)(nil)).
		Set("amount = amount - ?", amount).
		Where("id = ?", id).
		Where("amount >= ?", amount).
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	offer := new(models.MarketOffer)
	if err := tx.NewSelect().Model(offer).Where("id = ?", id).Scan(ctx); err != nil {
		return nil, err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return nil, ErrInsufficientAmount
	}

	if offer.Amount == 0 {
		if _, err := tx.NewDelete().
			Model((*models.MarketOffer)(nil)).
			Where("id = ?", id).
			Exec(ctx); err != nil {
			return nil, err
		}
	}
	return offer, nil
}

func (r *offerRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	ql := logger.NewQueryLogger("offer.delete", "DELETE market_offers", id)
	res, err := r.db.NewDelete().
		Model((*models.MarketOffer)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	var rows int64
	if err == nil {
		rows, _ = res.RowsAffected()
	}
	ql.Log(err, rows)
	if err != nil {
		return r.HandleErrorWithID("delete", offerEntity, id, err)
	}
	return nil
}

// MoveToHistory reads, deletes and archives the offer in one transaction.
// Only the caller whose delete removes the row gets the offer back; everyone
// else sees a NotFoundError and nothing is written.
func (r *offerRepository) MoveToHistory(ctx context.Context, id int64, state models.OfferState, now int64) (*models.MarketOffer, error) {
	if !state.Terminal() {
		return nil, fmt.Errorf("cannot archive offer %d with state %s", id, state)
	}

	offer := new(models.MarketOffer)
	err := r.Transaction(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewSelect().Model(offer).Where("id = ?", id).Scan(ctx); err != nil {
			return err
		}

		res, err := tx.NewDelete().
			Model((*models.MarketOffer)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}
		if rows, err := res.RowsAffected(); err != nil {
			return err
		} else if rows != 1 {
			return sql.ErrNoRows
		}

		_, err = tx.NewInsert().
			Model(&models.MarketHistory{
				PlayerID:  offer.PlayerID,
				Sale:      offer.Sale,
				ItemType:  offer.ItemType,
				Amount:    offer.Amount,
				Price:     offer.Price,
				ExpiresAt: now,
				Inserted:  now,
				State:     state,
			}).
			Exec(ctx)
		return err
	})
	if err != nil {
		return nil, r.HandleErrorWithID("move_to_history", offerEntity, id, err)
	}
	return offer, nil
}

func (r *offerRepository) GetExpired(ctx context.Context, cutoff int64) ([]*models.MarketOffer, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var offers []*models.MarketOffer
	err := r.db.NewSelect().
		Model(&offers).
		Where("created <= ?", cutoff).
		Order("created ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, r.HandleError("get_expired", offerEntity, err)
	}
	return offers, nil
}

func (r *offerRepository) GetActive(ctx context.Context, action models.MarketAction, itemType uint16) ([]*models.MarketOffer, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var offers []*models.MarketOffer
	err := r.db.NewSelect().
		Model(&offers).
		Where("sale = ?", action).
		Where("itemtype = ?", itemType).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, r.HandleError("get_active", offerEntity, err)
	}
	return offers, nil
}

func (r *offerRepository) GetByPlayer(ctx context.Context, playerID int64, action models.MarketAction) ([]*models.MarketOffer, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var offers []*models.MarketOffer
	err := r.db.NewSelect().
		Model(&offers).
		Where("player_id = ?", playerID).
		Where("sale = ?", action).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, r.HandleError("get_by_player", offerEntity, err)
	}
	return offers, nil
}

// GetByCounter matches the low 16 bits of the id. Counters collide across
// offers created in the same second; the lowest id wins.
func (r *offerRepository) GetByCounter(ctx context.Context, created int64, counter uint16) (*models.MarketOffer, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	offer := new(models.MarketOffer)
	err := r.db.NewSelect().
		Model(offer).
		Where("created = ?", created).
		Where("(id & 65535) = ?", int64(counter)).
		Order("id ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("get_by_counter", offerEntity, counter, err)
	}
	return offer, nil
}

func (r *offerRepository) CountByPlayer(ctx context.Context, playerID int64) (int, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	count, err := r.db.NewSelect().
		Model((*models.MarketOffer)(nil)).
		Where("player_id = ?", playerID).
		Count(ctx)
	if err != nil {
		return 0, r.HandleError("count_by_player", offerEntity, err)
	}
	return count, nil
}
