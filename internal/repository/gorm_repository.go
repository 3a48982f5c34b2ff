package repository

import (
	"context"
	"time"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"

	"github.com/chainvault/ingestor/types"
)

// GormRepository is the production Repository, backed by postgres.url.
// One struct holds the single db handle every method operates through,
// using gorm+postgres as the driver for the relational case.
type GormRepository struct {
	db *gorm.DB
}

// Config mirrors the subset of a gorm.Open call the core cares about.
type Config struct {
	URL         string
	MaxOpenConn int
	MaxIdleConn int
}

// Open dials postgres and runs AutoMigrate for the row types this
// package owns, failing fast with the driver's error if the
// database is unreachable at startup.
func Open(cfg Config) (*GormRepository, error) {
	db, err := gorm.Open("postgres", cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConn > 0 {
		db.DB().SetMaxOpenConns(cfg.MaxOpenConn)
	}
	if cfg.MaxIdleConn > 0 {
		db.DB().SetMaxIdleConns(cfg.MaxIdleConn)
	}
	db.AutoMigrate(
		&parserStateRow{},
		&transactionRow{},
		&transactionAddressRow{},
		&deviceRow{},
		&subscriptionRow{},
		&assetRow{},
	)
	logger.Info("connected to postgres repository")
	return &GormRepository{db: db}, nil
}

func (r *GormRepository) Close() error { return r.db.Close() }

func (r *GormRepository) EnsureParserState(_ context.Context, chain types.ChainId) error {
	row := parserStateRow{Chain: string(chain)}
	result := r.db.Where(parserStateRow{Chain: string(chain)}).FirstOrCreate(&row)
	return wrapErr(result.Error)
}

func (r *GormRepository) GetAllParserStates(_ context.Context) ([]types.ParserState, error) {
	var rows []parserStateRow
	if err := r.db.Find(&rows).Error; err != nil {
		return nil, wrapErr(err)
	}
	out := make([]types.ParserState, 0, len(rows))
	for _, row := range rows {
		out = append(out, types.ParserState{
			Chain:        types.ChainId(row.Chain),
			CurrentBlock: row.CurrentBlock,
			LatestBlock:  row.LatestBlock,
			UpdatedAt:    row.UpdatedAt,
			IsEnabled:    true,
		})
	}
	return out, nil
}

func (r *GormRepository) SetLatestBlock(_ context.Context, chain types.ChainId, block int64) error {
	err := r.db.Model(&parserStateRow{}).
		Where("chain = ?", string(chain)).
		Updates(map[string]interface{}{"latest_block": block, "updated_at": time.Now()}).Error
	return wrapErr(err)
}

func (r *GormRepository) SetCurrentBlock(_ context.Context, chain types.ChainId, block int64) error {
	err := r.db.Model(&parserStateRow{}).
		Where("chain = ?", string(chain)).
		Updates(map[string]interface{}{"current_block": block, "updated_at": time.Now()}).Error
	return wrapErr(err)
}

// UpsertTransactions persists txs and their derived address rows inside
// a single transaction, matching the pipeline's "one transactional
// write" requirement.
func (r *GormRepository) UpsertTransactions(_ context.Context, txs []types.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	return wrapErr(r.db.Transaction(func(tx *gorm.DB) error {
		for _, t := range txs {
			row := transactionRowFrom(t)
			var saved transactionRow
			if err := tx.Where(transactionRow{Chain: row.Chain, Hash: row.Hash}).
				Assign(row).
				FirstOrCreate(&saved).Error; err != nil {
				return err
			}
			for _, addr := range types.DeriveAddresses(t) {
				addrRow := transactionAddressRow{TransactionID: saved.ID, Address: addr.Address}
				if err := tx.Where(transactionAddressRow{TransactionID: saved.ID, Address: addr.Address}).
					FirstOrCreate(&addrRow).Error; err != nil {
					return err
				}
			}
		}
		return nil
	}))
}

func (r *GormRepository) GetTransactionByHash(_ context.Context, chain types.ChainId, hash string) (types.Transaction, bool, error) {
	var row transactionRow
	err := r.db.Where("chain = ? AND hash = ?", string(chain), hash).First(&row).Error
	if gorm.IsRecordNotFoundError(err) {
		return types.Transaction{}, false, nil
	}
	if err != nil {
		return types.Transaction{}, false, wrapErr(err)
	}
	return transactionFrom(row), true, nil
}

func (r *GormRepository) DeleteTransactionsOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", cutoff).Delete(&transactionRow{})
	return result.RowsAffected, wrapErr(result.Error)
}

func (r *GormRepository) GetDevice(_ context.Context, deviceId string) (types.Device, bool, error) {
	var row deviceRow
	err := r.db.Where("id = ?", deviceId).First(&row).Error
	if gorm.IsRecordNotFoundError(err) {
		return types.Device{}, false, nil
	}
	if err != nil {
		return types.Device{}, false, wrapErr(err)
	}
	return deviceFrom(row), true, nil
}

func (r *GormRepository) SubscribersFor(_ context.Context, chain types.ChainId, address string) ([]types.Subscription, error) {
	var rows []subscriptionRow
	err := r.db.Where("chain = ? AND address = ?", string(chain), address).Find(&rows).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	out := make([]types.Subscription, 0, len(rows))
	for _, row := range rows {
		out = append(out, types.Subscription{
			DeviceId: row.DeviceID,
			Chain:    types.ChainId(row.Chain),
			Address:  row.Address,
		})
	}
	return out, nil
}

func (r *GormRepository) TouchDevice(_ context.Context, deviceId string, at time.Time) error {
	err := r.db.Model(&deviceRow{}).Where("id = ?", deviceId).Update("last_seen_at", at).Error
	return wrapErr(err)
}

func (r *GormRepository) InactiveDevices(_ context.Context, since time.Time) ([]types.Device, error) {
	var rows []deviceRow
	err := r.db.Where("last_seen_at < ?", since).Find(&rows).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	out := make([]types.Device, 0, len(rows))
	for _, row := range rows {
		out = append(out, deviceFrom(row))
	}
	return out, nil
}

func (r *GormRepository) GetAssets(_ context.Context, ids []types.AssetId) ([]types.Asset, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []assetRow
	if err := r.db.Where("id IN (?)", assetRowIds(ids)).Find(&rows).Error; err != nil {
		return nil, wrapErr(err)
	}
	out := make([]types.Asset, 0, len(rows))
	for _, row := range rows {
		out = append(out, assetFrom(row))
	}
	return out, nil
}

func (r *GormRepository) UpsertToken(_ context.Context, asset types.Asset) error {
	row := assetRowFrom(asset)
	return wrapErr(r.db.Where(assetRow{ID: row.ID}).Assign(row).FirstOrCreate(&assetRow{}).Error)
}

func assetRowIds(ids []types.AssetId) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if gorm.IsRecordNotFoundError(err) {
		return ErrNotFound
	}
	return &RepoError{Kind: KindTransient, Msg: "repository operation failed", Err: err}
}
