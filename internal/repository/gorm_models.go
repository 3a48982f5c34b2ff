package repository

import "time"

// Row types mirror types.* but carry gorm tags and the flattened shape
// a relational table needs; conversion happens at the package boundary
// so the rest of the codebase never imports gorm.

type parserStateRow struct {
	Chain        string `gorm:"primary_key"`
	LatestBlock  int64
	CurrentBlock int64
	UpdatedAt    time.Time
}

func (parserStateRow) TableName() string { return "parser_states" }

type transactionRow struct {
	ID          uint64 `gorm:"primary_key;auto_increment"`
	Chain       string `gorm:"index:idx_tx_chain_hash"`
	Hash        string `gorm:"index:idx_tx_chain_hash"`
	BlockNumber int64
	Kind        string
	State       string
	From        string
	To          string
	Value       int64
	AssetChain  string
	AssetToken  string
	Fee         string
	FeeAsset    string
	Sequence    int64
	Memo        string
	CreatedAt   time.Time
}

func (transactionRow) TableName() string { return "transactions" }

type transactionAddressRow struct {
	ID            uint64 `gorm:"primary_key;auto_increment"`
	TransactionID uint64 `gorm:"index"`
	Address       string `gorm:"index"`
}

func (transactionAddressRow) TableName() string { return "transaction_addresses" }

type deviceRow struct {
	ID             string `gorm:"primary_key"`
	Platform       string
	PushToken      string
	PushEnabled    bool
	Locale         string
	LastSeenAt     time.Time
}

func (deviceRow) TableName() string { return "devices" }

type subscriptionRow struct {
	ID       uint64 `gorm:"primary_key;auto_increment"`
	DeviceID string `gorm:"index"`
	Chain    string `gorm:"index:idx_sub_chain_address"`
	Address  string `gorm:"index:idx_sub_chain_address"`
}

func (subscriptionRow) TableName() string { return "subscriptions" }

type assetRow struct {
	ID       string `gorm:"primary_key"`
	Chain    string
	Kind     string
	Symbol   string
	Decimals int
	TokenId  string
}

func (assetRow) TableName() string { return "assets" }
