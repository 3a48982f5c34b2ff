package types

import "time"

// TransactionKind enumerates the normalized operation kinds the core
// understands. Chain-specific instruction types are collapsed into this
// set by each provider's normalizer; unrecognized kinds map to
// TransactionKindOther so the notification templates still have a
// generic fallback to render against.
type TransactionKind int

const (
	TransactionKindOther TransactionKind = iota
	TransactionKindTransfer
	TransactionKindTokenTransfer
	TransactionKindStakeDelegate
	TransactionKindStakeUndelegate
	TransactionKindStakeRewards
	TransactionKindSwap
	TransactionKindApprove
	TransactionKindContractCall
)

// TransactionState is the confirmation state of a normalized transaction.
type TransactionState int

const (
	TransactionStateUnknown TransactionState = iota
	TransactionStatePending
	TransactionStateConfirmed
	TransactionStateFailed
	TransactionStateReverted
)

// TransactionDirection is relative to the subscribed address a
// notification is being built for; it has no meaning independent of a
// (device, address) pair, so it is computed at notify time, not stored.
type TransactionDirection int

const (
	DirectionUnknown TransactionDirection = iota
	DirectionIncoming
	DirectionOutgoing
	DirectionSelfTransfer
)

// Transaction is the canonical, chain-normalized transaction record.
// Invariants:
//   - Asset.Chain equals the owning block's chain (native or a token on it).
//   - State == TransactionStateConfirmed implies BlockNumber > 0.
//   - FeeAsset.Chain equals Asset.Chain.
//   - (Chain, Hash) is the upsert key; two records sharing it are the same tx.
type Transaction struct {
	Hash        string
	Chain       ChainId
	Asset       AssetId
	From        string
	To          string
	Kind        TransactionKind
	State       TransactionState
	BlockNumber int64
	Sequence    int64
	Fee         string
	FeeAsset    AssetId
	Value       int64
	Memo        string
	CreatedAt   time.Time
	direction   TransactionDirection
}

// Direction returns the direction previously computed for this record via
// WithDirection, or DirectionUnknown if none was set; normalization does
// not know the observer's address, only the notifier does.
func (t Transaction) Direction() TransactionDirection { return t.direction }

// WithDirection returns a copy of t carrying the given direction; the
// receiver is left unchanged.
func (t Transaction) WithDirection(d TransactionDirection) Transaction {
	t.direction = d
	return t
}

// IsOutdated reports whether CreatedAt is older than threshold as of now,
// implementing the pipeline's age check.
func (t Transaction) IsOutdated(now time.Time, threshold time.Duration) bool {
	return now.Sub(t.CreatedAt) > threshold
}

// TransactionAddress is a join row linking a transaction to one address
// that participated in it (sender, recipient, or a UTXO endpoint). Every
// persisted transaction has at least one of these rows.
type TransactionAddress struct {
	Chain           ChainId
	TransactionHash string
	Address         string
}

// DeriveAddresses returns one TransactionAddress per distinct participant
// of tx, implementing the pipeline's address-derivation step. Empty addresses are skipped
// (native-asset burns, coinbase-like synthetic entries).
func DeriveAddresses(tx Transaction) []TransactionAddress {
	seen := make(map[string]struct{}, 2)
	out := make([]TransactionAddress, 0, 2)
	add := func(addr string) {
		if addr == "" {
			return
		}
		if _, ok := seen[addr]; ok {
			return
		}
		seen[addr] = struct{}{}
		out = append(out, TransactionAddress{Chain: tx.Chain, TransactionHash: tx.Hash, Address: addr})
	}
	add(tx.From)
	add(tx.To)
	return out
}
