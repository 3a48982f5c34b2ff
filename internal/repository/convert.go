package repository

import "github.com/chainvault/ingestor/types"

func transactionRowFrom(t types.Transaction) transactionRow {
	return transactionRow{
		Chain:       string(t.Chain),
		Hash:        t.Hash,
		BlockNumber: t.BlockNumber,
		Kind:        kindNames[t.Kind],
		State:       stateNames[t.State],
		From:        t.From,
		To:          t.To,
		Value:       t.Value,
		AssetChain:  string(t.Asset.Chain),
		AssetToken:  t.Asset.TokenId,
		Fee:         t.Fee,
		FeeAsset:    t.FeeAsset.String(),
		Sequence:    t.Sequence,
		Memo:        t.Memo,
		CreatedAt:   t.CreatedAt,
	}
}

func transactionFrom(row transactionRow) types.Transaction {
	return types.Transaction{
		Hash:        row.Hash,
		Chain:       types.ChainId(row.Chain),
		Asset:       types.AssetId{Chain: types.ChainId(row.AssetChain), TokenId: row.AssetToken},
		From:        row.From,
		To:          row.To,
		Kind:        kindByName[row.Kind],
		State:       stateByName[row.State],
		BlockNumber: row.BlockNumber,
		Sequence:    row.Sequence,
		Fee:         row.Fee,
		Value:       row.Value,
		Memo:        row.Memo,
		CreatedAt:   row.CreatedAt,
	}
}

func deviceFrom(row deviceRow) types.Device {
	return types.Device{
		DeviceId:      row.ID,
		Platform:      platformByName[row.Platform],
		Locale:        row.Locale,
		IsPushEnabled: row.PushEnabled,
		UpdatedAt:     row.LastSeenAt,
	}
}

func assetRowFrom(a types.Asset) assetRow {
	return assetRow{
		ID:       a.Id.String(),
		Chain:    string(a.Id.Chain),
		Kind:     assetKindNames[a.Kind],
		Symbol:   a.Symbol,
		Decimals: a.Decimals,
		TokenId:  a.Id.TokenId,
	}
}

func assetFrom(row assetRow) types.Asset {
	return types.Asset{
		Id:       types.AssetId{Chain: types.ChainId(row.Chain), TokenId: row.TokenId},
		Symbol:   row.Symbol,
		Decimals: row.Decimals,
		Kind:     assetKindByName[row.Kind],
	}
}

var kindNames = map[types.TransactionKind]string{
	types.TransactionKindOther:           "other",
	types.TransactionKindTransfer:        "transfer",
	types.TransactionKindTokenTransfer:   "token_transfer",
	types.TransactionKindStakeDelegate:   "stake_delegate",
	types.TransactionKindStakeUndelegate: "stake_undelegate",
	types.TransactionKindStakeRewards:    "stake_rewards",
	types.TransactionKindSwap:            "swap",
	types.TransactionKindApprove:         "approve",
	types.TransactionKindContractCall:    "contract_call",
}

var kindByName = reverseKind(kindNames)

func reverseKind(m map[types.TransactionKind]string) map[string]types.TransactionKind {
	out := make(map[string]types.TransactionKind, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

var stateNames = map[types.TransactionState]string{
	types.TransactionStateUnknown:   "unknown",
	types.TransactionStatePending:   "pending",
	types.TransactionStateConfirmed: "confirmed",
	types.TransactionStateFailed:    "failed",
	types.TransactionStateReverted:  "reverted",
}

var stateByName = reverseState(stateNames)

func reverseState(m map[types.TransactionState]string) map[string]types.TransactionState {
	out := make(map[string]types.TransactionState, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

var platformByName = map[string]types.Platform{
	"ios":     types.PlatformIOS,
	"android": types.PlatformAndroid,
}

var assetKindNames = map[types.AssetKind]string{
	types.AssetKindNative: "native",
	types.AssetKindToken:  "token",
	types.AssetKindNFT:    "nft",
}

var assetKindByName = reverseAssetKind(assetKindNames)

func reverseAssetKind(m map[types.AssetKind]string) map[string]types.AssetKind {
	out := make(map[string]types.AssetKind, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}
