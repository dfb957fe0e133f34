package ethledger

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog/log"
)

// KeyWallet is the identity collaborator backed by a single configured key.
// Without a key it has no identity and cannot sign.
type KeyWallet struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

func NewKeyWallet(hexKey string) (*KeyWallet, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if hexKey == "" {
		return &KeyWallet{}, nil
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("wallet key: %w", err)
	}
	return &KeyWallet{key: key, address: crypto.PubkeyToAddress(key.PublicKey)}, nil
}

func (w *KeyWallet) Identity() (common.Address, bool) {
	if w == nil || w.key == nil {
		return common.Address{}, false
	}
	return w.address, true
}

// RequestConnection only asks; it never blocks.
func (w *KeyWallet) RequestConnection() {
	log.Warn().Msg("no wallet connected: set WALLET_KEY to sign transactions")
}

func (w *KeyWallet) transactOpts(chainID *big.Int) (*bind.TransactOpts, error) {
	if w == nil || w.key == nil {
		return nil, fmt.Errorf("wallet has no key")
	}
	return bind.NewKeyedTransactorWithChainID(w.key, chainID)
}
