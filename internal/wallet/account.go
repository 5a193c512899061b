package wallet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Account selects an account in the account menu, by name or by its
// 1-based position.
type Account interface {
	isAccount()
}

type AccountByName string

type AccountByNumber int

func (AccountByName) isAccount()   {}
func (AccountByNumber) isAccount() {}

// ParseAccount treats a positive integer as a position and anything else as
// a name.
func ParseAccount(s string) Account {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return AccountByNumber(n)
	}
	return AccountByName(strings.ToLower(s))
}

// AddressFromPrivateKey derives the account address of a hex private key,
// with or without 0x prefix.
func AddressFromPrivateKey(hexKey string) (common.Address, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid private key: %w", err)
	}
	return crypto.PubkeyToAddress(key.PublicKey), nil
}

// ParseAddress validates a hex address read from the UI.
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("not an address: %q", s)
	}
	return common.HexToAddress(s), nil
}

// TxData is what ConfirmTransaction read from the confirmation popup.
type TxData struct {
	CustomNonce string `json:"customNonce,omitempty"`
	Origin      string `json:"origin,omitempty"`
	Bytes       string `json:"bytes,omitempty"`
	HexData     string `json:"hexData,omitempty"`
	Confirmed   bool   `json:"confirmed"`
}
