// internal/models/address.go
package models

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

const AddressLength = 20

// Address identifies an account or a deployed instance (ledger, scholarship, scheduler).
type Address [AddressLength]byte

var ZeroAddress Address

func (a Address) IsZero() bool {
	return a == ZeroAddress
}

func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a Address) String() string {
	return a.Hex()
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := HexToAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// HexToAddress parses a 0x-prefixed (or bare) 40 character hex string.
func HexToAddress(s string) (Address, error) {
	var a Address
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) != AddressLength*2 {
		return a, fmt.Errorf("invalid address length %d", len(s))
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return a, fmt.Errorf("invalid address hex: %w", err)
	}
	copy(a[:], raw)
	return a, nil
}

// IsHexAddress reports whether s parses as an Address.
func IsHexAddress(s string) bool {
	_, err := HexToAddress(s)
	return err == nil
}

// MustHexToAddress is HexToAddress for constants and tests.
func MustHexToAddress(s string) Address {
	a, err := HexToAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// DeriveAddress computes the address of the nonce-th instance deployed by deployer:
// the last 20 bytes of keccak256(deployer || nonce).
func DeriveAddress(deployer Address, nonce uint64) Address {
	var buf [AddressLength + 8]byte
	copy(buf[:AddressLength], deployer[:])
	binary.BigEndian.PutUint64(buf[AddressLength:], nonce)

	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(buf[:])
	sum := hasher.Sum(nil)

	var a Address
	copy(a[:], sum[len(sum)-AddressLength:])
	return a
}

// NamedAddress derives a stable address from a label, used for well-known system accounts.
func NamedAddress(label string) Address {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(label))
	sum := hasher.Sum(nil)

	var a Address
	copy(a[:], sum[len(sum)-AddressLength:])
	return a
}
