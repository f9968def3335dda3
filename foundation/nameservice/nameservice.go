// Package nameservice reads a folder of account files and creates a name
// service lookup for well known addresses.
package nameservice

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// File extensions the name service understands. A key file holds a private
// key and the address is derived from it. An address file holds the hex
// address as text.
const (
	keyExt  = ".ecdsa"
	addrExt = ".addr"
)

// NameService maintains a map of addresses for name lookup.
type NameService struct {
	accounts map[common.Address]string
}

// New constructs a name service with the accounts found under root. The name
// of an account is its file name without the extension. An empty root
// produces an empty name service.
func New(root string) (*NameService, error) {
	ns := NameService{
		accounts: make(map[common.Address]string),
	}

	if root == "" {
		return &ns, nil
	}

	fn := func(fileName string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		ext := path.Ext(fileName)
		name := strings.TrimSuffix(filepath.Base(fileName), ext)

		switch ext {
		case keyExt:
			privateKey, err := crypto.LoadECDSA(fileName)
			if err != nil {
				return err
			}
			ns.accounts[crypto.PubkeyToAddress(privateKey.PublicKey)] = name

		case addrExt:
			data, err := os.ReadFile(fileName)
			if err != nil {
				return err
			}

			hex := strings.TrimSpace(string(data))
			if !common.IsHexAddress(hex) {
				return fmt.Errorf("%s: invalid address %q", fileName, hex)
			}
			ns.accounts[common.HexToAddress(hex)] = name
		}

		return nil
	}

	if err := filepath.Walk(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified address or an empty string when
// the address is not known. Matching ignores the checksum case.
func (ns *NameService) Lookup(address string) string {
	if !common.IsHexAddress(address) {
		return ""
	}
	return ns.accounts[common.HexToAddress(address)]
}

// Copy returns a copy of the map of names and addresses.
func (ns *NameService) Copy() map[common.Address]string {
	cpy := make(map[common.Address]string, len(ns.accounts))
	for account, name := range ns.accounts {
		cpy[account] = name
	}
	return cpy
}
