package gas

import (
	"errors"
	"fmt"
)

// ErrUnknownProfile is returned when a profile key is not in the set.
var ErrUnknownProfile = errors.New("unknown transaction profile")

// Profile is a fixed gas estimate for a class of transaction.
type Profile struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	GasUnits    uint64 `json:"gas_units"`
	Description string `json:"description"`
}

// DefaultProfile is selected until a user picks another one.
const DefaultProfile = "token"

var profiles = []Profile{
	{Key: "simple", Label: "Simple ETH Transfer", GasUnits: 21_000, Description: "Plain ether transfer between accounts."},
	{Key: "token", Label: "Token Transfer", GasUnits: 100_000, Description: "Token transfer or simple contract interaction."},
	{Key: "complex", Label: "Complex Contract Interaction", GasUnits: 250_000, Description: "Multi step smart contract call."},
	{Key: "nft", Label: "NFT Minting", GasUnits: 200_000, Description: "Minting a single NFT."},
	{Key: "defi", Label: "DeFi Operation", GasUnits: 350_000, Description: "Swaps and other DeFi operations."},
}

// Profiles returns a copy of the profile set in display order.
func Profiles() []Profile {
	cpy := make([]Profile, len(profiles))
	copy(cpy, profiles)
	return cpy
}

// LookupProfile returns the profile for the specified key.
func LookupProfile(key string) (Profile, error) {
	for _, p := range profiles {
		if p.Key == key {
			return p, nil
		}
	}

	return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, key)
}
