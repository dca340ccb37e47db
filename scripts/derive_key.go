// derive_key.go prints the public key and the addresses of a hex-encoded
// private key file, for filling genesis allocations by hand.
// Usage: go run scripts/derive_key.go [--testnet] <keyfile>
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/Klingon-tech/klingnet-walletcore/pkg/crypto"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/types"
)

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func main() {
	args := os.Args[1:]
	disc := types.Production
	if len(args) > 0 && args[0] == "--testnet" {
		disc = types.Test
		args = args[1:]
	}
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: derive_key [--testnet] <keyfile>")
		os.Exit(1)
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		fail(err)
	}
	keyBytes, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		fail(err)
	}
	key, err := crypto.PrivateKeyFromBytes(keyBytes)
	if err != nil {
		fail(err)
	}
	pub := key.PublicKey()

	account, err := types.NewAddress(disc, types.KindAccount, pub)
	if err != nil {
		fail(err)
	}
	single, err := types.NewAddress(disc, types.KindSingle, pub)
	if err != nil {
		fail(err)
	}
	fmt.Printf("pubkey=%s\n", hex.EncodeToString(pub))
	fmt.Printf("account=%s\n", account)
	fmt.Printf("single=%s\n", single)
	fmt.Printf("legacy=%s\n", crypto.LegacyAddressFromPubKey(pub).Encode(disc))
}
