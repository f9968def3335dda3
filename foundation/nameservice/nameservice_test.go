package nameservice_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blocksentry/sentry/foundation/nameservice"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func TestNameService(t *testing.T) {
	t.Log("Given the need to name well known addresses.")
	{
		root := t.TempDir()

		privateKey, err := crypto.GenerateKey()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to generate a key : %v", failed, err)
		}
		if err := crypto.SaveECDSA(filepath.Join(root, "treasury.ecdsa"), privateKey); err != nil {
			t.Fatalf("\t%s\tShould be able to save the key : %v", failed, err)
		}
		keyAddr := crypto.PubkeyToAddress(privateKey.PublicKey).Hex()

		const exchange = "0xde709f2102306220921060314715629080e2fb77"
		if err := os.WriteFile(filepath.Join(root, "exchange.addr"), []byte(exchange+"\n"), 0600); err != nil {
			t.Fatalf("\t%s\tShould be able to write the address file : %v", failed, err)
		}
		if err := os.WriteFile(filepath.Join(root, "README"), []byte("ignored"), 0600); err != nil {
			t.Fatalf("\t%s\tShould be able to write an unrelated file : %v", failed, err)
		}

		ns, err := nameservice.New(root)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to load the folder : %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to load the folder.", success)

		if got := ns.Lookup(keyAddr); got != "treasury" {
			t.Fatalf("\t%s\tShould name the key file account : %q", failed, got)
		}
		if got := ns.Lookup(strings.ToUpper(exchange[2:])); got != "exchange" {
			t.Fatalf("\t%s\tShould name the address ignoring case : %q", failed, got)
		}
		if got := ns.Lookup("0x0000000000000000000000000000000000000001"); got != "" {
			t.Fatalf("\t%s\tShould not name an unknown address : %q", failed, got)
		}
		if got := ns.Lookup("not an address"); got != "" {
			t.Fatalf("\t%s\tShould not name a malformed address : %q", failed, got)
		}
		if len(ns.Copy()) != 2 {
			t.Fatalf("\t%s\tShould hold two accounts : %d", failed, len(ns.Copy()))
		}
		t.Logf("\t%s\tShould name known addresses only.", success)
	}
}

func TestInvalidAddressFile(t *testing.T) {
	t.Log("Given an address file that does not hold an address.")
	{
		root := t.TempDir()
		if err := os.WriteFile(filepath.Join(root, "bad.addr"), []byte("0x1234"), 0600); err != nil {
			t.Fatalf("\t%s\tShould be able to write the address file : %v", failed, err)
		}

		if _, err := nameservice.New(root); err == nil {
			t.Fatalf("\t%s\tShould fail to load the folder.", failed)
		}
		t.Logf("\t%s\tShould fail to load the folder.", success)
	}
}
