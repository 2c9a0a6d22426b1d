// utils/signature.go
package utils

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// VerifyWalletSignature checks a personal_sign signature (EIP-191) against the
// claimed signer address. The comparison is case-insensitive — wallets report
// addresses in mixed checksum casing.
func VerifyWalletSignature(message, signature, signerAddress string) (bool, error) {
	messageHash := crypto.Keccak256Hash([]byte(fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message)))

	signatureBytes, err := hexutil.Decode(signature)
	if err != nil {
		return false, fmt.Errorf("invalid signature: %w", err)
	}

	if len(signatureBytes) != 65 {
		return false, fmt.Errorf("invalid signature length")
	}

	// Wallets return v as 27/28, Ecrecover wants 0/1
	if signatureBytes[64] >= 27 {
		signatureBytes[64] -= 27
	}

	pubKeyRaw, err := crypto.Ecrecover(messageHash.Bytes(), signatureBytes)
	if err != nil {
		return false, fmt.Errorf("failed to recover public key: %w", err)
	}

	pubKey, err := crypto.UnmarshalPubkey(pubKeyRaw)
	if err != nil {
		return false, fmt.Errorf("failed to unmarshal public key: %w", err)
	}

	recovered := crypto.PubkeyToAddress(*pubKey)
	return SameAddress(recovered.Hex(), signerAddress), nil
}

// SameAddress compares two hex wallet addresses ignoring checksum casing.
func SameAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
