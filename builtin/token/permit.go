// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/vechain/rewardpool/core"
)

var (
	domainTypeHash = core.Keccak256([]byte("EIP712Domain(string name,string version,address verifyingContract)"))
	permitTypeHash = core.Keccak256([]byte("Permit(address owner,address spender,uint256 value,uint256 nonce,uint256 deadline)"))
	versionHash    = core.Keccak256([]byte("1"))
)

func word(addr core.Address) []byte {
	return core.BytesToBytes32(addr.Bytes()).Bytes()
}

func wordU64(v uint64) []byte {
	b := uint256.NewInt(v).Bytes32()
	return b[:]
}

// DomainSeparator returns the EIP-712 domain separator of the token.
func (t *Token) DomainSeparator() (core.Bytes32, error) {
	meta, err := t.meta.Get()
	if err != nil {
		return core.Bytes32{}, err
	}
	name := core.Keccak256([]byte(meta.Name))
	return core.Keccak256(domainTypeHash[:], name[:], versionHash[:], word(t.addr)), nil
}

// PermitDigest returns the hash an owner signs to grant value to spender.
func (t *Token) PermitDigest(owner, spender core.Address, value *uint256.Int, nonce, deadline uint64) (core.Bytes32, error) {
	domain, err := t.DomainSeparator()
	if err != nil {
		return core.Bytes32{}, err
	}
	v := value.Bytes32()
	structHash := core.Keccak256(
		permitTypeHash[:],
		word(owner),
		word(spender),
		v[:],
		wordU64(nonce),
		wordU64(deadline),
	)
	return core.Keccak256([]byte{0x19, 0x01}, domain[:], structHash[:]), nil
}

// SignPermit signs a permit digest, producing a 65-byte [R || S || V] signature.
func SignPermit(digest core.Bytes32, pk *ecdsa.PrivateKey) ([]byte, error) {
	return crypto.Sign(digest[:], pk)
}

// Permit approves spender from a signature made by owner, consuming the owner's nonce.
func (t *Token) Permit(owner, spender core.Address, value *uint256.Int, deadline uint64, sig []byte) error {
	if deadline < t.env.BlockTime() {
		return ErrExpired
	}
	if len(sig) != 65 {
		return ErrInvalidSignature
	}
	nonce, err := t.nonces.Get(owner)
	if err != nil {
		return err
	}
	digest, err := t.PermitDigest(owner, spender, value, nonce, deadline)
	if err != nil {
		return err
	}

	normalized := append([]byte(nil), sig...)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}
	pub, err := crypto.SigToPub(digest[:], normalized)
	if err != nil {
		return ErrInvalidSignature
	}
	if core.Address(crypto.PubkeyToAddress(*pub)) != owner {
		return ErrInvalidSignature
	}

	if err := t.nonces.Set(owner, nonce+1); err != nil {
		return err
	}
	return t.Approve(owner, spender, value)
}
