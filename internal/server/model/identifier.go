package model

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// TokenIdentifier 规范化后的 base58 mint 地址
type TokenIdentifier string

// ParseTokenIdentifier 校验并规范化 mint 地址，必须能解码为 32 字节公钥
func ParseTokenIdentifier(raw string) (TokenIdentifier, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidIdentifier)
	}
	pk, err := solana.PublicKeyFromBase58(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidIdentifier, err)
	}
	return TokenIdentifier(pk.String()), nil
}

func (id TokenIdentifier) String() string {
	return string(id)
}

// PublicKey 仅对 ParseTokenIdentifier 产出的值调用
func (id TokenIdentifier) PublicKey() solana.PublicKey {
	return solana.MustPublicKeyFromBase58(string(id))
}
