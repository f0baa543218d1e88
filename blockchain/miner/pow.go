package miner

import (
	"math/rand"

	"go.dedis.ch/streamchain/blockchain/block"
)

// each byte has 8 bits
func satisfyPrefixZeros(hash []byte, zeros int) bool {
	for i := 0; i < zeros; i++ {
		if hash[i] != 0 {
			return false
		}
	}
	return true
}

func difficultyToZeros(difficulty int) int {
	if difficulty > 32 {
		return 32
	}
	return difficulty
}

func (m *Miner) blockPoW(bb *block.BlockBuilder) *block.Block {
	difficulty := bb.GetDifficulty() // how many zeros
	nonce := rand.Uint32()
	bb.SetNonce(nonce)
	b := bb.Build()
	for !satisfyPrefixZeros(b.HashBytes(), difficultyToZeros(difficulty)) {
		nonce += 1
		bb.SetNonce(nonce)
		b = bb.Build()
	}
	return b
}

// VerifyPoW checks the block hash against its own difficulty
func VerifyPoW(b *block.Block) bool {
	return satisfyPrefixZeros(b.HashBytes(), difficultyToZeros(b.Header.Difficulty))
}
