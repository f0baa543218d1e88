package block

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/disiqueira/gotree"
	"go.dedis.ch/streamchain/blockchain/storage"
	"go.dedis.ch/streamchain/blockchain/transaction"
)

var ErrBlockNotFound = errors.New("block not found")

// BlockChain is a chain of Blocks
type BlockChain struct {
	mu        sync.Mutex
	blocksMap map[string]*Block
	blocks    []*Block // blocks[i].Header.Number == i
}

func NewBlockChain() *BlockChain {
	genesis := DefaultGenesis()
	return NewBlockChainWithGenesis(genesis)
}

func NewBlockChainWithGenesis(genesis *Block) *BlockChain {
	return &BlockChain{blocks: []*Block{genesis},
		blocksMap: map[string]*Block{genesis.Hash(): genesis}}
}

// LatestWorldState returns a copy of the world state stored in the last block
func (bc *BlockChain) LatestWorldState() (storage.KV, *Block) {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	end := bc.blocks[len(bc.blocks)-1]
	return end.State.Copy(), end
}

func (bc *BlockChain) Latest() *Block {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	return bc.blocks[len(bc.blocks)-1]
}

// Height is the number of the last block
func (bc *BlockChain) Height() uint32 {
	return bc.Latest().Header.Number
}

func (bc *BlockChain) BlockAt(number uint32) (*Block, error) {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	if int(number) >= len(bc.blocks) {
		return nil, fmt.Errorf("%w: number=%d, height=%d", ErrBlockNotFound, number, len(bc.blocks)-1)
	}
	return bc.blocks[number], nil
}

func (bc *BlockChain) BlockByHash(hash string) (*Block, error) {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	b, ok := bc.blocksMap[hash]
	if !ok {
		return nil, fmt.Errorf("%w: hash=%s", ErrBlockNotFound, hash)
	}
	return b, nil
}

// FindReceipt searches the chain from the tip for the receipt of handle
func (bc *BlockChain) FindReceipt(handle transaction.SignedTransactionHandle) (*Receipt, *Block, error) {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	for i := len(bc.blocks) - 1; i >= 0; i-- {
		if r, ok := bc.blocks[i].Receipt(handle); ok {
			return r, bc.blocks[i], nil
		}
	}
	return nil, nil, fmt.Errorf("%w: no receipt for txn %s", ErrBlockNotFound, handle)
}

func (bc *BlockChain) Append(block *Block) error {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	if err := bc.connect(block); err != nil {
		return err
	}
	bc.blocks = append(bc.blocks, block)
	bc.blocksMap[block.Hash()] = block
	return nil
}

func (bc *BlockChain) connect(block *Block) error {
	end := bc.blocks[len(bc.blocks)-1]
	if block.Header.Number != end.Header.Number+1 {
		return fmt.Errorf("block number(%d) cannot connect to end(number=%d), block=%s",
			block.Header.Number, end.Header.Number, block.String())
	}
	if block.Header.ParentHash != end.Hash() {
		return fmt.Errorf("block(parentHash=%s) cannot be connected to end(%s), block=%s",
			short(block.Header.ParentHash), short(end.Hash()), block.String())
	}
	return nil
}

func short(hash string) string {
	if len(hash) > 6 {
		return hash[:6] + "..."
	}
	return hash
}

func (bc *BlockChain) HashBytes() []byte {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	h := sha256.New()
	for i := len(bc.blocks) - 1; i >= 0; i-- {
		h.Write(bc.blocks[i].HashBytes())
	}
	return h.Sum(nil)
}

func (bc *BlockChain) Hash() string {
	return hex.EncodeToString(bc.HashBytes())
}

func (bc *BlockChain) String() string {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	// from latest to oldest
	arrow := "↑\n|\n"
	ret := bc.blocks[len(bc.blocks)-1].String()
	for i := len(bc.blocks) - 2; i >= 0; i-- {
		ret += arrow
		ret += bc.blocks[i].String()
	}
	return ret
}

// Display renders every block with its txns and receipts as a tree
func (bc *BlockChain) Display() string {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	root := gotree.New("chain")
	for _, b := range bc.blocks {
		node := root.Add(fmt.Sprintf("block %d %s", b.Header.Number, short(b.Hash())))
		for i, txn := range b.Transactions {
			leaf := node.Add(txn.Txn.String())
			if i < len(b.Receipts) {
				leaf.Add(b.Receipts[i].String())
				for _, e := range b.Receipts[i].Events {
					leaf.Add(fmt.Sprintf("%s %s", e.Type, e.Data))
				}
			}
		}
	}
	return root.Print()
}
