package blockchain

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"go.dedis.ch/streamchain/blockchain/account"
	"go.dedis.ch/streamchain/blockchain/block"
	"go.dedis.ch/streamchain/blockchain/storage"
	"go.dedis.ch/streamchain/contract/streaming"
)

func TestFullNodeMinesOwnTxns(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	self := account.NewAccountBuilder(crypto.FromECDSAPub(&key.PublicKey), storage.CreateSimpleKV).
		WithBalance(100).Build()
	destKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	dest := account.NewAddressFromPublicKey(crypto.FromECDSAPub(&destKey.PublicKey))

	node := NewFullNode(&FullNodeConf{
		Addr:              "node",
		PrivateKey:        key,
		Bootstrap:         block.NewBlockChainWithGenesis(block.NewGenesis(storage.CreateSimpleKV, self)),
		KVFactory:         storage.CreateSimpleKV,
		BlockTransactions: 1,
	})
	require.Equal(t, self.GetAddr(), node.Address())

	node.Start()
	txn, err := node.Transfer(dest, 40)
	require.NoError(t, err)
	require.NoError(t, node.Submit(txn))
	require.Eventually(t, func() bool { return node.GetChain().Height() == 1 }, time.Second, 10*time.Millisecond)
	node.Stop()

	latest := node.GetChain().Latest()
	require.Equal(t, *node.Address(), latest.Header.Beneficiary)
	state, err := node.GetAccount(dest)
	require.NoError(t, err)
	require.Equal(t, uint64(40), state.Balance)

	// a restarted node resumes from the chain nonce
	node.SetNonce(0)
	node.Start()
	defer node.Stop()
	require.Equal(t, uint64(1), node.Nonce())
}

func TestSimulationDeploys(t *testing.T) {
	sim, err := NewSimulation(SimulationConf{
		Accounts:  []string{"deployer", "alice", "bob"},
		Balance:   1000,
		Deployer:  "deployer",
		Contracts: []ContractCode{{Name: streaming.Name, Factory: streaming.New}},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"deployer", "alice", "bob"}, sim.Names())
	require.Equal(t, uint32(1), sim.GetChain().Height())
	require.Len(t, sim.DeployBlock.Receipts, 1)

	platform, err := sim.Contract(streaming.Name)
	require.NoError(t, err)
	deployer, err := sim.Wallet("deployer")
	require.NoError(t, err)
	owner, err := sim.CallReadOnly(platform, deployer.Address(), "get-platform-owner")
	require.NoError(t, err)
	require.Equal(t, deployer.Principal(), owner)

	alice, err := sim.Wallet("alice")
	require.NoError(t, err)
	bob, err := sim.Wallet("bob")
	require.NoError(t, err)
	state, err := sim.GetAccount(alice.Address())
	require.NoError(t, err)
	require.Equal(t, uint64(1000), state.Balance)

	// too large, rejected without consuming the nonce
	rejected, err := alice.Transfer(bob.Address(), 5000)
	require.NoError(t, err)
	_, err = sim.MineBlock(rejected)
	require.NoError(t, err)
	require.NoError(t, sim.SyncNonces())
	require.Equal(t, uint64(0), alice.Nonce())

	_, err = sim.Wallet("carol")
	require.Error(t, err)
}

func TestSimulationConfErrors(t *testing.T) {
	_, err := NewSimulation(SimulationConf{Accounts: []string{"a", "a"}})
	require.ErrorContains(t, err, "declared twice")

	_, err = NewSimulation(SimulationConf{
		Accounts:  []string{"a"},
		Deployer:  "nobody",
		Contracts: []ContractCode{{Name: streaming.Name, Factory: streaming.New}},
	})
	require.Error(t, err)

	sim, err := NewSimulation(SimulationConf{Accounts: []string{"a"}, Balance: 1})
	require.NoError(t, err)
	require.Nil(t, sim.DeployBlock)
	require.Equal(t, uint32(0), sim.GetChain().Height())
}
