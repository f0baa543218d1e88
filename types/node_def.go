package types

// InfoMessage describes the node and the tip of its chain
type InfoMessage struct {
	Miner     string   `json:"miner"`
	Height    uint32   `json:"height"`
	TipHash   string   `json:"tip_hash"`
	Contracts []string `json:"contracts"` // registered contract codes
}

// AccountMessage is the latest state of an account
type AccountMessage struct {
	Principal string `json:"principal"`
	Balance   uint64 `json:"balance"`
	Nonce     uint64 `json:"nonce"`
	Contract  string `json:"contract,omitempty"` // code name for contract accounts
}

// ErrorMessage is returned with any non-2xx status
type ErrorMessage struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id"`
}
