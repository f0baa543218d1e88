package types

// ReadOnlyCallMessage asks a node to evaluate a read-only function.
// Arguments use the value literal syntax: u1, u"title", 'ADDR...
type ReadOnlyCallMessage struct {
	Sender    string   `json:"sender"`
	Arguments []string `json:"arguments"`
}

// ReadOnlyCallReplyMessage holds the literal result, or the cause of failure
type ReadOnlyCallReplyMessage struct {
	Okay   bool   `json:"okay"`
	Result string `json:"result,omitempty"`
	Cause  string `json:"cause,omitempty"`
}
