// Package client talks to a node api over HTTP. A Client is a
// wallet.Submitter, so a wallet can sign locally and submit remotely.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"go.dedis.ch/streamchain/api"
	"go.dedis.ch/streamchain/blockchain/account"
	"go.dedis.ch/streamchain/blockchain/transaction"
	"go.dedis.ch/streamchain/contract/parser"
	"go.dedis.ch/streamchain/contract/value"
	"go.dedis.ch/streamchain/logging"
	"go.dedis.ch/streamchain/types"
	"golang.org/x/xerrors"
)

// APIError is a non-2xx reply of the node
type APIError struct {
	Code      int
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s (request %s)", e.Code, e.Message, e.RequestID)
}

// IsNotFound reports whether err is a 404 of the node
func IsNotFound(err error) bool {
	var apiErr *APIError
	return xerrors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}

type Client struct {
	logger zerolog.Logger
	base   string
	http   *http.Client
}

// NewClient targets the api at base, e.g. http://127.0.0.1:20443
func NewClient(base string) *Client {
	return &Client{
		logger: logging.RootLogger.With().Str("Client", base).Logger(),
		base:   strings.TrimRight(base, "/"),
		http:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body bytes.Buffer
	if in != nil {
		if err := json.NewEncoder(&body).Encode(in); err != nil {
			return xerrors.Errorf("encode request: %v", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, &body)
	if err != nil {
		return xerrors.Errorf("new request: %v", err)
	}
	id := xid.New().String()
	req.Header.Set(api.RequestIDHeader, id)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug().Str("request", id).Str("method", method).Str("path", path).Msg("send")
	resp, err := c.http.Do(req)
	if err != nil {
		return xerrors.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var msg types.ErrorMessage
		if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
			msg.Error = resp.Status
		}
		return &APIError{Code: resp.StatusCode, Message: msg.Error, RequestID: id}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return xerrors.Errorf("decode %s reply: %v", path, err)
	}
	return nil
}

func (c *Client) Info(ctx context.Context) (*types.InfoMessage, error) {
	var info types.InfoMessage
	if err := c.do(ctx, http.MethodGet, "/v2/info", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) Account(ctx context.Context, addr *account.Address) (*types.AccountMessage, error) {
	var acc types.AccountMessage
	if err := c.do(ctx, http.MethodGet, "/v2/accounts/"+addr.String(), nil, &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

// Block fetches block number height, or the tip if height is "latest"
func (c *Client) Block(ctx context.Context, height string) (*types.BlockMessage, error) {
	var msg types.BlockMessage
	if err := c.do(ctx, http.MethodGet, "/v2/blocks/"+height, nil, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *Client) Submit(ctx context.Context, txn *transaction.SignedTransaction) (transaction.SignedTransactionHandle, error) {
	var reply types.SubmitTransactionReplyMessage
	err := c.do(ctx, http.MethodPost, "/v2/transactions", types.SubmitTransactionMessage{Txn: *txn}, &reply)
	if err != nil {
		return "", err
	}
	return reply.Handle, nil
}

// SubmitTxn implements wallet.Submitter
func (c *Client) SubmitTxn(txn *transaction.SignedTransaction) error {
	_, err := c.Submit(context.Background(), txn)
	return err
}

func (c *Client) Receipt(ctx context.Context, handle transaction.SignedTransactionHandle) (*types.ReceiptMessage, error) {
	var msg types.ReceiptMessage
	if err := c.do(ctx, http.MethodGet, "/v2/receipts/"+string(handle), nil, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// WaitReceipt polls until the txn is mined or ctx is done
func (c *Client) WaitReceipt(ctx context.Context, handle transaction.SignedTransactionHandle,
	every time.Duration) (*types.ReceiptMessage, error) {

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		msg, err := c.Receipt(ctx, handle)
		if err == nil {
			return msg, nil
		}
		if !IsNotFound(err) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, xerrors.Errorf("wait receipt %s: %w", handle, ctx.Err())
		case <-ticker.C:
		}
	}
}

// CallReadOnly evaluates function at the tip of the node. A failed call is
// returned as an error holding its cause.
func (c *Client) CallReadOnly(ctx context.Context, contractAddr, sender *account.Address,
	function string, args ...value.Value) (value.Value, error) {

	msg := types.ReadOnlyCallMessage{Sender: sender.String(), Arguments: make([]string, 0, len(args))}
	for _, a := range args {
		msg.Arguments = append(msg.Arguments, a.String())
	}
	var reply types.ReadOnlyCallReplyMessage
	path := fmt.Sprintf("/v2/contracts/call-read/%s/%s", contractAddr, function)
	if err := c.do(ctx, http.MethodPost, path, msg, &reply); err != nil {
		return nil, err
	}
	if !reply.Okay {
		return nil, xerrors.Errorf("call %s: %s", function, reply.Cause)
	}
	result, err := parser.ParseValue(reply.Result)
	if err != nil {
		return nil, xerrors.Errorf("call %s result: %v", function, err)
	}
	return result, nil
}
