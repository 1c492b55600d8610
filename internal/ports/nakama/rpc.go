package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"

	"dudo/internal/app"
)

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcQuickMatch, rpcQuickMatch); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcVerifyReceipt, rpcVerifyReceipt)
}

// VerifyReceiptRequest carries a receipt token issued at the end of a round.
type VerifyReceiptRequest struct {
	Receipt string `json:"receipt"`
}

// rpcVerifyReceipt checks the signature on a round receipt and returns its claims.
//
// Payload: {"receipt": "<token>"}
// Returns: the decoded app.RoundReceipt as JSON.
func rpcVerifyReceipt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	signer, err := app.NewReceiptSigner(env[EnvReceiptSecret], env[EnvReceiptIssuer])
	if err != nil {
		logger.Warn("VerifyReceipt: receipts are not configured: %v", err)
		return "", runtime.NewError("receipts are not enabled", 12)
	}
	return verifyReceipt(signer, payload)
}

func verifyReceipt(signer *app.ReceiptSigner, payload string) (string, error) {
	var req VerifyReceiptRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil || req.Receipt == "" {
		return "", runtime.NewError("payload must carry a receipt", 3)
	}

	receipt, err := signer.Verify(req.Receipt)
	if err != nil {
		return "", runtime.NewError(err.Error(), 3)
	}

	b, err := json.Marshal(receipt)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
