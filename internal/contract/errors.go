package contract

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// Adapter errors. Callers match them with errors.Is; the wrapped message
// carries the detail.
var (
	// ErrContractUnavailable means no usable contract address is configured.
	ErrContractUnavailable = errors.New("contract unavailable")
	ErrReadFailed          = errors.New("contract read failed")
	ErrWriteFailed         = errors.New("contract write failed")
	ErrDecodeFailed        = errors.New("decoding contract result failed")
	ErrNoSignerAvailable   = errors.New("no signer available")
)

// RevertReason extracts a human readable revert reason from a node error.
// Nodes that attach the revert data get it ABI-decoded; otherwise the
// message is searched for the usual "execution reverted" text.
func RevertReason(err error) string {
	if err == nil {
		return ""
	}
	var de rpc.DataError
	if errors.As(err, &de) {
		if s, ok := de.ErrorData().(string); ok {
			if data, derr := hexutil.Decode(s); derr == nil {
				if reason, uerr := abi.UnpackRevert(data); uerr == nil {
					return reason
				}
			}
		}
	}
	return extractRevertReason(err.Error())
}

func extractRevertReason(errMsg string) string {
	// Common pattern: "execution reverted: <reason>"
	if idx := strings.Index(errMsg, "execution reverted:"); idx >= 0 {
		return strings.TrimSpace(errMsg[idx+len("execution reverted:"):])
	}
	if idx := strings.Index(errMsg, "revert"); idx >= 0 {
		return strings.TrimSpace(errMsg[idx:])
	}
	return errMsg
}
