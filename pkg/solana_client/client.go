package solana_client

import (
	"github.com/gagliardetto/solana-go/rpc"
)

// Init 创建 RPC 客户端，endpoint 可带 api-key 查询参数
func Init(endpoint string) *rpc.Client {
	return rpc.New(endpoint)
}
