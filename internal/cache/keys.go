package cache

import (
	"strconv"

	"github.com/quickcart-next/internal/constants"
)

// CustomerCartKey 客户购物车缓存键。每个客户恰好一个键，失效时按键精确命中；
// 不可当作前缀使用（"…:1" 是 "…:10" 的字符串前缀）。
func CustomerCartKey(customerID uint) string {
	return constants.CacheKeyCartPrefix + strconv.FormatUint(uint64(customerID), 10)
}
