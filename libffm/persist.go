package libffm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rushteam/recodata/core"
)

// SaveEncoder 把编码器以 JSON 写入 store，ttl 单位为秒。
func SaveEncoder(ctx context.Context, s core.Store, key string, enc *Encoder, ttl ...int) error {
	data, err := json.Marshal(enc)
	if err != nil {
		return fmt.Errorf("libffm: marshal encoder: %w", err)
	}
	if err := s.Set(ctx, key, data, ttl...); err != nil {
		return fmt.Errorf("libffm: save encoder to %s: %w", s.Name(), err)
	}
	return nil
}

// LoadEncoder 从 store 读取编码器；key 不存在时返回的错误满足 core.IsStoreNotFound。
func LoadEncoder(ctx context.Context, s core.Store, key string) (*Encoder, error) {
	data, err := s.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("libffm: load encoder from %s: %w", s.Name(), err)
	}
	enc := &Encoder{}
	if err := json.Unmarshal(data, enc); err != nil {
		return nil, fmt.Errorf("libffm: decode encoder %s: %w", key, err)
	}
	return enc, nil
}
