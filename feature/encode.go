package feature

import (
	"context"
	"sync"

	"github.com/rushteam/recodata/cache"
	"github.com/rushteam/recodata/core"
	"github.com/rushteam/recodata/dataset"
	"github.com/rushteam/recodata/libffm"
	"github.com/rushteam/recodata/pipeline"
	"github.com/rushteam/recodata/pkg/logging"
)

// EncodeNode 把训练表编码为 libffm token 表，可选写出文件并把编码器持久化到 Store。
//
// Reuse 为 true 且 Store 中已有 Key 对应的编码器时，直接用它 Transform，
// 保证训练集与测试集共用同一份特征索引；未配置 Store 时复用本节点上一次的编码器。
// 否则重新 Fit，内容相同的输入表只 Fit 一次。
type EncodeNode struct {
	NodeName  string
	RatingCol string
	Filepath  string

	Store core.Store
	Key   string
	TTL   int
	Reuse bool

	mu      sync.Mutex
	encoder *libffm.Encoder
	fits    *cache.TableFunc[*libffm.Encoder]
}

// fitCacheSize 是每个节点缓存的已 fit 编码器个数。
const fitCacheSize = 4

func (n *EncodeNode) Name() string {
	if n.NodeName != "" {
		return n.NodeName
	}
	return "libffm.encode"
}

func (n *EncodeNode) Kind() pipeline.Kind { return pipeline.KindEncode }

// Encoder 返回最近一次 Process 使用的编码器，尚未运行时为 nil。
func (n *EncodeNode) Encoder() *libffm.Encoder {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.encoder
}

func (n *EncodeNode) Process(ctx context.Context, t *dataset.Table) (*dataset.Table, error) {
	ratingCol := n.RatingCol
	if ratingCol == "" {
		ratingCol = core.DefaultRatingCol
	}
	persist := n.Store != nil && n.Key != ""

	if persist && n.Reuse {
		enc, err := libffm.LoadEncoder(ctx, n.Store, n.Key)
		switch {
		case err == nil:
			logging.Debug().Str("key", n.Key).Int("features", enc.FeatureCount()).Msg("reused stored libffm encoder")
			return n.transform(enc, t)
		case !core.IsStoreNotFound(err):
			return nil, err
		}
	}
	if !persist && n.Reuse {
		if enc := n.Encoder(); enc != nil {
			return n.transform(enc, t)
		}
	}

	enc, err := n.fitter(ratingCol).Call(t)
	if err != nil {
		return nil, err
	}
	out, err := n.transform(enc, t)
	if err != nil {
		return nil, err
	}
	if persist {
		if err := libffm.SaveEncoder(ctx, n.Store, n.Key, enc, n.TTL); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// FitCacheInfo 返回 Fit 缓存的命中统计。
func (n *EncodeNode) FitCacheInfo() cache.Info {
	n.mu.Lock()
	fits := n.fits
	n.mu.Unlock()
	if fits == nil {
		return cache.Info{MaxSize: fitCacheSize}
	}
	return fits.Info()
}

func (n *EncodeNode) transform(enc *libffm.Encoder, t *dataset.Table) (*dataset.Table, error) {
	if n.Filepath != "" {
		enc = enc.WithFilepath(n.Filepath)
	}
	out, err := enc.Transform(t)
	if err != nil {
		return nil, err
	}
	n.setEncoder(enc)
	return out, nil
}

func (n *EncodeNode) fitter(ratingCol string) *cache.TableFunc[*libffm.Encoder] {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fits == nil {
		n.fits = cache.Memoize(fitCacheSize, func(t *dataset.Table) (*libffm.Encoder, error) {
			return libffm.NewConverter().Fit(t, ratingCol)
		})
	}
	return n.fits
}

func (n *EncodeNode) setEncoder(enc *libffm.Encoder) {
	n.mu.Lock()
	n.encoder = enc
	n.mu.Unlock()
}
