// Package movielens 读取 MovieLens 数据集（100k/1m/10m/20m）为 dataset.Table。
//
// 数据来源可以是 GroupLens 的原始 zip 文件，也可以是存放该 zip 或其解压结果的目录。
// Download 负责按需下载。
package movielens

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rushteam/recodata/core"
)

// Format 描述某个规模的数据文件在压缩包中的位置与分隔符。
type Format struct {
	Sep       string
	Path      string
	HasHeader bool

	ItemSep       string
	ItemPath      string
	ItemHasHeader bool
}

// 10m 与 20m 没有用户信息文件。
var formats = map[string]Format{
	"100k": {Sep: "\t", Path: "ml-100k/u.data", ItemSep: "|", ItemPath: "ml-100k/u.item"},
	"1m":   {Sep: "::", Path: "ml-1m/ratings.dat", ItemSep: "::", ItemPath: "ml-1m/movies.dat"},
	"10m":  {Sep: "::", Path: "ml-10M100K/ratings.dat", ItemSep: "::", ItemPath: "ml-10M100K/movies.dat"},
	"20m": {
		Sep: ",", Path: "ml-20m/ratings.csv", HasHeader: true,
		ItemSep: ",", ItemPath: "ml-20m/movies.csv", ItemHasHeader: true,
	},
}

// Genres 是 100k 数据 u.item 中 19 个类型标记位对应的名称。其他规模的数据直接给出类型字符串。
var Genres = [19]string{
	"unknown",
	"Action",
	"Adventure",
	"Animation",
	"Children's",
	"Comedy",
	"Crime",
	"Documentary",
	"Drama",
	"Fantasy",
	"Film-Noir",
	"Horror",
	"Musical",
	"Mystery",
	"Romance",
	"Sci-Fi",
	"Thriller",
	"War",
	"Western",
}

// DefaultHeader 是评分文件的默认列名。
var DefaultHeader = []string{
	core.DefaultUserCol,
	core.DefaultItemCol,
	core.DefaultRatingCol,
	core.DefaultTimestampCol,
}

// Sizes 返回支持的数据规模。
func Sizes() []string {
	sizes := make([]string, 0, len(formats))
	for s := range formats {
		sizes = append(sizes, s)
	}
	slices.Sort(sizes)
	return sizes
}

// FormatOf 返回数据规模对应的格式，size 不区分大小写。
func FormatOf(size string) (Format, error) {
	f, ok := formats[strings.ToLower(size)]
	if !ok {
		return Format{}, core.NewDomainError(core.ModuleMovielens, core.ErrorCodeInvalidInput,
			fmt.Sprintf("invalid data size %q, should be one of {100k, 1m, 10m, 20m}", size))
	}
	return f, nil
}

func archiveName(size string) string {
	return "ml-" + strings.ToLower(size) + ".zip"
}
