package movielens

import (
	"strconv"
	"strings"

	"github.com/rushteam/recodata/core"
	"github.com/rushteam/recodata/dataset"
	"github.com/rushteam/recodata/pkg/logging"
)

// LoadRatings 读取评分文件。
//
// header 依次为 user、item、rating、timestamp 的列名，省略时使用 DefaultHeader；
// 至少需要 2 个列名，超过 4 个时只取前 4 个。user/item/timestamp 为 Int，rating 为 Float。
func LoadRatings(src, size string, header ...string) (*dataset.Table, error) {
	format, err := FormatOf(size)
	if err != nil {
		return nil, err
	}
	header, err = normalizeHeader(header)
	if err != nil {
		return nil, err
	}

	rc, err := openEntry(src, size, format.Path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	ints := make([][]int64, len(header))
	var ratings []float64
	err = readRecords(rc, format.Sep, format.HasHeader, func(line int, rec []string) error {
		if len(rec) < len(header) {
			return parseError(format.Path, line, "expected at least "+strconv.Itoa(len(header))+" fields", nil)
		}
		for i := range header {
			v := strings.TrimSpace(rec[i])
			if i == 2 {
				f, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return parseError(format.Path, line, "invalid rating "+strconv.Quote(v), err)
				}
				ratings = append(ratings, f)
				continue
			}
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return parseError(format.Path, line, "invalid "+header[i]+" "+strconv.Quote(v), err)
			}
			ints[i] = append(ints[i], n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cols := make([]*dataset.Column, len(header))
	for i, name := range header {
		if i == 2 {
			cols[i] = dataset.NewFloatColumn(name, ratings)
		} else {
			cols[i] = dataset.NewIntColumn(name, ints[i])
		}
	}
	t, err := dataset.NewTable(cols...)
	if err != nil {
		return nil, err
	}
	logging.Debug().Str("size", size).Int("rows", t.Len()).Msg("movielens ratings loaded")
	return t, nil
}

// LoadRatingsWithItems 读取评分并与电影信息按物品列做内连接，评分行的顺序保持不变。
// opts 没有请求任何电影列时等同于 LoadRatings。
func LoadRatingsWithItems(src, size string, header []string, opts ItemOptions) (*dataset.Table, error) {
	header, err := normalizeHeader(header)
	if err != nil {
		return nil, err
	}
	ratings, err := LoadRatings(src, size, header...)
	if err != nil {
		return nil, err
	}
	opts.MovieCol = header[1]
	items, err := LoadItems(src, size, opts)
	if err != nil || items == nil {
		return ratings, err
	}
	return joinItems(ratings, items, header[1])
}

func joinItems(ratings, items *dataset.Table, itemCol string) (*dataset.Table, error) {
	itemIDs, _ := items.Column(itemCol)
	rowOf := make(map[int64]int, items.Len())
	for r, id := range itemIDs.Ints() {
		if _, dup := rowOf[id]; !dup {
			rowOf[id] = r
		}
	}

	ratingItems, _ := ratings.Column(itemCol)
	left := make([]int, 0, ratings.Len())
	right := make([]int, 0, ratings.Len())
	for r, id := range ratingItems.Ints() {
		if ir, ok := rowOf[id]; ok {
			left = append(left, r)
			right = append(right, ir)
		}
	}

	joined := ratings.Take(left)
	extra := items.Drop(itemCol).Take(right)
	for i := 0; i < extra.Width(); i++ {
		var err error
		if joined, err = joined.WithColumn(extra.ColumnAt(i)); err != nil {
			return nil, err
		}
	}
	return joined, nil
}

func normalizeHeader(header []string) ([]string, error) {
	if len(header) == 0 {
		return DefaultHeader, nil
	}
	if len(header) < 2 {
		return nil, core.NewDomainError(core.ModuleMovielens, core.ErrorCodeInvalidInput,
			"no header information, at least user and movie column names should be provided")
	}
	if len(header) > 4 {
		logging.Warn().Strs("header", header).
			Msg("movielens rating data has four columns (user, movie, rating, timestamp), only the first four names are used")
		header = header[:4]
	}
	return header, nil
}
