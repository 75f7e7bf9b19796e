package movielens

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/encoding/charmap"

	"github.com/rushteam/recodata/core"
	"github.com/rushteam/recodata/dataset"
)

// ItemOptions 指定要读取的电影列，列名为空表示不读取。
type ItemOptions struct {
	MovieCol  string // 电影 ID 列名，默认 itemID
	TitleCol  string
	GenresCol string // 多个类型以 | 连接
	YearCol   string // 从标题末尾的 "(yyyy)" 解析，缺失时为空字符串
}

func (o ItemOptions) empty() bool {
	return o.TitleCol == "" && o.GenresCol == "" && o.YearCol == ""
}

// LoadItems 读取电影信息（文件为 ISO-8859-1 编码）。
// 输出列依次为 MovieCol、TitleCol、GenresCol、YearCol 中非空的列；三个可选列都为空时返回 nil。
func LoadItems(src, size string, opts ItemOptions) (*dataset.Table, error) {
	format, err := FormatOf(size)
	if err != nil {
		return nil, err
	}
	if opts.empty() {
		return nil, nil
	}
	if opts.MovieCol == "" {
		opts.MovieCol = core.DefaultItemCol
	}
	flagGenres := strings.ToLower(size) == "100k"

	rc, err := openEntry(src, size, format.ItemPath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var (
		ids                  []int64
		titles, genres, year []string
	)
	r := charmap.ISO8859_1.NewDecoder().Reader(rc)
	err = readRecords(r, format.ItemSep, format.ItemHasHeader, func(line int, rec []string) error {
		need := 2
		if opts.GenresCol != "" {
			need = 3
			if flagGenres {
				need = 5 + len(Genres)
			}
		}
		if len(rec) < need {
			return parseError(format.ItemPath, line, "expected at least "+strconv.Itoa(need)+" fields", nil)
		}
		id, err := strconv.ParseInt(strings.TrimSpace(rec[0]), 10, 64)
		if err != nil {
			return parseError(format.ItemPath, line, "invalid movie id "+strconv.Quote(rec[0]), err)
		}
		ids = append(ids, id)
		titles = append(titles, rec[1])
		year = append(year, parseYear(rec[1]))
		if opts.GenresCol != "" {
			if flagGenres {
				genres = append(genres, genresFromFlags(rec[5:5+len(Genres)]))
			} else {
				genres = append(genres, rec[2])
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cols := []*dataset.Column{dataset.NewIntColumn(opts.MovieCol, ids)}
	if opts.TitleCol != "" {
		cols = append(cols, dataset.NewStringColumn(opts.TitleCol, titles))
	}
	if opts.GenresCol != "" {
		cols = append(cols, dataset.NewStringColumn(opts.GenresCol, genres))
	}
	if opts.YearCol != "" {
		cols = append(cols, dataset.NewStringColumn(opts.YearCol, year))
	}
	return dataset.NewTable(cols...)
}

// genresFromFlags 把 100k 数据的 0/1 标记位转换为 "Action|Romance" 形式。
func genresFromFlags(flags []string) string {
	var names []string
	for i, f := range flags {
		if strings.TrimSpace(f) == "1" {
			names = append(names, Genres[i])
		}
	}
	return strings.Join(names, "|")
}

// parseYear 从 "Title (1995)" 形式的标题中取出年份：按括号切分后取倒数第二段，
// 不是十进制数字时返回空字符串。
func parseYear(title string) string {
	parts := make([]string, 0, 4)
	start := 0
	for i := 0; i < len(title); i++ {
		if title[i] == '(' || title[i] == ')' {
			parts = append(parts, title[start:i])
			start = i + 1
		}
	}
	parts = append(parts, title[start:])
	if len(parts) <= 2 {
		return ""
	}
	candidate := parts[len(parts)-2]
	if candidate == "" || strings.IndexFunc(candidate, func(r rune) bool { return !unicode.IsDigit(r) }) >= 0 {
		return ""
	}
	return candidate
}
