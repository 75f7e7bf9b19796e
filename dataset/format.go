package dataset

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// FormatValue 返回单元格的文本形式。
//
// 浮点数使用最短可往返表示，并且总带小数点或指数：1.0、2.5、1e-05、1e+16。
// 绝对值在 [1e-4, 1e16) 之外（0 除外）时使用指数形式。
func FormatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	case bool:
		if x {
			return "True"
		}
		return "False"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// WriteDelimited 将表写为文本：每行一条记录，字段以 sep 分隔，不做转义。
// header 为 true 时先写一行列名。
func WriteDelimited(w io.Writer, t *Table, sep string, header bool) error {
	bw := bufio.NewWriter(w)
	if header {
		if _, err := bw.WriteString(strings.Join(t.Columns(), sep) + "\n"); err != nil {
			return err
		}
	}
	fields := make([]string, t.Width())
	for r := 0; r < t.Len(); r++ {
		for i, c := range t.columns {
			fields[i] = c.Format(r)
		}
		if _, err := bw.WriteString(strings.Join(fields, sep)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
