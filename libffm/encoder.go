package libffm

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/rushteam/recodata/core"
	"github.com/rushteam/recodata/dataset"
	"github.com/rushteam/recodata/pkg/logging"
)

// Field 是 fit 时记录的字段（列名与列类型）。
type Field struct {
	Name string       `json:"name"`
	Kind dataset.Kind `json:"kind"`
}

// Feature 是一个类别特征及其编号。
type Feature struct {
	Field string `json:"field"`
	Value string `json:"value"`
	Index int    `json:"index"`
}

type featureKey struct {
	field string
	value string
}

// Encoder 是 fit 之后的编码器，创建后不可变，可以反复 Transform。
type Encoder struct {
	ratingCol string
	fields    []Field
	features  []Feature // 按编号顺序，features[i].Index == i+1
	index     map[featureKey]int
	filepath  string
}

func (e *Encoder) addFeature(field, value string) {
	k := featureKey{field: field, value: value}
	if _, ok := e.index[k]; ok {
		return
	}
	idx := len(e.features) + 1
	e.index[k] = idx
	e.features = append(e.features, Feature{Field: field, Value: value, Index: idx})
}

func (e *Encoder) RatingColumn() string { return e.ratingCol }

// FieldNames 返回字段名（不含评分列），顺序即 field 编号顺序。
func (e *Encoder) FieldNames() []string {
	names := make([]string, len(e.fields))
	for i, f := range e.fields {
		names[i] = f.Name
	}
	return names
}

func (e *Encoder) Fields() []Field { return append([]Field(nil), e.fields...) }

func (e *Encoder) FieldCount() int { return len(e.fields) }

func (e *Encoder) FeatureCount() int { return len(e.features) }

// Features 返回全部类别特征，按编号升序。
func (e *Encoder) Features() []Feature { return append([]Feature(nil), e.features...) }

// FeatureIndex 查询 (field, value) 的编号。
func (e *Encoder) FeatureIndex(field, value string) (int, bool) {
	idx, ok := e.index[featureKey{field: field, value: value}]
	return idx, ok
}

func (e *Encoder) Filepath() string { return e.filepath }

// WithFilepath 返回输出到 path 的副本，索引共享。
func (e *Encoder) WithFilepath(path string) *Encoder {
	cp := *e
	cp.filepath = path
	return &cp
}

// Params 返回编码器参数："field count"、"feature count"、"file path"（未设置时为 nil）。
func (e *Encoder) Params() map[string]any {
	var path any
	if e.filepath != "" {
		path = e.filepath
	}
	return map[string]any{
		"field count":   e.FieldCount(),
		"feature count": e.FeatureCount(),
		"file path":     path,
	}
}

// Transform 把与 fit 时同结构的表编码为 libffm 格式，返回新表，不修改输入。
//
// 缺少评分列或任一字段列时返回 SCHEMA 错误；字段列为 bool 或与 fit 时的类别/数值类型不符时返回 TYPE 错误；
// 类别值不在索引中时返回 UNSEEN_FEATURE 错误。设置了输出文件时同时写文件。
func (e *Encoder) Transform(t *dataset.Table) (*dataset.Table, error) {
	rating, ok := t.Column(e.ratingCol)
	if !ok {
		return nil, core.NewDomainError(core.ModuleLibffm, core.ErrorCodeSchema,
			fmt.Sprintf("input table does not contain the rating column %s", e.ratingCol))
	}
	if err := dataset.RequireColumns(t, e.FieldNames()...); err != nil {
		return nil, core.WrapDomainError(core.ModuleLibffm, core.ErrorCodeSchema,
			"not all fitted fields appear in the input table", err)
	}

	cols := make([]*dataset.Column, 0, len(e.fields)+1)
	cols = append(cols, rating)
	for i, f := range e.fields {
		col, _ := t.Column(f.Name)
		tokens, err := e.encodeColumn(i+1, f, col)
		if err != nil {
			return nil, err
		}
		cols = append(cols, dataset.NewStringColumn(f.Name, tokens))
	}
	out, err := dataset.NewTable(cols...)
	if err != nil {
		return nil, err
	}

	if e.filepath != "" {
		if err := writeFile(e.filepath, out); err != nil {
			return nil, err
		}
		logging.Debug().Str("path", e.filepath).Int("rows", out.Len()).Msg("libffm file written")
	}
	return out, nil
}

// encodeColumn 按 fit 时记录的字段类型编码一列。类别字段必须仍是字符串列，
// 数值字段必须仍是数值列（int 与 float 可互换）。
func (e *Encoder) encodeColumn(fieldIndex int, f Field, col *dataset.Column) ([]string, error) {
	if (f.Kind == dataset.KindString) != (col.Kind() == dataset.KindString) ||
		(f.Kind.Numeric() && !col.Kind().Numeric()) {
		return nil, core.NewDomainError(core.ModuleLibffm, core.ErrorCodeType,
			fmt.Sprintf("field %s was fitted as %s but is %s", f.Name, f.Kind, col.Kind()))
	}
	fi := strconv.Itoa(fieldIndex)
	tokens := make([]string, col.Len())
	switch col.Kind() {
	case dataset.KindString:
		for r, v := range col.Strings() {
			idx, ok := e.index[featureKey{field: col.Name(), value: v}]
			if !ok {
				return nil, core.NewDomainError(core.ModuleLibffm, core.ErrorCodeUnseenFeature,
					fmt.Sprintf("unseen categorical feature for field %s: value %q", col.Name(), v))
			}
			tokens[r] = fi + ":" + strconv.Itoa(idx) + ":1"
		}
	case dataset.KindInt, dataset.KindFloat:
		prefix := fi + ":" + fi + ":"
		for r := range tokens {
			tokens[r] = prefix + col.Format(r)
		}
	default:
		return nil, core.NewDomainError(core.ModuleLibffm, core.ErrorCodeType,
			fmt.Sprintf("field %s has unsupported kind %s", col.Name(), col.Kind()))
	}
	return tokens, nil
}

func writeFile(path string, t *dataset.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("libffm: create %s: %w", path, err)
	}
	if err := dataset.WriteDelimited(f, t, " ", false); err != nil {
		f.Close()
		return fmt.Errorf("libffm: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("libffm: close %s: %w", path, err)
	}
	return nil
}

type encoderState struct {
	RatingColumn string    `json:"rating_column"`
	Fields       []Field   `json:"fields"`
	Features     []Feature `json:"features"`
}

// MarshalJSON 序列化字段与有序索引，不包含输出文件路径。
func (e *Encoder) MarshalJSON() ([]byte, error) {
	return json.Marshal(encoderState{
		RatingColumn: e.ratingCol,
		Fields:       e.fields,
		Features:     e.features,
	})
}

// UnmarshalJSON 恢复编码器，并校验编号从 1 开始连续、特征所属字段为字符串字段。
func (e *Encoder) UnmarshalJSON(data []byte) error {
	var st encoderState
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	invalid := func(msg string) error {
		return core.NewDomainError(core.ModuleLibffm, core.ErrorCodeInvalidInput, "libffm encoder state: "+msg)
	}
	if st.RatingColumn == "" {
		return invalid("empty rating column")
	}

	kinds := make(map[string]dataset.Kind, len(st.Fields))
	for _, f := range st.Fields {
		if f.Name == st.RatingColumn {
			return invalid(fmt.Sprintf("field %s is the rating column", f.Name))
		}
		if _, dup := kinds[f.Name]; dup {
			return invalid(fmt.Sprintf("duplicate field %s", f.Name))
		}
		if !supportedKind(f.Kind) {
			return invalid(fmt.Sprintf("field %s has unsupported kind %s", f.Name, f.Kind))
		}
		kinds[f.Name] = f.Kind
	}

	restored := Encoder{
		ratingCol: st.RatingColumn,
		fields:    st.Fields,
		index:     make(map[featureKey]int, len(st.Features)),
		filepath:  e.filepath,
	}
	for i, ft := range st.Features {
		if ft.Index != i+1 {
			return invalid(fmt.Sprintf("feature %d has index %d", i+1, ft.Index))
		}
		if k, ok := kinds[ft.Field]; !ok || k != dataset.KindString {
			return invalid(fmt.Sprintf("feature %s:%s does not belong to a categorical field", ft.Field, ft.Value))
		}
		if _, dup := restored.index[featureKey{ft.Field, ft.Value}]; dup {
			return invalid(fmt.Sprintf("duplicate feature %s:%s", ft.Field, ft.Value))
		}
		restored.addFeature(ft.Field, ft.Value)
	}
	*e = restored
	return nil
}
