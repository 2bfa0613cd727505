package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ExValues 请求参数容器，分为 query、body、header 三个部分
//
// 每个部分都记录 key 的首次出现顺序，编码时保持插入顺序，
// 这一点对签名至关重要：签名串和实际发送的请求必须逐字节一致。
//
// body 部分除了字符串形式外还保留原始类型，用于生成类型正确的 JSON
// （例如 Gate 合约的 size 必须是整数，reduce_only 必须是布尔值）。
type ExValues struct {
	query  section
	body   section
	header section
}

type section struct {
	order  []string
	values map[string][]string
	raw    map[string][]any
	// lists 以切片形式传入的 key，JSON 编码时始终输出数组
	lists  map[string]bool
}

func newSection() section {
	return section{
		order:  make([]string, 0),
		values: make(map[string][]string),
		raw:    make(map[string][]any),
		lists:  make(map[string]bool),
	}
}

func (s *section) set(key string, value any) {
	if _, ok := s.values[key]; !ok {
		s.order = append(s.order, key)
	}
	s.values[key] = nil
	s.raw[key] = nil
	delete(s.lists, key)
	s.add(key, value)
}

func (s *section) add(key string, value any) {
	if _, ok := s.values[key]; !ok {
		s.order = append(s.order, key)
	}
	if isList(value) {
		s.lists[key] = true
	}
	for _, item := range expand(value) {
		s.values[key] = append(s.values[key], formatValue(item))
		s.raw[key] = append(s.raw[key], item)
	}
	if s.values[key] == nil {
		s.values[key] = []string{}
	}
}

func (s *section) has(key string) bool {
	_, ok := s.values[key]
	return ok
}

func (s *section) get(key string) string {
	if vs := s.values[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func (s *section) encodeMap() map[string]any {
	m := make(map[string]any, len(s.values))
	for _, key := range s.order {
		vs := s.values[key]
		if len(vs) == 1 {
			m[key] = vs[0]
		} else if len(vs) > 1 {
			m[key] = vs
		}
	}
	return m
}

func (s *section) reset() {
	*s = newSection()
}

// NewExValues 创建参数容器
func NewExValues() *ExValues {
	return &ExValues{
		query:  newSection(),
		body:   newSection(),
		header: newSection(),
	}
}

// ========== query ==========

// SetQuery 设置 query 参数（覆盖已有值），切片会展开为多个值
func (v *ExValues) SetQuery(key string, value any) { v.query.set(key, value) }

// AddQuery 追加 query 参数
func (v *ExValues) AddQuery(key string, value any) { v.query.add(key, value) }

// HasQuery 是否存在 query 参数
func (v *ExValues) HasQuery(key string) bool { return v.query.has(key) }

// GetQuery 返回 query 参数的第一个值
func (v *ExValues) GetQuery(key string) string { return v.query.get(key) }

// EncodeQuery 按插入顺序编码为 URL query 字符串
func (v *ExValues) EncodeQuery() string {
	var buf strings.Builder
	for _, key := range v.query.order {
		keyEscaped := url.QueryEscape(key)
		for _, value := range v.query.values[key] {
			if buf.Len() > 0 {
				buf.WriteByte('&')
			}
			buf.WriteString(keyEscaped)
			buf.WriteByte('=')
			buf.WriteString(url.QueryEscape(value))
		}
	}
	return buf.String()
}

// JoinPath 将编码后的 query 拼接到 path 上
func (v *ExValues) JoinPath(path string) string {
	query := v.EncodeQuery()
	if query == "" {
		return path
	}
	if strings.Contains(path, "?") {
		return path + "&" + query
	}
	return path + "?" + query
}

// ========== body ==========

// SetBody 设置 body 参数（覆盖已有值）
func (v *ExValues) SetBody(key string, value any) { v.body.set(key, value) }

// AddBody 追加 body 参数
func (v *ExValues) AddBody(key string, value any) { v.body.add(key, value) }

// HasBody 是否存在 body 参数
func (v *ExValues) HasBody(key string) bool { return v.body.has(key) }

// GetBody 返回 body 参数的第一个值（字符串形式）
func (v *ExValues) GetBody(key string) string { return v.body.get(key) }

// EncodeBody 以字符串形式编码 body：单值为 string，多值为 []string
func (v *ExValues) EncodeBody() map[string]any { return v.body.encodeMap() }

// BodyLen 返回 body 中 key 的数量
func (v *ExValues) BodyLen() int { return len(v.body.order) }

// EncodeBodyJSON 按插入顺序将 body 编码为 JSON 对象，保留原始值类型
//
// 空 body 返回 nil，调用方据此决定是否发送请求体。
func (v *ExValues) EncodeBodyJSON() ([]byte, error) {
	if len(v.body.order) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range v.body.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')

		raws := v.body.raw[key]
		list := v.body.lists[key]
		var val []byte
		switch {
		case len(raws) == 0 && !list:
			val = []byte("null")
		case len(raws) == 1 && !list:
			val, err = marshalValue(raws[0])
		default:
			parts := make([][]byte, 0, len(raws))
			for _, r := range raws {
				b, mErr := marshalValue(r)
				if mErr != nil {
					return nil, mErr
				}
				parts = append(parts, b)
			}
			val = append(append([]byte{'['}, bytes.Join(parts, []byte{','})...), ']')
		}
		if err != nil {
			return nil, fmt.Errorf("encode body %s: %w", key, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ========== header ==========

// SetHeader 设置请求头（覆盖已有值）
func (v *ExValues) SetHeader(key string, value any) { v.header.set(key, value) }

// AddHeader 追加请求头
func (v *ExValues) AddHeader(key string, value any) { v.header.add(key, value) }

// HasHeader 是否存在请求头
func (v *ExValues) HasHeader(key string) bool { return v.header.has(key) }

// GetHeader 返回请求头的第一个值
func (v *ExValues) GetHeader(key string) string { return v.header.get(key) }

// EncodeHeader 编码请求头：单值为 string，多值为 []string
func (v *ExValues) EncodeHeader() map[string]any { return v.header.encodeMap() }

// Headers 返回单值请求头，多值时取第一个
func (v *ExValues) Headers() map[string]string {
	m := make(map[string]string, len(v.header.order))
	for _, key := range v.header.order {
		m[key] = v.header.get(key)
	}
	return m
}

// Reset 清空全部参数
func (v *ExValues) Reset() {
	v.query.reset()
	v.body.reset()
	v.header.reset()
}

// expand 将切片/数组展开为多个值，json.RawMessage 与 []byte 视为单值
func isList(value any) bool {
	switch value.(type) {
	case nil, json.RawMessage, []byte, string:
		return false
	}
	k := reflect.ValueOf(value).Kind()
	return k == reflect.Slice || k == reflect.Array
}

func expand(value any) []any {
	switch value.(type) {
	case nil:
		return nil
	case json.RawMessage, []byte, string:
		return []any{value}
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]any, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out = append(out, rv.Index(i).Interface())
		}
		return out
	}
	return []any{value}
}

func formatValue(value any) string {
	switch t := value.(type) {
	case string:
		return t
	case json.RawMessage:
		return string(t)
	case []byte:
		return string(t)
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case decimal.Decimal:
		return t.String()
	case ExDecimal:
		return t.Decimal.String()
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// marshalValue 将 body 值编码为 JSON，decimal 以字符串输出以避免精度损失
func marshalValue(value any) ([]byte, error) {
	switch t := value.(type) {
	case json.RawMessage:
		return t, nil
	case decimal.Decimal:
		return json.Marshal(t.String())
	case ExDecimal:
		return json.Marshal(t.Decimal.String())
	case time.Time:
		return json.Marshal(t.UTC().Format(time.RFC3339Nano))
	default:
		return json.Marshal(t)
	}
}
