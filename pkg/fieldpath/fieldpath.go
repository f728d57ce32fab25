package fieldpath

import (
	"strconv"
	"strings"
)

// Record 松散结构的源记录（Shopify 商品 JSON 解出来的 map）
type Record = map[string]interface{}

// Lookup 按路径只读取值，任何缺失/类型不符都返回 ok=false，绝不 panic
// 支持两种形式：
//   - 顶层键:          "vendor"
//   - 数组首元素下钻:   "variants[0].barcode"  （[0]. 是字面标记，只支持取第一个元素）
func Lookup(record Record, path string) (interface{}, bool) {
	if record == nil || path == "" {
		return nil, false
	}

	// 数组标记形式: field[0].nested
	if idx := strings.Index(path, "[0]."); idx > 0 {
		arrayField := path[:idx]
		nestedField := path[idx+len("[0]."):]
		if nestedField == "" {
			return nil, false
		}

		raw, ok := record[arrayField]
		if !ok {
			return nil, false
		}
		arr, ok := raw.([]interface{})
		if !ok || len(arr) == 0 {
			return nil, false
		}
		first, ok := arr[0].(map[string]interface{})
		if !ok {
			return nil, false
		}
		val, ok := first[nestedField]
		if !ok || val == nil {
			return nil, false
		}
		return val, true
	}

	val, ok := record[path]
	if !ok || val == nil {
		return nil, false
	}
	return val, true
}

// LookupString 取值并转成字符串，数字类值做十进制格式化
func LookupString(record Record, path string) (string, bool) {
	val, ok := Lookup(record, path)
	if !ok {
		return "", false
	}
	return Stringify(val)
}

// Stringify 把 JSON 解码出来的标量转成字符串
func Stringify(val interface{}) (string, bool) {
	switch v := val.(type) {
	case string:
		return v, true
	case float64:
		// encoding/json 的数字默认落成 float64
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}
