package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

// ContextBody is the gin context key holding the parsed request body.
const ContextBody = "body"

// JSONBody decodes application/json request bodies into generic values stored
// under ContextBody. The raw body is put back so handlers can still bind it.
// A malformed body ends the request with 400.
func JSONBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.ContentType() != gin.MIMEJSON || c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}

		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(raw))

		if len(bytes.TrimSpace(raw)) == 0 {
			c.Next()
			return
		}

		var body any
		if err := json.Unmarshal(raw, &body); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
			return
		}
		c.Set(ContextBody, body)
		c.Next()
	}
}

// URLEncodedBody parses application/x-www-form-urlencoded bodies with nested
// bracket syntax (a[b]=1, a[]=1&a[]=2, a[0]=x) into a map stored under
// ContextBody. Repeated keys collect into a slice.
func URLEncodedBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.ContentType() != gin.MIMEPOSTForm || c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}

		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid form body"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(raw))

		c.Set(ContextBody, ParseNestedForm(string(raw)))
		c.Next()
	}
}

// maxFormIndex is the largest bracket index treated as an array position.
// Larger indexes stay object keys so a[999999]=x cannot allocate a huge slice.
const maxFormIndex = 20

// formArray collects indexed values until the whole body is read.
type formArray struct {
	items map[int]any
	next  int
}

func newFormArray() *formArray {
	return &formArray{items: make(map[int]any)}
}

func (a *formArray) set(i int, v any) {
	a.items[i] = v
	if i >= a.next {
		a.next = i + 1
	}
}

// ParseNestedForm expands bracketed keys into nested maps and slices.
// Only '&' separates pairs. Keys are applied in their original order so
// a[]=x&a[]=y keeps x before y. Sparse indexes are compacted.
func ParseNestedForm(raw string) map[string]any {
	out := make(map[string]any)
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key := unescapeForm(k)
		if key == "" {
			continue
		}
		assign(out, splitKey(key), unescapeForm(v))
	}
	return finalize(out).(map[string]any)
}

// unescapeForm decodes s, keeping it as is when the escapes are malformed.
func unescapeForm(s string) string {
	if u, err := url.QueryUnescape(s); err == nil {
		return u
	}
	return s
}

// splitKey turns "a[b][]" into ["a", "b", ""].
func splitKey(key string) []string {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return []string{key}
	}
	parts := []string{key[:open]}
	rest := key[open:]
	for len(rest) > 0 {
		if rest[0] != '[' {
			// 不正な形式は残りをそのまま最後のセグメントとして扱う
			parts[len(parts)-1] += rest
			break
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			parts[len(parts)-1] += rest
			break
		}
		parts = append(parts, rest[1:end])
		rest = rest[end+1:]
	}
	return parts
}

func formIndex(seg string) (int, bool) {
	if seg == "" || len(seg) > 2 {
		return 0, false
	}
	i, err := strconv.Atoi(seg)
	if err != nil || i < 0 || i > maxFormIndex || strconv.Itoa(i) != seg {
		return 0, false
	}
	return i, true
}

func assign(m map[string]any, path []string, value string) {
	head := path[0]
	if len(path) == 1 {
		m[head] = combine(m[head], value)
		return
	}

	next := path[1]
	idx, isIndex := formIndex(next)
	if next == "" || isIndex {
		if arr := arrayAt(m, head); arr != nil {
			if next == "" {
				// a[]=v は末尾への追加
				idx = arr.next
			}
			if len(path) == 2 {
				if next == "" {
					arr.set(idx, value)
				} else {
					arr.set(idx, combine(arr.items[idx], value))
				}
				return
			}
			child, ok := arr.items[idx].(map[string]any)
			if !ok || next == "" {
				child = make(map[string]any)
				arr.set(idx, child)
			}
			assign(child, path[2:], value)
			return
		}
	}

	child := objectAt(m, head)
	assign(child, path[1:], value)
}

// combine merges a repeated key: the first value is kept as is, later ones
// turn it into a list.
func combine(existing any, value string) any {
	switch cur := existing.(type) {
	case nil:
		return value
	case *formArray:
		cur.set(cur.next, value)
		return cur
	default:
		arr := newFormArray()
		arr.set(0, cur)
		arr.set(1, value)
		return arr
	}
}

// arrayAt returns the list stored at m[key], creating or promoting it.
// It returns nil when m[key] already holds an object.
func arrayAt(m map[string]any, key string) *formArray {
	switch cur := m[key].(type) {
	case nil:
		arr := newFormArray()
		m[key] = arr
		return arr
	case *formArray:
		return cur
	case map[string]any:
		return nil
	default:
		// a=1&a[]=2 は ["1","2"]
		arr := newFormArray()
		arr.set(0, cur)
		m[key] = arr
		return arr
	}
}

// objectAt returns the object stored at m[key], converting a list into an
// object keyed by index when a named key follows.
func objectAt(m map[string]any, key string) map[string]any {
	switch cur := m[key].(type) {
	case map[string]any:
		return cur
	case *formArray:
		obj := make(map[string]any, len(cur.items))
		for i, v := range cur.items {
			obj[strconv.Itoa(i)] = v
		}
		m[key] = obj
		return obj
	case nil:
		obj := make(map[string]any)
		m[key] = obj
		return obj
	default:
		// a=1&a[b]=2 は a を {"0":"1","b":"2"} にする
		obj := map[string]any{"0": cur}
		m[key] = obj
		return obj
	}
}

// finalize replaces every formArray with a slice ordered by index.
func finalize(v any) any {
	switch cur := v.(type) {
	case map[string]any:
		for k, child := range cur {
			cur[k] = finalize(child)
		}
		return cur
	case *formArray:
		idx := make([]int, 0, len(cur.items))
		for i := range cur.items {
			idx = append(idx, i)
		}
		sort.Ints(idx)
		list := make([]any, 0, len(idx))
		for _, i := range idx {
			list = append(list, finalize(cur.items[i]))
		}
		return list
	default:
		return v
	}
}
