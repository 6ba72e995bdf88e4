package fastjson

import (
	"fmt"
	"io"

	"github.com/k0kubun/pp/v3"
	"github.com/mcvoid/fastjson/internal/intern"
)

// keyCache and stringCache back Options.CacheKeys/CacheStrings. oj keeps
// four separate tables (cache.c's key cache, a short-value cache, and a
// pair of class/attribute-name caches used by its object-dump path); this
// module collapses that to two, one per spec.md concern it actually has
// (object keys, short string values) — there's no separate
// class/attribute-name concept here distinct from an ordinary object key,
// so a third and fourth table would just be an empty mirror of keyCache.
var (
	keyCache    = intern.NewDefault()
	stringCache = intern.NewDefault()
)

// NopDelegate implements the Validate delegate of spec.md §4.6: it lets
// the parser run its full grammar and error checks but discards every
// event, the Go shape of original_source/ext/oj's validate.c (which
// drives the parser purely for its side effect of returning an error or
// not).
type NopDelegate struct{}

func (NopDelegate) OpenObject() bool   { return false }
func (NopDelegate) CloseObject() bool  { return false }
func (NopDelegate) OpenArray() bool    { return false }
func (NopDelegate) CloseArray() bool   { return false }
func (NopDelegate) Null() bool         { return false }
func (NopDelegate) Bool(bool) bool     { return false }
func (NopDelegate) Int(int64) bool     { return false }
func (NopDelegate) Float(float64) bool { return false }
func (NopDelegate) Big(string) bool    { return false }
func (NopDelegate) Str([]byte) bool    { return false }
func (NopDelegate) Key([]byte) bool    { return false }

// Validate reports whether data is well-formed JSON under opts, without
// building any result.
func Validate(data []byte, opts Options) error {
	return NewParser(opts, NopDelegate{}).Run(data)
}

// PathElem is one breadcrumb in a PathTrackingDelegate's current
// position: either an object member key or an array element index.
type PathElem struct {
	Key     string
	Index   int
	IsIndex bool
}

func (e PathElem) String() string {
	if e.IsIndex {
		return fmt.Sprintf("[%d]", e.Index)
	}
	return e.Key
}

type pathFrame struct {
	isObject bool
	key      string
	index    int
}

// PathTrackingDelegate wraps another Delegate, reconstructing a
// breadcrumb path through the container nesting as events arrive — the
// Go equivalent of original_source/ext/oj's saj2.c path array, which the
// SAJ style in spec.md §4.6 builds up for its handler callbacks. Any
// ordinary Delegate (a user's own callback struct) already is a usable
// SAJ handler on its own; this wrapper only adds path bookkeeping around
// one.
type PathTrackingDelegate struct {
	Inner Delegate
	stack []pathFrame
}

// NewPathTrackingDelegate wraps inner with path tracking.
func NewPathTrackingDelegate(inner Delegate) *PathTrackingDelegate {
	return &PathTrackingDelegate{Inner: inner}
}

// Path returns the current breadcrumb path, from the root down to (but
// not including) the value about to be or just delivered. The returned
// slice is owned by the caller.
func (d *PathTrackingDelegate) Path() []PathElem {
	path := make([]PathElem, len(d.stack))
	for i, f := range d.stack {
		if f.isObject {
			path[i] = PathElem{Key: f.key}
		} else {
			path[i] = PathElem{Index: f.index, IsIndex: true}
		}
	}
	return path
}

func (d *PathTrackingDelegate) recordScalar() {
	if len(d.stack) == 0 {
		return
	}
	top := &d.stack[len(d.stack)-1]
	if !top.isObject {
		top.index++
	}
}

func (d *PathTrackingDelegate) OpenObject() bool {
	stop := d.Inner.OpenObject()
	d.stack = append(d.stack, pathFrame{isObject: true})
	return stop
}

func (d *PathTrackingDelegate) CloseObject() bool {
	stop := d.Inner.CloseObject()
	d.stack = d.stack[:len(d.stack)-1]
	d.recordScalar()
	return stop
}

func (d *PathTrackingDelegate) OpenArray() bool {
	stop := d.Inner.OpenArray()
	d.stack = append(d.stack, pathFrame{isObject: false})
	return stop
}

func (d *PathTrackingDelegate) CloseArray() bool {
	stop := d.Inner.CloseArray()
	d.stack = d.stack[:len(d.stack)-1]
	d.recordScalar()
	return stop
}

func (d *PathTrackingDelegate) Null() bool {
	stop := d.Inner.Null()
	d.recordScalar()
	return stop
}

func (d *PathTrackingDelegate) Bool(v bool) bool {
	stop := d.Inner.Bool(v)
	d.recordScalar()
	return stop
}

func (d *PathTrackingDelegate) Int(v int64) bool {
	stop := d.Inner.Int(v)
	d.recordScalar()
	return stop
}

func (d *PathTrackingDelegate) Float(v float64) bool {
	stop := d.Inner.Float(v)
	d.recordScalar()
	return stop
}

func (d *PathTrackingDelegate) Big(v string) bool {
	stop := d.Inner.Big(v)
	d.recordScalar()
	return stop
}

func (d *PathTrackingDelegate) Str(v []byte) bool {
	stop := d.Inner.Str(v)
	d.recordScalar()
	return stop
}

func (d *PathTrackingDelegate) Key(v []byte) bool {
	stop := d.Inner.Key(v)
	if len(d.stack) > 0 {
		d.stack[len(d.stack)-1].key = string(v)
	}
	return stop
}

// DebugDelegate prints every event as it arrives, indented by nesting
// depth, the Go shape of original_source/ext/oj's debug.c. It never asks
// the parser to stop. Printing goes through k0kubun/pp/v3 the same way
// sqldef's MySQL parser reaches for pp.Println to dump a parsed tree; a
// non-nil Writer sends plain fmt output instead, for tests that need to
// capture output without pp's ANSI coloring.
type DebugDelegate struct {
	Writer io.Writer
	depth  int
}

func (d *DebugDelegate) line(format string, args ...interface{}) {
	indent := ""
	for i := 0; i < d.depth; i++ {
		indent += "  "
	}
	msg := indent + fmt.Sprintf(format, args...)
	if d.Writer != nil {
		fmt.Fprintln(d.Writer, msg)
		return
	}
	pp.Println(msg)
}

func (d *DebugDelegate) OpenObject() bool {
	d.line("{")
	d.depth++
	return false
}

func (d *DebugDelegate) CloseObject() bool {
	d.depth--
	d.line("}")
	return false
}

func (d *DebugDelegate) OpenArray() bool {
	d.line("[")
	d.depth++
	return false
}

func (d *DebugDelegate) CloseArray() bool {
	d.depth--
	d.line("]")
	return false
}

func (d *DebugDelegate) Null() bool {
	d.line("null")
	return false
}

func (d *DebugDelegate) Bool(v bool) bool {
	d.line("bool %v", v)
	return false
}

func (d *DebugDelegate) Int(v int64) bool {
	d.line("int %d", v)
	return false
}

func (d *DebugDelegate) Float(v float64) bool {
	d.line("float %g", v)
	return false
}

func (d *DebugDelegate) Big(v string) bool {
	d.line("big %s", v)
	return false
}

func (d *DebugDelegate) Str(v []byte) bool {
	d.line("string %q", v)
	return false
}

func (d *DebugDelegate) Key(v []byte) bool {
	d.line("key %q", v)
	return false
}

// treeDelegate is the Tree-build delegate of spec.md §4.6: it assembles
// a *Value out of the event stream, the Go shape of
// original_source/ext/oj's object.c build-a-VALUE delegate.
type treeDelegate struct {
	opts  Options
	stack []*treeFrame
	root  *Value
	done  bool
}

type treeFrame struct {
	isObject      bool
	pairs         []pair
	elems         []*Value
	pendingKey    string
	hasPendingKey bool
}

func newTreeDelegate(opts Options) *treeDelegate {
	return &treeDelegate{opts: opts}
}

func (d *treeDelegate) attach(v *Value) bool {
	if len(d.stack) == 0 {
		d.root = v
		d.done = true
		return false
	}
	top := d.stack[len(d.stack)-1]
	if top.isObject {
		top.pairs = append(top.pairs, pair{key: top.pendingKey, val: v})
		top.hasPendingKey = false
	} else {
		top.elems = append(top.elems, v)
	}
	return false
}

func (d *treeDelegate) OpenObject() bool {
	d.stack = append(d.stack, &treeFrame{isObject: true})
	return false
}

func (d *treeDelegate) CloseObject() bool {
	top := d.stack[len(d.stack)-1]
	d.stack = d.stack[:len(d.stack)-1]
	v := &Value{jsonType: Object, objectValue: top.pairs}
	if d.opts.CreateID != "" {
		for _, p := range top.pairs {
			if p.key == d.opts.CreateID && p.val.Type() == String {
				v.className = p.val.stringValue
				break
			}
		}
	}
	if d.opts.ObjectFactory != nil {
		obj := d.opts.ObjectFactory()
		for _, p := range top.pairs {
			obj.Set(p.key, p.val)
		}
		v.custom = obj
	}
	return d.attach(v)
}

func (d *treeDelegate) OpenArray() bool {
	d.stack = append(d.stack, &treeFrame{isObject: false})
	return false
}

func (d *treeDelegate) CloseArray() bool {
	top := d.stack[len(d.stack)-1]
	d.stack = d.stack[:len(d.stack)-1]
	v := &Value{jsonType: Array, arrayValue: top.elems}
	if d.opts.ArrayFactory != nil {
		arr := d.opts.ArrayFactory()
		for _, e := range top.elems {
			arr.Append(e)
		}
		v.custom = arr
	}
	return d.attach(v)
}

func (d *treeDelegate) Null() bool {
	return d.attach(&Value{jsonType: Null})
}

func (d *treeDelegate) Bool(v bool) bool {
	return d.attach(&Value{jsonType: Boolean, booleanValue: v})
}

func (d *treeDelegate) Int(v int64) bool {
	return d.attach(&Value{jsonType: Integer, integerValue: v})
}

func (d *treeDelegate) Float(v float64) bool {
	return d.attach(&Value{jsonType: Number, numberValue: v})
}

func (d *treeDelegate) Big(v string) bool {
	return d.attach(&Value{jsonType: Big, bigValue: v})
}

func (d *treeDelegate) Str(v []byte) bool {
	s := ""
	if d.opts.CacheStrings > 0 && len(v) <= d.opts.CacheStrings {
		s = stringCache.Intern(v)
	} else {
		s = string(v)
	}
	return d.attach(&Value{jsonType: String, stringValue: s})
}

func (d *treeDelegate) Key(v []byte) bool {
	top := d.stack[len(d.stack)-1]
	if d.opts.CacheKeys {
		top.pendingKey = keyCache.Intern(v)
	} else {
		top.pendingKey = string(v)
	}
	top.hasPendingKey = true
	return false
}
