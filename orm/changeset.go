package orm

import (
	"sync"

	"github.com/gotomicro/ekit/slice"
)

// ChangeSet 记录实例中被修改过的字段
// 模型里面声明一个 *ChangeSet 类型的导出字段就开启了脏字段追踪
// update 只会写入 ChangeSet 里的字段
type ChangeSet struct {
	mu     sync.Mutex
	fields []Field
}

func NewChangeSet(fields ...Field) *ChangeSet {
	cs := &ChangeSet{}
	for _, f := range fields {
		cs.Add(f)
	}
	return cs
}

// Add 标记字段，重复标记是幂等的
func (cs *ChangeSet) Add(f Field) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.contains(f) {
		return
	}
	cs.fields = append(cs.fields, f)
}

func (cs *ChangeSet) Contains(f Field) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.contains(f)
}

// contains Field 的相等是按照带表名的名字比较的
func (cs *ChangeSet) contains(f Field) bool {
	keys := slice.Map[Field, string](cs.fields, func(idx int, src Field) string {
		return src.Key()
	})
	return slice.Contains[string](keys, f.Key())
}

// Fields 按照标记的顺序返回
func (cs *ChangeSet) Fields() Fields {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	res := make(Fields, len(cs.fields))
	copy(res, cs.fields)
	return res
}

func (cs *ChangeSet) Len() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.fields)
}

func (cs *ChangeSet) Reset() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.fields = nil
}
