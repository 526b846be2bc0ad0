package broker

type seenKey struct {
	realm string
	uri   string
}

// SeenSet 记录本会话内已经触发过 backend 查询的 (realm, uri)。
// 只属于一个 Broker，不做同步：宿主按进程同步驱动单个 Broker。
type SeenSet struct {
	m map[seenKey]struct{}
}

func NewSeenSet() *SeenSet {
	return &SeenSet{m: make(map[seenKey]struct{})}
}

// Mark 在查询发生前插入 (realm, uri)，仅首次返回 true。
func (s *SeenSet) Mark(realm, uri string) bool {
	k := seenKey{realm: realm, uri: uri}
	if _, ok := s.m[k]; ok {
		return false
	}
	s.m[k] = struct{}{}
	return true
}

func (s *SeenSet) Seen(realm, uri string) bool {
	_, ok := s.m[seenKey{realm: realm, uri: uri}]
	return ok
}

func (s *SeenSet) Len() int { return len(s.m) }
