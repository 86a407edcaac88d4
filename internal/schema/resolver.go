package schema

import (
	"strings"
	"time"
)

// NameResolver maps externally supplied field names to canonical property
// paths on a registered entity. It never fails: an unresolvable fragment
// passes through unchanged so the later existence check flags the path.
type NameResolver struct {
	Policy     NamingPolicy
	UseAliases bool
}

func NewNameResolver(policy NamingPolicy, useAliases bool) *NameResolver {
	return &NameResolver{Policy: policy, UseAliases: useAliases}
}

// Resolve splits incoming on "." and resolves level by level. Per level the
// prebuilt index tries, in order of precedence: declared alias, direct
// case-insensitive name, policy-computed name. Resolution is pure lookup
// over startup configuration; no I/O happens here.
func (r *NameResolver) Resolve(e *Entity, incoming string) string {
	incoming = strings.TrimSpace(incoming)
	if incoming == "" {
		return incoming
	}

	segs := strings.Split(incoming, ".")
	out := make([]string, 0, len(segs))
	cur := e
	for i, seg := range segs {
		if cur == nil {
			out = append(out, seg)
			continue
		}
		idx := r.localIndexFor(cur)
		if i < len(segs)-1 {
			rname, ok := idx.RelationFor(seg)
			if !ok {
				out = append(out, seg)
				cur = nil
				continue
			}
			out = append(out, rname)
			_, rel := cur.Relation(rname)
			cur = rel.Ref()
			continue
		}
		if fname, ok := idx.FieldFor(seg); ok {
			out = append(out, fname)
		} else {
			out = append(out, seg)
		}
	}
	return strings.Join(out, ".")
}

func (r *NameResolver) localIndexFor(e *Entity) *NameIndex {
	key := e.Name + "|" + r.Policy.Name + "|aliases=" + boolWord(r.UseAliases)
	now := time.Now()
	if idx, ok := globalIndexCache.get(key, now); ok {
		return idx
	}
	idx := BuildNameIndex(e, r.Policy, r.UseAliases)
	globalIndexCache.set(key, idx, now)
	return idx
}

func boolWord(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
