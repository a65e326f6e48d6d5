package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aarondl/null/v8"
	"github.com/aarondl/sqlboiler/v4/boil"

	"taxonomy-editor/internal/repository/entity"
	"taxonomy-editor/internal/repository/interfaces"
	"taxonomy-editor/internal/repository/query"
)

// memStore 内存事务存储：开启事务时克隆，提交时替换
type memStore struct {
	mu        sync.Mutex
	committed *memState
	faults    map[string]*memFault
	hooks     map[string]*memHook
	commitErr error
	commits   int
	rollbacks int
}

type memFault struct {
	nth   int
	calls int
	err   error
}

// memHook 第 nth 次调用 op 前修改事务状态，模拟外部并发修改
type memHook struct {
	nth   int
	calls int
	fn    func(st *memState)
}

type relKey struct {
	objectID       int64
	termTaxonomyID int64
}

type memTerm struct {
	name string
	slug string
}

type memTermTaxonomy struct {
	termID      int64
	taxonomy    string
	description null.String
	parent      null.Int64
	count       int64
}

type memState struct {
	taxonomies map[string]entity.Taxonomy
	terms      map[int64]memTerm
	termTax    map[int64]memTermTaxonomy
	rels       map[relKey]int
	meta       []entity.TermMeta
	contents   map[int64]entity.Content
	nextMetaID int64
}

// memExec 事务执行器，只携带状态
type memExec struct {
	boil.ContextExecutor
	state *memState
}

func newMemStore() *memStore {
	return &memStore{
		committed: &memState{
			taxonomies: make(map[string]entity.Taxonomy),
			terms:      make(map[int64]memTerm),
			termTax:    make(map[int64]memTermTaxonomy),
			rels:       make(map[relKey]int),
			contents:   make(map[int64]entity.Content),
			nextMetaID: 1,
		},
		faults: make(map[string]*memFault),
		hooks:  make(map[string]*memHook),
	}
}

func (s *memState) clone() *memState {
	c := &memState{
		taxonomies: make(map[string]entity.Taxonomy, len(s.taxonomies)),
		terms:      make(map[int64]memTerm, len(s.terms)),
		termTax:    make(map[int64]memTermTaxonomy, len(s.termTax)),
		rels:       make(map[relKey]int, len(s.rels)),
		meta:       append([]entity.TermMeta(nil), s.meta...),
		contents:   make(map[int64]entity.Content, len(s.contents)),
		nextMetaID: s.nextMetaID,
	}
	for k, v := range s.taxonomies {
		c.taxonomies[k] = v
	}
	for k, v := range s.terms {
		c.terms[k] = v
	}
	for k, v := range s.termTax {
		c.termTax[k] = v
	}
	for k, v := range s.rels {
		c.rels[k] = v
	}
	for k, v := range s.contents {
		c.contents[k] = v
	}
	return c
}

// ---- fixtures ----

func (m *memStore) addTaxonomy(name string) {
	m.committed.taxonomies[name] = entity.Taxonomy{Name: name, Label: name, ObjectType: "post"}
}

// addTerm 词条 ID 与分组键 ID 相同（测试约定，便于断言）
func (m *memStore) addTerm(taxonomy string, termID int64, name string) {
	m.committed.terms[termID] = memTerm{name: name, slug: strings.ToLower(name)}
	m.committed.termTax[termID] = memTermTaxonomy{termID: termID, taxonomy: taxonomy}
}

func (m *memStore) addContent(ids ...int64) {
	for _, id := range ids {
		m.committed.contents[id] = entity.Content{ID: id, Title: fmt.Sprintf("post-%d", id), ContentType: "post", Status: "publish"}
	}
}

func (m *memStore) tag(termTaxonomyID int64, objectIDs ...int64) {
	for _, id := range objectIDs {
		m.committed.rels[relKey{objectID: id, termTaxonomyID: termTaxonomyID}] = 0
	}
	tt := m.committed.termTax[termTaxonomyID]
	tt.count = m.committed.actualCount(termTaxonomyID)
	m.committed.termTax[termTaxonomyID] = tt
}

func (m *memStore) setCount(termTaxonomyID, count int64) {
	tt := m.committed.termTax[termTaxonomyID]
	tt.count = count
	m.committed.termTax[termTaxonomyID] = tt
}

func (m *memStore) addMeta(termID int64, key, value string) {
	m.committed.addMeta(termID, key, null.StringFrom(value))
}

// failOn 第 nth 次调用 op 时返回 err
func (m *memStore) failOn(op string, nth int, err error) {
	m.faults[op] = &memFault{nth: nth, err: err}
}

func (m *memStore) fault(op string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.faults[op]
	if !ok {
		return nil
	}
	f.calls++
	if f.calls == f.nth {
		return f.err
	}
	return nil
}

// onCall 第 nth 次调用 op 前执行 fn
func (m *memStore) onCall(op string, nth int, fn func(st *memState)) {
	m.hooks[op] = &memHook{nth: nth, fn: fn}
}

func (m *memStore) runHook(op string, st *memState) {
	h, ok := m.hooks[op]
	if !ok {
		return
	}
	h.calls++
	if h.calls == h.nth {
		h.fn(st)
	}
}

func (m *memStore) snapshot() *memState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.committed.clone()
}

// ---- assertions helpers ----

func (s *memState) actualCount(termTaxonomyID int64) int64 {
	var n int64
	for k := range s.rels {
		if k.termTaxonomyID == termTaxonomyID {
			n++
		}
	}
	return n
}

func (s *memState) objectTermTaxonomies(objectID int64) []int64 {
	var out []int64
	for k := range s.rels {
		if k.objectID == objectID {
			out = append(out, k.termTaxonomyID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *memState) metaValues(termID int64, key string) []string {
	var out []string
	for _, m := range s.meta {
		if m.TermID == termID && m.MetaKey == key {
			out = append(out, m.MetaValue.String)
		}
	}
	return out
}

func (s *memState) addMeta(termID int64, key string, value null.String) {
	s.meta = append(s.meta, entity.TermMeta{MetaID: s.nextMetaID, TermID: termID, MetaKey: key, MetaValue: value})
	s.nextMetaID++
}

func (s *memState) termEntity(ttID int64) *entity.Term {
	tt := s.termTax[ttID]
	t := s.terms[tt.termID]
	return &entity.Term{
		TermID:         tt.termID,
		TermTaxonomyID: ttID,
		Taxonomy:       tt.taxonomy,
		Name:           t.name,
		Slug:           t.slug,
		Description:    tt.description,
		Parent:         tt.parent,
		Count:          tt.count,
	}
}

func (s *memState) findTermTaxonomy(termID int64, taxonomy string) (int64, bool) {
	for ttID, tt := range s.termTax {
		if tt.termID == termID && tt.taxonomy == taxonomy {
			return ttID, true
		}
	}
	return 0, false
}

func (m *memStore) state(exec boil.ContextExecutor) *memState {
	if ex, ok := exec.(*memExec); ok && ex != nil {
		return ex.state
	}
	return m.committed
}

// ---- Transactor ----

func (m *memStore) Executor() boil.ContextExecutor {
	return nil
}

func (m *memStore) WithTx(ctx context.Context, fn interfaces.TxFunc) error {
	m.mu.Lock()
	ex := &memExec{state: m.committed.clone()}
	m.mu.Unlock()

	if err := fn(ctx, ex); err != nil {
		m.rollbacks++
		return err
	}
	if m.commitErr != nil {
		m.rollbacks++
		return fmt.Errorf("%w: %w", interfaces.ErrCommitFailed, m.commitErr)
	}

	m.mu.Lock()
	m.committed = ex.state
	m.commits++
	m.mu.Unlock()
	return nil
}

func (m *memStore) WithSavepoint(ctx context.Context, exec boil.ContextExecutor, name string, fn interfaces.TxFunc) error {
	ex, ok := exec.(*memExec)
	if !ok {
		return fmt.Errorf("savepoint %s outside transaction", name)
	}
	saved := ex.state.clone()
	if err := fn(ctx, exec); err != nil {
		ex.state = saved
		return err
	}
	return nil
}

// ---- TaxonomyRepository ----

type memTaxonomyRepo struct{ *memStore }

func (r memTaxonomyRepo) Exists(ctx context.Context, exec boil.ContextExecutor, name string) (bool, error) {
	if err := r.fault("taxonomy.Exists"); err != nil {
		return false, err
	}
	_, ok := r.state(exec).taxonomies[name]
	return ok, nil
}

func (r memTaxonomyRepo) GetByName(ctx context.Context, exec boil.ContextExecutor, name string) (*entity.Taxonomy, error) {
	t, ok := r.state(exec).taxonomies[name]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return &t, nil
}

func (r memTaxonomyRepo) List(ctx context.Context, exec boil.ContextExecutor) ([]*entity.Taxonomy, error) {
	st := r.state(exec)
	out := make([]*entity.Taxonomy, 0, len(st.taxonomies))
	for _, t := range st.taxonomies {
		t := t
		out = append(out, &t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ---- TermRepository ----

type memTermRepo struct{ *memStore }

func (r memTermRepo) GetByID(ctx context.Context, exec boil.ContextExecutor, termID int64, taxonomy string) (*entity.Term, error) {
	if err := r.fault("term.GetByID"); err != nil {
		return nil, err
	}
	st := r.state(exec)
	r.runHook("term.GetByID", st)
	ttID, ok := st.findTermTaxonomy(termID, taxonomy)
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return st.termEntity(ttID), nil
}

func (r memTermRepo) GetByIDs(ctx context.Context, exec boil.ContextExecutor, taxonomy string, termIDs []int64) ([]*entity.Term, error) {
	st := r.state(exec)
	want := make(map[int64]struct{}, len(termIDs))
	for _, id := range termIDs {
		want[id] = struct{}{}
	}
	var out []*entity.Term
	for ttID, tt := range st.termTax {
		if _, ok := want[tt.termID]; ok && tt.taxonomy == taxonomy {
			out = append(out, st.termEntity(ttID))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TermID < out[j].TermID })
	return out, nil
}

func (r memTermRepo) GetBySlugs(ctx context.Context, exec boil.ContextExecutor, taxonomy string, slugs []string) ([]*entity.Term, error) {
	st := r.state(exec)
	want := make(map[string]struct{}, len(slugs))
	for _, s := range slugs {
		want[s] = struct{}{}
	}
	var out []*entity.Term
	for ttID, tt := range st.termTax {
		if _, ok := want[st.terms[tt.termID].slug]; ok && tt.taxonomy == taxonomy {
			out = append(out, st.termEntity(ttID))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memTermRepo) List(ctx context.Context, exec boil.ContextExecutor, params query.TermListParams) ([]*entity.Term, int64, error) {
	if err := r.fault("term.List"); err != nil {
		return nil, 0, err
	}
	st := r.state(exec)
	var all []*entity.Term
	for ttID, tt := range st.termTax {
		if tt.taxonomy != params.Taxonomy {
			continue
		}
		if params.HideEmpty && tt.count == 0 {
			continue
		}
		t := st.termEntity(ttID)
		if params.Search != "" && !strings.Contains(strings.ToLower(t.Name), strings.ToLower(params.Search)) &&
			!strings.Contains(t.Slug, strings.ToLower(params.Search)) {
			continue
		}
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].TermID < all[j].TermID
	})
	total := int64(len(all))
	if params.PageSize > 0 {
		start := params.GetOffset()
		if start > len(all) {
			start = len(all)
		}
		end := start + params.GetLimit()
		if end > len(all) {
			end = len(all)
		}
		all = all[start:end]
	}
	return all, total, nil
}

func (r memTermRepo) Delete(ctx context.Context, exec boil.ContextExecutor, termID int64, taxonomy string) error {
	if err := r.fault("term.Delete"); err != nil {
		return err
	}
	st := r.state(exec)
	ttID, ok := st.findTermTaxonomy(termID, taxonomy)
	if !ok {
		return interfaces.ErrNotFound
	}
	for k := range st.rels {
		if k.termTaxonomyID == ttID {
			delete(st.rels, k)
		}
	}
	delete(st.termTax, ttID)
	kept := st.meta[:0]
	for _, m := range st.meta {
		if m.TermID != termID {
			kept = append(kept, m)
		}
	}
	st.meta = kept
	for _, tt := range st.termTax {
		if tt.termID == termID {
			return nil
		}
	}
	delete(st.terms, termID)
	return nil
}

func (r memTermRepo) RecountUsage(ctx context.Context, exec boil.ContextExecutor, termTaxonomyIDs ...int64) error {
	if err := r.fault("term.RecountUsage"); err != nil {
		return err
	}
	st := r.state(exec)
	for _, ttID := range termTaxonomyIDs {
		tt, ok := st.termTax[ttID]
		if !ok {
			continue
		}
		tt.count = st.actualCount(ttID)
		st.termTax[ttID] = tt
	}
	return nil
}

func (r memTermRepo) ListCountDrift(ctx context.Context, exec boil.ContextExecutor, limit int) ([]*entity.CountDrift, error) {
	if err := r.fault("term.ListCountDrift"); err != nil {
		return nil, err
	}
	st := r.state(exec)
	var out []*entity.CountDrift
	for ttID, tt := range st.termTax {
		actual := st.actualCount(ttID)
		if actual != tt.count {
			out = append(out, &entity.CountDrift{
				TermTaxonomyID: ttID,
				Taxonomy:       tt.taxonomy,
				StoredCount:    tt.count,
				ActualCount:    actual,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TermTaxonomyID < out[j].TermTaxonomyID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ---- TermRelationshipRepository ----

type memRelRepo struct{ *memStore }

func (r memRelRepo) ListObjectIDs(ctx context.Context, exec boil.ContextExecutor, termTaxonomyID int64) ([]int64, error) {
	if err := r.fault("rel.ListObjectIDs"); err != nil {
		return nil, err
	}
	var out []int64
	for k := range r.state(exec).rels {
		if k.termTaxonomyID == termTaxonomyID {
			out = append(out, k.objectID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (r memRelRepo) Exists(ctx context.Context, exec boil.ContextExecutor, objectID, termTaxonomyID int64) (bool, error) {
	_, ok := r.state(exec).rels[relKey{objectID: objectID, termTaxonomyID: termTaxonomyID}]
	return ok, nil
}

func (r memRelRepo) Insert(ctx context.Context, exec boil.ContextExecutor, rel *entity.TermRelationship) error {
	if err := r.fault("rel.Insert"); err != nil {
		return err
	}
	st := r.state(exec)
	k := relKey{objectID: rel.ObjectID, termTaxonomyID: rel.TermTaxonomyID}
	if _, ok := st.rels[k]; ok {
		return fmt.Errorf("duplicate key value violates unique constraint: (%d,%d)", rel.ObjectID, rel.TermTaxonomyID)
	}
	st.rels[k] = rel.TermOrder
	return nil
}

func (r memRelRepo) DeleteByTermTaxonomyID(ctx context.Context, exec boil.ContextExecutor, termTaxonomyID int64) (int64, error) {
	if err := r.fault("rel.DeleteByTermTaxonomyID"); err != nil {
		return 0, err
	}
	st := r.state(exec)
	var n int64
	for k := range st.rels {
		if k.termTaxonomyID == termTaxonomyID {
			delete(st.rels, k)
			n++
		}
	}
	return n, nil
}

func (r memRelRepo) DeleteForObject(ctx context.Context, exec boil.ContextExecutor, objectID int64, termTaxonomyIDs []int64) (int64, error) {
	if err := r.fault("rel.DeleteForObject"); err != nil {
		return 0, err
	}
	st := r.state(exec)
	var n int64
	for _, ttID := range termTaxonomyIDs {
		k := relKey{objectID: objectID, termTaxonomyID: ttID}
		if _, ok := st.rels[k]; ok {
			delete(st.rels, k)
			n++
		}
	}
	return n, nil
}

func (r memRelRepo) ResolveTaxonomy(ctx context.Context, exec boil.ContextExecutor, termTaxonomyID int64) (string, error) {
	if err := r.fault("rel.ResolveTaxonomy"); err != nil {
		return "", err
	}
	tt, ok := r.state(exec).termTax[termTaxonomyID]
	if !ok {
		return "", interfaces.ErrNotFound
	}
	return tt.taxonomy, nil
}

func (r memRelRepo) ListTermsForObjects(ctx context.Context, exec boil.ContextExecutor, taxonomy string, objectIDs []int64) ([]*query.ObjectTerm, error) {
	if err := r.fault("rel.ListTermsForObjects"); err != nil {
		return nil, err
	}
	st := r.state(exec)
	want := make(map[int64]struct{}, len(objectIDs))
	for _, id := range objectIDs {
		want[id] = struct{}{}
	}
	var out []*query.ObjectTerm
	for k := range st.rels {
		if _, ok := want[k.objectID]; !ok {
			continue
		}
		tt := st.termTax[k.termTaxonomyID]
		if tt.taxonomy != taxonomy {
			continue
		}
		t := st.terms[tt.termID]
		out = append(out, &query.ObjectTerm{
			ObjectID:       k.objectID,
			TermID:         tt.termID,
			TermTaxonomyID: k.termTaxonomyID,
			Name:           t.name,
			Slug:           t.slug,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ObjectID != out[j].ObjectID {
			return out[i].ObjectID < out[j].ObjectID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// ---- TermMetaRepository ----

type memMetaRepo struct{ *memStore }

func (r memMetaRepo) ListByTerm(ctx context.Context, exec boil.ContextExecutor, termID int64) ([]*entity.TermMeta, error) {
	if err := r.fault("meta.ListByTerm"); err != nil {
		return nil, err
	}
	var out []*entity.TermMeta
	for _, m := range r.state(exec).meta {
		if m.TermID == termID {
			m := m
			out = append(out, &m)
		}
	}
	return out, nil
}

func (r memMetaRepo) KeyExists(ctx context.Context, exec boil.ContextExecutor, termID int64, key string) (bool, error) {
	for _, m := range r.state(exec).meta {
		if m.TermID == termID && m.MetaKey == key {
			return true, nil
		}
	}
	return false, nil
}

func (r memMetaRepo) Add(ctx context.Context, exec boil.ContextExecutor, termID int64, key string, value null.String) error {
	if err := r.fault("meta.Add"); err != nil {
		return err
	}
	r.state(exec).addMeta(termID, key, value)
	return nil
}

// ---- ContentRepository ----

type memContentRepo struct{ *memStore }

func (r memContentRepo) ExistingIDs(ctx context.Context, exec boil.ContextExecutor, ids []int64) ([]int64, error) {
	st := r.state(exec)
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := st.contents[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (r memContentRepo) FilterByTerms(ctx context.Context, exec boil.ContextExecutor, params query.ContentFilterParams) ([]*entity.Content, int64, error) {
	st := r.state(exec)
	want := make(map[string]struct{})
	for _, s := range params.Slugs {
		want[s] = struct{}{}
	}
	if len(want) == 0 {
		return nil, 0, nil
	}
	matched := make(map[int64]map[string]struct{})
	for k := range st.rels {
		tt := st.termTax[k.termTaxonomyID]
		if tt.taxonomy != params.Taxonomy {
			continue
		}
		slug := st.terms[tt.termID].slug
		if _, ok := want[slug]; !ok {
			continue
		}
		if matched[k.objectID] == nil {
			matched[k.objectID] = make(map[string]struct{})
		}
		matched[k.objectID][slug] = struct{}{}
	}
	var out []*entity.Content
	for id, slugs := range matched {
		if len(slugs) != len(want) {
			continue
		}
		if c, ok := st.contents[id]; ok {
			c := c
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, int64(len(out)), nil
}

// ---- collaborators ----

type recordingInvalidator struct {
	mu    sync.Mutex
	calls []invalidateCall
	err   error
}

type invalidateCall struct {
	taxonomy  string
	reason    string
	objectIDs []int64
}

func (r *recordingInvalidator) Invalidate(ctx context.Context, taxonomy, reason string, objectIDs []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, invalidateCall{taxonomy: taxonomy, reason: reason, objectIDs: append([]int64(nil), objectIDs...)})
	return r.err
}

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads []interface{}
	err      error
}

func (p *recordingPublisher) Publish(ctx context.Context, subject string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, payload)
	return p.err
}
