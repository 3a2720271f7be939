package hzcloud

import (
	"context"
	"errors"
	"sort"
	"sync"
)

type fakeStore struct {
	mux     sync.Mutex
	data    map[string]string
	putErr  error
	getErr  error
	sizeErr error
	puts    int
	gets    int
	sizes   int
	onPut   func(puts int)
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (s *fakeStore) Put(_ context.Context, key string, value string) error {
	s.mux.Lock()
	s.puts++
	puts := s.puts
	err := s.putErr
	if err == nil {
		s.data[key] = value
	}
	s.mux.Unlock()
	if s.onPut != nil {
		s.onPut(puts)
	}
	if err != nil {
		return createOperationError("put", key, err)
	}
	return nil
}

func (s *fakeStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.gets++
	if s.getErr != nil {
		return "", false, createOperationError("get", key, s.getErr)
	}
	val, ok := s.data[key]
	return val, ok, nil
}

func (s *fakeStore) Size(_ context.Context) (int, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.sizes++
	if s.sizeErr != nil {
		return 0, createOperationError("size", "", s.sizeErr)
	}
	return len(s.data), nil
}

func (s *fakeStore) entries() []KeyValue {
	s.mux.Lock()
	defer s.mux.Unlock()
	res := make([]KeyValue, 0, len(s.data))
	for k, v := range s.data {
		res = append(res, KeyValue{k, v})
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Key < res[j].Key
	})
	return res
}

// fakeGrid understands the statements issued by the SQL demo and nothing else.
type fakeGrid struct {
	maps       map[string]*fakeStore
	mapErr     error
	queryErrs  map[string]error
	queries    []string
	mappings   int
	openResult int
	badValues  bool
	lookup     func(pairs []KeyValue) []KeyValue
}

func newFakeGrid() *fakeGrid {
	return &fakeGrid{maps: make(map[string]*fakeStore), queryErrs: make(map[string]error)}
}

func (g *fakeGrid) store(name string) *fakeStore {
	s, ok := g.maps[name]
	if !ok {
		s = newFakeStore()
		g.maps[name] = s
	}
	return s
}

func (g *fakeGrid) Map(_ context.Context, name string) (KeyValueStore, error) {
	if g.mapErr != nil {
		return nil, createOperationError("get map "+name, "", g.mapErr)
	}
	return g.store(name), nil
}

func (g *fakeGrid) Query(_ context.Context, statement string, params ...interface{}) (RowSet, error) {
	g.queries = append(g.queries, statement)
	if err := g.queryErrs[statement]; err != nil {
		return nil, createQueryError("", statement, err)
	}
	var it *fakeIterator
	switch statement {
	case createCitiesMapping:
		g.mappings++
	case selectAllCities, selectCityByCountry:
		if g.mappings == 0 {
			return nil, createQueryError("", statement, errors.New("object 'cities' not found"))
		}
		var pairs []KeyValue
		for _, kv := range g.store(citiesMapName).entries() {
			if statement == selectCityByCountry && (len(params) != 1 || params[0] != kv.Key) {
				continue
			}
			pairs = append(pairs, kv)
		}
		if statement == selectCityByCountry && g.lookup != nil {
			pairs = g.lookup(pairs)
		}
		it = cityRows(pairs...)
		if g.badValues {
			for _, r := range it.rows {
				r.values[1] = 42
			}
		}
	default:
		return nil, createQueryError("", statement, errors.New("unsupported statement"))
	}
	g.openResult++
	rows := &Rows{statement: statement, closer: closerFunc(func() error {
		g.openResult--
		return nil
	})}
	if it != nil {
		rows.it = it
	}
	return rows, nil
}

type closerFunc func() error

func (f closerFunc) Close() error {
	return f()
}
