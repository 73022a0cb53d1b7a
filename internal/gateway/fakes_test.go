package gateway

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/mamadbah2/stockroom/internal/repository/mongodb"
)

// fakeSheets is an in-memory spreadsheet understanding the A1 ranges the backend uses.
type fakeSheets struct {
	mu         sync.Mutex
	tabs       map[string][][]interface{}
	clearErr   error
	updateErr  error
	appendErr  error
	readErr    error
	pingErr    error
	appendHits map[string]int
}

func newFakeSheets() *fakeSheets {
	return &fakeSheets{tabs: make(map[string][][]interface{}), appendHits: make(map[string]int)}
}

func parseA1(r string) (tab string, start, end int) {
	tab, cells, _ := strings.Cut(r, "!")
	first, last, _ := strings.Cut(cells, ":")
	start = rowNumber(first)
	if start == 0 {
		start = 1
	}
	return tab, start, rowNumber(last)
}

func rowNumber(cell string) int {
	digits := strings.TrimLeftFunc(cell, unicode.IsLetter)
	n, _ := strconv.Atoi(digits)
	return n
}

func blank(row []interface{}) bool {
	for _, v := range row {
		if s, ok := v.(string); !ok || s != "" {
			return false
		}
	}
	return true
}

func trimBlank(rows [][]interface{}) [][]interface{} {
	for len(rows) > 0 && blank(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return rows
}

func (f *fakeSheets) AppendRows(_ context.Context, r string, rows [][]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	if len(rows) == 0 {
		return nil
	}
	tab, _, _ := parseA1(r)
	f.appendHits[tab]++
	current := trimBlank(f.tabs[tab])
	for _, row := range rows {
		current = append(current, append([]interface{}(nil), row...))
	}
	f.tabs[tab] = current
	return nil
}

func (f *fakeSheets) ReadRange(_ context.Context, r string) ([][]interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	tab, start, end := parseA1(r)
	rows := trimBlank(f.tabs[tab])
	if start-1 >= len(rows) {
		return nil, nil
	}
	rows = rows[start-1:]
	if end > 0 && end-start+1 < len(rows) {
		rows = rows[:end-start+1]
	}
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		out[i] = append([]interface{}(nil), row...)
	}
	return out, nil
}

func (f *fakeSheets) UpdateRange(_ context.Context, r string, rows [][]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	tab, start, _ := parseA1(r)
	current := f.tabs[tab]
	for len(current) < start-1+len(rows) {
		current = append(current, []interface{}{})
	}
	for i, row := range rows {
		current[start-1+i] = append([]interface{}(nil), row...)
	}
	f.tabs[tab] = current
	return nil
}

func (f *fakeSheets) ClearRange(_ context.Context, r string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clearErr != nil {
		return f.clearErr
	}
	tab, start, end := parseA1(r)
	current := f.tabs[tab]
	last := len(current)
	if end > 0 && end < last {
		last = end
	}
	for i := start - 1; i < last; i++ {
		current[i] = []interface{}{}
	}
	return nil
}

func (f *fakeSheets) Ping(context.Context) error { return f.pingErr }

// fakeMongo keeps product documents marshalled to BSON, like the server would.
type fakeMongo struct {
	mu        sync.Mutex
	products  map[string]bson.Raw
	order     []string
	ledger     []mongodb.LedgerDocument
	ledgerErr  error
	standalone bool
}

func newFakeMongo() *fakeMongo {
	return &fakeMongo{products: make(map[string]bson.Raw)}
}

func (f *fakeMongo) Ping(context.Context) error { return nil }

func (f *fakeMongo) Transactional(context.Context) (bool, error) { return !f.standalone, nil }

func (f *fakeMongo) FindProducts(_ context.Context, userID string) ([]bson.Raw, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []bson.Raw
	for _, id := range f.order {
		raw := f.products[id]
		if raw.Lookup("user_id").StringValue() == userID {
			out = append(out, raw)
		}
	}
	return out, nil
}

func (f *fakeMongo) UpsertProducts(ctx context.Context, docs []mongodb.ProductDocument) error {
	for _, doc := range docs {
		if err := f.UpsertProduct(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeMongo) UpsertProduct(_ context.Context, doc mongodb.ProductDocument) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[doc.DocID]; !ok {
		f.order = append(f.order, doc.DocID)
	}
	f.products[doc.DocID] = raw
	return nil
}

func (f *fakeMongo) InsertLedger(_ context.Context, docs []mongodb.LedgerDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ledgerErr != nil {
		return f.ledgerErr
	}
	f.ledger = append(f.ledger, docs...)
	return nil
}
