package hzcloud

import (
	"errors"
	"fmt"

	"github.com/hazelcast/hazelcast-go-client/sql"
)

// RowSet is a scoped SQL result. Rows are fetched lazily while iterating with Next, so Close must be
// called on every path to release the server-side cursor.
//
//	rows, err := grid.Query(ctx, "SELECT * FROM cities")
//	if err != nil {
//		return err
//	}
//	defer rows.Close()
//	for rows.Next() {
//		country, _ := rows.Value(0)
//		...
//	}
//	return rows.Err()
type RowSet interface {
	Next() bool
	Value(index int) (interface{}, error)
	ValueByName(column string) (interface{}, error)
	Err() error
	Close() error
}

type resultSet interface {
	IsRowSet() bool
	Iterator() (sql.RowsIterator, error)
	Close() error
}

type row interface {
	Get(index int) (interface{}, error)
	GetByColumnName(column string) (interface{}, error)
}

type rowIterator interface {
	HasNext() bool
	Next() (row, error)
}

type sqlRowIterator struct {
	it sql.RowsIterator
}

func (s sqlRowIterator) HasNext() bool {
	return s.it.HasNext()
}

func (s sqlRowIterator) Next() (row, error) {
	r, err := s.it.Next()
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Rows is the [RowSet] returned by [Client.Query].
type Rows struct {
	statement string
	closer    interface{ Close() error }
	it        rowIterator
	current   row
	err       error
	closed    bool
}

func newRows(statement string, res resultSet) (*Rows, error) {
	rows := &Rows{statement: statement, closer: res}
	if !res.IsRowSet() {
		return rows, nil
	}
	it, err := res.Iterator()
	if err != nil {
		_ = res.Close()
		return nil, createQueryError("failed to open result", statement, err)
	}
	rows.it = sqlRowIterator{it}
	return rows, nil
}

// Next advances to the next row, it returns false when the rows are exhausted, closed or failed.
func (r *Rows) Next() bool {
	if r.closed || r.err != nil || r.it == nil {
		return false
	}
	if !r.it.HasNext() {
		r.current = nil
		return false
	}
	next, err := r.it.Next()
	if err != nil {
		r.err = createQueryError("failed to fetch row", r.statement, err)
		r.current = nil
		return false
	}
	r.current = next
	return true
}

func (r *Rows) Value(index int) (interface{}, error) {
	if r.current == nil {
		return nil, createQueryError("no current row", r.statement, nil)
	}
	val, err := r.current.Get(index)
	if err != nil {
		return nil, createQueryError(fmt.Sprintf("failed to read column %d", index), r.statement, err)
	}
	return val, nil
}

func (r *Rows) ValueByName(column string) (interface{}, error) {
	if r.current == nil {
		return nil, createQueryError("no current row", r.statement, nil)
	}
	val, err := r.current.GetByColumnName(column)
	if err != nil {
		return nil, createQueryError(fmt.Sprintf("failed to read column %s", column), r.statement, err)
	}
	return val, nil
}

func (r *Rows) Err() error {
	return r.err
}

// Close releases the result. Calling it more than once is a no-op.
func (r *Rows) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.current = nil
	if r.closer == nil {
		return nil
	}
	if err := r.closer.Close(); err != nil {
		return createQueryError("failed to close result", r.statement, err)
	}
	return nil
}

func stringValue(val interface{}, err error) (string, error) {
	if err != nil {
		return "", err
	}
	if val == nil {
		return "", errors.New("unexpected NULL value")
	}
	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("value is %T, not a string", val)
	}
	return str, nil
}
