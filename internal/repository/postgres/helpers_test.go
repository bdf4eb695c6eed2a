package postgres_test

import "github.com/lib/pq"

func pqError(code string) *pq.Error {
	return &pq.Error{Code: pq.ErrorCode(code)}
}
